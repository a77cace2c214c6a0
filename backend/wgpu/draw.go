// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/kawase/render"
	"github.com/gogpu/wgpu/hal"
)

// releaser is a GPU object whose HAL resources may still be referenced by
// submitted work.
type releaser interface {
	release()
}

// inFlight is a release waiting for submission index to complete.
type inFlight struct {
	index uint64
	res   releaser
}

// passResources holds the transient objects of one submitted pass.
type passResources struct {
	device    hal.Device
	encoder   hal.CommandEncoder
	cmd       hal.CommandBuffer
	bindGroup hal.BindGroup
	uniforms  hal.Buffer
}

func (r *passResources) release() {
	if r.bindGroup != nil {
		r.device.DestroyBindGroup(r.bindGroup)
		r.bindGroup = nil
	}
	if r.uniforms != nil {
		r.device.DestroyBuffer(r.uniforms)
		r.uniforms = nil
	}
	if r.cmd != nil {
		r.device.FreeCommandBuffer(r.cmd)
		r.cmd = nil
	}
	if r.encoder != nil {
		r.encoder.Destroy()
		r.encoder = nil
	}
}

func (b *VertexBuffer) release() {
	if b.buffer != nil {
		b.engine.device.DestroyBuffer(b.buffer)
		b.buffer = nil
	}
}

// deferRelease releases r once every submission made so far completes.
func (e *Engine) deferRelease(r releaser) {
	if e.queue.PollCompleted() >= e.submitted {
		r.release()
		return
	}
	e.inFlight = append(e.inFlight, inFlight{index: e.submitted, res: r})
}

// reclaim releases completed in-flight resources, or all of them when
// force is set (after WaitIdle).
func (e *Engine) reclaim(force bool) {
	done := e.queue.PollCompleted()
	kept := e.inFlight[:0]
	for _, f := range e.inFlight {
		if force || f.index <= done {
			f.res.release()
			continue
		}
		kept = append(kept, f)
	}
	clear(e.inFlight[len(kept):])
	e.inFlight = kept
}

// sampler returns the shared linear sampler for mode.
func (e *Engine) sampler(mode render.SamplerMode) (hal.Sampler, error) {
	if s, ok := e.samplers[mode]; ok {
		return s, nil
	}
	address := gputypes.AddressModeClampToEdge
	if mode == render.SamplerRepeat {
		address = gputypes.AddressModeRepeat
	}
	s, err := e.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "wgpu_sampler_" + mode.String(),
		AddressModeU: address,
		AddressModeV: address,
		AddressModeW: address,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create %s sampler: %w", mode, err)
	}
	e.samplers[mode] = s
	return s, nil
}

// bindGroup uploads the staged uniforms of p and binds them with p's
// textures and samplers.
func (e *Engine) bindGroup(p *Program, res *passResources) error {
	refl := p.state.Reflection
	var entries []gputypes.BindGroupEntry

	if refl.UniformSize > 0 {
		buf, err := e.device.CreateBuffer(&hal.BufferDescriptor{
			Label: refl.Label + "_uniforms",
			Size:  uint64(refl.UniformSize),
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("wgpu: create %s uniform buffer: %w", refl.Label, err)
		}
		res.uniforms = buf
		if err := e.queue.WriteBuffer(buf, 0, p.state.Uniforms.Bytes()); err != nil {
			return fmt.Errorf("wgpu: upload %s uniforms: %w", refl.Label, err)
		}
		entries = append(entries, gputypes.BindGroupEntry{
			Binding:  refl.UniformBinding,
			Resource: gputypes.BufferBinding{Buffer: buf.NativeHandle(), Size: uint64(refl.UniformSize)},
		})
	}
	for _, loc := range refl.Textures {
		t := p.state.Texture(loc.Binding).(*Target)
		entries = append(entries, gputypes.BindGroupEntry{
			Binding:  loc.Binding,
			Resource: gputypes.TextureViewBinding{TextureView: t.view.NativeHandle()},
		})
	}
	for _, loc := range refl.Samplers {
		s, err := e.sampler(loc.Mode)
		if err != nil {
			return err
		}
		entries = append(entries, gputypes.BindGroupEntry{
			Binding:  loc.Binding,
			Resource: gputypes.SamplerBinding{Sampler: s.NativeHandle()},
		})
	}

	bg, err := e.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   refl.Label + "_bind_group",
		Layout:  p.layout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create %s bind group: %w", refl.Label, err)
	}
	res.bindGroup = bg
	return nil
}

// Draw implements render.Engine. It encodes and submits one render pass
// that loads the destination, draws b with the current program inside
// the viewport and stores the result.
func (e *Engine) Draw(b render.VertexBuffer) error {
	if e.closed {
		return ErrClosed
	}
	wb, ok := b.(*VertexBuffer)
	if !ok || wb.engine != e {
		return render.ErrForeignResource
	}
	if wb.destroyed {
		return fmt.Errorf("%w: buffer %s", ErrDestroyed, wb.label)
	}
	p := e.program
	if p == nil {
		return render.ErrNoProgram
	}
	dst, err := e.destination()
	if err != nil {
		return err
	}
	var bound render.Target
	if e.bound != nil {
		bound = e.bound
	}
	if err := p.state.CheckDraw(bound); err != nil {
		return err
	}

	pipeline, err := p.pipeline(dst)
	if err != nil {
		return err
	}
	res := &passResources{device: e.device}
	if err := e.bindGroup(p, res); err != nil {
		res.release()
		return err
	}

	vp := e.viewport
	return e.submitPass(p.Label()+"_pass", dst, gputypes.LoadOpLoad, gputypes.Color{}, res, func(rp hal.RenderPassEncoder) {
		rp.SetPipeline(pipeline)
		rp.SetBindGroup(0, res.bindGroup, nil)
		rp.SetVertexBuffer(0, wb.buffer, 0)
		rp.SetViewport(float32(vp.X), float32(vp.Y), float32(vp.Width), float32(vp.Height), 0, 1)
		rp.Draw(uint32(wb.count), 1, 0, 0)
	})
}

// Clear implements render.Engine. The whole bound target is cleared,
// including its depth/stencil attachment.
func (e *Engine) Clear(c gputypes.Color) error {
	if e.closed {
		return ErrClosed
	}
	dst, err := e.destination()
	if err != nil {
		return err
	}
	res := &passResources{device: e.device}
	return e.submitPass(dst.label+"_clear", dst, gputypes.LoadOpClear, c, res, nil)
}

// submitPass encodes a single render pass on dst, submits it and hands
// res over to the in-flight list.
func (e *Engine) submitPass(
	label string,
	dst *Target,
	load gputypes.LoadOp,
	clearValue gputypes.Color,
	res *passResources,
	record func(rp hal.RenderPassEncoder),
) error {
	e.reclaim(false)

	encoder, err := e.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		res.release()
		return fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	res.encoder = encoder
	if err := encoder.BeginEncoding(label); err != nil {
		res.release()
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}

	rpDesc := &hal.RenderPassDescriptor{
		Label: label,
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       dst.view,
			LoadOp:     load,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: clearValue,
		}},
	}
	if dst.depthView != nil {
		rpDesc.DepthStencilAttachment = &hal.RenderPassDepthStencilAttachment{
			View:              dst.depthView,
			DepthLoadOp:       load,
			DepthStoreOp:      gputypes.StoreOpStore,
			DepthClearValue:   1.0,
			StencilLoadOp:     load,
			StencilStoreOp:    gputypes.StoreOpStore,
			StencilClearValue: 0,
		}
	}

	rp := encoder.BeginRenderPass(rpDesc)
	if record != nil {
		record(rp)
	}
	rp.End()

	cmd, err := encoder.EndEncoding()
	if err != nil {
		res.release()
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	res.cmd = cmd

	index, err := e.queue.Submit([]hal.CommandBuffer{cmd})
	if err != nil {
		res.release()
		return fmt.Errorf("wgpu: submit %s: %w", label, err)
	}
	e.submitted = index
	e.deferRelease(res)
	return nil
}

// float32Bytes encodes values little-endian.
func float32Bytes(values []float32) []byte {
	out := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}
