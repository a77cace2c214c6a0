// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/kawase/render"
	"github.com/gogpu/wgpu/hal"
)

// Engine errors.
var (
	// ErrNoHAL is returned by the registered factory for device handles
	// that do not expose HAL objects.
	ErrNoHAL = errors.New("wgpu: device handle does not provide HAL access")

	// ErrNilDevice is returned by NewEngine for a nil device or queue.
	ErrNilDevice = errors.New("wgpu: nil device or queue")

	// ErrDestroyed is returned when a released resource is used.
	ErrDestroyed = errors.New("wgpu: resource destroyed")

	// ErrNoOutput is returned when drawing to an output that was neither
	// configured nor given a surface view.
	ErrNoOutput = errors.New("wgpu: output not configured")

	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("wgpu: engine closed")
)

func init() {
	render.Register("wgpu", func(dh render.DeviceHandle) (render.Engine, error) {
		return NewEngineFromProvider(dh)
	})
}

// VertexBuffer is a GPU vertex buffer of (x, y, u, v) vertices.
type VertexBuffer struct {
	engine    *Engine
	label     string
	buffer    hal.Buffer
	count     int
	destroyed bool
}

// Label implements render.VertexBuffer.
func (b *VertexBuffer) Label() string { return b.label }

// VertexCount implements render.VertexBuffer.
func (b *VertexBuffer) VertexCount() int { return b.count }

// Engine is a render.Engine on a HAL device and queue.
type Engine struct {
	device hal.Device
	queue  hal.Queue

	samplers map[render.SamplerMode]hal.Sampler

	output       *Target
	outputFormat gputypes.TextureFormat

	bound    *Target
	viewport render.Viewport
	program  *Program

	targets   map[*Target]struct{}
	programs  map[*Program]struct{}
	buffers   map[*VertexBuffer]struct{}
	inFlight  []inFlight
	submitted uint64

	closed bool
}

// NewEngine creates an engine on device and queue. The caller keeps
// ownership of both.
func NewEngine(device hal.Device, queue hal.Queue) (*Engine, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	return &Engine{
		device:       device,
		queue:        queue,
		samplers:     make(map[render.SamplerMode]hal.Sampler),
		outputFormat: gputypes.TextureFormatBGRA8Unorm,
		targets:      make(map[*Target]struct{}),
		programs:     make(map[*Program]struct{}),
		buffers:      make(map[*VertexBuffer]struct{}),
	}, nil
}

// NewEngineFromProvider creates an engine on the HAL device of dh, which
// must implement render.HalProvider. The output format defaults to the
// provider's surface format.
func NewEngineFromProvider(dh render.DeviceHandle) (*Engine, error) {
	hp, ok := dh.(render.HalProvider)
	if !ok {
		return nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok {
		return nil, fmt.Errorf("%w: HalDevice is %T", ErrNoHAL, hp.HalDevice())
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok {
		return nil, fmt.Errorf("%w: HalQueue is %T", ErrNoHAL, hp.HalQueue())
	}
	e, err := NewEngine(device, queue)
	if err != nil {
		return nil, err
	}
	if f := dh.SurfaceFormat(); f != gputypes.TextureFormatUndefined {
		e.outputFormat = f
	}
	info := dh.AdapterInfo()
	render.Logger().Info("wgpu: engine created", "adapter", info.Name, "type", info.Type.String(), "output", e.outputFormat)
	return e, nil
}

func (e *Engine) target(t render.Target) (*Target, error) {
	wt, ok := t.(*Target)
	if !ok || wt.engine != e {
		return nil, render.ErrForeignResource
	}
	if wt.destroyed {
		return nil, fmt.Errorf("%w: %s", ErrDestroyed, wt.label)
	}
	return wt, nil
}

// destination returns the target draws write to.
func (e *Engine) destination() (*Target, error) {
	if e.bound != nil {
		return e.bound, nil
	}
	if e.output == nil || e.output.view == nil {
		return nil, ErrNoOutput
	}
	return e.output, nil
}

// ConfigureOutput implements render.OutputConfigurer. It replaces the
// output with an engine-owned texture.
func (e *Engine) ConfigureOutput(width, height int, format gputypes.TextureFormat) error {
	if e.closed {
		return ErrClosed
	}
	if format == gputypes.TextureFormatUndefined {
		format = e.outputFormat
	}
	t, err := createTarget(e, render.TargetDescriptor{Label: "wgpu_output", Width: width, Height: height, Format: format})
	if err != nil {
		return err
	}
	e.replaceOutput(t)
	return nil
}

// SetSurfaceView makes view, owned by the caller, the output. It is
// typically called once per frame with the acquired swapchain view.
func (e *Engine) SetSurfaceView(view hal.TextureView, width, height int, format gputypes.TextureFormat) error {
	if e.closed {
		return ErrClosed
	}
	if view == nil || width <= 0 || height <= 0 {
		return fmt.Errorf("%w: surface view %dx%d", render.ErrInvalidDescriptor, width, height)
	}
	if format == gputypes.TextureFormatUndefined {
		format = e.outputFormat
	}
	e.replaceOutput(&Target{
		engine:   e,
		label:    "wgpu_surface",
		width:    width,
		height:   height,
		format:   format,
		view:     view,
		external: true,
	})
	return nil
}

func (e *Engine) replaceOutput(t *Target) {
	if e.output != nil {
		e.deferRelease(e.output)
	}
	e.output = t
	e.outputFormat = t.format
}

// Output returns the output target, or nil before ConfigureOutput or
// SetSurfaceView.
func (e *Engine) Output() *Target { return e.output }

// OutputFormat implements render.Engine.
func (e *Engine) OutputFormat() gputypes.TextureFormat { return e.outputFormat }

// CreateTarget implements render.Engine.
func (e *Engine) CreateTarget(desc render.TargetDescriptor) (render.Target, error) {
	if e.closed {
		return nil, ErrClosed
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	t, err := createTarget(e, desc)
	if err != nil {
		return nil, err
	}
	e.targets[t] = struct{}{}
	return t, nil
}

// UploadTarget implements render.Engine.
func (e *Engine) UploadTarget(t render.Target, pixels []byte) error {
	wt, err := e.target(t)
	if err != nil {
		return err
	}
	if want := wt.width * wt.height * 4; len(pixels) != want {
		return fmt.Errorf("%w: upload of %d bytes into %dx%d", render.ErrInvalidDescriptor, len(pixels), wt.width, wt.height)
	}
	size := wt.extent()
	err = e.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: wt.texture, Aspect: gputypes.TextureAspectAll},
		pixels,
		&hal.ImageDataLayout{BytesPerRow: uint32(wt.width * 4), RowsPerImage: uint32(wt.height)},
		&size,
	)
	if err != nil {
		return fmt.Errorf("wgpu: upload %s: %w", wt.label, err)
	}
	return nil
}

// DestroyTarget implements render.Engine. The textures are released once
// the GPU no longer uses them.
func (e *Engine) DestroyTarget(t render.Target) {
	wt, err := e.target(t)
	if err != nil {
		return
	}
	wt.destroyed = true
	delete(e.targets, wt)
	if e.bound == wt {
		e.bound = nil
	}
	for p := range e.programs {
		p.state.Forget(wt)
	}
	e.deferRelease(wt)
}

// CreateProgram implements render.Engine.
func (e *Engine) CreateProgram(src render.ProgramSource) (render.Program, error) {
	if e.closed {
		return nil, ErrClosed
	}
	p, err := createProgram(e, src)
	if err != nil {
		return nil, err
	}
	e.programs[p] = struct{}{}
	render.Logger().Debug("wgpu: program created", "program", src.Label)
	return p, nil
}

// DestroyProgram implements render.Engine.
func (e *Engine) DestroyProgram(p render.Program) {
	wp, ok := p.(*Program)
	if !ok || wp.engine != e || wp.destroyed {
		return
	}
	wp.destroyed = true
	delete(e.programs, wp)
	if e.program == wp {
		e.program = nil
	}
	e.deferRelease(wp)
}

// CreateVertexBuffer implements render.Engine.
func (e *Engine) CreateVertexBuffer(label string, vertices []float32) (render.VertexBuffer, error) {
	if e.closed {
		return nil, ErrClosed
	}
	if len(vertices) == 0 || len(vertices)%render.VertexStride != 0 {
		return nil, fmt.Errorf("%w: %d floats is not a whole number of vertices", render.ErrInvalidDescriptor, len(vertices))
	}
	data := float32Bytes(vertices)
	buf, err := e.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create vertex buffer %s: %w", label, err)
	}
	if err := e.queue.WriteBuffer(buf, 0, data); err != nil {
		e.device.DestroyBuffer(buf)
		return nil, fmt.Errorf("wgpu: upload vertex buffer %s: %w", label, err)
	}
	vb := &VertexBuffer{engine: e, label: label, buffer: buf, count: len(vertices) / render.VertexStride}
	e.buffers[vb] = struct{}{}
	return vb, nil
}

// DestroyVertexBuffer implements render.Engine.
func (e *Engine) DestroyVertexBuffer(b render.VertexBuffer) {
	wb, ok := b.(*VertexBuffer)
	if !ok || wb.engine != e || wb.destroyed {
		return
	}
	wb.destroyed = true
	delete(e.buffers, wb)
	e.deferRelease(wb)
}

// BindTarget implements render.Engine. A nil target selects the output.
func (e *Engine) BindTarget(t render.Target) error {
	if t == nil {
		e.bound = nil
		return nil
	}
	wt, err := e.target(t)
	if err != nil {
		return err
	}
	e.bound = wt
	return nil
}

// BoundTarget implements render.Engine.
func (e *Engine) BoundTarget() render.Target {
	if e.bound == nil {
		return nil
	}
	return e.bound
}

// SetViewport implements render.Engine.
func (e *Engine) SetViewport(v render.Viewport) { e.viewport = v }

// UseProgram implements render.Engine.
func (e *Engine) UseProgram(p render.Program) error {
	wp, ok := p.(*Program)
	if !ok || wp.engine != e {
		return render.ErrForeignResource
	}
	if wp.destroyed {
		return fmt.Errorf("%w: program %s", ErrDestroyed, wp.Label())
	}
	e.program = wp
	return nil
}

// SetTexture implements render.Engine.
func (e *Engine) SetTexture(loc render.Location, t render.Target) error {
	if e.program == nil {
		return render.ErrNoProgram
	}
	wt, err := e.target(t)
	if err != nil {
		return err
	}
	return e.program.state.SetTexture(loc, wt)
}

// SetUniform implements render.Engine.
func (e *Engine) SetUniform(loc render.Location, values ...float32) error {
	if e.program == nil {
		return render.ErrNoProgram
	}
	return e.program.state.SetUniform(loc, values...)
}

// Close waits for the GPU and releases every resource the engine created.
// The device and queue stay with the caller. Close is idempotent.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	err := e.device.WaitIdle()
	if err != nil {
		render.Logger().Warn("wgpu: wait idle failed, releasing anyway", "error", err)
	}
	e.reclaim(true)

	for t := range e.targets {
		t.destroyed = true
		t.release()
	}
	for p := range e.programs {
		p.destroyed = true
		p.release()
	}
	for b := range e.buffers {
		b.destroyed = true
		e.device.DestroyBuffer(b.buffer)
	}
	clear(e.targets)
	clear(e.programs)
	clear(e.buffers)
	if e.output != nil {
		e.output.release()
		e.output = nil
	}
	for mode, s := range e.samplers {
		e.device.DestroySampler(s)
		delete(e.samplers, mode)
	}
	e.bound, e.program = nil, nil
	if err != nil {
		return fmt.Errorf("wgpu: wait idle: %w", err)
	}
	return nil
}

var (
	_ render.Engine           = (*Engine)(nil)
	_ render.OutputConfigurer = (*Engine)(nil)
)
