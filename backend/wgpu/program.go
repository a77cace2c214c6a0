// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/kawase/render"
	"github.com/gogpu/wgpu/hal"
)

// vertexStride is the byte stride of one (x, y, u, v) vertex.
const vertexStride = render.VertexStride * 4

// pipelineKey selects a pipeline variant by destination.
type pipelineKey struct {
	format       gputypes.TextureFormat
	depthStencil bool
}

// Program is a compiled shader with its resource layout and the pipelines
// created for it so far.
type Program struct {
	engine *Engine
	state  *render.ProgramState

	shader     hal.ShaderModule
	layout     hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipelines  map[pipelineKey]hal.RenderPipeline

	destroyed bool
}

// Label implements render.Program.
func (p *Program) Label() string { return p.state.Reflection.Label }

// Location implements render.Program.
func (p *Program) Location(name string) (render.Location, bool) {
	return p.state.Reflection.Location(name)
}

// createProgram compiles src and creates its bind group and pipeline
// layouts. Pipelines are created on first draw.
func createProgram(e *Engine, src render.ProgramSource) (*Program, error) {
	refl, err := render.Reflect(src)
	if err != nil {
		return nil, err
	}
	p := &Program{
		engine:    e,
		state:     render.NewProgramState(refl),
		pipelines: make(map[pipelineKey]hal.RenderPipeline),
	}

	shader, err := e.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  src.Label + "_shader",
		Source: hal.ShaderSource{WGSL: src.WGSL},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: compile %s shader: %w", src.Label, err)
	}
	p.shader = shader

	layout, err := e.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   src.Label + "_layout",
		Entries: layoutEntries(refl),
	})
	if err != nil {
		p.release()
		return nil, fmt.Errorf("wgpu: create %s bind group layout: %w", src.Label, err)
	}
	p.layout = layout

	pipeLayout, err := e.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            src.Label + "_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{layout},
	})
	if err != nil {
		p.release()
		return nil, fmt.Errorf("wgpu: create %s pipeline layout: %w", src.Label, err)
	}
	p.pipeLayout = pipeLayout
	return p, nil
}

// layoutEntries derives the group 0 layout from a reflection:
//
//	uniform block: uniform buffer, vertex+fragment
//	textures:      texture_2d<f32>, fragment
//	samplers:      filtering sampler, fragment
func layoutEntries(r *render.Reflection) []gputypes.BindGroupLayoutEntry {
	var entries []gputypes.BindGroupLayoutEntry
	if r.UniformSize > 0 {
		entries = append(entries, gputypes.BindGroupLayoutEntry{
			Binding:    r.UniformBinding,
			Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
		})
	}
	for _, loc := range r.Textures {
		entries = append(entries, gputypes.BindGroupLayoutEntry{
			Binding:    loc.Binding,
			Visibility: gputypes.ShaderStageFragment,
			Texture: &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeFloat,
				ViewDimension: gputypes.TextureViewDimension2D,
			},
		})
	}
	for _, loc := range r.Samplers {
		entries = append(entries, gputypes.BindGroupLayoutEntry{
			Binding:    loc.Binding,
			Visibility: gputypes.ShaderStageFragment,
			Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
		})
	}
	return entries
}

// pipeline returns the pipeline variant for dst, creating it on first use.
// Blending is disabled: every pass replaces the destination.
func (p *Program) pipeline(dst *Target) (hal.RenderPipeline, error) {
	key := pipelineKey{format: dst.format, depthStencil: dst.HasDepthStencil()}
	if pl, ok := p.pipelines[key]; ok {
		return pl, nil
	}

	label := fmt.Sprintf("%s_pipeline_%s", p.Label(), key.format)
	replace := gputypes.BlendStateReplace()
	desc := &hal.RenderPipelineDescriptor{
		Label:  label,
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: render.VertexEntryPoint,
			Buffers:    vertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: render.FragmentEntryPoint,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    key.format,
					Blend:     &replace,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	}
	if key.depthStencil {
		// Passes draw inside a depth/stencil pass without testing against it.
		desc.Label += "_with_stencil"
		desc.DepthStencil = &hal.DepthStencilState{
			Format:            depthStencilFormat,
			DepthWriteEnabled: false,
			DepthCompare:      gputypes.CompareFunctionAlways,
			StencilFront: hal.StencilFaceState{
				Compare:     gputypes.CompareFunctionAlways,
				FailOp:      hal.StencilOperationKeep,
				DepthFailOp: hal.StencilOperationKeep,
				PassOp:      hal.StencilOperationKeep,
			},
			StencilBack: hal.StencilFaceState{
				Compare:     gputypes.CompareFunctionAlways,
				FailOp:      hal.StencilOperationKeep,
				DepthFailOp: hal.StencilOperationKeep,
				PassOp:      hal.StencilOperationKeep,
			},
			StencilReadMask:  0x00,
			StencilWriteMask: 0x00,
		}
	}

	pl, err := p.engine.device.CreateRenderPipeline(desc)
	if err != nil {
		return nil, fmt.Errorf("wgpu: create %s: %w", desc.Label, err)
	}
	p.pipelines[key] = pl
	render.Logger().Debug("wgpu: pipeline created", "program", p.Label(), "format", key.format, "depthStencil", key.depthStencil)
	return pl, nil
}

// vertexLayout matches VertexInput of the programs:
//
//	location 0: position (vec2<f32>)
//	location 1: uv       (vec2<f32>)
func vertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: vertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1}, // uv
			},
		},
	}
}

// release destroys pipelines and layouts in reverse creation order.
func (p *Program) release() {
	d := p.engine.device
	for key, pl := range p.pipelines {
		d.DestroyRenderPipeline(pl)
		delete(p.pipelines, key)
	}
	if p.pipeLayout != nil {
		d.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.layout != nil {
		d.DestroyBindGroupLayout(p.layout)
		p.layout = nil
	}
	if p.shader != nil {
		d.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}
