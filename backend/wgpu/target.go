// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/kawase/render"
	"github.com/gogpu/wgpu/hal"
)

// targetUsage lets one texture be drawn into, sampled, uploaded to and
// read back.
const targetUsage = gputypes.TextureUsageRenderAttachment |
	gputypes.TextureUsageTextureBinding |
	gputypes.TextureUsageCopyDst |
	gputypes.TextureUsageCopySrc

// depthStencilFormat is the format of optional depth/stencil attachments.
const depthStencilFormat = gputypes.TextureFormatDepth24PlusStencil8

// Target is a HAL texture with its view and optional depth/stencil
// attachment.
type Target struct {
	engine *Engine
	label  string
	width  int
	height int
	format gputypes.TextureFormat

	texture   hal.Texture
	view      hal.TextureView
	depthTex  hal.Texture
	depthView hal.TextureView

	// external targets wrap a caller-owned view and release nothing.
	external  bool
	destroyed bool
}

// Label implements render.Target.
func (t *Target) Label() string { return t.label }

// Width implements render.Target.
func (t *Target) Width() int { return t.width }

// Height implements render.Target.
func (t *Target) Height() int { return t.height }

// Format implements render.Target.
func (t *Target) Format() gputypes.TextureFormat { return t.format }

// HasDepthStencil implements render.Target.
func (t *Target) HasDepthStencil() bool { return t.depthView != nil }

// View returns the color view.
func (t *Target) View() hal.TextureView { return t.view }

func (t *Target) extent() hal.Extent3D {
	return hal.Extent3D{Width: uint32(t.width), Height: uint32(t.height), DepthOrArrayLayers: 1}
}

// createTarget allocates the textures of desc. On failure everything
// created so far is released.
func createTarget(e *Engine, desc render.TargetDescriptor) (*Target, error) {
	t := &Target{
		engine: e,
		label:  desc.Label,
		width:  desc.Width,
		height: desc.Height,
		format: desc.ColorFormat(),
	}
	size := t.extent()

	tex, err := e.device.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        t.format,
		Usage:         targetUsage,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create texture %s: %w", desc.Label, err)
	}
	t.texture = tex

	view, err := e.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         desc.Label + "_view",
		Format:        t.format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		t.release()
		return nil, fmt.Errorf("wgpu: create view %s: %w", desc.Label, err)
	}
	t.view = view

	if !desc.DepthStencil {
		return t, nil
	}

	depthTex, err := e.device.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label + "_depth_stencil",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        depthStencilFormat,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		t.release()
		return nil, fmt.Errorf("wgpu: create depth/stencil texture %s: %w", desc.Label, err)
	}
	t.depthTex = depthTex

	depthView, err := e.device.CreateTextureView(depthTex, &hal.TextureViewDescriptor{
		Label: desc.Label + "_depth_stencil_view",
	})
	if err != nil {
		t.release()
		return nil, fmt.Errorf("wgpu: create depth/stencil view %s: %w", desc.Label, err)
	}
	t.depthView = depthView
	return t, nil
}

// release destroys the target's HAL objects in reverse creation order.
func (t *Target) release() {
	if t.external {
		return
	}
	d := t.engine.device
	if t.depthView != nil {
		d.DestroyTextureView(t.depthView)
		t.depthView = nil
	}
	if t.depthTex != nil {
		d.DestroyTexture(t.depthTex)
		t.depthTex = nil
	}
	if t.view != nil {
		d.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.texture != nil {
		d.DestroyTexture(t.texture)
		t.texture = nil
	}
}
