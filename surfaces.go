// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package kawase

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/kawase/render"
)

// surfacePool owns the offscreen targets of a filter: the full resolution
// composition, the two downsampled ping-pong targets and the dither
// pattern.
type surfacePool struct {
	engine       render.Engine
	format       gputypes.TextureFormat
	depthStencil bool

	composition render.Target
	pingPong    [2]render.Target
	dither      render.Target

	width, height int
}

func newSurfacePool(engine render.Engine, o options) *surfacePool {
	return &surfacePool{
		engine:       engine,
		format:       o.compositionFormat,
		depthStencil: o.depthStencil,
	}
}

// ensure (re)allocates the display-sized targets when the display size
// changed and reports whether it did. The new set is created before the
// old one is released, so a failure leaves the previous targets intact.
func (p *surfacePool) ensure(width, height int) (bool, error) {
	if p.composition != nil && p.width == width && p.height == height {
		return false, nil
	}

	bw, bh := DownsampledSize(width, height)
	descs := [3]render.TargetDescriptor{
		{Label: "kawase_composition", Width: width, Height: height, Format: p.format, DepthStencil: p.depthStencil},
		{Label: "kawase_ping", Width: bw, Height: bh, Format: p.format},
		{Label: "kawase_pong", Width: bw, Height: bh, Format: p.format},
	}
	var created [3]render.Target
	for i, desc := range descs {
		t, err := p.engine.CreateTarget(desc)
		if err != nil {
			for _, c := range created[:i] {
				p.engine.DestroyTarget(c)
			}
			return false, fmt.Errorf("%w: %s %dx%d: %w", ErrAllocation, desc.Label, desc.Width, desc.Height, err)
		}
		created[i] = t
	}

	p.releaseDisplayTargets()
	p.composition = created[0]
	p.pingPong = [2]render.Target{created[1], created[2]}
	p.width, p.height = width, height

	Logger().Info("kawase: surfaces allocated",
		"display", fmt.Sprintf("%dx%d", width, height),
		"blur", fmt.Sprintf("%dx%d", bw, bh),
		"format", p.format)
	return true, nil
}

// ensureDither creates the dither target once and uploads the pattern.
func (p *surfacePool) ensureDither(pixels []byte) error {
	if p.dither != nil {
		return nil
	}
	t, err := p.engine.CreateTarget(render.TargetDescriptor{
		Label:  "kawase_dither",
		Width:  DitherSize,
		Height: DitherSize,
		Format: gputypes.TextureFormatRGBA8Unorm,
	})
	if err != nil {
		return fmt.Errorf("%w: kawase_dither: %w", ErrAllocation, err)
	}
	if err := p.engine.UploadTarget(t, pixels); err != nil {
		p.engine.DestroyTarget(t)
		return fmt.Errorf("%w: upload dither pattern: %w", ErrAllocation, err)
	}
	p.dither = t
	return nil
}

func (p *surfacePool) releaseDisplayTargets() {
	if p.composition != nil {
		p.engine.DestroyTarget(p.composition)
		p.composition = nil
	}
	for i, t := range p.pingPong {
		if t != nil {
			p.engine.DestroyTarget(t)
			p.pingPong[i] = nil
		}
	}
	p.width, p.height = 0, 0
}

func (p *surfacePool) destroy() {
	p.releaseDisplayTargets()
	if p.dither != nil {
		p.engine.DestroyTarget(p.dither)
		p.dither = nil
	}
}
