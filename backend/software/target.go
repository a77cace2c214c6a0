// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"github.com/chewxy/math32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/kawase/render"
)

// Target is a CPU render target holding float32 RGBA texels, row-major
// with row 0 at the top.
type Target struct {
	engine       *Engine
	label        string
	width        int
	height       int
	format       gputypes.TextureFormat
	depthStencil bool
	quantize     bool
	pix          []float32
	destroyed    bool
}

func newTarget(e *Engine, desc render.TargetDescriptor) *Target {
	format := desc.ColorFormat()
	return &Target{
		engine:       e,
		label:        desc.Label,
		width:        desc.Width,
		height:       desc.Height,
		format:       format,
		depthStencil: desc.DepthStencil,
		quantize:     render.IsEightBit(format),
		pix:          make([]float32, desc.Width*desc.Height*4),
	}
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
func (t *Target) HasDepthStencil() bool { return t.depthStencil }

// At returns the stored texel at (x, y).
func (t *Target) At(x, y int) [4]float32 {
	i := (y*t.width + x) * 4
	return [4]float32{t.pix[i], t.pix[i+1], t.pix[i+2], t.pix[i+3]}
}

func (t *Target) set(x, y int, c [4]float32) {
	i := (y*t.width + x) * 4
	for k := range c {
		v := c[k]
		if t.quantize {
			v = quantize8(v)
		}
		t.pix[i+k] = v
	}
}

func (t *Target) fill(c [4]float32) {
	for y := 0; y < t.height; y++ {
		for x := 0; x < t.width; x++ {
			t.set(x, y, c)
		}
	}
}

// quantize8 rounds v to the nearest value representable in a unorm8
// channel.
func quantize8(v float32) float32 {
	return math32.Round(clamp01(v)*255) / 255
}

func clamp01(v float32) float32 {
	return math32.Max(0, math32.Min(1, v))
}
