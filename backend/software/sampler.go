// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"github.com/chewxy/math32"
	"github.com/gogpu/kawase/render"
)

// sample filters t bilinearly at normalized coordinates (u, v), with texel
// centers at half-integer positions.
func sample(t *Target, mode render.SamplerMode, u, v float32) [4]float32 {
	x := u*float32(t.width) - 0.5
	y := v*float32(t.height) - 0.5
	x0 := math32.Floor(x)
	y0 := math32.Floor(y)
	fx := x - x0
	fy := y - y0

	ix0 := wrap(int(x0), t.width, mode)
	ix1 := wrap(int(x0)+1, t.width, mode)
	iy0 := wrap(int(y0), t.height, mode)
	iy1 := wrap(int(y0)+1, t.height, mode)

	c00 := t.At(ix0, iy0)
	c10 := t.At(ix1, iy0)
	c01 := t.At(ix0, iy1)
	c11 := t.At(ix1, iy1)

	var out [4]float32
	for k := range out {
		top := c00[k] + (c10[k]-c00[k])*fx
		bottom := c01[k] + (c11[k]-c01[k])*fx
		out[k] = top + (bottom-top)*fy
	}
	return out
}

// wrap maps a texel index into [0, n) with the sampler's address mode.
func wrap(i, n int, mode render.SamplerMode) int {
	if mode == render.SamplerRepeat {
		i %= n
		if i < 0 {
			i += n
		}
		return i
	}
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
