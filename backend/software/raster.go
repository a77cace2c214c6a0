// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"github.com/chewxy/math32"
	"github.com/gogpu/kawase/internal/parallel"
	"github.com/gogpu/kawase/render"
)

// vertex is a rasterizer input: position in pixels and texture coordinate.
type vertex struct {
	x, y float32
	u, v float32
}

// toPixels maps a (x, y, u, v) vertex from normalized device coordinates
// into the viewport. NDC y grows upwards, pixel rows grow downwards.
func toPixels(vp render.Viewport, in []float32) vertex {
	return vertex{
		x: float32(vp.X) + (in[0]+1)/2*float32(vp.Width),
		y: float32(vp.Y) + (1-in[1])/2*float32(vp.Height),
		u: in[2],
		v: in[3],
	}
}

// edge returns twice the signed area of (a, b, p).
func edge(a, b vertex, px, py float32) float32 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// rasterize calls shade for every pixel of dst whose center lies inside
// triangle (a, b, c) and inside the viewport. shade receives the pixel and
// the interpolated texture coordinate.
func rasterize(dst *Target, vp render.Viewport, a, b, c vertex, shade func(x, y int, u, v float32)) {
	rasterizeRows(dst, vp, parallel.Band{Y0: 0, Y1: dst.height}, a, b, c, shade)
}

// rasterizeRows is rasterize restricted to the rows of band. Calls for
// disjoint bands touch disjoint pixels.
func rasterizeRows(dst *Target, vp render.Viewport, band parallel.Band, a, b, c vertex, shade func(x, y int, u, v float32)) {
	area := edge(a, b, c.x, c.y)
	if area == 0 {
		return
	}

	minX := max(vp.X, 0, int(math32.Floor(min(a.x, b.x, c.x))))
	minY := max(vp.Y, band.Y0, int(math32.Floor(min(a.y, b.y, c.y))))
	maxX := min(vp.X+vp.Width, dst.width, int(math32.Ceil(max(a.x, b.x, c.x))))
	maxY := min(vp.Y+vp.Height, band.Y1, dst.height, int(math32.Ceil(max(a.y, b.y, c.y))))

	for y := minY; y < maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x < maxX; x++ {
			px := float32(x) + 0.5
			w0 := edge(b, c, px, py) / area
			w1 := edge(c, a, px, py) / area
			w2 := edge(a, b, px, py) / area
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			u := w0*a.u + w1*b.u + w2*c.u
			v := w0*a.v + w1*b.v + w2*c.v
			shade(x, y, u, v)
		}
	}
}
