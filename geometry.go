// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package kawase

import (
	"fmt"

	"github.com/gogpu/kawase/render"
)

// fullscreenTriangle covers clip space with one triangle. Each vertex is
// (x, y, u, v); texture v runs top to bottom, so the visible square maps
// to uv [0,1]x[0,1].
var fullscreenTriangle = []float32{
	-1, -1, 0, 1,
	3, -1, 2, 1,
	-1, 3, 0, -1,
}

// fullscreenGeometry is the vertex buffer shared by every draw of a filter.
type fullscreenGeometry struct {
	buffer render.VertexBuffer
}

func newFullscreenGeometry(engine render.Engine) (*fullscreenGeometry, error) {
	b, err := engine.CreateVertexBuffer("kawase_fullscreen", fullscreenTriangle)
	if err != nil {
		return nil, fmt.Errorf("kawase: create fullscreen geometry: %w", err)
	}
	return &fullscreenGeometry{buffer: b}, nil
}

func (g *fullscreenGeometry) draw(engine render.Engine) error {
	return engine.Draw(g.buffer)
}

func (g *fullscreenGeometry) destroy(engine render.Engine) {
	if g.buffer != nil {
		engine.DestroyVertexBuffer(g.buffer)
		g.buffer = nil
	}
}
