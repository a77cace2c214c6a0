// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"image"
	"image/color"

	"github.com/gogpu/kawase/render"
	"golang.org/x/image/draw"
)

// DrawImage draws img over the whole bound target, scaling it bilinearly
// when the sizes differ. It stands in for the scene draw a compositor
// would issue between SetAsDrawTarget and Prepare.
func (e *Engine) DrawImage(img image.Image) error {
	dst, err := e.destination()
	if err != nil {
		return err
	}
	rgba := image.NewRGBA(image.Rect(0, 0, dst.width, dst.height))
	if img.Bounds().Size() == rgba.Bounds().Size() {
		draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	} else {
		draw.BiLinear.Scale(rgba, rgba.Bounds(), img, img.Bounds(), draw.Src, nil)
	}
	for y := 0; y < dst.height; y++ {
		for x := 0; x < dst.width; x++ {
			c := rgba.RGBAAt(x, y)
			dst.set(x, y, [4]float32{
				float32(c.R) / 255,
				float32(c.G) / 255,
				float32(c.B) / 255,
				float32(c.A) / 255,
			})
		}
	}
	return nil
}

// ReadPixels returns the contents of t as 8-bit RGBA. A nil t reads the
// output surface.
func (e *Engine) ReadPixels(t render.Target) (*image.RGBA, error) {
	var src *Target
	if t == nil {
		if e.output == nil {
			return nil, ErrNoOutput
		}
		src = e.output
	} else {
		st, err := e.target(t)
		if err != nil {
			return nil, err
		}
		src = st
	}

	img := image.NewRGBA(image.Rect(0, 0, src.width, src.height))
	for y := 0; y < src.height; y++ {
		for x := 0; x < src.width; x++ {
			c := src.At(x, y)
			img.SetRGBA(x, y, color.RGBA{
				R: to8(c[0]),
				G: to8(c[1]),
				B: to8(c[2]),
				A: to8(c[3]),
			})
		}
	}
	return img, nil
}

func to8(v float32) uint8 {
	return uint8(quantize8(v)*255 + 0.5)
}
