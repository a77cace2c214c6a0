// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package kawase

import (
	"image"

	"golang.org/x/image/draw"
)

// ditherPixels converts a noise pattern into the RGBA8 upload for the
// dither target. Patterns of another size are resampled with nearest
// neighbour so individual noise values are not smeared.
func ditherPixels(pattern image.Image) ([]byte, error) {
	if pattern == nil || pattern.Bounds().Empty() {
		return nil, ErrInvalidDitherPattern
	}
	dst := image.NewRGBA(image.Rect(0, 0, DitherSize, DitherSize))
	if pattern.Bounds().Dx() == DitherSize && pattern.Bounds().Dy() == DitherSize {
		draw.Draw(dst, dst.Bounds(), pattern, pattern.Bounds().Min, draw.Src)
	} else {
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), pattern, pattern.Bounds(), draw.Src, nil)
	}
	return dst.Pix, nil
}
