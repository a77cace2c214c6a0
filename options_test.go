// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package kawase

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	if o.compositionFormat != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("compositionFormat = %v, want RGBA8Unorm", o.compositionFormat)
	}
	if o.maxRadius != MaxRadius {
		t.Errorf("maxRadius = %d, want %d", o.maxRadius, MaxRadius)
	}
	if o.ditherPattern != nil || o.depthStencil {
		t.Error("default options should carry no dither pattern and no depth/stencil")
	}
}

func TestOptions(t *testing.T) {
	pattern := image.NewGray(image.Rect(0, 0, 4, 4))
	tests := []struct {
		name  string
		opt   Option
		check func(o options) bool
	}{
		{"dither", WithDitherPattern(pattern), func(o options) bool { return o.ditherPattern == pattern }},
		{"format", WithCompositionFormat(gputypes.TextureFormatRGBA16Float),
			func(o options) bool { return o.compositionFormat == gputypes.TextureFormatRGBA16Float }},
		{"undefined format ignored", WithCompositionFormat(gputypes.TextureFormatUndefined),
			func(o options) bool { return o.compositionFormat == gputypes.TextureFormatRGBA8Unorm }},
		{"depth stencil", WithDepthStencil(), func(o options) bool { return o.depthStencil }},
		{"max radius", WithMaxRadius(40), func(o options) bool { return o.maxRadius == 40 }},
		{"non-positive max radius ignored", WithMaxRadius(0), func(o options) bool { return o.maxRadius == MaxRadius }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := defaultOptions()
			tt.opt(&o)
			if !tt.check(o) {
				t.Errorf("option %s not applied: %+v", tt.name, o)
			}
		})
	}
}

func TestDitherPixels(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		if _, err := ditherPixels(nil); !errors.Is(err, ErrInvalidDitherPattern) {
			t.Errorf("ditherPixels(nil) error = %v, want ErrInvalidDitherPattern", err)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if _, err := ditherPixels(image.NewGray(image.Rectangle{})); !errors.Is(err, ErrInvalidDitherPattern) {
			t.Errorf("ditherPixels(empty) error = %v, want ErrInvalidDitherPattern", err)
		}
	})

	t.Run("exact size", func(t *testing.T) {
		src := image.NewGray(image.Rect(0, 0, DitherSize, DitherSize))
		src.SetGray(3, 0, color.Gray{Y: 200})
		pix, err := ditherPixels(src)
		if err != nil {
			t.Fatal(err)
		}
		if len(pix) != DitherSize*DitherSize*4 {
			t.Fatalf("len = %d, want %d", len(pix), DitherSize*DitherSize*4)
		}
		if pix[3*4] != 200 || pix[3*4+3] != 255 {
			t.Errorf("pixel (3,0) = %v, want red 200 alpha 255", pix[3*4:3*4+4])
		}
	})

	t.Run("resampled", func(t *testing.T) {
		src := image.NewGray(image.Rect(0, 0, 2, 2))
		src.SetGray(1, 1, color.Gray{Y: 255})
		pix, err := ditherPixels(src)
		if err != nil {
			t.Fatal(err)
		}
		if len(pix) != DitherSize*DitherSize*4 {
			t.Fatalf("len = %d, want %d", len(pix), DitherSize*DitherSize*4)
		}
		// Nearest neighbour keeps each source value as a solid quadrant.
		if pix[0] != 0 {
			t.Errorf("top-left red = %d, want 0", pix[0])
		}
		last := (DitherSize*DitherSize - 1) * 4
		if pix[last] != 255 {
			t.Errorf("bottom-right red = %d, want 255", pix[last])
		}
	})
}
