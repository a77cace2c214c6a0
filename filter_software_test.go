// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package kawase

import (
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/kawase/backend/software"
)

// renderSoftware runs one full frame of f on a software engine with img as
// the captured scene and returns the output surface.
func renderSoftware(t *testing.T, img image.Image, radius int, opts ...Option) *image.RGBA {
	t.Helper()
	b := img.Bounds()
	eng := software.NewEngine()
	if err := eng.ConfigureOutput(b.Dx(), b.Dy(), gputypes.TextureFormatRGBA8Unorm); err != nil {
		t.Fatal(err)
	}
	f, err := NewBlurFilter(eng, opts...)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if err := f.SetAsDrawTarget(DisplaySettings{Bounds: image.Rect(0, 0, b.Dx(), b.Dy())}, radius); err != nil {
		t.Fatal(err)
	}
	if err := eng.DrawImage(img); err != nil {
		t.Fatal(err)
	}
	if err := f.Prepare(); err != nil {
		t.Fatal(err)
	}
	if err := f.Render(1, 0); err != nil {
		t.Fatal(err)
	}
	out, err := eng.ReadPixels(nil)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func TestSoftwareZeroRadiusIsIdentity(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			c := color.RGBA{R: 30, G: 60, B: 90, A: 255}
			if (x/8+y/8)%2 == 0 {
				c = color.RGBA{R: 220, G: 180, B: 140, A: 255}
			}
			src.SetRGBA(x, y, c)
		}
	}

	out := renderSoftware(t, src, 0)
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			want, got := src.RGBAAt(x, y), out.RGBAAt(x, y)
			if absDiff(want.R, got.R) > 1 || absDiff(want.G, got.G) > 1 || absDiff(want.B, got.B) > 1 {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestSoftwareFlatColorPreserved(t *testing.T) {
	flat := color.RGBA{R: 200, G: 100, B: 50, A: 255}
	src := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i], src.Pix[i+1], src.Pix[i+2], src.Pix[i+3] = flat.R, flat.G, flat.B, flat.A
	}
	noise := image.NewGray(image.Rect(0, 0, DitherSize, DitherSize))
	for i := range noise.Pix {
		noise.Pix[i] = 128
	}

	out := renderSoftware(t, src, 40, WithDitherPattern(noise))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			got := out.RGBAAt(x, y)
			if absDiff(got.R, flat.R) > 1 || absDiff(got.G, flat.G) > 1 || absDiff(got.B, flat.B) > 1 {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, flat)
			}
		}
	}
}

func TestSoftwareBlurSmoothsEdge(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 32; x < 64; x++ {
			src.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
		for x := 0; x < 32; x++ {
			src.SetRGBA(x, y, color.RGBA{A: 255})
		}
	}

	out := renderSoftware(t, src, 12)
	row := 24
	for x := 1; x < 64; x++ {
		if out.RGBAAt(x, row).R < out.RGBAAt(x-1, row).R {
			t.Fatalf("row not monotonic at x=%d: %d < %d", x, out.RGBAAt(x, row).R, out.RGBAAt(x-1, row).R)
		}
	}
	if got := out.RGBAAt(31, row).R; got < 10 {
		t.Errorf("dark side of the edge = %d, want blur to bleed in", got)
	}
	if got := out.RGBAAt(32, row).R; got > 245 {
		t.Errorf("bright side of the edge = %d, want blur to bleed in", got)
	}
	if out.RGBAAt(0, row).R >= out.RGBAAt(63, row).R {
		t.Error("blur erased the edge")
	}
}
