// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package kawase

import (
	"fmt"

	"github.com/chewxy/math32"
	"golang.org/x/image/math/f32"
)

// fboScalePercent is the downsample factor applied to the ping-pong
// targets, in percent of the display size.
const fboScalePercent = 15

const (
	// FboScale is the size of the ping-pong targets relative to the display.
	FboScale = float32(fboScalePercent) / 100

	// MaxPasses bounds the number of blur passes per frame.
	MaxPasses = 4

	// MaxCrossFadeRadius is the radius at and above which the blurred
	// image fully replaces the composition.
	MaxCrossFadeRadius float32 = 30

	// MaxRadius is the default ceiling requested radii are clamped to.
	MaxRadius = 300

	// DitherSize is the edge length of the dither pattern texture.
	DitherSize = 64
)

// radiusPerPass converts a requested radius in display pixels to the
// blur extent covered by the passes.
const radiusPerPass float32 = 6

// PassPlan is the per-frame blur schedule derived from a radius.
type PassPlan struct {
	// Radius is the clamped radius the plan was built for.
	Radius int

	// Passes is the number of blur passes, 0 only for radius 0.
	Passes int

	// Step is the base tap offset in texture coordinates.
	Step f32.Vec2

	// Offsets holds the offset uniform of each pass.
	Offsets []f32.Vec2

	// Opacity is the cross-fade factor between composition and blur.
	Opacity float32
}

// String formats the plan for logs and the CLI.
func (p PassPlan) String() string {
	return fmt.Sprintf("radius=%d passes=%d step=(%.6f, %.6f) opacity=%.3f",
		p.Radius, p.Passes, p.Step[0], p.Step[1], p.Opacity)
}

// PassCount returns the number of blur passes for radius: ceil(radius/6),
// capped at MaxPasses. Radius 0 (and below) needs no passes.
func PassCount(radius int) int {
	if radius <= 0 {
		return 0
	}
	n := int(math32.Ceil(float32(radius) / radiusPerPass))
	return min(n, MaxPasses)
}

// CrossFadeOpacity returns min(1, radius/MaxCrossFadeRadius), 0 for
// non-positive radii.
func CrossFadeOpacity(radius int) float32 {
	if radius <= 0 {
		return 0
	}
	return math32.Min(1, float32(radius)/MaxCrossFadeRadius)
}

// DownsampledSize returns the ping-pong target size for a display:
// floor(size * FboScale) per axis, at least one pixel.
func DownsampledSize(width, height int) (int, int) {
	return max(1, width*fboScalePercent/100), max(1, height*fboScalePercent/100)
}

// ClampRadius limits radius to [0, maxRadius].
func ClampRadius(radius, maxRadius int) int {
	return max(0, min(radius, maxRadius))
}

// PlanPasses builds the pass schedule for radius over a composition of
// the given size. The blur extent radius/6 is split evenly over the
// passes; pass i samples at (i+1) times the per-pass step, and every
// other pass mirrors the offset onto the opposite diagonal.
func PlanPasses(radius, width, height int) PassPlan {
	radius = max(0, radius)
	plan := PassPlan{
		Radius:  radius,
		Passes:  PassCount(radius),
		Opacity: CrossFadeOpacity(radius),
	}
	if plan.Passes == 0 || width <= 0 || height <= 0 {
		return plan
	}

	perPass := float32(radius) / radiusPerPass / float32(plan.Passes)
	plan.Step = f32.Vec2{perPass / float32(width), perPass / float32(height)}
	plan.Offsets = make([]f32.Vec2, plan.Passes)
	for i := range plan.Offsets {
		k := float32(i + 1)
		off := f32.Vec2{plan.Step[0] * k, plan.Step[1] * k}
		if i%2 == 1 {
			off[1] = -off[1]
		}
		plan.Offsets[i] = off
	}
	return plan
}

// OffsetLength returns the length of a pass offset in texture coordinates.
func OffsetLength(v f32.Vec2) float32 {
	return math32.Sqrt(v[0]*v[0] + v[1]*v[1])
}
