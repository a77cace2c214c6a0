// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package kawase

import (
	"image"

	"github.com/gogpu/gputypes"
)

// Option configures a BlurFilter during creation.
//
// Example:
//
//	filter, err := kawase.NewBlurFilter(engine,
//	    kawase.WithDitherPattern(noise),
//	    kawase.WithCompositionFormat(gputypes.TextureFormatRGBA16Float),
//	)
type Option func(*options)

type options struct {
	ditherPattern     image.Image
	compositionFormat gputypes.TextureFormat
	depthStencil      bool
	maxRadius         int
}

func defaultOptions() options {
	return options{
		compositionFormat: gputypes.TextureFormatRGBA8Unorm,
		maxRadius:         MaxRadius,
	}
}

// WithDitherPattern supplies the noise texture used to dither the final
// layer. The image is resampled to DitherSize x DitherSize; only its red
// channel is read. Without a pattern the filter never dithers.
func WithDitherPattern(img image.Image) Option {
	return func(o *options) {
		o.ditherPattern = img
	}
}

// WithCompositionFormat sets the format of the composition and ping-pong
// targets. The default is RGBA8Unorm.
func WithCompositionFormat(format gputypes.TextureFormat) Option {
	return func(o *options) {
		if format != gputypes.TextureFormatUndefined {
			o.compositionFormat = format
		}
	}
}

// WithDepthStencil attaches a depth/stencil buffer to the composition
// target for scene drawing that needs one.
func WithDepthStencil() Option {
	return func(o *options) {
		o.depthStencil = true
	}
}

// WithMaxRadius changes the ceiling requested radii are clamped to.
// Non-positive values are ignored.
func WithMaxRadius(radius int) Option {
	return func(o *options) {
		if radius > 0 {
			o.maxRadius = radius
		}
	}
}
