// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package kawase

import "errors"

// Filter errors. Every failing call leaves the frame dropped; the caller
// renders unblurred content and retries with SetAsDrawTarget next frame.
var (
	// ErrNilEngine is returned by NewBlurFilter when no engine is given.
	ErrNilEngine = errors.New("kawase: nil engine")

	// ErrClosed is returned when using a filter after Close.
	ErrClosed = errors.New("kawase: filter closed")

	// ErrAllocation is returned when a render target cannot be created.
	ErrAllocation = errors.New("kawase: render target allocation failed")

	// ErrMissingUniform is returned by NewBlurFilter when a program lacks
	// an input the filter drives.
	ErrMissingUniform = errors.New("kawase: program input not found")

	// ErrNotBound is returned by Prepare without a preceding SetAsDrawTarget.
	ErrNotBound = errors.New("kawase: prepare requires SetAsDrawTarget")

	// ErrNotPrepared is returned by Render without a preceding Prepare.
	ErrNotPrepared = errors.New("kawase: render requires Prepare")

	// ErrInvalidDisplay is returned for empty display bounds.
	ErrInvalidDisplay = errors.New("kawase: empty display bounds")

	// ErrInvalidLayer is returned by Render for an out-of-range layer index.
	ErrInvalidLayer = errors.New("kawase: invalid layer index")

	// ErrInvalidDitherPattern is returned for an empty dither image.
	ErrInvalidDitherPattern = errors.New("kawase: empty dither pattern")
)
