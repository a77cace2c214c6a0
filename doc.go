// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package kawase implements a real-time Kawase blur for display
// compositors.
//
// # Overview
//
// A [BlurFilter] captures the scene behind a translucent surface into a
// full resolution composition target, blurs a 15% downsampled copy of it
// with up to four ping-pong passes of a two-tap kernel, and composites the
// result back over the caller's framebuffer. Small radii cross-fade with
// the sharp composition to hide downsampling artifacts, and the final
// layer can be dithered to mask 8-bit banding.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/kawase"
//	    "github.com/gogpu/kawase/render"
//	    _ "github.com/gogpu/kawase/backend/wgpu"
//	)
//
//	engine, err := render.NewEngine("wgpu", deviceHandle)
//	filter, err := kawase.NewBlurFilter(engine, kawase.WithDitherPattern(noise))
//	defer filter.Close()
//
//	// Every frame:
//	display := kawase.DisplaySettings{Bounds: image.Rect(0, 0, 1920, 1080)}
//	if err := filter.SetAsDrawTarget(display, 40); err != nil {
//	    // skip the blur this frame
//	}
//	drawScene(engine)      // lands in the composition target
//	filter.Prepare()       // blur passes
//	filter.Render(1, 0)    // composite onto the caller's target
//
// # Frame Sequence
//
// The filter is a small state machine (see [State]): SetAsDrawTarget moves
// it to [StateTargetBound], Prepare to [StatePrepared] and Render back to
// [StateIdle]. Calls out of order fail with [ErrNotBound] or
// [ErrNotPrepared]. A failed call drops the frame: the caller renders
// unblurred content and starts over with SetAsDrawTarget next frame.
//
// # Engines
//
// All GPU work goes through a [render.Engine]. Production code uses the
// gogpu/wgpu engine in backend/wgpu; tests use the recording engine or the
// CPU reference engine in backend/software.
package kawase
