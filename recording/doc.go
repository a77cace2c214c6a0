// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package recording provides a render.Engine that records every call as a
// typed command instead of drawing.
//
// The recording engine keeps the same binding state a GPU engine would:
// the bound target, viewport, current program and per-program uniforms
// and textures. It enforces the same rules (no draw without a program, no
// draw sampling the bound target) so that pass orchestration can be
// verified without a GPU. Each Draw captures a snapshot of the inputs in
// effect, which makes assertions about pass order and uniform values
// straightforward.
//
// # Example
//
//	eng := recording.NewEngine()
//	filter, _ := kawase.NewBlurFilter(eng)
//	filter.SetAsDrawTarget(display, 20)
//	filter.Prepare()
//	for _, d := range eng.Draws() {
//	    fmt.Println(d.Program, d.Target, d.Uniforms["offset"])
//	}
//
// # Failure Injection
//
// FailAfter makes the n+1-th call of a command type fail, and HideLocation
// removes a name from every program's reflection. Both exist to exercise
// error paths of engine consumers.
//
// The engine registers itself as "recording" with render.Register.
package recording
