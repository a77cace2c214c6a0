// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package software provides a CPU reference implementation of
// render.Engine.
//
// The engine stores targets as float32 RGBA, rasterizes triangles over the
// bound viewport and evaluates one Go fragment kernel per program,
// selected by program label. Kernels for the blur, mix and dither_mix
// programs are built in; RegisterKernel adds others. Uniform and texture
// inputs go through the same naga reflection as the GPU engine, so a
// program that links here links there too.
//
// Targets with 8-bit formats are quantized on every write, matching what
// a GPU stores. The engine is intended for tests and golden images, not
// for production blurring.
//
// Draws into large targets are split into row bands shaded on a shared
// worker pool. Fragments never read the target they write, so the result
// does not depend on the band split.
//
// The engine registers itself as "software" with render.Register.
package software
