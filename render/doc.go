// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package render defines the narrow rendering capability that the Kawase
// blur filter consumes.
//
// The filter never talks to a GPU API directly. It receives an [Engine]
// from the host application and drives it through a handful of calls:
// create and bind targets, compile programs, set uniforms and textures,
// and draw a full-screen triangle. This keeps the pass orchestration
// testable against a recording fake or the CPU reference engine, while
// production code runs on gogpu/wgpu.
//
// # Key Principle
//
// The filter RECEIVES its device from the host, it does NOT create one.
// A host that already owns a gogpu device passes it as a [DeviceHandle];
// engines that need raw HAL access obtain it through [HalProvider].
//
// # Programs and Locations
//
// Programs are WGSL sources with a vs_main and an fs_main entry point.
// [Reflect] parses and validates the source with naga and reports every
// uniform member, texture and sampler by name. Engines build their
// [Program] handles from the same reflection, so a [Location] resolved
// once at construction means the same thing on every engine.
//
// All resources are bound in group 0. Uniform members live in a single
// uniform struct and are written as float32 values.
//
// # Engines
//
// Engines register themselves by name, following the database/sql driver
// pattern:
//
//	import _ "github.com/gogpu/kawase/backend/software"
//
//	engine, err := render.NewEngine("software", render.NullDeviceHandle{})
//
// Available engines:
//   - "recording": records commands, no pixels (package recording)
//   - "software": CPU reference engine (package backend/software)
//   - "wgpu": gogpu/wgpu HAL engine (package backend/wgpu)
package render
