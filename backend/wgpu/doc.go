// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package wgpu implements render.Engine on the gogpu/wgpu hardware
// abstraction layer.
//
// Targets are HAL textures usable both as render attachments and as
// sampled textures. Each program compiles its WGSL into a shader module
// and derives its bind group layout from the naga reflection; render
// pipelines are created lazily per destination format and depth/stencil
// configuration. Samplers are shared per address mode.
//
// Every Draw and Clear encodes one render pass and submits it. Uniform
// buffers and bind groups created for a draw are released once the queue
// reports the submission complete.
//
// # Output
//
// The output (BindTarget(nil)) is either an engine-owned texture created
// by ConfigureOutput or a caller-provided view set with SetSurfaceView,
// typically the current swapchain image.
//
// # Registration
//
// The engine registers itself as "wgpu". The factory requires a
// render.DeviceHandle that also implements render.HalProvider.
package wgpu
