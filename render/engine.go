// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"

	"github.com/gogpu/gputypes"
)

// Engine errors.
var (
	// ErrFeedbackLoop is returned by Draw when a texture bound to the
	// current program is also the bound render target.
	ErrFeedbackLoop = errors.New("render: draw samples the bound target")

	// ErrNoProgram is returned when drawing or setting uniforms without a
	// program in use.
	ErrNoProgram = errors.New("render: no program in use")

	// ErrLocationKind is returned when a Location is used with the wrong
	// setter (a texture location passed to SetUniform, for example).
	ErrLocationKind = errors.New("render: location kind mismatch")

	// ErrForeignResource is returned when a target, program or buffer
	// created by another engine is passed in.
	ErrForeignResource = errors.New("render: resource belongs to another engine")

	// ErrInvalidDescriptor is returned for zero-sized targets and similar
	// malformed requests.
	ErrInvalidDescriptor = errors.New("render: invalid descriptor")
)

// Engine is the rendering capability consumed by the blur filter.
//
// An Engine is a single-threaded command stream: calls are executed (or
// submitted) in order, and state set by BindTarget, SetViewport and
// UseProgram persists until changed. Engines are not safe for concurrent
// use.
type Engine interface {
	// CreateTarget allocates an offscreen color target.
	CreateTarget(desc TargetDescriptor) (Target, error)

	// UploadTarget replaces the contents of t with tightly packed RGBA8
	// pixels (len == Width*Height*4).
	UploadTarget(t Target, pixels []byte) error

	// DestroyTarget releases t. Destroying the bound target unbinds it.
	DestroyTarget(t Target)

	// CreateProgram compiles a WGSL program.
	CreateProgram(src ProgramSource) (Program, error)

	// DestroyProgram releases p.
	DestroyProgram(p Program)

	// CreateVertexBuffer uploads interleaved (x, y, u, v) vertices.
	CreateVertexBuffer(label string, vertices []float32) (VertexBuffer, error)

	// DestroyVertexBuffer releases b.
	DestroyVertexBuffer(b VertexBuffer)

	// BindTarget makes t the destination of subsequent draws.
	// A nil target selects the engine's output surface.
	BindTarget(t Target) error

	// BoundTarget returns the current destination, nil for the output surface.
	BoundTarget() Target

	// SetViewport sets the pixel rectangle draws are mapped to.
	SetViewport(v Viewport)

	// UseProgram selects the program for subsequent SetTexture, SetUniform
	// and Draw calls. Texture and uniform state is per program.
	UseProgram(p Program) error

	// SetTexture binds t to a texture location of the current program.
	SetTexture(loc Location, t Target) error

	// SetUniform writes float32 values to a uniform location of the
	// current program.
	SetUniform(loc Location, values ...float32) error

	// Draw renders the vertices of b with the current program into the
	// bound target, preserving existing contents outside the geometry.
	Draw(b VertexBuffer) error

	// Clear fills the whole bound target with c.
	Clear(c gputypes.Color) error

	// OutputFormat reports the pixel format of the output surface.
	OutputFormat() gputypes.TextureFormat
}

// OutputConfigurer is implemented by engines that own their output
// surface and can (re)size it.
type OutputConfigurer interface {
	ConfigureOutput(width, height int, format gputypes.TextureFormat) error
}

// TargetDescriptor describes an offscreen render target.
type TargetDescriptor struct {
	// Label is an optional debug label.
	Label string

	// Width and Height are the target size in pixels.
	Width, Height int

	// Format is the color format. TextureFormatUndefined selects RGBA8Unorm.
	Format gputypes.TextureFormat

	// DepthStencil attaches a Depth24PlusStencil8 buffer to the target.
	DepthStencil bool
}

// Validate reports ErrInvalidDescriptor for non-positive sizes.
func (d TargetDescriptor) Validate() error {
	if d.Width <= 0 || d.Height <= 0 {
		return ErrInvalidDescriptor
	}
	return nil
}

// ColorFormat returns the descriptor format with the default applied.
func (d TargetDescriptor) ColorFormat() gputypes.TextureFormat {
	if d.Format == gputypes.TextureFormatUndefined {
		return gputypes.TextureFormatRGBA8Unorm
	}
	return d.Format
}

// Target is an engine-owned render target.
type Target interface {
	Label() string
	Width() int
	Height() int
	Format() gputypes.TextureFormat
	HasDepthStencil() bool
}

// Program is a compiled program with reflected locations.
type Program interface {
	Label() string

	// Location returns the location of a uniform member, texture or
	// sampler by its WGSL name.
	Location(name string) (Location, bool)
}

// VertexBuffer is an engine-owned vertex buffer.
type VertexBuffer interface {
	Label() string

	// VertexCount is the number of (x, y, u, v) vertices.
	VertexCount() int
}

// Viewport is a pixel rectangle in target coordinates, origin top-left.
type Viewport struct {
	X, Y          int
	Width, Height int
}

// FullViewport returns the viewport covering all of t.
func FullViewport(t Target) Viewport {
	return Viewport{Width: t.Width(), Height: t.Height()}
}

// VertexStride is the number of float32 values per vertex (x, y, u, v).
const VertexStride = 4
