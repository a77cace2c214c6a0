// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/kawase/internal/parallel"
	"github.com/gogpu/kawase/render"
)

// Engine errors.
var (
	// ErrDestroyed is returned when a released resource is used.
	ErrDestroyed = errors.New("software: resource destroyed")

	// ErrNoOutput is returned when drawing to an output that was never
	// configured.
	ErrNoOutput = errors.New("software: output not configured")
)

func init() {
	render.Register("software", func(render.DeviceHandle) (render.Engine, error) {
		return NewEngine(), nil
	})
}

// Program is a reflected program paired with its fragment kernel.
type Program struct {
	engine    *Engine
	state     *render.ProgramState
	kernel    Kernel
	destroyed bool
}

// Label implements render.Program.
func (p *Program) Label() string { return p.state.Reflection.Label }

// Location implements render.Program.
func (p *Program) Location(name string) (render.Location, bool) {
	return p.state.Reflection.Location(name)
}

// VertexBuffer holds (x, y, u, v) vertices in host memory.
type VertexBuffer struct {
	engine    *Engine
	label     string
	vertices  []float32
	destroyed bool
}

// Label implements render.VertexBuffer.
func (b *VertexBuffer) Label() string { return b.label }

// VertexCount implements render.VertexBuffer.
func (b *VertexBuffer) VertexCount() int { return len(b.vertices) / render.VertexStride }

// Engine is a render.Engine that draws on the CPU.
type Engine struct {
	output       *Target
	outputFormat gputypes.TextureFormat

	bound    *Target
	viewport render.Viewport
	program  *Program

	programs map[*Program]struct{}

	// pool shades row bands of large draws; nil draws serially.
	pool *parallel.Pool
}

// Draws covering fewer pixels, or bands thinner than parallelMinRows, are
// not split.
const (
	parallelMinPixels = 128 * 128
	parallelMinRows   = 16
)

// NewEngine creates a software engine. The output is unconfigured until
// ConfigureOutput is called. Large draws are shaded on the shared worker
// pool.
func NewEngine() *Engine {
	return &Engine{
		outputFormat: gputypes.TextureFormatRGBA8Unorm,
		programs:     make(map[*Program]struct{}),
		pool:         parallel.Shared(),
	}
}

// ConfigureOutput implements render.OutputConfigurer. It allocates a
// cleared output surface, replacing any previous one.
func (e *Engine) ConfigureOutput(width, height int, format gputypes.TextureFormat) error {
	desc := render.TargetDescriptor{Label: "software_output", Width: width, Height: height, Format: format}
	if err := desc.Validate(); err != nil {
		return err
	}
	e.output = newTarget(e, desc)
	e.outputFormat = e.output.format
	render.Logger().Debug("software: output configured", "width", width, "height", height, "format", e.outputFormat)
	return nil
}

// Output returns the output surface, or nil before ConfigureOutput.
func (e *Engine) Output() *Target { return e.output }

// OutputFormat implements render.Engine.
func (e *Engine) OutputFormat() gputypes.TextureFormat { return e.outputFormat }

func (e *Engine) target(t render.Target) (*Target, error) {
	st, ok := t.(*Target)
	if !ok || st.engine != e {
		return nil, render.ErrForeignResource
	}
	if st.destroyed {
		return nil, fmt.Errorf("%w: %s", ErrDestroyed, st.label)
	}
	return st, nil
}

// destination returns the target draws write to.
func (e *Engine) destination() (*Target, error) {
	if e.bound != nil {
		return e.bound, nil
	}
	if e.output == nil {
		return nil, ErrNoOutput
	}
	return e.output, nil
}

// CreateTarget implements render.Engine. New targets are transparent black.
func (e *Engine) CreateTarget(desc render.TargetDescriptor) (render.Target, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	return newTarget(e, desc), nil
}

// UploadTarget implements render.Engine.
func (e *Engine) UploadTarget(t render.Target, pixels []byte) error {
	st, err := e.target(t)
	if err != nil {
		return err
	}
	if want := st.width * st.height * 4; len(pixels) != want {
		return fmt.Errorf("%w: upload of %d bytes into %dx%d", render.ErrInvalidDescriptor, len(pixels), st.width, st.height)
	}
	for i, b := range pixels {
		st.pix[i] = float32(b) / 255
	}
	return nil
}

// DestroyTarget implements render.Engine.
func (e *Engine) DestroyTarget(t render.Target) {
	st, err := e.target(t)
	if err != nil {
		return
	}
	st.destroyed = true
	st.pix = nil
	if e.bound == st {
		e.bound = nil
	}
	for p := range e.programs {
		p.state.Forget(st)
	}
}

// CreateProgram implements render.Engine. The program label selects the
// kernel, see RegisterKernel.
func (e *Engine) CreateProgram(src render.ProgramSource) (render.Program, error) {
	kernel, err := lookupKernel(src.Label)
	if err != nil {
		return nil, err
	}
	refl, err := render.Reflect(src)
	if err != nil {
		return nil, err
	}
	p := &Program{engine: e, state: render.NewProgramState(refl), kernel: kernel}
	e.programs[p] = struct{}{}
	return p, nil
}

// DestroyProgram implements render.Engine.
func (e *Engine) DestroyProgram(p render.Program) {
	sp, ok := p.(*Program)
	if !ok || sp.engine != e || sp.destroyed {
		return
	}
	sp.destroyed = true
	delete(e.programs, sp)
	if e.program == sp {
		e.program = nil
	}
}

// CreateVertexBuffer implements render.Engine.
func (e *Engine) CreateVertexBuffer(label string, vertices []float32) (render.VertexBuffer, error) {
	if len(vertices) == 0 || len(vertices)%(render.VertexStride*3) != 0 {
		return nil, fmt.Errorf("%w: %d floats is not a whole number of triangles", render.ErrInvalidDescriptor, len(vertices))
	}
	return &VertexBuffer{engine: e, label: label, vertices: slices.Clone(vertices)}, nil
}

// DestroyVertexBuffer implements render.Engine.
func (e *Engine) DestroyVertexBuffer(b render.VertexBuffer) {
	sb, ok := b.(*VertexBuffer)
	if !ok || sb.engine != e {
		return
	}
	sb.destroyed = true
	sb.vertices = nil
}

// BindTarget implements render.Engine. A nil target selects the output.
func (e *Engine) BindTarget(t render.Target) error {
	if t == nil {
		e.bound = nil
		return nil
	}
	st, err := e.target(t)
	if err != nil {
		return err
	}
	e.bound = st
	return nil
}

// BoundTarget implements render.Engine.
func (e *Engine) BoundTarget() render.Target {
	if e.bound == nil {
		return nil
	}
	return e.bound
}

// SetViewport implements render.Engine.
func (e *Engine) SetViewport(v render.Viewport) { e.viewport = v }

// UseProgram implements render.Engine.
func (e *Engine) UseProgram(p render.Program) error {
	sp, ok := p.(*Program)
	if !ok || sp.engine != e {
		return render.ErrForeignResource
	}
	if sp.destroyed {
		return fmt.Errorf("%w: program %s", ErrDestroyed, sp.Label())
	}
	e.program = sp
	return nil
}

// SetTexture implements render.Engine.
func (e *Engine) SetTexture(loc render.Location, t render.Target) error {
	if e.program == nil {
		return render.ErrNoProgram
	}
	st, err := e.target(t)
	if err != nil {
		return err
	}
	return e.program.state.SetTexture(loc, st)
}

// SetUniform implements render.Engine.
func (e *Engine) SetUniform(loc render.Location, values ...float32) error {
	if e.program == nil {
		return render.ErrNoProgram
	}
	return e.program.state.SetUniform(loc, values...)
}

// Draw implements render.Engine. Every triangle of b is rasterized into
// the bound target, clipped to the viewport, and shaded by the program's
// kernel.
func (e *Engine) Draw(b render.VertexBuffer) error {
	sb, ok := b.(*VertexBuffer)
	if !ok || sb.engine != e {
		return render.ErrForeignResource
	}
	if sb.destroyed {
		return fmt.Errorf("%w: buffer %s", ErrDestroyed, sb.label)
	}
	if e.program == nil {
		return render.ErrNoProgram
	}
	dst, err := e.destination()
	if err != nil {
		return err
	}
	var bound render.Target
	if e.bound != nil {
		bound = e.bound
	}
	if err := e.program.state.CheckDraw(bound); err != nil {
		return err
	}

	in := Inputs{state: e.program.state}
	kernel := e.program.kernel
	shade := func(x, y int, u, v float32) {
		dst.set(x, y, kernel(in, Fragment{X: x, Y: y, U: u, V: v}))
	}

	// CheckDraw guarantees dst is not sampled, so fragments write in place
	// and bands can be shaded concurrently.
	const stride = render.VertexStride
	vs := sb.vertices
	var tris [][3]vertex
	for i := 0; i+3*stride <= len(vs); i += 3 * stride {
		tris = append(tris, [3]vertex{
			toPixels(e.viewport, vs[i:i+stride]),
			toPixels(e.viewport, vs[i+stride:i+2*stride]),
			toPixels(e.viewport, vs[i+2*stride:i+3*stride]),
		})
	}

	bands := []parallel.Band{{Y0: 0, Y1: dst.height}}
	pool := e.pool
	if pool != nil && dst.width*dst.height >= parallelMinPixels {
		bands = parallel.Bands(dst.height, pool.Workers()*2, parallelMinRows)
	}
	run := func(i int) {
		for _, t := range tris {
			rasterizeRows(dst, e.viewport, bands[i], t[0], t[1], t[2], shade)
		}
	}
	if len(bands) == 1 {
		run(0)
		return nil
	}
	pool.Run(len(bands), run)
	return nil
}

// Clear implements render.Engine. The whole bound target is cleared,
// regardless of the viewport.
func (e *Engine) Clear(c gputypes.Color) error {
	dst, err := e.destination()
	if err != nil {
		return err
	}
	dst.fill([4]float32{float32(c.R), float32(c.G), float32(c.B), float32(c.A)})
	return nil
}

var (
	_ render.Engine           = (*Engine)(nil)
	_ render.OutputConfigurer = (*Engine)(nil)
)
