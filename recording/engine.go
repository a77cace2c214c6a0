// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package recording

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/kawase/render"
)

// ErrDestroyed is returned when a released resource is used.
var ErrDestroyed = errors.New("recording: resource destroyed")

func init() {
	render.Register("recording", func(render.DeviceHandle) (render.Engine, error) {
		return NewEngine(), nil
	})
}

// Target is a recorded render target. It has a size and format but no
// pixels.
type Target struct {
	engine       *Engine
	label        string
	width        int
	height       int
	format       gputypes.TextureFormat
	depthStencil bool
	destroyed    bool
}

// Label implements render.Target.
func (t *Target) Label() string { return t.label }

// Width implements render.Target.
func (t *Target) Width() int { return t.width }

// Height implements render.Target.
func (t *Target) Height() int { return t.height }

// Format implements render.Target.
func (t *Target) Format() gputypes.TextureFormat { return t.format }

// HasDepthStencil implements render.Target.
func (t *Target) HasDepthStencil() bool { return t.depthStencil }

// Destroyed reports whether the target was released.
func (t *Target) Destroyed() bool { return t.destroyed }

// Program is a recorded program backed by a naga reflection.
type Program struct {
	engine    *Engine
	state     *render.ProgramState
	destroyed bool
}

// Label implements render.Program.
func (p *Program) Label() string { return p.state.Reflection.Label }

// Location implements render.Program.
func (p *Program) Location(name string) (render.Location, bool) {
	if p.engine.hidden[name] {
		return render.Location{}, false
	}
	return p.state.Reflection.Location(name)
}

// VertexBuffer is a recorded vertex buffer.
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

type failure struct {
	after int
	err   error
}

// Engine is a render.Engine that records commands.
type Engine struct {
	commands []Command
	calls    map[CommandType]int
	failures map[CommandType]failure
	hidden   map[string]bool

	bound    *Target
	viewport render.Viewport
	program  *Program

	outputWidth, outputHeight int
	outputFormat              gputypes.TextureFormat

	live map[*Target]struct{}
}

// NewEngine creates an empty recording engine with an RGBA8Unorm output.
func NewEngine() *Engine {
	return &Engine{
		calls:        make(map[CommandType]int),
		failures:     make(map[CommandType]failure),
		hidden:       make(map[string]bool),
		outputFormat: gputypes.TextureFormatRGBA8Unorm,
		live:         make(map[*Target]struct{}),
	}
}

// FailAfter makes calls of type ct fail with err once n of them have
// succeeded. A nil err removes the injection.
func (e *Engine) FailAfter(ct CommandType, n int, err error) {
	if err == nil {
		delete(e.failures, ct)
		return
	}
	e.failures[ct] = failure{after: e.calls[ct] + n, err: err}
}

// HideLocation makes Program.Location report name as missing.
func (e *Engine) HideLocation(name string) {
	e.hidden[name] = true
}

// Commands returns the recorded commands in call order.
func (e *Engine) Commands() []Command { return e.commands }

// CommandsOfType returns the recorded commands of one type.
func (e *Engine) CommandsOfType(ct CommandType) []Command {
	var out []Command
	for _, c := range e.commands {
		if c.Type() == ct {
			out = append(out, c)
		}
	}
	return out
}

// Count returns the number of recorded commands of type ct.
func (e *Engine) Count(ct CommandType) int {
	n := 0
	for _, c := range e.commands {
		if c.Type() == ct {
			n++
		}
	}
	return n
}

// Draws returns the recorded draw commands.
func (e *Engine) Draws() []DrawCommand {
	var out []DrawCommand
	for _, c := range e.commands {
		if d, ok := c.(DrawCommand); ok {
			out = append(out, d)
		}
	}
	return out
}

// Reset forgets recorded commands. Resources and binding state are kept.
func (e *Engine) Reset() {
	e.commands = e.commands[:0]
}

// LiveTargets returns the number of targets not yet destroyed.
func (e *Engine) LiveTargets() int { return len(e.live) }

// Viewport returns the current viewport.
func (e *Engine) Viewport() render.Viewport { return e.viewport }

// CurrentProgram returns the program in use, or nil.
func (e *Engine) CurrentProgram() render.Program {
	if e.program == nil {
		return nil
	}
	return e.program
}

func (e *Engine) record(c Command) error {
	ct := c.Type()
	if f, ok := e.failures[ct]; ok && e.calls[ct] >= f.after {
		return f.err
	}
	e.calls[ct]++
	e.commands = append(e.commands, c)
	return nil
}

func (e *Engine) target(t render.Target) (*Target, error) {
	rt, ok := t.(*Target)
	if !ok || rt.engine != e {
		return nil, render.ErrForeignResource
	}
	if rt.destroyed {
		return nil, fmt.Errorf("%w: %s", ErrDestroyed, rt.label)
	}
	return rt, nil
}

func (e *Engine) boundLabel() string {
	if e.bound == nil {
		return OutputLabel
	}
	return e.bound.label
}

// ConfigureOutput implements render.OutputConfigurer.
func (e *Engine) ConfigureOutput(width, height int, format gputypes.TextureFormat) error {
	if width <= 0 || height <= 0 {
		return render.ErrInvalidDescriptor
	}
	e.outputWidth, e.outputHeight = width, height
	if format != gputypes.TextureFormatUndefined {
		e.outputFormat = format
	}
	return nil
}

// OutputFormat implements render.Engine.
func (e *Engine) OutputFormat() gputypes.TextureFormat { return e.outputFormat }

// CreateTarget implements render.Engine.
func (e *Engine) CreateTarget(desc render.TargetDescriptor) (render.Target, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if err := e.record(CreateTargetCommand{Desc: desc}); err != nil {
		return nil, err
	}
	t := &Target{
		engine:       e,
		label:        desc.Label,
		width:        desc.Width,
		height:       desc.Height,
		format:       desc.ColorFormat(),
		depthStencil: desc.DepthStencil,
	}
	e.live[t] = struct{}{}
	return t, nil
}

// UploadTarget implements render.Engine.
func (e *Engine) UploadTarget(t render.Target, pixels []byte) error {
	rt, err := e.target(t)
	if err != nil {
		return err
	}
	if want := rt.width * rt.height * 4; len(pixels) != want {
		return fmt.Errorf("%w: upload of %d bytes into %dx%d", render.ErrInvalidDescriptor, len(pixels), rt.width, rt.height)
	}
	return e.record(UploadTargetCommand{Target: rt.label, Bytes: len(pixels)})
}

// DestroyTarget implements render.Engine.
func (e *Engine) DestroyTarget(t render.Target) {
	rt, err := e.target(t)
	if err != nil {
		return
	}
	_ = e.record(DestroyTargetCommand{Target: rt.label})
	rt.destroyed = true
	delete(e.live, rt)
	if e.bound == rt {
		e.bound = nil
	}
}

// CreateProgram implements render.Engine.
func (e *Engine) CreateProgram(src render.ProgramSource) (render.Program, error) {
	refl, err := render.Reflect(src)
	if err != nil {
		return nil, err
	}
	if err := e.record(CreateProgramCommand{Program: src.Label}); err != nil {
		return nil, err
	}
	return &Program{engine: e, state: render.NewProgramState(refl)}, nil
}

// DestroyProgram implements render.Engine.
func (e *Engine) DestroyProgram(p render.Program) {
	rp, ok := p.(*Program)
	if !ok || rp.engine != e || rp.destroyed {
		return
	}
	_ = e.record(DestroyProgramCommand{Program: rp.Label()})
	rp.destroyed = true
	if e.program == rp {
		e.program = nil
	}
}

// CreateVertexBuffer implements render.Engine.
func (e *Engine) CreateVertexBuffer(label string, vertices []float32) (render.VertexBuffer, error) {
	if len(vertices) == 0 || len(vertices)%render.VertexStride != 0 {
		return nil, fmt.Errorf("%w: %d floats is not a whole number of vertices", render.ErrInvalidDescriptor, len(vertices))
	}
	if err := e.record(CreateVertexBufferCommand{Buffer: label, Vertices: len(vertices) / render.VertexStride}); err != nil {
		return nil, err
	}
	return &VertexBuffer{engine: e, label: label, vertices: slices.Clone(vertices)}, nil
}

// DestroyVertexBuffer implements render.Engine.
func (e *Engine) DestroyVertexBuffer(b render.VertexBuffer) {
	rb, ok := b.(*VertexBuffer)
	if !ok || rb.engine != e || rb.destroyed {
		return
	}
	_ = e.record(DestroyVertexBufferCommand{Buffer: rb.label})
	rb.destroyed = true
}

// BindTarget implements render.Engine.
func (e *Engine) BindTarget(t render.Target) error {
	var rt *Target
	if t != nil {
		var err error
		if rt, err = e.target(t); err != nil {
			return err
		}
	}
	label := OutputLabel
	if rt != nil {
		label = rt.label
	}
	if err := e.record(BindTargetCommand{Target: label}); err != nil {
		return err
	}
	e.bound = rt
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
func (e *Engine) SetViewport(v render.Viewport) {
	_ = e.record(SetViewportCommand{Viewport: v})
	e.viewport = v
}

// UseProgram implements render.Engine.
func (e *Engine) UseProgram(p render.Program) error {
	rp, ok := p.(*Program)
	if !ok || rp.engine != e {
		return render.ErrForeignResource
	}
	if rp.destroyed {
		return fmt.Errorf("%w: program %s", ErrDestroyed, rp.Label())
	}
	if err := e.record(UseProgramCommand{Program: rp.Label()}); err != nil {
		return err
	}
	e.program = rp
	return nil
}

// SetTexture implements render.Engine.
func (e *Engine) SetTexture(loc render.Location, t render.Target) error {
	if e.program == nil {
		return render.ErrNoProgram
	}
	rt, err := e.target(t)
	if err != nil {
		return err
	}
	if err := e.program.state.SetTexture(loc, rt); err != nil {
		return err
	}
	return e.record(SetTextureCommand{Program: e.program.Label(), Location: loc.Name, Target: rt.label})
}

// SetUniform implements render.Engine.
func (e *Engine) SetUniform(loc render.Location, values ...float32) error {
	if e.program == nil {
		return render.ErrNoProgram
	}
	if err := e.program.state.SetUniform(loc, values...); err != nil {
		return err
	}
	return e.record(SetUniformCommand{Program: e.program.Label(), Location: loc.Name, Values: slices.Clone(values)})
}

// Draw implements render.Engine.
func (e *Engine) Draw(b render.VertexBuffer) error {
	rb, ok := b.(*VertexBuffer)
	if !ok || rb.engine != e {
		return render.ErrForeignResource
	}
	if rb.destroyed {
		return fmt.Errorf("%w: buffer %s", ErrDestroyed, rb.label)
	}
	if e.program == nil {
		return render.ErrNoProgram
	}
	var bound render.Target
	if e.bound != nil {
		bound = e.bound
	}
	if err := e.program.state.CheckDraw(bound); err != nil {
		return err
	}
	for _, loc := range e.program.state.Reflection.Textures {
		if t := e.program.state.Texture(loc.Binding).(*Target); t.destroyed {
			return fmt.Errorf("%w: %s samples %s", ErrDestroyed, loc.Name, t.label)
		}
	}

	refl := e.program.state.Reflection
	d := DrawCommand{
		Program:  refl.Label,
		Buffer:   rb.label,
		Target:   e.boundLabel(),
		Viewport: e.viewport,
		Textures: make(map[string]string, len(refl.Textures)),
		Uniforms: make(map[string][]float32, len(refl.Uniforms)),
	}
	if e.bound != nil {
		d.Width, d.Height = e.bound.width, e.bound.height
	} else {
		d.Width, d.Height = e.outputWidth, e.outputHeight
	}
	for _, loc := range refl.Textures {
		d.Textures[loc.Name] = e.program.state.Texture(loc.Binding).Label()
	}
	for _, loc := range refl.Uniforms {
		d.Uniforms[loc.Name] = e.program.state.Uniforms.Get(loc)
	}
	return e.record(d)
}

// Clear implements render.Engine.
func (e *Engine) Clear(c gputypes.Color) error {
	return e.record(ClearCommand{Target: e.boundLabel(), Color: c})
}

var (
	_ render.Engine           = (*Engine)(nil)
	_ render.OutputConfigurer = (*Engine)(nil)
)
