// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package kawase

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/kawase/render"
)

// DisplaySettings describes the output the blur is composited onto.
type DisplaySettings struct {
	// Bounds is the display rectangle in output pixels. Its size sets the
	// composition size; its origin positions the final composite.
	Bounds image.Rectangle

	// Dataspace is the color-management tag of the output. It is carried
	// for the caller and not interpreted by the filter.
	Dataspace uint32
}

// BlurFilter blurs the content drawn behind a translucent surface.
//
// Each frame runs SetAsDrawTarget, the caller's scene draw, Prepare and
// Render, in that order. A BlurFilter is not safe for concurrent use.
type BlurFilter struct {
	engine   render.Engine
	opts     options
	surfaces *surfacePool
	programs *programSet
	geometry *fullscreenGeometry

	state    State
	display  DisplaySettings
	radius   int
	plan     PassPlan
	previous render.Target
	lastDraw render.Target
	closed   bool
}

// NewBlurFilter links the blur programs and creates the shared geometry
// on engine. Display-sized targets are allocated by the first
// SetAsDrawTarget.
func NewBlurFilter(engine render.Engine, opts ...Option) (*BlurFilter, error) {
	if engine == nil {
		return nil, ErrNilEngine
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	var ditherUpload []byte
	if o.ditherPattern != nil {
		pixels, err := ditherPixels(o.ditherPattern)
		if err != nil {
			return nil, err
		}
		ditherUpload = pixels
	}

	f := &BlurFilter{
		engine:   engine,
		opts:     o,
		surfaces: newSurfacePool(engine, o),
	}

	programs, err := newProgramSet(engine)
	if err != nil {
		return nil, err
	}
	f.programs = programs

	geometry, err := newFullscreenGeometry(engine)
	if err != nil {
		f.programs.destroy(engine)
		return nil, err
	}
	f.geometry = geometry

	if ditherUpload != nil {
		if err := f.surfaces.ensureDither(ditherUpload); err != nil {
			f.geometry.destroy(engine)
			f.programs.destroy(engine)
			return nil, err
		}
	}

	Logger().Info("kawase: blur filter created",
		"format", o.compositionFormat,
		"dither", ditherUpload != nil,
		"maxRadius", o.maxRadius)
	return f, nil
}

// SetAsDrawTarget starts a frame: it clamps radius to [0, max radius],
// (re)allocates the targets if the display size changed and binds the
// composition target so the caller's scene draw is captured.
//
// It may be called in any state; an unfinished frame is abandoned.
func (f *BlurFilter) SetAsDrawTarget(display DisplaySettings, radius int) error {
	if f.closed {
		return ErrClosed
	}
	if display.Bounds.Empty() {
		return fmt.Errorf("%w: %v", ErrInvalidDisplay, display.Bounds)
	}

	if f.state == StateIdle {
		f.previous = f.engine.BoundTarget()
	}

	resized, err := f.surfaces.ensure(display.Bounds.Dx(), display.Bounds.Dy())
	if err != nil {
		return err
	}
	if resized {
		// The targets of an unfinished frame were released with the old set.
		f.state = StateIdle
		f.lastDraw = nil
	}
	if err := f.engine.BindTarget(f.surfaces.composition); err != nil {
		return fmt.Errorf("kawase: bind composition target: %w", err)
	}
	f.engine.SetViewport(render.FullViewport(f.surfaces.composition))

	f.display = display
	f.radius = ClampRadius(radius, f.opts.maxRadius)
	f.lastDraw = nil
	f.state = StateTargetBound
	return nil
}

// Prepare runs the blur passes over the captured composition and leaves
// the result in LastDrawTarget. The target bound before SetAsDrawTarget is
// bound again on return.
func (f *BlurFilter) Prepare() error {
	if f.closed {
		return ErrClosed
	}
	if f.state != StateTargetBound {
		return fmt.Errorf("%w (state %s)", ErrNotBound, f.state)
	}

	comp := f.surfaces.composition
	plan := PlanPasses(f.radius, comp.Width(), comp.Height())
	Logger().Debug("kawase: prepare", "plan", plan.String())

	last, err := f.runPasses(plan)
	if rerr := f.engine.BindTarget(f.previous); rerr != nil && err == nil {
		err = fmt.Errorf("kawase: restore draw target: %w", rerr)
	}
	if err != nil {
		f.dropFrame()
		return err
	}

	f.plan = plan
	f.lastDraw = last
	f.state = StatePrepared
	return nil
}

// runPasses writes pass i into pingPong[i%2], reading the composition for
// the first pass and pingPong[(i+1)%2] afterwards.
func (f *BlurFilter) runPasses(plan PassPlan) (render.Target, error) {
	targets := f.surfaces.pingPong
	if plan.Passes == 0 {
		return targets[0], nil
	}

	blur := &f.programs.blur
	if err := f.engine.UseProgram(blur.program); err != nil {
		return nil, fmt.Errorf("kawase: use blur program: %w", err)
	}
	read := f.surfaces.composition
	for i := 0; i < plan.Passes; i++ {
		write := targets[i%2]
		if i > 0 {
			read = targets[(i+1)%2]
		}
		if err := f.engine.BindTarget(write); err != nil {
			return nil, fmt.Errorf("kawase: pass %d: bind %s: %w", i, write.Label(), err)
		}
		f.engine.SetViewport(render.FullViewport(write))
		if err := f.engine.SetTexture(blur.loc(inputSourceTexture), read); err != nil {
			return nil, fmt.Errorf("kawase: pass %d: %w", i, err)
		}
		off := plan.Offsets[i]
		if err := f.engine.SetUniform(blur.loc(inputOffset), off[0], off[1]); err != nil {
			return nil, fmt.Errorf("kawase: pass %d: %w", i, err)
		}
		if err := f.geometry.draw(f.engine); err != nil {
			return nil, fmt.Errorf("kawase: pass %d: draw: %w", i, err)
		}
	}
	return targets[(plan.Passes-1)%2], nil
}

// Render composites the blurred result onto the currently bound target
// inside the display rectangle and ends the frame. The last layer of a
// stack is dithered when a dither pattern is configured, the blur is
// visible and the bound output stores 8 bits per channel.
func (f *BlurFilter) Render(layers, currentLayer int) error {
	if f.closed {
		return ErrClosed
	}
	if f.state != StatePrepared {
		return fmt.Errorf("%w (state %s)", ErrNotPrepared, f.state)
	}
	if layers < 1 || currentLayer < 0 || currentLayer >= layers {
		return fmt.Errorf("%w: layer %d of %d", ErrInvalidLayer, currentLayer, layers)
	}

	if err := f.composite(layers, currentLayer); err != nil {
		f.dropFrame()
		return err
	}
	f.state = StateIdle
	f.previous = nil
	return nil
}

func (f *BlurFilter) composite(layers, currentLayer int) error {
	opacity := f.plan.Opacity
	dither := f.surfaces.dither != nil &&
		currentLayer == layers-1 &&
		opacity > 0 &&
		render.IsEightBit(f.outputFormat())

	prog := &f.programs.mix
	if dither {
		prog = &f.programs.ditherMix
	}
	Logger().Debug("kawase: render", "layers", layers, "layer", currentLayer,
		"opacity", opacity, "dither", dither)

	if err := f.engine.UseProgram(prog.program); err != nil {
		return fmt.Errorf("kawase: use composite program: %w", err)
	}
	err := errors.Join(
		f.engine.SetUniform(prog.loc(inputBlurOpacity), opacity),
		f.engine.SetTexture(prog.loc(inputBlurredTexture), f.lastDraw),
		f.engine.SetTexture(prog.loc(inputCompositionTexture), f.surfaces.composition),
	)
	if err == nil && dither {
		b := f.display.Bounds
		err = errors.Join(
			f.engine.SetTexture(prog.loc(inputDitherTexture), f.surfaces.dither),
			f.engine.SetUniform(prog.loc(inputNoiseUVScale),
				float32(b.Dx())/DitherSize, float32(b.Dy())/DitherSize),
		)
	}
	if err != nil {
		return fmt.Errorf("kawase: composite inputs: %w", err)
	}

	b := f.display.Bounds
	f.engine.SetViewport(render.Viewport{X: b.Min.X, Y: b.Min.Y, Width: b.Dx(), Height: b.Dy()})
	if err := f.geometry.draw(f.engine); err != nil {
		return fmt.Errorf("kawase: composite draw: %w", err)
	}
	return nil
}

func (f *BlurFilter) outputFormat() gputypes.TextureFormat {
	if t := f.engine.BoundTarget(); t != nil {
		return t.Format()
	}
	return f.engine.OutputFormat()
}

// dropFrame returns to Idle and forgets per-frame state.
func (f *BlurFilter) dropFrame() {
	f.state = StateIdle
	f.lastDraw = nil
	f.previous = nil
}

// Close releases every target, program and buffer of the filter.
// Close is idempotent.
func (f *BlurFilter) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	f.dropFrame()
	f.surfaces.destroy()
	f.geometry.destroy(f.engine)
	f.programs.destroy(f.engine)
	return nil
}

// State returns the position in the frame sequence.
func (f *BlurFilter) State() State { return f.state }

// Radius returns the clamped radius of the current frame.
func (f *BlurFilter) Radius() int { return f.radius }

// Plan returns the pass plan of the last Prepare.
func (f *BlurFilter) Plan() PassPlan { return f.plan }

// LastDrawTarget returns the ping-pong target written by the last pass of
// the current frame. It is set by Prepare and cleared by the next
// SetAsDrawTarget or by a failed call.
func (f *BlurFilter) LastDrawTarget() render.Target { return f.lastDraw }

// Composition returns the full resolution capture target, nil before the
// first SetAsDrawTarget.
func (f *BlurFilter) Composition() render.Target { return f.surfaces.composition }

// BlurTargets returns the ping and pong targets, nil before the first
// SetAsDrawTarget.
func (f *BlurFilter) BlurTargets() [2]render.Target { return f.surfaces.pingPong }
