// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package kawase

import (
	"fmt"

	"github.com/gogpu/kawase/render"
)

// programBinding is a linked program with the locations the filter drives,
// resolved once at construction.
type programBinding struct {
	program render.Program
	locs    map[string]render.Location
}

func (b *programBinding) loc(name string) render.Location {
	return b.locs[name]
}

// programSet owns the blur, mix and dither-mix programs of one filter.
type programSet struct {
	blur      programBinding
	mix       programBinding
	ditherMix programBinding
}

// programInputs lists the inputs each program must expose.
var programInputs = map[string][]string{
	BlurProgram: {inputSourceTexture, inputOffset},
	MixProgram:  {inputBlurOpacity, inputBlurredTexture, inputCompositionTexture},
	DitherMixProgram: {
		inputNoiseUVScale, inputBlurOpacity,
		inputBlurredTexture, inputDitherTexture, inputCompositionTexture,
	},
}

func newProgramSet(engine render.Engine) (*programSet, error) {
	s := &programSet{}
	slots := map[string]*programBinding{
		BlurProgram:      &s.blur,
		MixProgram:       &s.mix,
		DitherMixProgram: &s.ditherMix,
	}
	for _, src := range ProgramSources() {
		b, err := linkProgram(engine, src)
		if err != nil {
			s.destroy(engine)
			return nil, err
		}
		*slots[src.Label] = b
	}
	return s, nil
}

func linkProgram(engine render.Engine, src render.ProgramSource) (programBinding, error) {
	p, err := engine.CreateProgram(src)
	if err != nil {
		return programBinding{}, fmt.Errorf("kawase: create %s program: %w", src.Label, err)
	}
	names := programInputs[src.Label]
	locs := make(map[string]render.Location, len(names))
	for _, name := range names {
		loc, ok := p.Location(name)
		if !ok {
			engine.DestroyProgram(p)
			return programBinding{}, fmt.Errorf("%w: %s in %s program", ErrMissingUniform, name, src.Label)
		}
		locs[name] = loc
	}
	return programBinding{program: p, locs: locs}, nil
}

func (s *programSet) destroy(engine render.Engine) {
	for _, b := range []*programBinding{&s.blur, &s.mix, &s.ditherMix} {
		if b.program != nil {
			engine.DestroyProgram(b.program)
			b.program = nil
		}
	}
}
