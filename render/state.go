// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// ProgramState holds the per-program inputs set through an engine:
// staged uniforms and the targets bound to texture locations. Engines
// embed one per program so that inputs survive switching programs.
type ProgramState struct {
	Reflection *Reflection
	Uniforms   *UniformBlock

	textures map[uint32]Target
}

// NewProgramState creates empty state for a reflected program.
func NewProgramState(r *Reflection) *ProgramState {
	return &ProgramState{
		Reflection: r,
		Uniforms:   NewUniformBlock(r.UniformSize),
		textures:   make(map[uint32]Target),
	}
}

// SetTexture binds t at a texture location.
func (s *ProgramState) SetTexture(loc Location, t Target) error {
	if err := s.owns(loc, LocationTexture); err != nil {
		return err
	}
	if t == nil {
		delete(s.textures, loc.Binding)
		return nil
	}
	s.textures[loc.Binding] = t
	return nil
}

// SetUniform stages values at a uniform location.
func (s *ProgramState) SetUniform(loc Location, values ...float32) error {
	if err := s.owns(loc, LocationUniform); err != nil {
		return err
	}
	return s.Uniforms.Set(loc, values...)
}

// Texture returns the target bound at binding, or nil.
func (s *ProgramState) Texture(binding uint32) Target {
	return s.textures[binding]
}

// TextureByName returns the target bound to the named texture, or nil.
func (s *ProgramState) TextureByName(name string) Target {
	loc, ok := s.Reflection.Location(name)
	if !ok || loc.Kind != LocationTexture {
		return nil
	}
	return s.textures[loc.Binding]
}

// Uniform reads back the staged values of the named uniform.
func (s *ProgramState) Uniform(name string) []float32 {
	loc, ok := s.Reflection.Location(name)
	if !ok || loc.Kind != LocationUniform {
		return nil
	}
	return s.Uniforms.Get(loc)
}

// CheckDraw verifies that every texture location has a target and that
// none of them is the bound target.
func (s *ProgramState) CheckDraw(bound Target) error {
	for _, loc := range s.Reflection.Textures {
		t := s.textures[loc.Binding]
		if t == nil {
			return fmt.Errorf("render: %s: texture %s not set", s.Reflection.Label, loc.Name)
		}
		if bound != nil && t == bound {
			return fmt.Errorf("%w: %s reads %s", ErrFeedbackLoop, loc.Name, bound.Label())
		}
	}
	return nil
}

// Forget drops every binding of t. Engines call it when t is destroyed.
func (s *ProgramState) Forget(t Target) {
	for b, bt := range s.textures {
		if bt == t {
			delete(s.textures, b)
		}
	}
}

func (s *ProgramState) owns(loc Location, kind LocationKind) error {
	if loc.Kind != kind {
		return fmt.Errorf("%w: %s is a %s, want %s", ErrLocationKind, loc.Name, loc.Kind, kind)
	}
	got, ok := s.Reflection.Location(loc.Name)
	if !ok || got.Binding != loc.Binding || got.Offset != loc.Offset {
		return fmt.Errorf("%w: %s is not a location of %s", ErrLocationKind, loc.Name, s.Reflection.Label)
	}
	return nil
}

// IsEightBit reports whether format stores 8 bits per color channel,
// the precision at which blended gradients band visibly.
func IsEightBit(format gputypes.TextureFormat) bool {
	switch format {
	case gputypes.TextureFormatRGBA8Unorm,
		gputypes.TextureFormatRGBA8UnormSrgb,
		gputypes.TextureFormatBGRA8Unorm,
		gputypes.TextureFormatBGRA8UnormSrgb:
		return true
	default:
		return false
	}
}
