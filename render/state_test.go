// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/gputypes"
)

type stubTarget struct {
	label string
}

func (t *stubTarget) Label() string                  { return t.label }
func (t *stubTarget) Width() int                     { return 1 }
func (t *stubTarget) Height() int                    { return 1 }
func (t *stubTarget) Format() gputypes.TextureFormat { return gputypes.TextureFormatRGBA8Unorm }
func (t *stubTarget) HasDepthStencil() bool          { return false }

func newTestState(t *testing.T) *ProgramState {
	t.Helper()
	return NewProgramState(mustReflect(t))
}

func TestProgramStateUniforms(t *testing.T) {
	s := newTestState(t)
	loc, _ := s.Reflection.Location("offset")
	if err := s.SetUniform(loc, 1, 2); err != nil {
		t.Fatal(err)
	}
	if got := s.Uniform("offset"); !slices.Equal(got, []float32{1, 2}) {
		t.Errorf("Uniform(offset) = %v", got)
	}
	if s.Uniform("color_texture") != nil {
		t.Error("Uniform of a texture name should be nil")
	}

	tex, _ := s.Reflection.Location("color_texture")
	if err := s.SetUniform(tex, 1); !errors.Is(err, ErrLocationKind) {
		t.Errorf("SetUniform(texture) error = %v, want ErrLocationKind", err)
	}
	foreign := Location{Name: "offset", Kind: LocationUniform, Binding: 5, Size: 2}
	if err := s.SetUniform(foreign, 1, 2); !errors.Is(err, ErrLocationKind) {
		t.Errorf("SetUniform(foreign) error = %v, want ErrLocationKind", err)
	}
}

func TestProgramStateTextures(t *testing.T) {
	s := newTestState(t)
	loc, _ := s.Reflection.Location("color_texture")
	src := &stubTarget{label: "src"}

	if err := s.SetTexture(loc, src); err != nil {
		t.Fatal(err)
	}
	if s.Texture(loc.Binding) != src || s.TextureByName("color_texture") != src {
		t.Error("texture not bound")
	}
	if s.TextureByName("offset") != nil {
		t.Error("TextureByName of a uniform should be nil")
	}
	if err := s.SetTexture(loc, nil); err != nil {
		t.Fatal(err)
	}
	if s.Texture(loc.Binding) != nil {
		t.Error("SetTexture(nil) should unbind")
	}

	uni, _ := s.Reflection.Location("opacity")
	if err := s.SetTexture(uni, src); !errors.Is(err, ErrLocationKind) {
		t.Errorf("SetTexture(uniform) error = %v, want ErrLocationKind", err)
	}
}

func TestProgramStateCheckDraw(t *testing.T) {
	s := newTestState(t)
	loc, _ := s.Reflection.Location("color_texture")
	src := &stubTarget{label: "src"}
	dst := &stubTarget{label: "dst"}

	if err := s.CheckDraw(dst); err == nil {
		t.Error("CheckDraw with an unset texture should fail")
	}
	_ = s.SetTexture(loc, src)
	if err := s.CheckDraw(dst); err != nil {
		t.Errorf("CheckDraw: %v", err)
	}
	if err := s.CheckDraw(nil); err != nil {
		t.Errorf("CheckDraw(output): %v", err)
	}
	if err := s.CheckDraw(src); !errors.Is(err, ErrFeedbackLoop) {
		t.Errorf("CheckDraw(src) error = %v, want ErrFeedbackLoop", err)
	}

	s.Forget(src)
	if s.Texture(loc.Binding) != nil {
		t.Error("Forget should drop the binding")
	}
}

func TestIsEightBit(t *testing.T) {
	tests := []struct {
		format gputypes.TextureFormat
		want   bool
	}{
		{gputypes.TextureFormatRGBA8Unorm, true},
		{gputypes.TextureFormatRGBA8UnormSrgb, true},
		{gputypes.TextureFormatBGRA8Unorm, true},
		{gputypes.TextureFormatBGRA8UnormSrgb, true},
		{gputypes.TextureFormatRGBA16Float, false},
		{gputypes.TextureFormatRGB10A2Unorm, false},
		{gputypes.TextureFormatUndefined, false},
	}
	for _, tt := range tests {
		if got := IsEightBit(tt.format); got != tt.want {
			t.Errorf("IsEightBit(%v) = %v, want %v", tt.format, got, tt.want)
		}
	}
}
