// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"slices"
	"testing"
)

func TestUniformBlock(t *testing.T) {
	b := NewUniformBlock(16)
	offset := Location{Name: "offset", Kind: LocationUniform, Offset: 0, Size: 2}
	opacity := Location{Name: "opacity", Kind: LocationUniform, Offset: 8, Size: 1}

	if err := b.Set(offset, 0.25, -0.5); err != nil {
		t.Fatal(err)
	}
	if err := b.Set(opacity, 0.75); err != nil {
		t.Fatal(err)
	}
	if got := b.Get(offset); !slices.Equal(got, []float32{0.25, -0.5}) {
		t.Errorf("Get(offset) = %v", got)
	}
	if got := b.Get(opacity); !slices.Equal(got, []float32{0.75}) {
		t.Errorf("Get(opacity) = %v", got)
	}
	if b.Len() != 16 {
		t.Errorf("Len() = %d, want 16", b.Len())
	}
	// 0.75 is 0x3f400000, stored little-endian at byte 8.
	if got := b.Bytes()[8:12]; !slices.Equal(got, []byte{0x00, 0x00, 0x40, 0x3f}) {
		t.Errorf("Bytes()[8:12] = % x", got)
	}
}

func TestUniformBlockErrors(t *testing.T) {
	b := NewUniformBlock(8)
	tests := []struct {
		name   string
		loc    Location
		values []float32
		want   error
	}{
		{"texture location", Location{Name: "tex", Kind: LocationTexture}, []float32{1}, ErrLocationKind},
		{"too few values", Location{Name: "v", Kind: LocationUniform, Size: 2}, []float32{1}, ErrUniformSize},
		{"overrun", Location{Name: "v", Kind: LocationUniform, Offset: 4, Size: 2}, []float32{1, 2}, ErrUniformSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := b.Set(tt.loc, tt.values...); !errors.Is(err, tt.want) {
				t.Errorf("Set error = %v, want %v", err, tt.want)
			}
		})
	}
}
