// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"encoding/binary"
	"fmt"
	"math"
)

// UniformBlock stages the uniform values of one program instance in the
// little-endian byte layout the GPU reads.
type UniformBlock struct {
	data []byte
}

// NewUniformBlock allocates a zeroed block of size bytes.
func NewUniformBlock(size uint32) *UniformBlock {
	return &UniformBlock{data: make([]byte, size)}
}

// Set writes values at loc. The number of values must equal loc.Size.
func (b *UniformBlock) Set(loc Location, values ...float32) error {
	if loc.Kind != LocationUniform {
		return fmt.Errorf("%w: %s is a %s", ErrLocationKind, loc.Name, loc.Kind)
	}
	if len(values) != loc.Size {
		return fmt.Errorf("%w: %s takes %d values, got %d", ErrUniformSize, loc.Name, loc.Size, len(values))
	}
	end := int(loc.Offset) + 4*len(values)
	if end > len(b.data) {
		return fmt.Errorf("%w: %s overruns block (%d > %d)", ErrUniformSize, loc.Name, end, len(b.data))
	}
	for i, v := range values {
		binary.LittleEndian.PutUint32(b.data[int(loc.Offset)+4*i:], math.Float32bits(v))
	}
	return nil
}

// Get reads back the values at loc.
func (b *UniformBlock) Get(loc Location) []float32 {
	out := make([]float32, loc.Size)
	for i := range out {
		off := int(loc.Offset) + 4*i
		if off+4 > len(b.data) {
			break
		}
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b.data[off:]))
	}
	return out
}

// Bytes returns the staged bytes. The slice aliases the block.
func (b *UniformBlock) Bytes() []byte { return b.data }

// Len returns the block size in bytes.
func (b *UniformBlock) Len() int { return len(b.data) }
