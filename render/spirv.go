// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/naga"
)

// CompileSPIRV translates src.WGSL into a SPIR-V binary with naga, for
// backends and tools that consume SPIR-V instead of WGSL.
func CompileSPIRV(src ProgramSource, debug bool) ([]byte, error) {
	opts := naga.DefaultOptions()
	opts.Debug = debug
	code, err := naga.CompileWithOptions(src.WGSL, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrShaderSource, src.Label, err)
	}
	return code, nil
}

// SPIRVWords reinterprets a SPIR-V binary as little-endian words, the form
// hal.ShaderSource expects.
func SPIRVWords(code []byte) ([]uint32, error) {
	if len(code)%4 != 0 {
		return nil, fmt.Errorf("%w: SPIR-V length %d is not a multiple of 4", ErrShaderSource, len(code))
	}
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}
	return words, nil
}
