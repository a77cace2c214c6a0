// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"testing"
)

const spirvMagic = 0x07230203

func TestCompileSPIRV(t *testing.T) {
	for _, debug := range []bool{false, true} {
		code, err := CompileSPIRV(testSource(), debug)
		if err != nil {
			t.Fatalf("CompileSPIRV(debug=%v): %v", debug, err)
		}
		words, err := SPIRVWords(code)
		if err != nil {
			t.Fatal(err)
		}
		if len(words) < 5 {
			t.Fatalf("SPIR-V too short: %d words", len(words))
		}
		if words[0] != spirvMagic {
			t.Errorf("magic = %#x, want %#x", words[0], spirvMagic)
		}
	}
}

func TestCompileSPIRVInvalid(t *testing.T) {
	_, err := CompileSPIRV(ProgramSource{Label: "bad", WGSL: "fn broken("}, false)
	if !errors.Is(err, ErrShaderSource) {
		t.Errorf("error = %v, want ErrShaderSource", err)
	}
}

func TestSPIRVWords(t *testing.T) {
	words, err := SPIRVWords([]byte{0x03, 0x02, 0x23, 0x07, 0x01, 0x00, 0x00, 0x00})
	if err != nil {
		t.Fatal(err)
	}
	if len(words) != 2 || words[0] != spirvMagic || words[1] != 1 {
		t.Errorf("SPIRVWords = %#x", words)
	}
	if _, err := SPIRVWords([]byte{1, 2, 3}); !errors.Is(err, ErrShaderSource) {
		t.Errorf("odd length error = %v, want ErrShaderSource", err)
	}
}
