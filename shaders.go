// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package kawase

import (
	_ "embed"

	"github.com/gogpu/kawase/render"
)

// Embedded WGSL sources.
var (
	//go:embed shaders/blur.wgsl
	blurShaderSource string

	//go:embed shaders/mix.wgsl
	mixShaderSource string

	//go:embed shaders/dither_mix.wgsl
	ditherMixShaderSource string
)

// Program labels. The software engine selects its kernels by these.
const (
	BlurProgram      = "blur"
	MixProgram       = "mix"
	DitherMixProgram = "dither_mix"
)

// Program input names shared by the WGSL sources and the filter.
const (
	inputSourceTexture      = "source_texture"
	inputOffset             = "offset"
	inputBlurOpacity        = "blur_opacity"
	inputBlurredTexture     = "blurred_texture"
	inputCompositionTexture = "composition_texture"
	inputDitherTexture      = "dither_texture"
	inputNoiseUVScale       = "noise_uv_scale"
)

// ProgramSources returns the three WGSL programs of the filter, in the
// order blur, mix, dither-mix.
func ProgramSources() []render.ProgramSource {
	return []render.ProgramSource{
		{Label: BlurProgram, WGSL: blurShaderSource},
		{Label: MixProgram, WGSL: mixShaderSource},
		{
			Label:    DitherMixProgram,
			WGSL:     ditherMixShaderSource,
			Samplers: map[string]render.SamplerMode{"noise_sampler": render.SamplerRepeat},
		},
	}
}
