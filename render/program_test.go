// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

const testShader = `
struct Params {
    offset: vec2<f32>,
    opacity: f32,
    tint: vec4<f32>,
}

@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(1) var color_texture: texture_2d<f32>;
@group(0) @binding(2) var color_sampler: sampler;
@group(0) @binding(3) var noise_sampler: sampler;

struct VertexInput {
    @location(0) position: vec2<f32>,
    @location(1) uv: vec2<f32>,
}

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
}

@vertex
fn vs_main(input: VertexInput) -> VertexOutput {
    var output: VertexOutput;
    output.position = vec4<f32>(input.position, 0.0, 1.0);
    output.uv = input.uv;
    return output;
}

@fragment
fn fs_main(input: VertexOutput) -> @location(0) vec4<f32> {
    let a = textureSample(color_texture, color_sampler, input.uv + params.offset);
    let b = textureSample(color_texture, noise_sampler, input.uv);
    return mix(a, b, vec4<f32>(params.opacity)) * params.tint;
}
`

func testSource() ProgramSource {
	return ProgramSource{
		Label:    "test",
		WGSL:     testShader,
		Samplers: map[string]SamplerMode{"noise_sampler": SamplerRepeat},
	}
}

func mustReflect(t *testing.T) *Reflection {
	t.Helper()
	r, err := Reflect(testSource())
	if err != nil {
		t.Fatalf("Reflect: %v", err)
	}
	return r
}

func TestReflect(t *testing.T) {
	r := mustReflect(t)

	if r.Label != "test" {
		t.Errorf("Label = %q, want test", r.Label)
	}
	if r.UniformBinding != 0 {
		t.Errorf("UniformBinding = %d, want 0", r.UniformBinding)
	}
	if r.UniformSize != 32 {
		t.Errorf("UniformSize = %d, want 32", r.UniformSize)
	}
	if len(r.Uniforms) != 3 || len(r.Textures) != 1 || len(r.Samplers) != 2 {
		t.Fatalf("got %d uniforms, %d textures, %d samplers; want 3, 1, 2",
			len(r.Uniforms), len(r.Textures), len(r.Samplers))
	}

	tests := []struct {
		name    string
		kind    LocationKind
		binding uint32
		offset  uint32
		size    int
		mode    SamplerMode
	}{
		{"offset", LocationUniform, 0, 0, 2, SamplerClamp},
		{"opacity", LocationUniform, 0, 8, 1, SamplerClamp},
		{"tint", LocationUniform, 0, 16, 4, SamplerClamp},
		{"color_texture", LocationTexture, 1, 0, 0, SamplerClamp},
		{"color_sampler", LocationSampler, 2, 0, 0, SamplerClamp},
		{"noise_sampler", LocationSampler, 3, 0, 0, SamplerRepeat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, ok := r.Location(tt.name)
			if !ok {
				t.Fatalf("Location(%q) not found", tt.name)
			}
			if loc.Kind != tt.kind || loc.Binding != tt.binding {
				t.Errorf("kind/binding = %v/%d, want %v/%d", loc.Kind, loc.Binding, tt.kind, tt.binding)
			}
			if loc.Offset != tt.offset || loc.Size != tt.size {
				t.Errorf("offset/size = %d/%d, want %d/%d", loc.Offset, loc.Size, tt.offset, tt.size)
			}
			if loc.Mode != tt.mode {
				t.Errorf("mode = %v, want %v", loc.Mode, tt.mode)
			}
		})
	}

	if _, ok := r.Location("params"); ok {
		t.Error("the uniform block itself should not be a location")
	}
	want := []string{"color_sampler", "color_texture", "noise_sampler", "offset", "opacity", "tint"}
	if got := r.Names(); !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestReflectErrors(t *testing.T) {
	tests := []struct {
		name string
		wgsl string
		want error
	}{
		{"syntax", "fn broken(", ErrShaderSource},
		{"bind group 1", strings.Replace(testShader, "@group(0) @binding(1)", "@group(1) @binding(1)", 1), ErrUnsupportedLayout},
		{"missing fragment", strings.Replace(testShader, "fn fs_main", "fn fs_other", 1), ErrShaderSource},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reflect(ProgramSource{Label: tt.name, WGSL: tt.wgsl})
			if !errors.Is(err, tt.want) {
				t.Errorf("Reflect error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLocationKindString(t *testing.T) {
	tests := []struct {
		kind LocationKind
		want string
	}{
		{LocationUniform, "uniform"},
		{LocationTexture, "texture"},
		{LocationSampler, "sampler"},
		{LocationKind(0), "LocationKind(0)"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestSamplerModeString(t *testing.T) {
	if SamplerClamp.String() != "clamp" || SamplerRepeat.String() != "repeat" {
		t.Errorf("got %q and %q", SamplerClamp, SamplerRepeat)
	}
	if got := SamplerMode(7).String(); got != "SamplerMode(7)" {
		t.Errorf("String() = %q", got)
	}
}

func TestAlignUp(t *testing.T) {
	tests := []struct{ v, a, want uint32 }{
		{0, 16, 0},
		{1, 16, 16},
		{12, 16, 16},
		{32, 16, 32},
		{5, 0, 5},
	}
	for _, tt := range tests {
		if got := alignUp(tt.v, tt.a); got != tt.want {
			t.Errorf("alignUp(%d, %d) = %d, want %d", tt.v, tt.a, got, tt.want)
		}
	}
}
