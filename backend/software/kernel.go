// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/kawase/render"
)

// ErrNoKernel is returned by CreateProgram when no kernel is registered
// for the program label.
var ErrNoKernel = errors.New("software: no kernel for program")

// Fragment is one kernel invocation: the destination pixel and the
// interpolated texture coordinate.
type Fragment struct {
	X, Y int
	U, V float32
}

// Inputs exposes the uniforms and textures of the program being drawn.
type Inputs struct {
	state *render.ProgramState
}

// Uniform returns the staged values of the named uniform, or nil.
func (in Inputs) Uniform(name string) []float32 {
	return in.state.Uniform(name)
}

// Sample filters the named texture through the named sampler. Unknown
// names sample as transparent black.
func (in Inputs) Sample(texture, sampler string, u, v float32) [4]float32 {
	t, ok := in.state.TextureByName(texture).(*Target)
	if !ok {
		return [4]float32{}
	}
	mode := render.SamplerClamp
	if loc, ok := in.state.Reflection.Location(sampler); ok && loc.Kind == render.LocationSampler {
		mode = loc.Mode
	}
	return sample(t, mode, u, v)
}

// Kernel evaluates a program's fragment stage on the CPU.
type Kernel func(in Inputs, frag Fragment) [4]float32

var (
	kernelsMu sync.RWMutex
	kernels   = map[string]Kernel{
		"blur":       blurKernel,
		"mix":        mixKernel,
		"dither_mix": ditherMixKernel,
	}
)

// RegisterKernel registers the fragment kernel for programs labeled
// label. It panics if kernel is nil or label is already registered.
func RegisterKernel(label string, kernel Kernel) {
	kernelsMu.Lock()
	defer kernelsMu.Unlock()

	if kernel == nil {
		panic("software: RegisterKernel kernel is nil")
	}
	if _, dup := kernels[label]; dup {
		panic("software: RegisterKernel called twice for " + label)
	}
	kernels[label] = kernel
}

func lookupKernel(label string) (Kernel, error) {
	kernelsMu.RLock()
	defer kernelsMu.RUnlock()
	k, ok := kernels[label]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrNoKernel, label)
	}
	return k, nil
}

func blurKernel(in Inputs, f Fragment) [4]float32 {
	off := in.Uniform("offset")
	a := in.Sample("source_texture", "source_sampler", f.U+off[0], f.V+off[1])
	b := in.Sample("source_texture", "source_sampler", f.U-off[0], f.V-off[1])
	return [4]float32{(a[0] + b[0]) / 2, (a[1] + b[1]) / 2, (a[2] + b[2]) / 2, 1}
}

func crossFade(in Inputs, f Fragment) [4]float32 {
	opacity := in.Uniform("blur_opacity")[0]
	blurred := in.Sample("blurred_texture", "linear_sampler", f.U, f.V)
	comp := in.Sample("composition_texture", "linear_sampler", f.U, f.V)
	var out [4]float32
	for k := range out {
		out[k] = comp[k] + (blurred[k]-comp[k])*opacity
	}
	return out
}

func mixKernel(in Inputs, f Fragment) [4]float32 {
	return crossFade(in, f)
}

func ditherMixKernel(in Inputs, f Fragment) [4]float32 {
	out := crossFade(in, f)
	scale := in.Uniform("noise_uv_scale")
	noise := in.Sample("dither_texture", "noise_sampler", f.U*scale[0], f.V*scale[1])[0]
	d := (noise - 0.5) / 64
	out[0] += d
	out[1] += d
	out[2] += d
	return out
}
