// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
)

// Entry point names every program must provide.
const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

// Program reflection errors.
var (
	// ErrShaderSource is returned when WGSL fails to parse, lower or validate.
	ErrShaderSource = errors.New("render: invalid shader source")

	// ErrUnsupportedLayout is returned for resource layouts the engines do
	// not handle (bind groups other than 0, several uniform blocks,
	// non-float uniform members).
	ErrUnsupportedLayout = errors.New("render: unsupported resource layout")

	// ErrUniformSize is returned when SetUniform receives the wrong number
	// of values for a location.
	ErrUniformSize = errors.New("render: uniform value count mismatch")
)

// SamplerMode selects the address mode of a sampler binding.
type SamplerMode uint8

const (
	// SamplerClamp clamps coordinates to the edge texels.
	SamplerClamp SamplerMode = iota
	// SamplerRepeat tiles the texture.
	SamplerRepeat
)

// String returns the mode name.
func (m SamplerMode) String() string {
	switch m {
	case SamplerClamp:
		return "clamp"
	case SamplerRepeat:
		return "repeat"
	default:
		return fmt.Sprintf("SamplerMode(%d)", m)
	}
}

// ProgramSource is the input to Engine.CreateProgram.
type ProgramSource struct {
	// Label names the program. The software engine selects its fragment
	// kernel by label.
	Label string

	// WGSL is the shader source with vs_main and fs_main entry points.
	WGSL string

	// Samplers maps sampler variable names to address modes.
	// Samplers not listed use SamplerClamp.
	Samplers map[string]SamplerMode
}

// LocationKind classifies a Location.
type LocationKind uint8

const (
	// LocationUniform is a float member of the uniform block.
	LocationUniform LocationKind = iota + 1
	// LocationTexture is a texture_2d<f32> binding.
	LocationTexture
	// LocationSampler is a sampler binding.
	LocationSampler
)

// String returns the kind name.
func (k LocationKind) String() string {
	switch k {
	case LocationUniform:
		return "uniform"
	case LocationTexture:
		return "texture"
	case LocationSampler:
		return "sampler"
	default:
		return fmt.Sprintf("LocationKind(%d)", k)
	}
}

// Location identifies a named program input.
type Location struct {
	Name string
	Kind LocationKind

	// Binding is the group 0 binding index. For uniforms it is the binding
	// of the enclosing uniform block.
	Binding uint32

	// Offset is the byte offset within the uniform block (uniforms only).
	Offset uint32

	// Size is the number of float32 components (uniforms only).
	Size int

	// Mode is the address mode (samplers only).
	Mode SamplerMode
}

// Reflection describes the resource interface of a program.
type Reflection struct {
	Label string

	// UniformBinding is the binding of the uniform block, valid when
	// UniformSize > 0.
	UniformBinding uint32

	// UniformSize is the byte size of the uniform block, 0 if the program
	// has no uniforms.
	UniformSize uint32

	Uniforms []Location
	Textures []Location
	Samplers []Location

	byName map[string]Location
}

// Location looks up a reflected location by WGSL name.
func (r *Reflection) Location(name string) (Location, bool) {
	loc, ok := r.byName[name]
	return loc, ok
}

// Names returns every reflected name, sorted.
func (r *Reflection) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reflect parses and validates src.WGSL with naga and collects its
// uniform members, textures and samplers.
func Reflect(src ProgramSource) (*Reflection, error) {
	ast, err := naga.Parse(src.WGSL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrShaderSource, src.Label, err)
	}
	module, err := naga.LowerWithSource(ast, src.WGSL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrShaderSource, src.Label, err)
	}
	verrs, err := naga.Validate(module)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrShaderSource, src.Label, err)
	}
	if len(verrs) > 0 {
		return nil, fmt.Errorf("%w: %s: %w", ErrShaderSource, src.Label, verrs[0])
	}
	if err := checkEntryPoints(module); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrShaderSource, src.Label, err)
	}

	r := &Reflection{Label: src.Label, byName: make(map[string]Location)}
	uniformBlocks := 0
	for _, gv := range module.GlobalVariables {
		if gv.Binding == nil {
			continue
		}
		if gv.Binding.Group != 0 {
			return nil, fmt.Errorf("%w: %s: %s uses group %d", ErrUnsupportedLayout, src.Label, gv.Name, gv.Binding.Group)
		}
		inner := module.Types[gv.Type].Inner
		switch {
		case gv.Space == ir.SpaceUniform:
			uniformBlocks++
			if uniformBlocks > 1 {
				return nil, fmt.Errorf("%w: %s: more than one uniform block", ErrUnsupportedLayout, src.Label)
			}
			st, ok := inner.(ir.StructType)
			if !ok {
				return nil, fmt.Errorf("%w: %s: uniform %s is not a struct", ErrUnsupportedLayout, src.Label, gv.Name)
			}
			if err := r.addUniformBlock(module, gv.Binding.Binding, st); err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrUnsupportedLayout, src.Label, err)
			}
		case gv.Space == ir.SpaceHandle:
			switch inner.(type) {
			case ir.ImageType:
				r.add(Location{Name: gv.Name, Kind: LocationTexture, Binding: gv.Binding.Binding})
			case ir.SamplerType:
				r.add(Location{Name: gv.Name, Kind: LocationSampler, Binding: gv.Binding.Binding, Mode: src.Samplers[gv.Name]})
			}
		}
	}
	return r, nil
}

func (r *Reflection) add(loc Location) {
	switch loc.Kind {
	case LocationUniform:
		r.Uniforms = append(r.Uniforms, loc)
	case LocationTexture:
		r.Textures = append(r.Textures, loc)
	case LocationSampler:
		r.Samplers = append(r.Samplers, loc)
	}
	r.byName[loc.Name] = loc
}

func (r *Reflection) addUniformBlock(module *ir.Module, binding uint32, st ir.StructType) error {
	type member struct {
		name          string
		components    int
		offset, align uint32
	}
	members := make([]member, 0, len(st.Members))
	for _, m := range st.Members {
		n, err := floatComponents(module.Types[m.Type].Inner)
		if err != nil {
			return fmt.Errorf("member %s: %w", m.Name, err)
		}
		members = append(members, member{name: m.Name, components: n, offset: m.Offset, align: wgslAlign(n)})
	}

	// Offsets come from the lowered module; if they were left unset,
	// lay the block out with WGSL uniform alignment rules.
	laidOut := true
	for i := 1; i < len(members); i++ {
		if members[i].offset == 0 {
			laidOut = false
			break
		}
	}
	span := st.Span
	if !laidOut {
		var off, maxAlign uint32
		for i := range members {
			off = alignUp(off, members[i].align)
			members[i].offset = off
			off += uint32(members[i].components) * 4
			maxAlign = max(maxAlign, members[i].align)
		}
		span = alignUp(off, maxAlign)
	}
	if span == 0 && len(members) > 0 {
		last := members[len(members)-1]
		span = last.offset + uint32(last.components)*4
	}

	r.UniformBinding = binding
	r.UniformSize = alignUp(span, 16)
	for _, m := range members {
		r.add(Location{
			Name:    m.name,
			Kind:    LocationUniform,
			Binding: binding,
			Offset:  m.offset,
			Size:    m.components,
		})
	}
	return nil
}

func floatComponents(inner ir.TypeInner) (int, error) {
	switch t := inner.(type) {
	case ir.ScalarType:
		if t.Kind == ir.ScalarFloat && t.Width == 4 {
			return 1, nil
		}
	case ir.VectorType:
		if t.Scalar.Kind == ir.ScalarFloat && t.Scalar.Width == 4 {
			return int(t.Size), nil
		}
	}
	return 0, fmt.Errorf("unsupported type %T", inner)
}

func wgslAlign(components int) uint32 {
	switch components {
	case 1:
		return 4
	case 2:
		return 8
	default:
		return 16
	}
}

func alignUp(v, a uint32) uint32 {
	if a == 0 {
		return v
	}
	return (v + a - 1) / a * a
}

func checkEntryPoints(module *ir.Module) error {
	var vs, fs bool
	for _, ep := range module.EntryPoints {
		switch {
		case ep.Name == VertexEntryPoint && ep.Stage == ir.StageVertex:
			vs = true
		case ep.Name == FragmentEntryPoint && ep.Stage == ir.StageFragment:
			fs = true
		}
	}
	if !vs || !fs {
		return fmt.Errorf("entry points %s and %s are required", VertexEntryPoint, FragmentEntryPoint)
	}
	return nil
}
