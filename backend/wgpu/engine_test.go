// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"errors"
	"image"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/kawase"
	"github.com/gogpu/kawase/render"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// openNoopDevice opens a device on the noop HAL backend.
func openNoopDevice(t *testing.T) (hal.Device, hal.Queue) {
	t.Helper()
	api := noop.API{}
	inst, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance() error = %v", err)
	}
	adapters := inst.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		t.Fatal("noop backend exposes no adapters")
	}
	od, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		od.Device.Destroy()
		inst.Destroy()
	})
	return od.Device, od.Queue
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	device, queue := openNoopDevice(t)
	e, err := NewEngine(device, queue)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return e
}

// halProvider is a device handle exposing HAL objects, as a host
// application would.
type halProvider struct {
	render.NullDeviceHandle
	device hal.Device
	queue  hal.Queue
}

func (p halProvider) HalDevice() any { return p.device }
func (p halProvider) HalQueue() any  { return p.queue }

func (halProvider) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

var fullscreen = []float32{-1, -1, 0, 1, 3, -1, 2, 1, -1, 3, 0, -1}

func TestNewEngineNilDevice(t *testing.T) {
	if _, err := NewEngine(nil, nil); !errors.Is(err, ErrNilDevice) {
		t.Errorf("NewEngine(nil, nil) error = %v, want ErrNilDevice", err)
	}
}

func TestRegisteredFactory(t *testing.T) {
	if !render.IsRegistered("wgpu") {
		t.Fatal("wgpu engine not registered")
	}
	if _, err := render.NewEngine("wgpu", nil); !errors.Is(err, ErrNoHAL) {
		t.Errorf("NewEngine(wgpu, nil) error = %v, want ErrNoHAL", err)
	}

	device, queue := openNoopDevice(t)
	e, err := render.NewEngine("wgpu", halProvider{device: device, queue: queue})
	if err != nil {
		t.Fatalf("NewEngine(wgpu, provider) error = %v", err)
	}
	defer e.(*Engine).Close()
	if got := e.OutputFormat(); got != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("OutputFormat() = %v, want provider surface format", got)
	}
}

func TestProviderWrongTypes(t *testing.T) {
	_, err := NewEngineFromProvider(halProvider{})
	if !errors.Is(err, ErrNoHAL) {
		t.Errorf("NewEngineFromProvider(nil HAL) error = %v, want ErrNoHAL", err)
	}
}

func TestCreateTargetDepthStencil(t *testing.T) {
	e := newTestEngine(t)
	tests := []struct {
		name  string
		desc  render.TargetDescriptor
		depth bool
	}{
		{"color", render.TargetDescriptor{Label: "c", Width: 8, Height: 8}, false},
		{"depth", render.TargetDescriptor{Label: "d", Width: 8, Height: 8, DepthStencil: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, err := e.CreateTarget(tt.desc)
			if err != nil {
				t.Fatalf("CreateTarget() error = %v", err)
			}
			if got := rt.HasDepthStencil(); got != tt.depth {
				t.Errorf("HasDepthStencil() = %v, want %v", got, tt.depth)
			}
			if rt.Format() != gputypes.TextureFormatRGBA8Unorm {
				t.Errorf("Format() = %v, want RGBA8Unorm default", rt.Format())
			}
		})
	}

	if _, err := e.CreateTarget(render.TargetDescriptor{Label: "bad"}); !errors.Is(err, render.ErrInvalidDescriptor) {
		t.Errorf("CreateTarget(0x0) error = %v, want ErrInvalidDescriptor", err)
	}
}

func TestUploadTargetSize(t *testing.T) {
	e := newTestEngine(t)
	rt, _ := e.CreateTarget(render.TargetDescriptor{Label: "t", Width: 2, Height: 2})
	if err := e.UploadTarget(rt, make([]byte, 16)); err != nil {
		t.Errorf("UploadTarget() error = %v", err)
	}
	if err := e.UploadTarget(rt, make([]byte, 15)); !errors.Is(err, render.ErrInvalidDescriptor) {
		t.Errorf("UploadTarget(short) error = %v, want ErrInvalidDescriptor", err)
	}
}

func TestLayoutEntries(t *testing.T) {
	tests := []struct {
		label    string
		want     int
		samplers int
	}{
		{kawase.BlurProgram, 3, 1},
		{kawase.MixProgram, 4, 1},
		{kawase.DitherMixProgram, 6, 2},
	}
	for _, src := range kawase.ProgramSources() {
		refl, err := render.Reflect(src)
		if err != nil {
			t.Fatalf("Reflect(%s) error = %v", src.Label, err)
		}
		for _, tt := range tests {
			if tt.label != src.Label {
				continue
			}
			entries := layoutEntries(refl)
			if len(entries) != tt.want {
				t.Errorf("%s: %d layout entries, want %d", src.Label, len(entries), tt.want)
			}
			samplers := 0
			for _, entry := range entries {
				if entry.Sampler != nil {
					samplers++
				}
			}
			if samplers != tt.samplers {
				t.Errorf("%s: %d sampler entries, want %d", src.Label, samplers, tt.samplers)
			}
		}
	}
}

func TestDrawRequiresOutput(t *testing.T) {
	e := newTestEngine(t)
	p, err := e.CreateProgram(kawase.ProgramSources()[0])
	if err != nil {
		t.Fatalf("CreateProgram() error = %v", err)
	}
	vb, err := e.CreateVertexBuffer("tri", fullscreen)
	if err != nil {
		t.Fatalf("CreateVertexBuffer() error = %v", err)
	}
	src, _ := e.CreateTarget(render.TargetDescriptor{Label: "src", Width: 4, Height: 4})
	loc, _ := p.Location("source_texture")
	_ = e.UseProgram(p)
	_ = e.SetTexture(loc, src)

	if err := e.Draw(vb); !errors.Is(err, ErrNoOutput) {
		t.Errorf("Draw() error = %v, want ErrNoOutput", err)
	}
	if err := e.ConfigureOutput(4, 4, gputypes.TextureFormatUndefined); err != nil {
		t.Fatalf("ConfigureOutput() error = %v", err)
	}
	if err := e.Draw(vb); err != nil {
		t.Errorf("Draw() after ConfigureOutput error = %v", err)
	}
	if len(e.inFlight) != 0 {
		t.Errorf("%d resources in flight on a synchronous queue, want 0", len(e.inFlight))
	}
}

func TestDrawFeedbackLoop(t *testing.T) {
	e := newTestEngine(t)
	p, _ := e.CreateProgram(kawase.ProgramSources()[0])
	vb, _ := e.CreateVertexBuffer("tri", fullscreen)
	rt, _ := e.CreateTarget(render.TargetDescriptor{Label: "t", Width: 4, Height: 4})
	loc, _ := p.Location("source_texture")
	_ = e.UseProgram(p)
	_ = e.SetTexture(loc, rt)
	_ = e.BindTarget(rt)
	if err := e.Draw(vb); !errors.Is(err, render.ErrFeedbackLoop) {
		t.Errorf("Draw() error = %v, want ErrFeedbackLoop", err)
	}
}

func TestPipelineVariants(t *testing.T) {
	e := newTestEngine(t)
	p, _ := e.CreateProgram(kawase.ProgramSources()[0])
	wp := p.(*Program)
	vb, _ := e.CreateVertexBuffer("tri", fullscreen)
	src, _ := e.CreateTarget(render.TargetDescriptor{Label: "src", Width: 4, Height: 4})
	plain, _ := e.CreateTarget(render.TargetDescriptor{Label: "plain", Width: 4, Height: 4})
	depth, _ := e.CreateTarget(render.TargetDescriptor{Label: "depth", Width: 4, Height: 4, DepthStencil: true})
	loc, _ := p.Location("source_texture")
	_ = e.UseProgram(p)
	_ = e.SetTexture(loc, src)

	for _, dst := range []render.Target{plain, plain, depth} {
		if err := e.BindTarget(dst); err != nil {
			t.Fatalf("BindTarget() error = %v", err)
		}
		if err := e.Draw(vb); err != nil {
			t.Fatalf("Draw(%s) error = %v", dst.Label(), err)
		}
	}
	if got := len(wp.pipelines); got != 2 {
		t.Errorf("%d pipelines, want 2 (plain and depth/stencil)", got)
	}
}

func TestSetSurfaceView(t *testing.T) {
	e := newTestEngine(t)
	if err := e.SetSurfaceView(nil, 4, 4, gputypes.TextureFormatBGRA8Unorm); !errors.Is(err, render.ErrInvalidDescriptor) {
		t.Errorf("SetSurfaceView(nil) error = %v, want ErrInvalidDescriptor", err)
	}

	rt, _ := e.CreateTarget(render.TargetDescriptor{Label: "swapchain", Width: 4, Height: 4})
	view := rt.(*Target).View()
	if err := e.SetSurfaceView(view, 4, 4, gputypes.TextureFormatBGRA8UnormSrgb); err != nil {
		t.Fatalf("SetSurfaceView() error = %v", err)
	}
	if got := e.OutputFormat(); got != gputypes.TextureFormatBGRA8UnormSrgb {
		t.Errorf("OutputFormat() = %v, want BGRA8UnormSrgb", got)
	}
	if err := e.Clear(gputypes.Color{A: 1}); err != nil {
		t.Errorf("Clear() on surface error = %v", err)
	}
}

func TestCloseIdempotent(t *testing.T) {
	device, queue := openNoopDevice(t)
	e, _ := NewEngine(device, queue)
	rt, _ := e.CreateTarget(render.TargetDescriptor{Label: "t", Width: 2, Height: 2})
	if err := e.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := e.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := e.BindTarget(rt); !errors.Is(err, ErrDestroyed) {
		t.Errorf("BindTarget() after Close error = %v, want ErrDestroyed", err)
	}
	if _, err := e.CreateTarget(render.TargetDescriptor{Label: "t", Width: 2, Height: 2}); !errors.Is(err, ErrClosed) {
		t.Errorf("CreateTarget() after Close error = %v, want ErrClosed", err)
	}
}

func TestBlurFilterFrame(t *testing.T) {
	e := newTestEngine(t)
	if err := e.ConfigureOutput(1920, 1080, gputypes.TextureFormatRGBA8Unorm); err != nil {
		t.Fatalf("ConfigureOutput() error = %v", err)
	}
	noise := image.NewGray(image.Rect(0, 0, kawase.DitherSize, kawase.DitherSize))
	for i := range noise.Pix {
		noise.Pix[i] = uint8(i * 37)
	}

	f, err := kawase.NewBlurFilter(e, kawase.WithDitherPattern(noise))
	if err != nil {
		t.Fatalf("NewBlurFilter() error = %v", err)
	}
	defer f.Close()

	display := kawase.DisplaySettings{Bounds: image.Rect(0, 0, 1920, 1080)}
	for frame := 0; frame < 2; frame++ {
		if err := f.SetAsDrawTarget(display, 20); err != nil {
			t.Fatalf("frame %d: SetAsDrawTarget() error = %v", frame, err)
		}
		if err := e.Clear(gputypes.Color{R: 1, A: 1}); err != nil {
			t.Fatalf("frame %d: scene Clear() error = %v", frame, err)
		}
		if err := f.Prepare(); err != nil {
			t.Fatalf("frame %d: Prepare() error = %v", frame, err)
		}
		if err := f.Render(1, 0); err != nil {
			t.Fatalf("frame %d: Render() error = %v", frame, err)
		}
	}

	if got := f.LastDrawTarget(); got == nil || got.Width() != 288 || got.Height() != 162 {
		t.Errorf("LastDrawTarget() = %v, want a 288x162 target", got)
	}
	if got := len(e.samplers); got != 2 {
		t.Errorf("%d samplers, want clamp and repeat", got)
	}
}

func TestFloat32Bytes(t *testing.T) {
	got := float32Bytes([]float32{1, -2})
	want := []byte{0x00, 0x00, 0x80, 0x3f, 0x00, 0x00, 0x00, 0xc0}
	if string(got) != string(want) {
		t.Errorf("float32Bytes() = %x, want %x", got, want)
	}
}
