// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command kawase inspects and exercises the Kawase blur filter.
//
// Usage:
//
//	kawase plan  [-radius N] [-width W] [-height H]
//	kawase spirv [-out DIR] [-debug]
//	kawase smoke [-config FILE] [-engine software|wgpu|recording|auto] [flags]
//
// plan prints the pass schedule for a radius and display size. spirv
// compiles the embedded WGSL programs to SPIR-V. smoke runs full frames on
// an engine; with the software engine the result is written as an image.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/kawase"
	"github.com/gogpu/kawase/backend/software"
	"github.com/gogpu/kawase/backend/wgpu"
	"github.com/gogpu/kawase/recording"
	"github.com/gogpu/kawase/render"
	"github.com/gogpu/wgpu/hal/noop"
)

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		usage()
	}

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "plan":
		err = runPlan(args)
	case "spirv":
		err = runSPIRV(args)
	case "smoke":
		err = runSmoke(args)
	default:
		usage()
	}
	if err != nil {
		log.Fatalf("kawase: %v", err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: kawase plan|spirv|smoke [flags]")
	os.Exit(2)
}

func runPlan(args []string) error {
	fs := flag.NewFlagSet("plan", flag.ExitOnError)
	var (
		radius = fs.Int("radius", 20, "blur radius in pixels")
		width  = fs.Int("width", 1920, "display width")
		height = fs.Int("height", 1080, "display height")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	w, h := kawase.DownsampledSize(*width, *height)
	plan := kawase.PlanPasses(kawase.ClampRadius(*radius, kawase.MaxRadius), w, h)
	fmt.Printf("display     %dx%d\n", *width, *height)
	fmt.Printf("composition %dx%d\n", w, h)
	fmt.Println(plan)
	for i, off := range plan.Offsets {
		fmt.Printf("pass %d: offset=(%.6f, %.6f) length=%.6f\n", i, off[0], off[1], kawase.OffsetLength(off))
	}
	return nil
}

func runSPIRV(args []string) error {
	fs := flag.NewFlagSet("spirv", flag.ExitOnError)
	var (
		out   = fs.String("out", ".", "output directory")
		debug = fs.Bool("debug", false, "emit debug names")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		return err
	}
	for _, src := range kawase.ProgramSources() {
		code, err := render.CompileSPIRV(src, *debug)
		if err != nil {
			return err
		}
		path := filepath.Join(*out, src.Label+".spv")
		if err := os.WriteFile(path, code, 0o644); err != nil {
			return err
		}
		log.Printf("%s: %d bytes", path, len(code))
	}
	return nil
}

func runSmoke(args []string) error {
	cfg := defaultConfig()
	fs := flag.NewFlagSet("smoke", flag.ExitOnError)
	configPath := fs.String("config", "", "TOML run description")
	verbose := fs.Bool("v", false, "debug logging")
	fs.StringVar(&cfg.Engine, "engine", cfg.Engine, "engine: software, wgpu, recording or auto")
	fs.IntVar(&cfg.Width, "width", cfg.Width, "display width")
	fs.IntVar(&cfg.Height, "height", cfg.Height, "display height")
	fs.IntVar(&cfg.Radius, "radius", cfg.Radius, "blur radius in pixels")
	fs.IntVar(&cfg.MaxRadius, "max_radius", cfg.MaxRadius, "radius clamp")
	fs.IntVar(&cfg.Layers, "layers", cfg.Layers, "blur layers per frame")
	fs.IntVar(&cfg.Frames, "frames", cfg.Frames, "frames to run")
	fs.StringVar(&cfg.Format, "format", cfg.Format, "output format")
	fs.BoolVar(&cfg.DepthStencil, "depth_stencil", cfg.DepthStencil, "give the composition a depth/stencil attachment")
	fs.StringVar(&cfg.Dither, "dither", cfg.Dither, "dither pattern image")
	fs.StringVar(&cfg.Input, "input", cfg.Input, "scene image (software engine)")
	fs.StringVar(&cfg.Output, "output", cfg.Output, "result image (software engine)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	// Flags given on the command line override the file.
	if *configPath != "" {
		if err := loadConfig(*configPath, &cfg); err != nil {
			return err
		}
		if err := fs.Parse(args); err != nil {
			return err
		}
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	kawase.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	return smoke(cfg)
}

// sceneDrawer is implemented by engines that can draw an image into the
// bound target.
type sceneDrawer interface {
	DrawImage(img image.Image) error
}

func smoke(cfg config) error {
	format, _ := parseFormat(cfg.Format)
	engine, cleanup, err := openEngine(cfg.Engine)
	if err != nil {
		return err
	}
	defer cleanup()

	if oc, ok := engine.(render.OutputConfigurer); ok {
		if err := oc.ConfigureOutput(cfg.Width, cfg.Height, format); err != nil {
			return err
		}
	}

	opts := []kawase.Option{kawase.WithMaxRadius(cfg.MaxRadius)}
	if cfg.DepthStencil {
		opts = append(opts, kawase.WithDepthStencil())
	}
	if cfg.Dither != "" {
		pattern, err := imaging.Open(cfg.Dither)
		if err != nil {
			return fmt.Errorf("dither pattern: %w", err)
		}
		opts = append(opts, kawase.WithDitherPattern(imaging.Grayscale(pattern)))
	}
	scene, err := loadScene(cfg)
	if err != nil {
		return err
	}

	filter, err := kawase.NewBlurFilter(engine, opts...)
	if err != nil {
		return err
	}
	defer filter.Close()

	display := kawase.DisplaySettings{Bounds: image.Rect(0, 0, cfg.Width, cfg.Height)}
	for frame := 0; frame < cfg.Frames; frame++ {
		// Every layer re-captures the original scene rather than the output
		// of the layer below it; only the layer index changes between them.
		for layer := 0; layer < cfg.Layers; layer++ {
			if err := filter.SetAsDrawTarget(display, cfg.Radius); err != nil {
				return err
			}
			if err := drawScene(engine, scene); err != nil {
				return err
			}
			if err := filter.Prepare(); err != nil {
				return err
			}
			if err := filter.Render(cfg.Layers, layer); err != nil {
				return err
			}
		}
	}
	log.Printf("%s: %d frame(s), %s", cfg.Engine, cfg.Frames, filter.Plan())

	switch e := engine.(type) {
	case *software.Engine:
		img, err := e.ReadPixels(nil)
		if err != nil {
			return err
		}
		if err := imaging.Save(img, cfg.Output); err != nil {
			return err
		}
		log.Printf("wrote %s", cfg.Output)
	case *recording.Engine:
		log.Printf("recorded %d commands, %d draws", len(e.Commands()), len(e.Draws()))
	}
	return nil
}

func drawScene(engine render.Engine, scene image.Image) error {
	if d, ok := engine.(sceneDrawer); ok {
		return d.DrawImage(scene)
	}
	return engine.Clear(gputypes.Color{R: 0.2, G: 0.4, B: 0.8, A: 1})
}

// loadScene opens the input image, or draws a checkerboard when none is
// given.
func loadScene(cfg config) (image.Image, error) {
	if cfg.Input != "" {
		img, err := imaging.Open(cfg.Input)
		if err != nil {
			return nil, fmt.Errorf("scene: %w", err)
		}
		return img, nil
	}
	img := image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height))
	const cell = 32
	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			c := color.RGBA{R: 30, G: 30, B: 40, A: 255}
			if (x/cell+y/cell)%2 == 0 {
				c = color.RGBA{R: 230, G: 200, B: 60, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img, nil
}

// openEngine creates the named engine. The wgpu engine runs on the noop
// HAL backend, which validates the call sequence without a GPU. "auto"
// takes the best engine the registry can create without a host device.
func openEngine(name string) (render.Engine, func(), error) {
	switch name {
	case "software":
		return software.NewEngine(), func() {}, nil
	case "recording":
		return recording.NewEngine(), func() {}, nil
	case "auto":
		e, picked, err := render.Default(nil)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("auto: using %s engine", picked)
		return e, func() {}, nil
	case "wgpu":
		inst, err := noop.API{}.CreateInstance(nil)
		if err != nil {
			return nil, nil, err
		}
		adapters := inst.EnumerateAdapters(nil)
		if len(adapters) == 0 {
			inst.Destroy()
			return nil, nil, fmt.Errorf("no noop adapter")
		}
		od, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
		if err != nil {
			inst.Destroy()
			return nil, nil, err
		}
		e, err := wgpu.NewEngine(od.Device, od.Queue)
		if err != nil {
			od.Device.Destroy()
			inst.Destroy()
			return nil, nil, err
		}
		return e, func() {
			_ = e.Close()
			od.Device.Destroy()
			inst.Destroy()
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown engine %q (have %v)", name, render.Engines())
	}
}
