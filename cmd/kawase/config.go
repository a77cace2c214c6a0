// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/pelletier/go-toml/v2"
)

// config is the smoke run description. Every field may come from a TOML
// file (-config) and be overridden by the flag of the same name.
type config struct {
	Engine       string `toml:"engine"`
	Width        int    `toml:"width"`
	Height       int    `toml:"height"`
	Radius       int    `toml:"radius"`
	MaxRadius    int    `toml:"max_radius"`
	Layers       int    `toml:"layers"`
	Frames       int    `toml:"frames"`
	Format       string `toml:"format"`
	DepthStencil bool   `toml:"depth_stencil"`
	Dither       string `toml:"dither"`
	Input        string `toml:"input"`
	Output       string `toml:"output"`
}

func defaultConfig() config {
	return config{
		Engine:    "software",
		Width:     640,
		Height:    360,
		Radius:    20,
		MaxRadius: 300,
		Layers:    1,
		Frames:    1,
		Format:    "rgba8unorm",
		Output:    "kawase.png",
	}
}

// loadConfig decodes the TOML file at path over cfg. Unknown keys are
// errors.
func loadConfig(path string, cfg *config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := toml.NewDecoder(f).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	return nil
}

func (c config) validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("invalid size %dx%d", c.Width, c.Height)
	case c.Radius < 0:
		return fmt.Errorf("invalid radius %d", c.Radius)
	case c.Layers < 1:
		return fmt.Errorf("invalid layer count %d", c.Layers)
	case c.Frames < 1:
		return fmt.Errorf("invalid frame count %d", c.Frames)
	}
	_, err := parseFormat(c.Format)
	return err
}

var formatNames = map[string]gputypes.TextureFormat{
	"rgba8unorm":      gputypes.TextureFormatRGBA8Unorm,
	"rgba8unorm-srgb": gputypes.TextureFormatRGBA8UnormSrgb,
	"bgra8unorm":      gputypes.TextureFormatBGRA8Unorm,
	"bgra8unorm-srgb": gputypes.TextureFormatBGRA8UnormSrgb,
	"rgba16float":     gputypes.TextureFormatRGBA16Float,
}

// parseFormat maps a WebGPU format name to a texture format.
func parseFormat(name string) (gputypes.TextureFormat, error) {
	f, ok := formatNames[strings.ToLower(name)]
	if !ok {
		return gputypes.TextureFormatUndefined, fmt.Errorf("unsupported format %q", name)
	}
	return f, nil
}
