// Package config loads the TOML file that configures the window, renderer and light rig.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-frame/engine/light"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"
)

// Config is the root of the configuration file.
type Config struct {
	Window   WindowConfig   `toml:"window"`
	Renderer RendererConfig `toml:"renderer"`
	Lighting LightingConfig `toml:"lighting"`
}

// WindowConfig is the [window] table.
type WindowConfig struct {
	Title     string `toml:"title"`
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	Resizable bool   `toml:"resizable"`
}

// RendererConfig is the [renderer] table.
type RendererConfig struct {
	// ClearColor is an sRGB hex color such as "#1a4080". Empty keeps the renderer default.
	ClearColor string `toml:"clear_color"`

	// TargetFPS is the frame rate cap. Zero keeps the default of 60.
	TargetFPS int `toml:"target_fps"`

	Debug                bool `toml:"debug"`
	ForceFallbackAdapter bool `toml:"force_fallback_adapter"`
	Profile              bool `toml:"profile"`
}

// LightingConfig is the [lighting] table. Slots not listed keep the default rig.
type LightingConfig struct {
	// Ambient is an sRGB hex color. Empty keeps black.
	Ambient     string             `toml:"ambient"`
	Directional []DirectionalLight `toml:"directional"`
	Point       []PointLight       `toml:"point"`
}

// DirectionalLight is one [[lighting.directional]] entry.
type DirectionalLight struct {
	Slot      int        `toml:"slot"`
	Direction [3]float32 `toml:"direction"`
	Color     string     `toml:"color"`
	Active    bool       `toml:"active"`
}

// PointLight is one [[lighting.point]] entry.
type PointLight struct {
	Slot        int        `toml:"slot"`
	Position    [3]float32 `toml:"position"`
	Color       string     `toml:"color"`
	Attenuation [3]float32 `toml:"attenuation"`
	Active      bool       `toml:"active"`
}

// Default returns the configuration used when no file is given.
//
// Returns:
//   - Config: the defaults
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:     "oxy-frame",
			Width:     1280,
			Height:    720,
			Resizable: true,
		},
		Renderer: RendererConfig{
			TargetFPS: 60,
		},
	}
}

// Load reads a TOML file over Default. Keys absent from the file keep their defaults;
// unknown keys are an error.
//
// Parameters:
//   - path: the file to read
//
// Returns:
//   - Config: the merged configuration
//   - error: an error if the file cannot be read, parsed or validated
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML over Default and validates the result.
//
// Parameters:
//   - data: the TOML document
//
// Returns:
//   - Config: the merged configuration
//   - error: an error if the document cannot be parsed or validated
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("unknown config keys:\n%s", strict.String())
		}
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks sizes, colors and light slots.
//
// Returns:
//   - error: every problem found, joined
func (c Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Renderer.TargetFPS < 0 {
		errs = append(errs, fmt.Errorf("renderer.target_fps %d must not be negative", c.Renderer.TargetFPS))
	}
	if _, err := parseColor(c.Renderer.ClearColor); err != nil {
		errs = append(errs, fmt.Errorf("renderer.clear_color: %w", err))
	}
	if _, err := parseColor(c.Lighting.Ambient); err != nil {
		errs = append(errs, fmt.Errorf("lighting.ambient: %w", err))
	}
	for i, d := range c.Lighting.Directional {
		if d.Slot < 0 || d.Slot >= light.DirLightNum {
			errs = append(errs, fmt.Errorf("lighting.directional[%d]: slot %d out of range [0, %d)", i, d.Slot, light.DirLightNum))
		}
		if _, err := parseColor(d.Color); err != nil {
			errs = append(errs, fmt.Errorf("lighting.directional[%d].color: %w", i, err))
		}
	}
	for i, p := range c.Lighting.Point {
		if p.Slot < 0 || p.Slot >= light.PointLightNum {
			errs = append(errs, fmt.Errorf("lighting.point[%d]: slot %d out of range [0, %d)", i, p.Slot, light.PointLightNum))
		}
		if _, err := parseColor(p.Color); err != nil {
			errs = append(errs, fmt.Errorf("lighting.point[%d].color: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// ClearColor returns the configured clear color converted to linear RGB, and false when the
// renderer default should be kept. Alpha is 0.
//
// Returns:
//   - wgpu.Color: the linear clear color
//   - bool: true if a clear color is configured
func (c Config) ClearColor() (wgpu.Color, bool) {
	col, err := parseColor(c.Renderer.ClearColor)
	if err != nil || col == nil {
		return wgpu.Color{}, false
	}
	r, g, b := col.LinearRgb()
	return wgpu.Color{R: r, G: g, B: b, A: 0}, true
}

// LightOptions converts the [lighting] table to light group options. Call after Validate.
//
// Returns:
//   - []light.LightGroupBuilderOption: the options, empty when nothing is configured
func (c Config) LightOptions() []light.LightGroupBuilderOption {
	var opts []light.LightGroupBuilderOption
	if col, _ := parseColor(c.Lighting.Ambient); col != nil {
		opts = append(opts, light.WithAmbientColor(linearVec3(*col)))
	}
	for _, d := range c.Lighting.Directional {
		l := light.DefaultDirectionalLight()
		l.Dir = mgl32.Vec4{d.Direction[0], d.Direction[1], d.Direction[2], 0}
		if col, _ := parseColor(d.Color); col != nil {
			l.Color = linearVec3(*col)
		}
		l.Active = d.Active
		opts = append(opts, light.WithDirectionalLight(d.Slot, l))
	}
	for _, p := range c.Lighting.Point {
		l := light.DefaultPointLight()
		l.Pos = mgl32.Vec3(p.Position)
		if col, _ := parseColor(p.Color); col != nil {
			l.Color = linearVec3(*col)
		}
		if p.Attenuation != [3]float32{} {
			l.Atten = mgl32.Vec3(p.Attenuation)
		}
		l.Active = p.Active
		opts = append(opts, light.WithPointLight(p.Slot, l))
	}
	return opts
}

// parseColor parses an sRGB hex color. An empty string yields nil.
func parseColor(s string) (*colorful.Color, error) {
	if s == "" {
		return nil, nil
	}
	col, err := colorful.Hex(s)
	if err != nil {
		return nil, err
	}
	return &col, nil
}

func linearVec3(c colorful.Color) mgl32.Vec3 {
	r, g, b := c.LinearRgb()
	return mgl32.Vec3{float32(r), float32(g), float32(b)}
}
