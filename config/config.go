// Package config loads settings for the headless snapshot tool from TOML or
// YAML files. Values missing from a file keep their defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"crt-demo/core"
	"crt-demo/crt"
	"crt-demo/gfx"
	"crt-demo/math"
	"crt-demo/renderer"
)

type Format int

const (
	TOML Format = iota
	YAML
)

var ErrUnknownFormat = errors.New("config: unknown file format")

// FormatOf picks the decoder from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOML, nil
	case ".yaml", ".yml":
		return YAML, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, path)
}

// Snapshot configures one crtsnap run.
type Snapshot struct {
	Width  int `toml:"width" yaml:"width"`
	Height int `toml:"height" yaml:"height"`

	// Content is "solid" or "demo".
	Content string    `toml:"content" yaml:"content"`
	Fill    []float32 `toml:"fill" yaml:"fill"`

	Offset      []float32 `toml:"offset" yaml:"offset"`
	ClearColor  []float32 `toml:"clear_color" yaml:"clear_color"`
	TargetClear []float32 `toml:"target_clear" yaml:"target_clear"`
	// Filter is "linear" or "nearest".
	Filter string     `toml:"filter" yaml:"filter"`
	CRT    crt.Params `toml:"crt" yaml:"crt"`
}

func Default() Snapshot {
	return Snapshot{
		Width:       800,
		Height:      600,
		Content:     "demo",
		Fill:        []float32{0.8, 0.4, 0.2, 1},
		Offset:      []float32{0, 0},
		ClearColor:  []float32{1, 1, 1, 1},
		TargetClear: []float32{0, 0, 0, 0},
		Filter:      "linear",
		CRT:         crt.DefaultParams(),
	}
}

// Load reads path on top of the defaults and validates the result.
func Load(path string) (Snapshot, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Snapshot{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("reading config: %w", err)
	}
	defer f.Close()
	return Decode(f, format)
}

// Decode reads r on top of the defaults and validates the result. Unknown
// keys are rejected.
func Decode(r io.Reader, format Format) (Snapshot, error) {
	s := Default()
	var err error
	switch format {
	case TOML:
		dec := toml.NewDecoder(r)
		dec.DisallowUnknownFields()
		err = dec.Decode(&s)
	case YAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		err = dec.Decode(&s)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	default:
		return Snapshot{}, fmt.Errorf("%w: %d", ErrUnknownFormat, format)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

func (s Snapshot) Validate() error {
	if err := gfx.ValidateSize(s.Size()); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch s.Content {
	case "solid", "demo":
	default:
		return fmt.Errorf("config: content %q, want solid or demo", s.Content)
	}
	switch s.Filter {
	case "linear", "nearest":
	default:
		return fmt.Errorf("config: filter %q, want linear or nearest", s.Filter)
	}
	colors := []struct {
		name string
		v    []float32
	}{
		{"fill", s.Fill},
		{"clear_color", s.ClearColor},
		{"target_clear", s.TargetClear},
	}
	for _, c := range colors {
		if len(c.v) != 4 {
			return fmt.Errorf("config: %s has %d components, want 4", c.name, len(c.v))
		}
	}
	if len(s.Offset) != 2 {
		return fmt.Errorf("config: offset has %d components, want 2", len(s.Offset))
	}
	params := []struct {
		name string
		v    float32
	}{
		{"crt.warp", s.CRT.Warp},
		{"crt.scan", s.CRT.Scan},
		{"crt.split", s.CRT.Split},
	}
	for _, p := range params {
		if !finite(p.v) {
			return fmt.Errorf("config: %s is %v, want a finite number", p.name, p.v)
		}
	}
	return nil
}

func finite(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}

func (s Snapshot) Size() core.Size {
	return core.Size{Width: s.Width, Height: s.Height}
}

// FillColor is the colour painted by the solid content.
func (s Snapshot) FillColor() core.Color { return color4(s.Fill) }

// Renderer converts the snapshot into engine settings. The snapshot must
// have passed Validate.
func (s Snapshot) Renderer() renderer.Config {
	cfg := renderer.DefaultConfig()
	cfg.Offset = math.Vec2{X: s.Offset[0], Y: s.Offset[1]}
	cfg.ClearColor = color4(s.ClearColor)
	cfg.TargetClear = color4(s.TargetClear)
	cfg.CRT = s.CRT
	if s.Filter == "nearest" {
		cfg.Filter = gfx.FilterNearest
	}
	return cfg
}

func color4(v []float32) core.Color {
	return core.Color{R: v[0], G: v[1], B: v[2], A: v[3]}
}
