// Package config loads LocalSketch settings from an optional TOML file.
package config

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// EraseMode selects how the eraser tool changes the drawing.
type EraseMode string

const (
	// EraseSubtract removes the points under the eraser and splits strokes.
	EraseSubtract EraseMode = "subtract"
	// ErasePaint records white erase strokes on top of the drawing.
	ErasePaint EraseMode = "paint"
)

type Config struct {
	Canvas  Canvas  `toml:"canvas"`
	Tools   Tools   `toml:"tools"`
	Session Session `toml:"session"`
	Log     Log     `toml:"log"`
}

// Canvas is the exported image size.
type Canvas struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// Tools holds the initial tool settings and the choices offered to the user.
type Tools struct {
	StrokeWidth  float64   `toml:"stroke_width"`
	EraserSize   float64   `toml:"eraser_size"`
	StrokeWidths []float64 `toml:"stroke_widths"`
	EraserSizes  []float64 `toml:"eraser_sizes"`
	Color        string    `toml:"color"`
	Palette      []string  `toml:"palette"`
	EraseMode    EraseMode `toml:"erase_mode"`
}

type Session struct {
	Port     int    `toml:"port"`
	Service  string `toml:"service"`
	Instance string `toml:"instance"`
}

type Log struct {
	Level string `toml:"level"`
}

// Palette is the default set of ink colours.
var Palette = []string{
	"#000000", // black
	"#FF3B30", // red
	"#007AFF", // blue
	"#34C759", // green
	"#FF9500", // orange
	"#AF52DE", // purple
	"#FF2D92", // pink
	"#FFCC00", // yellow
	"#8E8E93", // gray
	"#00C7BE", // teal
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Canvas: Canvas{Width: 1024, Height: 768},
		Tools: Tools{
			StrokeWidth:  3,
			EraserSize:   20,
			StrokeWidths: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
			EraserSizes:  []float64{10, 20, 30, 40, 50},
			Color:        Palette[0],
			Palette:      append([]string(nil), Palette...),
			EraseMode:    EraseSubtract,
		},
		Session: Session{
			Port:    8888,
			Service: "_localsketch._tcp",
		},
		Log: Log{Level: "info"},
	}
}

// Load reads the TOML file at path over the defaults. An empty path returns
// the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("could not read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%w: unknown key %q in %s", ErrInvalid, undecoded[0].String(), path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings the program cannot run without. Tool sizes
// are not checked: the board accepts whatever it is given.
func (c Config) Validate() error {
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return fmt.Errorf("%w: canvas size %gx%g", ErrInvalid, c.Canvas.Width, c.Canvas.Height)
	}
	switch c.Tools.EraseMode {
	case EraseSubtract, ErasePaint:
	default:
		return fmt.Errorf("%w: erase_mode %q", ErrInvalid, c.Tools.EraseMode)
	}
	if c.Session.Port <= 0 || c.Session.Port > 65535 {
		return fmt.Errorf("%w: port %d", ErrInvalid, c.Session.Port)
	}
	if c.Session.Service == "" {
		return fmt.Errorf("%w: empty service name", ErrInvalid)
	}
	return nil
}
