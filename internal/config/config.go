// Package config loads the application configuration from a TOML file.
package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"pdf-annotator/internal/annotation"
	"pdf-annotator/internal/logging"
	"pdf-annotator/pkg/colorutil"

	"github.com/BurntSushi/toml"
)

// Config is the decoded configuration file.
type Config struct {
	Zoom    ZoomConfig           `toml:"zoom"`
	Text    TextConfig           `toml:"text"`
	Pen     PenConfig            `toml:"pen"`
	Fonts   map[string]FontFiles `toml:"fonts"`
	Log     LogConfig            `toml:"log"`
	TempDir string               `toml:"temp_dir"`

	// dir is the directory relative font paths are resolved against.
	dir string
}

// ZoomConfig bounds the canvas zoom.
type ZoomConfig struct {
	Min     float64 `toml:"min"`
	Max     float64 `toml:"max"`
	Default float64 `toml:"default"`
	Step    float64 `toml:"step"`
}

// TextConfig is the format offered for new text.
type TextConfig struct {
	Family string        `toml:"family"`
	Size   float64       `toml:"size"`
	Color  colorutil.RGB `toml:"color"`
}

// PenConfig is the stroke style offered for new doodles.
type PenConfig struct {
	Width int           `toml:"width"`
	Color colorutil.RGB `toml:"color"`
}

// FontFiles names the TrueType files of one family. Any member may be empty.
type FontFiles struct {
	Regular    string `toml:"regular"`
	Bold       string `toml:"bold"`
	Italic     string `toml:"italic"`
	BoldItalic string `toml:"bold_italic"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Zoom: ZoomConfig{Min: 0.25, Max: 4, Default: 1, Step: 0.25},
		Text: TextConfig{
			Family: annotation.DefaultFont,
			Size:   annotation.DefaultFontSize,
			Color:  colorutil.Black,
		},
		Pen: PenConfig{Width: annotation.DefaultPenWidth, Color: colorutil.Black},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
// Unknown keys are rejected so typos do not go unnoticed.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.dir = filepath.Dir(path)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks ranges.
func (c *Config) Validate() error {
	z := c.Zoom
	if !(z.Min > 0 && z.Min <= z.Max) {
		return fmt.Errorf("zoom: min %g and max %g must satisfy 0 < min <= max", z.Min, z.Max)
	}
	if z.Default < z.Min || z.Default > z.Max {
		return fmt.Errorf("zoom: default %g outside [%g, %g]", z.Default, z.Min, z.Max)
	}
	if z.Step <= 0 {
		return fmt.Errorf("zoom: step must be > 0, got %g", z.Step)
	}
	if err := c.TextFormat("x").Validate(); err != nil {
		return fmt.Errorf("text: %w", err)
	}
	if c.Pen.Width < annotation.MinPenWidth || c.Pen.Width > annotation.MaxPenWidth {
		return fmt.Errorf("pen: width must be between %d and %d, got %d",
			annotation.MinPenWidth, annotation.MaxPenWidth, c.Pen.Width)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

// TextFormat returns the configured default format carrying text.
func (c *Config) TextFormat(text string) annotation.TextFormat {
	f := annotation.DefaultTextFormat(text)
	if c.Text.Family != "" {
		f.FontFamily = c.Text.Family
	}
	f.FontSize = c.Text.Size
	f.Color = c.Text.Color
	return f
}

// LoggingOptions converts the [log] table.
func (c *Config) LoggingOptions() logging.Options {
	return logging.Options{Level: c.Log.Level, Format: c.Log.Format, File: c.Log.File}
}

// FontFamilies returns the configured family names in sorted order.
func (c *Config) FontFamilies() []string {
	names := make([]string, 0, len(c.Fonts))
	for name := range c.Fonts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolvePath makes a path from the file relative to the file's directory.
func (c *Config) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}
