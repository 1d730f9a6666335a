// Package colorutil provides shared color utilities for the PDF annotator.
package colorutil

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// RGB is an opaque colour with 8-bit components, as stored on annotations.
type RGB struct {
	R, G, B uint8
}

// Common annotation colors.
var (
	Black = RGB{0, 0, 0}
	Red   = RGB{255, 0, 0}
	Blue  = RGB{0, 0, 255}
)

// RangeError reports a colour component outside 0-255.
type RangeError struct {
	Component string
	Value     int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("color component %s must be 0-255, got %d", e.Component, e.Value)
}

// NewRGB validates the components and returns the colour.
func NewRGB(r, g, b int) (RGB, error) {
	for _, c := range []struct {
		name string
		v    int
	}{{"red", r}, {"green", g}, {"blue", b}} {
		if c.v < 0 || c.v > 255 {
			return RGB{}, &RangeError{Component: c.name, Value: c.v}
		}
	}
	return RGB{R: uint8(r), G: uint8(g), B: uint8(b)}, nil
}

// ParseHex parses "#rrggbb" or "rrggbb".
func ParseHex(s string) (RGB, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Hex formats the colour as "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// RGBA returns the colour as an opaque color.RGBA.
func (c RGB) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// MarshalText implements encoding.TextMarshaler.
func (c RGB) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *RGB) UnmarshalText(b []byte) error {
	v, err := ParseHex(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
