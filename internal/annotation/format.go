package annotation

import (
	"math"
	"strings"

	"pdf-annotator/pkg/colorutil"
)

// TextFormat carries the content and styling of a text annotation, as
// produced by the text format dialog.
type TextFormat struct {
	Text          string        `yaml:"text"`
	FontFamily    string        `yaml:"font"`
	FontSize      float64       `yaml:"size"` // PDF points
	Bold          bool          `yaml:"bold"`
	Italic        bool          `yaml:"italic"`
	Underline     bool          `yaml:"underline"`
	Strikethrough bool          `yaml:"strikethrough"`
	Color         colorutil.RGB `yaml:"color"`
}

// DefaultTextFormat returns the format used for new text.
func DefaultTextFormat(text string) TextFormat {
	return TextFormat{
		Text:       text,
		FontFamily: DefaultFont,
		FontSize:   DefaultFontSize,
		Color:      colorutil.Black,
	}
}

// Normalize trims surrounding whitespace from the text and fills in a
// missing font family.
func (f TextFormat) Normalize() TextFormat {
	f.Text = strings.TrimSpace(f.Text)
	if strings.TrimSpace(f.FontFamily) == "" {
		f.FontFamily = DefaultFont
	}
	return f
}

// Valid reports whether the format has text to show.
func (f TextFormat) Valid() bool {
	return strings.TrimSpace(f.Text) != ""
}

// Validate checks the format against the configured limits.
func (f TextFormat) Validate() error {
	if !f.Valid() {
		return invalid(KindText, "text", "must not be empty")
	}
	if math.IsNaN(f.FontSize) || f.FontSize < MinFontSize || f.FontSize > MaxFontSize {
		return invalid(KindText, "font_size", "must be between %g and %g, got %g",
			MinFontSize, MaxFontSize, f.FontSize)
	}
	return nil
}

// Face describes a concrete font for measurement or drawing.
type Face struct {
	Family string
	Size   float64 // pixels
	Bold   bool
	Italic bool
}

// TextExtent is the measured size of a line of text.
type TextExtent struct {
	Advance    float64
	LineHeight float64
}

// Measurer is the font metrics collaborator.
type Measurer interface {
	Measure(face Face, text string) TextExtent
}

// MeasurerFunc adapts a function to the Measurer interface.
type MeasurerFunc func(face Face, text string) TextExtent

// Measure implements Measurer.
func (f MeasurerFunc) Measure(face Face, text string) TextExtent {
	return f(face, text)
}
