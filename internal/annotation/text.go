package annotation

import (
	"pdf-annotator/pkg/geometry"

	"gonum.org/v1/gonum/floats/scalar"
)

// zoomKeyPrecision is the number of decimals a zoom is rounded to when used
// as a measurement cache key.
const zoomKeyPrecision = 6

// Text is a single line of text anchored at the bottom-left of its box.
type Text struct {
	Base
	Format TextFormat

	measurer Measurer

	// creation holds the measurement at the created zoom; it changes only
	// when the format is edited.
	creation TextExtent

	// display caches the most recent viewport measurement.
	displayZoom float64
	display     TextExtent
	hasDisplay  bool
}

// NewText creates a text annotation. The format must be valid; callers
// filter empty text before getting here.
func NewText(p Placement, f TextFormat, m Measurer) (*Text, error) {
	base, err := newBase(KindText, p)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, invalid(KindText, "measurer", "is required")
	}
	f = f.Normalize()
	if err := f.Validate(); err != nil {
		return nil, err
	}
	t := &Text{Base: base, Format: f, measurer: m}
	t.creation = t.measure(base.createdZoom)
	return t, nil
}

// Kind implements Annotation.
func (t *Text) Kind() Kind { return KindText }

// Accept implements Annotation.
func (t *Text) Accept(v Visitor) error { return v.VisitText(t) }

// SetFormat replaces the content and styling, re-measuring the text.
func (t *Text) SetFormat(f TextFormat) error {
	f = f.Normalize()
	if err := f.Validate(); err != nil {
		return err
	}
	t.Format = f
	t.hasDisplay = false
	t.creation = t.measure(t.createdZoom)
	return nil
}

// DisplayFace returns the font used to show the text at zoom: the PDF point
// size scaled by the base display scale and the zoom.
func (t *Text) DisplayFace(zoom float64) Face {
	return Face{
		Family: t.Format.FontFamily,
		Size:   t.Format.FontSize * BaseDisplayScale * zoom,
		Bold:   t.Format.Bold,
		Italic: t.Format.Italic,
	}
}

func (t *Text) measure(zoom float64) TextExtent {
	return t.measurer.Measure(t.DisplayFace(zoom), t.Format.Text)
}

// Measure returns the text metrics at zoom, reusing the cached value when
// the zoom has not changed since the last call.
func (t *Text) Measure(zoom float64) TextExtent {
	key := scalar.Round(zoom, zoomKeyPrecision)
	if scalar.Round(t.createdZoom, zoomKeyPrecision) == key {
		return t.creation
	}
	if t.hasDisplay && t.displayZoom == key {
		return t.display
	}
	t.display = t.measure(zoom)
	t.displayZoom = key
	t.hasDisplay = true
	return t.display
}

// DisplaySize returns the padded box size at zoom.
func (t *Text) DisplaySize(zoom float64) geometry.Size {
	ext := t.Measure(zoom)
	return geometry.Size{
		Width:  ext.Advance + TextWidthPadding,
		Height: ext.LineHeight + TextHeightPadding,
	}
}

// CreationExtent returns the metrics measured at the created zoom.
func (t *Text) CreationExtent() TextExtent {
	return t.creation
}

// CreationSize returns the padded box size in creation-space.
func (t *Text) CreationSize() geometry.Size {
	return geometry.Size{
		Width:  t.creation.Advance + TextWidthPadding,
		Height: t.creation.LineHeight + TextHeightPadding,
	}
}

// DisplayRect implements Annotation. The anchor is the bottom of the box.
func (t *Text) DisplayRect(zoom float64) geometry.Rect {
	pos := DisplayPosition(t, zoom)
	size := t.DisplaySize(zoom)
	return geometry.Rect{
		X:      pos.X,
		Y:      pos.Y - size.Height + TextYOffset,
		Width:  size.Width,
		Height: size.Height,
	}
}
