// Package annotation provides the draft annotation model: text, image and
// doodle variants positioned in the coordinate space they were created in.
//
// Every annotation stores its position (and, for images and doodles, its
// size) in creation-space: the display pixels of the viewport at the zoom
// level that was active when the annotation was placed. That zoom level is
// recorded once and never changes; all later conversions to the current
// viewport or to PDF user-space are relative to it.
package annotation

import (
	"math"

	"pdf-annotator/pkg/geometry"
)

// Rendering and interaction constants.
const (
	// BaseDisplayScale is applied to page rasters on top of the user zoom.
	BaseDisplayScale = 2.0

	EdgeResizeThreshold = 10.0 // display pixels from an edge that start a resize
	MinAnnotationSize   = 10.0 // creation-space floor for resized width/height

	TextWidthPadding  = 10.0
	TextHeightPadding = 6.0
	TextYOffset       = 4.0 // display pixels the text box is shifted down from the anchor
	TextLeftInset     = 5.0 // display pixels between box edge and first glyph

	DoodlePadding = 10.0
	DoodleMinSize = 100.0

	MinFontSize     = 6.0
	MaxFontSize     = 72.0
	DefaultFontSize = 12.0
	DefaultFont     = "Arial"

	MinPenWidth     = 1
	MaxPenWidth     = 20
	DefaultPenWidth = 2
)

// Kind identifies an annotation variant.
type Kind int

const (
	KindText Kind = iota
	KindImage
	KindDoodle
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindImage:
		return "image"
	case KindDoodle:
		return "doodle"
	default:
		return "unknown"
	}
}

// Annotation is implemented by *Text, *Image and *Doodle only.
type Annotation interface {
	// Kind returns the variant tag.
	Kind() Kind

	// Common returns the fields shared by all variants.
	Common() *Base

	// DisplayRect returns the bounding rectangle in display-space at zoom.
	DisplayRect(zoom float64) geometry.Rect

	// Accept dispatches to the visitor method for the concrete variant.
	Accept(v Visitor) error

	sealed()
}

// Visitor handles each annotation variant. Adding a variant adds a method
// here, so every dispatch site stops compiling until it handles it.
type Visitor interface {
	VisitText(t *Text) error
	VisitImage(img *Image) error
	VisitDoodle(d *Doodle) error
}

// Resizable is implemented by variants with a stored creation-space extent.
type Resizable interface {
	Annotation
	Size() geometry.Size
	SetSize(s geometry.Size)
}

// Placement describes where a new annotation is put.
type Placement struct {
	Position geometry.Point2D // creation-space point (display pixels at Zoom)
	Page     int              // zero-based page index
	Zoom     float64          // viewport zoom at creation
}

// Base holds the geometry shared by all variants.
type Base struct {
	X, Y float64
	Page int

	createdZoom float64
}

func newBase(kind Kind, p Placement) (Base, error) {
	if p.Zoom <= 0 || math.IsNaN(p.Zoom) || math.IsInf(p.Zoom, 0) {
		return Base{}, invalid(kind, "created_zoom", "must be a finite number > 0, got %g", p.Zoom)
	}
	if p.Page < 0 {
		return Base{}, invalid(kind, "page_index", "must be >= 0, got %d", p.Page)
	}
	if math.IsNaN(p.Position.X) || math.IsNaN(p.Position.Y) {
		return Base{}, invalid(kind, "position", "must not be NaN")
	}
	return Base{X: p.Position.X, Y: p.Position.Y, Page: p.Page, createdZoom: p.Zoom}, nil
}

// CreatedZoom returns the zoom that was active when the annotation was placed.
func (b *Base) CreatedZoom() float64 {
	return b.createdZoom
}

// Position returns the creation-space position.
func (b *Base) Position() geometry.Point2D {
	return geometry.Point2D{X: b.X, Y: b.Y}
}

// SetPosition moves the annotation in creation-space.
func (b *Base) SetPosition(p geometry.Point2D) {
	b.X, b.Y = p.X, p.Y
}

// Common implements Annotation.
func (b *Base) Common() *Base {
	return b
}

func (b *Base) sealed() {}
