package canvas

import (
	"image"
	"image/color"

	"pdf-annotator/internal/annotation"
	"pdf-annotator/pkg/colorutil"
	"pdf-annotator/pkg/geometry"
)

// Border styling for draft annotations.
var (
	BorderColor = color.RGBA{B: 0xff, A: 0xff}
	BorderDash  = []float64{6, 4}
)

// BorderWidth is the dashed border width in display pixels.
const BorderWidth = 2.0

// Overlay describes everything drawn over one page raster at one zoom.
type Overlay struct {
	Page  int
	Zoom  float64
	Size  geometry.Size // page raster size in display pixels
	Items []Item
}

// Item is one draft annotation ready to draw. Exactly one of Text and
// Bitmap is set.
type Item struct {
	Annotation annotation.Annotation
	Rect       geometry.Rect // display-space bounds, outlined with a dashed border

	Text   *TextItem
	Bitmap image.Image // already scaled to Rect
}

// TextItem is a line of text drawn left-aligned and vertically centred in Box.
type TextItem struct {
	Content       string
	Face          annotation.Face
	Box           geometry.Rect
	Color         colorutil.RGB
	Underline     bool
	Strikethrough bool
}

// Describe builds the draw list for anns at zoom, in drawing order.
func Describe(anns []annotation.Annotation, zoom float64) []Item {
	d := &describer{zoom: zoom}
	for _, a := range anns {
		_ = a.Accept(d)
	}
	return d.items
}

type describer struct {
	zoom  float64
	items []Item
}

func (d *describer) VisitText(t *annotation.Text) error {
	r := t.DisplayRect(d.zoom)
	d.items = append(d.items, Item{
		Annotation: t,
		Rect:       r,
		Text: &TextItem{
			Content: t.Format.Text,
			Face:    t.DisplayFace(d.zoom),
			Box: geometry.Rect{
				X:      r.X + annotation.TextLeftInset,
				Y:      r.Y,
				Width:  r.Width - 2*annotation.TextLeftInset,
				Height: r.Height,
			},
			Color:         t.Format.Color,
			Underline:     t.Format.Underline,
			Strikethrough: t.Format.Strikethrough,
		},
	})
	return nil
}

func (d *describer) VisitImage(img *annotation.Image) error {
	d.items = append(d.items, Item{
		Annotation: img,
		Rect:       img.DisplayRect(d.zoom),
		Bitmap:     img.ScaledBitmap(d.zoom),
	})
	return nil
}

func (d *describer) VisitDoodle(dd *annotation.Doodle) error {
	d.items = append(d.items, Item{
		Annotation: dd,
		Rect:       dd.DisplayRect(d.zoom),
		Bitmap:     dd.ScaledBitmap(d.zoom),
	})
	return nil
}
