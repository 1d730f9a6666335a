package canvas

import (
	"image"
	"image/draw"
	"math"

	"pdf-annotator/internal/fontmetrics"
	imgutil "pdf-annotator/internal/image"
	"pdf-annotator/internal/projector"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Renderer draws overlays in software, for previews and for windows that
// blit a finished bitmap.
type Renderer struct {
	fonts *fontmetrics.Library
	blend imgutil.BlendMode
}

// NewRenderer creates a renderer drawing text with fonts.
func NewRenderer(fonts *fontmetrics.Library) *Renderer {
	return &Renderer{fonts: fonts}
}

// SetBlend sets how the overlay combines with the page raster.
func (r *Renderer) SetBlend(mode imgutil.BlendMode) {
	r.blend = mode
}

// Render composites ov over the page raster. A nil page renders the
// overlay on white. The page is resampled if its size does not match.
func (r *Renderer) Render(ov Overlay, page image.Image) (*image.RGBA, error) {
	w := int(math.Ceil(ov.Size.Width))
	h := int(math.Ceil(ov.Size.Height))
	comp := imgutil.NewComposite(w, h)

	if page != nil {
		if b := page.Bounds(); b.Dx() != w || b.Dy() != h {
			page = imgutil.Scale(page, w, h)
		}
		comp.AddLayer(page, imgutil.BlendNormal, 0, 0)
	}

	layer, err := r.DrawItems(w, h, ov.Items)
	if err != nil {
		return nil, err
	}
	comp.AddLayer(layer, r.blend, 0, 0)
	return comp.Render(), nil
}

// DrawItems draws items on a transparent w×h bitmap.
func (r *Renderer) DrawItems(w, h int, items []Item) (*image.RGBA, error) {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for _, it := range items {
		switch {
		case it.Bitmap != nil:
			drawBitmap(dst, it)
		case it.Text != nil:
			if err := r.drawText(dst, it.Text); err != nil {
				return nil, err
			}
		}
	}
	drawBorders(dst, items)
	return dst, nil
}

func drawBitmap(dst *image.RGBA, it Item) {
	at := image.Pt(int(math.Round(it.Rect.X)), int(math.Round(it.Rect.Y)))
	b := it.Bitmap.Bounds()
	draw.Draw(dst, b.Sub(b.Min).Add(at), it.Bitmap, b.Min, draw.Over)
}

func (r *Renderer) drawText(dst *image.RGBA, t *TextItem) error {
	face, err := r.fonts.Face(t.Face)
	if err != nil {
		return err
	}
	m := face.Metrics()
	ascent, descent := toFloat(m.Ascent), toFloat(m.Descent)
	baseline := t.Box.Center().Y + (ascent-descent)/2

	src := image.NewUniform(t.Color.RGBA())
	d := font.Drawer{
		Dst:  dst,
		Src:  src,
		Face: face,
		Dot:  fixed.Point26_6{X: fromFloat(t.Box.X), Y: fromFloat(baseline)},
	}
	d.DrawString(t.Content)

	if !t.Underline && !t.Strikethrough {
		return nil
	}
	x0, x1 := int(math.Round(t.Box.X)), d.Dot.X.Round()
	thick := int(math.Max(1, math.Round(t.Face.Size/16)))
	if t.Underline {
		y := int(math.Round(baseline)) + thick
		draw.Draw(dst, image.Rect(x0, y, x1, y+thick), src, image.Point{}, draw.Over)
	}
	if t.Strikethrough {
		y := int(math.Round(baseline - projector.StrikethroughRatio*t.Face.Size))
		draw.Draw(dst, image.Rect(x0, y, x1, y+thick), src, image.Point{}, draw.Over)
	}
	return nil
}

// drawBorders outlines every item with a dashed rectangle.
func drawBorders(dst *image.RGBA, items []Item) {
	if len(items) == 0 {
		return
	}
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	dasher.SetStroke(fromFloat(BorderWidth), 4*64, rasterx.ButtCap, nil, rasterx.FlatGap, rasterx.MiterClip, BorderDash, 0)
	dasher.SetColor(BorderColor)

	for _, it := range items {
		dasher.Clear()
		rasterx.AddRect(it.Rect.Left(), it.Rect.Top(), it.Rect.Right(), it.Rect.Bottom(), 0, dasher)
		dasher.Draw()
	}
}

func toFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func fromFloat(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}
