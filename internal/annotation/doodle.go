package annotation

import (
	"image"
	"image/color"
	"math"

	"pdf-annotator/pkg/colorutil"
	"pdf-annotator/pkg/geometry"

	"golang.org/x/image/vector"
	"gonum.org/v1/gonum/floats"
)

// joinSegments is the number of polygon sides used for round stroke joints.
const joinSegments = 12

// Stroke is one continuous pen path in doodle-local coordinates.
type Stroke struct {
	Points []geometry.Point2D `yaml:"points"`
	Color  colorutil.RGB      `yaml:"color"`
	Width  int                `yaml:"width"` // pen width in pixels
}

// NewStroke validates and returns a stroke.
func NewStroke(points []geometry.Point2D, c colorutil.RGB, width int) (Stroke, error) {
	s := Stroke{Points: points, Color: c, Width: width}
	if err := s.Validate(); err != nil {
		return Stroke{}, err
	}
	return s, nil
}

// Validate checks point count and pen width.
func (s Stroke) Validate() error {
	if len(s.Points) == 0 {
		return invalid(KindDoodle, "stroke", "has no points")
	}
	if s.Width < MinPenWidth || s.Width > MaxPenWidth {
		return invalid(KindDoodle, "pen_width", "must be between %d and %d, got %d",
			MinPenWidth, MaxPenWidth, s.Width)
	}
	for _, p := range s.Points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) {
			return invalid(KindDoodle, "stroke", "contains a NaN point")
		}
	}
	return nil
}

// Drawable reports whether the stroke has at least one segment.
func (s Stroke) Drawable() bool {
	return len(s.Points) >= 2
}

// Drawing is the result of the doodle dialog.
type Drawing struct {
	Strokes []Stroke `yaml:"strokes"`
}

// Valid reports whether at least one stroke would leave a mark.
func (d Drawing) Valid() bool {
	for _, s := range d.Strokes {
		if s.Drawable() {
			return true
		}
	}
	return false
}

// Doodle is a freehand drawing made of strokes.
type Doodle struct {
	Base
	Strokes []Stroke

	Width, Height float64

	autoSize bool
	raster   *image.RGBA
}

// NewDoodle creates a doodle annotation. A zero size means the size is
// derived from the stroke bounds and follows later strokes.
func NewDoodle(p Placement, d Drawing, size geometry.Size) (*Doodle, error) {
	base, err := newBase(KindDoodle, p)
	if err != nil {
		return nil, err
	}
	for _, s := range d.Strokes {
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}
	doodle := &Doodle{
		Base:    base,
		Strokes: append([]Stroke(nil), d.Strokes...),
	}
	switch {
	case size.Width == 0 && size.Height == 0:
		doodle.fitBounds()
	case size.Width > 0 && size.Height > 0:
		doodle.SetSize(size)
	default:
		return nil, invalid(KindDoodle, "size", "must be > 0, got %gx%g", size.Width, size.Height)
	}
	return doodle, nil
}

// Kind implements Annotation.
func (d *Doodle) Kind() Kind { return KindDoodle }

// Accept implements Annotation.
func (d *Doodle) Accept(v Visitor) error { return v.VisitDoodle(d) }

// Size implements Resizable.
func (d *Doodle) Size() geometry.Size {
	return geometry.Size{Width: d.Width, Height: d.Height}
}

// SetSize implements Resizable. An explicit size stops the doodle from
// following its stroke bounds.
func (d *Doodle) SetSize(s geometry.Size) {
	d.Width, d.Height = s.Width, s.Height
	d.autoSize = false
}

// DisplayRect implements Annotation.
func (d *Doodle) DisplayRect(zoom float64) geometry.Rect {
	return displayRectOf(d, zoom)
}

// AddStroke appends a stroke and drops the cached raster.
func (d *Doodle) AddStroke(s Stroke) error {
	if err := s.Validate(); err != nil {
		return err
	}
	d.Strokes = append(d.Strokes, s)
	d.raster = nil
	if d.autoSize {
		d.fitBounds()
	}
	return nil
}

func (d *Doodle) fitBounds() {
	b := d.CalculateBounds()
	d.Width, d.Height = b.Width, b.Height
	d.autoSize = true
}

// AutoSized reports whether the size still follows the stroke bounds.
func (d *Doodle) AutoSized() bool {
	return d.autoSize
}

// extremes returns min and max over all stroke points. ok is false when
// there are no points.
func (d *Doodle) extremes() (lo, hi geometry.Point2D, ok bool) {
	var xs, ys []float64
	for _, s := range d.Strokes {
		for _, p := range s.Points {
			xs = append(xs, p.X)
			ys = append(ys, p.Y)
		}
	}
	if len(xs) == 0 {
		return lo, hi, false
	}
	lo = geometry.Point2D{X: floats.Min(xs), Y: floats.Min(ys)}
	hi = geometry.Point2D{X: floats.Max(xs), Y: floats.Max(ys)}
	return lo, hi, true
}

// CalculateBounds returns the padded stroke extent, never smaller than
// DoodleMinSize on either axis.
func (d *Doodle) CalculateBounds() geometry.Size {
	lo, hi, ok := d.extremes()
	if !ok {
		return geometry.Size{Width: DoodleMinSize, Height: DoodleMinSize}
	}
	return geometry.Size{
		Width:  math.Max(DoodleMinSize, hi.X-lo.X+2*DoodlePadding),
		Height: math.Max(DoodleMinSize, hi.Y-lo.Y+2*DoodlePadding),
	}
}

// Rasterize returns the strokes drawn on a transparent bitmap the size of
// the stroke bounds, with the top-left point inset by DoodlePadding. The
// result is cached until the next AddStroke.
func (d *Doodle) Rasterize() *image.RGBA {
	if d.raster != nil {
		return d.raster
	}
	bounds := d.CalculateBounds()
	w, h := int(math.Ceil(bounds.Width)), int(math.Ceil(bounds.Height))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))

	lo, _, ok := d.extremes()
	if ok {
		offset := geometry.Point2D{X: DoodlePadding - lo.X, Y: DoodlePadding - lo.Y}
		for _, s := range d.Strokes {
			drawStroke(dst, s, offset)
		}
	}
	d.raster = dst
	return dst
}

// ScaledBitmap returns the raster resampled to the display extent at zoom.
func (d *Doodle) ScaledBitmap(zoom float64) image.Image {
	return scaleBitmap(d.Rasterize(), DisplayExtent(d, zoom))
}

func drawStroke(dst *image.RGBA, s Stroke, offset geometry.Point2D) {
	if !s.Drawable() {
		return
	}
	b := dst.Bounds()
	r := vector.NewRasterizer(b.Dx(), b.Dy())
	half := float64(s.Width) / 2

	for i := 0; i+1 < len(s.Points); i++ {
		p1 := s.Points[i].Add(offset)
		p2 := s.Points[i+1].Add(offset)
		dx, dy := p2.X-p1.X, p2.Y-p1.Y
		length := math.Hypot(dx, dy)
		if length > 0 {
			n := geometry.Point2D{X: -dy / length * half, Y: dx / length * half}
			addPolygon(r, []geometry.Point2D{p1.Add(n), p2.Add(n), p2.Sub(n), p1.Sub(n)})
		}
		addPolygon(r, circle(p1, half))
	}
	addPolygon(r, circle(s.Points[len(s.Points)-1].Add(offset), half))

	src := image.NewUniform(color.RGBA{R: s.Color.R, G: s.Color.G, B: s.Color.B, A: 0xff})
	r.Draw(dst, b, src, image.Point{})
}

func circle(c geometry.Point2D, radius float64) []geometry.Point2D {
	pts := make([]geometry.Point2D, joinSegments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / joinSegments
		pts[i] = geometry.Point2D{X: c.X + radius*math.Cos(a), Y: c.Y + radius*math.Sin(a)}
	}
	return pts
}

// addPolygon adds a closed path with positive winding. The rasterizer sums
// signed coverage, so overlapping shapes must share an orientation.
func addPolygon(r *vector.Rasterizer, pts []geometry.Point2D) {
	var area float64
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		area += p.X*q.Y - q.X*p.Y
	}
	if area < 0 {
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	}
	r.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		r.LineTo(float32(p.X), float32(p.Y))
	}
	r.ClosePath()
}
