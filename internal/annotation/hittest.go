package annotation

import (
	"math"

	"pdf-annotator/pkg/geometry"
)

// Edge names a side of an annotation's display rectangle.
type Edge int

const (
	EdgeNone Edge = iota
	EdgeLeft
	EdgeRight
	EdgeTop
	EdgeBottom
)

func (e Edge) String() string {
	switch e {
	case EdgeLeft:
		return "left"
	case EdgeRight:
		return "right"
	case EdgeTop:
		return "top"
	case EdgeBottom:
		return "bottom"
	default:
		return "none"
	}
}

// Horizontal reports whether dragging the edge changes the width.
func (e Edge) Horizontal() bool {
	return e == EdgeLeft || e == EdgeRight
}

// HitTest returns the topmost annotation whose display rectangle contains
// point. Later annotations are drawn above earlier ones, so the list is
// searched from the end.
func HitTest(anns []Annotation, point geometry.Point2D, zoom float64) (Annotation, bool) {
	for i := len(anns) - 1; i >= 0; i-- {
		if anns[i].DisplayRect(zoom).Contains(point) {
			return anns[i], true
		}
	}
	return nil, false
}

// ResizeEdge returns the edge of a resizable annotation that point is within
// EdgeResizeThreshold of. Corners resolve in the order left, right, top,
// bottom. Text annotations have no resize edges.
func ResizeEdge(a Annotation, point geometry.Point2D, zoom float64) Edge {
	if _, ok := a.(Resizable); !ok {
		return EdgeNone
	}
	r := a.DisplayRect(zoom)
	inY := point.Y >= r.Top() && point.Y <= r.Bottom()
	inX := point.X >= r.Left() && point.X <= r.Right()
	switch {
	case inY && math.Abs(point.X-r.Left()) < EdgeResizeThreshold:
		return EdgeLeft
	case inY && math.Abs(point.X-r.Right()) < EdgeResizeThreshold:
		return EdgeRight
	case inX && math.Abs(point.Y-r.Top()) < EdgeResizeThreshold:
		return EdgeTop
	case inX && math.Abs(point.Y-r.Bottom()) < EdgeResizeThreshold:
		return EdgeBottom
	}
	return EdgeNone
}

// DragOffset is the vector from the annotation's display position to the
// grab point.
func DragOffset(a Annotation, point geometry.Point2D, zoom float64) geometry.Point2D {
	return point.Sub(DisplayPosition(a, zoom))
}

// DragTo moves a so that the grab point stays under point. The new position
// is written back in creation-space.
func DragTo(a Annotation, point, offset geometry.Point2D, zoom float64) {
	a.Common().SetPosition(CreationPoint(a, point.Sub(offset), zoom))
}

// ResizeBy applies the pointer movement from prev to point to the given edge
// of a. Left and top edges move the position so the opposite edge stays put.
// A step that would shrink the extent to MinAnnotationSize or below is
// ignored; applied reports whether the caller should advance prev.
func ResizeBy(a Resizable, edge Edge, point, prev geometry.Point2D, zoom float64) (applied bool) {
	d := CreationDelta(a, point.Sub(prev), zoom)
	size := a.Size()
	b := a.Common()

	switch edge {
	case EdgeRight:
		if w := size.Width + d.X; w > MinAnnotationSize {
			size.Width = w
			applied = true
		}
	case EdgeLeft:
		if w := size.Width - d.X; w > MinAnnotationSize {
			b.X += d.X
			size.Width = w
			applied = true
		}
	case EdgeBottom:
		if h := size.Height + d.Y; h > MinAnnotationSize {
			size.Height = h
			applied = true
		}
	case EdgeTop:
		if h := size.Height - d.Y; h > MinAnnotationSize {
			b.Y += d.Y
			size.Height = h
			applied = true
		}
	}
	if applied {
		a.SetSize(size)
	}
	return applied
}
