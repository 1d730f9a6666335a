// Package geometry holds the float value types shared by the annotation
// model, the canvas and the PDF projector. Y grows downward everywhere.
package geometry

import "math"

// Point2D is a position or displacement.
type Point2D struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func (p Point2D) Add(q Point2D) Point2D { return Point2D{p.X + q.X, p.Y + q.Y} }

func (p Point2D) Sub(q Point2D) Point2D { return Point2D{p.X - q.X, p.Y - q.Y} }

// Scale multiplies both coordinates by k.
func (p Point2D) Scale(k float64) Point2D { return Point2D{p.X * k, p.Y * k} }

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

func (r Rect) Left() float64   { return r.X }
func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Top() float64    { return r.Y }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Contains reports whether p lies inside r. Edges count as inside.
func (r Rect) Contains(p Point2D) bool {
	return r.Left() <= p.X && p.X <= r.Right() && r.Top() <= p.Y && p.Y <= r.Bottom()
}

func (r Rect) Center() Point2D      { return Point2D{r.X + r.Width/2, r.Y + r.Height/2} }
func (r Rect) TopLeft() Point2D     { return Point2D{r.Left(), r.Top()} }
func (r Rect) BottomRight() Point2D { return Point2D{r.Right(), r.Bottom()} }
func (r Rect) Size() Size           { return Size{r.Width, r.Height} }

// Transform maps the corners of r through t and returns their bounding
// rectangle. Rotations and shears are not accounted for.
func (r Rect) Transform(t AffineTransform) Rect {
	a, b := t.Apply(r.TopLeft()), t.Apply(r.BottomRight())
	return Rect{
		X:      math.Min(a.X, b.X),
		Y:      math.Min(a.Y, b.Y),
		Width:  math.Abs(b.X - a.X),
		Height: math.Abs(b.Y - a.Y),
	}
}

// AffineTransform maps (x, y) to (A·x + B·y + TX, C·x + D·y + TY).
type AffineTransform struct {
	A, B, TX float64
	C, D, TY float64
}

// Uniform scales both axes by k about the origin.
func Uniform(k float64) AffineTransform {
	return AffineTransform{A: k, D: k}
}

func (t AffineTransform) Apply(p Point2D) Point2D {
	return Point2D{
		X: t.A*p.X + t.B*p.Y + t.TX,
		Y: t.C*p.X + t.D*p.Y + t.TY,
	}
}

// ApplySize maps an extent through the linear part of t. The result is
// never negative.
func (t AffineTransform) ApplySize(s Size) Size {
	return Size{
		Width:  math.Abs(t.A*s.Width + t.B*s.Height),
		Height: math.Abs(t.C*s.Width + t.D*s.Height),
	}
}

// Size is a width and height pair.
type Size struct {
	Width, Height float64
}

// Scale multiplies both dimensions by k.
func (s Size) Scale(k float64) Size { return Size{s.Width * k, s.Height * k} }
