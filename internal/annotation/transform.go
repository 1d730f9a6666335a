package annotation

import (
	"pdf-annotator/pkg/geometry"
)

// ZoomRatio returns currentZoom relative to the zoom the annotation was
// created at. Construction guarantees the created zoom is > 0.
func ZoomRatio(a Annotation, currentZoom float64) float64 {
	return currentZoom / a.Common().createdZoom
}

// DisplayTransform maps creation-space to display-space at currentZoom.
func DisplayTransform(a Annotation, currentZoom float64) geometry.AffineTransform {
	return geometry.Uniform(ZoomRatio(a, currentZoom))
}

// DisplayPosition returns the annotation's position in display-space.
func DisplayPosition(a Annotation, currentZoom float64) geometry.Point2D {
	return DisplayTransform(a, currentZoom).Apply(a.Common().Position())
}

// DisplayExtent returns the stored extent of a sized variant in display-space.
// Text does not scale its stored extent; it re-measures instead.
func DisplayExtent(a Resizable, currentZoom float64) geometry.Size {
	return DisplayTransform(a, currentZoom).ApplySize(a.Size())
}

// CreationPoint converts a display-space point at currentZoom back into the
// annotation's creation-space. It is the exact inverse of DisplayPosition.
func CreationPoint(a Annotation, display geometry.Point2D, currentZoom float64) geometry.Point2D {
	return display.Scale(1 / ZoomRatio(a, currentZoom))
}

// CreationDelta converts a display-space pointer movement into creation-space units.
func CreationDelta(a Annotation, delta geometry.Point2D, currentZoom float64) geometry.Point2D {
	return delta.Scale(1 / ZoomRatio(a, currentZoom))
}

// PDFScale is the factor from creation-space to PDF user-space. It depends
// only on the created zoom, never on the viewport zoom at save time.
func PDFScale(a Annotation) float64 {
	return 1 / (BaseDisplayScale * a.Common().createdZoom)
}

// PDFTransform maps creation-space to PDF user-space (top-left origin).
func PDFTransform(a Annotation) geometry.AffineTransform {
	return geometry.Uniform(PDFScale(a))
}

// CreationRect returns the bounds of a sized variant in creation-space.
func CreationRect(a Resizable) geometry.Rect {
	b, size := a.Common(), a.Size()
	return geometry.Rect{X: b.X, Y: b.Y, Width: size.Width, Height: size.Height}
}

// displayRectOf is shared by the sized variants.
func displayRectOf(a Resizable, zoom float64) geometry.Rect {
	return CreationRect(a).Transform(DisplayTransform(a, zoom))
}
