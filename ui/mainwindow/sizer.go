package mainwindow

import (
	"image"
	"math"

	"pdf-annotator/pkg/geometry"
)

// Window chrome allowances in screen pixels.
const (
	WindowMargin         = 50 // kept free between the window and the screen edge
	DecorationHeight     = 40 // title bar
	DecorationWidth      = 20 // left and right borders together
	MinButtonHeight      = 40
	ButtonHeightPadding  = 10
	DefaultMenubarHeight = 25
)

// WindowSizer fits the window to the page raster. Heights are those of the
// widgets stacked above and below the page view.
type WindowSizer struct {
	MenubarHeight int // menu bar plus toolbar
	ButtonHeight  int // navigation row including padding
}

// DefaultSizer uses the fallback heights for widgets that have not been
// laid out yet.
func DefaultSizer() WindowSizer {
	return WindowSizer{
		MenubarHeight: DefaultMenubarHeight + DecorationHeight,
		ButtonHeight:  MinButtonHeight + ButtonHeightPadding,
	}
}

// CalculateSize returns the window size for a page raster of the given
// size on a screen with the given available area. The navigation buttons
// always stay on screen; a page too tall to fit scrolls instead.
func (s WindowSizer) CalculateSize(screen image.Rectangle, page geometry.Size) image.Point {
	maxHeight := screen.Dy() - WindowMargin
	maxWidth := screen.Dx() - WindowMargin
	chrome := s.MenubarHeight + s.ButtonHeight + DecorationHeight
	maxPageHeight := maxHeight - chrome

	width := int(math.Min(page.Width+DecorationWidth, float64(maxWidth)))

	height := maxHeight
	if page.Height <= float64(maxPageHeight) {
		height = int(page.Height) + chrome
	}
	if height > maxHeight {
		height = maxHeight
	}
	return image.Pt(width, height)
}

// Center returns the window bounds for size centred on screen.
func (s WindowSizer) Center(screen image.Rectangle, size image.Point) image.Rectangle {
	origin := image.Pt(
		screen.Min.X+(screen.Dx()-size.X)/2,
		screen.Min.Y+(screen.Dy()-size.Y)/2,
	)
	return image.Rectangle{Min: origin, Max: origin.Add(size)}
}

// Place sizes the window for page and centres it.
func (s WindowSizer) Place(screen image.Rectangle, page geometry.Size) image.Rectangle {
	return s.Center(screen, s.CalculateSize(screen, page))
}
