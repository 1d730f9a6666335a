// Package canvas provides the page view controller: zoom, page navigation,
// annotation placement and pointer-driven drag and resize.
//
// The controller is toolkit-agnostic. A window forwards pointer events in
// display pixels relative to the page raster's top-left corner and asks
// Overlay for what to draw on top of the page.
package canvas

import (
	"fmt"
	"math"

	"pdf-annotator/internal/annotation"
	"pdf-annotator/internal/app"
	imgutil "pdf-annotator/internal/image"
	"pdf-annotator/pkg/colorutil"
	"pdf-annotator/pkg/geometry"
)

// Zoom limits. A zoom of 1 shows the page at BaseDisplayScale pixels per point.
const (
	MinZoom     = 0.25
	MaxZoom     = 4.0
	DefaultZoom = 1.0
	ZoomStep    = 0.25
)

// EditMode selects what a press on empty page space creates.
type EditMode int

const (
	ModeNone EditMode = iota
	ModeText
	ModeImage
	ModeDoodle
)

func (m EditMode) String() string {
	switch m {
	case ModeText:
		return "text"
	case ModeImage:
		return "image"
	case ModeDoodle:
		return "doodle"
	default:
		return "none"
	}
}

// ParseEditMode converts a mode name as returned by String.
func ParseEditMode(s string) (EditMode, bool) {
	for _, m := range []EditMode{ModeNone, ModeText, ModeImage, ModeDoodle} {
		if m.String() == s {
			return m, true
		}
	}
	return ModeNone, false
}

// Interaction is the pointer state machine's state.
type Interaction int

const (
	Idle Interaction = iota
	Dragging
	Resizing
)

func (i Interaction) String() string {
	switch i {
	case Dragging:
		return "dragging"
	case Resizing:
		return "resizing"
	default:
		return "idle"
	}
}

// Cursor is the pointer shape the window should show.
type Cursor int

const (
	CursorArrow Cursor = iota
	CursorIBeam
	CursorResizeHorizontal
	CursorResizeVertical
	CursorClosedHand
)

func (c Cursor) String() string {
	switch c {
	case CursorIBeam:
		return "ibeam"
	case CursorResizeHorizontal:
		return "resize_horizontal"
	case CursorResizeVertical:
		return "resize_vertical"
	case CursorClosedHand:
		return "closed_hand"
	default:
		return "arrow"
	}
}

// Pen is the default stroke style offered by the doodle dialog.
type Pen struct {
	Color colorutil.RGB
	Width int
}

// Prompter collects user input for new and edited annotations. Each method
// reports ok=false when the user dismisses the dialog.
type Prompter interface {
	PromptText(initial annotation.TextFormat) (annotation.TextFormat, bool)
	PromptImage() (path string, ok bool)
	PromptDoodle(pen Pen) (annotation.Drawing, bool)
}

// Canvas controls the view of one page of the session's document.
type Canvas struct {
	state    *app.State
	prompter Prompter

	// Display state
	zoom                       float64
	minZoom, maxZoom, zoomStep float64
	page                       int
	mode                       EditMode

	// Defaults for new annotations
	textDefaults annotation.TextFormat
	pen          Pen

	// Interaction state
	interaction Interaction
	active      annotation.Annotation
	edge        annotation.Edge
	dragOffset  geometry.Point2D
	lastPoint   geometry.Point2D

	// Callbacks
	onZoomChange func(zoom float64)
	onPageChange func(page int)
}

// NewCanvas creates a canvas over state. The canvas follows document
// events to reset the page and drop stale interactions.
func NewCanvas(state *app.State, prompter Prompter) *Canvas {
	c := &Canvas{
		state:        state,
		prompter:     prompter,
		zoom:         DefaultZoom,
		minZoom:      MinZoom,
		maxZoom:      MaxZoom,
		zoomStep:     ZoomStep,
		textDefaults: annotation.DefaultTextFormat(""),
		pen:          Pen{Color: colorutil.Black, Width: annotation.DefaultPenWidth},
	}
	reset := func(interface{}) {
		c.endInteraction()
		c.setPage(0)
	}
	state.On(app.EventDocumentOpened, reset)
	state.On(app.EventDocumentClosed, reset)
	state.On(app.EventPagesChanged, func(interface{}) {
		c.endInteraction()
		c.setPage(c.page)
	})
	state.On(app.EventDocumentSaved, func(interface{}) { c.endInteraction() })
	return c
}

// SetPrompter replaces the input collaborator.
func (c *Canvas) SetPrompter(p Prompter) {
	c.prompter = p
}

// SetTextDefaults sets the format offered for new text.
func (c *Canvas) SetTextDefaults(f annotation.TextFormat) {
	c.textDefaults = f
}

// SetPen sets the stroke style offered for new doodles.
func (c *Canvas) SetPen(p Pen) {
	c.pen = p
}

// SetZoomRange replaces the zoom limits and step. Invalid ranges are
// ignored. The current zoom is clamped into the new range.
func (c *Canvas) SetZoomRange(lo, hi, step float64) {
	if !(lo > 0 && lo <= hi && step > 0) {
		return
	}
	c.minZoom, c.maxZoom, c.zoomStep = lo, hi, step
	c.SetZoom(c.zoom)
}

// SetZoom sets the zoom level, clamped to the zoom range (by default
// [MinZoom, MaxZoom]).
func (c *Canvas) SetZoom(zoom float64) {
	if math.IsNaN(zoom) {
		return
	}
	zoom = math.Max(c.minZoom, math.Min(c.maxZoom, zoom))
	if zoom == c.zoom {
		return
	}
	c.zoom = zoom
	if c.onZoomChange != nil {
		c.onZoomChange(zoom)
	}
}

// Zoom returns the current zoom level.
func (c *Canvas) Zoom() float64 {
	return c.zoom
}

// ZoomIn increases the zoom level by one step.
func (c *Canvas) ZoomIn() {
	c.SetZoom(c.zoom + c.zoomStep)
}

// ZoomOut decreases the zoom level by one step.
func (c *Canvas) ZoomOut() {
	c.SetZoom(c.zoom - c.zoomStep)
}

// SetZoomPercent sets the zoom from a slider value (25 to 400 by default).
func (c *Canvas) SetZoomPercent(percent int) {
	c.SetZoom(float64(percent) / 100)
}

// ZoomPercent returns the zoom as a slider value.
func (c *Canvas) ZoomPercent() int {
	return int(math.Round(c.zoom * 100))
}

// OnZoomChange sets a callback for zoom changes.
func (c *Canvas) OnZoomChange(callback func(zoom float64)) {
	c.onZoomChange = callback
}

// OnPageChange sets a callback for page changes.
func (c *Canvas) OnPageChange(callback func(page int)) {
	c.onPageChange = callback
}

// Page returns the zero-based index of the page shown.
func (c *Canvas) Page() int {
	return c.page
}

// SetPage shows page if it exists. It reports whether the page changed.
func (c *Canvas) SetPage(page int) bool {
	if page < 0 || page >= c.state.PageCount() || page == c.page {
		return false
	}
	c.endInteraction()
	c.setPage(page)
	return true
}

func (c *Canvas) setPage(page int) {
	if n := c.state.PageCount(); page >= n {
		page = n - 1
	}
	if page < 0 {
		page = 0
	}
	if page == c.page {
		return
	}
	c.page = page
	if c.onPageChange != nil {
		c.onPageChange(page)
	}
}

// NextPage advances one page unless the last page is shown.
func (c *Canvas) NextPage() bool {
	return c.SetPage(c.page + 1)
}

// PrevPage goes back one page unless the first page is shown.
func (c *Canvas) PrevPage() bool {
	return c.SetPage(c.page - 1)
}

// HasNext reports whether NextPage would move.
func (c *Canvas) HasNext() bool {
	return c.page < c.state.PageCount()-1
}

// HasPrev reports whether PrevPage would move.
func (c *Canvas) HasPrev() bool {
	return c.page > 0
}

// SetMode sets the edit mode.
func (c *Canvas) SetMode(m EditMode) {
	c.mode = m
}

// Mode returns the edit mode.
func (c *Canvas) Mode() EditMode {
	return c.mode
}

// Interaction returns the pointer state.
func (c *Canvas) Interaction() Interaction {
	return c.interaction
}

// Active returns the annotation being dragged or resized, if any.
func (c *Canvas) Active() annotation.Annotation {
	return c.active
}

// Annotations returns the drafts on the shown page, bottom to top.
func (c *Canvas) Annotations() []annotation.Annotation {
	return c.state.ForPage(c.page)
}

// PageSize returns the page raster size at the current zoom.
func (c *Canvas) PageSize() (geometry.Size, error) {
	return c.state.PageDisplaySize(c.page, c.zoom)
}

// Overlay describes the drafts on the shown page at the current zoom.
func (c *Canvas) Overlay() (Overlay, error) {
	size, err := c.PageSize()
	if err != nil {
		return Overlay{}, err
	}
	return Overlay{
		Page:  c.page,
		Zoom:  c.zoom,
		Size:  size,
		Items: Describe(c.Annotations(), c.zoom),
	}, nil
}

// Press handles a primary button press at a display-space point. A press
// on a draft starts a resize when it is near an image or doodle edge and a
// drag otherwise. A press on empty space places a new annotation according
// to the edit mode. handled reports whether the press was consumed.
func (c *Canvas) Press(p geometry.Point2D) (handled bool, err error) {
	if !c.state.HasDocument() {
		return false, app.ErrNoDocument
	}
	c.endInteraction()

	hit, ok := annotation.HitTest(c.Annotations(), p, c.zoom)
	if ok {
		if edge := annotation.ResizeEdge(hit, p, c.zoom); edge != annotation.EdgeNone {
			c.interaction = Resizing
			c.active = hit
			c.edge = edge
			c.lastPoint = p
			return true, nil
		}
		c.interaction = Dragging
		c.active = hit
		c.dragOffset = annotation.DragOffset(hit, p, c.zoom)
		return true, nil
	}
	return c.place(p)
}

// Move handles pointer motion. It reports whether a draft changed.
func (c *Canvas) Move(p geometry.Point2D) bool {
	switch c.interaction {
	case Resizing:
		r, ok := c.active.(annotation.Resizable)
		if !ok {
			return false
		}
		if !annotation.ResizeBy(r, c.edge, p, c.lastPoint, c.zoom) {
			return false
		}
		c.lastPoint = p
	case Dragging:
		annotation.DragTo(c.active, p, c.dragOffset, c.zoom)
	default:
		return false
	}
	c.state.Changed()
	return true
}

// Release ends any drag or resize wherever the pointer is. It reports
// whether an interaction was in progress.
func (c *Canvas) Release(geometry.Point2D) bool {
	was := c.interaction != Idle
	c.endInteraction()
	return was
}

func (c *Canvas) endInteraction() {
	c.interaction = Idle
	c.active = nil
	c.edge = annotation.EdgeNone
}

// DoubleClick opens the text dialog for the topmost text draft under p.
// Dismissing the dialog or confirming empty text leaves the draft as it was.
func (c *Canvas) DoubleClick(p geometry.Point2D) (handled bool, err error) {
	var texts []annotation.Annotation
	for _, a := range c.Annotations() {
		if a.Kind() == annotation.KindText {
			texts = append(texts, a)
		}
	}
	hit, ok := annotation.HitTest(texts, p, c.zoom)
	if !ok {
		return false, nil
	}
	c.endInteraction()
	t := hit.(*annotation.Text)
	f, ok := c.prompter.PromptText(t.Format)
	if !ok || !f.Valid() {
		return true, nil
	}
	if err := t.SetFormat(f); err != nil {
		return true, err
	}
	c.state.Changed()
	return true, nil
}

// CursorAt returns the pointer shape for p. Resize edges take precedence,
// checked in insertion order.
func (c *Canvas) CursorAt(p geometry.Point2D) Cursor {
	switch c.interaction {
	case Dragging:
		return CursorClosedHand
	case Resizing:
		return edgeCursor(c.edge)
	}
	for _, a := range c.Annotations() {
		if edge := annotation.ResizeEdge(a, p, c.zoom); edge != annotation.EdgeNone {
			return edgeCursor(edge)
		}
	}
	if c.mode == ModeText {
		return CursorIBeam
	}
	return CursorArrow
}

func edgeCursor(e annotation.Edge) Cursor {
	if e.Horizontal() {
		return CursorResizeHorizontal
	}
	return CursorResizeVertical
}

// place creates an annotation at p for the current mode. Nothing is added
// when the dialog is dismissed or returns nothing drawable.
func (c *Canvas) place(p geometry.Point2D) (bool, error) {
	if c.prompter == nil || c.mode == ModeNone {
		return false, nil
	}
	pl := annotation.Placement{Position: p, Page: c.page, Zoom: c.zoom}

	var a annotation.Annotation
	switch c.mode {
	case ModeText:
		f, ok := c.prompter.PromptText(c.textDefaults)
		if !ok || !f.Valid() {
			return false, nil
		}
		t, err := annotation.NewText(pl, f, c.state.Measurer())
		if err != nil {
			return false, err
		}
		a = t
	case ModeImage:
		path, ok := c.prompter.PromptImage()
		if !ok || path == "" {
			return false, nil
		}
		if !imgutil.IsSupportedFormat(path) {
			return false, fmt.Errorf("unsupported image file %s", path)
		}
		src, err := imgutil.Load(path)
		if err != nil {
			return false, err
		}
		img, err := annotation.NewImage(pl, path, src.Image, geometry.Size{})
		if err != nil {
			return false, err
		}
		a = img
	case ModeDoodle:
		d, ok := c.prompter.PromptDoodle(c.pen)
		if !ok || !d.Valid() {
			return false, nil
		}
		doodle, err := annotation.NewDoodle(pl, d, geometry.Size{})
		if err != nil {
			return false, err
		}
		a = doodle
	}
	if err := c.state.Add(a); err != nil {
		return false, err
	}
	return true, nil
}
