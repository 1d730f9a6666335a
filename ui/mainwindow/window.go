// Package mainwindow provides the main application window model.
//
// Window owns the session pieces a toolkit front end needs (state, canvas,
// renderer, preferences and sizing) and keeps the derived view state:
// title, status line, navigation controls and window bounds. A front end
// binds its widgets to these and forwards user actions to the methods here.
package mainwindow

import (
	"fmt"
	"image"
	"log/slog"
	"path/filepath"

	"pdf-annotator/internal/app"
	"pdf-annotator/internal/logging"
	"pdf-annotator/internal/projector"
	"pdf-annotator/ui/canvas"
	"pdf-annotator/ui/prefs"
)

// AppName is the window title prefix.
const AppName = "PDF Annotator"

// Controls is the enabled state of the navigation row and toolbar.
type Controls struct {
	PrevEnabled     bool
	NextEnabled     bool
	AllPagesEnabled bool
	SaveEnabled     bool
	ZoomLabel       string
	ZoomPercent     int
	Mode            canvas.EditMode
	PageLabel       string
}

// Options configures a Window. Zero values select defaults.
type Options struct {
	Screen   image.Rectangle // available screen area; empty skips sizing
	Sizer    *WindowSizer
	Prefs    *prefs.Prefs
	Renderer *canvas.Renderer
	Logger   *slog.Logger
}

// Window is the primary application window.
type Window struct {
	state    *app.State
	canvas   *canvas.Canvas
	renderer *canvas.Renderer
	prefs    *prefs.Prefs
	sizer    WindowSizer
	screen   image.Rectangle
	logger   *slog.Logger

	bounds image.Rectangle
	status string

	onChange func()
}

// New creates a window over state and its canvas.
func New(state *app.State, c *canvas.Canvas, opts Options) *Window {
	w := &Window{
		state:    state,
		canvas:   c,
		renderer: opts.Renderer,
		prefs:    opts.Prefs,
		sizer:    DefaultSizer(),
		screen:   opts.Screen,
		logger:   logging.OrDiscard(opts.Logger),
		status:   "Ready",
	}
	if opts.Sizer != nil {
		w.sizer = *opts.Sizer
	}
	if w.prefs != nil {
		c.SetZoom(w.prefs.FloatWithFallback(prefs.KeyLastZoom, c.Zoom()))
		if m, ok := canvas.ParseEditMode(w.prefs.String(prefs.KeyLastMode)); ok {
			c.SetMode(m)
		}
	}

	c.OnZoomChange(func(zoom float64) {
		if w.prefs != nil {
			w.prefs.SetFloat(prefs.KeyLastZoom, zoom)
		}
		w.fit()
		w.changed()
	})
	c.OnPageChange(func(int) { w.changed() })
	w.setupEventHandlers()
	return w
}

// setupEventHandlers registers for application events.
func (w *Window) setupEventHandlers() {
	w.state.On(app.EventDocumentOpened, func(data interface{}) {
		if path, ok := data.(string); ok {
			w.updateStatus("Opened " + filepath.Base(path))
		}
		w.fit()
	})
	w.state.On(app.EventDocumentSaved, func(data interface{}) {
		if path, ok := data.(string); ok {
			w.updateStatus("Saved " + filepath.Base(path))
		}
	})
	w.state.On(app.EventSaveFailed, func(data interface{}) {
		if err, ok := data.(error); ok {
			w.updateStatus("Save failed: " + err.Error())
		}
	})
	w.state.On(app.EventPagesChanged, func(interface{}) {
		w.fit()
		w.changed()
	})
	w.state.On(app.EventModified, func(interface{}) { w.changed() })
	w.state.On(app.EventAnnotationsChanged, func(interface{}) { w.changed() })
	w.state.On(app.EventDocumentClosed, func(interface{}) {
		w.bounds = image.Rectangle{}
		w.updateStatus("Ready")
	})
}

// OnChange sets a callback for any change a front end should redraw for.
func (w *Window) OnChange(callback func()) {
	w.onChange = callback
}

func (w *Window) changed() {
	if w.onChange != nil {
		w.onChange()
	}
}

func (w *Window) updateStatus(text string) {
	w.status = text
	w.changed()
}

// State returns the session state.
func (w *Window) State() *app.State {
	return w.state
}

// Canvas returns the page view controller.
func (w *Window) Canvas() *canvas.Canvas {
	return w.canvas
}

// Status returns the status bar text.
func (w *Window) Status() string {
	return w.status
}

// Bounds returns the window rectangle chosen for the current page, or an
// empty rectangle when no document is open or no screen is known.
func (w *Window) Bounds() image.Rectangle {
	return w.bounds
}

// SetScreen updates the available screen area and refits the window.
func (w *Window) SetScreen(screen image.Rectangle) {
	w.screen = screen
	w.fit()
}

// fit resizes the window to the page raster and centres it.
func (w *Window) fit() {
	if w.screen.Empty() || !w.state.HasDocument() {
		return
	}
	size, err := w.canvas.PageSize()
	if err != nil {
		w.logger.Debug("page size unavailable", "page", w.canvas.Page(), "error", err)
		return
	}
	w.bounds = w.sizer.Place(w.screen, size)
}

// Title returns the window title, marked with * when there are unsaved
// changes.
func (w *Window) Title() string {
	path := w.state.DocumentPath()
	if path == "" {
		return AppName
	}
	title := AppName + " - " + filepath.Base(path)
	if w.state.Modified {
		title += " *"
	}
	return title
}

// Controls returns the current control states.
func (w *Window) Controls() Controls {
	open := w.state.HasDocument()
	ctl := Controls{
		AllPagesEnabled: open,
		SaveEnabled:     open,
		ZoomPercent:     w.canvas.ZoomPercent(),
		ZoomLabel:       fmt.Sprintf("%d%%", w.canvas.ZoomPercent()),
		Mode:            w.canvas.Mode(),
	}
	if open {
		ctl.PrevEnabled = w.canvas.HasPrev()
		ctl.NextEnabled = w.canvas.HasNext()
		ctl.PageLabel = fmt.Sprintf("Page %d of %d", w.canvas.Page()+1, w.state.PageCount())
	}
	return ctl
}

// Open loads a PDF and remembers its location.
func (w *Window) Open(path string) error {
	if err := w.state.Open(path); err != nil {
		w.updateStatus("Open failed: " + err.Error())
		return err
	}
	w.rememberPath(path)
	return nil
}

// Save writes the document with its drafts. An empty path saves over the
// opened file.
func (w *Window) Save(path string) (projector.Report, error) {
	rep, err := w.state.Save(path)
	if err != nil {
		return rep, err
	}
	if path == "" {
		path = w.state.DocumentPath()
	}
	w.rememberPath(path)
	if n := len(rep.Skipped); n > 0 {
		w.updateStatus(fmt.Sprintf("Saved %s, %d annotation(s) skipped", filepath.Base(path), n))
	}
	return rep, nil
}

// Merge appends another PDF's pages.
func (w *Window) Merge(path string) error {
	if err := w.state.Merge(path); err != nil {
		w.updateStatus("Merge failed: " + err.Error())
		return err
	}
	w.updateStatus("Merged " + filepath.Base(path))
	return nil
}

// DeleteCurrentPage removes the page shown.
func (w *Window) DeleteCurrentPage() error {
	page := w.canvas.Page()
	if err := w.state.DeletePage(page); err != nil {
		return err
	}
	w.updateStatus(fmt.Sprintf("Deleted page %d", page+1))
	return nil
}

// MoveCurrentPage moves the page shown to index to and keeps showing it.
func (w *Window) MoveCurrentPage(to int) error {
	from := w.canvas.Page()
	if err := w.state.MovePage(from, to); err != nil {
		return err
	}
	w.canvas.SetPage(to)
	w.updateStatus(fmt.Sprintf("Moved page %d to %d", from+1, to+1))
	return nil
}

// SetMode selects the edit mode.
func (w *Window) SetMode(m canvas.EditMode) {
	w.canvas.SetMode(m)
	if w.prefs != nil {
		w.prefs.SetString(prefs.KeyLastMode, m.String())
	}
	w.changed()
}

// Render draws the current page's drafts over page, the raster of the
// page at the canvas zoom. A nil page renders the drafts on white.
func (w *Window) Render(page image.Image) (*image.RGBA, error) {
	if w.renderer == nil {
		return nil, fmt.Errorf("window has no renderer")
	}
	ov, err := w.canvas.Overlay()
	if err != nil {
		return nil, err
	}
	return w.renderer.Render(ov, page)
}

// Renderer returns the software renderer used by Render, or nil.
func (w *Window) Renderer() *canvas.Renderer {
	return w.renderer
}

// Close saves preferences and closes the document. Unsaved drafts are
// discarded.
func (w *Window) Close() error {
	if w.prefs != nil {
		w.prefs.SetFloat(prefs.KeyLastZoom, w.canvas.Zoom())
		if err := w.prefs.Save(); err != nil {
			w.logger.Warn("saving preferences", "path", w.prefs.Path(), "error", err)
		}
	}
	return w.state.Close()
}

func (w *Window) rememberPath(path string) {
	if w.prefs == nil {
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	w.prefs.SetString(prefs.KeyLastDocument, abs)
	w.prefs.SetString(prefs.KeyLastDir, filepath.Dir(abs))
}
