package mainwindow

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"pdf-annotator/internal/annotation"
	"pdf-annotator/internal/app"
	"pdf-annotator/internal/config"
	"pdf-annotator/internal/fontmetrics"
	"pdf-annotator/pkg/geometry"
	"pdf-annotator/ui/canvas"
	"pdf-annotator/ui/prefs"

	"codeberg.org/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var screen = image.Rect(0, 0, 1920, 1080)

func makePDF(t *testing.T, pages int) string {
	t.Helper()
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetFont("Helvetica", "", 12)
	for i := 0; i < pages; i++ {
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: 300, Ht: 400})
		pdf.Text(20, 40, fmt.Sprintf("Page %d", i+1))
	}
	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, pdf.OutputFileAndClose(path))
	return path
}

func newWindow(t *testing.T, p *prefs.Prefs) *Window {
	t.Helper()
	fonts, err := fontmetrics.New()
	require.NoError(t, err)
	state := app.NewState(fonts, nil, nil)
	c := canvas.NewCanvas(state, nil)
	w := New(state, c, Options{
		Screen:   screen,
		Prefs:    p,
		Renderer: canvas.NewRenderer(fonts),
	})
	t.Cleanup(func() { state.Close() })
	return w
}

func addImage(t *testing.T, w *Window, page int) {
	t.Helper()
	img, err := annotation.NewImage(
		annotation.Placement{Position: geometry.Point2D{X: 10, Y: 10}, Page: page, Zoom: 1},
		"", image.NewRGBA(image.Rect(0, 0, 20, 20)), geometry.Size{})
	require.NoError(t, err)
	require.NoError(t, w.State().Add(img))
}

func TestWindowWithoutDocument(t *testing.T) {
	w := newWindow(t, nil)
	assert.Equal(t, AppName, w.Title())
	assert.Equal(t, "Ready", w.Status())
	assert.True(t, w.Bounds().Empty())

	ctl := w.Controls()
	assert.False(t, ctl.PrevEnabled)
	assert.False(t, ctl.NextEnabled)
	assert.False(t, ctl.SaveEnabled)
	assert.Equal(t, "100%", ctl.ZoomLabel)
}

func TestWindowOpenSizesAndTitles(t *testing.T) {
	w := newWindow(t, nil)
	path := makePDF(t, 3)
	require.NoError(t, w.Open(path))

	assert.Equal(t, "PDF Annotator - doc.pdf", w.Title())
	assert.Equal(t, "Opened doc.pdf", w.Status())
	// Page raster 600x800, chrome 65+50+40.
	assert.Equal(t, image.Rect(650, 62, 1270, 1017), w.Bounds())

	ctl := w.Controls()
	assert.False(t, ctl.PrevEnabled)
	assert.True(t, ctl.NextEnabled)
	assert.Equal(t, "Page 1 of 3", ctl.PageLabel)

	addImage(t, w, 0)
	assert.Equal(t, "PDF Annotator - doc.pdf *", w.Title())
}

func TestWindowZoomRefits(t *testing.T) {
	w := newWindow(t, nil)
	require.NoError(t, w.Open(makePDF(t, 1)))
	changes := 0
	w.OnChange(func() { changes++ })

	w.Canvas().SetZoomPercent(50)
	assert.Equal(t, image.Pt(320, 555), w.Bounds().Size())
	assert.Equal(t, "50%", w.Controls().ZoomLabel)
	assert.Positive(t, changes)

	w.Canvas().SetZoom(2)
	assert.Equal(t, 1030, w.Bounds().Dy())
}

func TestWindowPageOperations(t *testing.T) {
	w := newWindow(t, nil)
	require.NoError(t, w.Open(makePDF(t, 3)))
	addImage(t, w, 1)

	w.Canvas().SetPage(1)
	require.NoError(t, w.MoveCurrentPage(2))
	assert.Equal(t, 2, w.Canvas().Page())
	assert.Len(t, w.State().ForPage(2), 1)
	assert.Equal(t, "Moved page 2 to 3", w.Status())

	require.NoError(t, w.DeleteCurrentPage())
	assert.Equal(t, 2, w.State().PageCount())
	assert.Zero(t, w.State().Count())
	assert.Equal(t, 1, w.Canvas().Page())

	require.NoError(t, w.Merge(makePDF(t, 2)))
	assert.Equal(t, 4, w.State().PageCount())
	assert.Equal(t, "Page 2 of 4", w.Controls().PageLabel)
}

func TestWindowSaveRemembersPath(t *testing.T) {
	p, err := prefs.Open(t.TempDir())
	require.NoError(t, err)
	w := newWindow(t, p)
	require.NoError(t, w.Open(makePDF(t, 1)))
	addImage(t, w, 0)

	out := filepath.Join(t.TempDir(), "out.pdf")
	rep, err := w.Save(out)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Applied)
	assert.Equal(t, "Saved out.pdf", w.Status())
	assert.Equal(t, out, p.String(prefs.KeyLastDocument))
	assert.Equal(t, filepath.Dir(out), p.String(prefs.KeyLastDir))
	assert.Equal(t, "PDF Annotator - out.pdf", w.Title())
}

func TestWindowRestoresPrefs(t *testing.T) {
	dir := t.TempDir()
	p, err := prefs.Open(dir)
	require.NoError(t, err)
	w := newWindow(t, p)
	w.Canvas().SetZoom(1.5)
	w.SetMode(canvas.ModeDoodle)
	require.NoError(t, w.Close())

	q, err := prefs.Open(dir)
	require.NoError(t, err)
	w2 := newWindow(t, q)
	assert.Equal(t, 1.5, w2.Canvas().Zoom())
	assert.Equal(t, canvas.ModeDoodle, w2.Canvas().Mode())
}

func TestWindowRender(t *testing.T) {
	w := newWindow(t, nil)
	require.NoError(t, w.Open(makePDF(t, 1)))
	addImage(t, w, 0)

	out, err := w.Render(nil)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 600, 800), out.Bounds())
	// The transparent bitmap leaves the white page visible inside the border.
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, out.RGBAAt(20, 20))
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Zoom = config.ZoomConfig{Min: 0.5, Max: 2, Default: 1.5, Step: 0.5}
	cfg.TempDir = t.TempDir()

	w, err := NewFromConfig(cfg, nil, screen, nil)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })

	assert.Equal(t, 1.5, w.Canvas().Zoom())
	w.Canvas().ZoomIn()
	w.Canvas().ZoomIn()
	assert.Equal(t, 2.0, w.Canvas().Zoom())

	require.NoError(t, w.Open(makePDF(t, 1)))
	assert.Equal(t, "Page 1 of 1", w.Controls().PageLabel)
}
