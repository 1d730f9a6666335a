package projector

import (
	"errors"
	"image"
	"os"
	"testing"

	"pdf-annotator/internal/annotation"
	"pdf-annotator/pkg/colorutil"
	"pdf-annotator/pkg/geometry"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var halfSize = annotation.MeasurerFunc(func(f annotation.Face, text string) annotation.TextExtent {
	return annotation.TextExtent{Advance: float64(len(text)) * f.Size / 2, LineHeight: f.Size}
})

type textCall struct {
	Page int
	At   geometry.Point2D
	Text string
	Font FontRef
	Size float64
}

type lineCall struct {
	Page     int
	From, To geometry.Point2D
	Width    float64
}

type imageCall struct {
	Page    int
	Rect    geometry.Rect
	Path    string
	Existed bool
}

type fakeWriter struct {
	fonts    map[string]bool // fonts that can be used; nil accepts all
	imageErr error
	lineErr  error

	texts  []textCall
	lines  []lineCall
	images []imageCall
}

func (w *fakeWriter) InsertText(page int, at geometry.Point2D, text string, font FontRef, size float64, c colorutil.RGB) error {
	if w.fonts != nil && !w.fonts[font.String()] {
		return errors.New("unknown font " + font.String())
	}
	w.texts = append(w.texts, textCall{Page: page, At: at, Text: text, Font: font, Size: size})
	return nil
}

func (w *fakeWriter) DrawLine(page int, from, to geometry.Point2D, c colorutil.RGB, width float64) error {
	w.lines = append(w.lines, lineCall{Page: page, From: from, To: to, Width: width})
	return w.lineErr
}

func (w *fakeWriter) InsertImage(page int, rect geometry.Rect, path string) error {
	_, err := os.Stat(path)
	w.images = append(w.images, imageCall{Page: page, Rect: rect, Path: path, Existed: err == nil})
	return w.imageErr
}

func newText(t *testing.T, x, y, zoom float64, f annotation.TextFormat) *annotation.Text {
	t.Helper()
	txt, err := annotation.NewText(annotation.Placement{Position: geometry.Point2D{X: x, Y: y}, Zoom: zoom}, f, halfSize)
	require.NoError(t, err)
	return txt
}

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestProjectRect(t *testing.T) {
	img, err := annotation.NewImage(
		annotation.Placement{Position: geometry.Point2D{X: 300, Y: 400}, Page: 2, Zoom: 1.5},
		"stamp.png", image.NewRGBA(image.Rect(0, 0, 1, 1)), geometry.Size{Width: 150, Height: 90})
	require.NoError(t, err)

	got := ProjectRect(img)
	want := geometry.Rect{X: 100, Y: 400 / 3.0, Width: 50, Height: 30}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("ProjectRect (-want +got):\n%s", diff)
	}
}

func TestProjectTextBaseline(t *testing.T) {
	f := annotation.DefaultTextFormat("Hi")
	txt := newText(t, 200, 300, 1, f)

	got := ProjectText(txt)
	want := TextPlacement{
		Baseline: geometry.Point2D{X: 102.5, Y: 146.75},
		FontSize: 12,
		Advance:  12,
		Underline: Line{
			From: geometry.Point2D{X: 102.5, Y: 148.25},
			To:   geometry.Point2D{X: 114.5, Y: 148.25},
		},
		Strikethrough: Line{
			From: geometry.Point2D{X: 102.5, Y: 142.55},
			To:   geometry.Point2D{X: 114.5, Y: 142.55},
		},
	}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("ProjectText (-want +got):\n%s", diff)
	}
}

func TestProjectionIgnoresViewportZoom(t *testing.T) {
	txt := newText(t, 200, 300, 2, annotation.DefaultTextFormat("Hello"))
	before := ProjectText(txt)

	// Viewing at other zooms only touches the display cache.
	txt.Measure(0.5)
	txt.DisplayRect(3.25)

	assert.Equal(t, before, ProjectText(txt))
	assert.Equal(t, geometry.Point2D{X: 50, Y: 75}, ProjectPoint(txt))
}

func TestFontCandidates(t *testing.T) {
	f := annotation.DefaultTextFormat("x")
	f.FontFamily = "Times New Roman"
	f.Bold = true
	f.Italic = true
	got := FontCandidates(f)
	assert.Equal(t, []FontRef{
		{Family: "Times", Bold: true, Italic: true},
		{Family: "Times"},
		{Family: "Helvetica"},
	}, got)
	assert.Equal(t, "Times-BoldItalic", got[0].String())

	f = annotation.DefaultTextFormat("x")
	assert.Equal(t, []FontRef{{Family: "Helvetica"}}, FontCandidates(f))
}

func TestApplyFontFallback(t *testing.T) {
	f := annotation.DefaultTextFormat("Hi")
	f.FontFamily = "Courier New"
	f.Italic = true
	f.Underline = true
	txt := newText(t, 200, 300, 1, f)

	w := &fakeWriter{fonts: map[string]bool{"Courier": true}}
	rep := New(nil).Apply(w, []annotation.Annotation{txt})

	assert.Equal(t, 1, rep.Applied)
	assert.Empty(t, rep.Skipped)
	require.Len(t, w.texts, 1)
	assert.Equal(t, FontRef{Family: "Courier"}, w.texts[0].Font)
	require.Len(t, w.lines, 1)
	assert.Equal(t, DecorationWidth, w.lines[0].Width)
}

func TestApplySkipsFailedAnnotation(t *testing.T) {
	f := annotation.DefaultTextFormat("Hi")
	f.Strikethrough = true
	bad := newText(t, 10, 10, 1, f)

	img, err := annotation.NewImage(annotation.Placement{Zoom: 1, Page: 1}, "stamp.png",
		image.NewRGBA(image.Rect(0, 0, 2, 2)), geometry.Size{})
	require.NoError(t, err)

	w := &fakeWriter{fonts: map[string]bool{}}
	rep := New(nil).Apply(w, []annotation.Annotation{bad, img})

	assert.Equal(t, 1, rep.Applied)
	require.Len(t, rep.Skipped, 1)
	assert.Equal(t, 0, rep.Skipped[0].Index)
	assert.ErrorIs(t, rep.Skipped[0].Err, ErrFontUnavailable)
	assert.ErrorIs(t, rep.Err(), ErrFontUnavailable)
	assert.Empty(t, w.lines, "decorations need inserted text")
	require.Len(t, w.images, 1)
	assert.Equal(t, "stamp.png", w.images[0].Path)
	assert.Equal(t, 1, w.images[0].Page)
}

func TestApplyKeepsTextWhenDecorationFails(t *testing.T) {
	f := annotation.DefaultTextFormat("struck")
	f.Underline = true
	f.Strikethrough = true
	txt := newText(t, 100, 100, 1, f)
	plain := newText(t, 10, 10, 1, annotation.DefaultTextFormat("plain"))

	w := &fakeWriter{lineErr: errors.New("no pen")}
	rep := New(nil).Apply(w, []annotation.Annotation{txt, plain})

	assert.Len(t, w.texts, 2)
	assert.Len(t, w.lines, 2, "both decorations are attempted")
	assert.Equal(t, 2, rep.Applied)
	assert.Empty(t, rep.Skipped)
	assert.NoError(t, rep.Err())
	require.Len(t, rep.Partial, 1)
	assert.Equal(t, 0, rep.Partial[0].Index)
	assert.ErrorContains(t, rep.Partial[0].Err, "underline")
	assert.ErrorContains(t, rep.Partial[0].Err, "strikethrough")
}

func TestApplyDoodleTempFileRemoved(t *testing.T) {
	s, err := annotation.NewStroke([]geometry.Point2D{{X: 0, Y: 0}, {X: 40, Y: 40}}, colorutil.Blue, 3)
	require.NoError(t, err)
	d, err := annotation.NewDoodle(annotation.Placement{Position: geometry.Point2D{X: 20, Y: 40}, Zoom: 1},
		annotation.Drawing{Strokes: []annotation.Stroke{s}}, geometry.Size{})
	require.NoError(t, err)

	for _, insertErr := range []error{nil, errors.New("disk full")} {
		w := &fakeWriter{imageErr: insertErr}
		rep := New(nil, WithTempDir(t.TempDir())).Apply(w, []annotation.Annotation{d})
		require.Len(t, w.images, 1)
		call := w.images[0]
		assert.True(t, call.Existed)
		_, statErr := os.Stat(call.Path)
		assert.True(t, os.IsNotExist(statErr), "temp file left behind: %s", call.Path)
		assert.Equal(t, geometry.Rect{X: 10, Y: 20, Width: 50, Height: 50}, call.Rect)
		if insertErr != nil {
			assert.Len(t, rep.Skipped, 1)
		} else {
			assert.Equal(t, 1, rep.Applied)
		}
	}
}

func TestApplyReencodesNonEmbeddableImage(t *testing.T) {
	img, err := annotation.NewImage(annotation.Placement{Zoom: 1}, "scan.tiff",
		image.NewRGBA(image.Rect(0, 0, 4, 4)), geometry.Size{})
	require.NoError(t, err)

	w := &fakeWriter{}
	rep := New(nil, WithTempDir(t.TempDir())).Apply(w, []annotation.Annotation{img})
	assert.Equal(t, 1, rep.Applied)
	require.Len(t, w.images, 1)
	assert.NotEqual(t, "scan.tiff", w.images[0].Path)
	assert.True(t, w.images[0].Existed)
}

func TestApplyIsDeterministic(t *testing.T) {
	f := annotation.DefaultTextFormat("Same")
	f.Underline = true
	anns := []annotation.Annotation{newText(t, 120, 240, 1.25, f)}

	w1, w2 := &fakeWriter{}, &fakeWriter{}
	New(nil).Apply(w1, anns)
	New(nil).Apply(w2, anns)
	assert.Equal(t, w1.texts, w2.texts)
	assert.Equal(t, w1.lines, w2.lines)
}
