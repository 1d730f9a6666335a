package app

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"testing"

	"pdf-annotator/internal/annotation"
	"pdf-annotator/internal/pdfdoc"
	"pdf-annotator/pkg/geometry"

	"codeberg.org/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var measurer = annotation.MeasurerFunc(func(face annotation.Face, text string) annotation.TextExtent {
	return annotation.TextExtent{Advance: float64(len(text)) * face.Size / 2, LineHeight: face.Size}
})

func makePDF(t *testing.T, n int) string {
	t.Helper()
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetFont("Helvetica", "", 12)
	for i := 0; i < n; i++ {
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: 200 + 10*float64(i), Ht: 300})
		pdf.Text(20, 40, fmt.Sprintf("Page %d", i+1))
	}
	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, pdf.OutputFileAndClose(path))
	return path
}

func openState(t *testing.T, pages int) *State {
	t.Helper()
	s := NewState(measurer, nil, nil)
	require.NoError(t, s.Open(makePDF(t, pages)))
	t.Cleanup(func() { s.Close() })
	return s
}

func stamp(t *testing.T, page int, x, y float64) *annotation.Image {
	t.Helper()
	img, err := annotation.NewImage(
		annotation.Placement{Position: geometry.Point2D{X: x, Y: y}, Page: page, Zoom: 1},
		"", image.NewRGBA(image.Rect(0, 0, 8, 8)), geometry.Size{Width: 40, Height: 40})
	require.NoError(t, err)
	return img
}

func pages(anns []annotation.Annotation) []int {
	var out []int
	for _, a := range anns {
		out = append(out, a.Common().Page)
	}
	return out
}

func TestNoDocument(t *testing.T) {
	s := NewState(measurer, nil, nil)
	_, err := s.Save("")
	assert.ErrorIs(t, err, ErrNoDocument)
	assert.ErrorIs(t, s.Add(stamp(t, 0, 0, 0)), ErrNoDocument)
	assert.ErrorIs(t, s.DeletePage(0), ErrNoDocument)
	_, err = s.PageDisplaySize(0, 1)
	assert.ErrorIs(t, err, ErrNoDocument)
	assert.Zero(t, s.PageCount())
	assert.NoError(t, s.Close())
}

func TestEvents(t *testing.T) {
	s := NewState(measurer, nil, nil)
	var got []EventType
	for _, ev := range []EventType{EventDocumentOpened, EventAnnotationsChanged, EventModified, EventDocumentClosed} {
		ev := ev
		s.On(ev, func(interface{}) { got = append(got, ev) })
	}
	require.NoError(t, s.Open(makePDF(t, 1)))
	require.NoError(t, s.Add(stamp(t, 0, 10, 10)))
	require.NoError(t, s.Close())

	assert.Equal(t, []EventType{EventDocumentOpened, EventModified, EventAnnotationsChanged, EventDocumentClosed}, got)
	assert.Equal(t, "annotations_changed", EventAnnotationsChanged.String())
}

func TestAddRejectsPageOutOfRange(t *testing.T) {
	s := openState(t, 2)
	var perr *pdfdoc.PageError
	assert.True(t, errors.As(s.Add(stamp(t, 2, 0, 0)), &perr))
	assert.Zero(t, s.Count())
}

func TestManagerQueries(t *testing.T) {
	s := openState(t, 3)
	a := stamp(t, 0, 10, 10)
	b := stamp(t, 1, 10, 10)
	c := stamp(t, 1, 20, 20)
	txt, err := annotation.NewText(annotation.Placement{Page: 2, Zoom: 1, Position: geometry.Point2D{X: 50, Y: 50}},
		annotation.DefaultTextFormat("note"), measurer)
	require.NoError(t, err)
	for _, ann := range []annotation.Annotation{a, b, c, txt} {
		require.NoError(t, s.Add(ann))
	}

	assert.Equal(t, 4, s.Count())
	assert.Equal(t, []annotation.Annotation{b, c}, s.ForPage(1))
	assert.Equal(t, []annotation.Annotation{txt}, s.ByKind(annotation.KindText))
	assert.True(t, s.Modified)

	got, ok := s.FindAt(1, geometry.Point2D{X: 30, Y: 30}, 1)
	require.True(t, ok)
	assert.Same(t, c, got)
	_, ok = s.FindAt(0, geometry.Point2D{X: 100, Y: 100}, 1)
	assert.False(t, ok)

	assert.True(t, s.Remove(c))
	assert.False(t, s.Remove(c))
	assert.Equal(t, 1, s.ClearPage(1))
	assert.Equal(t, []annotation.Annotation{a, txt}, s.Annotations())
}

func TestPageDisplaySize(t *testing.T) {
	s := openState(t, 2)
	size, err := s.PageDisplaySize(1, 1.5)
	require.NoError(t, err)
	assert.Equal(t, geometry.Size{Width: 630, Height: 900}, size)
}

func TestRemapPagesAfterDelete(t *testing.T) {
	var anns []annotation.Annotation
	for p := 0; p < 5; p++ {
		anns = append(anns, stamp(t, p, 0, 0))
	}
	out := RemapPages(anns, pdfdoc.DeleteMapping(5, 2))
	assert.Equal(t, []int{0, 1, 2, 3}, pages(out))
	assert.Same(t, anns[3], out[2])
	assert.Same(t, anns[4], out[3])
}

func TestRemapPagesAfterMove(t *testing.T) {
	var anns []annotation.Annotation
	for p := 0; p < 4; p++ {
		anns = append(anns, stamp(t, p, 0, 0))
	}
	// Page 0 moves to the end: old 1,2,3,0.
	out := RemapPages(anns, pdfdoc.MoveMapping(4, 0, 3))
	assert.Equal(t, []int{3, 0, 1, 2}, pages(out))
}

func TestDeletePageDropsDrafts(t *testing.T) {
	s := openState(t, 5)
	for p := 0; p < 5; p++ {
		require.NoError(t, s.Add(stamp(t, p, float64(p), 0)))
	}
	var pagesChanged int
	s.On(EventPagesChanged, func(interface{}) { pagesChanged++ })

	require.NoError(t, s.DeletePage(1))

	assert.Equal(t, 4, s.PageCount())
	assert.Equal(t, []int{0, 1, 2, 3}, pages(s.Annotations()))
	assert.Equal(t, []float64{0, 2, 3, 4}, xs(s.Annotations()))
	assert.Equal(t, 1, pagesChanged)
}

func xs(anns []annotation.Annotation) []float64 {
	var out []float64
	for _, a := range anns {
		out = append(out, a.Common().X)
	}
	return out
}

func TestMovePageCarriesDrafts(t *testing.T) {
	s := openState(t, 3)
	require.NoError(t, s.Add(stamp(t, 0, 0, 0)))
	require.NoError(t, s.Add(stamp(t, 2, 2, 0)))

	require.NoError(t, s.MovePage(2, 0))
	assert.Equal(t, []int{1, 0}, pages(s.Annotations()))

	size, err := s.Document().PageSize(0)
	require.NoError(t, err)
	assert.Equal(t, 220.0, size.Width)
}

func TestApplyPageMapping(t *testing.T) {
	s := openState(t, 3)
	require.NoError(t, s.Add(stamp(t, 0, 0, 0)))
	require.NoError(t, s.Add(stamp(t, 1, 1, 0)))
	require.NoError(t, s.Add(stamp(t, 2, 2, 0)))

	require.NoError(t, s.ApplyPageMapping([]int{2, 0}))
	assert.Equal(t, 2, s.PageCount())
	assert.Equal(t, []float64{0, 2}, xs(s.Annotations()))
	assert.Equal(t, []int{1, 0}, pages(s.Annotations()))
}

func TestSaveClearsDrafts(t *testing.T) {
	s := openState(t, 2)
	require.NoError(t, s.Add(stamp(t, 1, 10, 10)))
	var saved string
	s.On(EventDocumentSaved, func(data interface{}) { saved = data.(string) })

	out := filepath.Join(t.TempDir(), "out.pdf")
	rep, err := s.Save(out)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Applied)
	assert.Zero(t, s.Count())
	assert.False(t, s.Modified)
	assert.Equal(t, out, saved)
	assert.Equal(t, out, s.DocumentPath())
}

func TestSaveFailureKeepsDrafts(t *testing.T) {
	s := openState(t, 1)
	require.NoError(t, s.Add(stamp(t, 0, 10, 10)))
	var failed error
	s.On(EventSaveFailed, func(data interface{}) { failed = data.(error) })

	_, err := s.Save(filepath.Join(t.TempDir(), "missing", "out.pdf"))
	var serr *pdfdoc.SaveError
	require.True(t, errors.As(err, &serr), "got %v", err)
	assert.Equal(t, 1, s.Count())
	assert.True(t, s.Modified)
	assert.Equal(t, err, failed)
}

func TestOpenReplacesDrafts(t *testing.T) {
	s := openState(t, 1)
	require.NoError(t, s.Add(stamp(t, 0, 10, 10)))
	require.NoError(t, s.Open(makePDF(t, 2)))
	assert.Zero(t, s.Count())
	assert.Equal(t, 2, s.PageCount())
	assert.False(t, s.Modified)
}
