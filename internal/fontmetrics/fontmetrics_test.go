package fontmetrics

import (
	"os"
	"path/filepath"
	"testing"

	"pdf-annotator/internal/annotation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/gomono"
)

func TestMeasureScalesWithSize(t *testing.T) {
	lib, err := New()
	require.NoError(t, err)

	small := lib.Measure(annotation.Face{Family: "Arial", Size: 12}, "Hello")
	large := lib.Measure(annotation.Face{Family: "Arial", Size: 24}, "Hello")

	assert.Greater(t, small.Advance, 0.0)
	assert.Greater(t, small.LineHeight, 0.0)
	assert.InDelta(t, 2*small.Advance, large.Advance, 1)
	assert.InDelta(t, 2*small.LineHeight, large.LineHeight, 1)
}

func TestMeasureEmptyText(t *testing.T) {
	lib, err := New()
	require.NoError(t, err)
	ext := lib.Measure(annotation.Face{Family: "Arial", Size: 12}, "")
	assert.Zero(t, ext.Advance)
	assert.Greater(t, ext.LineHeight, 0.0)
}

func TestCourierIsMonospaced(t *testing.T) {
	lib, err := New()
	require.NoError(t, err)
	face := annotation.Face{Family: "Courier New", Size: 20}
	narrow := lib.Measure(face, "iiii")
	wide := lib.Measure(face, "MMMM")
	assert.Equal(t, narrow.Advance, wide.Advance)

	sans := annotation.Face{Family: "Arial", Size: 20}
	assert.Less(t, lib.Measure(sans, "iiii").Advance, lib.Measure(sans, "MMMM").Advance)
}

func TestUnknownFamilyFallsBack(t *testing.T) {
	lib, err := New()
	require.NoError(t, err)
	want := lib.Measure(annotation.Face{Family: GoSans, Size: 14, Bold: true}, "abc")
	got := lib.Measure(annotation.Face{Family: "No Such Font", Size: 14, Bold: true}, "abc")
	assert.Equal(t, want, got)
}

func TestFaceCache(t *testing.T) {
	lib, err := New()
	require.NoError(t, err)
	italic := annotation.Face{Family: "Helvetica", Size: 16, Italic: true}
	a, err := lib.Face(italic)
	require.NoError(t, err)
	b, err := lib.Face(italic)
	require.NoError(t, err)
	assert.Same(t, a, b)

	_, err = lib.Face(annotation.Face{Family: "Helvetica", Size: 0})
	assert.Error(t, err)
}

func TestRegisterFile(t *testing.T) {
	lib, err := New()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "mono.ttf")
	require.NoError(t, os.WriteFile(path, gomono.TTF, 0o644))
	require.NoError(t, lib.RegisterFile("Arial", Regular, path))

	face := annotation.Face{Family: "arial", Size: 20}
	assert.Equal(t, lib.Measure(face, "iiii").Advance, lib.Measure(face, "MMMM").Advance)

	assert.Error(t, lib.RegisterFile("Broken", Regular, filepath.Join(t.TempDir(), "missing.ttf")))
	assert.Error(t, lib.Register("Broken", Regular, []byte("not a font")))
}

func TestStyleOf(t *testing.T) {
	assert.Equal(t, Regular, StyleOf(false, false))
	assert.Equal(t, Bold, StyleOf(true, false))
	assert.Equal(t, Italic, StyleOf(false, true))
	assert.Equal(t, BoldItalic, StyleOf(true, true))
	assert.Equal(t, "bold_italic", BoldItalic.String())
}
