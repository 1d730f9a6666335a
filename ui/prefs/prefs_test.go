package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMissingFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	p, err := Open(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "preferences.json"), p.Path())
	assert.Equal(t, 1.5, p.FloatWithFallback(KeyLastZoom, 1.5))
}

func TestSaveAndReload(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	p, err := Open(dir)
	require.NoError(t, err)

	p.SetFloat(KeyLastZoom, 1.75)
	p.SetString(KeyLastDir, "/tmp/docs")
	require.NoError(t, p.Save())
	assert.NoFileExists(t, p.Path()+".tmp")

	q, err := Open(dir)
	require.NoError(t, err)
	assert.Equal(t, 1.75, q.FloatWithFallback(KeyLastZoom, 0))
	assert.Equal(t, "/tmp/docs", q.String(KeyLastDir))
}

func TestSetEmptyStringDeletes(t *testing.T) {
	p, err := Open(t.TempDir())
	require.NoError(t, err)
	p.SetString(KeyLastDocument, "a.pdf")
	p.SetString(KeyLastDocument, "")
	assert.Equal(t, "", p.String(KeyLastDocument))
	assert.Equal(t, 2.0, p.FloatWithFallback(KeyLastDocument, 2))
}

func TestTypeMismatchFallsBack(t *testing.T) {
	p, err := Open(t.TempDir())
	require.NoError(t, err)
	p.SetString(KeyLastZoom, "big")
	assert.Equal(t, 1.0, p.FloatWithFallback(KeyLastZoom, 1))
	assert.Equal(t, "", p.String("other"))
}

func TestOpenCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "preferences.json"), []byte("{not json"), 0o644))
	p, err := Open(dir)
	assert.Error(t, err)
	require.NotNil(t, p)
	p.SetFloat(KeyLastZoom, 2)
	assert.Equal(t, 2.0, p.FloatWithFallback(KeyLastZoom, 0))
}
