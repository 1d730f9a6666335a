package pdfdoc

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"pdf-annotator/internal/annotation"
	"pdf-annotator/internal/projector"
)

// FontData is a TrueType font embedded into saved documents.
type FontData struct {
	Family string
	Style  string // "", "B", "I" or "BI"
	TTF    []byte
}

// AddFont makes a TrueType font available to text annotations on save.
func (d *Document) AddFont(f FontData) {
	d.fonts = append(d.fonts, f)
}

// Save writes the document with anns baked in to path, which may be the
// path it was opened from. Output goes to a temporary file next to path
// that replaces path only once fully written; the temporary file never
// outlives the call. On success the document continues from the saved
// file. Annotations that fail individually are reported, not fatal.
func (d *Document) Save(path string, anns []annotation.Annotation, proj *projector.Projector) (projector.Report, error) {
	w, err := NewWriter(d.work, d.pages)
	if err != nil {
		return projector.Report{}, &SaveError{Path: path, Err: err}
	}
	for _, f := range d.fonts {
		if err := w.RegisterFont(f.Family, f.Style, f.TTF); err != nil {
			d.logger.Warn("font not embedded", "family", f.Family, "style", f.Style, "error", err)
		}
	}

	rep := proj.Apply(w, anns)

	if err := writeAtomic(path, w.Output); err != nil {
		return rep, &SaveError{Path: path, Err: err}
	}
	if err := copyFile(path, d.work); err != nil {
		return rep, &SaveError{Path: path, Err: fmt.Errorf("refreshing working copy: %w", err)}
	}
	if err := d.loadPages(); err != nil {
		return rep, &SaveError{Path: path, Err: err}
	}
	d.path = path
	d.logger.Info("saved document", "path", path, "applied", rep.Applied, "skipped", len(rep.Skipped))
	return rep, nil
}

// writeAtomic writes through a temporary file in the target directory and
// renames it over path.
func writeAtomic(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()
	defer os.Remove(name)

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(name, path)
}
