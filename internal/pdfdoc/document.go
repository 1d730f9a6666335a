// Package pdfdoc holds the PDF document being annotated: page geometry,
// page-level edits and saving with annotations baked in.
//
// Edits are made on a private working copy; the user's file is only
// replaced by Save.
package pdfdoc

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"pdf-annotator/internal/logging"
	"pdf-annotator/pkg/geometry"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Document is an open PDF file.
type Document struct {
	path    string // file the user opened
	workDir string
	work    string // working copy all edits apply to
	pages   []geometry.Size
	fonts   []FontData

	conf   *model.Configuration
	logger *slog.Logger
}

// Open validates the PDF at path and prepares a working copy of it.
func Open(path string, logger *slog.Logger) (*Document, error) {
	logger = logging.OrDiscard(logger)
	conf := model.NewDefaultConfiguration()
	// Classic xref tables keep rewritten pages importable by the writer.
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false

	if err := pdfapi.ValidateFile(path, conf); err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}

	workDir, err := os.MkdirTemp("", "pdf-annotator-*")
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}
	d := &Document{
		path:    path,
		workDir: workDir,
		work:    filepath.Join(workDir, "work.pdf"),
		conf:    conf,
		logger:  logger,
	}
	if err := copyFile(path, d.work); err != nil {
		d.Close()
		return nil, &OpenError{Path: path, Err: err}
	}
	if err := d.loadPages(); err != nil {
		d.Close()
		return nil, &OpenError{Path: path, Err: err}
	}
	logger.Info("opened document", "path", path, "pages", len(d.pages))
	return d, nil
}

// Close removes the working copy. Unsaved page edits are lost.
func (d *Document) Close() error {
	if d.workDir == "" {
		return nil
	}
	err := os.RemoveAll(d.workDir)
	d.workDir = ""
	return err
}

// Path returns the file the document was opened from.
func (d *Document) Path() string {
	return d.path
}

// WorkingCopy returns the path of the file that reflects all page edits.
func (d *Document) WorkingCopy() string {
	return d.work
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return len(d.pages)
}

// PageSize returns the size of a page in PDF points.
func (d *Document) PageSize(page int) (geometry.Size, error) {
	if err := d.checkPage(page); err != nil {
		return geometry.Size{}, err
	}
	return d.pages[page], nil
}

// PageSizes returns the sizes of all pages in PDF points.
func (d *Document) PageSizes() []geometry.Size {
	return append([]geometry.Size(nil), d.pages...)
}

func (d *Document) checkPage(page int) error {
	if page < 0 || page >= len(d.pages) {
		return &PageError{Page: page, Count: len(d.pages)}
	}
	return nil
}

func (d *Document) loadPages() error {
	dims, err := pdfapi.PageDimsFile(d.work)
	if err != nil {
		return fmt.Errorf("reading page sizes: %w", err)
	}
	if len(dims) == 0 {
		return errors.New("document has no pages")
	}
	d.pages = d.pages[:0]
	for _, dim := range dims {
		d.pages = append(d.pages, geometry.Size{Width: dim.Width, Height: dim.Height})
	}
	return nil
}

// DeletePage removes a page. The last remaining page cannot be deleted.
func (d *Document) DeletePage(page int) error {
	if err := d.checkPage(page); err != nil {
		return err
	}
	if len(d.pages) == 1 {
		return errors.New("cannot delete the only page")
	}
	err := d.rewrite(func(out string) error {
		return pdfapi.RemovePagesFile(d.work, out, []string{strconv.Itoa(page + 1)}, d.conf)
	})
	if err != nil {
		return fmt.Errorf("deleting page %d: %w", page+1, err)
	}
	d.logger.Info("deleted page", "page", page, "pages", len(d.pages))
	return nil
}

// MovePage moves the page at from so that it ends up at index to.
func (d *Document) MovePage(from, to int) error {
	if err := d.checkPage(from); err != nil {
		return err
	}
	if err := d.checkPage(to); err != nil {
		return err
	}
	if from == to {
		return nil
	}
	if err := d.Reorder(MoveMapping(len(d.pages), from, to)); err != nil {
		return fmt.Errorf("moving page %d to %d: %w", from+1, to+1, err)
	}
	return nil
}

// Reorder rearranges pages so that new page i is old page mapping[i]. Old
// pages not named in mapping are dropped.
func (d *Document) Reorder(mapping []int) error {
	if len(mapping) == 0 {
		return errors.New("page mapping is empty")
	}
	sel := make([]string, len(mapping))
	for i, old := range mapping {
		if err := d.checkPage(old); err != nil {
			return err
		}
		sel[i] = strconv.Itoa(old + 1)
	}
	err := d.rewrite(func(out string) error {
		return pdfapi.CollectFile(d.work, out, sel, d.conf)
	})
	if err != nil {
		return err
	}
	d.logger.Info("reordered pages", "mapping", mapping)
	return nil
}

// Merge appends all pages of the PDF at other.
func (d *Document) Merge(other string) error {
	if err := pdfapi.ValidateFile(other, d.conf); err != nil {
		return &OpenError{Path: other, Err: err}
	}
	before := len(d.pages)
	err := d.rewrite(func(out string) error {
		return pdfapi.MergeCreateFile([]string{d.work, other}, out, false, d.conf)
	})
	if err != nil {
		return fmt.Errorf("merging %s: %w", other, err)
	}
	d.logger.Info("merged document", "path", other, "added", len(d.pages)-before)
	return nil
}

// rewrite runs op to produce a new working copy, replaces the current one
// and reloads page geometry. The temporary output is always removed.
func (d *Document) rewrite(op func(out string) error) error {
	out := filepath.Join(d.workDir, "next.pdf")
	defer os.Remove(out)

	if err := op(out); err != nil {
		return err
	}
	if err := os.Rename(out, d.work); err != nil {
		return err
	}
	return d.loadPages()
}

// MoveMapping returns the mapping (new index -> old index) that moves page
// from to position to in a document of n pages.
func MoveMapping(n, from, to int) []int {
	order := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if i != from {
			order = append(order, i)
		}
	}
	order = append(order[:to], append([]int{from}, order[to:]...)...)
	return order
}

// DeleteMapping returns the mapping (new index -> old index) for removing
// page from a document of n pages.
func DeleteMapping(n, page int) []int {
	order := make([]int, 0, n-1)
	for i := 0; i < n; i++ {
		if i != page {
			order = append(order, i)
		}
	}
	return order
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
