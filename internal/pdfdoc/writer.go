package pdfdoc

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"pdf-annotator/internal/projector"
	"pdf-annotator/pkg/colorutil"
	"pdf-annotator/pkg/geometry"

	"codeberg.org/go-pdf/fpdf"
	"codeberg.org/go-pdf/fpdf/contrib/gofpdi"
)

const sourceBox = "/MediaBox"

// Writer rebuilds a PDF from the pages of a source file and draws on top
// of them. It implements projector.Writer. Coordinates are points with the
// origin at the top-left of each page.
type Writer struct {
	pdf   *fpdf.Fpdf
	pages []geometry.Size

	utf8 map[string]bool // families registered from TrueType data
	cp   func(string) string
}

var _ projector.Writer = (*Writer)(nil)

// NewWriter imports every page of the PDF at src as a template. pages are
// the page sizes in points, in document order.
func NewWriter(src string, pages []geometry.Size) (w *Writer, err error) {
	if len(pages) == 0 {
		return nil, errors.New("no pages to import")
	}
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCompression(true)

	// The importer reports unreadable input by panicking.
	defer func() {
		if r := recover(); r != nil {
			w, err = nil, fmt.Errorf("importing %s: %v", src, r)
		}
	}()

	imp := gofpdi.NewImporter()
	for i, size := range pages {
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: size.Width, Ht: size.Height})
		tpl := imp.ImportPage(pdf, src, i+1, sourceBox)
		imp.UseImportedTemplate(pdf, tpl, 0, 0, size.Width, size.Height)
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("importing %s: %w", src, err)
	}

	return &Writer{
		pdf:   pdf,
		pages: pages,
		utf8:  make(map[string]bool),
		cp:    pdf.UnicodeTranslatorFromDescriptor(""),
	}, nil
}

// RegisterFont makes a TrueType font usable under family. style is one of
// "", "B", "I" or "BI".
func (w *Writer) RegisterFont(family, style string, ttf []byte) error {
	w.pdf.AddUTF8FontFromBytes(family, style, ttf)
	if err := w.takeError(); err != nil {
		return fmt.Errorf("registering font %s %q: %w", family, style, err)
	}
	w.utf8[strings.ToLower(family)] = true
	return nil
}

// PageCount returns the number of pages.
func (w *Writer) PageCount() int {
	return len(w.pages)
}

// selectPage makes page current and returns the offset to add to
// top-origin y coordinates. fpdf converts y with the height of the most
// recently added page, which differs from page's own height in mixed-size
// documents.
func (w *Writer) selectPage(page int) (float64, error) {
	if page < 0 || page >= len(w.pages) {
		return 0, &PageError{Page: page, Count: len(w.pages)}
	}
	w.pdf.SetPage(page + 1)
	_, h := w.pdf.GetPageSize()
	return h - w.pages[page].Height, nil
}

// takeError returns and clears the writer's sticky error.
func (w *Writer) takeError() error {
	err := w.pdf.Error()
	if err != nil {
		w.pdf.ClearError()
	}
	return err
}

func fontStyle(f projector.FontRef) string {
	var s string
	if f.Bold {
		s += "B"
	}
	if f.Italic {
		s += "I"
	}
	return s
}

// InsertText writes text with its baseline starting at at.
func (w *Writer) InsertText(page int, at geometry.Point2D, text string, font projector.FontRef, size float64, c colorutil.RGB) error {
	dy, err := w.selectPage(page)
	if err != nil {
		return err
	}
	w.pdf.SetFont(font.Family, fontStyle(font), size)
	if err := w.takeError(); err != nil {
		return err
	}
	if !w.utf8[strings.ToLower(font.Family)] {
		text = w.cp(text)
	}
	w.pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
	w.pdf.Text(at.X, at.Y+dy, text)
	return w.takeError()
}

// DrawLine strokes a straight line.
func (w *Writer) DrawLine(page int, from, to geometry.Point2D, c colorutil.RGB, width float64) error {
	dy, err := w.selectPage(page)
	if err != nil {
		return err
	}
	w.pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
	w.pdf.SetLineWidth(width)
	w.pdf.Line(from.X, from.Y+dy, to.X, to.Y+dy)
	return w.takeError()
}

// InsertImage places the PNG, JPEG or GIF file at path into rect.
func (w *Writer) InsertImage(page int, rect geometry.Rect, path string) error {
	dy, err := w.selectPage(page)
	if err != nil {
		return err
	}
	w.pdf.ImageOptions(path, rect.X, rect.Y+dy, rect.Width, rect.Height, false,
		fpdf.ImageOptions{AllowNegativePosition: true}, 0, "")
	return w.takeError()
}

// Output writes the finished document.
func (w *Writer) Output(out io.Writer) error {
	return w.pdf.Output(out)
}
