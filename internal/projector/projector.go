// Package projector bakes draft annotations into a PDF page through a
// Writer, converting creation-space geometry to PDF user-space.
//
// All conversions divide by BaseDisplayScale × the annotation's created
// zoom; the viewport zoom at save time never enters the computation.
package projector

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"pdf-annotator/internal/annotation"
	imgutil "pdf-annotator/internal/image"
	"pdf-annotator/internal/logging"
	"pdf-annotator/pkg/colorutil"
	"pdf-annotator/pkg/geometry"
)

// Text placement constants, in PDF points unless noted.
const (
	BaselineRatio        = 0.65 // baseline position within the text box, from the top
	DecorationWidth      = 0.5
	UnderlineOffset      = 1.5
	StrikethroughRatio   = 0.35 // of the font size, above the baseline
	FallbackFont         = "Helvetica"
	doodleTempFilePrefix = "pdf-annotator-doodle-*.png"
)

// ErrFontUnavailable is reported when no font in the fallback chain could
// be used for a text annotation.
var ErrFontUnavailable = errors.New("no usable font")

// FontRef names a PDF font.
type FontRef struct {
	Family string
	Bold   bool
	Italic bool
}

func (f FontRef) String() string {
	switch {
	case f.Bold && f.Italic:
		return f.Family + "-BoldItalic"
	case f.Bold:
		return f.Family + "-Bold"
	case f.Italic:
		return f.Family + "-Italic"
	default:
		return f.Family
	}
}

// Writer is the PDF writer collaborator. Coordinates are PDF points with
// the origin at the top-left of the page.
type Writer interface {
	InsertText(page int, at geometry.Point2D, text string, font FontRef, size float64, c colorutil.RGB) error
	DrawLine(page int, from, to geometry.Point2D, c colorutil.RGB, width float64) error
	InsertImage(page int, rect geometry.Rect, path string) error
}

var familyMap = map[string]string{
	"Times New Roman": "Times",
	"Courier New":     "Courier",
	"Arial":           "Helvetica",
}

// PDFFamily maps a UI font family to the PDF base font family.
func PDFFamily(family string) string {
	if f, ok := familyMap[family]; ok {
		return f
	}
	return family
}

// FontCandidates returns the fonts to try, in order: the styled family,
// the plain family, then Helvetica.
func FontCandidates(f annotation.TextFormat) []FontRef {
	family := PDFFamily(f.FontFamily)
	var out []FontRef
	if f.Bold || f.Italic {
		out = append(out, FontRef{Family: family, Bold: f.Bold, Italic: f.Italic})
	}
	out = append(out, FontRef{Family: family})
	if family != FallbackFont {
		out = append(out, FontRef{Family: FallbackFont})
	}
	return out
}

// Line is a straight segment in PDF space.
type Line struct {
	From, To geometry.Point2D
}

// TextPlacement is the PDF geometry of a text annotation.
type TextPlacement struct {
	Baseline      geometry.Point2D // start of the baseline
	FontSize      float64
	Advance       float64 // measured text width
	Underline     Line
	Strikethrough Line
}

// ProjectPoint maps the annotation position to PDF space.
func ProjectPoint(a annotation.Annotation) geometry.Point2D {
	return annotation.PDFTransform(a).Apply(a.Common().Position())
}

// ProjectRect maps an image or doodle to its PDF rectangle.
func ProjectRect(a annotation.Resizable) geometry.Rect {
	return annotation.CreationRect(a).Transform(annotation.PDFTransform(a))
}

// ProjectText computes the baseline and decoration lines of a text
// annotation from its creation-space measurement.
func ProjectText(t *annotation.Text) TextPlacement {
	scale := annotation.PDFScale(t)
	pos := ProjectPoint(t)
	height := t.CreationSize().Height * scale

	rectTop := pos.Y - height + annotation.TextYOffset*scale
	baseline := geometry.Point2D{
		X: pos.X + annotation.TextLeftInset*scale,
		Y: rectTop + height*BaselineRatio,
	}
	advance := t.CreationExtent().Advance * scale

	underY := baseline.Y + UnderlineOffset
	strikeY := baseline.Y - t.Format.FontSize*StrikethroughRatio
	return TextPlacement{
		Baseline: baseline,
		FontSize: t.Format.FontSize,
		Advance:  advance,
		Underline: Line{
			From: geometry.Point2D{X: baseline.X, Y: underY},
			To:   geometry.Point2D{X: baseline.X + advance, Y: underY},
		},
		Strikethrough: Line{
			From: geometry.Point2D{X: baseline.X, Y: strikeY},
			To:   geometry.Point2D{X: baseline.X + advance, Y: strikeY},
		},
	}
}

// Skipped records an annotation that could not be applied.
type Skipped struct {
	Index int // position in the input slice
	Page  int
	Kind  annotation.Kind
	Err   error
}

// Report summarizes one Apply run. Partial lists applied annotations that
// are missing a decoration line; they are also counted in Applied.
type Report struct {
	Applied int
	Skipped []Skipped
	Partial []Skipped
}

// Err returns the skipped annotations' errors joined, or nil.
func (r Report) Err() error {
	errs := make([]error, 0, len(r.Skipped))
	for _, s := range r.Skipped {
		errs = append(errs, fmt.Errorf("annotation %d (%s, page %d): %w", s.Index, s.Kind, s.Page+1, s.Err))
	}
	return errors.Join(errs...)
}

// Projector applies annotations to a Writer.
type Projector struct {
	logger  *slog.Logger
	tempDir string
}

// Option configures a Projector.
type Option func(*Projector)

// WithTempDir sets the directory for transient image files.
func WithTempDir(dir string) Option {
	return func(p *Projector) { p.tempDir = dir }
}

// New returns a Projector. A nil logger discards output.
func New(logger *slog.Logger, opts ...Option) *Projector {
	p := &Projector{logger: logging.OrDiscard(logger)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Apply writes every annotation in order. A failure affects only the
// annotation it happened on; the rest are still applied.
func (p *Projector) Apply(w Writer, anns []annotation.Annotation) Report {
	var rep Report
	for i, a := range anns {
		ap := &applier{p: p, w: w}
		err := a.Accept(ap)
		b := a.Common()
		if err != nil {
			p.logger.Warn("skipping annotation",
				"index", i, "kind", a.Kind().String(), "page", b.Page, "error", err)
			rep.Skipped = append(rep.Skipped, Skipped{Index: i, Page: b.Page, Kind: a.Kind(), Err: err})
			continue
		}
		if ap.partial != nil {
			rep.Partial = append(rep.Partial, Skipped{Index: i, Page: b.Page, Kind: a.Kind(), Err: ap.partial})
		}
		rep.Applied++
	}
	return rep
}

type applier struct {
	p       *Projector
	w       Writer
	partial error
}

func (ap *applier) VisitText(t *annotation.Text) error {
	tp := ProjectText(t)
	font, err := ap.insertText(t, tp)
	if err != nil {
		return err
	}
	ap.p.logger.Debug("inserted text", "page", t.Page, "font", font.String(), "size", tp.FontSize)

	// The text is in; a missing decoration does not undo it.
	var errs []error
	if t.Format.Underline {
		errs = append(errs, ap.decorate(t, "underline", tp.Underline))
	}
	if t.Format.Strikethrough {
		errs = append(errs, ap.decorate(t, "strikethrough", tp.Strikethrough))
	}
	ap.partial = errors.Join(errs...)
	return nil
}

func (ap *applier) decorate(t *annotation.Text, name string, l Line) error {
	if err := ap.w.DrawLine(t.Page, l.From, l.To, t.Format.Color, DecorationWidth); err != nil {
		ap.p.logger.Warn("decoration not drawn", "line", name, "page", t.Page, "error", err)
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (ap *applier) insertText(t *annotation.Text, tp TextPlacement) (FontRef, error) {
	var errs []error
	for _, font := range FontCandidates(t.Format) {
		err := ap.w.InsertText(t.Page, tp.Baseline, t.Format.Text, font, tp.FontSize, t.Format.Color)
		if err == nil {
			return font, nil
		}
		ap.p.logger.Debug("font unavailable, trying next", "font", font.String(), "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", font, err))
	}
	return FontRef{}, fmt.Errorf("%w: %w", ErrFontUnavailable, errors.Join(errs...))
}

func (ap *applier) VisitImage(img *annotation.Image) error {
	rect := ProjectRect(img)
	if img.SourcePath != "" && imgutil.CanEmbed(img.SourcePath) {
		return ap.w.InsertImage(img.Page, rect, img.SourcePath)
	}
	if img.Bitmap == nil {
		return errors.New("image has neither an embeddable file nor a bitmap")
	}
	return ap.insertBitmap(img.Page, rect, img.Bitmap)
}

func (ap *applier) VisitDoodle(d *annotation.Doodle) error {
	return ap.insertBitmap(d.Page, ProjectRect(d), d.Rasterize())
}

// insertBitmap writes bitmap to a transient PNG for the duration of the
// insertion. The file is removed whether or not insertion succeeds.
func (ap *applier) insertBitmap(page int, rect geometry.Rect, bitmap image.Image) error {
	path, cleanup, err := imgutil.TempPNG(bitmap, ap.p.tempDir, doodleTempFilePrefix)
	if err != nil {
		return err
	}
	defer cleanup()
	return ap.w.InsertImage(page, rect, path)
}
