// Package app provides the editing session: the open document, its draft
// annotations, and change events.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"pdf-annotator/internal/annotation"
	"pdf-annotator/internal/logging"
	"pdf-annotator/internal/pdfdoc"
	"pdf-annotator/internal/projector"
	"pdf-annotator/pkg/geometry"
)

// ErrNoDocument is returned by operations that need an open document.
var ErrNoDocument = errors.New("no document open")

// State holds the open document and the annotations drafted on it. Drafts
// live only in memory until Save bakes them into the PDF.
type State struct {
	mu sync.RWMutex

	// Document
	doc      *pdfdoc.Document
	Modified bool

	// Draft annotations in insertion order; later entries are drawn on top.
	drafts []annotation.Annotation

	// Fonts embedded on every save.
	fonts []pdfdoc.FontData

	measurer  annotation.Measurer
	projector *projector.Projector
	logger    *slog.Logger

	// Event listeners
	listeners map[EventType][]EventListener
}

// EventType identifies different session events.
type EventType int

const (
	EventDocumentOpened EventType = iota
	EventDocumentSaved
	EventDocumentClosed
	EventSaveFailed
	EventAnnotationsChanged
	EventPagesChanged
	EventModified
)

func (e EventType) String() string {
	switch e {
	case EventDocumentOpened:
		return "document_opened"
	case EventDocumentSaved:
		return "document_saved"
	case EventDocumentClosed:
		return "document_closed"
	case EventSaveFailed:
		return "save_failed"
	case EventAnnotationsChanged:
		return "annotations_changed"
	case EventPagesChanged:
		return "pages_changed"
	case EventModified:
		return "modified"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates an empty session. m measures text annotations; proj
// projects drafts into the PDF on save. A nil logger discards output.
func NewState(m annotation.Measurer, proj *projector.Projector, logger *slog.Logger) *State {
	logger = logging.OrDiscard(logger)
	if proj == nil {
		proj = projector.New(logger)
	}
	return &State{
		measurer:  m,
		projector: proj,
		logger:    logger,
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetModified marks the session as modified and emits an event.
func (s *State) SetModified(modified bool) {
	s.mu.Lock()
	s.Modified = modified
	s.mu.Unlock()
	s.Emit(EventModified, modified)
}

// Measurer returns the text measurer new text annotations are built with.
func (s *State) Measurer() annotation.Measurer {
	return s.measurer
}

// Logger returns the session logger.
func (s *State) Logger() *slog.Logger {
	return s.logger
}

// Open opens the PDF at path, replacing the current document. Drafts of the
// previous document are discarded.
func (s *State) Open(path string) error {
	doc, err := pdfdoc.Open(path, s.logger)
	if err != nil {
		return err
	}
	s.mu.Lock()
	for _, f := range s.fonts {
		doc.AddFont(f)
	}
	old := s.doc
	s.doc = doc
	s.drafts = nil
	s.Modified = false
	s.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			s.logger.Warn("closing previous document", "path", old.Path(), "error", err)
		}
	}
	s.logger.Info("opened document", "path", path, "pages", doc.PageCount())
	s.Emit(EventDocumentOpened, path)
	return nil
}

// Close closes the document and drops its drafts.
func (s *State) Close() error {
	s.mu.Lock()
	doc := s.doc
	s.doc = nil
	s.drafts = nil
	s.Modified = false
	s.mu.Unlock()

	if doc == nil {
		return nil
	}
	err := doc.Close()
	s.Emit(EventDocumentClosed, doc.Path())
	return err
}

// HasDocument reports whether a document is open.
func (s *State) HasDocument() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc != nil
}

// Document returns the open document, or nil.
func (s *State) Document() *pdfdoc.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

// DocumentPath returns the path of the open document, or "".
func (s *State) DocumentPath() string {
	if doc := s.Document(); doc != nil {
		return doc.Path()
	}
	return ""
}

// PageCount returns the number of pages, or 0 without a document.
func (s *State) PageCount() int {
	if doc := s.Document(); doc != nil {
		return doc.PageCount()
	}
	return 0
}

// PageDisplaySize returns the pixel size of a rendered page at zoom.
func (s *State) PageDisplaySize(page int, zoom float64) (geometry.Size, error) {
	doc := s.Document()
	if doc == nil {
		return geometry.Size{}, ErrNoDocument
	}
	pts, err := doc.PageSize(page)
	if err != nil {
		return geometry.Size{}, err
	}
	return pts.Scale(annotation.BaseDisplayScale * zoom), nil
}

// AddFont registers a TrueType font for text annotations. It is embedded in
// the open document and in every document opened later.
func (s *State) AddFont(f pdfdoc.FontData) {
	s.mu.Lock()
	s.fonts = append(s.fonts, f)
	doc := s.doc
	s.mu.Unlock()
	if doc != nil {
		doc.AddFont(f)
	}
}

// Save writes the document with all drafts baked in. An empty path saves
// over the opened file. On success the drafts are cleared; on failure they
// are kept so the save can be retried. Annotations that could not be
// written are listed in the report and do not fail the save.
func (s *State) Save(path string) (projector.Report, error) {
	s.mu.RLock()
	doc := s.doc
	drafts := append([]annotation.Annotation(nil), s.drafts...)
	s.mu.RUnlock()

	if doc == nil {
		return projector.Report{}, ErrNoDocument
	}
	if path == "" {
		path = doc.Path()
	}

	rep, err := doc.Save(path, drafts, s.projector)
	if err != nil {
		s.logger.Error("save failed", "path", path, "error", err)
		s.Emit(EventSaveFailed, err)
		return rep, err
	}
	for _, sk := range rep.Skipped {
		s.logger.Warn("annotation not saved", "index", sk.Index, "page", sk.Page, "kind", sk.Kind, "error", sk.Err)
	}

	s.mu.Lock()
	s.drafts = nil
	s.Modified = false
	s.mu.Unlock()

	s.Emit(EventDocumentSaved, path)
	s.Emit(EventAnnotationsChanged, nil)
	return rep, nil
}

// Add appends a draft annotation.
func (s *State) Add(a annotation.Annotation) error {
	if !s.HasDocument() {
		return ErrNoDocument
	}
	if page := a.Common().Page; page >= s.PageCount() {
		return &pdfdoc.PageError{Page: page, Count: s.PageCount()}
	}
	s.mu.Lock()
	s.drafts = append(s.drafts, a)
	s.mu.Unlock()
	s.Changed()
	return nil
}

// Remove deletes a draft. It reports whether a was present.
func (s *State) Remove(a annotation.Annotation) bool {
	s.mu.Lock()
	found := false
	for i, d := range s.drafts {
		if d == a {
			s.drafts = append(s.drafts[:i], s.drafts[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()
	if found {
		s.Changed()
	}
	return found
}

// Changed records that a draft was edited in place.
func (s *State) Changed() {
	s.SetModified(true)
	s.Emit(EventAnnotationsChanged, nil)
}

// Annotations returns all drafts in insertion order.
func (s *State) Annotations() []annotation.Annotation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]annotation.Annotation(nil), s.drafts...)
}

// Count returns the number of drafts.
func (s *State) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.drafts)
}

// ForPage returns the drafts on page in insertion order.
func (s *State) ForPage(page int) []annotation.Annotation {
	return s.filter(func(a annotation.Annotation) bool { return a.Common().Page == page })
}

// ByKind returns the drafts of one variant in insertion order.
func (s *State) ByKind(kind annotation.Kind) []annotation.Annotation {
	return s.filter(func(a annotation.Annotation) bool { return a.Kind() == kind })
}

func (s *State) filter(keep func(annotation.Annotation) bool) []annotation.Annotation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []annotation.Annotation
	for _, a := range s.drafts {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

// ClearPage drops every draft on page and returns how many were removed.
func (s *State) ClearPage(page int) int {
	s.mu.Lock()
	kept := s.drafts[:0]
	for _, a := range s.drafts {
		if a.Common().Page != page {
			kept = append(kept, a)
		}
	}
	n := len(s.drafts) - len(kept)
	s.drafts = kept
	s.mu.Unlock()
	if n > 0 {
		s.Changed()
	}
	return n
}

// FindAt returns the topmost draft on page under a display-space point.
func (s *State) FindAt(page int, point geometry.Point2D, zoom float64) (annotation.Annotation, bool) {
	return annotation.HitTest(s.ForPage(page), point, zoom)
}

// DeletePage removes a page from the document. Its drafts are dropped and
// drafts on later pages move up by one.
func (s *State) DeletePage(page int) error {
	doc := s.Document()
	if doc == nil {
		return ErrNoDocument
	}
	n := doc.PageCount()
	if err := doc.DeletePage(page); err != nil {
		return err
	}
	s.remap(pdfdoc.DeleteMapping(n, page))
	return nil
}

// MovePage moves a page to a new index; drafts follow their page.
func (s *State) MovePage(from, to int) error {
	doc := s.Document()
	if doc == nil {
		return ErrNoDocument
	}
	n := doc.PageCount()
	if err := doc.MovePage(from, to); err != nil {
		return err
	}
	if from != to {
		s.remap(pdfdoc.MoveMapping(n, from, to))
	}
	return nil
}

// ApplyPageMapping rearranges pages so that new page i is old page
// mapping[i]. Drafts on pages left out of mapping are dropped.
func (s *State) ApplyPageMapping(mapping []int) error {
	doc := s.Document()
	if doc == nil {
		return ErrNoDocument
	}
	if err := doc.Reorder(mapping); err != nil {
		return err
	}
	s.remap(mapping)
	return nil
}

// Merge appends the pages of another PDF. Drafts are unaffected.
func (s *State) Merge(path string) error {
	doc := s.Document()
	if doc == nil {
		return ErrNoDocument
	}
	if err := doc.Merge(path); err != nil {
		return err
	}
	s.SetModified(true)
	s.Emit(EventPagesChanged, doc.PageCount())
	return nil
}

func (s *State) remap(mapping []int) {
	s.mu.Lock()
	before := len(s.drafts)
	s.drafts = RemapPages(s.drafts, mapping)
	dropped := before - len(s.drafts)
	s.mu.Unlock()

	s.logger.Info("remapped drafts", "mapping", mapping, "dropped", dropped)
	s.SetModified(true)
	s.Emit(EventPagesChanged, len(mapping))
	s.Emit(EventAnnotationsChanged, nil)
}

// RemapPages rewrites page indices after a page rearrangement where new
// page i is old page mapping[i]. Annotations whose page is not in mapping
// are dropped. Order is preserved.
func RemapPages(anns []annotation.Annotation, mapping []int) []annotation.Annotation {
	newIndex := make(map[int]int, len(mapping))
	for n, old := range mapping {
		newIndex[old] = n
	}
	out := make([]annotation.Annotation, 0, len(anns))
	for _, a := range anns {
		n, ok := newIndex[a.Common().Page]
		if !ok {
			continue
		}
		a.Common().Page = n
		out = append(out, a)
	}
	return out
}
