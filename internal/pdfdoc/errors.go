package pdfdoc

import "fmt"

// OpenError is returned when a document cannot be opened.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("failed to open %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// SaveError is returned when a document cannot be written. The document and
// its drafts are left as they were.
type SaveError struct {
	Path string
	Err  error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("failed to save %s: %v", e.Path, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

// PageError reports a page index outside the document.
type PageError struct {
	Page  int // zero-based
	Count int
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %d out of range (document has %d pages)", e.Page+1, e.Count)
}
