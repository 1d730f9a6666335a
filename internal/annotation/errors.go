package annotation

import "fmt"

// ValidationError is returned when an annotation cannot be constructed from
// the given inputs.
type ValidationError struct {
	Kind   Kind
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s annotation: %s %s", e.Kind, e.Field, e.Reason)
}

func invalid(kind Kind, field, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Field: field, Reason: fmt.Sprintf(format, args...)}
}
