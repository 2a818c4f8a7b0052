package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors shared between repositories, services and handlers.
var (
	// ErrNotFound means a referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the acting account does not own the target record.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict means a uniqueness constraint rejected a write.
	ErrConflict = errors.New("conflict")
)

// ValidationError carries per-field messages for form input that was
// rejected before any write happened.
type ValidationError struct {
	Fields map[string]string
}

// Validation creates an empty ValidationError to be filled via Add.
func Validation() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records a message for a field, keeping the first message per field.
func (e *ValidationError) Add(field, message string) {
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

// Err returns the error if any field was rejected, nil otherwise.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e.Fields[f]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsValidation unwraps err into a ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
