package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound signals that the referenced record does not exist. For
	// transactions it is reported before ownership is checked, so callers
	// can distinguish 404 from 403.
	ErrNotFound = errors.New("not found")

	// ErrForbidden signals that the caller is not the owner.
	ErrForbidden = errors.New("not authorized for this transaction")

	// ErrUnauthenticated signals a missing or invalid caller identity.
	ErrUnauthenticated = errors.New("authentication required")
)

// ValidationError carries per-field messages for malformed input. It is
// an expected, recoverable-by-caller condition and is surfaced with
// enough detail to correct the input.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records a problem for a field. The first message per field wins.
func (e *ValidationError) Add(field, message string) {
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

// ErrOrNil returns the error if any field problem was recorded, nil
// otherwise. It lets validators collect problems unconditionally.
func (e *ValidationError) ErrOrNil() error {
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

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
