// Package apperrors defines the error kinds shared across hourbook.
package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrAuthRejected     = errors.New("authentication rejected")
	ErrAccountDisabled  = errors.New("account disabled")
	ErrWeakPassword     = errors.New("password too weak")
	ErrEmailInUse       = errors.New("email already in use")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrTimeout          = errors.New("operation timed out")
)

// ErrValidation is the sentinel matched by errors.Is for any ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError carries per-field messages so callers can map failures
// back to individual form fields.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns an empty ValidationError ready to accumulate
// field messages.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Field records a message for the named field. The first message per field
// wins; later calls for the same field are ignored.
func (e *ValidationError) Field(name, message string) *ValidationError {
	if _, ok := e.Fields[name]; !ok {
		e.Fields[name] = message
	}
	return e
}

// Fieldf records a formatted message for the named field.
func (e *ValidationError) Fieldf(name, format string, args ...any) *ValidationError {
	return e.Field(name, fmt.Sprintf(format, args...))
}

// HasErrors reports whether any field message was recorded.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// ErrOrNil returns the error if any field failed, nil otherwise.
func (e *ValidationError) ErrOrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
