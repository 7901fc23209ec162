// Package apperr maps domain failures onto HTTP responses.
package apperr

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
)

// NonFieldErrors keys messages that are not tied to one input field.
const NonFieldErrors = "non_field_errors"

// Error pairs a kind sentinel with the message shown to the client.
type Error struct {
	Kind   error
	Detail string
}

func (e *Error) Error() string { return e.Kind.Error() + ": " + e.Detail }

func (e *Error) Unwrap() error { return e.Kind }

func Unauthenticated(detail string) error {
	return &Error{Kind: ErrUnauthenticated, Detail: detail}
}

func Forbidden(detail string) error {
	return &Error{Kind: ErrForbidden, Detail: detail}
}

func NotFound(detail string) error {
	return &Error{Kind: ErrNotFound, Detail: detail}
}

// ValidationError collects field keyed messages and renders as a 400.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidation() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

// Invalid is shorthand for a single field failure.
func Invalid(field, msg string) *ValidationError {
	v := NewValidation()
	v.Add(field, msg)
	return v
}

func (v *ValidationError) Add(field, msg string) {
	v.Fields[field] = append(v.Fields[field], msg)
}

// Nest stores another validation error's fields under a prefix such as "details".
func (v *ValidationError) Nest(prefix string, other *ValidationError) {
	for field, msgs := range other.Fields {
		key := prefix + "." + field
		v.Fields[key] = append(v.Fields[key], msgs...)
	}
}

func (v *ValidationError) Has(field string) bool {
	return len(v.Fields[field]) > 0
}

// Err returns nil when nothing was collected.
func (v *ValidationError) Err() error {
	if len(v.Fields) == 0 {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(v.Fields[k], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}
