// Package errors defines the error values shared by the company store, service
// and transports.
package errors

import (
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound      = fmt.Errorf("not found")
	ErrDuplicateName = fmt.Errorf("duplicate name")
	ErrInvalidInput  = fmt.Errorf("invalid input")
)

// FieldErrors maps a request field name to its violation messages, in the
// order the rules were checked.
type FieldErrors map[string][]string

// Add appends a message for field.
func (f FieldErrors) Add(field, msg string) {
	f[field] = append(f[field], msg)
}

// Has reports whether field already carries a violation.
func (f FieldErrors) Has(field string) bool {
	return len(f[field]) > 0
}

// Merge copies every message of other into f.
func (f FieldErrors) Merge(other FieldErrors) {
	for field, msgs := range other {
		f[field] = append(f[field], msgs...)
	}
}

// Fields returns the field names in sorted order.
func (f FieldErrors) Fields() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidationError is returned when one or more request fields are rejected.
// It matches ErrInvalidInput, and ErrDuplicateName when the name clashed with
// another company.
type ValidationError struct {
	Fields    FieldErrors
	duplicate bool
}

// NewValidationError wraps fields. duplicate marks a name uniqueness clash.
func NewValidationError(fields FieldErrors, duplicate bool) *ValidationError {
	return &ValidationError{Fields: fields, duplicate: duplicate}
}

func (v *ValidationError) Error() string {
	parts := make([]string, 0, len(v.Fields))
	for _, field := range v.Fields.Fields() {
		parts = append(parts, field+": "+strings.Join(v.Fields[field], " "))
	}
	return fmt.Sprintf("%s: %s", ErrInvalidInput, strings.Join(parts, "; "))
}

func (v *ValidationError) Unwrap() []error {
	if v.duplicate {
		return []error{ErrInvalidInput, ErrDuplicateName}
	}
	return []error{ErrInvalidInput}
}
