package service

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors forming the client-facing failure taxonomy. Handlers
// match against them with [errors.Is]; the HTTP layer translates them to
// status codes and JSON bodies.
var (
	// ErrInvalidCredentials is returned when a request requires a
	// principal and none could be resolved, or when a login attempt fails.
	// Translated to 401.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrForbidden is reserved for access-denied failures. No current
	// handler returns it, but it is part of the taxonomy. Translated to 403.
	ErrForbidden = errors.New("access denied")

	// ErrNotFound is returned when a record does not exist or is owned by
	// a different principal; the two cases are deliberately
	// indistinguishable. Translated to 404.
	ErrNotFound = errors.New("not found")
)

// FieldError is a single validation failure reported against one field.
type FieldError struct {
	// Field is the JSON field name, empty for body-level failures.
	Field string

	// Message describes the violation.
	Message string
}

// ValidationError aggregates the field-level failures of one request.
// It is returned as a value (never panicked) and translated to a 400
// response with a per-field message map.
type ValidationError struct {
	Fields []FieldError
}

// Error implements the error interface with a compact field summary.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation error"
	}

	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}

	return fmt.Sprintf("validation error: %s", strings.Join(names, ", "))
}

// NewValidationError builds a single-field [ValidationError].
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}
