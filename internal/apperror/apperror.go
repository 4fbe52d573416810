// Package apperror defines the application's error taxonomy.
//
// Services return these typed errors; the HTTP layer maps them to status
// codes in exactly one place (handler/response.go). Nothing below the
// handler layer knows about HTTP.
package apperror

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// AppError carries a sentinel plus a human-readable message and the field
// that caused it (for validation errors).
type AppError struct {
	Err     error  // sentinel — checked with errors.Is
	Message string // human-readable error message
	Field   string // optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports that the referenced entity does not exist.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// ValidationFailed reports a single field-level violation.
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict reports a duplicate unique field (e.g. username/email taken).
func Conflict(field, message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
		Field:   field,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized covers every identity failure: missing/malformed/expired
// token and bad credentials. HTTP handlers map it to 401.
//
// NOTE: login deliberately uses one message for "no such email" and "wrong
// password", so responses never reveal whether an email is registered.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// ValidationErrors aggregates several field-level violations into one
// error, the way the original board joins all schema messages into a
// single response. Collect with Add, then return Err() — which is nil
// when nothing was added.
type ValidationErrors struct {
	Violations []*AppError
}

// Add records one field violation.
func (v *ValidationErrors) Add(field, message string) {
	v.Violations = append(v.Violations, ValidationFailed(field, message))
}

// Err returns the aggregate as an error, or nil if no violations were added.
func (v *ValidationErrors) Err() error {
	switch len(v.Violations) {
	case 0:
		return nil
	case 1:
		return v.Violations[0]
	}
	msgs := make([]string, len(v.Violations))
	for i, violation := range v.Violations {
		msgs[i] = violation.Message
	}
	return &AppError{
		Err:     ErrValidation,
		Message: strings.Join(msgs, " | "),
	}
}
