package apperror

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("question", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("title", "title is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("email", "this email is already registered"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "Unauthorized wraps ErrUnauthorized",
			err:       Unauthorized("invalid credentials"),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "Forbidden wraps ErrForbidden",
			err:       Forbidden("not yours"),
			target:    ErrForbidden,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("answer", "abc123"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "Unauthorized does NOT match ErrForbidden",
			err:       Unauthorized("invalid credentials"),
			target:    ErrForbidden,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("question", "abc123"),
			wantMessage: "question not found with id abc123",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("title", "title is required"),
			wantMessage: "title is required",
		},
		{
			name:        "Conflict uses custom message",
			err:         Conflict("email", "this email is already registered"),
			wantMessage: "this email is already registered",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	err := NotFound("question", "abc123")
	if err.Unwrap() != ErrNotFound {
		t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), ErrNotFound)
	}
}

func TestValidationErrors_Empty(t *testing.T) {
	var v ValidationErrors
	if err := v.Err(); err != nil {
		t.Errorf("Err() on empty ValidationErrors = %v, want nil", err)
	}
}

func TestValidationErrors_Single(t *testing.T) {
	var v ValidationErrors
	v.Add("title", "title is required")

	err := v.Err()
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("Err() should wrap ErrValidation, got %v", err)
	}

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatal("Err() should be an *AppError")
	}
	if appErr.Field != "title" {
		t.Errorf("Field = %q, want %q", appErr.Field, "title")
	}
}

func TestValidationErrors_JoinsAllMessages(t *testing.T) {
	var v ValidationErrors
	v.Add("username", "username must be between 3 and 30 characters")
	v.Add("email", "email is invalid")
	v.Add("secret", "secret must be at least 6 characters")

	err := v.Err()
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("Err() should wrap ErrValidation, got %v", err)
	}

	msg := err.Error()
	for _, want := range []string{"username must be", "email is invalid", "secret must be"} {
		if !strings.Contains(msg, want) {
			t.Errorf("aggregate message %q missing %q", msg, want)
		}
	}
	if strings.Count(msg, " | ") != 2 {
		t.Errorf("aggregate message %q should join three violations with two separators", msg)
	}
}
