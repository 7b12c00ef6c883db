package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{"NotFound wraps ErrNotFound", NotFound("property", "prop-1"), ErrNotFound, true},
		{"ValidationFailed wraps ErrValidation", ValidationFailed("title", "title is required"), ErrValidation, true},
		{"Conflict wraps ErrConflict", Conflict("user", "user-1"), ErrConflict, true},
		{"Forbidden wraps ErrForbidden", Forbidden("admin role required"), ErrForbidden, true},
		{"Unauthorized wraps ErrUnauthorized", Unauthorized("invalid credentials"), ErrUnauthorized, true},
		{"NotFound is not a validation error", NotFound("property", "prop-1"), ErrValidation, false},
		{"Unauthorized is not forbidden", Unauthorized("no session"), ErrForbidden, false},
		{"match survives fmt wrapping", fmt.Errorf("service: %w", NotFound("user", "user-1")), ErrNotFound, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.wantMatch {
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
		{"NotFound includes resource and id", NotFound("property", "prop-1"), "property not found with id prop-1"},
		{"Conflict includes resource and id", Conflict("user", "user-1"), "user conflict with id user-1"},
		{"ValidationFailed uses custom message", ValidationFailed("email", "email is required"), "email is required"},
		{"Unauthorized uses custom message", Unauthorized("invalid credentials"), "invalid credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestAsExtractsField(t *testing.T) {
	var err error = fmt.Errorf("parsing form: %w", ValidationFailed("price", "price must be a number"))

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("errors.As() = false, want true")
	}
	if appErr.Field != "price" {
		t.Errorf("Field = %q, want %q", appErr.Field, "price")
	}
}
