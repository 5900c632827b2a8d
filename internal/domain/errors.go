package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrValidation matches every *ValidationError via errors.Is.
	ErrValidation    = errors.New("validation failed")
	ErrDuplicateSlug = errors.New("duplicate slug")
	ErrInvalidDate   = errors.New("date must be a valid YYYY-MM-DD calendar date")
	ErrInvalidTime   = errors.New("time must be in HH:MM format")

	ErrEventReference = errors.New("referenced event does not exist")
	ErrUpload         = errors.New("image upload failed")
	ErrConnection     = errors.New("database connection failed")
)

// ValidationError reports malformed or missing input for a single field.
// Err optionally carries a more specific sentinel (ErrDuplicateSlug, ErrInvalidDate, ErrInvalidTime).
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

// NewValidationError returns a ValidationError for field with the given reason.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	reason := e.Reason
	if reason == "" && e.Err != nil {
		reason = e.Err.Error()
	}
	if e.Field == "" {
		return reason
	}
	return fmt.Sprintf("%s: %s", e.Field, reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
