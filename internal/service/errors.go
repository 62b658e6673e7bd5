package service

import (
	"errors"
	"fmt"

	"keepnotes/internal/storage"
)

var (
	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when a referenced note or label does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a label name collides with another label,
	// or when a write keeps losing to concurrent writers.
	ErrConflict = errors.New("conflict")
	// ErrStoreUnavailable is returned when the underlying store fails.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrCascadeFailed marks a label cascade that could not be applied to notes.
	// It is always wrapped together with ErrStoreUnavailable.
	ErrCascadeFailed = errors.New("label cascade failed")
)

// ValidationError represents a validation error with a field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// Unwrap makes every ValidationError match ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// storeError translates a storage error into one of the service error kinds
// while keeping the original error in the chain.
func storeError(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("%s: %w: %w", msg, ErrNotFound, err)
	case errors.Is(err, storage.ErrConflict), errors.Is(err, storage.ErrVersionConflict):
		return fmt.Errorf("%s: %w: %w", msg, ErrConflict, err)
	default:
		return fmt.Errorf("%s: %w: %w", msg, ErrStoreUnavailable, err)
	}
}
