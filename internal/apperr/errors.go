// Package apperr holds the error kinds the engine reports to callers.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks missing or malformed input, rejected before any mutation.
	ErrValidation = errors.New("validation failed")
	// ErrConflict marks a request that is well formed but not allowed in the current state.
	ErrConflict = errors.New("state conflict")
	// ErrNotFound marks an unknown order, item, table or date reference.
	ErrNotFound = errors.New("not found")
)

// Validation wraps ErrValidation with a formatted message.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Conflict wraps ErrConflict with a formatted message.
func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// NotFound wraps ErrNotFound with a formatted message.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// IsUserFacing reports whether err belongs to one of the kinds callers are told about.
func IsUserFacing(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrConflict) || errors.Is(err, ErrNotFound)
}
