// Package errs defines the error kinds shared by the engine.
// Domain and store errors wrap one of these kinds so callers can classify
// failures with errors.Is without matching on message text.
package errs

import "errors"

// Error kinds.
var (
	// ErrValidation marks input rejected before any mutation.
	ErrValidation = errors.New("validation failed")
	// ErrConflict marks a write that would duplicate or overwrite existing state.
	ErrConflict = errors.New("conflict")
	// ErrNotFound marks a referenced record that does not exist.
	ErrNotFound = errors.New("not found")
)

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsConflict reports whether err is a conflict.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

// IsNotFound reports whether err is a missing-record error.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
