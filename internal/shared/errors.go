package shared

import "errors"

var (
	// ErrNotFound indicates a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a unique-constraint violation.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrValidation indicates rejected input.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidID indicates a malformed or non-positive identifier.
	ErrInvalidID = errors.New("invalid id")
	// ErrConflict indicates a state transition the current status forbids.
	ErrConflict = errors.New("conflicting state")
)
