package storage

import "errors"

// Common storage errors
var (
	// ErrSetNotFound indicates that set was not found in the given session
	ErrSetNotFound = errors.New("set not found")

	// ErrInvalidSetID indicates a set id that is not a positive integer
	ErrInvalidSetID = errors.New("invalid set id")
)
