package editor

import "errors"

var (
	// ErrUnknownResource indicates a key no fetcher mapping exists for
	ErrUnknownResource = errors.New("unknown resource")

	// ErrNoSession indicates a session id that is not positive
	ErrNoSession = errors.New("session id is required")
)
