package cache

import "errors"

// ErrInvalidCollection indicates a collection that breaks store invariants
// (missing or duplicate ids).
var ErrInvalidCollection = errors.New("invalid collection")
