package storage

import "errors"

// Common client storage errors
var (
	// ErrNoActiveSession indicates that no workout session was selected yet
	ErrNoActiveSession = errors.New("no active session")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")

	// ErrDatabaseLocked indicates that another client holds the database file
	ErrDatabaseLocked = errors.New("database is locked by another client")
)
