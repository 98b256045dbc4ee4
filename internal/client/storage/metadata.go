package storage

import "context"

//go:generate moq -out metadata_mock.go . MetadataStorage

// MetadataStorage defines interface for storing client metadata
type MetadataStorage interface {
	// SaveActiveSession remembers the workout session the editor opens by default
	SaveActiveSession(ctx context.Context, sessionID int64) error

	// ActiveSession returns the remembered workout session
	// Returns ErrNoActiveSession if none was saved
	ActiveSession(ctx context.Context) (int64, error)

	// NodeID returns the identifier of this client installation,
	// generating and persisting it on first use
	NodeID(ctx context.Context) (string, error)
}
