package storage

import (
	"context"
	"fmt"
	"strconv"

	"github.com/iudanet/liftlog/internal/models"
)

// SetStorage defines interface for workout sets persistence
type SetStorage interface {
	// CreateSet stores a new set and fills in its ID and CreatedAt
	CreateSet(ctx context.Context, set *models.Set) error

	// GetSet retrieves a set of the session
	// Returns ErrSetNotFound if the set doesn't exist in that session
	GetSet(ctx context.Context, sessionID, id int64) (*models.Set, error)

	// UpdateSet merges a partial update and returns the stored result
	// Returns ErrSetNotFound if the set doesn't exist in that session
	UpdateSet(ctx context.Context, sessionID, id int64, u models.SetUpdate) (*models.Set, error)

	// DeleteSet removes a set of the session
	// Returns ErrSetNotFound if the set doesn't exist in that session
	DeleteSet(ctx context.Context, sessionID, id int64) error

	// ListSets returns sets matching filter, newest first
	// Returns empty slice if no sets found
	ListSets(ctx context.Context, filter models.SetFilter) ([]models.Set, error)
}

// ParseSetID converts the wire form of a set id into a row id
func ParseSetID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSetID, s)
	}
	return id, nil
}
