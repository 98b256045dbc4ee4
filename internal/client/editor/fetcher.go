package editor

import (
	"context"
	"fmt"

	"github.com/iudanet/liftlog/internal/client/cache"
	"github.com/iudanet/liftlog/internal/client/remote"
	"github.com/iudanet/liftlog/internal/models"
)

// SetsFetcher loads query keys through the remote list call.
type SetsFetcher struct {
	client remote.Client
}

// NewSetsFetcher creates a fetcher over client.
func NewSetsFetcher(client remote.Client) *SetsFetcher {
	return &SetsFetcher{client: client}
}

// Fetch implements invalidation.Fetcher.
func (f *SetsFetcher) Fetch(ctx context.Context, key cache.Key) (cache.Collection, error) {
	filter, err := filterFor(key)
	if err != nil {
		return cache.Collection{}, err
	}

	sets, err := f.client.ListSets(ctx, filter)
	if err != nil {
		return cache.Collection{}, fmt.Errorf("failed to list sets for %s: %w", key, err)
	}
	return cache.NewCollection(sets...), nil
}

// filterFor maps a query key to the list filter that backs it. The summary
// of a session is computed from the session's sets.
func filterFor(key cache.Key) (models.SetFilter, error) {
	switch key.Resource {
	case cache.ResourceSessionSets, cache.ResourceSessionSummary:
		return models.SetFilter{SessionID: key.Scope}, nil
	case cache.ResourceExerciseSets:
		return models.SetFilter{ExerciseID: key.Scope}, nil
	default:
		return models.SetFilter{}, fmt.Errorf("%w: %s", ErrUnknownResource, key.Resource)
	}
}
