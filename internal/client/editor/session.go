// Package editor is the entry point of the workout editor: one Session per
// edited training session, owning its store, notifier, mutation executor and
// invalidation scheduler.
package editor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/liftlog/internal/client/cache"
	"github.com/iudanet/liftlog/internal/client/invalidation"
	"github.com/iudanet/liftlog/internal/client/mutation"
	"github.com/iudanet/liftlog/internal/client/notify"
	"github.com/iudanet/liftlog/internal/client/remote"
	"github.com/iudanet/liftlog/internal/models"
)

// Session edits the sets of one training session.
type Session struct {
	store     *cache.Store
	notifier  *notify.Notifier
	executor  *mutation.Executor
	scheduler *invalidation.Scheduler
	logger    *slog.Logger
	now       func() time.Time
	sessionID int64
}

// NewSession wires the engine for sessionID. Close releases it.
func NewSession(sessionID int64, client remote.Client, logger *slog.Logger) (*Session, error) {
	if sessionID <= 0 {
		return nil, ErrNoSession
	}

	s := &Session{
		store:     cache.NewStore(),
		notifier:  notify.New(logger),
		logger:    logger,
		now:       time.Now,
		sessionID: sessionID,
	}

	config := mutation.DefaultConfig()
	config.Related = s.related
	s.executor = mutation.New(s.store, client, s.notifier, logger, config)
	s.scheduler = invalidation.New(NewSetsFetcher(client), s.executor, logger)
	s.executor.Attach(s.scheduler)

	// сводка пересчитывается при каждом изменении подходов тренировки
	s.scheduler.Depend(s.SetsKey(), s.SummaryKey())

	return s, nil
}

// SessionID returns the edited session.
func (s *Session) SessionID() int64 {
	return s.sessionID
}

// SetsKey is the key of the edited session's sets.
func (s *Session) SetsKey() cache.Key {
	return cache.SessionSets(s.sessionID)
}

// SummaryKey is the key of the edited session's summary view.
func (s *Session) SummaryKey() cache.Key {
	return cache.SessionSummary(s.sessionID)
}

// Load reads the session's sets and summary from the server.
func (s *Session) Load(ctx context.Context) error {
	for _, key := range []cache.Key{s.SetsKey(), s.SummaryKey()} {
		if _, err := s.scheduler.Fetch(ctx, key); err != nil {
			return fmt.Errorf("failed to load session %d: %w", s.sessionID, err)
		}
	}
	s.logger.Debug("Session loaded", "session_id", s.sessionID)
	return nil
}

// LoadExercise reads the cross-session history of one exercise.
func (s *Session) LoadExercise(ctx context.Context, exerciseID int64) (cache.Collection, error) {
	c, err := s.scheduler.Fetch(ctx, cache.ExerciseSets(exerciseID))
	if err != nil {
		return cache.Collection{}, fmt.Errorf("failed to load exercise %d: %w", exerciseID, err)
	}
	return c, nil
}

// AddSet records a new set. It shows up at the top of the list at once,
// under a placeholder id, and is swapped for the server's copy on success.
func (s *Session) AddSet(ctx context.Context, in models.SetInput, cb mutation.Callbacks) *mutation.Handle {
	set := models.Set{
		ID:         s.executor.NewPlaceholder(),
		SessionID:  s.sessionID,
		ExerciseID: in.ExerciseID,
		Weight:     in.Weight,
		Reps:       in.Reps,
		Note:       in.Note,
		CreatedAt:  s.now().UTC(),
	}
	return s.executor.Mutate(ctx, s.SetsKey(), mutation.Insert{Set: set.Clone()}, cb)
}

// EditSet merges u into the set with id.
func (s *Session) EditSet(ctx context.Context, id models.SetID, u models.SetUpdate, cb mutation.Callbacks) *mutation.Handle {
	return s.executor.Mutate(ctx, s.SetsKey(), mutation.Update{ID: id, Changes: u}, cb)
}

// RemoveSet deletes the set with id.
func (s *Session) RemoveSet(ctx context.Context, id models.SetID, cb mutation.Callbacks) *mutation.Handle {
	return s.executor.Mutate(ctx, s.SetsKey(), mutation.Delete{ID: id}, cb)
}

// Mutate applies an arbitrary patch under key.
func (s *Session) Mutate(ctx context.Context, key cache.Key, p mutation.Patch, cb mutation.Callbacks) *mutation.Handle {
	return s.executor.Mutate(ctx, key, p, cb)
}

// Subscribe registers l for changes under key.
func (s *Session) Subscribe(key cache.Key, l notify.Listener) func() {
	return s.executor.Subscribe(key, l)
}

// GetSnapshot returns what the cache shows under key.
func (s *Session) GetSnapshot(key cache.Key) cache.Collection {
	return s.executor.GetSnapshot(key)
}

// Sets returns the session's sets in display order.
func (s *Session) Sets() []models.Set {
	return s.GetSnapshot(s.SetsKey()).Sets()
}

// Summary returns the session summary as last refreshed from the server.
func (s *Session) Summary() models.Summary {
	return models.Summarize(s.GetSnapshot(s.SummaryKey()).Sets())
}

// Pending returns the number of unsettled mutations of the session.
func (s *Session) Pending() int {
	return s.executor.Pending(s.SetsKey())
}

// Refresh schedules a background refetch of the session's keys.
func (s *Session) Refresh() {
	s.scheduler.ScheduleSettle(s.SetsKey())
}

// Stats exposes scheduler counters.
func (s *Session) Stats() invalidation.Stats {
	return s.scheduler.Stats()
}

// Sync waits for background refetches started so far and for every
// notification queued before the call.
func (s *Session) Sync(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.scheduler.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return s.notifier.Flush(ctx)
}

// Close settles outstanding mutations, stops refetches and delivers the
// remaining notifications.
func (s *Session) Close() {
	s.executor.Close()
	s.scheduler.Close()
	s.notifier.Close()
}

// related adds the per-exercise view of the changed set when that view is
// cached.
func (s *Session) related(_ cache.Key, _ mutation.Patch, set models.Set) []cache.Key {
	if set.ExerciseID == 0 {
		return nil
	}
	key := cache.ExerciseSets(set.ExerciseID)
	if _, ok := s.store.Read(key); !ok {
		return nil
	}
	return []cache.Key{key}
}
