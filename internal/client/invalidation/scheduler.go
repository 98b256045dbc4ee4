// Package invalidation marks query keys stale after mutations settle and
// refetches them in the background.
//
// A settle refetch picks up server-side side effects and edits made
// elsewhere. Results replace the cached collection wholesale, but only if no
// mutation touched the key since the read was issued.
package invalidation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/iudanet/liftlog/internal/client/cache"
)

//go:generate moq -out fetcher_mock.go . Fetcher

// Fetcher loads the authoritative collection for a key.
type Fetcher interface {
	Fetch(ctx context.Context, key cache.Key) (cache.Collection, error)
}

// Sink receives fetched collections. It owns the decision whether a result
// is still current, so the check and the write happen atomically.
type Sink interface {
	// Generation returns the current read generation of key.
	Generation(key cache.Key) uint64

	// Commit writes c if gen is still current and nothing is pending on key.
	// Returns false if the result was discarded as stale.
	Commit(key cache.Key, gen uint64, c cache.Collection) (bool, error)

	// View returns what the cache currently shows under key.
	View(key cache.Key) cache.Collection

	// Advance bumps the read generation of key so that every read issued
	// before the call is discarded on Commit.
	Advance(key cache.Key) uint64
}

// ErrClosed is returned by Fetch after Close.
var ErrClosed = errors.New("scheduler is closed")

// Stats counts scheduler activity.
type Stats struct {
	Settles   int // ScheduleSettle requests, per key
	Refetches int // background fetches that completed
	Committed int // results written to the store
	Discarded int // results dropped as stale
	Failed    int // fetches that returned an error
}

// Scheduler tracks stale keys and in-flight reads.
type Scheduler struct {
	fetcher Fetcher
	sink    Sink
	logger  *slog.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	deps    map[cache.Key][]cache.Key
	stale   map[cache.Key]bool
	reads   map[cache.Key]map[uint64]context.CancelFunc
	settles map[cache.Key]int
	group   singleflight.Group
	wg      sync.WaitGroup
	stats   Stats
	readSeq uint64
	mu      sync.Mutex
	closed  bool
}

// New creates a scheduler. Close stops background refetches.
func New(fetcher Fetcher, sink Sink, logger *slog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		fetcher: fetcher,
		sink:    sink,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		deps:    make(map[cache.Key][]cache.Key),
		stale:   make(map[cache.Key]bool),
		reads:   make(map[cache.Key]map[uint64]context.CancelFunc),
		settles: make(map[cache.Key]int),
	}
}

// Depend declares that dependents must be refreshed whenever key settles.
func (s *Scheduler) Depend(key cache.Key, dependents ...cache.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range dependents {
		if d == key || containsKey(s.deps[key], d) {
			continue
		}
		s.deps[key] = append(s.deps[key], d)
	}
}

// Dependents returns key followed by its declared dependents, transitively
// and without duplicates.
func (s *Scheduler) Dependents(key cache.Key) []cache.Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expand([]cache.Key{key})
}

// ScheduleSettle marks keys and their dependents stale and refetches them in
// the background. It never blocks on the network.
func (s *Scheduler) ScheduleSettle(keys ...cache.Key) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	all := s.expand(keys)
	for _, k := range all {
		s.stale[k] = true
		s.settles[k]++
		s.stats.Settles++
	}
	s.mu.Unlock()

	// чтения, начатые до завершения мутации, проигрывают перечитыванию
	for _, k := range all {
		s.CancelReads(k)
		s.sink.Advance(k)
	}
	for _, k := range all {
		s.logger.Debug("Scheduling settle refetch", "key", k)
		s.refetch(k)
	}
}

// Fetch performs a foreground read of key, used for the initial load. The
// read is cancelled by a mutation on the same key; in that case, or if the
// result turns out stale, the current cached view is returned instead.
func (s *Scheduler) Fetch(ctx context.Context, key cache.Key) (cache.Collection, error) {
	gen := s.sink.Generation(key)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	id, ok := s.trackRead(key, cancel)
	if !ok {
		return cache.Collection{}, ErrClosed
	}
	defer s.untrackRead(key, id)

	c, err := s.fetcher.Fetch(ctx, key)
	if err != nil {
		if s.sink.Generation(key) != gen {
			// мутация отменила чтение, это не ошибка
			return s.sink.View(key), nil
		}
		return cache.Collection{}, fmt.Errorf("failed to fetch %s: %w", key, err)
	}

	written, err := s.sink.Commit(key, gen, c)
	if err != nil {
		return cache.Collection{}, fmt.Errorf("failed to store %s: %w", key, err)
	}
	if !written {
		s.logger.Debug("Discarded stale read", "key", key, "generation", gen)
		s.count(func(st *Stats) { st.Discarded++ })
		return s.sink.View(key), nil
	}
	s.markFresh(key)
	return c, nil
}

// CancelReads signals every in-flight read of key to stop. It is best
// effort: a response that still arrives is dropped by the generation check.
func (s *Scheduler) CancelReads(key cache.Key) {
	s.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(s.reads[key]))
	for _, c := range s.reads[key] {
		cancels = append(cancels, c)
	}
	s.mu.Unlock()

	for _, c := range cancels {
		c()
	}
}

// IsStale reports whether key awaits a successful refetch.
func (s *Scheduler) IsStale(key cache.Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stale[key]
}

// Settles returns how many settle requests covered key.
func (s *Scheduler) Settles(key cache.Key) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settles[key]
}

// Stats returns a copy of the counters.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Wait blocks until all background refetches started so far have finished.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// Close cancels background refetches and waits for them.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) refetch(key cache.Key) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.refetchOnce(key, true)
	}()
}

func (s *Scheduler) refetchOnce(key cache.Key, retryInvalid bool) {
	gen := s.sink.Generation(key)

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	id, ok := s.trackRead(key, cancel)
	if !ok {
		return
	}
	defer s.untrackRead(key, id)

	// запросы разных поколений не объединяются: отмененный запрос
	// старого поколения не отдаст ответ новому
	flight := flightKey(key, gen)
	v, err, shared := s.group.Do(flight, func() (any, error) {
		return s.fetcher.Fetch(ctx, key)
	})
	s.count(func(st *Stats) { st.Refetches++ })
	if err != nil {
		s.count(func(st *Stats) { st.Failed++ })
		s.logger.Warn("Settle refetch failed", "key", key, "error", err)
		return
	}

	written, err := s.sink.Commit(key, gen, v.(cache.Collection))
	if errors.Is(err, cache.ErrInvalidCollection) && retryInvalid {
		s.logger.Error("Refetch returned invalid collection, forcing fresh list",
			"key", key,
			"error", err)
		s.group.Forget(flight)
		s.refetchOnce(key, false)
		return
	}
	if err != nil {
		s.count(func(st *Stats) { st.Failed++ })
		s.logger.Error("Failed to commit refetch", "key", key, "error", err)
		return
	}
	if !written {
		s.count(func(st *Stats) { st.Discarded++ })
		s.logger.Debug("Discarded stale refetch", "key", key, "generation", gen, "shared", shared)
		return
	}

	s.count(func(st *Stats) { st.Committed++ })
	s.markFresh(key)
}

func (s *Scheduler) trackRead(key cache.Key, cancel context.CancelFunc) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, false
	}
	s.readSeq++
	if s.reads[key] == nil {
		s.reads[key] = make(map[uint64]context.CancelFunc)
	}
	s.reads[key][s.readSeq] = cancel
	return s.readSeq, true
}

func (s *Scheduler) untrackRead(key cache.Key, id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.reads[key], id)
	if len(s.reads[key]) == 0 {
		delete(s.reads, key)
	}
}

func (s *Scheduler) markFresh(key cache.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.stale, key)
}

func (s *Scheduler) count(fn func(*Stats)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.stats)
}

// expand must be called with mu held.
func (s *Scheduler) expand(keys []cache.Key) []cache.Key {
	out := make([]cache.Key, 0, len(keys))
	queue := append([]cache.Key(nil), keys...)
	for len(queue) > 0 {
		k := queue[0]
		queue = queue[1:]
		if containsKey(out, k) {
			continue
		}
		out = append(out, k)
		queue = append(queue, s.deps[k]...)
	}
	return out
}

func flightKey(key cache.Key, gen uint64) string {
	return key.String() + "@" + strconv.FormatUint(gen, 10)
}

func containsKey(keys []cache.Key, k cache.Key) bool {
	for _, x := range keys {
		if x == k {
			return true
		}
	}
	return false
}
