package mutation

import (
	"context"
	"sync/atomic"

	"github.com/iudanet/liftlog/internal/client/cache"
	"github.com/iudanet/liftlog/internal/models"
)

// State is the lifecycle state of a mutation.
type State int32

const (
	// StatePending: optimistic patch applied, remote call queued or running.
	StatePending State = iota
	// StateConfirmed: remote call succeeded and the result was reconciled.
	StateConfirmed
	// StateFailed: remote call failed and the cache was rolled back.
	StateFailed
	// StateSettled: terminal, settle refetch scheduled.
	StateSettled
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateConfirmed:
		return "confirmed"
	case StateFailed:
		return "failed"
	case StateSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// Callbacks are continuations of a mutation. They run on the notifier's
// delivery goroutine, after the cache reflects the outcome.
type Callbacks struct {
	OnSuccess func(result models.Set)
	OnError   func(err *Error)
	OnSettled func(result models.Set, err *Error)
}

// record binds a patch to its remote call.
type record struct {
	ctx      context.Context
	patch    Patch
	err      *Error
	done     chan struct{}
	callback Callbacks
	snapshot cache.Snapshot
	key      cache.Key
	result   models.Set
	target   models.SetID
	id       uint64
	state    atomic.Int32
	// outcome решен: confirmed либо failed
	confirmed bool
}

func (r *record) setState(s State) {
	r.state.Store(int32(s))
}

// Handle is the caller's view of a mutation in flight.
type Handle struct {
	rec *record
}

// ID returns the mutation sequence number.
func (h *Handle) ID() uint64 {
	return h.rec.id
}

// Key returns the query key the mutation targets.
func (h *Handle) Key() cache.Key {
	return h.rec.key
}

// Target returns the id the patch was issued for. For inserts this is the
// placeholder shown until confirmation.
func (h *Handle) Target() models.SetID {
	return targetOf(h.rec.patch)
}

// State returns the current lifecycle state.
func (h *Handle) State() State {
	return State(h.rec.state.Load())
}

// Snapshot returns the collection captured before the patch was applied.
func (h *Handle) Snapshot() cache.Snapshot {
	return h.rec.snapshot
}

// Done is closed once the mutation settled and its callbacks ran.
func (h *Handle) Done() <-chan struct{} {
	return h.rec.done
}

// Wait blocks until the mutation settles. It returns the authoritative set
// for confirmed inserts and updates.
func (h *Handle) Wait(ctx context.Context) (models.Set, error) {
	select {
	case <-h.rec.done:
	case <-ctx.Done():
		return models.Set{}, ctx.Err()
	}
	if h.rec.err != nil {
		return models.Set{}, h.rec.err
	}
	return h.rec.result, nil
}
