// Package mutation runs optimistic changes against the entity store.
//
// Every mutation goes through the same lifecycle:
//
//	Pending -> Confirmed | Failed -> Settled
//
// The patch is applied to the store synchronously inside Mutate, so the
// caller never waits for the network. Remote calls are serialized per query
// key (a lane); lanes of different keys run concurrently. When a call
// resolves, the lane's confirmed base is advanced (or left as is on
// failure) and the visible collection is rebuilt as base plus the patches
// still queued behind it. A single failed mutation therefore restores the
// pre-mutation snapshot exactly, and later optimistic input is never lost.
package mutation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/iudanet/liftlog/internal/client/cache"
	"github.com/iudanet/liftlog/internal/client/notify"
	"github.com/iudanet/liftlog/internal/client/remote"
	"github.com/iudanet/liftlog/internal/models"
)

// Settler receives keys whose mutations settled. Implemented by
// invalidation.Scheduler.
type Settler interface {
	ScheduleSettle(keys ...cache.Key)
	CancelReads(key cache.Key)
}

// Config tunes the executor.
type Config struct {
	// Related returns extra keys to refresh when a mutation on key settles,
	// e.g. the per-exercise view of the set that changed. Optional.
	Related func(key cache.Key, p Patch, result models.Set) []cache.Key
}

// DefaultConfig returns a config with no related keys.
func DefaultConfig() Config {
	return Config{}
}

// lane serializes remote calls for one key.
type lane struct {
	base    cache.Snapshot
	pending []*record
	// resolved holds placeholders confirmed or abandoned in this lane; their
	// aliases are forgotten when the lane drains
	resolved []models.SetID
	running  bool
}

// Executor applies optimistic patches and reconciles them with the server.
type Executor struct {
	ctx          context.Context
	client       remote.Client
	settler      Settler
	store        *cache.Store
	notifier     *notify.Notifier
	logger       *slog.Logger
	recon        *reconciler
	lanes        map[cache.Key]*lane
	cancel       context.CancelFunc
	config       Config
	placeholders cache.Placeholders
	wg           sync.WaitGroup
	seq          uint64
	mu           sync.Mutex
	closed       bool
}

// New creates an executor over store. Attach must be called with the
// invalidation scheduler before the first mutation settles; until then
// settles are dropped.
func New(store *cache.Store, client remote.Client, notifier *notify.Notifier, logger *slog.Logger, config Config) *Executor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Executor{
		ctx:      ctx,
		cancel:   cancel,
		client:   client,
		settler:  noopSettler{},
		store:    store,
		notifier: notifier,
		logger:   logger,
		recon:    newReconciler(),
		lanes:    make(map[cache.Key]*lane),
		config:   config,
	}
}

// Attach wires the settle handler.
func (e *Executor) Attach(s Settler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settler = s
}

// NewPlaceholder mints a placeholder id.
func (e *Executor) NewPlaceholder() models.SetID {
	return e.placeholders.Next()
}

// GetSnapshot returns what the cache currently shows under key.
func (e *Executor) GetSnapshot(key cache.Key) cache.Collection {
	c, _ := e.store.Read(key)
	return c
}

// Subscribe registers a listener for changes under key.
func (e *Executor) Subscribe(key cache.Key, l notify.Listener) func() {
	return e.notifier.Subscribe(key, l)
}

// Pending returns the number of unsettled mutations on key.
func (e *Executor) Pending(key cache.Key) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	if l, ok := e.lanes[key]; ok {
		return len(l.pending)
	}
	return 0
}

// Mutate applies p to the cache immediately and schedules its remote call.
// The returned handle reports the outcome; cb continuations are optional.
func (e *Executor) Mutate(ctx context.Context, key cache.Key, p Patch, cb Callbacks) *Handle {
	e.mu.Lock()
	rec, inline := e.mutateLocked(ctx, key, p, cb)
	e.mu.Unlock()

	// уведомитель закрыт: продолжения выполняются здесь, без блокировки
	if inline != nil {
		inline()
	}
	return &Handle{rec: rec}
}

func (e *Executor) mutateLocked(ctx context.Context, key cache.Key, p Patch, cb Callbacks) (*record, func()) {
	e.seq++
	rec := &record{
		ctx:      ctx,
		id:       e.seq,
		key:      key,
		patch:    p,
		callback: cb,
		done:     make(chan struct{}),
	}

	if e.closed {
		return rec, e.rejectLocked(rec, ErrClosed)
	}

	p, err := e.normalize(p)
	if err != nil {
		return rec, e.rejectLocked(rec, err)
	}
	// плейсхолдер уже подтвержден: адресуем постоянный идентификатор
	res, known := e.recon.resolve(p.Target())
	if known && !res.abandoned && res.id != p.Target() {
		p = retarget(p, res.id)
	}
	if _, insert := p.(Insert); !insert && !known && !e.insertPendingLocked(p.Target()) {
		return rec, e.rejectLocked(rec, ErrStalePlaceholder)
	}
	rec.patch = p
	rec.target = p.Target()

	// 1. Отменяем чтения этого ключа: их ответ старше оптимистичного значения
	e.settler.CancelReads(key)
	e.store.Advance(key)

	// 2. Точка отката
	rec.snapshot = e.store.Capture(key)
	l, ok := e.lanes[key]
	if !ok {
		l = &lane{}
		e.lanes[key] = l
	}
	if len(l.pending) == 0 {
		l.base = rec.snapshot
	}

	// 3. Оптимистичное применение
	applyToStore(e.store, key, p)
	l.pending = append(l.pending, rec)
	e.publishLocked(key)

	e.logger.Debug("Mutation applied",
		"mutation_id", rec.id,
		"key", key,
		"op", p.Op(),
		"target", rec.target,
		"queued", len(l.pending))

	// 4. Удаленный вызов в очереди ключа
	if !l.running {
		l.running = true
		e.wg.Add(1)
		go e.drain(key, l)
	}

	return rec, nil
}

// Close stops accepting mutations, cancels calls in flight and waits for
// every lane to settle.
func (e *Executor) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()

	e.cancel()
	e.wg.Wait()
}

// Generation implements invalidation.Sink.
func (e *Executor) Generation(key cache.Key) uint64 {
	return e.store.Generation(key)
}

// Advance implements invalidation.Sink. It takes the executor lock so a
// Commit that already passed the generation check finishes first.
func (e *Executor) Advance(key cache.Key) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Advance(key)
}

// View implements invalidation.Sink.
func (e *Executor) View(key cache.Key) cache.Collection {
	return e.GetSnapshot(key)
}

// Commit implements invalidation.Sink: the fetched collection replaces the
// cached one unless a mutation advanced the generation or is still pending.
func (e *Executor) Commit(key cache.Key, gen uint64, c cache.Collection) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.store.Generation(key) != gen {
		return false, nil
	}
	if l, ok := e.lanes[key]; ok && len(l.pending) > 0 {
		return false, nil
	}
	cur, had := e.store.Read(key)
	if err := e.store.Write(key, c); err != nil {
		e.store.Drop(key)
		e.publishLocked(key)
		return false, err
	}
	// совпадающий ответ не является переходом состояния
	if !had || !cur.Equal(c) {
		e.publishLocked(key)
	}
	return true, nil
}

// normalize gives inserts a placeholder id and rejects malformed patches.
func (e *Executor) normalize(p Patch) (Patch, error) {
	switch p := p.(type) {
	case Insert:
		if p.Set.ID.IsZero() {
			p.Set.ID = e.placeholders.Next()
		}
		if !p.Set.ID.IsPlaceholder() {
			return nil, fmt.Errorf("%w: insert must carry a placeholder id, got %s", ErrInvalidPatch, p.Set.ID)
		}
		return p, nil
	case Update:
		if p.ID.IsZero() {
			return nil, fmt.Errorf("%w: update without id", ErrInvalidPatch)
		}
		return p, nil
	case Delete:
		if p.ID.IsZero() {
			return nil, fmt.Errorf("%w: delete without id", ErrInvalidPatch)
		}
		return p, nil
	case nil:
		return nil, fmt.Errorf("%w: nil patch", ErrInvalidPatch)
	default:
		return nil, fmt.Errorf("%w: unknown patch %T", ErrInvalidPatch, p)
	}
}

// drain runs the lane's remote calls one at a time.
func (e *Executor) drain(key cache.Key, l *lane) {
	defer e.wg.Done()

	for {
		e.mu.Lock()
		if len(l.pending) == 0 {
			l.running = false
			if e.lanes[key] == l {
				delete(e.lanes, key)
			}
			e.pruneLocked(l)
			e.mu.Unlock()
			return
		}
		rec := l.pending[0]
		call := e.prepareLocked(l, rec)
		e.mu.Unlock()

		result, err := call()

		e.mu.Lock()
		e.resolveLocked(key, l, rec, result, err)
		e.mu.Unlock()

		e.settle(rec)
	}
}

// prepareLocked resolves the record's target and returns its remote call.
func (e *Executor) prepareLocked(l *lane, rec *record) func() (models.Set, error) {
	if _, insert := rec.patch.(Insert); !insert {
		res, known := e.recon.resolve(rec.target)
		switch {
		case !known:
			return failWith(ErrUnconfirmed)
		case res.abandoned:
			if _, ok := rec.patch.(Delete); ok {
				// вставка не состоялась: удалять на сервере нечего
				return func() (models.Set, error) { return models.Set{}, nil }
			}
			return failWith(ErrAbandoned)
		}
		rec.target = res.id
	}

	ctx, cancel := e.callContext(rec)
	switch p := rec.patch.(type) {
	case Insert:
		return func() (models.Set, error) {
			defer cancel()
			return e.client.CreateSet(ctx, p.Set.SessionID, p.Set.Input())
		}
	case Update:
		sessionID, ok := e.sessionOf(l, rec)
		if !ok {
			cancel()
			return failWith(remote.NotFoundError(fmt.Sprintf("set %s is not in cache", rec.target)))
		}
		target := rec.target
		return func() (models.Set, error) {
			defer cancel()
			return e.client.UpdateSet(ctx, sessionID, target, p.Changes)
		}
	case Delete:
		sessionID, ok := e.sessionOf(l, rec)
		if !ok {
			cancel()
			return func() (models.Set, error) { return models.Set{}, nil }
		}
		target := rec.target
		return func() (models.Set, error) {
			defer cancel()
			return models.Set{}, e.client.DeleteSet(ctx, sessionID, target)
		}
	default:
		cancel()
		return failWith(fmt.Errorf("%w: unknown patch %T", ErrInvalidPatch, p))
	}
}

// callContext joins the caller's context with the executor lifetime.
func (e *Executor) callContext(rec *record) (context.Context, context.CancelFunc) {
	parent := rec.ctx
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	stop := context.AfterFunc(e.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// sessionOf finds the session that owns the record's target in the lane's
// confirmed base, falling back to the session scope of the key.
func (e *Executor) sessionOf(l *lane, rec *record) (int64, bool) {
	if set, _, ok := l.base.Collection().Find(rec.target); ok {
		return set.SessionID, true
	}
	if rec.key.Resource == cache.ResourceSessionSets {
		return rec.key.Scope, true
	}
	return 0, false
}

// resolveLocked advances the lane after the head record's call returned and
// rewrites the visible collection.
func (e *Executor) resolveLocked(key cache.Key, l *lane, rec *record, result models.Set, err error) {
	l.pending = l.pending[1:]
	base := l.base.Collection()
	present := l.base.Present()

	if err == nil {
		switch p := rec.patch.(type) {
		case Insert:
			if result.ID.IsZero() {
				// сервер подтвердил без идентификатора: считаем это ошибкой сервера
				err = remote.ServerError(0, "create returned no id")
				break
			}
			base = e.recon.confirm(base.Prepend(p.Set), p.Set.ID, result, l.pending)
			l.resolved = append(l.resolved, p.Set.ID)
			present = true
		case Update:
			if next, ok := base.Replace(rec.target, result); ok {
				base = next
			} else {
				base, _ = base.Patch(rec.target, p.Changes)
			}
		case Delete:
			base, _ = base.Remove(rec.target)
		}
	}

	if err == nil {
		rec.result = result
		rec.confirmed = true
		rec.setState(StateConfirmed)
	} else {
		rec.err = newError(rec, err)
		switch p := rec.patch.(type) {
		case Insert:
			e.recon.abandon(p.Set.ID)
			l.resolved = append(l.resolved, p.Set.ID)
		case Update, Delete:
			if rec.err.Category() == Vanished {
				// на сервере записи уже нет: убираем, а не откатываем
				base, _ = base.Remove(rec.target)
			}
		}
		rec.setState(StateFailed)
	}

	l.base = cache.NewSnapshot(key, base, present)
	view := base
	for _, q := range l.pending {
		view = applyToCollection(view, q.patch, q.target)
	}

	if !present && len(l.pending) == 0 {
		e.store.Restore(l.base)
	} else if werr := e.store.Write(key, view); werr != nil {
		e.logger.Error("Rebuilt collection is invalid, dropping cache",
			"key", key,
			"error", werr)
		e.store.Drop(key)
	}
	e.publishLocked(key)

	if rec.err != nil {
		e.logger.Warn("Mutation failed",
			"mutation_id", rec.id,
			"key", key,
			"op", rec.patch.Op(),
			"target", rec.target,
			"category", rec.err.Category(),
			"error", err)
	} else {
		e.logger.Debug("Mutation confirmed",
			"mutation_id", rec.id,
			"key", key,
			"op", rec.patch.Op(),
			"target", rec.target)
	}
}

// pruneLocked forgets the aliases resolved in a drained lane. A placeholder
// still addressed by a record queued on another key moves to that lane.
func (e *Executor) pruneLocked(l *lane) {
	for _, id := range l.resolved {
		if other := e.laneTargetingLocked(id); other != nil {
			other.resolved = append(other.resolved, id)
			continue
		}
		e.recon.forget(id)
	}
	l.resolved = nil
}

func (e *Executor) laneTargetingLocked(id models.SetID) *lane {
	for _, l := range e.lanes {
		for _, rec := range l.pending {
			if rec.target == id {
				return l
			}
		}
	}
	return nil
}

// insertPendingLocked reports whether an insert of placeholder id is queued.
func (e *Executor) insertPendingLocked(id models.SetID) bool {
	for _, l := range e.lanes {
		for _, rec := range l.pending {
			if p, ok := rec.patch.(Insert); ok && p.Set.ID == id {
				return true
			}
		}
	}
	return false
}

// settle hands the keys to the scheduler, marks the record settled and
// queues its continuations.
func (e *Executor) settle(rec *record) {
	e.mu.Lock()
	settler := e.settler
	e.mu.Unlock()

	keys := []cache.Key{rec.key}
	if e.config.Related != nil {
		subject := rec.result
		if !rec.confirmed {
			subject = subjectOf(rec)
		}
		keys = append(keys, e.config.Related(rec.key, rec.patch, subject)...)
	}
	settler.ScheduleSettle(keys...)

	rec.setState(StateSettled)
	if run := e.finish(rec); run != nil {
		run()
	}
}

// rejectLocked fails a record that never reached the store. The returned
// function, if any, must be called after e.mu is released.
func (e *Executor) rejectLocked(rec *record, err error) func() {
	rec.target = targetOf(rec.patch)
	rec.err = newError(rec, err)
	rec.setState(StateSettled)
	return e.finish(rec)
}

// finish queues the continuations on the delivery goroutine, which then
// releases waiters. After the notifier is closed it returns them instead.
func (e *Executor) finish(rec *record) func() {
	run := func() {
		cb := rec.callback
		if rec.err != nil && cb.OnError != nil {
			cb.OnError(rec.err)
		}
		if rec.err == nil && cb.OnSuccess != nil {
			cb.OnSuccess(rec.result)
		}
		if cb.OnSettled != nil {
			cb.OnSettled(rec.result, rec.err)
		}
		close(rec.done)
	}
	if !e.notifier.Post(run) {
		return run
	}
	return nil
}

func (e *Executor) publishLocked(key cache.Key) {
	c, _ := e.store.Read(key)
	e.notifier.Publish(key, c)
}

// subjectOf returns the set a failed record was about, for related keys.
func subjectOf(rec *record) models.Set {
	switch p := rec.patch.(type) {
	case Insert:
		return p.Set
	default:
		if set, _, ok := rec.snapshot.Collection().Find(rec.patch.Target()); ok {
			return set
		}
		return models.Set{ID: rec.target}
	}
}

func targetOf(p Patch) models.SetID {
	if p == nil {
		return models.SetID{}
	}
	return p.Target()
}

func failWith(err error) func() (models.Set, error) {
	return func() (models.Set, error) { return models.Set{}, err }
}

type noopSettler struct{}

func (noopSettler) ScheduleSettle(...cache.Key) {}
func (noopSettler) CancelReads(cache.Key)       {}

// IsCategory reports whether err is a mutation error of category c.
func IsCategory(err error, c Category) bool {
	var me *Error
	return errors.As(err, &me) && me.Category() == c
}
