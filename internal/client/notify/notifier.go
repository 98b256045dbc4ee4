// Package notify delivers cache changes to observers.
//
// All deliveries, both subscriber notifications and mutation callbacks, run
// on one goroutine in the order they were published. Observers therefore
// never run concurrently with each other, see every transition once, and
// may call back into the engine without deadlocking it.
package notify

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/iudanet/liftlog/internal/client/cache"
)

// Listener receives the collection under key after a state transition.
type Listener func(key cache.Key, c cache.Collection)

// Notifier fans out cache changes to subscribers.
type Notifier struct {
	logger *slog.Logger
	queue  *queue
	subs   map[cache.Key]map[uint64]Listener
	done   chan struct{}
	nextID uint64
	mu     sync.Mutex
}

// New starts a notifier. Close must be called to stop its delivery loop.
func New(logger *slog.Logger) *Notifier {
	n := &Notifier{
		logger: logger,
		queue:  newQueue(),
		subs:   make(map[cache.Key]map[uint64]Listener),
		done:   make(chan struct{}),
	}
	go n.run()
	return n
}

// Subscribe registers l for key and returns the function that removes it.
// Calling the returned function more than once is harmless.
func (n *Notifier) Subscribe(key cache.Key, l Listener) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	id := n.nextID
	if n.subs[key] == nil {
		n.subs[key] = make(map[uint64]Listener)
	}
	n.subs[key][id] = l

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()

		delete(n.subs[key], id)
		if len(n.subs[key]) == 0 {
			delete(n.subs, key)
		}
	}
}

// Publish queues one notification for every listener subscribed to key at
// the time of the call.
func (n *Notifier) Publish(key cache.Key, c cache.Collection) {
	n.mu.Lock()
	listeners := make([]Listener, 0, len(n.subs[key]))
	for _, l := range n.subs[key] {
		listeners = append(listeners, l)
	}
	n.mu.Unlock()

	if len(listeners) == 0 {
		return
	}
	n.Post(func() {
		for _, l := range listeners {
			n.deliver(func() { l(key, c) })
		}
	})
}

// Post runs fn on the delivery goroutine after everything queued before it.
// Returns false if the notifier is closed.
func (n *Notifier) Post(fn func()) bool {
	return n.queue.push(fn)
}

// Flush blocks until every delivery queued before the call has run.
func (n *Notifier) Flush(ctx context.Context) error {
	marker := make(chan struct{})
	if !n.Post(func() { close(marker) }) {
		return nil
	}
	select {
	case <-marker:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting deliveries, runs the ones already queued and waits
// for the loop to exit.
func (n *Notifier) Close() {
	n.queue.close()
	<-n.done
}

func (n *Notifier) run() {
	defer close(n.done)

	for {
		if fn, ok := n.queue.pop(); ok {
			n.deliver(fn)
			continue
		}
		if n.queue.drained() {
			return
		}
		<-n.queue.wait()
	}
}

// deliver runs fn and contains observer panics so one broken listener does
// not stop deliveries to the others.
func (n *Notifier) deliver(fn func()) {
	defer func() {
		if err := recover(); err != nil {
			n.logger.Error("Listener panic recovered",
				"error", err,
				"stack", string(debug.Stack()),
			)
		}
	}()
	fn()
}
