package notify

import "sync"

// queue is an unbounded FIFO of deliveries.
//
// Producers enqueue under the engine lock, so the queue must never block;
// a buffered signal channel of size 1 wakes the delivery loop and coalesces
// bursts.
type queue struct {
	items  []func()
	signal chan struct{}
	mu     sync.Mutex
	closed bool
}

func newQueue() *queue {
	return &queue{
		items:  make([]func(), 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// push appends fn. Returns false once the queue is closed.
func (q *queue) push(fn func()) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.items = append(q.items, fn)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// pop removes the front item without blocking.
func (q *queue) pop() (func(), bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, false
	}
	fn := q.items[0]
	// освобождаем слот, чтобы GC мог собрать замыкание
	q.items[0] = nil
	if len(q.items) == 1 {
		q.items = q.items[:0]
	} else {
		q.items = q.items[1:]
	}
	return fn, true
}

// drained reports whether the queue is closed and empty.
func (q *queue) drained() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed && len(q.items) == 0
}

func (q *queue) wait() <-chan struct{} {
	return q.signal
}

func (q *queue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
