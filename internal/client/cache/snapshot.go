package cache

import (
	"sync/atomic"

	"github.com/iudanet/liftlog/internal/models"
)

// Snapshot is an immutable copy of the collection under one key, taken
// before a mutation so the mutation can be undone exactly.
type Snapshot struct {
	collection Collection
	key        Key
	present    bool
}

// Capture copies the current collection under key.
func (s *Store) Capture(key Key) Snapshot {
	c, ok := s.Read(key)
	return Snapshot{
		key:        key,
		collection: NewCollection(c.sets...),
		present:    ok,
	}
}

// NewSnapshot wraps c as a snapshot of key. present=false describes a key
// that held no collection.
func NewSnapshot(key Key, c Collection, present bool) Snapshot {
	return Snapshot{
		key:        key,
		collection: NewCollection(c.sets...),
		present:    present,
	}
}

// Restore puts the snapshot back verbatim. A snapshot of an absent key
// drops the key.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !snap.present {
		delete(s.collections, snap.key)
		return
	}
	s.collections[snap.key] = snap.collection
}

// Key returns the key the snapshot was taken from.
func (s Snapshot) Key() Key {
	return s.key
}

// Present reports whether the key held a collection at capture time.
func (s Snapshot) Present() bool {
	return s.present
}

// Collection returns the captured collection.
func (s Snapshot) Collection() Collection {
	return s.collection
}

// Placeholders mints placeholder ids from a monotonic counter.
type Placeholders struct {
	seq atomic.Uint64
}

// Next returns a fresh placeholder id: temp-1, temp-2, ...
func (p *Placeholders) Next() models.SetID {
	return models.LocalID(p.seq.Add(1))
}
