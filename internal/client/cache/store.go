// Package cache holds the in-memory entity store of the editor: one ordered
// collection of sets per query key, snapshots for rollback and the
// placeholder id source.
//
// The store does no I/O. Every operation is synchronous and atomic, and a
// failed operation leaves the previous collection untouched.
package cache

import (
	"sync"

	"github.com/iudanet/liftlog/internal/models"
)

// Store is a keyed collection of sets. It is created per editing session and
// injected into its consumers.
type Store struct {
	collections map[Key]Collection
	generations map[Key]uint64
	mu          sync.RWMutex
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		collections: make(map[Key]Collection),
		generations: make(map[Key]uint64),
	}
}

// Read returns the collection under key.
func (s *Store) Read(key Key) (Collection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[key]
	return c, ok
}

// Write replaces the collection under key. A structurally invalid collection
// is rejected with ErrInvalidCollection and the previous value is kept.
func (s *Store) Write(key Key, c Collection) error {
	if err := c.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.collections[key] = c
	return nil
}

// Patch merges u into the set with id. No-op if the key or id is absent.
func (s *Store) Patch(key Key, id models.SetID, u models.SetUpdate) bool {
	return s.update(key, func(c Collection) (Collection, bool) {
		return c.Patch(id, u)
	})
}

// Insert prepends set under key, creating the collection if needed.
func (s *Store) Insert(key Key, set models.Set) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.collections[key] = s.collections[key].Prepend(set)
}

// Remove drops the set with id. No-op if absent.
func (s *Store) Remove(key Key, id models.SetID) bool {
	return s.update(key, func(c Collection) (Collection, bool) {
		return c.Remove(id)
	})
}

// Reconcile replaces placeholder with the authoritative set, see
// Collection.Reconcile.
func (s *Store) Reconcile(key Key, placeholder models.SetID, authoritative models.Set) bool {
	return s.update(key, func(c Collection) (Collection, bool) {
		return c.Reconcile(placeholder, authoritative)
	})
}

// Drop forgets the collection under key.
func (s *Store) Drop(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.collections, key)
}

// Keys returns the keys that currently hold a collection.
func (s *Store) Keys() []Key {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]Key, 0, len(s.collections))
	for k := range s.collections {
		keys = append(keys, k)
	}
	return keys
}

// Generation returns the read generation of key. A read stamped with an
// older generation must not be written back.
func (s *Store) Generation(key Key) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.generations[key]
}

// Advance bumps the read generation of key and returns the new value.
func (s *Store) Advance(key Key) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generations[key]++
	return s.generations[key]
}

// Clear removes every collection. Generations survive so reads issued before
// Clear still lose against later writes.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.collections = make(map[Key]Collection)
}

func (s *Store) update(key Key, fn func(Collection) (Collection, bool)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[key]
	if !ok {
		return false
	}
	next, changed := fn(c)
	if changed {
		s.collections[key] = next
	}
	return changed
}
