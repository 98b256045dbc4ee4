package cache

import (
	"fmt"
	"reflect"

	"github.com/iudanet/liftlog/internal/models"
)

// Collection is an ordered list of sets held under one key. A Collection is
// never modified in place: every transform returns a new value, so a value
// handed out to readers stays valid while the store moves on.
type Collection struct {
	sets []models.Set
}

// NewCollection builds a collection from deep copies of sets.
func NewCollection(sets ...models.Set) Collection {
	out := make([]models.Set, len(sets))
	for i, s := range sets {
		out[i] = s.Clone()
	}
	return Collection{sets: out}
}

// Len returns the number of sets.
func (c Collection) Len() int {
	return len(c.sets)
}

// Sets returns a deep copy of the sets in order.
func (c Collection) Sets() []models.Set {
	out := make([]models.Set, len(c.sets))
	for i, s := range c.sets {
		out[i] = s.Clone()
	}
	return out
}

// IDs returns the identifiers in order.
func (c Collection) IDs() []models.SetID {
	out := make([]models.SetID, len(c.sets))
	for i, s := range c.sets {
		out[i] = s.ID
	}
	return out
}

// Find returns the set with id and its position.
func (c Collection) Find(id models.SetID) (models.Set, int, bool) {
	for i, s := range c.sets {
		if s.ID == id {
			return s.Clone(), i, true
		}
	}
	return models.Set{}, -1, false
}

// Contains reports whether a set with id is present.
func (c Collection) Contains(id models.SetID) bool {
	_, _, ok := c.Find(id)
	return ok
}

// Validate checks structural invariants: every set has an id and ids are
// unique within the collection.
func (c Collection) Validate() error {
	seen := make(map[models.SetID]struct{}, len(c.sets))
	for i, s := range c.sets {
		if s.ID.IsZero() {
			return fmt.Errorf("%w: set at position %d has no id", ErrInvalidCollection, i)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("%w: duplicate id %s", ErrInvalidCollection, s.ID)
		}
		seen[s.ID] = struct{}{}
	}
	return nil
}

// Equal reports whether both collections hold deep-equal sets in the same order.
func (c Collection) Equal(other Collection) bool {
	if len(c.sets) != len(other.sets) {
		return false
	}
	for i := range c.sets {
		if !reflect.DeepEqual(c.sets[i], other.sets[i]) {
			return false
		}
	}
	return true
}

// Prepend puts s first. If a set with the same id exists it is replaced in
// place instead, so ids stay unique.
func (c Collection) Prepend(s models.Set) Collection {
	if next, ok := c.Replace(s.ID, s); ok {
		return next
	}
	out := make([]models.Set, 0, len(c.sets)+1)
	out = append(out, s.Clone())
	out = append(out, c.sets...)
	return Collection{sets: out}
}

// Patch merges u into the set with id. Returns false if id is absent.
func (c Collection) Patch(id models.SetID, u models.SetUpdate) (Collection, bool) {
	cur, i, ok := c.Find(id)
	if !ok {
		return c, false
	}
	return c.replaceAt(i, u.Apply(cur)), true
}

// Replace swaps the set with id for s, keeping its position.
func (c Collection) Replace(id models.SetID, s models.Set) (Collection, bool) {
	_, i, ok := c.Find(id)
	if !ok {
		return c, false
	}
	return c.replaceAt(i, s), true
}

// Remove drops the set with id. Returns false if id is absent.
func (c Collection) Remove(id models.SetID) (Collection, bool) {
	_, i, ok := c.Find(id)
	if !ok {
		return c, false
	}
	out := make([]models.Set, 0, len(c.sets)-1)
	out = append(out, c.sets[:i]...)
	out = append(out, c.sets[i+1:]...)
	return Collection{sets: out}, true
}

// Reconcile replaces the placeholder with the authoritative set at the same
// position. A missing placeholder means the user removed it before the
// confirmation arrived: nothing is inserted and false is returned. If the
// authoritative id is already present (a refetch got there first) the
// placeholder is dropped and the existing entry updated, so the confirmed
// set appears exactly once.
func (c Collection) Reconcile(placeholder models.SetID, authoritative models.Set) (Collection, bool) {
	if !c.Contains(placeholder) {
		return c, false
	}
	if c.Contains(authoritative.ID) {
		next, _ := c.Remove(placeholder)
		next, _ = next.Replace(authoritative.ID, authoritative)
		return next, true
	}
	return c.Replace(placeholder, authoritative)
}

func (c Collection) replaceAt(i int, s models.Set) Collection {
	out := make([]models.Set, len(c.sets))
	copy(out, c.sets)
	out[i] = s.Clone()
	return Collection{sets: out}
}
