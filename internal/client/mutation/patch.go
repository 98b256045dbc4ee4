package mutation

import (
	"fmt"

	"github.com/iudanet/liftlog/internal/client/cache"
	"github.com/iudanet/liftlog/internal/models"
)

// Op names the kind of a patch.
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Patch is a staged change: Insert, Update or Delete. The set of variants is
// closed; code that handles patches switches over all three.
type Patch interface {
	// Op returns the patch kind.
	Op() Op
	// Target returns the id the patch addresses.
	Target() models.SetID

	isPatch()
}

// Insert adds a new set. Its id is a placeholder until the server confirms.
type Insert struct {
	Set models.Set
}

// Update merges partial changes into an existing set.
type Update struct {
	Changes models.SetUpdate
	ID      models.SetID
}

// Delete removes a set.
type Delete struct {
	ID models.SetID
}

func (Insert) Op() Op { return OpInsert }
func (Update) Op() Op { return OpUpdate }
func (Delete) Op() Op { return OpDelete }

func (p Insert) Target() models.SetID { return p.Set.ID }
func (p Update) Target() models.SetID { return p.ID }
func (p Delete) Target() models.SetID { return p.ID }

func (Insert) isPatch() {}
func (Update) isPatch() {}
func (Delete) isPatch() {}

// retarget returns a copy of p addressing id.
func retarget(p Patch, id models.SetID) Patch {
	switch p := p.(type) {
	case Update:
		p.ID = id
		return p
	case Delete:
		p.ID = id
		return p
	default:
		return p
	}
}

// applyToStore applies p to the store as the optimistic step.
func applyToStore(store *cache.Store, key cache.Key, p Patch) {
	switch p := p.(type) {
	case Insert:
		store.Insert(key, p.Set)
	case Update:
		store.Patch(key, p.ID, p.Changes)
	case Delete:
		store.Remove(key, p.ID)
	default:
		panic(fmt.Sprintf("mutation: unknown patch %T", p))
	}
}

// applyToCollection replays p against c with target as the effective id.
// Used to rebuild the visible collection on top of the confirmed base.
func applyToCollection(c cache.Collection, p Patch, target models.SetID) cache.Collection {
	switch p := p.(type) {
	case Insert:
		set := p.Set.Clone()
		set.ID = target
		return c.Prepend(set)
	case Update:
		next, _ := c.Patch(target, p.Changes)
		return next
	case Delete:
		next, _ := c.Remove(target)
		return next
	default:
		panic(fmt.Sprintf("mutation: unknown patch %T", p))
	}
}
