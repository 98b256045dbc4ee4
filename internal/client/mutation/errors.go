package mutation

import (
	"errors"
	"fmt"

	"github.com/iudanet/liftlog/internal/client/cache"
	"github.com/iudanet/liftlog/internal/client/remote"
	"github.com/iudanet/liftlog/internal/models"
)

// Common executor errors
var (
	// ErrClosed indicates that the executor no longer accepts mutations
	ErrClosed = errors.New("executor is closed")

	// ErrAbandoned indicates a change to a placeholder whose insert failed
	ErrAbandoned = errors.New("set was never created")

	// ErrUnconfirmed indicates a change to a placeholder owned by another key
	// that has not been confirmed yet
	ErrUnconfirmed = errors.New("set is not confirmed yet")

	// ErrStalePlaceholder indicates a change to a placeholder that is not
	// pending and whose resolution was already forgotten
	ErrStalePlaceholder = errors.New("placeholder is no longer tracked")

	// ErrInvalidPatch indicates a patch that cannot be applied
	ErrInvalidPatch = errors.New("invalid patch")
)

// Category groups failures by how the cache reacts to them.
type Category string

const (
	// Transient failures (network, server) are rolled back; retry is safe.
	Transient Category = "transient"
	// Rejected payloads are rolled back; field messages go to the user.
	Rejected Category = "rejected"
	// Vanished targets are removed from the cache instead of rolled back.
	Vanished Category = "vanished"
)

// Error is the failure surfaced through a mutation handle.
type Error struct {
	Err    error
	Key    cache.Key
	Target models.SetID
	Op     Op
	Kind   remote.Kind
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s %s on %s failed (%s): %v", e.Op, e.Target, e.Key, e.Category(), e.Err)
}

// Unwrap returns the remote error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Category maps the remote kind to the cache reaction.
func (e *Error) Category() Category {
	switch e.Kind {
	case remote.KindValidation:
		return Rejected
	case remote.KindNotFound:
		return Vanished
	default:
		return Transient
	}
}

// Fields returns field-level validation messages, if any.
func (e *Error) Fields() map[string]string {
	return remote.FieldsOf(e.Err)
}

// Retryable reports whether repeating the same mutation may succeed.
func (e *Error) Retryable() bool {
	return e.Category() == Transient
}

func newError(rec *record, err error) *Error {
	kind := remote.KindOf(err)
	if errors.Is(err, ErrAbandoned) || errors.Is(err, ErrStalePlaceholder) {
		kind = remote.KindNotFound
	}
	var op Op
	if rec.patch != nil {
		op = rec.patch.Op()
	}
	return &Error{
		Err:    err,
		Key:    rec.key,
		Target: rec.target,
		Op:     op,
		Kind:   kind,
	}
}
