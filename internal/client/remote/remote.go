// Package remote describes the remote source of truth the editor talks to.
// The HTTP implementation lives in internal/client/api.
package remote

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/iudanet/liftlog/internal/models"
)

//go:generate moq -out client_mock.go . Client

// Client is the narrow create/update/delete/list contract of the remote
// data service. Every failure is reported as *Error.
type Client interface {
	// CreateSet returns the authoritative set including its server id.
	CreateSet(ctx context.Context, sessionID int64, in models.SetInput) (models.Set, error)

	// UpdateSet applies a partial payload and returns the authoritative set.
	UpdateSet(ctx context.Context, sessionID int64, id models.SetID, u models.SetUpdate) (models.Set, error)

	// DeleteSet removes the set server-side.
	DeleteSet(ctx context.Context, sessionID int64, id models.SetID) error

	// ListSets returns the sets matching filter in display order.
	ListSets(ctx context.Context, filter models.SetFilter) ([]models.Set, error)
}

// Kind classifies remote failures.
type Kind string

const (
	// KindNetwork covers transport failures, timeouts and cancellation.
	KindNetwork Kind = "network"
	// KindValidation means the payload was rejected; Fields carries messages.
	KindValidation Kind = "validation"
	// KindNotFound means the target id no longer exists server-side.
	KindNotFound Kind = "not_found"
	// KindServer covers unexpected server failures.
	KindServer Kind = "server"
)

// Sentinels for errors.Is matching against *Error.
var (
	ErrNetwork    = errors.New("network error")
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrServer     = errors.New("server error")
)

// Error is a classified remote failure.
type Error struct {
	Err     error
	Fields  map[string]string
	Kind    Kind
	Message string
	Status  int
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Status != 0 {
		fmt.Fprintf(&b, " (%d)", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Fields) > 0 {
		names := make([]string, 0, len(e.Fields))
		for name := range e.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, name+": "+e.Fields[name])
		}
		b.WriteString(" [")
		b.WriteString(strings.Join(parts, "; "))
		b.WriteString("]")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrServer:
		return e.Kind == KindServer
	}
	return false
}

// NetworkError wraps a transport failure.
func NetworkError(err error) *Error {
	return &Error{Kind: KindNetwork, Err: err}
}

// ValidationError builds a rejected-payload error with field messages.
func ValidationError(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// NotFoundError builds a vanished-target error.
func NotFoundError(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// ServerError builds an unexpected server failure.
func ServerError(status int, message string) *Error {
	return &Error{Kind: KindServer, Status: status, Message: message}
}

// KindOf classifies any error. Unclassified errors count as network
// failures: the engine treats them as transient.
func KindOf(err error) Kind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindNetwork
}

// FieldsOf returns the field messages of a validation error, if any.
func FieldsOf(err error) map[string]string {
	var re *Error
	if errors.As(err, &re) && re.Kind == KindValidation {
		return re.Fields
	}
	return nil
}
