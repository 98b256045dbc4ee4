package boltdb

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/iudanet/liftlog/internal/client/storage"
)

var (
	keyActiveSession = []byte("active_session")
	keyNodeID        = []byte("node_id")
)

// SaveActiveSession remembers the workout session the editor opens by default
func (s *Storage) SaveActiveSession(ctx context.Context, sessionID int64) error {
	if sessionID <= 0 {
		return fmt.Errorf("invalid session id %d", sessionID)
	}

	return s.update(func(b *bbolt.Bucket) error {
		// Конвертируем int64 в bytes
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(sessionID))

		if err := b.Put(keyActiveSession, buf); err != nil {
			return fmt.Errorf("failed to save active session: %w", err)
		}
		return nil
	})
}

// ActiveSession returns the remembered workout session
func (s *Storage) ActiveSession(ctx context.Context) (int64, error) {
	var sessionID int64

	err := s.view(func(b *bbolt.Bucket) error {
		raw := b.Get(keyActiveSession)
		if raw == nil {
			return storage.ErrNoActiveSession
		}
		if len(raw) != 8 {
			return fmt.Errorf("corrupted active session value")
		}
		sessionID = int64(binary.BigEndian.Uint64(raw))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get active session: %w", err)
	}

	return sessionID, nil
}

// NodeID returns the identifier of this client installation
func (s *Storage) NodeID(ctx context.Context) (string, error) {
	var nodeID string

	// get-or-create в одной транзакции
	err := s.update(func(b *bbolt.Bucket) error {
		if raw := b.Get(keyNodeID); raw != nil {
			nodeID = string(raw)
			return nil
		}
		nodeID = uuid.NewString()
		return b.Put(keyNodeID, []byte(nodeID))
	})
	if err != nil {
		return "", fmt.Errorf("failed to get node id: %w", err)
	}

	return nodeID, nil
}
