package boltdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/iudanet/liftlog/internal/client/storage"
)

// createTestMetadataStorage создает временное BoltDB хранилище
func createTestMetadataStorage(t *testing.T) (*Storage, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "metadata_test.db")

	store, err := New(context.Background(), dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store, dbPath
}

func TestActiveSession(t *testing.T) {
	ctx := context.Background()
	store, dbPath := createTestMetadataStorage(t)

	// Изначально сессия не выбрана
	_, err := store.ActiveSession(ctx)
	assert.ErrorIs(t, err, storage.ErrNoActiveSession)

	require.NoError(t, store.SaveActiveSession(ctx, 7))
	require.NoError(t, store.SaveActiveSession(ctx, 12))

	got, err := store.ActiveSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(12), got)

	// значение переживает переоткрытие
	require.NoError(t, store.Close())
	reopened, err := New(ctx, dbPath)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	got, err = reopened.ActiveSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(12), got)
}

func TestSaveActiveSession_Invalid(t *testing.T) {
	store, _ := createTestMetadataStorage(t)

	assert.Error(t, store.SaveActiveSession(context.Background(), 0))
	assert.Error(t, store.SaveActiveSession(context.Background(), -3))
}

func TestNodeID_Stable(t *testing.T) {
	ctx := context.Background()
	store, _ := createTestMetadataStorage(t)

	first, err := store.NodeID(ctx)
	require.NoError(t, err)
	_, err = uuid.Parse(first)
	require.NoError(t, err)

	second, err := store.NodeID(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMetadata_BucketMissing(t *testing.T) {
	ctx := context.Background()
	store, _ := createTestMetadataStorage(t)

	// Удаляем bucket metadata напрямую
	err := store.db.Update(func(tx *bbolt.Tx) error {
		return tx.DeleteBucket(bucketMetadata)
	})
	require.NoError(t, err)

	err = store.SaveActiveSession(ctx, 1)
	assert.ErrorContains(t, err, "metadata bucket not found")

	_, err = store.ActiveSession(ctx)
	assert.ErrorContains(t, err, "metadata bucket not found")
}

func TestMetadata_Closed(t *testing.T) {
	ctx := context.Background()
	store, _ := createTestMetadataStorage(t)
	require.NoError(t, store.Close())

	_, err := store.NodeID(ctx)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	assert.ErrorIs(t, store.SaveActiveSession(ctx, 1), storage.ErrStorageClosed)
}
