package storage_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-troli/internal/cart"
	"github.com/noah-isme/backend-troli/internal/storage"
)

func TestNewPersistTask(t *testing.T) {
	task, err := storage.NewPersistTask(sampleSnapshot())
	require.NoError(t, err)
	require.Equal(t, storage.TaskTypePersistCart, task.Type())

	var snap cart.Snapshot
	require.NoError(t, json.Unmarshal(task.Payload(), &snap))
	require.Equal(t, "cart-42", snap.CartID)
}

func TestPersistHandlerSavesSnapshot(t *testing.T) {
	store, _ := newSnapshotStore(t)
	handler := &storage.PersistHandler{Store: store, Logger: zerolog.Nop()}

	task, err := storage.NewPersistTask(sampleSnapshot())
	require.NoError(t, err)
	require.NoError(t, handler.ProcessTask(context.Background(), task))

	loaded, ok, err := store.Load(context.Background(), "cart-42")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "SAVE10", loaded.PromoCode)
}

func TestPersistHandlerDropsMalformedPayload(t *testing.T) {
	store, _ := newSnapshotStore(t)
	handler := &storage.PersistHandler{Store: store, Logger: zerolog.Nop()}

	task := asynq.NewTask(storage.TaskTypePersistCart, []byte("not json"))
	err := handler.ProcessTask(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
}
