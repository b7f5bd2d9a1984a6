package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-troli/internal/cart"
	"github.com/noah-isme/backend-troli/internal/events"
)

// TaskTypePersistCart is the asynq task type carrying a cart snapshot.
const TaskTypePersistCart = "cart:persist"

// NewPersistTask builds a persistence task for the snapshot.
func NewPersistTask(snap cart.Snapshot) (*asynq.Task, error) {
	payload, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return asynq.NewTask(TaskTypePersistCart, payload), nil
}

// Persister subscribes to mutation events and enqueues a persistence task
// for each. The enqueue is fire-and-forget from the engine's perspective:
// the bus logs notifier failures and the mutation API never sees them.
type Persister struct {
	Client *asynq.Client
	Queue  string
}

// Notify implements events.Notifier.
func (p *Persister) Notify(ctx context.Context, ev events.Event) error {
	if p == nil || p.Client == nil {
		return errors.New("persister not configured")
	}
	queue := p.Queue
	if queue == "" {
		queue = "default"
	}
	task := asynq.NewTask(TaskTypePersistCart, ev.Payload)
	if _, err := p.Client.EnqueueContext(ctx, task, asynq.Queue(queue)); err != nil {
		return fmt.Errorf("enqueue persist task: %w", err)
	}
	return nil
}

// SyncSaver persists snapshots inline on each mutation event. Used in
// single-binary deployments and tests where no worker is running.
type SyncSaver struct {
	Store *SnapshotStore
}

// Notify implements events.Notifier.
func (s SyncSaver) Notify(ctx context.Context, ev events.Event) error {
	snap, err := decodeSnapshot(ev.Payload)
	if err != nil {
		return err
	}
	return s.Store.Save(ctx, snap)
}

// PersistHandler processes persistence tasks on the worker.
type PersistHandler struct {
	Store  *SnapshotStore
	Logger zerolog.Logger
}

// ProcessTask implements asynq.Handler.
func (h *PersistHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	snap, err := decodeSnapshot(t.Payload())
	if err != nil {
		// A payload that never decodes will never succeed; drop it.
		h.Logger.Error().Err(err).Msg("discard malformed persist task")
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if err := h.Store.Save(ctx, snap); err != nil {
		return err
	}
	h.Logger.Debug().Str("cart_id", snap.CartID).Msg("cart snapshot persisted")
	return nil
}

func decodeSnapshot(payload []byte) (cart.Snapshot, error) {
	var snap cart.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return cart.Snapshot{}, fmt.Errorf("decode snapshot payload: %w", err)
	}
	if snap.CartID == "" {
		return cart.Snapshot{}, errors.New("snapshot payload missing cart id")
	}
	return snap, nil
}
