package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-troli/internal/cart"
)

const defaultKeyPrefix = "troli:cart:"

// SnapshotStore persists cart snapshots as JSON blobs in Redis. It is the
// injected load/save collaborator of the cart engine; the engine itself
// never touches Redis.
type SnapshotStore struct {
	R      redis.UniversalClient
	TTL    time.Duration
	Prefix string
}

func (s *SnapshotStore) key(cartID string) string {
	prefix := s.Prefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return prefix + cartID
}

func (s *SnapshotStore) ttl() time.Duration {
	if s.TTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.TTL
}

// Save writes the snapshot, refreshing the cart TTL.
func (s *SnapshotStore) Save(ctx context.Context, snap cart.Snapshot) error {
	if s == nil || s.R == nil {
		return errors.New("snapshot store not configured")
	}
	if snap.CartID == "" {
		return errors.New("snapshot missing cart id")
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.R.Set(ctx, s.key(snap.CartID), data, s.ttl()).Err(); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	return nil
}

// Load implements cart.SnapshotLoader. ok is false when no snapshot exists.
func (s *SnapshotStore) Load(ctx context.Context, cartID string) (cart.Snapshot, bool, error) {
	if s == nil || s.R == nil {
		return cart.Snapshot{}, false, errors.New("snapshot store not configured")
	}
	data, err := s.R.Get(ctx, s.key(cartID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return cart.Snapshot{}, false, nil
		}
		return cart.Snapshot{}, false, fmt.Errorf("load snapshot: %w", err)
	}
	var snap cart.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return cart.Snapshot{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, true, nil
}

// Delete removes the snapshot. Missing keys are not an error.
func (s *SnapshotStore) Delete(ctx context.Context, cartID string) error {
	if s == nil || s.R == nil {
		return errors.New("snapshot store not configured")
	}
	return s.R.Del(ctx, s.key(cartID)).Err()
}
