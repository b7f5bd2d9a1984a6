package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrCartNotFound indicates no cart exists for the requested id.
var ErrCartNotFound = errors.New("cart not found")

// SnapshotLoader loads a persisted cart snapshot. ok is false when no
// snapshot exists for the id.
type SnapshotLoader interface {
	Load(ctx context.Context, cartID string) (snap Snapshot, ok bool, err error)
}

// Sessions owns the live cart stores, one per cart id. The store itself does
// no locking; every access runs under the sessions mutex so each cart has a
// single mutual-exclusion boundary.
type Sessions struct {
	mu     sync.Mutex
	carts  map[string]*Store
	cfg    StoreConfig
	loader SnapshotLoader
}

// NewSessions constructs the session registry. loader may be nil when no
// persistence collaborator is configured.
func NewSessions(cfg StoreConfig, loader SnapshotLoader) *Sessions {
	return &Sessions{
		carts:  make(map[string]*Store),
		cfg:    cfg.withDefaults(),
		loader: loader,
	}
}

// Create registers a fresh empty cart and returns its id.
func (s *Sessions) Create(_ context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.cfg.NewID()
	s.carts[id] = NewStore(id, s.cfg)
	return id
}

// With runs fn against the cart's store while holding the session lock.
// Unknown carts are lazily loaded from the snapshot loader; when neither the
// registry nor the loader knows the id, ErrCartNotFound is returned.
func (s *Sessions) With(ctx context.Context, cartID string, fn func(*Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	store, ok := s.carts[cartID]
	if !ok {
		loaded, err := s.load(ctx, cartID)
		if err != nil {
			return err
		}
		store = loaded
		s.carts[cartID] = store
	}
	return fn(store)
}

// Len reports how many cart stores are held in memory.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts)
}

// Evict drops the in-memory store for a cart, forcing the next access to
// reload from persistence. Used at session end.
func (s *Sessions) Evict(cartID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, cartID)
}

func (s *Sessions) load(ctx context.Context, cartID string) (*Store, error) {
	if s.loader == nil {
		return nil, fmt.Errorf("cart %q: %w", cartID, ErrCartNotFound)
	}
	snap, ok, err := s.loader.Load(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("load cart %q: %w", cartID, err)
	}
	if !ok {
		return nil, fmt.Errorf("cart %q: %w", cartID, ErrCartNotFound)
	}
	return NewStoreFromSnapshot(snap, s.cfg), nil
}
