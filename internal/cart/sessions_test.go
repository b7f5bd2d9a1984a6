package cart

import (
	"context"
	"errors"
	"testing"
)

type mapLoader struct {
	snaps map[string]Snapshot
	err   error
}

func (l *mapLoader) Load(_ context.Context, cartID string) (Snapshot, bool, error) {
	if l.err != nil {
		return Snapshot{}, false, l.err
	}
	snap, ok := l.snaps[cartID]
	return snap, ok, nil
}

func TestSessionsCreateAndWith(t *testing.T) {
	ctx := context.Background()
	sessions := NewSessions(StoreConfig{}, nil)
	id := sessions.Create(ctx)

	err := sessions.With(ctx, id, func(s *Store) error {
		_, err := s.AddItem(ctx, Product{ID: "p", UnitPrice: 100}, Variant{}, 1)
		return err
	})
	if err != nil {
		t.Fatalf("with: %v", err)
	}

	err = sessions.With(ctx, id, func(s *Store) error {
		if s.ItemCount() != 1 {
			t.Fatalf("item count = %d, want 1", s.ItemCount())
		}
		return nil
	})
	if err != nil {
		t.Fatalf("with: %v", err)
	}
}

func TestSessionsUnknownCart(t *testing.T) {
	ctx := context.Background()
	sessions := NewSessions(StoreConfig{}, nil)
	err := sessions.With(ctx, "missing", func(*Store) error { return nil })
	if !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}
}

func TestSessionsLazyLoadFromSnapshot(t *testing.T) {
	ctx := context.Background()
	loader := &mapLoader{snaps: map[string]Snapshot{
		"cart-7": {
			CartID: "cart-7",
			Items:  []LineItem{{EntryID: "e1", ProductID: "p", UnitPrice: 2000, Qty: 2, MaxQty: 10, Stock: 10}},
		},
	}}
	sessions := NewSessions(StoreConfig{}, loader)

	err := sessions.With(ctx, "cart-7", func(s *Store) error {
		if s.Breakdown().Subtotal != 4000 {
			t.Fatalf("subtotal = %d, want 4000", s.Breakdown().Subtotal)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("with: %v", err)
	}

	if err := sessions.With(ctx, "cart-8", func(*Store) error { return nil }); !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}
}

func TestSessionsLoaderError(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("redis down")
	sessions := NewSessions(StoreConfig{}, &mapLoader{err: boom})
	err := sessions.With(ctx, "cart-1", func(*Store) error { return nil })
	if !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}
}

func TestSessionsEvictForcesReload(t *testing.T) {
	ctx := context.Background()
	loader := &mapLoader{snaps: map[string]Snapshot{}}
	sessions := NewSessions(StoreConfig{}, loader)
	id := sessions.Create(ctx)

	sessions.Evict(id)
	err := sessions.With(ctx, id, func(*Store) error { return nil })
	if !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("expected reload miss after evict, got %v", err)
	}
}
