package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-troli/internal/events"
	"github.com/noah-isme/backend-troli/internal/pricing"
	"github.com/noah-isme/backend-troli/internal/promo"
)

// ErrNotFound indicates the referenced cart entry does not exist.
var ErrNotFound = errors.New("cart entry not found")

// ErrInvalidQuantity is returned when a quantity is below 1 or would exceed
// the line's quantity cap or available stock.
var ErrInvalidQuantity = errors.New("invalid quantity")

// ErrInvalidPromotionCode is returned when a promotion code does not resolve.
var ErrInvalidPromotionCode = errors.New("invalid promotion code")

// StoreConfig carries the collaborators and defaults for a cart store.
type StoreConfig struct {
	Resolver      *promo.Resolver
	Pricing       pricing.Config
	DefaultMaxQty int
	DefaultStock  int
	Events        *events.Bus
	Logger        zerolog.Logger
	NewID         func() string
}

func (c StoreConfig) withDefaults() StoreConfig {
	if c.Resolver == nil {
		c.Resolver = promo.NewResolver(promo.DefaultTable())
	}
	if c.Pricing == (pricing.Config{}) {
		c.Pricing = pricing.DefaultConfig()
	}
	if c.DefaultMaxQty <= 0 {
		c.DefaultMaxQty = 10
	}
	if c.DefaultStock <= 0 {
		c.DefaultStock = 10
	}
	if c.NewID == nil {
		c.NewID = uuid.NewString
	}
	return c
}

// Store owns the mutable cart collections and is the only legal mutation
// surface. It performs no locking of its own; callers serialise access
// through a single owner (see Sessions). All pricing math is delegated to
// the pricing package.
type Store struct {
	ID string

	cfg        StoreConfig
	items      []LineItem
	savedItems []SavedItem
	promotion  promo.Promotion
}

// NewStore constructs an empty cart store.
func NewStore(id string, cfg StoreConfig) *Store {
	return &Store{ID: id, cfg: cfg.withDefaults()}
}

// NewStoreFromSnapshot rebuilds a store from a persisted snapshot. The
// promotion code is re-resolved against the current table; codes that no
// longer resolve are dropped rather than failing the load.
func NewStoreFromSnapshot(snap Snapshot, cfg StoreConfig) *Store {
	s := NewStore(snap.CartID, cfg)
	s.items = append(s.items, snap.Items...)
	s.savedItems = append(s.savedItems, snap.SavedItems...)
	if snap.PromoCode != "" {
		if p, err := s.cfg.Resolver.Resolve(snap.PromoCode); err == nil {
			s.promotion = p
		}
	}
	return s
}

// AddItem inserts a new line or increments an existing one. Entries merge
// when product and variant match; the merged quantity must stay within the
// line's cap and stock or the call fails without mutating state.
func (s *Store) AddItem(ctx context.Context, p Product, v Variant, qty int) (LineItem, error) {
	if qty < 1 {
		return LineItem{}, fmt.Errorf("qty must be at least 1: %w", ErrInvalidQuantity)
	}
	for i := range s.items {
		it := &s.items[i]
		if it.ProductID != p.ID || it.Variant != v {
			continue
		}
		newQty := it.Qty + qty
		if newQty > it.MaxQty {
			return LineItem{}, fmt.Errorf("qty %d exceeds max %d: %w", newQty, it.MaxQty, ErrInvalidQuantity)
		}
		if newQty > it.Stock {
			return LineItem{}, fmt.Errorf("qty %d exceeds stock %d: %w", newQty, it.Stock, ErrInvalidQuantity)
		}
		it.Qty = newQty
		s.emit(ctx, events.TopicItemAdded, it.EntryID)
		return *it, nil
	}

	maxQty := p.MaxQty
	if maxQty <= 0 {
		maxQty = s.cfg.DefaultMaxQty
	}
	stock := p.Stock
	if stock <= 0 {
		stock = s.cfg.DefaultStock
	}
	if qty > maxQty {
		return LineItem{}, fmt.Errorf("qty %d exceeds max %d: %w", qty, maxQty, ErrInvalidQuantity)
	}
	if qty > stock {
		return LineItem{}, fmt.Errorf("qty %d exceeds stock %d: %w", qty, stock, ErrInvalidQuantity)
	}
	item := LineItem{
		EntryID:           s.cfg.NewID(),
		ProductID:         p.ID,
		Title:             p.Title,
		UnitPrice:         nonNegative(p.UnitPrice),
		OriginalUnitPrice: nonNegative(p.OriginalUnitPrice),
		Qty:               qty,
		MaxQty:            maxQty,
		Stock:             stock,
		Variant:           v,
	}
	s.items = append(s.items, item)
	s.emit(ctx, events.TopicItemAdded, item.EntryID)
	return item, nil
}

// UpdateQuantity replaces the quantity of the referenced entry in place.
func (s *Store) UpdateQuantity(ctx context.Context, entryID string, qty int) (LineItem, error) {
	if qty < 1 {
		return LineItem{}, fmt.Errorf("qty must be at least 1: %w", ErrInvalidQuantity)
	}
	for i := range s.items {
		it := &s.items[i]
		if it.EntryID != entryID {
			continue
		}
		if qty > it.MaxQty {
			return LineItem{}, fmt.Errorf("qty %d exceeds max %d: %w", qty, it.MaxQty, ErrInvalidQuantity)
		}
		if qty > it.Stock {
			return LineItem{}, fmt.Errorf("qty %d exceeds stock %d: %w", qty, it.Stock, ErrInvalidQuantity)
		}
		it.Qty = qty
		s.emit(ctx, events.TopicItemUpdated, entryID)
		return *it, nil
	}
	return LineItem{}, ErrNotFound
}

// RemoveItem deletes the referenced entry. Removing an unknown entry is a
// no-op, not an error.
func (s *Store) RemoveItem(ctx context.Context, entryID string) {
	for i := range s.items {
		if s.items[i].EntryID != entryID {
			continue
		}
		s.items = append(s.items[:i], s.items[i+1:]...)
		s.emit(ctx, events.TopicItemRemoved, entryID)
		return
	}
}

// SaveForLater moves the referenced entry to the saved list. Saved items are
// excluded from pricing. Unknown entries are a no-op.
func (s *Store) SaveForLater(ctx context.Context, entryID string) {
	for i := range s.items {
		if s.items[i].EntryID != entryID {
			continue
		}
		saved := SavedItem{LineItem: s.items[i], InStock: true}
		s.items = append(s.items[:i], s.items[i+1:]...)
		s.savedItems = append(s.savedItems, saved)
		s.emit(ctx, events.TopicItemSaved, entryID)
		return
	}
}

// MoveToCart restores a saved item into the active cart with a fresh entry
// identity, quantity reset to 1 and the default cap and stock. Out-of-stock
// saved items are left untouched and ok is false.
func (s *Store) MoveToCart(ctx context.Context, entryID string) (LineItem, bool) {
	for i := range s.savedItems {
		saved := s.savedItems[i]
		if saved.EntryID != entryID {
			continue
		}
		if !saved.InStock {
			return LineItem{}, false
		}
		s.savedItems = append(s.savedItems[:i], s.savedItems[i+1:]...)
		item := saved.LineItem
		item.EntryID = s.cfg.NewID()
		item.Qty = 1
		item.MaxQty = s.cfg.DefaultMaxQty
		item.Stock = s.cfg.DefaultStock
		s.items = append(s.items, item)
		s.emit(ctx, events.TopicItemRestored, item.EntryID)
		return item, true
	}
	return LineItem{}, false
}

// RemoveSavedItem deletes from the saved list. Unknown entries are a no-op.
func (s *Store) RemoveSavedItem(ctx context.Context, entryID string) {
	for i := range s.savedItems {
		if s.savedItems[i].EntryID != entryID {
			continue
		}
		s.savedItems = append(s.savedItems[:i], s.savedItems[i+1:]...)
		s.emit(ctx, events.TopicSavedItemRemoved, entryID)
		return
	}
}

// ClearCart empties the active items. The saved list and any active
// promotion are untouched.
func (s *Store) ClearCart(ctx context.Context) {
	if len(s.items) == 0 {
		return
	}
	s.items = nil
	s.emit(ctx, events.TopicCartCleared, "")
}

// ApplyPromotion resolves the code and records the promotion as active
// state, replacing any previous one, and returns the discount computed
// against the current subtotal. An invalid code clears the active promotion
// (fail-closed) and returns ErrInvalidPromotionCode.
func (s *Store) ApplyPromotion(ctx context.Context, code string) (pricing.Money, error) {
	p, err := s.cfg.Resolver.Resolve(code)
	if err != nil {
		if s.promotion.Active() {
			s.promotion = promo.None()
			s.emit(ctx, events.TopicPromotionCleared, "")
		}
		return 0, fmt.Errorf("code %q: %w", code, ErrInvalidPromotionCode)
	}
	s.promotion = p
	s.emit(ctx, events.TopicPromotionApplied, "")
	return pricing.Discount(s.subtotal(), p), nil
}

// ClearPromotion removes the active promotion, if any.
func (s *Store) ClearPromotion(ctx context.Context) {
	if !s.promotion.Active() {
		return
	}
	s.promotion = promo.None()
	s.emit(ctx, events.TopicPromotionCleared, "")
}

// Breakdown prices the current cart. Saved items are excluded.
func (s *Store) Breakdown() pricing.Breakdown {
	return pricing.Compute(s.pricingItems(), s.promotion, s.cfg.Pricing)
}

// ItemCount returns the summed quantity over active items.
func (s *Store) ItemCount() int {
	var count int
	for _, it := range s.items {
		count += it.Qty
	}
	return count
}

// Items returns a copy of the active items.
func (s *Store) Items() []LineItem {
	return append([]LineItem(nil), s.items...)
}

// SavedItems returns a copy of the saved-for-later list.
func (s *Store) SavedItems() []SavedItem {
	return append([]SavedItem(nil), s.savedItems...)
}

// Promotion returns the active promotion, or the zero value when none.
func (s *Store) Promotion() promo.Promotion {
	return s.promotion
}

// Snapshot captures the persistable cart state.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		CartID:     s.ID,
		Items:      s.Items(),
		SavedItems: s.SavedItems(),
		PromoCode:  s.promotion.Code,
		SavedAt:    time.Now().UTC(),
	}
}

func (s *Store) subtotal() pricing.Money {
	return pricing.Subtotal(s.pricingItems())
}

func (s *Store) pricingItems() []pricing.Item {
	items := make([]pricing.Item, 0, len(s.items))
	for _, it := range s.items {
		items = append(items, pricing.Item{
			Qty:               it.Qty,
			UnitPrice:         it.UnitPrice,
			OriginalUnitPrice: it.OriginalUnitPrice,
		})
	}
	return items
}

// emit notifies subscribers after a successful mutation. Notifier failures
// (persistence included) are logged and never surface through the mutation
// API.
func (s *Store) emit(ctx context.Context, topic, entryID string) {
	if s.cfg.Events == nil {
		return
	}
	if _, err := s.cfg.Events.Emit(ctx, topic, s.ID, entryID, s.Snapshot()); err != nil {
		s.cfg.Logger.Warn().Err(err).Str("topic", topic).Str("cart_id", s.ID).Msg("mutation notify")
	}
}

func nonNegative(m pricing.Money) pricing.Money {
	if m < 0 {
		return 0
	}
	return m
}
