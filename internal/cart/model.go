package cart

import (
	"time"

	"github.com/noah-isme/backend-troli/internal/pricing"
)

// Variant carries the identity-distinguishing attributes of a line item.
// Two otherwise identical products with different variants occupy separate
// cart entries.
type Variant struct {
	Size  string `json:"size,omitempty"`
	Color string `json:"color,omitempty"`
}

// Product is the caller-supplied description of a product being added to
// the cart. MaxQty and Stock fall back to the store defaults when zero.
type Product struct {
	ID                string        `json:"id"`
	Title             string        `json:"title,omitempty"`
	UnitPrice         pricing.Money `json:"unitPrice"`
	OriginalUnitPrice pricing.Money `json:"originalUnitPrice,omitempty"`
	MaxQty            int           `json:"maxQty,omitempty"`
	Stock             int           `json:"stock,omitempty"`
}

// LineItem is one row in the active cart. EntryID identifies the cart row
// and is distinct from ProductID because variant selections split rows.
type LineItem struct {
	EntryID           string        `json:"entryId"`
	ProductID         string        `json:"productId"`
	Title             string        `json:"title,omitempty"`
	UnitPrice         pricing.Money `json:"unitPrice"`
	OriginalUnitPrice pricing.Money `json:"originalUnitPrice,omitempty"`
	Qty               int           `json:"qty"`
	MaxQty            int           `json:"maxQty"`
	Stock             int           `json:"stock"`
	Variant           Variant       `json:"variant"`
}

// SavedItem is a line item parked on the saved-for-later list. Saved items
// are excluded from pricing.
type SavedItem struct {
	LineItem
	InStock bool `json:"inStock"`
}

// Snapshot is the persisted shape of a cart. The pricing breakdown is
// derived output and deliberately absent.
type Snapshot struct {
	CartID     string      `json:"cartId"`
	Items      []LineItem  `json:"items"`
	SavedItems []SavedItem `json:"savedItems"`
	PromoCode  string      `json:"promoCode,omitempty"`
	SavedAt    time.Time   `json:"savedAt"`
}
