package pricing

import (
	"fmt"

	"github.com/noah-isme/backend-troli/internal/promo"
)

// Money represents a monetary value stored in minor units.
type Money = int64

// Config carries the pricing constants. All amounts are minor units and the
// tax rate is expressed in basis points so test fixtures and jurisdictions
// can vary it without touching the engine.
type Config struct {
	TaxBps                int
	FreeShippingThreshold Money
	MidTierThreshold      Money
	MidTierFee            Money
	BaseShippingFee       Money
}

// DefaultConfig returns the reference constants: 8% tax, free shipping at
// 50.00, a 4.99 tier from 30.00 and a 9.99 base fee.
func DefaultConfig() Config {
	return Config{
		TaxBps:                800,
		FreeShippingThreshold: 5000,
		MidTierThreshold:      3000,
		MidTierFee:            499,
		BaseShippingFee:       999,
	}
}

// Item describes a line item used for pricing calculation.
type Item struct {
	Qty               int
	UnitPrice         Money
	OriginalUnitPrice Money
}

// Breakdown aggregates computed pricing components for the current cart.
// It is derived output and never persisted.
type Breakdown struct {
	Subtotal              Money   `json:"subtotal"`
	LineItemSavings       Money   `json:"lineItemSavings"`
	CartDiscount          Money   `json:"cartDiscount"`
	SubtotalAfterDiscount Money   `json:"subtotalAfterDiscount"`
	Shipping              Money   `json:"shipping"`
	Tax                   Money   `json:"tax"`
	Total                 Money   `json:"total"`
	FreeShippingRemaining Money   `json:"freeShippingRemaining"`
	FreeShippingProgress  float64 `json:"freeShippingProgress"`
}

// Subtotal sums unit price times quantity over the provided items. Lines
// with a non-positive quantity contribute nothing.
func Subtotal(items []Item) Money {
	var subtotal Money
	for _, it := range items {
		if it.Qty <= 0 {
			continue
		}
		subtotal += Money(it.Qty) * it.UnitPrice
	}
	return subtotal
}

// LineSavings sums the per-unit difference between the original and current
// price. Lines priced at or above their original price contribute nothing.
func LineSavings(items []Item) Money {
	var savings Money
	for _, it := range items {
		if it.Qty <= 0 {
			continue
		}
		if diff := it.OriginalUnitPrice - it.UnitPrice; diff > 0 {
			savings += Money(it.Qty) * diff
		}
	}
	return savings
}

// Discount returns the cart-level discount for the active promotion, clamped
// to [0, subtotal].
func Discount(subtotal Money, p promo.Promotion) Money {
	if p.Kind != promo.KindPercentOff || subtotal <= 0 {
		return 0
	}
	discount := (subtotal * Money(p.PercentBps)) / 10000
	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		return 0
	}
	return discount
}

// ComputeShipping resolves the shipping fee from the discounted subtotal.
// The first matching tier wins: an active free-shipping promotion, then the
// free-shipping threshold, then the mid tier, then the base fee.
func ComputeShipping(afterDiscount Money, p promo.Promotion, cfg Config) Money {
	switch {
	case p.FreeShipping():
		return 0
	case afterDiscount >= cfg.FreeShippingThreshold:
		return 0
	case afterDiscount >= cfg.MidTierThreshold:
		return cfg.MidTierFee
	default:
		return cfg.BaseShippingFee
	}
}

// ComputeTax applies the flat rate to the discounted subtotal.
func ComputeTax(afterDiscount Money, taxBps int) Money {
	if afterDiscount <= 0 || taxBps <= 0 {
		return 0
	}
	return (afterDiscount * Money(taxBps)) / 10000
}

// Compute calculates the full breakdown for the given items and active
// promotion. It is a pure function of its inputs; mutations are validated by
// the cart store before this is called. A zero subtotal means there is
// nothing to ship, so the fee tiers are skipped and an empty cart prices to
// all zeros. A non-empty cart discounted to zero still pays shipping.
func Compute(items []Item, p promo.Promotion, cfg Config) Breakdown {
	subtotal := Subtotal(items)
	discount := Discount(subtotal, p)
	after := subtotal - discount
	if after < 0 {
		after = 0
	}
	var shipping Money
	if subtotal > 0 {
		shipping = ComputeShipping(after, p, cfg)
	}
	tax := ComputeTax(after, cfg.TaxBps)

	remaining := cfg.FreeShippingThreshold - after
	if remaining < 0 || p.FreeShipping() {
		remaining = 0
	}
	progress := 1.0
	if cfg.FreeShippingThreshold > 0 && !p.FreeShipping() {
		progress = float64(after) / float64(cfg.FreeShippingThreshold)
		if progress > 1 {
			progress = 1
		}
	}

	return Breakdown{
		Subtotal:              subtotal,
		LineItemSavings:       LineSavings(items),
		CartDiscount:          discount,
		SubtotalAfterDiscount: after,
		Shipping:              shipping,
		Tax:                   tax,
		Total:                 after + tax + shipping,
		FreeShippingRemaining: remaining,
		FreeShippingProgress:  progress,
	}
}

// Format renders a minor-unit amount as a decimal string with two fraction
// digits. Formatting is the only place amounts are rounded for display.
func Format(m Money) string {
	sign := ""
	if m < 0 {
		sign = "-"
		m = -m
	}
	return fmt.Sprintf("%s%d.%02d", sign, m/100, m%100)
}
