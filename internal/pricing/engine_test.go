package pricing

import (
	"math/rand"
	"testing"

	"github.com/noah-isme/backend-troli/internal/promo"
)

func percent(bps int) promo.Promotion {
	return promo.Promotion{Kind: promo.KindPercentOff, PercentBps: bps}
}

func freeShip() promo.Promotion {
	return promo.Promotion{Kind: promo.KindFreeShipping}
}

func TestSubtotalOrderIndependent(t *testing.T) {
	items := []Item{
		{Qty: 2, UnitPrice: 1999},
		{Qty: 1, UnitPrice: 599},
		{Qty: 3, UnitPrice: 12345},
	}
	want := Subtotal(items)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		rng.Shuffle(len(items), func(a, b int) { items[a], items[b] = items[b], items[a] })
		if got := Subtotal(items); got != want {
			t.Fatalf("subtotal changed with order: got %d want %d", got, want)
		}
	}
}

func TestSubtotalSkipsNonPositiveQty(t *testing.T) {
	items := []Item{{Qty: 0, UnitPrice: 100}, {Qty: -2, UnitPrice: 100}, {Qty: 1, UnitPrice: 250}}
	if got := Subtotal(items); got != 250 {
		t.Fatalf("subtotal = %d, want 250", got)
	}
}

func TestLineSavings(t *testing.T) {
	items := []Item{
		{Qty: 2, UnitPrice: 1500, OriginalUnitPrice: 2000},
		{Qty: 1, UnitPrice: 500, OriginalUnitPrice: 0},
		{Qty: 3, UnitPrice: 800, OriginalUnitPrice: 800},
	}
	if got := LineSavings(items); got != 1000 {
		t.Fatalf("line savings = %d, want 1000", got)
	}
}

func TestDiscountBounds(t *testing.T) {
	cases := []struct {
		subtotal Money
		bps      int
	}{
		{0, 1000}, {100, 0}, {4500, 1000}, {4500, 10000}, {1, 9999}, {99999, 5000},
	}
	for _, tc := range cases {
		got := Discount(tc.subtotal, percent(tc.bps))
		if got < 0 || got > tc.subtotal {
			t.Fatalf("discount %d out of [0,%d] for %d bps", got, tc.subtotal, tc.bps)
		}
	}
	if got := Discount(10000, percent(10000)); got != 10000 {
		t.Fatalf("full percent discount = %d, want 10000", got)
	}
	if got := Discount(10000, freeShip()); got != 0 {
		t.Fatalf("free shipping must not discount subtotal, got %d", got)
	}
}

func TestShippingTierBoundaries(t *testing.T) {
	cfg := DefaultConfig()
	cases := []struct {
		after Money
		want  Money
	}{
		{2999, 999},
		{3000, 499},
		{4999, 499},
		{5000, 0},
		{0, 999},
		{12000, 0},
	}
	for _, tc := range cases {
		if got := ComputeShipping(tc.after, promo.None(), cfg); got != tc.want {
			t.Fatalf("shipping(%d) = %d, want %d", tc.after, got, tc.want)
		}
	}
}

func TestShippingFreeShipOverride(t *testing.T) {
	cfg := DefaultConfig()
	for _, after := range []Money{0, 1, 2999, 3000, 4999, 5000, 100000} {
		if got := ComputeShipping(after, freeShip(), cfg); got != 0 {
			t.Fatalf("shipping(%d, freeship) = %d, want 0", after, got)
		}
	}
}

func TestComputeTax(t *testing.T) {
	if got := ComputeTax(4050, 800); got != 324 {
		t.Fatalf("tax = %d, want 324", got)
	}
	if got := ComputeTax(0, 800); got != 0 {
		t.Fatalf("tax on zero = %d, want 0", got)
	}
	if got := ComputeTax(4050, 0); got != 0 {
		t.Fatalf("tax at zero rate = %d, want 0", got)
	}
}

func TestComputeEmptyCart(t *testing.T) {
	b := Compute(nil, promo.None(), DefaultConfig())
	if b.Subtotal != 0 || b.LineItemSavings != 0 || b.CartDiscount != 0 || b.Tax != 0 || b.Shipping != 0 || b.Total != 0 {
		t.Fatalf("empty cart breakdown not all zero: %+v", b)
	}
	// The full threshold is still outstanding, even though nothing ships.
	if b.FreeShippingRemaining != 5000 {
		t.Fatalf("remaining = %d, want 5000", b.FreeShippingRemaining)
	}
	if b.FreeShippingProgress != 0 {
		t.Fatalf("progress = %f, want 0", b.FreeShippingProgress)
	}
}

func TestComputeNothingToShip(t *testing.T) {
	// Lines that contribute nothing to the subtotal leave nothing to ship.
	items := []Item{{Qty: 0, UnitPrice: 1500}}
	b := Compute(items, promo.None(), DefaultConfig())
	if b.Shipping != 0 || b.Total != 0 {
		t.Fatalf("zero-qty cart: shipping = %d total = %d, want 0/0", b.Shipping, b.Total)
	}

	b = Compute(nil, freeShip(), DefaultConfig())
	if b.Shipping != 0 || b.Total != 0 {
		t.Fatalf("empty cart with promo: shipping = %d total = %d, want 0/0", b.Shipping, b.Total)
	}
}

func TestComputeThresholdCrossingPromo(t *testing.T) {
	// Subtotal 45.00 with 10% off lands in the mid shipping tier.
	items := []Item{{Qty: 3, UnitPrice: 1500}}
	b := Compute(items, percent(1000), DefaultConfig())
	if b.Subtotal != 4500 {
		t.Fatalf("subtotal = %d, want 4500", b.Subtotal)
	}
	if b.CartDiscount != 450 {
		t.Fatalf("discount = %d, want 450", b.CartDiscount)
	}
	if b.SubtotalAfterDiscount != 4050 {
		t.Fatalf("after discount = %d, want 4050", b.SubtotalAfterDiscount)
	}
	if b.Shipping != 499 {
		t.Fatalf("shipping = %d, want 499", b.Shipping)
	}
	if b.Tax != 324 {
		t.Fatalf("tax = %d, want 324", b.Tax)
	}
	if b.Total != 4873 {
		t.Fatalf("total = %d, want 4873", b.Total)
	}
}

func TestComputeFreeShippingBelowThreshold(t *testing.T) {
	items := []Item{{Qty: 2, UnitPrice: 1000}}
	b := Compute(items, freeShip(), DefaultConfig())
	if b.Shipping != 0 {
		t.Fatalf("shipping = %d, want 0", b.Shipping)
	}
	if b.Tax != 160 {
		t.Fatalf("tax = %d, want 160", b.Tax)
	}
	if b.Total != 2160 {
		t.Fatalf("total = %d, want 2160", b.Total)
	}
	if b.FreeShippingRemaining != 0 {
		t.Fatalf("remaining = %d, want 0 under free shipping", b.FreeShippingRemaining)
	}
}

func TestComputeProgress(t *testing.T) {
	items := []Item{{Qty: 1, UnitPrice: 2500}}
	b := Compute(items, promo.None(), DefaultConfig())
	if b.FreeShippingRemaining != 2500 {
		t.Fatalf("remaining = %d, want 2500", b.FreeShippingRemaining)
	}
	if b.FreeShippingProgress != 0.5 {
		t.Fatalf("progress = %f, want 0.5", b.FreeShippingProgress)
	}

	b = Compute([]Item{{Qty: 1, UnitPrice: 9000}}, promo.None(), DefaultConfig())
	if b.FreeShippingProgress != 1 {
		t.Fatalf("progress = %f, want 1", b.FreeShippingProgress)
	}
}

func TestComputeTotalNeverNegative(t *testing.T) {
	items := []Item{{Qty: 1, UnitPrice: 100}}
	b := Compute(items, percent(10000), DefaultConfig())
	if b.SubtotalAfterDiscount != 0 {
		t.Fatalf("after discount = %d, want 0", b.SubtotalAfterDiscount)
	}
	if b.Total < 0 {
		t.Fatalf("total = %d, must be >= 0", b.Total)
	}
	// Fully discounted carts still pay base-tier shipping.
	if b.Total != b.Shipping {
		t.Fatalf("total = %d, want shipping only %d", b.Total, b.Shipping)
	}
}

func TestFormat(t *testing.T) {
	cases := map[Money]string{
		4873:  "48.73",
		0:     "0.00",
		5:     "0.05",
		100:   "1.00",
		-1234: "-12.34",
	}
	for m, want := range cases {
		if got := Format(m); got != want {
			t.Fatalf("Format(%d) = %q, want %q", m, got, want)
		}
	}
}
