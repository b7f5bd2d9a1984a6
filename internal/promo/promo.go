package promo

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownCode is returned when a promotion code does not match the table.
var ErrUnknownCode = errors.New("promotion code not recognized")

// Kind enumerates promotion behaviors.
type Kind int

const (
	// KindNone is the absence of a promotion, not an error state.
	KindNone Kind = iota
	// KindPercentOff reduces the cart subtotal by a percentage.
	KindPercentOff
	// KindFreeShipping waives the shipping fee regardless of subtotal.
	KindFreeShipping
)

// Promotion describes a single active discount. The zero value means no
// promotion; only one promotion is active at a time.
type Promotion struct {
	Code       string `json:"code,omitempty"`
	Kind       Kind   `json:"kind"`
	PercentBps int    `json:"percentBps,omitempty"`
}

// None returns the no-promotion value.
func None() Promotion { return Promotion{} }

// Active reports whether a promotion is in effect.
func (p Promotion) Active() bool { return p.Kind != KindNone }

// FreeShipping reports whether the promotion waives shipping.
func (p Promotion) FreeShipping() bool { return p.Kind == KindFreeShipping }

// Resolver maps code strings to promotions using a fixed table. Lookups are
// case-insensitive and the resolver holds no mutable state.
type Resolver struct {
	table map[string]Promotion
}

// NewResolver builds a resolver from the provided table. Keys are normalised
// to upper case; entries with an empty code or a non-positive percent for
// percent-off promotions are dropped.
func NewResolver(table map[string]Promotion) *Resolver {
	normalized := make(map[string]Promotion, len(table))
	for code, p := range table {
		key := strings.ToUpper(strings.TrimSpace(code))
		if key == "" {
			continue
		}
		if p.Kind == KindPercentOff && (p.PercentBps <= 0 || p.PercentBps > 10000) {
			continue
		}
		p.Code = key
		normalized[key] = p
	}
	return &Resolver{table: normalized}
}

// Resolve returns the promotion for the given code. Unknown or empty codes
// yield ErrUnknownCode; callers decide how to surface the failure.
func (r *Resolver) Resolve(code string) (Promotion, error) {
	if r == nil {
		return Promotion{}, ErrUnknownCode
	}
	key := strings.ToUpper(strings.TrimSpace(code))
	if key == "" {
		return Promotion{}, ErrUnknownCode
	}
	p, ok := r.table[key]
	if !ok {
		return Promotion{}, fmt.Errorf("%q: %w", code, ErrUnknownCode)
	}
	return p, nil
}

// DefaultTable returns the built-in promotion codes.
func DefaultTable() map[string]Promotion {
	return map[string]Promotion{
		"SAVE10":    {Kind: KindPercentOff, PercentBps: 1000},
		"WELCOME20": {Kind: KindPercentOff, PercentBps: 2000},
		"FREESHIP":  {Kind: KindFreeShipping},
	}
}

// ParseTable parses a comma-separated promotion spec of the form
// "SAVE10=percent:1000,FREESHIP=freeship". An empty spec yields the default
// table so deployments only override when they need to.
func ParseTable(spec string) (map[string]Promotion, error) {
	if strings.TrimSpace(spec) == "" {
		return DefaultTable(), nil
	}
	table := make(map[string]Promotion)
	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		code, rule, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("promo entry %q: missing '='", entry)
		}
		kind, arg, _ := strings.Cut(rule, ":")
		switch strings.ToLower(strings.TrimSpace(kind)) {
		case "percent":
			bps, err := strconv.Atoi(strings.TrimSpace(arg))
			if err != nil || bps <= 0 || bps > 10000 {
				return nil, fmt.Errorf("promo entry %q: invalid percent bps", entry)
			}
			table[code] = Promotion{Kind: KindPercentOff, PercentBps: bps}
		case "freeship":
			table[code] = Promotion{Kind: KindFreeShipping}
		default:
			return nil, fmt.Errorf("promo entry %q: unknown kind", entry)
		}
	}
	return table, nil
}
