package promo

import (
	"errors"
	"testing"
)

func TestResolveCaseInsensitive(t *testing.T) {
	r := NewResolver(DefaultTable())
	for _, code := range []string{"SAVE10", "save10", " Save10 "} {
		p, err := r.Resolve(code)
		if err != nil {
			t.Fatalf("resolve %q: %v", code, err)
		}
		if p.Kind != KindPercentOff || p.PercentBps != 1000 {
			t.Fatalf("resolve %q: unexpected promotion %+v", code, p)
		}
	}
}

func TestResolveIdempotent(t *testing.T) {
	r := NewResolver(DefaultTable())
	first, err := r.Resolve("WELCOME20")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	second, err := r.Resolve("WELCOME20")
	if err != nil {
		t.Fatalf("resolve again: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical promotions, got %+v and %+v", first, second)
	}
}

func TestResolveUnknownAndEmpty(t *testing.T) {
	r := NewResolver(DefaultTable())
	for _, code := range []string{"BOGUS", "", "   "} {
		if _, err := r.Resolve(code); !errors.Is(err, ErrUnknownCode) {
			t.Fatalf("resolve %q: expected ErrUnknownCode, got %v", code, err)
		}
	}
}

func TestResolveFreeShipping(t *testing.T) {
	r := NewResolver(DefaultTable())
	p, err := r.Resolve("freeship")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !p.FreeShipping() {
		t.Fatalf("expected free shipping promotion, got %+v", p)
	}
}

func TestParseTable(t *testing.T) {
	table, err := ParseTable("SPRING15=percent:1500, SHIPFREE=freeship")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	r := NewResolver(table)
	p, err := r.Resolve("spring15")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if p.PercentBps != 1500 {
		t.Fatalf("expected 1500 bps, got %d", p.PercentBps)
	}
	if _, err := r.Resolve("SAVE10"); err == nil {
		t.Fatal("custom table should not contain default codes")
	}
}

func TestParseTableEmptyFallsBack(t *testing.T) {
	table, err := ParseTable("  ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, ok := table["FREESHIP"]; !ok {
		t.Fatal("expected default table")
	}
}

func TestParseTableRejectsBadEntries(t *testing.T) {
	for _, spec := range []string{"SAVE=percent:0", "SAVE=percent:20000", "SAVE=half", "SAVE"} {
		if _, err := ParseTable(spec); err == nil {
			t.Fatalf("expected error for %q", spec)
		}
	}
}
