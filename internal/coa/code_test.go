package coa

import (
	"errors"
	"strconv"
	"testing"
)

func TestNextChildCodeFillsFromOne(t *testing.T) {
	existing := map[string]struct{}{"1100": {}}
	code, err := NextChildCode("1100", existing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != "11001" {
		t.Fatalf("expected 11001 got %s", code)
	}
}

func TestNextChildCodeSequentialAllocationNeverCollides(t *testing.T) {
	existing := map[string]struct{}{}
	seen := map[string]bool{}
	for i := 0; i < 25; i++ {
		code, err := NextChildCode("40", existing)
		if err != nil {
			t.Fatalf("allocation %d: %v", i, err)
		}
		if _, ok := existing[code]; ok {
			t.Fatalf("allocation %d returned existing code %s", i, code)
		}
		if seen[code] {
			t.Fatalf("allocation %d repeated code %s", i, code)
		}
		seen[code] = true
		existing[code] = struct{}{}
	}
	// Sequential allocation fills 1..25 with no holes.
	for n := 1; n <= 25; n++ {
		if !seen["40"+strconv.Itoa(n)] {
			t.Fatalf("expected code 40%d to have been allocated", n)
		}
	}
}

func TestNextChildCodeReusesGapAfterDeletion(t *testing.T) {
	existing := map[string]struct{}{
		"101": {},
		"103": {},
		"104": {},
	}
	// "102" was deleted; first-fit must hand it back out.
	code, err := NextChildCode("10", existing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != "102" {
		t.Fatalf("expected gap 102 to be reused, got %s", code)
	}
}

func TestNextChildCodeIgnoresNonNumericSuffixes(t *testing.T) {
	existing := map[string]struct{}{
		"20A": {},
		"20":  {},
		"201": {},
	}
	code, err := NextChildCode("20", existing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != "202" {
		t.Fatalf("expected 202 got %s", code)
	}
}

func TestNextChildCodeEmptyPrefix(t *testing.T) {
	if _, err := NextChildCode("", nil); !errors.Is(err, ErrInvalidPrefix) {
		t.Fatalf("expected ErrInvalidPrefix, got %v", err)
	}
}
