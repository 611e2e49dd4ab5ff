package agrorules

import (
	"errors"
	"math"
	"testing"
)

func TestTotalWeight(t *testing.T) {
	w := GradeWeights{A: 12.5, B: 8, C: 3.25}
	if got := TotalWeight(w); got != 23.75 {
		t.Fatalf("expected 23.75, got %v", got)
	}
	// Idempotence: same inputs, same output.
	if TotalWeight(w) != TotalWeight(w) {
		t.Fatalf("TotalWeight is not deterministic")
	}
	if got := TotalWeight(GradeWeights{}); got != 0 {
		t.Fatalf("all-zero grades should sum to 0, got %v", got)
	}
	// Live-typed fields: missing input arrives as NaN and counts as zero.
	if got := TotalWeight(GradeWeights{A: math.NaN(), B: 5}); got != 5 {
		t.Fatalf("NaN grade should coerce to 0, got %v", got)
	}
}

func TestCrateCount(t *testing.T) {
	cases := []struct {
		totalKg float64
		want    int
	}{
		{0, 0},
		{9.5, 1},
		{9.6, 2},
		{19, 2},
		{19.01, 3},
	}
	for _, tc := range cases {
		got, err := CrateCount(tc.totalKg, 9.5)
		if err != nil {
			t.Fatalf("CrateCount(%v): %v", tc.totalKg, err)
		}
		if got != tc.want {
			t.Fatalf("CrateCount(%v) = %d, want %d", tc.totalKg, got, tc.want)
		}
	}
	if _, err := CrateCount(10, 0); !errors.Is(err, ErrInvalidCrateCapacity) {
		t.Fatalf("expected ErrInvalidCrateCapacity, got %v", err)
	}
}

func TestKgFromPackaging(t *testing.T) {
	rules := DefaultRuleset()
	got, err := rules.KgFromPackaging("2KG_POUCH", 5)
	if err != nil {
		t.Fatalf("KgFromPackaging: %v", err)
	}
	if got != 10 {
		t.Fatalf("expected 10kg, got %v", got)
	}
	if got, err := rules.KgFromPackaging("2KG_POUCH", 0); err != nil || got != 0 {
		t.Fatalf("zero units must yield 0 without error, got %v/%v", got, err)
	}
	if _, err := rules.KgFromPackaging("3KG_POUCH", 5); !errors.Is(err, ErrUnknownPackaging) {
		t.Fatalf("expected ErrUnknownPackaging, got %v", err)
	}
	if got, err := rules.KgFromPackaging("50kg_bag", 2); err != nil || got != 100 {
		t.Fatalf("code lookup should be case insensitive, got %v/%v", got, err)
	}
}

func TestMinGrowthDays(t *testing.T) {
	rules := DefaultRuleset()
	if got := rules.MinGrowthDays("BELL_PEPPER"); got != 70 {
		t.Fatalf("bell pepper window = %d, want 70", got)
	}
	if got := rules.MinGrowthDays("bell pepper"); got != 70 {
		t.Fatalf("crop name normalisation failed: %d", got)
	}
	if got := rules.MinGrowthDays("TOMATO"); got != 40 {
		t.Fatalf("generic window = %d, want 40", got)
	}
}
