package agrorules

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidCrateCapacity indicates a non-positive crate capacity constant.
var ErrInvalidCrateCapacity = errors.New("agrorules: crate capacity must be > 0")

// ErrUnknownPackaging indicates a packaging code absent from the table.
var ErrUnknownPackaging = errors.New("agrorules: unknown packaging code")

// GradeWeights holds the per-grade weights of a harvest entry. Values come
// from live-typed form fields, so NaN stands in for missing/non-numeric
// input and is treated as zero.
type GradeWeights struct {
	A float64 `json:"grade_a_kg"`
	B float64 `json:"grade_b_kg"`
	C float64 `json:"grade_c_kg"`
}

// TotalWeight sums the grade components, coercing missing (NaN) entries to
// zero. Negative inputs pass through untouched; rejecting them is the form
// layer's decision.
func TotalWeight(w GradeWeights) float64 {
	return coerce(w.A) + coerce(w.B) + coerce(w.C)
}

// CrateCount derives the crate count from a total weight: ceil of
// weight/capacity, zero for zero weight.
func CrateCount(totalKg, capacityKg float64) (int, error) {
	if capacityKg <= 0 {
		return 0, ErrInvalidCrateCapacity
	}
	totalKg = coerce(totalKg)
	if totalKg <= 0 {
		return 0, nil
	}
	return int(math.Ceil(totalKg / capacityKg)), nil
}

// KgFromPackaging converts a packaging-unit count into kilograms using the
// configured weight table. A non-positive unit count yields zero, not an
// error; a code missing from the table is an error regardless of the count.
func (r Ruleset) KgFromPackaging(code string, units int) (float64, error) {
	weight, ok := r.PackagingWeights[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownPackaging, code)
	}
	if units <= 0 {
		return 0, nil
	}
	return weight * float64(units), nil
}

func coerce(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func normalizeCrop(crop string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(crop), " ", "_"))
}
