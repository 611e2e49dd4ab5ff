package agrorules

import (
	"sort"
	"time"
)

// PackagingOption describes one packaging form a batch is held in.
type PackagingOption struct {
	PackagingType string  `json:"packaging_type"`
	AvailableKg   float64 `json:"available_kg"`
	CostPerKg     float64 `json:"cost_per_kg"`
}

// Batch is a production batch as seen by the selector: externally persisted
// inventory handed in by the caller, never mutated here.
type Batch struct {
	ID               int64             `json:"batch_id"`
	Code             string            `json:"batch_code"`
	ProcessingDate   time.Time         `json:"processing_date"`
	TotalAvailableKg float64           `json:"total_available_kg"`
	GariType         string            `json:"gari_type"`
	GariGrade        string            `json:"gari_grade"`
	CostPerKg        float64           `json:"cost_per_kg"`
	PackagingOptions []PackagingOption `json:"packaging_options"`
}

// BatchFields is the projection used to auto-populate dependent sale fields
// once a batch is selected.
type BatchFields struct {
	GariType         string  `json:"gari_type"`
	GariGrade        string  `json:"gari_grade"`
	DefaultPackaging string  `json:"default_packaging"`
	CostPerKg        float64 `json:"cost_per_kg"`
}

// ListAvailable filters out exhausted batches and orders the rest oldest
// first by processing date. The sort is stable so ties preserve the caller's
// order, which by convention is batch id ascending.
func ListAvailable(batches []Batch) []Batch {
	out := make([]Batch, 0, len(batches))
	for _, b := range batches {
		if b.TotalAvailableKg > 0 {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ProcessingDate.Before(out[j].ProcessingDate)
	})
	return out
}

// SelectDefault returns the oldest available batch, or nil when the farm has
// no inventory. Empty inventory is a normal state, not an error.
func SelectDefault(sorted []Batch) *Batch {
	if len(sorted) == 0 {
		return nil
	}
	b := sorted[0]
	return &b
}

// FieldsFromBatch projects the sale-form defaults out of a batch. The
// default packaging is the batch's first declared option, falling back to the
// configured default code.
func (r Ruleset) FieldsFromBatch(b Batch) BatchFields {
	packaging := r.DefaultPackaging
	if len(b.PackagingOptions) > 0 {
		packaging = b.PackagingOptions[0].PackagingType
	}
	return BatchFields{
		GariType:         b.GariType,
		GariGrade:        b.GariGrade,
		DefaultPackaging: packaging,
		CostPerKg:        b.CostPerKg,
	}
}
