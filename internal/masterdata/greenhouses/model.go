package greenhouses

import "time"

// Greenhouse is an enclosed growing structure on a farm. Construction cost is
// amortised over a configured number of production cycles.
type Greenhouse struct {
	ID                 int64      `json:"id"`
	FarmID             int64      `json:"farm_id"`
	SiteID             *int64     `json:"site_id,omitempty"`
	Code               string     `json:"code,omitempty"`
	Name               string     `json:"name"`
	SizeSqm            *float64   `json:"size_sqm,omitempty"`
	BuiltDate          *time.Time `json:"built_date,omitempty"`
	ConstructionCost   *float64   `json:"construction_cost,omitempty"`
	AmortizationCycles *int       `json:"amortization_cycles,omitempty"`
	Notes              string     `json:"notes,omitempty"`
	IsActive           bool       `json:"is_active"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// AmortizationPerCycle spreads the construction cost evenly across the
// configured cycles. Zero when either input is missing.
func (g Greenhouse) AmortizationPerCycle() float64 {
	if g.ConstructionCost == nil || g.AmortizationCycles == nil || *g.AmortizationCycles <= 0 {
		return 0
	}
	return *g.ConstructionCost / float64(*g.AmortizationCycles)
}
