package cycles

import "time"

// Cycle statuses. IN_PROGRESS is accepted as an input alias for ACTIVE, older
// clients still send it.
const (
	StatusPlanned    = "PLANNED"
	StatusActive     = "ACTIVE"
	StatusHarvesting = "HARVESTING"
	StatusCompleted  = "COMPLETED"
	StatusAbandoned  = "ABANDONED"

	statusInProgressAlias = "IN_PROGRESS"
)

// Cycle is a production run of a single crop, usually inside a greenhouse.
// Harvest records hang off a cycle and are date-checked against it.
type Cycle struct {
	ID              int64      `json:"id"`
	FarmID          int64      `json:"farm_id"`
	SiteID          *int64     `json:"site_id,omitempty"`
	GreenhouseID    *int64     `json:"greenhouse_id,omitempty"`
	Code            string     `json:"cycle_code"`
	Crop            string     `json:"crop"`
	Variety         string     `json:"variety,omitempty"`
	Status          string     `json:"status"`
	StartDate       time.Time  `json:"start_date"`
	PlantingDate    *time.Time `json:"planting_date,omitempty"`
	ExpectedEndDate *time.Time `json:"expected_end_date,omitempty"`
	ActualEndDate   *time.Time `json:"actual_end_date,omitempty"`
	ExpectedYieldKg *float64   `json:"expected_yield_kg,omitempty"`
	ActualYieldKg   *float64   `json:"actual_yield_kg,omitempty"`
	YieldVariancePct *float64  `json:"yield_variance_percent,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// IsTerminal reports whether no further status transitions are allowed.
func (c Cycle) IsTerminal() bool {
	return c.Status == StatusCompleted || c.Status == StatusAbandoned
}

// HarvestReference returns the date harvest records are validated against.
// Bell pepper cycles measure growth from cycle start, everything else from
// the planting date when one is recorded.
func (c Cycle) HarvestReference(bellPepper bool) time.Time {
	if bellPepper {
		return c.StartDate
	}
	if c.PlantingDate != nil {
		return *c.PlantingDate
	}
	return c.StartDate
}

// NormalizeStatus maps accepted aliases onto canonical statuses.
func NormalizeStatus(status string) string {
	if status == statusInProgressAlias {
		return StatusActive
	}
	return status
}

var transitions = map[string][]string{
	StatusPlanned:    {StatusActive, StatusAbandoned},
	StatusActive:     {StatusHarvesting, StatusCompleted, StatusAbandoned},
	StatusHarvesting: {StatusCompleted, StatusAbandoned},
}

// CanTransition reports whether a status change is allowed.
func CanTransition(from, to string) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
