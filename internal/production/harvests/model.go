package harvests

import "time"

// Harvest record statuses. Records are editable while DRAFT, locked once
// SUBMITTED and immutable after APPROVED.
const (
	StatusDraft     = "DRAFT"
	StatusSubmitted = "SUBMITTED"
	StatusApproved  = "APPROVED"
)

// Record is a single harvest entry against a production cycle. Total weight
// and crate count are derived from the grade weights unless the crate count
// was overridden by the supervisor.
type Record struct {
	ID              int64     `json:"id"`
	FarmID          int64     `json:"farm_id"`
	GreenhouseID    *int64    `json:"greenhouse_id,omitempty"`
	CycleID         int64     `json:"cycle_id"`
	Code            string    `json:"harvest_code"`
	HarvestDate     time.Time `json:"harvest_date"`
	GradeAKg        float64   `json:"grade_a_kg"`
	GradeBKg        float64   `json:"grade_b_kg"`
	GradeCKg        float64   `json:"grade_c_kg"`
	TotalWeightKg   float64   `json:"total_weight_kg"`
	CratesCount     int       `json:"crates_count"`
	CratesOverridden bool     `json:"crates_overridden"`
	Status          string    `json:"status"`
	RecordedBy      string    `json:"recorded_by,omitempty"`
	SubmittedAt     *time.Time `json:"submitted_at,omitempty"`
	ApprovedBy      string    `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Totals aggregates harvest records for a cycle.
type Totals struct {
	CycleID       int64   `json:"cycle_id"`
	Records       int     `json:"records"`
	GradeAKg      float64 `json:"grade_a_kg"`
	GradeBKg      float64 `json:"grade_b_kg"`
	GradeCKg      float64 `json:"grade_c_kg"`
	TotalWeightKg float64 `json:"total_weight_kg"`
	CratesCount   int     `json:"crates_count"`
}
