package harvests

// SaveRequest covers create and draft edits. Grade weights must be
// non-negative, the derivation layer itself is permissive but the API is not.
// CratesCount, when present, overrides the derived ceil(total / capacity).
type SaveRequest struct {
	FarmID      int64    `json:"farm_id" validate:"required,gt=0"`
	CycleID     int64    `json:"cycle_id" validate:"required,gt=0"`
	HarvestDate string   `json:"harvest_date" validate:"required,datetime=2006-01-02"`
	GradeAKg    *float64 `json:"grade_a_kg" validate:"omitempty,gte=0"`
	GradeBKg    *float64 `json:"grade_b_kg" validate:"omitempty,gte=0"`
	GradeCKg    *float64 `json:"grade_c_kg" validate:"omitempty,gte=0"`
	CratesCount *int     `json:"crates_count" validate:"omitempty,gte=0"`
	RecordedBy  string   `json:"recorded_by" validate:"omitempty,max=255"`
	Notes       string   `json:"notes"`
	// AllowPlanned permits recording against a PLANNED cycle, for farms
	// that log the first pick before the cycle is formally activated.
	AllowPlanned bool `json:"allow_planned"`
}

// ApproveRequest is the optional body on the approve endpoint.
type ApproveRequest struct {
	ApprovedBy string `json:"approved_by" validate:"omitempty,max=255"`
}
