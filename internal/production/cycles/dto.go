package cycles

// CreateRequest starts a new production cycle in PLANNED status.
type CreateRequest struct {
	FarmID          int64    `json:"farm_id" validate:"required,gt=0"`
	SiteID          *int64   `json:"site_id" validate:"omitempty,gt=0"`
	GreenhouseID    *int64   `json:"greenhouse_id" validate:"omitempty,gt=0"`
	Crop            string   `json:"crop" validate:"required,max=64"`
	Variety         string   `json:"variety" validate:"max=128"`
	StartDate       string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	PlantingDate    string   `json:"planting_date" validate:"omitempty,datetime=2006-01-02"`
	ExpectedEndDate string   `json:"expected_end_date" validate:"omitempty,datetime=2006-01-02"`
	ExpectedYieldKg *float64 `json:"expected_yield_kg" validate:"omitempty,gt=0"`
	Notes           string   `json:"notes"`
}

// UpdateRequest edits a cycle that has not reached a terminal status.
type UpdateRequest struct {
	Variety         string   `json:"variety" validate:"max=128"`
	PlantingDate    string   `json:"planting_date" validate:"omitempty,datetime=2006-01-02"`
	ExpectedEndDate string   `json:"expected_end_date" validate:"omitempty,datetime=2006-01-02"`
	ExpectedYieldKg *float64 `json:"expected_yield_kg" validate:"omitempty,gt=0"`
	Notes           string   `json:"notes"`
}

// TransitionRequest moves a cycle to a new status. COMPLETED requires the
// actual yield so variance can be computed.
type TransitionRequest struct {
	Status        string   `json:"status" validate:"required"`
	ActualEndDate string   `json:"actual_end_date" validate:"omitempty,datetime=2006-01-02"`
	ActualYieldKg *float64 `json:"actual_yield_kg" validate:"omitempty,gte=0"`
}

// EligibilityResponse answers the harvest date check for a cycle.
type EligibilityResponse struct {
	Valid          bool   `json:"valid"`
	DaysDifference int    `json:"days_difference"`
	MinimumDate    string `json:"minimum_date"`
	MaximumDate    string `json:"maximum_date"`
	MinGrowthDays  int    `json:"min_growth_days"`
	Reason         string `json:"reason,omitempty"`
}
