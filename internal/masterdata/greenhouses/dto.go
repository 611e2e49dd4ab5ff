package greenhouses

// SaveRequest covers both create and update.
type SaveRequest struct {
	FarmID             int64    `json:"farm_id" validate:"required,gt=0"`
	SiteID             *int64   `json:"site_id" validate:"omitempty,gt=0"`
	Code               string   `json:"code" validate:"max=32"`
	Name               string   `json:"name" validate:"required,max=255"`
	SizeSqm            *float64 `json:"size_sqm" validate:"omitempty,gt=0"`
	BuiltDate          string   `json:"built_date" validate:"omitempty,datetime=2006-01-02"`
	ConstructionCost   *float64 `json:"construction_cost" validate:"omitempty,gte=0"`
	AmortizationCycles *int     `json:"amortization_cycles" validate:"omitempty,gt=0"`
	Notes              string   `json:"notes"`
	IsActive           *bool    `json:"is_active"`
}
