package boreholes

import "time"

// Borehole is a water source installed on a farm. Installation cost is
// amortised the same way greenhouse construction is.
type Borehole struct {
	ID                 int64      `json:"id"`
	FarmID             int64      `json:"farm_id"`
	SiteID             *int64     `json:"site_id,omitempty"`
	Code               string     `json:"code,omitempty"`
	Name               string     `json:"name"`
	InstalledDate      *time.Time `json:"installed_date,omitempty"`
	InstallationCost   *float64   `json:"installation_cost,omitempty"`
	AmortizationCycles *int       `json:"amortization_cycles,omitempty"`
	Specifications     string     `json:"specifications,omitempty"`
	Notes              string     `json:"notes,omitempty"`
	IsActive           bool       `json:"is_active"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// SaveRequest covers both create and update.
type SaveRequest struct {
	FarmID             int64    `json:"farm_id" validate:"required,gt=0"`
	SiteID             *int64   `json:"site_id" validate:"omitempty,gt=0"`
	Code               string   `json:"code" validate:"max=32"`
	Name               string   `json:"name" validate:"required,max=255"`
	InstalledDate      string   `json:"installed_date" validate:"omitempty,datetime=2006-01-02"`
	InstallationCost   *float64 `json:"installation_cost" validate:"omitempty,gte=0"`
	AmortizationCycles *int     `json:"amortization_cycles" validate:"omitempty,gt=0"`
	Specifications     string   `json:"specifications"`
	Notes              string   `json:"notes"`
	IsActive           *bool    `json:"is_active"`
}
