package sites

import "time"

// Site types recognised by the platform. Arbitrary values are allowed, these
// are just the ones the web client offers.
const (
	TypeOpenField  = "OPEN_FIELD"
	TypeGreenhouse = "GREENHOUSE"
	TypeProcessing = "PROCESSING"
	TypeWarehouse  = "WAREHOUSE"
)

// Site is a physical location belonging to a farm.
type Site struct {
	ID          int64     `json:"id"`
	FarmID      int64     `json:"farm_id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Type        string    `json:"type,omitempty"`
	Description string    `json:"description,omitempty"`
	Address     string    `json:"address,omitempty"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	TotalArea   *float64  `json:"total_area,omitempty"`
	AreaUnit    string    `json:"area_unit,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
