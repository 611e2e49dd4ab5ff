package farms

import "time"

// Farm statuses.
const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
)

// Farm is the top level tenant of the platform. Sites, greenhouses and
// boreholes all hang off a farm.
type Farm struct {
	ID              int64     `json:"id"`
	Code            string    `json:"farm_code"`
	Name            string    `json:"name"`
	LegalName       string    `json:"legal_name,omitempty"`
	FarmType        string    `json:"farm_type,omitempty"`
	Country         string    `json:"country,omitempty"`
	State           string    `json:"state,omitempty"`
	Town            string    `json:"town,omitempty"`
	DefaultCurrency string    `json:"default_currency,omitempty"`
	DefaultTimezone string    `json:"default_timezone,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
