package farms

// CreateRequest is the payload for registering a farm.
type CreateRequest struct {
	Code            string `json:"farm_code" validate:"required,max=32"`
	Name            string `json:"name" validate:"required,max=255"`
	LegalName       string `json:"legal_name" validate:"max=255"`
	FarmType        string `json:"farm_type" validate:"max=64"`
	Country         string `json:"country" validate:"max=64"`
	State           string `json:"state" validate:"max=64"`
	Town            string `json:"town" validate:"max=64"`
	DefaultCurrency string `json:"default_currency" validate:"max=8"`
	DefaultTimezone string `json:"default_timezone" validate:"max=64"`
}

// UpdateRequest is the payload for editing a farm. Code is immutable once
// assigned, so it is absent here.
type UpdateRequest struct {
	Name            string `json:"name" validate:"required,max=255"`
	LegalName       string `json:"legal_name" validate:"max=255"`
	FarmType        string `json:"farm_type" validate:"max=64"`
	Country         string `json:"country" validate:"max=64"`
	State           string `json:"state" validate:"max=64"`
	Town            string `json:"town" validate:"max=64"`
	DefaultCurrency string `json:"default_currency" validate:"max=8"`
	DefaultTimezone string `json:"default_timezone" validate:"max=64"`
	Status          string `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
}
