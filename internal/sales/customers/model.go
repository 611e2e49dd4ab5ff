package customers

import "time"

// Customer types.
const (
	TypeRetail      = "RETAIL"
	TypeBulkBuyer   = "BULK_BUYER"
	TypeDistributor = "DISTRIBUTOR"
	TypeCatering    = "CATERING"
	TypeHotel       = "HOTEL"
	TypeOther       = "OTHER"
)

// Customer buys fresh produce or processed goods from the farm.
type Customer struct {
	ID           int64     `json:"id"`
	Code         string    `json:"customer_code"`
	Name         string    `json:"name"`
	CustomerType string    `json:"customer_type"`
	Phone        string    `json:"phone,omitempty"`
	Email        string    `json:"email,omitempty"`
	Address      string    `json:"address,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SaveRequest covers create and update.
type SaveRequest struct {
	Name         string `json:"name" validate:"required,max=255"`
	CustomerType string `json:"customer_type" validate:"omitempty,oneof=RETAIL BULK_BUYER DISTRIBUTOR CATERING HOTEL OTHER"`
	Phone        string `json:"phone" validate:"max=32"`
	Email        string `json:"email" validate:"omitempty,email,max=255"`
	Address      string `json:"address" validate:"max=500"`
	Notes        string `json:"notes"`
	IsActive     *bool  `json:"is_active"`
}
