package orders

import "time"

// Sales order statuses.
const (
	StatusDraft     = "DRAFT"
	StatusConfirmed = "CONFIRMED"
	StatusDelivered = "DELIVERED"
	StatusCancelled = "CANCELLED"
)

// SalesOrder is an order of fresh produce for a customer. Totals are derived
// from the lines, never taken from the client.
type SalesOrder struct {
	ID          int64       `json:"id"`
	FarmID      int64       `json:"farm_id"`
	CustomerID  int64       `json:"customer_id"`
	OrderNumber string      `json:"order_number"`
	Status      string      `json:"status"`
	OrderDate   time.Time   `json:"order_date"`
	TotalAmount float64     `json:"total_amount"`
	Notes       string      `json:"notes,omitempty"`
	Lines       []OrderLine `json:"lines,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// OrderLine is one product position on an order.
type OrderLine struct {
	ID          int64   `json:"id"`
	OrderID     int64   `json:"order_id"`
	Product     string  `json:"product"`
	Grade       string  `json:"grade,omitempty"`
	QuantityKg  float64 `json:"quantity_kg"`
	UnitPrice   float64 `json:"unit_price"`
	LineTotal   float64 `json:"line_total"`
}

// KPI is the sales dashboard summary.
type KPI struct {
	TotalOrders     int     `json:"total_orders"`
	ConfirmedOrders int     `json:"confirmed_orders"`
	TotalRevenue    float64 `json:"total_revenue"`
	TotalQuantityKg float64 `json:"total_quantity_kg"`
}
