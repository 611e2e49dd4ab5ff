package sales

import (
	"time"

	"github.com/farmdeck-erp/farmdeck-erp/internal/agrorules"
)

// Payment statuses.
const (
	PaymentPaid    = "PAID"
	PaymentPartial = "PARTIAL"
	PaymentUnpaid  = "UNPAID"
)

// BulkPackaging is the synthetic option offered when a batch has no packaged
// inventory rows and sells straight from the heap.
const BulkPackaging = "BULK"

// Sale is a recorded gari sale against a production batch. Quantity, cost and
// margin figures are all derived server side.
type Sale struct {
	ID              int64     `json:"id"`
	FarmID          int64     `json:"farm_id"`
	BatchID         int64     `json:"batch_id"`
	Code            string    `json:"sale_code"`
	SaleDate        time.Time `json:"sale_date"`
	CustomerName    string    `json:"customer_name"`
	CustomerContact string    `json:"customer_contact,omitempty"`
	GariType        string    `json:"gari_type"`
	GariGrade       string    `json:"gari_grade,omitempty"`
	PackagingType   string    `json:"packaging_type"`
	QuantityKg      float64   `json:"quantity_kg"`
	QuantityUnits   int       `json:"quantity_units,omitempty"`
	UnitPrice       float64   `json:"unit_price"`
	TotalAmount     float64   `json:"total_amount"`
	Discount        float64   `json:"discount"`
	FinalAmount     float64   `json:"final_amount"`
	CostPerKg       float64   `json:"cost_per_kg"`
	TotalCost       float64   `json:"total_cost"`
	GrossMargin     float64   `json:"gross_margin"`
	GrossMarginPct  float64   `json:"gross_margin_percent"`
	PaymentMethod   string    `json:"payment_method,omitempty"`
	PaymentStatus   string    `json:"payment_status"`
	AmountPaid      float64   `json:"amount_paid"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// AvailabilityResponse is the sale-form bootstrap payload: FIFO-ordered
// available batches, the preselected oldest batch, and the field defaults
// projected from it.
type AvailabilityResponse struct {
	Batches []agrorules.Batch      `json:"batches"`
	Default *agrorules.Batch       `json:"default_batch,omitempty"`
	Fields  *agrorules.BatchFields `json:"fields,omitempty"`
}
