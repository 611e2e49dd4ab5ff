package sales

// CreateRequest records a sale against a batch. Either quantity_kg or
// quantity_units must be present; when only units are given the kilograms are
// derived from the packaging weight table. Type, grade and cost fields are
// auto-populated from the selected batch.
type CreateRequest struct {
	FarmID          int64    `json:"farm_id" validate:"required,gt=0"`
	BatchID         int64    `json:"batch_id" validate:"required,gt=0"`
	SaleDate        string   `json:"sale_date" validate:"required,datetime=2006-01-02"`
	CustomerName    string   `json:"customer_name" validate:"required,max=255"`
	CustomerContact string   `json:"customer_contact" validate:"max=64"`
	PackagingType   string   `json:"packaging_type" validate:"max=32"`
	QuantityKg      *float64 `json:"quantity_kg" validate:"omitempty,gt=0"`
	QuantityUnits   *int     `json:"quantity_units" validate:"omitempty,gt=0"`
	UnitPrice       float64  `json:"unit_price" validate:"required,gt=0"`
	Discount        float64  `json:"discount" validate:"gte=0"`
	PaymentMethod   string   `json:"payment_method" validate:"max=32"`
	AmountPaid      *float64 `json:"amount_paid" validate:"omitempty,gte=0"`
	Notes           string   `json:"notes"`

	// IdempotencyKey dedupes retried submissions of the same sale.
	IdempotencyKey string `json:"idempotency_key" validate:"max=64"`
}
