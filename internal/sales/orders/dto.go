package orders

// LineRequest is one order line in a create/update payload. LineTotal is
// always derived server side as quantity * unit price.
type LineRequest struct {
	Product    string  `json:"product" validate:"required,max=128"`
	Grade      string  `json:"grade" validate:"max=16"`
	QuantityKg float64 `json:"quantity_kg" validate:"required,gt=0"`
	UnitPrice  float64 `json:"unit_price" validate:"required,gte=0"`
}

// CreateRequest opens a draft order with at least one line.
type CreateRequest struct {
	FarmID     int64         `json:"farm_id" validate:"required,gt=0"`
	CustomerID int64         `json:"customer_id" validate:"required,gt=0"`
	OrderDate  string        `json:"order_date" validate:"required,datetime=2006-01-02"`
	Notes      string        `json:"notes"`
	Lines      []LineRequest `json:"lines" validate:"required,min=1,dive"`
}
