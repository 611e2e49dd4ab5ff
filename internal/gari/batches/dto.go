package batches

// SaveRequest covers create and edits while a batch is still PROCESSING.
type SaveRequest struct {
	FarmID            int64   `json:"farm_id" validate:"required,gt=0"`
	ProcessingDate    string  `json:"processing_date" validate:"required,datetime=2006-01-02"`
	CassavaSource     string  `json:"cassava_source" validate:"max=255"`
	CassavaQuantityKg float64 `json:"cassava_quantity_kg" validate:"required,gt=0"`
	CassavaCostPerKg  float64 `json:"cassava_cost_per_kg" validate:"gte=0"`
	GariProducedKg    float64 `json:"gari_produced_kg" validate:"gte=0"`
	GariType          string  `json:"gari_type" validate:"required,max=64"`
	GariGrade         string  `json:"gari_grade" validate:"max=16"`
	LabourCost        float64 `json:"labour_cost" validate:"gte=0"`
	FuelCost          float64 `json:"fuel_cost" validate:"gte=0"`
	EquipmentCost     float64 `json:"equipment_cost" validate:"gte=0"`
	WaterCost         float64 `json:"water_cost" validate:"gte=0"`
	TransportCost     float64 `json:"transport_cost" validate:"gte=0"`
	OtherCosts        float64 `json:"other_costs" validate:"gte=0"`
	WasteKg           float64 `json:"waste_kg" validate:"gte=0"`
	Notes             string  `json:"notes"`
}
