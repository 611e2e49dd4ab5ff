package batches

import "time"

// Batch statuses. Costs can be edited while PROCESSING; a COMPLETED batch is
// sellable and its numbers are frozen.
const (
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
)

// Batch is one gari processing run: cassava in, gari out, with the full cost
// breakdown. All derived fields are computed server side.
type Batch struct {
	ID                int64     `json:"id"`
	FarmID            int64     `json:"farm_id"`
	Code              string    `json:"batch_code"`
	ProcessingDate    time.Time `json:"processing_date"`
	CassavaSource     string    `json:"cassava_source,omitempty"`
	CassavaQuantityKg float64   `json:"cassava_quantity_kg"`
	CassavaCostPerKg  float64   `json:"cassava_cost_per_kg"`
	TotalCassavaCost  float64   `json:"total_cassava_cost"`
	GariProducedKg    float64   `json:"gari_produced_kg"`
	GariType          string    `json:"gari_type"`
	GariGrade         string    `json:"gari_grade"`
	YieldPercent      float64   `json:"conversion_yield_percent"`
	LabourCost        float64   `json:"labour_cost"`
	FuelCost          float64   `json:"fuel_cost"`
	EquipmentCost     float64   `json:"equipment_cost"`
	WaterCost         float64   `json:"water_cost"`
	TransportCost     float64   `json:"transport_cost"`
	OtherCosts        float64   `json:"other_costs"`
	TotalProcessingCost float64 `json:"total_processing_cost"`
	WasteKg           float64   `json:"waste_kg"`
	WastePercent      float64   `json:"waste_percent"`
	TotalCost         float64   `json:"total_cost"`
	CostPerKgGari     float64   `json:"cost_per_kg_gari"`
	Notes             string    `json:"notes,omitempty"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// deriveCosts fills every computed field from the raw inputs.
func (b *Batch) deriveCosts() {
	b.TotalCassavaCost = b.CassavaQuantityKg * b.CassavaCostPerKg
	b.TotalProcessingCost = b.LabourCost + b.FuelCost + b.EquipmentCost +
		b.WaterCost + b.TransportCost + b.OtherCosts
	b.TotalCost = b.TotalCassavaCost + b.TotalProcessingCost

	if b.CassavaQuantityKg > 0 {
		b.YieldPercent = b.GariProducedKg / b.CassavaQuantityKg * 100
		b.WastePercent = b.WasteKg / b.CassavaQuantityKg * 100
	} else {
		b.YieldPercent = 0
		b.WastePercent = 0
	}
	if b.GariProducedKg > 0 {
		b.CostPerKgGari = b.TotalCost / b.GariProducedKg
	} else {
		b.CostPerKgGari = 0
	}
}
