package sites

// SaveRequest covers both create and update. The same web form drives both.
type SaveRequest struct {
	FarmID      int64    `json:"farm_id" validate:"required,gt=0"`
	Code        string   `json:"code" validate:"required,max=32"`
	Name        string   `json:"name" validate:"required,max=255"`
	Type        string   `json:"type" validate:"max=64"`
	Description string   `json:"description"`
	Address     string   `json:"address" validate:"max=500"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	TotalArea   *float64 `json:"total_area" validate:"omitempty,gt=0"`
	AreaUnit    string   `json:"area_unit" validate:"max=16"`
	Notes       string   `json:"notes"`
	IsActive    *bool    `json:"is_active"`
}
