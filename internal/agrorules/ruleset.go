// Package agrorules centralises the farm business rules that every write
// path shares: date constraints for dependent records, quantity derivations
// from grade and packaging inputs, and FIFO batch selection. All functions
// are pure and perform no I/O; callers supply the entity state.
package agrorules

// Default rule constants observed in production. Deployments override them
// through configuration, not by editing this file.
const (
	DefaultBellPepperMinGrowthDays = 70
	DefaultHarvestMinGrowthDays    = 40
	DefaultAvgCrateCapacityKg      = 9.5
	DefaultPackagingCode           = "1KG_POUCH"
)

// CropBellPepper selects the longer minimum growth window.
const CropBellPepper = "BELL_PEPPER"

// Ruleset carries the configurable business constants.
type Ruleset struct {
	BellPepperMinGrowthDays int
	HarvestMinGrowthDays    int
	AvgCrateCapacityKg      float64
	PackagingWeights        map[string]float64
	DefaultPackaging        string
}

// DefaultRuleset returns the production defaults: 70 days for bell pepper
// cycles, 40 days for generic harvest records, a 9.5 kg average crate
// (midpoint of the 9-10 kg range) and the standard packaging table.
func DefaultRuleset() Ruleset {
	return Ruleset{
		BellPepperMinGrowthDays: DefaultBellPepperMinGrowthDays,
		HarvestMinGrowthDays:    DefaultHarvestMinGrowthDays,
		AvgCrateCapacityKg:      DefaultAvgCrateCapacityKg,
		PackagingWeights: map[string]float64{
			"1KG_POUCH": 1,
			"2KG_POUCH": 2,
			"5KG_PACK":  5,
			"50KG_BAG":  50,
		},
		DefaultPackaging: DefaultPackagingCode,
	}
}

// MinGrowthDays returns the minimum growth window for a crop. Bell pepper
// carries its own longer window; everything else uses the generic harvest
// minimum. The discrepancy is intentional per-crop policy.
func (r Ruleset) MinGrowthDays(crop string) int {
	if IsBellPepper(crop) {
		return r.BellPepperMinGrowthDays
	}
	return r.HarvestMinGrowthDays
}

// IsBellPepper reports whether a free-form crop name means bell pepper.
// Comparison is case and whitespace insensitive.
func IsBellPepper(crop string) bool {
	return normalizeCrop(crop) == CropBellPepper
}
