// Package zones holds the static alarm-zone tables: labeled, colored value
// bands overlaid on charts to flag operating regions of the digester.
package zones

import "fmt"

// Zone is one labeled band of an axis.
type Zone struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Label string  `json:"label"`
	Color string  `json:"color"`
}

// Quantity identifiers charts refer to.
const (
	QuantityPh              = "ph"
	QuantityTankTemperature = "tank_temperature"
	QuantityMethanePercent  = "methane_percent"
)

// Per-quantity bands. For each quantity the bands are contiguous,
// non-overlapping, ascending by Min, and cover the full operationally
// meaningful range. Validate enforces this at startup.
var tables = map[string][]Zone{
	QuantityPh: {
		{Min: 0, Max: 6, Label: "Acidic", Color: "#fca5a5"},
		{Min: 6, Max: 8, Label: "Optimal", Color: "#86efac"},
		{Min: 8, Max: 14, Label: "Alkaline", Color: "#fcd34d"},
	},
	QuantityTankTemperature: {
		{Min: 0, Max: 32, Label: "Cold", Color: "#93c5fd"},
		{Min: 32, Max: 42, Label: "Optimal", Color: "#86efac"},
		{Min: 42, Max: 60, Label: "Hot", Color: "#fca5a5"},
	},
	QuantityMethanePercent: {
		{Min: 0, Max: 45, Label: "Low yield", Color: "#fcd34d"},
		{Min: 45, Max: 65, Label: "Optimal", Color: "#86efac"},
		{Min: 65, Max: 100, Label: "High", Color: "#fca5a5"},
	},
}

// For returns the ordered zone list for a quantity, or false when the
// quantity defines no zones.
func For(quantity string) ([]Zone, bool) {
	z, ok := tables[quantity]
	return z, ok
}

// Classify returns the band a value falls into, matching bands as
// half-open [min, max) except the last, which includes its upper edge.
func Classify(quantity string, value float64) (Zone, bool) {
	table, ok := tables[quantity]
	if !ok {
		return Zone{}, false
	}
	for i, z := range table {
		last := i == len(table)-1
		if value >= z.Min && (value < z.Max || (last && value == z.Max)) {
			return z, true
		}
	}
	return Zone{}, false
}

// Validate checks every table: bands must be ordered ascending by Min,
// contiguous, and non-overlapping.
func Validate() error {
	for quantity, table := range tables {
		if len(table) == 0 {
			return fmt.Errorf("zones: %s has an empty table", quantity)
		}
		for i, z := range table {
			if z.Max <= z.Min {
				return fmt.Errorf("zones: %s band %q has max <= min", quantity, z.Label)
			}
			if i == 0 {
				continue
			}
			if z.Min != table[i-1].Max {
				return fmt.Errorf("zones: %s bands %q and %q are not contiguous", quantity, table[i-1].Label, z.Label)
			}
		}
	}
	return nil
}
