package policy

import (
	"encoding/json"
	"maps"
)

// Constraint keys and their defaults.
const (
	KeyEnergyBudgetWatts    = "energy_budget_watts"
	KeyEnergyPerDegreeWatts = "energy_per_degree_watts"
	KeyMinCoolSetpoint      = "min_cool_setpoint"
	KeyComfortMin           = "comfort_min"
	KeyComfortMax           = "comfort_max"
	KeyEnergyClassMatch     = "energy_class_match"
	KeyEnergyLabelMatch     = "energy_label_match"

	DefaultEnergyBudgetWatts    = 5000.0
	DefaultEnergyPerDegreeWatts = 150.0
	DefaultMinCoolSetpoint      = 20.0
	DefaultComfortMin           = 21.0
	DefaultComfortMax           = 24.0
	DefaultEnergyClassMatch     = "Cooling_Setpoint"
	DefaultEnergyLabelMatch     = "Cool_SP"
)

// Constraints is the flat key -> JSON value policy table.
type Constraints map[string]json.RawMessage

// ConstraintsFrom encodes decoded YAML values.
func ConstraintsFrom(values map[string]any) (Constraints, error) {
	out := make(Constraints, len(values))
	for k, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		out[k] = raw
	}
	return out, nil
}

// Float returns a numeric constraint or def when absent or not a number.
func (c Constraints) Float(key string, def float64) float64 {
	raw, ok := c[key]
	if !ok {
		return def
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return def
	}
	return f
}

// String returns a string constraint or def when absent or not a string.
func (c Constraints) String(key, def string) string {
	raw, ok := c[key]
	if !ok {
		return def
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return def
	}
	return s
}

// Clone returns an independent copy.
func (c Constraints) Clone() Constraints {
	return maps.Clone(c)
}
