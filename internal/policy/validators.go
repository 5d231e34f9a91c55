package policy

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"sbos/internal/oracle"
)

// ValidatorType tags one entry of the closed validator registry.
type ValidatorType string

const (
	Range        ValidatorType = "range"
	Rate         ValidatorType = "rate"
	EnergyBudget ValidatorType = "energy_budget"
	ComfortBand  ValidatorType = "comfort_band"
)

// ParseValidatorType rejects tags outside the registry.
func ParseValidatorType(s string) (ValidatorType, error) {
	t := ValidatorType(strings.TrimSpace(s))
	if _, ok := registry[t]; !ok {
		return "", fmt.Errorf("unknown validator type %q", s)
	}
	return t, nil
}

// Input is what every validator sees for one write.
type Input struct {
	Class    string
	Label    string
	Value    float64
	Previous *float64
}

// Func accepts or rejects a write and always returns a reason.
type Func func(env *Env, in Input) (bool, string)

var registry = map[ValidatorType]Func{
	Range:        checkRange,
	Rate:         checkRate,
	EnergyBudget: checkEnergyBudget,
	ComfortBand:  checkComfortBand,
}

// Types lists the registry in a stable order.
func Types() []ValidatorType {
	return []ValidatorType{Range, Rate, EnergyBudget, ComfortBand}
}

func checkRange(env *Env, in Input) (bool, string) {
	g, ok := env.guard(in.Class)
	if !ok || g.Min == nil || g.Max == nil {
		return true, "no-range"
	}
	if in.Value < *g.Min || in.Value > *g.Max {
		return false, "range " + num(*g.Min) + "-" + num(*g.Max)
	}
	return true, "ok"
}

func checkRate(env *Env, in Input) (bool, string) {
	g, ok := env.guard(in.Class)
	if !ok || g.MaxStep == nil || in.Previous == nil {
		return true, "no-rate"
	}
	if math.Abs(in.Value-*in.Previous) > *g.MaxStep {
		return false, "step>" + num(*g.MaxStep)
	}
	return true, "ok"
}

func checkEnergyBudget(env *Env, in Input) (bool, string) {
	c := env.Constraints
	if !env.isCooling(in) {
		return true, "ok"
	}
	minCool := c.Float(KeyMinCoolSetpoint, DefaultMinCoolSetpoint)
	if in.Value >= minCool {
		return true, "ok"
	}
	need := (minCool - in.Value) * c.Float(KeyEnergyPerDegreeWatts, DefaultEnergyPerDegreeWatts)
	if need > c.Float(KeyEnergyBudgetWatts, DefaultEnergyBudgetWatts) {
		return false, "energy_budget"
	}
	return true, "ok"
}

func checkComfortBand(env *Env, in Input) (bool, string) {
	lo := env.Constraints.Float(KeyComfortMin, DefaultComfortMin)
	hi := env.Constraints.Float(KeyComfortMax, DefaultComfortMax)
	if in.Value < lo || in.Value > hi {
		return false, "comfort_band " + num(lo) + "-" + num(hi)
	}
	return true, "ok"
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Env is the policy snapshot validators read. It is replaced wholesale on
// reload and never mutated in place.
type Env struct {
	Guards      map[string]Guard
	Constraints Constraints
}

func (e *Env) guard(class string) (Guard, bool) {
	g, ok := e.Guards[oracle.LocalName(class)]
	return g, ok
}

func (e *Env) isCooling(in Input) bool {
	classMatch := e.Constraints.String(KeyEnergyClassMatch, DefaultEnergyClassMatch)
	labelMatch := e.Constraints.String(KeyEnergyLabelMatch, DefaultEnergyLabelMatch)
	if classMatch != "" && strings.Contains(oracle.LocalName(in.Class), classMatch) {
		return true
	}
	return labelMatch != "" && strings.Contains(in.Label, labelMatch)
}
