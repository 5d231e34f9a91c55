package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(f float64) *float64 { return &f }

func testEnv() *Env {
	c, _ := ConstraintsFrom(map[string]any{
		KeyEnergyBudgetWatts:    300,
		KeyEnergyPerDegreeWatts: 150,
		KeyMinCoolSetpoint:      20,
	})
	return &Env{
		Guards: map[string]Guard{
			"Cooling_Setpoint": {Min: ptr(18), Max: ptr(28), MaxStep: ptr(2)},
		},
		Constraints: c,
	}
}

func TestRangeValidator(t *testing.T) {
	env := testEnv()
	cases := []struct {
		name   string
		in     Input
		ok     bool
		reason string
	}{
		{"inside", Input{Class: "brick:Cooling_Setpoint", Value: 23}, true, "ok"},
		{"bounds inclusive", Input{Class: "Cooling_Setpoint", Value: 28}, true, "ok"},
		{"above", Input{Class: "https://brickschema.org/schema/Brick#Cooling_Setpoint", Value: 30}, false, "range 18-28"},
		{"below", Input{Class: "Cooling_Setpoint", Value: 17.5}, false, "range 18-28"},
		{"unconfigured class", Input{Class: "Heating_Setpoint", Value: 99}, true, "no-range"},
		{"empty class", Input{Value: 99}, true, "no-range"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, reason := checkRange(env, tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.reason, reason)
		})
	}
}

func TestRateValidator(t *testing.T) {
	env := testEnv()
	ok, reason := checkRate(env, Input{Class: "Cooling_Setpoint", Value: 25})
	assert.True(t, ok)
	assert.Equal(t, "no-rate", reason, "no previous value")

	ok, _ = checkRate(env, Input{Class: "Cooling_Setpoint", Value: 24, Previous: ptr(22)})
	assert.True(t, ok, "step equal to max is allowed")

	ok, reason = checkRate(env, Input{Class: "Cooling_Setpoint", Value: 19, Previous: ptr(22)})
	assert.False(t, ok)
	assert.Equal(t, "step>2", reason)

	ok, reason = checkRate(env, Input{Class: "Zone_Air_Temperature_Setpoint", Value: 0, Previous: ptr(50)})
	assert.True(t, ok)
	assert.Equal(t, "no-rate", reason)
}

func TestEnergyBudgetValidator(t *testing.T) {
	env := testEnv()

	ok, _ := checkEnergyBudget(env, Input{Class: "Cooling_Setpoint", Label: "F1_Cool_SP", Value: 18})
	assert.True(t, ok, "2 degrees * 150W = 300W fits the budget")

	ok, reason := checkEnergyBudget(env, Input{Class: "Cooling_Setpoint", Label: "F1_Cool_SP", Value: 17.9})
	assert.False(t, ok)
	assert.Equal(t, "energy_budget", reason)

	ok, _ = checkEnergyBudget(env, Input{Class: "", Label: "F2_ZoneB_Cool_SP", Value: 10})
	assert.False(t, ok, "label match also selects cooling points")

	ok, _ = checkEnergyBudget(env, Input{Class: "Heating_Setpoint", Label: "F1_Heat_SP", Value: 5})
	assert.True(t, ok, "non-cooling points are ignored")

	ok, _ = checkEnergyBudget(env, Input{Class: "Cooling_Setpoint", Value: 25})
	assert.True(t, ok)
}

func TestComfortBandValidator(t *testing.T) {
	env := &Env{Constraints: Constraints{}}
	ok, _ := checkComfortBand(env, Input{Value: 22})
	assert.True(t, ok)

	ok, reason := checkComfortBand(env, Input{Value: 25})
	assert.False(t, ok)
	assert.Equal(t, "comfort_band 21-24", reason)

	c, _ := ConstraintsFrom(map[string]any{KeyComfortMin: 20.5, KeyComfortMax: 23})
	ok, reason = checkComfortBand(&Env{Constraints: c}, Input{Value: 20})
	assert.False(t, ok)
	assert.Equal(t, "comfort_band 20.5-23", reason)
}

func TestParseValidatorType(t *testing.T) {
	for _, vt := range Types() {
		got, err := ParseValidatorType(string(vt))
		assert.NoError(t, err)
		assert.Equal(t, vt, got)
	}
	_, err := ParseValidatorType("always_allow")
	assert.Error(t, err)
}

func TestConstraintsAccessors(t *testing.T) {
	c, err := ConstraintsFrom(map[string]any{"n": 12.5, "s": "x", "bad": []int{1}})
	assert.NoError(t, err)
	assert.Equal(t, 12.5, c.Float("n", 0))
	assert.Equal(t, 7.0, c.Float("missing", 7))
	assert.Equal(t, 7.0, c.Float("s", 7))
	assert.Equal(t, "x", c.String("s", ""))
	assert.Equal(t, "d", c.String("bad", "d"))
}
