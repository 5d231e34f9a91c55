package policy_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"sbos/internal/policy"
	"sbos/internal/policy/store/memory"
	dErrors "sbos/pkg/domain-errors"
)

const testPolicy = `
constraints:
  energy_budget_watts: 5000
  comfort_min: 21
  comfort_max: 24
guards:
  Cooling_Setpoint: {min: 18, max: 28, max_step: 3}
validators:
  defaults:
    Cooling_Setpoint:
      - type: range
      - type: rate
    Heating_Setpoint:
      - type: range
shadow_validators:
  defaults:
    Cooling_Setpoint:
      - type: comfort_band
    Zone_Air_Temperature_Setpoint:
      - type: comfort_band
      - type: energy_budget
monitor:
  window_seconds: 10
  threshold_count: 5
  actions:
    - {type: reset_points, match: Cool_SP}
    - {type: revoke_capabilities}
`

type EngineSuite struct {
	suite.Suite
	store  *memory.Store
	engine *policy.Engine
	doc    policy.Document
	ctx    context.Context
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.New()
	var err error
	s.engine, err = policy.NewEngine(s.store)
	s.Require().NoError(err)
	s.doc, err = policy.ParseDocument([]byte(testPolicy))
	s.Require().NoError(err)
	s.Require().NoError(s.engine.Apply(s.ctx, s.doc))
}

func (s *EngineSuite) TestChainsByLocalName() {
	chain, err := s.engine.Enforced(s.ctx, "https://brickschema.org/schema/Brick#Cooling_Setpoint")
	s.Require().NoError(err)
	s.Equal([]policy.ValidatorType{policy.Range, policy.Rate}, chain)

	shadow, err := s.engine.Shadow(s.ctx, "brick:Cooling_Setpoint")
	s.Require().NoError(err)
	s.Equal([]policy.ValidatorType{policy.ComfortBand}, shadow)

	empty, err := s.engine.Enforced(s.ctx, "")
	s.Require().NoError(err)
	s.Empty(empty)
}

func (s *EngineSuite) TestEvaluateUsesAppliedGuards() {
	ok, reason := s.engine.Evaluate(policy.Range, policy.Input{Class: "brick:Cooling_Setpoint", Value: 30})
	s.False(ok)
	s.Contains(reason, "range")

	ok, reason = s.engine.Evaluate(policy.ComfortBand, policy.Input{Value: 25})
	s.False(ok)
	s.Equal("comfort_band 21-24", reason)
}

func (s *EngineSuite) TestReapplyIsIdempotent() {
	s.Require().NoError(s.engine.Apply(s.ctx, s.doc))
	s.Require().NoError(s.engine.Apply(s.ctx, s.doc))
	chain, err := s.engine.Enforced(s.ctx, "Cooling_Setpoint")
	s.Require().NoError(err)
	s.Equal([]policy.ValidatorType{policy.Range, policy.Rate}, chain)
	s.Equal([]int{0, 1}, s.store.EnforcedPositions("Cooling_Setpoint"))
}

func (s *EngineSuite) TestReapplyDropsPromotions() {
	_, err := s.engine.Promote(s.ctx, "Cooling_Setpoint")
	s.Require().NoError(err)
	s.Require().NoError(s.engine.Apply(s.ctx, s.doc))
	chain, _ := s.engine.Enforced(s.ctx, "Cooling_Setpoint")
	s.Len(chain, 2)
}

func (s *EngineSuite) TestPromote() {
	s.Run("appends after existing enforced entries", func() {
		promoted, err := s.engine.Promote(s.ctx, "Cooling_Setpoint")
		s.Require().NoError(err)
		s.Equal([]policy.ValidatorType{policy.ComfortBand}, promoted)

		chain, err := s.engine.Enforced(s.ctx, "Cooling_Setpoint")
		s.Require().NoError(err)
		s.Equal([]policy.ValidatorType{policy.Range, policy.Rate, policy.ComfortBand}, chain)
		s.Equal([]int{0, 1, 2}, s.store.EnforcedPositions("Cooling_Setpoint"))
	})

	s.Run("empty enforced chain starts at position zero in shadow order", func() {
		promoted, err := s.engine.Promote(s.ctx, "Zone_Air_Temperature_Setpoint")
		s.Require().NoError(err)
		s.Equal([]policy.ValidatorType{policy.ComfortBand, policy.EnergyBudget}, promoted)
		s.Equal([]int{0, 1}, s.store.EnforcedPositions("Zone_Air_Temperature_Setpoint"))
	})

	s.Run("no shadow entries fails", func() {
		_, err := s.engine.Promote(s.ctx, "Heating_Setpoint")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *EngineSuite) TestMonitorSpec() {
	m := s.engine.Monitor()
	s.Equal(5, m.Threshold())
	s.Equal(20.0, m.Min())
	s.Equal(22.0, m.Reset())
	s.Len(m.Actions, 2)
	class, label := m.Selectors()
	s.Empty(class)
	s.Equal("Cool_SP", label)
}

func (s *EngineSuite) TestParseRejectsUnknownTypes() {
	_, err := policy.ParseDocument([]byte("validators:\n  defaults:\n    X:\n      - type: allow_all\n"))
	s.Error(err)

	_, err = policy.ParseDocument([]byte("monitor:\n  actions:\n    - type: reboot\n"))
	s.Error(err)

	_, err = policy.ParseDocument([]byte("guards:\n  X: {min: 30, max: 10}\n"))
	s.Error(err)
}
