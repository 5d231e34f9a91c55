//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"sbos/internal/audit"
	auditpg "sbos/internal/audit/store/postgres"
	"sbos/internal/platform/postgres"
	"sbos/pkg/testutil/containers"
)

type AuditPostgresSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *auditpg.Store
	ctx   context.Context
}

func TestAuditPostgresSuite(t *testing.T) {
	suite.Run(t, new(AuditPostgresSuite))
}

func (s *AuditPostgresSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.NewPostgresContainer(s.T())
	s.Require().NoError(postgres.Migrate(s.ctx, s.pg.DB, nil))
	s.store = auditpg.New(s.pg.DB)
}

func (s *AuditPostgresSuite) SetupTest() {
	_, err := s.pg.DB.ExecContext(s.ctx, `TRUNCATE txlog, shadowlog`)
	s.Require().NoError(err)
}

func (s *AuditPostgresSuite) TestTransactionsNewestFirst() {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	v := 30.0
	s.Require().NoError(s.store.AppendTransaction(s.ctx, audit.Transaction{
		ID: uuid.New(), Timestamp: ts, Actor: audit.ActorRegulator, InstanceID: "app-1",
		Action: audit.ActionWrite, PointID: "urn:a", PointLabel: "A", Value: &v,
		Decision: audit.Deny, Reason: "range 18-28",
	}))
	s.Require().NoError(s.store.AppendTransaction(s.ctx, audit.Transaction{
		ID: uuid.New(), Timestamp: ts.Add(time.Second), Actor: audit.ActorApp, InstanceID: "app-1",
		Action: audit.ActionRead, PointID: "urn:a", PointLabel: "A",
		Decision: audit.Deny, Reason: "no-cap-read",
	}))

	recent, err := s.store.RecentTransactions(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(recent, 2)
	s.Equal("no-cap-read", recent[0].Reason)
	s.Nil(recent[0].Value)
	s.Require().NotNil(recent[1].Value)
	s.Equal(30.0, *recent[1].Value)
	s.Equal(audit.ActorRegulator, recent[1].Actor)
	s.True(ts.Equal(recent[1].Timestamp))
}

func (s *AuditPostgresSuite) TestShadowStatsOrdering() {
	add := func(label, vtype, reason string) {
		s.Require().NoError(s.store.AppendShadow(s.ctx, audit.ShadowFinding{
			ID: uuid.New(), Timestamp: time.Now().UTC(), InstanceID: "app-1",
			PointID: "urn:" + label, PointLabel: label, Value: 25,
			Class: "Cooling_Setpoint", ValidatorType: vtype, Reason: reason,
		}))
	}
	add("A", "comfort_band", "comfort_band 21-24")
	add("B", "comfort_band", "comfort_band 21-24")
	add("B", "comfort_band", "comfort_band 21-24")

	stats, err := s.store.ShadowStats(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(stats, 2)
	s.Equal("B", stats[0].PointLabel)
	s.Equal(2, stats[0].Count)

	recent, err := s.store.RecentShadow(s.ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(recent, 1)
	s.Equal("B", recent[0].PointLabel)
}
