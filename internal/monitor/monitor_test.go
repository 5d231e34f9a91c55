package monitor_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"sbos/internal/monitor"
	"sbos/internal/monitor/metrics"
	"sbos/internal/policy"
	"sbos/internal/proxy"
	"sbos/internal/proxy/timeseries"
)

type stubDirectory map[string]string

func (d stubDirectory) ResolveLabel(label string) (string, bool) {
	_, ok := d[label]
	return "urn:" + label, ok
}

func (d stubDirectory) ResolveClass(id string) string {
	return d[id[len("urn:"):]]
}

type stubInstances struct {
	revoked atomic.Int32
	stopped atomic.Int32
}

func (s *stubInstances) RevokeAllWrites(context.Context) int {
	s.revoked.Add(1)
	return 2
}

func (s *stubInstances) StopAll(context.Context) int {
	s.stopped.Add(1)
	return 2
}

type fixedSettings struct{ spec policy.MonitorSpec }

func (f *fixedSettings) Monitor() policy.MonitorSpec { return f.spec }

func ptr(f float64) *float64 { return &f }

type MonitorSuite struct {
	suite.Suite
	ctx       context.Context
	series    *timeseries.Memory
	proxy     *proxy.Proxy
	instances *stubInstances
	settings  *fixedSettings
	metrics   *metrics.Metrics
	monitor   *monitor.Monitor
}

func TestMonitorSuite(t *testing.T) {
	suite.Run(t, new(MonitorSuite))
}

func (s *MonitorSuite) SetupTest() {
	s.ctx = context.Background()
	s.series = timeseries.NewMemory()
	s.proxy = proxy.New(map[string]float64{
		"F1_ZoneA_Cool_SP": 18,
		"F1_ZoneB_Cool_SP": 19,
		"F2_ZoneA_Cool_SP": 17.5,
		"F1_ZoneA_Heat_SP": 15,
	}, proxy.WithRecorder(s.series))
	s.instances = &stubInstances{}
	s.settings = &fixedSettings{spec: policy.MonitorSpec{
		WindowSeconds:  10,
		ThresholdCount: 5,
		CoolingMin:     ptr(20),
		CoolingReset:   ptr(22),
		Actions: []policy.ActionSpec{
			{Type: policy.ActionResetPoints, Match: "Cool_SP"},
			{Type: policy.ActionRevokeCapabilities},
		},
	}}
	dir := stubDirectory{
		"F1_ZoneA_Cool_SP": "brick:Cooling_Setpoint",
		"F1_ZoneB_Cool_SP": "brick:Cooling_Setpoint",
		"F2_ZoneA_Cool_SP": "brick:Cooling_Setpoint",
		"F1_ZoneA_Heat_SP": "brick:Heating_Setpoint",
	}
	s.metrics = metrics.New(prometheus.NewRegistry())
	var err error
	s.monitor, err = monitor.New(s.proxy, dir, s.instances, s.settings,
		monitor.WithTick(time.Millisecond),
		monitor.WithMetrics(s.metrics),
	)
	s.Require().NoError(err)
}

func (s *MonitorSuite) resets(label string) int {
	n := 0
	for _, sample := range s.series.Samples(label) {
		if sample.Source == proxy.SourceReset {
			n++
		}
	}
	return n
}

func (s *MonitorSuite) TestWindowAboveThresholdRemediates() {
	s.Require().NoError(s.monitor.RunCycle(s.ctx))

	s.True(s.monitor.Risk()[monitor.RiskCoolingLowExcess])
	for _, label := range []string{"F1_ZoneA_Cool_SP", "F1_ZoneB_Cool_SP", "F2_ZoneA_Cool_SP"} {
		v, _ := s.proxy.Read(label)
		s.Equal(22.0, v, label)
		s.Equal(1, s.resets(label), label)
	}
	heat, _ := s.proxy.Read("F1_ZoneA_Heat_SP")
	s.Equal(15.0, heat, "labels outside the reset match are untouched")
	s.EqualValues(1, s.instances.revoked.Load())
	s.EqualValues(0, s.instances.stopped.Load())
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Risk.WithLabelValues(monitor.RiskCoolingLowExcess)))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Remediations.WithLabelValues(policy.ActionResetPoints)))
}

func (s *MonitorSuite) TestFlagIsLevelTriggered() {
	s.Require().NoError(s.monitor.RunCycle(s.ctx))
	s.True(s.monitor.Risk()[monitor.RiskCoolingLowExcess])

	// Values were reset to 22, so the next window sees nothing below 20.
	s.Require().NoError(s.monitor.RunCycle(s.ctx))
	s.False(s.monitor.Risk()[monitor.RiskCoolingLowExcess])
	s.Equal(1, s.resets("F1_ZoneA_Cool_SP"))
	s.Equal(0.0, testutil.ToFloat64(s.metrics.Risk.WithLabelValues(monitor.RiskCoolingLowExcess)))
}

func (s *MonitorSuite) TestBelowThresholdDoesNothing() {
	s.settings.spec.WindowSeconds = 1
	s.settings.spec.ThresholdCount = 4
	s.Require().NoError(s.monitor.RunCycle(s.ctx))

	s.False(s.monitor.Risk()[monitor.RiskCoolingLowExcess])
	s.Empty(s.series.Samples(""))
	s.EqualValues(0, s.instances.revoked.Load())
}

func (s *MonitorSuite) TestClassSelectorNarrowsCount() {
	s.settings.spec.WindowSeconds = 1
	s.settings.spec.ThresholdCount = 1
	s.settings.spec.ClassMatch = "Heating"
	s.settings.spec.LabelMatch = "Cool_SP"
	s.Require().NoError(s.monitor.RunCycle(s.ctx))
	s.False(s.monitor.Risk()[monitor.RiskCoolingLowExcess])

	s.settings.spec.LabelMatch = ""
	s.Require().NoError(s.monitor.RunCycle(s.ctx))
	s.True(s.monitor.Risk()[monitor.RiskCoolingLowExcess])
}

func (s *MonitorSuite) TestActionsRunInOrder() {
	s.settings.spec.Actions = []policy.ActionSpec{
		{Type: policy.ActionTerminateApps},
		{Type: policy.ActionResetPoints, Match: "F1_"},
	}
	s.Require().NoError(s.monitor.RunCycle(s.ctx))

	s.EqualValues(1, s.instances.stopped.Load())
	s.EqualValues(0, s.instances.revoked.Load())
	heat, _ := s.proxy.Read("F1_ZoneA_Heat_SP")
	s.Equal(22.0, heat)
	f2, _ := s.proxy.Read("F2_ZoneA_Cool_SP")
	s.Equal(17.5, f2)
}

func (s *MonitorSuite) TestCancelledWindowIsDiscarded() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	s.ErrorIs(s.monitor.RunCycle(ctx), context.Canceled)
	s.False(s.monitor.Risk()[monitor.RiskCoolingLowExcess])
	s.Empty(s.series.Samples(""))
}

func (s *MonitorSuite) TestRunPausesAndStops() {
	s.monitor.SetEnabled(false)
	s.False(s.monitor.Enabled())

	ctx, cancel := context.WithTimeout(s.ctx, 50*time.Millisecond)
	defer cancel()
	s.NoError(s.monitor.Run(ctx))
	s.False(s.monitor.Risk()[monitor.RiskCoolingLowExcess], "paused monitor does not sample")
	s.Empty(s.series.Samples(""))
}
