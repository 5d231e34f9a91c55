// Package monitor samples live point values over a window and remediates
// when too many cooling points sit below their minimum.
package monitor

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"sbos/internal/monitor/metrics"
	"sbos/internal/oracle"
	"sbos/internal/policy"
)

// RiskCoolingLowExcess is the only monitored condition.
const RiskCoolingLowExcess = "cooling_low_excess"

const (
	defaultTick = time.Second
	pausedPoll  = 500 * time.Millisecond
)

var tracer = otel.Tracer("sbos/monitor")

// Values is the live point table.
type Values interface {
	Snapshot() map[string]float64
	Reset(ctx context.Context, label string, value float64)
}

// Directory maps labels to resource classes.
type Directory interface {
	ResolveLabel(label string) (string, bool)
	ResolveClass(id string) string
}

// Instances is the remediation surface of the instance registry.
type Instances interface {
	RevokeAllWrites(ctx context.Context) int
	StopAll(ctx context.Context) int
}

// Settings supplies the monitor section of the current policy.
type Settings interface {
	Monitor() policy.MonitorSpec
}

// Monitor is the anomaly detector. Remediation runs without the write
// pipeline lock, so a write admitted mid-remediation can race a reset.
type Monitor struct {
	values    Values
	directory Directory
	instances Instances
	settings  Settings
	tick      time.Duration
	logger    *slog.Logger
	metrics   *metrics.Metrics

	enabled atomic.Bool
	risk    atomic.Bool
}

type Option func(*Monitor)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Monitor) {
		m.logger = logger
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Monitor) {
		m.metrics = mt
	}
}

// WithTick sets the sampling interval. A window of N seconds always takes
// N samples; the tick only controls how far apart they are.
func WithTick(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.tick = d
		}
	}
}

func New(values Values, directory Directory, instances Instances, settings Settings, opts ...Option) (*Monitor, error) {
	switch {
	case values == nil:
		return nil, errors.New("point values are required")
	case directory == nil:
		return nil, errors.New("point directory is required")
	case instances == nil:
		return nil, errors.New("instance registry is required")
	case settings == nil:
		return nil, errors.New("monitor settings are required")
	}
	m := &Monitor{
		values:    values,
		directory: directory,
		instances: instances,
		settings:  settings,
		tick:      defaultTick,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.enabled.Store(true)
	return m, nil
}

// SetEnabled pauses or resumes sampling. A window already in progress
// finishes.
func (m *Monitor) SetEnabled(on bool) {
	m.enabled.Store(on)
	m.logger.Info("monitor toggled", "enabled", on)
}

func (m *Monitor) Enabled() bool {
	return m.enabled.Load()
}

// Risk reports the flag computed by the last completed window.
func (m *Monitor) Risk() map[string]bool {
	return map[string]bool{RiskCoolingLowExcess: m.risk.Load()}
}

// Run loops until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.InfoContext(ctx, "monitor started", "tick", m.tick)
	for {
		if !m.enabled.Load() {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(pausedPoll):
			}
			continue
		}
		if err := m.RunCycle(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// RunCycle samples one window, updates the risk flag and remediates when
// the threshold is reached. A cancelled window is discarded.
func (m *Monitor) RunCycle(ctx context.Context) error {
	spec := m.settings.Monitor()
	ctx, span := tracer.Start(ctx, "monitor.Cycle")
	defer span.End()

	samples := int(spec.Window() / time.Second)
	if samples < 1 {
		samples = 1
	}
	classMatch, labelMatch := spec.Selectors()
	minimum := spec.Min()

	ticker := time.NewTicker(m.tick)
	defer ticker.Stop()
	count := 0
	for i := 0; i < samples; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		count += m.sample(classMatch, labelMatch, minimum)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	m.metrics.ObserveCycle(count)
	span.SetAttributes(attribute.Int("violations", count), attribute.Int("samples", samples))

	if count < spec.Threshold() {
		if m.risk.Swap(false) {
			m.logger.InfoContext(ctx, "risk cleared", "condition", RiskCoolingLowExcess, "violations", count)
		}
		m.metrics.SetRisk(RiskCoolingLowExcess, false)
		return nil
	}

	m.risk.Store(true)
	m.metrics.SetRisk(RiskCoolingLowExcess, true)
	m.logger.WarnContext(ctx, "risk raised",
		"condition", RiskCoolingLowExcess,
		"violations", count,
		"threshold", spec.Threshold(),
	)
	m.remediate(ctx, spec)
	return nil
}

// sample counts monitored points currently below minimum.
func (m *Monitor) sample(classMatch, labelMatch string, minimum float64) int {
	n := 0
	for label, v := range m.values.Snapshot() {
		if v < minimum && m.matches(label, classMatch, labelMatch) {
			n++
		}
	}
	return n
}

func (m *Monitor) matches(label, classMatch, labelMatch string) bool {
	if labelMatch != "" && !strings.Contains(label, labelMatch) {
		return false
	}
	if classMatch == "" {
		return true
	}
	id, ok := m.directory.ResolveLabel(label)
	if !ok {
		return false
	}
	return strings.Contains(oracle.LocalName(m.directory.ResolveClass(id)), classMatch)
}

func (m *Monitor) remediate(ctx context.Context, spec policy.MonitorSpec) {
	for _, act := range spec.Actions {
		switch act.Type {
		case policy.ActionResetPoints:
			reset := spec.Reset()
			n := 0
			for label := range m.values.Snapshot() {
				if strings.Contains(label, act.Match) {
					m.values.Reset(ctx, label, reset)
					n++
				}
			}
			m.logger.WarnContext(ctx, "points reset", "match", act.Match, "value", reset, "points", n)
		case policy.ActionRevokeCapabilities:
			n := m.instances.RevokeAllWrites(ctx)
			m.logger.WarnContext(ctx, "write capabilities revoked by monitor", "instances", n)
		case policy.ActionTerminateApps:
			n := m.instances.StopAll(ctx)
			m.logger.WarnContext(ctx, "instances terminated by monitor", "instances", n)
		default:
			continue
		}
		m.metrics.IncRemediation(act.Type)
	}
}
