// Package admin implements the administrative operations: instance
// registration, configuration reload, shadow promotion, the monitor toggle
// and audit reports.
package admin

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"sbos/internal/audit"
	"sbos/internal/capability"
	"sbos/internal/instance"
	"sbos/internal/oracle"
	"sbos/internal/platform/metrics"
	"sbos/internal/points"
	"sbos/internal/policy"
	dErrors "sbos/pkg/domain-errors"
)

// MaxReportLimit caps audit report page sizes.
const MaxReportLimit = 1000

type Graph interface {
	Replace(m oracle.Model) error
	InitialValues() map[string]float64
}

type Capabilities interface {
	Replace(profiles capability.Profiles, users capability.Users)
}

type Policy interface {
	Apply(ctx context.Context, doc policy.Document) error
	Promote(ctx context.Context, class string) ([]policy.ValidatorType, error)
}

type Directory interface {
	Rebuild(ctx context.Context, src points.Source) error
	Label(id string) (string, bool)
}

type Values interface {
	Seed(initial map[string]float64)
}

type Registry interface {
	Register(ctx context.Context, m capability.Manifest) (*instance.Instance, error)
	Stop(ctx context.Context, id string)
	List() []*instance.Instance
	Reload(ctx context.Context) error
}

type Monitor interface {
	SetEnabled(on bool)
	Enabled() bool
	Risk() map[string]bool
}

type Reports interface {
	RecentTransactions(ctx context.Context, limit int) ([]audit.Transaction, error)
	RecentShadow(ctx context.Context, limit int) ([]audit.ShadowFinding, error)
	ShadowStats(ctx context.Context) ([]audit.ShadowStat, error)
}

// Components are the live objects the admin service reconfigures.
type Components struct {
	Graph        Graph
	Source       points.Source
	Capabilities Capabilities
	Policy       Policy
	Directory    Directory
	Values       Values
	Registry     Registry
	Monitor      Monitor
	Reports      Reports
}

func (c Components) validate() error {
	switch {
	case c.Graph == nil || c.Source == nil:
		return errors.New("oracle graph is required")
	case c.Capabilities == nil:
		return errors.New("capability resolver is required")
	case c.Policy == nil:
		return errors.New("policy engine is required")
	case c.Directory == nil:
		return errors.New("point directory is required")
	case c.Values == nil:
		return errors.New("resource proxy is required")
	case c.Registry == nil:
		return errors.New("instance registry is required")
	case c.Monitor == nil:
		return errors.New("monitor is required")
	case c.Reports == nil:
		return errors.New("audit reports are required")
	}
	return nil
}

// Service runs administrative operations. Reloads are serialized against
// each other but not against the write pipeline.
type Service struct {
	paths   Paths
	c       Components
	logger  *slog.Logger
	metrics *metrics.Metrics

	reloadMu sync.Mutex
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(paths Paths, c Components, opts ...Option) (*Service, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	s := &Service{paths: paths, c: c, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Reload re-reads every configuration file and applies it: oracle model,
// profiles and users, policy (constraints and chains replaced wholesale,
// promotions included), point directory, seed values for new points, and
// finally every live instance's capabilities.
func (s *Service) Reload(ctx context.Context) (err error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()
	defer func() { s.metrics.ObserveReload(err) }()

	src, err := s.paths.Load()
	if err != nil {
		s.logger.ErrorContext(ctx, "configuration reload rejected", "error", err)
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid configuration")
	}
	if err := s.Apply(ctx, src); err != nil {
		return err
	}
	if err := s.c.Registry.Reload(ctx); err != nil {
		s.logger.ErrorContext(ctx, "capability recompute failed", "error", err)
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to recompute capabilities")
	}
	s.logger.InfoContext(ctx, "configuration reloaded",
		"entities", len(src.Model.Entities),
		"profiles", len(src.Profiles.Profiles),
		"users", len(src.Users.Users),
		"instances", len(s.c.Registry.List()),
	)
	return nil
}

// Apply installs one parsed configuration generation without touching live
// instances. It is also the boot path.
func (s *Service) Apply(ctx context.Context, src Sources) error {
	if err := src.Model.Validate(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid building model")
	}
	// Policy goes first: it is the only step backed by an external store, so
	// a failure there leaves the running generation untouched.
	if err := s.c.Policy.Apply(ctx, src.Policy); err != nil {
		if dErrors.HasCode(err, dErrors.CodeValidation) {
			return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid policy")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to apply policy")
	}
	if err := s.c.Graph.Replace(src.Model); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to install building model")
	}
	s.c.Capabilities.Replace(src.Profiles, src.Users)
	if err := s.c.Directory.Rebuild(ctx, s.c.Source); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to rebuild point directory")
	}
	s.c.Values.Seed(s.c.Graph.InitialValues())
	return nil
}

// RegisterInstance registers and starts an application.
func (s *Service) RegisterInstance(ctx context.Context, m capability.Manifest) (*RegisterResult, error) {
	inst, err := s.c.Registry.Register(ctx, m)
	if err != nil {
		return nil, err
	}
	s.metrics.SetLiveInstances(len(s.c.Registry.List()))
	return &RegisterResult{InstanceID: inst.ID, PID: inst.Handle().PID, Key: inst.Key}, nil
}

// StopInstance stops an instance; unknown ids are ignored.
func (s *Service) StopInstance(ctx context.Context, id string) {
	s.c.Registry.Stop(ctx, id)
	s.metrics.SetLiveInstances(len(s.c.Registry.List()))
}

// ListInstances shows every live instance with capabilities as labels.
func (s *Service) ListInstances(_ context.Context) []InstanceView {
	list := s.c.Registry.List()
	out := make([]InstanceView, 0, len(list))
	for _, inst := range list {
		caps := inst.Caps()
		out = append(out, InstanceView{
			ID:   inst.ID,
			PID:  inst.Handle().PID,
			User: inst.User(),
			Caps: CapsView{Read: s.labels(caps.Read()), Write: s.labels(caps.Write())},
		})
	}
	return out
}

func (s *Service) labels(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		if label, ok := s.c.Directory.Label(id); ok {
			out[i] = label
		} else {
			out[i] = id
		}
	}
	return out
}

// PromoteShadow appends a class's shadow chain to its enforced chain.
func (s *Service) PromoteShadow(ctx context.Context, class string) (*PromoteResult, error) {
	if class == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "resource_class is required")
	}
	promoted, err := s.c.Policy.Promote(ctx, class)
	if err != nil {
		return nil, err
	}
	s.metrics.IncPromotions()
	return &PromoteResult{OK: true, Promoted: promoted, Class: oracle.LocalName(class)}, nil
}

// SetMonitor pauses or resumes the anomaly monitor.
func (s *Service) SetMonitor(ctx context.Context, enabled bool) MonitorState {
	s.c.Monitor.SetEnabled(enabled)
	s.logger.InfoContext(ctx, "monitor state changed", "enabled", enabled)
	return MonitorState{OK: true, Monitor: monitorState(enabled)}
}

// Health reports liveness, risk flags and the monitor state.
func (s *Service) Health(_ context.Context) Health {
	return Health{
		Status:  "ok",
		Risk:    s.c.Monitor.Risk(),
		Monitor: monitorState(s.c.Monitor.Enabled()),
	}
}

func (s *Service) RecentTransactions(ctx context.Context, limit int) (*TransactionsReport, error) {
	rows, err := s.c.Reports.RecentTransactions(ctx, clampLimit(limit))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read transaction log")
	}
	return &TransactionsReport{Rows: rows}, nil
}

func (s *Service) RecentShadow(ctx context.Context, limit int) (*ShadowReport, error) {
	rows, err := s.c.Reports.RecentShadow(ctx, clampLimit(limit))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read shadow log")
	}
	return &ShadowReport{Rows: rows}, nil
}

func (s *Service) ShadowStats(ctx context.Context) (*ShadowStatsReport, error) {
	rows, err := s.c.Reports.ShadowStats(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read shadow statistics")
	}
	return &ShadowStatsReport{Rows: rows}, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return audit.DefaultRecentLimit
	}
	return min(limit, MaxReportLimit)
}
