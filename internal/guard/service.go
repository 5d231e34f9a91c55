// Package guard runs the read and write pipelines: authenticate, rate-check,
// resolve, authorize, validate, commit and audit.
package guard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"sbos/internal/audit"
	"sbos/internal/guard/metrics"
	"sbos/internal/instance"
	"sbos/internal/policy"
	dErrors "sbos/pkg/domain-errors"
)

var tracer = otel.Tracer("sbos/guard")

// Pipeline stages reported in metrics.
const (
	stageAuth      = "authenticate"
	stageRate      = "rate_limit"
	stageResolve   = "resolve"
	stageAuthorize = "authorize"
	stageEnforce   = "enforce"
	stageCommit    = "commit"
)

// Service executes the pipelines. Every write runs under one exclusive lock
// from authentication to the final audit record; reads and capability
// listing do not take it.
type Service struct {
	instances Instances
	limiter   RateLimiter
	directory Directory
	policy    Policy
	proxy     Proxy
	audit     AuditLog
	logger    *slog.Logger
	metrics   *metrics.Metrics

	writeMu sync.Mutex
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

func New(
	instances Instances,
	limiter RateLimiter,
	directory Directory,
	pol Policy,
	proxy Proxy,
	auditLog AuditLog,
	opts ...Option,
) (*Service, error) {
	switch {
	case instances == nil:
		return nil, errors.New("instance registry is required")
	case limiter == nil:
		return nil, errors.New("rate limiter is required")
	case directory == nil:
		return nil, errors.New("point directory is required")
	case pol == nil:
		return nil, errors.New("policy is required")
	case proxy == nil:
		return nil, errors.New("resource proxy is required")
	case auditLog == nil:
		return nil, errors.New("audit log is required")
	}
	s := &Service{
		instances: instances,
		limiter:   limiter,
		directory: directory,
		policy:    pol,
		proxy:     proxy,
		audit:     auditLog,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Write runs the write pipeline.
func (s *Service) Write(ctx context.Context, key string, req WriteRequest) (_ *WriteResult, err error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "guard.Write", trace.WithAttributes(
		attribute.String("point_label", req.PointLabel),
	))
	defer func() {
		endSpan(span, err)
		s.metrics.ObserveLatency(audit.ActionWrite, start)
	}()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	inst, err := s.instances.Authenticate(key)
	if err != nil {
		s.metrics.ObserveDecision(audit.ActionWrite, string(audit.Deny), stageAuth)
		return nil, err
	}
	span.SetAttributes(attribute.String("instance_id", inst.ID))

	rate, err := s.limiter.Allow(ctx, inst.ID, inst.Manifest.WriteLimit())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "rate limiter unavailable")
	}
	if !rate.Allowed {
		s.metrics.ObserveDecision(audit.ActionWrite, string(audit.Deny), stageRate)
		return nil, dErrors.New(dErrors.CodeRateLimited, "Write rate limit exceeded")
	}

	pointID, ok := s.directory.ResolveLabel(req.PointLabel)
	if !ok {
		s.metrics.ObserveDecision(audit.ActionWrite, string(audit.Deny), stageResolve)
		return nil, dErrors.New(dErrors.CodeUnknownPoint, "Unknown point")
	}

	tx := audit.Transaction{
		InstanceID: inst.ID,
		UserID:     inst.User(),
		Action:     audit.ActionWrite,
		PointID:    pointID,
		PointLabel: req.PointLabel,
		Value:      &req.Value,
	}

	if !inst.Caps().CanWrite(pointID) {
		if err := s.deny(ctx, tx, audit.ActorApp, ReasonNoCapWrite, stageAuthorize); err != nil {
			return nil, err
		}
		return nil, dErrors.New(dErrors.CodeForbidden, "No write capability")
	}

	class := s.directory.ResolveClass(pointID)
	enforced, err := s.policy.Enforced(ctx, class)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "policy store unavailable")
	}
	if len(enforced) == 0 {
		if err := s.deny(ctx, tx, audit.ActorRegulator, ReasonNoValidators, stageEnforce); err != nil {
			return nil, err
		}
		return nil, dErrors.New(dErrors.CodePolicyRejected, "No validators configured")
	}

	in := policy.Input{Class: class, Label: req.PointLabel, Value: req.Value}
	if prev, ok := s.proxy.Read(req.PointLabel); ok {
		in.Previous = &prev
	}
	for _, vt := range enforced {
		if accepted, reason := s.policy.Evaluate(vt, in); !accepted {
			if err := s.deny(ctx, tx, audit.ActorRegulator, reason, stageEnforce); err != nil {
				return nil, err
			}
			return nil, dErrors.New(dErrors.CodePolicyRejected, "Guard blocked: "+reason)
		}
	}

	s.runShadow(ctx, inst, pointID, class, in)

	s.proxy.Write(ctx, req.PointLabel, req.Value)

	tx.Actor = audit.ActorProxy
	tx.Decision = audit.Allow
	tx.Reason = ReasonOK
	if err := s.audit.RecordTransaction(ctx, tx); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "audit log unavailable")
	}
	s.metrics.ObserveDecision(audit.ActionWrite, string(audit.Allow), stageCommit)
	s.logger.DebugContext(ctx, "write committed",
		"instance_id", inst.ID,
		"point_label", req.PointLabel,
		"value", req.Value,
	)
	return &WriteResult{OK: true, Point: req.PointLabel, Value: req.Value}, nil
}

// runShadow evaluates every shadow validator; failures are audit-only.
func (s *Service) runShadow(ctx context.Context, inst *instance.Instance, pointID, class string, in policy.Input) {
	shadow, err := s.policy.Shadow(ctx, class)
	if err != nil {
		s.logger.WarnContext(ctx, "shadow chain unavailable", "resource_class", class, "error", err)
		return
	}
	for _, vt := range shadow {
		accepted, reason := s.policy.Evaluate(vt, in)
		if accepted {
			continue
		}
		s.metrics.IncShadowFinding(string(vt))
		err := s.audit.RecordShadow(ctx, audit.ShadowFinding{
			InstanceID:    inst.ID,
			UserID:        inst.User(),
			PointID:       pointID,
			PointLabel:    in.Label,
			Value:         in.Value,
			Class:         class,
			ValidatorType: string(vt),
			Reason:        reason,
		})
		if err != nil {
			s.logger.WarnContext(ctx, "shadow finding not recorded",
				"instance_id", inst.ID,
				"point_label", in.Label,
				"validator", vt,
				"error", err,
			)
		}
	}
}

func (s *Service) deny(ctx context.Context, tx audit.Transaction, actor audit.Actor, reason, stage string) error {
	tx.Actor = actor
	tx.Decision = audit.Deny
	tx.Reason = reason
	s.metrics.ObserveDecision(tx.Action, string(audit.Deny), stage)
	s.logger.InfoContext(ctx, "request denied",
		"instance_id", tx.InstanceID,
		"user_id", tx.UserID,
		"action", tx.Action,
		"point_label", tx.PointLabel,
		"reason", reason,
	)
	if err := s.audit.RecordTransaction(ctx, tx); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "audit log unavailable")
	}
	return nil
}

// Read runs the read pipeline. It does not take the write lock.
func (s *Service) Read(ctx context.Context, key, label string) (_ *ReadResult, err error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "guard.Read", trace.WithAttributes(
		attribute.String("point_label", label),
	))
	defer func() {
		endSpan(span, err)
		s.metrics.ObserveLatency(audit.ActionRead, start)
	}()

	inst, err := s.instances.Authenticate(key)
	if err != nil {
		s.metrics.ObserveDecision(audit.ActionRead, string(audit.Deny), stageAuth)
		return nil, err
	}
	pointID, ok := s.directory.ResolveLabel(label)
	if !ok {
		s.metrics.ObserveDecision(audit.ActionRead, string(audit.Deny), stageResolve)
		return nil, dErrors.New(dErrors.CodeUnknownPoint, "Unknown point")
	}
	tx := audit.Transaction{
		InstanceID: inst.ID,
		UserID:     inst.User(),
		Action:     audit.ActionRead,
		PointID:    pointID,
		PointLabel: label,
	}
	if !inst.Caps().CanRead(pointID) {
		if err := s.deny(ctx, tx, audit.ActorApp, ReasonNoCapRead, stageAuthorize); err != nil {
			return nil, err
		}
		return nil, dErrors.New(dErrors.CodeForbidden, "No read capability")
	}

	res := &ReadResult{PointLabel: label}
	if v, ok := s.proxy.Read(label); ok {
		res.Value = &v
	}
	tx.Actor = audit.ActorApp
	tx.Decision = audit.Allow
	tx.Reason = ReasonOK
	tx.Value = res.Value
	if err := s.audit.RecordTransaction(ctx, tx); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "audit log unavailable")
	}
	s.metrics.ObserveDecision(audit.ActionRead, string(audit.Allow), stageCommit)
	return res, nil
}

// Capabilities lists the sorted union of an instance's readable and
// writable points.
func (s *Service) Capabilities(_ context.Context, key string) (*CapabilitiesResult, error) {
	inst, err := s.instances.Authenticate(key)
	if err != nil {
		return nil, err
	}
	ids := inst.Caps().Points()
	out := &CapabilitiesResult{Instance: inst.ID, Points: make([]PointRef, 0, len(ids))}
	for _, id := range ids {
		label, ok := s.directory.Label(id)
		if !ok {
			label = id
		}
		out.Points = append(out.Points, PointRef{ID: id, Label: label})
	}
	return out, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.SetAttributes(attribute.String("error.code", string(dErrors.CodeOf(err))))
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			span.SetStatus(codes.Error, err.Error())
		}
	}
	span.End()
}
