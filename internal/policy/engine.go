// Package policy owns the validator registry, per-class validator chains,
// policy constraints and guard bounds.
package policy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"sbos/internal/oracle"
	dErrors "sbos/pkg/domain-errors"
	"sbos/pkg/platform/sentinel"
)

// Engine evaluates validators against the current policy snapshot.
type Engine struct {
	store   Store
	logger  *slog.Logger
	env     atomic.Pointer[Env]
	monitor atomic.Pointer[MonitorSpec]
}

type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an engine with an empty policy. Call Apply before use.
func NewEngine(store Store, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, errors.New("policy store is required")
	}
	e := &Engine{store: store, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(e)
	}
	e.env.Store(&Env{Guards: map[string]Guard{}, Constraints: Constraints{}})
	e.monitor.Store(&MonitorSpec{})
	return e, nil
}

// Apply replaces chains, constraints and guards from a policy document.
// Reapplying the same document leaves the chains unchanged.
func (e *Engine) Apply(ctx context.Context, doc Document) error {
	chains, err := doc.Chains()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "invalid policy")
	}
	constraints, err := ConstraintsFrom(doc.Constraints)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "invalid policy constraints")
	}
	if err := e.store.Replace(ctx, constraints, chains); err != nil {
		return fmt.Errorf("replace policy: %w", err)
	}
	stored, err := e.store.Constraints(ctx)
	if err != nil {
		return fmt.Errorf("load constraints: %w", err)
	}

	guards := make(map[string]Guard, len(doc.Guards))
	for class, g := range doc.Guards {
		guards[oracle.LocalName(class)] = g
	}
	e.env.Store(&Env{Guards: guards, Constraints: stored})
	monitor := doc.Monitor
	e.monitor.Store(&monitor)

	e.logger.InfoContext(ctx, "policy applied",
		"enforced_classes", len(chains.Enforced),
		"shadow_classes", len(chains.Shadow),
		"constraints", len(stored),
	)
	return nil
}

// Enforced returns the ordered enforced chain for a class.
func (e *Engine) Enforced(ctx context.Context, class string) ([]ValidatorType, error) {
	return e.store.Enforced(ctx, oracle.LocalName(class))
}

// Shadow returns the ordered shadow chain for a class.
func (e *Engine) Shadow(ctx context.Context, class string) ([]ValidatorType, error) {
	return e.store.Shadow(ctx, oracle.LocalName(class))
}

// Evaluate runs one validator against the current snapshot.
func (e *Engine) Evaluate(t ValidatorType, in Input) (bool, string) {
	fn, ok := registry[t]
	if !ok {
		return false, "unknown-validator"
	}
	return fn(e.env.Load(), in)
}

// Monitor returns the monitor section of the last applied policy.
func (e *Engine) Monitor() MonitorSpec {
	return *e.monitor.Load()
}

// Promote appends a class's shadow chain to the end of its enforced chain.
func (e *Engine) Promote(ctx context.Context, class string) ([]ValidatorType, error) {
	local := oracle.LocalName(class)
	shadow, err := e.store.Shadow(ctx, local)
	if err != nil {
		return nil, fmt.Errorf("load shadow chain: %w", err)
	}
	if len(shadow) == 0 {
		return nil, dErrors.Wrap(sentinel.ErrNotFound, dErrors.CodeNotFound, "No shadow validators to promote for class")
	}
	if err := e.store.AppendEnforced(ctx, local, shadow); err != nil {
		return nil, fmt.Errorf("append enforced chain: %w", err)
	}
	e.logger.InfoContext(ctx, "shadow validators promoted",
		"resource_class", local,
		"promoted", shadow,
	)
	return shadow, nil
}
