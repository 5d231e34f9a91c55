// Package ratelimit gates write attempts with a fixed calendar-minute window
// per application instance.
package ratelimit

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"sbos/internal/ratelimit/metrics"
	"sbos/pkg/requestcontext"
)

// Window is the fixed window length. Windows align to calendar minutes.
const Window = time.Minute

// Result reports the outcome of one gate check.
type Result struct {
	Allowed bool
	Count   int
	Limit   int
	ResetAt time.Time
}

// BucketStore holds per-key counters for a window identifier. Allow must not
// consume a token when the counter is already at limit.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window int64) (*Result, error)
	Count(ctx context.Context, key string, window int64) (int, error)
	Reset(ctx context.Context, key string) error
}

// Limiter applies the per-instance write budget.
type Limiter struct {
	store   BucketStore
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Limiter)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) {
		l.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Limiter) {
		l.metrics = m
	}
}

// New builds a limiter over a bucket store.
func New(store BucketStore, opts ...Option) (*Limiter, error) {
	if store == nil {
		return nil, errors.New("bucket store is required")
	}
	l := &Limiter{store: store, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// WindowID identifies the calendar minute containing t.
func WindowID(t time.Time) int64 {
	return t.Unix() / int64(Window/time.Second)
}

// Allow consumes one token for instanceID if the current minute still has
// budget. Every attempt counts, whatever happens downstream.
func (l *Limiter) Allow(ctx context.Context, instanceID string, limit int) (*Result, error) {
	now := requestcontext.Now(ctx)
	res, err := l.store.Allow(ctx, instanceID, limit, WindowID(now))
	if err != nil {
		return nil, err
	}
	res.ResetAt = now.Truncate(Window).Add(Window)
	if !res.Allowed {
		l.metrics.IncRejected()
		l.logger.DebugContext(ctx, "write rate limit exceeded",
			"instance_id", instanceID,
			"limit", limit,
			"count", res.Count,
		)
	}
	return res, nil
}

// Usage returns the tokens consumed in the current window.
func (l *Limiter) Usage(ctx context.Context, instanceID string) (int, error) {
	return l.store.Count(ctx, instanceID, WindowID(requestcontext.Now(ctx)))
}

// Forget drops the bucket of a stopped instance.
func (l *Limiter) Forget(ctx context.Context, instanceID string) error {
	return l.store.Reset(ctx, instanceID)
}
