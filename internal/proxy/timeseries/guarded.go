package timeseries

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"sbos/internal/proxy"
	"sbos/pkg/platform/circuit"
)

const defaultRecordTimeout = 2 * time.Second

// Guarded bounds each Record with a timeout and stops calling the wrapped
// recorder while its breaker is open. Skipped samples are dropped.
type Guarded struct {
	next    proxy.Recorder
	breaker *circuit.Breaker
	timeout time.Duration
	logger  *slog.Logger
}

type Option func(*Guarded)

func WithBreaker(b *circuit.Breaker) Option {
	return func(g *Guarded) {
		g.breaker = b
	}
}

func WithTimeout(d time.Duration) Option {
	return func(g *Guarded) {
		if d > 0 {
			g.timeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Guarded) {
		g.logger = logger
	}
}

func NewGuarded(next proxy.Recorder, opts ...Option) (*Guarded, error) {
	if next == nil {
		return nil, errors.New("recorder is required")
	}
	g := &Guarded{
		next:    next,
		timeout: defaultRecordTimeout,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.breaker == nil {
		g.breaker = circuit.New("timeseries")
	}
	return g, nil
}

func (g *Guarded) Record(ctx context.Context, s proxy.Sample) error {
	if !g.breaker.Allow() {
		g.logger.DebugContext(ctx, "time series circuit open, sample skipped",
			"circuit", g.breaker.Name(),
			"point_label", s.Label,
		)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	if err := g.next.Record(ctx, s); err != nil {
		if _, change := g.breaker.RecordFailure(); change.Opened {
			g.logger.WarnContext(ctx, "time series circuit opened",
				"circuit", g.breaker.Name(),
				"error", err,
			)
		}
		return err
	}
	if _, change := g.breaker.RecordSuccess(); change.Closed {
		g.logger.InfoContext(ctx, "time series circuit closed", "circuit", g.breaker.Name())
	}
	return nil
}
