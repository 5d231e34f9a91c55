// Package audit is the append-only transaction and shadow log.
package audit

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"sbos/pkg/requestcontext"
)

// DefaultRecentLimit is used when a report asks for a non-positive limit.
const DefaultRecentLimit = 50

// Log stamps and persists audit records and forwards them to the outbox.
type Log struct {
	store  Store
	outbox *Buffer
	logger *slog.Logger
}

type Option func(*Log)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Log) {
		l.logger = logger
	}
}

// WithOutbox forwards every persisted record to buf for external fan-out.
func WithOutbox(buf *Buffer) Option {
	return func(l *Log) {
		l.outbox = buf
	}
}

func New(store Store, opts ...Option) (*Log, error) {
	if store == nil {
		return nil, errors.New("audit store is required")
	}
	l := &Log{store: store, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// RecordTransaction appends a decision to the transaction log.
func (l *Log) RecordTransaction(ctx context.Context, t Transaction) error {
	t.ID = uuid.New()
	t.Timestamp = requestcontext.Now(ctx)
	if err := l.store.AppendTransaction(ctx, t); err != nil {
		l.logger.ErrorContext(ctx, "audit transaction append failed",
			"instance_id", t.InstanceID,
			"point_label", t.PointLabel,
			"error", err,
		)
		return err
	}
	if l.outbox != nil {
		l.outbox.Enqueue(Envelope{Kind: KindTransaction, Transaction: &t})
	}
	return nil
}

// RecordShadow appends one shadow finding.
func (l *Log) RecordShadow(ctx context.Context, f ShadowFinding) error {
	f.ID = uuid.New()
	f.Timestamp = requestcontext.Now(ctx)
	if err := l.store.AppendShadow(ctx, f); err != nil {
		l.logger.ErrorContext(ctx, "audit shadow append failed",
			"instance_id", f.InstanceID,
			"point_label", f.PointLabel,
			"error", err,
		)
		return err
	}
	if l.outbox != nil {
		l.outbox.Enqueue(Envelope{Kind: KindShadow, Shadow: &f})
	}
	return nil
}

func (l *Log) RecentTransactions(ctx context.Context, limit int) ([]Transaction, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return l.store.RecentTransactions(ctx, limit)
}

func (l *Log) RecentShadow(ctx context.Context, limit int) ([]ShadowFinding, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return l.store.RecentShadow(ctx, limit)
}

func (l *Log) ShadowStats(ctx context.Context) ([]ShadowStat, error) {
	return l.store.ShadowStats(ctx)
}
