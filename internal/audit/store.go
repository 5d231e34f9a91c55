package audit

import "context"

// Store is the append-only audit persistence. Recent* return newest first.
type Store interface {
	AppendTransaction(ctx context.Context, t Transaction) error
	AppendShadow(ctx context.Context, f ShadowFinding) error
	RecentTransactions(ctx context.Context, limit int) ([]Transaction, error)
	RecentShadow(ctx context.Context, limit int) ([]ShadowFinding, error)
	// ShadowStats groups findings by point label, validator and reason,
	// highest count first.
	ShadowStats(ctx context.Context) ([]ShadowStat, error)
}

// Sink receives a copy of every record after it is persisted.
type Sink interface {
	Publish(ctx context.Context, env Envelope) error
}
