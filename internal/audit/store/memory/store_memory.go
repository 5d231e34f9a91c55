package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"sbos/internal/audit"
)

// InMemoryStore keeps audit records for tests and single-process runs.
type InMemoryStore struct {
	mu     sync.RWMutex
	txlog  []audit.Transaction
	shadow []audit.ShadowFinding
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) AppendTransaction(_ context.Context, t audit.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txlog = append(s.txlog, t)
	return nil
}

func (s *InMemoryStore) AppendShadow(_ context.Context, f audit.ShadowFinding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shadow = append(s.shadow, f)
	return nil
}

func (s *InMemoryStore) RecentTransactions(_ context.Context, limit int) ([]audit.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newestFirst(s.txlog, limit), nil
}

func (s *InMemoryStore) RecentShadow(_ context.Context, limit int) ([]audit.ShadowFinding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newestFirst(s.shadow, limit), nil
}

func (s *InMemoryStore) ShadowStats(_ context.Context) ([]audit.ShadowStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type key struct{ label, vtype, reason string }
	counts := map[key]int{}
	for _, f := range s.shadow {
		counts[key{f.PointLabel, f.ValidatorType, f.Reason}]++
	}
	out := make([]audit.ShadowStat, 0, len(counts))
	for k, n := range counts {
		out = append(out, audit.ShadowStat{PointLabel: k.label, ValidatorType: k.vtype, Reason: k.reason, Count: n})
	}
	slices.SortFunc(out, func(a, b audit.ShadowStat) int {
		return cmp.Or(
			cmp.Compare(b.Count, a.Count),
			cmp.Compare(a.PointLabel, b.PointLabel),
			cmp.Compare(a.ValidatorType, b.ValidatorType),
			cmp.Compare(a.Reason, b.Reason),
		)
	})
	return out, nil
}

// Transactions returns every transaction in append order.
func (s *InMemoryStore) Transactions() []audit.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.txlog)
}

// ShadowFindings returns every shadow finding in append order.
func (s *InMemoryStore) ShadowFindings() []audit.ShadowFinding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.shadow)
}

func newestFirst[T any](records []T, limit int) []T {
	n := min(limit, len(records))
	out := make([]T, 0, n)
	for i := len(records) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, records[i])
	}
	return out
}
