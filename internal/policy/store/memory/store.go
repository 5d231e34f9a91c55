package memory

import (
	"context"
	"slices"
	"sync"

	"sbos/internal/policy"
)

type entry struct {
	position int
	vtype    policy.ValidatorType
}

// Store keeps chains and constraints in process memory.
type Store struct {
	mu          sync.RWMutex
	enforced    map[string][]entry
	shadow      map[string][]entry
	constraints policy.Constraints
}

func New() *Store {
	return &Store{
		enforced:    map[string][]entry{},
		shadow:      map[string][]entry{},
		constraints: policy.Constraints{},
	}
}

func toEntries(chain []policy.ValidatorType) []entry {
	out := make([]entry, len(chain))
	for i, t := range chain {
		out[i] = entry{position: i, vtype: t}
	}
	return out
}

func toTypes(entries []entry) []policy.ValidatorType {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b entry) int { return a.position - b.position })
	out := make([]policy.ValidatorType, len(sorted))
	for i, e := range sorted {
		out[i] = e.vtype
	}
	return out
}

func (s *Store) Replace(_ context.Context, c policy.Constraints, chains policy.Chains) error {
	enforced := make(map[string][]entry, len(chains.Enforced))
	for class, chain := range chains.Enforced {
		enforced[class] = toEntries(chain)
	}
	shadow := make(map[string][]entry, len(chains.Shadow))
	for class, chain := range chains.Shadow {
		shadow[class] = toEntries(chain)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enforced, s.shadow, s.constraints = enforced, shadow, c.Clone()
	return nil
}

func (s *Store) Enforced(_ context.Context, class string) ([]policy.ValidatorType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return toTypes(s.enforced[class]), nil
}

func (s *Store) Shadow(_ context.Context, class string) ([]policy.ValidatorType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return toTypes(s.shadow[class]), nil
}

func (s *Store) AppendEnforced(_ context.Context, class string, types []policy.ValidatorType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := 0
	for _, e := range s.enforced[class] {
		if e.position >= next {
			next = e.position + 1
		}
	}
	for i, t := range types {
		s.enforced[class] = append(s.enforced[class], entry{position: next + i, vtype: t})
	}
	return nil
}

// EnforcedPositions exposes stored positions for a class.
func (s *Store) EnforcedPositions(class string) []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int, 0, len(s.enforced[class]))
	for _, e := range s.enforced[class] {
		out = append(out, e.position)
	}
	slices.Sort(out)
	return out
}

func (s *Store) Constraints(_ context.Context) (policy.Constraints, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.constraints.Clone(), nil
}
