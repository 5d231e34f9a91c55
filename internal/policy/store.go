package policy

import "context"

// Store persists validator chains and constraints. Chains are keyed by class
// local name and ordered by an explicit position.
type Store interface {
	// Replace drops every constraint, enforced and shadow entry and writes
	// the given generation in one step.
	Replace(ctx context.Context, c Constraints, chains Chains) error
	Enforced(ctx context.Context, class string) ([]ValidatorType, error)
	Shadow(ctx context.Context, class string) ([]ValidatorType, error)
	// AppendEnforced adds entries after the highest existing enforced position.
	AppendEnforced(ctx context.Context, class string, types []ValidatorType) error
	Constraints(ctx context.Context) (Constraints, error)
}
