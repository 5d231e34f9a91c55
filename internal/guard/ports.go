package guard

import (
	"context"

	"sbos/internal/audit"
	"sbos/internal/instance"
	"sbos/internal/policy"
	"sbos/internal/ratelimit"
)

// Instances authenticates bearer keys.
type Instances interface {
	Authenticate(key string) (*instance.Instance, error)
}

// RateLimiter gates write attempts.
type RateLimiter interface {
	Allow(ctx context.Context, instanceID string, limit int) (*ratelimit.Result, error)
}

// Directory resolves labels and classes.
type Directory interface {
	ResolveLabel(label string) (string, bool)
	ResolveClass(id string) string
	Label(id string) (string, bool)
}

// Policy supplies validator chains and evaluates validators.
type Policy interface {
	Enforced(ctx context.Context, class string) ([]policy.ValidatorType, error)
	Shadow(ctx context.Context, class string) ([]policy.ValidatorType, error)
	Evaluate(t policy.ValidatorType, in policy.Input) (bool, string)
}

// Proxy is the resource proxy.
type Proxy interface {
	Read(label string) (float64, bool)
	Write(ctx context.Context, label string, value float64)
}

// AuditLog records decisions and shadow findings.
type AuditLog interface {
	RecordTransaction(ctx context.Context, t audit.Transaction) error
	RecordShadow(ctx context.Context, f audit.ShadowFinding) error
}
