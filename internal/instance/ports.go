package instance

import (
	"context"

	"sbos/internal/capability"
)

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

// Resolver computes capability sets from manifests.
type Resolver interface {
	Compute(ctx context.Context, m capability.Manifest) (*capability.Set, error)
}

// Handle identifies a started application process.
type Handle struct {
	PID int
}

// Lifecycle starts and stops application workers. Stop is best effort.
type Lifecycle interface {
	Start(ctx context.Context, instanceID, key, baseURL string) (Handle, error)
	Stop(ctx context.Context, h Handle) error
}

// Buckets drops rate-limit state for removed instances.
type Buckets interface {
	Forget(ctx context.Context, instanceID string) error
}
