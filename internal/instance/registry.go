// Package instance tracks live application instances: identity, bearer key,
// manifest, computed capabilities and process handle.
package instance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"sbos/internal/capability"
	dErrors "sbos/pkg/domain-errors"
	"sbos/pkg/requestcontext"
)

// Instance is one live registration. Identity, key and manifest never change;
// capabilities are replaced on reload and by remediation.
type Instance struct {
	ID           string
	Key          string
	Manifest     capability.Manifest
	RegisteredAt time.Time

	caps   atomic.Pointer[capability.Set]
	handle atomic.Pointer[Handle]

	// guarded by Registry.mu
	starting      bool
	stopRequested bool
}

// Handle returns the process handle, zero until the application started.
func (i *Instance) Handle() Handle {
	if h := i.handle.Load(); h != nil {
		return *h
	}
	return Handle{}
}

// Caps returns the current capability set.
func (i *Instance) Caps() *capability.Set {
	return i.caps.Load()
}

// User returns the manifest user.
func (i *Instance) User() string {
	return i.Manifest.User
}

// Registry owns every live instance. Its lock protects the maps only; it is
// not the write-pipeline lock.
type Registry struct {
	resolver  Resolver
	lifecycle Lifecycle
	buckets   Buckets
	baseURL   string
	logger    *slog.Logger

	mu    sync.RWMutex
	byID  map[string]*Instance
	byKey map[digest]*Instance
}

type Option func(*Registry)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithBuckets lets Stop drop the instance's rate-limit bucket.
func WithBuckets(b Buckets) Option {
	return func(r *Registry) {
		r.buckets = b
	}
}

// WithBaseURL is passed to started applications as their API endpoint.
func WithBaseURL(u string) Option {
	return func(r *Registry) {
		r.baseURL = u
	}
}

func New(resolver Resolver, lifecycle Lifecycle, opts ...Option) (*Registry, error) {
	if resolver == nil {
		return nil, errors.New("resolver is required")
	}
	if lifecycle == nil {
		return nil, errors.New("lifecycle manager is required")
	}
	r := &Registry{
		resolver:  resolver,
		lifecycle: lifecycle,
		baseURL:   "http://localhost:8083",
		logger:    slog.New(slog.DiscardHandler),
		byID:      map[string]*Instance{},
		byKey:     map[digest]*Instance{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Register validates a manifest, computes its capabilities, starts the
// application and records the instance.
func (r *Registry) Register(ctx context.Context, m capability.Manifest) (*Instance, error) {
	if err := m.Normalize(); err != nil {
		return nil, err
	}
	caps, err := r.resolver.Compute(ctx, m)
	if err != nil {
		return nil, err
	}
	key, err := GenerateKey()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue instance key")
	}

	now := requestcontext.Now(ctx)
	inst := &Instance{Key: key, Manifest: m, RegisteredAt: now, starting: true}
	inst.caps.Store(caps)

	r.mu.Lock()
	inst.ID = r.nextIDLocked(m.AppID, now)
	r.byID[inst.ID] = inst
	r.byKey[keyDigest(key)] = inst
	r.mu.Unlock()

	handle, err := r.lifecycle.Start(ctx, inst.ID, key, r.baseURL)
	if err != nil {
		r.remove(inst)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to start application")
	}
	inst.handle.Store(&handle)

	r.mu.Lock()
	inst.starting = false
	stopped := inst.stopRequested
	r.mu.Unlock()
	if stopped {
		r.terminate(ctx, inst)
		return nil, dErrors.New(dErrors.CodeConflict, "instance was stopped while starting")
	}

	r.logger.InfoContext(ctx, "instance registered",
		"instance_id", inst.ID,
		"user_id", m.User,
		"delegation", m.Delegation,
		"read", len(caps.Read()),
		"write", len(caps.Write()),
	)
	return inst, nil
}

// nextIDLocked derives app_id-<millis>, bumping the suffix on collision.
func (r *Registry) nextIDLocked(appID string, now time.Time) string {
	ms := now.UnixMilli()
	for {
		id := appID + "-" + strconv.FormatInt(ms, 10)
		if _, taken := r.byID[id]; !taken {
			return id
		}
		ms++
	}
}

// Stop forgets an instance and terminates its application. Unknown ids are
// a no-op and lifecycle errors are logged, not returned. An instance still
// starting is forgotten at once; Register terminates it when Start returns.
func (r *Registry) Stop(ctx context.Context, id string) {
	r.mu.Lock()
	inst, ok := r.byID[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	r.removeLocked(inst)
	if inst.starting {
		inst.stopRequested = true
		r.mu.Unlock()
		r.logger.InfoContext(ctx, "instance stop deferred until start completes", "instance_id", id)
		return
	}
	r.mu.Unlock()
	r.terminate(ctx, inst)
}

func (r *Registry) terminate(ctx context.Context, inst *Instance) {
	h := inst.Handle()
	if err := r.lifecycle.Stop(ctx, h); err != nil {
		r.logger.WarnContext(ctx, "instance stop signal failed",
			"instance_id", inst.ID,
			"pid", h.PID,
			"error", err,
		)
	}
	if r.buckets != nil {
		if err := r.buckets.Forget(ctx, inst.ID); err != nil {
			r.logger.WarnContext(ctx, "rate bucket cleanup failed", "instance_id", inst.ID, "error", err)
		}
	}
	r.logger.InfoContext(ctx, "instance stopped", "instance_id", inst.ID)
}

func (r *Registry) remove(inst *Instance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(inst)
}

func (r *Registry) removeLocked(inst *Instance) {
	if r.byID[inst.ID] == inst {
		delete(r.byID, inst.ID)
	}
	d := keyDigest(inst.Key)
	if r.byKey[d] == inst {
		delete(r.byKey, d)
	}
}

// StopAll stops every live instance.
func (r *Registry) StopAll(ctx context.Context) int {
	list := r.List()
	for _, inst := range list {
		r.Stop(ctx, inst.ID)
	}
	return len(list)
}

// Reload recomputes capabilities for every live instance from its stored
// manifest. Nothing is applied unless every instance resolves.
func (r *Registry) Reload(ctx context.Context) error {
	list := r.List()
	next := make([]*capability.Set, len(list))
	for i, inst := range list {
		caps, err := r.resolver.Compute(ctx, inst.Manifest)
		if err != nil {
			return fmt.Errorf("recompute capabilities for %s: %w", inst.ID, err)
		}
		next[i] = caps
	}
	for i, inst := range list {
		inst.caps.Store(next[i])
	}
	return nil
}

// RevokeAllWrites clears the write set of every live instance.
func (r *Registry) RevokeAllWrites(ctx context.Context) int {
	list := r.List()
	for _, inst := range list {
		inst.caps.Store(inst.Caps().WithoutWrite())
	}
	r.logger.WarnContext(ctx, "write capabilities revoked", "instances", len(list))
	return len(list)
}

// Authenticate resolves an instance from its bearer key.
func (r *Registry) Authenticate(key string) (*Instance, error) {
	if key == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Missing X-App-Key")
	}
	r.mu.RLock()
	inst, ok := r.byKey[keyDigest(key)]
	r.mu.RUnlock()
	if !ok {
		return nil, dErrors.New(dErrors.CodeForbidden, "Invalid X-App-Key")
	}
	return inst, nil
}

// Get returns an instance by id.
func (r *Registry) Get(id string) (*Instance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.byID[id]
	return inst, ok
}

// List returns live instances ordered by id.
func (r *Registry) List() []*Instance {
	r.mu.RLock()
	out := make([]*Instance, 0, len(r.byID))
	for _, inst := range r.byID {
		out = append(out, inst)
	}
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b *Instance) int { return strings.Compare(a.ID, b.ID) })
	return out
}
