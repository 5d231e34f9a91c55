// Package capability turns application manifests into read/write
// capability sets using profile templates and the capability oracle.
package capability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"text/template"

	dErrors "sbos/pkg/domain-errors"
)

// Oracle is the query surface the resolver needs.
type Oracle interface {
	Query(ctx context.Context, selector string) ([]string, error)
	IsInstanceOf(ctx context.Context, label, semanticType string) (bool, error)
}

// Resolver computes capability sets. Profiles and users can be swapped on
// reload; each Compute call reads one consistent pair.
type Resolver struct {
	oracle Oracle
	logger *slog.Logger

	mu       sync.RWMutex
	profiles Profiles
	users    Users
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the resolver logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver builds a resolver over an oracle.
func NewResolver(oracle Oracle, profiles Profiles, users Users, opts ...Option) (*Resolver, error) {
	if oracle == nil {
		return nil, errors.New("oracle is required")
	}
	r := &Resolver{
		oracle:   oracle,
		profiles: profiles,
		users:    users,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Replace swaps in newly loaded profiles and user grants.
func (r *Resolver) Replace(profiles Profiles, users Users) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles = profiles
	r.users = users
}

// Compute derives the capability set of a manifest.
//
// Augmented manifests get the profile-derived set (write mirrors read when
// the write permission is set). Delegated manifests are intersected with the
// user's own stored read and write queries; a missing query grants nothing.
func (r *Resolver) Compute(ctx context.Context, m Manifest) (*Set, error) {
	r.mu.RLock()
	profiles, users := r.profiles, r.users
	r.mu.RUnlock()

	selector, err := r.render(ctx, profiles, m)
	if err != nil {
		return nil, err
	}
	appRead, err := r.oracle.Query(ctx, selector)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "capability query failed")
	}
	var appWrite []string
	if m.Permissions.Write {
		appWrite = appRead
	}

	if m.Delegation == Augmented {
		return NewSet(appRead, appWrite), nil
	}

	grant := users.Users[m.User]
	userRead, err := r.userSet(ctx, grant.ReadQuery)
	if err != nil {
		return nil, err
	}
	userWrite, err := r.userSet(ctx, grant.WriteQuery)
	if err != nil {
		return nil, err
	}
	return NewSet(intersect(appRead, userRead), intersect(appWrite, userWrite)), nil
}

func (r *Resolver) render(ctx context.Context, profiles Profiles, m Manifest) (string, error) {
	prof, ok := profiles.Profiles[m.Profile]
	if !ok {
		return "", dErrors.New(dErrors.CodeManifestInvalid, "unknown profile: "+m.Profile)
	}
	for name, spec := range prof.Args {
		value, bound := m.Args[name]
		if !bound || spec.Type == "" {
			continue
		}
		ok, err := r.oracle.IsInstanceOf(ctx, value, spec.Type)
		if err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeInternal, "type check failed")
		}
		if !ok {
			r.logger.InfoContext(ctx, "manifest argument type check failed",
				"app_id", m.AppID,
				"arg", name,
				"label", value,
				"type", spec.Type,
			)
			return "", dErrors.New(dErrors.CodeManifestInvalid,
				fmt.Sprintf("Typed argument check failed: label '%s' is not a %s", value, spec.Type))
		}
	}

	tpl, err := template.New(m.Profile).Option("missingkey=error").Parse(prof.Query)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "profile template is invalid")
	}
	var sb strings.Builder
	if err := tpl.Execute(&sb, m.Args); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeManifestInvalid, "profile arguments do not satisfy template")
	}
	return sb.String(), nil
}

func (r *Resolver) userSet(ctx context.Context, query string) ([]string, error) {
	if query == "" {
		return nil, nil
	}
	ids, err := r.oracle.Query(ctx, query)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "user grant query failed")
	}
	return ids, nil
}

func intersect(app, user []string) []string {
	allowed := make(map[string]struct{}, len(user))
	for _, id := range user {
		allowed[id] = struct{}{}
	}
	var out []string
	for _, id := range app {
		if _, ok := allowed[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
