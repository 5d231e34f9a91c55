package capability

import (
	"strings"

	"github.com/go-playground/validator/v10"

	dErrors "sbos/pkg/domain-errors"
)

// Delegation selects whose authority an application acts under.
type Delegation string

const (
	// Augmented apps act on their own profile-derived authority.
	Augmented Delegation = "augmented"
	// Delegated apps are confined to the intersection with a user's grants.
	Delegated Delegation = "delegated"
)

// DefaultWriteRateLimit applies when a manifest omits its write rate.
const DefaultWriteRateLimit = 60

// ParseDelegation accepts the two modes plus the legacy "augmentation" spelling.
func ParseDelegation(s string) (Delegation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "augmented", "augmentation":
		return Augmented, nil
	case "delegated", "delegation":
		return Delegated, nil
	default:
		return "", dErrors.New(dErrors.CodeManifestInvalid, "unknown delegation mode: "+s)
	}
}

// Permissions is the manifest permission flag set.
type Permissions struct {
	Write bool `json:"write" yaml:"write"`
}

// Manifest is supplied once at registration and never mutated.
type Manifest struct {
	AppID                string            `json:"app_id" yaml:"app_id" validate:"required,max=128"`
	Profile              string            `json:"profile" yaml:"profile" validate:"required"`
	Args                 map[string]string `json:"args" yaml:"args"`
	Delegation           Delegation        `json:"delegation" yaml:"delegation" validate:"required"`
	WriteRateLimitPerMin *int              `json:"write_rate_limit_per_min,omitempty" yaml:"write_rate_limit_per_min" validate:"omitnil,gte=0"`
	Permissions          Permissions       `json:"permissions" yaml:"permissions"`
	User                 string            `json:"user" yaml:"user"`
}

var manifestValidate = validator.New()

// WriteLimit is the per-minute write budget. An explicit zero blocks every
// write; only an absent value takes the default.
func (m Manifest) WriteLimit() int {
	if m.WriteRateLimitPerMin == nil {
		return DefaultWriteRateLimit
	}
	return *m.WriteRateLimitPerMin
}

// Normalize fills defaults and canonicalizes the delegation mode, then runs
// struct validation. Failures are ManifestInvalid.
func (m *Manifest) Normalize() error {
	if m == nil {
		return dErrors.New(dErrors.CodeManifestInvalid, "manifest is required")
	}
	if m.Delegation != "" {
		d, err := ParseDelegation(string(m.Delegation))
		if err != nil {
			return err
		}
		m.Delegation = d
	}
	if m.WriteRateLimitPerMin == nil {
		limit := DefaultWriteRateLimit
		m.WriteRateLimitPerMin = &limit
	}
	if m.Args == nil {
		m.Args = map[string]string{}
	}
	if err := manifestValidate.Struct(m); err != nil {
		return dErrors.Wrap(err, dErrors.CodeManifestInvalid, "invalid manifest: "+err.Error())
	}
	return nil
}
