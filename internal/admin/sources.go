package admin

import (
	"fmt"
	"path/filepath"

	"sbos/internal/capability"
	"sbos/internal/oracle"
	"sbos/internal/policy"
)

// Default file names inside the configuration directory.
const (
	ModelFile    = "model.yaml"
	PolicyFile   = "policy.yaml"
	ProfilesFile = "permission_profiles.yaml"
	UsersFile    = "users.yaml"
)

// Paths locates the four configuration files.
type Paths struct {
	Model    string
	Policy   string
	Profiles string
	Users    string
}

// PathsIn returns the default file layout under dir.
func PathsIn(dir string) Paths {
	return Paths{
		Model:    filepath.Join(dir, ModelFile),
		Policy:   filepath.Join(dir, PolicyFile),
		Profiles: filepath.Join(dir, ProfilesFile),
		Users:    filepath.Join(dir, UsersFile),
	}
}

// Files lists every path, for watchers.
func (p Paths) Files() []string {
	return []string{p.Model, p.Policy, p.Profiles, p.Users}
}

// Sources is one parsed configuration generation.
type Sources struct {
	Model    oracle.Model
	Policy   policy.Document
	Profiles capability.Profiles
	Users    capability.Users
}

// Load parses all four files. Nothing is applied here, so a bad file leaves
// the running configuration untouched.
func (p Paths) Load() (Sources, error) {
	var (
		src Sources
		err error
	)
	if src.Model, err = oracle.LoadModel(p.Model); err != nil {
		return Sources{}, fmt.Errorf("load model: %w", err)
	}
	if src.Policy, err = policy.LoadDocument(p.Policy); err != nil {
		return Sources{}, fmt.Errorf("load policy: %w", err)
	}
	if src.Profiles, err = capability.LoadProfiles(p.Profiles); err != nil {
		return Sources{}, fmt.Errorf("load permission profiles: %w", err)
	}
	if src.Users, err = capability.LoadUsers(p.Users); err != nil {
		return Sources{}, fmt.Errorf("load users: %w", err)
	}
	return src, nil
}
