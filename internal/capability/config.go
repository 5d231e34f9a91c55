package capability

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ArgSpec declares the semantic type a profile argument must be bound to.
type ArgSpec struct {
	Type string `yaml:"type"`
}

// Profile is a permission template rendered with manifest arguments.
type Profile struct {
	Query string             `yaml:"query"`
	Args  map[string]ArgSpec `yaml:"args"`
}

// Profiles is the permission_profiles.yaml document.
type Profiles struct {
	Profiles map[string]Profile `yaml:"profiles"`
}

// UserGrant holds the stored queries describing a user's own authority.
type UserGrant struct {
	ReadQuery  string `yaml:"read_query"`
	WriteQuery string `yaml:"write_query"`
}

// Users is the users.yaml document.
type Users struct {
	Users map[string]UserGrant `yaml:"users"`
}

// LoadProfiles reads permission profiles from disk.
func LoadProfiles(path string) (Profiles, error) {
	var p Profiles
	if err := decodeFile(path, &p); err != nil {
		return Profiles{}, err
	}
	for name, prof := range p.Profiles {
		if prof.Query == "" {
			return Profiles{}, fmt.Errorf("profile %q: query is required", name)
		}
	}
	return p, nil
}

// LoadUsers reads user grants from disk.
func LoadUsers(path string) (Users, error) {
	var u Users
	if err := decodeFile(path, &u); err != nil {
		return Users{}, err
	}
	return u, nil
}

func decodeFile(path string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
