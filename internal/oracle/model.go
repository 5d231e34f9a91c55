package oracle

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entity is one node of the building model. Points are entities with a
// point class; zones, equipment and floors are entities too, so typed
// manifest arguments can be checked against them.
type Entity struct {
	ID      string            `yaml:"id"`
	Label   string            `yaml:"label"`
	Class   string            `yaml:"class"`
	Tags    map[string]string `yaml:"tags,omitempty"`
	Initial *float64          `yaml:"initial,omitempty"`
}

// Model is the on-disk building description.
type Model struct {
	Entities []Entity `yaml:"entities"`
}

// LoadModel reads a YAML model file.
func LoadModel(path string) (Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Model{}, fmt.Errorf("read model %s: %w", path, err)
	}
	return ParseModel(raw)
}

// ParseModel decodes and checks a YAML model document.
func ParseModel(raw []byte) (Model, error) {
	var m Model
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return Model{}, fmt.Errorf("decode model: %w", err)
	}
	if err := m.Validate(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// Validate checks ids are present and unique and labels are unambiguous.
func (m Model) Validate() error {
	ids := make(map[string]struct{}, len(m.Entities))
	labels := make(map[string]string, len(m.Entities))
	for i, e := range m.Entities {
		if e.ID == "" {
			return fmt.Errorf("model entity %d: id is required", i)
		}
		if _, dup := ids[e.ID]; dup {
			return fmt.Errorf("model entity %q: duplicate id", e.ID)
		}
		ids[e.ID] = struct{}{}
		if e.Label == "" {
			continue
		}
		if other, dup := labels[e.Label]; dup {
			return fmt.Errorf("model entity %q: label %q already used by %q", e.ID, e.Label, other)
		}
		labels[e.Label] = e.ID
	}
	return nil
}

// LocalName strips a namespace from an IRI or prefixed name:
// "https://brickschema.org/schema/Brick#Cooling_Setpoint" and
// "brick:Cooling_Setpoint" both become "Cooling_Setpoint".
func LocalName(s string) string {
	if i := strings.LastIndex(s, "#"); i >= 0 {
		return s[i+1:]
	}
	if strings.Contains(s, "://") {
		return s[strings.LastIndex(s, "/")+1:]
	}
	if i := strings.LastIndex(s, ":"); i >= 0 {
		return s[i+1:]
	}
	return s
}
