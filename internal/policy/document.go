package policy

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"sbos/internal/oracle"
)

// Guard holds per-class numeric bounds.
type Guard struct {
	Min     *float64 `yaml:"min"`
	Max     *float64 `yaml:"max"`
	MaxStep *float64 `yaml:"max_step"`
}

// ValidatorSpec is one chain entry in policy.yaml.
type ValidatorSpec struct {
	Type string `yaml:"type"`
}

// ChainSpec maps resource classes to ordered validator entries.
type ChainSpec struct {
	Defaults map[string][]ValidatorSpec `yaml:"defaults"`
}

// Remediation action types.
const (
	ActionResetPoints        = "reset_points"
	ActionRevokeCapabilities = "revoke_capabilities"
	ActionTerminateApps      = "terminate_apps"
)

// ActionSpec is one remediation step.
type ActionSpec struct {
	Type  string `yaml:"type"`
	Match string `yaml:"match"`
}

// MonitorSpec configures the anomaly monitor.
type MonitorSpec struct {
	WindowSeconds  float64      `yaml:"window_seconds"`
	ThresholdCount int          `yaml:"threshold_count"`
	CoolingMin     *float64     `yaml:"cooling_min"`
	CoolingReset   *float64     `yaml:"cooling_reset"`
	ClassMatch     string       `yaml:"class_match"`
	LabelMatch     string       `yaml:"label_match"`
	Actions        []ActionSpec `yaml:"actions"`
}

// Monitor defaults.
const (
	DefaultWindowSeconds  = 12
	DefaultThresholdCount = 5
	DefaultCoolingMin     = 20.0
	DefaultCoolingReset   = 22.0
	DefaultLabelMatch     = "Cool_SP"
)

// Window returns the sampling window.
func (m MonitorSpec) Window() time.Duration {
	if m.WindowSeconds <= 0 {
		return DefaultWindowSeconds * time.Second
	}
	return time.Duration(m.WindowSeconds * float64(time.Second))
}

// Threshold returns the violation count that raises the risk flag.
func (m MonitorSpec) Threshold() int {
	if m.ThresholdCount <= 0 {
		return DefaultThresholdCount
	}
	return m.ThresholdCount
}

// Min returns the cooling minimum.
func (m MonitorSpec) Min() float64 {
	if m.CoolingMin == nil {
		return DefaultCoolingMin
	}
	return *m.CoolingMin
}

// Reset returns the value remediation forces points to.
func (m MonitorSpec) Reset() float64 {
	if m.CoolingReset == nil {
		return DefaultCoolingReset
	}
	return *m.CoolingReset
}

// Selectors returns the class and label substrings that pick monitored
// points. A point matches when every non-empty selector is contained in it.
func (m MonitorSpec) Selectors() (class, label string) {
	if m.ClassMatch == "" && m.LabelMatch == "" {
		return "", DefaultLabelMatch
	}
	return m.ClassMatch, m.LabelMatch
}

// Document is policy.yaml.
type Document struct {
	Constraints      map[string]any   `yaml:"constraints"`
	Guards           map[string]Guard `yaml:"guards"`
	Validators       ChainSpec        `yaml:"validators"`
	ShadowValidators ChainSpec        `yaml:"shadow_validators"`
	Monitor          MonitorSpec      `yaml:"monitor"`
}

// LoadDocument reads and checks policy.yaml.
func LoadDocument(path string) (Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read policy %s: %w", path, err)
	}
	return ParseDocument(raw)
}

// ParseDocument decodes policy YAML and rejects unknown validator or action
// types so a bad tag fails at load rather than at write time.
func ParseDocument(raw []byte) (Document, error) {
	var d Document
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return Document{}, fmt.Errorf("decode policy: %w", err)
	}
	if _, err := d.Chains(); err != nil {
		return Document{}, err
	}
	for i, a := range d.Monitor.Actions {
		switch a.Type {
		case ActionResetPoints, ActionRevokeCapabilities, ActionTerminateApps:
		default:
			return Document{}, fmt.Errorf("monitor action %d: unknown type %q", i, a.Type)
		}
	}
	for class, g := range d.Guards {
		if g.Min != nil && g.Max != nil && *g.Min > *g.Max {
			return Document{}, fmt.Errorf("guard %s: min exceeds max", class)
		}
	}
	return d, nil
}

// Chains is the typed form of both chain tables, keyed by class local name.
type Chains struct {
	Enforced map[string][]ValidatorType
	Shadow   map[string][]ValidatorType
}

// Chains converts the chain specs, failing on any unknown type.
func (d Document) Chains() (Chains, error) {
	enforced, err := typedChains("validators", d.Validators)
	if err != nil {
		return Chains{}, err
	}
	shadow, err := typedChains("shadow_validators", d.ShadowValidators)
	if err != nil {
		return Chains{}, err
	}
	return Chains{Enforced: enforced, Shadow: shadow}, nil
}

func typedChains(section string, spec ChainSpec) (map[string][]ValidatorType, error) {
	out := make(map[string][]ValidatorType, len(spec.Defaults))
	for class, entries := range spec.Defaults {
		chain := make([]ValidatorType, 0, len(entries))
		for i, e := range entries {
			t, err := ParseValidatorType(e.Type)
			if err != nil {
				return nil, fmt.Errorf("%s.%s[%d]: %w", section, class, i, err)
			}
			chain = append(chain, t)
		}
		out[oracle.LocalName(class)] = chain
	}
	return out, nil
}
