// Package oracle is the in-process capability oracle: it answers label,
// class, instance-of and selector queries over the building model.
package oracle

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"
)

// Labeled pairs an identifier with its human label.
type Labeled struct {
	ID    string
	Label string
}

// Graph holds one loaded model. Replace swaps the whole model atomically
// so a reload never exposes a half-built index.
type Graph struct {
	mu      sync.RWMutex
	order   []Entity
	byID    map[string]Entity
	byLabel map[string]Entity
}

// NewGraph indexes a model.
func NewGraph(m Model) (*Graph, error) {
	g := &Graph{}
	if err := g.Replace(m); err != nil {
		return nil, err
	}
	return g, nil
}

// Replace swaps in a new model.
func (g *Graph) Replace(m Model) error {
	if err := m.Validate(); err != nil {
		return err
	}
	byID := make(map[string]Entity, len(m.Entities))
	byLabel := make(map[string]Entity, len(m.Entities))
	for _, e := range m.Entities {
		byID[e.ID] = e
		if e.Label != "" {
			byLabel[e.Label] = e
		}
	}
	order := append([]Entity(nil), m.Entities...)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.order, g.byID, g.byLabel = order, byID, byLabel
	return nil
}

// Query evaluates a selector and returns matching identifiers in model order.
// A selector is whitespace-separated key=glob terms that must all match;
// keys are id, label, class (compared by local name) or any tag name.
func (g *Graph) Query(_ context.Context, selector string) ([]string, error) {
	terms, err := parseSelector(selector)
	if err != nil {
		return nil, err
	}
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []string
	for _, e := range g.order {
		if terms.match(e) {
			out = append(out, e.ID)
		}
	}
	return out, nil
}

// LabelOf returns the label of an identifier.
func (g *Graph) LabelOf(_ context.Context, id string) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.byID[id]
	if !ok || e.Label == "" {
		return "", false
	}
	return e.Label, true
}

// ClassOf returns the class of an identifier.
func (g *Graph) ClassOf(_ context.Context, id string) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.byID[id]
	if !ok || e.Class == "" {
		return "", false
	}
	return e.Class, true
}

// IsInstanceOf reports whether the entity labelled label has the given type.
func (g *Graph) IsInstanceOf(_ context.Context, label, semanticType string) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.byLabel[label]
	if !ok {
		return false, nil
	}
	return LocalName(e.Class) == LocalName(semanticType), nil
}

// Labels returns every labelled entity.
func (g *Graph) Labels(_ context.Context) ([]Labeled, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Labeled, 0, len(g.byLabel))
	for _, e := range g.order {
		if e.Label != "" {
			out = append(out, Labeled{ID: e.ID, Label: e.Label})
		}
	}
	return out, nil
}

// InitialValues returns label -> initial value for entities that declare one.
func (g *Graph) InitialValues() map[string]float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(map[string]float64)
	for _, e := range g.order {
		if e.Initial != nil && e.Label != "" {
			out[e.Label] = *e.Initial
		}
	}
	return out
}

type term struct {
	key     string
	pattern string
}

type selector []term

func parseSelector(s string) (selector, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty selector")
	}
	sel := make(selector, 0, len(fields))
	for _, f := range fields {
		key, pattern, ok := strings.Cut(f, "=")
		if !ok || key == "" || pattern == "" {
			return nil, fmt.Errorf("malformed selector term %q", f)
		}
		if _, err := path.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("selector term %q: %w", f, err)
		}
		sel = append(sel, term{key: key, pattern: pattern})
	}
	return sel, nil
}

func (sel selector) match(e Entity) bool {
	for _, t := range sel {
		var value string
		switch t.key {
		case "id":
			value = e.ID
		case "label":
			value = e.Label
		case "class":
			if ok, _ := path.Match(t.pattern, e.Class); ok {
				continue
			}
			value = LocalName(e.Class)
		default:
			v, ok := e.Tags[t.key]
			if !ok {
				return false
			}
			value = v
		}
		if ok, _ := path.Match(t.pattern, value); !ok {
			return false
		}
	}
	return true
}
