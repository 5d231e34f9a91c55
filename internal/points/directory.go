// Package points maps point labels to identifiers and identifiers to
// resource classes. The directory is rebuilt on every load and is
// read-only to the write path.
package points

import (
	"context"
	"fmt"
	"sync/atomic"
)

// Point is one addressable setpoint.
type Point struct {
	ID    string
	Label string
	Class string
}

// Source is the slice of the capability oracle the directory is built from.
type Source interface {
	Labels(ctx context.Context) ([]Labeled, error)
	ClassOf(ctx context.Context, id string) (string, bool)
}

// Labeled pairs an identifier with its label.
type Labeled struct {
	ID    string
	Label string
}

type snapshot struct {
	byLabel map[string]Point
	byID    map[string]Point
	ordered []Point
}

// Directory holds the current point snapshot. Rebuild swaps it atomically.
type Directory struct {
	current atomic.Pointer[snapshot]
}

// NewDirectory returns an empty directory.
func NewDirectory() *Directory {
	d := &Directory{}
	d.current.Store(&snapshot{byLabel: map[string]Point{}, byID: map[string]Point{}})
	return d
}

// Rebuild loads every labelled entity from src.
func (d *Directory) Rebuild(ctx context.Context, src Source) error {
	labeled, err := src.Labels(ctx)
	if err != nil {
		return fmt.Errorf("list labels: %w", err)
	}
	snap := &snapshot{
		byLabel: make(map[string]Point, len(labeled)),
		byID:    make(map[string]Point, len(labeled)),
		ordered: make([]Point, 0, len(labeled)),
	}
	for _, l := range labeled {
		class, _ := src.ClassOf(ctx, l.ID)
		p := Point{ID: l.ID, Label: l.Label, Class: class}
		snap.byLabel[p.Label] = p
		snap.byID[p.ID] = p
		snap.ordered = append(snap.ordered, p)
	}
	d.current.Store(snap)
	return nil
}

// ResolveLabel returns the identifier for a label.
func (d *Directory) ResolveLabel(label string) (string, bool) {
	p, ok := d.current.Load().byLabel[label]
	return p.ID, ok
}

// ResolveClass returns the class of an identifier, or "" when unknown.
func (d *Directory) ResolveClass(id string) string {
	return d.current.Load().byID[id].Class
}

// Label returns the label of an identifier.
func (d *Directory) Label(id string) (string, bool) {
	p, ok := d.current.Load().byID[id]
	return p.Label, ok
}

// All returns every point in load order.
func (d *Directory) All() []Point {
	snap := d.current.Load()
	return append([]Point(nil), snap.ordered...)
}
