package capability

import "slices"

// Set is a computed capability pair. It is immutable once built; revocation
// replaces the whole set.
type Set struct {
	read     []string
	write    []string
	readIdx  map[string]struct{}
	writeIdx map[string]struct{}
}

// NewSet builds a set preserving the given order and dropping duplicates.
func NewSet(read, write []string) *Set {
	s := &Set{readIdx: map[string]struct{}{}, writeIdx: map[string]struct{}{}}
	s.read = dedupInto(read, s.readIdx)
	s.write = dedupInto(write, s.writeIdx)
	return s
}

func dedupInto(ids []string, idx map[string]struct{}) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := idx[id]; ok {
			continue
		}
		idx[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// WithoutWrite returns a copy with an empty write set.
func (s *Set) WithoutWrite() *Set {
	return NewSet(s.Read(), nil)
}

func (s *Set) CanRead(id string) bool {
	if s == nil {
		return false
	}
	_, ok := s.readIdx[id]
	return ok
}

func (s *Set) CanWrite(id string) bool {
	if s == nil {
		return false
	}
	_, ok := s.writeIdx[id]
	return ok
}

// Read returns the readable identifiers in derivation order.
func (s *Set) Read() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.read)
}

// Write returns the writable identifiers in derivation order.
func (s *Set) Write() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.write)
}

// Points returns the sorted union of read and write identifiers.
func (s *Set) Points() []string {
	if s == nil {
		return nil
	}
	all := make([]string, 0, len(s.read)+len(s.write))
	all = append(all, s.read...)
	all = append(all, s.write...)
	slices.Sort(all)
	return slices.Compact(all)
}

// Equal reports whether two sets grant the same identifiers in the same order.
func (s *Set) Equal(o *Set) bool {
	return slices.Equal(s.Read(), o.Read()) && slices.Equal(s.Write(), o.Write())
}
