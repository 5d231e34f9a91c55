// Package timeseries holds Recorder implementations for the resource proxy.
package timeseries

import (
	"context"
	"slices"
	"sync"

	"sbos/internal/proxy"
)

// Memory keeps samples in process.
type Memory struct {
	mu      sync.Mutex
	samples []proxy.Sample
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Record(_ context.Context, s proxy.Sample) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = append(m.samples, s)
	return nil
}

// Samples returns recorded samples, optionally filtered by label.
func (m *Memory) Samples(label string) []proxy.Sample {
	m.mu.Lock()
	defer m.mu.Unlock()
	if label == "" {
		return slices.Clone(m.samples)
	}
	var out []proxy.Sample
	for _, s := range m.samples {
		if s.Label == label {
			out = append(out, s)
		}
	}
	return out
}
