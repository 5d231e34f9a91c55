// Package proxy is the resource proxy: the authoritative live value of every
// point plus a time series of accepted writes and overrides.
package proxy

import (
	"context"
	"log/slog"
	"maps"
	"sync"
	"time"

	"sbos/pkg/requestcontext"
)

// Sample sources.
const (
	SourceWrite = "write"
	SourceReset = "reset"
)

// Sample is one time-series point.
type Sample struct {
	Label  string
	Value  float64
	Time   time.Time
	Source string
}

// Recorder appends samples to a time series.
type Recorder interface {
	Record(ctx context.Context, s Sample) error
}

// Proxy holds live point values. It performs no validation of its own.
type Proxy struct {
	mu       sync.RWMutex
	values   map[string]float64
	recorder Recorder
	logger   *slog.Logger
}

type Option func(*Proxy)

func WithRecorder(r Recorder) Option {
	return func(p *Proxy) {
		p.recorder = r
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Proxy) {
		p.logger = logger
	}
}

// New seeds a proxy with initial values keyed by label.
func New(initial map[string]float64, opts ...Option) *Proxy {
	p := &Proxy{
		values: maps.Clone(initial),
		logger: slog.New(slog.DiscardHandler),
	}
	if p.values == nil {
		p.values = map[string]float64{}
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Read returns the current value of a label.
func (p *Proxy) Read(label string) (float64, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.values[label]
	return v, ok
}

// Write commits a validated value and records a sample.
func (p *Proxy) Write(ctx context.Context, label string, value float64) {
	p.set(ctx, label, value, SourceWrite)
}

// Reset forces a value outside the write pipeline.
func (p *Proxy) Reset(ctx context.Context, label string, value float64) {
	p.set(ctx, label, value, SourceReset)
}

func (p *Proxy) set(ctx context.Context, label string, value float64, source string) {
	p.mu.Lock()
	p.values[label] = value
	p.mu.Unlock()

	if p.recorder == nil {
		return
	}
	sample := Sample{Label: label, Value: value, Time: requestcontext.Now(ctx), Source: source}
	if err := p.recorder.Record(ctx, sample); err != nil {
		p.logger.WarnContext(ctx, "time series record failed",
			"point_label", label,
			"source", source,
			"error", err,
		)
	}
}

// Seed adds initial values for labels the proxy does not know yet.
// Existing live values are kept.
func (p *Proxy) Seed(initial map[string]float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for label, v := range initial {
		if _, ok := p.values[label]; !ok {
			p.values[label] = v
		}
	}
}

// Snapshot copies the live state.
func (p *Proxy) Snapshot() map[string]float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return maps.Clone(p.values)
}
