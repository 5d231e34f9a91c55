package timeseries

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sbos/internal/proxy"
	"sbos/pkg/platform/circuit"
)

type flakyRecorder struct {
	fail     bool
	calls    int
	deadline bool
}

func (f *flakyRecorder) Record(ctx context.Context, _ proxy.Sample) error {
	f.calls++
	_, f.deadline = ctx.Deadline()
	if f.fail {
		return errors.New("influx write: connection refused")
	}
	return nil
}

func TestGuardedSkipsWhileOpenAndRecovers(t *testing.T) {
	now := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	breaker := circuit.New("influx",
		circuit.WithFailureThreshold(2),
		circuit.WithCooldown(time.Minute),
		circuit.WithClock(func() time.Time { return now }),
	)
	next := &flakyRecorder{fail: true}
	rec, err := NewGuarded(next, WithBreaker(breaker))
	require.NoError(t, err)

	ctx := context.Background()
	sample := proxy.Sample{Label: "F1_ZoneA_Cool_SP", Value: 23, Time: now, Source: proxy.SourceWrite}

	assert.Error(t, rec.Record(ctx, sample))
	assert.Error(t, rec.Record(ctx, sample))
	assert.True(t, breaker.IsOpen())
	assert.True(t, next.deadline)

	// open: the backend is not called and the sample is dropped
	assert.NoError(t, rec.Record(ctx, sample))
	assert.NoError(t, rec.Record(ctx, sample))
	assert.Equal(t, 2, next.calls)

	next.fail = false
	now = now.Add(time.Minute)
	assert.NoError(t, rec.Record(ctx, sample))
	assert.Equal(t, 3, next.calls)
	assert.False(t, breaker.IsOpen())

	assert.NoError(t, rec.Record(ctx, sample))
	assert.Equal(t, 4, next.calls)
}

func TestGuardedThroughProxy(t *testing.T) {
	next := &flakyRecorder{fail: true}
	rec, err := NewGuarded(next, WithBreaker(circuit.New("influx", circuit.WithFailureThreshold(1))))
	require.NoError(t, err)

	p := proxy.New(map[string]float64{"F1_ZoneA_Cool_SP": 23}, proxy.WithRecorder(rec))
	ctx := context.Background()
	p.Write(ctx, "F1_ZoneA_Cool_SP", 24)
	p.Write(ctx, "F1_ZoneA_Cool_SP", 25)

	v, ok := p.Read("F1_ZoneA_Cool_SP")
	require.True(t, ok)
	assert.Equal(t, 25.0, v)
	assert.Equal(t, 1, next.calls)
}

func TestNewGuardedRequiresRecorder(t *testing.T) {
	_, err := NewGuarded(nil)
	assert.Error(t, err)
}
