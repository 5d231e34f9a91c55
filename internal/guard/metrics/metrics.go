package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for the read and write pipelines.
type Metrics struct {
	Decisions      *prometheus.CounterVec
	ShadowFindings *prometheus.CounterVec
	Latency        *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Decisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sbos_guard_decisions_total",
			Help: "Pipeline outcomes by operation, decision and the stage that decided",
		}, []string{"operation", "decision", "stage"}),
		ShadowFindings: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sbos_guard_shadow_findings_total",
			Help: "Shadow validator rejections by validator type",
		}, []string{"validator"}),
		Latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sbos_guard_pipeline_duration_seconds",
			Help:    "Pipeline execution time including lock wait",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"operation"}),
	}
}

func (m *Metrics) ObserveDecision(operation, decision, stage string) {
	if m == nil {
		return
	}
	m.Decisions.WithLabelValues(operation, decision, stage).Inc()
}

func (m *Metrics) IncShadowFinding(validator string) {
	if m == nil {
		return
	}
	m.ShadowFindings.WithLabelValues(validator).Inc()
}

func (m *Metrics) ObserveLatency(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.Latency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
