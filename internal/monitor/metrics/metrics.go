package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Risk         *prometheus.GaugeVec
	Cycles       prometheus.Counter
	Violations   prometheus.Histogram
	Remediations *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Risk: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sbos_monitor_risk",
			Help: "1 while the named risk flag is raised",
		}, []string{"condition"}),
		Cycles: f.NewCounter(prometheus.CounterOpts{
			Name: "sbos_monitor_cycles_total",
			Help: "Completed monitor windows",
		}),
		Violations: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "sbos_monitor_window_violations",
			Help:    "Accumulated below-minimum samples per window",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		Remediations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sbos_monitor_remediations_total",
			Help: "Remediation actions executed by type",
		}, []string{"action"}),
	}
}

func (m *Metrics) SetRisk(condition string, raised bool) {
	if m == nil {
		return
	}
	v := 0.0
	if raised {
		v = 1
	}
	m.Risk.WithLabelValues(condition).Set(v)
}

func (m *Metrics) ObserveCycle(violations int) {
	if m == nil {
		return
	}
	m.Cycles.Inc()
	m.Violations.Observe(float64(violations))
}

func (m *Metrics) IncRemediation(action string) {
	if m == nil {
		return
	}
	m.Remediations.WithLabelValues(action).Inc()
}
