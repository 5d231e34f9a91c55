package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds process-wide administrative metrics.
type Metrics struct {
	Reloads       *prometheus.CounterVec
	Promotions    prometheus.Counter
	LiveInstances prometheus.Gauge
}

// New creates and registers the metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Reloads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sbos_reloads_total",
			Help: "Configuration reloads by result",
		}, []string{"result"}),
		Promotions: f.NewCounter(prometheus.CounterOpts{
			Name: "sbos_shadow_promotions_total",
			Help: "Successful shadow chain promotions",
		}),
		LiveInstances: f.NewGauge(prometheus.GaugeOpts{
			Name: "sbos_live_instances",
			Help: "Registered application instances",
		}),
	}
}

// ObserveReload counts a reload attempt.
func (m *Metrics) ObserveReload(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Reloads.WithLabelValues(result).Inc()
}

func (m *Metrics) IncPromotions() {
	if m == nil {
		return
	}
	m.Promotions.Inc()
}

func (m *Metrics) SetLiveInstances(n int) {
	if m == nil {
		return
	}
	m.LiveInstances.Set(float64(n))
}
