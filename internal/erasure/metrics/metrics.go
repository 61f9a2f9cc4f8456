package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Erasures        *prometheus.CounterVec
	EntitiesErased  *prometheus.CounterVec
	ErasureDuration *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Erasures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "elan_erasures_total",
			Help: "Total number of user erasures, labeled by outcome",
		}, []string{"outcome"}),
		EntitiesErased: f.NewCounterVec(prometheus.CounterOpts{
			Name: "elan_erasure_entities_total",
			Help: "Total number of entities removed by erasure, labeled by kind",
		}, []string{"kind"}),
		ErasureDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "elan_erasure_step_duration_seconds",
			Help:    "Duration of each erasure step",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"step"}),
	}
}

func (m *Metrics) ObserveStep(step string, d time.Duration) {
	m.ErasureDuration.WithLabelValues(step).Observe(d.Seconds())
}
