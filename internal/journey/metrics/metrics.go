package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for journey governance.
type Metrics struct {
	JourneysCreated   prometheus.Counter
	JourneysDeleted   prometheus.Counter
	VersionsAppended  prometheus.Counter
	Transitions       *prometheus.CounterVec
	TransitionDenials *prometheus.CounterVec
	TransitionLatency prometheus.Histogram
	ShardLockWait     prometheus.Histogram
}

// New registers journey collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		JourneysCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "elan_journeys_created_total",
			Help: "Total number of journeys created",
		}),
		JourneysDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "elan_journeys_deleted_total",
			Help: "Total number of journeys deleted, including erasure",
		}),
		VersionsAppended: f.NewCounter(prometheus.CounterOpts{
			Name: "elan_journey_versions_appended_total",
			Help: "Total number of journey versions appended",
		}),
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "elan_journey_transitions_total",
			Help: "Successful workflow transitions, labeled by from, event and to",
		}, []string{"from", "event", "to"}),
		TransitionDenials: f.NewCounterVec(prometheus.CounterOpts{
			Name: "elan_journey_transition_denials_total",
			Help: "Rejected transition attempts, labeled by error code",
		}, []string{"code"}),
		TransitionLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "elan_journey_transition_latency_seconds",
			Help:    "Latency of transition operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		ShardLockWait: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "elan_journey_shard_lock_wait_seconds",
			Help:    "Time spent waiting to acquire a journey shard lock",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncrementTransition(from, event, to string) {
	m.Transitions.WithLabelValues(from, event, to).Inc()
}

func (m *Metrics) IncrementDenial(code string) {
	m.TransitionDenials.WithLabelValues(code).Inc()
}

func (m *Metrics) ObserveTransitionLatency(durationSeconds float64) {
	m.TransitionLatency.Observe(durationSeconds)
}
