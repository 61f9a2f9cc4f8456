package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for advisor visibility grants.
type Metrics struct {
	GrantsIssued  *prometheus.CounterVec
	GrantsRevoked prometheus.Counter
	ActiveGrants  prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		GrantsIssued: f.NewCounterVec(prometheus.CounterOpts{
			Name: "elan_visibility_grants_total",
			Help: "Total number of visibility grants, labeled by kind (all or list)",
		}, []string{"kind"}),
		GrantsRevoked: f.NewCounter(prometheus.CounterOpts{
			Name: "elan_visibility_revocations_total",
			Help: "Total number of visibility grants revoked",
		}),
		ActiveGrants: f.NewGauge(prometheus.GaugeOpts{
			Name: "elan_visibility_active_grants",
			Help: "Current number of active advisor visibility grants",
		}),
	}
}
