package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the user directory.
type Metrics struct {
	InvitesIssued         *prometheus.CounterVec
	InvitesAccepted       *prometheus.CounterVec
	InvitesRejected       *prometheus.CounterVec
	ViewerResolveDuration prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		InvitesIssued: f.NewCounterVec(prometheus.CounterOpts{
			Name: "elan_directory_invites_issued_total",
			Help: "Total number of invites issued, labeled by invited role",
		}, []string{"role"}),
		InvitesAccepted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "elan_directory_invites_accepted_total",
			Help: "Total number of invites accepted, labeled by role",
		}, []string{"role"}),
		InvitesRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "elan_directory_invites_rejected_total",
			Help: "Total number of failed invite redemptions, labeled by reason",
		}, []string{"reason"}),
		ViewerResolveDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "elan_directory_viewer_resolve_duration_seconds",
			Help:    "Time to resolve an authenticated principal into a viewer",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
	}
}
