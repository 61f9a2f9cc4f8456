package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	InstitutionsCreated     prometheus.Counter
	InstitutionsDeactivated prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		InstitutionsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "elan_institutions_created_total",
			Help: "Total number of institutions created",
		}),
		InstitutionsDeactivated: f.NewCounter(prometheus.CounterOpts{
			Name: "elan_institutions_deactivated_total",
			Help: "Total number of institutions deactivated",
		}),
	}
}
