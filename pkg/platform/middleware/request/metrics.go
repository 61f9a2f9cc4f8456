package request

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	EndpointLatency *prometheus.HistogramVec
	Responses       *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		EndpointLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "elan_http_request_duration_seconds",
			Help:    "Latency of HTTP endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		Responses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "elan_http_responses_total",
			Help: "HTTP responses by route and status code",
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) Observe(method, route string, status int, elapsed time.Duration) {
	m.EndpointLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
	m.Responses.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}
