package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Transport metrics
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jap_transport_requests_total",
			Help: "Total number of JSON:API requests completed, by HTTP status",
		},
		[]string{"method", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jap_transport_request_duration_seconds",
			Help:    "Duration of JSON:API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	RequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jap_transport_errors_total",
			Help: "Total number of JSON:API requests that failed before a response arrived",
		},
		[]string{"method"},
	)
)
