package management

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus metrics for upstream management API calls. Registered in the
// default registry and exposed via the /metrics endpoint alongside the
// HTTP middleware metrics.

var (
	// upstreamRequestsTotal counts management API calls by operation and result.
	//
	// Labels: operation (get_user, list_users, daily_stats, ...), status (success, error)
	// Type: Counter
	upstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Total number of management API requests",
		},
		[]string{"operation", "status"},
	)

	// upstreamRequestDuration measures management API round-trip time.
	//
	// Labels: operation
	// Type: Histogram
	upstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Management API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

func init() {
	prometheus.MustRegister(upstreamRequestsTotal)
	prometheus.MustRegister(upstreamRequestDuration)
}

// observeRequest records one management API round trip.
func observeRequest(operation string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	upstreamRequestsTotal.WithLabelValues(operation, status).Inc()
	upstreamRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
