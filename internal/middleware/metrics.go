package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus metrics for HTTP traffic and login outcomes. All metrics are
// registered in the default registry and exposed via /metrics.

var (
	// httpRequestsTotal counts all HTTP requests by method, path, and status.
	//
	// Labels: method, path, status
	// Type: Counter
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration measures request processing time for latency
	// analysis (P50, P95, P99).
	//
	// Labels: method, path
	// Type: Histogram
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// httpResponseSize tracks response body sizes for bandwidth monitoring.
	//
	// Labels: method, path
	// Type: Histogram
	httpResponseSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// loginAttemptsTotal counts hosted-login outcomes by result.
	//
	// Labels: result (success, invalid_state, exchange_failed, ...)
	// Type: Counter
	loginAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_login_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(httpResponseSize)
	prometheus.MustRegister(loginAttemptsTotal)
}

// Metrics creates middleware that records request count, duration, and
// response size for every HTTP request.
//
// Example Prometheus queries:
//
//	# Request rate by endpoint
//	rate(http_requests_total[5m])
//
//	# P95 latency
//	histogram_quantile(0.95, rate(http_request_duration_seconds_bucket[5m]))
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := strconv.Itoa(ww.Status())
			httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
			httpResponseSize.WithLabelValues(r.Method, r.URL.Path).Observe(float64(ww.BytesWritten()))
		})
	}
}

// MetricsHandler returns the Prometheus metrics handler for the /metrics
// endpoint. Protect or firewall this path in production.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// IncrementLoginAttempts increments the login attempts counter.
// Call from the auth handlers with an outcome label.
//
// Example:
//
//	middleware.IncrementLoginAttempts("invalid_state")
func IncrementLoginAttempts(result string) {
	loginAttemptsTotal.WithLabelValues(result).Inc()
}
