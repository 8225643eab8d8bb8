package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routesync_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "routesync_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Store metrics
	RecomputationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routesync_recomputations_total",
			Help: "Filtered view recomputations per surface",
		},
		[]string{"surface"},
	)

	ViewportFitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routesync_viewport_fits_total",
			Help: "Viewport fits by kind and outcome",
		},
		[]string{"kind", "status"},
	)

	ProviderFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routesync_provider_fetches_total",
			Help: "Provider fetches by surface and outcome",
		},
		[]string{"surface", "status"},
	)

	ProviderFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "routesync_provider_fetch_duration_seconds",
			Help:    "Provider fetch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"surface"},
	)

	RenamesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routesync_renames_total",
			Help: "Route renames by outcome",
		},
		[]string{"status"},
	)

	BridgeEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routesync_bridge_events_total",
			Help: "Events relayed through the synchronization bridge",
		},
		[]string{"channel"},
	)

	StreamConnectionsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "routesync_stream_connections",
			Help: "Current number of state stream WebSocket connections",
		},
	)
)

// RecordHTTPMetrics records HTTP request metrics
func RecordHTTPMetrics(method, path string, statusCode int, duration time.Duration) {
	HttpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	HttpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordFetch records a provider fetch outcome. Stale completions are
// counted separately from failures.
func RecordFetch(surface, status string, duration time.Duration) {
	ProviderFetchesTotal.WithLabelValues(surface, status).Inc()
	ProviderFetchDuration.WithLabelValues(surface).Observe(duration.Seconds())
}

// RecordFit records a viewport fit
func RecordFit(kind string, err error) {
	status := "success"
	if err != nil {
		status = "skipped"
	}
	ViewportFitsTotal.WithLabelValues(kind, status).Inc()
}

// RecordRename records a rename outcome
func RecordRename(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	RenamesTotal.WithLabelValues(status).Inc()
}
