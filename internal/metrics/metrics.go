package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestTotal counts HTTP requests by method, route and status.
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sharkdb_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	// RequestDuration is the latency of HTTP requests.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sharkdb_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	// OperationsTotal counts engine operations (put, get, scan, drop, etc.).
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sharkdb_operations_total",
			Help: "Total number of engine operations",
		},
		[]string{"operation", "status"},
	)
	// TableCount tracks the number of live tables.
	TableCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sharkdb_tables",
			Help: "Number of live tables",
		},
	)
)

// Op records the outcome of one engine operation.
func Op(operation string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	OperationsTotal.WithLabelValues(operation, status).Inc()
}
