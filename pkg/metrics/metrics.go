// Package metrics provides the Prometheus registry and HTTP handler
// for the pipeline. All metrics are defined in the packages that own
// them (client, fetch) via promauto to maintain modularity.
//
// This package documents the available metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the pipeline.
// All metrics are automatically registered via promauto.
var Registry = prometheus.DefaultRegisterer

// Handler returns the /metrics HTTP handler for the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - faker_requests_total{endpoint, status} (Counter): Total requests by endpoint and HTTP status
//   - faker_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - faker_errors_total{class} (Counter): Errors by class (transient, terminal, network)
//
// Retry Metrics (pkg/client):
//   - faker_retries_total{error_class} (Counter): Retry attempts by error class
//   - faker_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - faker_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Pipeline Metrics (pkg/fetch):
//   - faker_batches_total{outcome} (Counter): Batch fetches by outcome (success, failed)
//   - faker_records_total{result} (Counter): Person records by validation result (valid, rejected)
//
// Example Prometheus Queries:
//
//   # Record rejection rate
//   rate(faker_records_total{result="rejected"}[5m]) /
//   rate(faker_records_total[5m])
//
//   # Batch failure rate
//   rate(faker_batches_total{outcome="failed"}[5m])
//
//   # P95 request latency
//   histogram_quantile(0.95, rate(faker_request_duration_seconds_bucket[5m]))
