// Package metrics documents the Prometheus metrics exported by the edge
// router. All metrics are defined in their respective packages (client,
// cache, regions, router) to maintain modularity and avoid circular
// dependencies.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the edge router.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Region Directory Metrics (pkg/regions):
//   - edge_region_fetches_total{result} (Counter): Fetch attempts by result
//     (success, empty, upstream_status, error)
//   - edge_region_directory_size (Gauge): Country codes in the current directory
//   - edge_region_fallback_applied_total (Counter): Fallback repopulations
//   - edge_region_refresh_suppressed_total (Counter): Refreshes skipped while
//     another fetch was in flight (single-flight mode)
//
// Routing Metrics (pkg/router):
//   - edge_requests_routed_total{decision} (Counter): Routing decisions
//     (pass, redirect, excluded, fallback)
//
// Backend Request Metrics (pkg/client):
//   - edge_backend_requests_total{endpoint, status} (Counter): Requests by status
//   - edge_backend_request_duration_seconds{endpoint} (Histogram): Request duration
//   - edge_backend_errors_total{class} (Counter): Errors by class
//     (client, server, network, parse)
//
// Response Cache Metrics (pkg/cache):
//   - edge_cache_hits_total{layer="redis"} (Counter): Cache hits by layer
//   - edge_cache_misses_total (Counter): Cache misses
//   - edge_cache_invalidations_total{tag} (Counter): Tag invalidations
//   - edge_cache_errors_total{operation} (Counter): Cache operation errors
//
// Example Prometheus Queries:
//
//	# Redirect Rate
//	sum(rate(edge_requests_routed_total{decision="redirect"}[5m])) /
//	sum(rate(edge_requests_routed_total[5m]))
//
//	# Region Fetch Failure Rate
//	rate(edge_region_fetches_total{result=~"error|upstream_status"}[5m])
//
//	# Cache Hit Rate
//	sum(rate(edge_cache_hits_total[5m])) /
//	(sum(rate(edge_cache_hits_total[5m])) + sum(rate(edge_cache_misses_total[5m])))
//
//	# P95 Backend Latency
//	histogram_quantile(0.95, rate(edge_backend_request_duration_seconds_bucket[5m]))
