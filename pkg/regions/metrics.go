package regions

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	regionFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "edge_region_fetches_total",
		Help: "Total region directory fetch attempts by result",
	}, []string{"result"}) // "success", "empty", "upstream_status", "error"

	regionDirectorySize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "edge_region_directory_size",
		Help: "Number of country codes in the current region directory",
	})

	regionFallbackAppliedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "edge_region_fallback_applied_total",
		Help: "Times the directory was repopulated from the fallback region",
	})

	regionRefreshSuppressedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "edge_region_refresh_suppressed_total",
		Help: "Refreshes skipped because another fetch was already in flight",
	})
)
