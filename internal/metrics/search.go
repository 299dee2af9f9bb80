package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics.
var (
	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docdex",
			Name:      "search_duration_seconds",
			Help:      "Search request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"mode"},
	)

	SearchCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docdex",
			Name:      "search_cache_total",
			Help:      "Search cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	SearchSkippedChunksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docdex",
			Name:      "search_skipped_chunks_total",
			Help:      "Chunks excluded from scoring",
		},
		[]string{"reason"},
	)

	SearchErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docdex",
			Name:      "search_errors_total",
			Help:      "Total failed searches",
		},
		[]string{"stage"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchCacheTotal)
	prometheus.MustRegister(SearchSkippedChunksTotal)
	prometheus.MustRegister(SearchErrorsTotal)
	searchMetricsRegistered = true
}
