package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search pipeline Prometheus metrics.
var (
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Progressive searches by outcome",
		},
		[]string{"outcome"}, // "completed" / "cancelled" / "invalid"
	)

	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Time from search start until each stage was produced",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.2, 0.5, 1, 2.5},
		},
		[]string{"stage"},
	)

	ResultCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "result_cache_total",
			Help:      "Result cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	DegradedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degraded_total",
			Help:      "Stages that ran without a capability",
		},
		[]string{"component"}, // "vector" / "enhancement" / "index"
	)

	EnhancementRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enhancement_requests_total",
			Help:      "Explanation requests by outcome",
		},
		[]string{"status"}, // "success" / "error" / "fallback"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(StageDuration)
	prometheus.MustRegister(ResultCacheTotal)
	prometheus.MustRegister(DegradedTotal)
	prometheus.MustRegister(EnhancementRequestsTotal)
	searchMetricsRegistered = true
}
