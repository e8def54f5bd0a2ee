package metrics

import "github.com/prometheus/client_golang/prometheus"

// Fusion, ranking and recommendation Prometheus metrics.
var (
	FusionOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fuserank",
			Name:      "fusion_ops_total",
			Help:      "Total number of fusion operations",
		},
		[]string{"method", "status"},
	)

	FusionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fuserank",
			Name:      "fusion_duration_seconds",
			Help:      "Fusion operation duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
		[]string{"method"},
	)

	AggregationCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "fuserank",
			Name:      "aggregation_candidates",
			Help:      "Candidates considered per aggregation before truncation",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	RetrievalConfidence = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "fuserank",
			Name:      "retrieval_confidence",
			Help:      "Confidence score of retrieval responses",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		},
	)

	RecommendationCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fuserank",
			Name:      "recommendation_cache_total",
			Help:      "Recommendation cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var relevanceMetricsRegistered bool

// RegisterRelevanceMetrics registers fusion and ranking metrics. Must be called once from main.
func RegisterRelevanceMetrics() {
	if relevanceMetricsRegistered {
		return
	}
	prometheus.MustRegister(FusionOpsTotal)
	prometheus.MustRegister(FusionDuration)
	prometheus.MustRegister(AggregationCandidates)
	prometheus.MustRegister(RetrievalConfidence)
	prometheus.MustRegister(RecommendationCacheTotal)
	relevanceMetricsRegistered = true
}
