package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval Prometheus metrics.
var (
	RetrievalDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "foodrag",
			Name:      "retrieval_duration_seconds",
			Help:      "Retrieval duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		},
		[]string{"strategy"},
	)

	RetrievalResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "foodrag",
			Name:      "retrieval_results",
			Help:      "Number of passages returned per retrieval",
			Buckets:   []float64{0, 1, 2, 3, 5, 10},
		},
		[]string{"strategy"},
	)

	WebSearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foodrag",
			Name:      "websearch_requests_total",
			Help:      "Total number of web search requests",
		},
		[]string{"provider", "status"},
	)
)

var retrievalMetricsRegistered bool

// RegisterRetrievalMetrics registers Prometheus retrieval metrics. Must be called once from main.
func RegisterRetrievalMetrics() {
	if retrievalMetricsRegistered {
		return
	}
	prometheus.MustRegister(RetrievalDuration)
	prometheus.MustRegister(RetrievalResults)
	prometheus.MustRegister(WebSearchRequestsTotal)
	retrievalMetricsRegistered = true
}
