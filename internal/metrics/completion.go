package metrics

import "github.com/prometheus/client_golang/prometheus"

// Completion Prometheus metrics.
var (
	CompletionRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foodrag",
			Name:      "completion_requests_total",
			Help:      "Total number of completion requests",
		},
		[]string{"provider", "model", "status"},
	)

	CompletionRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "foodrag",
			Name:      "completion_request_duration_seconds",
			Help:      "Completion request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider", "model"},
	)

	CompletionTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foodrag",
			Name:      "completion_tokens_total",
			Help:      "Total completion tokens consumed",
		},
		[]string{"provider", "model", "type"}, // "prompt" / "completion"
	)

	CompletionErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foodrag",
			Name:      "completion_errors_total",
			Help:      "Total completion errors",
		},
		[]string{"provider", "model", "error_type"},
	)

	CompletionBudgetTokensRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "foodrag",
			Name:      "completion_budget_tokens_remaining",
			Help:      "Remaining token budget",
		},
		[]string{"provider", "period"},
	)

	AnswerCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foodrag",
			Name:      "answer_cache_total",
			Help:      "Answer cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var completionMetricsRegistered bool

// RegisterCompletionMetrics registers Prometheus completion metrics. Must be called once from main.
func RegisterCompletionMetrics() {
	if completionMetricsRegistered {
		return
	}
	prometheus.MustRegister(CompletionRequestsTotal)
	prometheus.MustRegister(CompletionRequestDuration)
	prometheus.MustRegister(CompletionTokensTotal)
	prometheus.MustRegister(CompletionErrorsTotal)
	prometheus.MustRegister(CompletionBudgetTokensRemaining)
	prometheus.MustRegister(AnswerCacheTotal)
	completionMetricsRegistered = true
}
