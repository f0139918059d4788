// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_queries_processed_total",
			Help: "Total number of assistant queries processed",
		},
		[]string{"query_type", "path"},
	)

	QueriesFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_queries_failed_total",
			Help: "Total number of assistant queries that returned an error",
		},
		[]string{"query_type", "error_code"},
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "assistant_query_duration_seconds",
			Help: "Duration of assistant query processing in seconds",
		},
		[]string{"query_type"},
	)

	ProviderFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_provider_failures_total",
			Help: "Total number of degraded external provider calls",
		},
		[]string{"provider"},
	)

	GenerationCalls = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assistant_generation_calls_total",
			Help: "Total number of generation provider invocations",
		},
	)
)
