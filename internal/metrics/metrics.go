package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_requests_total",
			Help: "Total number of chat streams started, by prompt variant",
		},
		[]string{"variant"},
	)

	ChatClassifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_classifications_total",
			Help: "Total number of resolved question classifications, by category",
		},
		[]string{"category"},
	)

	ChatUpstreamFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_upstream_failures_total",
			Help: "Total number of completion-service failures before a stream was started",
		},
		[]string{"stage"},
	)

	ChatStreamErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_stream_errors_total",
			Help: "Total number of errors raised after a stream had started",
		},
		[]string{"variant"},
	)

	ChatStreamInitiation = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_stream_initiation_seconds",
			Help:    "Time from request receipt until a stream was opened",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"variant"},
	)
)

// Failure stages.
const (
	StageClassify       = "classify"
	StagePrimaryStream  = "primary_stream"
	StageFallbackStream = "fallback_stream"
)
