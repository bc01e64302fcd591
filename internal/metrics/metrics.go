// Package metrics holds the Prometheus instruments exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AnalysesTotal counts completed analyses by normalized label.
	AnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentiment_analyses_total",
		Help: "Completed sentiment analyses by label.",
	}, []string{"sentiment"})

	// InferenceErrorsTotal counts failed inference calls by cause.
	InferenceErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentiment_inference_errors_total",
		Help: "Failed inference calls by cause.",
	}, []string{"cause"})

	// InferenceDuration tracks inference call latency. Buckets extend past
	// the default range because a cold model can take tens of seconds.
	InferenceDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sentiment_inference_duration_seconds",
		Help:    "Latency of inference calls.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
	})
)
