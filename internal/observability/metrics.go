// Package observability exposes Prometheus metrics for the chat
// pipeline.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts sends, failures and stream timing for the chat
// service. A single instance is shared by the service and the CLI.
type Metrics struct {
	MessagesSent     *prometheus.CounterVec
	SendFailures     *prometheus.CounterVec
	FallbacksServed  prometheus.Counter
	StreamDuration   prometheus.Histogram
	ContextTruncated prometheus.Counter
}

// New registers the chat metrics on the given registerer. Pass
// prometheus.DefaultRegisterer for normal operation or a fresh
// registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		MessagesSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chatcore",
			Name:      "messages_sent_total",
			Help:      "Messages sent to the model, labelled by model id.",
		}, []string{"model"}),
		SendFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chatcore",
			Name:      "send_failures_total",
			Help:      "Sends that ended in an error, labelled by error category.",
		}, []string{"category"}),
		FallbacksServed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "chatcore",
			Name:      "fallbacks_served_total",
			Help:      "Responses answered from the canned fallback set.",
		}),
		StreamDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "chatcore",
			Name:      "stream_duration_seconds",
			Help:      "Wall time from request start to final streamed token.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		ContextTruncated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "chatcore",
			Name:      "context_truncations_total",
			Help:      "Requests whose history was trimmed to fit the token budget.",
		}),
	}
}
