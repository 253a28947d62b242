// Package metrics provides Prometheus instrumentation for the voice clone
// server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the voice clone server.
type Metrics struct {
	// Synchronous conversion metrics
	ConversionsTotal   prometheus.Counter
	ConversionFailures prometheus.Counter
	ConversionDuration prometheus.Histogram
	UploadBytes        prometheus.Histogram

	// Streaming endpoint metrics
	StreamSessions   prometheus.Counter
	StreamChunksSent prometheus.Counter
}

// New creates and registers all metrics against the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ConversionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "voiceclone_conversions_total",
			Help: "Total number of voice conversions attempted",
		}),
		ConversionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "voiceclone_conversion_failures_total",
			Help: "Total number of voice conversions that failed",
		}),
		ConversionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "voiceclone_conversion_duration_seconds",
			Help:    "Wall-clock duration of voice conversions",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		}),
		UploadBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "voiceclone_upload_bytes",
			Help:    "Size of uploaded audio files",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
		}),
		StreamSessions: factory.NewCounter(prometheus.CounterOpts{
			Name: "voiceclone_stream_sessions_total",
			Help: "Total number of WebSocket streaming conversion sessions",
		}),
		StreamChunksSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "voiceclone_stream_chunks_sent_total",
			Help: "Total number of encoded chunks forwarded to streaming clients",
		}),
	}
}
