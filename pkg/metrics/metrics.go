// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "widget_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "widget_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// SendsTotal tracks outbound chat sends by outcome.
	SendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "widget_sends_total",
			Help: "Total chat sends by outcome",
		},
		[]string{"outcome"},
	)

	// StreamDuration tracks streamed response duration.
	StreamDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "widget_stream_duration_seconds",
			Help:    "Streamed chat response duration",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 45, 60, 90, 120},
		},
	)

	// StreamChunksTotal tracks incremental chunks applied during streaming.
	StreamChunksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "widget_stream_chunks_total",
			Help: "Total stream chunks applied",
		},
	)

	// GuardBlocksTotal tracks messages blocked by the content guard.
	GuardBlocksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "widget_guard_blocks_total",
			Help: "Messages blocked by the content guard",
		},
		[]string{"category"},
	)

	// RateDenialsTotal tracks sends denied by the local rate governor.
	RateDenialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "widget_rate_denials_total",
			Help: "Sends denied by the local rate governor",
		},
		[]string{"role"},
	)

	// ModerationReportsTotal tracks fire-and-forget moderation notifications.
	ModerationReportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "widget_moderation_reports_total",
			Help: "Moderation notifications by delivery outcome",
		},
		[]string{"outcome"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordSend records a chat send outcome.
func RecordSend(outcome string) {
	SendsTotal.WithLabelValues(outcome).Inc()
}

// RecordGuardBlock records a content guard block.
func RecordGuardBlock(category string) {
	GuardBlocksTotal.WithLabelValues(category).Inc()
}

// RecordRateDenial records a local rate governor denial.
func RecordRateDenial(role string) {
	RateDenialsTotal.WithLabelValues(role).Inc()
}
