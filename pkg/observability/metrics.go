// Package observability exposes Prometheus instrumentation for the
// Merchant Warrior client.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/kevin07696/merchantwarrior-go/pkg/merchantwarrior"
)

var _ merchantwarrior.Recorder = (*ClientMetrics)(nil)

// ClientMetrics implements merchantwarrior.Recorder
type ClientMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewClientMetrics registers the client collectors on reg. A nil reg uses
// prometheus.DefaultRegisterer.
func NewClientMetrics(reg prometheus.Registerer) *ClientMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &ClientMetrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "merchantwarrior_requests_total",
			Help: "Total number of Merchant Warrior operations by outcome",
		}, []string{
			"operation", // processCard, refundCard, queryCard, addCard, ...
			"outcome",   // approved, declined, invalid_argument, transport_error, response_format_error
		}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name: "merchantwarrior_request_duration_seconds",
			Help: "Duration of Merchant Warrior operations in seconds",
			// Buckets: 100ms to 30s (typical payment processing times)
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"operation"}),
	}
}

// RecordRequest records one completed operation
func (m *ClientMetrics) RecordRequest(operation, outcome string, elapsed time.Duration) {
	m.requestsTotal.WithLabelValues(operation, outcome).Inc()
	m.requestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}
