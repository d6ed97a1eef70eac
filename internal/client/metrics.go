package client

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for backend calls.
type Metrics struct {
	callsTotal   *prometheus.CounterVec
	callDuration *prometheus.HistogramVec
}

var (
	metricsInstance *Metrics
	metricsOnce     sync.Once
)

// GetMetrics returns the singleton client metrics instance.
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metricsInstance = &Metrics{
			callsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "reachability",
					Subsystem: "client",
					Name:      "calls_total",
					Help:      "Total number of backend calls by outcome",
				},
				[]string{"backend", "outcome"},
			),
			callDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: "reachability",
					Subsystem: "client",
					Name:      "call_duration_seconds",
					Help:      "Backend call duration in seconds",
					Buckets:   prometheus.DefBuckets,
				},
				[]string{"backend"},
			),
		}
	})
	return metricsInstance
}

// MustRegister registers the client metric collectors with the given
// registry. promauto registers with the global default registry; the
// gateway serves /metrics from its own registry, so this bridges the two.
func (m *Metrics) MustRegister(registry *prometheus.Registry) {
	registry.MustRegister(m.callsTotal, m.callDuration)
}

// RecordCall records one call outcome.
func (m *Metrics) RecordCall(backend, outcome string, elapsed time.Duration) {
	m.callsTotal.WithLabelValues(backend, outcome).Inc()
	m.callDuration.WithLabelValues(backend).Observe(elapsed.Seconds())
}
