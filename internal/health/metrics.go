package health

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for health evaluations.
type Metrics struct {
	evaluationsTotal prometheus.Counter
	probeState       *prometheus.GaugeVec
	overallState     prometheus.Gauge
}

var (
	metricsInstance *Metrics
	metricsOnce     sync.Once
)

// GetMetrics returns the singleton health metrics instance.
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metricsInstance = &Metrics{
			evaluationsTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "reachability",
					Subsystem: "health",
					Name:      "evaluations_total",
					Help:      "Total number of health evaluations performed",
				},
			),
			probeState: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "reachability",
					Subsystem: "health",
					Name:      "probe_up",
					Help:      "Probe state (1=up, 0=down or unknown)",
				},
				[]string{"component"},
			),
			overallState: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "reachability",
					Subsystem: "health",
					Name:      "overall_healthy",
					Help:      "Composite verdict (1=healthy, 0=degraded or unhealthy)",
				},
			),
		}
	})
	return metricsInstance
}

// MustRegister registers the health metric collectors with the given
// registry. promauto registers with the global default registry; the
// gateway serves /metrics from its own registry, so this bridges the two.
func (m *Metrics) MustRegister(registry *prometheus.Registry) {
	registry.MustRegister(m.evaluationsTotal, m.probeState, m.overallState)
}

// RecordEvaluation records one health report.
func (m *Metrics) RecordEvaluation(report HealthReport) {
	m.evaluationsTotal.Inc()

	for _, probe := range report.Probes {
		value := 0.0
		if probe.State == StateUp {
			value = 1.0
		}
		m.probeState.WithLabelValues(probe.Component).Set(value)
	}

	overall := 0.0
	if report.Overall == OverallHealthy {
		overall = 1.0
	}
	m.overallState.Set(overall)
}
