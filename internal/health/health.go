// Package health provides cross-layer health aggregation. Independent
// probes of the tunnel daemon, the container runtime, and the applications
// are reduced into one composite report.
package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// State represents the observed state of one component.
type State string

const (
	// StateUp indicates the component answered its probe.
	StateUp State = "up"
	// StateDown indicates the component failed its probe.
	StateDown State = "down"
	// StateUnknown indicates the probe could not determine the state,
	// e.g. the probe itself timed out or errored.
	StateUnknown State = "unknown"
)

// Overall represents the composite health verdict.
type Overall string

const (
	// OverallHealthy indicates every probe reported up.
	OverallHealthy Overall = "healthy"
	// OverallDegraded indicates a non-critical probe is down or unknown.
	OverallDegraded Overall = "degraded"
	// OverallUnhealthy indicates a critical probe is down.
	OverallUnhealthy Overall = "unhealthy"
)

// ProbeResult is the outcome of one probe execution. Results are produced
// fresh on every evaluation and never persisted.
type ProbeResult struct {
	Component string   `json:"component"`
	State     State    `json:"state"`
	LatencyMs *float64 `json:"latencyMs,omitempty"`
	Detail    string   `json:"detail,omitempty"`
	Critical  bool     `json:"critical,omitempty"`
}

// HealthReport is the composite report over all probes. Probes preserve the
// caller-declared order regardless of completion order, so reports are
// deterministic and diffable across runs.
type HealthReport struct {
	Overall     Overall       `json:"overall"`
	Probes      []ProbeResult `json:"probes"`
	GeneratedAt time.Time     `json:"generatedAt"`
}

// CheckFunc performs one bounded-time dependency check.
type CheckFunc func(ctx context.Context) ProbeResult

// Probe is one independently evaluated dependency layer.
type Probe struct {
	Name     string
	Critical bool
	Check    CheckFunc
}

// DefaultProbeTimeout bounds a single probe execution.
const DefaultProbeTimeout = 3 * time.Second

// Aggregator evaluates probes concurrently and reduces their states into
// one verdict. A probe failure is captured as unknown rather than aborting
// the aggregation; partial information beats total failure.
type Aggregator struct {
	probes  []Probe
	timeout time.Duration
	logger  *zap.Logger
	metrics *Metrics
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithProbeTimeout sets the per-probe timeout.
func WithProbeTimeout(timeout time.Duration) AggregatorOption {
	return func(a *Aggregator) {
		if timeout > 0 {
			a.timeout = timeout
		}
	}
}

// NewAggregator creates an aggregator over the given probes.
func NewAggregator(probes []Probe, logger *zap.Logger, opts ...AggregatorOption) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &Aggregator{
		probes:  probes,
		timeout: DefaultProbeTimeout,
		logger:  logger,
		metrics: GetMetrics(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Evaluate runs every probe concurrently, each bounded by the per-probe
// timeout, and reduces the results. It blocks no longer than the slowest
// probe timeout.
func (a *Aggregator) Evaluate(ctx context.Context) HealthReport {
	results := make([]ProbeResult, len(a.probes))

	var wg sync.WaitGroup
	for i, probe := range a.probes {
		wg.Add(1)
		go func(i int, probe Probe) {
			defer wg.Done()
			results[i] = a.runProbe(ctx, probe)
		}(i, probe)
	}
	wg.Wait()

	report := HealthReport{
		Overall:     reduce(results),
		Probes:      results,
		GeneratedAt: time.Now().UTC(),
	}

	a.metrics.RecordEvaluation(report)
	a.logger.Debug("health evaluated",
		zap.String("overall", string(report.Overall)),
		zap.Int("probes", len(results)))

	return report
}

// runProbe executes one probe bounded by the aggregator timeout. The check
// runs in its own goroutine so a hung dependency cannot stall the report;
// an abandoned check is left to finish in the background.
func (a *Aggregator) runProbe(ctx context.Context, probe Probe) ProbeResult {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	done := make(chan ProbeResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- ProbeResult{
					State:  StateUnknown,
					Detail: fmt.Sprintf("probe panicked: %v", r),
				}
			}
		}()
		done <- probe.Check(ctx)
	}()

	var result ProbeResult
	select {
	case result = <-done:
	case <-ctx.Done():
		result = ProbeResult{
			State:  StateUnknown,
			Detail: fmt.Sprintf("probe did not complete within %s", a.timeout),
		}
	}

	result.Component = probe.Name
	result.Critical = probe.Critical
	if result.State == "" {
		result.State = StateUnknown
	}
	return result
}

// reduce computes the composite verdict: any critical probe down forces
// unhealthy, otherwise any down or unknown probe forces degraded.
func reduce(results []ProbeResult) Overall {
	overall := OverallHealthy
	for _, result := range results {
		if result.State == StateDown && result.Critical {
			return OverallUnhealthy
		}
		if result.State != StateUp {
			overall = OverallDegraded
		}
	}
	return overall
}

// latencyMs converts an elapsed duration to a ProbeResult latency value.
func latencyMs(elapsed time.Duration) *float64 {
	ms := float64(elapsed.Microseconds()) / 1000.0
	return &ms
}
