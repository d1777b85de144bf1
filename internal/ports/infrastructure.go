// Package ports defines the interfaces between the election application
// layer and its infrastructure adapters.
package ports

import (
	"context"
	"time"

	"github.com/ahrav/go-electorate/internal/domain"
)

// PopulationGenerator turns a validated population definition into its
// generated voters.
// Implementations must be safe for concurrent use and must produce the same
// voters for the same registry, spec and seed regardless of how much
// parallelism they use internally.
type PopulationGenerator interface {
	// Generate samples spec.Size voters, one view per registry issue each.
	//
	// Parameters:
	//   - ctx: Context for cancellation between voters
	//   - registry: The canonical issue set the voters must cover
	//   - spec: The population's per-issue distributions, in registry order
	//   - seed: The population seed; voter i draws from stream (seed, i)
	Generate(ctx context.Context, registry *domain.Registry, spec domain.PopulationSpec, seed uint64) (*domain.Population, error)
}

// MetricsCollector defines the interface for collecting operational metrics.
// Implementations should integrate with observability platforms like
// Prometheus or OpenTelemetry.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram.
	RecordHistogram(metric string, value float64, labels map[string]string)
}

// HistogramBatcher is implemented by collectors that can record the same
// histogram value many times in one call.
type HistogramBatcher interface {
	// RecordHistogramN records value n times.
	RecordHistogramN(metric string, value float64, n int, labels map[string]string)
}

// RecordHistogramN records value n times on c, in a single call when c
// implements HistogramBatcher. Non-positive n records nothing.
func RecordHistogramN(c MetricsCollector, metric string, value float64, n int, labels map[string]string) {
	if n <= 0 {
		return
	}
	if b, ok := c.(HistogramBatcher); ok {
		b.RecordHistogramN(metric, value, n, labels)
		return
	}
	for range n {
		c.RecordHistogram(metric, value, labels)
	}
}

// NopMetrics is a MetricsCollector that discards everything.
type NopMetrics struct{}

// RecordLatency implements MetricsCollector.
func (NopMetrics) RecordLatency(string, time.Duration, map[string]string) {}

// RecordCounter implements MetricsCollector.
func (NopMetrics) RecordCounter(string, float64, map[string]string) {}

// RecordGauge implements MetricsCollector.
func (NopMetrics) RecordGauge(string, float64, map[string]string) {}

// RecordHistogram implements MetricsCollector.
func (NopMetrics) RecordHistogram(string, float64, map[string]string) {}

// RecordHistogramN implements HistogramBatcher.
func (NopMetrics) RecordHistogramN(string, float64, int, map[string]string) {}

// Metric names recorded by the election runner.
const (
	// MetricRuns counts finished runs, labelled by "status".
	MetricRuns = "runs_total"
	// MetricVotes counts votes, labelled by "candidate" and "population".
	MetricVotes = "votes_total"
	// MetricVoters is the number of generated voters, labelled by
	// "population".
	MetricVoters = "voters"
	// MetricAgreementMean is the mean number of agreeing issues, labelled by
	// "role" and "candidate".
	MetricAgreementMean = "agreement_mean"
	// MetricAgreement observes per-voter agreement counts, labelled by
	// "role".
	MetricAgreement = "agreement_issues"
)
