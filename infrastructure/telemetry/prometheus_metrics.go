// Package telemetry exports election run metrics.
package telemetry

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-electorate/internal/ports"
)

const namespace = "electorate"

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. Known metric names from the ports package get dedicated
// collectors; anything else is routed to generic event and state vectors.
type PrometheusMetrics struct {
	runs          *prometheus.CounterVec
	votes         *prometheus.CounterVec
	voters        *prometheus.GaugeVec
	agreementMean *prometheus.GaugeVec
	agreement     *prometheus.HistogramVec
	phaseLatency  *prometheus.HistogramVec
	events        *prometheus.CounterVec
	state         *prometheus.GaugeVec
}

// NewPrometheusMetrics creates a PrometheusMetrics instance and registers
// its collectors with reg. A nil reg uses the default registry.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      ports.MetricRuns,
				Help:      "Number of election runs by outcome.",
			},
			[]string{"status"},
		),
		votes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      ports.MetricVotes,
				Help:      "Votes cast per candidate and population.",
			},
			[]string{"candidate", "population"},
		),
		voters: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      ports.MetricVoters,
				Help:      "Voters generated per population in the last run.",
			},
			[]string{"population"},
		),
		agreementMean: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      ports.MetricAgreementMean,
				Help:      "Mean number of issues voters agree on with a reported candidate.",
			},
			[]string{"role", "candidate"},
		),
		agreement: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      ports.MetricAgreement,
				Help:      "Per-voter number of issues agreed on with a reported candidate.",
				Buckets:   prometheus.LinearBuckets(0, 1, 16),
			},
			[]string{"role"},
		),
		phaseLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "phase_duration_seconds",
				Help:      "Execution time of election run phases.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"phase"},
		),
		events: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Counters without a dedicated collector.",
			},
			[]string{"event"},
		),
		state: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "state",
				Help:      "Gauges without a dedicated collector.",
			},
			[]string{"metric"},
		),
	}
}

// RecordLatency implements the MetricsCollector interface by recording
// the duration of a run phase.
func (pm *PrometheusMetrics) RecordLatency(operation string, duration time.Duration, _ map[string]string) {
	pm.phaseLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(metric string, value float64, labels map[string]string) {
	switch metric {
	case ports.MetricRuns:
		pm.runs.WithLabelValues(labelOr(labels, "status")).Add(value)
	case ports.MetricVotes:
		pm.votes.WithLabelValues(labelOr(labels, "candidate"), labelOr(labels, "population")).Add(value)
	default:
		pm.events.WithLabelValues(metric).Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(metric string, value float64, labels map[string]string) {
	switch metric {
	case ports.MetricVoters:
		pm.voters.WithLabelValues(labelOr(labels, "population")).Set(value)
	case ports.MetricAgreementMean:
		pm.agreementMean.WithLabelValues(labelOr(labels, "role"), labelOr(labels, "candidate")).Set(value)
	default:
		pm.state.WithLabelValues(metric).Set(value)
	}
}

// RecordHistogram implements the MetricsCollector interface by recording
// values in a Prometheus histogram. Unknown histograms are observed by the
// phase latency vector under their own name.
func (pm *PrometheusMetrics) RecordHistogram(metric string, value float64, labels map[string]string) {
	switch metric {
	case ports.MetricAgreement:
		pm.agreement.WithLabelValues(labelOr(labels, "role")).Observe(value)
	default:
		pm.phaseLatency.WithLabelValues(metric).Observe(value)
	}
}

// RecordHistogramN implements ports.HistogramBatcher. The labelled
// observer is resolved once for all n observations.
func (pm *PrometheusMetrics) RecordHistogramN(metric string, value float64, n int, labels map[string]string) {
	var obs prometheus.Observer
	switch metric {
	case ports.MetricAgreement:
		obs = pm.agreement.WithLabelValues(labelOr(labels, "role"))
	default:
		obs = pm.phaseLatency.WithLabelValues(metric)
	}
	for range n {
		obs.Observe(value)
	}
}

// WriteTextfile writes everything gatherer collects to path in the
// Prometheus text exposition format, suitable for the node exporter's
// textfile collector.
func WriteTextfile(path string, gatherer prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, gatherer); err != nil {
		return ports.NewMetricsError("*", "WriteTextfile", fmt.Errorf("%w: %w", ports.ErrExportFailed, err))
	}
	return nil
}

func labelOr(labels map[string]string, key string) string {
	if v, ok := labels[key]; ok && v != "" {
		return v
	}
	return "unknown"
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var (
	_ ports.MetricsCollector = (*PrometheusMetrics)(nil)
	_ ports.HistogramBatcher = (*PrometheusMetrics)(nil)
)
