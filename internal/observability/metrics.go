// Package observability provides Prometheus metrics for the workflow
// engine: run and node counters by terminal status plus duration
// histograms. All metric operations are thread-safe via Prometheus's
// internal locking.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "dwflow"
	engineSubsystem  = "engine"
)

// Metrics holds the engine's Prometheus collectors. Initialize once at
// startup via NewMetrics and pass by reference into the executor. A nil
// *Metrics is valid and records nothing, which keeps tests and the CLI
// path free of registry bookkeeping.
type Metrics struct {
	// RunsTotal counts finished runs by terminal status.
	RunsTotal *prometheus.CounterVec
	// NodesTotal counts node executions by kind and outcome.
	NodesTotal *prometheus.CounterVec
	// RunDurationSeconds measures wall-clock run duration by terminal status.
	RunDurationSeconds *prometheus.HistogramVec
	// NodeDurationSeconds measures per-node execution duration by kind.
	NodeDurationSeconds *prometheus.HistogramVec
}

// NewMetrics creates and registers the engine metrics on the given
// registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: engineSubsystem,
			Name:      "runs_total",
			Help:      "Finished workflow runs by terminal status.",
		}, []string{"status"}),
		NodesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: engineSubsystem,
			Name:      "nodes_total",
			Help:      "Node executions by kind and outcome.",
		}, []string{"kind", "status"}),
		RunDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: engineSubsystem,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of workflow runs.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		}, []string{"status"}),
		NodeDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: engineSubsystem,
			Name:      "node_duration_seconds",
			Help:      "Execution duration of individual nodes.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"kind"}),
	}
	reg.MustRegister(m.RunsTotal, m.NodesTotal, m.RunDurationSeconds, m.NodeDurationSeconds)
	return m
}

// ObserveRun records one finished run.
func (m *Metrics) ObserveRun(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(status).Inc()
	m.RunDurationSeconds.WithLabelValues(status).Observe(d.Seconds())
}

// ObserveNode records one finished node execution.
func (m *Metrics) ObserveNode(kind, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.NodesTotal.WithLabelValues(kind, status).Inc()
	m.NodeDurationSeconds.WithLabelValues(kind).Observe(d.Seconds())
}
