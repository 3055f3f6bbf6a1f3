// Package observability exposes the daemon's Prometheus collectors. Every
// Record method is a no-op on a nil *Metrics so callers never need a guard.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "legacylift"

type Metrics struct {
	registry *prometheus.Registry

	Runs            *prometheus.CounterVec
	RunDuration     *prometheus.HistogramVec
	Batches         *prometheus.CounterVec
	GatewayFailures *prometheus.CounterVec
	DecodeFailures  *prometheus.CounterVec
	ModelUsage      *prometheus.CounterVec
	CacheLookups    *prometheus.CounterVec
	JobsInFlight    *prometheus.GaugeVec
	TransportErrors *prometheus.CounterVec
}

func counter(name, help string, labels ...string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help}, labels)
}

// NewMetrics builds the collectors on a private registry, so tests and
// multiple daemons in one process never collide.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry:        prometheus.NewRegistry(),
		Runs:            counter("runs_total", "Pipeline runs by job kind and outcome.", "job", "outcome"),
		Batches:         counter("batches_total", "Batches dispatched to the AI gateway.", "job"),
		GatewayFailures: counter("gateway_failures_total", "Gateway failures by classified kind.", "kind"),
		DecodeFailures:  counter("decode_failures_total", "Reply documents that did not parse as JSON.", "job"),
		ModelUsage:      counter("model_usage_total", "Model route chosen per job role.", "role", "model"),
		CacheLookups:    counter("cache_lookups_total", "Reply cache lookups by result.", "result"),
		TransportErrors: counter("transport_errors_total", "Request handling errors by transport and reason.", "transport", "reason"),
		RunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of pipeline runs.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"job", "outcome"}),
		JobsInFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "jobs_in_flight",
			Help:      "Jobs currently being served, by transport.",
		}, []string{"transport"}),
	}
	m.registry.MustRegister(
		m.Runs, m.RunDuration, m.Batches, m.GatewayFailures, m.DecodeFailures,
		m.ModelUsage, m.CacheLookups, m.JobsInFlight, m.TransportErrors,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func orUnknown(label string) string {
	if label == "" {
		return "unknown"
	}
	return label
}

func (m *Metrics) RecordRun(job, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome = orUnknown(outcome)
	m.Runs.WithLabelValues(job, outcome).Inc()
	m.RunDuration.WithLabelValues(job, outcome).Observe(elapsed.Seconds())
}

func (m *Metrics) RecordBatch(job string) {
	if m == nil {
		return
	}
	m.Batches.WithLabelValues(job).Inc()
}

func (m *Metrics) RecordGatewayFailure(kind string) {
	if m == nil {
		return
	}
	m.GatewayFailures.WithLabelValues(orUnknown(kind)).Inc()
}

// RecordDecodeFailures adds n unparseable documents; n <= 0 is ignored.
func (m *Metrics) RecordDecodeFailures(job string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.DecodeFailures.WithLabelValues(job).Add(float64(n))
}

func (m *Metrics) RecordModelUsage(role, model string) {
	if m == nil {
		return
	}
	m.ModelUsage.WithLabelValues(orUnknown(role), orUnknown(model)).Inc()
}

func (m *Metrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// TrackJob counts a job as in flight until the returned func is called.
func (m *Metrics) TrackJob(transport string) (done func()) {
	if m == nil {
		return func() {}
	}
	g := m.JobsInFlight.WithLabelValues(orUnknown(transport))
	g.Inc()
	return g.Dec
}

func (m *Metrics) RecordTransportError(transport, reason string) {
	if m == nil {
		return
	}
	m.TransportErrors.WithLabelValues(orUnknown(transport), orUnknown(reason)).Inc()
}
