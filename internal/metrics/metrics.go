// Package metrics exposes Prometheus counters for service calls.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	MetricsNamespace = "inference_console"
	MetricsSubsystem = "service"

	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics holds the collectors for outbound service calls.
type Metrics struct {
	CallsTotal      *prometheus.CounterVec
	CallDuration    *prometheus.HistogramVec
	InFlight        *prometheus.GaugeVec
	ReportsFailures prometheus.Counter

	gatherer prometheus.Gatherer
}

// NewMetrics creates and registers the collectors on reg. A nil reg gets a fresh private registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		CallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Subsystem: MetricsSubsystem,
				Name:      "calls_total",
				Help:      "Total number of service calls by operation and result",
			},
			[]string{"operation", "result"},
		),
		CallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: MetricsNamespace,
				Subsystem: MetricsSubsystem,
				Name:      "call_duration_seconds",
				Help:      "Duration of service calls in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
			},
			[]string{"operation"},
		),
		InFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: MetricsNamespace,
				Subsystem: MetricsSubsystem,
				Name:      "calls_in_flight",
				Help:      "Number of service calls currently waiting on the network",
			},
			[]string{"operation"},
		),
		ReportsFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Subsystem: "reporters",
				Name:      "failures_total",
				Help:      "Total number of outcome reports that failed on at least one sink",
			},
		),
		gatherer: reg,
	}
}

// Start marks a call as in flight and returns a func that records its result.
func (m *Metrics) Start(operation string) func(ok bool, elapsed time.Duration) {
	if m == nil {
		return func(bool, time.Duration) {}
	}
	m.InFlight.WithLabelValues(operation).Inc()
	return func(ok bool, elapsed time.Duration) {
		m.InFlight.WithLabelValues(operation).Dec()
		result := ResultFailure
		if ok {
			result = ResultSuccess
		}
		m.CallsTotal.WithLabelValues(operation, result).Inc()
		m.CallDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	}
}

// ReportFailed counts a failed fan-out.
func (m *Metrics) ReportFailed() {
	if m == nil {
		return
	}
	m.ReportsFailures.Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
