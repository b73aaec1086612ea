// Package metrics exposes Prometheus collectors for lead form sessions and
// notification delivery.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "leadform"

// Submission results recorded by ObserveSubmission.
const (
	ResultAdvanced = "advanced"
	ResultInvalid  = "invalid"
	ResultRouted   = "routed"
	ResultStale    = "stale"
)

// Registry owns an isolated Prometheus registry so several servers (or tests)
// can run in one process without colliding on collector names.
type Registry struct {
	registry *prometheus.Registry

	submissions   *prometheus.CounterVec
	terminals     *prometheus.CounterVec
	deliveries    *prometheus.CounterVec
	deliveryTime  *prometheus.HistogramVec
	inflightSinks prometheus.Gauge
}

// New constructs a Registry with all collectors registered. Go runtime and
// process collectors are included so /metrics is useful on its own.
func New() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "step_submissions_total",
				Help:      "Total number of step submissions by step and result",
			},
			[]string{"step", "result"}, // result: advanced, invalid, routed, stale
		),
		terminals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_terminated_total",
				Help:      "Total number of sessions that reached a terminal state",
			},
			[]string{"terminal", "outcome"},
		),
		deliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sink_deliveries_total",
				Help:      "Total number of notification deliveries by sink and status",
			},
			[]string{"sink", "status"}, // status: success, error
		),
		deliveryTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "sink_delivery_duration_seconds",
				Help:      "Duration of notification deliveries in seconds",
				Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"sink"},
		),
		inflightSinks: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sink_deliveries_inflight",
				Help:      "Number of notification deliveries currently running",
			},
		),
	}
	r.registry.MustRegister(
		r.submissions,
		r.terminals,
		r.deliveries,
		r.deliveryTime,
		r.inflightSinks,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Gatherer exposes the underlying registry for tests and custom exporters.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// ObserveSubmission counts a step submission. Safe on a nil receiver.
func (r *Registry) ObserveSubmission(step int, result string) {
	if r == nil {
		return
	}
	r.submissions.WithLabelValues(strconv.Itoa(step), result).Inc()
}

// ObserveTerminal counts a session reaching terminal with the given outcome.
func (r *Registry) ObserveTerminal(terminal, outcome string) {
	if r == nil {
		return
	}
	r.terminals.WithLabelValues(terminal, outcome).Inc()
}

// DeliveryStarted marks a sink delivery as in flight and returns a function
// that records its completion.
func (r *Registry) DeliveryStarted(sink string) func(err error) {
	if r == nil {
		return func(error) {}
	}
	start := time.Now()
	r.inflightSinks.Inc()
	return func(err error) {
		r.inflightSinks.Dec()
		status := "success"
		if err != nil {
			status = "error"
		}
		r.deliveries.WithLabelValues(sink, status).Inc()
		r.deliveryTime.WithLabelValues(sink).Observe(time.Since(start).Seconds())
	}
}

// SubmissionCount returns the current submission counter value. Intended for
// tests and diagnostics.
func (r *Registry) SubmissionCount(step int, result string) float64 {
	return counterValue(r.submissions.WithLabelValues(strconv.Itoa(step), result))
}

// DeliveryCount returns the current delivery counter value.
func (r *Registry) DeliveryCount(sink, status string) float64 {
	return counterValue(r.deliveries.WithLabelValues(sink, status))
}

// TerminalCount returns the number of sessions that ended in terminal with
// outcome.
func (r *Registry) TerminalCount(terminal, outcome string) float64 {
	return counterValue(r.terminals.WithLabelValues(terminal, outcome))
}
