// Package metrics provides Prometheus metrics export for the analytics core.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter exports analytics-core metrics in Prometheus format.
type Exporter struct {
	registry *prometheus.Registry

	// Load monitor metrics
	loadScore        prometheus.Histogram
	monitorLatency   prometheus.Histogram
	overloadEvents   prometheus.Counter
	monitorFallbacks prometheus.Counter

	// Personalization metrics
	personalizationRequests *prometheus.CounterVec
	familyFailures          *prometheus.CounterVec
}

// Config configures the exporter.
type Config struct {
	// Registry to use (if nil, creates a new one)
	Registry *prometheus.Registry

	// Buckets for the monitor latency histogram (in seconds)
	LatencyBuckets []float64
}

// DefaultConfig returns default exporter configuration.
func DefaultConfig() Config {
	return Config{
		LatencyBuckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}
}

// NewExporter creates a new Prometheus metrics exporter.
func NewExporter(cfg Config) *Exporter {
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = DefaultConfig().LatencyBuckets
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	e := &Exporter{registry: registry}

	e.loadScore = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "cadence",
		Subsystem: "load",
		Name:      "score",
		Help:      "Distribution of computed cognitive load scores",
		Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
	})
	e.monitorLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "cadence",
		Subsystem: "load",
		Name:      "assessment_latency_seconds",
		Help:      "Cognitive load assessment latency in seconds",
		Buckets:   cfg.LatencyBuckets,
	})
	e.overloadEvents = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cadence",
		Subsystem: "load",
		Name:      "overload_events_total",
		Help:      "Total number of session overload events emitted",
	})
	e.monitorFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cadence",
		Subsystem: "load",
		Name:      "fallbacks_total",
		Help:      "Total number of neutral fallbacks returned by the load monitor",
	})
	e.personalizationRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cadence",
		Subsystem: "personalize",
		Name:      "requests_total",
		Help:      "Total personalization requests by consumption context",
	}, []string{"context"})
	e.familyFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cadence",
		Subsystem: "personalize",
		Name:      "family_failures_total",
		Help:      "Total insight family query failures by family",
	}, []string{"family"})

	registry.MustRegister(
		e.loadScore,
		e.monitorLatency,
		e.overloadEvents,
		e.monitorFallbacks,
		e.personalizationRequests,
		e.familyFailures,
	)

	return e
}

// ObserveLoadScore records a computed load score.
func (e *Exporter) ObserveLoadScore(score float64) {
	e.loadScore.Observe(score)
}

// ObserveMonitorLatency records one assessment duration in seconds.
func (e *Exporter) ObserveMonitorLatency(seconds float64) {
	e.monitorLatency.Observe(seconds)
}

// IncOverloadEvents counts an emitted overload event.
func (e *Exporter) IncOverloadEvents() {
	e.overloadEvents.Inc()
}

// IncMonitorFallbacks counts a neutral fallback.
func (e *Exporter) IncMonitorFallbacks() {
	e.monitorFallbacks.Inc()
}

// IncPersonalizationRequests counts a personalization request.
func (e *Exporter) IncPersonalizationRequests(context string) {
	e.personalizationRequests.WithLabelValues(context).Inc()
}

// IncFamilyFailures counts an insight family query failure.
func (e *Exporter) IncFamilyFailures(family string) {
	e.familyFailures.WithLabelValues(family).Inc()
}

// Handler returns an HTTP handler serving the metrics endpoint.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}
