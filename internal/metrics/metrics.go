// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics exposes Prometheus counters and histograms for research runs.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "research_supervisor"

// Run sources.
const (
	SourceCache    = "cache"
	SourcePipeline = "pipeline"
)

// Stage outcomes.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
	OutcomeEmpty  = "empty"
)

// Metrics holds the collectors registered for one process.
type Metrics struct {
	registry *prometheus.Registry
	runs     *prometheus.CounterVec
	stages   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New registers the research collectors on a fresh registry, alongside the
// Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Research requests answered, by source.",
		}, []string{"source"}),
		stages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_total",
			Help:      "Pipeline stages executed, by stage and outcome.",
		}, []string{"stage", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time of each pipeline stage.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"stage"}),
	}
	reg.MustRegister(
		m.runs, m.stages, m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Run counts one answered request.
func (m *Metrics) Run(source string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(source).Inc()
}

// Stage records one stage execution and how long it took.
func (m *Metrics) Stage(stage, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.stages.WithLabelValues(stage, outcome).Inc()
	m.duration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry, for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}
