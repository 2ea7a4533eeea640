// SPDX-License-Identifier: MIT

package efa

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the Prometheus instruments an Engine reports to. A nil
// *Metrics records nothing.
type Metrics struct {
	runs       *prometheus.CounterVec
	stages     *prometheus.HistogramVec
	iterations *prometheus.HistogramVec
	issues     *prometheus.CounterVec
}

// NewMetrics registers the engine instruments with reg. A nil reg creates
// unregistered instruments.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "efa_runs_total",
			Help: "Factor analysis runs by final status",
		}, []string{"status"}),
		stages: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "efa_stage_duration_seconds",
			Help:    "Duration of each analysis stage",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10), // 0.1ms to ~26s
		}, []string{"stage"}),
		iterations: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "efa_iterations",
			Help:    "Iterations used by the iterative stages",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		}, []string{"stage"}),
		issues: f.NewCounterVec(prometheus.CounterOpts{
			Name: "efa_issues_total",
			Help: "Warnings and errors raised, by kind",
		}, []string{"kind"}),
	}
}

func (m *Metrics) observeStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stages.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) observeIterations(stage string, n int) {
	if m == nil {
		return
	}
	m.iterations.WithLabelValues(stage).Observe(float64(n))
}

func (m *Metrics) finish(res *Result) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(res.Status.String()).Inc()
	for _, is := range res.Issues {
		m.issues.WithLabelValues(is.Kind.String()).Inc()
	}
}
