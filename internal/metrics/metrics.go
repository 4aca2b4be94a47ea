// Package metrics exports analysis engine measurements as Prometheus
// metrics. boolnet is a CLI, so instead of serving /metrics the registry is
// written to a node_exporter textfile after each run.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nvandessel/boolnet/internal/sensitivity"
)

// Recorder implements sensitivity.Recorder with Prometheus collectors.
type Recorder struct {
	registry *prometheus.Registry
	runs     *prometheus.CounterVec
	updates  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ sensitivity.Recorder = (*Recorder)(nil)

// NewRecorder creates the boolnet collectors and registers them on reg.
// A nil reg gets a fresh registry.
func NewRecorder(reg *prometheus.Registry) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	r := &Recorder{
		registry: reg,
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "boolnet_analysis_runs_total",
				Help: "Completed analyses by kind.",
			},
			[]string{"analysis"},
		),
		updates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "boolnet_state_updates_total",
				Help: "Network and node updates performed by analyses.",
			},
			[]string{"analysis"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "boolnet_analysis_duration_seconds",
				Help:    "Wall time of completed analyses.",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
			},
			[]string{"analysis"},
		),
	}
	for _, c := range []prometheus.Collector{r.runs, r.updates, r.duration} {
		if err := r.registry.Register(c); err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}
	}
	return r, nil
}

// Registry returns the registry holding the boolnet collectors.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// ObserveAnalysis counts a completed analysis and records its duration.
func (r *Recorder) ObserveAnalysis(analysis string, elapsed time.Duration) {
	r.runs.WithLabelValues(analysis).Inc()
	r.duration.WithLabelValues(analysis).Observe(elapsed.Seconds())
}

// AddUpdates adds n to the update counter of analysis.
func (r *Recorder) AddUpdates(analysis string, n int) {
	if n > 0 {
		r.updates.WithLabelValues(analysis).Add(float64(n))
	}
}

// WriteTextfile writes the registry in the text exposition format to path,
// atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
