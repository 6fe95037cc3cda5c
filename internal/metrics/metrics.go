// Package metrics counts submission outcomes for the node exporter textfile
// collector. A one-shot CLI has no scrape endpoint, so the registry is
// flushed to a .prom file when a run ends.
package metrics

import (
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the submission collectors and their private registry.
type Metrics struct {
	registry *prometheus.Registry

	// Step outcomes by step and receipt status
	StepResults *prometheus.CounterVec

	// Release outcomes by step and receipt status
	Releases *prometheus.CounterVec

	UploadBytes prometheus.Counter

	StepDuration *prometheus.HistogramVec
}

// New creates a Metrics instance registered against a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		StepResults: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "enasubmit_step_results_total",
			Help: "Drop-box submissions by step and classified status",
		}, []string{"step", "status"}),
		Releases: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "enasubmit_release_total",
			Help: "RELEASE actions by step and classified status",
		}, []string{"step", "status"}),
		UploadBytes: factory.NewCounter(prometheus.CounterOpts{
			Name: "enasubmit_upload_bytes_total",
			Help: "Bytes transferred to the FTP drop box",
		}),
		StepDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "enasubmit_step_duration_seconds",
			Help:    "Wall time of each submission step",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 300, 1800},
		}, []string{"step"}),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// IncrementStepResult records a classified step outcome.
func (m *Metrics) IncrementStepResult(step, status string) {
	if m != nil {
		m.StepResults.WithLabelValues(step, status).Inc()
	}
}

// IncrementRelease records a classified RELEASE outcome.
func (m *Metrics) IncrementRelease(step, status string) {
	if m != nil {
		m.Releases.WithLabelValues(step, status).Inc()
	}
}

// AddUploadBytes records transferred bytes.
func (m *Metrics) AddUploadBytes(n int64) {
	if m != nil && n > 0 {
		m.UploadBytes.Add(float64(n))
	}
}

// ObserveStepDuration records how long a step took.
func (m *Metrics) ObserveStepDuration(step string, d time.Duration) {
	if m != nil {
		m.StepDuration.WithLabelValues(step).Observe(d.Seconds())
	}
}

// WriteTextfile writes the registry to path in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
