// Package prometheus records pipeline metrics in a private Prometheus
// registry and writes them in the node-exporter textfile format, so a
// batch process that exits between runs can still be scraped.
package prometheus

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/custodia-labs/sercha-harvest/internal/core/domain"
	"github.com/custodia-labs/sercha-harvest/internal/core/ports/driven"
)

const namespace = "sercha_harvest"

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Ensure Recorder implements the interface.
var _ driven.MetricsRecorder = (*Recorder)(nil)

// Recorder implements driven.MetricsRecorder.
type Recorder struct {
	registry    *prometheus.Registry
	records     *prometheus.CounterVec
	listed      *prometheus.GaugeVec
	duration    *prometheus.HistogramVec
	lastSuccess *prometheus.GaugeVec
}

// NewRecorder creates a recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Records processed per run, stage and outcome.",
		}, []string{"run", "stage", "outcome"}),
		listed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "listed_documents",
			Help:      "Documents enumerated by the most recent listing.",
		}, []string{"run"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of pipeline runs.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"run"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last run that finished without fatal error.",
		}, []string{"run"}),
	}
	r.registry.MustRegister(r.records, r.listed, r.duration, r.lastSuccess)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// RecordOutcome counts one record at a stage.
func (r *Recorder) RecordOutcome(run string, stage domain.Stage, ok bool) {
	outcome := OutcomeSuccess
	if !ok {
		outcome = OutcomeFailure
	}
	r.records.WithLabelValues(run, stage.String(), outcome).Inc()
}

// ObserveRun records a completed run.
func (r *Recorder) ObserveRun(result *domain.BatchResult) {
	if result == nil {
		return
	}
	r.listed.WithLabelValues(result.Name).Set(float64(result.Listed))
	r.duration.WithLabelValues(result.Name).Observe(result.Duration().Seconds())
	if !result.FinishedAt.IsZero() {
		r.lastSuccess.WithLabelValues(result.Name).Set(float64(result.FinishedAt.Unix()))
	}
}

// WriteTextfile writes all metrics to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}
