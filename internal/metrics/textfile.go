// Package metrics records refresh outcomes as Prometheus gauges and writes them
// in the node_exporter textfile format.
package metrics

import (
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "medals"

type Recorder struct {
	registry *prometheus.Registry

	rows        prometheus.Gauge
	unmapped    prometheus.Gauge
	lastSuccess prometheus.Gauge
	runDuration prometheus.Gauge
	lastOutcome *prometheus.GaugeVec
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		rows: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "Rows written by the last successful refresh, aggregate included.",
		}),
		unmapped: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "unmapped_total",
			Help:      "Country labels the last refresh could not resolve.",
		}),
		lastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful refresh.",
		}),
		runDuration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last refresh.",
		}),
		lastOutcome: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_outcome",
			Help:      "1 for the outcome of the last refresh, 0 otherwise.",
		}, []string{"outcome"}),
	}
}

// Outcome labels for last_run_outcome.
const (
	OutcomeSuccess   = "success"
	OutcomeUnchanged = "unchanged"
	OutcomeUnmapped  = "unmapped"
	OutcomeFailed    = "failed"
)

func (r *Recorder) ObserveSuccess(rows int, at time.Time, took time.Duration) {
	r.rows.Set(float64(rows))
	r.unmapped.Set(0)
	r.lastSuccess.Set(float64(at.Unix()))
	r.runDuration.Set(took.Seconds())
	r.setOutcome(OutcomeSuccess)
}

func (r *Recorder) ObserveUnmapped(count int, took time.Duration) {
	r.unmapped.Set(float64(count))
	r.runDuration.Set(took.Seconds())
	r.setOutcome(OutcomeUnmapped)
}

func (r *Recorder) ObserveOutcome(outcome string, took time.Duration) {
	r.runDuration.Set(took.Seconds())
	r.setOutcome(outcome)
}

func (r *Recorder) setOutcome(outcome string) {
	for _, o := range []string{OutcomeSuccess, OutcomeUnchanged, OutcomeUnmapped, OutcomeFailed} {
		v := 0.0
		if o == outcome {
			v = 1
		}
		r.lastOutcome.WithLabelValues(o).Set(v)
	}
}

// WriteFile atomically replaces path with the current gauge values.
// An empty path is a no-op.
func (r *Recorder) WriteFile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
