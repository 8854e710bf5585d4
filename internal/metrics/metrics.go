// Package metrics records call hierarchy pipeline measurements in a private
// Prometheus registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"callroot/internal/callhierarchy"
)

const namespace = "callroot"

// Recorder implements callhierarchy.Recorder. A nil *Recorder records nothing.
type Recorder struct {
	registry      *prometheus.Registry
	outcomes      *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
}

// NewRecorder creates a Recorder with its own registry
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()

	outcomes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "outcomes_total",
			Help:      "Call hierarchy invocations by terminal state and reason",
		},
		[]string{"state", "reason"},
	)
	stageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each pipeline stage",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"stage"},
	)
	reg.MustRegister(outcomes, stageDuration)

	return &Recorder{
		registry:      reg,
		outcomes:      outcomes,
		stageDuration: stageDuration,
	}
}

// ObserveStage records how long a stage took
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	if r == nil {
		return
	}
	r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordOutcome counts one finished invocation
func (r *Recorder) RecordOutcome(state callhierarchy.State, reason callhierarchy.Reason) {
	if r == nil {
		return
	}
	label := string(reason)
	if label == "" {
		label = "none"
	}
	r.outcomes.WithLabelValues(state.String(), label).Inc()
}

// Registry exposes the registry for tests and custom exporters
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes all metrics in the node exporter textfile format
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
