package evaluator

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds the evaluator collectors. It is separate from the default
// registry so a textfile dump contains only cleancheck series.
var Registry = prometheus.NewRegistry()

var (
	eventsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "cleancheck_events_total",
			Help: "Events handed to the correlator by kind.",
		},
		[]string{"kind"},
	)
	classificationsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "cleancheck_classifications_total",
			Help: "Classification records produced by outcome.",
		},
		[]string{"outcome"},
	)
	rowsRejectedTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "cleancheck_rows_rejected_total",
			Help: "Input rows rejected during parsing by source.",
		},
		[]string{"source"},
	)
	evaluationDuration = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cleancheck_evaluation_duration_seconds",
			Help:    "Wall time of complete evaluations.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)
)

// Source labels for rowsRejectedTotal.
const (
	sourceSensor      = "sensor"
	sourceMaintenance = "maintenance"
)

// WriteMetrics writes Registry to path in the text exposition format read by
// the node exporter textfile collector.
func WriteMetrics(path string) error {
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
