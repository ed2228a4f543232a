package evaluator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/potooio/cleancheck/internal/config"
	"github.com/potooio/cleancheck/internal/correlator"
	"github.com/potooio/cleancheck/internal/ingest"
	"github.com/potooio/cleancheck/internal/normalizer"
	"github.com/potooio/cleancheck/internal/types"
)

// Sources names the two input exports.
type Sources struct {
	SensorFile      string
	MaintenanceFile string
}

// Report is the outcome of one evaluation.
type Report struct {
	RunID           string
	GeneratedAt     time.Time
	Location        types.Location
	Period          types.Period
	Window          time.Duration
	SensorFile      string
	MaintenanceFile string
	Dropped         normalizer.Dropped
	Result          *correlator.Result
}

// Evaluator wires ingestion, normalization and correlation together.
type Evaluator struct {
	cfg    config.Config
	logger *zap.Logger
	now    func() time.Time
}

// New creates an Evaluator.
func New(cfg config.Config, logger *zap.Logger) *Evaluator {
	if cfg.Timezone == nil {
		cfg.Timezone = time.UTC
	}
	return &Evaluator{
		cfg:    cfg,
		logger: logger.Named("evaluator"),
		now:    time.Now,
	}
}

// Evaluate runs one evaluation over src.
func (e *Evaluator) Evaluate(ctx context.Context, src Sources) (*Report, error) {
	start := e.now()
	report := &Report{
		RunID:           uuid.NewString(),
		GeneratedAt:     start,
		SensorFile:      src.SensorFile,
		MaintenanceFile: src.MaintenanceFile,
	}
	log := e.logger.With(zap.String("run_id", report.RunID))

	alerts, err := e.loadAlerts(src.SensorFile)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("evaluation cancelled: %w", err)
	}

	orders, err := e.loadWorkOrders(src.MaintenanceFile)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("evaluation cancelled: %w", err)
	}
	log.Info("Inputs parsed",
		zap.String("sensor_file", src.SensorFile),
		zap.Int("sensor_rows", len(alerts)),
		zap.String("maintenance_file", src.MaintenanceFile),
		zap.Int("maintenance_rows", len(orders)))

	n := normalizer.New(normalizer.Options{
		Window:            e.cfg.Window,
		RepeatSuppression: e.cfg.RepeatSuppression,
		StatusKeyword:     e.cfg.StatusKeyword,
		Location:          e.cfg.Location,
	}, e.logger)
	streams, err := n.Normalize(alerts, orders)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("evaluation cancelled: %w", err)
	}
	report.Location = streams.Location
	report.Period = streams.Period
	report.Dropped = streams.Dropped

	result, err := correlator.Correlate(streams.Alerts, streams.WorkOrders, correlator.Options{
		Window:    e.cfg.Window,
		MaxEvents: e.cfg.MaxEvents,
	})
	if err != nil {
		return nil, fmt.Errorf("correlate: %w", err)
	}
	report.Window = result.Window
	report.Result = result

	eventsTotal.WithLabelValues(string(types.KindSensorAlert)).Add(float64(len(streams.Alerts)))
	eventsTotal.WithLabelValues(string(types.KindWorkOrder)).Add(float64(len(streams.WorkOrders)))
	classificationsTotal.WithLabelValues(string(correlator.TruePositive)).Add(float64(result.TruePositives))
	classificationsTotal.WithLabelValues(string(correlator.FalsePositive)).Add(float64(result.FalsePositives))
	classificationsTotal.WithLabelValues(string(correlator.FalseNegative)).Add(float64(result.FalseNegatives))
	evaluationDuration.Observe(e.now().Sub(start).Seconds())

	log.Info("Evaluation complete",
		zap.Stringer("location", report.Location),
		zap.Duration("window", report.Window),
		zap.Int("true_positives", result.TruePositives),
		zap.Int("false_positives", result.FalsePositives),
		zap.Int("false_negatives", result.FalseNegatives))

	return report, nil
}

func (e *Evaluator) loadAlerts(path string) ([]ingest.AlertRecord, error) {
	schema := ingest.SensorSchema.WithHeaders(e.cfg.SensorColumns)
	table, idx, err := findTable(path, schema)
	if err != nil {
		return nil, err
	}
	records, err := ingest.ParseAlerts(table, idx, schema, e.cfg.Timezone)
	if err != nil {
		rowsRejectedTotal.WithLabelValues(sourceSensor).Add(float64(countErrors(err)))
		return nil, fmt.Errorf("parse %s: %w", schema.Name, err)
	}
	return records, nil
}

func (e *Evaluator) loadWorkOrders(path string) ([]ingest.WorkOrderRecord, error) {
	schema := ingest.MaintenanceSchema.WithHeaders(e.cfg.MaintenanceColumns)
	table, idx, err := findTable(path, schema)
	if err != nil {
		return nil, err
	}
	records, err := ingest.ParseWorkOrders(table, idx, schema, e.cfg.Timezone)
	if err != nil {
		rowsRejectedTotal.WithLabelValues(sourceMaintenance).Add(float64(countErrors(err)))
		return nil, fmt.Errorf("parse %s: %w", schema.Name, err)
	}
	return records, nil
}

func findTable(path string, schema ingest.Schema) (*ingest.Table, ingest.ColumnIndex, error) {
	if path == "" {
		return nil, nil, fmt.Errorf("%s file not set", schema.Name)
	}
	tables, err := ingest.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	table, idx, err := ingest.FindTable(tables, schema)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, idx, nil
}

// countErrors returns the number of errors joined into err.
func countErrors(err error) int {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		return len(joined.Unwrap())
	}
	return 1
}
