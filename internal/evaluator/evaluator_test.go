package evaluator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/potooio/cleancheck/internal/config"
	"github.com/potooio/cleancheck/internal/correlator"
	"github.com/potooio/cleancheck/internal/ingest"
	"github.com/potooio/cleancheck/internal/normalizer"
	"github.com/potooio/cleancheck/internal/testutil"
	"github.com/potooio/cleancheck/internal/types"
)

func testConfig() config.Config {
	return config.Config{
		Window:            time.Hour,
		RepeatSuppression: normalizer.DefaultRepeatSuppression,
		StatusKeyword:     normalizer.DefaultStatusKeyword,
		Timezone:          time.UTC,
	}
}

func sensorCSV(t *testing.T) string {
	t.Helper()
	return testutil.WriteCSV(t, "sensor.csv", [][]string{
		testutil.SensorHeader,
		{"2024-03-04 10:00:00", "DTX 101", "S-1", "Cleaning agent"},
		{"2024-03-04 11:00:00", "DTX 101", "S-9", "Urine"},
		{"2024-03-04 12:00:00", "DTX 101", "S-2", "Cleaning agent"},
		{"2024-03-04 15:00:00", "DTX 101", "S-3", "Cleaning agent"},
	})
}

func maintenanceCSV(t *testing.T) string {
	t.Helper()
	return testutil.WriteCSV(t, "requests.csv", [][]string{
		testutil.MaintenanceHeader,
		{"WO-1", "Clean elevator", "Elev 101", "03/04/2024 10:20", "DTX"},
		{"WO-2", "Clean elevator", "Elev 101", "03/04/2024 13:30", "DTX"},
		{"WO-3", "Clean elevator", "Elev 101", "3/4/2024 15:40", "DTX"},
		{"WO-4", "Clean elevator", "Elev 205", "03/04/2024 11:00", "DTX"},
	})
}

func TestEvaluate(t *testing.T) {
	e := New(testConfig(), zaptest.NewLogger(t))
	tpBefore := promtestutil.ToFloat64(classificationsTotal.WithLabelValues(string(correlator.TruePositive)))

	src := Sources{SensorFile: sensorCSV(t), MaintenanceFile: maintenanceCSV(t)}
	report, err := e.Evaluate(context.Background(), src)
	require.NoError(t, err)

	_, err = uuid.Parse(report.RunID)
	assert.NoError(t, err)
	assert.False(t, report.GeneratedAt.IsZero())
	assert.Equal(t, src.SensorFile, report.SensorFile)
	assert.Equal(t, src.MaintenanceFile, report.MaintenanceFile)
	assert.Equal(t, types.Location{Zone: "dtx", Elevator: "101"}, report.Location)
	assert.Equal(t, time.Hour, report.Window)
	assert.Equal(t, types.Period{Start: testutil.At("09:20"), End: testutil.At("16:00")}, report.Period)
	assert.Equal(t, 1, report.Dropped.NonCleaning)
	assert.Equal(t, 1, report.Dropped.OtherLocation)

	r := report.Result
	assert.Equal(t, 2, r.TruePositives)
	assert.Equal(t, 1, r.FalsePositives)
	assert.Equal(t, 1, r.FalseNegatives)

	outcomes := make([]correlator.Outcome, len(r.Classifications))
	for i, c := range r.Classifications {
		outcomes[i] = c.Outcome
	}
	assert.Equal(t, []correlator.Outcome{
		correlator.TruePositive,
		correlator.FalsePositive,
		correlator.FalseNegative,
		correlator.TruePositive,
	}, outcomes)

	first := r.Classifications[0]
	assert.Equal(t, "sensor.csv:2", first.Alert.ID)
	assert.Equal(t, "requests.csv:2", first.WorkOrder.ID)
	assert.Equal(t, "WO-1", first.WorkOrder.Detail(types.DetailOrderNo))
	assert.Equal(t, 20*time.Minute, first.Gap)

	tpAfter := promtestutil.ToFloat64(classificationsTotal.WithLabelValues(string(correlator.TruePositive)))
	assert.Equal(t, 2.0, tpAfter-tpBefore)
}

func TestEvaluate_RunIDsDiffer(t *testing.T) {
	e := New(testConfig(), zap.NewNop())
	src := Sources{SensorFile: sensorCSV(t), MaintenanceFile: maintenanceCSV(t)}

	a, err := e.Evaluate(context.Background(), src)
	require.NoError(t, err)
	b, err := e.Evaluate(context.Background(), src)
	require.NoError(t, err)

	assert.NotEqual(t, a.RunID, b.RunID)
	assert.Equal(t, a.Result.TruePositives, b.Result.TruePositives)
}

func TestEvaluate_LogsSummary(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	e := New(testConfig(), zap.New(core))

	report, err := e.Evaluate(context.Background(), Sources{SensorFile: sensorCSV(t), MaintenanceFile: maintenanceCSV(t)})
	require.NoError(t, err)

	entries := observed.FilterMessage("Evaluation complete").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, report.RunID, fields["run_id"])
	assert.Equal(t, int64(2), fields["true_positives"])
	assert.Equal(t, "evaluator", entries[0].LoggerName)

	normalizerLogs := observed.Filter(func(e observer.LoggedEntry) bool {
		return e.LoggerName == "evaluator.normalizer"
	})
	assert.Equal(t, 1, normalizerLogs.FilterMessage("Overlapping time period").Len())
}

func TestEvaluate_XLSXMaintenance(t *testing.T) {
	maintenance := testutil.WriteXLSX(t, "requests.xlsx", []string{"Summary", "Requests"}, map[string][][]any{
		"Summary": {{"Report", "Generated"}},
		"Requests": {
			{"#", "Title", "Address", "Created", "Zone"},
			{"WO-1", "Clean elevator", "Elev 101", "03/04/2024 10:20", "DTX"},
		},
	})

	e := New(testConfig(), zap.NewNop())
	report, err := e.Evaluate(context.Background(), Sources{SensorFile: sensorCSV(t), MaintenanceFile: maintenance})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Result.TruePositives)
	tp := report.Result.ByOutcome(correlator.TruePositive)[0]
	assert.Equal(t, "requests.xlsx:Requests:2", tp.WorkOrder.ID)
}

func TestEvaluate_CustomHeaders(t *testing.T) {
	cfg := testConfig()
	cfg.SensorColumns = map[string]string{ingest.FieldTimestamp: "Alert Time"}

	sensor := testutil.WriteCSV(t, "sensor.csv", [][]string{
		{"Alert Time", "Location Elevator #", "Alert ID", "Status"},
		{"2024-03-04 10:00:00", "DTX 101", "S-1", "Cleaning agent"},
	})

	report, err := New(cfg, zap.NewNop()).Evaluate(context.Background(), Sources{
		SensorFile:      sensor,
		MaintenanceFile: maintenanceCSV(t),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Result.TruePositives)
}

func TestEvaluate_SelectedLocation(t *testing.T) {
	cfg := testConfig()
	cfg.Location = types.Location{Zone: "dtx", Elevator: "205"}

	report, err := New(cfg, zap.NewNop()).Evaluate(context.Background(), Sources{
		SensorFile:      sensorCSV(t),
		MaintenanceFile: maintenanceCSV(t),
	})
	require.NoError(t, err)

	assert.Equal(t, cfg.Location, report.Location)
	assert.Equal(t, 0, report.Result.TruePositives)
	assert.Equal(t, 0, report.Result.FalsePositives)
	assert.Equal(t, 1, report.Result.FalseNegatives)
}

func TestEvaluate_Errors(t *testing.T) {
	t.Run("missing file setting", func(t *testing.T) {
		_, err := New(testConfig(), zap.NewNop()).Evaluate(context.Background(), Sources{MaintenanceFile: maintenanceCSV(t)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sensor data file not set")
	})

	t.Run("unsupported format", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sensor.txt")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

		_, err := New(testConfig(), zap.NewNop()).Evaluate(context.Background(), Sources{SensorFile: path, MaintenanceFile: maintenanceCSV(t)})
		assert.ErrorIs(t, err, ingest.ErrUnsupportedFormat)
	})

	t.Run("missing columns", func(t *testing.T) {
		sensor := testutil.WriteCSV(t, "sensor.csv", [][]string{{"Date & Time Stamp", "Status"}})

		_, err := New(testConfig(), zap.NewNop()).Evaluate(context.Background(), Sources{SensorFile: sensor, MaintenanceFile: maintenanceCSV(t)})
		var missing *ingest.MissingColumnsError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, "sensor data", missing.Schema)
	})

	t.Run("bad rows", func(t *testing.T) {
		before := promtestutil.ToFloat64(rowsRejectedTotal.WithLabelValues(sourceMaintenance))
		maintenance := testutil.WriteCSV(t, "requests.csv", [][]string{
			testutil.MaintenanceHeader,
			{"WO-1", "Clean", "Elev 101", "yesterday", "DTX"},
			{"WO-2", "Clean", "Elev 101", "", "DTX"},
			{"WO-3", "Clean", "Elev 101", "03/04/2024 10:20", "DTX"},
		})

		_, err := New(testConfig(), zap.NewNop()).Evaluate(context.Background(), Sources{SensorFile: sensorCSV(t), MaintenanceFile: maintenance})
		require.Error(t, err)
		assert.ErrorIs(t, err, ingest.ErrEmptyValue)

		var rowErr *ingest.RowError
		require.True(t, errors.As(err, &rowErr))
		assert.Equal(t, 2, rowErr.Row)
		assert.Equal(t, "yesterday", rowErr.Value)

		after := promtestutil.ToFloat64(rowsRejectedTotal.WithLabelValues(sourceMaintenance))
		assert.Equal(t, 2.0, after-before)
	})

	t.Run("ambiguous location", func(t *testing.T) {
		sensor := testutil.WriteCSV(t, "sensor.csv", [][]string{
			testutil.SensorHeader,
			{"2024-03-04 10:00:00", "DTX 101", "S-1", "Cleaning"},
			{"2024-03-04 10:30:00", "DTX 102", "S-2", "Cleaning"},
		})

		_, err := New(testConfig(), zap.NewNop()).Evaluate(context.Background(), Sources{SensorFile: sensor, MaintenanceFile: maintenanceCSV(t)})
		var ambiguous *normalizer.AmbiguousLocationError
		assert.True(t, errors.As(err, &ambiguous))
	})

	t.Run("resource limit", func(t *testing.T) {
		cfg := testConfig()
		cfg.MaxEvents = 2

		_, err := New(cfg, zap.NewNop()).Evaluate(context.Background(), Sources{SensorFile: sensorCSV(t), MaintenanceFile: maintenanceCSV(t)})
		assert.ErrorIs(t, err, correlator.ErrResourceLimitExceeded)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := New(testConfig(), zap.NewNop()).Evaluate(ctx, Sources{SensorFile: sensorCSV(t), MaintenanceFile: maintenanceCSV(t)})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestWriteMetrics(t *testing.T) {
	_, err := New(testConfig(), zap.NewNop()).Evaluate(context.Background(), Sources{
		SensorFile:      sensorCSV(t),
		MaintenanceFile: maintenanceCSV(t),
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "cleancheck.prom")
	require.NoError(t, WriteMetrics(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `cleancheck_classifications_total{outcome="TruePositive"}`)
	assert.Contains(t, out, `cleancheck_events_total{kind="SensorAlert"}`)
	assert.Contains(t, out, "cleancheck_evaluation_duration_seconds_count")
}

func TestWriteMetrics_BadPath(t *testing.T) {
	err := WriteMetrics(filepath.Join(t.TempDir(), "missing", "cleancheck.prom"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write metrics")
}

func TestCountErrors(t *testing.T) {
	assert.Equal(t, 1, countErrors(errors.New("one")))
	assert.Equal(t, 3, countErrors(errors.Join(errors.New("a"), errors.New("b"), errors.New("c"))))
}
