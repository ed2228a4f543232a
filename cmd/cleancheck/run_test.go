package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"

	"github.com/potooio/cleancheck/internal/testutil"
)

func writeInputs(t *testing.T) (string, string) {
	t.Helper()
	sensor := testutil.WriteCSV(t, "sensor.csv", [][]string{
		testutil.SensorHeader,
		{"2024-03-04 10:00:00", "DTX 101", "S-1", "Cleaning agent"},
		{"2024-03-04 12:00:00", "DTX 101", "S-2", "Cleaning agent"},
	})
	maintenance := testutil.WriteCSV(t, "requests.csv", [][]string{
		testutil.MaintenanceHeader,
		{"WO-1", "Clean elevator", "Elev 101", "03/04/2024 10:20", "DTX"},
		{"WO-2", "Clean elevator", "Elev 101", "03/04/2024 11:30", "DTX"},
	})
	return sensor, maintenance
}

// runCLI executes the root command with args and returns stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))

	var err error
	out := captureStdout(t, func() {
		err = cmd.Execute()
	})
	return out, err
}

// ---------------------------------------------------------------------------
// evaluate end to end
// ---------------------------------------------------------------------------

func TestRunEvaluate_JSON(t *testing.T) {
	sensor, maintenance := writeInputs(t)

	out, err := runCLI(t, "evaluate", "-s", sensor, "-m", maintenance, "-o", "json", "--details")
	require.NoError(t, err)

	var result EvaluateResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "dtx/101", result.Location)
	assert.Equal(t, "1h0m0s", result.Window)
	assert.Equal(t, 1, result.TruePositives)
	assert.Equal(t, 1, result.FalsePositives)
	assert.Equal(t, 1, result.FalseNegatives)
	require.NotNil(t, result.Period)

	require.Len(t, result.Details, 3)
	assert.Equal(t, "True_Positives", result.Details[0].Name)
	require.Len(t, result.Details[0].Rows, 1)
	assert.Equal(t, "WO-1", result.Details[0].Rows[0][5])
	assert.Equal(t, "False_Negatives", result.Details[2].Name)
	assert.Equal(t, "WO-2", result.Details[2].Rows[0][1])
}

func TestRunEvaluate_YAML(t *testing.T) {
	sensor, maintenance := writeInputs(t)

	out, err := runCLI(t, "evaluate", "-s", sensor, "-m", maintenance, "-o", "yaml")
	require.NoError(t, err)

	var result EvaluateResult
	require.NoError(t, yaml.Unmarshal([]byte(out), &result))
	assert.Equal(t, 1, result.TruePositives)
	assert.Empty(t, result.Details)
}

func TestRunEvaluate_Table(t *testing.T) {
	sensor, maintenance := writeInputs(t)
	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	out, err := runCLI(t, "evaluate", "-s", sensor, "-m", maintenance, "--details")
	require.NoError(t, err)

	assert.Contains(t, out, "Results")
	assert.Contains(t, out, "* True Positive       * 1         *")
	assert.Contains(t, out, "LOCATION:")
	assert.Contains(t, out, "dtx/101")
	assert.Contains(t, out, "TRUE POSITIVES (1):")
	assert.Contains(t, out, "FALSE NEGATIVES (1):")
}

func TestRunEvaluate_WindowFlag(t *testing.T) {
	sensor, maintenance := writeInputs(t)

	// A 10 minute window trims both alerts out of the overlap period
	// (10:10..11:40), leaving only missed work orders.
	out, err := runCLI(t, "evaluate", "-s", sensor, "-m", maintenance, "--window", "10m", "-o", "json")
	require.NoError(t, err)

	var result EvaluateResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "10m0s", result.Window)
	assert.Equal(t, 0, result.TruePositives)
	assert.Equal(t, 0, result.FalsePositives)
	assert.Equal(t, 2, result.FalseNegatives)
	assert.Equal(t, 2, result.Dropped.OutsidePeriod)
}

func TestRunEvaluate_EnvConfig(t *testing.T) {
	sensor, maintenance := writeInputs(t)
	t.Setenv("CLEANCHECK_WINDOW", "10m")

	out, err := runCLI(t, "evaluate", "-s", sensor, "-m", maintenance, "-o", "json")
	require.NoError(t, err)

	var result EvaluateResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "10m0s", result.Window)
}

func TestRunEvaluate_ConfigFile(t *testing.T) {
	sensor, maintenance := writeInputs(t)
	cfgPath := filepath.Join(t.TempDir(), "cleancheck.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("window: 10m\n"), 0o600))

	out, err := runCLI(t, "--config", cfgPath, "evaluate", "-s", sensor, "-m", maintenance, "-o", "json")
	require.NoError(t, err)

	var result EvaluateResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "10m0s", result.Window)
}

func TestRunEvaluate_ExportAndMetrics(t *testing.T) {
	sensor, maintenance := writeInputs(t)
	exportDir := t.TempDir()
	metricsPath := filepath.Join(t.TempDir(), "cleancheck.prom")

	out, err := runCLI(t, "evaluate", "-s", sensor, "-m", maintenance,
		"--export", exportDir, "--metrics-file", metricsPath, "-o", "json")
	require.NoError(t, err)

	var result EvaluateResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.NotEmpty(t, result.ExportFile)
	assert.Equal(t, exportDir, filepath.Dir(result.ExportFile))

	_, err = os.Stat(result.ExportFile)
	assert.NoError(t, err)

	metrics, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "cleancheck_classifications_total")
}

func TestRunEvaluate_Errors(t *testing.T) {
	sensor, maintenance := writeInputs(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "missing required flags",
			args:    []string{"evaluate"},
			wantErr: "required flag(s)",
		},
		{
			name:    "missing sensor file",
			args:    []string{"evaluate", "-s", filepath.Join(t.TempDir(), "none.csv"), "-m", maintenance},
			wantErr: "evaluation failed",
		},
		{
			name:    "invalid window",
			args:    []string{"evaluate", "-s", sensor, "-m", maintenance, "--window", "-1h"},
			wantErr: "window must be positive",
		},
		{
			name:    "invalid location",
			args:    []string{"evaluate", "-s", sensor, "-m", maintenance, "--location", "dtx"},
			wantErr: "zone/elevator",
		},
		{
			name:    "unknown output format",
			args:    []string{"evaluate", "-s", sensor, "-m", maintenance, "-o", "xml"},
			wantErr: "unknown output format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
