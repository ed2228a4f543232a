package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"sigs.k8s.io/yaml"

	"github.com/potooio/cleancheck/internal/evaluator"
	"github.com/potooio/cleancheck/internal/normalizer"
	"github.com/potooio/cleancheck/internal/report"
	"github.com/potooio/cleancheck/internal/types"
)

// EvaluateResult is the result of an evaluate command.
type EvaluateResult struct {
	RunID           string             `json:"runId"`
	GeneratedAt     time.Time          `json:"generatedAt"`
	SensorFile      string             `json:"sensorFile"`
	MaintenanceFile string             `json:"maintenanceFile"`
	Location        string             `json:"location"`
	Window          string             `json:"window"`
	Period          *types.Period      `json:"period,omitempty"`
	TruePositives   int                `json:"truePositives"`
	FalsePositives  int                `json:"falsePositives"`
	FalseNegatives  int                `json:"falseNegatives"`
	Dropped         normalizer.Dropped `json:"dropped"`
	ExportFile      string             `json:"exportFile,omitempty"`
	Details         []DetailTable      `json:"details,omitempty"`

	// report backs the summary banner in table output.
	report *evaluator.Report
}

// DetailTable is one per-event table of an evaluate result.
type DetailTable struct {
	Name   string     `json:"name"`
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// VersionResult is the result of a version command.
type VersionResult struct {
	Version string `json:"version"`
}

func newEvaluateResult(r *evaluator.Report, details bool) EvaluateResult {
	result := EvaluateResult{
		RunID:           r.RunID,
		GeneratedAt:     r.GeneratedAt,
		SensorFile:      r.SensorFile,
		MaintenanceFile: r.MaintenanceFile,
		Location:        r.Location.String(),
		Window:          r.Window.String(),
		TruePositives:   r.Result.TruePositives,
		FalsePositives:  r.Result.FalsePositives,
		FalseNegatives:  r.Result.FalseNegatives,
		Dropped:         r.Dropped,
		report:          r,
	}
	if !r.Period.Start.IsZero() {
		period := r.Period
		result.Period = &period
	}
	if details {
		for _, t := range report.Tables(r)[1:] {
			rows := t.Strings()
			result.Details = append(result.Details, DetailTable{
				Name:   t.Name,
				Header: rows[0],
				Rows:   rows[1:],
			})
		}
	}
	return result
}

// outputResult outputs the result in the specified format.
func outputResult(result interface{}, format string) error {
	switch format {
	case "json":
		return outputJSON(result)
	case "yaml":
		return outputYAML(result)
	case "table", "":
		return outputTable(result)
	default:
		return fmt.Errorf("unknown output format %q: use table, json or yaml", format)
	}
}

func outputJSON(result interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func outputYAML(result interface{}) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func outputTable(result interface{}) error {
	switch r := result.(type) {
	case EvaluateResult:
		if r.report != nil {
			if err := report.WriteSummary(os.Stdout, r.report, !color.NoColor); err != nil {
				return err
			}
			fmt.Println()
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		defer w.Flush()
		return outputEvaluateTable(w, r)
	case VersionResult:
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		defer w.Flush()
		fmt.Fprintf(w, "VERSION\t%s\n", r.Version)
		return nil
	default:
		// Fall back to JSON for unknown types
		return outputJSON(result)
	}
}

func outputEvaluateTable(w *tabwriter.Writer, r EvaluateResult) error {
	fmt.Fprintf(w, "RUN ID:\t%s\n", r.RunID)
	fmt.Fprintf(w, "LOCATION:\t%s\n", r.Location)
	fmt.Fprintf(w, "WINDOW:\t%s\n", r.Window)
	if r.Period != nil {
		fmt.Fprintf(w, "PERIOD:\t%s to %s\n",
			r.Period.Start.Format(report.TimeLayout), r.Period.End.Format(report.TimeLayout))
	}
	fmt.Fprintf(w, "TRUE POSITIVES:\t%d\n", r.TruePositives)
	fmt.Fprintf(w, "FALSE POSITIVES:\t%d\n", r.FalsePositives)
	fmt.Fprintf(w, "FALSE NEGATIVES:\t%d\n", r.FalseNegatives)
	if r.ExportFile != "" {
		fmt.Fprintf(w, "EXPORT:\t%s\n", r.ExportFile)
	}

	for _, d := range r.Details {
		fmt.Fprintf(w, "\n%s (%d):\n", strings.ToUpper(strings.ReplaceAll(d.Name, "_", " ")), len(d.Rows))
		fmt.Fprintln(w, strings.Join(d.Header, "\t"))
		for _, row := range d.Rows {
			fmt.Fprintln(w, strings.Join(row, "\t"))
		}
	}

	return nil
}
