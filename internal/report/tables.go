package report

import (
	"fmt"
	"time"

	"github.com/potooio/cleancheck/internal/correlator"
	"github.com/potooio/cleancheck/internal/evaluator"
	"github.com/potooio/cleancheck/internal/types"
)

// TimeLayout formats timestamps in text renderings of a Table.
const TimeLayout = "2006-01-02 15:04:05"

// Sheet names of the detail tables, in export order.
const (
	SheetMetrics        = "Metrics"
	SheetTruePositives  = "True_Positives"
	SheetFalsePositives = "False_Positives"
	SheetFalseNegatives = "False_Negatives"
)

// Table is one detail table. Cells hold strings, ints or time.Time values.
type Table struct {
	Name   string
	Header []string
	Rows   [][]any
}

// Strings renders every cell as text, header first.
func (t Table) Strings() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, t.Header)
	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			switch v := v.(type) {
			case time.Time:
				cells[i] = v.Format(TimeLayout)
			default:
				cells[i] = fmt.Sprint(v)
			}
		}
		out = append(out, cells)
	}
	return out
}

// Tables builds the Metrics, True_Positives, False_Positives and
// False_Negatives tables of r, in that order.
func Tables(r *evaluator.Report) []Table {
	return []Table{
		MetricsTable(r),
		TruePositiveTable(r),
		FalsePositiveTable(r),
		FalseNegativeTable(r),
	}
}

// MetricsTable lists the count per outcome.
func MetricsTable(r *evaluator.Report) Table {
	return Table{
		Name:   SheetMetrics,
		Header: []string{"Metric", "Count"},
		Rows: [][]any{
			{"True Positive", r.Result.TruePositives},
			{"False Positive", r.Result.FalsePositives},
			{"False Negative", r.Result.FalseNegatives},
		},
	}
}

// TruePositiveTable lists matched alert and work order pairs.
func TruePositiveTable(r *evaluator.Report) Table {
	t := Table{
		Name: SheetTruePositives,
		Header: []string{
			"Alert_Time", "Cleaning_Time", "Alert_Location", "Cleaning_Location",
			"Alert_ID", "Cleaning_ID", "Cleaning_Title", "Zone", "Elevator",
		},
	}
	for _, c := range r.Result.ByOutcome(correlator.TruePositive) {
		a, o := c.Alert, c.WorkOrder
		t.Rows = append(t.Rows, []any{
			a.Timestamp,
			o.Timestamp,
			a.Detail(types.DetailLocation),
			o.Detail(types.DetailLocation),
			a.Detail(types.DetailAlertID),
			o.Detail(types.DetailOrderNo),
			o.Detail(types.DetailTitle),
			a.Detail(types.DetailZone),
			a.Detail(types.DetailElevator),
		})
	}
	return t
}

// FalsePositiveTable lists alerts without a work order.
func FalsePositiveTable(r *evaluator.Report) Table {
	t := Table{
		Name:   SheetFalsePositives,
		Header: []string{"Time", "Location", "ID", "Zone", "Elevator"},
	}
	for _, c := range r.Result.ByOutcome(correlator.FalsePositive) {
		a := c.Alert
		t.Rows = append(t.Rows, []any{
			a.Timestamp,
			a.Detail(types.DetailLocation),
			a.Detail(types.DetailAlertID),
			a.Detail(types.DetailZone),
			a.Detail(types.DetailElevator),
		})
	}
	return t
}

// FalseNegativeTable lists work orders no alert explained.
func FalseNegativeTable(r *evaluator.Report) Table {
	t := Table{
		Name:   SheetFalseNegatives,
		Header: []string{"Time", "ID", "Location", "Title", "Zone", "Elevator"},
	}
	for _, c := range r.Result.ByOutcome(correlator.FalseNegative) {
		o := c.WorkOrder
		t.Rows = append(t.Rows, []any{
			o.Timestamp,
			o.Detail(types.DetailOrderNo),
			o.Detail(types.DetailLocation),
			o.Detail(types.DetailTitle),
			o.Detail(types.DetailZone),
			o.Detail(types.DetailElevator),
		})
	}
	return t
}
