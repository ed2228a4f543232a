package ingest

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

// AlertRecord is one row of a sensor data export.
type AlertRecord struct {
	Origin    string
	Row       int
	Timestamp time.Time
	Location  string
	AlertID   string
	Status    string
}

// WorkOrderRecord is one row of a maintenance request export.
type WorkOrderRecord struct {
	Origin  string
	Row     int
	Number  string
	Title   string
	Address string
	Zone    string
	Created time.Time
}

// RowError points at the cell that could not be used.
type RowError struct {
	Table  string
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("%s row %d: %v", e.Table, e.Row, e.Err)
	}
	return fmt.Sprintf("%s row %d column %q: value %q: %v", e.Table, e.Row, e.Column, e.Value, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// ErrEmptyValue is wrapped by RowError when a required cell is blank.
var ErrEmptyValue = errors.New("value is empty")

// ParseAlerts converts the rows of a sensor table. Times are interpreted in loc.
func ParseAlerts(t *Table, idx ColumnIndex, schema Schema, loc *time.Location) ([]AlertRecord, error) {
	var (
		out  = make([]AlertRecord, 0, len(t.Rows))
		errs []error
	)
	for _, row := range t.Rows {
		if row.IsEmpty() {
			continue
		}
		ts, err := parseTimestamp(row.Cell(idx[FieldTimestamp]), schema.TimeLayouts, loc)
		if err != nil {
			errs = append(errs, rowError(t, row, schema, FieldTimestamp, idx, err))
			continue
		}
		out = append(out, AlertRecord{
			Origin:    t.Origin(row.Number),
			Row:       row.Number,
			Timestamp: ts,
			Location:  row.Cell(idx[FieldLocation]),
			AlertID:   row.Cell(idx[FieldAlertID]),
			Status:    row.Cell(idx[FieldStatus]),
		})
	}
	return out, errors.Join(errs...)
}

// ParseWorkOrders converts the rows of a maintenance table. Times are interpreted in loc.
func ParseWorkOrders(t *Table, idx ColumnIndex, schema Schema, loc *time.Location) ([]WorkOrderRecord, error) {
	var (
		out  = make([]WorkOrderRecord, 0, len(t.Rows))
		errs []error
	)
	for _, row := range t.Rows {
		if row.IsEmpty() {
			continue
		}
		created, err := parseTimestamp(row.Cell(idx[FieldTimestamp]), schema.TimeLayouts, loc)
		if err != nil {
			errs = append(errs, rowError(t, row, schema, FieldTimestamp, idx, err))
			continue
		}
		out = append(out, WorkOrderRecord{
			Origin:  t.Origin(row.Number),
			Row:     row.Number,
			Number:  row.Cell(idx[FieldNumber]),
			Title:   row.Cell(idx[FieldTitle]),
			Address: row.Cell(idx[FieldAddress]),
			Zone:    row.Cell(idx[FieldZone]),
			Created: created,
		})
	}
	return out, errors.Join(errs...)
}

func rowError(t *Table, row Row, schema Schema, field string, idx ColumnIndex, err error) *RowError {
	return &RowError{
		Table:  t.Name(),
		Row:    row.Number,
		Column: schema.Header(field),
		Value:  row.Cell(idx[field]),
		Err:    err,
	}
}

// parseTimestamp tries each layout in loc, then falls back to an Excel serial date.
func parseTimestamp(value string, layouts []string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Time{}, ErrEmptyValue
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range layouts {
		if ts, err := time.ParseInLocation(layout, value, loc); err == nil {
			return ts, nil
		}
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial > 0 {
		ts, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			// Excel serials carry no zone; read the wall clock in loc.
			ts = ts.Round(time.Second)
			return time.Date(ts.Year(), ts.Month(), ts.Day(), ts.Hour(), ts.Minute(), ts.Second(), 0, loc), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized timestamp, expected one of %q or an Excel date", layouts)
}
