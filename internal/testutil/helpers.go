// Package testutil provides shared test helpers for the cleancheck project.
// Import this in test files to avoid duplicating event builders and fixture files.
package testutil

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/potooio/cleancheck/internal/types"
)

// Day is the reference date used by At.
var Day = time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)

// At returns Day at the given "15:04" clock time. Panics on malformed input.
func At(clock string) time.Time {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		panic(fmt.Sprintf("testutil.At(%q): %v", clock, err))
	}
	return Day.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
}

// Alert builds a sensor alert event.
func Alert(id string, ts time.Time) types.Event {
	return types.Event{ID: id, Kind: types.KindSensorAlert, Timestamp: ts}
}

// WorkOrder builds a work order event.
func WorkOrder(id string, ts time.Time) types.Event {
	return types.Event{ID: id, Kind: types.KindWorkOrder, Timestamp: ts}
}

// Alerts builds sequentially numbered alerts at the given clock times.
func Alerts(clocks ...string) []types.Event {
	out := make([]types.Event, 0, len(clocks))
	for i, c := range clocks {
		out = append(out, Alert(fmt.Sprintf("alert-%d", i+1), At(c)))
	}
	return out
}

// WorkOrders builds sequentially numbered work orders at the given clock times.
func WorkOrders(clocks ...string) []types.Event {
	out := make([]types.Event, 0, len(clocks))
	for i, c := range clocks {
		out = append(out, WorkOrder(fmt.Sprintf("order-%d", i+1), At(c)))
	}
	return out
}

// SensorHeader is the header row of a sensor data export.
var SensorHeader = []string{"Date & Time Stamp", "Location Elevator #", "Alert ID", "Status"}

// MaintenanceHeader is the header row of a maintenance request export.
var MaintenanceHeader = []string{"#", "Title", "Address", "Created", "Zone"}

// WriteCSV writes rows to name inside a temp dir and returns the path.
func WriteCSV(t *testing.T, name string, rows [][]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := csv.NewWriter(f)
	require.NoError(t, w.WriteAll(rows))
	return path
}

// WriteXLSX writes each sheet's rows to a workbook inside a temp dir and
// returns the path. Sheets are created in the order given by names.
func WriteXLSX(t *testing.T, name string, names []string, sheets map[string][][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range names {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", sheet))
		} else {
			_, err := f.NewSheet(sheet)
			require.NoError(t, err)
		}
		for r, row := range sheets[sheet] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(sheet, cell, &row))
		}
	}

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.SaveAs(path))
	return path
}
