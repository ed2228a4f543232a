package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/potooio/cleancheck/internal/evaluator"
)

// ErrNothingToExport is returned by ExportXLSX when the report holds no classifications.
var ErrNothingToExport = errors.New("no results to export")

// DefaultExportName is the workbook file name used when only a directory is given.
func DefaultExportName(t time.Time) string {
	return "detect_cleaning_agent_metrics_" + t.Format("2006-01-02T15-04-05") + ".xlsx"
}

// ExportXLSX writes the detail tables of r to a workbook, one sheet per table.
// A path without an .xlsx extension names a directory: it is created when
// missing and the file is named with DefaultExportName(r.GeneratedAt) inside
// it. An empty path means the working directory. Parent directories of an
// .xlsx path are created as needed. The written path is returned.
func ExportXLSX(path string, r *evaluator.Report) (string, error) {
	if r.Result == nil || r.Result.Total() == 0 {
		return "", ErrNothingToExport
	}

	path, err := exportPath(path, r.GeneratedAt)
	if err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, table := range Tables(r) {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", table.Name); err != nil {
				return "", fmt.Errorf("export %s: %w", path, err)
			}
		} else if _, err := f.NewSheet(table.Name); err != nil {
			return "", fmt.Errorf("export %s: %w", path, err)
		}
		if err := writeSheet(f, table); err != nil {
			return "", fmt.Errorf("export %s: %w", path, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("export %s: %w", path, err)
	}
	return path, nil
}

func exportPath(path string, generated time.Time) (string, error) {
	dir := filepath.Dir(path)
	if info, err := os.Stat(path); path == "" || (err == nil && info.IsDir()) || !strings.EqualFold(filepath.Ext(path), ".xlsx") {
		dir = path
		path = filepath.Join(path, DefaultExportName(generated))
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("export %s: %w", path, err)
		}
	}
	return path, nil
}

func writeSheet(f *excelize.File, t Table) error {
	header := make([]any, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	rows := append([][]any{header}, t.Rows...)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(t.Name, cell, &row); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", t.Name, i+1, err)
		}
	}
	return nil
}
