package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for files that are neither .csv nor .xlsx.
var ErrUnsupportedFormat = errors.New("unsupported file format, expected .csv or .xlsx")

// Row is one data row. Number is the 1-based row number in the source file.
type Row struct {
	Number int
	Cells  []string
}

// Cell returns the trimmed cell at index i, or "" when the row is shorter.
func (r Row) Cell(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return strings.TrimSpace(r.Cells[i])
}

// IsEmpty reports whether every cell is blank.
func (r Row) IsEmpty() bool {
	for i := range r.Cells {
		if r.Cell(i) != "" {
			return false
		}
	}
	return true
}

// Table is a header row plus data rows from one CSV file or one XLSX sheet.
type Table struct {
	Source string // base name of the file
	Sheet  string // empty for CSV
	Header []string
	Rows   []Row
}

// Name identifies the table in messages.
func (t *Table) Name() string {
	if t.Sheet == "" {
		return t.Source
	}
	return t.Source + "[" + t.Sheet + "]"
}

// Origin returns the row-origin identifier used as the event ID.
func (t *Table) Origin(row int) string {
	if t.Sheet == "" {
		return fmt.Sprintf("%s:%d", t.Source, row)
	}
	return fmt.Sprintf("%s:%s:%d", t.Source, t.Sheet, row)
}

// ReadFile loads a CSV file or every sheet of an XLSX workbook.
func ReadFile(path string) ([]Table, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("open %s: is a directory", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		table, err := readCSV(path)
		if err != nil {
			return nil, err
		}
		return []Table{table}, nil
	case ".xlsx":
		return readXLSX(path)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}

func readCSV(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}

	return newTable(filepath.Base(path), "", records), nil
}

func readXLSX(path string) ([]Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var tables []Table
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read %s sheet %q: %w", path, sheet, err)
		}
		tables = append(tables, newTable(filepath.Base(path), sheet, rows))
	}
	return tables, nil
}

func newTable(source, sheet string, records [][]string) Table {
	t := Table{Source: source, Sheet: sheet}
	if len(records) == 0 {
		return t
	}
	t.Header = make([]string, len(records[0]))
	for i, h := range records[0] {
		t.Header[i] = strings.TrimSpace(h)
	}
	t.Rows = make([]Row, 0, len(records)-1)
	for i, rec := range records[1:] {
		t.Rows = append(t.Rows, Row{Number: i + 2, Cells: rec})
	}
	return t
}
