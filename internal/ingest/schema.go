package ingest

import (
	"fmt"
	"strings"
	"time"
)

// Field names used in Schema columns and header overrides.
const (
	FieldTimestamp = "timestamp"
	FieldLocation  = "location"
	FieldAlertID   = "alertId"
	FieldStatus    = "status"
	FieldNumber    = "number"
	FieldTitle     = "title"
	FieldAddress   = "address"
	FieldZone      = "zone"
)

// Column maps a record field to the header text it is found under.
type Column struct {
	Field  string
	Header string
}

// Schema describes the required columns of one export type.
type Schema struct {
	Name        string
	Columns     []Column
	TimeLayouts []string
}

// SensorSchema describes a sensor data export.
var SensorSchema = Schema{
	Name: "sensor data",
	Columns: []Column{
		{Field: FieldTimestamp, Header: "Date & Time Stamp"},
		{Field: FieldLocation, Header: "Location Elevator #"},
		{Field: FieldAlertID, Header: "Alert ID"},
		{Field: FieldStatus, Header: "Status"},
	},
	TimeLayouts: []string{
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		time.RFC3339,
	},
}

// MaintenanceSchema describes a maintenance request export.
var MaintenanceSchema = Schema{
	Name: "maintenance request",
	Columns: []Column{
		{Field: FieldNumber, Header: "#"},
		{Field: FieldTitle, Header: "Title"},
		{Field: FieldAddress, Header: "Address"},
		{Field: FieldTimestamp, Header: "Created"},
		{Field: FieldZone, Header: "Zone"},
	},
	TimeLayouts: []string{
		"01/02/2006 15:04",
		"1/2/2006 15:04",
		"01/02/2006 15:04:05",
		"1/2/2006 15:04:05",
	},
}

// WithHeaders returns a copy of s with the headers of the named fields replaced.
// Field names match case-insensitively. Unknown fields and empty headers are ignored.
func (s Schema) WithHeaders(overrides map[string]string) Schema {
	lowered := make(map[string]string, len(overrides))
	for field, header := range overrides {
		lowered[strings.ToLower(field)] = header
	}

	out := s
	out.Columns = make([]Column, len(s.Columns))
	copy(out.Columns, s.Columns)
	for i, c := range out.Columns {
		if h := strings.TrimSpace(lowered[strings.ToLower(c.Field)]); h != "" {
			out.Columns[i].Header = h
		}
	}
	return out
}

// Header returns the header configured for field, or "".
func (s Schema) Header(field string) string {
	for _, c := range s.Columns {
		if c.Field == field {
			return c.Header
		}
	}
	return ""
}

// ColumnIndex maps field names to column positions.
type ColumnIndex map[string]int

// TableMissing lists the headers one table lacked.
type TableMissing struct {
	Table   string
	Missing []string
}

// MissingColumnsError means no table carried every required header.
type MissingColumnsError struct {
	Schema string
	Tables []TableMissing
}

func (e *MissingColumnsError) Error() string {
	if len(e.Tables) == 0 {
		return fmt.Sprintf("%s: no tables found", e.Schema)
	}
	parts := make([]string, 0, len(e.Tables))
	for _, t := range e.Tables {
		parts = append(parts, fmt.Sprintf("%s missing [%s]", t.Table, strings.Join(t.Missing, ", ")))
	}
	return fmt.Sprintf("%s: required headers missing: %s", e.Schema, strings.Join(parts, "; "))
}

// FindTable returns the first table whose header holds every column in the
// schema, plus the field-to-index mapping. When a header repeats, the first
// occurrence wins.
func FindTable(tables []Table, schema Schema) (*Table, ColumnIndex, error) {
	missingErr := &MissingColumnsError{Schema: schema.Name}
	for i := range tables {
		idx, missing := indexHeader(tables[i].Header, schema)
		if len(missing) == 0 {
			return &tables[i], idx, nil
		}
		missingErr.Tables = append(missingErr.Tables, TableMissing{Table: tables[i].Name(), Missing: missing})
	}
	return nil, nil, missingErr
}

func indexHeader(header []string, schema Schema) (ColumnIndex, []string) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := positions[h]; !dup {
			positions[h] = i
		}
	}

	idx := make(ColumnIndex, len(schema.Columns))
	var missing []string
	for _, c := range schema.Columns {
		pos, ok := positions[c.Header]
		if !ok {
			missing = append(missing, c.Header)
			continue
		}
		idx[c.Field] = pos
	}
	return idx, missing
}
