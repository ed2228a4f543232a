// Package types holds the canonical event model shared by ingestion,
// normalization, correlation and reporting.
package types

import (
	"fmt"
	"strings"
	"time"
)

// Kind tells which export an event came from.
type Kind string

const (
	KindSensorAlert Kind = "SensorAlert"
	KindWorkOrder   Kind = "WorkOrder"
)

// Well-known Details keys. Ingestion fills them, reporting reads them.
// The correlation engine never looks at Details.
const (
	DetailAlertID  = "alertId"
	DetailStatus   = "status"
	DetailLocation = "location"
	DetailTitle    = "title"
	DetailOrderNo  = "orderNumber"
	DetailZone     = "zone"
	DetailElevator = "elevator"
)

// Event is a timestamped occurrence of a sensor alert or a work order.
type Event struct {
	// ID identifies the row the event came from (e.g. "alerts.csv:Sheet1:14").
	// It is used for traceability and duplicate detection only.
	ID string

	Kind      Kind
	Timestamp time.Time

	// Details carries source attributes for reports. Keys are the Detail* constants.
	Details map[string]string
}

// Detail returns the named detail or "" when unset.
func (e Event) Detail(key string) string {
	if e.Details == nil {
		return ""
	}
	return e.Details[key]
}

// Location identifies a single elevator.
type Location struct {
	Zone     string `json:"zone"`
	Elevator string `json:"elevator"`
}

// String renders the location as "zone/elevator".
func (l Location) String() string {
	return l.Zone + "/" + l.Elevator
}

// IsZero reports whether no location was set.
func (l Location) IsZero() bool {
	return l.Zone == "" && l.Elevator == ""
}

// ParseLocation parses the "zone/elevator" form produced by String.
func ParseLocation(s string) (Location, error) {
	zone, elevator, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || zone == "" || elevator == "" {
		return Location{}, fmt.Errorf("location %q must have the form zone/elevator", s)
	}
	return Location{Zone: strings.ToLower(zone), Elevator: elevator}, nil
}

// Period is an inclusive time range.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t lies within the period, bounds included.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}
