package correlator

import (
	"fmt"
	"maps"
	"time"

	"github.com/potooio/cleancheck/internal/types"
)

// DefaultWindow is the maximum gap between an alert and the work order it explains.
const DefaultWindow = time.Hour

// Outcome is the class assigned to an event.
type Outcome string

const (
	TruePositive  Outcome = "TruePositive"
	FalsePositive Outcome = "FalsePositive"
	FalseNegative Outcome = "FalseNegative"
)

// Classification records the outcome for one alert, one work order, or a matched pair.
type Classification struct {
	Outcome Outcome

	// Alert is set for TruePositive and FalsePositive.
	Alert *types.Event

	// WorkOrder is set for TruePositive and FalseNegative.
	WorkOrder *types.Event

	// Gap is WorkOrder.Timestamp - Alert.Timestamp for TruePositive, zero otherwise.
	Gap time.Duration
}

// Result is the outcome of one Correlate call. It is not modified after return
// and holds its own copies of the classified events, so later changes to the
// input slices or their Details maps do not show through.
type Result struct {
	Window          time.Duration
	Classifications []Classification

	TruePositives  int
	FalsePositives int
	FalseNegatives int
}

// Options tunes a Correlate call.
type Options struct {
	// Window overrides DefaultWindow when non-zero. Negative values are rejected.
	// Zero always means DefaultWindow; for exact-instant matching pass
	// time.Nanosecond, which is below the resolution of any parsed timestamp.
	Window time.Duration

	// MaxEvents caps len(alerts)+len(workOrders). Zero disables the cap.
	MaxEvents int
}

func (o Options) window() time.Duration {
	if o.Window == 0 {
		return DefaultWindow
	}
	return o.Window
}

// Correlate classifies every alert as TruePositive or FalsePositive and every
// work order as TruePositive or FalseNegative. Both inputs must be sorted
// ascending by Timestamp; see the package documentation for the matching rule.
func Correlate(alerts, workOrders []types.Event, opts Options) (*Result, error) {
	if opts.Window < 0 {
		return nil, &InvariantError{Sequence: "options", Index: -1, Reason: fmt.Sprintf("negative window %s", opts.Window)}
	}
	if opts.MaxEvents > 0 && len(alerts)+len(workOrders) > opts.MaxEvents {
		return nil, &LimitError{Limit: opts.MaxEvents, Actual: len(alerts) + len(workOrders)}
	}
	if err := validateSequence("alerts", alerts, types.KindSensorAlert); err != nil {
		return nil, err
	}
	if err := validateSequence("workOrders", workOrders, types.KindWorkOrder); err != nil {
		return nil, err
	}

	window := opts.window()
	result := &Result{
		Window:          window,
		Classifications: make([]Classification, 0, len(alerts)+len(workOrders)),
	}

	// Every order before j is either consumed or already emitted as FalseNegative.
	j := 0
	for i := range alerts {
		alert := &alerts[i]

		for j < len(workOrders) && workOrders[j].Timestamp.Before(alert.Timestamp) {
			result.addMiss(&workOrders[j])
			j++
		}

		if j < len(workOrders) && !workOrders[j].Timestamp.After(alert.Timestamp.Add(window)) {
			result.addMatch(alert, &workOrders[j])
			j++
			continue
		}
		result.addFalseAlarm(alert)
	}
	for ; j < len(workOrders); j++ {
		result.addMiss(&workOrders[j])
	}

	return result, nil
}

func (r *Result) addMatch(alert, order *types.Event) {
	r.Classifications = append(r.Classifications, Classification{
		Outcome:   TruePositive,
		Alert:     cloneEvent(alert),
		WorkOrder: cloneEvent(order),
		Gap:       order.Timestamp.Sub(alert.Timestamp),
	})
	r.TruePositives++
}

func (r *Result) addFalseAlarm(alert *types.Event) {
	r.Classifications = append(r.Classifications, Classification{Outcome: FalsePositive, Alert: cloneEvent(alert)})
	r.FalsePositives++
}

func (r *Result) addMiss(order *types.Event) {
	r.Classifications = append(r.Classifications, Classification{Outcome: FalseNegative, WorkOrder: cloneEvent(order)})
	r.FalseNegatives++
}

func cloneEvent(e *types.Event) *types.Event {
	c := *e
	c.Details = maps.Clone(e.Details)
	return &c
}

// validateSequence checks kind, ordering, timestamps and ID uniqueness.
func validateSequence(name string, events []types.Event, kind types.Kind) error {
	seen := make(map[string]int, len(events))
	for i := range events {
		e := &events[i]
		if e.Kind != kind {
			return &InvariantError{Sequence: name, Index: i, Reason: fmt.Sprintf("kind %q, want %q", e.Kind, kind)}
		}
		if e.Timestamp.IsZero() {
			return &InvariantError{Sequence: name, Index: i, Reason: "zero timestamp"}
		}
		if i > 0 && e.Timestamp.Before(events[i-1].Timestamp) {
			return &InvariantError{Sequence: name, Index: i, Reason: fmt.Sprintf(
				"timestamp %s precedes previous %s", e.Timestamp.Format(time.RFC3339), events[i-1].Timestamp.Format(time.RFC3339))}
		}
		if e.ID != "" {
			if prev, dup := seen[e.ID]; dup {
				return &InvariantError{Sequence: name, Index: i, Reason: fmt.Sprintf("duplicate id %q (first at %d)", e.ID, prev)}
			}
			seen[e.ID] = i
		}
	}
	return nil
}

// ByOutcome returns the classifications with the given outcome, in result order.
func (r *Result) ByOutcome(outcome Outcome) []Classification {
	var out []Classification
	for _, c := range r.Classifications {
		if c.Outcome == outcome {
			out = append(out, c)
		}
	}
	return out
}

// Total returns the number of classification records.
func (r *Result) Total() int {
	return r.TruePositives + r.FalsePositives + r.FalseNegatives
}
