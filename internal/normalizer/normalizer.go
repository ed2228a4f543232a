package normalizer

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/potooio/cleancheck/internal/ingest"
	"github.com/potooio/cleancheck/internal/types"
)

const (
	// DefaultRepeatSuppression drops sensor re-triggers of the same alert.
	DefaultRepeatSuppression = 6 * time.Minute

	// DefaultStatusKeyword selects cleaning alerts by status.
	DefaultStatusKeyword = "clean"
)

var (
	// ErrNoAlerts means no cleaning alert survived filtering and no location was given.
	ErrNoAlerts = errors.New("no cleaning sensor alerts found")

	// ErrNoElevator is wrapped by LocationError for sensor rows without an elevator number.
	ErrNoElevator = errors.New("no elevator number found in location")
)

// LocationError points at a sensor row whose location could not be read.
type LocationError struct {
	Origin string
	Value  string
}

func (e *LocationError) Error() string {
	return fmt.Sprintf("%s: %v: %q", e.Origin, ErrNoElevator, e.Value)
}

func (e *LocationError) Unwrap() error { return ErrNoElevator }

// AmbiguousLocationError means the alerts cover several elevators and none was selected.
type AmbiguousLocationError struct {
	Locations []types.Location
}

func (e *AmbiguousLocationError) Error() string {
	names := make([]string, len(e.Locations))
	for i, l := range e.Locations {
		names[i] = l.String()
	}
	return fmt.Sprintf("sensor alerts cover %d locations (%s); select one", len(names), strings.Join(names, ", "))
}

// Options configures a Normalizer. Zero values fall back to defaults.
type Options struct {
	// Window pads the overlap period on both sides. Zero disables trimming.
	Window time.Duration

	// RepeatSuppression is the re-trigger interval for identical alert IDs.
	RepeatSuppression time.Duration

	// StatusKeyword selects cleaning alerts.
	StatusKeyword string

	// Location restricts the run to one elevator. Empty means "the only one in the alerts".
	Location types.Location
}

// Dropped counts records removed at each filtering step.
type Dropped struct {
	NonCleaning   int `json:"nonCleaning"`
	Repeats       int `json:"repeats"`
	NoElevator    int `json:"noElevator"`
	OtherLocation int `json:"otherLocation"`
	OutsidePeriod int `json:"outsidePeriod"`
}

// Streams is the normalizer output: one location, two sorted sequences.
type Streams struct {
	Location   types.Location
	Alerts     []types.Event
	WorkOrders []types.Event

	// Period is the padded overlap period, zero when no trimming was applied.
	Period  types.Period
	Dropped Dropped
}

// Normalizer converts parsed records into correlator input.
type Normalizer struct {
	logger *zap.Logger
	opts   Options
}

// New creates a Normalizer.
func New(opts Options, logger *zap.Logger) *Normalizer {
	if opts.RepeatSuppression == 0 {
		opts.RepeatSuppression = DefaultRepeatSuppression
	}
	if opts.StatusKeyword == "" {
		opts.StatusKeyword = DefaultStatusKeyword
	}
	return &Normalizer{
		logger: logger.Named("normalizer"),
		opts:   opts,
	}
}

type locatedAlert struct {
	ingest.AlertRecord
	location types.Location
}

type locatedOrder struct {
	ingest.WorkOrderRecord
	location types.Location
}

// Normalize filters, locates and sorts both record sets.
func (n *Normalizer) Normalize(alertRecords []ingest.AlertRecord, orderRecords []ingest.WorkOrderRecord) (*Streams, error) {
	streams := &Streams{}

	alerts, err := n.cleaningAlerts(alertRecords, &streams.Dropped)
	if err != nil {
		return nil, err
	}

	location, err := n.selectLocation(alerts)
	if err != nil {
		return nil, err
	}
	streams.Location = location

	var kept []locatedAlert
	for _, a := range alerts {
		if a.location != location {
			streams.Dropped.OtherLocation++
			continue
		}
		kept = append(kept, a)
	}

	orders := n.locatedOrders(orderRecords, location, &streams.Dropped)

	if len(kept) > 0 && len(orders) > 0 && n.opts.Window > 0 {
		streams.Period = overlapPeriod(kept, orders, n.opts.Window)
		kept, orders = trimToPeriod(kept, orders, streams.Period, &streams.Dropped)
	}

	streams.Alerts = make([]types.Event, 0, len(kept))
	for _, a := range kept {
		streams.Alerts = append(streams.Alerts, alertEvent(a))
	}
	streams.WorkOrders = make([]types.Event, 0, len(orders))
	for _, o := range orders {
		streams.WorkOrders = append(streams.WorkOrders, orderEvent(o))
	}

	n.logStream("Cleaning sensor alerts ready", location, streams.Alerts)
	n.logStream("Maintenance cleaning records ready", location, streams.WorkOrders)
	if !streams.Period.Start.IsZero() {
		n.logger.Info("Overlapping time period",
			zap.Time("from", streams.Period.Start),
			zap.Time("to", streams.Period.End))
	}
	n.logger.Debug("Records dropped during normalization",
		zap.Int("non_cleaning", streams.Dropped.NonCleaning),
		zap.Int("repeats", streams.Dropped.Repeats),
		zap.Int("other_location", streams.Dropped.OtherLocation),
		zap.Int("no_elevator", streams.Dropped.NoElevator),
		zap.Int("outside_period", streams.Dropped.OutsidePeriod))

	return streams, nil
}

// cleaningAlerts filters by status, sorts, suppresses repeats and resolves locations.
func (n *Normalizer) cleaningAlerts(records []ingest.AlertRecord, dropped *Dropped) ([]locatedAlert, error) {
	keyword := strings.ToLower(n.opts.StatusKeyword)

	var (
		out  []locatedAlert
		errs []error
	)
	for _, r := range records {
		if !strings.Contains(strings.ToLower(r.Status), keyword) {
			dropped.NonCleaning++
			continue
		}
		loc, ok := AlertLocation(r.Location)
		if !ok {
			errs = append(errs, &LocationError{Origin: r.Origin, Value: r.Location})
			continue
		}
		out = append(out, locatedAlert{AlertRecord: r, location: loc})
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})

	lastKept := make(map[string]time.Time)
	deduped := out[:0]
	for _, a := range out {
		if prev, ok := lastKept[a.AlertID]; ok {
			gap := a.Timestamp.Sub(prev)
			if gap > 0 && gap <= n.opts.RepeatSuppression {
				dropped.Repeats++
				continue
			}
		}
		lastKept[a.AlertID] = a.Timestamp
		deduped = append(deduped, a)
	}
	return deduped, nil
}

func (n *Normalizer) selectLocation(alerts []locatedAlert) (types.Location, error) {
	if !n.opts.Location.IsZero() {
		return n.opts.Location, nil
	}
	if len(alerts) == 0 {
		return types.Location{}, ErrNoAlerts
	}

	seen := map[types.Location]struct{}{}
	var found []types.Location
	for _, a := range alerts {
		if _, ok := seen[a.location]; !ok {
			seen[a.location] = struct{}{}
			found = append(found, a.location)
		}
	}
	if len(found) > 1 {
		sort.Slice(found, func(i, j int) bool { return found[i].String() < found[j].String() })
		return types.Location{}, &AmbiguousLocationError{Locations: found}
	}
	return found[0], nil
}

// locatedOrders explodes multi-elevator work orders and keeps the selected location.
func (n *Normalizer) locatedOrders(records []ingest.WorkOrderRecord, location types.Location, dropped *Dropped) []locatedOrder {
	var out []locatedOrder
	for _, r := range records {
		locs := WorkOrderLocations(r.Address, r.Zone)
		if len(locs) == 0 {
			dropped.NoElevator++
			continue
		}
		matched := false
		for _, l := range locs {
			if l == location {
				out = append(out, locatedOrder{WorkOrderRecord: r, location: l})
				matched = true
			}
		}
		if !matched {
			dropped.OtherLocation++
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Created.Before(out[j].Created)
	})
	return out
}

// overlapPeriod spans the time both exports cover, padded by window.
// Both slices must be non-empty and sorted.
func overlapPeriod(alerts []locatedAlert, orders []locatedOrder, window time.Duration) types.Period {
	start := alerts[0].Timestamp
	if orders[0].Created.After(start) {
		start = orders[0].Created
	}
	end := alerts[len(alerts)-1].Timestamp
	if last := orders[len(orders)-1].Created; last.Before(end) {
		end = last
	}
	return types.Period{Start: start.Add(-window), End: end.Add(window)}
}

func trimToPeriod(alerts []locatedAlert, orders []locatedOrder, p types.Period, dropped *Dropped) ([]locatedAlert, []locatedOrder) {
	keptAlerts := alerts[:0]
	for _, a := range alerts {
		if !p.Contains(a.Timestamp) {
			dropped.OutsidePeriod++
			continue
		}
		keptAlerts = append(keptAlerts, a)
	}
	keptOrders := orders[:0]
	for _, o := range orders {
		if !p.Contains(o.Created) {
			dropped.OutsidePeriod++
			continue
		}
		keptOrders = append(keptOrders, o)
	}
	return keptAlerts, keptOrders
}

func alertEvent(a locatedAlert) types.Event {
	return types.Event{
		ID:        a.Origin,
		Kind:      types.KindSensorAlert,
		Timestamp: a.Timestamp,
		Details: map[string]string{
			types.DetailAlertID:  a.AlertID,
			types.DetailStatus:   a.Status,
			types.DetailLocation: a.Location,
			types.DetailZone:     a.location.Zone,
			types.DetailElevator: a.location.Elevator,
		},
	}
}

func orderEvent(o locatedOrder) types.Event {
	return types.Event{
		ID:        o.Origin,
		Kind:      types.KindWorkOrder,
		Timestamp: o.Created,
		Details: map[string]string{
			types.DetailOrderNo:  o.Number,
			types.DetailTitle:    o.Title,
			types.DetailLocation: o.Address,
			types.DetailZone:     o.location.Zone,
			types.DetailElevator: o.location.Elevator,
		},
	}
}

func (n *Normalizer) logStream(msg string, location types.Location, events []types.Event) {
	fields := []zap.Field{
		zap.Stringer("location", location),
		zap.Int("count", len(events)),
	}
	if len(events) > 0 {
		fields = append(fields,
			zap.Time("from", events[0].Timestamp),
			zap.Time("to", events[len(events)-1].Timestamp))
	}
	n.logger.Info(msg, fields...)
}
