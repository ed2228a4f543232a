package normalizer

import (
	"regexp"
	"strings"

	"github.com/potooio/cleancheck/internal/types"
	"github.com/potooio/cleancheck/internal/util"
)

var (
	// Sensor locations name one elevator with three or more digits.
	sensorElevatorPattern = regexp.MustCompile(`\d{3,}`)
	// Work order addresses may list several three-digit elevators.
	addressElevatorPattern = regexp.MustCompile(`\d{3}`)
	zoneStripPattern       = regexp.MustCompile(`[\W\d]`)
)

// zoneAliases maps spelled-out zone names to the short codes used by maintenance.
var zoneAliases = map[string]string{
	"downtowncrossing": "dtx",
}

// CleanZone keeps letters only, lowercases and applies zone aliases.
func CleanZone(raw string) string {
	zone := strings.ToLower(zoneStripPattern.ReplaceAllString(raw, ""))
	if alias, ok := zoneAliases[zone]; ok {
		return alias
	}
	return zone
}

// AlertLocation derives the location of a sensor alert from its
// "Location Elevator #" cell. ok is false when no elevator number is present.
func AlertLocation(raw string) (types.Location, bool) {
	elevator := sensorElevatorPattern.FindString(raw)
	if elevator == "" {
		return types.Location{}, false
	}
	return types.Location{Zone: CleanZone(raw), Elevator: elevator}, true
}

// WorkOrderLocations returns one location per distinct elevator named in the
// address, in order of appearance. Addresses naming no elevator yield nil.
func WorkOrderLocations(address, zone string) []types.Location {
	elevators := util.UniqueStrings(addressElevatorPattern.FindAllString(address, -1))
	if len(elevators) == 0 {
		return nil
	}
	cleaned := CleanZone(zone)
	out := make([]types.Location, 0, len(elevators))
	for _, e := range elevators {
		out = append(out, types.Location{Zone: cleaned, Elevator: e})
	}
	return out
}
