// Package normalizer turns parsed export records into the two sorted event
// streams the correlator consumes, for a single elevator location.
//
// # Contract
//
// Normalize(alerts, orders):
//  1. Keeps only cleaning alerts (Status contains the configured keyword,
//     case-insensitive).
//  2. Sorts alerts by time and drops repeats: an alert whose Alert ID was last
//     kept less than or equal to RepeatSuppression earlier (and strictly
//     later than it) is dropped.
//  3. Derives each alert's location from "Location Elevator #" and each work
//     order's locations from Address (one event per elevator named) and Zone.
//  4. Selects one location: Options.Location when set, otherwise the only
//     location the alerts mention. Alerts spanning several locations fail
//     with *AmbiguousLocationError. Events elsewhere are dropped.
//  5. When both streams are non-empty, drops events outside the overlap
//     period padded by Window on each side.
//  6. Returns both streams sorted ascending by time (stable), each event
//     carrying its row origin as ID.
package normalizer
