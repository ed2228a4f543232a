// Package correlator matches sensor alerts to maintenance work orders and
// classifies every event as a true positive, false positive or false negative.
//
// # Contract
//
// Correlate takes two sequences of types.Event, both sorted ascending by
// Timestamp, and a match window (default one hour):
//  1. For each alert, in order, the earliest unconsumed work order with
//     alert.Timestamp <= order.Timestamp <= alert.Timestamp+window is paired
//     with it (TruePositive). Alerts with no such order are FalsePositive.
//  2. Every work order left unpaired is FalseNegative.
//  3. Each event appears in exactly one Classification. Pairing is one-to-one.
//
// The window is inclusive on both ends, so a work order stamped at the same
// instant as an alert, or exactly one window later, still matches.
//
// # Complexity
//
// One pass over each sequence, O(n + m). Work orders earlier than the current
// alert can never be claimed by a later alert, so they are emitted as
// FalseNegative as the sweep passes them.
//
// # Errors
//
// Correlate never re-sorts its input. Unsorted sequences, zero timestamps,
// events of the wrong Kind, duplicate IDs within a sequence and negative
// windows fail with ErrInvariantViolation. Inputs larger than Options.MaxEvents
// fail with ErrResourceLimitExceeded.
//
// # Concurrency
//
// Correlate is a pure function: it keeps no state and does no I/O, so it is
// safe to call concurrently on independent inputs.
package correlator
