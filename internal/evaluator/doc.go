// Package evaluator runs one detection-quality evaluation end to end.
//
// # Contract
//
//  1. Evaluate reads the sensor and maintenance files, maps their headers,
//     parses every row, normalizes both record sets to a single location and
//     correlates them. Any rejected row fails the run; the error lists every
//     offending row.
//  2. ctx is checked between stages. A cancelled context aborts the run with
//     ctx.Err() wrapped.
//  3. Each run gets a fresh RunID. GeneratedAt is taken when the run starts.
//  4. Counters in Registry accumulate across runs in one process and can be
//     dumped with WriteMetrics.
package evaluator
