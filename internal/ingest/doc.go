// Package ingest reads sensor and maintenance exports and turns their rows
// into typed records.
//
// # Contract
//
//  1. ReadFile loads a .csv file as one Table or a .xlsx workbook as one
//     Table per sheet, in workbook order. XLSX cells are read raw, so date
//     cells arrive as Excel serial numbers and are converted during parsing.
//  2. FindTable picks the first Table whose header row contains every column
//     of a Schema and returns the header-to-index mapping.
//  3. ParseAlerts and ParseWorkOrders convert rows into AlertRecord and
//     WorkOrderRecord values. Rows whose cells are all empty are skipped.
//     Every malformed row is reported as a *RowError carrying the file, sheet,
//     row number, column and offending value; all row errors are returned
//     together via errors.Join.
//
// Nothing in this package sorts, filters or deduplicates; that is the
// normalizer's job.
package ingest
