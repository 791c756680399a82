// Package database wraps SurrealDB access for the custom-maps API.
//
// The Database interface exposes three query shapes: Query for lists,
// QueryOne for single records, and Execute for mutations whose results
// the caller does not need.
//
// Multi-statement writes are batch-based. Statements accumulate in a
// TxBuilder or AtomicBatch and are sent in one round trip wrapped in
// BEGIN TRANSACTION / COMMIT TRANSACTION, so the server applies all of
// them or none. There is no isolation between Add calls before the
// batch executes.
//
// Sentinel errors (ErrNotFound, ErrDuplicate, ErrConnection, ErrQuery)
// classify failures; check them with errors.Is.
package database
