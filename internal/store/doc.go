// Package store archives finished runs to SQLite.
//
// Each run is written once, after the simulation has completed: a header row
// carrying the run's spans and counters, plus per-shelf and per-order detail
// rows. Writes are idempotent on run ID, so archiving the same run twice is
// harmless.
//
// The database is opened in WAL mode with a single writer connection, which
// is all this workload needs.
package store
