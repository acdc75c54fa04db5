// Package store provides SQLite-backed durable storage for conformance runs.
//
// The store is an append-only log with:
//   - Runs: one record per executed scenario (expression, pass/fail)
//   - Samples: the exact scalar outputs of a run, in case order
//
// # Ordering
//
// Runs are ordered by seq INTEGER (logical clock), never by timestamps.
// Run IDs are UUIDv7 strings. All list queries use
// ORDER BY seq ASC, id ASC COLLATE BINARY so results are identical across
// reads.
//
// # Exact Values
//
// Sample values are stored as float64 bit patterns rather than REAL columns.
// SQLite stores NaN as NULL, and replay compares outputs bit for bit.
//
// # Opening
//
// Open creates the run log on first use and migrates older run logs by
// user_version, one transaction per migration. "unitconv replay" opens with
// MustExist so that a mistyped path is reported instead of replaying an
// empty log.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
