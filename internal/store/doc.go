// Package store provides durable storage for run reports.
//
// Two backends share one API: SQLite (Open) for a local history file and
// MySQL (OpenMySQL) for a history shared between machines.
//
// # Layout
//
//   - runs: one row per run with its summary counts, the canonical JSON
//     document and its digest
//   - results: one row per selected case, including NOT_RUN rows for cases
//     an aborted run never reached
//
// # Ordering
//
// Runs are ordered by seq, a logical clock assigned as MAX(seq)+1 inside
// the insert transaction. Timestamps are recorded but never used for
// ordering, so history is stable under clock skew between machines.
//
// # Integrity
//
// Document re-computes the digest of the stored canonical report and
// refuses to return a document that no longer matches.
//
// # Database Configuration (SQLite)
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait up to 5s for locks
//   - foreign_keys=ON: Enforce referential integrity
package store
