// Package store provides SQLite-backed durable storage for shell history.
//
// A Store owns one handle to a history database file. On open it creates
// the file if needed and makes sure every table in its Registry exists.
// Statements run through a bounded retry loop:
//
//   - Busy/locked: another shell holds the file. Sleep a fixed plus random
//     backoff and retry, up to DB_MAX_RETRIES times. Exhaustion is an
//     ErrCodeRetriesExhausted error.
//   - Constraint violation: not retried. The statement stops, rows already
//     read are kept, and the violation is logged at debug.
//   - Anything else: ErrCodeUnexpected, carrying the statement text.
//
// Callers treat every *Error as fatal; a history logger that silently drops
// writes is worse than one that fails loudly.
//
// # Database Configuration
//
//   - Rollback journal (SQLite default): the file is the only artifact.
//   - busy_timeout=0: contention reaches the retry policy immediately.
//   - One pooled connection: last_insert_rowid belongs to this handle.
//
// Values embedded in generated statements must be passed through Quote.
package store
