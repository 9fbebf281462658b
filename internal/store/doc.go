// Package store provides a SQLite cache of partition summaries.
//
// Each row maps the content hash of a canonical pattern to the canonical
// JSON summary of its partition. Partitioning is deterministic, so the
// cache doubles as a regression check: recording a pattern whose summary
// differs from the stored one fails with ErrNonDeterministic.
//
// # Ordering
//
//   - Rows carry a logical seq assigned at insert time, never a timestamp
//   - List returns ORDER BY seq ASC, pattern_hash ASC COLLATE BINARY
//
// # Connections and layout
//
// Every connection is opened with WAL journaling, synchronous=NORMAL and a
// five second busy timeout, set through go-sqlite3 DSN parameters. The
// table layout is versioned in PRAGMA user_version: schema.sql is version 1
// and later versions are migrations applied by Open, each in its own
// transaction. Open refuses a cache written by a newer layout.
//
// Summaries are stored as RFC 8785 canonical JSON produced by
// partition.Summary.Canonical.
package store
