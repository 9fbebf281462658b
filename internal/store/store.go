package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"net/url"

	_ "github.com/mattn/go-sqlite3"
)

// schemaSQL is the version 1 layout of the partitions table.
//
//go:embed schema.sql
var schemaSQL string

// schemaVersion is the partitions layout this build reads and writes,
// kept in PRAGMA user_version.
const schemaVersion = 2

// ErrSchemaTooNew is returned by Open for a cache written by a newer layout.
var ErrSchemaTooNew = errors.New("partition cache schema is newer than supported")

// migration raises the partitions layout to version.
type migration struct {
	version int
	name    string
	stmts   []string
}

// migrations run in order against caches below schemaVersion. Version 1 is
// schema.sql.
var migrations = []migration{
	{
		version: 2,
		name:    "index partitions by pattern name",
		stmts: []string{
			`CREATE INDEX IF NOT EXISTS idx_partitions_name ON partitions(pattern_name, seq)`,
		},
	},
}

// connParams are go-sqlite3 DSN parameters applied to every connection.
var connParams = url.Values{
	"_journal_mode": {"WAL"},
	"_synchronous":  {"NORMAL"},
	"_busy_timeout": {"5000"},
}

// Store caches partition summaries keyed by pattern hash.
type Store struct {
	db *sql.DB
}

// Open opens the partition cache at path, creating it when missing, and
// brings its layout up to schemaVersion. A cache with a newer layout is
// refused with ErrSchemaTooNew.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?"+connParams.Encode())
	if err != nil {
		return nil, fmt.Errorf("open partition cache %s: %w", path, err)
	}
	// One writer at a time; a single connection also keeps Record's
	// read-then-insert serialized.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("open partition cache %s: %w", path, err)
	}

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("open partition cache %s: %w", path, err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// migrate creates the version 1 table on a fresh cache, then applies each
// pending migration in its own transaction.
func migrate(ctx context.Context, db *sql.DB) error {
	version, err := userVersion(ctx, db)
	if err != nil {
		return err
	}
	if version > schemaVersion {
		return fmt.Errorf("%w: version %d, want at most %d", ErrSchemaTooNew, version, schemaVersion)
	}

	if version == 0 {
		if err := step(ctx, db, 1, []string{schemaSQL}); err != nil {
			return fmt.Errorf("create partitions table: %w", err)
		}
		version = 1
	}

	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		if err := step(ctx, db, m.version, m.stmts); err != nil {
			return fmt.Errorf("migrate to v%d (%s): %w", m.version, m.name, err)
		}
		version = m.version
	}
	return nil
}

// step runs stmts and records version atomically.
func step(ctx context.Context, db *sql.DB, version int, stmts []string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	// PRAGMA takes no bound parameters; version is a package constant.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return err
	}
	return tx.Commit()
}

func userVersion(ctx context.Context, db *sql.DB) (int, error) {
	var v int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("read user_version: %w", err)
	}
	return v, nil
}
