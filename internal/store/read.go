package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/termite/internal/partition"
)

// Entry is one recorded partition.
type Entry struct {
	Seq         int64             `json:"seq"`
	PatternHash string            `json:"pattern_hash"`
	PatternName string            `json:"pattern_name"`
	Pattern     string            `json:"pattern"`
	Owner       string            `json:"owner"`
	SummaryHash string            `json:"summary_hash"`
	Summary     partition.Summary `json:"summary"`
}

const selectEntry = `
	SELECT seq, pattern_hash, pattern_name, pattern, owner, summary_hash, summary_json
	FROM partitions`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var e Entry
	var summaryJSON string
	if err := row.Scan(&e.Seq, &e.PatternHash, &e.PatternName, &e.Pattern, &e.Owner, &e.SummaryHash, &summaryJSON); err != nil {
		return Entry{}, err
	}
	summary, err := unmarshalSummary(summaryJSON)
	if err != nil {
		return Entry{}, err
	}
	e.Summary = summary
	return e, nil
}

// Lookup returns the entry for a pattern hash. ok is false if none exists.
func (s *Store) Lookup(ctx context.Context, patternHash string) (Entry, bool, error) {
	e, err := scanEntry(s.db.QueryRowContext(ctx, selectEntry+` WHERE pattern_hash = ?`, patternHash))
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("lookup %s: %w", patternHash, err)
	}
	return e, true, nil
}

// ByName returns every entry recorded under a pattern name, in seq order.
// Different spec directories may reuse one name for different patterns.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) ByName(ctx context.Context, name string) ([]Entry, error) {
	return s.query(ctx, selectEntry+`
		WHERE pattern_name = ?
		ORDER BY seq ASC, pattern_hash COLLATE BINARY ASC
	`, name)
}

// List returns all entries in seq order.
//
// Returns an empty slice (not nil) if the store is empty.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	return s.query(ctx, selectEntry+`
		ORDER BY seq ASC, pattern_hash COLLATE BINARY ASC
	`)
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query partitions: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan partition: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate partitions: %w", err)
	}
	return entries, nil
}
