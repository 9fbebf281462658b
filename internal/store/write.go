package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/termite/internal/expr"
	"github.com/roach88/termite/internal/partition"
)

// ErrNonDeterministic reports a pattern whose partition summary differs from
// the one already recorded for it.
var ErrNonDeterministic = errors.New("non-deterministic partition")

// Record stores the partition summary of a named pattern.
//
// The row key is the content hash of the canonical pattern, so reordering
// commutative operands does not create a new row. Recording a pattern that
// is already present is a no-op when the summaries agree; the stored entry
// is returned with inserted=false. A disagreeing summary returns an error
// wrapping ErrNonDeterministic and leaves the stored row untouched.
func (s *Store) Record(ctx context.Context, name string, pattern expr.Expression, summary partition.Summary) (Entry, bool, error) {
	canonical := expr.Canonicalize(pattern)
	patternJSON, err := expr.MarshalCanonical(canonical)
	if err != nil {
		return Entry{}, false, fmt.Errorf("record %s: %w", name, err)
	}
	patternHash := expr.HashWithDomain(expr.DomainExpression, patternJSON)

	summaryJSON, summaryHash, err := marshalSummary(summary)
	if err != nil {
		return Entry{}, false, fmt.Errorf("record %s: %w", name, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Entry{}, false, fmt.Errorf("record %s: begin: %w", name, err)
	}
	defer tx.Rollback()

	existing, err := scanEntry(tx.QueryRowContext(ctx, selectEntry+` WHERE pattern_hash = ?`, patternHash))
	switch {
	case err == nil:
		if existing.SummaryHash != summaryHash {
			return Entry{}, false, fmt.Errorf("%w: pattern %s (%s): stored summary %s, got %s",
				ErrNonDeterministic, name, patternHash, existing.SummaryHash, summaryHash)
		}
		slog.Debug("partition already recorded",
			"pattern", name,
			"pattern_hash", patternHash,
			"seq", existing.Seq)
		return existing, false, nil
	case !errors.Is(err, sql.ErrNoRows):
		return Entry{}, false, fmt.Errorf("record %s: %w", name, err)
	}

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM partitions`).Scan(&seq); err != nil {
		return Entry{}, false, fmt.Errorf("record %s: next seq: %w", name, err)
	}

	entry := Entry{
		Seq:         seq,
		PatternHash: patternHash,
		PatternName: name,
		Pattern:     string(patternJSON),
		Owner:       summary.Owner,
		SummaryHash: summaryHash,
		Summary:     summary,
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO partitions
		(pattern_hash, pattern_name, pattern, owner, summary_hash, summary_json, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		entry.PatternHash,
		entry.PatternName,
		entry.Pattern,
		entry.Owner,
		entry.SummaryHash,
		summaryJSON,
		entry.Seq,
	)
	if err != nil {
		return Entry{}, false, fmt.Errorf("record %s: insert: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return Entry{}, false, fmt.Errorf("record %s: commit: %w", name, err)
	}

	slog.Debug("partition recorded",
		"pattern", name,
		"pattern_hash", patternHash,
		"summary_hash", summaryHash,
		"seq", seq)

	return entry, true, nil
}
