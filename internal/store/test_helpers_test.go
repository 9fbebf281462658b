package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/termite/internal/expr"
	"github.com/roach88/termite/internal/partition"
)

// createTestStore creates a new file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// summaryOf partitions a commutative operation pattern.
func summaryOf(t *testing.T, op expr.Operation) partition.Summary {
	t.Helper()
	p, err := partition.FromOperation(op)
	require.NoError(t, err)
	return p.Summary()
}

// pragma reads one PRAGMA value as text.
func pragma(t *testing.T, db *sql.DB, name string) string {
	t.Helper()
	var value string
	require.NoError(t, db.QueryRow(fmt.Sprintf("PRAGMA %s", name)).Scan(&value))
	return value
}

func hasSchemaObject(t *testing.T, db *sql.DB, kind, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = ? AND name = ?`, kind, name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

// hasFile reports whether dir holds a file whose name starts with prefix.
func hasFile(dir, prefix string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), prefix) {
			return true
		}
	}
	return false
}
