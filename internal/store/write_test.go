package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/termite/internal/expr"
	"github.com/roach88/termite/internal/testutil"
)

func TestRecord_Insert(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	pattern := testutil.FC.MustNew(testutil.A, testutil.X_, testutil.F.MustNew(testutil.Y_))
	summary := summaryOf(t, pattern)

	entry, inserted, err := s.Record(ctx, "p1", pattern, summary)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, int64(1), entry.Seq)
	assert.Equal(t, "p1", entry.PatternName)
	assert.Equal(t, "fc", entry.Owner)
	assert.Equal(t, expr.MustHash(pattern), entry.PatternHash)
	assert.Len(t, entry.SummaryHash, 64)
}

func TestRecord_SameSummaryIsNoop(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	pattern := testutil.FC.MustNew(testutil.A, testutil.X_)
	first, _, err := s.Record(ctx, "p1", pattern, summaryOf(t, pattern))
	require.NoError(t, err)

	reordered := testutil.FC.MustNew(testutil.X_, testutil.A)
	again, inserted, err := s.Record(ctx, "p1-again", reordered, summaryOf(t, reordered))
	require.NoError(t, err)
	assert.False(t, inserted, "commutative reordering hashes to the same row")
	assert.Equal(t, first.Seq, again.Seq)
	assert.Equal(t, "p1", again.PatternName)

	entries, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRecord_DifferentSummaryFails(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	pattern := testutil.FC.MustNew(testutil.A, testutil.X_)
	_, _, err := s.Record(ctx, "p1", pattern, summaryOf(t, pattern))
	require.NoError(t, err)

	tampered := summaryOf(t, pattern)
	tampered.FixedVariableLength = 7

	_, inserted, err := s.Record(ctx, "p1", pattern, tampered)
	require.Error(t, err)
	assert.False(t, inserted)
	assert.ErrorIs(t, err, ErrNonDeterministic)

	stored, ok, err := s.Lookup(ctx, expr.MustHash(pattern))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, stored.Summary.FixedVariableLength, "stored row is untouched")
}

func TestRecord_SeqIncrements(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	patterns := []expr.Operation{
		testutil.FC.MustNew(testutil.A),
		testutil.FC.MustNew(testutil.B),
		testutil.FC.MustNew(testutil.C),
	}
	for i, p := range patterns {
		entry, inserted, err := s.Record(ctx, "p", p, summaryOf(t, p))
		require.NoError(t, err)
		assert.True(t, inserted)
		assert.Equal(t, int64(i+1), entry.Seq)
	}
}

func TestRecord_InvalidPattern(t *testing.T) {
	s := createTestStore(t)

	_, _, err := s.Record(context.Background(), "bad", nil, summaryOf(t, testutil.FC.MustNew()))
	assert.Error(t, err)
}
