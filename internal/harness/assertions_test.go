package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/termite/internal/partition"
)

func intp(n int) *int { return &n }

func sampleSummary() partition.Summary {
	return partition.Summary{
		Owner:     "fc",
		Constant:  []string{"a"},
		Syntactic: []string{"f(x_)"},
		Rest:      []string{},
		Fixed: []partition.VariableSummary{
			{Name: "x", Multiplicity: 2, Occurrences: 2, MinCount: 1, Constraints: []string{"c1", "c2"}},
		},
		Sequence:                  []partition.VariableSummary{},
		FixedVariableLength:       1,
		SequenceVariableMinLength: 0,
	}
}

func TestEvaluateExpectations_Pass(t *testing.T) {
	expect := Expect{
		Constant:  []string{"a"},
		Syntactic: []string{"f(x_)"},
		Rest:      []string{},
		Fixed: map[string]VariableExpect{
			"x": {MinCount: intp(1), Occurrences: intp(2), Multiplicity: intp(2), Constraints: []string{"c1", "c2"}},
		},
		Sequence:          map[string]VariableExpect{},
		FixedLength:       intp(1),
		SequenceMinLength: intp(0),
	}

	assert.Empty(t, EvaluateExpectations(sampleSummary(), expect))
}

func TestEvaluateExpectations_EmptyExpectChecksNothing(t *testing.T) {
	assert.Empty(t, EvaluateExpectations(sampleSummary(), Expect{}))
}

func TestEvaluateExpectations_Failures(t *testing.T) {
	tests := []struct {
		name   string
		expect Expect
		field  string
	}{
		{
			name:   "constant",
			expect: Expect{Constant: []string{"b"}},
			field:  "constant",
		},
		{
			name:   "syntactic must be empty",
			expect: Expect{Syntactic: []string{}},
			field:  "syntactic",
		},
		{
			name:   "rest",
			expect: Expect{Rest: []string{"fc2(x_)"}},
			field:  "rest",
		},
		{
			name:   "extra fixed name",
			expect: Expect{Fixed: map[string]VariableExpect{"x": {}, "y": {}}},
			field:  "fixed",
		},
		{
			name:   "missing sequence name",
			expect: Expect{Sequence: map[string]VariableExpect{"y": {}}},
			field:  "sequence",
		},
		{
			name:   "min count",
			expect: Expect{Fixed: map[string]VariableExpect{"x": {MinCount: intp(2)}}},
			field:  "fixed.x.min_count",
		},
		{
			name:   "occurrences",
			expect: Expect{Fixed: map[string]VariableExpect{"x": {Occurrences: intp(1)}}},
			field:  "fixed.x.occurrences",
		},
		{
			name:   "multiplicity",
			expect: Expect{Fixed: map[string]VariableExpect{"x": {Multiplicity: intp(1)}}},
			field:  "fixed.x.multiplicity",
		},
		{
			name:   "constraints",
			expect: Expect{Fixed: map[string]VariableExpect{"x": {Constraints: []string{"c1"}}}},
			field:  "fixed.x.constraints",
		},
		{
			name:   "fixed length",
			expect: Expect{FixedLength: intp(2)},
			field:  "fixed_length",
		},
		{
			name:   "sequence min length",
			expect: Expect{SequenceMinLength: intp(1)},
			field:  "sequence_min_length",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failures := EvaluateExpectations(sampleSummary(), tt.expect)
			require.Len(t, failures, 1)
			assert.Equal(t, tt.field, failures[0].Field)
		})
	}
}

func TestEvaluateExpectations_CollectsAll(t *testing.T) {
	expect := Expect{
		Constant:    []string{},
		FixedLength: intp(0),
		Fixed:       map[string]VariableExpect{"x": {MinCount: intp(3), Occurrences: intp(3)}},
	}

	failures := EvaluateExpectations(sampleSummary(), expect)
	fields := make([]string, len(failures))
	for i, f := range failures {
		fields[i] = f.Field
	}
	assert.Equal(t, []string{"constant", "fixed.x.min_count", "fixed.x.occurrences", "fixed_length"}, fields)
}

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{Field: "constant", Expected: "[a]", Actual: "[]"}
	assert.Equal(t, "constant: expected [a], got []", err.Error())
}
