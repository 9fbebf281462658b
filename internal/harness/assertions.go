package harness

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/roach88/termite/internal/partition"
)

// AssertionError describes one failed expectation.
type AssertionError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Field, e.Expected, e.Actual)
}

// EvaluateExpectations checks summary against expect and returns every
// failure, in field order. Unset expectations are skipped.
func EvaluateExpectations(summary partition.Summary, expect Expect) []*AssertionError {
	var failures []*AssertionError

	checkList := func(field string, want, got []string) {
		if want != nil && !slices.Equal(want, got) {
			failures = append(failures, &AssertionError{Field: field, Expected: list(want), Actual: list(got)})
		}
	}
	checkInt := func(field string, want *int, got int) {
		if want != nil && *want != got {
			failures = append(failures, &AssertionError{
				Field:    field,
				Expected: fmt.Sprint(*want),
				Actual:   fmt.Sprint(got),
			})
		}
	}
	checkVars := func(field string, want map[string]VariableExpect, got []partition.VariableSummary) {
		if want == nil {
			return
		}

		gotNames := make([]string, len(got))
		for i, v := range got {
			gotNames[i] = v.Name
		}
		wantNames := slices.Sorted(maps.Keys(want))
		if !slices.Equal(wantNames, gotNames) {
			failures = append(failures, &AssertionError{
				Field:    field,
				Expected: list(wantNames),
				Actual:   list(gotNames),
			})
		}

		for _, name := range wantNames {
			v, ok := partition.Variable(got, name)
			if !ok {
				continue
			}
			exp := want[name]
			prefix := field + "." + name
			checkInt(prefix+".min_count", exp.MinCount, v.MinCount)
			checkInt(prefix+".occurrences", exp.Occurrences, v.Occurrences)
			checkInt(prefix+".multiplicity", exp.Multiplicity, v.Multiplicity)
			checkList(prefix+".constraints", exp.Constraints, v.Constraints)
		}
	}

	checkList("constant", expect.Constant, summary.Constant)
	checkList("syntactic", expect.Syntactic, summary.Syntactic)
	checkList("rest", expect.Rest, summary.Rest)
	checkVars("fixed", expect.Fixed, summary.Fixed)
	checkVars("sequence", expect.Sequence, summary.Sequence)
	checkInt("fixed_length", expect.FixedLength, summary.FixedVariableLength)
	checkInt("sequence_min_length", expect.SequenceMinLength, summary.SequenceVariableMinLength)

	return failures
}

func list(ss []string) string {
	return "[" + strings.Join(ss, ", ") + "]"
}
