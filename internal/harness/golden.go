package harness

import (
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/termite/internal/expr"
)

// Snapshot returns the canonical JSON snapshot of a result: the scenario
// name, the partitioned pattern, and either the summary or the error code.
func Snapshot(name string, result *Result) ([]byte, error) {
	doc := map[string]any{
		"scenario_name": name,
		"pattern":       result.Pattern,
	}
	if len(result.Path) > 0 {
		path := make([]any, len(result.Path))
		for i, idx := range result.Path {
			path[i] = idx
		}
		doc["path"] = path
	}
	switch {
	case result.ErrorCode != "":
		doc["error"] = result.ErrorCode
	case result.Summary != nil:
		doc["summary"] = result.Summary.CanonicalValue()
	}
	return expr.MarshalValue(doc)
}

// AssertGolden compares the result snapshot against testdata/golden/<name>.golden.
//
// Use `go test -update` to regenerate golden files.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	actual, err := Snapshot(name, result)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, actual)
	return nil
}

// RunWithGolden runs a scenario, requires it to pass, and compares its
// snapshot against the golden file named after the scenario.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return fmt.Errorf("scenario execution failed: %w", err)
	}
	if !result.Pass {
		return fmt.Errorf("scenario failed: %v", result.Errors)
	}
	return AssertGolden(t, scenario.Name, result)
}
