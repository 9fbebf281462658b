package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden(t *testing.T) {
	for _, name := range []string{"every_category", "merged_constraints", "anonymous"} {
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
			require.NoError(t, err)
			require.NoError(t, RunWithGolden(t, scenario))
		})
	}
}

func TestAssertGolden_Error(t *testing.T) {
	scenario := loadTestScenario(t, "width_mismatch")
	result, err := Run(scenario)
	require.NoError(t, err)
	require.NoError(t, AssertGolden(t, scenario.Name, result))
}

func TestRunWithGolden_FailingScenario(t *testing.T) {
	scenario := &Scenario{
		Name:    "failing",
		Specs:   specsDir,
		Pattern: "symbols",
		Expect:  Expect{Constant: []string{}},
	}

	err := RunWithGolden(t, scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenario failed")
}

func TestSnapshot_Path(t *testing.T) {
	result, err := Run(loadTestScenario(t, "nested"))
	require.NoError(t, err)

	data, err := Snapshot("nested", result)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"path":[0]`)
	assert.Contains(t, string(data), `"owner":"fac"`)
}
