package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decodeData re-decodes the data field of a JSON response into v.
func decodeData(t *testing.T, out string, v any) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
	return resp
}

func TestCompileValidSpecs(t *testing.T) {
	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}), specsDir)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Compiled 3 operation(s), 2 constraint(s), 3 pattern(s)")
	assert.Contains(t, out, "add: arity")
	assert.Contains(t, out, "commutative, associative")
	assert.Contains(t, out, "distribute: add(mul(x_, y_), mul(x_, z_))")
	assert.Contains(t, out, "linear: add(__, c_:nonzero, mul(k, x_:nonzero))")
	assert.Contains(t, out, "power_sum: add(a, ys___, pow(x_, two))")
}

func TestCompileValidSpecsJSON(t *testing.T) {
	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "json"}), specsDir)
	require.NoError(t, err)

	var result CompilationResult
	resp := decodeData(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Len(t, result.Operations, 3)
	assert.Len(t, result.Constraints, 2)
	require.Len(t, result.Patterns, 3)
	assert.Equal(t, "distribute", result.Patterns[0].Name)
	assert.Len(t, result.Patterns[0].Hash, 64)
}

func TestCompileHashesAreStable(t *testing.T) {
	hashes := func() []string {
		out, err := execute(t, NewCompileCommand(&RootOptions{Format: "json"}), specsDir)
		require.NoError(t, err)
		var result CompilationResult
		decodeData(t, out, &result)
		var hs []string
		for _, p := range result.Patterns {
			hs = append(hs, p.Hash)
		}
		return hs
	}

	assert.Equal(t, hashes(), hashes())
}

func TestCompileOutputFile(t *testing.T) {
	outFile := filepath.Join(t.TempDir(), "compiled.json")

	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}), specsDir, "-o", outFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote compiled patterns to "+outFile)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	var result CompilationResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Len(t, result.Patterns, 3)
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name     string
		dir      func(t *testing.T) string
		wantCode string
	}{
		{
			name:     "missing directory",
			dir:      func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing") },
			wantCode: ErrCodeNotFound,
		},
		{
			name:     "unknown operation",
			dir:      func(t *testing.T) string { return invalidDir },
			wantCode: "E201",
		},
		{
			name: "unknown constraint",
			dir: func(t *testing.T) string {
				return writeSpecs(t, `operation: fc: {commutative: true}
pattern: p: {op: "fc", operands: [{var: "x", constraint: "nope"}]}`)
			},
			wantCode: "E202",
		},
		{
			name: "arity",
			dir: func(t *testing.T) string {
				return writeSpecs(t, `operation: fc: {commutative: true}
operation: g: {arity: "binary"}
pattern: p: {op: "fc", operands: [{op: "g", operands: [{var: "x"}]}]}`)
			},
			wantCode: "E205",
		},
		{
			name: "invalid cel",
			dir: func(t *testing.T) string {
				return writeSpecs(t, `operation: fc: {commutative: true}
constraint: bad: {expr: "x +", vars: ["x"]}`)
			},
			wantCode: "E207",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, NewCompileCommand(&RootOptions{Format: "json"}), tt.dir(t))
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))

			var resp CLIResponse
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code, resp.Error.Message)
		})
	}
}

func TestCompileErrorText(t *testing.T) {
	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Contains(t, out, "Error [E005]")
}
