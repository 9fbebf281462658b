package compiler

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDir(t *testing.T) {
	v, files, err := LoadDir("testdata/specs/basic")
	require.NoError(t, err)
	assert.Equal(t, 2, files)

	defs, err := Compile(v)
	require.NoError(t, err)
	assert.Len(t, defs.Operations, 3)
	assert.Len(t, defs.Patterns, 1)
	assert.Empty(t, Validate(defs))
}

func TestLoadDir_Errors(t *testing.T) {
	_, _, err := LoadDir(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, ErrSpecsNotFound)

	_, _, err = LoadDir(t.TempDir())
	assert.ErrorIs(t, err, ErrNoCUEFiles)

	_, _, err = LoadDir("testdata/specs/basic/ops.cue")
	assert.ErrorIs(t, err, ErrSpecsNotFound)
	assert.ErrorContains(t, err, "not a directory")
}

func TestCompileDir(t *testing.T) {
	defs, err := CompileDir("testdata/specs/basic")
	require.NoError(t, err)
	assert.Equal(t, "mixed", defs.Patterns[0].Name)
}
