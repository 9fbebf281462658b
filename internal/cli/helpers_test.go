package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

var (
	specsDir     = filepath.Join("..", "..", "testdata", "specs")
	invalidDir   = filepath.Join("..", "..", "testdata", "invalid")
	scenariosDir = filepath.Join("..", "..", "testdata", "scenarios")
)

// execute runs cmd with args and returns what it wrote to stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// writeSpecs writes content as the only CUE file of a fresh directory,
// under package specs.
func writeSpecs(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	data := []byte("package specs\n\n" + content + "\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "specs.cue"), data, 0644))
	return dir
}
