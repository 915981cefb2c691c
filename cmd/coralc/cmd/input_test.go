package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadInputPrefersEvalExpr(t *testing.T) {
	source, filename, err := readInput("fn answer\n  return 42\n", []string{"ignored.cor"})
	require.NoError(t, err)
	require.Equal(t, "fn answer\n  return 42\n", source)
	require.Equal(t, "<eval>", filename)
}

func TestReadInputReadsNamedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.cor")
	require.NoError(t, os.WriteFile(path, []byte("fn answer\n  return 42\n"), 0o644))

	source, filename, err := readInput("", []string{path})
	require.NoError(t, err)
	require.Equal(t, "fn answer\n  return 42\n", source)
	require.Equal(t, path, filename)
}

func TestReadInputReportsMissingFile(t *testing.T) {
	_, _, err := readInput("", []string{"/no/such/file.cor"})
	require.Error(t, err)
}
