package cmd

import (
	"bytes"
	"os"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/coral-lang/coralc/internal/errors"
	"github.com/coral-lang/coralc/internal/lexer"
)

func newTestCmd(t *testing.T, contextLines int) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "test"}
	c.Flags().Int("context", contextLines, "")
	return c
}

func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	var buf bytes.Buffer
	old := os.Stderr
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stderr = w

	fn()

	w.Close()
	os.Stderr = old
	buf.ReadFrom(r)
	return buf.String()
}

func TestPrintDiagnosticsWithoutContextPrintsFailingLineOnly(t *testing.T) {
	errs := []*errors.CompilerError{
		errors.NewCompilerError(lexer.Position{Line: 2, Column: 1}, "boom", "a\nb\nc\n", "t.cor"),
	}

	out := captureStderr(t, func() {
		printDiagnostics(newTestCmd(t, 0), errs)
	})

	require.Contains(t, out, "b")
	require.NotContains(t, out, "a\n")
	require.NotContains(t, out, "c\n")
}

func TestPrintDiagnosticsWithContextPrintsSurroundingLines(t *testing.T) {
	errs := []*errors.CompilerError{
		errors.NewCompilerError(lexer.Position{Line: 2, Column: 1}, "boom", "a\nb\nc\n", "t.cor"),
	}

	out := captureStderr(t, func() {
		printDiagnostics(newTestCmd(t, 1), errs)
	})

	require.Contains(t, out, "a")
	require.Contains(t, out, "b")
	require.Contains(t, out, "c")
}
