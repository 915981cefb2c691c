package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/coral-lang/coralc/internal/errors"
)

// printDiagnostics renders errs to stderr, honoring the persistent
// --context flag: 0 (the default) prints each diagnostic's own failing
// line, >0 prints that many surrounding lines dimmed around it.
func printDiagnostics(cmd *cobra.Command, errs []*errors.CompilerError) {
	contextLines, _ := cmd.Flags().GetInt("context")
	color := errors.StderrSupportsColor(os.Stderr.Fd())

	var out string
	if contextLines > 0 {
		out = errors.FormatErrorsWithContext(errs, contextLines, color)
	} else {
		out = errors.FormatErrors(errs, color)
	}
	os.Stderr.WriteString(out)
}
