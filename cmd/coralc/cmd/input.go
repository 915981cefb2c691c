package cmd

import (
	"fmt"
	"io"
	"os"
)

// readInput returns the source text and attributed filename for a
// subcommand: an inline -e expression, a named file, or stdin, in that
// priority order (mirrors dwscript's lex/parse/compile commands).
func readInput(evalExpr string, args []string) (source, filename string, err error) {
	switch {
	case evalExpr != "":
		return evalExpr, "<eval>", nil
	case len(args) == 1:
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		return string(content), args[0], nil
	default:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), "<stdin>", nil
	}
}
