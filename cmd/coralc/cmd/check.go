package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coral-lang/coralc/pkg/coral"
)

var checkEvalExpr string

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Compile Coral source and report diagnostics without printing IR",
	Long: `Run the full pipeline (lexer, parser, Hindley-Milner resolver, import
resolution and lowering) over Coral source and report any diagnostics;
the lowered IR is not printed.

Exits 0 and prints nothing on success, matching a typical linter's
"silence means clean" convention.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVarP(&checkEvalExpr, "eval", "e", "", "check an inline snippet instead of reading from a file")
}

func runCheck(cmd *cobra.Command, args []string) error {
	source, filename, err := readInput(checkEvalExpr, args)
	if err != nil {
		return err
	}

	root, _ := cmd.Flags().GetString("root")
	session := coral.NewSession(coral.WithRoot(root))
	result, diags := session.Compile(source, filename)
	if diags.HasErrors() {
		printDiagnostics(cmd, diags.Errors)
		return fmt.Errorf("check failed with %d error(s)", len(diags.Errors))
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		fmt.Printf("OK: %s (%d top-level statements, %d import(s))\n",
			filename, len(result.Program.Statements), len(result.Imports))
	}

	return nil
}
