package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information, set by build flags.
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "coralc",
	Short: "Coral compiler front end and middle end",
	Long: `coralc compiles Coral source through its lexer, parser, Hindley-Milner
resolver and linear-IR lowerer.

It has no backend: lex/parse/check inspect each stage in isolation, and
dump prints the typed linear IR the driver hands off to a target
backend.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("root", ".", "project root imports resolve against")
	rootCmd.PersistentFlags().Int("context", 0, "source lines of context to show around each diagnostic")
}
