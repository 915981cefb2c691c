// Command coralc is the compiler driver's command-line front end: lex,
// parse, check, dump and version subcommands over pkg/coral, grounded on
// CWBudde-go-dws/cmd/dwscript's cobra command tree.
package main

import (
	"fmt"
	"os"

	"github.com/coral-lang/coralc/cmd/coralc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
