package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coral-lang/coralc/internal/lexer"
)

var (
	lexEvalExpr string
	lexShowPos  bool
	lexOnlyErrs bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize Coral source and print the resulting tokens",
	Long: `Tokenize (lex) a Coral program and print the resulting token stream,
including the synthesized INDENT/DEDENT/NEWLINE tokens.

Examples:
  coralc lex script.cor
  coralc lex -e "fn answer\n  return 42"
  coralc lex --show-pos --only-errors script.cor`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&lexEvalExpr, "eval", "e", "", "tokenize inline source instead of reading from a file")
	lexCmd.Flags().BoolVar(&lexShowPos, "show-pos", false, "show token positions (line:column)")
	lexCmd.Flags().BoolVar(&lexOnlyErrs, "only-errors", false, "show only ILLEGAL tokens")
}

func runLex(cmd *cobra.Command, args []string) error {
	source, filename, err := readInput(lexEvalExpr, args)
	if err != nil {
		return err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		fmt.Printf("Tokenizing: %s (%d bytes)\n---\n", filename, len(source))
	}

	lx := lexer.New(filename, source)
	tokens := lx.Tokenize()
	errSet := make(map[lexer.Position]bool, len(lx.Errors()))
	for _, tok := range lx.Errors() {
		errSet[tok.Pos()] = true
	}

	for _, tok := range tokens {
		if lexOnlyErrs && !errSet[tok.Pos()] {
			continue
		}
		printToken(tok)
	}

	if verbose {
		fmt.Printf("---\nTotal tokens: %d\n", len(tokens))
		if n := len(lx.Errors()); n > 0 {
			fmt.Printf("Errors: %d\n", n)
		}
	}

	if n := len(lx.Errors()); n > 0 {
		return fmt.Errorf("found %d illegal token(s)", n)
	}
	return nil
}

func printToken(tok lexer.Token) {
	output := fmt.Sprintf("[%-12s]", tok.Kind.String())
	if tok.Kind == lexer.ILLEGAL {
		output += fmt.Sprintf(" ILLEGAL: %q", tok.Lexeme)
	} else if tok.Lexeme == "" {
		output += fmt.Sprintf(" %s", tok.Kind.String())
	} else {
		output += fmt.Sprintf(" %q", tok.Lexeme)
	}
	if lexShowPos {
		output += fmt.Sprintf(" @%d:%d", tok.Line, tok.Column)
	}
	fmt.Println(output)
}
