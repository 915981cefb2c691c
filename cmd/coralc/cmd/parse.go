package cmd

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/coral-lang/coralc/internal/ast"
	"github.com/coral-lang/coralc/internal/errors"
	"github.com/coral-lang/coralc/internal/lexer"
	"github.com/coral-lang/coralc/internal/parser"
)

var (
	parseEvalExpr string
	parseDumpAST  bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse Coral source and display the AST",
	Long: `Parse Coral source code and display the resulting Abstract Syntax Tree.

Use -e to parse an inline snippet instead of a file. Use --dump-ast for a
field-by-field dump (via go-spew) instead of the summary tree.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVarP(&parseEvalExpr, "eval", "e", "", "parse an inline snippet instead of reading from a file")
	parseCmd.Flags().BoolVar(&parseDumpAST, "dump-ast", false, "dump the full AST via go-spew instead of the summary tree")
}

func runParse(cmd *cobra.Command, args []string) error {
	source, filename, err := readInput(parseEvalExpr, args)
	if err != nil {
		return err
	}

	lx := lexer.New(filename, source)
	tokens := lx.Tokenize()
	if lexErrs := lx.Errors(); len(lexErrs) > 0 {
		return reportTokenErrors(cmd, lexErrs, source, filename)
	}

	p := parser.NewFromTokens(tokens)
	program := p.ParseProgram()
	if parseErrs := p.Errors(); len(parseErrs) > 0 {
		return reportParseErrors(cmd, parseErrs, source, filename)
	}

	if parseDumpAST {
		spew.Dump(program)
		return nil
	}

	fmt.Println("Program:")
	for _, stmt := range program.Statements {
		dumpStmtSummary(stmt, 1)
	}
	return nil
}

func dumpStmtSummary(s *ast.Stmt, indent int) {
	fmt.Printf("%s%T\n", indentOf(indent), s.Kind)
}

func indentOf(n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += "  "
	}
	return out
}

func reportTokenErrors(cmd *cobra.Command, toks []lexer.Token, source, filename string) error {
	var compilerErrors []*errors.CompilerError
	for _, tok := range toks {
		compilerErrors = append(compilerErrors, errors.NewCompilerError(
			tok.Pos(), fmt.Sprintf("illegal token %q", tok.Lexeme), source, filename))
	}
	printDiagnostics(cmd, compilerErrors)
	return fmt.Errorf("lexing failed with %d error(s)", len(toks))
}

func reportParseErrors(cmd *cobra.Command, errs []parser.ParseError, source, filename string) error {
	var compilerErrors []*errors.CompilerError
	for _, e := range errs {
		pos := lexer.Position{Line: e.Line, Column: e.Col}
		compilerErrors = append(compilerErrors, errors.NewCompilerError(pos, e.Message, source, filename))
	}
	printDiagnostics(cmd, compilerErrors)
	return fmt.Errorf("parsing failed with %d error(s)", len(errs))
}
