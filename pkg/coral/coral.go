// Package coral is the embeddable compiler driver: Session wires the
// lexer, parser, resolver and lowerer together behind a single Compile
// call, grounded on CWBudde-go-dws/pkg/dwscript's Engine/functional-option
// shape (New(opts...), engine.Compile(source)).
package coral

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/coral-lang/coralc/internal/ast"
	"github.com/coral-lang/coralc/internal/config"
	"github.com/coral-lang/coralc/internal/errors"
	"github.com/coral-lang/coralc/internal/lexer"
	"github.com/coral-lang/coralc/internal/loader"
	"github.com/coral-lang/coralc/internal/lower"
	"github.com/coral-lang/coralc/internal/parser"
	"github.com/coral-lang/coralc/internal/resolver"
)

// Session is one compiler instance: its own config and loader root, tagged
// with a process-unique ID so a host embedding multiple sessions (a
// language server, a test harness) can tell them apart in logs.
type Session struct {
	ID     uuid.UUID
	Config config.Config
	Loader *loader.Loader
}

// Option configures a Session at construction time.
type Option func(*Session)

// WithConfig overrides the session's Config (by default config.Default()).
func WithConfig(cfg config.Config) Option {
	return func(s *Session) { s.Config = cfg }
}

// WithRoot sets both Config.Root and the import Loader's root directory.
func WithRoot(root string) Option {
	return func(s *Session) {
		s.Config.Root = root
		s.Loader = loader.New(root)
	}
}

// NewSession builds a Session with config.Default() and a loader rooted at
// "." unless overridden by opts.
func NewSession(opts ...Option) *Session {
	s := &Session{ID: uuid.New(), Config: config.Default()}
	s.Loader = loader.New(s.Config.Root)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result is one Compile call's full output: the parsed-and-resolved AST,
// the lowered Module, and every import statement's resolved file list.
type Result struct {
	Program *ast.Program
	Module  *lower.Module
	Imports []*loader.Import
}

// Diagnostics collects every error a Compile run produced, in pipeline
// order (lex errors first, since a parse can't proceed past a broken
// token stream; then parse errors; then at most one resolve error, since
// the resolver stops at its first unrecoverable constraint failure).
type Diagnostics struct {
	Errors []*errors.CompilerError
}

func (d Diagnostics) HasErrors() bool { return len(d.Errors) > 0 }

func (d Diagnostics) Error() string {
	return errors.FormatErrors(d.Errors, false)
}

// Compile runs the full pipeline — lex, parse, resolve, resolve imports,
// lower — over source attributed to filename. It stops at the first
// stage that reports any diagnostics: a lex/parse error set means the
// tree is too broken to resolve, and a resolve error means the tree is
// too ill-typed to lower.
func (s *Session) Compile(source, filename string) (*Result, Diagnostics) {
	lx := lexer.New(filename, source)
	tokens := lx.Tokenize()
	if lexErrs := lx.Errors(); len(lexErrs) > 0 {
		return nil, Diagnostics{Errors: tokenErrorsToDiagnostics(lexErrs, source, filename)}
	}

	p := parser.NewFromTokens(tokens)
	program := p.ParseProgram()
	if parseErrs := p.Errors(); len(parseErrs) > 0 {
		return nil, Diagnostics{Errors: parseErrorsToDiagnostics(parseErrs, source, filename)}
	}

	resolved, typeErr := resolver.Resolve(program)
	if typeErr != nil {
		pos := lexer.Position{Line: typeErr.Line, Column: typeErr.Col}
		return nil, Diagnostics{Errors: []*errors.CompilerError{
			errors.NewCompilerError(pos, typeErr.Error(), source, filename),
		}}
	}

	imports, err := s.Loader.ResolveProgram(resolved)
	if err != nil {
		pos := lexer.Position{}
		return nil, Diagnostics{Errors: []*errors.CompilerError{
			errors.NewCompilerError(pos, err.Error(), source, filename),
		}}
	}

	module := lower.Lower(resolved)
	return &Result{Program: resolved, Module: module, Imports: imports}, Diagnostics{}
}

// Compile runs a one-shot compile with a default Session — the common
// embedding entry point when a caller has no need for a long-lived
// Session (config layering, a shared import root).
func Compile(source, filename string) (*Result, Diagnostics) {
	return NewSession().Compile(source, filename)
}

func tokenErrorsToDiagnostics(toks []lexer.Token, source, filename string) []*errors.CompilerError {
	out := make([]*errors.CompilerError, len(toks))
	for i, tok := range toks {
		out[i] = errors.NewCompilerError(tok.Pos(), fmt.Sprintf("illegal token %q", tok.Lexeme), source, filename)
	}
	return out
}

func parseErrorsToDiagnostics(errs []parser.ParseError, source, filename string) []*errors.CompilerError {
	out := make([]*errors.CompilerError, len(errs))
	for i, e := range errs {
		pos := lexer.Position{Line: e.Line, Column: e.Col}
		out[i] = errors.NewCompilerError(pos, e.Message, source, filename)
	}
	return out
}
