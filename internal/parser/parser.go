// Package parser implements Coral's recursive-descent parser with
// panic-mode error recovery (§4.2). It consumes the full token stream
// produced by internal/lexer and builds an internal/ast.Program, never
// aborting on the first error.
package parser

import (
	"strconv"

	"github.com/coral-lang/coralc/internal/ast"
	"github.com/coral-lang/coralc/internal/lexer"
)

// precedence levels, low to high, per §4.2.
const (
	precLowest = iota
	precOr          // or(1)
	precAnd         // and(2)
	precEquality    // ==, !=, equals (3)
	precComparison  // <,>,<=,>= and word-forms (4)
	precAdditive    // +,- (5)
	precMultiplicative // *,/,% (6)
	precUnary          // not, -, ~ (7, tighter than any binary)
	precPower          // ** (8), right-associative
	precPostfix        // call, index, field access, chains
)

var binaryPrecedence = map[lexer.Kind]int{
	lexer.OR: precOr, lexer.XOR: precOr,
	lexer.AND: precAnd,
	lexer.EQ: precEquality, lexer.NEQ: precEquality, lexer.EQUALS: precEquality,
	lexer.LTOP: precComparison, lexer.GTOP: precComparison, lexer.LTE_OP: precComparison, lexer.GTE_OP: precComparison,
	lexer.LT: precComparison, lexer.GT: precComparison, lexer.LTE: precComparison, lexer.GTE: precComparison,
	lexer.PLUS: precAdditive, lexer.MINUS: precAdditive,
	lexer.STAR: precMultiplicative, lexer.SLASH: precMultiplicative, lexer.PERCENT: precMultiplicative,
	lexer.STARSTAR: precPower,
	lexer.AMP: precMultiplicative, lexer.BAR: precOr, lexer.CARET: precOr,
	lexer.SHL: precMultiplicative, lexer.SHR: precMultiplicative,
}

var binaryOps = map[lexer.Kind]ast.BinaryOp{
	lexer.PLUS: ast.OpAdd, lexer.MINUS: ast.OpSub, lexer.STAR: ast.OpMul,
	lexer.SLASH: ast.OpDiv, lexer.PERCENT: ast.OpMod, lexer.STARSTAR: ast.OpPow,
	lexer.EQ: ast.OpEq, lexer.NEQ: ast.OpNeq, lexer.EQUALS: ast.OpEq,
	lexer.LTOP: ast.OpLt, lexer.LT: ast.OpLt, lexer.LTE_OP: ast.OpLte, lexer.LTE: ast.OpLte,
	lexer.GTOP: ast.OpGt, lexer.GT: ast.OpGt, lexer.GTE_OP: ast.OpGte, lexer.GTE: ast.OpGte,
	lexer.AND: ast.OpAnd, lexer.OR: ast.OpOr, lexer.XOR: ast.OpXor,
	lexer.AMP: ast.OpBitAnd, lexer.BAR: ast.OpBitOr, lexer.CARET: ast.OpBitXor,
	lexer.SHL: ast.OpShl, lexer.SHR: ast.OpShr,
}

// synchronizeKeywords are the recovery anchors named in §4.2: one of
// `fn object store use` at column 0, a NEWLINE, a DEDENT, or EOF.
var synchronizeKeywords = map[lexer.Kind]bool{
	lexer.FN: true, lexer.OBJECT: true, lexer.STORE: true, lexer.USE: true,
}

// Parser turns a Lexer's token stream into a Program plus a list of
// ParseErrors; a non-empty error list does not preclude a partially
// formed program (§4.2).
type Parser struct {
	tokens []lexer.Token
	pos    int

	errors    []ParseError
	panicMode bool

	// bodyNames tracks, per open object/store/actor body, every field and
	// method name seen so far, for duplicate-detection diagnostics (§4.2).
	bodyNames []map[string]bool
}

// New tokenizes the full source and returns a ready-to-use Parser.
func New(l *lexer.Lexer) *Parser {
	return &Parser{tokens: l.Tokenize()}
}

// NewFromTokens builds a Parser directly from a pre-tokenized stream
// (handy for tests that want to hand-construct unusual token sequences).
func NewFromTokens(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

func (p *Parser) Errors() []ParseError { return p.errors }

func (p *Parser) cur() lexer.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekAt(offset int) lexer.Token {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

func (p *Parser) atEOF() bool { return p.cur().Kind == lexer.EOF }

func (p *Parser) advance() lexer.Token {
	tok := p.cur()
	if !p.atEOF() {
		p.pos++
	}
	return tok
}

func (p *Parser) check(k lexer.Kind) bool { return p.cur().Kind == k }

func (p *Parser) match(k lexer.Kind) bool {
	if p.check(k) {
		p.advance()
		return true
	}
	return false
}

// expect consumes a token of kind k, or records a MissingToken error and
// returns the current token without consuming it.
func (p *Parser) expect(k lexer.Kind, what string) lexer.Token {
	if p.check(k) {
		return p.advance()
	}
	p.errorAt(MissingToken, "expected "+what+", found "+p.cur().Kind.String())
	return p.cur()
}

func (p *Parser) errorAt(kind ErrorKind, msg string) {
	if p.panicMode {
		return
	}
	tok := p.cur()
	p.errors = append(p.errors, ParseError{Message: msg, Line: tok.Line, Col: tok.Column, Kind: kind})
	p.panicMode = true
}

// recordError always appends, even during panic mode — used for
// diagnostics-only findings (duplicate field/method) that should not
// themselves trigger a recovery skip (§4.2's "diagnostics-only" note).
func (p *Parser) recordError(kind ErrorKind, msg string, line, col int) {
	p.errors = append(p.errors, ParseError{Message: msg, Line: line, Col: col, Kind: kind})
}

// synchronize implements §4.2's recovery: skip tokens until a
// synchronization token, then clear panic mode. Progress is always made
// (advance() never re-visits a consumed token), satisfying §8's recovery
// invariant.
func (p *Parser) synchronize() {
	for !p.atEOF() {
		if p.cur().Kind == lexer.NEWLINE || p.cur().Kind == lexer.DEDENT {
			p.advance()
			break
		}
		if synchronizeKeywords[p.cur().Kind] && p.cur().Column == 1 {
			break
		}
		p.advance()
	}
	p.panicMode = false
}

func (p *Parser) skipNewlines() {
	for p.check(lexer.NEWLINE) {
		p.advance()
	}
}

func span(start, end lexer.Token) ast.SourceSpan {
	file := "<source>"
	return ast.SourceSpan{
		File: &file, StartLine: start.Line, StartCol: start.Column,
		EndLine: end.Line, EndCol: end.Column,
	}
}

// ParseProgram parses the whole token stream into a Program. It never
// returns a nil Program, even when every statement failed to parse.
func (p *Parser) ParseProgram() *ast.Program {
	start := p.cur()
	var stmts []*ast.Stmt
	p.skipNewlines()
	for !p.atEOF() {
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		if p.panicMode {
			p.synchronize()
		}
		p.skipNewlines()
	}
	end := p.cur()
	return &ast.Program{Statements: stmts, Span: span(start, end)}
}

func parseIntLiteral(lexeme string) int64 {
	switch {
	case len(lexeme) > 2 && (lexeme[:2] == "0x" || lexeme[:2] == "0X"):
		v, _ := strconv.ParseInt(lexeme[2:], 16, 64)
		return v
	case len(lexeme) > 1 && lexeme[0] == 'b':
		v, _ := strconv.ParseInt(lexeme[1:], 2, 64)
		return v
	default:
		v, _ := strconv.ParseInt(lexeme, 10, 64)
		return v
	}
}
