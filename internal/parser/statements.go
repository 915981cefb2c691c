package parser

import (
	"github.com/coral-lang/coralc/internal/ast"
	"github.com/coral-lang/coralc/internal/lexer"
)

// parseStatement dispatches on the leading token, then applies the
// postfix error-chain wrapper (§4.2) if one follows on the same line.
func (p *Parser) parseStatement() *ast.Stmt {
	start := p.cur()
	var stmt *ast.Stmt

	switch p.cur().Kind {
	case lexer.FN:
		stmt = p.parseFunctionStmt()
	case lexer.OBJECT:
		stmt = p.parseObjectStmt()
	case lexer.STORE:
		stmt = p.parseStoreStmt()
	case lexer.ACTOR:
		stmt = p.parseActorStmt()
	case lexer.IF:
		stmt = p.parseIfStmt()
	case lexer.UNLESS:
		stmt = p.parseUnlessStmt()
	case lexer.WHILE:
		stmt = p.parseWhileStmt()
	case lexer.UNTIL:
		stmt = p.parseUntilStmt()
	case lexer.ITERATE:
		stmt = p.parseIterateStmt()
	case lexer.FOR:
		stmt = p.parseForStmt()
	case lexer.RETURN:
		stmt = p.parseReturnStmt()
	case lexer.BREAK:
		p.advance()
		stmt = ast.NewStmt(span(start, start), ast.BreakStmt{})
	case lexer.CONTINUE:
		p.advance()
		stmt = ast.NewStmt(span(start, start), ast.ContinueStmt{})
	case lexer.IMPORT, lexer.USE, lexer.MOD:
		stmt = p.parseImportStmt()
	case lexer.PIPE:
		p.advance()
		val := p.parseExpression(precLowest)
		stmt = ast.NewStmt(span(start, p.cur()), ast.PipeStmt{Value: val})
	case lexer.IO:
		p.advance()
		val := p.parseExpression(precLowest)
		stmt = ast.NewStmt(span(start, p.cur()), ast.IoStmt{Value: val})
	default:
		stmt = p.parseAssignmentOrExpressionStmt()
	}

	if stmt == nil {
		return nil
	}
	return p.applyErrorChainToStmt(stmt, start)
}

// applyErrorChainToStmt wraps stmt if a contiguous err/log/return chain
// follows (§4.2's error-chain postfix form at the statement level).
func (p *Parser) applyErrorChainToStmt(stmt *ast.Stmt, start lexer.Token) *ast.Stmt {
	if !p.check(lexer.ERR) {
		return stmt
	}
	handler := p.parseErrorHandler()
	return ast.NewStmt(span(start, p.cur()), ast.ErrorHandlerStmt{Wrapped: stmt, Handler: handler})
}

// parseErrorHandler parses the ordered err/log/return/custom-expr chain,
// preserving action order (§3/§4.2's Error-chain glossary entry). `log` is
// not a reserved word (§4.1's keyword set has no entry for it — it's an
// ordinary builtin call, per §4.4), so it's recognized here as an IDENT
// whose lexeme is "log", the same way parseUnary recognizes "not".
func (p *Parser) parseErrorHandler() ast.ErrorHandler {
	p.expect(lexer.ERR, "'err'")
	var actions []ast.ErrorHandlerAction
	for {
		switch {
		case p.cur().Kind == lexer.IDENT && p.cur().Lexeme == "log":
			p.advance()
			var arg *ast.Expr
			if !p.atLineEnd() {
				arg = p.parseExpression(precComparison)
			}
			actions = append(actions, ast.LogAction{Arg: arg})
		case p.cur().Kind == lexer.RETURN:
			p.advance()
			var arg *ast.Expr
			if !p.atLineEnd() {
				arg = p.parseExpression(precComparison)
			}
			actions = append(actions, ast.ReturnAction{Arg: arg})
		default:
			if p.atLineEnd() {
				return ast.ErrorHandler{Actions: actions}
			}
			expr := p.parseExpression(precComparison)
			actions = append(actions, ast.CustomAction{Expr: expr})
		}
		if p.atLineEnd() {
			break
		}
	}
	return ast.ErrorHandler{Actions: actions}
}

func (p *Parser) atLineEnd() bool {
	k := p.cur().Kind
	return k == lexer.NEWLINE || k == lexer.EOF || k == lexer.DEDENT
}

// parseAssignmentOrExpressionStmt handles `IDENT is EXPR`, compound
// assignment to an lvalue, and bare expression statements (§4.2).
func (p *Parser) parseAssignmentOrExpressionStmt() *ast.Stmt {
	start := p.cur()
	expr := p.parseExpression(precLowest)
	if expr == nil {
		p.errorAt(UnexpectedToken, "unexpected token "+p.cur().Kind.String())
		p.advance()
		return nil
	}

	if p.check(lexer.IS) {
		p.advance()
		value := p.parseExpression(precLowest)
		return ast.NewStmt(span(start, p.cur()), ast.AssignmentStmt{Target: expr, Op: "is", Value: value})
	}
	if op, ok := compoundAssignOps[p.cur().Kind]; ok {
		p.advance()
		value := p.parseExpression(precLowest)
		return ast.NewStmt(span(start, p.cur()), ast.AssignmentStmt{Target: expr, Op: op, Value: value})
	}

	return ast.NewStmt(span(start, p.cur()), ast.ExpressionStmt{Expr: expr})
}

var compoundAssignOps = map[lexer.Kind]string{
	lexer.ASSIGN: "=", lexer.PLUSEQ: "+=", lexer.MINUSEQ: "-=", lexer.STAREQ: "*=",
	lexer.SLASHEQ: "/=", lexer.PERCENTEQ: "%=", lexer.STARSTAREQ: "**=",
	lexer.AMPEQ: "&=", lexer.PIPEEQ: "|=", lexer.CARETEQ: "^=",
	lexer.SHLEQ: "<<=", lexer.SHREQ: ">>=",
}

func (p *Parser) parseBlockBody() []*ast.Stmt {
	p.skipNewlines()
	if !p.match(lexer.INDENT) {
		p.errorAt(IndentationError, "expected indented block")
		return nil
	}
	var stmts []*ast.Stmt
	p.skipNewlines()
	for !p.check(lexer.DEDENT) && !p.atEOF() {
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		if p.panicMode {
			p.synchronize()
		}
		p.skipNewlines()
	}
	p.match(lexer.DEDENT)
	return stmts
}

func (p *Parser) parseIfStmt() *ast.Stmt {
	start := p.advance() // IF
	cond := p.parseExpression(precLowest)
	p.match(lexer.THEN)
	then := p.parseBlockBody()
	var els []*ast.Stmt
	p.skipNewlines()
	if p.check(lexer.ELSE) {
		p.advance()
		if p.check(lexer.IF) {
			elseIfStmt := p.parseIfStmt()
			els = []*ast.Stmt{elseIfStmt}
		} else {
			els = p.parseBlockBody()
		}
	}
	return ast.NewStmt(span(start, p.cur()), ast.IfStmt{Cond: cond, Then: then, Else: els})
}

func (p *Parser) parseUnlessStmt() *ast.Stmt {
	start := p.advance() // UNLESS
	cond := p.parseExpression(precLowest)
	body := p.parseBlockBody()
	return ast.NewStmt(span(start, p.cur()), ast.UnlessStmt{Cond: cond, Body: body})
}

func (p *Parser) parseWhileStmt() *ast.Stmt {
	start := p.advance() // WHILE
	cond := p.parseExpression(precLowest)
	body := p.parseBlockBody()
	return ast.NewStmt(span(start, p.cur()), ast.WhileStmt{Cond: cond, Body: body})
}

func (p *Parser) parseUntilStmt() *ast.Stmt {
	start := p.advance() // UNTIL
	cond := p.parseExpression(precLowest)
	body := p.parseBlockBody()
	return ast.NewStmt(span(start, p.cur()), ast.UntilStmt{Cond: cond, Body: body})
}

// parseIterateStmt parses `iterate ITERABLE` (binding "$") or
// `iterate NAME across ITERABLE`. Per §9 the unnamed binder is always "$".
func (p *Parser) parseIterateStmt() *ast.Stmt {
	start := p.advance() // ITERATE
	varName := "$"
	var iterable *ast.Expr
	if p.check(lexer.IDENT) && p.peekAt(1).Kind == lexer.ACROSS {
		varName = p.advance().Lexeme
		p.advance() // ACROSS
		iterable = p.parseExpression(precLowest)
	} else {
		iterable = p.parseExpression(precLowest)
	}
	body := p.parseBlockBody()
	return ast.NewStmt(span(start, p.cur()), ast.IterateStmt{Var: varName, Iterable: iterable, Body: body})
}

func (p *Parser) parseForStmt() *ast.Stmt {
	start := p.advance() // FOR
	name := p.expect(lexer.IDENT, "loop variable").Lexeme
	p.expect(lexer.IN, "'in'")
	iterable := p.parseExpression(precLowest)
	body := p.parseBlockBody()
	return ast.NewStmt(span(start, p.cur()), ast.ForStmt{Var: name, Iterable: iterable, Body: body})
}

func (p *Parser) parseReturnStmt() *ast.Stmt {
	start := p.advance() // RETURN
	var value *ast.Expr
	if !p.atLineEnd() {
		value = p.parseExpression(precLowest)
	}
	return ast.NewStmt(span(start, p.cur()), ast.ReturnStmt{Value: value})
}

// parseImportStmt parses `import NAME from "path"` / `import NAME to
// "path"` / the bare `use NAME` and `mod NAME` forms (§4.2/§6).
func (p *Parser) parseImportStmt() *ast.Stmt {
	start := p.advance() // IMPORT | USE | MOD
	name := p.expect(lexer.IDENT, "module name").Lexeme
	var from, to string
	if p.match(lexer.FROM) {
		from = p.expect(lexer.STRING, "path string").Lexeme
	}
	if p.match(lexer.TO) {
		to = p.expect(lexer.STRING, "path string").Lexeme
	}
	return ast.NewStmt(span(start, p.cur()), ast.ImportStmt{Name: name, From: from, To: to})
}
