package parser

import (
	"strings"

	"github.com/coral-lang/coralc/internal/ast"
	"github.com/coral-lang/coralc/internal/lexer"
)

// parseExpression is the precedence-climbing entry point (§4.2). It parses
// a primary/unary expression, then repeatedly folds in binary operators
// whose precedence is at least minPrec, then layers the Coral-specific
// ternary on top. Error chains are not parsed here: applyErrorChainToStmt
// attaches them to the enclosing statement.
func (p *Parser) parseExpression(minPrec int) *ast.Expr {
	left := p.parseUnary()
	if left == nil {
		return nil
	}
	left = p.parseBinaryRHS(minPrec, left)
	left = p.parseTernary(left)
	return left
}

func (p *Parser) parseBinaryRHS(minPrec int, left *ast.Expr) *ast.Expr {
	for {
		kind := p.cur().Kind
		prec, ok := binaryPrecedence[kind]
		if !ok || prec < minPrec {
			return left
		}
		opTok := p.advance()
		op := binaryOps[kind]

		// ** is right-associative (§4.2); everything else is left-associative.
		nextMin := prec + 1
		if kind == lexer.STARSTAR {
			nextMin = prec
		}
		right := p.parseUnary()
		if right == nil {
			p.errorAt(UnexpectedToken, "expected expression after operator")
			return left
		}
		right = p.parseBinaryRHS(nextMin, right)

		left = ast.NewExpr(span(opTok, p.cur()), ast.BinaryExpr{Op: op, Left: left, Right: right})
	}
}

// parseTernary implements §4.2's trailing-value ternary forms:
// `cond ? true_expr` (default-value, Else == nil) and
// `cond ? true_expr ! false_expr` (full ternary).
func (p *Parser) parseTernary(cond *ast.Expr) *ast.Expr {
	if !p.check(lexer.QUESTION) {
		return cond
	}
	qTok := p.advance()
	thenExpr := p.parseExpression(precComparison)
	var elseExpr *ast.Expr
	if p.match(lexer.BANG) {
		elseExpr = p.parseExpression(precComparison)
	}
	return ast.NewExpr(span(qTok, p.cur()), ast.IfExpr{Cond: cond, Then: thenExpr, Else: elseExpr})
}

func (p *Parser) parseUnary() *ast.Expr {
	start := p.cur()
	switch p.cur().Kind {
	case lexer.BANG:
		p.advance()
		operand := p.parseUnary()
		return ast.NewExpr(span(start, p.cur()), ast.UnaryExpr{Op: ast.OpNot, Operand: operand})
	case lexer.MINUS:
		p.advance()
		operand := p.parseUnary()
		return ast.NewExpr(span(start, p.cur()), ast.UnaryExpr{Op: ast.OpNeg, Operand: operand})
	case lexer.TILDE:
		p.advance()
		operand := p.parseUnary()
		return ast.NewExpr(span(start, p.cur()), ast.UnaryExpr{Op: ast.OpBitNot, Operand: operand})
	default:
		// word-form `not`
		if p.cur().Kind == lexer.IDENT && p.cur().Lexeme == "not" {
			p.advance()
			operand := p.parseUnary()
			return ast.NewExpr(span(start, p.cur()), ast.UnaryExpr{Op: ast.OpNot, Operand: operand})
		}
		return p.parsePostfix()
	}
}

// parsePostfix layers call/index/field-access/chained-method/at-indexing
// forms (§4.2) on top of a primary expression.
func (p *Parser) parsePostfix() *ast.Expr {
	expr := p.parsePrimary()
	if expr == nil {
		return nil
	}
	for {
		switch p.cur().Kind {
		case lexer.DOT:
			expr = p.parseFieldOrMethodChain(expr)
		case lexer.LBRACKET:
			start := p.advance()
			idx := p.parseExpression(precLowest)
			p.expect(lexer.RBRACKET, "']'")
			expr = ast.NewExpr(span(start, p.cur()), ast.IndexExpr{Target: expr, Index: idx, UseAtKeyword: false})
		case lexer.AT:
			start := p.advance()
			idx := p.parseUnary()
			expr = ast.NewExpr(span(start, p.cur()), ast.IndexExpr{Target: expr, Index: idx, UseAtKeyword: true})
		case lexer.LPAREN:
			expr = p.parseCallParens(expr)
		case lexer.PUSH:
			start := p.advance()
			val := p.parseExpression(precComparison)
			expr = ast.NewExpr(span(start, p.cur()), ast.ListAppendExpr{List: expr, Value: val})
		default:
			if bareArgs := p.canStartBareCallArg(); p.isCallableIdent(expr) && bareArgs {
				expr = p.parseBareCall(expr)
				continue
			}
			return expr
		}
	}
}

// isCallableIdent restricts the space-separated bare-call form (§4.2's
// call-syntax ambiguity) to a bare identifier or field-access callee,
// matching "a bare identifier followed by value-producing tokens".
func (p *Parser) isCallableIdent(expr *ast.Expr) bool {
	switch expr.Kind.(type) {
	case ast.IdentifierExpr, ast.FieldAccessExpr:
		return true
	}
	return false
}

// canStartBareCallArg reports whether the current token can begin a
// value-producing argument on the same source line, per §4.2's call-
// syntax ambiguity rule.
func (p *Parser) canStartBareCallArg() bool {
	switch p.cur().Kind {
	case lexer.INTEGER, lexer.FLOAT, lexer.STRING, lexer.INTERPOLATED_STR,
		lexer.IDENT, lexer.TRUE, lexer.FALSE, lexer.NO, lexer.YES, lexer.EMPTY,
		lexer.NOW, lexer.ERR, lexer.LBRACKET, lexer.LBRACE:
		return true
	}
	return false
}

func (p *Parser) parseBareCall(callee *ast.Expr) *ast.Expr {
	start := p.cur()
	args, named := p.parseCallArgList(false)
	return ast.NewExpr(span(start, p.cur()), ast.CallExpr{Callee: callee, Args: args, NamedArgs: named})
}

func (p *Parser) parseCallParens(callee *ast.Expr) *ast.Expr {
	start := p.advance() // LPAREN
	var args []*ast.Expr
	for !p.check(lexer.RPAREN) && !p.atEOF() {
		args = append(args, p.parseExpression(precLowest))
		if !p.match(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RPAREN, "')'")
	return ast.NewExpr(span(start, p.cur()), ast.CallExpr{Callee: callee, Args: args})
}

// parseCallArgList parses comma- or whitespace-separated positional
// arguments followed optionally by `with name value, ...` named arguments
// (§4.2).
func (p *Parser) parseCallArgList(stopAtWith bool) ([]*ast.Expr, []ast.NamedArg) {
	var args []*ast.Expr
	for p.canStartBareCallArg() && !p.check(lexer.WITH) {
		args = append(args, p.parseExpression(precComparison))
		if !p.match(lexer.COMMA) {
			if !p.canStartBareCallArg() || p.check(lexer.WITH) {
				break
			}
		}
	}
	var named []ast.NamedArg
	if p.match(lexer.WITH) {
		for p.check(lexer.IDENT) {
			name := p.advance().Lexeme
			val := p.parseExpression(precComparison)
			named = append(named, ast.NamedArg{Name: name, Value: val})
			if !p.match(lexer.COMMA) {
				break
			}
		}
	}
	_ = stopAtWith
	return args, named
}

// parseFieldOrMethodChain parses `.field`, `.meth args`, and a full
// chained-method-call form `.meth args then .other args and .third args`
// (§4.2). A single `.field`/`.meth` link with no following `then`/`and`
// just returns a FieldAccessExpr or CallExpr; multiple links produce an
// AcrossExpr recording each link's connector.
func (p *Parser) parseFieldOrMethodChain(target *ast.Expr) *ast.Expr {
	start := p.advance() // DOT
	name := p.expect(lexer.IDENT, "field or method name").Lexeme

	hasArgs := p.canStartBareCallArg() || p.check(lexer.LPAREN)
	var firstArgs []*ast.Expr
	var named []ast.NamedArg
	if p.check(lexer.LPAREN) {
		call := p.parseCallParens(&ast.Expr{Kind: ast.IdentifierExpr{Name: name}})
		firstArgs = call.Kind.(ast.CallExpr).Args
	} else if hasArgs {
		firstArgs, named = p.parseCallArgList(false)
	}

	if !p.check(lexer.THEN) && !p.check(lexer.AND) {
		if !hasArgs {
			return ast.NewExpr(span(start, p.cur()), ast.FieldAccessExpr{Target: target, Field: name})
		}
		callee := ast.NewExpr(span(start, start), ast.FieldAccessExpr{Target: target, Field: name})
		return ast.NewExpr(span(start, p.cur()), ast.CallExpr{Callee: callee, Args: firstArgs, NamedArgs: named})
	}

	links := []ast.MethodLink{{Connector: "", Method: name, Args: firstArgs}}
	for p.check(lexer.THEN) || p.check(lexer.AND) {
		connector := p.advance().Lexeme
		p.expect(lexer.DOT, "'.'")
		linkName := p.expect(lexer.IDENT, "method name").Lexeme
		var linkArgs []*ast.Expr
		if p.canStartBareCallArg() {
			linkArgs, _ = p.parseCallArgList(false)
		}
		links = append(links, ast.MethodLink{Connector: connector, Method: linkName, Args: linkArgs})
	}
	return ast.NewExpr(span(start, p.cur()), ast.AcrossExpr{Source: target, Links: links})
}

// parsePrimary parses literals, identifiers, parenthesized expressions,
// list/map literals, lambdas, object instantiation, and if-expressions.
func (p *Parser) parsePrimary() *ast.Expr {
	start := p.cur()
	switch start.Kind {
	case lexer.INTEGER:
		p.advance()
		return ast.NewExpr(span(start, start), ast.LiteralExpr{Value: ast.Literal{Kind: ast.LitInteger, Int: parseIntLiteral(start.Lexeme)}})
	case lexer.FLOAT:
		p.advance()
		v := parseFloatLiteral(start.Lexeme)
		return ast.NewExpr(span(start, start), ast.LiteralExpr{Value: ast.Literal{Kind: ast.LitFloat, Float: v}})
	case lexer.STRING:
		p.advance()
		return ast.NewExpr(span(start, start), ast.LiteralExpr{Value: ast.Literal{Kind: ast.LitString, Str: start.Lexeme}})
	case lexer.INTERPOLATED_STR:
		p.advance()
		return p.parseInterpolatedString(start)
	case lexer.TRUE:
		p.advance()
		return ast.NewExpr(span(start, start), ast.LiteralExpr{Value: ast.Literal{Kind: ast.LitBool, BoolVal: true}})
	case lexer.FALSE:
		p.advance()
		return ast.NewExpr(span(start, start), ast.LiteralExpr{Value: ast.Literal{Kind: ast.LitBool, BoolVal: false}})
	case lexer.YES:
		p.advance()
		return ast.NewExpr(span(start, start), ast.LiteralExpr{Value: ast.Literal{Kind: ast.LitYes}})
	case lexer.NO:
		p.advance()
		return ast.NewExpr(span(start, start), ast.LiteralExpr{Value: ast.Literal{Kind: ast.LitNo}})
	case lexer.EMPTY:
		p.advance()
		return ast.NewExpr(span(start, start), ast.LiteralExpr{Value: ast.Literal{Kind: ast.LitEmpty}})
	case lexer.NOW:
		p.advance()
		return ast.NewExpr(span(start, start), ast.LiteralExpr{Value: ast.Literal{Kind: ast.LitNow}})
	case lexer.ERR:
		p.advance()
		return ast.NewExpr(span(start, start), ast.LiteralExpr{Value: ast.Literal{Kind: ast.LitErr}})
	case lexer.IDENT:
		return p.parseIdentOrConstruction()
	case lexer.LPAREN:
		p.advance()
		inner := p.parseExpression(precLowest)
		p.expect(lexer.RPAREN, "')'")
		return inner
	case lexer.LBRACKET:
		return p.parseListLiteral()
	case lexer.LBRACE:
		return p.parseMapLiteral()
	case lexer.FN:
		return p.parseLambda()
	case lexer.IF:
		return p.parseIfExpr()
	case lexer.PIPE:
		p.advance()
		v := p.parseExpression(precComparison)
		return ast.NewExpr(span(start, p.cur()), ast.PipeExpr{Value: v})
	case lexer.IO:
		p.advance()
		v := p.parseExpression(precComparison)
		return ast.NewExpr(span(start, p.cur()), ast.IoExpr{Value: v})
	default:
		p.errorAt(UnexpectedToken, "unexpected token "+start.Kind.String()+" in expression")
		return nil
	}
}

// parseIdentOrConstruction handles a bare identifier, `Type!(...)`
// construction, and `Type with name value, ...` construction (§4.2).
func (p *Parser) parseIdentOrConstruction() *ast.Expr {
	start := p.advance()
	ident := ast.NewExpr(span(start, start), ast.IdentifierExpr{Name: start.Lexeme})

	if p.check(lexer.BANG) && p.peekAt(1).Kind == lexer.LPAREN {
		p.advance() // BANG
		call := p.parseCallParens(ident)
		ce := call.Kind.(ast.CallExpr)
		ce.IsConstruction = true
		call.Kind = ce
		return call
	}
	if p.check(lexer.WITH) {
		save := p.pos
		p.advance()
		if p.check(lexer.IDENT) && p.peekAt(1).Kind != lexer.WITH {
			args, named := p.parseCallArgList(false)
			return ast.NewExpr(span(start, p.cur()), ast.CallExpr{Callee: ident, Args: args, NamedArgs: named, IsConstruction: true})
		}
		p.pos = save
	}
	return ident
}

func (p *Parser) parseListLiteral() *ast.Expr {
	start := p.advance() // LBRACKET
	var elems []*ast.Expr
	for !p.check(lexer.RBRACKET) && !p.atEOF() {
		elems = append(elems, p.parseExpression(precLowest))
		if !p.match(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RBRACKET, "']'")
	return ast.NewExpr(span(start, p.cur()), ast.ListLiteralExpr{Elements: elems})
}

func (p *Parser) parseMapLiteral() *ast.Expr {
	start := p.advance() // LBRACE
	var entries []ast.MapEntry
	for !p.check(lexer.RBRACE) && !p.atEOF() {
		key := p.parseExpression(precComparison)
		p.expect(lexer.COLON, "':'")
		val := p.parseExpression(precLowest)
		entries = append(entries, ast.MapEntry{Key: key, Value: val})
		if !p.match(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RBRACE, "'}'")
	return ast.NewExpr(span(start, p.cur()), ast.MapLiteralExpr{Entries: entries})
}

func (p *Parser) parseLambda() *ast.Expr {
	start := p.advance() // FN
	var params []ast.Parameter
	if p.match(lexer.WITH) {
		params = p.parseParams()
	}
	body := p.parseExpression(precLowest)
	return ast.NewExpr(span(start, p.cur()), ast.LambdaExpr{Params: params, Body: body})
}

func (p *Parser) parseIfExpr() *ast.Expr {
	start := p.advance() // IF
	cond := p.parseExpression(precLowest)
	p.match(lexer.THEN)
	then := p.parseExpression(precLowest)
	var els *ast.Expr
	if p.match(lexer.ELSE) {
		els = p.parseExpression(precLowest)
	}
	return ast.NewExpr(span(start, p.cur()), ast.IfExpr{Cond: cond, Then: then, Else: els})
}

// parseInterpolatedString splits a lexer-delivered raw interpolation body
// into literal-text and expression parts by sub-lexing each "{...}"
// segment (§4.1's "parsing of {expr} happens in the parser").
func (p *Parser) parseInterpolatedString(tok lexer.Token) *ast.Expr {
	body := tok.Lexeme
	var parts []ast.InterpolationPart
	var text strings.Builder
	i := 0
	for i < len(body) {
		if body[i] == '{' {
			if text.Len() > 0 {
				parts = append(parts, ast.InterpolationPart{Text: text.String()})
				text.Reset()
			}
			depth := 1
			j := i + 1
			for j < len(body) && depth > 0 {
				switch body[j] {
				case '{':
					depth++
				case '}':
					depth--
				}
				if depth == 0 {
					break
				}
				j++
			}
			exprSrc := body[i+1 : j]
			sub := New(lexer.New("<interpolation>", exprSrc))
			subExpr := sub.parseExpressionFromFreshState()
			parts = append(parts, ast.InterpolationPart{IsExpr: true, Expr: subExpr})
			i = j + 1
			continue
		}
		text.WriteByte(body[i])
		i++
	}
	if text.Len() > 0 {
		parts = append(parts, ast.InterpolationPart{Text: text.String()})
	}
	return ast.NewExpr(span(tok, tok), ast.StringInterpolationExpr{Parts: parts})
}

// parseExpressionFromFreshState parses one expression from a Parser built
// purely to tokenize an interpolation segment.
func (p *Parser) parseExpressionFromFreshState() *ast.Expr {
	return p.parseExpression(precLowest)
}

func parseFloatLiteral(lexeme string) float64 {
	var intPart, fracPart float64
	var fracDiv float64 = 1
	seenDot := false
	for _, c := range lexeme {
		if c == '.' {
			seenDot = true
			continue
		}
		d := float64(c - '0')
		if !seenDot {
			intPart = intPart*10 + d
		} else {
			fracDiv *= 10
			fracPart = fracPart*10 + d
		}
	}
	return intPart + fracPart/fracDiv
}
