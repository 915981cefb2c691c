package parser

import (
	"github.com/coral-lang/coralc/internal/ast"
	"github.com/coral-lang/coralc/internal/lexer"
)

// parseParams parses a comma- or whitespace-separated parameter list
// following `with` (§4.2): `name (? default)?` repeated.
func (p *Parser) parseParams() []ast.Parameter {
	var params []ast.Parameter
	for p.check(lexer.IDENT) {
		name := p.advance().Lexeme
		var def *ast.Expr
		if p.match(lexer.QUESTION) {
			def = p.parseExpression(precComparison)
		}
		params = append(params, ast.Parameter{Name: name, DefaultValue: def})
		if !p.match(lexer.COMMA) {
			// whitespace-separated form: keep consuming identifiers
			if !p.check(lexer.IDENT) {
				break
			}
		}
	}
	return params
}

// parseFunctionStmt parses `fn NAME with PARAMS NL INDENT BODY DEDENT`.
func (p *Parser) parseFunctionStmt() *ast.Stmt {
	start := p.advance() // FN
	name := p.expect(lexer.IDENT, "function name").Lexeme
	var params []ast.Parameter
	if p.match(lexer.WITH) {
		params = p.parseParams()
	}
	body := p.parseBlockBody()
	return ast.NewStmt(span(start, p.cur()), ast.FunctionStmt{Name: name, Params: params, Body: body})
}

// pushBody / popBody / checkDuplicate implement §4.2's duplicate-field/
// method detection inside an object/store/actor body: diagnostics-only,
// the later definition is still added to the AST.
func (p *Parser) pushBody() { p.bodyNames = append(p.bodyNames, map[string]bool{}) }
func (p *Parser) popBody()  { p.bodyNames = p.bodyNames[:len(p.bodyNames)-1] }
func (p *Parser) checkDuplicate(name string, tok lexer.Token) {
	top := p.bodyNames[len(p.bodyNames)-1]
	if top[name] {
		p.recordError(SemanticError, "duplicate member '"+name+"' in this body", tok.Line, tok.Column)
	}
	top[name] = true
}

// parseFieldOrMethod parses one member of an object/store/actor body: a
// field (`name` or `name ? default`) if the next token after the
// identifier is not `with`/NEWLINE-then-INDENT, otherwise a method.
func (p *Parser) parseFieldOrMethod() (field *ast.Field, method *ast.ObjectMethod) {
	nameTok := p.expect(lexer.IDENT, "field or method name")
	p.checkDuplicate(nameTok.Lexeme, nameTok)

	if p.check(lexer.QUESTION) {
		p.advance()
		def := p.parseExpression(precComparison)
		return &ast.Field{Name: nameTok.Lexeme, DefaultValue: def}, nil
	}

	if p.check(lexer.WITH) || (p.check(lexer.NEWLINE) && p.peekAt(1).Kind == lexer.INDENT) {
		var params []ast.Parameter
		if p.match(lexer.WITH) {
			params = p.parseParams()
		}
		start := nameTok
		body := p.parseBlockBody()
		return nil, &ast.ObjectMethod{Name: nameTok.Lexeme, Params: params, Body: body, Span: span(start, p.cur())}
	}

	return &ast.Field{Name: nameTok.Lexeme}, nil
}

func (p *Parser) parseObjectStmt() *ast.Stmt {
	start := p.advance() // OBJECT
	name := p.expect(lexer.IDENT, "object name").Lexeme
	p.pushBody()
	defer p.popBody()

	var fields []ast.Field
	var methods []ast.ObjectMethod
	p.skipNewlines()
	p.match(lexer.INDENT)
	p.skipNewlines()
	for !p.check(lexer.DEDENT) && !p.atEOF() {
		field, method := p.parseFieldOrMethod()
		if field != nil {
			fields = append(fields, *field)
		}
		if method != nil {
			methods = append(methods, *method)
		}
		if p.panicMode {
			p.synchronize()
		}
		p.skipNewlines()
	}
	p.match(lexer.DEDENT)
	return ast.NewStmt(span(start, p.cur()), ast.ObjectStmt{Name: name, Fields: fields, Methods: methods})
}

// parseConstructor parses a `make` block (§4.2).
func (p *Parser) parseConstructor() *ast.Constructor {
	start := p.advance() // MAKE
	var params []ast.Parameter
	if p.match(lexer.WITH) {
		params = p.parseParams()
	}
	body := p.parseBlockBody()
	return &ast.Constructor{Params: params, Body: body, Span: span(start, p.cur())}
}

func (p *Parser) parseStoreStmt() *ast.Stmt {
	start := p.advance() // STORE
	name := p.expect(lexer.IDENT, "store name").Lexeme
	p.pushBody()
	defer p.popBody()

	var fields []ast.Field
	var methods []ast.ObjectMethod
	var ctor *ast.Constructor
	p.skipNewlines()
	p.match(lexer.INDENT)
	p.skipNewlines()
	for !p.check(lexer.DEDENT) && !p.atEOF() {
		if p.check(lexer.MAKE) {
			ctor = p.parseConstructor()
		} else {
			field, method := p.parseFieldOrMethod()
			if field != nil {
				fields = append(fields, *field)
			}
			if method != nil {
				methods = append(methods, *method)
			}
		}
		if p.panicMode {
			p.synchronize()
		}
		p.skipNewlines()
	}
	p.match(lexer.DEDENT)
	return ast.NewStmt(span(start, p.cur()), ast.StoreStmt{Name: name, Fields: fields, Methods: methods, Make: ctor})
}

// parseMessageHandler parses `@message_name (with PARAMS)?` (§4.2).
func (p *Parser) parseMessageHandler() *ast.MessageHandler {
	start := p.advance() // ATSIGN
	msgName := p.expect(lexer.IDENT, "message name").Lexeme
	p.checkDuplicate("@"+msgName, start)
	var params []ast.Parameter
	if p.match(lexer.WITH) {
		params = p.parseParams()
	}
	body := p.parseBlockBody()
	return &ast.MessageHandler{MessageType: msgName, Params: params, Body: body, Span: span(start, p.cur())}
}

func (p *Parser) parseActorStmt() *ast.Stmt {
	start := p.advance() // ACTOR
	name := p.expect(lexer.IDENT, "actor name").Lexeme
	p.pushBody()
	defer p.popBody()

	var fields []ast.Field
	var handlers []ast.MessageHandler
	var joins []ast.JoinRef
	var ctor *ast.Constructor
	p.skipNewlines()
	p.match(lexer.INDENT)
	p.skipNewlines()
	for !p.check(lexer.DEDENT) && !p.atEOF() {
		switch {
		case p.check(lexer.MAKE):
			ctor = p.parseConstructor()
		case p.check(lexer.ATSIGN):
			if h := p.parseMessageHandler(); h != nil {
				handlers = append(handlers, *h)
			}
		case p.check(lexer.AMP):
			p.advance()
			tableName := p.expect(lexer.IDENT, "table name").Lexeme
			joins = append(joins, ast.JoinRef{TableName: tableName})
		default:
			field, method := p.parseFieldOrMethod()
			if field != nil {
				fields = append(fields, *field)
			}
			if method != nil {
				handlers = append(handlers, ast.MessageHandler{MessageType: method.Name, Params: method.Params, Body: method.Body, Span: method.Span})
			}
		}
		if p.panicMode {
			p.synchronize()
		}
		p.skipNewlines()
	}
	p.match(lexer.DEDENT)
	return ast.NewStmt(span(start, p.cur()), ast.ActorStmt{Name: name, Fields: fields, Handlers: handlers, Make: ctor, Joins: joins})
}
