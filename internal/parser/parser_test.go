package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coral-lang/coralc/internal/ast"
	"github.com/coral-lang/coralc/internal/lexer"
)

func parse(t *testing.T, src string) (*ast.Program, *Parser) {
	t.Helper()
	l := lexer.New("t.cor", src)
	p := New(l)
	program := p.ParseProgram()
	return program, p
}

func TestParseFunctionDeclWithReturn(t *testing.T) {
	program, p := parse(t, "fn answer\n  return 42\n")
	require.Empty(t, p.Errors())
	require.Len(t, program.Statements, 1)

	fn, ok := program.Statements[0].Kind.(ast.FunctionStmt)
	require.True(t, ok)
	require.Equal(t, "answer", fn.Name)
	require.Len(t, fn.Body, 1)
	_, ok = fn.Body[0].Kind.(ast.ReturnStmt)
	require.True(t, ok)
}

func TestParseFunctionWithParams(t *testing.T) {
	program, p := parse(t, "fn add with a, b\n  return a + b\n")
	require.Empty(t, p.Errors())

	fn := program.Statements[0].Kind.(ast.FunctionStmt)
	require.Len(t, fn.Params, 2)
	require.Equal(t, "a", fn.Params[0].Name)
	require.Equal(t, "b", fn.Params[1].Name)
}

func TestParseAssignmentIs(t *testing.T) {
	program, p := parse(t, "fn f\n  x is 1\n")
	require.Empty(t, p.Errors())

	fn := program.Statements[0].Kind.(ast.FunctionStmt)
	assign := fn.Body[0].Kind.(ast.AssignmentStmt)
	require.Equal(t, "is", assign.Op)
}

func TestParseCompoundAssignment(t *testing.T) {
	program, p := parse(t, "fn f\n  x is 1\n  x += 2\n")
	require.Empty(t, p.Errors())

	fn := program.Statements[0].Kind.(ast.FunctionStmt)
	assign := fn.Body[1].Kind.(ast.AssignmentStmt)
	require.Equal(t, "+=", assign.Op)
}

// Regression test for parseFieldOrMethod's field/method disambiguation:
// a plain field on its own line must not be mistaken for a zero-param
// method (see spec's own `object Point\n  x\n  y` example).
func TestParseObjectBareFieldsAreNotMethods(t *testing.T) {
	program, p := parse(t, "object Point\n  x\n  y\n")
	require.Empty(t, p.Errors())

	obj := program.Statements[0].Kind.(ast.ObjectStmt)
	require.Len(t, obj.Fields, 2)
	require.Empty(t, obj.Methods)
	require.Equal(t, "x", obj.Fields[0].Name)
	require.Equal(t, "y", obj.Fields[1].Name)
}

func TestParseObjectFieldWithDefault(t *testing.T) {
	program, p := parse(t, "object Point\n  x ? 0\n  y ? 0\n")
	require.Empty(t, p.Errors())

	obj := program.Statements[0].Kind.(ast.ObjectStmt)
	require.Len(t, obj.Fields, 2)
	require.NotNil(t, obj.Fields[0].DefaultValue)
}

func TestParseObjectMethod(t *testing.T) {
	program, p := parse(t, "object Point\n  x\n  y\n  move with dx\n    x is x + dx\n")
	require.Empty(t, p.Errors())

	obj := program.Statements[0].Kind.(ast.ObjectStmt)
	require.Len(t, obj.Fields, 2)
	require.Len(t, obj.Methods, 1)
	require.Equal(t, "move", obj.Methods[0].Name)
	require.Len(t, obj.Methods[0].Params, 1)
}

func TestParseIfElse(t *testing.T) {
	program, p := parse(t, "fn f\n  if x\n    return 1\n  else\n    return 2\n")
	require.Empty(t, p.Errors())

	fn := program.Statements[0].Kind.(ast.FunctionStmt)
	ifStmt := fn.Body[0].Kind.(ast.IfStmt)
	require.Len(t, ifStmt.Then, 1)
	require.Len(t, ifStmt.Else, 1)
}

func TestParseUnless(t *testing.T) {
	program, p := parse(t, "fn f\n  unless x\n    return 1\n")
	require.Empty(t, p.Errors())

	fn := program.Statements[0].Kind.(ast.FunctionStmt)
	_, ok := fn.Body[0].Kind.(ast.UnlessStmt)
	require.True(t, ok)
}

func TestParseWhileLoop(t *testing.T) {
	program, p := parse(t, "fn f\n  while x\n    x is x - 1\n")
	require.Empty(t, p.Errors())

	fn := program.Statements[0].Kind.(ast.FunctionStmt)
	_, ok := fn.Body[0].Kind.(ast.WhileStmt)
	require.True(t, ok)
}

func TestParseErrorChainOnStatement(t *testing.T) {
	program, p := parse(t, "fn f\n  risky() err log 'failed' return 0\n")
	require.Empty(t, p.Errors())

	fn := program.Statements[0].Kind.(ast.FunctionStmt)
	handled, ok := fn.Body[0].Kind.(ast.ErrorHandlerStmt)
	require.True(t, ok)
	require.Len(t, handled.Handler.Actions, 2)
}

// log is not a reserved word (§4.1's keyword set excludes it): a bare
// `log '...'`/`log n` statement is an ordinary no-parens call, not a
// dedicated statement form.
func TestParseBareLogCallIsOrdinaryCall(t *testing.T) {
	program, p := parse(t, "fn greet with name, greeting\n  log '{greeting}, {name}'\n")
	require.Empty(t, p.Errors())

	fn := program.Statements[0].Kind.(ast.FunctionStmt)
	stmt := fn.Body[0].Kind.(ast.ExpressionStmt)
	call := stmt.Expr.Kind.(ast.CallExpr)
	require.Equal(t, "log", call.Callee.Kind.(ast.IdentifierExpr).Name)
	require.Len(t, call.Args, 1)
}

func TestParseBareLogCallWithIdentArg(t *testing.T) {
	program, p := parse(t, "fn f with n\n  log n\n")
	require.Empty(t, p.Errors())

	fn := program.Statements[0].Kind.(ast.FunctionStmt)
	stmt := fn.Body[0].Kind.(ast.ExpressionStmt)
	call := stmt.Expr.Kind.(ast.CallExpr)
	require.Equal(t, "log", call.Callee.Kind.(ast.IdentifierExpr).Name)
	require.Len(t, call.Args, 1)
	require.Equal(t, "n", call.Args[0].Kind.(ast.IdentifierExpr).Name)
}

func TestParseRecordsErrorOnUnexpectedToken(t *testing.T) {
	_, p := parse(t, "fn\n")
	require.NotEmpty(t, p.Errors())
}
