package resolver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coral-lang/coralc/internal/ast"
	"github.com/coral-lang/coralc/internal/lexer"
	"github.com/coral-lang/coralc/internal/parser"
)

func resolve(t *testing.T, src string) (*ast.Program, *TypeError) {
	t.Helper()
	l := lexer.New("t.cor", src)
	p := parser.New(l)
	program := p.ParseProgram()
	require.Empty(t, p.Errors())
	return Resolve(program)
}

func findFunc(program *ast.Program, name string) ast.FunctionStmt {
	for _, s := range program.Statements {
		if fn, ok := s.Kind.(ast.FunctionStmt); ok && fn.Name == name {
			return fn
		}
	}
	return ast.FunctionStmt{}
}

func TestResolveInfersIntegerReturnType(t *testing.T) {
	program, err := resolve(t, "fn answer\n  return 42\n")
	require.Nil(t, err)

	fn := findFunc(program, "answer")
	ret := fn.Body[0].Kind.(ast.ReturnStmt)
	require.Equal(t, ast.I64, ret.Value.Type_)
}

// Parameter and field declarations carry no surface type annotation, and
// the resolver never writes inferred types back onto Parameter/Field
// nodes themselves (only onto Expr nodes via exprTypes); inference shows
// up at use sites instead, here the return expression's own type.
func TestResolveInfersParamTypeFromArithmeticUse(t *testing.T) {
	program, err := resolve(t, "fn add with a, b\n  return a + b\n")
	require.Nil(t, err)

	fn := findFunc(program, "add")
	ret := fn.Body[0].Kind.(ast.ReturnStmt)
	require.Equal(t, ast.I64, ret.Value.Type_)
}

func TestResolveComparisonYieldsBool(t *testing.T) {
	program, err := resolve(t, "fn f with a, b\n  return a gt b\n")
	require.Nil(t, err)

	fn := findFunc(program, "f")
	ret := fn.Body[0].Kind.(ast.ReturnStmt)
	require.Equal(t, ast.Bool, ret.Value.Type_)
}

// Like parameters, Field.Type_ is never written back by the resolver;
// a field's inferred type shows up on an access expression instead.
func TestResolveObjectFieldTypesFromUse(t *testing.T) {
	program, err := resolve(t, "object Point\n  x\n  y\n\nfn origin\n  p is Point!(0, 0)\n  return p.x\n")
	require.Nil(t, err)

	fn := findFunc(program, "origin")
	ret := fn.Body[1].Kind.(ast.ReturnStmt)
	require.Equal(t, ast.I64, ret.Value.Type_)
}

func TestResolveReportsMismatchBetweenIntAndBool(t *testing.T) {
	_, err := resolve(t, "fn f\n  x is 1\n  x is true\n")
	require.NotNil(t, err)
}

// `log` is never declared by the program (it's a builtin extern, §4.4), so
// it carries no globalEnv entry the way a user fn does; inferCall special
// cases it instead of failing with errUnknownVar.
func TestResolveBareLogCallResolvesToUnit(t *testing.T) {
	program, err := resolve(t, "fn greet with name, greeting\n  log '{greeting}, {name}'\n")
	require.Nil(t, err)

	fn := findFunc(program, "greet")
	stmt := fn.Body[0].Kind.(ast.ExpressionStmt)
	require.Equal(t, ast.Unit, stmt.Expr.Type_)
}

// log accepts any printable value, so two call sites in the same program
// passing different argument types must not unify against one shared
// builtin signature.
func TestResolveBareLogCallAcceptsDifferingArgTypesAcrossCallSites(t *testing.T) {
	_, err := resolve(t, "fn f\n  log 'hi'\n  log 42\n")
	require.Nil(t, err)
}

// A user-declared `log` function shadows the builtin the same way any
// other globalEnv entry would: calling it goes through the ordinary
// IsCallable path against its own declared signature (i64 -> i64) rather
// than the builtin's always-Unit special case.
func TestResolveUserDeclaredLogShadowsBuiltin(t *testing.T) {
	program, err := resolve(t, "fn log with n\n  return n + 1\n\nfn f\n  return log(5)\n")
	require.Nil(t, err)

	fn := findFunc(program, "f")
	ret := fn.Body[0].Kind.(ast.ReturnStmt)
	require.Equal(t, ast.I64, ret.Value.Type_)
}
