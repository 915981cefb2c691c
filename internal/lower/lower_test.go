package lower

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coral-lang/coralc/internal/ast"
)

func span() ast.SourceSpan { return ast.DefaultSpan() }

func lit(k ast.LiteralKind) ast.Literal { return ast.Literal{Kind: k} }

func intLit(v int64) *ast.Expr {
	return ast.NewExpr(span(), ast.LiteralExpr{Value: ast.Literal{Kind: ast.LitInteger, Int: v}})
}

func ident(name string, t ast.Type) *ast.Expr {
	e := ast.NewExpr(span(), ast.IdentifierExpr{Name: name})
	e.Type_ = t
	return e
}

func exprStmt(e *ast.Expr) *ast.Stmt { return ast.NewStmt(span(), ast.ExpressionStmt{Expr: e}) }

func retStmt(e *ast.Expr) *ast.Stmt { return ast.NewStmt(span(), ast.ReturnStmt{Value: e}) }

func funcDecl(name string, ret ast.Type, body []*ast.Stmt) *ast.Stmt {
	return ast.NewStmt(span(), ast.FunctionStmt{Name: name, ReturnType: ret, Body: body})
}

func program(stmts ...*ast.Stmt) *ast.Program {
	return &ast.Program{Statements: stmts, Span: span()}
}

func findFunc(m *Module, name string) *Function {
	for _, f := range m.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func lastInstr(fn *Function) Instr {
	b := fn.Blocks[len(fn.Blocks)-1]
	return b.Instrs[len(b.Instrs)-1]
}

func TestLowerFunctionDeclReturnsValue(t *testing.T) {
	p := program(funcDecl("answer", ast.I64, []*ast.Stmt{
		retStmt(intLit(42)),
	}))
	m := Lower(p)

	fn := findFunc(m, "answer")
	require.NotNil(t, fn)
	require.Equal(t, I64{}, fn.Return)
	require.Len(t, fn.Blocks, 1)

	last := lastInstr(fn)
	require.Equal(t, OpReturn, last.Op)
	require.Equal(t, ConstInt{V: 42}, last.Args[0])
}

func TestLowerFunctionWithoutReturnGetsImplicitBareReturn(t *testing.T) {
	p := program(funcDecl("noop", nil, nil))
	m := Lower(p)

	fn := findFunc(m, "noop")
	require.NotNil(t, fn)
	last := lastInstr(fn)
	require.Equal(t, OpReturn, last.Op)
	require.False(t, last.HasDst)
	require.Empty(t, last.Args)
}

func TestLowerBinaryArithmetic(t *testing.T) {
	add := ast.NewExpr(span(), ast.BinaryExpr{Op: ast.OpAdd, Left: intLit(1), Right: intLit(2)})
	add.Type_ = ast.I64
	p := program(funcDecl("sum", ast.I64, []*ast.Stmt{retStmt(add)}))
	m := Lower(p)

	fn := findFunc(m, "sum")
	require.NotNil(t, fn)
	block := fn.Blocks[0]
	require.Len(t, block.Instrs, 2) // OpAdd then OpReturn
	require.Equal(t, OpAdd, block.Instrs[0].Op)
	require.True(t, block.Instrs[0].HasDst)
	require.Equal(t, I64{}, block.Instrs[0].Type)
}

func TestLowerComparisonYieldsI1(t *testing.T) {
	cmp := ast.NewExpr(span(), ast.BinaryExpr{Op: ast.OpLt, Left: intLit(1), Right: intLit(2)})
	cmp.Type_ = ast.Bool
	p := program(funcDecl("less", ast.Bool, []*ast.Stmt{retStmt(cmp)}))
	m := Lower(p)

	fn := findFunc(m, "less")
	instr := fn.Blocks[0].Instrs[0]
	require.Equal(t, OpLt, instr.Op)
	require.Equal(t, I1{}, instr.Type)
}

func TestLowerIfStmtBuildsThenElseMergeBlocks(t *testing.T) {
	cond := ident("flag", ast.Bool)
	ifStmt := ast.NewStmt(span(), ast.IfStmt{
		Cond: cond,
		Then: []*ast.Stmt{retStmt(intLit(1))},
		Else: []*ast.Stmt{retStmt(intLit(2))},
	})
	p := program(funcDecl("branch", ast.I64, []*ast.Stmt{
		ast.NewStmt(span(), ast.AssignmentStmt{
			Target: ident("flag", ast.Bool),
			Value:  ast.NewExpr(span(), ast.LiteralExpr{Value: lit(ast.LitYes)}),
		}),
		ifStmt,
	}))
	m := Lower(p)

	fn := findFunc(m, "branch")
	require.NotNil(t, fn)
	// entry + then + else + merge
	require.Len(t, fn.Blocks, 4)

	entry := fn.Blocks[0]
	last := entry.Instrs[len(entry.Instrs)-1]
	require.Equal(t, OpCondBr, last.Op)
	require.Len(t, last.Blocks, 2)
}

func TestLowerUnlessFlipsBranchTargetsWithoutNot(t *testing.T) {
	cond := ident("flag", ast.Bool)
	unless := ast.NewStmt(span(), ast.UnlessStmt{
		Cond: cond,
		Body: []*ast.Stmt{retStmt(intLit(1))},
	})
	p := program(funcDecl("guarded", ast.I64, []*ast.Stmt{unless}))
	m := Lower(p)

	fn := findFunc(m, "guarded")
	entry := fn.Blocks[0]
	last := entry.Instrs[len(entry.Instrs)-1]
	require.Equal(t, OpCondBr, last.Op)
	// no synthesized "not" before the branch
	for _, instr := range entry.Instrs {
		require.NotEqual(t, OpNot, instr.Op)
	}
}

func TestLowerIfExprWithoutElseUsesPlaceholderAndPhi(t *testing.T) {
	ifExpr := ast.NewExpr(span(), ast.IfExpr{
		Cond: ident("flag", ast.Bool),
		Then: intLit(7),
		Else: nil,
	})
	ifExpr.Type_ = ast.I64
	p := program(funcDecl("maybe", ast.I64, []*ast.Stmt{retStmt(ifExpr)}))
	m := Lower(p)

	fn := findFunc(m, "maybe")
	require.NotNil(t, fn)

	var phi *Instr
	for _, b := range fn.Blocks {
		for i := range b.Instrs {
			if b.Instrs[i].Op == OpPhi {
				phi = &b.Instrs[i]
			}
		}
	}
	require.NotNil(t, phi)
	require.Len(t, phi.Args, 2)
	require.Contains(t, phi.Args, ConstInt{V: 7})
	require.Contains(t, phi.Args, ConstInt{V: 0}) // zeroValue(I64) placeholder
}

func TestLowerWhileLoopHasHeadBodyExitBlocks(t *testing.T) {
	w := ast.NewStmt(span(), ast.WhileStmt{
		Cond: ident("flag", ast.Bool),
		Body: []*ast.Stmt{exprStmt(intLit(1))},
	})
	p := program(funcDecl("loopy", nil, []*ast.Stmt{w}))
	m := Lower(p)

	fn := findFunc(m, "loopy")
	require.NotNil(t, fn)
	require.GreaterOrEqual(t, len(fn.Blocks), 3)
}

func TestLowerListLiteralAllocatesHeaderAndStoresElements(t *testing.T) {
	listExpr := ast.NewExpr(span(), ast.ListLiteralExpr{Elements: []*ast.Expr{intLit(1), intLit(2), intLit(3)}})
	listExpr.Type_ = ast.List{Elem: ast.I64}
	p := program(funcDecl("build", ast.List{Elem: ast.I64}, []*ast.Stmt{retStmt(listExpr)}))
	m := Lower(p)

	fn := findFunc(m, "build")
	require.NotNil(t, fn)

	var mallocCount, storeCount int
	for _, instr := range fn.Blocks[0].Instrs {
		switch instr.Op {
		case OpMalloc:
			mallocCount++
		case OpStore:
			storeCount++
		}
	}
	require.Equal(t, 2, mallocCount)           // header + backing array
	require.GreaterOrEqual(t, storeCount, 3+3) // 3 elements + 3 header fields
}

func TestLowerObjectConstructionStoresFieldsInDeclarationOrder(t *testing.T) {
	objectDecl := ast.ObjectStmt{
		Name: "Point",
		Fields: []ast.Field{
			{Name: "x", Type_: ast.I64},
			{Name: "y", Type_: ast.I64},
		},
	}
	construct := ast.NewExpr(span(), ast.CallExpr{
		Callee:         ident("Point", ast.Object{Name: "Point"}),
		Args:           []*ast.Expr{intLit(3), intLit(4)},
		IsConstruction: true,
	})
	construct.Type_ = ast.Object{Name: "Point"}
	p := program(
		ast.NewStmt(span(), objectDecl),
		funcDecl("make_point", ast.Object{Name: "Point"}, []*ast.Stmt{retStmt(construct)}),
	)
	m := Lower(p)

	var pointStruct *StructDecl
	for i := range m.Structs {
		if m.Structs[i].Name == "Point" {
			pointStruct = &m.Structs[i]
		}
	}
	require.NotNil(t, pointStruct)
	require.Equal(t, []StructField{{Name: "x", Type: I64{}}, {Name: "y", Type: I64{}}}, pointStruct.Fields)

	fn := findFunc(m, "make_point")
	require.NotNil(t, fn)
	var fields []string
	for _, instr := range fn.Blocks[0].Instrs {
		if instr.Op == OpGEP {
			fields = append(fields, instr.Field)
		}
	}
	require.Equal(t, []string{"x", "y"}, fields)
}

func TestLowerObjectMethodMangledNameAndSelfReceiver(t *testing.T) {
	objectDecl := ast.ObjectStmt{
		Name: "Counter",
		Fields: []ast.Field{
			{Name: "n", Type_: ast.I64},
		},
		Methods: []ast.ObjectMethod{
			{Name: "value", ReturnType: ast.I64, Body: []*ast.Stmt{retStmt(intLit(0))}},
		},
	}
	p := program(ast.NewStmt(span(), objectDecl))
	m := Lower(p)

	fn := findFunc(m, "Counter_value")
	require.NotNil(t, fn)
	require.Len(t, fn.Params, 1)
	require.Equal(t, "self", fn.Params[0].Name)
	require.Equal(t, Ptr{Elem: StructRef{Name: "Counter"}}, fn.Params[0].Type)
}

func TestLowerActorHandlerMangledWithOnPrefix(t *testing.T) {
	actorDecl := ast.ActorStmt{
		Name: "Worker",
		Handlers: []ast.MessageHandler{
			{MessageType: "ping", Body: []*ast.Stmt{retStmt(nil)}},
		},
	}
	p := program(ast.NewStmt(span(), actorDecl))
	m := Lower(p)

	fn := findFunc(m, "Worker_on_ping")
	require.NotNil(t, fn)
	require.Equal(t, "self", fn.Params[0].Name)
}

func TestLowerErrLiteralIsDiscriminatorFlag(t *testing.T) {
	errExpr := ast.NewExpr(span(), ast.LiteralExpr{Value: lit(ast.LitErr)})
	p := program(funcDecl("fails", ast.Bool, []*ast.Stmt{retStmt(errExpr)}))
	m := Lower(p)

	fn := findFunc(m, "fails")
	last := lastInstr(fn)
	require.Equal(t, ConstBool{V: true}, last.Args[0])
}

func TestLowerNowLiteralRegistersClockExtern(t *testing.T) {
	nowExpr := ast.NewExpr(span(), ast.LiteralExpr{Value: lit(ast.LitNow)})
	p := program(funcDecl("ts", ast.I64, []*ast.Stmt{retStmt(nowExpr)}))
	m := Lower(p)

	var found bool
	for _, e := range m.Externs {
		if e.Name == "clock_now" {
			found = true
		}
	}
	require.True(t, found)
}

func TestMangleMethod(t *testing.T) {
	require.Equal(t, "Point_move", MangleMethod("Point", "move"))
}

func TestSizeOf(t *testing.T) {
	require.Equal(t, int64(8), sizeOf(I64{}))
	require.Equal(t, int64(1), sizeOf(I1{}))
	require.Equal(t, int64(1), sizeOf(I8{}))
	require.Equal(t, int64(8), sizeOf(Ptr{Elem: I64{}}))
}

func TestToTypeRef(t *testing.T) {
	require.Equal(t, I64{}, toTypeRef(ast.I64))
	require.Equal(t, F64{}, toTypeRef(ast.F64))
	require.Equal(t, I1{}, toTypeRef(ast.Bool))
	require.Equal(t, Ptr{Elem: I8{}}, toTypeRef(ast.String_))
	require.Equal(t, VoidT{}, toTypeRef(ast.Unit))
}
