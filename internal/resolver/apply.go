package resolver

import (
	"github.com/coral-lang/coralc/internal/ast"
	"github.com/coral-lang/coralc/internal/types"
)

// applyProgram is Phase 4 (§4.3): walk the AST once more and write back
// every expression's final surface type through the solved substitution.
func (r *Resolver) applyProgram(program *ast.Program, subst types.Substitution) {
	for _, s := range program.Statements {
		r.applyStmt(s, subst)
	}
}

func (r *Resolver) applyExpr(e *ast.Expr, subst types.Substitution) {
	if e == nil {
		return
	}
	if t, ok := r.exprTypes[e]; ok {
		e.Type_ = toSurface(subst, t)
	}

	switch k := e.Kind.(type) {
	case ast.BinaryExpr:
		r.applyExpr(k.Left, subst)
		r.applyExpr(k.Right, subst)
	case ast.UnaryExpr:
		r.applyExpr(k.Operand, subst)
	case ast.CallExpr:
		r.applyExpr(k.Callee, subst)
		for _, a := range k.Args {
			r.applyExpr(a, subst)
		}
		for _, na := range k.NamedArgs {
			r.applyExpr(na.Value, subst)
		}
	case ast.IndexExpr:
		r.applyExpr(k.Target, subst)
		r.applyExpr(k.Index, subst)
	case ast.FieldAccessExpr:
		r.applyExpr(k.Target, subst)
	case ast.ListLiteralExpr:
		for _, el := range k.Elements {
			r.applyExpr(el, subst)
		}
	case ast.MapLiteralExpr:
		for _, entry := range k.Entries {
			r.applyExpr(entry.Key, subst)
			r.applyExpr(entry.Value, subst)
		}
	case ast.ListAppendExpr:
		r.applyExpr(k.List, subst)
		r.applyExpr(k.Value, subst)
	case ast.MapInsertExpr:
		r.applyExpr(k.Map, subst)
		r.applyExpr(k.Key, subst)
		r.applyExpr(k.Value, subst)
	case ast.AcrossExpr:
		r.applyExpr(k.Source, subst)
		for _, link := range k.Links {
			for _, a := range link.Args {
				r.applyExpr(a, subst)
			}
		}
	case ast.StringInterpolationExpr:
		for _, part := range k.Parts {
			if part.IsExpr {
				r.applyExpr(part.Expr, subst)
			}
		}
	case ast.IfExpr:
		r.applyExpr(k.Cond, subst)
		r.applyExpr(k.Then, subst)
		r.applyExpr(k.Else, subst)
	case ast.BlockExpr:
		for _, st := range k.Statements {
			r.applyStmt(st, subst)
		}
	case ast.LambdaExpr:
		r.applyExpr(k.Body, subst)
	case ast.PipeExpr:
		r.applyExpr(k.Value, subst)
	case ast.IoExpr:
		r.applyExpr(k.Value, subst)
	case ast.ErrorChainExpr:
		r.applyExpr(k.Wrapped, subst)
		r.applyHandler(k.Handler, subst)
	}
}

func (r *Resolver) applyHandler(h ast.ErrorHandler, subst types.Substitution) {
	for _, action := range h.Actions {
		switch a := action.(type) {
		case ast.LogAction:
			r.applyExpr(a.Arg, subst)
		case ast.ReturnAction:
			r.applyExpr(a.Arg, subst)
		case ast.CustomAction:
			r.applyExpr(a.Expr, subst)
		}
	}
}

func (r *Resolver) applyBlock(stmts []*ast.Stmt, subst types.Substitution) {
	for _, s := range stmts {
		r.applyStmt(s, subst)
	}
}

func (r *Resolver) applyStmt(s *ast.Stmt, subst types.Substitution) {
	if s == nil {
		return
	}
	switch k := s.Kind.(type) {
	case ast.ExpressionStmt:
		r.applyExpr(k.Expr, subst)
	case ast.AssignmentStmt:
		r.applyExpr(k.Target, subst)
		r.applyExpr(k.Value, subst)
	case ast.IfStmt:
		r.applyExpr(k.Cond, subst)
		r.applyBlock(k.Then, subst)
		r.applyBlock(k.Else, subst)
	case ast.UnlessStmt:
		r.applyExpr(k.Cond, subst)
		r.applyBlock(k.Body, subst)
	case ast.WhileStmt:
		r.applyExpr(k.Cond, subst)
		r.applyBlock(k.Body, subst)
	case ast.UntilStmt:
		r.applyExpr(k.Cond, subst)
		r.applyBlock(k.Body, subst)
	case ast.IterateStmt:
		r.applyExpr(k.Iterable, subst)
		r.applyBlock(k.Body, subst)
	case ast.ForStmt:
		r.applyExpr(k.Iterable, subst)
		r.applyBlock(k.Body, subst)
	case ast.ReturnStmt:
		r.applyExpr(k.Value, subst)
	case ast.FunctionStmt:
		r.applyBlock(k.Body, subst)
	case ast.ObjectStmt:
		for _, m := range k.Methods {
			r.applyBlock(m.Body, subst)
		}
		for _, f := range k.Fields {
			r.applyExpr(f.DefaultValue, subst)
		}
	case ast.StoreStmt:
		for _, m := range k.Methods {
			r.applyBlock(m.Body, subst)
		}
		if k.Make != nil {
			r.applyBlock(k.Make.Body, subst)
		}
	case ast.ActorStmt:
		for _, h := range k.Handlers {
			r.applyBlock(h.Body, subst)
		}
		if k.Make != nil {
			r.applyBlock(k.Make.Body, subst)
		}
	case ast.ErrorHandlerStmt:
		r.applyStmt(k.Wrapped, subst)
		r.applyHandler(k.Handler, subst)
	case ast.PipeStmt:
		r.applyExpr(k.Value, subst)
	case ast.IoStmt:
		r.applyExpr(k.Value, subst)
	}
}
