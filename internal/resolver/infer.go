package resolver

import (
	"github.com/coral-lang/coralc/internal/ast"
	"github.com/coral-lang/coralc/internal/types"
)

// fail records the first TypeError encountered and returns a fresh Var so
// that generation can keep walking the tree without crashing (§4.3's
// contract stops the resolver at the first failure; we still visit the
// rest of the tree so later nodes keep a well-formed, if meaningless,
// inferred type for diagnostics).
func (r *Resolver) fail(err *TypeError) types.Type {
	if r.errs == nil || len(r.errs) == 0 {
		r.errs = append(r.errs, err)
	}
	return types.Var{ID: types.NewTypeVar()}
}

func (r *Resolver) firstErr() *TypeError {
	if len(r.errs) == 0 {
		return nil
	}
	return r.errs[0]
}

// inferLiteral implements §4.3's literal table, grounded on
// original_source/src/resolver.rs's infer_literal.
func inferLiteral(lit ast.Literal) types.Type {
	switch lit.Kind {
	case ast.LitInteger:
		return types.Int
	case ast.LitFloat:
		return types.Float
	case ast.LitString:
		return types.String_
	case ast.LitBool:
		return types.Bool
	case ast.LitUnit, ast.LitNo, ast.LitNone:
		return types.Unit
	case ast.LitYes:
		return types.Bool
	case ast.LitEmpty:
		return types.Var{ID: types.NewTypeVar()}
	case ast.LitNow:
		return types.Int
	case ast.LitErr:
		return ElaborateErr(false)
	}
	return types.Var{ID: types.NewTypeVar()}
}

// inferExpr is Phase 2's expression half: it recurses, emits constraints,
// and records the inferred type of every node for Phase 4's write-back.
func (r *Resolver) inferExpr(e *ast.Expr, env *typeEnv) types.Type {
	var t types.Type
	switch k := e.Kind.(type) {
	case ast.LiteralExpr:
		t = inferLiteral(k.Value)

	case ast.IdentifierExpr:
		if found, ok := env.lookup(k.Name); ok {
			t = found
		} else {
			t = r.fail(errUnknownVar(k.Name))
		}

	case ast.BinaryExpr:
		t = r.inferBinary(e, k, env)

	case ast.UnaryExpr:
		t = r.inferUnary(k, env)

	case ast.CallExpr:
		t = r.inferCall(e, k, env)

	case ast.IndexExpr:
		objType := r.inferExpr(k.Target, env)
		indexType := r.inferExpr(k.Index, env)
		elem := types.Var{ID: types.NewTypeVar()}
		// Mirrors original_source's Index rule: only constrain the index
		// when the container's shape is already concrete at this point in
		// generation; a Var container is left to later uses.
		switch c := objType.(type) {
		case types.ListT:
			r.emit(types.Equal(indexType, types.Int))
		case types.MapT:
			r.emit(types.Equal(indexType, c.Key))
		}
		t = elem

	case ast.FieldAccessExpr:
		objType := r.inferExpr(k.Target, env)
		fieldType := types.Var{ID: types.NewTypeVar()}
		r.emit(types.HasField(objType, k.Field, fieldType))
		t = fieldType

	case ast.ListLiteralExpr:
		elemVar := types.Var{ID: types.NewTypeVar()}
		for _, el := range k.Elements {
			elType := r.inferExpr(el, env)
			r.emit(types.Equal(elemVar, elType))
		}
		t = types.ListT{Elem: elemVar}

	case ast.MapLiteralExpr:
		keyVar := types.Var{ID: types.NewTypeVar()}
		valVar := types.Var{ID: types.NewTypeVar()}
		for _, entry := range k.Entries {
			kt := r.inferExpr(entry.Key, env)
			vt := r.inferExpr(entry.Value, env)
			r.emit(types.Equal(keyVar, kt))
			r.emit(types.Equal(valVar, vt))
		}
		t = types.MapT{Key: keyVar, Value: valVar}

	case ast.ListAppendExpr:
		listType := r.inferExpr(k.List, env)
		elType := r.inferExpr(k.Value, env)
		elemVar := types.Var{ID: types.NewTypeVar()}
		r.emit(types.Equal(listType, types.ListT{Elem: elemVar}))
		r.emit(types.Equal(elemVar, elType))
		t = types.Unit

	case ast.MapInsertExpr:
		mapType := r.inferExpr(k.Map, env)
		keyType := r.inferExpr(k.Key, env)
		valType := r.inferExpr(k.Value, env)
		keyVar := types.Var{ID: types.NewTypeVar()}
		valVar := types.Var{ID: types.NewTypeVar()}
		r.emit(types.Equal(mapType, types.MapT{Key: keyVar, Value: valVar}))
		r.emit(types.Equal(keyVar, keyType))
		r.emit(types.Equal(valVar, valType))
		t = types.Unit

	case ast.AcrossExpr:
		t = r.inferAcross(k, env)

	case ast.StringInterpolationExpr:
		for _, part := range k.Parts {
			if part.IsExpr {
				r.inferExpr(part.Expr, env)
			}
		}
		t = types.String_

	case ast.IfExpr:
		condType := r.inferExpr(k.Cond, env)
		r.emit(types.Equal(condType, types.Bool))
		thenType := r.inferExpr(k.Then, env)
		var elseType types.Type = types.Unit
		if k.Else != nil {
			elseType = r.inferExpr(k.Else, env)
		}
		r.emit(types.Equal(thenType, elseType))
		t = thenType

	case ast.BlockExpr:
		t = types.Unit
		for _, s := range k.Statements {
			t = r.inferStmt(s, env)
		}

	case ast.LambdaExpr:
		child := env.child()
		params := make([]types.Type, len(k.Params))
		for i, p := range k.Params {
			pt := fromSurface(p.Type_)
			child.define(p.Name, pt)
			params[i] = pt
		}
		ret := r.inferExpr(k.Body, child)
		t = types.Function{Params: params, Return: ret, Effects: types.EffectSet{}}

	case ast.PipeExpr:
		valType := r.inferExpr(k.Value, env)
		t = types.PipeT{Elem: valType}

	case ast.IoExpr:
		r.inferExpr(k.Value, env)
		t = types.Unit

	case ast.ErrorChainExpr:
		wrapped := r.inferExpr(k.Wrapped, env)
		for _, action := range k.Handler.Actions {
			switch a := action.(type) {
			case ast.LogAction:
				if a.Arg != nil {
					r.inferExpr(a.Arg, env)
				}
			case ast.ReturnAction:
				if a.Arg != nil {
					r.inferExpr(a.Arg, env)
				}
			case ast.CustomAction:
				r.inferExpr(a.Expr, env)
			}
		}
		t = wrapped

	default:
		t = types.Var{ID: types.NewTypeVar()}
	}
	return r.recordExpr(e, t)
}

func (r *Resolver) inferBinary(e *ast.Expr, k ast.BinaryExpr, env *typeEnv) types.Type {
	left := r.inferExpr(k.Left, env)
	right := r.inferExpr(k.Right, env)

	switch {
	case k.Op.IsArithmetic():
		r.emit(types.Equal(left, right))
		return left
	case k.Op.IsComparison(), k.Op.IsEquality():
		r.emit(types.Equal(left, right))
		return types.Bool
	case k.Op.IsLogical():
		r.emit(types.Equal(left, types.Bool))
		r.emit(types.Equal(right, types.Bool))
		return types.Bool
	case k.Op.IsBitwise():
		r.emit(types.Equal(left, types.Int))
		r.emit(types.Equal(right, types.Int))
		return types.Int
	}
	return types.Var{ID: types.NewTypeVar()}
}

func (r *Resolver) inferUnary(k ast.UnaryExpr, env *typeEnv) types.Type {
	operand := r.inferExpr(k.Operand, env)
	switch k.Op {
	case ast.OpNot:
		r.emit(types.Equal(operand, types.Bool))
		return types.Bool
	case ast.OpBitNot:
		r.emit(types.Equal(operand, types.Int))
		return types.Int
	default: // OpNeg
		return operand
	}
}

// inferCall handles both ordinary calls and `Type!(...)`/`Type with ...`
// construction (§4.2's call-syntax ambiguity is already resolved by the
// parser via IsConstruction).
func (r *Resolver) inferCall(e *ast.Expr, k ast.CallExpr, env *typeEnv) types.Type {
	if k.IsConstruction {
		if ident, ok := k.Callee.Kind.(ast.IdentifierExpr); ok {
			if decl, ok := r.typeNames[ident.Name]; ok {
				return r.inferConstruction(decl, k, env)
			}
		}
	}

	if ident, ok := k.Callee.Kind.(ast.IdentifierExpr); ok && ident.Name == "log" {
		if _, shadowed := env.lookup("log"); !shadowed {
			return r.inferBuiltinLog(k, env)
		}
	}

	calleeType := r.inferExpr(k.Callee, env)
	argTypes := make([]types.Type, 0, len(k.Args))
	for _, a := range k.Args {
		argTypes = append(argTypes, r.inferExpr(a, env))
	}
	for _, na := range k.NamedArgs {
		r.inferExpr(na.Value, env)
	}
	ret := types.Var{ID: types.NewTypeVar()}
	r.emit(types.IsCallable(calleeType, argTypes, ret))
	return ret
}

// inferBuiltinLog types a bare `log` call (§4.4's builtin extern — it's
// never user-declared, so collectDeclarations never gives it a globalEnv
// entry). It takes any printable argument, so unlike an ordinary call it
// isn't routed through a single shared Function type: that would force
// every `log` call site in the program to agree on one argument type.
// Each call site's arguments are instead inferred directly and discarded.
func (r *Resolver) inferBuiltinLog(k ast.CallExpr, env *typeEnv) types.Type {
	for _, a := range k.Args {
		r.inferExpr(a, env)
	}
	for _, na := range k.NamedArgs {
		r.inferExpr(na.Value, env)
	}
	return types.Unit
}

// inferConstruction matches declared fields (by position, then by name for
// `with` arguments) against the object/store's field types.
func (r *Resolver) inferConstruction(decl types.Type, k ast.CallExpr, env *typeEnv) types.Type {
	fields := constructionFields(decl)

	order := constructionFieldOrder(r, decl)
	for i, a := range k.Args {
		argType := r.inferExpr(a, env)
		if i < len(order) {
			if ft, ok := fields[order[i]]; ok {
				r.emit(types.Equal(ft, argType))
			}
		}
	}
	for _, na := range k.NamedArgs {
		argType := r.inferExpr(na.Value, env)
		if ft, ok := fields[na.Name]; ok {
			r.emit(types.Equal(ft, argType))
		}
	}
	return decl
}

func constructionFields(decl types.Type) map[string]types.Type {
	switch d := decl.(type) {
	case types.Object:
		return d.Fields
	case types.Store:
		return d.Fields
	case types.Actor:
		return d.Fields
	}
	return map[string]types.Type{}
}

// constructionFieldOrder recovers declaration order for positional
// construction arguments, since types.Object/Store/Actor store fields in a
// map (the surface AST decl preserves order).
func constructionFieldOrder(r *Resolver, decl types.Type) []string {
	var name string
	switch d := decl.(type) {
	case types.Object:
		name = d.Name
	case types.Store:
		name = d.Name
	case types.Actor:
		name = d.Name
	}
	if od, ok := r.objectDecls[name]; ok {
		order := make([]string, len(od.Fields))
		for i, f := range od.Fields {
			order[i] = f.Name
		}
		return order
	}
	if sd, ok := r.storeDecls[name]; ok {
		order := make([]string, len(sd.Fields))
		for i, f := range sd.Fields {
			order[i] = f.Name
		}
		return order
	}
	if ad, ok := r.actorDecls[name]; ok {
		order := make([]string, len(ad.Fields))
		for i, f := range ad.Fields {
			order[i] = f.Name
		}
		return order
	}
	return nil
}

// inferAcross implements chained method calls (§4.2): each link passes the
// receiver as an implicit first argument, grounded on original_source's
// infer_method_call (self parameter prepended to the argument list).
func (r *Resolver) inferAcross(k ast.AcrossExpr, env *typeEnv) types.Type {
	recv := r.inferExpr(k.Source, env)
	var last types.Type = recv
	for _, link := range k.Links {
		argTypes := make([]types.Type, 0, len(link.Args)+1)
		argTypes = append(argTypes, recv)
		for _, a := range link.Args {
			argTypes = append(argTypes, r.inferExpr(a, env))
		}
		methodType := types.Var{ID: types.NewTypeVar()}
		r.emit(types.HasMethod(recv, link.Method, methodType))
		ret := types.Var{ID: types.NewTypeVar()}
		r.emit(types.IsCallable(methodType, argTypes, ret))
		last = ret
	}
	return last
}

// inferStmt is Phase 2's statement half; it returns the "value" of the
// statement the way original_source's infer_statement does (a block's
// type is its last statement's type), used only internally by BlockExpr.
func (r *Resolver) inferStmt(s *ast.Stmt, env *typeEnv) types.Type {
	switch k := s.Kind.(type) {
	case ast.ExpressionStmt:
		return r.inferExpr(k.Expr, env)

	case ast.AssignmentStmt:
		var hint types.Type
		if ident, ok := k.Target.Kind.(ast.IdentifierExpr); ok {
			if existing, ok := env.lookup(ident.Name); ok {
				hint = existing
			}
		}
		valueType := r.inferExprWithHint(k.Value, env, hint)
		switch targetKind := k.Target.Kind.(type) {
		case ast.IdentifierExpr:
			if existing, ok := env.lookup(targetKind.Name); ok {
				r.emit(types.Equal(existing, valueType))
			} else {
				env.define(targetKind.Name, valueType)
			}
			r.recordExpr(k.Target, valueType)
		default:
			targetType := r.inferExpr(k.Target, env)
			r.emit(types.Equal(targetType, valueType))
		}
		return types.Unit

	case ast.IfStmt:
		condType := r.inferExpr(k.Cond, env)
		r.emit(types.Equal(condType, types.Bool))
		r.inferBlock(k.Then, env.child())
		if k.Else != nil {
			r.inferBlock(k.Else, env.child())
		}
		return types.Unit

	case ast.UnlessStmt:
		condType := r.inferExpr(k.Cond, env)
		r.emit(types.Equal(condType, types.Bool))
		r.inferBlock(k.Body, env.child())
		return types.Unit

	case ast.WhileStmt:
		condType := r.inferExpr(k.Cond, env)
		r.emit(types.Equal(condType, types.Bool))
		r.inferBlock(k.Body, env.child())
		return types.Unit

	case ast.UntilStmt:
		condType := r.inferExpr(k.Cond, env)
		r.emit(types.Equal(condType, types.Bool))
		r.inferBlock(k.Body, env.child())
		return types.Unit

	case ast.IterateStmt:
		return r.inferLoop(k.Var, k.Iterable, k.Body, env)

	case ast.ForStmt:
		return r.inferLoop(k.Var, k.Iterable, k.Body, env)

	case ast.ReturnStmt:
		if k.Value != nil {
			return r.inferExprWithHint(k.Value, env, r.currentReturn)
		}
		return types.Unit

	case ast.BreakStmt, ast.ContinueStmt:
		return types.Unit

	case ast.FunctionStmt:
		r.inferFunctionBody(k, env)
		return types.Unit

	case ast.ObjectStmt:
		r.inferObjectBody(k, env)
		return types.Unit

	case ast.StoreStmt:
		r.inferStoreBody(k, env)
		return types.Unit

	case ast.ActorStmt:
		r.inferActorBody(k, env)
		return types.Unit

	case ast.ImportStmt:
		return types.Unit

	case ast.ErrorHandlerStmt:
		r.inferStmt(k.Wrapped, env)
		for _, action := range k.Handler.Actions {
			switch a := action.(type) {
			case ast.LogAction:
				if a.Arg != nil {
					r.inferExpr(a.Arg, env)
				}
			case ast.ReturnAction:
				if a.Arg != nil {
					r.inferExpr(a.Arg, env)
				}
			case ast.CustomAction:
				r.inferExpr(a.Expr, env)
			}
		}
		return types.Unit

	case ast.PipeStmt:
		r.inferExpr(k.Value, env)
		return types.Unit

	case ast.IoStmt:
		r.inferExpr(k.Value, env)
		return types.Unit
	}
	return types.Unit
}

// inferExprWithHint threads an expected type into Err-literal elaboration
// (§9's Open Question): when hint resolves to a Result, a bare Err
// elaborates to Result(fresh, fresh) instead of an unconstrained Var.
func (r *Resolver) inferExprWithHint(e *ast.Expr, env *typeEnv, hint types.Type) types.Type {
	if lit, ok := e.Kind.(ast.LiteralExpr); ok && lit.Value.Kind == ast.LitErr {
		_, isResult := hint.(types.ResultT)
		return r.recordExpr(e, ElaborateErr(isResult))
	}
	return r.inferExpr(e, env)
}

func (r *Resolver) inferBlock(stmts []*ast.Stmt, env *typeEnv) types.Type {
	var last types.Type = types.Unit
	for _, s := range stmts {
		last = r.inferStmt(s, env)
	}
	return last
}

// inferLoop implements §4.3's iteration rule for both `iterate` and `for`:
// IsIterable(iterable, fresh_elem), binding the loop variable to the
// element type in the body's scope.
func (r *Resolver) inferLoop(varName string, iterable *ast.Expr, body []*ast.Stmt, env *typeEnv) types.Type {
	iterableType := r.inferExpr(iterable, env)
	elem := types.Var{ID: types.NewTypeVar()}
	r.emit(types.IsIterable(iterableType, elem))

	child := env.child()
	child.define(varName, elem)
	r.inferBlock(body, child)
	return types.Unit
}

func (r *Resolver) inferFunctionBody(k ast.FunctionStmt, env *typeEnv) {
	sig, _ := env.lookup(k.Name)
	fn, ok := sig.(types.Function)
	if !ok {
		fn = r.functionSignature(k.Params, k.ReturnType)
	}

	child := env.child()
	for i, p := range k.Params {
		child.define(p.Name, fn.Params[i])
	}

	prevReturn := r.currentReturn
	r.currentReturn = fn.Return
	bodyType := r.inferBlock(k.Body, child)
	r.currentReturn = prevReturn

	if k.ReturnType == nil {
		r.emit(types.Equal(fn.Return, bodyType))
	}
}

func (r *Resolver) inferMethodBody(selfType types.Type, m ast.ObjectMethod, env *typeEnv) {
	child := env.child()
	child.define("self", selfType)
	var params []types.Type
	for _, p := range m.Params {
		pt := fromSurface(p.Type_)
		child.define(p.Name, pt)
		params = append(params, pt)
	}
	ret := fromSurface(m.ReturnType)
	prevReturn := r.currentReturn
	r.currentReturn = ret
	bodyType := r.inferBlock(m.Body, child)
	r.currentReturn = prevReturn
	if m.ReturnType == nil {
		r.emit(types.Equal(ret, bodyType))
	}
	_ = params
}

func (r *Resolver) inferObjectBody(k ast.ObjectStmt, env *typeEnv) {
	selfType := r.typeNames[k.Name]
	for _, m := range k.Methods {
		r.inferMethodBody(selfType, m, env)
	}
	for _, f := range k.Fields {
		if f.DefaultValue != nil {
			dt := r.inferExpr(f.DefaultValue, env)
			if obj, ok := selfType.(types.Object); ok {
				if ft, ok := obj.Fields[f.Name]; ok {
					r.emit(types.Equal(ft, dt))
				}
			}
		}
	}
}

func (r *Resolver) inferStoreBody(k ast.StoreStmt, env *typeEnv) {
	selfType := r.typeNames[k.Name]
	for _, m := range k.Methods {
		r.inferMethodBody(selfType, m, env)
	}
	if k.Make != nil {
		r.inferConstructorBody(selfType, *k.Make, env)
	}
}

func (r *Resolver) inferActorBody(k ast.ActorStmt, env *typeEnv) {
	selfType := r.typeNames[k.Name]
	for _, h := range k.Handlers {
		child := env.child()
		child.define("self", selfType)
		for _, p := range h.Params {
			child.define(p.Name, fromSurface(p.Type_))
		}
		r.inferBlock(h.Body, child)
	}
	if k.Make != nil {
		r.inferConstructorBody(selfType, *k.Make, env)
	}
}

func (r *Resolver) inferConstructorBody(selfType types.Type, ctor ast.Constructor, env *typeEnv) {
	child := env.child()
	child.define("self", selfType)
	for _, p := range ctor.Params {
		child.define(p.Name, fromSurface(p.Type_))
	}
	r.inferBlock(ctor.Body, child)
}
