// Package resolver implements §4.3: a four-phase Hindley–Milner resolver
// with structural objects/stores/actors and a four-effect tracking system,
// grounded on CWBudde-go-dws's internal/semantic analyzer passes and
// original_source/src/resolver.rs + resolver/inference.rs.
package resolver

import (
	"github.com/coral-lang/coralc/internal/ast"
	"github.com/coral-lang/coralc/internal/lexer"
	"github.com/coral-lang/coralc/internal/types"
)

// Resolver holds the state threaded through all four phases. One Resolver
// resolves exactly one Program.
type Resolver struct {
	scope *Scope // diagnostics-only lexical symbol table (§3)

	globalEnv *typeEnv // top-level function/variable inference types
	typeNames map[string]types.Type

	objectDecls map[string]*ast.ObjectStmt
	storeDecls  map[string]*ast.StoreStmt
	actorDecls  map[string]*ast.ActorStmt

	constraints []types.Constraint
	exprTypes   map[*ast.Expr]types.Type

	// currentReturn is the enclosing function/method's inferred return
	// type, used to give Err-literal elaboration (§9) a Result-or-not hint.
	currentReturn types.Type

	errs []*TypeError
}

func New() *Resolver {
	return &Resolver{
		scope:       NewScope(nil),
		globalEnv:   newTypeEnv(nil),
		typeNames:   map[string]types.Type{},
		objectDecls: map[string]*ast.ObjectStmt{},
		storeDecls:  map[string]*ast.StoreStmt{},
		actorDecls:  map[string]*ast.ActorStmt{},
		exprTypes:   map[*ast.Expr]types.Type{},
	}
}

// Resolve runs all four phases over program. On success every Expr.Type_ in
// the tree is concrete; on the first unrecoverable constraint failure it
// returns the TypeError (§4.3's contract — the resolver stops at the first
// failure rather than collecting a list, mirroring a classical HM checker).
func Resolve(program *ast.Program) (*ast.Program, *TypeError) {
	r := New()

	r.collectDeclarations(program)

	env := r.globalEnv
	for _, stmt := range program.Statements {
		r.inferStmt(stmt, env)
	}

	if err := r.firstErr(); err != nil {
		return program, err
	}

	subst, err := Solve(r.constraints)
	if err != nil {
		return program, err
	}

	r.applyProgram(program, subst)
	return program, nil
}

// Phase 1 — declaration collection (§4.3): install every top-level
// Object/Store/Actor/Function's declared signature, with fresh type
// variables standing in for every unannotated slot, so later references
// anywhere in the program (including forward references) resolve.
func (r *Resolver) collectDeclarations(program *ast.Program) {
	for _, stmt := range program.Statements {
		pos := lexer.Position{Line: stmt.Span.StartLine, Column: stmt.Span.StartCol}
		switch k := stmt.Kind.(type) {
		case ast.FunctionStmt:
			r.scope.Define(k.Name, SymFunction, pos)
			r.globalEnv.define(k.Name, r.functionSignature(k.Params, k.ReturnType))

		case ast.ObjectStmt:
			r.scope.Define(k.Name, SymObject, pos)
			r.objectDecls[k.Name] = &k
			r.typeNames[k.Name] = r.objectSignature(k)

		case ast.StoreStmt:
			r.scope.Define(k.Name, SymStore, pos)
			r.storeDecls[k.Name] = &k
			r.typeNames[k.Name] = r.storeSignature(k)

		case ast.ActorStmt:
			r.scope.Define(k.Name, SymActor, pos)
			r.actorDecls[k.Name] = &k
			r.typeNames[k.Name] = r.actorSignature(k)
		}
	}
}

func (r *Resolver) functionSignature(params []ast.Parameter, ret ast.Type) types.Function {
	pts := make([]types.Type, len(params))
	for i, p := range params {
		pts[i] = fromSurface(p.Type_)
	}
	return types.Function{Params: pts, Return: fromSurface(ret), Effects: types.EffectSet{}}
}

func (r *Resolver) objectSignature(decl ast.ObjectStmt) types.Object {
	fields := make(map[string]types.Type, len(decl.Fields))
	for _, f := range decl.Fields {
		fields[f.Name] = fromSurface(f.Type_)
	}
	methods := make(map[string]types.Type, len(decl.Methods))
	for _, m := range decl.Methods {
		methods[m.Name] = r.functionSignature(m.Params, m.ReturnType)
	}
	addBuiltinObjectMethods(methods, fields)
	return types.Object{Name: decl.Name, Fields: fields, Methods: methods}
}

func (r *Resolver) storeSignature(decl ast.StoreStmt) types.Store {
	fields := make(map[string]types.Type, len(decl.Fields))
	for _, f := range decl.Fields {
		fields[f.Name] = fromSurface(f.Type_)
	}
	methods := make(map[string]types.Type, len(decl.Methods))
	for _, m := range decl.Methods {
		methods[m.Name] = r.functionSignature(m.Params, m.ReturnType)
	}
	valueType := types.Var{ID: types.NewTypeVar()}
	addBuiltinObjectMethods(methods, fields)
	addBuiltinStoreMethods(methods, valueType)
	return types.Store{Name: decl.Name, ValueType: valueType, Fields: fields, Methods: methods}
}

func (r *Resolver) actorSignature(decl ast.ActorStmt) types.Actor {
	fields := make(map[string]types.Type, len(decl.Fields))
	for _, f := range decl.Fields {
		fields[f.Name] = fromSurface(f.Type_)
	}
	msgs := make(map[string]types.Type, len(decl.Handlers))
	for _, h := range decl.Handlers {
		msgs[h.MessageType] = r.handlerSignature(h.Params)
	}
	methods := map[string]types.Type{}
	addBuiltinActorMethods(methods)
	return types.Actor{Name: decl.Name, MessageTypes: msgs, Fields: fields, Methods: methods}
}

// handlerSignature builds a message handler's callable type with an
// implicit leading actor-instance parameter, grounded on
// original_source/src/resolver.rs's create_actor_type.
func (r *Resolver) handlerSignature(params []ast.Parameter) types.Function {
	pts := make([]types.Type, 0, len(params)+1)
	pts = append(pts, types.Var{ID: types.NewTypeVar()}) // implicit actor instance
	for _, p := range params {
		pts = append(pts, fromSurface(p.Type_))
	}
	return types.Function{Params: pts, Return: types.Unit, Effects: types.EffectSet{ActorSend: true}}
}

// addBuiltinObjectMethods installs the `make`/`as` methods every object
// carries, grounded on original_source's add_builtin_object_methods.
func addBuiltinObjectMethods(methods map[string]types.Type, fields map[string]types.Type) {
	makeParams := make([]types.Type, 0, len(fields))
	for _, ft := range fields {
		makeParams = append(makeParams, ft)
	}
	methods["make"] = types.Function{Params: makeParams, Return: types.Var{ID: types.NewTypeVar()}, Effects: types.EffectSet{}}
	methods["as"] = types.Function{Params: []types.Type{types.String_}, Return: types.Var{ID: types.NewTypeVar()}, Effects: types.EffectSet{}}
}

// addBuiltinStoreMethods installs get/set/update plus the with_id/find
// query helpers, grounded on original_source's create_store_type /
// add_store_methods.
func addBuiltinStoreMethods(methods map[string]types.Type, valueType types.Type) {
	methods["get"] = types.Function{Params: nil, Return: valueType, Effects: types.EffectSet{Store: true}}
	methods["set"] = types.Function{Params: []types.Type{valueType}, Return: types.Unit, Effects: types.EffectSet{Store: true, Mutation: true}}
	methods["update"] = types.Function{
		Params: []types.Type{types.Function{Params: []types.Type{valueType}, Return: valueType, Effects: types.EffectSet{}}},
		Return: types.Unit, Effects: types.EffectSet{Store: true, Mutation: true},
	}
	methods["with_id"] = types.Function{Params: []types.Type{types.Int}, Return: types.Var{ID: types.NewTypeVar()}, Effects: types.EffectSet{Store: true}}
	methods["find"] = types.Function{
		Params: []types.Type{types.Var{ID: types.NewTypeVar()}},
		Return: types.ListT{Elem: types.Var{ID: types.NewTypeVar()}}, Effects: types.EffectSet{Store: true},
	}
}

// addBuiltinActorMethods installs the `!`-send method every actor carries,
// grounded on original_source's add_actor_methods.
func addBuiltinActorMethods(methods map[string]types.Type) {
	methods["send"] = types.Function{
		Params: []types.Type{types.Var{ID: types.NewTypeVar()}},
		Return: types.Unit, Effects: types.EffectSet{ActorSend: true},
	}
}

// emit appends a constraint generated during Phase 2.
func (r *Resolver) emit(c types.Constraint) { r.constraints = append(r.constraints, c) }

// recordExpr associates the inferred type with e for Phase 4's write-back.
func (r *Resolver) recordExpr(e *ast.Expr, t types.Type) types.Type {
	r.exprTypes[e] = t
	return t
}
