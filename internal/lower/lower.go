package lower

import "github.com/coral-lang/coralc/internal/ast"

// loopCtx records the labels `break`/`continue` jump to for the innermost
// enclosing loop (§4.4).
type loopCtx struct {
	breakLabel    Label
	continueLabel Label
}

// Lowerer translates one fully-resolved Program into a Module. It is not
// reentrant — one Lowerer lowers exactly one Program.
type Lowerer struct {
	module  *Module
	strings map[string]int

	fn    *Function
	block *Block
	sym   *symtab
	loops []loopCtx

	objectDecls map[string]ast.ObjectStmt
	storeDecls  map[string]ast.StoreStmt
	actorDecls  map[string]ast.ActorStmt

	lambdaCounter int
}

// New returns a Lowerer with the runtime's fixed struct headers and extern
// declarations pre-populated (§4.4).
func New() *Lowerer {
	return &Lowerer{
		module: &Module{
			Structs: []StructDecl{ListHeader(), MapHeader(), ResultHeader()},
			Externs: BuiltinExterns(),
		},
		strings:     map[string]int{},
		objectDecls: map[string]ast.ObjectStmt{},
		storeDecls:  map[string]ast.StoreStmt{},
		actorDecls:  map[string]ast.ActorStmt{},
	}
}

// Lower translates program into a Module, one Function per top-level
// fn/object-method/store-method/actor-handler, plus a synthesized "main"
// for any top-level statements that aren't declarations (§4.4).
func Lower(program *ast.Program) *Module {
	lw := New()
	lw.collectDecls(program)

	var mainStmts []*ast.Stmt
	for _, s := range program.Statements {
		switch k := s.Kind.(type) {
		case ast.FunctionStmt:
			lw.lowerFunctionDecl(k)
		case ast.ObjectStmt:
			lw.lowerObjectDecl(k)
		case ast.StoreStmt:
			lw.lowerStoreDecl(k)
		case ast.ActorStmt:
			lw.lowerActorDecl(k)
		case ast.ImportStmt:
			// resolved by internal/loader; nothing to lower.
		default:
			mainStmts = append(mainStmts, s)
		}
	}
	if len(mainStmts) > 0 {
		lw.beginFunction("main", nil, ast.Unit, nil)
		lw.lowerBody(mainStmts)
		lw.finishFunction()
	}
	return lw.module
}

// collectDecls pre-registers every object/store/actor as a named struct
// type before lowering any function body, so a forward reference to a type
// declared later in the file still resolves (§4.4's "fields in source
// declaration order" applies per-decl, not across decls).
func (lw *Lowerer) collectDecls(program *ast.Program) {
	for _, s := range program.Statements {
		switch k := s.Kind.(type) {
		case ast.ObjectStmt:
			lw.objectDecls[k.Name] = k
			lw.module.Structs = append(lw.module.Structs, structDeclFromFields(k.Name, k.Fields))
		case ast.StoreStmt:
			lw.storeDecls[k.Name] = k
			lw.module.Structs = append(lw.module.Structs, structDeclFromFields(k.Name, k.Fields))
		case ast.ActorStmt:
			lw.actorDecls[k.Name] = k
			lw.module.Structs = append(lw.module.Structs, structDeclFromFields(k.Name, k.Fields))
		}
	}
}

func structDeclFromFields(name string, fields []ast.Field) StructDecl {
	sf := make([]StructField, len(fields))
	for i, f := range fields {
		sf[i] = StructField{Name: f.Name, Type: toTypeRef(f.Type_)}
	}
	return StructDecl{Name: name, Fields: sf}
}

func (lw *Lowerer) declFields(typeName string) []ast.Field {
	if d, ok := lw.objectDecls[typeName]; ok {
		return d.Fields
	}
	if d, ok := lw.storeDecls[typeName]; ok {
		return d.Fields
	}
	if d, ok := lw.actorDecls[typeName]; ok {
		return d.Fields
	}
	return nil
}

// ---- function/block/temp plumbing -----------------------------------

func (lw *Lowerer) beginFunction(name string, params []ast.Parameter, ret ast.Type, receiver *Param) {
	fn := &Function{Name: name, Return: toTypeRef(ret)}
	if receiver != nil {
		fn.Params = append(fn.Params, *receiver)
	}
	for _, p := range params {
		fn.Params = append(fn.Params, Param{Name: p.Name, Type: toTypeRef(p.Type_)})
	}
	lw.module.Functions = append(lw.module.Functions, fn)
	lw.fn = fn
	lw.sym = newSymtab(nil)
	lw.startBlock()

	if receiver != nil {
		lw.sym.define(receiver.Name, binding{targetType: receiver.Type, value: ParamRef{Name: receiver.Name}})
	}
	for _, p := range fn.Params {
		if receiver != nil && p.Name == receiver.Name {
			continue
		}
		lw.sym.define(p.Name, binding{targetType: p.Type, value: ParamRef{Name: p.Name}})
	}
}

func (lw *Lowerer) finishFunction() {
	if !lw.blockTerminated(lw.block) {
		lw.emit(Instr{Op: OpReturn})
	}
	lw.fn = nil
	lw.block = nil
	lw.sym = nil
}

func (lw *Lowerer) blockTerminated(b *Block) bool {
	if b == nil || len(b.Instrs) == 0 {
		return false
	}
	switch b.Instrs[len(b.Instrs)-1].Op {
	case OpBr, OpCondBr, OpReturn:
		return true
	}
	return false
}

func (lw *Lowerer) reserveLabel() Label {
	l := lw.fn.nextLabel
	lw.fn.nextLabel++
	return l
}

func (lw *Lowerer) openBlock(lbl Label) {
	b := &Block{Label: lbl}
	lw.fn.Blocks = append(lw.fn.Blocks, b)
	lw.block = b
}

func (lw *Lowerer) startBlock() Label {
	lbl := lw.reserveLabel()
	lw.openBlock(lbl)
	return lbl
}

func (lw *Lowerer) newTemp() ValueID {
	id := lw.fn.nextTemp
	lw.fn.nextTemp++
	return id
}

// ---- instruction emission --------------------------------------------

func (lw *Lowerer) emit(instr Instr) Value {
	if instr.HasDst {
		instr.Dst = lw.newTemp()
		lw.block.Instrs = append(lw.block.Instrs, instr)
		return Temp{ID: instr.Dst}
	}
	lw.block.Instrs = append(lw.block.Instrs, instr)
	return ConstUnit{}
}

func (lw *Lowerer) emitVal(op OpCode, t TypeRef, args ...Value) Value {
	return lw.emit(Instr{HasDst: true, Op: op, Type: t, Args: args})
}

func (lw *Lowerer) emitVoid(op OpCode, args ...Value) {
	lw.emit(Instr{Op: op, Args: args})
}

func (lw *Lowerer) br(target Label) {
	if lw.blockTerminated(lw.block) {
		return
	}
	lw.emit(Instr{Op: OpBr, Blocks: []Label{target}})
}

func (lw *Lowerer) condBr(cond Value, then, els Label) {
	lw.emit(Instr{Op: OpCondBr, Args: []Value{cond}, Blocks: []Label{then, els}})
}

func (lw *Lowerer) ret(v Value, hasV bool) {
	if hasV {
		lw.emit(Instr{Op: OpReturn, Args: []Value{v}})
		return
	}
	lw.emit(Instr{Op: OpReturn})
}

func isVoid(t TypeRef) bool { _, ok := t.(VoidT); return ok }

func (lw *Lowerer) emitCall(callee string, ret TypeRef, args ...Value) Value {
	return lw.emit(Instr{HasDst: !isVoid(ret), Op: OpCall, Callee: callee, Type: ret, Args: args})
}

func (lw *Lowerer) emitCallIndirect(callee Value, ret TypeRef, args ...Value) Value {
	return lw.emit(Instr{HasDst: !isVoid(ret), Op: OpCallIndirect, Type: ret, Args: append([]Value{callee}, args...)})
}

// emitPhi splits inputs into Instr's parallel Args/Blocks slices (§4.4's
// phi-node merge for if-expressions and list-append-realloc).
func (lw *Lowerer) emitPhi(t TypeRef, inputs ...PhiInput) Value {
	args := make([]Value, len(inputs))
	blocks := make([]Label, len(inputs))
	for i, in := range inputs {
		args[i] = in.Value
		blocks[i] = in.From
	}
	return lw.emit(Instr{HasDst: true, Op: OpPhi, Type: t, Args: args, Blocks: blocks})
}

func (lw *Lowerer) gepField(base Value, field string, fieldType TypeRef) Value {
	return lw.emit(Instr{HasDst: true, Op: OpGEP, Args: []Value{base}, Field: field, Type: Ptr{Elem: fieldType}})
}

func (lw *Lowerer) gepIndex(base Value, index Value, elemType TypeRef) Value {
	return lw.emit(Instr{HasDst: true, Op: OpGEP, Args: []Value{base, index}, Type: Ptr{Elem: elemType}})
}

func (lw *Lowerer) load(ptr Value, t TypeRef) Value {
	return lw.emit(Instr{HasDst: true, Op: OpLoad, Args: []Value{ptr}, Type: t})
}

func (lw *Lowerer) store(ptr, val Value) {
	lw.emit(Instr{Op: OpStore, Args: []Value{ptr, val}})
}

func (lw *Lowerer) cast(v Value, t TypeRef) Value {
	return lw.emit(Instr{HasDst: true, Op: OpCast, Args: []Value{v}, Type: t})
}

func (lw *Lowerer) alloca(t TypeRef) Value {
	return lw.emit(Instr{HasDst: true, Op: OpAlloca, Type: Ptr{Elem: t}})
}

func (lw *Lowerer) malloc(size Value, result TypeRef) Value {
	return lw.emit(Instr{HasDst: true, Op: OpMalloc, Args: []Value{size}, Type: result})
}

func (lw *Lowerer) realloc(ptr, size Value, result TypeRef) Value {
	return lw.emit(Instr{HasDst: true, Op: OpRealloc, Args: []Value{ptr, size}, Type: result})
}

func (lw *Lowerer) internString(s string) int {
	if idx, ok := lw.strings[s]; ok {
		return idx
	}
	idx := len(lw.module.Strings)
	lw.module.Strings = append(lw.module.Strings, s)
	lw.strings[s] = idx
	return idx
}

func (lw *Lowerer) ensureExtern(name string, params []TypeRef, ret TypeRef) {
	for _, e := range lw.module.Externs {
		if e.Name == name {
			return
		}
	}
	lw.module.Externs = append(lw.module.Externs, Extern{Name: name, Params: params, Return: ret})
}

func zeroValue(t TypeRef) Value {
	switch t.(type) {
	case I64:
		return ConstInt{}
	case F64:
		return ConstFloat{}
	case I1:
		return ConstBool{}
	default:
		return ConstUnit{}
	}
}

// ---- declarations -----------------------------------------------------

func (lw *Lowerer) lowerFunctionDecl(fn ast.FunctionStmt) {
	ret := fn.ReturnType
	if ret == nil {
		ret = ast.Unit
	}
	lw.beginFunction(fn.Name, fn.Params, ret, nil)
	lw.lowerBody(fn.Body)
	lw.finishFunction()
}

func (lw *Lowerer) lowerObjectDecl(decl ast.ObjectStmt) {
	for _, m := range decl.Methods {
		lw.lowerMethod(decl.Name, m)
	}
}

func (lw *Lowerer) lowerStoreDecl(decl ast.StoreStmt) {
	for _, m := range decl.Methods {
		lw.lowerMethod(decl.Name, m)
	}
	if decl.Make != nil {
		lw.lowerConstructor(decl.Name, "make", *decl.Make)
	}
}

func (lw *Lowerer) lowerActorDecl(decl ast.ActorStmt) {
	for _, h := range decl.Handlers {
		ret := ast.Type(ast.Unit)
		lw.beginFunction(MangleMethod(decl.Name, "on_"+h.MessageType), h.Params, ret,
			&Param{Name: "self", Type: Ptr{Elem: StructRef{Name: decl.Name}}})
		lw.lowerBody(h.Body)
		lw.finishFunction()
	}
	if decl.Make != nil {
		lw.lowerConstructor(decl.Name, "make", *decl.Make)
	}
	// Joins are a declarative runtime pull-in (ast.JoinRef's doc comment);
	// there is nothing to lower — the runtime resolves them outside this
	// pipeline.
}

func (lw *Lowerer) lowerMethod(typeName string, m ast.ObjectMethod) {
	ret := m.ReturnType
	if ret == nil {
		ret = ast.Unit
	}
	lw.beginFunction(MangleMethod(typeName, m.Name), m.Params, ret,
		&Param{Name: "self", Type: Ptr{Elem: StructRef{Name: typeName}}})
	lw.lowerBody(m.Body)
	lw.finishFunction()
}

func (lw *Lowerer) lowerConstructor(typeName, name string, c ast.Constructor) {
	lw.beginFunction(MangleMethod(typeName, name), c.Params, ast.Object{Name: typeName}, nil)
	lw.lowerBody(c.Body)
	lw.finishFunction()
}

// ---- statements ---------------------------------------------------------

func (lw *Lowerer) lowerBody(stmts []*ast.Stmt) {
	for _, s := range stmts {
		lw.lowerStmt(s)
	}
}

// lowerScopedBody opens a fresh child scope around a nested body — every
// construct that introduces block structure (if/unless/while/until/
// iterate/for) binds in a fresh child scope (§4.4).
func (lw *Lowerer) lowerScopedBody(stmts []*ast.Stmt) {
	outer := lw.sym
	lw.sym = outer.child()
	lw.lowerBody(stmts)
	lw.sym = outer
}

func (lw *Lowerer) lowerStmt(s *ast.Stmt) {
	switch k := s.Kind.(type) {
	case ast.ExpressionStmt:
		lw.lowerExpr(k.Expr)
	case ast.AssignmentStmt:
		lw.lowerAssignment(k)
	case ast.IfStmt:
		lw.lowerBranchStmt(k.Cond, k.Then, k.Else)
	case ast.UnlessStmt:
		lw.lowerBranchStmt(k.Cond, nil, k.Body)
	case ast.WhileStmt:
		lw.lowerWhile(k)
	case ast.UntilStmt:
		lw.lowerUntil(k)
	case ast.IterateStmt:
		lw.lowerIterate(k.Var, k.Iterable, k.Body)
	case ast.ForStmt:
		lw.lowerIterate(k.Var, k.Iterable, k.Body)
	case ast.ReturnStmt:
		if k.Value != nil {
			lw.ret(lw.lowerExpr(k.Value), true)
		} else {
			lw.ret(nil, false)
		}
	case ast.BreakStmt:
		if len(lw.loops) > 0 {
			lw.br(lw.loops[len(lw.loops)-1].breakLabel)
		}
	case ast.ContinueStmt:
		if len(lw.loops) > 0 {
			lw.br(lw.loops[len(lw.loops)-1].continueLabel)
		}
	case ast.FunctionStmt:
		// a nested fn decl lifted to a top-level function, named as written
		// (Coral has no nested-closure capture to lift; §4.1 lexical scope
		// stops lookup at the function boundary).
		lw.lowerFunctionDecl(k)
	case ast.ObjectStmt:
		lw.lowerObjectDecl(k)
	case ast.StoreStmt:
		lw.lowerStoreDecl(k)
	case ast.ActorStmt:
		lw.lowerActorDecl(k)
	case ast.ImportStmt:
		// resolved by internal/loader.
	case ast.ErrorHandlerStmt:
		lw.lowerErrorHandlerStmt(k)
	case ast.PipeStmt:
		lw.lowerExpr(k.Value)
	case ast.IoStmt:
		lw.lowerExpr(k.Value)
	}
}

func (lw *Lowerer) lowerAssignment(k ast.AssignmentStmt) {
	val := lw.lowerExpr(k.Value)
	if op, isCompound := compoundOpcodes[k.Op]; isCompound {
		cur := lw.lowerExpr(k.Target)
		val = lw.emitVal(op, toTypeRef(k.Target.Type_), cur, val)
	}
	switch t := k.Target.Kind.(type) {
	case ast.IdentifierExpr:
		if b, ok := lw.sym.lookup(t.Name); ok {
			b.value = val
			lw.sym.define(t.Name, b)
			return
		}
		lw.sym.define(t.Name, binding{targetType: toTypeRef(k.Target.Type_), value: val})
	case ast.FieldAccessExpr:
		base := lw.lowerExpr(t.Target)
		ptr := lw.gepField(base, t.Field, toTypeRef(k.Target.Type_))
		lw.store(ptr, val)
	case ast.IndexExpr:
		lw.lowerIndexStore(t, val)
	}
}

// compoundOpcodes maps a compound-assignment operator token to the binary
// op it desugars to; "is"/"=" (plain assignment) are deliberately absent,
// so a lookup miss means "just store the new value" (§4.2: Op is "is" for
// plain `IDENT is EXPR`, "=" for the `IDENT = EXPR` ASSIGN-token form).
var compoundOpcodes = map[string]OpCode{
	"+=": OpAdd, "-=": OpSub, "*=": OpMul, "/=": OpDiv, "%=": OpMod, "**=": OpPow,
	"&=": OpBitAnd, "|=": OpBitOr, "^=": OpBitXor, "<<=": OpShl, ">>=": OpShr,
}

func (lw *Lowerer) lowerIndexStore(t ast.IndexExpr, val Value) {
	target := lw.lowerExpr(t.Target)
	index := lw.lowerExpr(t.Index)
	switch tt := t.Target.Type_.(type) {
	case ast.List:
		elemType := toTypeRef(tt.Elem)
		dataPtr := lw.load(lw.gepField(target, "data", Ptr{Elem: VoidT{}}), Ptr{Elem: VoidT{}})
		typedData := lw.cast(dataPtr, Ptr{Elem: elemType})
		elemPtr := lw.gepIndex(typedData, index, elemType)
		lw.store(elemPtr, val)
	case ast.Map:
		lw.ensureExtern("map_insert", []TypeRef{Ptr{Elem: VoidT{}}, Ptr{Elem: VoidT{}}, Ptr{Elem: VoidT{}}}, VoidT{})
		lw.emitCall("map_insert", VoidT{}, target, index, val)
	}
}

func (lw *Lowerer) lowerBranchStmt(cond *ast.Expr, trueBody, falseBody []*ast.Stmt) {
	condVal := lw.lowerExpr(cond)
	thenLbl := lw.reserveLabel()
	elseLbl := lw.reserveLabel()
	mergeLbl := lw.reserveLabel()
	lw.condBr(condVal, thenLbl, elseLbl)

	lw.openBlock(thenLbl)
	lw.lowerScopedBody(trueBody)
	lw.br(mergeLbl)

	lw.openBlock(elseLbl)
	lw.lowerScopedBody(falseBody)
	lw.br(mergeLbl)

	lw.openBlock(mergeLbl)
}

func (lw *Lowerer) lowerWhile(k ast.WhileStmt) {
	headLbl := lw.reserveLabel()
	bodyLbl := lw.reserveLabel()
	exitLbl := lw.reserveLabel()

	lw.br(headLbl)
	lw.openBlock(headLbl)
	cond := lw.lowerExpr(k.Cond)
	lw.condBr(cond, bodyLbl, exitLbl)

	lw.openBlock(bodyLbl)
	lw.loops = append(lw.loops, loopCtx{breakLabel: exitLbl, continueLabel: headLbl})
	lw.lowerScopedBody(k.Body)
	lw.loops = lw.loops[:len(lw.loops)-1]
	lw.br(headLbl)

	lw.openBlock(exitLbl)
}

// lowerUntil lowers a body-first loop: Body runs once unconditionally,
// then repeats while Cond is false (§4.4).
func (lw *Lowerer) lowerUntil(k ast.UntilStmt) {
	bodyLbl := lw.reserveLabel()
	checkLbl := lw.reserveLabel()
	exitLbl := lw.reserveLabel()

	lw.br(bodyLbl)
	lw.openBlock(bodyLbl)
	lw.loops = append(lw.loops, loopCtx{breakLabel: exitLbl, continueLabel: checkLbl})
	lw.lowerScopedBody(k.Body)
	lw.loops = lw.loops[:len(lw.loops)-1]
	lw.br(checkLbl)

	lw.openBlock(checkLbl)
	cond := lw.lowerExpr(k.Cond)
	lw.condBr(cond, exitLbl, bodyLbl)

	lw.openBlock(exitLbl)
}

// lowerIterate lowers `iterate`/`for` over an iterable via the runtime's
// iterator protocol (iterator_new/iterator_next/iterator_get_value),
// binding Var in a fresh child scope each pass (§4.4).
func (lw *Lowerer) lowerIterate(varName string, iterable *ast.Expr, body []*ast.Stmt) {
	ptr := Ptr{Elem: VoidT{}}
	src := lw.lowerExpr(iterable)
	it := lw.emitCall("iterator_new", ptr, src)

	headLbl := lw.reserveLabel()
	bodyLbl := lw.reserveLabel()
	exitLbl := lw.reserveLabel()

	lw.br(headLbl)
	lw.openBlock(headLbl)
	hasNext := lw.emitCall("iterator_next", I1{}, it)
	lw.condBr(hasNext, bodyLbl, exitLbl)

	lw.openBlock(bodyLbl)
	elemType := elementTypeOf(iterable.Type_)
	raw := lw.emitCall("iterator_get_value", ptr, it)
	elemVal := raw
	if !isVoid(elemType) {
		elemVal = lw.load(lw.cast(raw, Ptr{Elem: elemType}), elemType)
	}

	outer := lw.sym
	lw.sym = outer.child()
	lw.sym.define(varName, binding{targetType: elemType, value: elemVal})
	lw.loops = append(lw.loops, loopCtx{breakLabel: exitLbl, continueLabel: headLbl})
	lw.lowerBody(body)
	lw.loops = lw.loops[:len(lw.loops)-1]
	lw.sym = outer
	lw.br(headLbl)

	lw.openBlock(exitLbl)
}

func elementTypeOf(t ast.Type) TypeRef {
	switch v := t.(type) {
	case ast.List:
		return toTypeRef(v.Elem)
	case ast.Map:
		return toTypeRef(v.Value)
	default:
		return VoidT{}
	}
}

// lowerErrorHandlerStmt lowers a postfix error-chain wrapping a full
// statement (§3/§4.2): runs Wrapped, then — if it produced an error result
// — runs Handler's actions in order. An expression statement or an
// assignment is tested through its value's is_err flag (lowerErrorChain);
// any other wrapped statement yields no value to test, so its actions run
// unconditionally.
func (lw *Lowerer) lowerErrorHandlerStmt(k ast.ErrorHandlerStmt) {
	switch w := k.Wrapped.Kind.(type) {
	case ast.ExpressionStmt:
		lw.lowerErrorChain(ast.ErrorChainExpr{Wrapped: w.Expr, Handler: k.Handler})
	case ast.AssignmentStmt:
		chained := ast.NewExpr(w.Value.Span, ast.ErrorChainExpr{Wrapped: w.Value, Handler: k.Handler})
		chained.Type_ = w.Value.Type_
		w.Value = chained
		lw.lowerAssignment(w)
	default:
		lw.lowerStmt(k.Wrapped)
		lw.lowerErrorHandlerActions(k.Handler)
	}
}

func (lw *Lowerer) lowerErrorHandlerActions(h ast.ErrorHandler) {
	for _, a := range h.Actions {
		switch action := a.(type) {
		case ast.LogAction:
			var arg Value = ConstUnit{}
			if action.Arg != nil {
				arg = lw.lowerExpr(action.Arg)
			}
			lw.ensureExtern("log", []TypeRef{Ptr{Elem: VoidT{}}}, VoidT{})
			lw.emitCall("log", VoidT{}, arg)
		case ast.ReturnAction:
			if action.Arg != nil {
				lw.ret(lw.lowerExpr(action.Arg), true)
			} else {
				lw.ret(nil, false)
			}
		case ast.CustomAction:
			lw.lowerExpr(action.Expr)
		}
	}
}

// ---- expressions --------------------------------------------------------

func (lw *Lowerer) lowerExpr(e *ast.Expr) Value {
	switch k := e.Kind.(type) {
	case ast.LiteralExpr:
		return lw.lowerLiteral(k.Value)
	case ast.IdentifierExpr:
		if b, ok := lw.sym.lookup(k.Name); ok {
			return b.value
		}
		return FuncRef{Name: k.Name}
	case ast.BinaryExpr:
		return lw.lowerBinary(e, k)
	case ast.UnaryExpr:
		return lw.lowerUnary(e, k)
	case ast.CallExpr:
		return lw.lowerCall(e, k)
	case ast.IndexExpr:
		return lw.lowerIndex(k)
	case ast.FieldAccessExpr:
		base := lw.lowerExpr(k.Target)
		return lw.load(lw.gepField(base, k.Field, toTypeRef(e.Type_)), toTypeRef(e.Type_))
	case ast.ListLiteralExpr:
		return lw.lowerListLiteral(e, k)
	case ast.MapLiteralExpr:
		return lw.lowerMapLiteral(e, k)
	case ast.ListAppendExpr:
		return lw.lowerListAppend(k)
	case ast.MapInsertExpr:
		return lw.lowerMapInsert(k)
	case ast.AcrossExpr:
		return lw.lowerAcross(k)
	case ast.StringInterpolationExpr:
		return lw.lowerInterpolation(k)
	case ast.IfExpr:
		return lw.lowerIfExpr(e, k)
	case ast.BlockExpr:
		return lw.lowerBlockExpr(k)
	case ast.LambdaExpr:
		return lw.lowerLambda(k)
	case ast.PipeExpr:
		return lw.lowerExpr(k.Value)
	case ast.IoExpr:
		return lw.lowerExpr(k.Value)
	case ast.ErrorChainExpr:
		return lw.lowerErrorChain(k)
	}
	return ConstUnit{}
}

// lowerLiteral implements §4.4's literal-lowering table.
func (lw *Lowerer) lowerLiteral(lit ast.Literal) Value {
	switch lit.Kind {
	case ast.LitInteger:
		return ConstInt{V: lit.Int}
	case ast.LitFloat:
		return ConstFloat{V: lit.Float}
	case ast.LitString:
		return ConstString{Index: lw.internString(lit.Str)}
	case ast.LitBool:
		return ConstBool{V: lit.BoolVal}
	case ast.LitYes:
		return ConstBool{V: true}
	case ast.LitNo:
		return ConstBool{V: false}
	case ast.LitErr:
		// The Result header's is_err discriminator flag an error-chain's
		// condition test reads (§4.4).
		return ConstBool{V: true}
	case ast.LitNow:
		lw.ensureExtern("clock_now", nil, I64{})
		return lw.emitCall("clock_now", I64{})
	case ast.LitUnit, ast.LitNone, ast.LitEmpty:
		return ConstUnit{}
	}
	return ConstUnit{}
}

var binOpcodes = map[ast.BinaryOp]OpCode{
	ast.OpAdd: OpAdd, ast.OpSub: OpSub, ast.OpMul: OpMul, ast.OpDiv: OpDiv, ast.OpMod: OpMod, ast.OpPow: OpPow,
	ast.OpEq: OpEq, ast.OpNeq: OpNeq,
	ast.OpLt: OpLt, ast.OpLte: OpLte, ast.OpGt: OpGt, ast.OpGte: OpGte,
	ast.OpAnd: OpAnd, ast.OpOr: OpOr, ast.OpXor: OpXor,
	ast.OpBitAnd: OpBitAnd, ast.OpBitOr: OpBitOr, ast.OpBitXor: OpBitXor, ast.OpShl: OpShl, ast.OpShr: OpShr,
}

func (lw *Lowerer) lowerBinary(e *ast.Expr, k ast.BinaryExpr) Value {
	left := lw.lowerExpr(k.Left)
	right := lw.lowerExpr(k.Right)
	op, ok := binOpcodes[k.Op]
	if !ok {
		return ConstUnit{}
	}
	resultType := toTypeRef(e.Type_)
	if k.Op.IsComparison() || k.Op.IsEquality() || k.Op.IsLogical() {
		resultType = I1{}
	}
	return lw.emitVal(op, resultType, left, right)
}

func (lw *Lowerer) lowerUnary(e *ast.Expr, k ast.UnaryExpr) Value {
	v := lw.lowerExpr(k.Operand)
	switch k.Op {
	case ast.OpNot:
		return lw.emitVal(OpNot, I1{}, v)
	case ast.OpNeg:
		return lw.emitVal(OpNeg, toTypeRef(e.Type_), v)
	case ast.OpBitNot:
		return lw.emitVal(OpBitNot, toTypeRef(e.Type_), v)
	}
	return v
}

func (lw *Lowerer) lowerCall(e *ast.Expr, k ast.CallExpr) Value {
	if k.IsConstruction {
		return lw.lowerConstruction(e, k)
	}
	args := make([]Value, 0, len(k.Args)+len(k.NamedArgs))
	for _, a := range k.Args {
		args = append(args, lw.lowerExpr(a))
	}
	for _, na := range k.NamedArgs {
		args = append(args, lw.lowerExpr(na.Value))
	}
	retType := toTypeRef(e.Type_)

	if ident, ok := k.Callee.Kind.(ast.IdentifierExpr); ok {
		if b, bound := lw.sym.lookup(ident.Name); bound {
			if fr, isFunc := b.value.(FuncRef); isFunc {
				return lw.emitCall(fr.Name, retType, args...)
			}
			return lw.emitCallIndirect(b.value, retType, args...)
		}
		return lw.emitCall(ident.Name, retType, args...)
	}
	callee := lw.lowerExpr(k.Callee)
	return lw.emitCallIndirect(callee, retType, args...)
}

// lowerConstruction lowers `Type!(...)`/`Type with ...` object
// instantiation (§4.2/§4.4): heap-allocates the struct and stores each
// field in declaration order, using named args/positional args/field
// defaults/the type's zero value, in that priority.
func (lw *Lowerer) lowerConstruction(_ *ast.Expr, k ast.CallExpr) Value {
	typeName := ""
	if ident, ok := k.Callee.Kind.(ast.IdentifierExpr); ok {
		typeName = ident.Name
	}
	fields := lw.declFields(typeName)
	structType := StructRef{Name: typeName}
	ptr := lw.malloc(ConstInt{V: int64(len(fields)) * 8}, Ptr{Elem: structType})

	values := make(map[string]Value, len(fields))
	for i, arg := range k.Args {
		if i < len(fields) {
			values[fields[i].Name] = lw.lowerExpr(arg)
		}
	}
	for _, na := range k.NamedArgs {
		values[na.Name] = lw.lowerExpr(na.Value)
	}
	for _, f := range fields {
		val, ok := values[f.Name]
		if !ok {
			if f.DefaultValue != nil {
				val = lw.lowerExpr(f.DefaultValue)
			} else {
				val = zeroValue(toTypeRef(f.Type_))
			}
		}
		fieldPtr := lw.gepField(ptr, f.Name, toTypeRef(f.Type_))
		lw.store(fieldPtr, val)
	}
	return ptr
}

func (lw *Lowerer) lowerIndex(k ast.IndexExpr) Value {
	target := lw.lowerExpr(k.Target)
	index := lw.lowerExpr(k.Index)
	switch tt := k.Target.Type_.(type) {
	case ast.List:
		elemType := toTypeRef(tt.Elem)
		dataPtr := lw.load(lw.gepField(target, "data", Ptr{Elem: VoidT{}}), Ptr{Elem: VoidT{}})
		typedData := lw.cast(dataPtr, Ptr{Elem: elemType})
		elemPtr := lw.gepIndex(typedData, index, elemType)
		return lw.load(elemPtr, elemType)
	case ast.Map:
		ptr := Ptr{Elem: VoidT{}}
		lw.ensureExtern("map_get", []TypeRef{ptr, ptr}, ptr)
		valType := toTypeRef(tt.Value)
		raw := lw.emitCall("map_get", ptr, target, index)
		return lw.load(lw.cast(raw, Ptr{Elem: valType}), valType)
	}
	return ConstUnit{}
}

// lowerListLiteral heap-allocates a List header, then a backing array
// sized for the element count, and stores every element (§4.4's list
// aggregate lowering, grounded on the ListHeader shape).
func (lw *Lowerer) lowerListLiteral(e *ast.Expr, k ast.ListLiteralExpr) Value {
	elemType := elementTypeOf(e.Type_)
	hdr := lw.malloc(ConstInt{V: 24}, Ptr{Elem: StructRef{Name: "List"}})

	count := int64(len(k.Elements))
	elemSize := sizeOf(elemType)
	dataRaw := lw.malloc(ConstInt{V: count * elemSize}, Ptr{Elem: VoidT{}})
	typedData := lw.cast(dataRaw, Ptr{Elem: elemType})
	for i, el := range k.Elements {
		v := lw.lowerExpr(el)
		elemPtr := lw.gepIndex(typedData, ConstInt{V: int64(i)}, elemType)
		lw.store(elemPtr, v)
	}

	lw.store(lw.gepField(hdr, "data", Ptr{Elem: VoidT{}}), dataRaw)
	lw.store(lw.gepField(hdr, "length", I64{}), ConstInt{V: count})
	lw.store(lw.gepField(hdr, "capacity", I64{}), ConstInt{V: count})
	return hdr
}

// lowerMapLiteral heap-allocates a Map header backed by the runtime's
// opaque map_create handle, inserting each entry via map_insert (§4.4).
func (lw *Lowerer) lowerMapLiteral(_ *ast.Expr, k ast.MapLiteralExpr) Value {
	ptr := Ptr{Elem: VoidT{}}
	hdr := lw.malloc(ConstInt{V: 16}, Ptr{Elem: StructRef{Name: "Map"}})
	handle := lw.emitCall("map_create", ptr, ConstInt{V: int64(len(k.Entries))}, ConstInt{V: 8})
	lw.store(lw.gepField(hdr, "handle", ptr), handle)
	for _, entry := range k.Entries {
		key := lw.lowerExpr(entry.Key)
		val := lw.lowerExpr(entry.Value)
		lw.emitCall("map_insert", VoidT{}, handle, key, val)
	}
	lw.store(lw.gepField(hdr, "length", I64{}), ConstInt{V: int64(len(k.Entries))})
	return hdr
}

// lowerListAppend implements §4.4's grow-on-demand append: if length ==
// capacity, reallocate the backing array (doubling capacity; an empty list
// grows to one slot) before storing the new element and bumping length.
// No phi is emitted: the grow and no-grow branches join in a merge block
// that reloads the data pointer from the header.
func (lw *Lowerer) lowerListAppend(k ast.ListAppendExpr) Value {
	list := lw.lowerExpr(k.List)
	val := lw.lowerExpr(k.Value)
	elemType := elementTypeOf(k.List.Type_)
	elemSize := sizeOf(elemType)
	ptrT := Ptr{Elem: VoidT{}}

	length := lw.load(lw.gepField(list, "length", I64{}), I64{})
	capacity := lw.load(lw.gepField(list, "capacity", I64{}), I64{})
	needsGrow := lw.emitVal(OpEq, I1{}, length, capacity)

	growLbl := lw.reserveLabel()
	mergeLbl := lw.reserveLabel()
	skipLbl := lw.reserveLabel()
	lw.condBr(needsGrow, growLbl, skipLbl)

	lw.openBlock(growLbl)
	oldData := lw.load(lw.gepField(list, "data", ptrT), ptrT)
	newCap := lw.emitVal(OpMul, I64{}, capacity, ConstInt{V: 2})
	// 1/(capacity+1) is 1 only when capacity is 0, so an empty list grows
	// to one slot and any other list exactly doubles.
	capPlusOne := lw.emitVal(OpAdd, I64{}, capacity, ConstInt{V: 1})
	emptyBump := lw.emitVal(OpDiv, I64{}, ConstInt{V: 1}, capPlusOne)
	grownCapVal := lw.emitVal(OpAdd, I64{}, newCap, emptyBump)
	newSize := lw.emitVal(OpMul, I64{}, grownCapVal, ConstInt{V: elemSize})
	newData := lw.realloc(oldData, newSize, ptrT)
	lw.store(lw.gepField(list, "data", ptrT), newData)
	lw.store(lw.gepField(list, "capacity", I64{}), grownCapVal)
	lw.br(mergeLbl)

	lw.openBlock(skipLbl)
	lw.br(mergeLbl)

	lw.openBlock(mergeLbl)
	dataRaw := lw.load(lw.gepField(list, "data", ptrT), ptrT)
	typedData := lw.cast(dataRaw, Ptr{Elem: elemType})
	elemPtr := lw.gepIndex(typedData, length, elemType)
	lw.store(elemPtr, val)
	newLength := lw.emitVal(OpAdd, I64{}, length, ConstInt{V: 1})
	lw.store(lw.gepField(list, "length", I64{}), newLength)
	return list
}

func (lw *Lowerer) lowerMapInsert(k ast.MapInsertExpr) Value {
	m := lw.lowerExpr(k.Map)
	key := lw.lowerExpr(k.Key)
	val := lw.lowerExpr(k.Value)
	ptr := Ptr{Elem: VoidT{}}
	handle := lw.load(lw.gepField(m, "handle", ptr), ptr)
	lw.emitCall("map_insert", VoidT{}, handle, key, val)
	length := lw.load(lw.gepField(m, "length", I64{}), I64{})
	newLength := lw.emitVal(OpAdd, I64{}, length, ConstInt{V: 1})
	lw.store(lw.gepField(m, "length", I64{}), newLength)
	return m
}

// lowerAcross desugars a chained `source.method(args) then .other(args)`
// expression into successive calls threading the previous result in as
// the receiver (§4.2's method-chain sugar).
func (lw *Lowerer) lowerAcross(k ast.AcrossExpr) Value {
	cur := lw.lowerExpr(k.Source)
	for _, link := range k.Links {
		args := make([]Value, 0, len(link.Args)+1)
		args = append(args, cur)
		for _, a := range link.Args {
			args = append(args, lw.lowerExpr(a))
		}
		cur = lw.emitCallIndirect(FuncRef{Name: link.Method}, Ptr{Elem: VoidT{}}, args...)
	}
	return cur
}

func (lw *Lowerer) lowerInterpolation(k ast.StringInterpolationExpr) Value {
	ptr := Ptr{Elem: I8{}}
	lw.ensureExtern("string_concat", []TypeRef{ptr, ptr}, ptr)
	var acc Value
	for _, part := range k.Parts {
		var seg Value
		if part.IsExpr {
			v := lw.lowerExpr(part.Expr)
			seg = lw.stringify(v, part.Expr.Type_)
		} else {
			seg = ConstString{Index: lw.internString(part.Text)}
		}
		if acc == nil {
			acc = seg
			continue
		}
		acc = lw.emitCall("string_concat", ptr, acc, seg)
	}
	if acc == nil {
		return ConstString{Index: lw.internString("")}
	}
	return acc
}

func (lw *Lowerer) stringify(v Value, t ast.Type) Value {
	ptr := Ptr{Elem: I8{}}
	switch toTypeRef(t).(type) {
	case I64:
		return lw.emitVal(OpIntToString, ptr, v)
	case F64:
		return lw.emitVal(OpFloatToString, ptr, v)
	case I1:
		return lw.emitVal(OpBoolToString, ptr, v)
	default:
		return v
	}
}

// lowerIfExpr lowers the ternary/full-ternary/if-expression form. When
// Else is nil (the default-value form `cond ? true_expr`), the missing
// branch still emits a normal conditional-branch/merge structure with a
// type-matched placeholder value standing in for the absent else-value —
// not an unconditional yield of Then regardless of Cond.
func (lw *Lowerer) lowerIfExpr(e *ast.Expr, k ast.IfExpr) Value {
	cond := lw.lowerExpr(k.Cond)
	thenLbl := lw.reserveLabel()
	elseLbl := lw.reserveLabel()
	mergeLbl := lw.reserveLabel()
	lw.condBr(cond, thenLbl, elseLbl)

	resultType := toTypeRef(e.Type_)

	lw.openBlock(thenLbl)
	thenVal := lw.lowerExpr(k.Then)
	thenEnd := lw.block.Label
	lw.br(mergeLbl)

	lw.openBlock(elseLbl)
	var elseVal Value
	if k.Else != nil {
		elseVal = lw.lowerExpr(k.Else)
	} else {
		elseVal = zeroValue(resultType)
	}
	elseEnd := lw.block.Label
	lw.br(mergeLbl)

	lw.openBlock(mergeLbl)
	return lw.emitPhi(resultType, PhiInput{Value: thenVal, From: thenEnd}, PhiInput{Value: elseVal, From: elseEnd})
}

func (lw *Lowerer) lowerBlockExpr(k ast.BlockExpr) Value {
	if len(k.Statements) == 0 {
		return ConstUnit{}
	}
	for _, s := range k.Statements[:len(k.Statements)-1] {
		lw.lowerStmt(s)
	}
	last := k.Statements[len(k.Statements)-1]
	if es, ok := last.Kind.(ast.ExpressionStmt); ok {
		return lw.lowerExpr(es.Expr)
	}
	lw.lowerStmt(last)
	return ConstUnit{}
}

// lowerLambda lifts a lambda to a fresh top-level function and returns a
// FuncRef naming it (§4.4: lambdas lifted to top-level functions).
func (lw *Lowerer) lowerLambda(k ast.LambdaExpr) Value {
	outerFn, outerBlock, outerSym := lw.fn, lw.block, lw.sym
	name := lambdaName(&lw.lambdaCounter)
	lw.beginFunction(name, k.Params, ast.Unknown, nil)
	result := lw.lowerExpr(k.Body)
	lw.ret(result, true)
	lw.finishFunction()

	lw.fn, lw.block, lw.sym = outerFn, outerBlock, outerSym
	return FuncRef{Name: name}
}

func lambdaName(counter *int) string {
	*counter++
	n := *counter
	digits := []byte{}
	if n == 0 {
		digits = append(digits, '0')
	}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return "lambda_" + string(digits)
}

// lowerErrorChain lowers a postfix error-chain in expression position
// (§4.2): evaluates Wrapped, branches on its error discriminator, and runs
// Handler's actions on the error path before yielding Wrapped's value on
// the success path.
func (lw *Lowerer) lowerErrorChain(k ast.ErrorChainExpr) Value {
	val := lw.lowerExpr(k.Wrapped)

	isErrPtr := lw.gepField(val, "is_err", I1{})
	isErr := lw.load(isErrPtr, I1{})

	errLbl := lw.reserveLabel()
	okLbl := lw.reserveLabel()
	lw.condBr(isErr, errLbl, okLbl)

	lw.openBlock(errLbl)
	lw.lowerErrorHandlerActions(k.Handler)
	lw.br(okLbl)

	lw.openBlock(okLbl)
	return val
}
