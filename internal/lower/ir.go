// Package lower translates a fully-typed Program into a linear,
// block-structured intermediate representation: SSA-style temporaries
// (%t0, %t1, …) organized into labeled basic blocks (L0, L1, …), grounded
// on the shape of CWBudde-go-dws/internal/bytecode's Instruction/OpCode
// scheme but widened from packed 32-bit stack-machine instructions to
// value-carrying three-address instructions, since §4.4 targets an
// SSA-style temporary/label scheme rather than a bytecode stack VM.
package lower

import "fmt"

// ValueID names one SSA temporary within a function.
type ValueID uint32

// Label names one basic block within a function.
type Label uint32

func (id ValueID) String() string { return fmt.Sprintf("%%t%d", id) }
func (l Label) String() string    { return fmt.Sprintf("L%d", l) }

// Value is an instruction operand: either a prior temporary's result or an
// immediate constant.
type Value interface{ valueKind() }

type Temp struct{ ID ValueID }

func (Temp) valueKind() {}
func (t Temp) String() string { return t.ID.String() }

type ConstInt struct{ V int64 }

func (ConstInt) valueKind() {}

type ConstFloat struct{ V float64 }

func (ConstFloat) valueKind() {}

type ConstBool struct{ V bool }

func (ConstBool) valueKind() {}

// ConstString indexes into the owning Module's string pool (§4.4: "a
// private constant byte array plus a pointer-to-first-byte computation").
type ConstString struct{ Index int }

func (ConstString) valueKind() {}

type ConstUnit struct{}

func (ConstUnit) valueKind() {}

// ParamRef names a function parameter's incoming SSA value, bound once at
// function entry — avoids manufacturing a fake defining instruction for
// every parameter just to give it a Temp identity.
type ParamRef struct{ Name string }

func (ParamRef) valueKind() {}

// TypeRef is a lowered target type, distinct from ast.Type (the surface
// type) and types.Type (the inference lattice) — this is what the target
// representation actually allocates and loads/stores.
type TypeRef interface {
	typeRefKind()
	String() string
}

type I64 struct{}

func (I64) typeRefKind()    {}
func (I64) String() string { return "i64" }

type F64 struct{}

func (F64) typeRefKind()    {}
func (F64) String() string { return "f64" }

// I1 is the 1-bit boolean target type (§4.4: "Bool→1-bit integer").
type I1 struct{}

func (I1) typeRefKind()    {}
func (I1) String() string { return "i1" }

type VoidT struct{}

func (VoidT) typeRefKind()    {}
func (VoidT) String() string { return "void" }

// Ptr is a typed pointer to Elem.
type Ptr struct{ Elem TypeRef }

func (Ptr) typeRefKind()    {}
func (p Ptr) String() string { return "ptr<" + p.Elem.String() + ">" }

// StructRef names a declared struct type (an object/store/actor, or one of
// the runtime's built-in list/map headers).
type StructRef struct{ Name string }

func (StructRef) typeRefKind()    {}
func (s StructRef) String() string { return "%" + s.Name }

// Instr is one IR instruction. HasDst is false for instructions that
// produce no value (stores, branches, returns); Dst is meaningless then
// (ValueID 0 is a valid temp name, %t0, so it cannot double as a sentinel).
type Instr struct {
	HasDst bool
	Dst    ValueID
	Op     OpCode
	Args   []Value
	Field  string  // struct field name, for GEP/GetField/SetField
	Callee string  // function/extern name, for Call
	Type   TypeRef // result type, meaningful when HasDst
	Blocks []Label // branch targets: [then] for Br, [then, else] for CondBr
}

// OpCode enumerates the lowered instruction forms §4.4 describes.
type OpCode int

const (
	OpConst OpCode = iota // Args[0] is the constant Value itself

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	OpNeg

	OpEq
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte

	OpAnd
	OpOr
	OpXor
	OpNot

	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
	OpBitNot

	OpIntToFloat
	OpBoolToString
	OpIntToString
	OpFloatToString
	OpStringConcat

	OpAlloca  // allocate Type on the stack, Dst is a Ptr
	OpMalloc  // call runtime malloc(Args[0]) -> ptr, Dst typed per Type
	OpRealloc // call runtime realloc(Args[0] ptr, Args[1] size) -> ptr

	OpGEP   // Args[0] base ptr, Args[1] optional index; Field set for struct field addressing
	OpLoad  // Args[0] ptr -> Dst
	OpStore // Args[0] ptr, Args[1] value; no Dst
	OpCast  // Args[0] reinterpreted as Type — typed pointer cast (§4.4)

	// OpCall names a function, extern, or runtime builtin (map_create,
	// map_insert, iterator_new, iterator_next, iterator_get_value,
	// store_save, store_load, ...) via Callee; Args are its arguments.
	OpCall
	OpCallIndirect // Args[0] is the callee value (a closure/lambda pointer), rest are arguments

	OpPhi // Args[i] arrives from predecessor Blocks[i] (parallel slices)

	OpBr     // unconditional jump, Blocks[0]
	OpCondBr // Args[0] is the i1 condition, Blocks = [then, else]
	OpReturn // Args[0] optional return value
)

// OpCodeNames maps opcodes to their string names for debugging and
// disassembly, grounded on CWBudde-go-dws/internal/bytecode's OpCodeNames
// table.
var OpCodeNames = [...]string{
	OpConst: "CONST",

	OpAdd: "ADD",
	OpSub: "SUB",
	OpMul: "MUL",
	OpDiv: "DIV",
	OpMod: "MOD",
	OpPow: "POW",
	OpNeg: "NEG",

	OpEq:  "EQ",
	OpNeq: "NEQ",
	OpLt:  "LT",
	OpLte: "LTE",
	OpGt:  "GT",
	OpGte: "GTE",

	OpAnd: "AND",
	OpOr:  "OR",
	OpXor: "XOR",
	OpNot: "NOT",

	OpBitAnd: "BIT_AND",
	OpBitOr:  "BIT_OR",
	OpBitXor: "BIT_XOR",
	OpShl:    "SHL",
	OpShr:    "SHR",
	OpBitNot: "BIT_NOT",

	OpIntToFloat:    "INT_TO_FLOAT",
	OpBoolToString:  "BOOL_TO_STRING",
	OpIntToString:   "INT_TO_STRING",
	OpFloatToString: "FLOAT_TO_STRING",
	OpStringConcat:  "STRING_CONCAT",

	OpAlloca:  "ALLOCA",
	OpMalloc:  "MALLOC",
	OpRealloc: "REALLOC",

	OpGEP:   "GEP",
	OpLoad:  "LOAD",
	OpStore: "STORE",
	OpCast:  "CAST",

	OpCall:         "CALL",
	OpCallIndirect: "CALL_INDIRECT",

	OpPhi: "PHI",

	OpBr:     "BR",
	OpCondBr: "COND_BR",
	OpReturn: "RETURN",
}

func (op OpCode) String() string {
	if int(op) < 0 || int(op) >= len(OpCodeNames) {
		return fmt.Sprintf("OpCode(%d)", int(op))
	}
	return OpCodeNames[op]
}

// PhiInput pairs an incoming value with the predecessor block it arrives
// from; emitPhi in lower.go splits a []PhiInput into Instr's parallel
// Args/Blocks slices.
type PhiInput struct {
	Value Value
	From  Label
}

// Block is one labeled basic block: a straight-line instruction sequence
// ending in a terminator (OpBr/OpCondBr/OpReturn).
type Block struct {
	Label  Label
	Instrs []Instr
}

// Param is one function parameter in the lowered signature.
type Param struct {
	Name string
	Type TypeRef
}

// Function is one lowered function — a top-level fn, or an object/
// store/actor method emitted under its mangled TypeName_methodName name
// (§4.4's "Name mangling").
type Function struct {
	Name   string
	Params []Param
	Return TypeRef
	Blocks []*Block

	nextTemp  ValueID
	nextLabel Label
}

// StructField is one field of a declared struct type, in source
// declaration order (§4.4: "fields in source declaration order").
type StructField struct {
	Name string
	Type TypeRef
}

// StructDecl is one emitted named struct type (one per declared
// object/store/actor, plus the runtime's list/map headers).
type StructDecl struct {
	Name   string
	Fields []StructField
}

// Extern is one runtime function declaration §4.4 requires at minimum.
type Extern struct {
	Name   string
	Params []TypeRef
	Return TypeRef
}

// Module is one compilation unit's lowered output (§4.4's contract).
type Module struct {
	Structs   []StructDecl
	Strings   []string
	Externs   []Extern
	Functions []*Function
}

// BuiltinExterns are the runtime declarations §4.4 names at minimum, plus
// the builtins every program may reference.
func BuiltinExterns() []Extern {
	ptr := Ptr{Elem: VoidT{}}
	return []Extern{
		{Name: "malloc", Params: []TypeRef{I64{}}, Return: ptr},
		{Name: "realloc", Params: []TypeRef{ptr, I64{}}, Return: ptr},
		{Name: "map_create", Params: []TypeRef{I64{}, I64{}}, Return: ptr},
		{Name: "map_insert", Params: []TypeRef{ptr, ptr, ptr}, Return: VoidT{}},
		{Name: "iterator_new", Params: []TypeRef{ptr}, Return: ptr},
		{Name: "iterator_next", Params: []TypeRef{ptr}, Return: I1{}},
		{Name: "iterator_get_value", Params: []TypeRef{ptr}, Return: ptr},
		{Name: "store_save", Params: []TypeRef{ptr, ptr}, Return: VoidT{}},
		{Name: "store_load", Params: []TypeRef{ptr}, Return: ptr},
		{Name: "log", Params: []TypeRef{ptr}, Return: VoidT{}},
		{Name: "get", Params: []TypeRef{ptr}, Return: ptr},
		{Name: "hash", Params: []TypeRef{ptr}, Return: I64{}},
		{Name: "actor_send", Params: []TypeRef{ptr, I64{}, ptr}, Return: VoidT{}},
	}
}

// ListHeader is the runtime shape every List(E) value carries (§4.4).
func ListHeader() StructDecl {
	return StructDecl{Name: "List", Fields: []StructField{
		{Name: "data", Type: Ptr{Elem: VoidT{}}},
		{Name: "length", Type: I64{}},
		{Name: "capacity", Type: I64{}},
	}}
}

// MapHeader is the runtime shape every Map(K,V) value carries (§4.4).
func MapHeader() StructDecl {
	return StructDecl{Name: "Map", Fields: []StructField{
		{Name: "handle", Type: Ptr{Elem: VoidT{}}},
		{Name: "length", Type: I64{}},
	}}
}

// ResultHeader carries the error discriminator §4.4's error-handler
// lowering requires for Result-typed values.
func ResultHeader() StructDecl {
	return StructDecl{Name: "Result", Fields: []StructField{
		{Name: "is_err", Type: I1{}},
		{Name: "ok", Type: Ptr{Elem: VoidT{}}},
		{Name: "err", Type: Ptr{Elem: VoidT{}}},
	}}
}

// MangleMethod implements §4.4's "Type_method" name mangling.
func MangleMethod(typeName, method string) string { return typeName + "_" + method }
