package lower

import "github.com/coral-lang/coralc/internal/ast"

// I8 is the byte-sized target type backing string/list byte-array storage.
type I8 struct{}

func (I8) typeRefKind()    {}
func (I8) String() string { return "i8" }

// FuncRef is a value referring to a lowered function by name — used for
// lambdas lifted to top-level functions and for passing named functions
// as first-class values (store `update` callbacks, `with_id` factories).
type FuncRef struct{ Name string }

func (FuncRef) valueKind() {}

// toTypeRef lowers a resolved surface Type to its target representation
// (§4.4's literal/aggregate/object lowering rules).
func toTypeRef(t ast.Type) TypeRef {
	switch v := t.(type) {
	case ast.Primitive:
		switch v.Name {
		case "i8", "i16", "i32", "i64":
			return I64{}
		case "f32", "f64":
			return F64{}
		case "Bool":
			return I1{}
		case "String":
			return Ptr{Elem: I8{}}
		case "Unit", "Unknown":
			return VoidT{}
		}
		return VoidT{}
	case ast.List:
		return Ptr{Elem: StructRef{Name: "List"}}
	case ast.Map:
		return Ptr{Elem: StructRef{Name: "Map"}}
	case ast.Result:
		return Ptr{Elem: StructRef{Name: "Result"}}
	case ast.Pipe:
		return Ptr{Elem: StructRef{Name: "Pipe"}}
	case ast.Function:
		return Ptr{Elem: VoidT{}}
	case ast.Object:
		return Ptr{Elem: StructRef{Name: v.Name}}
	case ast.Store:
		return Ptr{Elem: StructRef{Name: v.Name}}
	case ast.Actor:
		return Ptr{Elem: StructRef{Name: v.Name}}
	case ast.TypeVar:
		return Ptr{Elem: VoidT{}}
	}
	return VoidT{}
}

// sizeOf gives the byte size the lowerer uses for element-offset and
// allocation-size arithmetic (§4.4's "offset i*sizeof(E)"). Every heap
// reference (pointer, struct, list, map) is pointer-sized; the lowerer
// never needs a struct's full layout since field access goes through
// named GEP rather than raw byte math.
func sizeOf(t TypeRef) int64 {
	switch t.(type) {
	case I64, F64, Ptr:
		return 8
	case I1, I8:
		return 1
	case StructRef:
		return 8
	default:
		return 8
	}
}
