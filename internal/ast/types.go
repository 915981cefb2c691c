package ast

import "strings"

// Type is the closed surface type variant produced by parsing (Unknown
// everywhere at first) and finalized by the resolver (§3). Equality on
// named variants (Object/Store/Actor) is nominal, by Name; equality on
// parameterized variants is structural.
type Type interface {
	typeNode()
	String() string
}

// Primitive widths and the handful of scalar/sentinel surface types.
type Primitive struct{ Name string }

func (Primitive) typeNode()       {}
func (p Primitive) String() string { return p.Name }

var (
	I8      = Primitive{"i8"}
	I16     = Primitive{"i16"}
	I32     = Primitive{"i32"}
	I64     = Primitive{"i64"}
	F32     = Primitive{"f32"}
	F64     = Primitive{"f64"}
	Bool    = Primitive{"Bool"}
	String_ = Primitive{"String"}
	Unit    = Primitive{"Unit"}
	Unknown = Primitive{"Unknown"}
)

// List(T)
type List struct{ Elem Type }

func (List) typeNode()        {}
func (l List) String() string { return "List(" + l.Elem.String() + ")" }

// Map(K,V)
type Map struct {
	Key, Value Type
}

func (Map) typeNode()        {}
func (m Map) String() string { return "Map(" + m.Key.String() + ", " + m.Value.String() + ")" }

// Function(params, ret)
type Function struct {
	Params []Type
	Ret    Type
}

func (Function) typeNode() {}
func (f Function) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	return "Function(" + strings.Join(parts, ", ") + ") -> " + f.Ret.String()
}

// Result(ok, err)
type Result struct{ Ok, Err Type }

func (Result) typeNode()        {}
func (r Result) String() string { return "Result(" + r.Ok.String() + ", " + r.Err.String() + ")" }

// Pipe(T) — the Coral pipe/channel-of-T type
type Pipe struct{ Elem Type }

func (Pipe) typeNode()        {}
func (p Pipe) String() string { return "Pipe(" + p.Elem.String() + ")" }

// Object{name, fields} — nominal.
type Object struct {
	Name   string
	Fields map[string]Type
}

func (Object) typeNode()        {}
func (o Object) String() string { return "Object{" + o.Name + "}" }

// Store{name, value_type} — nominal.
type Store struct {
	Name      string
	ValueType Type
}

func (Store) typeNode()        {}
func (s Store) String() string { return "Store{" + s.Name + "}" }

// Actor{name, message_types} — nominal.
type Actor struct {
	Name         string
	MessageTypes map[string]Type
}

func (Actor) typeNode()        {}
func (a Actor) String() string { return "Actor{" + a.Name + "}" }

// TypeVar(u32) — an inference placeholder that survives into the surface
// Type only when resolution failed; after success no node carries one (§8).
type TypeVar struct{ ID uint32 }

func (TypeVar) typeNode()        {}
func (t TypeVar) String() string { return "TypeVar(#" + itoa(t.ID) + ")" }

func itoa(v uint32) string {
	if v == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

// TypesEqual implements §3's equality rule: nominal by Name for
// Object/Store/Actor, structural otherwise.
func TypesEqual(a, b Type) bool {
	switch av := a.(type) {
	case Primitive:
		bv, ok := b.(Primitive)
		return ok && av.Name == bv.Name
	case List:
		bv, ok := b.(List)
		return ok && TypesEqual(av.Elem, bv.Elem)
	case Map:
		bv, ok := b.(Map)
		return ok && TypesEqual(av.Key, bv.Key) && TypesEqual(av.Value, bv.Value)
	case Function:
		bv, ok := b.(Function)
		if !ok || len(av.Params) != len(bv.Params) {
			return false
		}
		for i := range av.Params {
			if !TypesEqual(av.Params[i], bv.Params[i]) {
				return false
			}
		}
		return TypesEqual(av.Ret, bv.Ret)
	case Result:
		bv, ok := b.(Result)
		return ok && TypesEqual(av.Ok, bv.Ok) && TypesEqual(av.Err, bv.Err)
	case Pipe:
		bv, ok := b.(Pipe)
		return ok && TypesEqual(av.Elem, bv.Elem)
	case Object:
		bv, ok := b.(Object)
		return ok && av.Name == bv.Name
	case Store:
		bv, ok := b.(Store)
		return ok && av.Name == bv.Name
	case Actor:
		bv, ok := b.(Actor)
		return ok && av.Name == bv.Name
	case TypeVar:
		bv, ok := b.(TypeVar)
		return ok && av.ID == bv.ID
	}
	return false
}
