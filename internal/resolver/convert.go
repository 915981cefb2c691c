package resolver

import (
	"github.com/coral-lang/coralc/internal/ast"
	"github.com/coral-lang/coralc/internal/types"
)

// fromSurface lifts a parsed ast.Type into the inference lattice (Phase 1:
// "install declared signatures, with fresh type variables for unknowns").
// A nil or Unknown annotation becomes a fresh Var.
func fromSurface(t ast.Type) types.Type {
	if t == nil {
		return types.Var{ID: types.NewTypeVar()}
	}
	switch v := t.(type) {
	case ast.Primitive:
		switch v.Name {
		case "i8", "i16", "i32", "i64":
			return types.Int
		case "f32", "f64":
			return types.Float
		case "Bool":
			return types.Bool
		case "String":
			return types.String_
		case "Unit":
			return types.Unit
		default: // Unknown
			return types.Var{ID: types.NewTypeVar()}
		}
	case ast.List:
		return types.ListT{Elem: fromSurface(v.Elem)}
	case ast.Map:
		return types.MapT{Key: fromSurface(v.Key), Value: fromSurface(v.Value)}
	case ast.Function:
		params := make([]types.Type, len(v.Params))
		for i, p := range v.Params {
			params[i] = fromSurface(p)
		}
		return types.Function{Params: params, Return: fromSurface(v.Ret), Effects: types.EffectSet{}}
	case ast.Result:
		return types.ResultT{Ok: fromSurface(v.Ok), Err: fromSurface(v.Err)}
	case ast.Pipe:
		return types.PipeT{Elem: fromSurface(v.Elem)}
	case ast.Object:
		fields := make(map[string]types.Type, len(v.Fields))
		for k, ft := range v.Fields {
			fields[k] = fromSurface(ft)
		}
		return types.Object{Name: v.Name, Fields: fields, Methods: map[string]types.Type{}}
	case ast.Store:
		return types.Store{Name: v.Name, ValueType: fromSurface(v.ValueType), Fields: map[string]types.Type{}, Methods: map[string]types.Type{}}
	case ast.Actor:
		mt := make(map[string]types.Type, len(v.MessageTypes))
		for k, m := range v.MessageTypes {
			mt[k] = fromSurface(m)
		}
		return types.Actor{Name: v.Name, MessageTypes: mt, Fields: map[string]types.Type{}, Methods: map[string]types.Type{}}
	default:
		return types.Var{ID: types.NewTypeVar()}
	}
}

// toSurface implements Phase 4's write-back: apply the final substitution
// to an inference type, then lower it to the closed surface Type.
func toSurface(subst types.Substitution, t types.Type) ast.Type {
	t = subst.Apply(t)
	switch v := t.(type) {
	case types.Primitive:
		switch v.Name {
		case "i64":
			return ast.I64
		case "f64":
			return ast.F64
		case "Bool":
			return ast.Bool
		case "String":
			return ast.String_
		case "Unit":
			return ast.Unit
		default:
			return ast.Unknown
		}
	case types.Var:
		// Resolution left this unconstrained: the source was ill-typed and
		// an error was already reported (§8).
		return ast.TypeVar{ID: uint32(v.ID)}
	case types.ListT:
		return ast.List{Elem: toSurface(subst, v.Elem)}
	case types.MapT:
		return ast.Map{Key: toSurface(subst, v.Key), Value: toSurface(subst, v.Value)}
	case types.ResultT:
		return ast.Result{Ok: toSurface(subst, v.Ok), Err: toSurface(subst, v.Err)}
	case types.PipeT:
		return ast.Pipe{Elem: toSurface(subst, v.Elem)}
	case types.IteratorT:
		return ast.List{Elem: toSurface(subst, v.Elem)}
	case types.Function:
		params := make([]ast.Type, len(v.Params))
		for i, p := range v.Params {
			params[i] = toSurface(subst, p)
		}
		return ast.Function{Params: params, Ret: toSurface(subst, v.Return)}
	case types.Object:
		fields := make(map[string]ast.Type, len(v.Fields))
		for k, ft := range v.Fields {
			fields[k] = toSurface(subst, ft)
		}
		return ast.Object{Name: v.Name, Fields: fields}
	case types.Store:
		return ast.Store{Name: v.Name, ValueType: toSurface(subst, v.ValueType)}
	case types.Actor:
		mt := make(map[string]ast.Type, len(v.MessageTypes))
		for k, m := range v.MessageTypes {
			mt[k] = toSurface(subst, m)
		}
		return ast.Actor{Name: v.Name, MessageTypes: mt}
	case types.Forall:
		return toSurface(subst, v.Body)
	case types.Union:
		if len(v.Alts) > 0 {
			return toSurface(subst, v.Alts[0])
		}
		return ast.Unknown
	default:
		return ast.Unknown
	}
}
