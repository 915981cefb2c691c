package types

// Substitution maps TypeVars to inference types (§3). Composition
// `compose(s_old, s_new)` applies s_new to the range of s_old, then unions
// the new bindings in.
type Substitution map[TypeVar]Type

// Apply recursively rewrites every Var in t through s.
func (s Substitution) Apply(t Type) Type {
	switch v := t.(type) {
	case Var:
		if bound, ok := s[v.ID]; ok {
			// Chase chains (v -> w -> concrete) without assuming
			// single-hop substitutions, since Compose may have produced
			// a substitution whose range itself contains Vars.
			return s.Apply(bound)
		}
		return v
	case ListT:
		return ListT{Elem: s.Apply(v.Elem)}
	case MapT:
		return MapT{Key: s.Apply(v.Key), Value: s.Apply(v.Value)}
	case ResultT:
		return ResultT{Ok: s.Apply(v.Ok), Err: s.Apply(v.Err)}
	case PipeT:
		return PipeT{Elem: s.Apply(v.Elem)}
	case IteratorT:
		return IteratorT{Elem: s.Apply(v.Elem)}
	case Function:
		params := make([]Type, len(v.Params))
		for i, p := range v.Params {
			params[i] = s.Apply(p)
		}
		return Function{Params: params, Return: s.Apply(v.Return), Effects: v.Effects}
	case Object:
		fields := make(map[string]Type, len(v.Fields))
		for k, ft := range v.Fields {
			fields[k] = s.Apply(ft)
		}
		methods := make(map[string]Type, len(v.Methods))
		for k, mt := range v.Methods {
			methods[k] = s.Apply(mt)
		}
		return Object{Name: v.Name, Fields: fields, Methods: methods}
	case Store:
		fields := make(map[string]Type, len(v.Fields))
		for k, ft := range v.Fields {
			fields[k] = s.Apply(ft)
		}
		methods := make(map[string]Type, len(v.Methods))
		for k, mt := range v.Methods {
			methods[k] = s.Apply(mt)
		}
		return Store{Name: v.Name, ValueType: s.Apply(v.ValueType), Fields: fields, Methods: methods}
	case Actor:
		fields := make(map[string]Type, len(v.Fields))
		for k, ft := range v.Fields {
			fields[k] = s.Apply(ft)
		}
		methods := make(map[string]Type, len(v.Methods))
		for k, mt := range v.Methods {
			methods[k] = s.Apply(mt)
		}
		return Actor{Name: v.Name, MessageTypes: v.MessageTypes, Fields: fields, Methods: methods}
	case Union:
		alts := make([]Type, len(v.Alts))
		for i, a := range v.Alts {
			alts[i] = s.Apply(a)
		}
		return Union{Alts: alts}
	default:
		return t
	}
}

// ApplyConstraint rewrites every Type slot of c through s, used by the
// solver's work-queue loop to push a fresh substitution through remaining
// constraints before continuing (§4.3).
func (s Substitution) ApplyConstraint(c Constraint) Constraint {
	out := c
	switch c.Kind {
	case CEqual:
		out.A, out.B = s.Apply(c.A), s.Apply(c.B)
	case CHasField, CHasMethod:
		out.Target, out.Result = s.Apply(c.Target), s.Apply(c.Result)
	case CIsCallable:
		out.Callee, out.Ret = s.Apply(c.Callee), s.Apply(c.Ret)
		args := make([]Type, len(c.Args))
		for i, a := range c.Args {
			args[i] = s.Apply(a)
		}
		out.Args = args
	case CIsIterable:
		out.Iterable, out.Elem = s.Apply(c.Iterable), s.Apply(c.Elem)
	}
	return out
}

// Compose returns compose(old, new): apply `newer` to the range of
// `older`, then union in newer's own bindings. Associative:
// compose(compose(a,b),c) ≡ compose(a,compose(b,c)) (§8).
func Compose(older, newer Substitution) Substitution {
	out := make(Substitution, len(older)+len(newer))
	for k, v := range older {
		out[k] = newer.Apply(v)
	}
	for k, v := range newer {
		if _, exists := out[k]; !exists {
			out[k] = v
		}
	}
	return out
}

// FreeVars collects every TypeVar occurring in t, used by the occurs-check.
func FreeVars(t Type) map[TypeVar]bool {
	out := map[TypeVar]bool{}
	var walk func(Type)
	walk = func(t Type) {
		switch v := t.(type) {
		case Var:
			out[v.ID] = true
		case ListT:
			walk(v.Elem)
		case MapT:
			walk(v.Key)
			walk(v.Value)
		case ResultT:
			walk(v.Ok)
			walk(v.Err)
		case PipeT:
			walk(v.Elem)
		case IteratorT:
			walk(v.Elem)
		case Function:
			for _, p := range v.Params {
				walk(p)
			}
			walk(v.Return)
		case Object:
			for _, f := range v.Fields {
				walk(f)
			}
			for _, m := range v.Methods {
				walk(m)
			}
		case Store:
			walk(v.ValueType)
			for _, f := range v.Fields {
				walk(f)
			}
			for _, m := range v.Methods {
				walk(m)
			}
		case Actor:
			for _, f := range v.Fields {
				walk(f)
			}
			for _, m := range v.Methods {
				walk(m)
			}
		case Union:
			for _, a := range v.Alts {
				walk(a)
			}
		}
	}
	walk(t)
	return out
}

// Occurs reports whether v occurs free in t — the occurs-check (§4.3/§8).
func Occurs(v TypeVar, t Type) bool {
	return FreeVars(t)[v]
}
