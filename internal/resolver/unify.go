package resolver

import "github.com/coral-lang/coralc/internal/types"

// bind produces the singleton substitution v -> t, after the occurs-check
// (§4.3/§8): a Var never unifies with a type that contains itself.
func bind(v types.TypeVar, t types.Type) (types.Substitution, *TypeError) {
	if vv, ok := t.(types.Var); ok && vv.ID == v {
		return types.Substitution{}, nil
	}
	if types.Occurs(v, t) {
		return nil, errInfinite(v, t)
	}
	return types.Substitution{v: t}, nil
}

// unify implements Phase 3's Robinson unification (§4.3): classical
// structural unification over the inference lattice with occurs-check.
func unify(a, b types.Type) (types.Substitution, *TypeError) {
	if av, ok := a.(types.Var); ok {
		return bind(av.ID, b)
	}
	if bv, ok := b.(types.Var); ok {
		return bind(bv.ID, a)
	}

	switch av := a.(type) {
	case types.Primitive:
		bv, ok := b.(types.Primitive)
		if !ok || av.Name != bv.Name {
			return nil, errMismatch(a, b)
		}
		return types.Substitution{}, nil

	case types.ListT:
		bv, ok := b.(types.ListT)
		if !ok {
			return nil, errMismatch(a, b)
		}
		return unify(av.Elem, bv.Elem)

	case types.MapT:
		bv, ok := b.(types.MapT)
		if !ok {
			return nil, errMismatch(a, b)
		}
		s1, err := unify(av.Key, bv.Key)
		if err != nil {
			return nil, err
		}
		s2, err := unify(s1.Apply(av.Value), s1.Apply(bv.Value))
		if err != nil {
			return nil, err
		}
		return types.Compose(s1, s2), nil

	case types.ResultT:
		bv, ok := b.(types.ResultT)
		if !ok {
			return nil, errMismatch(a, b)
		}
		s1, err := unify(av.Ok, bv.Ok)
		if err != nil {
			return nil, err
		}
		s2, err := unify(s1.Apply(av.Err), s1.Apply(bv.Err))
		if err != nil {
			return nil, err
		}
		return types.Compose(s1, s2), nil

	case types.PipeT:
		bv, ok := b.(types.PipeT)
		if !ok {
			return nil, errMismatch(a, b)
		}
		return unify(av.Elem, bv.Elem)

	case types.IteratorT:
		bv, ok := b.(types.IteratorT)
		if !ok {
			return nil, errMismatch(a, b)
		}
		return unify(av.Elem, bv.Elem)

	case types.Function:
		bv, ok := b.(types.Function)
		if !ok {
			return nil, errMismatch(a, b)
		}
		if len(av.Params) != len(bv.Params) {
			return nil, errArity(len(av.Params), len(bv.Params))
		}
		if !av.Effects.Equal(bv.Effects) {
			return nil, errMismatch(a, b)
		}
		subst := types.Substitution{}
		for i := range av.Params {
			s, err := unify(subst.Apply(av.Params[i]), subst.Apply(bv.Params[i]))
			if err != nil {
				return nil, err
			}
			subst = types.Compose(subst, s)
		}
		s, err := unify(subst.Apply(av.Return), subst.Apply(bv.Return))
		if err != nil {
			return nil, err
		}
		return types.Compose(subst, s), nil

	case types.Object:
		bv, ok := b.(types.Object)
		if !ok || av.Name != bv.Name {
			return nil, errMismatch(a, b)
		}
		return unifyFieldSets(av.Fields, bv.Fields)

	case types.Store:
		bv, ok := b.(types.Store)
		if !ok || av.Name != bv.Name {
			return nil, errMismatch(a, b)
		}
		s1, err := unify(av.ValueType, bv.ValueType)
		if err != nil {
			return nil, err
		}
		s2, err := unifyFieldSets(av.Fields, bv.Fields)
		if err != nil {
			return nil, err
		}
		return types.Compose(s1, s2), nil

	case types.Actor:
		bv, ok := b.(types.Actor)
		if !ok || av.Name != bv.Name {
			return nil, errMismatch(a, b)
		}
		return unifyFieldSets(av.Fields, bv.Fields)
	}

	return nil, errMismatch(a, b)
}

// unifyFieldSets unifies only the fields present in both maps (§4.3:
// "componentwise unification of fields present in both").
func unifyFieldSets(a, b map[string]types.Type) (types.Substitution, *TypeError) {
	subst := types.Substitution{}
	for name, at := range a {
		bt, ok := b[name]
		if !ok {
			continue
		}
		s, err := unify(subst.Apply(at), subst.Apply(bt))
		if err != nil {
			return nil, err
		}
		subst = types.Compose(subst, s)
	}
	return subst, nil
}

// Solve runs the §4.3 work-queue solver: each successful unification
// rewrites remaining constraints through the new substitution before
// continuing; compose(s_old, s_new) threads the accumulated substitution.
func Solve(constraints []types.Constraint) (types.Substitution, *TypeError) {
	subst := types.Substitution{}
	queue := append([]types.Constraint(nil), constraints...)

	for len(queue) > 0 {
		c := subst.ApplyConstraint(queue[0])
		queue = queue[1:]

		step, extra, err := solveOne(c)
		if err != nil {
			return nil, err
		}
		subst = types.Compose(subst, step)
		for i := range queue {
			queue[i] = step.ApplyConstraint(queue[i])
		}
		queue = append(queue, extra...)
	}
	return subst, nil
}

// solveOne dispatches a single constraint, returning the substitution it
// produces plus any newly enqueued constraints (§4.3's "solved by
// rewriting" rules).
func solveOne(c types.Constraint) (types.Substitution, []types.Constraint, *TypeError) {
	switch c.Kind {
	case types.CEqual:
		s, err := unify(c.A, c.B)
		return s, nil, err

	case types.CHasField:
		return solveHasField(c)

	case types.CHasMethod:
		return solveHasMethod(c)

	case types.CIsCallable:
		return solveIsCallable(c)

	case types.CIsIterable:
		return solveIsIterable(c)
	}
	return nil, nil, errConstraint(c)
}

func solveHasField(c types.Constraint) (types.Substitution, []types.Constraint, *TypeError) {
	switch t := c.Target.(type) {
	case types.Object:
		ft, ok := t.Fields[c.Name]
		if !ok {
			return nil, nil, errField(c.Name)
		}
		s, err := unify(c.Result, ft)
		return s, nil, err
	case types.Store:
		ft, ok := t.Fields[c.Name]
		if !ok {
			return nil, nil, errField(c.Name)
		}
		s, err := unify(c.Result, ft)
		return s, nil, err
	case types.Actor:
		ft, ok := t.Fields[c.Name]
		if !ok {
			return nil, nil, errField(c.Name)
		}
		s, err := unify(c.Result, ft)
		return s, nil, err
	case types.Var:
		materialized := types.Object{
			Name:    "",
			Fields:  map[string]types.Type{c.Name: c.Result},
			Methods: map[string]types.Type{},
		}
		s, err := bind(t.ID, materialized)
		return s, nil, err
	default:
		return nil, nil, errNotObject(c.Target)
	}
}

func solveHasMethod(c types.Constraint) (types.Substitution, []types.Constraint, *TypeError) {
	switch t := c.Target.(type) {
	case types.Object:
		mt, ok := t.Methods[c.Name]
		if !ok {
			return nil, nil, errMethod(c.Name)
		}
		s, err := unify(c.Result, mt)
		return s, nil, err
	case types.Store:
		mt, ok := t.Methods[c.Name]
		if !ok {
			return nil, nil, errMethod(c.Name)
		}
		s, err := unify(c.Result, mt)
		return s, nil, err
	case types.Actor:
		mt, ok := t.Methods[c.Name]
		if !ok {
			return nil, nil, errMethod(c.Name)
		}
		s, err := unify(c.Result, mt)
		return s, nil, err
	case types.Var:
		materialized := types.Object{
			Name:    "",
			Fields:  map[string]types.Type{},
			Methods: map[string]types.Type{c.Name: c.Result},
		}
		s, err := bind(t.ID, materialized)
		return s, nil, err
	default:
		return nil, nil, errNotObject(c.Target)
	}
}

func solveIsCallable(c types.Constraint) (types.Substitution, []types.Constraint, *TypeError) {
	switch t := c.Callee.(type) {
	case types.Function:
		if len(t.Params) != len(c.Args) {
			return nil, nil, errArity(len(t.Params), len(c.Args))
		}
		extra := make([]types.Constraint, 0, len(c.Args)+1)
		for i, arg := range c.Args {
			extra = append(extra, types.Equal(t.Params[i], arg))
		}
		extra = append(extra, types.Equal(t.Return, c.Ret))
		return types.Substitution{}, extra, nil
	case types.Var:
		materialized := types.Function{
			Params:  append([]types.Type(nil), c.Args...),
			Return:  c.Ret,
			Effects: types.EffectSet{},
		}
		s, err := bind(t.ID, materialized)
		return s, nil, err
	default:
		return nil, nil, errNotCallable(c.Callee)
	}
}

func solveIsIterable(c types.Constraint) (types.Substitution, []types.Constraint, *TypeError) {
	switch t := c.Iterable.(type) {
	case types.ListT:
		s, err := unify(t.Elem, c.Elem)
		return s, nil, err
	case types.IteratorT:
		s, err := unify(t.Elem, c.Elem)
		return s, nil, err
	case types.Var:
		materialized := types.ListT{Elem: c.Elem}
		s, err := bind(t.ID, materialized)
		return s, nil, err
	default:
		return nil, nil, errNotIterable(c.Iterable)
	}
}
