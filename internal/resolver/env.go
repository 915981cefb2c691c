package resolver

import "github.com/coral-lang/coralc/internal/types"

// typeEnv is the constraint-generation counterpart of Scope: a
// parent-linked chain from name to inference type, extended wherever the
// surface language opens a new binding (lambda params, loop variables,
// function bodies).
type typeEnv struct {
	parent *typeEnv
	vars   map[string]types.Type
}

func newTypeEnv(parent *typeEnv) *typeEnv {
	return &typeEnv{parent: parent, vars: map[string]types.Type{}}
}

func (e *typeEnv) define(name string, t types.Type) { e.vars[name] = t }

func (e *typeEnv) lookup(name string) (types.Type, bool) {
	for s := e; s != nil; s = s.parent {
		if t, ok := s.vars[name]; ok {
			return t, true
		}
	}
	return nil, false
}

func (e *typeEnv) child() *typeEnv { return newTypeEnv(e) }
