package lower

import "github.com/coral-lang/coralc/internal/ast"

// binding is one lowering-time symbol table entry (§4.4: "A symbol table
// maps source identifiers to { inferred_type, target_type, value_id }").
type binding struct {
	inferredType ast.Type
	targetType   TypeRef
	value        Value
}

// symtab is a parent-linked chain of bindings, grounded on the same
// chained-scope shape internal/resolver's Scope/typeEnv use — functions
// open a fresh child scope (§4.4).
type symtab struct {
	parent *symtab
	vars   map[string]binding
}

func newSymtab(parent *symtab) *symtab {
	return &symtab{parent: parent, vars: map[string]binding{}}
}

func (s *symtab) define(name string, b binding) { s.vars[name] = b }

func (s *symtab) lookup(name string) (binding, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if b, ok := cur.vars[name]; ok {
			return b, true
		}
	}
	return binding{}, false
}

func (s *symtab) child() *symtab { return newSymtab(s) }
