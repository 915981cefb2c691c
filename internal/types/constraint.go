package types

import "sync/atomic"

var typeVarCounter atomic.Uint32

// NewTypeVar allocates a fresh inference placeholder. Like ast.NewNodeID,
// this is a separate process-wide atomic counter per §5 ("a separate
// atomic type-variable counter").
func NewTypeVar() TypeVar {
	return TypeVar(typeVarCounter.Add(1))
}

// ResetTypeVarCounterForTests rewinds the global counter for deterministic
// test expectations; never call it outside of tests.
func ResetTypeVarCounterForTests() {
	typeVarCounter.Store(0)
}

// ConstraintKind closes over the five constraint shapes §3 names.
type ConstraintKind int

const (
	CEqual ConstraintKind = iota
	CHasField
	CHasMethod
	CIsCallable
	CIsIterable
)

// Constraint is one of Equal(T,T), HasField(T,name,T), HasMethod(T,name,T),
// IsCallable(T,[T],T), IsIterable(T,T) (§3).
type Constraint struct {
	Kind ConstraintKind

	// Equal
	A, B Type

	// HasField / HasMethod
	Target Type
	Name   string
	Result Type

	// IsCallable
	Callee Type
	Args   []Type
	Ret    Type

	// IsIterable
	Iterable Type
	Elem     Type
}

func Equal(a, b Type) Constraint { return Constraint{Kind: CEqual, A: a, B: b} }

func HasField(target Type, name string, result Type) Constraint {
	return Constraint{Kind: CHasField, Target: target, Name: name, Result: result}
}

func HasMethod(target Type, name string, result Type) Constraint {
	return Constraint{Kind: CHasMethod, Target: target, Name: name, Result: result}
}

func IsCallable(callee Type, args []Type, ret Type) Constraint {
	return Constraint{Kind: CIsCallable, Callee: callee, Args: args, Ret: ret}
}

func IsIterable(iterable, elem Type) Constraint {
	return Constraint{Kind: CIsIterable, Iterable: iterable, Elem: elem}
}
