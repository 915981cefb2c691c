package resolver

import (
	"fmt"

	"github.com/coral-lang/coralc/internal/types"
)

// TypeErrorKind closes over §4.3's failure-mode list.
type TypeErrorKind int

const (
	TypeMismatch TypeErrorKind = iota
	InfiniteType
	ArityMismatch
	FieldNotFound
	MethodNotFound
	NotAnObject
	NotCallable
	NotIterable
	UnknownVariable
	ConstraintUnsatisfied
)

// TypeError is the resolver's single failure type, covering every §4.3
// variant with just the fields each one needs.
type TypeError struct {
	Kind TypeErrorKind

	// TypeMismatch
	Got, Want types.Type

	// InfiniteType
	Var types.TypeVar
	Occ types.Type

	// ArityMismatch
	N1, N2 int

	// FieldNotFound / MethodNotFound / UnknownVariable
	Name string

	// NotAnObject / NotCallable / NotIterable
	Subject types.Type

	// ConstraintUnsatisfied
	Constraint types.Constraint

	Line, Col int
}

func (e *TypeError) Error() string {
	loc := ""
	if e.Line > 0 {
		loc = fmt.Sprintf(" at %d:%d", e.Line, e.Col)
	}
	switch e.Kind {
	case TypeMismatch:
		return fmt.Sprintf("type mismatch%s: expected %s, got %s", loc, e.Want, e.Got)
	case InfiniteType:
		return fmt.Sprintf("infinite type%s: %s occurs in %s", loc, e.Var, e.Occ)
	case ArityMismatch:
		return fmt.Sprintf("arity mismatch%s: expected %d arguments, got %d", loc, e.N1, e.N2)
	case FieldNotFound:
		return fmt.Sprintf("field not found%s: %s", loc, e.Name)
	case MethodNotFound:
		return fmt.Sprintf("method not found%s: %s", loc, e.Name)
	case NotAnObject:
		return fmt.Sprintf("not an object%s: %s", loc, e.Subject)
	case NotCallable:
		return fmt.Sprintf("not callable%s: %s", loc, e.Subject)
	case NotIterable:
		return fmt.Sprintf("not iterable%s: %s", loc, e.Subject)
	case UnknownVariable:
		return fmt.Sprintf("unknown variable%s: %s", loc, e.Name)
	case ConstraintUnsatisfied:
		return fmt.Sprintf("constraint unsatisfied%s", loc)
	default:
		return fmt.Sprintf("type error%s", loc)
	}
}

func errMismatch(got, want types.Type) *TypeError {
	return &TypeError{Kind: TypeMismatch, Got: got, Want: want}
}

func errInfinite(v types.TypeVar, occ types.Type) *TypeError {
	return &TypeError{Kind: InfiniteType, Var: v, Occ: occ}
}

func errArity(n1, n2 int) *TypeError {
	return &TypeError{Kind: ArityMismatch, N1: n1, N2: n2}
}

func errField(name string) *TypeError {
	return &TypeError{Kind: FieldNotFound, Name: name}
}

func errMethod(name string) *TypeError {
	return &TypeError{Kind: MethodNotFound, Name: name}
}

func errNotObject(t types.Type) *TypeError {
	return &TypeError{Kind: NotAnObject, Subject: t}
}

func errNotCallable(t types.Type) *TypeError {
	return &TypeError{Kind: NotCallable, Subject: t}
}

func errNotIterable(t types.Type) *TypeError {
	return &TypeError{Kind: NotIterable, Subject: t}
}

func errUnknownVar(name string) *TypeError {
	return &TypeError{Kind: UnknownVariable, Name: name}
}

func errConstraint(c types.Constraint) *TypeError {
	return &TypeError{Kind: ConstraintUnsatisfied, Constraint: c}
}
