package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubstitutionApplyChasesChainedBindings(t *testing.T) {
	ResetTypeVarCounterForTests()
	a, b := NewTypeVar(), NewTypeVar()

	s := Substitution{a: Var{ID: b}, b: Int}
	require.Equal(t, Int, s.Apply(Var{ID: a}))
}

func TestSubstitutionApplyLeavesUnboundVarsAlone(t *testing.T) {
	ResetTypeVarCounterForTests()
	a, b := NewTypeVar(), NewTypeVar()

	s := Substitution{a: Int}
	require.Equal(t, Var{ID: b}, s.Apply(Var{ID: b}))
}

func TestSubstitutionApplyRecursesIntoCompositeTypes(t *testing.T) {
	ResetTypeVarCounterForTests()
	a := NewTypeVar()
	s := Substitution{a: Bool}

	got := s.Apply(ListT{Elem: Var{ID: a}})
	require.Equal(t, ListT{Elem: Bool}, got)

	gotFn := s.Apply(Function{Params: []Type{Var{ID: a}}, Return: Int})
	require.Equal(t, Function{Params: []Type{Bool}, Return: Int}, gotFn)
}

func TestComposeAppliesNewerToOlderRange(t *testing.T) {
	ResetTypeVarCounterForTests()
	a, b := NewTypeVar(), NewTypeVar()

	older := Substitution{a: Var{ID: b}}
	newer := Substitution{b: Int}

	composed := Compose(older, newer)
	require.Equal(t, Int, composed[a])
	require.Equal(t, Int, composed[b])
}

func TestComposeKeepsOlderBindingWhenNewerDoesNotOverlap(t *testing.T) {
	ResetTypeVarCounterForTests()
	a, b := NewTypeVar(), NewTypeVar()

	older := Substitution{a: Int}
	newer := Substitution{b: Bool}

	composed := Compose(older, newer)
	require.Equal(t, Int, composed[a])
	require.Equal(t, Bool, composed[b])
}

func TestFreeVarsCollectsNestedVars(t *testing.T) {
	ResetTypeVarCounterForTests()
	a, b := NewTypeVar(), NewTypeVar()

	free := FreeVars(MapT{Key: Var{ID: a}, Value: ListT{Elem: Var{ID: b}}})
	require.True(t, free[a])
	require.True(t, free[b])
	require.Len(t, free, 2)
}

func TestOccursDetectsSelfReferenceThroughComposites(t *testing.T) {
	ResetTypeVarCounterForTests()
	a := NewTypeVar()

	require.True(t, Occurs(a, ListT{Elem: Var{ID: a}}))
	require.False(t, Occurs(a, Int))
}
