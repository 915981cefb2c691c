package ast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrimitiveStringReturnsName(t *testing.T) {
	require.Equal(t, "i64", I64.String())
	require.Equal(t, "Bool", Bool.String())
}

func TestCompositeTypeStringsNestElementTypes(t *testing.T) {
	require.Equal(t, "List(i64)", List{Elem: I64}.String())
	require.Equal(t, "Map(String, Bool)", Map{Key: String_, Value: Bool}.String())
	require.Equal(t, "Result(i64, String)", Result{Ok: I64, Err: String_}.String())
	require.Equal(t, "Function(i64, i64) -> Bool", Function{Params: []Type{I64, I64}, Ret: Bool}.String())
}

func TestTypesEqualPrimitivesByName(t *testing.T) {
	require.True(t, TypesEqual(I64, Primitive{"i64"}))
	require.False(t, TypesEqual(I64, F64))
}

func TestTypesEqualObjectsAreNominal(t *testing.T) {
	a := Object{Name: "Point", Fields: map[string]Type{"x": I64}}
	b := Object{Name: "Point", Fields: map[string]Type{"x": F64}}
	c := Object{Name: "Vector", Fields: map[string]Type{"x": I64}}

	require.True(t, TypesEqual(a, b), "same name makes objects equal regardless of field types")
	require.False(t, TypesEqual(a, c))
}

func TestTypesEqualListsAreStructural(t *testing.T) {
	require.True(t, TypesEqual(List{Elem: I64}, List{Elem: I64}))
	require.False(t, TypesEqual(List{Elem: I64}, List{Elem: F64}))
}

func TestTypesEqualRejectsMismatchedVariants(t *testing.T) {
	require.False(t, TypesEqual(I64, List{Elem: I64}))
	require.False(t, TypesEqual(Object{Name: "Point"}, Store{Name: "Point"}))
}

func TestTypeVarStringIncludesID(t *testing.T) {
	require.Equal(t, "TypeVar(#0)", TypeVar{ID: 0}.String())
	require.Equal(t, "TypeVar(#42)", TypeVar{ID: 42}.String())
}

func TestLiteralKindIsFalsy(t *testing.T) {
	require.True(t, LitNo.IsFalsy())
	require.True(t, LitErr.IsFalsy())
	require.False(t, LitYes.IsFalsy())
	require.False(t, LitInteger.IsFalsy())
}
