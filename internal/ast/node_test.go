package ast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewNodeIDMonotonicallyIncreases(t *testing.T) {
	ResetNodeIDCounterForTests()

	a := NewNodeID()
	b := NewNodeID()
	c := NewNodeID()

	require.Equal(t, NodeId(1), a)
	require.Equal(t, NodeId(2), b)
	require.Equal(t, NodeId(3), c)
}

func TestNewExprGetsFreshIDAndUnknownType(t *testing.T) {
	ResetNodeIDCounterForTests()

	span := DefaultSpan()
	e := NewExpr(span, IdentifierExpr{Name: "x"})

	require.Equal(t, NodeId(1), e.NodeID())
	require.Equal(t, span, e.NodeSpan())
	require.Equal(t, Unknown, e.Type_)

	next := NewExpr(span, IdentifierExpr{Name: "y"})
	require.Equal(t, NodeId(2), next.NodeID())
}

func TestDefaultSpanSharesFilePointer(t *testing.T) {
	a := DefaultSpan()
	b := DefaultSpan()
	require.Same(t, a.File, b.File)
	require.Equal(t, "<test>", *a.File)
}
