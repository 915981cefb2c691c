package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEffectSetUnionIsPointwiseOr(t *testing.T) {
	a := EffectSet{IO: true, Mutation: true}
	b := EffectSet{Store: true, Mutation: true}

	got := a.Union(b)
	require.Equal(t, EffectSet{IO: true, Store: true, ActorSend: false, Mutation: true}, got)
}

func TestEffectSetEqualRequiresAllFourToMatch(t *testing.T) {
	base := EffectSet{IO: true}
	require.True(t, base.Equal(EffectSet{IO: true}))
	require.False(t, base.Equal(EffectSet{IO: true, Store: true}))
	require.False(t, base.Equal(EffectSet{}))
}
