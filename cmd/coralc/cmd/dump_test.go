package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coral-lang/coralc/pkg/coral"
)

func TestRenderModuleListsFunctionAndBlocks(t *testing.T) {
	result, diags := coral.Compile("fn answer\n  return 42\n", "answer.cor")
	require.False(t, diags.HasErrors(), diags.Error())

	out := RenderModule(result.Module)
	require.Contains(t, out, "fn answer(")
	require.Contains(t, out, "L0:")
	require.Contains(t, out, "RETURN")
}

func TestRenderModuleListsBuiltinExterns(t *testing.T) {
	result, diags := coral.Compile("fn answer\n  return 42\n", "answer.cor")
	require.False(t, diags.HasErrors(), diags.Error())

	out := RenderModule(result.Module)
	require.True(t, strings.Contains(out, "extern malloc("))
	require.True(t, strings.Contains(out, "extern map_create("))
}
