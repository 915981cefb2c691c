package coral

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/require"
)

func TestCompileSimpleFunction(t *testing.T) {
	src := "fn answer\n  return 42\n"
	result, diags := Compile(src, "answer.coral")
	require.False(t, diags.HasErrors(), diags.Error())
	require.NotNil(t, result)
	require.NotNil(t, result.Module)

	var names []string
	for _, fn := range result.Module.Functions {
		names = append(names, fn.Name)
	}
	require.Contains(t, names, "answer")
}

func TestCompileReportsLexErrors(t *testing.T) {
	src := "fn broken\n  return `\n"
	_, diags := Compile(src, "broken.coral")
	require.True(t, diags.HasErrors())
}

func TestNewSessionHasUniqueID(t *testing.T) {
	a := NewSession()
	b := NewSession()
	require.NotEqual(t, a.ID, b.ID)
}

func TestWithRootSetsLoaderRoot(t *testing.T) {
	s := NewSession(WithRoot("/tmp/coral-project"))
	require.Equal(t, "/tmp/coral-project", s.Config.Root)
	require.Equal(t, "/tmp/coral-project", s.Loader.Root)
}

// moduleSummary renders a deterministic, address-free digest of a lowered
// Module suitable for snapshotting — the raw struct carries no stable
// ordering guarantee beyond its slices, which are already emitted in
// source/declaration order.
func moduleSummary(fnNames []string, structNames []string, externNames []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "functions: %s\n", strings.Join(fnNames, ", "))
	fmt.Fprintf(&sb, "structs: %s\n", strings.Join(structNames, ", "))
	fmt.Fprintf(&sb, "externs: %s\n", strings.Join(externNames, ", "))
	return sb.String()
}

func TestCompileObjectConstructionSnapshot(t *testing.T) {
	src := "object Point\n" +
		"  x\n" +
		"  y\n" +
		"\n" +
		"fn origin\n" +
		"  return Point!(0, 0)\n"
	result, diags := Compile(src, "point.coral")
	require.False(t, diags.HasErrors(), diags.Error())

	var fnNames, structNames, externNames []string
	for _, fn := range result.Module.Functions {
		fnNames = append(fnNames, fn.Name)
	}
	for _, s := range result.Module.Structs {
		structNames = append(structNames, s.Name)
	}
	for _, e := range result.Module.Externs {
		externNames = append(externNames, e.Name)
	}

	snaps.MatchSnapshot(t, moduleSummary(fnNames, structNames, externNames))
}
