package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coral-lang/coralc/internal/ast"
)

func writeTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, rel := range files {
		full := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("// fixture\n"), 0o644))
	}
	return root
}

func TestResolveSingleGlob(t *testing.T) {
	root := writeTree(t, "models/user.cor", "models/order.cor", "views/index.cor")

	l := New(root)
	imp, err := l.Resolve("models", "models/*.cor")
	require.NoError(t, err)
	require.Len(t, imp.Files, 2)
	require.Contains(t, imp.Files[0], "order.cor")
	require.Contains(t, imp.Files[1], "user.cor")
}

func TestResolveDoubleStarGlob(t *testing.T) {
	root := writeTree(t, "a/one.cor", "a/b/two.cor", "a/b/c/three.cor")

	l := New(root)
	imp, err := l.Resolve("everything", "a/**/*.cor")
	require.NoError(t, err)
	require.Len(t, imp.Files, 3)
}

func TestResolveNoMatches(t *testing.T) {
	root := writeTree(t, "models/user.cor")

	l := New(root)
	imp, err := l.Resolve("missing", "nope/*.cor")
	require.NoError(t, err)
	require.Empty(t, imp.Files)
}

func TestResolveInvalidGlob(t *testing.T) {
	root := writeTree(t)

	l := New(root)
	_, err := l.Resolve("bad", "[")
	require.Error(t, err)
}

func TestResolveStmtFromAndTo(t *testing.T) {
	root := writeTree(t, "in/a.cor", "out/b.cor")

	l := New(root)
	from, to, err := l.ResolveStmt(ast.ImportStmt{Name: "mod", From: "in/*.cor", To: "out/*.cor"})
	require.NoError(t, err)
	require.Len(t, from.Files, 1)
	require.Len(t, to.Files, 1)
}

func TestResolveStmtBareUse(t *testing.T) {
	l := New(writeTree(t))

	from, to, err := l.ResolveStmt(ast.ImportStmt{Name: "mymod"})
	require.NoError(t, err)
	require.Nil(t, to)
	require.NotNil(t, from)
	require.Equal(t, "mymod", from.Name)
	require.Empty(t, from.Files)
}

func TestResolveProgramSkipsNonImportStmts(t *testing.T) {
	root := writeTree(t, "lib/util.cor")

	program := &ast.Program{
		Statements: []*ast.Stmt{
			ast.NewStmt(ast.DefaultSpan(), ast.ImportStmt{Name: "util", From: "lib/*.cor"}),
			ast.NewStmt(ast.DefaultSpan(), ast.BreakStmt{}),
		},
	}

	l := New(root)
	imports, err := l.ResolveProgram(program)
	require.NoError(t, err)
	require.Len(t, imports, 1)
	require.Equal(t, "util", imports[0].Name)
}

func TestResolveAllSortsByName(t *testing.T) {
	root := writeTree(t, "a/x.cor", "b/x.cor")

	l := New(root)
	resolved, err := l.ResolveAll(map[string]string{
		"zeta":  "b/*.cor",
		"alpha": "a/*.cor",
	})
	require.NoError(t, err)
	require.Len(t, resolved, 2)
	require.Equal(t, "alpha", resolved[0].Name)
	require.Equal(t, "zeta", resolved[1].Name)
}
