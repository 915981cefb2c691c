// Package loader turns an `import NAME from/to "glob"` path into a
// deterministic list of candidate source files. It does not read or link
// those files — resolving and compiling each unit is the driver's job.
package loader

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/coral-lang/coralc/internal/ast"
)

// Import is one resolved `import` statement: the requested name plus the
// sorted list of files its glob matched under root.
type Import struct {
	Name  string
	Glob  string
	Files []string
}

// Loader resolves import globs against a fixed project root, grounded on
// termfx-morfx's doublestar-based FileWalker but simplified to a single
// synchronous glob call since a compiler's import resolution runs once
// per unit, not over a live filesystem watch.
type Loader struct {
	Root string
}

func New(root string) *Loader { return &Loader{Root: root} }

// Resolve expands pattern (relative to the loader's root) into a sorted
// list of the files it matches; the pattern alone decides which files
// count (no .cor filter is applied). An empty result is not an error — the
// caller decides whether a zero-file import is fatal.
func (l *Loader) Resolve(name, pattern string) (*Import, error) {
	full := filepath.Join(l.Root, pattern)
	rel, err := filepath.Rel(l.Root, full)
	if err != nil {
		return nil, fmt.Errorf("import %q: %w", name, err)
	}

	matches, err := doublestar.FilepathGlob(filepath.ToSlash(filepath.Join(l.Root, rel)))
	if err != nil {
		return nil, fmt.Errorf("import %q: invalid glob %q: %w", name, pattern, err)
	}

	sort.Strings(matches)
	return &Import{Name: name, Glob: pattern, Files: matches}, nil
}

// ResolveAll resolves a batch of imports in name order, stopping at the
// first malformed glob.
func (l *Loader) ResolveAll(imports map[string]string) ([]*Import, error) {
	names := make([]string, 0, len(imports))
	for name := range imports {
		names = append(names, name)
	}
	sort.Strings(names)

	resolved := make([]*Import, 0, len(names))
	for _, name := range names {
		imp, err := l.Resolve(name, imports[name])
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, imp)
	}
	return resolved, nil
}

// ResolveStmt resolves one `import`/`use`/`mod` statement (§4.2). `from`
// pulls a module in from a path glob; `to` re-exports it to a destination
// glob; the bare `use NAME`/`mod NAME` forms carry neither and resolve to
// the zero-file Import{Name: NAME} placeholder, since plain `use`/`mod`
// only declares an in-program module boundary rather than pulling in
// external source.
func (l *Loader) ResolveStmt(stmt ast.ImportStmt) (from, to *Import, err error) {
	if stmt.From != "" {
		from, err = l.Resolve(stmt.Name, stmt.From)
		if err != nil {
			return nil, nil, err
		}
	}
	if stmt.To != "" {
		to, err = l.Resolve(stmt.Name, stmt.To)
		if err != nil {
			return nil, nil, err
		}
	}
	if from == nil && to == nil {
		from = &Import{Name: stmt.Name}
	}
	return from, to, nil
}

// ResolveProgram resolves every Import statement at the top level of
// program, in source order, stopping at the first malformed glob.
func (l *Loader) ResolveProgram(program *ast.Program) ([]*Import, error) {
	var out []*Import
	for _, s := range program.Statements {
		imp, ok := s.Kind.(ast.ImportStmt)
		if !ok {
			continue
		}
		from, to, err := l.ResolveStmt(imp)
		if err != nil {
			file := "<unknown>"
			if s.Span.File != nil {
				file = *s.Span.File
			}
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		if from != nil {
			out = append(out, from)
		}
		if to != nil {
			out = append(out, to)
		}
	}
	return out, nil
}
