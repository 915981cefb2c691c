// Package ast defines Coral's abstract syntax tree: node identity, source
// spans, the surface Type lattice, and every Expr/Stmt shape the parser
// and resolver operate on.
package ast

import "sync/atomic"

// NodeId is a monotone, process-unique identifier attached to every
// expression and statement (§3). It is used by later passes (annotation
// maps, diagnostics correlation) and is never reused.
//
// Per §5, the counter is process-wide and atomically incremented; it is
// never reset during a run, even across multiple compilations in the same
// process.
type NodeId uint32

var nodeIDCounter atomic.Uint32

// NewNodeID allocates the next NodeId. Safe for concurrent use, though the
// pipeline itself runs single-threaded per §5.
func NewNodeID() NodeId {
	return NodeId(nodeIDCounter.Add(1))
}

// ResetNodeIDCounterForTests rewinds the global counter. Exists solely so
// table-driven tests can assert on small, predictable NodeId values; never
// call it outside of tests.
func ResetNodeIDCounterForTests() {
	nodeIDCounter.Store(0)
}

// SourceSpan locates a node in its originating file. File is a pointer so
// that spans can share one backing string. The parser does not share it:
// each span it builds points at its own fresh "<source>" string, not at
// the real file name.
type SourceSpan struct {
	File      *string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// defaultFile backs DefaultSpan, used by synthesized nodes in tests.
var defaultFile = "<test>"

// DefaultSpan returns the span synthesized AST nodes carry in tests, per §3.
func DefaultSpan() SourceSpan {
	return SourceSpan{File: &defaultFile, StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 1}
}

// Node is implemented by every Expr and Stmt.
type Node interface {
	NodeID() NodeId
	NodeSpan() SourceSpan
}
