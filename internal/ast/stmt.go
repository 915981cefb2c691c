package ast

// Stmt is every statement node: identity, span, and a Kind payload (§3).
type Stmt struct {
	ID   NodeId
	Span SourceSpan
	Kind StmtKind
}

func (s *Stmt) NodeID() NodeId       { return s.ID }
func (s *Stmt) NodeSpan() SourceSpan { return s.Span }

// NewStmt allocates a Stmt with a fresh NodeId.
func NewStmt(span SourceSpan, kind StmtKind) *Stmt {
	return &Stmt{ID: NewNodeID(), Span: span, Kind: kind}
}

// StmtKind is implemented by every concrete statement payload.
type StmtKind interface{ stmtKind() }

type ExpressionStmt struct{ Expr *Expr }

func (ExpressionStmt) stmtKind() {}

// AssignmentStmt is `IDENT is EXPR` (§4.2, Op == "is"), the `IDENT = EXPR`
// ASSIGN-token form (Op == "="), or a compound-assignment form (+=, -=, ...)
// carried in Op.
type AssignmentStmt struct {
	Target *Expr // Identifier, FieldAccess, or Index — assignable lvalues
	Op     string
	Value  *Expr
}

func (AssignmentStmt) stmtKind() {}

type IfStmt struct {
	Cond       *Expr
	Then       []*Stmt
	Else       []*Stmt // nil when there is no else branch
}

func (IfStmt) stmtKind() {}

// UnlessStmt is `unless cond body`, defined as `if (not cond) body` (§4.4).
type UnlessStmt struct {
	Cond *Expr
	Body []*Stmt
}

func (UnlessStmt) stmtKind() {}

type WhileStmt struct {
	Cond *Expr
	Body []*Stmt
}

func (WhileStmt) stmtKind() {}

// UntilStmt is a body-first loop (§4.4): body runs once unconditionally,
// then repeats while Cond is false.
type UntilStmt struct {
	Cond *Expr
	Body []*Stmt
}

func (UntilStmt) stmtKind() {}

// IterateStmt is `iterate` over an iterable, binding Var (defaults to "$"
// per §9 when the source omitted a name).
type IterateStmt struct {
	Var      string
	Iterable *Expr
	Body     []*Stmt
}

func (IterateStmt) stmtKind() {}

// ForStmt is `for NAME in ITERABLE`.
type ForStmt struct {
	Var      string
	Iterable *Expr
	Body     []*Stmt
}

func (ForStmt) stmtKind() {}

type ReturnStmt struct{ Value *Expr } // nil for a bare `return`

func (ReturnStmt) stmtKind() {}

type BreakStmt struct{}

func (BreakStmt) stmtKind() {}

type ContinueStmt struct{}

func (ContinueStmt) stmtKind() {}

type FunctionStmt struct {
	Name       string
	Params     []Parameter
	ReturnType Type // nil when unannotated
	Body       []*Stmt
}

func (FunctionStmt) stmtKind() {}

type ObjectStmt struct {
	Name    string
	Fields  []Field
	Methods []ObjectMethod
}

func (ObjectStmt) stmtKind() {}

type StoreStmt struct {
	Name    string
	Fields  []Field
	Methods []ObjectMethod
	Make    *Constructor
}

func (StoreStmt) stmtKind() {}

type ActorStmt struct {
	Name     string
	Fields   []Field
	Handlers []MessageHandler
	Make     *Constructor
	Joins    []JoinRef
}

func (ActorStmt) stmtKind() {}

// ImportStmt is `import NAME from/to "path"` (§4.2 call-syntax section;
// §4.4/loader resolves the path, see internal/loader).
type ImportStmt struct {
	Name string
	From string
	To   string
}

func (ImportStmt) stmtKind() {}

// ErrorHandlerStmt wraps a full statement in a postfix error-chain when
// the wrapped form is a statement rather than a sub-expression.
type ErrorHandlerStmt struct {
	Wrapped *Stmt
	Handler ErrorHandler
}

func (ErrorHandlerStmt) stmtKind() {}

type PipeStmt struct{ Value *Expr }

func (PipeStmt) stmtKind() {}

type IoStmt struct{ Value *Expr }

func (IoStmt) stmtKind() {}

// Program is the parser's top-level output (§4.2).
type Program struct {
	Statements []*Stmt
	Span       SourceSpan
}
