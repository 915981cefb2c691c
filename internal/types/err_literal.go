package types

// ElaborateErr implements the §9 open-question resolution for the `Err`
// literal: when it appears in a position expected to unify against a
// Result, it elaborates to Result(fresh, fresh); otherwise it stays as a
// fresh, unconstrained Var (legal only directly under an error-chain),
// following original_source/src/resolver/inference.rs.
func ElaborateErr(expectResult bool) Type {
	if expectResult {
		return ResultT{Ok: Var{ID: NewTypeVar()}, Err: Var{ID: NewTypeVar()}}
	}
	return Var{ID: NewTypeVar()}
}
