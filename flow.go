package eightebed

import "fmt"

// flowAnalyzer implements the validity-flow pass of spec §4.4: a
// single scoped Env[bool] tracks which variable names are provably
// valid (non-dangling) pointers at a given program point. Assign and
// Free clear the entire chain, since either can invalidate aliases the
// analyzer has no way to trace.
type flowAnalyzer struct{}

func newFlowAnalyzer() *flowAnalyzer { return &flowAnalyzer{} }

func (fa *flowAnalyzer) analyzeBlock(b *Block, valid *Env[bool]) error {
	for _, s := range b.Stmts {
		if err := fa.analyzeStmt(s, valid); err != nil {
			return err
		}
	}
	return nil
}

func (fa *flowAnalyzer) analyzeStmt(s Stmt, valid *Env[bool]) error {
	switch st := s.(type) {
	case *While:
		if err := fa.analyzeExpr(st.Cond, valid); err != nil {
			return err
		}
		return fa.analyzeBlock(st.Body, valid)

	case *If:
		if err := fa.analyzeExpr(st.Cond, valid); err != nil {
			return err
		}
		thenValid := NewEnv[bool](valid)
		if name, ok := validatedCondition(st.Cond); ok {
			thenValid.Set(name, true)
		}
		if err := fa.analyzeBlock(st.Then, thenValid); err != nil {
			return err
		}
		return fa.analyzeBlock(st.Else, NewEnv[bool](valid))

	case *Free:
		if err := fa.analyzeRef(st.Ref, valid); err != nil {
			return err
		}
		valid.Clear()
		return nil

	case *Print:
		return fa.analyzeExpr(st.Expr, valid)

	case *Assign:
		if err := fa.analyzeRef(st.Ref, valid); err != nil {
			return err
		}
		if err := fa.analyzeExpr(st.Expr, valid); err != nil {
			return err
		}
		valid.Clear()
		return nil

	default:
		return FlowError{Message: fmt.Sprintf("unknown statement %T", s)}
	}
}

func (fa *flowAnalyzer) analyzeExpr(e Expr, valid *Env[bool]) error {
	switch ex := e.(type) {
	case *IntConst:
		return nil

	case *RefExpr:
		return fa.analyzeRef(ex.Ref, valid)

	case *BinOp:
		if err := fa.analyzeExpr(ex.LHS, valid); err != nil {
			return err
		}
		return fa.analyzeExpr(ex.RHS, valid)

	case *Malloc:
		return nil

	case *Valid:
		return fa.analyzeExpr(ex.Expr, valid)

	default:
		return FlowError{Message: fmt.Sprintf("unknown expression %T", e)}
	}
}

// analyzeRef checks a Ref in contexts that do not require provable
// validity (e.g. the target of an Assign, or a Ref nested in a
// non-dereferencing position).
func (fa *flowAnalyzer) analyzeRef(r Ref, valid *Env[bool]) error {
	switch rf := r.(type) {
	case *VarRef:
		return nil
	case *DeRef:
		return fa.requireValid(rf.Source, valid)
	case *DottedRef:
		return fa.analyzeRef(rf.Source, valid)
	default:
		return FlowError{Message: fmt.Sprintf("unknown reference %T", r)}
	}
}

// requireValid checks that r denotes a pointer proven valid by the
// current context before it may be dereferenced (spec §4.4,
// §7: "Attempt to dereference X in non-safe context").
func (fa *flowAnalyzer) requireValid(r Ref, valid *Env[bool]) error {
	name, ok := validatedName(r)
	if !ok {
		return FlowError{Message: fmt.Sprintf("Attempt to dereference %s in non-safe context", refName(r))}
	}
	if _, ok := valid.Lookup(name); !ok {
		return FlowError{Message: fmt.Sprintf("Attempt to dereference %s in non-safe context", name)}
	}
	return nil
}

// validatedName extracts the bare variable name a validity assertion
// can be keyed on. Only a plain VarRef is trackable (spec §4.4); a
// DeRef or DottedRef source is never itself provably valid through
// this simple name-based context.
func validatedName(r Ref) (string, bool) {
	if v, ok := r.(*VarRef); ok {
		return v.Name, true
	}
	return "", false
}

// validatedCondition reports whether an If's condition is exactly
// `valid x` for some bare variable x, the one form spec §4.4 lets a
// branch use to seed its child validity context.
func validatedCondition(e Expr) (string, bool) {
	v, ok := e.(*Valid)
	if !ok {
		return "", false
	}
	re, ok := v.Expr.(*RefExpr)
	if !ok {
		return "", false
	}
	return validatedName(re.Ref)
}

func refName(r Ref) string {
	switch rf := r.(type) {
	case *VarRef:
		return rf.Name
	case *DeRef:
		return "@" + refName(rf.Source)
	case *DottedRef:
		return "[" + refName(rf.Source) + "]." + rf.Member
	default:
		return "?"
	}
}
