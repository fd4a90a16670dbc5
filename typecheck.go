package eightebed

import "fmt"

// CheckedProgram is a Program that has passed both the structural
// type check and the validity-flow analysis (spec §6: check(AST) ->
// CheckedAST | Error). It is safe to Emit.
type CheckedProgram struct {
	Program *Program
}

// Check performs both passes described in spec §4.3 and §4.4 and
// returns a CheckedProgram, or the first TypeError/FlowError
// encountered.
func Check(p *Program) (*CheckedProgram, error) {
	tc := newTypeChecker()
	if err := tc.checkProgram(p); err != nil {
		return nil, err
	}
	fa := newFlowAnalyzer()
	if err := fa.analyzeBlock(p.Block, NewEnv[bool](nil)); err != nil {
		return nil, err
	}
	return &CheckedProgram{Program: p}, nil
}

// typeChecker walks the AST with two scoped environments, Types and
// Vars, as described in spec §4.3.
type typeChecker struct{}

func newTypeChecker() *typeChecker { return &typeChecker{} }

func (tc *typeChecker) checkProgram(p *Program) error {
	types := NewEnv[Type](nil)
	vars := NewEnv[Type](nil)
	for _, td := range p.TypeDecls {
		if err := tc.checkTypeDecl(td, types, vars); err != nil {
			return err
		}
	}
	for _, vd := range p.VarDecls {
		if err := tc.checkVarDecl(vd, types, vars); err != nil {
			return err
		}
	}
	return tc.checkBlock(p.Block, types, vars)
}

func (tc *typeChecker) checkTypeDecl(td *TypeDecl, types, vars *Env[Type]) error {
	if err := types.Declare(td.Name, td.Type); err != nil {
		return TypeError{Message: err.Error()}
	}
	if err := tc.checkType(td.Type, types, vars); err != nil {
		return err
	}
	if _, ok := td.Type.(*TypeStruct); !ok {
		return TypeError{Message: "Only structs may be named"}
	}
	return nil
}

func (tc *typeChecker) checkVarDecl(vd *VarDecl, types, vars *Env[Type]) error {
	if err := tc.checkType(vd.Type, types, vars); err != nil {
		return err
	}
	if err := vars.Declare(vd.Name, vd.Type); err != nil {
		return TypeError{Message: err.Error()}
	}
	return nil
}

// checkType validates the structural shape rules of spec §4.3: no
// struct may contain a struct, and every pointer must target a Named
// type.
func (tc *typeChecker) checkType(t Type, types, vars *Env[Type]) error {
	switch tt := t.(type) {
	case TypeInt, TypeVoid, TypeNamed:
		return nil
	case *TypeStruct:
		for _, m := range tt.Members {
			if err := tc.checkType(m.Type, types, vars); err != nil {
				return err
			}
			if _, ok := m.Type.(*TypeStruct); ok {
				return TypeError{Message: "Structs may not contain other structs"}
			}
		}
		return nil
	case TypePtr:
		if err := tc.checkType(tt.Target, types, vars); err != nil {
			return err
		}
		if _, ok := tt.Target.(TypeNamed); !ok {
			return TypeError{Message: "Pointer type must point to named type"}
		}
		return nil
	default:
		return TypeError{Message: fmt.Sprintf("unknown type %T", t)}
	}
}

func (tc *typeChecker) checkBlock(b *Block, types, vars *Env[Type]) error {
	blockTypes := NewEnv[Type](types)
	blockVars := NewEnv[Type](vars)
	for _, s := range b.Stmts {
		if err := tc.checkStmt(s, blockTypes, blockVars); err != nil {
			return err
		}
	}
	return nil
}

func (tc *typeChecker) checkStmt(s Stmt, types, vars *Env[Type]) error {
	switch st := s.(type) {
	case *While:
		if _, err := tc.checkExpr(st.Cond, types, vars); err != nil {
			return err
		}
		return tc.checkBlock(st.Body, types, vars)

	case *If:
		if _, err := tc.checkExpr(st.Cond, types, vars); err != nil {
			return err
		}
		if err := tc.checkBlock(st.Then, types, vars); err != nil {
			return err
		}
		return tc.checkBlock(st.Else, types, vars)

	case *Free:
		refType, err := tc.checkRef(st.Ref, types, vars)
		if err != nil {
			return err
		}
		if refType.PointsTo() == nil {
			return TypeError{Message: fmt.Sprintf("%s is not a pointer type", refType)}
		}
		return nil

	case *Print:
		exprType, err := tc.checkExpr(st.Expr, types, vars)
		if err != nil {
			return err
		}
		if !exprType.Equiv(TypeInt{}) {
			return TypeError{Message: fmt.Sprintf("%s is not an int", exprType)}
		}
		return nil

	case *Assign:
		lhsType, err := tc.checkRef(st.Ref, types, vars)
		if err != nil {
			return err
		}
		rhsType, err := tc.checkExpr(st.Expr, types, vars)
		if err != nil {
			return err
		}
		if !rhsType.Equiv(lhsType) {
			return TypeError{Message: fmt.Sprintf("%s not equivalent to %s", rhsType, lhsType)}
		}
		return nil

	default:
		return TypeError{Message: fmt.Sprintf("unknown statement %T", s)}
	}
}

func (tc *typeChecker) checkExpr(e Expr, types, vars *Env[Type]) (Type, error) {
	switch ex := e.(type) {
	case *IntConst:
		return TypeInt{}, nil

	case *RefExpr:
		return tc.checkRef(ex.Ref, types, vars)

	case *BinOp:
		lhsType, err := tc.checkExpr(ex.LHS, types, vars)
		if err != nil {
			return nil, err
		}
		rhsType, err := tc.checkExpr(ex.RHS, types, vars)
		if err != nil {
			return nil, err
		}
		if !lhsType.Equiv(TypeInt{}) {
			return nil, TypeError{Message: fmt.Sprintf("lhs %s is not an int", lhsType)}
		}
		if !rhsType.Equiv(TypeInt{}) {
			return nil, TypeError{Message: fmt.Sprintf("rhs %s is not an int", rhsType)}
		}
		return TypeInt{}, nil

	case *Malloc:
		if err := tc.checkType(ex.Type, types, vars); err != nil {
			return nil, err
		}
		if _, ok := ex.Type.(TypeNamed); !ok {
			return nil, TypeError{Message: fmt.Sprintf("malloc target %s is not a named struct type", ex.Type)}
		}
		// Spec §9 Open Questions: return Ptr{Target: t} directly,
		// rather than the source's throwaway Ptr-with-empty-name.
		return TypePtr{Target: ex.Type}, nil

	case *Valid:
		exprType, err := tc.checkExpr(ex.Expr, types, vars)
		if err != nil {
			return nil, err
		}
		if exprType.PointsTo() == nil {
			return nil, TypeError{Message: fmt.Sprintf("%s is not a pointer type", exprType)}
		}
		return TypeInt{}, nil

	default:
		return nil, TypeError{Message: fmt.Sprintf("unknown expression %T", e)}
	}
}

func (tc *typeChecker) checkRef(r Ref, types, vars *Env[Type]) (Type, error) {
	switch rf := r.(type) {
	case *VarRef:
		t, ok := vars.Lookup(rf.Name)
		if !ok {
			return nil, TypeError{Message: fmt.Sprintf("%s not declared", rf.Name)}
		}
		return t, nil

	case *DeRef:
		srcType, err := tc.checkRef(rf.Source, types, vars)
		if err != nil {
			return nil, err
		}
		destType := srcType.PointsTo()
		if destType == nil {
			return nil, TypeError{Message: fmt.Sprintf("%s is not a pointer type", srcType)}
		}
		rf.DestType = destType
		return destType, nil

	case *DottedRef:
		srcType, err := tc.checkRef(rf.Source, types, vars)
		if err != nil {
			return nil, err
		}
		srcType = srcType.Resolve(types)
		st, ok := srcType.(*TypeStruct)
		if !ok {
			return nil, TypeError{Message: fmt.Sprintf("%s does not have member %s", srcType, rf.Member)}
		}
		memberType := st.MemberType(rf.Member)
		if memberType == nil {
			return nil, TypeError{Message: fmt.Sprintf("%s does not have member %s", srcType, rf.Member)}
		}
		return memberType, nil

	default:
		return nil, TypeError{Message: fmt.Sprintf("unknown reference %T", r)}
	}
}
