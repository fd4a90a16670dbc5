package eightebed

import (
	"fmt"
	"strings"
)

// treePrinter is an indent-stack string builder, the same shape the
// compiler's tree printer has always used: push a pad string before
// descending into a child node, pop it on the way back out.
type treePrinter struct {
	padStr []string
	output strings.Builder
}

func newTreePrinter() *treePrinter {
	return &treePrinter{}
}

func (tp *treePrinter) indent(s string) {
	tp.padStr = append(tp.padStr, s)
}

func (tp *treePrinter) unindent() {
	tp.padStr = tp.padStr[:len(tp.padStr)-1]
}

func (tp *treePrinter) padding() {
	for _, item := range tp.padStr {
		tp.write(item)
	}
}

func (tp *treePrinter) writel(s string) {
	tp.write(s)
	tp.output.WriteRune('\n')
}

func (tp *treePrinter) pwritel(s string) {
	tp.pwrite(s)
	tp.output.WriteRune('\n')
}

func (tp *treePrinter) write(s string) {
	tp.output.WriteString(s)
}

func (tp *treePrinter) pwrite(s string) {
	tp.padding()
	tp.write(s)
}

// DumpAST renders a Program as an indented tree, for the --dump-ast
// flag (spec §9 supplemented feature; original_source/src/eightebed
// carries an equivalent debug dump).
func DumpAST(p *Program) string {
	tp := newTreePrinter()
	tp.writel("Program")
	tp.indent("  ")
	for _, td := range p.TypeDecls {
		printTypeDecl(tp, td)
	}
	for _, vd := range p.VarDecls {
		printVarDecl(tp, vd)
	}
	printBlock(tp, p.Block)
	tp.unindent()
	return tp.output.String()
}

func printTypeDecl(tp *treePrinter, td *TypeDecl) {
	tp.pwritel(fmt.Sprintf("TypeDecl %s", td.Name))
	tp.indent("  ")
	printType(tp, td.Type)
	tp.unindent()
}

func printVarDecl(tp *treePrinter, vd *VarDecl) {
	tp.pwritel(fmt.Sprintf("VarDecl %s: %s", vd.Name, vd.Type))
}

func printType(tp *treePrinter, t Type) {
	switch tt := t.(type) {
	case *TypeStruct:
		tp.pwritel(fmt.Sprintf("Struct#%d", tt.ID))
		tp.indent("  ")
		for _, m := range tt.Members {
			tp.pwritel(fmt.Sprintf("%s: %s", m.Name, m.Type))
		}
		tp.unindent()
	default:
		tp.pwritel(t.String())
	}
}

func printBlock(tp *treePrinter, b *Block) {
	tp.pwritel("Block")
	tp.indent("  ")
	for _, s := range b.Stmts {
		printStmt(tp, s)
	}
	tp.unindent()
}

func printStmt(tp *treePrinter, s Stmt) {
	switch st := s.(type) {
	case *While:
		tp.pwritel("While")
		tp.indent("  ")
		printExpr(tp, st.Cond)
		printBlock(tp, st.Body)
		tp.unindent()

	case *If:
		tp.pwritel("If")
		tp.indent("  ")
		printExpr(tp, st.Cond)
		printBlock(tp, st.Then)
		printBlock(tp, st.Else)
		tp.unindent()

	case *Free:
		tp.pwritel("Free")
		tp.indent("  ")
		printRef(tp, st.Ref)
		tp.unindent()

	case *Print:
		tp.pwritel("Print")
		tp.indent("  ")
		printExpr(tp, st.Expr)
		tp.unindent()

	case *Assign:
		tp.pwritel("Assign")
		tp.indent("  ")
		printRef(tp, st.Ref)
		printExpr(tp, st.Expr)
		tp.unindent()
	}
}

func printExpr(tp *treePrinter, e Expr) {
	switch ex := e.(type) {
	case *IntConst:
		tp.pwritel(fmt.Sprintf("IntConst %d", ex.Value))

	case *RefExpr:
		printRef(tp, ex.Ref)

	case *BinOp:
		tp.pwritel(fmt.Sprintf("BinOp %s", ex.Op))
		tp.indent("  ")
		printExpr(tp, ex.LHS)
		printExpr(tp, ex.RHS)
		tp.unindent()

	case *Malloc:
		tp.pwritel("Malloc")
		tp.indent("  ")
		printType(tp, ex.Type)
		tp.unindent()

	case *Valid:
		tp.pwritel("Valid")
		tp.indent("  ")
		printExpr(tp, ex.Expr)
		tp.unindent()
	}
}

func printRef(tp *treePrinter, r Ref) {
	switch rf := r.(type) {
	case *VarRef:
		tp.pwritel(fmt.Sprintf("VarRef %s", rf.Name))

	case *DeRef:
		tp.pwritel("DeRef")
		tp.indent("  ")
		printRef(tp, rf.Source)
		tp.unindent()

	case *DottedRef:
		tp.pwritel(fmt.Sprintf("DottedRef .%s", rf.Member))
		tp.indent("  ")
		printRef(tp, rf.Source)
		tp.unindent()
	}
}
