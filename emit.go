package eightebed

import (
	"fmt"
	"io"
	"strings"
)

// Options configures Emit, mirroring the three knobs spec §6 names.
type Options struct {
	// Pedigree is opaque banner text identifying the provenance of the
	// generated file; it is printed verbatim in a leading comment.
	Pedigree string

	// TraceMarking, when true, emits #define TRACE_MARKING 1 and
	// fprintf trace statements at marker entry/exit.
	TraceMarking bool

	// PointerFormat is the printf conversion used by those traces.
	// Defaults to "$%08lx" when empty.
	PointerFormat string
}

// outputWriter is an indent-aware string builder, the same shape the
// compiler's C generator has always used.
type outputWriter struct {
	buffer      *strings.Builder
	indentLevel int
	space       string
}

func newOutputWriter(space string) *outputWriter {
	return &outputWriter{buffer: &strings.Builder{}, space: space}
}

func (o *outputWriter) indent()   { o.indentLevel++ }
func (o *outputWriter) unindent() { o.indentLevel-- }

func (o *outputWriter) writeIndent() {
	for i := 0; i < o.indentLevel; i++ {
		o.buffer.WriteString(o.space)
	}
}

func (o *outputWriter) writei(s string)  { o.writeIndent(); o.write(s) }
func (o *outputWriter) writeil(s string) { o.writeIndent(); o.write(s); o.write("\n") }
func (o *outputWriter) writel(s string)  { o.write(s); o.buffer.WriteString("\n") }
func (o *outputWriter) write(s string)   { o.buffer.WriteString(s) }

// Emit lowers a CheckedProgram to a single C translation unit (spec
// §4.5, §6). It assumes cp was produced by Check and never returns an
// EmitError for a well-formed program; the error return exists for
// I/O failures writing to sink.
func Emit(cp *CheckedProgram, sink io.Writer, opts Options) error {
	if opts.PointerFormat == "" {
		opts.PointerFormat = "$%08lx"
	}
	e := &emitter{opts: opts, out: newOutputWriter("  ")}
	e.writePrelude()
	e.writeRuntime()
	e.collectStructs(cp.Program)
	e.writeStructTypedefs()
	e.writeMarkers()
	e.writeRootMarker(cp.Program)
	e.writeGlobals(cp.Program)
	e.writeMain(cp.Program)
	_, err := io.WriteString(sink, e.out.buffer.String())
	return err
}

// emitter walks a checked Program once, accumulating the struct types
// it has seen (in declaration order) so the marker-generation pass can
// run over them afterward.
type emitter struct {
	opts    Options
	out     *outputWriter
	structs []*namedStruct
}

type namedStruct struct {
	Name string
	Type *TypeStruct
}

func (e *emitter) writePrelude() {
	pedigree := e.opts.Pedigree
	if pedigree == "" {
		pedigree = "unknown"
	}
	e.out.writel("/* Achtung! This file was machine-generated. */")
	e.out.writel(fmt.Sprintf("/* Pedigree: %s */", pedigree))
	e.out.writel("")
	e.out.writel("#include <stdlib.h>")
	e.out.writel("#include <stdio.h>")
	e.out.writel("#include <string.h>")
	e.out.writel("#include <assert.h>")
	e.out.writel("")
	if e.opts.TraceMarking {
		e.out.writel("#define TRACE_MARKING 1")
		e.out.writel("")
	}
}

func (e *emitter) writeRuntime() {
	e.out.writel("typedef struct _ptr { void *p; int valid; } _ptr;")
	e.out.writel("")
	e.out.writel("static _ptr _8ebed_malloc(size_t size) {")
	e.out.indent()
	e.out.writeil("_ptr r;")
	e.out.writeil("r.p = calloc(1, size);")
	e.out.writeil("assert(r.p != NULL);")
	e.out.writeil("r.valid = 1;")
	e.out.writeil("return r;")
	e.out.unindent()
	e.out.writel("}")
	e.out.writel("")
	e.out.writel("static int _8ebed_valid(_ptr p) { return p.valid; }")
	e.out.writel("")
	e.out.writel("static int _8ebed_is_alias(_ptr a, _ptr b) { return a.p == b.p; }")
	e.out.writel("")
	e.out.writel("static void _8ebed_invalidate(_ptr *p) { p->valid = 0; }")
	e.out.writel("")
	e.out.writel("/* forward declaration; defined after the per-type markers below */")
	e.out.writel("static void _mark__root(_ptr victim);")
	e.out.writel("")
	e.out.writel("static void _8ebed_free(_ptr *p) {")
	e.out.indent()
	e.out.writeil("if (p->valid) {")
	e.out.indent()
	e.out.writeil("_mark__root(*p);")
	e.out.writeil("free(p->p);")
	e.out.unindent()
	e.out.writeil("}")
	e.out.writeil("_8ebed_invalidate(p);")
	e.out.unindent()
	e.out.writel("}")
	e.out.writel("")
}

// collectStructs walks every TypeDecl, recording the named structs in
// declaration order; Malloc/Ptr target types always resolve back to
// one of these (spec §4.3 shape rules).
func (e *emitter) collectStructs(p *Program) {
	for _, td := range p.TypeDecls {
		if st, ok := td.Type.(*TypeStruct); ok {
			e.structs = append(e.structs, &namedStruct{Name: td.Name, Type: st})
		}
	}
}

func (e *emitter) writeStructTypedefs() {
	for _, s := range e.structs {
		e.out.writel(fmt.Sprintf("typedef struct s_%d {", s.Type.ID))
		e.out.indent()
		for _, m := range s.Type.Members {
			e.out.writeil(e.fieldDecl(m))
		}
		e.out.unindent()
		e.out.writel(fmt.Sprintf("} %s;", s.Name))
		e.out.writel("")
	}
}

// fieldDecl renders one struct-member or var declaration.
func (e *emitter) fieldDecl(d Decl) string {
	switch t := d.Type.(type) {
	case TypeInt:
		return fmt.Sprintf("int %s;", d.Name)
	case TypeNamed:
		return fmt.Sprintf("/* ptr to %s */ _ptr %s;", t.Name, d.Name)
	case TypePtr:
		target := t.Target.String()
		return fmt.Sprintf("/* ptr to %s */ _ptr %s;", target, d.Name)
	default:
		return fmt.Sprintf("%s %s;", t.String(), d.Name)
	}
}

// writeMarkers emits, for every named struct T, mark_T(victim, self)
// performing the alias-then-invalidate-else-recurse DFS of spec §4.5.
func (e *emitter) writeMarkers() {
	for _, s := range e.structs {
		e.out.writel(fmt.Sprintf("static void mark_%s(_ptr victim, %s *self) {", s.Name, s.Name))
		e.out.indent()
		if e.opts.TraceMarking {
			e.out.writeil("#ifdef TRACE_MARKING")
			e.out.writeil(fmt.Sprintf("fprintf(stderr, \"enter mark_%s victim=%s self=%s\\n\", (long)victim.p, (long)self);", s.Name, e.opts.PointerFormat, e.opts.PointerFormat))
			e.out.writeil("#endif")
		}
		for _, m := range s.Type.Members {
			ptrTarget, ok := ptrMemberTarget(m.Type)
			if !ok {
				continue
			}
			e.out.writeil(fmt.Sprintf("if (_8ebed_is_alias(self->%s, victim)) {", m.Name))
			e.out.indent()
			e.out.writeil(fmt.Sprintf("_8ebed_invalidate(&self->%s);", m.Name))
			e.out.unindent()
			e.out.writeil(fmt.Sprintf("} else if (_8ebed_valid(self->%s)) {", m.Name))
			e.out.indent()
			e.out.writeil(fmt.Sprintf("mark_%s(victim, (%s *)self->%s.p);", ptrTarget, ptrTarget, m.Name))
			e.out.unindent()
			e.out.writeil("}")
		}
		if e.opts.TraceMarking {
			e.out.writeil("#ifdef TRACE_MARKING")
			e.out.writeil(fmt.Sprintf("fprintf(stderr, \"exit mark_%s victim=%s\\n\", (long)victim.p);", s.Name, e.opts.PointerFormat))
			e.out.writeil("#endif")
		}
		e.out.unindent()
		e.out.writel("}")
		e.out.writel("")
	}
}

// ptrMemberTarget resolves a struct member's declared type down to the
// C struct name it points to, if it is a pointer member at all.
func ptrMemberTarget(t Type) (string, bool) {
	switch tt := t.(type) {
	case TypePtr:
		if named, ok := tt.Target.(TypeNamed); ok {
			return named.Name, true
		}
	case TypeNamed:
		// A field declared directly with a named type is not a pointer
		// (every pointer-typed member is a TypePtr wrapping a
		// TypeNamed), so the markers skip it.
		return "", false
	}
	return "", false
}

// writeRootMarker emits _mark__root, which walks every global pointer
// variable the same alias-then-invalidate-else-recurse way the
// per-type markers do (spec §4.5).
func (e *emitter) writeRootMarker(p *Program) {
	e.out.writel("static void _mark__root(_ptr victim) {")
	e.out.indent()
	for _, vd := range p.VarDecls {
		target, ok := ptrMemberTarget(vd.Type)
		if !ok {
			continue
		}
		e.out.writeil(fmt.Sprintf("if (_8ebed_is_alias(%s, victim)) {", vd.Name))
		e.out.indent()
		e.out.writeil(fmt.Sprintf("_8ebed_invalidate(&%s);", vd.Name))
		e.out.unindent()
		e.out.writeil(fmt.Sprintf("} else if (_8ebed_valid(%s)) {", vd.Name))
		e.out.indent()
		e.out.writeil(fmt.Sprintf("mark_%s(victim, (%s *)%s.p);", target, target, vd.Name))
		e.out.unindent()
		e.out.writeil("}")
	}
	e.out.unindent()
	e.out.writel("}")
	e.out.writel("")
}

func (e *emitter) writeGlobals(p *Program) {
	for _, vd := range p.VarDecls {
		e.out.writeil(e.fieldDecl(Decl{Type: vd.Type, Name: vd.Name}))
	}
	if len(p.VarDecls) > 0 {
		e.out.writel("")
	}
}

func (e *emitter) writeMain(p *Program) {
	e.out.writel("int main(int argc, char **argv) {")
	e.out.indent()
	e.out.writeil("(void)argc; (void)argv;")
	e.writeBlock(p.Block)
	e.out.writeil("return 0;")
	e.out.unindent()
	e.out.writel("}")
}

func (e *emitter) writeBlock(b *Block) {
	e.out.writeil("{")
	e.out.indent()
	for _, s := range b.Stmts {
		e.writeStmt(s)
	}
	e.out.unindent()
	e.out.writeil("}")
}

func (e *emitter) writeStmt(s Stmt) {
	switch st := s.(type) {
	case *While:
		e.out.writeil(fmt.Sprintf("while (%s) {", e.expr(st.Cond)))
		e.out.indent()
		for _, inner := range st.Body.Stmts {
			e.writeStmt(inner)
		}
		e.out.unindent()
		e.out.writeil("}")

	case *If:
		e.out.writeil(fmt.Sprintf("if (%s) {", e.expr(st.Cond)))
		e.out.indent()
		for _, inner := range st.Then.Stmts {
			e.writeStmt(inner)
		}
		e.out.unindent()
		e.out.writeil("} else {")
		e.out.indent()
		for _, inner := range st.Else.Stmts {
			e.writeStmt(inner)
		}
		e.out.unindent()
		e.out.writeil("}")

	case *Free:
		e.out.writeil(fmt.Sprintf("_8ebed_free(&%s);", e.ref(st.Ref)))

	case *Print:
		e.out.writeil(fmt.Sprintf("printf(\"%%d \", %s);", e.expr(st.Expr)))

	case *Assign:
		e.out.writeil(fmt.Sprintf("%s = %s;", e.ref(st.Ref), e.expr(st.Expr)))
	}
}

func (e *emitter) expr(x Expr) string {
	switch ex := x.(type) {
	case *IntConst:
		return fmt.Sprintf("%d", ex.Value)

	case *RefExpr:
		return e.ref(ex.Ref)

	case *BinOp:
		return fmt.Sprintf("(%s %s %s)", e.expr(ex.LHS), binOpC[ex.Op], e.expr(ex.RHS))

	case *Malloc:
		// checkExpr's *Malloc case rejects anything but a TypeNamed
		// target, so this always resolves.
		name, ok := ptrMemberTarget(TypePtr{Target: ex.Type})
		if !ok {
			panic(fmt.Sprintf("emit: malloc target %s is not a named type in a checked program", ex.Type))
		}
		return fmt.Sprintf("_8ebed_malloc(sizeof(%s))", name)

	case *Valid:
		return fmt.Sprintf("_8ebed_valid(%s)", e.expr(ex.Expr))

	default:
		return "/* unknown expr */"
	}
}

func (e *emitter) ref(r Ref) string {
	switch rf := r.(type) {
	case *VarRef:
		return rf.Name

	case *DeRef:
		target := "void"
		if rf.DestType != nil {
			if name, ok := destTypeName(rf.DestType); ok {
				target = name
			}
		}
		return fmt.Sprintf("(*(%s *)%s.p)", target, e.ref(rf.Source))

	case *DottedRef:
		return fmt.Sprintf("%s.%s", e.ref(rf.Source), rf.Member)

	default:
		return "/* unknown ref */"
	}
}

// destTypeName extracts the C type name a DeRef's cached DestType
// names. checkRef only ever caches a Ptr's target as TypeNamed (shape
// rules forbid a Ptr targeting anything else), so the name here is
// always the same one writeStructTypedefs typedef'd the struct to.
func destTypeName(t Type) (string, bool) {
	named, ok := t.(TypeNamed)
	if !ok {
		return "", false
	}
	return named.Name, true
}
