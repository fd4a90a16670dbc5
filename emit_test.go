package eightebed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustEmit(t *testing.T, src string, opts Options) string {
	t.Helper()
	cp, err := Check(mustParse(t, src))
	require.NoError(t, err)
	var sb strings.Builder
	require.NoError(t, Emit(cp, &sb, opts))
	return sb.String()
}

func TestEmitRuntimePrimitives(t *testing.T) {
	out := mustEmit(t, "{}", Options{})
	assert.Contains(t, out, "typedef struct _ptr { void *p; int valid; } _ptr;")
	assert.Contains(t, out, "_8ebed_malloc")
	assert.Contains(t, out, "_8ebed_valid")
	assert.Contains(t, out, "_8ebed_is_alias")
	assert.Contains(t, out, "_8ebed_invalidate")
	assert.Contains(t, out, "_8ebed_free")
	assert.Contains(t, out, "int main(int argc, char **argv) {")
}

func TestEmitPedigreeBanner(t *testing.T) {
	out := mustEmit(t, "{}", Options{Pedigree: "unit-test"})
	assert.Contains(t, out, "unit-test")
}

func TestEmitTraceMarkingGatedByOption(t *testing.T) {
	without := mustEmit(t, "type node struct { int x; }; {}", Options{})
	assert.NotContains(t, without, "TRACE_MARKING")

	with := mustEmit(t, "type node struct { int x; }; {}", Options{TraceMarking: true})
	assert.Contains(t, with, "#define TRACE_MARKING 1")
}

func TestEmitMarkerPerStructType(t *testing.T) {
	out := mustEmit(t, `
		type node struct { int value; ptr to node next; };
		{}
	`, Options{})
	assert.Contains(t, out, "static void mark_node(_ptr victim, node *self) {")
	assert.Contains(t, out, "_8ebed_is_alias(self->next, victim)")
	assert.Contains(t, out, "mark_node(victim, (node *)self->next.p);")
}

func TestEmitRootMarkerOverGlobals(t *testing.T) {
	out := mustEmit(t, `
		type node struct { int value; };
		var ptr to node jim;
		{}
	`, Options{})
	assert.Contains(t, out, "static void _mark__root(_ptr victim) {")
	assert.Contains(t, out, "_8ebed_is_alias(jim, victim)")
}

func TestEmitPrintHasTrailingSpaceContract(t *testing.T) {
	out := mustEmit(t, "{ print 4; }", Options{})
	assert.Contains(t, out, `printf("%d ", 4);`)
}

func TestEmitBinOpMapping(t *testing.T) {
	out := mustEmit(t, "{ print (1 = 1); }", Options{})
	assert.Contains(t, out, "(1 == 1)")
}

func TestEmitDeterministic(t *testing.T) {
	src := "type node struct { int value; }; var ptr to node jim; { jim = malloc node; }"
	a := mustEmit(t, src, Options{Pedigree: "x"})
	b := mustEmit(t, src, Options{Pedigree: "x"})
	assert.Equal(t, a, b)
}

func TestEmitDeRefCastsThroughDeclaredTypeName(t *testing.T) {
	out := mustEmit(t, `
		type node struct { int value; };
		var ptr to node jim;
		{ if valid jim { print [@jim].value; } }
	`, Options{})
	assert.Contains(t, out, "(*(node *)jim.p)")
}
