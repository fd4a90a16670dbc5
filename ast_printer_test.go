package eightebed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDumpASTProgramShape(t *testing.T) {
	p := mustParse(t, `
		type node struct { int value; ptr to node next; };
		var ptr to node jim;
		{
			jim = malloc node;
			if valid jim {
				print [@jim].value;
			}
		}
	`)
	out := DumpAST(p)

	lines := strings.Split(out, "\n")
	require_ := assert.New(t)
	require_.Equal("Program", lines[0])

	assert.Contains(t, out, "TypeDecl node")
	assert.Contains(t, out, "Struct#")
	assert.Contains(t, out, "value: int")
	assert.Contains(t, out, "VarDecl jim: ptr to node")
	assert.Contains(t, out, "Block")
	assert.Contains(t, out, "Assign")
	assert.Contains(t, out, "Malloc")
	assert.Contains(t, out, "If")
	assert.Contains(t, out, "Valid")
	assert.Contains(t, out, "VarRef jim")
	assert.Contains(t, out, "Print")
	assert.Contains(t, out, "DottedRef .value")
	assert.Contains(t, out, "DeRef")
}

func TestDumpASTIndentationNesting(t *testing.T) {
	p := mustParse(t, "{ while 1 { print 1; } }")
	out := DumpAST(p)

	var whileLine, printLine string
	for _, l := range strings.Split(out, "\n") {
		trimmed := strings.TrimLeft(l, " ")
		switch trimmed {
		case "While":
			whileLine = l
		case "Print":
			printLine = l
		}
	}
	require := assert.New(t)
	require.NotEmpty(whileLine)
	require.NotEmpty(printLine)

	whileIndent := len(whileLine) - len(strings.TrimLeft(whileLine, " "))
	printIndent := len(printLine) - len(strings.TrimLeft(printLine, " "))
	assert.Greater(t, printIndent, whileIndent, "nested Print must be indented deeper than its enclosing While")
}

func TestDumpASTEmptyProgram(t *testing.T) {
	p := mustParse(t, "{}")
	out := DumpAST(p)
	assert.Equal(t, "Program\n  Block\n", out)
}
