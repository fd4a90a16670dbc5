package eightebed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlowAcceptsDereferenceInsideValidGuard(t *testing.T) {
	_, err := Check(mustParse(t, `
		type node struct { int value; };
		var ptr to node jim;
		{ if valid jim { print [@jim].value; } }
	`))
	assert.NoError(t, err)
}

func TestFlowRejectsDereferenceOutsideValidGuard(t *testing.T) {
	_, err := Check(mustParse(t, `
		type node struct { int value; };
		var ptr to node jim;
		{ print [@jim].value; }
	`))
	require.Error(t, err)
	assert.IsType(t, FlowError{}, err)
	assert.Equal(t, "Attempt to dereference jim in non-safe context", err.Error())
}

func TestFlowRejectsDereferenceAfterReassignInsideSafeArea(t *testing.T) {
	_, err := Check(mustParse(t, `
		type node struct { int value; };
		var ptr to node jim;
		{
			if valid jim {
				jim = malloc node;
				print [@jim].value;
			}
		}
	`))
	require.Error(t, err)
	assert.IsType(t, FlowError{}, err)
}

func TestFlowRejectsDereferenceAfterFreeOfAlias(t *testing.T) {
	_, err := Check(mustParse(t, `
		type node struct { int value; };
		var ptr to node jim;
		var ptr to node bertie;
		{
			if valid jim {
				if valid bertie {
					free bertie;
					print [@jim].value;
				}
			}
		}
	`))
	require.Error(t, err)
	assert.IsType(t, FlowError{}, err)
}

func TestFlowAcceptsDereferenceInNestedIfUnderValidGuard(t *testing.T) {
	_, err := Check(mustParse(t, `
		type node struct { int value; };
		var ptr to node jim;
		{
			if valid jim {
				if 1 {
					print [@jim].value;
				}
			}
		}
	`))
	assert.NoError(t, err)
}

func TestFlowClearOnAssignAppliesToWholeChain(t *testing.T) {
	fa := newFlowAnalyzer()
	root := NewEnv[bool](nil)
	root.Set("x", true)
	child := NewEnv[bool](root)

	err := fa.analyzeStmt(&Assign{Ref: &VarRef{Name: "y"}, Expr: &IntConst{Value: 1}}, child)
	require.NoError(t, err)

	_, ok := root.Lookup("x")
	assert.False(t, ok, "Assign must clear the entire validity chain, not just the local scope")
}
