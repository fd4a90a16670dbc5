package eightebed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvLookupClimbsParentChain(t *testing.T) {
	root := NewEnv[int](nil)
	require.NoError(t, root.Declare("x", 1))

	child := NewEnv[int](root)
	v, ok := child.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestEnvDeclareRejectsShadowing(t *testing.T) {
	root := NewEnv[int](nil)
	require.NoError(t, root.Declare("x", 1))

	child := NewEnv[int](root)
	err := child.Declare("x", 2)
	assert.EqualError(t, err, "x already declared")
}

func TestEnvClearEmptiesEntireChain(t *testing.T) {
	root := NewEnv[bool](nil)
	root.Set("a", true)

	child := NewEnv[bool](root)
	child.Set("b", true)

	child.Clear()

	_, ok := child.Lookup("b")
	assert.False(t, ok)
	_, ok = root.Lookup("a")
	assert.False(t, ok, "Clear must recurse into the parent chain, not just the local scope")
}

func TestEnvSetDoesNotCheckUniqueness(t *testing.T) {
	root := NewEnv[bool](nil)
	child := NewEnv[bool](root)
	child.Set("x", true)
	assert.NotPanics(t, func() { child.Set("x", true) })
}
