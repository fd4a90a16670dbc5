package eightebed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCheck(t *testing.T, src string) *CheckedProgram {
	t.Helper()
	p := mustParse(t, src)
	cp, err := Check(p)
	require.NoError(t, err)
	return cp
}

func TestCheckAcceptsSimpleAssign(t *testing.T) {
	mustCheck(t, "var int jim; { jim = 4; }")
}

func TestCheckAcceptsLinkedStructWithValidGuard(t *testing.T) {
	mustCheck(t, `
		type node struct { int value; ptr to node next; };
		var ptr to node jim;
		{
			jim = malloc node;
			if valid jim {
				[@jim].value = 1;
				print [@jim].value;
			}
		}
	`)
}

func TestCheckRejectsRedeclaration(t *testing.T) {
	p := mustParse(t, "var int jim; var ptr to node jim; {}")
	_, err := Check(p)
	require.Error(t, err)
	assert.IsType(t, TypeError{}, err)
	assert.Contains(t, err.Error(), "already declared")
}

func TestCheckRejectsPointerToPointer(t *testing.T) {
	p := mustParse(t, "type node struct { ptr to ptr to node bad; }; {}")
	_, err := Check(p)
	require.Error(t, err)
	assert.IsType(t, TypeError{}, err)
}

func TestCheckRejectsPointerToNonNamed(t *testing.T) {
	// Hand-built `ptr to int`, exercising checkType directly to cover
	// the shape rule spec §4.3/§8 names; integration_test.go reaches the
	// same rule through Parse and Check.
	tc := newTypeChecker()
	err := tc.checkType(TypePtr{Target: TypeInt{}}, NewEnv[Type](nil), NewEnv[Type](nil))
	require.Error(t, err)
	assert.IsType(t, TypeError{}, err)
}

func TestCheckRejectsNestedStruct(t *testing.T) {
	p := mustParse(t, "type inner struct { int x; }; type outer struct { struct { int y; } bad; }; {}")
	_, err := Check(p)
	require.Error(t, err)
	assert.IsType(t, TypeError{}, err)
}

func TestCheckRejectsNonStructNamedType(t *testing.T) {
	p := mustParse(t, "type kooba int; {}")
	_, err := Check(p)
	require.Error(t, err)
	assert.IsType(t, TypeError{}, err)
}

func TestCheckBinOpRequiresIntOperands(t *testing.T) {
	p := mustParse(t, "type node struct { int x; }; var ptr to node jim; { print (jim & 1); }")
	_, err := Check(p)
	require.Error(t, err)
	assert.IsType(t, TypeError{}, err)
}

func TestCheckRejectsMallocOfNonNamedType(t *testing.T) {
	p := mustParse(t, "{ if valid malloc int { print 1; } }")
	_, err := Check(p)
	require.Error(t, err)
	assert.IsType(t, TypeError{}, err)
}

func TestCheckAssignRequiresEquivalentTypes(t *testing.T) {
	p := mustParse(t, "type node struct { int x; }; var int jim; { jim = malloc node; }")
	_, err := Check(p)
	require.Error(t, err)
	assert.IsType(t, TypeError{}, err)
}

func TestCheckDeRefCachesDestType(t *testing.T) {
	p := mustParse(t, `
		type node struct { int value; };
		var ptr to node jim;
		{ if valid jim { print [@jim].value; } }
	`)
	_, err := Check(p)
	require.NoError(t, err)

	ifStmt := p.Block.Stmts[0].(*If)
	printStmt := ifStmt.Then.Stmts[0].(*Print)
	dotted := printStmt.Expr.(*RefExpr).Ref.(*DottedRef)
	deref := dotted.Source.(*DeRef)
	require.NotNil(t, deref.DestType)
	// DestType caches the Ptr's target as named (not resolved further):
	// the emitter casts through the declared name, matching the typedef
	// it generates for the struct (see destTypeName in emit.go).
	assert.Equal(t, TypeNamed{Name: "node"}, deref.DestType)
}
