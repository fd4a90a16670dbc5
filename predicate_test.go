package eightebed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPredicateSetLiteral(t *testing.T) {
	s := NewPredicateSet(Token{Lexeme: "+"})
	assert.True(t, s.Contains(Token{Lexeme: "+"}))
	assert.False(t, s.Contains(Token{Lexeme: "-"}))
}

func TestPredicateSetPredicate(t *testing.T) {
	s := NewPredicateSet()
	s.AddPredicate(func(t Token) bool { return t.Lexeme == "x" || t.Lexeme == "y" })
	assert.True(t, s.Contains(Token{Lexeme: "x"}))
	assert.True(t, s.Contains(Token{Lexeme: "y"}))
	assert.False(t, s.Contains(Token{Lexeme: "z"}))
}

func TestPredicateSetUpdateUnion(t *testing.T) {
	a := NewPredicateSet(Token{Lexeme: "a"})
	b := NewPredicateSet(Token{Lexeme: "b"})
	a.Update(b)
	assert.True(t, a.Contains(Token{Lexeme: "a"}))
	assert.True(t, a.Contains(Token{Lexeme: "b"}))
}

func TestPredicateSetNilIsEmpty(t *testing.T) {
	var s *PredicateSet
	assert.False(t, s.Contains(Token{Lexeme: "anything"}))
}
