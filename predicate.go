package eightebed

// PredicateSet answers "does this token start this production?" It
// holds both literal tokens and predicate functions over a token,
// mirroring rooibos.py's PredicateSet (spec Data Model / §4.2), which
// can hold plain values alongside callables.
type PredicateSet struct {
	literals map[Token]bool
	preds    []func(Token) bool
}

// NewPredicateSet builds a set containing the given literal tokens.
func NewPredicateSet(literals ...Token) *PredicateSet {
	s := &PredicateSet{literals: map[Token]bool{}}
	for _, t := range literals {
		s.literals[t] = true
	}
	return s
}

// AddLiteral adds a literal token to the set.
func (s *PredicateSet) AddLiteral(t Token) {
	if s.literals == nil {
		s.literals = map[Token]bool{}
	}
	s.literals[t] = true
}

// AddPredicate adds an arbitrary predicate function to the set.
func (s *PredicateSet) AddPredicate(fn func(Token) bool) {
	s.preds = append(s.preds, fn)
}

// Update merges another set's members into this one.
func (s *PredicateSet) Update(other *PredicateSet) {
	if other == nil {
		return
	}
	for t := range other.literals {
		s.AddLiteral(t)
	}
	s.preds = append(s.preds, other.preds...)
}

// Contains reports whether t is accepted by any literal or predicate
// member. It has no notion of EOF: callers check the ok result of
// TokenStream.Peek before calling it. A nil set contains nothing.
func (s *PredicateSet) Contains(t Token) bool {
	if s == nil {
		return false
	}
	if s.literals[t] {
		return true
	}
	for _, fn := range s.preds {
		if fn(t) {
			return true
		}
	}
	return false
}
