package eightebed

// Production is the interface implemented by every parser-combinator
// variant (spec §4.2): Parse consumes from the stream and returns the
// raw parse result, or nil if the production did not match (no
// internal error — non-matches are ordinary values in this
// non-backtracking, predictive engine). Firsts/Nullable are pure
// functions of the grammar and never touch the stream.
type Production interface {
	Parse(s *TokenStream, g *Grammar) any
	Firsts(g *Grammar) *PredicateSet
	Nullable(g *Grammar) bool
}

// Constructor turns a production's raw parse result into an AST node.
// It receives the owning grammar so constructors that need
// grammar-scoped state (the struct-id counter, see Grammar.NextStructID)
// can reach it.
type Constructor func(raw any, g *Grammar) any

func construct(ctor Constructor, raw any, g *Grammar) any {
	if ctor == nil || raw == nil {
		return raw
	}
	return ctor(raw, g)
}

// Terminal matches a single token. Entity is either a literal lexeme
// string (matched against an untagged token) or a func(Token) bool
// predicate.
type Terminal struct {
	Entity any
	Ctor   Constructor
}

func (t *Terminal) matches(tok Token) bool {
	switch e := t.Entity.(type) {
	case string:
		return tok.Tag == "" && tok.Lexeme == e
	case func(Token) bool:
		return e(tok)
	default:
		return false
	}
}

func (t *Terminal) Parse(s *TokenStream, g *Grammar) any {
	tok, ok := s.Peek()
	if !ok || !t.matches(tok) {
		return nil
	}
	s.Advance()
	return construct(t.Ctor, tok, g)
}

func (t *Terminal) Firsts(g *Grammar) *PredicateSet {
	set := NewPredicateSet()
	switch e := t.Entity.(type) {
	case string:
		set.AddLiteral(Token{Lexeme: e})
	case func(Token) bool:
		set.AddPredicate(e)
	}
	return set
}

func (t *Terminal) Nullable(g *Grammar) bool { return false }

// Alternation tries each alternative in order and commits to the
// first whose Firsts set contains the current lookahead (spec §4.2:
// FIRST-set driven choice, no backtracking).
type Alternation struct {
	Alternatives []Production
	Ctor         Constructor
}

func (a *Alternation) Parse(s *TokenStream, g *Grammar) any {
	tok, ok := s.Peek()
	for _, alt := range a.Alternatives {
		if ok && alt.Firsts(g).Contains(tok) {
			return construct(a.Ctor, alt.Parse(s, g), g)
		}
	}
	return nil
}

func (a *Alternation) Firsts(g *Grammar) *PredicateSet {
	set := NewPredicateSet()
	for _, alt := range a.Alternatives {
		set.Update(alt.Firsts(g))
	}
	return set
}

func (a *Alternation) Nullable(g *Grammar) bool {
	for _, alt := range a.Alternatives {
		if alt.Nullable(g) {
			return true
		}
	}
	return false
}

// Sequence runs each component in turn, collecting results into a
// slice. If any component fails to match, the whole sequence fails
// without rewinding: the grammar must be predictive (spec §4.2).
type Sequence struct {
	Components []Production
	Ctor       Constructor
}

func (sq *Sequence) Parse(s *TokenStream, g *Grammar) any {
	results := make([]any, 0, len(sq.Components))
	for _, c := range sq.Components {
		r := c.Parse(s, g)
		if r == nil {
			return nil
		}
		results = append(results, r)
	}
	return construct(sq.Ctor, results, g)
}

func (sq *Sequence) Firsts(g *Grammar) *PredicateSet {
	set := NewPredicateSet()
	for _, c := range sq.Components {
		set.Update(c.Firsts(g))
		if !c.Nullable(g) {
			break
		}
	}
	return set
}

func (sq *Sequence) Nullable(g *Grammar) bool {
	for _, c := range sq.Components {
		if !c.Nullable(g) {
			return false
		}
	}
	return true
}

// Asteration parses zero or more repetitions of a production,
// guarded at each step by the lookahead being in the production's
// Firsts set. Always nullable.
type Asteration struct {
	Production Production
	Ctor       Constructor
}

func (a *Asteration) Parse(s *TokenStream, g *Grammar) any {
	results := []any{}
	firsts := a.Production.Firsts(g)
	for {
		tok, ok := s.Peek()
		if !ok || !firsts.Contains(tok) {
			break
		}
		r := a.Production.Parse(s, g)
		if r == nil {
			break
		}
		results = append(results, r)
	}
	return construct(a.Ctor, results, g)
}

func (a *Asteration) Firsts(g *Grammar) *PredicateSet { return a.Production.Firsts(g) }
func (a *Asteration) Nullable(g *Grammar) bool        { return true }

// Optional parses at most one occurrence of a production under the
// same lookahead guard as Asteration. Always nullable.
type Optional struct {
	Production Production
	Ctor       Constructor
}

func (o *Optional) Parse(s *TokenStream, g *Grammar) any {
	results := []any{}
	tok, ok := s.Peek()
	if ok && o.Production.Firsts(g).Contains(tok) {
		if r := o.Production.Parse(s, g); r != nil {
			results = append(results, r)
		}
	}
	return construct(o.Ctor, results, g)
}

func (o *Optional) Firsts(g *Grammar) *PredicateSet { return o.Production.Firsts(g) }
func (o *Optional) Nullable(g *Grammar) bool        { return true }

// NonTerminal resolves its target production through the enclosing
// grammar at parse time, so productions can refer to each other
// (including recursively) before the grammar table is fully built.
type NonTerminal struct {
	Name string
	Ctor Constructor
}

func (n *NonTerminal) resolve(g *Grammar) Production {
	p := g.Lookup(n.Name)
	if p == nil {
		panic("eightebed: no production named " + n.Name + " in grammar")
	}
	return p
}

func (n *NonTerminal) Parse(s *TokenStream, g *Grammar) any {
	return construct(n.Ctor, n.resolve(g).Parse(s, g), g)
}

func (n *NonTerminal) Firsts(g *Grammar) *PredicateSet { return n.resolve(g).Firsts(g) }
func (n *NonTerminal) Nullable(g *Grammar) bool        { return n.resolve(g).Nullable(g) }
