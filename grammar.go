package eightebed

import (
	"regexp"
	"strconv"
)

var (
	identRe = regexp.MustCompile(`^[A-Za-z]\w*$`)
	intRe   = regexp.MustCompile(`^\d+$`)
)

func mustAtoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		panic("eightebed: lexer produced a non-numeric IntLit token: " + s)
	}
	return n
}

// Grammar is a named collection of productions (spec Data Model).
// It also carries the one piece of process-wide mutable state the
// compiler core needs: a monotonic struct-id counter, scoped to a
// single Grammar instance (and so to a single Parse call) rather than
// a package-level global (spec §5, §9).
type Grammar struct {
	productions  map[string]Production
	nextStructID int
}

// NewGrammar returns an empty grammar; productions are added with Set.
func NewGrammar() *Grammar {
	return &Grammar{productions: map[string]Production{}}
}

// Set registers a production under name.
func (g *Grammar) Set(name string, p Production) {
	g.productions[name] = p
}

// Lookup returns the production registered under name, or nil.
func (g *Grammar) Lookup(name string) Production {
	return g.productions[name]
}

// Parse runs the named production against the stream.
func (g *Grammar) Parse(name string, s *TokenStream) any {
	p := g.Lookup(name)
	if p == nil {
		panic("eightebed: no production named " + name + " in grammar")
	}
	return p.Parse(s, g)
}

// NextStructID returns the next globally-unique (within this Grammar,
// i.e. within this compilation) struct id and advances the counter.
func (g *Grammar) NextStructID() int {
	id := g.nextStructID
	g.nextStructID++
	return id
}

// NewEightebedGrammar builds the production table in spec §4.2,
// wiring each production to the AST constructor that interprets its
// raw parse result.
func NewEightebedGrammar() *Grammar {
	g := NewGrammar()

	isTypeName := func(t Token) bool { return identRe.MatchString(t.Lexeme) && t.Tag == "" }
	isIntLit := func(t Token) bool { return intRe.MatchString(t.Lexeme) && t.Tag == "" }

	g.Set("TypeName", &Terminal{Entity: func(t Token) bool { return isTypeName(t) }})
	g.Set("VarName", &Terminal{Entity: func(t Token) bool { return isTypeName(t) }})
	g.Set("IntLit", &Terminal{Entity: func(t Token) bool { return isIntLit(t) }})

	g.Set("Type", &Alternation{Alternatives: []Production{
		&Terminal{Entity: "int", Ctor: func(any, *Grammar) any { return TypeInt{} }},
		&Sequence{
			Components: []Production{
				&Terminal{Entity: "struct"},
				&Terminal{Entity: "{"},
				&Asteration{Production: &NonTerminal{Name: "Decl"}},
				&Terminal{Entity: "}"},
			},
			Ctor: func(raw any, g *Grammar) any {
				parts := raw.([]any)
				members := parts[2].([]any)
				decls := make([]Decl, len(members))
				for i, m := range members {
					decls[i] = m.(Decl)
				}
				return &TypeStruct{ID: g.NextStructID(), Members: decls}
			},
		},
		&Sequence{
			Components: []Production{
				&Terminal{Entity: "ptr"},
				&Terminal{Entity: "to"},
				&NonTerminal{Name: "Type"},
			},
			Ctor: func(raw any, g *Grammar) any {
				parts := raw.([]any)
				return TypePtr{Target: parts[2].(Type)}
			},
		},
		&NonTerminal{Name: "TypeName", Ctor: func(raw any, g *Grammar) any {
			return TypeNamed{Name: raw.(Token).Lexeme}
		}},
	}})

	g.Set("Decl", &Sequence{
		Components: []Production{
			&NonTerminal{Name: "Type"},
			&NonTerminal{Name: "VarName"},
			&Terminal{Entity: ";"},
		},
		Ctor: func(raw any, g *Grammar) any {
			parts := raw.([]any)
			return Decl{Type: parts[0].(Type), Name: parts[1].(Token).Lexeme}
		},
	})

	g.Set("VarDecl", &Sequence{
		Components: []Production{
			&Terminal{Entity: "var"},
			&NonTerminal{Name: "Decl"},
		},
		Ctor: func(raw any, g *Grammar) any {
			d := raw.([]any)[1].(Decl)
			return &VarDecl{Type: d.Type, Name: d.Name}
		},
	})

	g.Set("TypeDecl", &Sequence{
		Components: []Production{
			&Terminal{Entity: "type"},
			&NonTerminal{Name: "TypeName"},
			&NonTerminal{Name: "Type"},
			&Terminal{Entity: ";"},
		},
		Ctor: func(raw any, g *Grammar) any {
			parts := raw.([]any)
			return &TypeDecl{Name: parts[1].(Token).Lexeme, Type: parts[2].(Type)}
		},
	})

	g.Set("Ref", &Alternation{Alternatives: []Production{
		&Sequence{
			Components: []Production{
				&Terminal{Entity: "["},
				&NonTerminal{Name: "Ref"},
				&Terminal{Entity: "]"},
				&Terminal{Entity: "."},
				&NonTerminal{Name: "VarName"},
			},
			Ctor: func(raw any, g *Grammar) any {
				parts := raw.([]any)
				return &DottedRef{Source: parts[1].(Ref), Member: parts[4].(Token).Lexeme}
			},
		},
		&Sequence{
			Components: []Production{
				&Terminal{Entity: "@"},
				&NonTerminal{Name: "Ref"},
			},
			Ctor: func(raw any, g *Grammar) any {
				return &DeRef{Source: raw.([]any)[1].(Ref)}
			},
		},
		&NonTerminal{Name: "VarName", Ctor: func(raw any, g *Grammar) any {
			return &VarRef{Name: raw.(Token).Lexeme}
		}},
	}})

	g.Set("BinOp", &Alternation{Alternatives: []Production{
		&Terminal{Entity: "+"}, &Terminal{Entity: "-"}, &Terminal{Entity: "*"},
		&Terminal{Entity: "/"}, &Terminal{Entity: "="}, &Terminal{Entity: ">"},
		&Terminal{Entity: "&"}, &Terminal{Entity: "|"},
	}})

	g.Set("Expr", &Alternation{Alternatives: []Production{
		&Sequence{
			Components: []Production{
				&Terminal{Entity: "("},
				&NonTerminal{Name: "Expr"},
				&NonTerminal{Name: "BinOp"},
				&NonTerminal{Name: "Expr"},
				&Terminal{Entity: ")"},
			},
			Ctor: func(raw any, g *Grammar) any {
				parts := raw.([]any)
				return &BinOp{
					LHS: parts[1].(Expr),
					Op:  parts[2].(Token).Lexeme,
					RHS: parts[3].(Expr),
				}
			},
		},
		&Sequence{
			Components: []Production{
				&Terminal{Entity: "malloc"},
				&NonTerminal{Name: "Type"},
			},
			Ctor: func(raw any, g *Grammar) any {
				return &Malloc{Type: raw.([]any)[1].(Type)}
			},
		},
		&Sequence{
			Components: []Production{
				&Terminal{Entity: "valid"},
				&NonTerminal{Name: "Expr"},
			},
			Ctor: func(raw any, g *Grammar) any {
				return &Valid{Expr: raw.([]any)[1].(Expr)}
			},
		},
		&NonTerminal{Name: "IntLit", Ctor: func(raw any, g *Grammar) any {
			return &IntConst{Value: mustAtoi(raw.(Token).Lexeme)}
		}},
		&NonTerminal{Name: "Ref", Ctor: func(raw any, g *Grammar) any {
			return &RefExpr{Ref: raw.(Ref)}
		}},
	}})

	g.Set("Stmt", &Alternation{Alternatives: []Production{
		&Sequence{
			Components: []Production{
				&Terminal{Entity: "while"},
				&NonTerminal{Name: "Expr"},
				&NonTerminal{Name: "Block"},
			},
			Ctor: func(raw any, g *Grammar) any {
				parts := raw.([]any)
				return &While{Cond: parts[1].(Expr), Body: parts[2].(*Block)}
			},
		},
		&Sequence{
			Components: []Production{
				&Terminal{Entity: "if"},
				&NonTerminal{Name: "Expr"},
				&NonTerminal{Name: "Block"},
				&Optional{Production: &Sequence{Components: []Production{
					&Terminal{Entity: "else"},
					&NonTerminal{Name: "Block"},
				}}},
			},
			Ctor: func(raw any, g *Grammar) any {
				parts := raw.([]any)
				elseBlock := &Block{}
				if opts := parts[3].([]any); len(opts) > 0 {
					elseBlock = opts[0].([]any)[1].(*Block)
				}
				return &If{Cond: parts[1].(Expr), Then: parts[2].(*Block), Else: elseBlock}
			},
		},
		&Sequence{
			Components: []Production{
				&Terminal{Entity: "free"},
				&NonTerminal{Name: "Ref"},
				&Terminal{Entity: ";"},
			},
			Ctor: func(raw any, g *Grammar) any {
				return &Free{Ref: raw.([]any)[1].(Ref)}
			},
		},
		&Sequence{
			Components: []Production{
				&Terminal{Entity: "print"},
				&NonTerminal{Name: "Expr"},
				&Terminal{Entity: ";"},
			},
			Ctor: func(raw any, g *Grammar) any {
				return &Print{Expr: raw.([]any)[1].(Expr)}
			},
		},
		&Sequence{
			Components: []Production{
				&NonTerminal{Name: "Ref"},
				&Terminal{Entity: "="},
				&NonTerminal{Name: "Expr"},
				&Terminal{Entity: ";"},
			},
			Ctor: func(raw any, g *Grammar) any {
				parts := raw.([]any)
				return &Assign{Ref: parts[0].(Ref), Expr: parts[2].(Expr)}
			},
		},
	}})

	g.Set("Block", &Sequence{
		Components: []Production{
			&Terminal{Entity: "{"},
			&Asteration{Production: &NonTerminal{Name: "Stmt"}},
			&Terminal{Entity: "}"},
		},
		Ctor: func(raw any, g *Grammar) any {
			items := raw.([]any)[1].([]any)
			stmts := make([]Stmt, len(items))
			for i, s := range items {
				stmts[i] = s.(Stmt)
			}
			return &Block{Stmts: stmts}
		},
	})

	g.Set("Program", &Sequence{
		Components: []Production{
			&Asteration{Production: &NonTerminal{Name: "TypeDecl"}},
			&Asteration{Production: &NonTerminal{Name: "VarDecl"}},
			&NonTerminal{Name: "Block"},
		},
		Ctor: func(raw any, g *Grammar) any {
			parts := raw.([]any)
			typeItems := parts[0].([]any)
			varItems := parts[1].([]any)
			typeDecls := make([]*TypeDecl, len(typeItems))
			for i, t := range typeItems {
				typeDecls[i] = t.(*TypeDecl)
			}
			varDecls := make([]*VarDecl, len(varItems))
			for i, v := range varItems {
				varDecls[i] = v.(*VarDecl)
			}
			return &Program{
				TypeDecls: typeDecls,
				VarDecls:  varDecls,
				Block:     parts[2].(*Block),
			}
		},
	})

	return g
}
