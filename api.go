package eightebed

// Parse lexes and parses one Eightebed source text into a Program
// (spec §6: parse(source) -> AST | ParseError).
func Parse(source string) (*Program, error) {
	lexer := NewEightebedLexer()
	tokens := lexer.Tokenize(source)
	stream := NewTokenStream(tokens)
	grammar := NewEightebedGrammar()

	result := grammar.Parse("Program", stream)
	if result == nil {
		return nil, ParseError{}
	}
	if !stream.AtEnd() {
		return nil, ParseError{Message: "unconsumed input remains"}
	}
	program, ok := result.(*Program)
	if !ok {
		return nil, ParseError{Message: "Program did not produce a program node"}
	}
	return program, nil
}
