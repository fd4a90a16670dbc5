package eightebed

import "fmt"

// LexError describes input at which no registered pattern matches
// (spec §7). Nothing in the pipeline constructs it: Lexer.Tokenize
// stops silently at such input, and Parse then reports a ParseError.
type LexError struct {
	Remaining string
}

func (e LexError) Error() string {
	snippet := e.Remaining
	if len(snippet) > 32 {
		snippet = snippet[:32] + "..."
	}
	return fmt.Sprintf("lex error: no pattern matches at %q", snippet)
}

// ParseError is raised when a production returns no match at the top
// level, or leaves tokens unconsumed. The combinator layer does not
// track source positions (spec §1 Non-goals), so the message is
// necessarily generic (spec §7).
type ParseError struct {
	Message string
}

func (e ParseError) Error() string {
	if e.Message != "" {
		return "parse error: " + e.Message
	}
	return "parse error: parse failed"
}

// TypeError is raised by any rule in spec §4.3, and by Env.Declare on
// redeclaration.
type TypeError struct {
	Message string
}

func (e TypeError) Error() string { return e.Message }

// FlowError is raised by the validity-flow analyzer (spec §4.4) with
// the exact message format spec §7 names: "Attempt to dereference X
// in non-safe context".
type FlowError struct {
	Message string
}

func (e FlowError) Error() string { return e.Message }

// EmitError is never raised by the core logic: the emitter assumes a
// well-checked AST (spec §4.5/§7). The type exists so callers have a
// named error to distinguish in a type switch if a future emitter
// extension needs to report one.
type EmitError struct {
	Message string
}

func (e EmitError) Error() string { return e.Message }
