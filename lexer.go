package eightebed

import "regexp"

// tokenPattern is a registered token rule: match re, and if tag is
// non-empty, wrap the lexeme in a tagged Token.
type tokenPattern struct {
	re  *regexp.Regexp
	tag string
}

// Lexer is a regex-table tokenizer: ignore patterns are retried to a
// fixpoint before every token, then token patterns are tried in
// registration order and the first match wins (spec §4.1).
type Lexer struct {
	ignore []*regexp.Regexp
	tokens []tokenPattern
}

// NewLexer returns an empty lexer; register ignore/token patterns with
// Ignore and Register before calling Tokenize.
func NewLexer() *Lexer {
	return &Lexer{}
}

// Ignore registers a pattern that is matched and discarded.
func (l *Lexer) Ignore(pattern string) {
	l.ignore = append(l.ignore, regexp.MustCompile("^(?:"+pattern+")"))
}

// Register registers a token pattern. tag may be empty for an
// untagged token.
func (l *Lexer) Register(pattern string, tag string) {
	l.tokens = append(l.tokens, tokenPattern{
		re:  regexp.MustCompile("^(?:" + pattern + ")"),
		tag: tag,
	})
}

// Tokenize lexes text into a token slice. Per spec §4.1, input that
// matches no ignore pattern and no token pattern silently terminates
// tokenization; the caller's subsequent parse then fails on
// look-ahead rather than the lexer raising a LexError itself for a
// partial prefix. A LexError is only meaningful when no tokens could
// be produced from non-empty remaining input and the caller chooses
// to report that as fatal; Tokenize itself never errors, matching
// RegLexer's generator semantics in the original source.
func (l *Lexer) Tokenize(text string) []Token {
	var out []Token
	for {
		progressed := true
		for progressed {
			progressed = false
			for _, re := range l.ignore {
				if loc := re.FindStringIndex(text); loc != nil {
					text = text[loc[1]:]
					progressed = true
					break
				}
			}
		}

		matched := false
		for _, tp := range l.tokens {
			loc := tp.re.FindStringIndex(text)
			if loc == nil {
				continue
			}
			lexeme := text[loc[0]:loc[1]]
			text = text[loc[1]:]
			out = append(out, Token{Tag: tp.tag, Lexeme: lexeme})
			matched = true
			break
		}
		if !matched {
			return out
		}
	}
}

// NewEightebedLexer returns the lexer configured for the Eightebed
// source language (spec §4.1): whitespace ignored, then integers,
// single-character punctuation, then identifiers, tried in that
// order, all untagged.
func NewEightebedLexer() *Lexer {
	l := NewLexer()
	l.Ignore(`\s+`)
	l.Register(`\d+`, "")
	l.Register(`[()\[\];{}=+\-*/,@.>&|]`, "")
	l.Register(`[A-Za-z]\w*`, "")
	return l
}
