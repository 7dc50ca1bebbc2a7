// Package token defines the lexical tokens recognised by the configuration
// expression grammar (spec.md §4.B).
package token

import (
	"fmt"

	"github.com/alecthomas/participle/lexer"
)

// Position locates a rune within the configuration source. It is an alias
// of participle's lexer.Position so that diagnostic rendering (caret-
// pointing source snippets) shares one position type across the tokeniser,
// parser, and resolver.
type Position = lexer.Position

// Kind identifies the lexical class of a Token.
type Kind int

const (
	Invalid Kind = iota
	EOF

	String    // a quoted string literal, e.g. "hello"
	Ident     // a bare identifier that is not a recognised literal keyword
	Bool      // true, false
	Int       // an integer literal
	Real      // a floating point literal
	Keyword   // tab, newline, quote -- single-character string literals
	Head      // an identifier immediately followed by "(" -- Class/Library/Concat/CurrentDir/List/Object
	LBracket  // [
	RBracket  // ]
	LBrace    // {
	RBrace    // }
	LParen    // (
	RParen    // )
	Comma     // ,
	Colon     // :
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "end of input"
	case String:
		return "string"
	case Ident:
		return "identifier"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Real:
		return "real"
	case Keyword:
		return "keyword literal"
	case Head:
		return "function-like head"
	case LBracket:
		return "'['"
	case RBracket:
		return "']'"
	case LBrace:
		return "'{'"
	case RBrace:
		return "'}'"
	case LParen:
		return "'('"
	case RParen:
		return "')'"
	case Comma:
		return "','"
	case Colon:
		return "':'"
	default:
		return "invalid"
	}
}

// Token is one lexeme produced by the Lexer, carrying enough information
// for the parser to classify it without re-scanning the source text.
type Token struct {
	Kind Kind
	Text string
	// Delimiter is the rune (or 0 for EOF) that terminated the token. It
	// is recorded for callers' inspection; the parser does not read it.
	Delimiter rune
	Pos       Position
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q", t.Kind, t.Text)
}

// reserved head identifiers that open a function-like call and change the
// resulting node's kind instead of producing a plain Object.
var Heads = map[string]bool{
	"Class":      true,
	"Library":    true,
	"Concat":     true,
	"CurrentDir": true,
	"List":       true,
}

// literalKeywords maps the single-character string keywords to their value.
var literalKeywords = map[string]string{
	"tab":     "\t",
	"newline": "\n",
	"quote":   "\"",
}

// LiteralKeyword returns the character payload for tab/newline/quote, and
// whether name is one of them.
func LiteralKeyword(name string) (string, bool) {
	v, ok := literalKeywords[name]
	return v, ok
}

// endOfToken is the set of runes that may legally terminate a token,
// per spec.md §4.B ("space, tab, , ( ) ] : }").
var endOfToken = map[rune]bool{
	' ':  true,
	'\t': true,
	',':  true,
	'(':  true,
	')':  true,
	']':  true,
	':':  true,
	'}':  true,
	0:    true, // end of input
}

// IsEndOfToken reports whether r may legally follow a completed token.
func IsEndOfToken(r rune) bool {
	return endOfToken[r]
}
