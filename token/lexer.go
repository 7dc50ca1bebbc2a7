package token

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/lexer"
	"github.com/alecthomas/participle/lexer/regex"
)

// rawLexer recognises the raw lexeme shapes of the grammar. It does not
// know about end-of-token delimiter rules, head-identifier classification,
// or literal-keyword folding -- those are spec.md §4.B semantics applied by
// Lexer.Next below. Reusing participle's regex-backed scanner here means
// the only hand-written state machine left is the delimiter/classification
// logic the spec actually describes; character-class scanning is not
// reinvented.
var rawLexer = lexer.Must(regex.New(`
	Whitespace = [ \t]+
	String     = "[^"]*"
	Numeric    = [0-9]+(\.[0-9]+)?
	Ident      = [A-Za-z][A-Za-z0-9._]*
	Operator   = \[|\]|\{|\}|\(|\)|,|:
	Bad        = .
`))

// Lexer tokenises a single configuration line (spec.md §4.B: "Consumes a
// line-string plus the containing file's directory").
type Lexer struct {
	lex     lexer.Lexer
	sym     map[string]rune
	pending *lexer.Token // one token of lookahead, consumed by rawNext
}

// New starts tokenising line. The containing directory is handled by the
// parser (for CurrentDir), not by the Lexer itself.
func New(line string) (*Lexer, error) {
	lex, err := rawLexer.Lex(strings.NewReader(line))
	if err != nil {
		return nil, err
	}
	return &Lexer{lex: lex, sym: rawLexer.Symbols()}, nil
}

// rawNext returns the next raw lexeme, preferring a stashed lookahead token
// over the underlying lexer (which has no unread).
func (l *Lexer) rawNext() (lexer.Token, error) {
	if l.pending != nil {
		t := *l.pending
		l.pending = nil
		return t, nil
	}
	return l.lex.Next()
}

// Next returns the next classified Token. Once the line is exhausted it
// keeps returning a Token of Kind EOF rather than an error.
func (l *Lexer) Next() (Token, error) {
	raw, err := l.rawNext()
	if err != nil {
		return Token{}, err
	}

	switch raw.Type {
	case lexer.EOF:
		return Token{Kind: EOF, Pos: raw.Pos}, nil
	case l.sym["Whitespace"]:
		return l.Next()
	case l.sym["Operator"]:
		return l.classifyOperator(raw)
	case l.sym["String"]:
		return l.classifyString(raw)
	case l.sym["Numeric"]:
		return l.classifyNumeric(raw)
	case l.sym["Ident"]:
		return l.classifyIdent(raw)
	default:
		return Token{}, fmt.Errorf("unexpected character %q at %s", raw.Value, raw.Pos)
	}
}

func (l *Lexer) classifyOperator(raw lexer.Token) (Token, error) {
	switch raw.Value {
	case "(":
		return Token{Kind: LParen, Text: "(", Pos: raw.Pos}, nil
	case ")":
		return Token{Kind: RParen, Text: ")", Pos: raw.Pos}, nil
	case "[":
		return Token{Kind: LBracket, Text: "[", Pos: raw.Pos}, nil
	case "]":
		return Token{Kind: RBracket, Text: "]", Pos: raw.Pos}, nil
	case "{":
		return Token{Kind: LBrace, Text: "{", Pos: raw.Pos}, nil
	case "}":
		return Token{Kind: RBrace, Text: "}", Pos: raw.Pos}, nil
	case ",":
		return Token{Kind: Comma, Text: ",", Pos: raw.Pos}, nil
	case ":":
		return Token{Kind: Colon, Text: ":", Pos: raw.Pos}, nil
	default:
		return Token{}, fmt.Errorf("unexpected operator %q at %s", raw.Value, raw.Pos)
	}
}

func (l *Lexer) classifyString(raw lexer.Token) (Token, error) {
	// spec.md §4.B: "no escape sequences; must be followed by , ) ] : }
	// or end-of-input; a following ( is an error."
	text := strings.Trim(raw.Value, `"`)
	delim, err := l.delimiterAfter(raw)
	if err != nil {
		return Token{}, err
	}
	if delim == '(' {
		return Token{}, fmt.Errorf("string literal at %s cannot be followed by '('", raw.Pos)
	}
	return Token{Kind: String, Text: text, Delimiter: delim, Pos: raw.Pos}, nil
}

func (l *Lexer) classifyNumeric(raw lexer.Token) (Token, error) {
	delim, err := l.delimiterAfter(raw)
	if err != nil {
		return Token{}, err
	}
	if delim == '(' {
		return Token{}, fmt.Errorf("numeric literal at %s cannot be followed by '('", raw.Pos)
	}
	kind := Int
	if strings.Contains(raw.Value, ".") {
		kind = Real
	}
	return Token{Kind: kind, Text: raw.Value, Delimiter: delim, Pos: raw.Pos}, nil
}

func (l *Lexer) classifyIdent(raw lexer.Token) (Token, error) {
	delim, err := l.delimiterAfter(raw)
	if err != nil {
		return Token{}, err
	}

	if delim == '(' {
		// Any identifier directly followed by "(" is a function-like head;
		// which expression Kind it produces (Class/Library/Concat/
		// CurrentDir/List, or a plain Object call) is decided by the parser
		// from raw.Value, per spec.md §4.B.
		return Token{Kind: Head, Text: raw.Value, Delimiter: delim, Pos: raw.Pos}, nil
	}

	switch raw.Value {
	case "true", "false":
		return Token{Kind: Bool, Text: raw.Value, Delimiter: delim, Pos: raw.Pos}, nil
	case "tab", "newline", "quote":
		return Token{Kind: Keyword, Text: raw.Value, Delimiter: delim, Pos: raw.Pos}, nil
	default:
		return Token{Kind: Ident, Text: raw.Value, Delimiter: delim, Pos: raw.Pos}, nil
	}
}

// delimiterAfter peeks the rune immediately following raw, validating it
// against the end-of-token set (spec.md §4.B), and stashes the peeked
// token as lookahead so it is not lost to the next call to Next.
func (l *Lexer) delimiterAfter(raw lexer.Token) (rune, error) {
	next, err := l.lex.Next()
	if err != nil {
		return 0, err
	}
	l.pending = &next

	if next.Type == lexer.EOF {
		return 0, nil
	}

	var r rune
	if next.Value != "" {
		r = []rune(next.Value)[0]
	}

	if next.Type != l.sym["Whitespace"] && !IsEndOfToken(r) {
		return r, fmt.Errorf("unexpected character %q at %s: tokens must be followed by whitespace or one of , ( ) ] : }", next.Value, next.Pos)
	}
	return r, nil
}
