// Package parser drives the tokeniser and assembles the expression tree
// using the explicit current/parent stack discipline described in
// spec.md §4.C. It never panics and never returns a Go error for a
// malformed configuration expression: a syntax failure comes back as a
// single *ast.Node of Kind ast.Error, which the caller inspects.
package parser

import (
	"fmt"

	"github.com/dotfield/ioc/ast"
	"github.com/dotfield/ioc/token"
)

// heads maps a head identifier's text to the expression Kind it opens.
// Any identifier not in this table that is followed by "(" opens an
// ast.Object call instead (spec.md §4.B).
var heads = map[string]ast.Kind{
	"Class":      ast.Class,
	"Library":    ast.Library,
	"Concat":     ast.Concat,
	"CurrentDir": ast.CurrentDir,
	"List":       ast.List,
}

// frame is one entry in the parser's explicit stack: the container node
// currently being filled in, the rune that opened it (so a mismatched
// closer like `List(...]` is caught), and -- for Map frames only -- the
// most recently parsed key expression awaiting its `:`.
type frame struct {
	node       *ast.Node
	opener     rune
	pendingKey *ast.Node // only meaningful when node.Kind == ast.Map
}

type parser struct {
	lex    *token.Lexer
	dir    string
	stack  []*frame
	result *ast.Node
}

// Parse tokenises and parses a single right-hand-side expression string
// (the accumulated, macro-expanded text of one "NAME = EXPR;" definition,
// per spec.md §4.D). dir is the directory of the file the expression was
// read from, used to resolve CurrentDir(). pos is the position of the
// first byte of source, for error reporting.
func Parse(source string, dir string, pos token.Position) *ast.Node {
	lex, err := token.New(source)
	if err != nil {
		return ast.NewError(fmt.Sprintf("failed to tokenise expression: %s", err), pos)
	}

	p := &parser{lex: lex, dir: dir}
	if err := p.run(); err != nil {
		return ast.NewError(err.Error(), errPos(err, pos))
	}
	if p.result == nil {
		return ast.NewError("empty expression", pos)
	}
	return p.result
}

// positioned errors carry their own token.Position so the Error node can
// point precisely at the offending token rather than the start of the
// whole definition.
type parseError struct {
	pos token.Position
	msg string
}

func (e *parseError) Error() string { return e.msg }

func errPos(err error, fallback token.Position) token.Position {
	if pe, ok := err.(*parseError); ok {
		return pe.pos
	}
	return fallback
}

func (p *parser) errf(pos token.Position, format string, a ...interface{}) error {
	return &parseError{pos: pos, msg: fmt.Sprintf(format, a...)}
}

func (p *parser) run() error {
	for {
		tok, err := p.lex.Next()
		if err != nil {
			return p.errf(token.Position{}, "%s", err)
		}

		switch tok.Kind {
		case token.EOF:
			return p.finish(tok)
		case token.Head:
			if err := p.openHead(tok); err != nil {
				return err
			}
		case token.LBracket:
			if err := p.openContainer(ast.NewParent(ast.List, "", tok.Pos), '['); err != nil {
				return err
			}
		case token.LBrace:
			if err := p.openContainer(ast.NewParent(ast.Map, "", tok.Pos), '{'); err != nil {
				return err
			}
		case token.RParen:
			if err := p.closeParen(tok); err != nil {
				return err
			}
		case token.RBracket:
			if err := p.closeBracket(tok); err != nil {
				return err
			}
		case token.RBrace:
			if err := p.closeBrace(tok); err != nil {
				return err
			}
		case token.Comma:
			if err := p.comma(tok); err != nil {
				return err
			}
		case token.Colon:
			if err := p.colon(tok); err != nil {
				return err
			}
		case token.String:
			if err := p.attach(ast.NewString(tok.Text, tok.Pos)); err != nil {
				return err
			}
		case token.Bool:
			if err := p.attach(ast.NewBool(tok.Text, tok.Pos)); err != nil {
				return err
			}
		case token.Int:
			if err := p.attach(ast.NewInt(tok.Text, tok.Pos)); err != nil {
				return err
			}
		case token.Real:
			if err := p.attach(ast.NewReal(tok.Text, tok.Pos)); err != nil {
				return err
			}
		case token.Keyword:
			v, _ := token.LiteralKeyword(tok.Text)
			if err := p.attach(ast.NewString(v, tok.Pos)); err != nil {
				return err
			}
		case token.Ident:
			if err := p.attach(ast.NewVariable(tok.Text, tok.Pos)); err != nil {
				return err
			}
		default:
			return p.errf(tok.Pos, "unexpected token %s", tok)
		}
	}
}

// openHead consumes the "(" that must immediately follow a Head token
// (guaranteed by the tokeniser's lookahead classification) and pushes a
// new container frame.
func (p *parser) openHead(tok token.Token) error {
	paren, err := p.lex.Next()
	if err != nil {
		return p.errf(tok.Pos, "%s", err)
	}
	if paren.Kind != token.LParen {
		return p.errf(paren.Pos, "expected '(' after %q, found %s", tok.Text, paren.Kind)
	}

	kind, ok := heads[tok.Text]
	if !ok {
		kind = ast.Object
	}
	node := ast.NewParent(kind, tok.Text, tok.Pos)
	if kind != ast.Object {
		node.Value = ""
	}
	return p.openContainer(node, '(')
}

func (p *parser) openContainer(node *ast.Node, opener rune) error {
	p.stack = append(p.stack, &frame{node: node, opener: opener})
	return nil
}

func (p *parser) peek() *frame {
	if len(p.stack) == 0 {
		return nil
	}
	return p.stack[len(p.stack)-1]
}

func (p *parser) pop() *frame {
	f := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	return f
}

// attach installs node as the next value in whatever the current
// container expects: a Map frame stashes it as the pending key (until a
// ':' promotes it into a Pair), every other frame appends it directly as
// the next child, and an empty stack makes it the whole expression's
// root.
func (p *parser) attach(node *ast.Node) error {
	top := p.peek()
	if top == nil {
		if p.result != nil {
			return p.errf(node.Pos, "unexpected %s after a complete expression", ast.Unparse(node))
		}
		p.result = node
		return nil
	}

	if top.node.Kind == ast.Map {
		if top.pendingKey != nil {
			return p.errf(node.Pos, "expected ':' after map key %s", ast.Unparse(top.pendingKey))
		}
		top.pendingKey = node
		return nil
	}

	top.node.Children = append(top.node.Children, node)
	node.Parent = top.node
	return nil
}

func (p *parser) comma(tok token.Token) error {
	top := p.peek()
	if top == nil {
		return p.errf(tok.Pos, "unexpected ','")
	}

	switch top.node.Kind {
	case ast.Pair:
		pair := p.pop()
		mapFrame := p.peek()
		if mapFrame == nil || mapFrame.node.Kind != ast.Map {
			return p.errf(tok.Pos, "unexpected ',' closing a pair outside a map")
		}
		mapFrame.node.Children = append(mapFrame.node.Children, pair.node)
		pair.node.Parent = mapFrame.node
		return nil
	case ast.Map:
		return p.errf(tok.Pos, "',' not allowed in a map before ':'")
	default:
		return nil
	}
}

func (p *parser) colon(tok token.Token) error {
	top := p.peek()
	if top == nil || top.node.Kind != ast.Map {
		return p.errf(tok.Pos, "unexpected ':' outside a map")
	}
	if top.pendingKey == nil {
		return p.errf(tok.Pos, "':' without a preceding map key")
	}

	pair := ast.NewParent(ast.Pair, "", tok.Pos, top.pendingKey)
	top.pendingKey.Parent = pair
	top.pendingKey = nil
	return p.openContainer(pair, ':')
}

func (p *parser) closeParen(tok token.Token) error {
	top := p.peek()
	if top == nil || top.opener != '(' {
		return p.errf(tok.Pos, "unexpected ')'")
	}
	f := p.pop()
	node := f.node

	switch node.Kind {
	case ast.Library:
		if len(node.Children) != 1 {
			return p.errf(tok.Pos, "Library expects 1 parameter but has %d", len(node.Children))
		}
		if len(p.stack) != 0 {
			return p.errf(node.Pos, "Library(...) cannot appear nested inside another expression")
		}
	case ast.Class:
		if len(node.Children) != 2 {
			return p.errf(tok.Pos, "Class expects 2 parameters but has %d", len(node.Children))
		}
		if len(p.stack) != 0 {
			return p.errf(node.Pos, "Class(...) cannot appear nested inside another expression")
		}
		if node.Children[0].Kind != ast.Variable {
			return p.errf(node.Children[0].Pos, "Class's first parameter must be a library variable")
		}
	case ast.CurrentDir:
		if len(node.Children) != 0 {
			return p.errf(tok.Pos, "CurrentDir expects 0 parameters but has %d", len(node.Children))
		}
		node.Kind = ast.String
		node.Value = p.dir
	case ast.List:
		// List(...) form; closing with ')' is the only legal closer.
	case ast.Object:
		// arbitrary arity, checked later against the class's declared
		// constructor by the builder (spec.md §4.F).
	}

	return p.attach(node)
}

func (p *parser) closeBracket(tok token.Token) error {
	top := p.peek()
	if top == nil || top.opener != '[' || top.node.Kind != ast.List {
		return p.errf(tok.Pos, "unexpected ']'")
	}
	f := p.pop()
	return p.attach(f.node)
}

func (p *parser) closeBrace(tok token.Token) error {
	top := p.peek()
	if top == nil {
		return p.errf(tok.Pos, "unexpected '}'")
	}

	switch top.node.Kind {
	case ast.Pair:
		pair := p.pop()
		mapFrame := p.peek()
		if mapFrame == nil || mapFrame.node.Kind != ast.Map {
			return p.errf(tok.Pos, "'}' closing a pair outside a map")
		}
		mapFrame.node.Children = append(mapFrame.node.Children, pair.node)
		pair.node.Parent = mapFrame.node
		m := p.pop()
		return p.attach(m.node)
	case ast.Map:
		if top.pendingKey != nil {
			return p.errf(tok.Pos, "map entry missing ':' before '}'")
		}
		m := p.pop()
		return p.attach(m.node)
	default:
		return p.errf(tok.Pos, "unexpected '}'")
	}
}

func (p *parser) finish(tok token.Token) error {
	if len(p.stack) != 0 {
		top := p.peek()
		return p.errf(tok.Pos, "unexpected end of input, unmatched '%c' opened at %s", top.opener, top.node.Pos)
	}
	if top := p.peek(); top != nil {
		_ = top
	}
	return nil
}
