// Package config implements the configuration loader (spec.md §4.D): it
// reads a file, honouring #include, #define and $(macro) expansion, and
// populates a name → expression symbol table that the resolver then
// traverses on demand.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dotfield/ioc/ast"
	"github.com/dotfield/ioc/errdefs"
	"github.com/dotfield/ioc/parser"
	"github.com/dotfield/ioc/token"
)

// reserved names may never be used as a definition's NAME; they collide
// with the grammar's literal keywords and function-like heads.
var reserved = map[string]bool{
	"Class":      true,
	"Concat":     true,
	"CurrentDir": true,
	"Library":    true,
	"List":       true,
	"false":      true,
	"newline":    true,
	"quote":      true,
	"tab":        true,
	"true":       true,
}

var identPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9._]*$`)

var macroPattern = regexp.MustCompile(`\$\(([^()]*)\)`)

// SymbolTable is the immutable-after-load mapping of names to expressions
// that the object-graph resolver (package resolver) traverses.
type SymbolTable struct {
	symbols map[string]*ast.Node
}

// Get looks up name, reporting whether it was found.
func (t *SymbolTable) Get(name string) (*ast.Node, bool) {
	n, ok := t.symbols[name]
	return n, ok
}

// Names returns every defined name, for "did you mean" suggestions.
func (t *SymbolTable) Names() []string {
	names := make([]string, 0, len(t.symbols))
	for name := range t.symbols {
		names = append(names, name)
	}
	return names
}

// Loader accumulates the symbol table across a #include tree. A Loader is
// single-use: create one per Load call (spec.md §5: "single-threaded
// during load").
type Loader struct {
	table    map[string]*ast.Node
	macros   map[string]string
	included map[string]bool
}

// New returns an empty Loader.
func New() *Loader {
	return &Loader{
		table:    make(map[string]*ast.Node),
		macros:   make(map[string]string),
		included: make(map[string]bool),
	}
}

// Load reads path (and, transitively, anything it #includes) and returns
// the resulting symbol table.
func (l *Loader) Load(path string) (*SymbolTable, error) {
	if err := l.processFile(path); err != nil {
		return nil, err
	}
	return &SymbolTable{symbols: l.table}, nil
}

// processFile reads one file, recursing into #include directives
// depth-first. Re-including an already-seen absolute path is a silent
// no-op (spec.md §4.D: "best-effort" guard against literal-path
// re-inclusion).
func (l *Loader) processFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errdefs.Wrap(errdefs.LoadIO, err, "resolving path %q", path)
	}
	if l.included[abs] {
		return nil
	}
	l.included[abs] = true

	f, err := os.Open(abs)
	if err != nil {
		return errdefs.Wrap(errdefs.LoadIO, err, "opening %q", abs)
	}
	defer f.Close()

	dir := filepath.Dir(abs)

	var (
		buf     strings.Builder
		bufName string
		bufPos  token.Position
		lineNo  int
	)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineNo++
		raw := strings.Trim(scanner.Text(), " \t")

		if buf.Len() > 0 {
			buf.WriteString(" ")
			buf.WriteString(raw)
			if strings.HasSuffix(strings.TrimRight(raw, " \t"), ";") {
				if err := l.finishDefinition(bufName, buf.String(), dir, bufPos); err != nil {
					return err
				}
				buf.Reset()
				bufName = ""
			}
			continue
		}

		if raw == "" {
			continue
		}
		if strings.HasPrefix(raw, "!") {
			continue
		}
		if strings.HasPrefix(raw, "#!") {
			if lineNo != 1 {
				return errdefs.New(errdefs.LoadIO, "%s:%d: shebang only allowed on the first line", abs, lineNo)
			}
			continue
		}
		if strings.HasPrefix(raw, "#include") {
			if err := l.doInclude(raw, dir, abs, lineNo); err != nil {
				return err
			}
			continue
		}
		if strings.HasPrefix(raw, "#define") {
			if err := l.doDefine(raw, dir, abs, lineNo); err != nil {
				return err
			}
			continue
		}

		name, rhs, ok := splitDefinition(raw)
		if !ok {
			return errdefs.New(errdefs.LoadIO, "%s:%d: not a recognised statement: %q", abs, lineNo, raw)
		}
		pos := token.Position{Filename: abs, Line: lineNo, Column: 1}
		if strings.HasSuffix(strings.TrimRight(rhs, " \t"), ";") {
			if err := l.finishDefinition(name, rhs, dir, pos); err != nil {
				return err
			}
			continue
		}
		// spans multiple lines: start accumulating.
		bufName = name
		bufPos = pos
		buf.WriteString(rhs)
	}
	if err := scanner.Err(); err != nil {
		return errdefs.Wrap(errdefs.LoadIO, err, "reading %q", abs)
	}
	if buf.Len() > 0 {
		return errdefs.New(errdefs.LoadIO, "%s: unterminated definition %q (missing ';')", abs, bufName)
	}

	return nil
}

// splitDefinition recognises "NAME = EXPR" (with or without whitespace
// around '='), returning the rest of the line as rhs (still possibly
// unterminated). ok is false if raw does not start with a valid
// identifier followed by '='.
func splitDefinition(raw string) (name, rhs string, ok bool) {
	eq := strings.Index(raw, "=")
	if eq < 0 {
		return "", "", false
	}
	name = strings.TrimSpace(raw[:eq])
	if !identPattern.MatchString(name) {
		return "", "", false
	}
	rhs = strings.TrimSpace(raw[eq+1:])
	return name, rhs, true
}

// finishDefinition strips the trailing ';', expands macros, parses the
// expression, and installs it in the table.
func (l *Loader) finishDefinition(name, text string, dir string, pos token.Position) error {
	if reserved[name] {
		return errdefs.New(errdefs.LoadIO, "%s:%d: %q is a reserved word and cannot be used as a definition name", pos.Filename, pos.Line, name)
	}
	if !identPattern.MatchString(name) {
		return errdefs.New(errdefs.LoadIO, "%s:%d: %q is not a valid identifier", pos.Filename, pos.Line, name)
	}
	if _, exists := l.table[name]; exists {
		return errdefs.New(errdefs.LoadIO, "%s:%d: %q is already defined", pos.Filename, pos.Line, name)
	}

	body := strings.TrimRight(strings.TrimSpace(text), " \t")
	body = strings.TrimSuffix(body, ";")

	expanded, err := l.expand(body, dir)
	if err != nil {
		return errdefs.Propagate(err, "%s:%d: expanding definition %q", pos.Filename, pos.Line, name)
	}

	node := parser.Parse(expanded, dir, pos)
	if node.Kind == ast.Error {
		return errdefs.New(errdefs.Syntax, "%s:%d: %s", pos.Filename, pos.Line, node.Value)
	}

	l.table[name] = node
	return nil
}

func (l *Loader) doInclude(raw, dir, file string, lineNo int) error {
	path, err := extractQuoted(raw, "#include")
	if err != nil {
		return errdefs.Wrap(errdefs.LoadIO, err, "%s:%d", file, lineNo)
	}
	path, err = l.expand(path, dir)
	if err != nil {
		return errdefs.Propagate(err, "%s:%d: expanding #include path", file, lineNo)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	if err := l.processFile(path); err != nil {
		return errdefs.Propagate(err, "%s:%d: #include %q", file, lineNo, path)
	}
	return nil
}

func (l *Loader) doDefine(raw, dir, file string, lineNo int) error {
	rest := strings.TrimSpace(strings.TrimPrefix(raw, "#define"))
	sp := strings.IndexAny(rest, " \t")
	if sp < 0 {
		return errdefs.New(errdefs.LoadIO, "%s:%d: malformed #define", file, lineNo)
	}
	name := rest[:sp]
	if name == "CurrentDir" {
		return errdefs.New(errdefs.LoadIO, "%s:%d: %q is an implicit macro and cannot be redefined", file, lineNo, name)
	}
	if _, exists := l.macros[name]; exists {
		return errdefs.New(errdefs.LoadIO, "%s:%d: macro %q is already defined", file, lineNo, name)
	}

	value, err := extractQuoted(rest[sp:], "")
	if err != nil {
		return errdefs.Wrap(errdefs.LoadIO, err, "%s:%d: #define %s", file, lineNo, name)
	}

	expanded, err := l.expand(value, dir)
	if err != nil {
		return errdefs.Propagate(err, "%s:%d: expanding #define %s", file, lineNo, name)
	}
	l.macros[name] = expanded
	return nil
}

// extractQuoted pulls the double-quoted string out of a "#directive
// "value"" line, after stripping the given prefix.
func extractQuoted(s, prefix string) (string, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), prefix))
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", fmt.Errorf("expected a quoted string, found %q", s)
	}
	return s[1 : len(s)-1], nil
}

// expand repeatedly substitutes the innermost $(X) in text: $(CurrentDir)
// becomes dir (the directory of the file being processed); any other
// name is looked up in the macro table. Expansion fails if a name cannot
// be resolved.
func (l *Loader) expand(text, dir string) (string, error) {
	for {
		loc := macroPattern.FindStringSubmatchIndex(text)
		if loc == nil {
			return text, nil
		}
		name := text[loc[2]:loc[3]]

		var value string
		if name == "CurrentDir" {
			value = dir
		} else {
			v, ok := l.macros[name]
			if !ok {
				return "", errdefs.New(errdefs.LoadIO, "undefined macro $(%s)", name)
			}
			value = v
		}
		text = text[:loc[0]] + value + text[loc[1]:]
	}
}
