// Package diagnostic renders source-span errors with a caret pointing at
// the offending column, and suggests "did you mean" corrections for
// undefined names. Ported from the teacher's diagnostic/span.go and
// diagnostic/levenshtein.go, retargeted at this engine's token.Position
// instead of HLB's CST node positions.
package diagnostic

import (
	"fmt"
	"strings"

	"github.com/dotfield/ioc/token"
)

// Severity distinguishes the primary offending span from secondary,
// explanatory spans (e.g. "did you mean X, defined here").
type Severity int

const (
	Primary Severity = iota
	Secondary
)

// Span is one annotated position in a diagnostic message.
type Span struct {
	Pos      token.Position
	Message  string
	Severity Severity
}

// Error is a fully-formed, renderable diagnostic: an underlying error plus
// the source spans that explain it.
type Error struct {
	Err   error
	Spans []Span
	// Source is the single line of text the primary span points into, if
	// known; used to render a caret.
	Source string
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Render formats the error with a caret-annotated source line, in the
// style `file:line:col: message`, followed by the line and a `^` marker,
// matching the teacher's report package's rendering shape.
func (e *Error) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", e.Err.Error())
	for _, span := range e.Spans {
		fmt.Fprintf(&b, "  %s:%d:%d: %s\n", span.Pos.Filename, span.Pos.Line, span.Pos.Column, span.Message)
		if span.Severity == Primary && e.Source != "" {
			fmt.Fprintf(&b, "    %s\n", e.Source)
			fmt.Fprintf(&b, "    %s^\n", strings.Repeat(" ", max(0, span.Pos.Column-1)))
		}
	}
	return b.String()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Spanf builds a Span at pos with a formatted message.
func Spanf(pos token.Position, sev Severity, format string, a ...interface{}) Span {
	return Span{Pos: pos, Message: fmt.Sprintf(format, a...), Severity: sev}
}
