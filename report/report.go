// Package report renders errdefs/diagnostic values for the CLI: a
// colorized one-line-per-Kind error summary, a caret-pointed source span
// when the error carries one, and an optional construction trace hooked
// into builder.Generic's materialisation (spec.md §4.F expansion).
//
// Adapted from the teacher's own isatty-gated color policy (hlb.go's
// `DefaultParseOpts`) and report.go's aurora-colored rendering, trimmed
// down from HLB-syntax-aware annotation groups to this engine's flatter
// errdefs.Kind/diagnostic.Span shapes.
package report

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dotfield/ioc/builder"
	"github.com/dotfield/ioc/diagnostic"
	"github.com/dotfield/ioc/errdefs"
	"github.com/logrusorgru/aurora"
	isatty "github.com/mattn/go-isatty"
)

// Printer writes colorized diagnostics to an io.Writer, gating color on
// whether that writer is a terminal.
type Printer struct {
	w  io.Writer
	au aurora.Aurora
}

// New returns a Printer over w, enabling color only when w is a terminal
// (matching the teacher's `isatty.IsTerminal(os.Stderr.Fd())` gate).
func New(w io.Writer) *Printer {
	colorize := false
	if f, ok := w.(*os.File); ok {
		colorize = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Printer{w: w, au: aurora.NewAurora(colorize)}
}

// PrintError writes err to the underlying writer: a diagnostic.Error is
// rendered with its caret-pointed span, an errdefs.Error is prefixed with
// its colorized Kind, and anything else is printed plain.
func (p *Printer) PrintError(err error) {
	var de *diagnostic.Error
	if errors.As(err, &de) {
		fmt.Fprint(p.w, de.Render())
		return
	}

	var ee *errdefs.Error
	if errors.As(err, &ee) {
		fmt.Fprintf(p.w, "%s: %s\n", p.au.Red(ee.Kind.String()).Bold(), ee.Error())
		return
	}

	fmt.Fprintf(p.w, "%s\n", p.au.Red(err.Error()))
}

// EnableTrace installs a construction-trace hook into package builder
// that logs one colorized line per materialised object to w (spec.md
// §4.F expansion's observability hook; there is no breakpoint/REPL
// concept in this engine, only this one-line-per-construct log).
func EnableTrace(w io.Writer) {
	p := New(w)
	builder.OnConstruct = func(alias string, instance interface{}) {
		fmt.Fprintf(w, "%s %s (%T)\n", p.au.Cyan("constructed"), alias, instance)
	}
}

// DisableTrace removes any trace hook installed by EnableTrace.
func DisableTrace() {
	builder.OnConstruct = nil
}
