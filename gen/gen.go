// Package gen generates package builtin's static factory-registration
// table from a declarative class list: a template rendered against the
// class specs, then gofmt'd.
package gen

import (
	"bytes"
	"go/format"
	"text/template"

	"github.com/palantir/stacktrace"
)

// Param is one constructor parameter: Binder is a Go expression
// constructing a builder.Binder, e.g. "&binder.String{}" or
// "binder.NewList(func() binder.Binder { return &binder.Int{} })".
type Param struct {
	Binder string
}

// Class describes one built-in class to register: Symbol is the name
// config files pass to `Class(IOC, "Symbol")`; Factory is the unexported
// Go identifier for its factory type; Result is the constructed Go type
// (used only in a doc comment); New is the constructor expression body,
// receiving `args []interface{}`.
type Class struct {
	Symbol  string
	Factory string
	Result  string
	Params  []Param
	New     string
}

// Data is the full set of classes to register under one static library
// alias.
type Data struct {
	Alias   string
	Classes []Class
}

// Generate renders Data into a complete builtin.go source file, gofmt'd.
func Generate(data Data) ([]byte, error) {
	var buf bytes.Buffer
	if err := builtinTmpl.Execute(&buf, data); err != nil {
		return nil, stacktrace.Propagate(err, "rendering builtin registration template")
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, stacktrace.Propagate(err, "formatting generated builtin.go (%s)", buf.String())
	}
	return src, nil
}

var builtinTmpl = template.Must(template.New("builtin").Parse(`// Code generated by gen.Generate; DO NOT EDIT.

package builtin

import (
	"github.com/dotfield/ioc/ast"
	"github.com/dotfield/ioc/binder"
	"github.com/dotfield/ioc/builder"
	"github.com/dotfield/ioc/library"
)

// Alias is the library name every config file uses to reach these
// classes.
const Alias = "{{.Alias}}"

// Register installs the built-in classes into libs under Alias.
func Register(libs *library.Table) (*library.Handle, error) {
	return libs.AddStaticLibrary(Alias, map[string]library.Factory{
		{{range .Classes}}"{{.Symbol}}": {{.Factory}}{},
		{{end}}
	})
}
{{range .Classes}}
// {{.Factory}} builds a {{.Result}}.
type {{.Factory}} struct{}

func ({{.Factory}}) NewBuilder(alias string, expr *ast.Node) (library.Builder, error) {
	return &builder.Generic{
		Alias: alias,
		Binders: []builder.Binder{
			{{range .Params}}{{.Binder}},
			{{end}}
		},
		New: func(args []interface{}) (interface{}, error) {
			{{.New}}
		},
	}, nil
}
{{end}}
`))
