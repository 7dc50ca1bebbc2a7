// Package ioc is the top-level entry point: load a config file, wire up
// the built-in library, and construct one named object out of it.
package ioc

import (
	"io"

	"github.com/dotfield/ioc/builtin"
	"github.com/dotfield/ioc/config"
	"github.com/dotfield/ioc/errdefs"
	"github.com/dotfield/ioc/library"
	"github.com/dotfield/ioc/report"
	"github.com/dotfield/ioc/resolver"
	"github.com/dotfield/ioc/runnable"
)

func typeMismatch(name string) error {
	return errdefs.New(errdefs.TypeMismatch, "%q does not implement Runnable", name)
}

// Option configures a Load/GetRunnable call.
type Option func(*options)

type options struct {
	libs  *library.Table
	trace io.Writer
}

// WithLibraryTable uses libs instead of the process-wide singleton
// (library.Global()) -- tests and embedders that want isolation from
// other resolvers in the same process should set this.
func WithLibraryTable(libs *library.Table) Option {
	return func(o *options) { o.libs = libs }
}

// WithTrace enables construction tracing (package report) to w for the
// duration of the call.
func WithTrace(w io.Writer) Option {
	return func(o *options) { o.trace = w }
}

func build(opts []Option) *options {
	o := &options{libs: library.Global()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// InitBuiltinLibrary registers the engine's built-in runnable-list
// classes (package builtin) into libs, defaulting to the process-wide
// table.
func InitBuiltinLibrary(opts ...Option) (*library.Handle, error) {
	o := build(opts)
	return builtin.Register(o.libs)
}

// LibraryTable returns the library table a set of Options resolves to
// (the process-wide singleton unless WithLibraryTable overrides it).
func LibraryTable(opts ...Option) *library.Table {
	return build(opts).libs
}

// GetObjectLoader parses and loads path (following #include/#define),
// returning the resulting symbol table -- the same table GetRunnable
// loads internally, exposed directly for callers that want to resolve
// more than one name out of it without reparsing.
func GetObjectLoader(path string) (*config.SymbolTable, error) {
	return config.New().Load(path)
}

// GetRunnable loads path and resolves rootName to a runnable.Runnable,
// failing with errdefs.TypeMismatch if the resolved object does not
// implement Run.
func GetRunnable(path, rootName string, opts ...Option) (runnable.Runnable, error) {
	table, err := GetObjectLoader(path)
	if err != nil {
		return nil, err
	}
	return GetRunnableFromTable(table, rootName, opts...)
}

// GetRunnableFromTable is GetRunnable for a table already loaded via
// GetObjectLoader.
func GetRunnableFromTable(table *config.SymbolTable, rootName string, opts ...Option) (runnable.Runnable, error) {
	o := build(opts)
	if o.trace != nil {
		report.EnableTrace(o.trace)
		defer report.DisableTrace()
	}

	if _, err := builtin.Register(o.libs); err != nil {
		return nil, err
	}

	r := resolver.New(table, o.libs)
	instance, err := r.GetNamedObject(rootName)
	if err != nil {
		return nil, err
	}

	run, ok := instance.(runnable.Runnable)
	if !ok {
		return nil, typeMismatch(rootName)
	}
	return run, nil
}
