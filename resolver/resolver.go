// Package resolver implements the typed object-graph resolver (spec.md
// §4.H): it owns the parsed symbol table plus the class and object
// caches, follows Variable chains with cycle detection, loads classes
// through the library table, and drives each class's builder through
// the bind/materialise protocol with at-most-once construction.
package resolver

import (
	"github.com/dotfield/ioc/ast"
	"github.com/dotfield/ioc/binder"
	"github.com/dotfield/ioc/config"
	"github.com/dotfield/ioc/diagnostic"
	"github.com/dotfield/ioc/errdefs"
	"github.com/dotfield/ioc/library"
	"github.com/dotfield/ioc/token"
)

// objectRecord tracks one named object's builder plus whether it is
// currently being bound or materialised. active spans both the Bind and
// Get calls -- not just Get, as builder.Generic's own re-entrancy guard
// does -- because the Object binder recurses into GetObject from inside
// Bind (spec.md §4.G), so a construction cycle can reach back to this
// name before this object's own Get is ever called (spec.md §4.H).
type objectRecord struct {
	builder library.Builder
	active  bool
}

// Resolver satisfies library.Resolver: it is the concrete type every
// Binder and Builder recurses back into while binding and materialising
// constructor parameters.
type Resolver struct {
	table   *config.SymbolTable
	libs    *library.Table
	classes map[string]library.Factory
	objects map[string]*objectRecord
}

var _ library.Resolver = (*Resolver)(nil)

// New returns a resolver over table, consulting libs for class lookups.
func New(table *config.SymbolTable, libs *library.Table) *Resolver {
	return &Resolver{
		table:   table,
		libs:    libs,
		classes: make(map[string]library.Factory),
		objects: make(map[string]*objectRecord),
	}
}

// Underlying follows a Variable chain starting at expr to its first
// non-Variable node, returning also the last variable name visited (used
// by the enum binder). A repeated name on the chain is a resolution
// cycle (spec.md §4.H). When tolerateMissing is true, a terminal
// variable with no symbol-table entry is returned as-is rather than
// failing -- the enum binder's case, which *wants* an undefined
// terminal.
func (r *Resolver) Underlying(expr *ast.Node, tolerateMissing bool) (*ast.Node, string, error) {
	visited := make(map[string]bool)
	n := expr
	lastName := ""
	for n.Kind == ast.Variable {
		if visited[n.Value] {
			return nil, "", errdefs.New(errdefs.ArgumentInvalid, "Circular reference resolving %q", n.Value)
		}
		visited[n.Value] = true
		lastName = n.Value

		next, ok := r.table.Get(n.Value)
		if !ok {
			if tolerateMissing {
				return n, lastName, nil
			}
			suggestion := diagnostic.Suggest(n.Value, r.table.Names())
			if suggestion != "" {
				return nil, "", errdefs.New(errdefs.ArgumentInvalid, "undefined symbol %q (did you mean %q?)", n.Value, suggestion)
			}
			return nil, "", errdefs.New(errdefs.ArgumentInvalid, "undefined symbol %q", n.Value)
		}
		n = next
	}
	return n, lastName, nil
}

// GetClass resolves name to its cached Factory, loading the class's
// library (opening it if this is the library's first use) on a cache
// miss.
func (r *Resolver) GetClass(name string) (library.Factory, error) {
	if f, ok := r.classes[name]; ok {
		return f, nil
	}

	expr, ok := r.table.Get(name)
	if !ok {
		suggestion := diagnostic.Suggest(name, r.table.Names())
		if suggestion != "" {
			return nil, errdefs.New(errdefs.ArgumentInvalid, "undefined class %q (did you mean %q?)", name, suggestion)
		}
		return nil, errdefs.New(errdefs.ArgumentInvalid, "undefined class %q", name)
	}
	if expr.Kind != ast.Class {
		return nil, errdefs.New(errdefs.ArgumentInvalid, "%q is not a Class", name)
	}
	if len(expr.Children) != 2 || expr.Children[0].Kind != ast.Variable {
		return nil, errdefs.New(errdefs.ArgumentInvalid, "%q's Class declaration is malformed", name)
	}

	libAlias := expr.Children[0].Value
	symbolName, err := r.resolveStringExpr(expr.Children[1])
	if err != nil {
		return nil, errdefs.Propagate(err, "resolving symbol name for class %q", name)
	}

	handle, err := r.getOrOpenLibrary(libAlias)
	if err != nil {
		return nil, errdefs.Propagate(err, "loading library for class %q", name)
	}

	factory, err := handle.Lookup(symbolName, true)
	if err != nil {
		return nil, errdefs.Propagate(err, "resolving factory %q for class %q", symbolName, name)
	}

	r.classes[name] = factory
	return factory, nil
}

// getOrOpenLibrary returns the handle registered under alias, opening it
// on first use from the alias's own `Library(path)` declaration in the
// symbol table if it has not been opened yet (spec.md §4.H: "consult the
// library table, opening the library if needed").
func (r *Resolver) getOrOpenLibrary(alias string) (*library.Handle, error) {
	if h := r.libs.GetLibraryOrNone(alias); h != nil {
		return h, nil
	}

	expr, ok := r.table.Get(alias)
	if !ok {
		return nil, errdefs.New(errdefs.ArgumentInvalid, "undefined library %q", alias)
	}
	if expr.Kind != ast.Library || len(expr.Children) != 1 {
		return nil, errdefs.New(errdefs.ArgumentInvalid, "%q is not a Library", alias)
	}
	path, err := r.resolveStringExpr(expr.Children[0])
	if err != nil {
		return nil, errdefs.Propagate(err, "resolving path for library %q", alias)
	}
	return r.libs.AddLibrary(alias, path)
}

// resolveStringExpr resolves expr (following Variable chains, joining
// Concat children) to a plain string, reusing the string binder rather
// than duplicating its literal-conversion rules.
func (r *Resolver) resolveStringExpr(expr *ast.Node) (string, error) {
	b := &binder.String{}
	if err := b.Bind(r, expr); err != nil {
		return "", err
	}
	v, err := b.Value()
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// GetObject resolves expr to a constructed instance. If name is
// non-empty and already cached, the cached builder's (memoised) instance
// is returned directly -- aliasing a variable never duplicates work
// (spec.md §5) -- unless that record is still active (its Bind or Get is
// somewhere further down the current call stack), which means the graph
// has walked back to an object still under construction; that is a
// construction cycle, reported immediately rather than left for the
// builder to discover a value it can never finish computing.
//
// A fresh builder is inserted into the cache, marked active, *before*
// parameter binding begins, so that this guard catches the cycle no
// matter which of this object's parameters leads back to it (spec.md
// §4.H).
func (r *Resolver) GetObject(expr *ast.Node, name string) (interface{}, error) {
	if name != "" {
		if rec, ok := r.objects[name]; ok {
			if rec.active {
				return nil, errdefs.New(errdefs.ArgumentInvalid, "Circular reference detected constructing %q", name)
			}
			return rec.builder.Get(r)
		}
	}

	n, _, err := r.Underlying(expr, false)
	if err != nil {
		return nil, err
	}
	if n.Kind != ast.Object {
		return nil, errdefs.New(errdefs.TypeMismatch, "expected an object, found %s", n.Kind)
	}

	factory, err := r.GetClass(n.Value)
	if err != nil {
		return nil, err
	}
	b, err := factory.NewBuilder(name, n)
	if err != nil {
		return nil, err
	}

	var rec *objectRecord
	if name != "" {
		rec = &objectRecord{builder: b, active: true}
		r.objects[name] = rec
		defer func() { rec.active = false }()
	}

	if err := b.Bind(r, n); err != nil {
		return nil, err
	}
	return b.Get(r)
}

// GetNamedObject is the entry point's way of resolving a top-level
// object by the variable name referencing it (spec.md §4.I): it follows
// name's alias chain and caches under the chain's terminal variable
// name, so that two different aliases of the same declaration share one
// instance exactly as they would if referenced from inside a parameter
// list.
func (r *Resolver) GetNamedObject(name string) (interface{}, error) {
	ref := ast.NewVariable(name, token.Position{})
	n, lastName, err := r.Underlying(ref, false)
	if err != nil {
		return nil, err
	}
	return r.GetObject(n, lastName)
}
