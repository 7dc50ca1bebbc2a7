// Package library implements the process-wide library table (spec.md
// §4.E): a registry of dynamically-loaded native modules (backed by Go's
// plugin package, the closest stdlib analogue to the spec's external
// open/lookup ABI) plus an orthogonal "static library" slot the engine
// uses to expose its own built-in runnable-list classes.
package library

import (
	"plugin"
	"reflect"
	"sync"

	"github.com/dotfield/ioc/ast"
	"github.com/dotfield/ioc/errdefs"
)

// Resolver is the narrow slice of the object-graph resolver (package
// resolver) that a Builder needs in order to recurse back into it while
// binding parameters: fetching another named/anonymous object, resolving
// a Class expression to a cached Factory, and following Variable chains.
// It is declared here, at the bottom of the dependency graph, rather
// than in package resolver, so that library (and builder, and binder,
// which each accept a Resolver) never need to import resolver; resolver
// imports them and its concrete type satisfies this interface
// structurally.
type Resolver interface {
	GetObject(expr *ast.Node, name string) (interface{}, error)
	GetClass(name string) (Factory, error)
	Underlying(expr *ast.Node, tolerateMissing bool) (*ast.Node, string, error)
}

// Builder is the per-class, per-instance object a Factory produces: it
// binds its declared constructor parameters against an Object expression
// and, on first Get, materialises the instance (spec.md §4.F).
type Builder interface {
	Bind(r Resolver, expr *ast.Node) error
	Get(r Resolver) (interface{}, error)
}

// Factory is the shape every exported class symbol must satisfy: given
// the alias it was bound under and the Object expression invoking it, it
// returns a Builder (spec.md §6, "Library ABI").
type Factory interface {
	NewBuilder(alias string, expr *ast.Node) (Builder, error)
}

// Handle is one entry in the table: either a dynamically opened plugin
// (Path set, Plugin non-nil) or a statically registered in-process
// bundle (Symbols set).
type Handle struct {
	Alias   string
	Path    string
	Plugin  *plugin.Plugin
	Symbols map[string]Factory // only populated for static libraries
}

// Lookup resolves symbol to a Factory, failing with ArgumentInvalid if
// the symbol is missing or not class-factory shaped.
func (h *Handle) Lookup(symbol string, required bool) (Factory, error) {
	if h.Symbols != nil {
		f, ok := h.Symbols[symbol]
		if !ok {
			if !required {
				return nil, nil
			}
			return nil, errdefs.New(errdefs.ArgumentInvalid, "library %q has no symbol %q", h.Alias, symbol)
		}
		return f, nil
	}

	sym, err := h.Plugin.Lookup(symbol)
	if err != nil {
		if !required {
			return nil, nil
		}
		return nil, errdefs.Wrap(errdefs.ArgumentInvalid, err, "looking up symbol %q in library %q", symbol, h.Alias)
	}
	factory, ok := sym.(Factory)
	if !ok {
		return nil, errdefs.New(errdefs.ArgumentInvalid, "symbol %q in library %q is not a class factory", symbol, h.Alias)
	}
	return factory, nil
}

// Table is the process-wide alias → Handle registry. The build phase is
// single-threaded per spec.md §5, but the table itself is guarded by a
// mutex since it is a process-global singleton that may be shared across
// concurrently-running resolvers in the same process (e.g. tests).
type Table struct {
	mu      sync.Mutex
	handles map[string]*Handle
}

var global = New()

// Global returns the process-wide singleton table, matching spec.md
// §6's `library_table() → global table reference`.
func Global() *Table { return global }

// New returns an empty, independent table (used by tests that want
// isolation from the process-wide singleton).
func New() *Table {
	return &Table{handles: make(map[string]*Handle)}
}

// AddLibrary registers a dynamically-loaded library under alias,
// opening path via the Go plugin loader. Idempotent: re-registering the
// same alias with the same path is a no-op; a different path under an
// already-registered alias fails.
func (t *Table) AddLibrary(alias, path string) (*Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.handles[alias]; ok {
		if existing.Path != path {
			return nil, errdefs.New(errdefs.ArgumentInvalid, "library alias %q already bound to %q, cannot rebind to %q", alias, existing.Path, path)
		}
		return existing, nil
	}

	p, err := plugin.Open(path)
	if err != nil {
		return nil, errdefs.Wrap(errdefs.ArgumentInvalid, err, "opening library %q (%s)", alias, path)
	}

	h := &Handle{Alias: alias, Path: path, Plugin: p}
	t.handles[alias] = h
	return h, nil
}

// AddStaticLibrary registers an in-process symbol bundle under alias.
// Idempotent: re-registering the same alias with an identical symbol
// map (compared by content) is a no-op; anything else under an
// already-used alias fails.
func (t *Table) AddStaticLibrary(alias string, symbols map[string]Factory) (*Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.handles[alias]; ok {
		if existing.Symbols == nil {
			return nil, errdefs.New(errdefs.ArgumentInvalid, "library alias %q already bound to a dynamic library", alias)
		}
		if !reflect.DeepEqual(existing.Symbols, symbols) {
			return nil, errdefs.New(errdefs.ArgumentInvalid, "library alias %q already bound to a different static symbol set", alias)
		}
		return existing, nil
	}

	h := &Handle{Alias: alias, Symbols: symbols}
	t.handles[alias] = h
	return h, nil
}

// GetLibrary returns the handle registered under alias, failing if none
// exists.
func (t *Table) GetLibrary(alias string) (*Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, ok := t.handles[alias]
	if !ok {
		return nil, errdefs.New(errdefs.ArgumentInvalid, "no library registered under alias %q", alias)
	}
	return h, nil
}

// GetLibraryOrNone returns the handle registered under alias, or nil if
// none exists, without error.
func (t *Table) GetLibraryOrNone(alias string) *Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.handles[alias]
}
