// Package builder implements the generic per-class Builder (spec.md
// §4.F): a runtime array of typed binders, one per declared constructor
// parameter, bound once and materialised lazily with a construction-
// cycle guard.
package builder

import (
	"github.com/dotfield/ioc/ast"
	"github.com/dotfield/ioc/errdefs"
	"github.com/dotfield/ioc/library"
)

// Binder binds one declared constructor parameter from an expression,
// deferring the typed extraction to Value (called only during
// materialisation, once every parameter has successfully bound).
type Binder interface {
	Bind(r library.Resolver, expr *ast.Node) error
	Value() (interface{}, error)
}

// NewFunc constructs the user value from the bound parameter values; it
// is supplied by the class registration (spec.md's "factory symbol"
// behaviour) and may itself fail (a Runtime error).
type NewFunc func(args []interface{}) (interface{}, error)

// Generic is a Builder (library.Builder) assembled from a fixed slice of
// per-parameter Binders plus a constructor function. Concrete classes
// register one Generic per declared constructor shape; this replaces the
// source's fixed arity-N template ladder with a runtime-indexed array of
// binders (spec.md §9, "Polymorphic builders").
type Generic struct {
	Alias   string
	Binders []Binder
	New     NewFunc

	bound        bool
	constructing bool
	instance     interface{}
	materialised bool
}

var _ library.Builder = (*Generic)(nil)

// OnConstruct, if set, is called immediately after a Generic successfully
// materialises its instance -- the one hook package report needs to print
// a construction trace without this package importing report (which
// would otherwise need to import builder for the types it is tracing).
var OnConstruct func(alias string, instance interface{})

// Bind validates arity and binds each parameter in declaration order,
// left to right (spec.md §5, "sibling parameters are constructed
// left-to-right"). It is safe to call only once; a second call is a
// no-op, matching the idempotent-safe contract in spec.md §4.F.
func (g *Generic) Bind(r library.Resolver, expr *ast.Node) error {
	if g.bound {
		return nil
	}
	g.bound = true

	if len(expr.Children) != len(g.Binders) {
		return errdefs.New(errdefs.ArgumentInvalid, "%s expects %d parameters but has %d", displayName(g.Alias, expr), len(g.Binders), len(expr.Children))
	}

	for i, binder := range g.Binders {
		if err := binder.Bind(r, expr.Children[i]); err != nil {
			return errdefs.ParameterContext(err, i+1, ast.Unparse(expr.Children[i]))
		}
	}
	return nil
}

// Get materialises the instance on first call (re-checking the
// construction-cycle guard), and returns the memoised instance on every
// subsequent call (spec.md §4.F, §4.H).
func (g *Generic) Get(r library.Resolver) (interface{}, error) {
	if g.materialised {
		return g.instance, nil
	}
	if g.constructing {
		return nil, errdefs.New(errdefs.ArgumentInvalid, "Circular reference detected constructing %q", g.Alias)
	}
	g.constructing = true
	defer func() { g.constructing = false }()

	args := make([]interface{}, len(g.Binders))
	for i, binder := range g.Binders {
		v, err := binder.Value()
		if err != nil {
			return nil, errdefs.ParameterContext(err, i+1, "")
		}
		args[i] = v
	}

	instance, err := g.New(args)
	if err != nil {
		return nil, errdefs.Wrap(errdefs.Runtime, err, "constructing %s", displayName(g.Alias, nil))
	}

	g.instance = instance
	g.materialised = true
	if OnConstruct != nil {
		OnConstruct(displayName(g.Alias, nil), instance)
	}
	return instance, nil
}

func displayName(alias string, expr *ast.Node) string {
	if alias != "" {
		return alias
	}
	if expr != nil {
		return expr.Value
	}
	return "<anonymous>"
}
