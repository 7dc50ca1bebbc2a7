// Package builtin registers the engine's two built-in runnable-list
// classes under the static library alias "IOC" (spec.md §6): classes
// that need no dynamic library at all, only the same Factory/Builder
// protocol every other class goes through.
package builtin

import (
	"github.com/dotfield/ioc/ast"
	"github.com/dotfield/ioc/binder"
	"github.com/dotfield/ioc/builder"
	"github.com/dotfield/ioc/library"
	"github.com/dotfield/ioc/runnable"
)

// Alias is the library name every config file uses to reach these
// classes, e.g. `Seq = Class(IOC, "SequentialRunnableList");`.
const Alias = "IOC"

// Register installs the built-in classes into libs under Alias. It is
// idempotent (library.Table.AddStaticLibrary is), so callers may call it
// once per process regardless of how many resolvers share libs.
func Register(libs *library.Table) (*library.Handle, error) {
	return libs.AddStaticLibrary(Alias, map[string]library.Factory{
		"SequentialRunnableList": sequentialFactory{},
		"ParallelRunnableList":   parallelFactory{},
	})
}

// childrenBinder binds a List of objects, each required to implement
// runnable.Runnable -- the only constructor shape either built-in class
// has.
func childrenBinder() builder.Binder {
	return binder.NewList(func() binder.Binder {
		return binder.NewObject(func(instance interface{}) (interface{}, bool) {
			r, ok := instance.(runnable.Runnable)
			return r, ok
		})
	})
}

func toRunnables(v interface{}) []runnable.Runnable {
	elems := v.([]interface{})
	children := make([]runnable.Runnable, len(elems))
	for i, e := range elems {
		children[i] = e.(runnable.Runnable)
	}
	return children
}

type sequentialFactory struct{}

func (sequentialFactory) NewBuilder(alias string, expr *ast.Node) (library.Builder, error) {
	return &builder.Generic{
		Alias:   alias,
		Binders: []builder.Binder{childrenBinder()},
		New: func(args []interface{}) (interface{}, error) {
			return &runnable.SequentialRunnableList{Children: toRunnables(args[0])}, nil
		},
	}, nil
}

type parallelFactory struct{}

func (parallelFactory) NewBuilder(alias string, expr *ast.Node) (library.Builder, error) {
	return &builder.Generic{
		Alias:   alias,
		Binders: []builder.Binder{childrenBinder()},
		New: func(args []interface{}) (interface{}, error) {
			return &runnable.ParallelRunnableList{Children: toRunnables(args[0])}, nil
		},
	}, nil
}
