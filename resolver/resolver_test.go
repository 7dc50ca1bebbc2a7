package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dotfield/ioc/ast"
	"github.com/dotfield/ioc/binder"
	"github.com/dotfield/ioc/builder"
	"github.com/dotfield/ioc/config"
	"github.com/dotfield/ioc/library"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func loadTable(t *testing.T, content string) *config.SymbolTable {
	t.Helper()
	dir := t.TempDir()
	path := writeFile(t, dir, "cfg.ioc", content)
	table, err := config.New().Load(path)
	require.NoError(t, err)
	return table
}

// widget is the test-only target type a "Widget" class produces; it
// stands in for whatever concrete type a dynamic library would export.
type widget struct {
	Name string
	Tag  int64
}

type widgetFactory struct{}

func (widgetFactory) NewBuilder(alias string, expr *ast.Node) (library.Builder, error) {
	return &builder.Generic{
		Alias:   alias,
		Binders: []builder.Binder{&binder.String{}, &binder.Int{}},
		New: func(args []interface{}) (interface{}, error) {
			return &widget{Name: args[0].(string), Tag: args[1].(int64)}, nil
		},
	}, nil
}

// chainFactory builds an object whose single constructor parameter is
// itself an object reference -- enough to wire two named objects into
// a construction cycle.
type chainFactory struct{}

func (chainFactory) NewBuilder(alias string, expr *ast.Node) (library.Builder, error) {
	return &builder.Generic{
		Alias: alias,
		Binders: []builder.Binder{
			binder.NewObject(func(instance interface{}) (interface{}, bool) { return instance, true }),
		},
		New: func(args []interface{}) (interface{}, error) {
			return args[0], nil
		},
	}, nil
}

func widgetsLibrary(t *testing.T) *library.Table {
	t.Helper()
	libs := library.New()
	symbols := map[string]library.Factory{
		"Widget": &widgetFactory{},
		"Foo":    chainFactory{},
		"Bar":    chainFactory{},
	}
	_, err := libs.AddStaticLibrary("Widgets", symbols)
	require.NoError(t, err)
	return libs
}

func TestGetNamedObjectConstructsViaStaticLibrary(t *testing.T) {
	table := loadTable(t, `
WidgetClass = Class(Widgets, "Widget");
Root = WidgetClass("hello", 3);
`)
	r := New(table, widgetsLibrary(t))

	instance, err := r.GetNamedObject("Root")
	require.NoError(t, err)
	w, ok := instance.(*widget)
	require.True(t, ok)
	assert.Equal(t, "hello", w.Name)
	assert.Equal(t, int64(3), w.Tag)
}

func TestGetNamedObjectConstructsExactlyOnce(t *testing.T) {
	table := loadTable(t, `
WidgetClass = Class(Widgets, "Widget");
A = WidgetClass("hello", 3);
AliasOfA = A;
`)
	r := New(table, widgetsLibrary(t))

	a, err := r.GetNamedObject("A")
	require.NoError(t, err)
	alias, err := r.GetNamedObject("AliasOfA")
	require.NoError(t, err)

	assert.Same(t, a.(*widget), alias.(*widget))
}

func TestGetClassIsCached(t *testing.T) {
	table := loadTable(t, `
WidgetClass = Class(Widgets, "Widget");
A = WidgetClass("a", 1);
B = WidgetClass("b", 2);
`)
	r := New(table, widgetsLibrary(t))

	f1, err := r.GetClass("WidgetClass")
	require.NoError(t, err)
	f2, err := r.GetClass("WidgetClass")
	require.NoError(t, err)
	assert.Same(t, f1, f2)

	_, err = r.GetNamedObject("A")
	require.NoError(t, err)
	_, err = r.GetNamedObject("B")
	require.NoError(t, err)
}

func TestUndefinedSymbolSuggestsClosestName(t *testing.T) {
	table := loadTable(t, `
WidgetClass = Class(Widgets, "Widget");
Root = WidgetClass("hello", 3);
`)
	r := New(table, widgetsLibrary(t))

	_, err := r.GetNamedObject("Roott")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "Root"`)
}

func TestResolutionCycleIsDetected(t *testing.T) {
	table := loadTable(t, `
A = B;
B = A;
`)
	r := New(table, widgetsLibrary(t))

	_, err := r.GetNamedObject("A")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Circular reference resolving")
}

func TestConstructionCycleIsDetected(t *testing.T) {
	table := loadTable(t, `
FooClass = Class(Widgets, "Foo");
BarClass = Class(Widgets, "Bar");
A = FooClass(B);
B = BarClass(A);
`)
	r := New(table, widgetsLibrary(t))

	_, err := r.GetNamedObject("A")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Circular reference detected")
}

func TestGetObjectAnonymousLiteralNeverCached(t *testing.T) {
	table := loadTable(t, `
WidgetClass = Class(Widgets, "Widget");
Root = WidgetClass("hello", 3);
`)
	r := New(table, widgetsLibrary(t))

	root, ok := table.Get("Root")
	require.True(t, ok)

	first, err := r.GetObject(root, "")
	require.NoError(t, err)
	second, err := r.GetObject(root, "")
	require.NoError(t, err)

	// Each call to GetObject with no name builds a fresh, uncached
	// instance -- only Variable-reached names are memoised.
	assert.NotSame(t, first.(*widget), second.(*widget))
}

func TestGetClassWithUndefinedLibraryAlias(t *testing.T) {
	table := loadTable(t, `
WidgetClass = Class(Missing, "Widget");
Root = WidgetClass("hello", 3);
`)
	r := New(table, widgetsLibrary(t))

	_, err := r.GetNamedObject("Root")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `undefined library "Missing"`)
}

func TestGetClassOpensLibraryFromItsOwnDeclaration(t *testing.T) {
	table := loadTable(t, `
Native = Library("no-such-plugin.so");
WidgetClass = Class(Native, "Widget");
Root = WidgetClass("hello", 3);
`)
	r := New(table, library.New())

	_, err := r.GetNamedObject("Root")
	require.Error(t, err) // the path doesn't exist; still exercises the open-on-first-use path
}
