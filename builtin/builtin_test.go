package builtin

import (
	"testing"

	"github.com/dotfield/ioc/ast"
	"github.com/dotfield/ioc/library"
	"github.com/dotfield/ioc/runnable"
	"github.com/dotfield/ioc/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pos = token.Position{Filename: "test.ioc", Line: 1, Column: 1}

// stubResolver is consulted only through Underlying, which the list
// binder calls on the list expression itself: every list built here is
// empty, so no element binder ever calls back into it.
type stubResolver struct{}

func (stubResolver) GetObject(expr *ast.Node, name string) (interface{}, error) { return nil, nil }
func (stubResolver) GetClass(name string) (library.Factory, error)              { return nil, nil }
func (stubResolver) Underlying(expr *ast.Node, tolerateMissing bool) (*ast.Node, string, error) {
	return expr, "", nil
}

func emptyChildrenExpr() *ast.Node {
	return ast.NewParent(ast.Object, "Seq", pos, ast.NewParent(ast.List, "", pos))
}

func TestRegisterIsIdempotent(t *testing.T) {
	libs := library.New()
	h1, err := Register(libs)
	require.NoError(t, err)
	h2, err := Register(libs)
	require.NoError(t, err)
	assert.Same(t, h1, h2)
}

func TestSequentialFactoryBuildsSequentialRunnableList(t *testing.T) {
	libs := library.New()
	_, err := Register(libs)
	require.NoError(t, err)

	handle, err := libs.GetLibrary(Alias)
	require.NoError(t, err)
	factory, err := handle.Lookup("SequentialRunnableList", true)
	require.NoError(t, err)

	b, err := factory.NewBuilder("Seq", nil)
	require.NoError(t, err)

	require.NoError(t, b.Bind(stubResolver{}, emptyChildrenExpr()))
	instance, err := b.Get(stubResolver{})
	require.NoError(t, err)

	list, ok := instance.(*runnable.SequentialRunnableList)
	require.True(t, ok)
	assert.Empty(t, list.Children)
}

func TestParallelFactoryBuildsParallelRunnableList(t *testing.T) {
	libs := library.New()
	_, err := Register(libs)
	require.NoError(t, err)

	handle, err := libs.GetLibrary(Alias)
	require.NoError(t, err)
	factory, err := handle.Lookup("ParallelRunnableList", true)
	require.NoError(t, err)

	b, err := factory.NewBuilder("Par", nil)
	require.NoError(t, err)

	require.NoError(t, b.Bind(stubResolver{}, emptyChildrenExpr()))
	instance, err := b.Get(stubResolver{})
	require.NoError(t, err)

	list, ok := instance.(*runnable.ParallelRunnableList)
	require.True(t, ok)
	assert.Empty(t, list.Children)
}

func TestSequentialRunnableListRunsEndToEnd(t *testing.T) {
	libs := library.New()
	_, err := Register(libs)
	require.NoError(t, err)
	handle, err := libs.GetLibrary(Alias)
	require.NoError(t, err)
	factory, err := handle.Lookup("SequentialRunnableList", true)
	require.NoError(t, err)

	b, err := factory.NewBuilder("Seq", nil)
	require.NoError(t, err)
	require.NoError(t, b.Bind(stubResolver{}, emptyChildrenExpr()))
	instance, err := b.Get(stubResolver{})
	require.NoError(t, err)

	runner := instance.(runnable.Runnable)
	status, err := runner.Run()
	require.NoError(t, err)
	assert.Equal(t, 0, status)
}
