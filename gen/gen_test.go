package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateProducesFormattedSource(t *testing.T) {
	src, err := Generate(Data{
		Alias: "IOC",
		Classes: []Class{
			{
				Symbol:  "Widget",
				Factory: "widgetFactory",
				Result:  "widget",
				Params: []Param{
					{Binder: "&binder.String{}"},
					{Binder: "&binder.Int{}"},
				},
				New: `return &widget{Name: args[0].(string), Tag: args[1].(int64)}, nil`,
			},
		},
	})
	require.NoError(t, err)

	out := string(src)
	assert.Contains(t, out, `package builtin`)
	assert.Contains(t, out, `const Alias = "IOC"`)
	assert.Contains(t, out, `"Widget": widgetFactory{}`)
	assert.Contains(t, out, `type widgetFactory struct{}`)
	assert.Contains(t, out, `func (widgetFactory) NewBuilder(alias string, expr *ast.Node) (library.Builder, error)`)
}

func TestGenerateEmptyClassList(t *testing.T) {
	src, err := Generate(Data{Alias: "IOC"})
	require.NoError(t, err)
	assert.Contains(t, string(src), `func Register(libs *library.Table)`)
}
