package parser

import (
	"testing"

	"github.com/dotfield/ioc/ast"
	"github.com/dotfield/ioc/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *ast.Node {
	t.Helper()
	n := Parse(src, "/etc/ioc", token.Position{Filename: "test.ioc", Line: 1, Column: 1})
	require.NotNil(t, n)
	return n
}

func TestParseLiterals(t *testing.T) {
	n := parse(t, `"hello"`)
	assert.Equal(t, ast.String, n.Kind)
	assert.Equal(t, "hello", n.Value)

	n = parse(t, `42`)
	assert.Equal(t, ast.Int, n.Kind)
	assert.Equal(t, "42", n.Value)

	n = parse(t, `3.14`)
	assert.Equal(t, ast.Real, n.Kind)

	n = parse(t, `true`)
	assert.Equal(t, ast.Bool, n.Kind)

	n = parse(t, `some.Var`)
	assert.Equal(t, ast.Variable, n.Kind)
	assert.Equal(t, "some.Var", n.Value)
}

func TestParseKeywordLiterals(t *testing.T) {
	n := parse(t, `tab`)
	require.Equal(t, ast.String, n.Kind)
	assert.Equal(t, "\t", n.Value)
}

func TestParseCurrentDir(t *testing.T) {
	n := parse(t, `CurrentDir()`)
	require.Equal(t, ast.String, n.Kind)
	assert.Equal(t, "/etc/ioc", n.Value)
}

func TestParseList(t *testing.T) {
	n := parse(t, `List(1, 2, 3)`)
	require.Equal(t, ast.List, n.Kind)
	require.Len(t, n.Children, 3)
	assert.Equal(t, "1", n.Children[0].Value)

	n = parse(t, `[1, 2, 3]`)
	require.Equal(t, ast.List, n.Kind)
	require.Len(t, n.Children, 3)

	n = parse(t, `List()`)
	require.Equal(t, ast.List, n.Kind)
	assert.Len(t, n.Children, 0)
}

func TestParseMap(t *testing.T) {
	n := parse(t, `{"a": 1, "b": 2}`)
	require.Equal(t, ast.Map, n.Kind)
	require.Len(t, n.Children, 2)

	pair0 := n.Children[0]
	require.Equal(t, ast.Pair, pair0.Kind)
	require.Len(t, pair0.Children, 2)
	assert.Equal(t, "a", pair0.Children[0].Value)
	assert.Equal(t, "1", pair0.Children[1].Value)

	empty := parse(t, `{}`)
	require.Equal(t, ast.Map, empty.Kind)
	assert.Len(t, empty.Children, 0)
}

func TestParseConcat(t *testing.T) {
	n := parse(t, `Concat("a", "b", CurrentDir())`)
	require.Equal(t, ast.Concat, n.Kind)
	require.Len(t, n.Children, 3)
	assert.Equal(t, ast.String, n.Children[2].Kind)
}

func TestParseLibraryAndClass(t *testing.T) {
	n := parse(t, `Library("/opt/ioc/plugins.so")`)
	require.Equal(t, ast.Library, n.Kind)
	require.Len(t, n.Children, 1)

	n = parse(t, `Class(mylib, "Widget")`)
	require.Equal(t, ast.Class, n.Kind)
	require.Len(t, n.Children, 2)
	assert.Equal(t, ast.Variable, n.Children[0].Kind)
	assert.Equal(t, ast.String, n.Children[1].Kind)
}

func TestParseObjectCall(t *testing.T) {
	n := parse(t, `Widget(1, "name", [true, false])`)
	require.Equal(t, ast.Object, n.Kind)
	assert.Equal(t, "Widget", n.Value)
	require.Len(t, n.Children, 3)
	assert.Equal(t, ast.List, n.Children[2].Kind)
}

func TestParseNestedObjectsInList(t *testing.T) {
	n := parse(t, `List(Widget(1), Widget(2))`)
	require.Equal(t, ast.List, n.Kind)
	require.Len(t, n.Children, 2)
	assert.Equal(t, "Widget", n.Children[0].Value)
}

func TestParseMapWithObjectValues(t *testing.T) {
	n := parse(t, `{"a": Widget(1), "b": Widget(2)}`)
	require.Equal(t, ast.Map, n.Kind)
	require.Len(t, n.Children, 2)
	assert.Equal(t, "Widget", n.Children[1].Children[1].Value)
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		`Widget(1,`,      // unterminated
		`Widget(1))`,     // extra close
		`{"a": 1 "b": 2}`, // missing comma before next key -> ':' outside a map
		`{"a", "b"}`,      // comma instead of colon
		`Class(x)`,        // wrong arity
		`Library()`,       // wrong arity
		`List(]`,          // mismatched closer
	}
	for _, src := range cases {
		n := parse(t, src)
		assert.Equal(t, ast.Error, n.Kind, "expected error for %q, got %s: %s", src, n.Kind, n.Value)
	}
}

func TestParseDuplicateMapKeyIsSyntacticallyLegal(t *testing.T) {
	// Duplicate key detection is the resolver's job (spec.md Open Question),
	// not the parser's: two pairs sharing a key parse without error.
	n := parse(t, `{"a": 1, "a": 2}`)
	require.Equal(t, ast.Map, n.Kind)
	assert.Len(t, n.Children, 2)
}

func TestRoundTripUnparse(t *testing.T) {
	srcs := []string{
		`"hello"`,
		`42`,
		`Widget(1, "x")`,
		`[1, 2, 3]`,
		`{"a": 1, "b": 2}`,
		`Concat("a", "b")`,
	}
	for _, src := range srcs {
		n := parse(t, src)
		require.NotEqual(t, ast.Error, n.Kind, "src %q failed to parse: %s", src, n.Value)
		reparsed := parse(t, ast.Unparse(n))
		require.NotEqual(t, ast.Error, reparsed.Kind, "unparse of %q produced unparseable %q: %s", src, ast.Unparse(n), reparsed.Value)
		assert.True(t, n.Equal(reparsed), "round trip mismatch for %q: %s vs %s", src, ast.Unparse(n), ast.Unparse(reparsed))
	}
}
