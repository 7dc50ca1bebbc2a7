// Package binder implements the type-directed parameter binders from
// spec.md §4.G: each binder is keyed to a target slot type, follows
// Variable chains through the resolver, and yields a typed value.
package binder

import (
	"strconv"
	"strings"

	"github.com/dotfield/ioc/ast"
	"github.com/dotfield/ioc/errdefs"
	"github.com/dotfield/ioc/library"
)

// underlying follows a Variable chain to its non-Variable node, failing
// with a resolution-cycle error if a name repeats. When
// tolerateMissing is true, an undefined terminal variable is accepted
// and returned as-is (the enum binder's special case).
func underlying(r library.Resolver, expr *ast.Node, tolerateMissing bool) (*ast.Node, string, error) {
	return r.Underlying(expr, tolerateMissing)
}

// String binds a literal string, a single-character keyword literal, or
// a Concat of such values, following Variable chains first.
type String struct {
	value string
}

func (b *String) Bind(r library.Resolver, expr *ast.Node) error {
	v, err := resolveString(r, expr)
	if err != nil {
		return err
	}
	b.value = v
	return nil
}

func (b *String) Value() (interface{}, error) { return b.value, nil }

func resolveString(r library.Resolver, expr *ast.Node) (string, error) {
	n, _, err := underlying(r, expr, false)
	if err != nil {
		return "", err
	}
	switch n.Kind {
	case ast.String:
		return n.Value, nil
	case ast.Concat:
		var b strings.Builder
		for _, c := range n.Children {
			s, err := resolveString(r, c)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		}
		return b.String(), nil
	default:
		return "", errdefs.New(errdefs.TypeMismatch, "expected a string, found %s", n.Kind)
	}
}

// WideRune binds the same source forms as String (a literal string, a
// keyword literal, or a Concat of such values) but yields a []rune
// instead of a string -- the wide-string constructor slot, distinguished
// from String only by the declared Go type of the target parameter
// (spec.md §4.G).
type WideRune struct {
	value []rune
}

func (b *WideRune) Bind(r library.Resolver, expr *ast.Node) error {
	v, err := resolveString(r, expr)
	if err != nil {
		return err
	}
	b.value = []rune(v)
	return nil
}

func (b *WideRune) Value() (interface{}, error) { return b.value, nil }

// Bool binds a literal boolean. Bool never coerces from a number
// (spec.md §4.G).
type Bool struct {
	value bool
}

func (b *Bool) Bind(r library.Resolver, expr *ast.Node) error {
	n, _, err := underlying(r, expr, false)
	if err != nil {
		return err
	}
	if n.Kind != ast.Bool {
		return errdefs.New(errdefs.TypeMismatch, "expected a bool, found %s", n.Kind)
	}
	b.value = n.Value == "true"
	return nil
}

func (b *Bool) Value() (interface{}, error) { return b.value, nil }

// Int binds a signed or unsigned integer literal. Real is rejected where
// Int is expected (spec.md §8 boundary behaviour).
type Int struct {
	value int64
}

func (b *Int) Bind(r library.Resolver, expr *ast.Node) error {
	n, _, err := underlying(r, expr, false)
	if err != nil {
		return err
	}
	if n.Kind != ast.Int {
		return errdefs.New(errdefs.TypeMismatch, "expected an int, found %s", n.Kind)
	}
	v, err := strconv.ParseInt(n.Value, 10, 64)
	if err != nil {
		return errdefs.Wrap(errdefs.TypeMismatch, err, "parsing int literal %q", n.Value)
	}
	b.value = v
	return nil
}

func (b *Int) Value() (interface{}, error) { return b.value, nil }

// Real binds a floating point value. Int is accepted and upgraded;
// Real is never downgraded to Int (spec.md §4.G, §8).
type Real struct {
	value float64
}

func (b *Real) Bind(r library.Resolver, expr *ast.Node) error {
	n, _, err := underlying(r, expr, false)
	if err != nil {
		return err
	}
	switch n.Kind {
	case ast.Real, ast.Int:
		v, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return errdefs.Wrap(errdefs.TypeMismatch, err, "parsing real literal %q", n.Value)
		}
		b.value = v
		return nil
	default:
		return errdefs.New(errdefs.TypeMismatch, "expected a real, found %s", n.Kind)
	}
}

func (b *Real) Value() (interface{}, error) { return b.value, nil }

// Enum binds the *name* of a variable that the symbol table does not
// (fully) resolve: the terminal name in its alias chain. A user-supplied
// converter maps that name to the target enum type; binder only returns
// the name (spec.md §4.G).
type Enum struct {
	name string
}

func (b *Enum) Bind(r library.Resolver, expr *ast.Node) error {
	if expr.Kind != ast.Variable {
		return errdefs.New(errdefs.TypeMismatch, "expected an enum variable, found %s", expr.Kind)
	}
	_, name, err := underlying(r, expr, true)
	if err != nil {
		return err
	}
	b.name = name
	return nil
}

func (b *Enum) Value() (interface{}, error) { return b.name, nil }

// Object binds an expression that resolves to a constructed object whose
// builder value is assignable to base type B. assignable performs the
// dynamic downcast: it receives the materialised instance and reports
// whether it is a B (along with the B view), matching the builder's
// dynamic type-check in spec.md §4.G.
type Object struct {
	assignable func(instance interface{}) (interface{}, bool)
	value      interface{}
}

func NewObject(assignable func(instance interface{}) (interface{}, bool)) *Object {
	return &Object{assignable: assignable}
}

func (b *Object) Bind(r library.Resolver, expr *ast.Node) error {
	n, lastName, err := underlying(r, expr, false)
	if err != nil {
		return err
	}
	if n.Kind != ast.Object {
		return errdefs.New(errdefs.TypeMismatch, "expected an object, found %s", n.Kind)
	}

	// A named object reached through a Variable is shared by every
	// reference to that name (spec.md §3); an Object literal embedded
	// directly in a parameter list is anonymous and exclusive to this
	// parameter, so it is never inserted into the object cache.
	name := ""
	if expr.Kind == ast.Variable {
		name = lastName
	}

	instance, err := r.GetObject(n, name)
	if err != nil {
		return err
	}
	v, ok := b.assignable(instance)
	if !ok {
		return errdefs.New(errdefs.TypeMismatch, "object is not assignable to the expected base type")
	}
	b.value = v
	return nil
}

func (b *Object) Value() (interface{}, error) { return b.value, nil }

// ByRef behaves identically to Object but documents that the bound value
// is a borrowed view of the constructed instance rather than a copy
// (spec.md §4.G: "Same as Object" for by-reference struct slots). The Go
// realisation of "borrowed view" is simply the same interface value;
// there is no separate representation to maintain.
type ByRef = Object

var NewByRef = NewObject

// Proxy tries a direct T-bind first; only on a *recoverable*
// TypeMismatch does it retry as Proxy<T>. Any other failure from either
// attempt is returned unchanged; a second TypeMismatch from the proxy
// attempt is surfaced as a non-recoverable ArgumentInvalid to prevent
// indefinite fallback ping-pong (spec.md §4.G, "Proxy fallback").
type Proxy struct {
	primary Binder
	proxy   Binder
	active  Binder
}

func NewProxy(primary, proxy Binder) *Proxy {
	return &Proxy{primary: primary, proxy: proxy}
}

func (b *Proxy) Bind(r library.Resolver, expr *ast.Node) error {
	if err := b.primary.Bind(r, expr); err == nil {
		b.active = b.primary
		return nil
	} else if !errdefs.IsKind(err, errdefs.TypeMismatch) {
		return err
	}

	if err := b.proxy.Bind(r, expr); err != nil {
		if errdefs.IsKind(err, errdefs.TypeMismatch) {
			return errdefs.New(errdefs.ArgumentInvalid, "neither the direct type nor its proxy could bind: %s", err)
		}
		return err
	}
	b.active = b.proxy
	return nil
}

func (b *Proxy) Value() (interface{}, error) {
	return b.active.Value()
}

// List binds a List expression (or a Variable resolving to one), binding
// each child with elem.
type List struct {
	elemFor func() Binder
	values  []interface{}
}

func NewList(elemFor func() Binder) *List {
	return &List{elemFor: elemFor}
}

func (b *List) Bind(r library.Resolver, expr *ast.Node) error {
	n, _, err := underlying(r, expr, false)
	if err != nil {
		return err
	}
	if n.Kind != ast.List {
		return errdefs.New(errdefs.TypeMismatch, "expected a list, found %s", n.Kind)
	}

	b.values = make([]interface{}, 0, len(n.Children))
	for i, c := range n.Children {
		elem := b.elemFor()
		if err := elem.Bind(r, c); err != nil {
			return errdefs.ParameterContext(err, i+1, ast.Unparse(c))
		}
		v, err := elem.Value()
		if err != nil {
			return err
		}
		b.values = append(b.values, v)
	}
	return nil
}

func (b *List) Value() (interface{}, error) { return b.values, nil }

// Set binds a List expression into a set of primitives, rejecting
// duplicates (spec.md §4.G).
type Set struct {
	elemFor func() Binder
	values  []interface{}
}

func NewSet(elemFor func() Binder) *Set {
	return &Set{elemFor: elemFor}
}

func (b *Set) Bind(r library.Resolver, expr *ast.Node) error {
	n, _, err := underlying(r, expr, false)
	if err != nil {
		return err
	}
	if n.Kind != ast.List {
		return errdefs.New(errdefs.TypeMismatch, "expected a list, found %s", n.Kind)
	}

	seen := make(map[interface{}]bool, len(n.Children))
	b.values = make([]interface{}, 0, len(n.Children))
	for i, c := range n.Children {
		elem := b.elemFor()
		if err := elem.Bind(r, c); err != nil {
			return errdefs.ParameterContext(err, i+1, ast.Unparse(c))
		}
		v, err := elem.Value()
		if err != nil {
			return err
		}
		if seen[v] {
			return errdefs.New(errdefs.ArgumentInvalid, "duplicate set element %v", v)
		}
		seen[v] = true
		b.values = append(b.values, v)
	}
	return nil
}

func (b *Set) Value() (interface{}, error) { return b.values, nil }

// MapEntry is one bound key/value pair, returned by Map/Multimap.
type MapEntry struct {
	Key   interface{}
	Value interface{}
}

// Map binds a Map expression into K→V pairs, rejecting duplicate keys.
// Multimap is the same binder with AllowDuplicates set.
type Map struct {
	keyFor, valueFor func() Binder
	AllowDuplicates  bool
	entries          []MapEntry
}

func NewMap(keyFor, valueFor func() Binder) *Map {
	return &Map{keyFor: keyFor, valueFor: valueFor}
}

func NewMultimap(keyFor, valueFor func() Binder) *Map {
	return &Map{keyFor: keyFor, valueFor: valueFor, AllowDuplicates: true}
}

func (b *Map) Bind(r library.Resolver, expr *ast.Node) error {
	n, _, err := underlying(r, expr, false)
	if err != nil {
		return err
	}
	if n.Kind != ast.Map {
		return errdefs.New(errdefs.TypeMismatch, "expected a map, found %s", n.Kind)
	}

	seen := make(map[interface{}]bool, len(n.Children))
	b.entries = make([]MapEntry, 0, len(n.Children))
	for i, pair := range n.Children {
		if pair.Kind != ast.Pair || len(pair.Children) != 2 {
			return errdefs.New(errdefs.ArgumentInvalid, "map entry %d is not a key:value pair", i+1)
		}
		keyBinder, valueBinder := b.keyFor(), b.valueFor()
		if err := keyBinder.Bind(r, pair.Children[0]); err != nil {
			return errdefs.ParameterContext(err, i+1, "key")
		}
		if err := valueBinder.Bind(r, pair.Children[1]); err != nil {
			return errdefs.ParameterContext(err, i+1, "value")
		}
		k, err := keyBinder.Value()
		if err != nil {
			return err
		}
		v, err := valueBinder.Value()
		if err != nil {
			return err
		}
		if !b.AllowDuplicates {
			if seen[k] {
				return errdefs.New(errdefs.ArgumentInvalid, "Duplicate key %v", k)
			}
			seen[k] = true
		}
		b.entries = append(b.entries, MapEntry{Key: k, Value: v})
	}
	return nil
}

func (b *Map) Value() (interface{}, error) { return b.entries, nil }

// IndexSet is implemented by a constructed object that stands in for a
// set of bit indices -- the "proxy to a set-of-index" bitset source
// form. Indices returns the set bit positions in any order.
type IndexSet interface {
	Indices() []int
}

// Bitset binds a fixed-width bit pattern from any of four source forms:
// an Int bit pattern, a String/Concat of '0'/'1' characters, a List of
// set-bit indices, or a proxy object implementing IndexSet (spec.md
// §4.G).
type Bitset struct {
	Width int
	bits  []bool
}

func NewBitset(width int) *Bitset {
	return &Bitset{Width: width}
}

func (b *Bitset) Bind(r library.Resolver, expr *ast.Node) error {
	n, lastName, err := underlying(r, expr, false)
	if err != nil {
		return err
	}

	bits := make([]bool, b.Width)
	switch n.Kind {
	case ast.Int:
		pattern, err := strconv.ParseUint(n.Value, 10, 64)
		if err != nil {
			return errdefs.Wrap(errdefs.TypeMismatch, err, "parsing bitset pattern %q", n.Value)
		}
		for i := 0; i < b.Width; i++ {
			bits[i] = pattern&(1<<uint(i)) != 0
		}
	case ast.String:
		if err := fillBitsFromChars(bits, n.Value); err != nil {
			return err
		}
	case ast.Concat:
		s, err := resolveString(r, n)
		if err != nil {
			return err
		}
		if err := fillBitsFromChars(bits, s); err != nil {
			return err
		}
	case ast.List:
		for i, idx := range n.Children {
			iv, _, err := underlying(r, idx, false)
			if err != nil {
				return errdefs.ParameterContext(err, i+1, ast.Unparse(idx))
			}
			if iv.Kind != ast.Int {
				return errdefs.New(errdefs.TypeMismatch, "bitset index %d is not an int", i+1)
			}
			pos, err := strconv.Atoi(iv.Value)
			if err != nil || pos < 0 || pos >= b.Width {
				return errdefs.New(errdefs.ArgumentInvalid, "bitset index %s out of range [0,%d)", iv.Value, b.Width)
			}
			bits[pos] = true
		}
	case ast.Object:
		name := ""
		if expr.Kind == ast.Variable {
			name = lastName
		}
		instance, err := r.GetObject(n, name)
		if err != nil {
			return err
		}
		set, ok := instance.(IndexSet)
		if !ok {
			return errdefs.New(errdefs.TypeMismatch, "bitset proxy object does not implement IndexSet")
		}
		for _, pos := range set.Indices() {
			if pos < 0 || pos >= b.Width {
				return errdefs.New(errdefs.ArgumentInvalid, "bitset index %d out of range [0,%d)", pos, b.Width)
			}
			bits[pos] = true
		}
	default:
		return errdefs.New(errdefs.TypeMismatch, "expected a bitset source (int, string, list of indices, or index-set proxy object), found %s", n.Kind)
	}

	b.bits = bits
	return nil
}

func fillBitsFromChars(bits []bool, s string) error {
	if len(s) != len(bits) {
		return errdefs.New(errdefs.ArgumentInvalid, "bitset string has length %d, expected %d", len(s), len(bits))
	}
	for i, c := range s {
		switch c {
		case '0':
			bits[i] = false
		case '1':
			bits[i] = true
		default:
			return errdefs.New(errdefs.ArgumentInvalid, "bitset string must contain only '0'/'1', found %q", c)
		}
	}
	return nil
}

func (b *Bitset) Value() (interface{}, error) { return b.bits, nil }
