// Package ast defines the immutable tagged-variant expression tree
// produced by the parser (spec.md §3, §4.A).
package ast

import (
	"github.com/dotfield/ioc/token"
)

// Kind discriminates the variant a Node represents.
type Kind int

const (
	Invalid Kind = iota
	String
	Bool
	Int
	Real
	Void
	Variable
	List
	Map
	Pair
	Concat
	Library
	Class
	Object
	CurrentDir
	Error
)

func (k Kind) String() string {
	switch k {
	case String:
		return "String"
	case Bool:
		return "Bool"
	case Int:
		return "Int"
	case Real:
		return "Real"
	case Void:
		return "Void"
	case Variable:
		return "Variable"
	case List:
		return "List"
	case Map:
		return "Map"
	case Pair:
		return "Pair"
	case Concat:
		return "Concat"
	case Library:
		return "Library"
	case Class:
		return "Class"
	case Object:
		return "Object"
	case CurrentDir:
		return "CurrentDir"
	case Error:
		return "Error"
	default:
		return "Invalid"
	}
}

// Node is one expression in the tree. It is immutable once returned from
// the parser: Children is never mutated in place afterwards. Parent is a
// weak back-reference used only while the parser is assembling the tree
// (spec.md §3); nothing outside the parser package reads it.
type Node struct {
	Kind     Kind
	Value    string
	Children []*Node
	Parent   *Node
	Pos      token.Position
}

// New returns a leaf node of the given kind and literal value.
func New(kind Kind, value string, pos token.Position) *Node {
	return &Node{Kind: kind, Value: value, Pos: pos}
}

func NewString(v string, pos token.Position) *Node  { return New(String, v, pos) }
func NewBool(v string, pos token.Position) *Node     { return New(Bool, v, pos) }
func NewInt(v string, pos token.Position) *Node      { return New(Int, v, pos) }
func NewReal(v string, pos token.Position) *Node     { return New(Real, v, pos) }
func NewVariable(v string, pos token.Position) *Node { return New(Variable, v, pos) }
func NewError(msg string, pos token.Position) *Node  { return New(Error, msg, pos) }

// NewParent returns a node of one of the function-like/collection kinds
// with the given children already attached.
func NewParent(kind Kind, value string, pos token.Position, children ...*Node) *Node {
	n := &Node{Kind: kind, Value: value, Pos: pos, Children: children}
	for _, c := range children {
		c.Parent = n
	}
	return n
}

// IsLiteral reports whether the node is a terminal literal kind (not
// Variable, not a collection, not Error).
func (n *Node) IsLiteral() bool {
	switch n.Kind {
	case String, Bool, Int, Real, Void:
		return true
	default:
		return false
	}
}

// Equal reports structural equality: same Kind, same Value, recursively
// equal Children in order. Position and Parent are not part of identity,
// matching the round-trip law in spec.md §8 ("preserves kind and children
// arity").
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.Kind != other.Kind || n.Value != other.Value {
		return false
	}
	if len(n.Children) != len(other.Children) {
		return false
	}
	for i, c := range n.Children {
		if !c.Equal(other.Children[i]) {
			return false
		}
	}
	return true
}

// Clone deep-copies a node and its children, dropping Parent (a fresh tree
// has no parent pointers; those only matter mid-parse).
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	clone := &Node{Kind: n.Kind, Value: n.Value, Pos: n.Pos}
	for _, c := range n.Children {
		cc := c.Clone()
		cc.Parent = clone
		clone.Children = append(clone.Children, cc)
	}
	return clone
}
