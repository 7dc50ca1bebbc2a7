package ast

import (
	"fmt"
	"strings"
)

// Unparse renders n back into configuration source syntax. It is used by
// the round-trip property test (spec.md §8) and by `ioc parse` to echo a
// parsed definition back to the user.
func Unparse(n *Node) string {
	if n == nil {
		return ""
	}

	switch n.Kind {
	case String:
		return fmt.Sprintf("%q", n.Value)
	case Bool, Int, Real, Variable:
		return n.Value
	case Void:
		return ""
	case Error:
		return fmt.Sprintf("<error: %s>", n.Value)
	case List:
		return fmt.Sprintf("List(%s)", unparseChildren(n.Children, ", "))
	case Map:
		return fmt.Sprintf("{%s}", unparseChildren(n.Children, ", "))
	case Pair:
		if len(n.Children) != 2 {
			return "<invalid pair>"
		}
		return fmt.Sprintf("%s: %s", Unparse(n.Children[0]), Unparse(n.Children[1]))
	case Concat:
		return fmt.Sprintf("Concat(%s)", unparseChildren(n.Children, ", "))
	case Library:
		return fmt.Sprintf("Library(%s)", unparseChildren(n.Children, ", "))
	case Class:
		return fmt.Sprintf("Class(%s)", unparseChildren(n.Children, ", "))
	case CurrentDir:
		return "CurrentDir()"
	case Object:
		return fmt.Sprintf("%s(%s)", n.Value, unparseChildren(n.Children, ", "))
	default:
		return "<invalid>"
	}
}

func unparseChildren(children []*Node, sep string) string {
	parts := make([]string, len(children))
	for i, c := range children {
		parts[i] = Unparse(c)
	}
	return strings.Join(parts, sep)
}
