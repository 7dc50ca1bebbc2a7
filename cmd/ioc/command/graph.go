package command

import (
	"fmt"
	"os"
	"sort"

	"github.com/dotfield/ioc/ast"
	"github.com/dotfield/ioc/config"
	"github.com/dotfield/ioc/report"
	"github.com/xlab/treeprint"
	cli "github.com/urfave/cli/v2"
)

var graphCommand = &cli.Command{
	Name:      "graph",
	Usage:     "prints the dependency tree rooted at --root",
	ArgsUsage: "PATH",
	Action:    graphAction,
}

func graphAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("graph: expected exactly one config path", 1)
	}

	table, err := config.New().Load(c.Args().First())
	if err != nil {
		report.New(os.Stderr).PrintError(err)
		return cli.Exit("", 1)
	}

	root := c.String("root")
	if _, ok := table.Get(root); !ok {
		return cli.Exit(fmt.Sprintf("graph: undefined root %q", root), 1)
	}

	tree := treeprint.New()
	tree.SetValue(root)
	addBranches(tree, table, root, map[string]bool{root: true})

	fmt.Println(tree.String())
	return nil
}

// addBranches adds one branch per name parent's expression references,
// recursing into each -- a name already on the current path is rendered
// as a leaf (its own branch is not expanded again), since the resolver
// would report a cycle rather than recurse forever.
func addBranches(parent treeprint.Tree, table *config.SymbolTable, name string, onPath map[string]bool) {
	n, ok := table.Get(name)
	if !ok {
		return
	}

	refs := referencedNames(n)
	sort.Strings(refs)
	for _, ref := range refs {
		if onPath[ref] {
			parent.AddNode(ref + " (cycle)")
			continue
		}
		branch := parent.AddBranch(ref)
		onPath[ref] = true
		addBranches(branch, table, ref, onPath)
		delete(onPath, ref)
	}
}

// referencedNames collects every distinct name an expression touches: a
// Variable reference, or an Object's head (the Class alias it invokes --
// stored as the node's own Value, not a child).
func referencedNames(n *ast.Node) []string {
	seen := make(map[string]bool)
	var names []string
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	ast.Inspect(n, func(v *ast.Node) {
		switch v.Kind {
		case ast.Variable, ast.Object:
			add(v.Value)
		}
	})
	return names
}
