package command

import (
	"fmt"
	"os"
	"sort"

	"github.com/dotfield/ioc/ast"
	"github.com/dotfield/ioc/config"
	"github.com/dotfield/ioc/report"
	cli "github.com/urfave/cli/v2"
)

var parseCommand = &cli.Command{
	Name:      "parse",
	Usage:     "loads a config file and prints every definition's parsed expression",
	ArgsUsage: "PATH",
	Action:    parseAction,
}

func parseAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("parse: expected exactly one config path", 1)
	}

	table, err := config.New().Load(c.Args().First())
	if err != nil {
		report.New(os.Stderr).PrintError(err)
		return cli.Exit("", 1)
	}

	names := table.Names()
	sort.Strings(names)
	for _, name := range names {
		n, _ := table.Get(name)
		fmt.Printf("%s = %s;\n", name, ast.Unparse(n))
	}
	return nil
}
