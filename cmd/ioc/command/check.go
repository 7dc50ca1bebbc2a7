package command

import (
	"fmt"
	"os"

	"github.com/dotfield/ioc/builtin"
	"github.com/dotfield/ioc/config"
	"github.com/dotfield/ioc/library"
	"github.com/dotfield/ioc/report"
	"github.com/dotfield/ioc/resolver"
	cli "github.com/urfave/cli/v2"
)

var checkCommand = &cli.Command{
	Name:      "check",
	Usage:     "loads a config file and resolves --root without running it",
	ArgsUsage: "PATH",
	Action:    checkAction,
}

func checkAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("check: expected exactly one config path", 1)
	}

	table, err := config.New().Load(c.Args().First())
	if err != nil {
		report.New(os.Stderr).PrintError(err)
		return cli.Exit("", 1)
	}

	libs := library.New()
	if _, err := builtin.Register(libs); err != nil {
		report.New(os.Stderr).PrintError(err)
		return cli.Exit("", 1)
	}
	r := resolver.New(table, libs)

	root := c.String("root")
	if _, ok := table.Get(root); !ok {
		report.New(os.Stderr).PrintError(fmt.Errorf("undefined root %q", root))
		return cli.Exit("", 1)
	}

	if _, err := r.GetNamedObject(root); err != nil {
		report.New(os.Stderr).PrintError(err)
		return cli.Exit("", 1)
	}

	fmt.Printf("%s: ok\n", root)
	return nil
}
