package command

import (
	"os"

	"github.com/dotfield/ioc"
	"github.com/dotfield/ioc/report"
	cli "github.com/urfave/cli/v2"
)

var runCommand = &cli.Command{
	Name:      "run",
	Usage:     "resolves and runs the root object",
	ArgsUsage: "PATH",
	Action:    runAction,
}

func runAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("run: expected exactly one config path", 1)
	}

	run, err := ioc.GetRunnable(c.Args().First(), c.String("root"), defaultOpts(c)...)
	if err != nil {
		report.New(os.Stderr).PrintError(err)
		return cli.Exit("", 1)
	}

	status, err := run.Run()
	if err != nil {
		report.New(os.Stderr).PrintError(err)
		return cli.Exit("", 1)
	}
	if status == 0 {
		return nil
	}
	return cli.Exit("", status)
}
