package command

import (
	"os"

	"github.com/dotfield/ioc"
	"github.com/lithammer/dedent"
	cli "github.com/urfave/cli/v2"
)

// App builds the ioc CLI.
func App() *cli.App {
	app := cli.NewApp()
	app.Name = "ioc"
	app.Usage = "load and run declarative object-graph config files"
	app.Description = dedent.Dedent(`
		ioc loads a config file (a declarative #include/#define/$(macro)
		object-graph language), resolves one named object out of it, and
		runs it (the object must implement Runnable).
	`)
	app.Commands = []*cli.Command{
		runCommand,
		parseCommand,
		graphCommand,
		checkCommand,
		versionCommand,
	}
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "root",
			Aliases: []string{"r"},
			Usage:   "name of the object to resolve",
			Value:   "Root",
		},
		&cli.BoolFlag{
			Name:  "trace",
			Usage: "log each object as it is constructed",
		},
	}
	app.Action = runAction
	return app
}

func defaultOpts(c *cli.Context) []ioc.Option {
	var opts []ioc.Option
	if c.Bool("trace") {
		opts = append(opts, ioc.WithTrace(os.Stderr))
	}
	return opts
}
