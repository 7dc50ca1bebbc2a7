package command

import (
	"fmt"

	cli "github.com/urfave/cli/v2"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var versionCommand = &cli.Command{
	Name:  "version",
	Usage: "prints ioc tool version",
	Action: func(c *cli.Context) error {
		fmt.Println(Version)
		return nil
	},
}
