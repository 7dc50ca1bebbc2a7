package main

import (
	"fmt"
	"os"

	"github.com/dotfield/ioc/cmd/ioc/command"
)

func main() {
	if err := command.App().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
