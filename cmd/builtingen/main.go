// Command builtingen renders a JSON class-spec file into builtin/builtin.go
// via gen.Generate.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dotfield/ioc/gen"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "builtingen: usage: builtingen spec.json builtin.go")
		os.Exit(1)
	}

	if err := run(os.Args[1], os.Args[2]); err != nil {
		fmt.Fprintf(os.Stderr, "builtingen: %s\n", err)
		os.Exit(1)
	}
}

func run(src, dest string) error {
	raw, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	var data gen.Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return err
	}

	out, err := gen.Generate(data)
	if err != nil {
		return err
	}

	return os.WriteFile(dest, out, 0o644)
}
