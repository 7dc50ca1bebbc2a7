package command

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cli "github.com/urfave/cli/v2"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.ioc")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunCommandRunsBuiltinSequentialList(t *testing.T) {
	path := writeConfig(t, `
Seq = Class(IOC, "SequentialRunnableList");
Root = Seq(List());
`)
	app := App()
	err := app.Run([]string{"ioc", "run", path})
	assert.NoError(t, err)
}

func TestParseCommandPrintsDefinitions(t *testing.T) {
	path := writeConfig(t, `
A = "hello";
`)
	app := App()
	err := app.Run([]string{"ioc", "parse", path})
	assert.NoError(t, err)
}

func TestCheckCommandReportsUndefinedRoot(t *testing.T) {
	path := writeConfig(t, `
A = "hello";
`)
	app := App()
	// Keep the cli.Exit error as Run's return value instead of exiting the
	// test process.
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run([]string{"ioc", "--root", "Missing", "check", path})
	assert.Error(t, err)
}

func TestGraphCommandPrintsTree(t *testing.T) {
	path := writeConfig(t, `
A = "hello";
B = A;
`)
	app := App()
	err := app.Run([]string{"ioc", "--root", "B", "graph", path})
	assert.NoError(t, err)
}
