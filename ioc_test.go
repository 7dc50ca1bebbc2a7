package ioc

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/dotfield/ioc/library"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.ioc")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestGetRunnableResolvesBuiltinSequentialList(t *testing.T) {
	path := writeConfig(t, `
Seq = Class(IOC, "SequentialRunnableList");
Root = Seq(List());
`)
	libs := library.New()
	run, err := GetRunnable(path, "Root", WithLibraryTable(libs))
	require.NoError(t, err)

	status, err := run.Run()
	require.NoError(t, err)
	assert.Equal(t, 0, status)
}

func TestGetRunnableRejectsNonRunnable(t *testing.T) {
	path := writeConfig(t, `
Root = "hello";
`)
	libs := library.New()
	_, err := GetRunnable(path, "Root", WithLibraryTable(libs))
	assert.Error(t, err)
}

func TestGetRunnableWithTraceLogsConstruction(t *testing.T) {
	path := writeConfig(t, `
Seq = Class(IOC, "SequentialRunnableList");
Root = Seq(List());
`)
	libs := library.New()
	var buf bytes.Buffer
	_, err := GetRunnable(path, "Root", WithLibraryTable(libs), WithTrace(&buf))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "constructed Root")
}

func TestGetObjectLoaderExposesNames(t *testing.T) {
	path := writeConfig(t, `
A = "hello";
B = A;
`)
	table, err := GetObjectLoader(path)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A", "B"}, table.Names())
}
