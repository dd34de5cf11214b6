package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewCreatesWritableJSONLogFile(t *testing.T) {
	home := filepath.Join(t.TempDir(), ".dicktaint")

	runtime, err := New(home)
	require.NoError(t, err)

	require.Equal(t, filepath.Join(home, "log.jsonl"), runtime.Path)

	runtime.Logger.Info("unit-test-log", "component", "logging")
	require.NoError(t, runtime.Close())

	contents, err := os.ReadFile(runtime.Path)
	require.NoError(t, err)
	require.Contains(t, string(contents), `"msg":"unit-test-log"`)
	require.Contains(t, string(contents), `"component":"logging"`)

	stat, err := os.Stat(runtime.Path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), stat.Mode().Perm())
}

func TestNewCreatesParentDirectory(t *testing.T) {
	home := filepath.Join(t.TempDir(), "nested", ".dicktaint")

	runtime, err := New(home)
	require.NoError(t, err)
	defer runtime.Close()

	_, statErr := os.Stat(home)
	require.NoError(t, statErr)
}
