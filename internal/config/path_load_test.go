package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePathPrecedence(t *testing.T) {
	explicit := "/tmp/custom.jsonc"
	resolved, err := ResolvePath(explicit)
	require.NoError(t, err)
	require.Equal(t, explicit, resolved)

	home := t.TempDir()
	t.Setenv("HOME", home)
	resolved, err = ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, appDirName, "engine.conf"), resolved)
}

func TestLoadMissingConfigUsesDefaultsWithWarning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "engine.conf")

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, path, loaded.Path)
	require.False(t, loaded.Exists)
	require.Equal(t, Default(), loaded.Config)
	require.NotEmpty(t, loaded.Warnings)
	require.Contains(t, loaded.Warnings[0].Message, "not found")
}

func TestLoadExistingJSONCParsesAndValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.conf")
	contents := `
{
  "http": {
    "host": "127.0.0.1",
    "port": 9100
  },
  "capture": {
    "input": "alsa_input.usb-mic",
    "fallback": "default"
  },
  "paste": {
    "enable": false
  }
}
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.True(t, loaded.Exists)
	require.Equal(t, path, loaded.Path)
	require.Equal(t, 9100, loaded.Config.HTTP.Port)
	require.Equal(t, "alsa_input.usb-mic", loaded.Config.Capture.Input)
	require.False(t, loaded.Config.Paste.Enable)
	require.Empty(t, loaded.Warnings)
}

func TestLoadParseErrorFallsBackToDefaultsWithWarning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.conf")
	require.NoError(t, os.WriteFile(path, []byte("{ not-json }"), 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.True(t, loaded.Exists)
	require.Equal(t, Default(), loaded.Config)
	require.NotEmpty(t, loaded.Warnings)
	require.Contains(t, loaded.Warnings[0].Message, "falling back to defaults")
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.conf")
	require.NoError(t, os.WriteFile(path, []byte(`{"not_a_real_field": true}`), 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, Default(), loaded.Config)
	require.Contains(t, loaded.Warnings[0].Message, "falling back to defaults")
}
