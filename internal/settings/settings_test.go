package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)

	in := Settings{
		SelectedModelID:   strPtr("base-en"),
		SelectedModelPath: strPtr(filepath.Join(dir, "ggml-base.en.bin")),
		DictationTrigger:  strPtr("CmdOrCtrl+Shift+D"),
		FocusedInsert:     true,
	}
	require.NoError(t, store.Save(in))

	out, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, *in.SelectedModelID, *out.SelectedModelID)
	require.Equal(t, *in.SelectedModelPath, *out.SelectedModelPath)
	require.Equal(t, *in.DictationTrigger, *out.DictationTrigger)
	require.Equal(t, in.FocusedInsert, out.FocusedInsert)
}

func TestLoadMissingFileReturnsEmpty(t *testing.T) {
	store := New(t.TempDir())
	out, err := store.Load()
	require.NoError(t, err)
	require.Nil(t, out.SelectedModelID)
	require.False(t, out.FocusedInsert)
}

func TestLoadCorruptFileReturnsConfigCorrupt(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0o600))

	_, err := store.Load()
	require.ErrorIs(t, err, ErrConfigCorrupt)
}

func TestRecoverPreservesBackupAndWritesEmptySettings(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0o600))

	require.NoError(t, store.Recover())

	backup, err := os.ReadFile(store.Path() + ".bak")
	require.NoError(t, err)
	require.Equal(t, "{not json", string(backup))

	out, err := store.Load()
	require.NoError(t, err)
	require.Nil(t, out.SelectedModelID)
}

func TestUnknownKeysPreservedAcrossLoadSave(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)
	require.NoError(t, os.MkdirAll(dir, 0o700))
	raw := `{"selected_model_id":"tiny-en","some_future_key":{"nested":true}}`
	require.NoError(t, os.WriteFile(store.Path(), []byte(raw), 0o600))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.NoError(t, store.Save(loaded))

	roundTripped, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	require.Contains(t, string(roundTripped), `"some_future_key"`)
	require.Contains(t, string(roundTripped), `"nested": true`)
}

func TestSaveIsAtomicTempFileNotLeftBehind(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)
	require.NoError(t, store.Save(Settings{FocusedInsert: true}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "dictation-settings.json", entries[0].Name())
}
