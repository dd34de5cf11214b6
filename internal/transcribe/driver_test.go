package transcribe

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeFakeWhisperCLI writes a POSIX shell script that mimics whisper.cpp's
// -of/-otxt contract: it writes text to "<prefix>.txt" where prefix is the
// argument following "-of". A script built on findOfPrefixScript may test
// $beam (the "-bs" value) to let a test distinguish fast vs. accuracy passes.
func writeFakeWhisperCLI(t *testing.T, dir string, script string) string {
	t.Helper()
	path := filepath.Join(dir, "fake-whisper-cli.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

const findOfPrefixScript = `
prefix=""
beam=""
prev=""
for arg in "$@"; do
  if [ "$prev" = "-of" ]; then
    prefix="$arg"
  fi
  if [ "$prev" = "-bs" ]; then
    beam="$arg"
  fi
  prev="$arg"
done
`

func TestTranscribeFastPassReturnsCleanedText(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture requires a POSIX shell")
	}
	script := findOfPrefixScript + `echo "[BLANK_AUDIO] the quick brown fox jumps over the lazy dog" > "$prefix.txt"
`
	cliPath := writeFakeWhisperCLI(t, t.TempDir(), script)

	d := NewDriver(cliPath, 4)
	result := d.Transcribe(context.Background(), []byte{0, 0, 1, 0}, "/models/tiny-en.bin")

	require.Equal(t, Transcribed, result.Outcome)
	require.Equal(t, "The quick brown fox jumps over the lazy dog", result.Text)
	require.False(t, result.RetriedAt)
}

func TestTranscribeEmptyCleanedTextIsNoSpeech(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture requires a POSIX shell")
	}
	script := findOfPrefixScript + `echo "[SILENCE]" > "$prefix.txt"
`
	cliPath := writeFakeWhisperCLI(t, t.TempDir(), script)

	d := NewDriver(cliPath, 4)
	result := d.Transcribe(context.Background(), []byte{0, 0}, "/models/tiny-en.bin")

	require.Equal(t, NoSpeech, result.Outcome)
}

func TestTranscribeLowInformationTriggersAccuracyRetry(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture requires a POSIX shell")
	}
	// Fast pass (-bs 2) returns a low-information repeated word; accuracy
	// pass (-bs 5) returns a full sentence that should win on coverage.
	script := findOfPrefixScript + `
if [ "$beam" = "5" ]; then
  echo "the quick brown fox jumps over the lazy dog" > "$prefix.txt"
else
  echo "the the the the the the" > "$prefix.txt"
fi
`
	cliPath := writeFakeWhisperCLI(t, t.TempDir(), script)

	d := NewDriver(cliPath, 4)
	result := d.Transcribe(context.Background(), []byte{0, 0}, "/models/tiny-en.bin")

	require.Equal(t, Transcribed, result.Outcome)
	require.True(t, result.RetriedAt)
	require.Equal(t, "The quick brown fox jumps over the lazy dog", result.Text)
}

func TestTranscribeCLIFailureReturnsFailed(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture requires a POSIX shell")
	}
	cliPath := writeFakeWhisperCLI(t, t.TempDir(), "exit 1\n")

	d := NewDriver(cliPath, 4)
	result := d.Transcribe(context.Background(), []byte{0, 0}, "/models/tiny-en.bin")

	require.Equal(t, Failed, result.Outcome)
	require.Error(t, result.FailureErr)

	var failure *TranscriptionFailed
	require.ErrorAs(t, result.FailureErr, &failure)
}

func TestTranscribeScratchFilesCleanedUp(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture requires a POSIX shell")
	}
	script := findOfPrefixScript + `echo "hello world this is a normal sentence" > "$prefix.txt"
`
	cliPath := writeFakeWhisperCLI(t, t.TempDir(), script)

	tmpBefore, err := os.ReadDir(os.TempDir())
	require.NoError(t, err)

	d := NewDriver(cliPath, 4)
	result := d.Transcribe(context.Background(), []byte{0, 0}, "/models/tiny-en.bin")
	require.Equal(t, Transcribed, result.Outcome)

	tmpAfter, err := os.ReadDir(os.TempDir())
	require.NoError(t, err)
	require.Len(t, tmpAfter, len(tmpBefore))
}

func TestClampThreads(t *testing.T) {
	require.Equal(t, minFastThreads, clampThreads(1))
	require.Equal(t, 4, clampThreads(4))
	require.Equal(t, maxFastThreads, clampThreads(64))
}
