// Package cliresolver locates and validates the external whisper.cpp
// transcription executable via an ordered probe chain: an explicit override,
// then WHISPER_CLI_PATH, then the bundled sidecar named by
// DICKTAINT_BUNDLED_WHISPER_CLI, then whisper-cli on PATH, then a list of
// common install locations, then dev-sidecar paths in a source checkout.
//
// The Prober fields follow the injectable-OS-primitive pattern used
// elsewhere in this codebase for diagnostics, keeping exec.LookPath and
// process invocation swappable in tests.
package cliresolver

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// probeTimeout bounds each candidate's --help invocation.
const probeTimeout = 2 * time.Second

// Resolved describes a validated transcription CLI candidate.
type Resolved struct {
	Path   string
	Source string // which probe step found it, for diagnostics
}

// ErrUnavailable is returned when no candidate in the probe chain validates.
var ErrUnavailable = errors.New("no usable whisper-cli executable found")

// Candidates returns the ordered probe list per platform, before validation.
func Candidates(override string) []struct{ Path, Source string } {
	out := make([]struct{ Path, Source string }, 0, 8)

	if strings.TrimSpace(override) != "" {
		out = append(out, struct{ Path, Source string }{override, "override"})
	}
	if env := strings.TrimSpace(os.Getenv("WHISPER_CLI_PATH")); env != "" {
		out = append(out, struct{ Path, Source string }{env, "env:WHISPER_CLI_PATH"})
	}
	if sidecar := bundledSidecarPath(); sidecar != "" {
		out = append(out, struct{ Path, Source string }{sidecar, "bundled-sidecar"})
	}
	out = append(out, struct{ Path, Source string }{"whisper-cli", "PATH"})

	for _, p := range knownInstallCandidates() {
		out = append(out, struct{ Path, Source string }{p, "known-install-dir"})
	}
	for _, p := range devSidecarCandidates() {
		out = append(out, struct{ Path, Source string }{p, "dev-sidecar"})
	}
	return out
}

// Resolve probes candidates in order and returns the first one that exists,
// is executable, and answers --help with output resembling real help text.
func Resolve(ctx context.Context, override string) (Resolved, error) {
	for _, c := range Candidates(override) {
		resolvedPath := c.Path
		if !looksLikeAbsoluteOrPATHLookup(resolvedPath) {
			continue
		}

		found, err := lookPath(resolvedPath)
		if err != nil {
			continue
		}
		if !isExecutable(found) {
			continue
		}
		if !answersHelp(ctx, found) {
			continue
		}
		return Resolved{Path: found, Source: c.Source}, nil
	}
	return Resolved{}, ErrUnavailable
}

func looksLikeAbsoluteOrPATHLookup(p string) bool {
	return strings.TrimSpace(p) != ""
}

// lookPath resolves a bare command name via PATH, or validates an explicit
// path exists, matching exec.LookPath's combined semantics for both cases.
func lookPath(p string) (string, error) {
	if strings.ContainsRune(p, os.PathSeparator) || strings.Contains(p, "/") || strings.Contains(p, `\`) {
		if _, err := os.Stat(p); err != nil {
			return "", err
		}
		return p, nil
	}
	return exec.LookPath(p)
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode()&0o111 != 0
}

// answersHelp invokes the candidate with --help under a 2s budget and
// rejects placeholder stubs: genuine whisper.cpp help text mentions at
// least one of its own documented flags.
func answersHelp(ctx context.Context, path string) bool {
	runCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, path, "--help")
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return false
	}

	text := strings.ToLower(out.String())
	for _, marker := range []string{"-m ", "--model", "-f ", "--file", "whisper"} {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// bundledSidecarPath returns the host runtime's sidecar location, if any.
// Installers set it via environment; unset means no sidecar is bundled.
func bundledSidecarPath() string {
	return strings.TrimSpace(os.Getenv("DICKTAINT_BUNDLED_WHISPER_CLI"))
}

func knownInstallCandidates() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"/opt/homebrew/bin/whisper-cli", "/usr/local/bin/whisper-cli"}
	case "windows":
		return []string{`C:\Program Files\whisper.cpp\whisper-cli.exe`}
	default:
		return []string{"/usr/local/bin/whisper-cli", "/usr/bin/whisper-cli"}
	}
}

// devSidecarCandidates returns local dev-sidecar locations under a fixed
// repo-relative directory, for running against a source checkout.
func devSidecarCandidates() []string {
	bin := "whisper-cli"
	if runtime.GOOS == "windows" {
		bin = "whisper-cli.exe"
	}
	return []string{
		"./third_party/whisper.cpp/build/bin/" + bin,
		"../whisper.cpp/build/bin/" + bin,
	}
}
