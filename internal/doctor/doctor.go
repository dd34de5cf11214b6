// Package doctor runs runtime readiness diagnostics for the dictation engine.
package doctor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rbright/dicktaint/internal/capture"
	"github.com/rbright/dicktaint/internal/catalog"
	"github.com/rbright/dicktaint/internal/cliresolver"
	"github.com/rbright/dicktaint/internal/config"
	"github.com/rbright/dicktaint/internal/device"
	"github.com/rbright/dicktaint/internal/settings"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes the ordered readiness checks for a loaded config. Each check
// is independent; a failure never short-circuits the rest.
func Run(ctx context.Context, cfg config.Loaded) Report {
	checks := []Check{
		{Name: "config", Pass: true, Message: fmt.Sprintf("loaded %q", cfg.Path)},
		checkCliResolver(ctx, cfg.Config),
		checkModelSelection(cfg.Config),
		checkCaptureDevice(ctx, cfg.Config),
		checkSettingsParseable(cfg.Config),
	}

	if strings.TrimSpace(os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")) != "" {
		checks = append(checks,
			checkEnv("HYPRLAND_INSTANCE_SIGNATURE", func(v string) bool {
				return strings.TrimSpace(v) != ""
			}, "Hyprland session detected", "HYPRLAND_INSTANCE_SIGNATURE is empty"),
			checkBinary("hyprctl", "Hyprland control socket reachable"),
		)
	}

	return Report{Checks: checks}
}

// checkEnv validates an environment variable through a caller-supplied predicate.
func checkEnv(name string, predicate func(string) bool, okMsg, failMsg string) Check {
	value := os.Getenv(name)
	if predicate(value) {
		return Check{Name: name, Pass: true, Message: okMsg}
	}
	return Check{Name: name, Pass: false, Message: failMsg}
}

// checkBinary validates that a binary exists in PATH.
func checkBinary(bin string, okMsg string) Check {
	path, err := exec.LookPath(bin)
	if err != nil {
		return Check{Name: bin, Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", bin)}
	}
	return Check{Name: bin, Pass: true, Message: fmt.Sprintf("found at %s (%s)", path, okMsg)}
}

// checkCliResolver validates that the transcription CLI can be located and answers --help.
func checkCliResolver(ctx context.Context, cfg config.Config) Check {
	resolved, err := cliresolver.Resolve(ctx, cfg.CLI.PathOverride)
	if err != nil {
		return Check{Name: "cli.resolver", Pass: false, Message: err.Error()}
	}
	return Check{Name: "cli.resolver", Pass: true, Message: fmt.Sprintf("resolved %s via %s", resolved.Path, resolved.Source)}
}

// checkModelSelection validates at least one installed, runnable model is selected.
func checkModelSelection(cfg config.Config) Check {
	store := settings.New(cfg.HomeDir)
	loaded, err := store.Load()
	if err != nil {
		return Check{Name: "model.selection", Pass: false, Message: fmt.Sprintf("settings unreadable: %v", err)}
	}

	selectedID := ""
	if loaded.SelectedModelID != nil {
		selectedID = *loaded.SelectedModelID
	}

	if selectedID == "" {
		return Check{Name: "model.selection", Pass: false, Message: "no model selected"}
	}

	profile := device.Detect()
	states := catalog.Evaluate(profile, cfg.ModelsDir, selectedID)

	for _, state := range states {
		if state.ID != selectedID {
			continue
		}
		if state.Installed && state.LikelyRunnable {
			return Check{Name: "model.selection", Pass: true, Message: fmt.Sprintf("%s installed and runnable", state.ID)}
		}
		if !state.Installed {
			return Check{Name: "model.selection", Pass: false, Message: fmt.Sprintf("%s is selected but not installed", state.ID)}
		}
		return Check{Name: "model.selection", Pass: false, Message: fmt.Sprintf("%s is selected but unlikely to run on this device", state.ID)}
	}
	return Check{Name: "model.selection", Pass: false, Message: fmt.Sprintf("selected model %q is not in the catalog", selectedID)}
}

// checkCaptureDevice runs live device selection to surface selection/fallback issues.
func checkCaptureDevice(ctx context.Context, cfg config.Config) Check {
	selection, err := capture.SelectDevice(ctx, cfg.Capture.Input, cfg.Capture.Fallback)
	if err != nil {
		return Check{Name: "capture.device", Pass: false, Message: err.Error()}
	}
	message := fmt.Sprintf("selected %q", selection.Device.ID)
	if selection.Warning != "" {
		message = message + " (" + selection.Warning + ")"
	}
	return Check{Name: "capture.device", Pass: true, Message: message}
}

// checkSettingsParseable validates the persisted settings file, if present, decodes cleanly.
func checkSettingsParseable(cfg config.Config) Check {
	store := settings.New(cfg.HomeDir)
	_, err := store.Load()
	if err != nil {
		if errors.Is(err, settings.ErrConfigCorrupt) {
			return Check{Name: "settings.parseable", Pass: false, Message: err.Error()}
		}
		return Check{Name: "settings.parseable", Pass: false, Message: fmt.Sprintf("unreadable: %v", err)}
	}
	return Check{Name: "settings.parseable", Pass: true, Message: fmt.Sprintf("parsed %s", store.Path())}
}
