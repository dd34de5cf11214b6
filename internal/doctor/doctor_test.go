package doctor

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rbright/dicktaint/internal/config"
	"github.com/stretchr/testify/require"
)

func TestReportOKAndString(t *testing.T) {
	report := Report{Checks: []Check{
		{Name: "one", Pass: true, Message: "good"},
		{Name: "two", Pass: false, Message: "bad"},
	}}

	require.False(t, report.OK())
	text := report.String()
	require.Contains(t, text, "[OK] one: good")
	require.Contains(t, text, "[FAIL] two: bad")
}

func TestReportOKAllPassing(t *testing.T) {
	report := Report{Checks: []Check{{Name: "one", Pass: true}, {Name: "two", Pass: true}}}
	require.True(t, report.OK())
}

func TestCheckEnv(t *testing.T) {
	t.Setenv("TEST_DOCTOR_ENV", "wayland")

	check := checkEnv(
		"TEST_DOCTOR_ENV",
		func(v string) bool { return strings.EqualFold(v, "wayland") },
		"looks good",
		"unexpected",
	)

	require.True(t, check.Pass)
	require.Equal(t, "looks good", check.Message)
}

func TestCheckBinaryFound(t *testing.T) {
	check := checkBinary("sh", "shell available")
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "shell available")
}

func TestCheckBinaryMissing(t *testing.T) {
	check := checkBinary("definitely-not-a-real-binary", "unused")
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "binary not found")
}

func TestCheckCliResolverFailsWhenUnavailable(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	t.Setenv("WHISPER_CLI_PATH", "")

	check := checkCliResolver(context.Background(), config.Default())
	require.False(t, check.Pass)
	require.Equal(t, "cli.resolver", check.Name)
}

func TestCheckModelSelectionNoSettingsMeansNoneSelected(t *testing.T) {
	cfg := config.Default()
	cfg.HomeDir = t.TempDir()

	check := checkModelSelection(cfg)
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "no model selected")
}

func TestCheckModelSelectionPassesWhenInstalledAndRunnable(t *testing.T) {
	cfg := config.Default()
	cfg.HomeDir = t.TempDir()
	cfg.ModelsDir = filepath.Join(cfg.HomeDir, "whisper-models")
	require.NoError(t, os.MkdirAll(cfg.ModelsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.ModelsDir, "ggml-tiny.en.bin"), []byte("stub"), 0o644))

	writeSettings(t, cfg.HomeDir, map[string]any{"selected_model_id": "tiny-en"})

	check := checkModelSelection(cfg)
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "tiny-en")
}

func TestCheckModelSelectionFailsWhenSelectedButNotInstalled(t *testing.T) {
	cfg := config.Default()
	cfg.HomeDir = t.TempDir()
	cfg.ModelsDir = filepath.Join(cfg.HomeDir, "whisper-models")

	writeSettings(t, cfg.HomeDir, map[string]any{"selected_model_id": "tiny-en"})

	check := checkModelSelection(cfg)
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "not installed")
}

func TestCheckCaptureDeviceFailsWithInvalidPulseServer(t *testing.T) {
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")

	check := checkCaptureDevice(context.Background(), config.Default())
	require.False(t, check.Pass)
	require.Equal(t, "capture.device", check.Name)
}

func TestCheckSettingsParseableNoFileYetPasses(t *testing.T) {
	cfg := config.Default()
	cfg.HomeDir = t.TempDir()

	check := checkSettingsParseable(cfg)
	require.True(t, check.Pass)
}

func TestCheckSettingsParseableFailsOnCorruptFile(t *testing.T) {
	cfg := config.Default()
	cfg.HomeDir = t.TempDir()
	require.NoError(t, os.MkdirAll(cfg.HomeDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.HomeDir, "dictation-settings.json"), []byte("{not json"), 0o644))

	check := checkSettingsParseable(cfg)
	require.False(t, check.Pass)
}

func TestRunIncludesHyprlandChecksWhenSessionPresent(t *testing.T) {
	binDir := t.TempDir()
	fakeHypr := filepath.Join(binDir, "hyprctl")
	require.NoError(t, os.WriteFile(fakeHypr, []byte("#!/usr/bin/env sh\nexit 0\n"), 0o755))
	t.Setenv("PATH", binDir+":"+os.Getenv("PATH"))
	t.Setenv("HYPRLAND_INSTANCE_SIGNATURE", "abc123")
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")

	cfg := config.Default()
	cfg.HomeDir = t.TempDir()

	report := Run(context.Background(), config.Loaded{Path: "/tmp/config.conf", Config: cfg})
	require.NotEmpty(t, report.Checks)

	var sawHypr bool
	for _, check := range report.Checks {
		if check.Name == "hyprctl" {
			sawHypr = true
		}
	}
	require.True(t, sawHypr)
}

func TestRunOmitsHyprlandChecksWhenSessionAbsent(t *testing.T) {
	t.Setenv("HYPRLAND_INSTANCE_SIGNATURE", "")
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")

	cfg := config.Default()
	cfg.HomeDir = t.TempDir()

	report := Run(context.Background(), config.Loaded{Path: "/tmp/config.conf", Config: cfg})

	for _, check := range report.Checks {
		require.NotEqual(t, "hyprctl", check.Name)
	}
}

func writeSettings(t *testing.T, homeDir string, payload map[string]any) {
	t.Helper()
	require.NoError(t, os.MkdirAll(homeDir, 0o755))
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(homeDir, "dictation-settings.json"), data, 0o644))
}
