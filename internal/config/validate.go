package config

import (
	"fmt"
	"strings"
)

// Validate enforces config invariants and returns non-fatal warnings. It may
// clamp out-of-range fields in place (e.g. overlay.max_overlays).
func Validate(cfg *Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if strings.TrimSpace(cfg.HomeDir) == "" {
		return nil, fmt.Errorf("home_dir must not be empty")
	}
	if strings.TrimSpace(cfg.PublicDir) == "" {
		return nil, fmt.Errorf("public_dir must not be empty")
	}
	if strings.TrimSpace(cfg.ModelsDir) == "" {
		return nil, fmt.Errorf("models_dir must not be empty")
	}
	if strings.TrimSpace(cfg.HTTP.Host) == "" {
		return nil, fmt.Errorf("http.host must not be empty")
	}
	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return nil, fmt.Errorf("http.port must be between 1 and 65535")
	}
	if cfg.Overlay.MaxOverlays <= 0 {
		return nil, fmt.Errorf("overlay.max_overlays must be > 0")
	}
	if cfg.Overlay.MaxOverlays > 6 {
		warnings = append(warnings, Warning{Message: "overlay.max_overlays capped at 6 per design"})
		cfg.Overlay.MaxOverlays = 6
	}
	if cfg.Capture.MicOpenTimeoutMS <= 0 {
		return nil, fmt.Errorf("capture.mic_open_timeout_ms must be > 0")
	}
	if cfg.CLI.FastThreads <= 0 {
		return nil, fmt.Errorf("cli.fast_threads must be > 0")
	}
	if cfg.CLI.FastBeam <= 0 || cfg.CLI.FastBestOf <= 0 {
		return nil, fmt.Errorf("cli.fast_beam and cli.fast_best_of must be > 0")
	}
	if cfg.CLI.RetryBeam <= 0 || cfg.CLI.RetryBestOf <= 0 {
		return nil, fmt.Errorf("cli.retry_beam and cli.retry_best_of must be > 0")
	}

	backend := strings.ToLower(strings.TrimSpace(cfg.Indicator.Backend))
	if backend == "" {
		return nil, fmt.Errorf("indicator.backend must not be empty")
	}
	if backend != "hypr" && backend != "desktop" {
		return nil, fmt.Errorf("indicator.backend must be one of: hypr, desktop")
	}
	if backend == "desktop" && strings.TrimSpace(cfg.Indicator.DesktopAppName) == "" {
		return nil, fmt.Errorf("indicator.desktop_app_name must not be empty when indicator.backend=desktop")
	}
	if cfg.Indicator.ErrorTimeoutMS < 0 {
		return nil, fmt.Errorf("indicator.error_timeout_ms must be >= 0")
	}

	if cfg.Paste.Enable && len(cfg.FocusedCmd.Argv) == 0 && strings.TrimSpace(cfg.Paste.Shortcut) == "" {
		return nil, fmt.Errorf("paste.shortcut must not be empty when paste.enable=true and focused_cmd is unset")
	}

	if strings.TrimSpace(cfg.Refiner.Endpoint) != "" {
		if cfg.Refiner.TimeoutMS <= 0 {
			return nil, fmt.Errorf("refiner.timeout_ms must be > 0 when refiner.endpoint is set")
		}
		if strings.TrimSpace(cfg.Refiner.Model) == "" {
			warnings = append(warnings, Warning{Message: "refiner.endpoint is set but refiner.model is empty"})
		}
	}

	return warnings, nil
}
