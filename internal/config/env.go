package config

import (
	"os"
	"strconv"
	"strings"
)

// ApplyEnv overlays the process environment onto an already-loaded Config.
// Environment values win over both defaults and the config file:
//
//	HOST, PORT                  boundary HTTP bind
//	WHISPER_MODEL_PATH          model override, bypasses persisted selection
//	DICKTAINT_START_HIDDEN      1|true|on starts the main window hidden
//
// (WHISPER_CLI_PATH is honored inside the CLI resolver's probe chain, not
// here, so it stays ahead of the bundled sidecar even when a config file
// sets its own override.)
func ApplyEnv(cfg Config) Config {
	if host := strings.TrimSpace(os.Getenv("HOST")); host != "" {
		cfg.HTTP.Host = host
	}
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 && n <= 65535 {
			cfg.HTTP.Port = n
		}
	}
	if model := strings.TrimSpace(os.Getenv("WHISPER_MODEL_PATH")); model != "" {
		cfg.CLI.ModelOverride = model
	}
	if hidden := strings.TrimSpace(os.Getenv("DICKTAINT_START_HIDDEN")); hidden != "" {
		switch strings.ToLower(hidden) {
		case "1", "true", "on":
			cfg.Overlay.StartHidden = true
		}
	}
	return cfg
}
