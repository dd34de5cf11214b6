package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateAcceptsDefaults(t *testing.T) {
	cfg := Default()
	warnings, err := Validate(&cfg)
	require.NoError(t, err)
	require.Empty(t, warnings)
}

func TestValidateClampsOverlayMaxOverlays(t *testing.T) {
	cfg := Default()
	cfg.Overlay.MaxOverlays = 99

	warnings, err := Validate(&cfg)
	require.NoError(t, err)
	require.Equal(t, 6, cfg.Overlay.MaxOverlays)
	require.NotEmpty(t, warnings)
}

func TestValidateRejectsInvalidCoreFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "empty home dir", mutate: func(c *Config) { c.HomeDir = "" }, wantErr: "home_dir"},
		{name: "empty http host", mutate: func(c *Config) { c.HTTP.Host = "" }, wantErr: "http.host"},
		{name: "bad http port", mutate: func(c *Config) { c.HTTP.Port = 0 }, wantErr: "http.port"},
		{name: "invalid overlay max overlays", mutate: func(c *Config) { c.Overlay.MaxOverlays = 0 }, wantErr: "overlay.max_overlays"},
		{name: "invalid mic open timeout", mutate: func(c *Config) { c.Capture.MicOpenTimeoutMS = 0 }, wantErr: "mic_open_timeout_ms"},
		{name: "invalid fast beam", mutate: func(c *Config) { c.CLI.FastBeam = 0 }, wantErr: "fast_beam"},
		{name: "invalid retry best of", mutate: func(c *Config) { c.CLI.RetryBestOf = 0 }, wantErr: "retry_best_of"},
		{name: "empty indicator backend", mutate: func(c *Config) { c.Indicator.Backend = "" }, wantErr: "indicator.backend"},
		{name: "unknown indicator backend", mutate: func(c *Config) { c.Indicator.Backend = "popup" }, wantErr: "one of"},
		{name: "desktop backend missing app name", mutate: func(c *Config) {
			c.Indicator.Backend = "desktop"
			c.Indicator.DesktopAppName = ""
		}, wantErr: "desktop_app_name"},
		{name: "negative error timeout", mutate: func(c *Config) { c.Indicator.ErrorTimeoutMS = -1 }, wantErr: "error_timeout"},
		{name: "missing paste shortcut when focused cmd unset", mutate: func(c *Config) {
			c.Paste.Enable = true
			c.FocusedCmd = CommandConfig{}
			c.Paste.Shortcut = ""
		}, wantErr: "paste.shortcut"},
		{name: "refiner endpoint without timeout", mutate: func(c *Config) {
			c.Refiner.Endpoint = "http://127.0.0.1:11434"
			c.Refiner.TimeoutMS = 0
		}, wantErr: "refiner.timeout_ms"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)

			_, err := Validate(&cfg)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidatePasteDisabledIgnoresMissingShortcut(t *testing.T) {
	cfg := Default()
	cfg.Paste.Enable = false
	cfg.Paste.Shortcut = ""
	cfg.FocusedCmd = CommandConfig{}

	_, err := Validate(&cfg)
	require.NoError(t, err)
}
