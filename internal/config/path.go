package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ResolvePath applies the explicit/home fallback rule for engine.conf location.
// The engine config lives under the same home directory as settings and
// models, not under XDG_CONFIG_HOME.
func ResolvePath(explicit string) (string, error) {
	if strings.TrimSpace(explicit) != "" {
		return explicit, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("unable to resolve user home for config fallback")
	}

	return filepath.Join(home, appDirName, "engine.conf"), nil
}
