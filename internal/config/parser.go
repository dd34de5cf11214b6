// Package config resolves, parses, validates, and defaults the engine's
// process-start configuration.
package config

import (
	"fmt"
	"strings"
)

// Parse reads engine.conf content as JSONC over the supplied base config.
// An empty file is treated as "use base unchanged".
func Parse(content string, base Config) (Config, []Warning, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		validatedWarnings, err := Validate(&base)
		if err != nil {
			return Config{}, nil, err
		}
		return base, validatedWarnings, nil
	}

	if !strings.HasPrefix(trimmed, "{") {
		return Config{}, nil, fmt.Errorf("engine.conf must be a JSONC object starting with '{'")
	}

	return parseJSONC(content, base)
}
