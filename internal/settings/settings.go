// Package settings owns the persisted Settings file: selected model,
// dictation trigger, and focused-field-insert toggle.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Recognized keys in the persisted JSON document. Unknown keys are
// preserved verbatim across load/save round-trips.
const (
	keySelectedModelID   = "selected_model_id"
	keySelectedModelPath = "selected_model_path"
	keyDictationTrigger  = "dictation_trigger"
	keyFocusedInsert     = "focused_field_insert_enabled"
)

// ErrConfigCorrupt is returned by Load when the settings file exists but is
// not valid JSON. The caller is expected to call Recover, which rewrites an
// empty settings file and preserves the unreadable one as ".bak".
var ErrConfigCorrupt = errors.New("settings file is corrupt")

// Settings is the persisted mapping of dictation preferences.
type Settings struct {
	SelectedModelID   *string `json:"selected_model_id,omitempty"`
	SelectedModelPath *string `json:"selected_model_path,omitempty"`
	DictationTrigger  *string `json:"dictation_trigger,omitempty"`
	FocusedInsert     bool    `json:"focused_field_insert_enabled"`

	// extra carries any unrecognized top-level keys so a load->save cycle
	// never drops data this version of the engine doesn't understand.
	extra map[string]json.RawMessage
}

// Store is the exclusive owner of the on-disk settings file.
type Store struct {
	path string
}

// New constructs a Store rooted at <homeDir>/dictation-settings.json.
func New(homeDir string) *Store {
	return &Store{path: filepath.Join(homeDir, "dictation-settings.json")}
}

// Path returns the resolved settings file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the settings file. A missing file yields an empty Settings
// value, never an error. A malformed file returns ErrConfigCorrupt; the
// caller should invoke Recover to rewrite a clean file and preserve the
// corrupt one as a .bak sibling.
func (s *Store) Load() (Settings, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Settings{}, nil
		}
		return Settings{}, fmt.Errorf("read settings %q: %w", s.path, err)
	}

	out, err := decode(raw)
	if err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrConfigCorrupt, err)
	}
	return out, nil
}

// Recover rewrites an empty settings file after a corrupt load, preserving
// the previous (unreadable) file as a ".bak" sibling.
func (s *Store) Recover() error {
	if raw, err := os.ReadFile(s.path); err == nil {
		_ = os.WriteFile(s.path+".bak", raw, 0o600)
	}
	return s.Save(Settings{})
}

// Save atomically persists Settings: write to a sibling temp file in the
// same directory, then rename over the destination. This guarantees the
// file is either fully the old or fully the new content even if the
// process crashes mid-write.
func (s *Store) Save(v Settings) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create settings dir %q: %w", dir, err)
	}

	payload, err := encode(v)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".dictation-settings-*.json.tmp")
	if err != nil {
		return fmt.Errorf("create temp settings file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp settings file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp settings file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp settings file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("rename temp settings file into place: %w", err)
	}
	return nil
}

// decode parses raw JSON into Settings, stashing unrecognized keys in extra.
func decode(raw []byte) (Settings, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return Settings{}, err
	}

	out := Settings{extra: map[string]json.RawMessage{}}
	for k, v := range m {
		switch k {
		case keySelectedModelID:
			if err := json.Unmarshal(v, &out.SelectedModelID); err != nil {
				return Settings{}, fmt.Errorf("%s: %w", k, err)
			}
		case keySelectedModelPath:
			if err := json.Unmarshal(v, &out.SelectedModelPath); err != nil {
				return Settings{}, fmt.Errorf("%s: %w", k, err)
			}
		case keyDictationTrigger:
			if err := json.Unmarshal(v, &out.DictationTrigger); err != nil {
				return Settings{}, fmt.Errorf("%s: %w", k, err)
			}
		case keyFocusedInsert:
			if err := json.Unmarshal(v, &out.FocusedInsert); err != nil {
				return Settings{}, fmt.Errorf("%s: %w", k, err)
			}
		default:
			out.extra[k] = v
		}
	}
	return out, nil
}

// encode renders Settings back to JSON, re-emitting any preserved unknown keys.
func encode(v Settings) ([]byte, error) {
	m := map[string]json.RawMessage{}
	for k, raw := range v.extra {
		m[k] = raw
	}

	put := func(key string, value any) error {
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		m[key] = raw
		return nil
	}

	if err := put(keySelectedModelID, v.SelectedModelID); err != nil {
		return nil, err
	}
	if err := put(keySelectedModelPath, v.SelectedModelPath); err != nil {
		return nil, err
	}
	if err := put(keyDictationTrigger, v.DictationTrigger); err != nil {
		return nil, err
	}
	if err := put(keyFocusedInsert, v.FocusedInsert); err != nil {
		return nil, err
	}

	return json.MarshalIndent(m, "", "  ")
}
