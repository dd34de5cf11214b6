// Package catalog owns the fixed table of downloadable acoustic models and
// the device-fit recommendation ranking.
//
// Structured after the whisperModelCatalog / GetWhisperModels /
// markDownloadedModels pattern: a static slice of descriptors annotated at
// request time with installed/runnable/recommended state rather than
// mutated in place.
package catalog

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"

	"github.com/rbright/dicktaint/internal/device"
)

// Descriptor is one catalog entry.
type Descriptor struct {
	ID               string
	DisplayName      string
	WhisperRef       string
	FileName         string
	ApproxSizeGB     float64
	MinRAMGB         float64
	RecommendedRAMGB float64
	SpeedNote        string
	QualityNote      string
}

// sourceURLTemplate is the fixed model download location.
const sourceURLTemplate = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/%s"

// catalogEntries is the fixed, ordered 12-entry table. Order matters: it is
// the tie-break of last resort in Evaluate's recommendation ranking.
var catalogEntries = []Descriptor{
	{ID: "tiny-en", DisplayName: "Tiny (English)", WhisperRef: "tiny.en", FileName: "ggml-tiny.en.bin", ApproxSizeGB: 0.075, MinRAMGB: 2.0, RecommendedRAMGB: 6.0, SpeedNote: "fastest", QualityNote: "lowest accuracy"},
	{ID: "tiny", DisplayName: "Tiny (Multilingual)", WhisperRef: "tiny", FileName: "ggml-tiny.bin", ApproxSizeGB: 0.075, MinRAMGB: 2.0, RecommendedRAMGB: 6.0, SpeedNote: "fastest", QualityNote: "lowest accuracy"},
	{ID: "base-en", DisplayName: "Base (English)", WhisperRef: "base.en", FileName: "ggml-base.en.bin", ApproxSizeGB: 0.142, MinRAMGB: 4.0, RecommendedRAMGB: 8.0, SpeedNote: "very fast", QualityNote: "low accuracy"},
	{ID: "base", DisplayName: "Base (Multilingual)", WhisperRef: "base", FileName: "ggml-base.bin", ApproxSizeGB: 0.142, MinRAMGB: 4.0, RecommendedRAMGB: 8.0, SpeedNote: "very fast", QualityNote: "low accuracy"},
	{ID: "small-en", DisplayName: "Small (English)", WhisperRef: "small.en", FileName: "ggml-small.en.bin", ApproxSizeGB: 0.466, MinRAMGB: 6.0, RecommendedRAMGB: 10.0, SpeedNote: "fast", QualityNote: "moderate accuracy"},
	{ID: "small", DisplayName: "Small (Multilingual)", WhisperRef: "small", FileName: "ggml-small.bin", ApproxSizeGB: 0.466, MinRAMGB: 6.0, RecommendedRAMGB: 10.0, SpeedNote: "fast", QualityNote: "moderate accuracy"},
	{ID: "medium-en", DisplayName: "Medium (English)", WhisperRef: "medium.en", FileName: "ggml-medium.en.bin", ApproxSizeGB: 1.5, MinRAMGB: 8.0, RecommendedRAMGB: 16.0, SpeedNote: "moderate", QualityNote: "good accuracy"},
	{ID: "medium", DisplayName: "Medium (Multilingual)", WhisperRef: "medium", FileName: "ggml-medium.bin", ApproxSizeGB: 1.5, MinRAMGB: 8.0, RecommendedRAMGB: 16.0, SpeedNote: "moderate", QualityNote: "good accuracy"},
	{ID: "large-v1", DisplayName: "Large v1", WhisperRef: "large-v1", FileName: "ggml-large-v1.bin", ApproxSizeGB: 2.9, MinRAMGB: 24.0, RecommendedRAMGB: 32.0, SpeedNote: "slow", QualityNote: "very good accuracy"},
	{ID: "large-v2", DisplayName: "Large v2", WhisperRef: "large-v2", FileName: "ggml-large-v2.bin", ApproxSizeGB: 2.9, MinRAMGB: 24.0, RecommendedRAMGB: 32.0, SpeedNote: "slow", QualityNote: "very good accuracy"},
	{ID: "large-v3", DisplayName: "Large v3", WhisperRef: "large-v3", FileName: "ggml-large-v3.bin", ApproxSizeGB: 2.9, MinRAMGB: 24.0, RecommendedRAMGB: 32.0, SpeedNote: "slow", QualityNote: "best accuracy"},
	{ID: "turbo", DisplayName: "Large v3 Turbo", WhisperRef: "large-v3-turbo", FileName: "ggml-large-v3-turbo.bin", ApproxSizeGB: 1.5, MinRAMGB: 8.0, RecommendedRAMGB: 12.0, SpeedNote: "fast", QualityNote: "near-large accuracy"},
}

// List returns the fixed ordered catalog.
func List() []Descriptor {
	out := make([]Descriptor, len(catalogEntries))
	copy(out, catalogEntries)
	return out
}

// Lookup returns the descriptor for id, or false if id is not in the catalog.
func Lookup(id string) (Descriptor, bool) {
	for _, d := range catalogEntries {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false
}

// RuntimeState is the per-request annotation of a catalog entry.
type RuntimeState struct {
	Descriptor
	Installed      bool
	LikelyRunnable bool
	Recommended    bool
}

// Evaluate annotates every catalog entry against the device profile and the
// models directory, then marks at most one entry as Recommended.
func Evaluate(profile device.Profile, modelsDir string, selectedID string) []RuntimeState {
	states := make([]RuntimeState, len(catalogEntries))
	for i, d := range catalogEntries {
		states[i] = RuntimeState{
			Descriptor:     d,
			Installed:      installed(modelsDir, d.FileName),
			LikelyRunnable: profile.TotalMemoryGB >= d.MinRAMGB,
		}
	}
	_ = selectedID // selection does not affect recommendation; caller cross-references separately.

	best := recommend(states, profile)
	if best >= 0 {
		states[best].Recommended = true
	}
	return states
}

// recommend returns the index of the best runnable model, or -1 when none
// are runnable. Ranking (highest first): fit level (RAM meets comfort
// floor) > RecommendedRAMGB > ApproxSizeGB > catalog order.
func recommend(states []RuntimeState, profile device.Profile) int {
	candidates := make([]int, 0, len(states))
	for i, s := range states {
		if s.LikelyRunnable {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return -1
	}

	fits := func(i int) bool { return profile.TotalMemoryGB >= states[i].RecommendedRAMGB }

	sort.SliceStable(candidates, func(a, b int) bool {
		i, j := candidates[a], candidates[b]
		fi, fj := fits(i), fits(j)
		if fi != fj {
			return fi // true (fits) sorts first
		}
		if states[i].RecommendedRAMGB != states[j].RecommendedRAMGB {
			return states[i].RecommendedRAMGB > states[j].RecommendedRAMGB
		}
		if states[i].ApproxSizeGB != states[j].ApproxSizeGB {
			return states[i].ApproxSizeGB > states[j].ApproxSizeGB
		}
		return i < j // catalog order tie-break
	})

	return candidates[0]
}

// BestInstalled returns the strongest installed model for the device, using
// the same composite ordering the recommendation uses (fit level, comfort
// floor, size, catalog order). Used for selection failover after a delete.
func BestInstalled(profile device.Profile, modelsDir string) (Descriptor, bool) {
	states := Evaluate(profile, modelsDir, "")

	candidates := make([]int, 0, len(states))
	for i, s := range states {
		if s.Installed {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return Descriptor{}, false
	}

	fits := func(i int) bool { return profile.TotalMemoryGB >= states[i].RecommendedRAMGB }
	sort.SliceStable(candidates, func(a, b int) bool {
		i, j := candidates[a], candidates[b]
		fi, fj := fits(i), fits(j)
		if fi != fj {
			return fi
		}
		if states[i].RecommendedRAMGB != states[j].RecommendedRAMGB {
			return states[i].RecommendedRAMGB > states[j].RecommendedRAMGB
		}
		if states[i].ApproxSizeGB != states[j].ApproxSizeGB {
			return states[i].ApproxSizeGB > states[j].ApproxSizeGB
		}
		return i < j
	})

	return states[candidates[0]].Descriptor, true
}

func installed(modelsDir string, fileName string) bool {
	if modelsDir == "" {
		return false
	}
	info, err := os.Stat(filepath.Join(modelsDir, fileName))
	return err == nil && !info.IsDir()
}

// ErrUnknownModel is returned when a caller references a model id not
// present in the fixed catalog.
type ErrUnknownModel struct{ ID string }

func (e ErrUnknownModel) Error() string {
	return fmt.Sprintf("unknown model id %q", e.ID)
}

// Download fetches a catalog model's binary to modelsDir/FileName, writing
// to a sibling temp file and renaming into place so a crash mid-download
// never leaves a truncated file at the final path.
func Download(httpClient *http.Client, id string, modelsDir string) (string, error) {
	d, ok := Lookup(id)
	if !ok {
		return "", ErrUnknownModel{ID: id}
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if err := os.MkdirAll(modelsDir, 0o700); err != nil {
		return "", fmt.Errorf("create models dir %q: %w", modelsDir, err)
	}

	url := fmt.Sprintf(sourceURLTemplate, d.FileName)
	resp, err := httpClient.Get(url)
	if err != nil {
		return "", DownloadFailed{Status: 0, Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", DownloadFailed{Status: resp.StatusCode, Detail: fmt.Sprintf("unexpected status for %s", url)}
	}

	dest := filepath.Join(modelsDir, d.FileName)
	tmp, err := os.CreateTemp(modelsDir, ".model-download-*.tmp")
	if err != nil {
		return "", DownloadFailed{Status: resp.StatusCode, Detail: err.Error()}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return "", DownloadFailed{Status: resp.StatusCode, Detail: err.Error()}
	}
	if err := tmp.Close(); err != nil {
		return "", DownloadFailed{Status: resp.StatusCode, Detail: err.Error()}
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return "", DownloadFailed{Status: resp.StatusCode, Detail: err.Error()}
	}

	return dest, nil
}

// Delete removes an installed model file. It is not an error to delete a
// model that is already absent.
func Delete(id string, modelsDir string) error {
	d, ok := Lookup(id)
	if !ok {
		return ErrUnknownModel{ID: id}
	}
	err := os.Remove(filepath.Join(modelsDir, d.FileName))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete model %q: %w", id, err)
	}
	return nil
}

// DownloadFailed is the tagged error for model install failures.
type DownloadFailed struct {
	Status int
	Detail string
}

func (e DownloadFailed) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("download failed: %s", e.Detail)
	}
	return fmt.Sprintf("download failed (status %d): %s", e.Status, e.Detail)
}
