// Package commands is the engine's frontend-facing command surface: every
// operation the desktop shell (or the CLI) can invoke, expressed as plain
// methods on an API value so the Wails runtime can bind them directly.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/browser"

	"github.com/rbright/dicktaint/internal/catalog"
	"github.com/rbright/dicktaint/internal/cliresolver"
	"github.com/rbright/dicktaint/internal/config"
	"github.com/rbright/dicktaint/internal/device"
	"github.com/rbright/dicktaint/internal/hotkey"
	"github.com/rbright/dicktaint/internal/settings"
)

// WhisperSetupURL is the page opened by OpenWhisperSetupPage.
const WhisperSetupURL = "https://github.com/ggml-org/whisper.cpp"

const insertTimeout = 5 * time.Second

// Dictator is the coordinator subset the command surface drives.
type Dictator interface {
	StartDictation(ctx context.Context) error
	StopDictation(ctx context.Context) (string, error)
	Cancel(ctx context.Context)
}

// Inserter synthesizes a paste into the focused external field.
type Inserter interface {
	InsertText(ctx context.Context, text string) error
}

// DeviceInfo is the frontend rendering of a device profile.
type DeviceInfo struct {
	TotalMemoryGB   float64 `json:"total_memory_gb"`
	LogicalCPUCores int     `json:"logical_cpu_cores"`
	Architecture    string  `json:"architecture"`
	OS              string  `json:"os"`
}

// CliInfo reports whether a usable transcription executable was found.
type CliInfo struct {
	Found  bool   `json:"found"`
	Path   string `json:"path,omitempty"`
	Source string `json:"source,omitempty"`
}

// ModelListing is one catalog entry annotated for the current device.
type ModelListing struct {
	ID               string  `json:"id"`
	DisplayName      string  `json:"display_name"`
	WhisperRef       string  `json:"whisper_ref"`
	FileName         string  `json:"file_name"`
	ApproxSizeGB     float64 `json:"approx_size_gb"`
	MinRAMGB         float64 `json:"min_ram_gb"`
	RecommendedRAMGB float64 `json:"recommended_ram_gb"`
	SpeedNote        string  `json:"speed_note"`
	QualityNote      string  `json:"quality_note"`
	Installed        bool    `json:"installed"`
	LikelyRunnable   bool    `json:"likely_runnable"`
	Recommended      bool    `json:"recommended"`
	Selected         bool    `json:"selected"`
}

// Onboarding is the composite setup payload.
type Onboarding struct {
	Device                    DeviceInfo     `json:"device"`
	Cli                       CliInfo        `json:"cli"`
	Models                    []ModelListing `json:"models"`
	SelectedModelID           string         `json:"selected_model_id,omitempty"`
	DictationTrigger          string         `json:"dictation_trigger,omitempty"`
	FocusedFieldInsertEnabled bool           `json:"focused_field_insert_enabled"`
}

// InstallResult reports a completed model install.
type InstallResult struct {
	ModelID   string `json:"model_id"`
	ModelPath string `json:"model_path"`
}

// DeleteResult reports a completed model delete, including any failover the
// delete triggered.
type DeleteResult struct {
	DeletedID       string `json:"deleted_id"`
	SelectedModelID string `json:"selected_model_id,omitempty"`
}

// API is the command surface. Function fields exist so tests (and platforms
// without the default facility) can substitute probes without touching the
// methods themselves.
type API struct {
	cfg      config.Config
	logger   *slog.Logger
	store    *settings.Store
	dict     Dictator
	inserter Inserter

	DetectProfile func() device.Profile
	ResolveCLI    func(ctx context.Context) (cliresolver.Resolved, error)
	OpenURL       func(url string) error
	HTTPClient    *http.Client
}

// New builds the command surface. dict and inserter may be nil when the host
// mode doesn't wire them (the corresponding commands then report that).
func New(cfg config.Config, logger *slog.Logger, store *settings.Store, dict Dictator, inserter Inserter) *API {
	return &API{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		dict:     dict,
		inserter: inserter,
		DetectProfile: device.Detect,
		ResolveCLI: func(ctx context.Context) (cliresolver.Resolved, error) {
			return cliresolver.Resolve(ctx, cfg.CLI.PathOverride)
		},
		OpenURL:    browser.OpenURL,
		HTTPClient: http.DefaultClient,
	}
}

// GetDictationOnboarding probes the device, the transcription executable,
// and the model catalog, and returns the composite setup payload.
func (a *API) GetDictationOnboarding() (Onboarding, error) {
	current, err := a.loadSettings()
	if err != nil {
		return Onboarding{}, err
	}

	profile := a.DetectProfile()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	cli := CliInfo{}
	if resolved, err := a.ResolveCLI(ctx); err == nil {
		cli = CliInfo{Found: true, Path: resolved.Path, Source: resolved.Source}
	}

	selectedID := ""
	if current.SelectedModelID != nil {
		selectedID = *current.SelectedModelID
	}

	states := catalog.Evaluate(profile, a.cfg.ModelsDir, selectedID)
	models := make([]ModelListing, 0, len(states))
	for _, s := range states {
		models = append(models, ModelListing{
			ID:               s.ID,
			DisplayName:      s.DisplayName,
			WhisperRef:       s.WhisperRef,
			FileName:         s.FileName,
			ApproxSizeGB:     s.ApproxSizeGB,
			MinRAMGB:         s.MinRAMGB,
			RecommendedRAMGB: s.RecommendedRAMGB,
			SpeedNote:        s.SpeedNote,
			QualityNote:      s.QualityNote,
			Installed:        s.Installed,
			LikelyRunnable:   s.LikelyRunnable,
			Recommended:      s.Recommended,
			Selected:         s.ID == selectedID,
		})
	}

	trigger := ""
	if current.DictationTrigger != nil {
		trigger = *current.DictationTrigger
	}

	return Onboarding{
		Device: DeviceInfo{
			TotalMemoryGB:   profile.TotalMemoryGB,
			LogicalCPUCores: profile.LogicalCores,
			Architecture:    profile.Architecture,
			OS:              profile.OS,
		},
		Cli:                       cli,
		Models:                    models,
		SelectedModelID:           selectedID,
		DictationTrigger:          trigger,
		FocusedFieldInsertEnabled: current.FocusedInsert,
	}, nil
}

// InstallDictationModel downloads the model and persists it as the current
// selection. An id outside the catalog is rejected before anything is
// touched.
func (a *API) InstallDictationModel(modelID string) (InstallResult, error) {
	if _, ok := catalog.Lookup(modelID); !ok {
		return InstallResult{}, catalog.ErrUnknownModel{ID: modelID}
	}

	path, err := catalog.Download(a.HTTPClient, modelID, a.cfg.ModelsDir)
	if err != nil {
		return InstallResult{}, err
	}

	current, err := a.loadSettings()
	if err != nil {
		return InstallResult{}, err
	}
	current.SelectedModelID = &modelID
	current.SelectedModelPath = &path
	if err := a.store.Save(current); err != nil {
		return InstallResult{}, err
	}

	return InstallResult{ModelID: modelID, ModelPath: path}, nil
}

// DeleteDictationModel removes the model file. Deleting the currently
// selected model fails the selection over to the best remaining installed
// model, or clears it when nothing else is installed.
func (a *API) DeleteDictationModel(modelID string) (DeleteResult, error) {
	if _, ok := catalog.Lookup(modelID); !ok {
		return DeleteResult{}, catalog.ErrUnknownModel{ID: modelID}
	}

	if err := catalog.Delete(modelID, a.cfg.ModelsDir); err != nil {
		return DeleteResult{}, err
	}

	current, err := a.loadSettings()
	if err != nil {
		return DeleteResult{}, err
	}

	result := DeleteResult{DeletedID: modelID}
	if current.SelectedModelID != nil {
		result.SelectedModelID = *current.SelectedModelID
	}
	if current.SelectedModelID == nil || *current.SelectedModelID != modelID {
		return result, nil
	}

	if best, ok := catalog.BestInstalled(a.DetectProfile(), a.cfg.ModelsDir); ok {
		path := a.modelPath(best)
		current.SelectedModelID = &best.ID
		current.SelectedModelPath = &path
		result.SelectedModelID = best.ID
	} else {
		current.SelectedModelID = nil
		current.SelectedModelPath = nil
		result.SelectedModelID = ""
	}
	if err := a.store.Save(current); err != nil {
		return DeleteResult{}, err
	}

	return result, nil
}

// StartNativeDictation begins a capture cycle.
func (a *API) StartNativeDictation() error {
	if a.dict == nil {
		return errors.New("dictation is not available in this mode")
	}
	return a.dict.StartDictation(context.Background())
}

// StopNativeDictation completes the live capture cycle and returns the
// transcript.
func (a *API) StopNativeDictation() (string, error) {
	if a.dict == nil {
		return "", errors.New("dictation is not available in this mode")
	}
	return a.dict.StopDictation(context.Background())
}

// CancelNativeDictation discards any in-flight capture.
func (a *API) CancelNativeDictation() {
	if a.dict == nil {
		return
	}
	a.dict.Cancel(context.Background())
}

// OpenWhisperSetupPage opens the whisper.cpp project page in the default
// browser.
func (a *API) OpenWhisperSetupPage() error {
	return a.OpenURL(WhisperSetupURL)
}

// GetDictationTrigger returns the persisted hotkey binding, or "" when none
// is set.
func (a *API) GetDictationTrigger() (string, error) {
	current, err := a.loadSettings()
	if err != nil {
		return "", err
	}
	if current.DictationTrigger == nil {
		return "", nil
	}
	return *current.DictationTrigger, nil
}

// SetDictationTrigger validates and persists a hotkey binding, returning its
// canonical display form. An invalid binding is rejected without touching
// the stored one.
func (a *API) SetDictationTrigger(trigger string) (string, error) {
	binding, err := hotkey.Parse(trigger)
	if err != nil {
		return "", err
	}
	canonical := hotkey.Display(binding)

	current, err := a.loadSettings()
	if err != nil {
		return "", err
	}
	current.DictationTrigger = &canonical
	if err := a.store.Save(current); err != nil {
		return "", err
	}
	return canonical, nil
}

// ClearDictationTrigger removes the persisted hotkey binding.
func (a *API) ClearDictationTrigger() error {
	current, err := a.loadSettings()
	if err != nil {
		return err
	}
	current.DictationTrigger = nil
	return a.store.Save(current)
}

// SetFocusedFieldInsertEnabled persists the focused-field insertion toggle.
func (a *API) SetFocusedFieldInsertEnabled(enabled bool) error {
	current, err := a.loadSettings()
	if err != nil {
		return err
	}
	current.FocusedInsert = enabled
	return a.store.Save(current)
}

// InsertTextIntoFocusedField pastes text into the focused external field.
func (a *API) InsertTextIntoFocusedField(text string) error {
	if a.inserter == nil {
		return errors.New("focused-field insertion is not available in this mode")
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), insertTimeout)
	defer cancel()
	return a.inserter.InsertText(ctx, text)
}

// loadSettings reads the settings file, recovering once from a corrupt file
// the way the engine always does: rewrite a clean file, keep the old one as
// a .bak sibling.
func (a *API) loadSettings() (settings.Settings, error) {
	current, err := a.store.Load()
	if err == nil {
		return current, nil
	}
	if !errors.Is(err, settings.ErrConfigCorrupt) {
		return settings.Settings{}, err
	}
	if a.logger != nil {
		a.logger.Warn("settings file corrupt, recovering", "path", a.store.Path())
	}
	if recoverErr := a.store.Recover(); recoverErr != nil {
		return settings.Settings{}, fmt.Errorf("recover corrupt settings: %w", recoverErr)
	}
	return a.store.Load()
}

func (a *API) modelPath(d catalog.Descriptor) string {
	return filepath.Join(a.cfg.ModelsDir, d.FileName)
}
