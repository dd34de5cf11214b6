// Package config resolves, parses, validates, and defaults the engine's
// process-start configuration.
package config

// Config is the fully materialized engine configuration. It is distinct
// from the persisted Settings (internal/settings): this
// object is read once at process start and never rewritten by the engine
// itself.
type Config struct {
	HomeDir    string
	PublicDir  string
	ModelsDir  string
	HTTP       HTTPConfig
	CLI        CLIConfig
	Capture    CaptureConfig
	Overlay    OverlayConfig
	Indicator  IndicatorConfig
	Clipboard  CommandConfig
	Paste      PasteConfig
	FocusedCmd CommandConfig
	Refiner    RefinerConfig
	Debug      DebugConfig
}

// HTTPConfig controls the static-file boundary's bind address.
type HTTPConfig struct {
	Host string
	Port int
}

// CLIConfig controls resolution and invocation of the external transcription executable.
type CLIConfig struct {
	PathOverride  string
	ModelOverride string
	FastThreads   int
	FastBeam      int
	FastBestOf    int
	RetryBeam     int
	RetryBestOf   int
}

// CaptureConfig controls microphone capture behavior.
type CaptureConfig struct {
	Input            string
	Fallback         string
	MicOpenTimeoutMS int
}

// OverlayConfig controls overlay window lifecycle.
type OverlayConfig struct {
	MaxOverlays int
	StartHidden bool
}

// IndicatorConfig controls visual indicator and audio cue behavior.
type IndicatorConfig struct {
	Enable            bool
	Backend           string
	DesktopAppName    string
	SoundEnable       bool
	SoundStartFile    string
	SoundStopFile     string
	SoundCompleteFile string
	SoundCancelFile   string
	TextRecording     string
	TextProcessing    string
	TextError         string
	ErrorTimeoutMS    int
}

// PasteConfig controls focused-field insertion after a successful transcription.
type PasteConfig struct {
	Enable   bool
	Shortcut string
}

// CommandConfig stores a raw command string and its parsed argv form. It also
// backs Clipboard: the external command used to set the system clipboard
// before a focused-field paste is synthesized.
type CommandConfig struct {
	Raw  string
	Argv []string
}

// RefinerConfig controls the optional local LLM transcript refinement pass.
type RefinerConfig struct {
	Endpoint    string
	Model       string
	TimeoutMS   int
	Instruction string
}

// DebugConfig controls optional debug artifact output.
type DebugConfig struct {
	EnableAudioDump bool
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
