package config

import (
	"os"
	"path/filepath"
)

const appDirName = ".dicktaint"

// Default returns the canonical engine configuration used when no file is
// present, rooted at the current user's home directory.
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	root := filepath.Join(home, appDirName)

	focusedCmd := "hyprctl --quiet dispatch sendshortcut"

	return Config{
		HomeDir:   root,
		PublicDir: filepath.Join(root, "public"),
		ModelsDir: filepath.Join(root, "whisper-models"),
		HTTP: HTTPConfig{
			Host: "127.0.0.1",
			Port: 7890,
		},
		CLI: CLIConfig{
			FastThreads: 4,
			FastBeam:    2,
			FastBestOf:  2,
			RetryBeam:   5,
			RetryBestOf: 5,
		},
		Capture: CaptureConfig{
			Input:            "default",
			Fallback:         "default",
			MicOpenTimeoutMS: 5000,
		},
		Overlay: OverlayConfig{
			MaxOverlays: 6,
			StartHidden: false,
		},
		Indicator: IndicatorConfig{
			Enable:         true,
			Backend:        "hypr",
			DesktopAppName: "dicktaint",
			SoundEnable:    true,
			ErrorTimeoutMS: 1600,
			TextRecording:  "Listening…",
			TextProcessing: "Transcribing…",
			TextError:      "Dictation failed",
		},
		Clipboard: CommandConfig{
			Raw:  "wl-copy",
			Argv: mustParseArgv("wl-copy"),
		},
		Paste: PasteConfig{Enable: true, Shortcut: "CTRL,V"},
		FocusedCmd: CommandConfig{
			Raw:  focusedCmd,
			Argv: mustParseArgv(focusedCmd),
		},
		Refiner: RefinerConfig{
			Endpoint:    "",
			Model:       "",
			TimeoutMS:   4000,
			Instruction: "Clean up this raw speech-to-text transcript into readable text while preserving the speaker's intent.",
		},
		Debug: DebugConfig{},
	}
}
