package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

type jsoncConfig struct {
	HomeDir    *string         `json:"home_dir"`
	PublicDir  *string         `json:"public_dir"`
	ModelsDir  *string         `json:"models_dir"`
	HTTP       *jsoncHTTP      `json:"http"`
	CLI        *jsoncCLI       `json:"cli"`
	Capture    *jsoncCapture   `json:"capture"`
	Overlay    *jsoncOverlay   `json:"overlay"`
	Indicator  *jsoncIndicator `json:"indicator"`
	Paste        *jsoncPaste `json:"paste"`
	ClipboardCmd *string     `json:"clipboard_cmd"`
	FocusedCmd   *string     `json:"focused_cmd"`
	Refiner    *jsoncRefiner   `json:"refiner"`
	Debug      *jsoncDebug     `json:"debug"`
}

type jsoncHTTP struct {
	Host *string `json:"host"`
	Port *int    `json:"port"`
}

type jsoncCLI struct {
	PathOverride  *string `json:"path_override"`
	ModelOverride *string `json:"model_override"`
	FastThreads   *int    `json:"fast_threads"`
	FastBeam      *int    `json:"fast_beam"`
	FastBestOf    *int    `json:"fast_best_of"`
	RetryBeam     *int    `json:"retry_beam"`
	RetryBestOf   *int    `json:"retry_best_of"`
}

type jsoncCapture struct {
	Input            *string `json:"input"`
	Fallback         *string `json:"fallback"`
	MicOpenTimeoutMS *int    `json:"mic_open_timeout_ms"`
}

type jsoncOverlay struct {
	MaxOverlays *int  `json:"max_overlays"`
	StartHidden *bool `json:"start_hidden"`
}

type jsoncPaste struct {
	Enable   *bool   `json:"enable"`
	Shortcut *string `json:"shortcut"`
}

type jsoncIndicator struct {
	Enable            *bool   `json:"enable"`
	Backend           *string `json:"backend"`
	DesktopAppName    *string `json:"desktop_app_name"`
	SoundEnable       *bool   `json:"sound_enable"`
	SoundStartFile    *string `json:"sound_start_file"`
	SoundStopFile     *string `json:"sound_stop_file"`
	SoundCompleteFile *string `json:"sound_complete_file"`
	SoundCancelFile   *string `json:"sound_cancel_file"`
	TextRecording     *string `json:"text_recording"`
	TextProcessing    *string `json:"text_processing"`
	TextError         *string `json:"text_error"`
	ErrorTimeoutMS    *int    `json:"error_timeout_ms"`
}

type jsoncRefiner struct {
	Endpoint    *string `json:"endpoint"`
	Model       *string `json:"model"`
	TimeoutMS   *int    `json:"timeout_ms"`
	Instruction *string `json:"instruction"`
}

type jsoncDebug struct {
	AudioDump *bool `json:"audio_dump"`
}

func parseJSONC(content string, base Config) (Config, []Warning, error) {
	normalized, err := normalizeJSONC(content)
	if err != nil {
		return Config{}, nil, err
	}

	decoder := json.NewDecoder(strings.NewReader(normalized))
	decoder.DisallowUnknownFields()

	var payload jsoncConfig
	if err := decoder.Decode(&payload); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}
	if err := ensureSingleJSONValue(decoder); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}

	cfg := base
	warnings, err := payload.applyTo(&cfg)
	if err != nil {
		return Config{}, nil, err
	}

	validatedWarnings, err := Validate(&cfg)
	if err != nil {
		return Config{}, nil, err
	}
	warnings = append(warnings, validatedWarnings...)
	return cfg, warnings, nil
}

func (payload jsoncConfig) applyTo(cfg *Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if payload.HomeDir != nil {
		cfg.HomeDir = *payload.HomeDir
	}
	if payload.PublicDir != nil {
		cfg.PublicDir = *payload.PublicDir
	}
	if payload.ModelsDir != nil {
		cfg.ModelsDir = *payload.ModelsDir
	}

	if payload.HTTP != nil {
		if payload.HTTP.Host != nil {
			cfg.HTTP.Host = strings.TrimSpace(*payload.HTTP.Host)
		}
		if payload.HTTP.Port != nil {
			cfg.HTTP.Port = *payload.HTTP.Port
		}
	}

	if payload.CLI != nil {
		if payload.CLI.PathOverride != nil {
			cfg.CLI.PathOverride = strings.TrimSpace(*payload.CLI.PathOverride)
		}
		if payload.CLI.ModelOverride != nil {
			cfg.CLI.ModelOverride = strings.TrimSpace(*payload.CLI.ModelOverride)
		}
		if payload.CLI.FastThreads != nil {
			cfg.CLI.FastThreads = *payload.CLI.FastThreads
		}
		if payload.CLI.FastBeam != nil {
			cfg.CLI.FastBeam = *payload.CLI.FastBeam
		}
		if payload.CLI.FastBestOf != nil {
			cfg.CLI.FastBestOf = *payload.CLI.FastBestOf
		}
		if payload.CLI.RetryBeam != nil {
			cfg.CLI.RetryBeam = *payload.CLI.RetryBeam
		}
		if payload.CLI.RetryBestOf != nil {
			cfg.CLI.RetryBestOf = *payload.CLI.RetryBestOf
		}
	}

	if payload.Capture != nil {
		if payload.Capture.Input != nil {
			cfg.Capture.Input = *payload.Capture.Input
		}
		if payload.Capture.Fallback != nil {
			cfg.Capture.Fallback = *payload.Capture.Fallback
		}
		if payload.Capture.MicOpenTimeoutMS != nil {
			cfg.Capture.MicOpenTimeoutMS = *payload.Capture.MicOpenTimeoutMS
		}
	}

	if payload.Overlay != nil {
		if payload.Overlay.MaxOverlays != nil {
			cfg.Overlay.MaxOverlays = *payload.Overlay.MaxOverlays
		}
		if payload.Overlay.StartHidden != nil {
			cfg.Overlay.StartHidden = *payload.Overlay.StartHidden
		}
	}

	if payload.Paste != nil {
		if payload.Paste.Enable != nil {
			cfg.Paste.Enable = *payload.Paste.Enable
		}
		if payload.Paste.Shortcut != nil {
			cfg.Paste.Shortcut = strings.TrimSpace(*payload.Paste.Shortcut)
		}
	}

	if payload.Indicator != nil {
		if payload.Indicator.Enable != nil {
			cfg.Indicator.Enable = *payload.Indicator.Enable
		}
		if payload.Indicator.Backend != nil {
			cfg.Indicator.Backend = strings.TrimSpace(*payload.Indicator.Backend)
		}
		if payload.Indicator.DesktopAppName != nil {
			cfg.Indicator.DesktopAppName = strings.TrimSpace(*payload.Indicator.DesktopAppName)
		}
		if payload.Indicator.SoundEnable != nil {
			cfg.Indicator.SoundEnable = *payload.Indicator.SoundEnable
		}
		if payload.Indicator.SoundStartFile != nil {
			cfg.Indicator.SoundStartFile = *payload.Indicator.SoundStartFile
		}
		if payload.Indicator.SoundStopFile != nil {
			cfg.Indicator.SoundStopFile = *payload.Indicator.SoundStopFile
		}
		if payload.Indicator.SoundCompleteFile != nil {
			cfg.Indicator.SoundCompleteFile = *payload.Indicator.SoundCompleteFile
		}
		if payload.Indicator.SoundCancelFile != nil {
			cfg.Indicator.SoundCancelFile = *payload.Indicator.SoundCancelFile
		}
		if payload.Indicator.TextRecording != nil {
			cfg.Indicator.TextRecording = *payload.Indicator.TextRecording
		}
		if payload.Indicator.TextProcessing != nil {
			cfg.Indicator.TextProcessing = *payload.Indicator.TextProcessing
		}
		if payload.Indicator.TextError != nil {
			cfg.Indicator.TextError = *payload.Indicator.TextError
		}
		if payload.Indicator.ErrorTimeoutMS != nil {
			cfg.Indicator.ErrorTimeoutMS = *payload.Indicator.ErrorTimeoutMS
		}
	}

	if payload.ClipboardCmd != nil {
		raw := *payload.ClipboardCmd
		argv, err := parseArgv(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid clipboard_cmd: %w", err)
		}
		cfg.Clipboard = CommandConfig{Raw: raw, Argv: argv}
	}

	if payload.FocusedCmd != nil {
		raw := *payload.FocusedCmd
		argv, err := parseArgv(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid focused_cmd: %w", err)
		}
		cfg.FocusedCmd = CommandConfig{Raw: raw, Argv: argv}
	}

	if payload.Refiner != nil {
		if payload.Refiner.Endpoint != nil {
			cfg.Refiner.Endpoint = strings.TrimSpace(*payload.Refiner.Endpoint)
		}
		if payload.Refiner.Model != nil {
			cfg.Refiner.Model = strings.TrimSpace(*payload.Refiner.Model)
		}
		if payload.Refiner.TimeoutMS != nil {
			cfg.Refiner.TimeoutMS = *payload.Refiner.TimeoutMS
		}
		if payload.Refiner.Instruction != nil {
			cfg.Refiner.Instruction = *payload.Refiner.Instruction
		}
	}

	if payload.Debug != nil {
		if payload.Debug.AudioDump != nil {
			cfg.Debug.EnableAudioDump = *payload.Debug.AudioDump
		}
	}

	return warnings, nil
}

func normalizeJSONC(content string) (string, error) {
	withoutComments, err := stripJSONCComments(content)
	if err != nil {
		return "", err
	}
	return stripJSONCTrailingCommas(withoutComments), nil
}

func stripJSONCComments(content string) (string, error) {
	var out strings.Builder
	out.Grow(len(content))

	inString := false
	escape := false
	lineComment := false
	blockComment := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if lineComment {
			if ch == '\n' {
				lineComment = false
				out.WriteByte(ch)
				continue
			}
			if ch == '\r' {
				lineComment = false
				out.WriteByte(ch)
				continue
			}
			out.WriteByte(' ')
			continue
		}

		if blockComment {
			if ch == '*' && i+1 < len(content) && content[i+1] == '/' {
				blockComment = false
				out.WriteString("  ")
				i++
				continue
			}
			if ch == '\n' || ch == '\r' || ch == '\t' {
				out.WriteByte(ch)
			} else {
				out.WriteByte(' ')
			}
			continue
		}

		if inString {
			out.WriteByte(ch)
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			out.WriteByte(ch)
			continue
		}

		if ch == '/' && i+1 < len(content) {
			next := content[i+1]
			if next == '/' {
				lineComment = true
				out.WriteString("  ")
				i++
				continue
			}
			if next == '*' {
				blockComment = true
				out.WriteString("  ")
				i++
				continue
			}
		}

		out.WriteByte(ch)
	}

	if blockComment {
		return "", fmt.Errorf("unterminated block comment in JSONC")
	}

	return out.String(), nil
}

func stripJSONCTrailingCommas(content string) string {
	var out strings.Builder
	out.Grow(len(content))

	inString := false
	escape := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if inString {
			out.WriteByte(ch)
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			out.WriteByte(ch)
			continue
		}

		if ch == ',' {
			j := i + 1
			for j < len(content) && isJSONWhitespace(content[j]) {
				j++
			}
			if j < len(content) && (content[j] == '}' || content[j] == ']') {
				continue
			}
		}

		out.WriteByte(ch)
	}

	return out.String()
}

func isJSONWhitespace(ch byte) bool {
	switch ch {
	case ' ', '\n', '\r', '\t':
		return true
	default:
		return false
	}
}

func ensureSingleJSONValue(decoder *json.Decoder) error {
	var extra struct{}
	err := decoder.Decode(&extra)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err == nil {
		return fmt.Errorf("multiple JSON values are not allowed")
	}
	return err
}

func wrapJSONDecodeError(content string, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := offsetToLineCol(content, syntaxErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		line, col := offsetToLineCol(content, typeErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	return err
}

func offsetToLineCol(content string, offset int64) (int, int) {
	if offset <= 0 {
		return 1, 1
	}

	limit := int(offset)
	if limit > len(content) {
		limit = len(content)
	}

	line := 1
	col := 1
	for i := 0; i < limit-1; i++ {
		if content[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
