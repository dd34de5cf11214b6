// Package output commits a finished transcript into the system clipboard and,
// when enabled, synthesizes a paste into whatever field currently has focus.
package output

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/rbright/dicktaint/internal/config"
)

// FocusedInserter sets the system clipboard to a transcript and optionally
// synthesizes a paste keystroke into the focused field. It satisfies the
// coordinator package's FocusedInserter contract.
type FocusedInserter struct {
	cfg    config.Config
	logger *slog.Logger
}

// NewFocusedInserter builds an inserter from the engine configuration.
func NewFocusedInserter(cfg config.Config, logger *slog.Logger) *FocusedInserter {
	return &FocusedInserter{cfg: cfg, logger: logger}
}

// InsertText sets the clipboard to text and, if paste is enabled, pastes it
// into the focused field. A paste failure never fails the call: the
// transcript already landed in the clipboard and the user can paste manually.
func (f *FocusedInserter) InsertText(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}

	if err := runCommandWithInput(ctx, f.cfg.Clipboard.Argv, text); err != nil {
		return fmt.Errorf("set clipboard: %w", err)
	}

	if !f.cfg.Paste.Enable {
		return nil
	}

	if err := f.paste(ctx); err != nil {
		f.log("paste into focused field failed", err)
	}
	return nil
}

// paste dispatches to the configured paste command, falling back to the
// Hyprland active-window shortcut synthesis when none is configured.
func (f *FocusedInserter) paste(ctx context.Context) error {
	if len(f.cfg.FocusedCmd.Argv) > 0 {
		return runCommandWithInput(ctx, f.cfg.FocusedCmd.Argv, "")
	}
	return defaultPaste(ctx, f.cfg.Paste.Shortcut)
}

func (f *FocusedInserter) log(message string, err error) {
	if f.logger == nil || err == nil {
		return
	}
	f.logger.Debug(message, "error", err.Error())
}

// runCommandWithInput runs argv[0] with the remaining argv entries as
// arguments, writing input to its stdin.
func runCommandWithInput(ctx context.Context, argv []string, input string) error {
	if len(argv) == 0 {
		return fmt.Errorf("argv cannot be empty")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = bytes.NewBufferString(input)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return fmt.Errorf("%s: %w: %s", argv[0], err, bytes.TrimSpace(stderr.Bytes()))
		}
		return fmt.Errorf("%s: %w", argv[0], err)
	}
	return nil
}
