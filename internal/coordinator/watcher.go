package coordinator

import (
	"context"
	"fmt"
)

// Edge is a single transition of the monitored global key/Fn state.
type Edge struct {
	Down bool
}

// HotkeyWatcher delivers down/up edges for the configured binding on a
// channel until ctx is canceled. The Linux build reads evdev key events
// (LinuxEvdevWatcher); every other build, macOS included, gets
// UnsupportedWatcher, so there is no watcher for the macOS Fn key.
type HotkeyWatcher interface {
	Watch(ctx context.Context) (<-chan Edge, error)
}

// HotkeyInactiveError reports a binding that parsed and is stored, but that
// this platform cannot monitor (the Fn specialization off macOS). The
// binding stays persisted; only activation is refused.
type HotkeyInactiveError struct {
	Key      string
	Platform string
}

func (e *HotkeyInactiveError) Error() string {
	return fmt.Sprintf("hotkey %q is inactive on %s", e.Key, e.Platform)
}

// UnsupportedWatcher is the default watcher on platforms/builds without a
// wired global-hotkey backend: it reports unavailability up front rather
// than silently never firing.
type UnsupportedWatcher struct {
	Reason string
}

func (w UnsupportedWatcher) Watch(context.Context) (<-chan Edge, error) {
	reason := w.Reason
	if reason == "" {
		reason = "global hotkey capture is not available on this build"
	}
	return nil, errUnsupportedWatcher(reason)
}

type errUnsupportedWatcher string

func (e errUnsupportedWatcher) Error() string { return string(e) }
