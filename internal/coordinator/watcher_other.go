//go:build !linux

package coordinator

import (
	"context"
	"runtime"

	"github.com/rbright/dicktaint/internal/hotkey"
)

// NewPlatformWatcher builds the platform's global hotkey watcher. No
// non-Linux backend is wired; see UnsupportedWatcher. An Fn binding stays
// stored but is reported inactive rather than generically unsupported.
func NewPlatformWatcher(binding hotkey.Binding) HotkeyWatcher {
	if binding.Key == "Fn" && runtime.GOOS != "darwin" {
		return inactiveWatcher{err: &HotkeyInactiveError{Key: "Fn", Platform: runtime.GOOS}}
	}
	return UnsupportedWatcher{Reason: "global hotkey capture is only wired for Linux evdev builds"}
}

type inactiveWatcher struct {
	err *HotkeyInactiveError
}

func (w inactiveWatcher) Watch(context.Context) (<-chan Edge, error) {
	return nil, w.err
}
