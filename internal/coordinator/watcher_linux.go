//go:build linux

package coordinator

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/rbright/dicktaint/internal/hotkey"
)

// Linux input-event-codes.h key codes for the subset of keys the hotkey DSL
// can name. Values are the fixed kernel ABI constants, not something a
// library needs to supply.
const (
	keyEsc        = 1
	key1          = 2
	key2          = 3
	key3          = 4
	key4          = 5
	key5          = 6
	key6          = 7
	key7          = 8
	key8          = 9
	key9          = 10
	key0          = 11
	keyTab        = 15
	keyEnter      = 28
	keyLeftCtrl   = 29
	keySpace      = 57
	keyCapsLock   = 58
	keyF1         = 59
	keyF10        = 68
	keyLeftShift  = 42
	keyRightShift = 54
	keyLeftAlt    = 56
	keyRightAlt   = 100
	keyRightCtrl  = 97
	keyHome       = 102
	keyUp         = 103
	keyPageUp     = 104
	keyLeft       = 105
	keyRight      = 106
	keyEnd        = 107
	keyDown       = 108
	keyPageDown   = 109
	keyInsert     = 110
	keyDelete     = 111
	keyLeftMeta   = 125
	keyRightMeta  = 126
	keyF11        = 87
	keyF12        = 88
	keyF13        = 183
	keyBackspace  = 14
)

// qwertyRows lists each letter row with the evdev code of its first key
// (KEY_Q, KEY_A, KEY_Z); codes run consecutively along a row.
var qwertyRows = []struct {
	letters string
	first   uint16
}{
	{"QWERTYUIOP", 16},
	{"ASDFGHJKL", 30},
	{"ZXCVBNM", 44},
}

// keyCodeFor resolves a canonical hotkey.Binding key token to a Linux evdev
// key code.
func keyCodeFor(key string) (uint16, bool) {
	switch key {
	case "Space":
		return keySpace, true
	case "Tab":
		return keyTab, true
	case "Enter":
		return keyEnter, true
	case "Escape":
		return keyEsc, true
	case "Up":
		return keyUp, true
	case "Down":
		return keyDown, true
	case "Left":
		return keyLeft, true
	case "Right":
		return keyRight, true
	case "Home":
		return keyHome, true
	case "End":
		return keyEnd, true
	case "PageUp":
		return keyPageUp, true
	case "PageDown":
		return keyPageDown, true
	case "Insert":
		return keyInsert, true
	case "Delete":
		return keyDelete, true
	case "Backspace":
		return keyBackspace, true
	}

	if len(key) == 1 {
		c := key[0]
		if c >= '0' && c <= '9' {
			digits := []uint16{key0, key1, key2, key3, key4, key5, key6, key7, key8, key9}
			return digits[c-'0'], true
		}
		for _, row := range qwertyRows {
			if i := strings.IndexByte(row.letters, c); i >= 0 {
				return row.first + uint16(i), true
			}
		}
	}

	if len(key) >= 2 && key[0] == 'F' {
		n := 0
		for _, c := range key[1:] {
			if c < '0' || c > '9' {
				return 0, false
			}
			n = n*10 + int(c-'0')
		}
		switch {
		case n >= 1 && n <= 10:
			return uint16(keyF1 + n - 1), true
		case n == 11:
			return keyF11, true
		case n == 12:
			return keyF12, true
		case n >= 13 && n <= 24:
			return uint16(keyF13 + n - 13), true
		}
	}

	return 0, false
}

// modifierCodes lists the evdev key codes that satisfy a hotkey.Modifier,
// since most modifiers have distinct left/right variants.
func modifierCodes(m hotkey.Modifier) []uint16 {
	switch m {
	case hotkey.Ctrl, hotkey.CmdOrCtrl:
		return []uint16{keyLeftCtrl, keyRightCtrl}
	case hotkey.Alt:
		return []uint16{keyLeftAlt, keyRightAlt}
	case hotkey.Shift:
		return []uint16{keyLeftShift, keyRightShift}
	case hotkey.Cmd, hotkey.Super:
		return []uint16{keyLeftMeta, keyRightMeta}
	default:
		return nil
	}
}

const (
	evKey       = 1
	inputEventV1Size = 24 // struct input_event on 64-bit Linux: timeval{int64,int64} + u16 type + u16 code + s32 value
)

// LinuxEvdevWatcher delivers hotkey edges by reading raw /dev/input/event*
// nodes: it tracks modifier key state and fires an edge when the bound key
// transitions while every required modifier is held.
type LinuxEvdevWatcher struct {
	Binding hotkey.Binding

	// devicePaths overrides device discovery in tests.
	devicePaths []string
}

// NewLinuxEvdevWatcher builds a watcher for the given parsed binding.
func NewLinuxEvdevWatcher(binding hotkey.Binding) *LinuxEvdevWatcher {
	return &LinuxEvdevWatcher{Binding: binding}
}

// NewPlatformWatcher builds the platform's global hotkey watcher.
func NewPlatformWatcher(binding hotkey.Binding) HotkeyWatcher {
	return NewLinuxEvdevWatcher(binding)
}

func (w *LinuxEvdevWatcher) Watch(ctx context.Context) (<-chan Edge, error) {
	if w.Binding.Key == "Fn" {
		return nil, &HotkeyInactiveError{Key: "Fn", Platform: runtime.GOOS}
	}

	targetCode, ok := keyCodeFor(w.Binding.Key)
	if !ok {
		return nil, fmt.Errorf("evdev watcher: unsupported key %q", w.Binding.Key)
	}

	paths := w.devicePaths
	if paths == nil {
		var err error
		paths, err = discoverKeyboardDevices()
		if err != nil {
			return nil, fmt.Errorf("discover input devices: %w", err)
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("evdev watcher: no readable keyboard device found under /dev/input")
	}

	out := make(chan Edge, 8)
	state := &modifierState{}

	for _, path := range paths {
		fd, err := unix.Open(path, unix.O_RDONLY, 0)
		if err != nil {
			continue
		}
		go readKeyboardEvents(ctx, fd, targetCode, w.Binding.Modifiers, state, out)
	}

	go func() {
		<-ctx.Done()
		close(out)
	}()

	return out, nil
}

// modifierState tracks which modifier key codes are currently held, shared
// across every opened device so a combo spanning two keyboards still works.
type modifierState struct {
	mu   sync.Mutex
	held map[uint16]bool
}

func (s *modifierState) set(code uint16, down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.held == nil {
		s.held = make(map[uint16]bool)
	}
	s.held[code] = down
}

func (s *modifierState) isHeld(code uint16) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.held[code]
}

func readKeyboardEvents(ctx context.Context, fd int, targetCode uint16, required map[hotkey.Modifier]bool, state *modifierState, out chan<- Edge) {
	defer unix.Close(fd)

	buf := make([]byte, inputEventV1Size*16)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, err := unix.Read(fd, buf)
		if err != nil || n < inputEventV1Size {
			return
		}

		for offset := 0; offset+inputEventV1Size <= n; offset += inputEventV1Size {
			eventType := binary.LittleEndian.Uint16(buf[offset+16 : offset+18])
			code := binary.LittleEndian.Uint16(buf[offset+18 : offset+20])
			value := int32(binary.LittleEndian.Uint32(buf[offset+20 : offset+24]))
			if eventType != evKey {
				continue
			}

			if value == 2 {
				// Auto-repeat is not an edge.
				continue
			}
			down := value == 1
			if isModifierCode(code) {
				state.set(code, down)
				continue
			}

			if code != targetCode {
				continue
			}
			if down && !modifiersSatisfied(required, state) {
				continue
			}
			select {
			case out <- Edge{Down: down}:
			case <-ctx.Done():
				return
			}
		}
	}
}

func isModifierCode(code uint16) bool {
	switch code {
	case keyLeftCtrl, keyRightCtrl, keyLeftAlt, keyRightAlt, keyLeftShift, keyRightShift, keyLeftMeta, keyRightMeta:
		return true
	default:
		return false
	}
}

func modifiersSatisfied(required map[hotkey.Modifier]bool, state *modifierState) bool {
	for m, on := range required {
		if !on {
			continue
		}
		satisfied := false
		for _, code := range modifierCodes(m) {
			if state.isHeld(code) {
				satisfied = true
				break
			}
		}
		if !satisfied {
			return false
		}
	}
	return true
}

// discoverKeyboardDevices lists every /dev/input/event* node; it does not
// probe device names, so non-keyboard nodes are included.
func discoverKeyboardDevices() ([]string, error) {
	entries, err := os.ReadDir("/dev/input")
	if err != nil {
		return nil, err
	}

	var candidates []string
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), "event") {
			continue
		}
		candidates = append(candidates, filepath.Join("/dev/input", entry.Name()))
	}
	return candidates, nil
}
