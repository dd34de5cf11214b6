// Package hotkey parses and canonicalizes the hotkey DSL: "Mod+Mod+...+Key"
// strings resolving to a Binding of modifier flags plus one main key token,
// with the macOS Fn specialization.
package hotkey

import (
	"fmt"
	"strings"
)

// Modifier is one of the six recognized modifier flags.
type Modifier int

const (
	CmdOrCtrl Modifier = iota
	Cmd
	Ctrl
	Alt
	Shift
	Super
)

// canonicalOrder is the fixed display order for rendering a binding.
var canonicalOrder = []Modifier{CmdOrCtrl, Cmd, Ctrl, Alt, Shift, Super}

func (m Modifier) String() string {
	switch m {
	case CmdOrCtrl:
		return "CmdOrCtrl"
	case Cmd:
		return "Cmd"
	case Ctrl:
		return "Ctrl"
	case Alt:
		return "Alt"
	case Shift:
		return "Shift"
	case Super:
		return "Super"
	default:
		return "Unknown"
	}
}

var modifierAliases = map[string]Modifier{
	"cmdorctrl":        CmdOrCtrl,
	"commandorcontrol": CmdOrCtrl,
	"cmd":              Cmd,
	"command":          Cmd,
	"ctrl":             Ctrl,
	"control":          Ctrl,
	"alt":              Alt,
	"option":           Alt,
	"shift":            Shift,
	"super":            Super,
	"meta":             Super,
	"win":              Super,
	"windows":          Super,
}

// keyAliases normalizes accepted key tokens to a canonical spelling.
var keyAliases = map[string]string{
	"space": "Space", "tab": "Tab", "enter": "Enter", "return": "Enter",
	"escape": "Escape", "esc": "Escape",
	"up": "Up", "down": "Down", "left": "Left", "right": "Right",
	"home": "Home", "end": "End", "pageup": "PageUp", "pagedown": "PageDown",
	"insert": "Insert", "delete": "Delete", "backspace": "Backspace",
	"fn": "Fn",
}

// Binding is the parsed form of a hotkey DSL string: a modifier set plus a
// single main key token.
type Binding struct {
	Modifiers map[Modifier]bool
	Key       string
}

// InvalidErr is the tagged parse failure.
type InvalidErr struct {
	Raw    string
	Reason string
}

func (e InvalidErr) Error() string {
	return fmt.Sprintf("invalid hotkey %q: %s", e.Raw, e.Reason)
}

// Parse converts a DSL string into a Binding. Parsing fails when: a token is
// empty, more than one main key is given, CmdOrCtrl is combined with Cmd or
// Ctrl, or Fn is combined with any modifier.
func Parse(raw string) (Binding, error) {
	tokens := strings.Split(raw, "+")
	if len(tokens) == 0 {
		return Binding{}, InvalidErr{Raw: raw, Reason: "empty binding"}
	}

	mods := map[Modifier]bool{}
	key := ""

	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			return Binding{}, InvalidErr{Raw: raw, Reason: "empty token"}
		}

		lower := strings.ToLower(tok)
		if m, ok := modifierAliases[lower]; ok {
			mods[m] = true
			continue
		}

		canonKey, ok := canonicalKey(tok)
		if !ok {
			return Binding{}, InvalidErr{Raw: raw, Reason: fmt.Sprintf("unrecognized token %q", tok)}
		}
		if key != "" {
			return Binding{}, InvalidErr{Raw: raw, Reason: "multiple main keys"}
		}
		key = canonKey
	}

	if key == "" {
		return Binding{}, InvalidErr{Raw: raw, Reason: "missing main key"}
	}
	if mods[CmdOrCtrl] && (mods[Cmd] || mods[Ctrl]) {
		return Binding{}, InvalidErr{Raw: raw, Reason: "CmdOrCtrl cannot combine with Cmd or Ctrl"}
	}
	if key == "Fn" && len(mods) > 0 {
		return Binding{}, InvalidErr{Raw: raw, Reason: "Fn must stand alone"}
	}

	return Binding{Modifiers: mods, Key: key}, nil
}

// canonicalKey normalizes a key token: A-Z, 0-9, F1-F24, and the named
// special keys. Returns ok=false for anything else.
func canonicalKey(tok string) (string, bool) {
	lower := strings.ToLower(tok)
	if alias, ok := keyAliases[lower]; ok {
		return alias, true
	}
	if len(tok) == 1 {
		c := tok[0]
		if c >= 'a' && c <= 'z' {
			return strings.ToUpper(tok), true
		}
		if c >= 'A' && c <= 'Z' {
			return tok, true
		}
		if c >= '0' && c <= '9' {
			return tok, true
		}
	}
	if len(tok) >= 2 && (tok[0] == 'F' || tok[0] == 'f') {
		rest := tok[1:]
		if n, ok := parseFunctionKeyNumber(rest); ok && n >= 1 && n <= 24 {
			return fmt.Sprintf("F%d", n), true
		}
	}
	return "", false
}

func parseFunctionKeyNumber(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// Display renders a Binding back to its canonical DSL string, in the fixed
// modifier order CmdOrCtrl, Cmd, Ctrl, Alt, Shift, Super, then the key.
// Parse(Display(b)) == b for any Binding produced by Parse.
func Display(b Binding) string {
	parts := make([]string, 0, len(b.Modifiers)+1)
	for _, m := range canonicalOrder {
		if b.Modifiers[m] {
			parts = append(parts, m.String())
		}
	}
	parts = append(parts, b.Key)
	return strings.Join(parts, "+")
}

// Equal reports whether two bindings represent the same key combination.
func Equal(a, b Binding) bool {
	if a.Key != b.Key {
		return false
	}
	if len(a.Modifiers) != len(b.Modifiers) {
		return false
	}
	for m := range a.Modifiers {
		if !b.Modifiers[m] {
			return false
		}
	}
	return true
}
