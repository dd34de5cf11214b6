// Package cli parses the dicktaind command line. The surface is small
// enough that a hand-rolled parser stays clearer than a flag framework.
package cli

import (
	"errors"
	"fmt"
	"strings"
)

type Command string

const (
	CommandDaemon        Command = "daemon"
	CommandDesktop       Command = "desktop"
	CommandToggle        Command = "toggle"
	CommandStop          Command = "stop"
	CommandCancel        Command = "cancel"
	CommandStatus        Command = "status"
	CommandDevices       Command = "devices"
	CommandDoctor        Command = "doctor"
	CommandOnboarding    Command = "onboarding"
	CommandInstallModel  Command = "install-model"
	CommandDeleteModel   Command = "delete-model"
	CommandGetTrigger    Command = "get-trigger"
	CommandSetTrigger    Command = "set-trigger"
	CommandClearTrigger  Command = "clear-trigger"
	CommandFocusedInsert Command = "focused-insert"
	CommandInsertText    Command = "insert-text"
	CommandSetupPage     Command = "setup-page"
	CommandVersion       Command = "version"
	CommandHelp          Command = "help"
)

// argRequired marks commands that take exactly one positional argument.
var argRequired = map[Command]string{
	CommandInstallModel:  "a model id",
	CommandDeleteModel:   "a model id",
	CommandSetTrigger:    "a hotkey binding",
	CommandFocusedInsert: "on or off",
	CommandInsertText:    "the text to insert",
}

var validCommands = map[Command]struct{}{
	CommandDaemon:        {},
	CommandDesktop:       {},
	CommandToggle:        {},
	CommandStop:          {},
	CommandCancel:        {},
	CommandStatus:        {},
	CommandDevices:       {},
	CommandDoctor:        {},
	CommandOnboarding:    {},
	CommandInstallModel:  {},
	CommandDeleteModel:   {},
	CommandGetTrigger:    {},
	CommandSetTrigger:    {},
	CommandClearTrigger:  {},
	CommandFocusedInsert: {},
	CommandInsertText:    {},
	CommandSetupPage:     {},
	CommandVersion:       {},
	CommandHelp:          {},
}

type Parsed struct {
	Command    Command
	Arg        string
	ConfigPath string
	ShowHelp   bool
}

func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
		case "--version":
			parsed.ShowHelp = false
			parsed.Command = CommandVersion
		case "--config":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--config requires a path")
			}
			parsed.ConfigPath = args[i]
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			cmd := Command(arg)
			if _, ok := validCommands[cmd]; !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}

			parsed.Command = cmd
			parsed.ShowHelp = cmd == CommandHelp

			if want, needsArg := argRequired[cmd]; needsArg {
				i++
				if i >= len(args) {
					return Parsed{}, fmt.Errorf("%s requires %s", cmd, want)
				}
				parsed.Arg = args[i]
			}

			if i != len(args)-1 {
				return Parsed{}, fmt.Errorf("unexpected arguments after command %q", arg)
			}
		}
	}

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] <command> [arg]

Session commands:
  daemon               Run the background dictation runtime (hotkey + tray + HTTP)
  desktop              Run the desktop shell window
  toggle               Start recording or stop+commit when already recording
  stop                 Stop active recording and commit transcript
  cancel               Cancel active recording and discard transcript
  status               Print current state

Setup commands:
  onboarding           Print the setup payload (device, CLI, models) as JSON
  install-model ID     Download a catalog model and select it
  delete-model ID      Delete an installed model (selection fails over)
  get-trigger          Print the dictation hotkey binding
  set-trigger BINDING  Set the dictation hotkey binding (e.g. "Ctrl+Shift+D")
  clear-trigger        Remove the dictation hotkey binding
  focused-insert ON    Enable or disable focused-field insertion (on|off)
  insert-text TEXT     Paste text into the focused external field
  setup-page           Open the whisper.cpp setup page

Diagnostics:
  devices              List available input devices
  doctor               Run configuration and environment checks
  version              Print version information
  help                 Show this help

Flags:
  --config PATH   Config file path (default: ~/.dicktaint/engine.conf)
  -h, --help      Show help
  --version       Show version
`, binaryName)
}
