// Package coordinator implements the hotkey-driven dictation lifecycle: it
// parses the hotkey DSL, edge-detects the configured global binding, drives
// the capture/transcription lifecycle, and publishes overlay and frontend
// events.
//
// The Controller keeps its state behind a mutex and receives its
// collaborators (engine, driver, indicator, publisher, ...) as interfaces;
// the state machine itself is a key-edge-driven
// Idle/StartInFlight/Listening/StopInFlight model.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/rbright/dicktaint/internal/capture"
	"github.com/rbright/dicktaint/internal/fsm"
	"github.com/rbright/dicktaint/internal/hotkey"
	"github.com/rbright/dicktaint/internal/indicator"
	"github.com/rbright/dicktaint/internal/ipc"
	"github.com/rbright/dicktaint/internal/settings"
	"github.com/rbright/dicktaint/internal/transcribe"
)

// Engine is the capture-lifecycle subset the coordinator drives.
type Engine interface {
	Start(ctx context.Context) (capture.StartOutcome, error)
	Stop() (capture.Recorded, bool)
	Cancel()
}

// Driver is the transcription-lifecycle subset the coordinator drives.
type Driver interface {
	Transcribe(ctx context.Context, pcm []byte, modelPath string) transcribe.Result
}

// Refiner optionally rewrites a transcript before it is committed.
type Refiner interface {
	Refine(ctx context.Context, transcript string) string
}

// FocusedInserter synthesizes a paste into the foreground external field.
type FocusedInserter interface {
	InsertText(ctx context.Context, text string) error
}

// SettingsReader is the subset of the settings store the coordinator reads.
type SettingsReader interface {
	Load() (settings.Settings, error)
}

// Controller drives one HotkeyCoordinator lifecycle. All state transitions
// happen on whichever goroutine calls HandleEdge; callers must serialize
// edges themselves (the watcher's delivery channel already does this).
type Controller struct {
	logger    *slog.Logger
	engine    Engine
	driver    Driver
	refiner   Refiner
	inserter  FocusedInserter
	settings  SettingsReader
	indicator indicator.Controller
	publisher Publisher

	// IsHostForeground reports whether the host application window
	// currently has focus; focused-field insertion only fires when it does
	// not. Defaults to "always backgrounded" because
	// foreground detection is a host-app/window-manager concern wired in
	// by the runner, not something the coordinator can determine alone.
	IsHostForeground func() bool

	mu            sync.Mutex
	state         fsm.State
	stopRequested bool
	queuedStart   bool
}

// New builds a Controller. Any of refiner/inserter/settings/indicator/
// publisher may be nil; engine and driver are required to do useful work.
func New(
	logger *slog.Logger,
	engine Engine,
	driver Driver,
	refiner Refiner,
	inserter FocusedInserter,
	settingsStore SettingsReader,
	ind indicator.Controller,
	publisher Publisher,
) *Controller {
	if ind == nil {
		ind = noopIndicator{}
	}
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &Controller{
		logger:           logger,
		engine:           engine,
		driver:           driver,
		refiner:          refiner,
		inserter:         inserter,
		settings:         settingsStore,
		indicator:        ind,
		publisher:        publisher,
		IsHostForeground: func() bool { return false },
		state:            fsm.StateIdle,
	}
}

// State returns the coordinator's current lifecycle state.
func (c *Controller) State() fsm.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Run consumes edges from watcher until ctx is canceled, dispatching each to
// HandleEdge in turn. Edges are processed one at a time on this goroutine so
// that a full down->up cycle always produces exactly one transcript or error
// event before the next cycle begins.
func (c *Controller) Run(ctx context.Context, watcher HotkeyWatcher) error {
	edges, err := watcher.Watch(ctx)
	if err != nil {
		var inactive *HotkeyInactiveError
		if errors.As(err, &inactive) {
			// Parsed-but-unmonitorable binding (Fn off macOS): the stored
			// binding survives, and the frontend is told why it won't fire.
			c.publisher.StateChanged(StateChangedEvent{State: StateError, Error: inactive.Error()})
			return inactive
		}
		return fmt.Errorf("start hotkey watcher: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case edge, ok := <-edges:
			if !ok {
				return nil
			}
			c.HandleEdge(ctx, edge.Down)
		}
	}
}

// ErrAlreadyRunning is returned by StartDictation when a capture cycle is
// already in flight.
var ErrAlreadyRunning = errors.New("dictation is already running")

// ErrNotRunning is returned by StopDictation when no capture cycle is live.
var ErrNotRunning = errors.New("dictation is not running")

// StartDictation begins a capture cycle from a command source (frontend
// call, IPC) rather than a key edge. It returns ErrAlreadyRunning when a
// cycle is in flight, or the start failure rendered as an error.
func (c *Controller) StartDictation(ctx context.Context) error {
	if c.State() != fsm.StateIdle {
		return ErrAlreadyRunning
	}
	c.beginStart(ctx)
	if c.State() != fsm.StateListening {
		return errors.New("unable to start recording")
	}
	return nil
}

// StopDictation completes the live capture cycle and returns its transcript.
// The same stop/transcribe path the hotkey uses runs here, so events are
// published identically; the transcript is additionally returned to the
// caller.
func (c *Controller) StopDictation(ctx context.Context) (string, error) {
	if c.State() != fsm.StateListening {
		return "", ErrNotRunning
	}
	transcript, failure := c.beginStop(ctx)
	if failure != "" {
		return "", errors.New(failure)
	}
	return transcript, nil
}

// HandleEdge applies one key-edge transition.
func (c *Controller) HandleEdge(ctx context.Context, down bool) {
	switch c.State() {
	case fsm.StateIdle:
		if down {
			c.beginStart(ctx)
		}
	case fsm.StateStartInFlight:
		if !down {
			c.mu.Lock()
			c.stopRequested = true
			c.mu.Unlock()
		}
	case fsm.StateListening:
		if !down {
			c.beginStop(ctx)
		}
	case fsm.StateStopInFlight:
		if down {
			c.mu.Lock()
			c.queuedStart = true
			c.mu.Unlock()
		}
	}
}

// Toggle drives the coordinator from a button-equivalent source (CLI/IPC/
// systray) rather than a physical key edge, reusing the same transition
// table: it behaves like whichever edge is meaningful in the current state.
func (c *Controller) Toggle(ctx context.Context) {
	switch c.State() {
	case fsm.StateIdle, fsm.StateStartInFlight:
		c.HandleEdge(ctx, true)
	case fsm.StateListening:
		c.HandleEdge(ctx, false)
	case fsm.StateStopInFlight:
		c.HandleEdge(ctx, true)
	}
}

// Cancel discards any in-flight capture and returns to Idle immediately.
func (c *Controller) Cancel(ctx context.Context) {
	state := c.State()
	if state != fsm.StateListening && state != fsm.StateStartInFlight {
		return
	}
	c.engine.Cancel()
	c.indicator.CueCancel(ctx)
	c.setState(fsm.EventCancelled)
	c.publisher.StateChanged(StateChangedEvent{State: StateIdle})
	c.publisher.PillStatus(PillStatusEvent{State: PillIdle, Visible: false})
	c.indicator.Hide(ctx)
}

func (c *Controller) beginStart(ctx context.Context) {
	c.setState(fsm.EventEdgeDown)
	c.publisher.HotkeyTriggered()
	c.publisher.PillStatus(PillStatusEvent{State: PillWork, Visible: true, Message: "starting"})

	outcome, err := c.engine.Start(ctx)
	if outcome != capture.StartOK {
		c.setState(fsm.EventStartFailed)
		message := "unable to start recording"
		if err != nil {
			message = err.Error()
		}
		c.indicator.ShowError(ctx, "Unable to start recording")
		c.publisher.StateChanged(StateChangedEvent{State: StateError, Error: message})
		c.publisher.PillStatus(PillStatusEvent{State: PillError, Visible: true, Message: message})
		return
	}

	c.mu.Lock()
	stopRequested := c.stopRequested
	c.stopRequested = false
	c.mu.Unlock()

	c.setState(fsm.EventStartSucceeded)
	c.indicator.ShowRecording(ctx)
	c.publisher.StateChanged(StateChangedEvent{State: StateListening})
	c.publisher.PillStatus(PillStatusEvent{State: PillLive, Visible: true, Message: "listening"})

	if stopRequested {
		c.beginStop(ctx)
	}
}

// beginStop runs the stop/transcribe half of a cycle and reports its outcome:
// the transcript on success, or the failure message otherwise.
func (c *Controller) beginStop(ctx context.Context) (string, string) {
	c.setState(fsm.EventEdgeUp)
	c.publisher.PillStatus(PillStatusEvent{State: PillWork, Visible: true, Message: "stopping"})

	recorded, ok := c.engine.Stop()
	c.indicator.CueStop(ctx)
	if !ok {
		c.finishCycle(ctx, StateChangedEvent{State: StateError, Error: "capture was not running"}, "capture was not running")
		return "", "capture was not running"
	}

	if capture.IsNoSpeech(recorded) {
		c.indicator.ShowError(ctx, "No speech detected")
		c.finishCycle(ctx, StateChangedEvent{State: StateError, Error: "no speech detected"}, "")
		return "", "no speech detected"
	}

	c.publisher.StateChanged(StateChangedEvent{State: StateProcessing})
	c.publisher.PillStatus(PillStatusEvent{State: PillWork, Visible: true, Message: "transcribing"})
	c.indicator.ShowTranscribing(ctx)

	modelPath := c.resolveModelPath()
	if modelPath == "" {
		c.indicator.ShowError(ctx, "No model selected")
		c.finishCycle(ctx, StateChangedEvent{State: StateError, Error: "no dictation model selected"}, "")
		return "", "no dictation model selected"
	}

	result := c.driver.Transcribe(ctx, recorded.PCM16Mono16kHz, modelPath)
	switch result.Outcome {
	case transcribe.Failed:
		message := "transcription failed"
		if result.FailureErr != nil {
			message = result.FailureErr.Error()
		}
		c.indicator.ShowError(ctx, "Transcription failed")
		c.finishCycle(ctx, StateChangedEvent{State: StateError, Error: message}, "")
		return "", message
	case transcribe.NoSpeech:
		c.indicator.ShowError(ctx, "No speech detected")
		c.finishCycle(ctx, StateChangedEvent{State: StateError, Error: "no speech detected"}, "")
		return "", "no speech detected"
	}

	text := result.Text
	if c.refiner != nil {
		text = c.refiner.Refine(ctx, text)
	}

	c.maybeInsertFocused(ctx, text)
	c.indicator.CueComplete(ctx)
	c.finishCycle(ctx, StateChangedEvent{State: StateIdle, Transcript: text}, "")
	return text, ""
}

// finishCycle transitions back to Idle, publishes the terminal event, and
// runs any queued deferred start latched while stopping.
func (c *Controller) finishCycle(ctx context.Context, ev StateChangedEvent, pillMessage string) {
	pillState := PillOK
	if ev.Error != "" {
		pillState = PillError
		pillMessage = ev.Error
	}

	c.publisher.StateChanged(ev)
	c.publisher.PillStatus(PillStatusEvent{State: pillState, Visible: true, Message: pillMessage})

	c.setState(fsm.EventStopFinished)
	c.indicator.Hide(ctx)

	c.mu.Lock()
	queued := c.queuedStart
	c.queuedStart = false
	c.mu.Unlock()

	if queued {
		c.beginStart(ctx)
	}
}

func (c *Controller) maybeInsertFocused(ctx context.Context, text string) {
	if c.inserter == nil || c.settings == nil || strings.TrimSpace(text) == "" {
		return
	}
	current, err := c.settings.Load()
	if err != nil || !current.FocusedInsert {
		return
	}
	if c.IsHostForeground != nil && c.IsHostForeground() {
		return
	}
	if err := c.inserter.InsertText(ctx, text); err != nil {
		c.logWarn("focused-field insertion failed", err)
	}
}

func (c *Controller) resolveModelPath() string {
	if c.settings == nil {
		return ""
	}
	current, err := c.settings.Load()
	if err != nil || current.SelectedModelPath == nil {
		return ""
	}
	return strings.TrimSpace(*current.SelectedModelPath)
}

func (c *Controller) setState(event fsm.Event) fsm.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, err := fsm.Transition(c.state, event)
	if err != nil {
		c.logWarn("coordinator fsm rejected transition", err)
		return c.state
	}
	c.state = next
	return next
}

func (c *Controller) logWarn(message string, err error) {
	if c.logger == nil {
		return
	}
	c.logger.Warn(message, "error", err)
}

// ResolveBinding parses and canonicalizes the configured trigger string,
// falling back to the provided default when settings has none.
func ResolveBinding(configured *string, fallback string) (hotkey.Binding, error) {
	raw := fallback
	if configured != nil && strings.TrimSpace(*configured) != "" {
		raw = *configured
	}
	return hotkey.Parse(raw)
}

// noopIndicator is used when no indicator.Controller is wired.
type noopIndicator struct{}

func (noopIndicator) ShowRecording(context.Context)     {}
func (noopIndicator) ShowTranscribing(context.Context)  {}
func (noopIndicator) ShowError(context.Context, string) {}
func (noopIndicator) CueStop(context.Context)           {}
func (noopIndicator) CueComplete(context.Context)       {}
func (noopIndicator) CueCancel(context.Context)         {}
func (noopIndicator) Hide(context.Context)              {}
func (noopIndicator) FocusedMonitor() string            { return "" }

// Handle serves the IPC command surface (status/toggle/stop/cancel).
func (c *Controller) Handle(ctx context.Context, req ipc.Request) ipc.Response {
	switch req.Command {
	case "status":
		return ipc.Response{OK: true, State: string(c.State()), Message: "status"}
	case "toggle":
		c.Toggle(ctx)
		return ipc.Response{OK: true, State: string(c.State()), Message: "toggle requested"}
	case "stop":
		c.HandleEdge(ctx, false)
		return ipc.Response{OK: true, State: string(c.State()), Message: "stop requested"}
	case "cancel":
		c.Cancel(ctx)
		return ipc.Response{OK: true, State: string(c.State()), Message: "cancel requested"}
	default:
		return ipc.Response{OK: false, State: string(c.State()), Error: fmt.Sprintf("unknown command: %s", req.Command)}
	}
}
