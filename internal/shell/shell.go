// Package shell hosts the desktop app shell: a Wails window bound to the
// command surface, the runtime event bridge the coordinator publishes
// through, and the per-monitor overlay pill windows. The shell window is
// hide-on-close; the process keeps dictating in the background until the
// tray (or a signal) quits it.
package shell

import (
	"context"
	"log/slog"
	"sync"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/rbright/dicktaint/internal/commands"
	"github.com/rbright/dicktaint/internal/config"
	"github.com/rbright/dicktaint/internal/coordinator"
	"github.com/rbright/dicktaint/internal/httpboundary"
	"github.com/rbright/dicktaint/internal/overlay"
)

// Event channel names shared with the frontend.
const (
	EventHotkeyTriggered = "dictation:hotkey-triggered"
	EventStateChanged    = "dictation:state-changed"
	EventPillStatus      = "pill-status"
)

// StateChangedPayload is the dictation:state-changed wire shape.
type StateChangedPayload struct {
	State      string `json:"state"`
	Error      string `json:"error,omitempty"`
	Transcript string `json:"transcript,omitempty"`
}

// PillStatusPayload is the pill-status wire shape. Monitor is set when the
// event targets one monitor's overlay; empty means every overlay.
type PillStatusPayload struct {
	Message string `json:"message"`
	State   string `json:"state"`
	Visible bool   `json:"visible"`
	Monitor string `json:"monitor,omitempty"`
}

// EventPublisher bridges coordinator events onto the Wails runtime event
// bus. Events published before the runtime context arrives are dropped; the
// frontend cannot be listening yet anyway.
type EventPublisher struct {
	mu  sync.Mutex
	ctx context.Context
}

// Startup stores the Wails runtime context for push events.
func (p *EventPublisher) Startup(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ctx = ctx
}

func (p *EventPublisher) runtimeCtx() context.Context {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ctx
}

func (p *EventPublisher) HotkeyTriggered() {
	if ctx := p.runtimeCtx(); ctx != nil {
		wailsruntime.EventsEmit(ctx, EventHotkeyTriggered)
	}
}

func (p *EventPublisher) StateChanged(ev coordinator.StateChangedEvent) {
	if ctx := p.runtimeCtx(); ctx != nil {
		wailsruntime.EventsEmit(ctx, EventStateChanged, StateChangedPayload{
			State:      string(ev.State),
			Error:      ev.Error,
			Transcript: ev.Transcript,
		})
	}
}

func (p *EventPublisher) PillStatus(ev coordinator.PillStatusEvent) {
	if ctx := p.runtimeCtx(); ctx != nil {
		wailsruntime.EventsEmit(ctx, EventPillStatus, PillStatusPayload{
			Message: ev.Message,
			State:   string(ev.State),
			Visible: ev.Visible,
		})
	}
}

// PillWindowFactory builds overlay.Window values that render by emitting
// monitor-scoped pill-status events; the frontend places one transparent,
// always-on-top, click-through pill per monitor from them.
func (p *EventPublisher) PillWindowFactory(monitorID string) (overlay.Window, error) {
	return &pillWindow{publisher: p, monitorID: monitorID}, nil
}

type pillWindow struct {
	publisher *EventPublisher
	monitorID string
}

func (w *pillWindow) SetPill(ev coordinator.PillStatusEvent) {
	if ctx := w.publisher.runtimeCtx(); ctx != nil {
		wailsruntime.EventsEmit(ctx, EventPillStatus, PillStatusPayload{
			Message: ev.Message,
			State:   string(ev.State),
			Visible: ev.Visible,
			Monitor: w.monitorID,
		})
	}
}

func (w *pillWindow) Close() {
	if ctx := w.publisher.runtimeCtx(); ctx != nil {
		wailsruntime.EventsEmit(ctx, EventPillStatus, PillStatusPayload{
			Visible: false,
			State:   string(coordinator.PillIdle),
			Monitor: w.monitorID,
		})
	}
}

// Shell is the desktop app shell.
type Shell struct {
	cfg       config.Config
	logger    *slog.Logger
	api       *commands.API
	publisher *EventPublisher
	overlays  *overlay.Manager

	// OnStartup hooks run once the Wails runtime context exists; the runner
	// uses them to start the hotkey watcher loop and the IPC server.
	OnStartup []func(ctx context.Context)
}

// New builds the Shell.
func New(cfg config.Config, logger *slog.Logger, api *commands.API, publisher *EventPublisher, overlays *overlay.Manager) *Shell {
	if publisher == nil {
		publisher = &EventPublisher{}
	}
	return &Shell{cfg: cfg, logger: logger, api: api, publisher: publisher, overlays: overlays}
}

// Publisher returns the event bridge so the runner can hand it to the
// coordinator.
func (s *Shell) Publisher() *EventPublisher { return s.publisher }

// Run starts the Wails application and blocks until it exits. The window is
// hide-on-close; DICKTAINT_START_HIDDEN (via config) starts it hidden.
func (s *Shell) Run() error {
	return wails.Run(&options.App{
		Title:             "Dicktaint",
		Width:             440,
		Height:            600,
		StartHidden:       s.cfg.Overlay.StartHidden,
		HideWindowOnClose: true,
		AssetServer: &assetserver.Options{
			Handler: httpboundary.New(s.cfg.PublicDir),
		},
		OnStartup:  s.startup,
		OnShutdown: s.shutdown,
		Bind:       []interface{}{s.api},
	})
}

func (s *Shell) startup(ctx context.Context) {
	s.publisher.Startup(ctx)

	if s.overlays != nil {
		if err := s.overlays.Refresh(ctx); err != nil && s.logger != nil {
			s.logger.Warn("overlay refresh failed", "error", err)
		}
	}

	for _, hook := range s.OnStartup {
		go hook(ctx)
	}
}

func (s *Shell) shutdown(context.Context) {
	if s.overlays != nil {
		s.overlays.Close()
	}
}

// Show re-shows and focuses the shell window.
func (s *Shell) Show() {
	if ctx := s.publisher.runtimeCtx(); ctx != nil {
		wailsruntime.WindowShow(ctx)
	}
}

// Quit ends the Wails run loop.
func (s *Shell) Quit() {
	if ctx := s.publisher.runtimeCtx(); ctx != nil {
		wailsruntime.Quit(ctx)
	}
}
