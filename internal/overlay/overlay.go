// Package overlay owns the per-monitor pill overlay records: one
// transparent always-on-top window per connected monitor, capped, refreshed
// when monitors are plugged or unplugged, each mirroring the coordinator's
// pill-status events.
package overlay

import (
	"context"
	"log/slog"
	"sync"

	"github.com/rbright/dicktaint/internal/coordinator"
	"github.com/rbright/dicktaint/internal/hypr"
)

// DefaultMaxOverlays bounds how many overlay windows are ever created.
const DefaultMaxOverlays = 6

// Window is one pill overlay. Implementations render the pill however the
// host shell can: a Wails runtime event scoped to the owning monitor in
// desktop mode, or nothing at all in headless runs.
type Window interface {
	SetPill(ev coordinator.PillStatusEvent)
	Close()
}

// WindowFactory creates the overlay window for one monitor.
type WindowFactory func(monitorID string) (Window, error)

// Record is the manager's bookkeeping for one monitor's overlay.
type Record struct {
	MonitorID string
	Visible   bool
}

// Manager owns the overlay records. It implements the pill half of
// coordinator.Publisher; compose it with a frontend publisher for the rest.
type Manager struct {
	logger  *slog.Logger
	factory WindowFactory
	max     int

	// ListMonitors enumerates connected monitor ids. Defaults to hyprctl;
	// tests and non-Hyprland hosts substitute their own.
	ListMonitors func(ctx context.Context) ([]string, error)

	mu      sync.Mutex
	order   []string
	windows map[string]Window
	visible map[string]bool
	last    coordinator.PillStatusEvent
	hasLast bool
}

// NewManager builds a Manager. A nil factory yields windowless records,
// which still track visibility so callers can inspect overlay state.
func NewManager(logger *slog.Logger, factory WindowFactory, maxOverlays int) *Manager {
	if maxOverlays <= 0 {
		maxOverlays = DefaultMaxOverlays
	}
	if factory == nil {
		factory = func(string) (Window, error) { return noopWindow{}, nil }
	}
	return &Manager{
		logger:       logger,
		factory:      factory,
		max:          maxOverlays,
		ListMonitors: hypr.ListMonitors,
		windows:      map[string]Window{},
		visible:      map[string]bool{},
	}
}

// Refresh re-enumerates monitors and reconciles the overlay set: windows are
// created for newly seen monitors (up to the cap) and closed for departed
// ones. The latest pill state is replayed onto any window created here so a
// hotplugged monitor joins mid-cycle in the right state.
func (m *Manager) Refresh(ctx context.Context) error {
	monitors, err := m.ListMonitors(ctx)
	if err != nil {
		return err
	}
	if len(monitors) > m.max {
		monitors = monitors[:m.max]
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	seen := map[string]bool{}
	for _, id := range monitors {
		seen[id] = true
		if _, ok := m.windows[id]; ok {
			continue
		}
		win, err := m.factory(id)
		if err != nil {
			m.warn("create overlay window failed", id, err)
			continue
		}
		m.windows[id] = win
		m.visible[id] = false
		if m.hasLast {
			win.SetPill(m.last)
			m.visible[id] = m.last.Visible
		}
	}

	for id, win := range m.windows {
		if seen[id] {
			continue
		}
		win.Close()
		delete(m.windows, id)
		delete(m.visible, id)
	}

	m.order = monitors
	return nil
}

// PillStatus fans one pill-status event out to every overlay window.
func (m *Manager) PillStatus(ev coordinator.PillStatusEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.last = ev
	m.hasLast = true
	for id, win := range m.windows {
		win.SetPill(ev)
		m.visible[id] = ev.Visible
	}
}

// Records returns a snapshot of the current overlay set in monitor order.
func (m *Manager) Records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Record, 0, len(m.order))
	for _, id := range m.order {
		if _, ok := m.windows[id]; !ok {
			continue
		}
		out = append(out, Record{MonitorID: id, Visible: m.visible[id]})
	}
	return out
}

// Close tears down every overlay window.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, win := range m.windows {
		win.Close()
		delete(m.windows, id)
		delete(m.visible, id)
	}
	m.order = nil
}

func (m *Manager) warn(message, monitorID string, err error) {
	if m.logger == nil {
		return
	}
	m.logger.Warn(message, "monitor", monitorID, "error", err)
}

type noopWindow struct{}

func (noopWindow) SetPill(coordinator.PillStatusEvent) {}
func (noopWindow) Close()                              {}
