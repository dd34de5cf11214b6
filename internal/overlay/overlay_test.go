package overlay

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/dicktaint/internal/coordinator"
)

type fakeWindow struct {
	monitorID string
	pills     []coordinator.PillStatusEvent
	closed    bool
}

func (w *fakeWindow) SetPill(ev coordinator.PillStatusEvent) { w.pills = append(w.pills, ev) }
func (w *fakeWindow) Close()                                 { w.closed = true }

type fakeFleet struct {
	windows map[string]*fakeWindow
}

func (f *fakeFleet) factory(monitorID string) (Window, error) {
	w := &fakeWindow{monitorID: monitorID}
	f.windows[monitorID] = w
	return w, nil
}

func staticMonitors(ids ...string) func(context.Context) ([]string, error) {
	return func(context.Context) ([]string, error) { return ids, nil }
}

func TestRefreshCreatesOneWindowPerMonitor(t *testing.T) {
	fleet := &fakeFleet{windows: map[string]*fakeWindow{}}
	m := NewManager(nil, fleet.factory, 6)
	m.ListMonitors = staticMonitors("DP-1", "HDMI-A-1")

	require.NoError(t, m.Refresh(context.Background()))

	records := m.Records()
	require.Len(t, records, 2)
	require.Equal(t, "DP-1", records[0].MonitorID)
	require.Equal(t, "HDMI-A-1", records[1].MonitorID)
	require.False(t, records[0].Visible)
}

func TestRefreshCapsWindowCount(t *testing.T) {
	fleet := &fakeFleet{windows: map[string]*fakeWindow{}}
	m := NewManager(nil, fleet.factory, 6)
	m.ListMonitors = staticMonitors("m1", "m2", "m3", "m4", "m5", "m6", "m7", "m8")

	require.NoError(t, m.Refresh(context.Background()))
	require.Len(t, m.Records(), 6)
	require.NotContains(t, fleet.windows, "m7")
}

func TestRefreshClosesDepartedMonitors(t *testing.T) {
	fleet := &fakeFleet{windows: map[string]*fakeWindow{}}
	m := NewManager(nil, fleet.factory, 6)

	m.ListMonitors = staticMonitors("DP-1", "HDMI-A-1")
	require.NoError(t, m.Refresh(context.Background()))

	m.ListMonitors = staticMonitors("DP-1")
	require.NoError(t, m.Refresh(context.Background()))

	require.Len(t, m.Records(), 1)
	require.True(t, fleet.windows["HDMI-A-1"].closed)
	require.False(t, fleet.windows["DP-1"].closed)
}

func TestPillStatusFansOutAndTracksVisibility(t *testing.T) {
	fleet := &fakeFleet{windows: map[string]*fakeWindow{}}
	m := NewManager(nil, fleet.factory, 6)
	m.ListMonitors = staticMonitors("DP-1", "HDMI-A-1")
	require.NoError(t, m.Refresh(context.Background()))

	m.PillStatus(coordinator.PillStatusEvent{State: coordinator.PillLive, Message: "listening", Visible: true})

	for _, w := range fleet.windows {
		require.Len(t, w.pills, 1)
		require.Equal(t, coordinator.PillLive, w.pills[0].State)
	}
	for _, r := range m.Records() {
		require.True(t, r.Visible)
	}

	m.PillStatus(coordinator.PillStatusEvent{State: coordinator.PillIdle, Visible: false})
	for _, r := range m.Records() {
		require.False(t, r.Visible)
	}
}

func TestHotpluggedMonitorReplaysLastPill(t *testing.T) {
	fleet := &fakeFleet{windows: map[string]*fakeWindow{}}
	m := NewManager(nil, fleet.factory, 6)
	m.ListMonitors = staticMonitors("DP-1")
	require.NoError(t, m.Refresh(context.Background()))

	m.PillStatus(coordinator.PillStatusEvent{State: coordinator.PillWork, Message: "transcribing", Visible: true})

	m.ListMonitors = staticMonitors("DP-1", "HDMI-A-1")
	require.NoError(t, m.Refresh(context.Background()))

	late := fleet.windows["HDMI-A-1"]
	require.Len(t, late.pills, 1)
	require.Equal(t, coordinator.PillWork, late.pills[0].State)

	records := m.Records()
	require.Len(t, records, 2)
	require.True(t, records[1].Visible)
}

func TestRefreshPropagatesEnumerationFailure(t *testing.T) {
	m := NewManager(nil, nil, 6)
	m.ListMonitors = func(context.Context) ([]string, error) {
		return nil, errors.New("hyprctl not found")
	}
	require.Error(t, m.Refresh(context.Background()))
}

func TestCloseTearsDownEverything(t *testing.T) {
	fleet := &fakeFleet{windows: map[string]*fakeWindow{}}
	m := NewManager(nil, fleet.factory, 6)
	m.ListMonitors = staticMonitors("DP-1", "HDMI-A-1")
	require.NoError(t, m.Refresh(context.Background()))

	m.Close()
	require.Empty(t, m.Records())
	for _, w := range fleet.windows {
		require.True(t, w.closed)
	}
}
