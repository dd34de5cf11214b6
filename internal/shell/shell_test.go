package shell

import (
	"bytes"
	"encoding/json"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/dicktaint/internal/coordinator"
)

func TestStateChangedPayloadOmitsEmptyFields(t *testing.T) {
	raw, err := json.Marshal(StateChangedPayload{State: "idle", Transcript: "Hello world."})
	require.NoError(t, err)
	require.JSONEq(t, `{"state":"idle","transcript":"Hello world."}`, string(raw))

	raw, err = json.Marshal(StateChangedPayload{State: "error", Error: "mic busy"})
	require.NoError(t, err)
	require.JSONEq(t, `{"state":"error","error":"mic busy"}`, string(raw))
}

func TestPillStatusPayloadCarriesMonitorScope(t *testing.T) {
	raw, err := json.Marshal(PillStatusPayload{Message: "listening", State: "live", Visible: true, Monitor: "DP-1"})
	require.NoError(t, err)
	require.JSONEq(t, `{"message":"listening","state":"live","visible":true,"monitor":"DP-1"}`, string(raw))

	raw, err = json.Marshal(PillStatusPayload{State: "idle"})
	require.NoError(t, err)
	require.JSONEq(t, `{"message":"","state":"idle","visible":false}`, string(raw))
}

func TestPublisherDropsEventsBeforeStartup(t *testing.T) {
	p := &EventPublisher{}
	// Must not panic without a runtime context.
	p.HotkeyTriggered()
	p.StateChanged(coordinator.StateChangedEvent{State: coordinator.StateIdle})
	p.PillStatus(coordinator.PillStatusEvent{State: coordinator.PillIdle})

	win, err := p.PillWindowFactory("DP-1")
	require.NoError(t, err)
	win.SetPill(coordinator.PillStatusEvent{State: coordinator.PillLive, Visible: true})
	win.Close()
}

func TestTrayIconIsDecodablePNG(t *testing.T) {
	icon := trayIcon()
	require.NotEmpty(t, icon)

	img, err := png.Decode(bytes.NewReader(icon))
	require.NoError(t, err)
	require.Equal(t, 22, img.Bounds().Dx())
}
