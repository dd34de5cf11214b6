// Package capture implements the single-slot microphone recorder with
// start/stop/cancel lifecycle and signal conditioning.
//
// Device listing, selection policy, and PulseAudio record-stream wiring
// follow the same conventions as elsewhere in this codebase, generalized
// from a continuous streaming source into an accumulate-then-stop
// CaptureSession model.
package capture

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

// Device describes one PulseAudio input source.
type Device struct {
	ID          string
	Description string
	State       string
	Available   bool
	Muted       bool
	Default     bool
}

// Selection is the resolved capture source plus optional fallback warning context.
type Selection struct {
	Device   Device
	Warning  string
	Fallback bool
}

// ListDevices returns available Pulse input sources with default/availability metadata.
func ListDevices(_ context.Context) ([]Device, error) {
	client, err := pulse.NewClient(
		pulse.ClientApplicationName("dicktaind"),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return nil, fmt.Errorf("connect pulse server: %w", err)
	}
	defer client.Close()

	defaultSource, err := client.DefaultSource()
	if err != nil {
		return nil, fmt.Errorf("read default source: %w", err)
	}
	defaultID := defaultSource.ID()

	var sourceInfos pulseproto.GetSourceInfoListReply
	if err := client.RawRequest(&pulseproto.GetSourceInfoList{}, &sourceInfos); err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	devices := make([]Device, 0, len(sourceInfos))
	for _, source := range sourceInfos {
		if source == nil {
			continue
		}
		devices = append(devices, Device{
			ID:          source.SourceName,
			Description: source.Device,
			State:       sourceStateString(source.State),
			Available:   sourceAvailable(source),
			Muted:       source.Mute,
			Default:     source.SourceName == defaultID,
		})
	}
	return devices, nil
}

// SelectDevice resolves input/fallback preferences against live devices.
func SelectDevice(ctx context.Context, input string, fallback string) (Selection, error) {
	devices, err := ListDevices(ctx)
	if err != nil {
		return Selection{}, err
	}
	return selectDeviceFromList(devices, input, fallback)
}

func selectDeviceFromList(devices []Device, input string, fallback string) (Selection, error) {
	if len(devices) == 0 {
		return Selection{}, errors.New("no audio input devices found")
	}

	var (
		defaultDevice *Device
		byInput       *Device
		byFallback    *Device
	)

	input = strings.TrimSpace(strings.ToLower(input))
	fallback = strings.TrimSpace(strings.ToLower(fallback))

	for i := range devices {
		dev := &devices[i]
		if dev.Default {
			defaultDevice = dev
		}
		if byInput == nil && input != "" && input != "default" && deviceMatches(*dev, input) {
			byInput = dev
		}
		if byFallback == nil && fallback != "" && fallback != "default" && deviceMatches(*dev, fallback) {
			byFallback = dev
		}
	}

	chooseDefault := func() (*Device, error) {
		if defaultDevice == nil {
			return nil, errors.New("default audio source is unavailable")
		}
		return defaultDevice, nil
	}

	selectPrimary := func() (*Device, error) {
		if input == "" || input == "default" {
			return chooseDefault()
		}
		if byInput != nil {
			return byInput, nil
		}
		return nil, fmt.Errorf("audio input %q did not match any device", input)
	}

	primary, err := selectPrimary()
	if err != nil {
		return Selection{}, err
	}
	if primary.Available && !primary.Muted {
		return Selection{Device: *primary}, nil
	}

	primaryReason := "unavailable"
	if primary.Muted {
		primaryReason = "muted"
	}

	fallbackDevice := primary
	if fallback != "" && fallback != "default" {
		if byFallback == nil {
			return Selection{}, fmt.Errorf("primary input %q is %s and fallback %q not found", primary.ID, primaryReason, fallback)
		}
		fallbackDevice = byFallback
	} else {
		d, derr := chooseDefault()
		if derr != nil {
			return Selection{}, fmt.Errorf("primary input %q is %s and no usable fallback: %w", primary.ID, primaryReason, derr)
		}
		fallbackDevice = d
	}

	if !fallbackDevice.Available {
		return Selection{}, fmt.Errorf("audio fallback device %q is not available", fallbackDevice.ID)
	}
	if fallbackDevice.Muted {
		return Selection{}, fmt.Errorf("audio fallback device %q is muted", fallbackDevice.ID)
	}

	return Selection{
		Device:   *fallbackDevice,
		Warning:  fmt.Sprintf("audio input %q is %s; falling back to %q", primary.ID, primaryReason, fallbackDevice.ID),
		Fallback: primary.ID != fallbackDevice.ID,
	}, nil
}

func deviceMatches(device Device, term string) bool {
	if term == "" {
		return false
	}
	id := strings.ToLower(device.ID)
	desc := strings.ToLower(device.Description)
	return strings.Contains(id, term) || strings.Contains(desc, term)
}

func sourceStateString(state uint32) string {
	switch state {
	case 0:
		return "running"
	case 1:
		return "idle"
	case 2:
		return "suspended"
	default:
		return fmt.Sprintf("unknown(%d)", state)
	}
}

func sourceAvailable(source *pulseproto.GetSourceInfoReply) bool {
	if source == nil {
		return false
	}
	if len(source.Ports) == 0 {
		return true
	}
	for _, port := range source.Ports {
		if port.Name != source.ActivePortName {
			continue
		}
		// PulseAudio values: unknown=0, no=1, yes=2.
		return port.Available == 0 || port.Available == 2
	}
	return true
}
