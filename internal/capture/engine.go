package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// State is the observable lifecycle state of the CaptureEngine.
type State int

const (
	Idle State = iota
	Starting
	Recording
	Stopping
)

func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case Recording:
		return "recording"
	case Stopping:
		return "stopping"
	default:
		return "idle"
	}
}

// StartOutcome is returned by Engine.Start.
type StartOutcome int

const (
	StartOK StartOutcome = iota
	StartAlreadyRunning
	StartSetupIncomplete
	StartMicOpenFailed
)

const defaultStartTimeout = 5 * time.Second

// MicOpenError wraps the reason a microphone stream failed to open.
type MicOpenError struct {
	Reason string
}

func (e *MicOpenError) Error() string { return fmt.Sprintf("microphone open failed: %s", e.Reason) }

// Recorded is the finished, conditioned capture handed to the transcription driver.
type Recorded struct {
	PCM16Mono16kHz []byte
	Duration       time.Duration
	PeakAmplitude  float64
	RMS            float64
}

// recordStream abstracts the platform audio backend so Engine can be tested
// without a live PulseAudio server.
type recordStream interface {
	// run blocks, pushing captured chunks into session until ctx is canceled
	// or the stream ends on its own. It must return promptly after ctx is done.
	run(ctx context.Context, session *CaptureSession) error
}

type streamOpener func(ctx context.Context, input, fallback string) (recordStream, *CaptureSession, string, error)

// Engine is the single-slot microphone recorder. At most one
// CaptureSession exists at a time; Start/Stop/Cancel serialize through mu.
type Engine struct {
	cfg    func() (input, fallback string, micOpenTimeout time.Duration)
	opener streamOpener

	mu          sync.Mutex
	state       State
	session     *CaptureSession
	cancelWork  context.CancelFunc
	streamDone  chan error
	warningOnce string
}

// NewEngine builds an Engine that opens PulseAudio record streams on the
// input device, or on fallback when input cannot be opened, with
// micOpenTimeoutMS (5 s when not positive) as the start deadline.
func NewEngine(input, fallback string, micOpenTimeoutMS int) *Engine {
	timeout := time.Duration(micOpenTimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = defaultStartTimeout
	}
	return &Engine{
		cfg: func() (string, string, time.Duration) {
			return input, fallback, timeout
		},
		opener: openPulseStream,
	}
}

// State reports the engine's current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Start opens the microphone and begins accumulating a new CaptureSession.
func (e *Engine) Start(ctx context.Context) (StartOutcome, error) {
	e.mu.Lock()
	if e.state != Idle {
		e.mu.Unlock()
		return StartAlreadyRunning, nil
	}
	e.state = Starting
	e.mu.Unlock()

	input, fallback, timeout := e.cfg()
	startCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stream, session, warning, err := e.opener(startCtx, input, fallback)
	if err != nil {
		e.mu.Lock()
		e.state = Idle
		e.mu.Unlock()
		var micErr *MicOpenError
		if errors.As(err, &micErr) {
			return StartMicOpenFailed, err
		}
		return StartSetupIncomplete, err
	}

	workCtx, workCancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	e.mu.Lock()
	e.state = Recording
	e.session = session
	e.cancelWork = workCancel
	e.streamDone = done
	e.warningOnce = warning
	e.mu.Unlock()

	go func() {
		done <- stream.run(workCtx, session)
	}()

	return StartOK, nil
}

// Warning returns any fallback-selection warning from the most recent Start.
func (e *Engine) Warning() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.warningOnce
}

// Stop ends the active capture session, conditions the signal, and returns
// the result. If nothing is recording, ok is false.
func (e *Engine) Stop() (Recorded, bool) {
	e.mu.Lock()
	if e.state != Recording {
		e.mu.Unlock()
		return Recorded{}, false
	}
	e.state = Stopping
	session := e.session
	cancel := e.cancelWork
	done := e.streamDone
	e.mu.Unlock()

	session.signalStop()
	cancel()
	if done != nil {
		<-done
	}

	result := condition(session)

	e.mu.Lock()
	e.state = Idle
	e.session = nil
	e.cancelWork = nil
	e.streamDone = nil
	e.mu.Unlock()

	return result, true
}

// Cancel discards the active capture session without producing a result.
func (e *Engine) Cancel() {
	e.mu.Lock()
	if e.state == Idle {
		e.mu.Unlock()
		return
	}
	session := e.session
	cancel := e.cancelWork
	done := e.streamDone
	e.mu.Unlock()

	if session != nil {
		session.signalStop()
	}
	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	e.mu.Lock()
	e.state = Idle
	e.session = nil
	e.cancelWork = nil
	e.streamDone = nil
	e.mu.Unlock()
}

const targetSampleRate = 16000

// condition runs the signal-conditioning pipeline on an accumulated session
// and returns mono 16kHz signed PCM16 ready for WAV framing.
func condition(session *CaptureSession) Recorded {
	raw := session.snapshot()
	channelSamples := decodeInterleaved(raw, session.Channels, session.Format)
	mono := downmixDominant(channelSamples)
	mono = removeDCOffset(mono)
	mono = resampleLinear(mono, session.SampleRate, targetSampleRate)
	mono = trimSilence(mono, targetSampleRate)
	peak := peakAbs(mono)
	signalRMS := rms(mono)
	mono = normalizeGain(mono)

	return Recorded{
		PCM16Mono16kHz: floatToPCM16(mono),
		Duration:       time.Duration(len(mono)) * time.Second / targetSampleRate,
		PeakAmplitude:  peak,
		RMS:            signalRMS,
	}
}

const (
	// NoSpeechMinDuration is the minimum conditioned-audio length below which
	// a capture is treated as containing no speech.
	NoSpeechMinDuration = 300 * time.Millisecond
	noSpeechMinRMS      = 0.01
	noSpeechMinPeak     = 0.02
)

// IsNoSpeech reports whether a conditioned recording is too short or too
// quiet to plausibly contain speech, letting callers short-circuit before
// invoking the transcription CLI.
func IsNoSpeech(r Recorded) bool {
	return r.Duration < NoSpeechMinDuration || (r.RMS < noSpeechMinRMS && r.PeakAmplitude < noSpeechMinPeak)
}
