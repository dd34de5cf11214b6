package capture

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeStream struct {
	push []byte
}

func (f *fakeStream) run(ctx context.Context, session *CaptureSession) error {
	session.push(f.push)
	<-ctx.Done()
	return nil
}

func fakeOpener(chunk []byte) streamOpener {
	return func(ctx context.Context, input, fallback string) (recordStream, *CaptureSession, string, error) {
		session := newCaptureSession(streamSampleRate, 1, FormatI16)
		return &fakeStream{push: chunk}, session, "", nil
	}
}

func failingOpener(err error) streamOpener {
	return func(ctx context.Context, input, fallback string) (recordStream, *CaptureSession, string, error) {
		return nil, nil, "", err
	}
}

func newTestEngine(opener streamOpener) *Engine {
	e := NewEngine("default", "default", 1000)
	e.opener = opener
	return e
}

func TestEngineStartRecordingStop(t *testing.T) {
	chunk := sineWavePCM16(200, streamSampleRate, 500, 0.5)
	e := newTestEngine(fakeOpener(chunk))

	outcome, err := e.Start(context.Background())
	require.NoError(t, err)
	require.Equal(t, StartOK, outcome)
	require.Equal(t, Recording, e.State())

	// Give the worker goroutine a moment to push its chunk.
	time.Sleep(10 * time.Millisecond)

	result, ok := e.Stop()
	require.True(t, ok)
	require.Equal(t, Idle, e.State())
	require.NotEmpty(t, result.PCM16Mono16kHz)
}

func TestEngineStartWhileRunningReturnsAlreadyRunning(t *testing.T) {
	e := newTestEngine(fakeOpener(nil))
	_, err := e.Start(context.Background())
	require.NoError(t, err)

	outcome, err := e.Start(context.Background())
	require.NoError(t, err)
	require.Equal(t, StartAlreadyRunning, outcome)
}

func TestEngineStopWhenIdleReturnsFalse(t *testing.T) {
	e := newTestEngine(fakeOpener(nil))
	_, ok := e.Stop()
	require.False(t, ok)
}

func TestEngineStartMicOpenFailed(t *testing.T) {
	e := newTestEngine(failingOpener(&MicOpenError{Reason: "device busy"}))
	outcome, err := e.Start(context.Background())
	require.Error(t, err)
	require.Equal(t, StartMicOpenFailed, outcome)
	require.Equal(t, Idle, e.State())

	var micErr *MicOpenError
	require.True(t, errors.As(err, &micErr))
}

func TestEngineStartSetupIncomplete(t *testing.T) {
	e := newTestEngine(failingOpener(errors.New("no audio input devices found")))
	outcome, err := e.Start(context.Background())
	require.Error(t, err)
	require.Equal(t, StartSetupIncomplete, outcome)
}

func TestEngineCancelDiscardsSession(t *testing.T) {
	chunk := sineWavePCM16(200, streamSampleRate, 500, 0.5)
	e := newTestEngine(fakeOpener(chunk))

	_, err := e.Start(context.Background())
	require.NoError(t, err)

	e.Cancel()
	require.Equal(t, Idle, e.State())

	_, ok := e.Stop()
	require.False(t, ok)
}

func TestIsNoSpeechShortDuration(t *testing.T) {
	require.True(t, IsNoSpeech(Recorded{Duration: 100 * time.Millisecond, RMS: 0.2, PeakAmplitude: 0.5}))
}

func TestIsNoSpeechQuietSignal(t *testing.T) {
	require.True(t, IsNoSpeech(Recorded{Duration: time.Second, RMS: 0.001, PeakAmplitude: 0.005}))
}

func TestIsNoSpeechFalseForNormalSpeech(t *testing.T) {
	require.False(t, IsNoSpeech(Recorded{Duration: time.Second, RMS: 0.1, PeakAmplitude: 0.4}))
}
