package capture

import (
	"context"
	"fmt"
	"io"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

const streamSampleRate = 16000
const streamChunkBytes = 640 // 20ms @ 16kHz mono s16

// pulseRecordStream adapts a jfreymuth/pulse RecordStream to the recordStream
// interface, feeding decoded chunks into a CaptureSession until canceled.
type pulseRecordStream struct {
	client *pulse.Client
	stream *pulse.RecordStream
	stopCh chan struct{}
}

func (p *pulseRecordStream) run(ctx context.Context, _ *CaptureSession) error {
	defer p.client.Close()
	p.stream.Start()
	defer p.stream.Stop()

	<-ctx.Done()
	close(p.stopCh)
	return nil
}

// openPulseStream resolves the input device (falling back per config) and
// opens a 16kHz mono s16 PulseAudio record stream into a fresh
// CaptureSession. It satisfies the streamOpener signature used by Engine.Start.
func openPulseStream(ctx context.Context, input, fallback string) (recordStream, *CaptureSession, string, error) {
	selection, err := SelectDevice(ctx, input, fallback)
	if err != nil {
		return nil, nil, "", &MicOpenError{Reason: err.Error()}
	}

	client, err := pulse.NewClient(
		pulse.ClientApplicationName("dicktaind"),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return nil, nil, "", &MicOpenError{Reason: fmt.Sprintf("connect pulse server: %v", err)}
	}

	source, err := client.SourceByID(selection.Device.ID)
	if err != nil {
		client.Close()
		return nil, nil, "", &MicOpenError{Reason: fmt.Sprintf("resolve source %q: %v", selection.Device.ID, err)}
	}

	session := newCaptureSession(streamSampleRate, 1, FormatI16)
	stopCh := make(chan struct{})

	onPCM := func(buffer []byte) (int, error) {
		if len(buffer) == 0 {
			return 0, nil
		}
		select {
		case <-stopCh:
			return 0, io.EOF
		default:
		}
		chunk := make([]byte, len(buffer))
		copy(chunk, buffer)
		session.push(chunk)
		return len(buffer), nil
	}

	writer := pulse.NewWriter(writerFunc(onPCM), pulseproto.FormatInt16LE)
	stream, err := client.NewRecord(
		writer,
		pulse.RecordSource(source),
		pulse.RecordMono,
		pulse.RecordSampleRate(streamSampleRate),
		pulse.RecordBufferFragmentSize(streamChunkBytes),
		pulse.RecordMediaName("dictation-capture"),
	)
	if err != nil {
		client.Close()
		return nil, nil, "", &MicOpenError{Reason: fmt.Sprintf("create pulse record stream: %v", err)}
	}

	return &pulseRecordStream{client: client, stream: stream, stopCh: stopCh}, session, selection.Warning, nil
}

// writerFunc adapts a plain func to io.Writer for pulse.NewWriter.
type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(b []byte) (int, error) { return f(b) }
