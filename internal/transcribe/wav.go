// Package transcribe drives the transcription CLI: it writes captured audio
// to a WAV file, spawns the resolved whisper.cpp executable, cleans the
// emitted text, and optionally re-runs at higher accuracy when the fast
// pass looks low-confidence.
//
// writePCM16WAV produces exactly the 16kHz mono PCM16 WAV the CLI contract
// requires: a 44-byte header followed by the raw samples.
package transcribe

import (
	"encoding/binary"
	"io"
)

// writePCM16WAV writes raw little-endian PCM bytes with a minimal WAV header.
func writePCM16WAV(w io.Writer, pcm []byte, sampleRate int, channels int) error {
	if channels <= 0 {
		channels = 1
	}
	const bitsPerSample = 16
	byteRate := sampleRate * channels * (bitsPerSample / 8)
	blockAlign := channels * (bitsPerSample / 8)

	chunkSize := uint32(36 + len(pcm))
	subChunk2Size := uint32(len(pcm))

	header := make([]byte, 44)
	copy(header[0:4], []byte("RIFF"))
	binary.LittleEndian.PutUint32(header[4:8], chunkSize)
	copy(header[8:12], []byte("WAVE"))
	copy(header[12:16], []byte("fmt "))
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], bitsPerSample)
	copy(header[36:40], []byte("data"))
	binary.LittleEndian.PutUint32(header[40:44], subChunk2Size)

	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err := w.Write(pcm)
	return err
}
