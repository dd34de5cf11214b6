package capture

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func sineWavePCM16(freqHz, sampleRate, durationMS int, amplitude float64) []byte {
	n := sampleRate * durationMS / 1000
	out := make([]byte, n*2)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(sampleRate)
		v := amplitude * math.Sin(2*math.Pi*float64(freqHz)*t)
		binary.LittleEndian.PutUint16(out[i*2:i*2+2], uint16(int16(v*32767)))
	}
	return out
}

func TestDecodeInterleavedMono(t *testing.T) {
	raw := sineWavePCM16(440, 16000, 10, 0.5)
	channels := decodeInterleaved(raw, 1, FormatI16)
	require.Len(t, channels, 1)
	require.NotEmpty(t, channels[0])
}

func TestDownmixDominantPicksLouderChannel(t *testing.T) {
	quiet := make([]float64, 100)
	loud := make([]float64, 100)
	for i := range loud {
		loud[i] = 0.8
	}
	mono := downmixDominant([][]float64{quiet, loud})
	require.Equal(t, loud, mono)
}

func TestRemoveDCOffsetZeroesMean(t *testing.T) {
	samples := []float64{0.5, 0.5, 0.5, 0.5}
	out := removeDCOffset(samples)
	for _, v := range out {
		require.InDelta(t, 0, v, 1e-9)
	}
}

func TestResampleLinearChangesLength(t *testing.T) {
	samples := make([]float64, 48000)
	out := resampleLinear(samples, 48000, 16000)
	require.InDelta(t, 16000, len(out), 2)
}

func TestResampleLinearNoOpWhenRatesMatch(t *testing.T) {
	samples := []float64{0.1, 0.2, 0.3}
	out := resampleLinear(samples, 16000, 16000)
	require.Equal(t, samples, out)
}

func TestTrimSilenceRemovesLeadingAndTrailingQuiet(t *testing.T) {
	sampleRate := 16000
	silence := make([]float64, sampleRate/2)
	speech := make([]float64, sampleRate/2)
	for i := range speech {
		speech[i] = 0.5
	}
	full := append(append(append([]float64{}, silence...), speech...), silence...)

	trimmed := trimSilence(full, sampleRate)
	require.Less(t, len(trimmed), len(full))
	require.Greater(t, len(trimmed), 0)
}

func TestTrimSilenceAllSilentReturnsEmpty(t *testing.T) {
	out := trimSilence(make([]float64, 16000), 16000)
	require.Empty(t, out)
}

func TestNormalizeGainBoostsQuietSignal(t *testing.T) {
	quiet := make([]float64, 1000)
	for i := range quiet {
		quiet[i] = 0.01
	}
	out := normalizeGain(quiet)
	require.Greater(t, peakAbs(out), peakAbs(quiet))
}

func TestNormalizeGainNeverClips(t *testing.T) {
	loud := make([]float64, 1000)
	for i := range loud {
		loud[i] = 0.99
	}
	out := normalizeGain(loud)
	require.LessOrEqual(t, peakAbs(out), 1.0)
}

func TestFloatToPCM16RoundTrips(t *testing.T) {
	samples := []float64{0, 0.5, -0.5, 1, -1}
	pcm := floatToPCM16(samples)
	require.Len(t, pcm, len(samples)*2)
	channels := decodeInterleaved(pcm, 1, FormatI16)
	require.Len(t, channels[0], len(samples))
	for i, v := range samples {
		require.InDelta(t, v, channels[0][i], 0.001)
	}
}
