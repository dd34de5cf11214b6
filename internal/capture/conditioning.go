package capture

import (
	"encoding/binary"
	"math"
)

// decodeInterleaved converts raw accumulated bytes into per-channel float64
// frames in [-1, 1], regardless of the session's on-wire sample format.
func decodeInterleaved(raw []byte, channels int, format SampleFormat) [][]float64 {
	if channels <= 0 {
		channels = 1
	}

	var frameBytes int
	switch format {
	case FormatF32:
		frameBytes = 4
	default:
		frameBytes = 2
	}

	frameSize := frameBytes * channels
	frameCount := len(raw) / frameSize

	channelSamples := make([][]float64, channels)
	for c := range channelSamples {
		channelSamples[c] = make([]float64, frameCount)
	}

	for i := 0; i < frameCount; i++ {
		base := i * frameSize
		for c := 0; c < channels; c++ {
			off := base + c*frameBytes
			channelSamples[c][i] = decodeSample(raw[off:off+frameBytes], format)
		}
	}
	return channelSamples
}

func decodeSample(b []byte, format SampleFormat) float64 {
	switch format {
	case FormatF32:
		bits := binary.LittleEndian.Uint32(b)
		return float64(math.Float32frombits(bits))
	case FormatU16:
		v := binary.LittleEndian.Uint16(b)
		return (float64(v) - 32768.0) / 32768.0
	default: // FormatI16
		v := int16(binary.LittleEndian.Uint16(b))
		return float64(v) / 32768.0
	}
}

// downmixDominant collapses multi-channel frames to mono by keeping the one
// channel with the greatest total energy over the buffer rather than
// averaging — averaging a speaking channel against a silent channel
// attenuates the speaker, so dominance wins instead.
func downmixDominant(channels [][]float64) []float64 {
	if len(channels) == 0 {
		return nil
	}
	if len(channels) == 1 {
		return channels[0]
	}

	// Pick the channel with the greater total energy across the whole
	// buffer: cheaper than a per-sample switch and avoids introducing
	// discontinuities mid-word.
	best := 0
	bestEnergy := -1.0
	for c, samples := range channels {
		energy := 0.0
		for _, v := range samples {
			energy += v * v
		}
		if energy > bestEnergy {
			bestEnergy = energy
			best = c
		}
	}
	return channels[best]
}

// resampleLinear resamples mono samples from srcRate to dstRate using linear
// interpolation.
func resampleLinear(samples []float64, srcRate, dstRate int) []float64 {
	if srcRate <= 0 || dstRate <= 0 || srcRate == dstRate || len(samples) == 0 {
		return samples
	}

	ratio := float64(srcRate) / float64(dstRate)
	outLen := int(float64(len(samples)) / ratio)
	if outLen <= 0 {
		return nil
	}

	out := make([]float64, outLen)
	for i := 0; i < outLen; i++ {
		srcPos := float64(i) * ratio
		idx := int(srcPos)
		frac := srcPos - float64(idx)

		if idx+1 < len(samples) {
			out[i] = samples[idx]*(1-frac) + samples[idx+1]*frac
		} else {
			out[i] = samples[len(samples)-1]
		}
	}
	return out
}

// removeDCOffset subtracts the arithmetic mean from every sample.
func removeDCOffset(samples []float64) []float64 {
	if len(samples) == 0 {
		return samples
	}
	sum := 0.0
	for _, v := range samples {
		sum += v
	}
	mean := sum / float64(len(samples))

	out := make([]float64, len(samples))
	for i, v := range samples {
		out[i] = v - mean
	}
	return out
}

const (
	silenceEnergyThreshold = 0.004 // RMS below this is considered silence for trimming
	speechPadMillis        = 100
)

// trimSilence removes leading/trailing silence below an energy threshold,
// preserving a small speech pad at each edge.
func trimSilence(samples []float64, sampleRate int) []float64 {
	if len(samples) == 0 {
		return samples
	}

	const windowMillis = 20
	windowSize := sampleRate * windowMillis / 1000
	if windowSize < 1 {
		windowSize = 1
	}

	isSpeech := func(start int) bool {
		end := start + windowSize
		if end > len(samples) {
			end = len(samples)
		}
		return rms(samples[start:end]) >= silenceEnergyThreshold
	}

	first := -1
	for start := 0; start < len(samples); start += windowSize {
		if isSpeech(start) {
			first = start
			break
		}
	}
	if first == -1 {
		return nil
	}

	last := first
	for start := first; start < len(samples); start += windowSize {
		if isSpeech(start) {
			end := start + windowSize
			if end > len(samples) {
				end = len(samples)
			}
			last = end
		}
	}

	pad := sampleRate * speechPadMillis / 1000
	from := first - pad
	if from < 0 {
		from = 0
	}
	to := last + pad
	if to > len(samples) {
		to = len(samples)
	}
	return samples[from:to]
}

const (
	targetPeakLow  = 0.05
	targetPeakHigh = 0.95
	targetRMSLow   = 0.05
	targetRMSHigh  = 0.3
)

// normalizeGain scales the signal so very quiet recordings are boosted and
// near-clipping recordings are brought down, targeting RMS within a mid band.
func normalizeGain(samples []float64) []float64 {
	if len(samples) == 0 {
		return samples
	}

	peak := peakAbs(samples)
	if peak <= 0 {
		return samples
	}

	currentRMS := rms(samples)
	gain := 1.0
	switch {
	case peak < targetPeakLow:
		gain = (targetPeakLow / peak)
	case peak > targetPeakHigh:
		gain = targetPeakHigh / peak
	case currentRMS > 0 && currentRMS < targetRMSLow:
		gain = targetRMSLow / currentRMS
	case currentRMS > targetRMSHigh:
		gain = targetRMSHigh / currentRMS
	}

	// Never let the gain push the peak past clipping.
	if peak*gain > 0.98 {
		gain = 0.98 / peak
	}

	out := make([]float64, len(samples))
	for i, v := range samples {
		out[i] = v * gain
	}
	return out
}

func rms(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sumSquares := 0.0
	for _, v := range samples {
		sumSquares += v * v
	}
	return math.Sqrt(sumSquares / float64(len(samples)))
}

func peakAbs(samples []float64) float64 {
	peak := 0.0
	for _, v := range samples {
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	return peak
}

// floatToPCM16 converts conditioned float64 samples in [-1, 1] to
// little-endian signed 16-bit PCM bytes.
func floatToPCM16(samples []float64) []byte {
	out := make([]byte, len(samples)*2)
	for i, v := range samples {
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		binary.LittleEndian.PutUint16(out[i*2:i*2+2], uint16(int16(v*32767)))
	}
	return out
}
