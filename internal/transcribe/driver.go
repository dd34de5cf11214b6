package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/rbright/dicktaint/internal/transcript"
)

// Outcome identifies how a Transcribe call resolved.
type Outcome int

const (
	Transcribed Outcome = iota
	NoSpeech
	Failed
)

// Result carries the cleaned text plus which pass produced it.
type Result struct {
	Outcome    Outcome
	Text       string
	RetriedAt  bool // true if the accuracy retry pass ran
	FailureErr error
}

const (
	sampleRate       = 16000
	fastBeam         = 2
	fastBestOf       = 2
	accuracyBeam     = 5
	accuracyBestOf   = 5
	minFastThreads   = 2
	maxFastThreads   = 8
	cliInvokeTimeout = 60 * time.Second
)

// clampThreads converts logical core count into a sane CLI thread budget.
func clampThreads(logicalCores int) int {
	if logicalCores < minFastThreads {
		return minFastThreads
	}
	if logicalCores > maxFastThreads {
		return maxFastThreads
	}
	return logicalCores
}

// Driver spawns the resolved whisper.cpp CLI against conditioned audio.
type Driver struct {
	CLIPath      string
	LogicalCores int
	RetryBeam    int
	RetryBestOf  int
}

// NewDriver builds a Driver bound to a resolved CLI path.
func NewDriver(cliPath string, logicalCores int) *Driver {
	return &Driver{
		CLIPath:      cliPath,
		LogicalCores: logicalCores,
		RetryBeam:    accuracyBeam,
		RetryBestOf:  accuracyBestOf,
	}
}

// Transcribe writes pcm16Mono16kHz to a scratch WAV, runs the fast pass, and
// conditionally retries at higher accuracy, returning the winning candidate.
func (d *Driver) Transcribe(ctx context.Context, pcm16Mono16kHz []byte, modelPath string) Result {
	workDir, err := os.MkdirTemp("", "dictation-transcribe-*")
	if err != nil {
		return Result{Outcome: Failed, FailureErr: fmt.Errorf("create scratch dir: %w", err)}
	}
	defer os.RemoveAll(workDir)

	wavPath := filepath.Join(workDir, "capture.wav")
	wavFile, err := os.Create(wavPath)
	if err != nil {
		return Result{Outcome: Failed, FailureErr: fmt.Errorf("create scratch wav: %w", err)}
	}
	writeErr := writePCM16WAV(wavFile, pcm16Mono16kHz, sampleRate, 1)
	closeErr := wavFile.Close()
	if writeErr != nil {
		return Result{Outcome: Failed, FailureErr: fmt.Errorf("write scratch wav: %w", writeErr)}
	}
	if closeErr != nil {
		return Result{Outcome: Failed, FailureErr: fmt.Errorf("close scratch wav: %w", closeErr)}
	}

	threads := clampThreads(d.LogicalCores)

	fastPrefix := filepath.Join(workDir, "fast")
	fastRaw, err := d.invoke(ctx, modelPath, wavPath, fastPrefix, threads, fastBeam, fastBestOf)
	if err != nil {
		return Result{Outcome: Failed, FailureErr: err}
	}

	fastText := cleanText(fastRaw)
	if fastText == "" {
		return Result{Outcome: NoSpeech}
	}

	if !looksLowInformation(fastText) {
		return Result{Outcome: Transcribed, Text: finalize(fastText)}
	}

	retryBeam := d.RetryBeam
	retryBestOf := d.RetryBestOf
	if retryBeam <= 0 {
		retryBeam = accuracyBeam
	}
	if retryBestOf <= 0 {
		retryBestOf = accuracyBestOf
	}

	retryPrefix := filepath.Join(workDir, "accurate")
	retryRaw, err := d.invoke(ctx, modelPath, wavPath, retryPrefix, threads, retryBeam, retryBestOf)
	if err != nil {
		// The fast pass already produced usable (if weak) text; prefer it
		// over failing the whole operation because the retry pass errored.
		return Result{Outcome: Transcribed, Text: finalize(fastText), RetriedAt: true}
	}

	retryText := cleanText(retryRaw)
	if retryText == "" {
		return Result{Outcome: Transcribed, Text: finalize(fastText), RetriedAt: true}
	}

	if coverageScore(retryText) >= coverageScore(fastText) {
		return Result{Outcome: Transcribed, Text: finalize(retryText), RetriedAt: true}
	}
	return Result{Outcome: Transcribed, Text: finalize(fastText), RetriedAt: true}
}

// finalize applies dictation casing normalization (sentence starts, the
// standalone pronoun "i") to the winning candidate before it leaves the
// driver.
func finalize(text string) string {
	return transcript.Normalize(text)
}

// invoke runs the whisper.cpp CLI with the given parameters and reads back
// the emitted plain-text file.
func (d *Driver) invoke(ctx context.Context, modelPath, wavPath, outPrefix string, threads, beam, bestOf int) (string, error) {
	invokeCtx, cancel := context.WithTimeout(ctx, cliInvokeTimeout)
	defer cancel()

	args := []string{
		"-m", modelPath,
		"-f", wavPath,
		"-l", "en",
		"-otxt",
		"-nt",
		"-np",
		"-of", outPrefix,
		"-t", strconv.Itoa(threads),
		"-bs", strconv.Itoa(beam),
		"-bo", strconv.Itoa(bestOf),
	}

	cmd := exec.CommandContext(invokeCtx, d.CLIPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &TranscriptionFailed{Stderr: stderr.String(), Cause: err}
	}

	out, err := os.ReadFile(outPrefix + ".txt")
	if err != nil {
		return "", &TranscriptionFailed{Stderr: stderr.String(), Cause: fmt.Errorf("read cli output: %w", err)}
	}
	return string(out), nil
}

// TranscriptionFailed reports a non-zero CLI exit or unreadable output file.
type TranscriptionFailed struct {
	Stderr string
	Cause  error
}

func (e *TranscriptionFailed) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("transcription cli failed: %v: %s", e.Cause, e.Stderr)
	}
	return fmt.Sprintf("transcription cli failed: %v", e.Cause)
}

func (e *TranscriptionFailed) Unwrap() error { return e.Cause }

// defaultLogicalCores reports runtime.NumCPU, used by callers that don't
// already have a DeviceProfile handy.
func defaultLogicalCores() int {
	return runtime.NumCPU()
}
