// Package refine implements the optional local-LLM transcript post-edit
// pass against an Ollama-compatible endpoint, narrowed to local-only hosts.
package refine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Request mirrors Ollama's /api/generate request shape.
type Request struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// Response mirrors the single-shot (stream=false) /api/generate reply.
type Response struct {
	Response string `json:"response"`
}

// Refiner posts a transcript to a configured local generation endpoint and
// substitutes the response on success. It is a no-op when Endpoint is empty.
type Refiner struct {
	Endpoint    string
	Model       string
	Instruction string
	Timeout     time.Duration
	Client      *http.Client
	Logger      *slog.Logger
}

// New builds a Refiner, applying the DICKTAINT_REFINER_HOST override over
// the configured endpoint.
func New(endpoint, model, instruction string, timeoutMS int, logger *slog.Logger) Refiner {
	if override := strings.TrimSpace(os.Getenv("DICKTAINT_REFINER_HOST")); override != "" {
		endpoint = override
	}
	return Refiner{
		Endpoint:    normalizeHost(endpoint),
		Model:       model,
		Instruction: instruction,
		Timeout:     time.Duration(timeoutMS) * time.Millisecond,
		Client:      &http.Client{},
		Logger:      logger,
	}
}

// Enabled reports whether a refiner endpoint is configured.
func (r Refiner) Enabled() bool {
	return strings.TrimSpace(r.Endpoint) != ""
}

// Refine posts transcript to the endpoint and returns the refined text. Any
// failure (unreachable, non-2xx, malformed body) returns the original
// transcript unmodified and logs at warn level — refinement failures never
// surface as a dictation error.
func (r Refiner) Refine(ctx context.Context, transcript string) string {
	if !r.Enabled() || strings.TrimSpace(transcript) == "" {
		return transcript
	}

	parsed, err := url.Parse(r.Endpoint)
	if err != nil {
		r.warn("parse refiner endpoint", err)
		return transcript
	}
	host := parsed.Hostname()
	if ip := net.ParseIP(host); !strings.EqualFold(host, "localhost") && (ip == nil || !ip.IsLoopback()) {
		r.warn("refiner endpoint is not a local host", fmt.Errorf("host %q", host))
		return transcript
	}

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 4 * time.Second
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.Marshal(Request{
		Model:  r.Model,
		Prompt: makePrompt(r.Instruction, transcript),
		Stream: false,
	})
	if err != nil {
		r.warn("marshal refiner request", err)
		return transcript
	}

	url := strings.TrimRight(r.Endpoint, "/") + "/api/generate"
	req, err := http.NewRequestWithContext(runCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		r.warn("build refiner request", err)
		return transcript
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		r.warn("refiner request failed", err)
		return transcript
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		r.warn("refiner request failed", fmt.Errorf("status %d", resp.StatusCode))
		return transcript
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		r.warn("read refiner response", err)
		return transcript
	}

	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		r.warn("decode refiner response", err)
		return transcript
	}

	refined := strings.TrimSpace(out.Response)
	if refined == "" {
		return transcript
	}
	return refined
}

func (r Refiner) warn(message string, err error) {
	if r.Logger == nil {
		return
	}
	r.Logger.Warn(message, "error", err.Error())
}

// makePrompt wraps the transcript with the configured cleanup instruction.
func makePrompt(instruction, transcript string) string {
	if strings.TrimSpace(instruction) == "" {
		instruction = "Clean up this raw speech-to-text transcript into readable text while preserving the speaker's intent."
	}
	return fmt.Sprintf("%s\n\nTranscript:\n%s", instruction, transcript)
}

// normalizeHost ensures the endpoint carries an http(s) scheme, matching
// Ollama's own OLLAMA_HOST normalization behavior.
func normalizeHost(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return ""
	}
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	return "http://" + endpoint
}
