package refine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRefineDisabledReturnsOriginal(t *testing.T) {
	r := New("", "", "", 1000, nil)
	require.False(t, r.Enabled())
	require.Equal(t, "hello world", r.Refine(context.Background(), "hello world"))
}

func TestRefineSuccessSubstitutesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		var in Request
		require.NoError(t, json.NewDecoder(req.Body).Decode(&in))
		require.Contains(t, in.Prompt, "hello wrld")
		_ = json.NewEncoder(w).Encode(Response{Response: "Hello, world."})
	}))
	defer server.Close()

	r := New(server.URL, "llama3", "", 1000, nil)
	got := r.Refine(context.Background(), "hello wrld")
	require.Equal(t, "Hello, world.", got)
}

func TestRefineFailureReturnsOriginalTranscript(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	r := New(server.URL, "llama3", "", 1000, nil)
	got := r.Refine(context.Background(), "unchanged transcript")
	require.Equal(t, "unchanged transcript", got)
}

func TestRefineUnreachableReturnsOriginalTranscript(t *testing.T) {
	r := New("http://127.0.0.1:1", "llama3", "", 200, nil)
	got := r.Refine(context.Background(), "still here")
	require.Equal(t, "still here", got)
}

func TestNormalizeHostAddsScheme(t *testing.T) {
	r := New("localhost:11434", "", "", 1000, nil)
	require.Equal(t, "http://localhost:11434", r.Endpoint)
}
