package catalog

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/dicktaint/internal/device"
)

func TestListHasTwelveEntriesInFixedOrder(t *testing.T) {
	entries := List()
	require.Len(t, entries, 12)
	require.Equal(t, "tiny-en", entries[0].ID)
	require.Equal(t, "turbo", entries[11].ID)
}

func TestEvaluateAtMostOneRecommended(t *testing.T) {
	for _, ram := range []float64{0.5, 2, 4, 8, 16, 32, 64} {
		states := Evaluate(device.Profile{TotalMemoryGB: ram, LogicalCores: 4}, t.TempDir(), "")
		recommended := 0
		anyRunnable := false
		for _, s := range states {
			if s.LikelyRunnable {
				anyRunnable = true
			}
			if s.Recommended {
				recommended++
			}
		}
		require.LessOrEqual(t, recommended, 1, "ram=%v", ram)
		if anyRunnable {
			require.Equal(t, 1, recommended, "ram=%v should have exactly one recommendation", ram)
		}
	}
}

func TestEvaluate16GBRecommendsMediumEN(t *testing.T) {
	states := Evaluate(device.Profile{TotalMemoryGB: 16, LogicalCores: 8}, t.TempDir(), "")

	byID := map[string]RuntimeState{}
	for _, s := range states {
		byID[s.ID] = s
	}

	require.True(t, byID["medium-en"].Recommended)
	require.False(t, byID["large-v1"].LikelyRunnable)
	require.False(t, byID["large-v2"].LikelyRunnable)
	require.False(t, byID["large-v3"].LikelyRunnable)
}

func TestEvaluate4GBRecommendsBaseOrTinyEN(t *testing.T) {
	states := Evaluate(device.Profile{TotalMemoryGB: 4, LogicalCores: 2}, t.TempDir(), "")

	byID := map[string]RuntimeState{}
	for _, s := range states {
		byID[s.ID] = s
	}

	require.True(t, byID["base-en"].Recommended || byID["tiny-en"].Recommended)
}

func TestEvaluateMarksInstalled(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ggml-base.en.bin"), []byte("x"), 0o600))

	states := Evaluate(device.Profile{TotalMemoryGB: 8}, dir, "")
	for _, s := range states {
		if s.ID == "base-en" {
			require.True(t, s.Installed)
		} else {
			require.False(t, s.Installed)
		}
	}
}

func TestLookupUnknownModel(t *testing.T) {
	_, ok := Lookup("does-not-exist")
	require.False(t, ok)
}

func TestDownloadRejectsUnknownModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("fake-model-bytes"))
	}))
	defer server.Close()

	_, err := Download(server.Client(), "not-a-model", t.TempDir())
	require.ErrorAs(t, err, &ErrUnknownModel{})
}

func TestDeleteAbsentModelIsNotAnError(t *testing.T) {
	require.NoError(t, Delete("tiny-en", t.TempDir()))
}

func TestDeleteUnknownModel(t *testing.T) {
	err := Delete("nope", t.TempDir())
	require.ErrorAs(t, err, &ErrUnknownModel{})
}
