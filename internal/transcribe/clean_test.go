package transcribe

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanTextStripsArtifactTokens(t *testing.T) {
	require.Equal(t, "hello world", cleanText("[BLANK_AUDIO] hello world [NOISE]"))
	require.Equal(t, "hello world", cleanText("hello NOISE world"))
	require.Equal(t, "", cleanText("[SILENCE]"))
	require.Equal(t, "", cleanText("  [blank_audio]   [music]  "))
}

func TestCleanTextCollapsesWhitespace(t *testing.T) {
	require.Equal(t, "a b c", cleanText("  a   b\nc  "))
}

func TestLooksLowInformationShortText(t *testing.T) {
	require.True(t, looksLowInformation("ok"))
}

func TestLooksLowInformationRepeatedWord(t *testing.T) {
	require.True(t, looksLowInformation("the the the the the the the the"))
}

func TestLooksLowInformationNormalSentence(t *testing.T) {
	require.False(t, looksLowInformation("the quick brown fox jumps over the lazy dog"))
}

func TestLooksLowInformationEmptyIsFalse(t *testing.T) {
	require.False(t, looksLowInformation(""))
}

func TestCoverageScoreRewardsDistinctWordsAndLength(t *testing.T) {
	short := coverageScore("hi hi")
	long := coverageScore("the quick brown fox jumps over the lazy dog")
	require.Greater(t, long, short)
}
