package transcribe

import (
	"math"
	"regexp"
	"strings"
)

// artifactTokenPattern matches whisper.cpp's non-speech markers, bracketed or
// bare, case-insensitively.
var artifactTokenPattern = regexp.MustCompile(`(?i)\[?\b(BLANK_AUDIO|NOISE|MUSIC|SILENCE)\b\]?`)

// cleanText strips artifact tokens and collapses whitespace.
func cleanText(raw string) string {
	stripped := artifactTokenPattern.ReplaceAllString(raw, " ")
	return strings.Join(strings.Fields(stripped), " ")
}

const (
	lowInfoMinAlphaChars    = 8
	lowInfoMinDistinctWords = 2
	lowInfoRepeatFraction   = 0.6
)

// looksLowInformation reports whether cleaned text is short enough, or
// repetitive enough, to warrant an accuracy retry pass.
func looksLowInformation(text string) bool {
	if text == "" {
		return false // caller treats empty separately as NoSpeech
	}

	alpha := 0
	for _, r := range text {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			alpha++
		}
	}
	if alpha < lowInfoMinAlphaChars {
		return true
	}

	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return true
	}

	distinct := map[string]int{}
	for _, w := range words {
		distinct[w]++
	}
	if len(distinct) < lowInfoMinDistinctWords {
		return true
	}

	maxCount := 0
	for _, c := range distinct {
		if c > maxCount {
			maxCount = c
		}
	}
	if float64(maxCount)/float64(len(words)) > lowInfoRepeatFraction {
		return true
	}

	return false
}

// coverageScore ranks a candidate transcript by distinct-word count scaled
// by a length factor, used to pick between the fast and accuracy passes.
func coverageScore(text string) float64 {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return 0
	}
	distinct := map[string]struct{}{}
	for _, w := range words {
		distinct[w] = struct{}{}
	}
	return float64(len(distinct)) * math.Log2(float64(len(text)+1))
}
