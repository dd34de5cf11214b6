// Package transcript repairs casing in dictated text. Whisper output is
// dependable about words but not about sentence starts or the pronoun "I",
// so the driver runs its winning candidate through Normalize before the
// text leaves the engine.
package transcript

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Normalize collapses runs of whitespace and repairs sentence-start and
// pronoun-"I" casing. It is idempotent: normalizing already-normalized text
// is a no-op.
func Normalize(text string) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	if collapsed == "" {
		return ""
	}
	return fixPronounI(capitalizeSentences(collapsed))
}

// capitalizeSentences upper-cases the first letter of the text and of every
// word that follows a sentence-ending ". ", "!" or "?" — where "sentence
// ending" is decided by endsSentence, not by the period alone.
func capitalizeSentences(text string) string {
	runes := []rune(text)

	var b strings.Builder
	b.Grow(len(text))

	atStart := true
	afterBoundary := false
	sawSpace := false

	for i, r := range runes {
		if atStart && unicode.IsLetter(r) {
			if !keepsLowercase(runes, i) {
				r = unicode.ToUpper(r)
			}
			atStart = false
			afterBoundary, sawSpace = false, false
		} else if afterBoundary {
			switch {
			case unicode.IsSpace(r):
				sawSpace = true
			case unicode.IsLetter(r):
				if sawSpace && !keepsLowercase(runes, i) {
					r = unicode.ToUpper(r)
				}
				afterBoundary, sawSpace = false, false
			case unicode.IsDigit(r):
				afterBoundary, sawSpace = false, false
			case isClosingPunct(r):
				// Still before the next word: supports `. "quoted start`.
			default:
				if !sawSpace {
					afterBoundary = false
				}
			}
		}

		b.WriteRune(r)

		switch r {
		case '.':
			afterBoundary = endsSentence(runes, i)
			sawSpace = false
		case '!', '?':
			afterBoundary = true
			sawSpace = false
		}
	}

	return b.String()
}

var (
	iContraction = regexp.MustCompile(`\bi['’](?:m|d|ll|ve|re|s)\b`)
	iAlone       = regexp.MustCompile(`\bi\b`)
)

// fixPronounI upper-cases the standalone pronoun "i" and its contractions,
// leaving dotted tokens like "i.e." alone.
func fixPronounI(text string) string {
	text = iContraction.ReplaceAllStringFunc(text, func(m string) string {
		return "I" + m[1:]
	})

	matches := iAlone.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))

	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		b.WriteString(text[last:start])
		if partOfDottedToken(text, start, end) {
			b.WriteString(text[start:end])
		} else {
			b.WriteString("I")
		}
		last = end
	}
	b.WriteString(text[last:])
	return b.String()
}

// partOfDottedToken reports an "i" that belongs to a dotted token ("i.e.",
// "f.y.i.") rather than the standalone pronoun.
func partOfDottedToken(text string, start, end int) bool {
	if end+1 < len(text) && text[end] == '.' {
		if r, _ := utf8.DecodeRuneInString(text[end+1:]); unicode.IsLetter(r) {
			return true
		}
	}
	if start > 1 && text[start-1] == '.' && end < len(text) && text[end] == '.' {
		if r, _ := utf8.DecodeLastRuneInString(text[:start-1]); unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
