package corpus

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonLetters = regexp.MustCompile(`[^a-z]+`)

// foldAccents decomposes letters and drops the combining marks, so "café"
// becomes "cafe" instead of losing its last letter
func foldAccents(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return folded
}

// Clean folds accents, lower-cases text, replaces every run of non a-z
// characters with a single space and trims the ends
func Clean(text string) string {
	text = strings.ToLower(foldAccents(text))
	text = nonLetters.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// SplitText cuts text at int(len(text)*ratio) bytes into a training and a test
// part. The cut may fall inside a word. ratio is clamped to [0, 1].
func SplitText(text string, ratio float64) (train, test string) {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	cut := int(float64(len(text)) * ratio)
	return text[:cut], text[cut:]
}
