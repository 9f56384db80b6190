package spelling

import (
	"unicode/utf8"

	"github.com/bits-and-blooms/bloom/v3"
)

// VocabularyFilter answers exact vocabulary membership. A bloom filter rejects
// most non-words before the map is consulted, which matters for the hundreds
// of thousands of distance-2 edits of a long token.
type VocabularyFilter struct {
	bloom  *bloom.BloomFilter
	words  map[string]struct{}
	maxLen int // Longest word in runes
}

// NewVocabularyFilter builds a filter over words
func NewVocabularyFilter(words []string, falsePositiveRate float64) *VocabularyFilter {
	if falsePositiveRate <= 0 || falsePositiveRate >= 1 {
		falsePositiveRate = 0.01
	}

	expected := uint(len(words))
	if expected == 0 {
		expected = 1
	}

	f := &VocabularyFilter{
		bloom: bloom.NewWithEstimates(expected, falsePositiveRate),
		words: make(map[string]struct{}, len(words)),
	}
	for _, w := range words {
		f.bloom.AddString(w)
		f.words[w] = struct{}{}
		f.maxLen = max(f.maxLen, utf8.RuneCountInString(w))
	}
	return f
}

// Contains reports whether word is in the vocabulary
func (f *VocabularyFilter) Contains(word string) bool {
	if !f.bloom.TestString(word) {
		return false
	}
	_, ok := f.words[word]
	return ok
}

// Size returns the number of vocabulary words
func (f *VocabularyFilter) Size() int {
	return len(f.words)
}

// MaxLength returns the rune length of the longest vocabulary word
func (f *VocabularyFilter) MaxLength() int {
	return f.maxLen
}
