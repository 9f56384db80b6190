package corpus

import (
	"sort"
	"strings"
)

// Tokenizer turns cleaned text into model tokens
type Tokenizer interface {
	// Tokenize splits text into tokens
	Tokenize(text string) []string

	// Granularity returns the name the tokenizer is registered under
	Granularity() string
}

// WordTokenizer splits on whitespace
type WordTokenizer struct{}

func (WordTokenizer) Tokenize(text string) []string {
	return strings.Fields(text)
}

func (WordTokenizer) Granularity() string {
	return "word"
}

// SpaceSymbol stands for a word boundary in character tokens
const SpaceSymbol = "_"

// CharTokenizer emits one token per character. Runs of whitespace become a
// single SpaceSymbol.
type CharTokenizer struct{}

func (CharTokenizer) Tokenize(text string) []string {
	text = strings.Join(strings.Fields(text), " ")
	tokens := make([]string, 0, len(text))
	for _, r := range text {
		if r == ' ' {
			tokens = append(tokens, SpaceSymbol)
			continue
		}
		tokens = append(tokens, string(r))
	}
	return tokens
}

func (CharTokenizer) Granularity() string {
	return "char"
}

// TokenizerRegistry manages tokenizers by granularity
type TokenizerRegistry struct {
	tokenizers map[string]Tokenizer
}

// NewTokenizerRegistry creates a registry with the word and char tokenizers
func NewTokenizerRegistry() *TokenizerRegistry {
	tr := &TokenizerRegistry{tokenizers: make(map[string]Tokenizer)}
	tr.Register(WordTokenizer{})
	tr.Register(CharTokenizer{})
	return tr
}

// Register adds or replaces the tokenizer for its granularity
func (tr *TokenizerRegistry) Register(tokenizer Tokenizer) {
	tr.tokenizers[tokenizer.Granularity()] = tokenizer
}

// GetTokenizer returns the tokenizer for a granularity
func (tr *TokenizerRegistry) GetTokenizer(granularity string) (Tokenizer, bool) {
	tokenizer, ok := tr.tokenizers[granularity]
	return tokenizer, ok
}

// SupportedGranularities returns the registered granularities, sorted
func (tr *TokenizerRegistry) SupportedGranularities() []string {
	names := make([]string, 0, len(tr.tokenizers))
	for name := range tr.tokenizers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
