// Package spelling corrects misspelled words with a noisy-channel argmax: the
// candidates are the vocabulary words at the smallest edit distance (1, then
// 2), and the one that most often followed the preceding context wins.
//
// The channel probability P(word|candidate) is taken as uniform within a
// distance tier and P(candidate|context) is replaced by the raw follower
// count, with a constant score for pairs never seen in training.
package spelling

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	model "predict-go/internal/model/ngram"
	"predict-go/internal/service/ngram"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/hbollon/go-edlib"
	"go.uber.org/zap"
)

// Config tunes candidate generation and scoring
type Config struct {
	Smoothing              float64 // Score for an unseen (context, candidate) pair
	Alphabet               string  // Substitution and insertion alphabet
	MaxWordLength          int     // Longer tokens only get distance-1 candidates; 0 disables the guard
	BloomFalsePositiveRate float64 // Vocabulary pre-filter error rate
}

// DefaultConfig returns the standard corrector settings
func DefaultConfig() Config {
	return Config{
		Smoothing:              ngram.DefaultFallbackScore,
		Alphabet:               DefaultAlphabet,
		MaxWordLength:          32,
		BloomFalsePositiveRate: 0.01,
	}
}

// Correction describes what happened to one token of a sentence
type Correction struct {
	Original   string        `json:"original"`
	Corrected  string        `json:"corrected"`
	Context    model.Context `json:"context"`
	Candidates []string      `json:"candidates"`
	Score      float64       `json:"score"`
	Distance   int           `json:"distance"`
	Changed    bool          `json:"changed"`
}

// Corrector is a context-aware spelling corrector over a frozen frequency store
type Corrector struct {
	store         *ngram.FrequencyStore
	vocab         *VocabularyFilter
	smoother      ngram.Smoother
	alphabet      []rune
	maxWordLength int
	known         KnownWords          // Optional persistent store of protected words
	protected     map[string]struct{} // In-memory copy of known words
	mu            sync.RWMutex        // Protects protected
	logger        *zap.Logger
}

// NewCorrector creates a corrector. known may be nil.
func NewCorrector(store *ngram.FrequencyStore, cfg Config, known KnownWords, logger *zap.Logger) (*Corrector, error) {
	if !store.Frozen() {
		return nil, ngram.ErrNotFrozen
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Alphabet == "" {
		cfg.Alphabet = DefaultAlphabet
	}

	vocabulary := store.Vocabulary()
	c := &Corrector{
		store:         store,
		vocab:         NewVocabularyFilter(vocabulary, cfg.BloomFalsePositiveRate),
		smoother:      ngram.NewConstantFallback(cfg.Smoothing),
		alphabet:      []rune(cfg.Alphabet),
		maxWordLength: cfg.MaxWordLength,
		known:         known,
		protected:     make(map[string]struct{}),
		logger:        logger,
	}

	logger.Info("Spelling corrector initialized",
		zap.Int("vocabulary_size", len(vocabulary)),
		zap.String("smoother", c.smoother.Name()),
		zap.Int("max_word_length", cfg.MaxWordLength),
	)
	return c, nil
}

// LoadKnownWords copies the persistent known words into memory
func (c *Corrector) LoadKnownWords(ctx context.Context) error {
	if c.known == nil {
		return nil
	}

	words, err := c.known.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to load known words: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, w := range words {
		c.protected[normalizeWord(w)] = struct{}{}
	}

	c.logger.Info("Loaded known words", zap.Int("count", len(words)))
	return nil
}

// AddKnownWord protects word from correction
func (c *Corrector) AddKnownWord(ctx context.Context, word string) error {
	word = normalizeWord(word)
	if c.known != nil {
		if err := c.known.Add(ctx, word); err != nil {
			return fmt.Errorf("failed to store known word: %w", err)
		}
	}

	c.mu.Lock()
	c.protected[word] = struct{}{}
	c.mu.Unlock()
	return nil
}

// RemoveKnownWord lifts the protection added by AddKnownWord
func (c *Corrector) RemoveKnownWord(ctx context.Context, word string) error {
	word = normalizeWord(word)
	if c.known != nil {
		if err := c.known.Remove(ctx, word); err != nil {
			return fmt.Errorf("failed to remove known word: %w", err)
		}
	}

	c.mu.Lock()
	delete(c.protected, word)
	c.mu.Unlock()
	return nil
}

func (c *Corrector) isProtected(word string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.protected[word]
	return ok
}

// Candidates returns the correction candidates for word, in lexicographic
// order: the word itself when known, else the vocabulary words one edit away,
// else those two edits away, else the word unchanged.
func (c *Corrector) Candidates(word string) []string {
	if c.vocab.Contains(word) || c.isProtected(word) {
		return []string{word}
	}

	// Each edit changes the length by at most one
	length := utf8.RuneCountInString(word)
	if length > c.vocab.MaxLength()+2 {
		return []string{word}
	}

	if c.maxWordLength > 0 && length > c.maxWordLength {
		// Distance 1 only, checked as generated
		hits := mapset.NewThreadUnsafeSet[string]()
		forEachEdit([]rune(word), c.alphabet, func(e1 string) {
			if c.vocab.Contains(e1) {
				hits.Add(e1)
			}
		})
		return sortedOr(hits, word)
	}

	edits1 := GenerateEdits(word, string(c.alphabet))
	if tier := c.filterKnown(edits1); len(tier) > 0 {
		return tier
	}

	// Distance-2 strings are checked as they are generated rather than collected
	hits := mapset.NewThreadUnsafeSet[string]()
	for _, e1 := range edits1.ToSlice() {
		forEachEdit([]rune(e1), c.alphabet, func(e2 string) {
			if c.vocab.Contains(e2) {
				hits.Add(e2)
			}
		})
	}
	return sortedOr(hits, word)
}

// sortedOr returns the sorted members of hits, or [word] when hits is empty
func sortedOr(hits mapset.Set[string], word string) []string {
	if hits.Cardinality() == 0 {
		return []string{word}
	}
	tier := hits.ToSlice()
	sort.Strings(tier)
	return tier
}

// filterKnown returns the sorted members of edits that are in the vocabulary
func (c *Corrector) filterKnown(edits mapset.Set[string]) []string {
	var known []string
	edits.Each(func(e string) bool {
		if c.vocab.Contains(e) {
			known = append(known, e)
		}
		return false
	})
	sort.Strings(known)
	return known
}

// Correct returns the candidate of word with the highest score after preceding.
// Ties go to the earlier candidate.
func (c *Corrector) Correct(word string, preceding model.Context) string {
	best, _ := c.choose(c.Candidates(word), preceding)
	return best
}

func (c *Corrector) choose(candidates []string, preceding model.Context) (string, float64) {
	best := ""
	bestScore := -1.0
	for _, candidate := range candidates {
		score := c.smoother.Score(c.store.Count(preceding, candidate))
		if score > bestScore {
			best, bestScore = candidate, score
		}
	}
	return best, bestScore
}

// CorrectSentence lower-cases and whitespace-splits sentence, corrects each
// word left to right and joins the result with single spaces
func (c *Corrector) CorrectSentence(sentence string) string {
	corrections := c.CorrectSentenceDetailed(sentence)

	words := make([]string, len(corrections))
	for i, corr := range corrections {
		words[i] = corr.Corrected
	}
	return strings.Join(words, " ")
}

// CorrectSentenceDetailed is CorrectSentence with per-token details. The
// context of each word is the two previously corrected words, padded with
// SentenceStart, so an early miscorrection feeds into later choices.
func (c *Corrector) CorrectSentenceDetailed(sentence string) []Correction {
	words := strings.Fields(strings.ToLower(sentence))
	corrections := make([]Correction, 0, len(words))

	prev2, prev1 := model.SentenceStart, model.SentenceStart
	for _, word := range words {
		preceding := model.Context{prev2, prev1}
		candidates := c.Candidates(word)
		best, score := c.choose(candidates, preceding)

		corr := Correction{
			Original:   word,
			Corrected:  best,
			Context:    preceding,
			Candidates: candidates,
			Score:      score,
			Changed:    best != word,
		}
		if corr.Changed {
			// The distance matrix is quadratic and unchanged words can be very long
			corr.Distance = edlib.OSADamerauLevenshteinDistance(word, best)
			c.logger.Debug("Corrected word",
				zap.String("original", word),
				zap.String("corrected", best),
				zap.String("context", preceding.String()),
				zap.Int("distance", corr.Distance),
				zap.Float64("score", score),
			)
		}

		corrections = append(corrections, corr)
		prev2, prev1 = prev1, best
	}
	return corrections
}
