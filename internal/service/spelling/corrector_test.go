package spelling

import (
	"context"
	"errors"
	"strings"
	"testing"

	model "predict-go/internal/model/ngram"
	"predict-go/internal/service/ngram"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const likeCorpus = "i like the cat and the ata runs i like the cat"

type memoryKnownWords struct {
	words map[string]struct{}
	err   error
}

func newMemoryKnownWords(words ...string) *memoryKnownWords {
	m := &memoryKnownWords{words: make(map[string]struct{})}
	for _, w := range words {
		m.words[w] = struct{}{}
	}
	return m
}

func (m *memoryKnownWords) Add(_ context.Context, word string) error {
	if m.err != nil {
		return m.err
	}
	m.words[word] = struct{}{}
	return nil
}

func (m *memoryKnownWords) Remove(_ context.Context, word string) error {
	if m.err != nil {
		return m.err
	}
	delete(m.words, word)
	return nil
}

func (m *memoryKnownWords) All(_ context.Context) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	words := make([]string, 0, len(m.words))
	for w := range m.words {
		words = append(words, w)
	}
	return words, nil
}

func newCorrector(t *testing.T, text string, cfg Config, known KnownWords) *Corrector {
	t.Helper()

	store, err := ngram.NewFrequencyStore(3, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, store.Train(strings.Fields(text)))
	store.Freeze()

	c, err := NewCorrector(store, cfg, known, zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestNewCorrector_RequiresFrozenStore(t *testing.T) {
	store, err := ngram.NewFrequencyStore(3, zap.NewNop())
	require.NoError(t, err)

	_, err = NewCorrector(store, DefaultConfig(), nil, zap.NewNop())
	assert.ErrorIs(t, err, ngram.ErrNotFrozen)
}

func TestCorrector_Candidates(t *testing.T) {
	c := newCorrector(t, likeCorpus, DefaultConfig(), nil)

	t.Run("known word is its own candidate", func(t *testing.T) {
		assert.Equal(t, []string{"cat"}, c.Candidates("cat"))
	})
	t.Run("distance one sorted", func(t *testing.T) {
		assert.Equal(t, []string{"ata", "cat"}, c.Candidates("cta"))
	})
	t.Run("distance two when nothing is one edit away", func(t *testing.T) {
		assert.Equal(t, []string{"the"}, c.Candidates("tehh"))
	})
	t.Run("unknown falls back to itself", func(t *testing.T) {
		assert.Equal(t, []string{"zzzzzzz"}, c.Candidates("zzzzzzz"))
	})
}

func TestCorrector_LongWordSkipsDistanceTwo(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxWordLength = 3
	c := newCorrector(t, likeCorpus, cfg, nil)

	assert.Equal(t, []string{"tehh"}, c.Candidates("tehh"))
	// Distance one is still searched
	assert.Equal(t, []string{"ata", "cat"}, c.Candidates("cta"))
	assert.Equal(t, []string{"cat"}, c.Candidates("catt"))
}

func TestCorrector_HugeTokenIsLeftAlone(t *testing.T) {
	c := newCorrector(t, likeCorpus, DefaultConfig(), nil)
	huge := strings.Repeat("a", 5000)

	assert.Equal(t, []string{huge}, c.Candidates(huge))
	assert.Equal(t, "i like "+huge, c.CorrectSentence("i lik "+huge))

	// No edits are generated for a token too long to reach any vocabulary word
	allocs := testing.AllocsPerRun(10, func() {
		c.Candidates(huge)
	})
	assert.Less(t, allocs, 10.0)
}

func TestCorrector_LongVocabularyWordAtDistanceOne(t *testing.T) {
	long := strings.Repeat("ab", 20)
	c := newCorrector(t, "x "+long+" y", DefaultConfig(), nil)

	// Over MaxWordLength but within reach of a vocabulary word
	assert.Equal(t, []string{long}, c.Candidates(long+"c"))
	assert.Equal(t, []string{long + "cc"}, c.Candidates(long+"cc"))
}

func TestCorrector_TransposedWordAnyContext(t *testing.T) {
	c := newCorrector(t, likeCorpus, DefaultConfig(), nil)

	assert.Equal(t, []string{"the"}, c.Candidates("teh"))
	assert.Equal(t, "the", c.Correct("teh", model.Context{"x", "y"}))
	assert.Equal(t, "the", c.Correct("teh", model.Context{"like", "cat"}))
}

func TestCorrector_CorrectSentenceUsesContext(t *testing.T) {
	c := newCorrector(t, likeCorpus, DefaultConfig(), nil)

	assert.Equal(t, "i like the cat", c.CorrectSentence("i lik the cta"))
	assert.Equal(t, "i like the cat", c.CorrectSentence("  I  LIKE the   cat "))
}

func TestCorrector_CorrectTieGoesToFirstCandidate(t *testing.T) {
	c := newCorrector(t, likeCorpus, DefaultConfig(), nil)

	// Neither candidate followed this context, both score the fallback
	assert.Equal(t, "ata", c.Correct("cta", model.Context{"lik", "the"}))
	assert.Equal(t, "cat", c.Correct("cta", model.Context{"like", "the"}))
}

func TestCorrector_EmptySentence(t *testing.T) {
	c := newCorrector(t, likeCorpus, DefaultConfig(), nil)

	assert.Equal(t, "", c.CorrectSentence(""))
	assert.Equal(t, "", c.CorrectSentence("   "))
	assert.Empty(t, c.CorrectSentenceDetailed(""))
}

func TestCorrector_CorrectSentenceDetailed(t *testing.T) {
	c := newCorrector(t, likeCorpus, DefaultConfig(), nil)

	corrections := c.CorrectSentenceDetailed("i lik the cta")
	require.Len(t, corrections, 4)

	first := corrections[0]
	assert.Equal(t, model.Context{model.SentenceStart, model.SentenceStart}, first.Context)
	assert.False(t, first.Changed)
	assert.Equal(t, 0, first.Distance)

	second := corrections[1]
	assert.Equal(t, "like", second.Corrected)
	assert.Equal(t, model.Context{model.SentenceStart, "i"}, second.Context)
	assert.True(t, second.Changed)
	assert.Equal(t, 1, second.Distance)

	last := corrections[3]
	assert.Equal(t, model.Context{"like", "the"}, last.Context)
	assert.Equal(t, []string{"ata", "cat"}, last.Candidates)
	assert.Equal(t, "cat", last.Corrected)
	assert.Equal(t, 2.0, last.Score)
	assert.Equal(t, 1, last.Distance)
}

func TestCorrector_KnownWordsAreNotCorrected(t *testing.T) {
	known := newMemoryKnownWords("lik")
	c := newCorrector(t, likeCorpus, DefaultConfig(), known)

	assert.Equal(t, "i like", c.CorrectSentence("i lik"))

	require.NoError(t, c.LoadKnownWords(context.Background()))
	assert.Equal(t, "i lik", c.CorrectSentence("i lik"))

	require.NoError(t, c.RemoveKnownWord(context.Background(), "LIK"))
	assert.Equal(t, "i like", c.CorrectSentence("i lik"))
	assert.NotContains(t, known.words, "lik")

	require.NoError(t, c.AddKnownWord(context.Background(), " Cta "))
	assert.Equal(t, "the cta", c.CorrectSentence("the cta"))
	assert.Contains(t, known.words, "cta")
}

func TestCorrector_KnownWordsStoreErrors(t *testing.T) {
	known := newMemoryKnownWords()
	known.err = errors.New("connection refused")
	c := newCorrector(t, likeCorpus, DefaultConfig(), known)

	assert.ErrorIs(t, c.LoadKnownWords(context.Background()), known.err)
	assert.ErrorIs(t, c.AddKnownWord(context.Background(), "cta"), known.err)
	assert.Equal(t, "cat", c.Correct("cta", model.Context{"like", "the"}))
}

func TestCorrector_WithoutKnownWordsStore(t *testing.T) {
	c := newCorrector(t, likeCorpus, DefaultConfig(), nil)

	require.NoError(t, c.LoadKnownWords(context.Background()))
	require.NoError(t, c.AddKnownWord(context.Background(), "cta"))
	assert.Equal(t, []string{"cta"}, c.Candidates("cta"))
}
