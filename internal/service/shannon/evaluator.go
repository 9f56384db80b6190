// Package shannon plays Shannon's guessing game against a ranked next-token
// predictor and derives entropy, perplexity and redundancy from the ranks at
// which the true tokens were found.
//
// The entropy here is a rank-based proxy: a token found at guess r is charged
// log2(r) bits. It approximates per-token information content through the
// number of guesses needed and is not a cross-entropy over token probabilities.
package shannon

import (
	"errors"
	"math"
	"sort"

	model "predict-go/internal/model/ngram"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxEntropy is log2(27): 26 letters plus one separator. It is a
// character-level bound and is kept as the default even for word-level runs.
var DefaultMaxEntropy = math.Log2(27)

// ErrAlreadyPlayed is returned by Play on a strict evaluator that already ran
var ErrAlreadyPlayed = errors.New("evaluator has already played")

// Predictor ranks candidate next tokens for a context
type Predictor interface {
	Rank(context model.Context) []string
}

// State is the lifecycle position of an evaluator
type State int

const (
	NotStarted State = iota
	Played
	Reported
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Played:
		return "played"
	case Reported:
		return "reported"
	default:
		return "unknown"
	}
}

// Option configures an Evaluator
type Option func(*Evaluator)

// WithMaxEntropy overrides Hmax used for redundancy. Non-positive values are ignored.
func WithMaxEntropy(maxEntropy float64) Option {
	return func(e *Evaluator) {
		if maxEntropy > 0 {
			e.maxEntropy = maxEntropy
		}
	}
}

// WithStrictLifecycle makes a second Play call fail instead of accumulating
func WithStrictLifecycle() Option {
	return func(e *Evaluator) {
		e.strict = true
	}
}

// WithTopRanks sets how many rank rows a report shows
func WithTopRanks(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.topRanks = n
		}
	}
}

// Evaluator records, for each evaluated position, the rank at which the true
// next token appeared in the predictor's candidate list.
type Evaluator struct {
	id         string
	predictor  Predictor
	order      int
	maxEntropy float64
	topRanks   int
	strict     bool
	counts     map[int]int64 // rank -> occurrences
	skipped    int64
	state      State
	logger     *zap.Logger
}

// NewEvaluator creates an evaluator that uses contexts of order-1 tokens
func NewEvaluator(predictor Predictor, order int, logger *zap.Logger, opts ...Option) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Evaluator{
		id:         uuid.NewString(),
		predictor:  predictor,
		order:      order,
		maxEntropy: DefaultMaxEntropy,
		topRanks:   5,
		counts:     make(map[int]int64),
		state:      NotStarted,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ID returns the run identifier
func (e *Evaluator) ID() string {
	return e.id
}

// State returns the lifecycle state
func (e *Evaluator) State() State {
	return e.state
}

// Play slides a window of order-1 tokens over tokens. Positions whose context
// has no prediction are skipped; a true token missing from the ranked list is
// charged rank len(ranked)+1. Calling Play again adds to the same distribution
// unless the evaluator is strict.
func (e *Evaluator) Play(tokens []string) error {
	if e.strict && e.state != NotStarted {
		return ErrAlreadyPlayed
	}

	window := e.order - 1
	var observed, skipped int64

	if window > 0 {
		for i := 0; i+window < len(tokens); i++ {
			context := model.Context(tokens[i : i+window])
			trueNext := tokens[i+window]

			ranked := e.predictor.Rank(context)
			if len(ranked) == 0 {
				skipped++
				continue
			}

			e.counts[GuessRank(ranked, trueNext)]++
			observed++
		}
	}

	e.skipped += skipped
	e.state = Played

	e.logger.Info("Shannon game played",
		zap.String("run_id", e.id),
		zap.Int("tokens", len(tokens)),
		zap.Int64("observed", observed),
		zap.Int64("skipped", skipped),
	)
	return nil
}

// GuessRank returns the 1-indexed position of target in ranked, or
// len(ranked)+1 when target is absent
func GuessRank(ranked []string, target string) int {
	for i, candidate := range ranked {
		if candidate == target {
			return i + 1
		}
	}
	return len(ranked) + 1
}

// Total returns the number of recorded observations
func (e *Evaluator) Total() int64 {
	var total int64
	for _, c := range e.counts {
		total += c
	}
	return total
}

// Skipped returns the number of positions without any prediction
func (e *Evaluator) Skipped() int64 {
	return e.skipped
}

// Distribution returns a copy of the rank -> count distribution
func (e *Evaluator) Distribution() map[int]int64 {
	dist := make(map[int]int64, len(e.counts))
	for r, c := range e.counts {
		dist[r] = c
	}
	return dist
}

// sortedRanks returns the recorded ranks in ascending order
func (e *Evaluator) sortedRanks() []int {
	ranks := make([]int, 0, len(e.counts))
	for r := range e.counts {
		ranks = append(ranks, r)
	}
	sort.Ints(ranks)
	return ranks
}

// EstimateEntropy returns H = sum over ranks of P(r) * log2(r), or 0 with no observations
func (e *Evaluator) EstimateEntropy() float64 {
	total := e.Total()
	if total == 0 {
		return 0.0
	}

	entropy := 0.0
	for _, r := range e.sortedRanks() {
		probability := float64(e.counts[r]) / float64(total)
		entropy += probability * math.Log2(float64(r))
	}
	return entropy
}

// EstimatePerplexity returns 2^H
func (e *Evaluator) EstimatePerplexity() float64 {
	return math.Pow(2, e.EstimateEntropy())
}

// EstimateRedundancy returns 1 - entropy/Hmax
func (e *Evaluator) EstimateRedundancy(entropy float64) float64 {
	return Redundancy(entropy, e.maxEntropy)
}

// Redundancy returns 1 - entropy/maxEntropy, using DefaultMaxEntropy for a non-positive bound
func Redundancy(entropy, maxEntropy float64) float64 {
	if maxEntropy <= 0 {
		maxEntropy = DefaultMaxEntropy
	}
	return 1 - entropy/maxEntropy
}

// FirstGuessAccuracy returns the percentage of observations found at rank 1
func (e *Evaluator) FirstGuessAccuracy() float64 {
	return percentage(e.counts[1], e.Total())
}

func percentage(count, total int64) float64 {
	if total == 0 {
		return 0.0
	}
	return 100 * float64(count) / float64(total)
}
