package ngram

import (
	"sort"

	model "predict-go/internal/model/ngram"
)

// Ranker orders the observed followers of a context by descending count.
// Ties keep first-insertion order from training.
type Ranker struct {
	store *FrequencyStore
}

// NewRanker creates a ranker over a frozen store
func NewRanker(store *FrequencyStore) (*Ranker, error) {
	if !store.Frozen() {
		return nil, ErrNotFrozen
	}
	return &Ranker{store: store}, nil
}

// Rank returns candidate next tokens for context, most frequent first. An
// unseen context yields an empty result, not an error.
func (r *Ranker) Rank(context model.Context) []string {
	ranked := r.RankWithCounts(context)
	if len(ranked) == 0 {
		return []string{}
	}

	tokens := make([]string, len(ranked))
	for i, f := range ranked {
		tokens[i] = f.Token
	}
	return tokens
}

// RankWithCounts is Rank with the observed count of each candidate
func (r *Ranker) RankWithCounts(context model.Context) []Follower {
	followers := r.store.Followers(context)
	// Followers arrive in insertion order; a stable sort keeps that order among equal counts
	sort.SliceStable(followers, func(i, j int) bool {
		return followers[i].Count > followers[j].Count
	})
	return followers
}

// Top returns at most k ranked candidates
func (r *Ranker) Top(context model.Context, k int) []string {
	ranked := r.Rank(context)
	if k >= 0 && len(ranked) > k {
		return ranked[:k]
	}
	return ranked
}

// Prediction is the answer to a free-form phrase
type Prediction struct {
	Context    model.Context `json:"context"`
	Candidates []Follower    `json:"candidates"`
}

// PredictFromPhrase uses the last min(len(phrase), n-1) tokens of phrase as the
// context. No shorter context is tried when that one is unseen.
func (r *Ranker) PredictFromPhrase(phrase []string) Prediction {
	contextLen := min(len(phrase), r.store.MaxOrder()-1)
	context := model.Context(phrase).Tail(contextLen)

	return Prediction{
		Context:    context,
		Candidates: r.RankWithCounts(context),
	}
}
