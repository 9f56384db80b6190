package ngram

// DefaultFallbackScore is the score given to a (context, token) pair never seen in training
const DefaultFallbackScore = 0.1

// Smoother turns a raw follower count into a score. Scores are not normalized
// probabilities.
type Smoother interface {
	// Score computes the score for a follower observed count times
	Score(count int64) float64

	// Name returns the name of the smoothing scheme
	Name() string
}

// ConstantFallback scores observed pairs by their raw count and unseen pairs by a constant
type ConstantFallback struct {
	fallback float64
}

// NewConstantFallback creates a constant-fallback smoother
func NewConstantFallback(fallback float64) *ConstantFallback {
	if fallback <= 0 {
		fallback = DefaultFallbackScore
	}
	return &ConstantFallback{fallback: fallback}
}

func (s *ConstantFallback) Score(count int64) float64 {
	if count <= 0 {
		return s.fallback
	}
	return float64(count)
}

func (s *ConstantFallback) Name() string {
	return "ConstantFallback"
}
