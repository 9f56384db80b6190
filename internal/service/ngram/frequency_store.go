package ngram

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	model "predict-go/internal/model/ngram"

	"go.uber.org/zap"
)

var (
	// ErrFrozen is returned when training is attempted after Freeze
	ErrFrozen = errors.New("frequency store is frozen")
	// ErrNotFrozen is returned when a reader is built over a store that is still training
	ErrNotFrozen = errors.New("frequency store has not been frozen")
	// ErrInvalidOrder is returned for a maximum order below 2
	ErrInvalidOrder = errors.New("max order must be >= 2")
)

// Follower is a token observed after a context together with its count
type Follower struct {
	Token string `json:"token"`
	Count int64  `json:"count"`
}

// FrequencyStore holds, for every context length 1..maxOrder-1, the tokens that
// followed each observed context and how often. Counts only ever grow while
// training; after Freeze the store is read-only and safe for concurrent readers
// without locking.
type FrequencyStore struct {
	maxOrder     int
	root         *TrieNode           // Root of the context trie (empty context, never counted)
	tokens       *internTable        // String interning shared by all orders
	vocabulary   map[uint32]struct{} // Tokens that appeared as a follower
	contexts     []int               // contexts[k] = observed contexts of length k
	totalTokens  int64               // Tokens consumed across all training passes
	passes       int                 // Number of Train calls
	observations int64               // Total (context, follower) increments
	frozen       atomic.Bool
	mu           sync.RWMutex // Guards the write phase
	logger       *zap.Logger
}

// NewFrequencyStore creates an empty store for contexts up to maxOrder-1 tokens
func NewFrequencyStore(maxOrder int, logger *zap.Logger) (*FrequencyStore, error) {
	if maxOrder < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidOrder, maxOrder)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FrequencyStore{
		maxOrder:   maxOrder,
		root:       NewTrieNode(0, 0),
		tokens:     newInternTable(),
		vocabulary: make(map[uint32]struct{}),
		contexts:   make([]int, maxOrder),
		logger:     logger,
	}, nil
}

// MaxOrder returns the configured maximum order n
func (s *FrequencyStore) MaxOrder() int {
	return s.maxOrder
}

// Train counts, for every context length k in 1..maxOrder-1, the token that
// follows each length-k window of tokens. Every call adds to the existing
// counts, so training the same corpus twice doubles every count.
func (s *FrequencyStore) Train(tokens []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.frozen.Load() {
		return ErrFrozen
	}

	s.passes++
	s.totalTokens += int64(len(tokens))

	for k := 1; k < s.maxOrder; k++ {
		// A corpus shorter than k+1 tokens yields an empty range for this order
		for i := 0; i+k < len(tokens); i++ {
			node := s.insertContext(tokens[i : i+k])
			followerID := s.tokens.intern(tokens[i+k])
			if len(node.followers) == 0 {
				s.contexts[k]++
			}
			node.increment(followerID)
			s.vocabulary[followerID] = struct{}{}
			s.observations++
		}
	}

	s.logger.Debug("Training pass complete",
		zap.Int("pass", s.passes),
		zap.Int("tokens", len(tokens)),
		zap.Int("vocabulary_size", len(s.vocabulary)),
	)

	return nil
}

// insertContext walks the trie along context, creating nodes as needed
func (s *FrequencyStore) insertContext(context []string) *TrieNode {
	current := s.root
	for depth, token := range context {
		id := s.tokens.intern(token)
		child, exists := current.children[id]
		if !exists {
			child = NewTrieNode(id, depth+1)
			current.children[id] = child
		}
		current = child
	}
	return current
}

// Freeze ends the write phase. It is idempotent.
func (s *FrequencyStore) Freeze() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.frozen.Swap(true) {
		return
	}

	s.logger.Info("Frequency store frozen",
		zap.Int("max_order", s.maxOrder),
		zap.Int("passes", s.passes),
		zap.Int64("total_tokens", s.totalTokens),
		zap.Int("vocabulary_size", len(s.vocabulary)),
	)
}

// Frozen reports whether the store has left the write phase
func (s *FrequencyStore) Frozen() bool {
	return s.frozen.Load()
}

// readLock takes the read lock only while the store can still change
func (s *FrequencyStore) readLock() func() {
	if s.frozen.Load() {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

// lookupContext finds the node for context without creating anything.
// It returns nil for empty, over-long or unseen contexts.
func (s *FrequencyStore) lookupContext(context model.Context) *TrieNode {
	if len(context) == 0 || len(context) >= s.maxOrder {
		return nil
	}

	current := s.root
	for _, token := range context {
		id, exists := s.tokens.lookup(token)
		if !exists {
			return nil
		}
		child, exists := current.children[id]
		if !exists {
			return nil
		}
		current = child
	}

	if len(current.followers) == 0 {
		return nil
	}
	return current
}

// Followers returns the followers of context in first-insertion order, or nil
// when the context was never observed
func (s *FrequencyStore) Followers(context model.Context) []Follower {
	defer s.readLock()()

	node := s.lookupContext(context)
	if node == nil {
		return nil
	}

	result := make([]Follower, len(node.followers))
	for i, f := range node.followers {
		result[i] = Follower{Token: s.tokens.token(f.tokenID), Count: f.count}
	}
	return result
}

// Count returns how often token followed context, zero when never observed
func (s *FrequencyStore) Count(context model.Context, token string) int64 {
	defer s.readLock()()

	node := s.lookupContext(context)
	if node == nil {
		return 0
	}
	id, exists := s.tokens.lookup(token)
	if !exists {
		return 0
	}
	return node.count(id)
}

// HasContext reports whether context was observed during training
func (s *FrequencyStore) HasContext(context model.Context) bool {
	defer s.readLock()()
	return s.lookupContext(context) != nil
}

// InVocabulary reports whether token has ever appeared as a follower. A token
// seen only at the very end of the training stream is not part of the vocabulary.
func (s *FrequencyStore) InVocabulary(token string) bool {
	defer s.readLock()()

	id, exists := s.tokens.lookup(token)
	if !exists {
		return false
	}
	_, ok := s.vocabulary[id]
	return ok
}

// Vocabulary returns all followed tokens, sorted
func (s *FrequencyStore) Vocabulary() []string {
	defer s.readLock()()

	vocab := make([]string, 0, len(s.vocabulary))
	for id := range s.vocabulary {
		vocab = append(vocab, s.tokens.token(id))
	}
	sort.Strings(vocab)
	return vocab
}

// VocabularySize returns the number of distinct followed tokens
func (s *FrequencyStore) VocabularySize() int {
	defer s.readLock()()
	return len(s.vocabulary)
}

// Stats returns statistics about the store
func (s *FrequencyStore) Stats() StoreStats {
	defer s.readLock()()

	var nodeCount int64
	countNodes(s.root, &nodeCount)

	perOrder := make(map[int]int, s.maxOrder-1)
	for k := 1; k < s.maxOrder; k++ {
		perOrder[k] = s.contexts[k]
	}

	return StoreStats{
		MaxOrder:         s.maxOrder,
		Passes:           s.passes,
		TotalTokens:      s.totalTokens,
		Observations:     s.observations,
		VocabularySize:   len(s.vocabulary),
		InternedTokens:   len(s.tokens.tokenToID),
		ContextsPerOrder: perOrder,
		TrieNodes:        nodeCount,
		Frozen:           s.frozen.Load(),
	}
}

// StoreStats contains statistics about a frequency store
type StoreStats struct {
	MaxOrder         int         `json:"max_order"`
	Passes           int         `json:"passes"`
	TotalTokens      int64       `json:"total_tokens"`
	Observations     int64       `json:"observations"`
	VocabularySize   int         `json:"vocabulary_size"`
	InternedTokens   int         `json:"interned_tokens"`
	ContextsPerOrder map[int]int `json:"contexts_per_order"`
	TrieNodes        int64       `json:"trie_nodes"`
	Frozen           bool        `json:"frozen"`
}
