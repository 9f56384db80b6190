package ngram

// follower is one token observed after a context, with its running count
type follower struct {
	tokenID uint32
	count   int64
}

// TrieNode represents one context in the context trie. The path from the root
// to a node spells the context; a node at depth k holds the followers of a
// length-k context.
type TrieNode struct {
	tokenID   uint32               // Token ID at this node
	depth     int                  // Context length this node represents
	children  map[uint32]*TrieNode // Children indexed by token ID
	followers []follower           // Followers in first-insertion order
	index     map[uint32]int       // token ID -> position in followers
}

// NewTrieNode creates a new trie node
func NewTrieNode(tokenID uint32, depth int) *TrieNode {
	return &TrieNode{
		tokenID:  tokenID,
		depth:    depth,
		children: make(map[uint32]*TrieNode),
		index:    make(map[uint32]int),
	}
}

// increment adds one to the follower count and reports whether the follower is new
func (n *TrieNode) increment(tokenID uint32) bool {
	if pos, exists := n.index[tokenID]; exists {
		n.followers[pos].count++
		return false
	}
	n.index[tokenID] = len(n.followers)
	n.followers = append(n.followers, follower{tokenID: tokenID, count: 1})
	return true
}

// count returns the follower count, zero when the token never followed this context
func (n *TrieNode) count(tokenID uint32) int64 {
	pos, exists := n.index[tokenID]
	if !exists {
		return 0
	}
	return n.followers[pos].count
}

// internTable maps token strings to dense IDs and back
type internTable struct {
	tokenToID map[string]uint32 // String to token ID mapping
	idToToken []string          // Token ID to string reverse mapping
	nextID    uint32            // Next available token ID
}

func newInternTable() *internTable {
	return &internTable{
		tokenToID: make(map[string]uint32),
		idToToken: []string{"<ROOT>"}, // ID 0 is reserved for root
		nextID:    1,
	}
}

// intern converts a token string to its ID, creating a new ID if needed
func (t *internTable) intern(token string) uint32 {
	if id, exists := t.tokenToID[token]; exists {
		return id
	}

	id := t.nextID
	t.nextID++
	t.tokenToID[token] = id
	t.idToToken = append(t.idToToken, token)
	return id
}

// lookup returns the ID of a token without creating one
func (t *internTable) lookup(token string) (uint32, bool) {
	id, exists := t.tokenToID[token]
	return id, exists
}

// token returns the token string for a given ID
func (t *internTable) token(id uint32) string {
	if int(id) < len(t.idToToken) {
		return t.idToToken[id]
	}
	return ""
}

// countNodes recursively counts all nodes below and including node
func countNodes(node *TrieNode, count *int64) {
	*count++
	for _, child := range node.children {
		countNodes(child, count)
	}
}
