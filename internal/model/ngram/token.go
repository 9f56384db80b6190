package ngram

import "strings"

// SentenceStart is the placeholder used as context before the first word of a sentence.
const SentenceStart = "<s>"

// Context is an ordered, fixed-length tuple of preceding tokens used as a lookup key.
// Contexts of different lengths are distinct keys even when one is a prefix of the other.
type Context []string

// String returns the context as a space-separated string
func (c Context) String() string {
	return strings.Join(c, " ")
}

// Len returns the context length
func (c Context) Len() int {
	return len(c)
}

// Tail returns the last k tokens of the context, or the whole context when k >= len
func (c Context) Tail(k int) Context {
	if k <= 0 {
		return Context{}
	}
	if k >= len(c) {
		return c
	}
	return c[len(c)-k:]
}
