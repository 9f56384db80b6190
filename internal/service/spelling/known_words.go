package spelling

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"
)

// KnownWords stores words that must never be corrected
type KnownWords interface {
	Add(ctx context.Context, word string) error
	Remove(ctx context.Context, word string) error
	All(ctx context.Context) ([]string, error)
}

// RedisKnownWords keeps known words in a Redis set
type RedisKnownWords struct {
	client redis.UniversalClient
	key    string
}

// NewRedisKnownWords creates a Redis-backed store under key
func NewRedisKnownWords(client redis.UniversalClient, key string) *RedisKnownWords {
	if key == "" {
		key = "known_words"
	}
	return &RedisKnownWords{client: client, key: key}
}

// Add inserts a word into the set
func (k *RedisKnownWords) Add(ctx context.Context, word string) error {
	return k.client.SAdd(ctx, k.key, normalizeWord(word)).Err()
}

// Remove deletes a word from the set
func (k *RedisKnownWords) Remove(ctx context.Context, word string) error {
	return k.client.SRem(ctx, k.key, normalizeWord(word)).Err()
}

// All returns every stored word
func (k *RedisKnownWords) All(ctx context.Context) ([]string, error) {
	return k.client.SMembers(ctx, k.key).Result()
}

func normalizeWord(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}
