// Package redis implements the delivery-side collaborators of the outbox on
// top of Redis: the idempotency store, supporter notifications over Pub/Sub
// and the chat mode switch.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const DefaultIdempotencyPrefix = "flowerstand:idempotency:"

// IdempotencyStore remembers delivered outbox events. Keys expire after the
// TTL given to MarkProcessed.
type IdempotencyStore struct {
	client    goredis.UniversalClient
	keyPrefix string
}

// NewIdempotencyStore uses DefaultIdempotencyPrefix when keyPrefix is empty.
func NewIdempotencyStore(client goredis.UniversalClient, keyPrefix string) *IdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = DefaultIdempotencyPrefix
	}
	return &IdempotencyStore{client: client, keyPrefix: keyPrefix}
}

// MarkProcessed sets the key with SETNX. It returns false when the key was
// already there.
func (s *IdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("mark %s processed: %w", key, err)
	}
	return ok, nil
}

func (s *IdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.keyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("check %s: %w", key, err)
	}
	return n > 0, nil
}
