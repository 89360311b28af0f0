package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces checkpoint keys inside a shared Redis instance.
const redisKeyPrefix = "stockintel:session:"

// RedisStore is a Redis implementation of Store[S].
//
// Checkpoints are stored as JSON values under one key per session; SET is
// atomic per key, which satisfies the per-session write serialization the
// Store contract requires.
//
// An optional TTL can expire dormant sessions. The default is no expiry:
// a suspended session may legitimately wait indefinitely for its human, and
// expiring it would make the session unresumable.
//
// Type parameter S is the session state type (must be JSON-serializable).
type RedisStore[S any] struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed store from a URL such as
// "redis://localhost:6379/0". A ttl of zero keeps checkpoints forever.
func NewRedisStore[S any](ctx context.Context, url string, ttl time.Duration) (*RedisStore[S], error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore[S]{client: client, ttl: ttl}, nil
}

// Save persists a checkpoint, overwriting any previous one for the session.
func (r *RedisStore[S]) Save(ctx context.Context, cp Checkpoint[S]) error {
	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	if err := r.client.Set(ctx, redisKeyPrefix+cp.SessionID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// Load returns the checkpoint for the session, or ErrNotFound.
func (r *RedisStore[S]) Load(ctx context.Context, sessionID string) (Checkpoint[S], error) {
	var cp Checkpoint[S]

	data, err := r.client.Get(ctx, redisKeyPrefix+sessionID).Bytes()
	if err == redis.Nil {
		return cp, ErrNotFound
	}
	if err != nil {
		return cp, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	if err := json.Unmarshal(data, &cp); err != nil {
		return cp, fmt.Errorf("failed to unmarshal checkpoint: %w", err)
	}
	return cp, nil
}

// Close releases the Redis client.
func (r *RedisStore[S]) Close() error {
	return r.client.Close()
}
