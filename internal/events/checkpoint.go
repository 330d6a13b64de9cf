package events

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisCheckpointStore persists consumer checkpoints in Redis, generalizing
// the rate-limiter example pack's token-bucket-over-redis pattern onto
// durable offset tracking instead of request counting.
type RedisCheckpointStore struct {
	client *redis.Client
	key    string
}

// NewRedisCheckpointStore constructs a store keyed under key (one key per
// consumer group).
func NewRedisCheckpointStore(client *redis.Client, key string) *RedisCheckpointStore {
	return &RedisCheckpointStore{client: client, key: key}
}

// Save advances the checkpoint to offset.
func (s *RedisCheckpointStore) Save(ctx context.Context, offset string) error {
	return s.client.Set(ctx, s.key, offset, 0).Err()
}

// Load returns the last saved offset, or "" if none has been recorded.
func (s *RedisCheckpointStore) Load(ctx context.Context) (string, error) {
	val, err := s.client.Get(ctx, s.key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}
