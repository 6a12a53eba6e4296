package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "gleeful:cart:"

// RedisStore keeps anonymous carts in redis as a JSON array per visitor.
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisStore wraps a redis client. ttl is refreshed on every Save.
func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(visitorID string) string { return redisKeyPrefix + visitorID }

func (s *RedisStore) Load(ctx context.Context, visitorID string) ([]uint, error) {
	raw, err := s.client.Get(ctx, redisKey(visitorID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis get cart")
	}
	var ids []uint
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, errors.Wrap(err, "decode cart")
	}
	return ids, nil
}

func (s *RedisStore) Save(ctx context.Context, visitorID string, ids []uint) error {
	if len(ids) == 0 {
		return s.Clear(ctx, visitorID)
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return errors.Wrap(err, "encode cart")
	}
	if err := s.client.Set(ctx, redisKey(visitorID), string(b), s.ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set cart")
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, visitorID string) error {
	if err := s.client.Del(ctx, redisKey(visitorID)).Err(); err != nil {
		return errors.Wrap(err, "redis del cart")
	}
	return nil
}
