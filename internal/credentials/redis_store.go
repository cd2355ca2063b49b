package credentials

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DefaultRedisKey is the key holding the token when none is configured.
const DefaultRedisKey = "skillsync:token"

// RedisStore persists the token under a single redis key.
// Useful when several processes on different hosts share one identity.
type RedisStore struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

// NewRedisStore creates a redis backed token store.
// A zero ttl keeps the token until it is removed.
func NewRedisStore(rdb *redis.Client, key string, ttl time.Duration) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{rdb: rdb, key: key, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context) (string, error) {
	token, err := s.rdb.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrTokenNotFound
		}
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	if token == "" {
		return "", ErrTokenNotFound
	}
	return token, nil
}

func (s *RedisStore) Save(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	if err := s.rdb.Set(ctx, s.key, token, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	log.Debug().Str("key", s.key).Str("fingerprint", Fingerprint(token)).Msg("token saved")

	return nil
}

func (s *RedisStore) Remove(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}
