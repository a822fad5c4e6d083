package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "inmo:session:"

// RedisStore persists sessions in Redis with a TTL, so abandoned
// conversations expire on their own.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed session store from a redis URL.
func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &RedisStore{client: redis.NewClient(opt), ttl: ttl}, nil
}

// NewRedisStoreWithClient wraps an existing client (used in tests).
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Load returns the stored session or a fresh one when the key is absent or
// the stored value cannot be decoded.
func (s *RedisStore) Load(ctx context.Context, userID string) (Session, error) {
	raw, err := s.client.Get(ctx, keyPrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return NewSession(userID), nil
	}
	if err != nil {
		return Session{}, err
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return NewSession(userID), nil
	}
	return sess, nil
}

// Save replaces the stored session and refreshes the TTL.
func (s *RedisStore) Save(ctx context.Context, userID string, sess Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, keyPrefix+userID, raw, s.ttl).Err()
}

// Reset discards the stored session.
func (s *RedisStore) Reset(ctx context.Context, userID string) error {
	return s.client.Del(ctx, keyPrefix+userID).Err()
}

// Ping checks connectivity for readiness probes.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

var _ Store = (*RedisStore)(nil)
