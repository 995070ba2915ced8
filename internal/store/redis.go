package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps short-lived session state in Redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis store.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// revokedSessionKey returns the key marking a session ID as ended.
func revokedSessionKey(jti string) string {
	return fmt.Sprintf("session:revoked:%s", jti)
}

// RevokeSession marks a session ID as ended until ttl elapses.
func (s *RedisStore) RevokeSession(ctx context.Context, jti string, ttl time.Duration) error {
	return s.client.Set(ctx, revokedSessionKey(jti), "1", ttl).Err()
}

// IsSessionRevoked reports whether RevokeSession was called for jti.
func (s *RedisStore) IsSessionRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedSessionKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
