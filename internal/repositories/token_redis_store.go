package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	refreshTokenKeyPrefix = "refresh:"
	blacklistKeyPrefix    = "blacklist:"
	loginPayloadKeyPrefix = "kakao:login:"
)

// RedisTokenStore is a redis-backed implementation of TokenStore.
type RedisTokenStore struct {
	client *redis.Client
}

// NewRedisTokenStore creates a new RedisTokenStore over an established client.
func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{
		client: client,
	}
}

// NewRedisClient connects to redis using a connection URL of the form
// "redis://:password@host:6379/0" and verifies the connection with a ping.
func NewRedisClient(ctx context.Context, connectionURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(connectionURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis connection string: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// SaveRefreshToken stores a refresh token keyed by the user's email.
func (s *RedisTokenStore) SaveRefreshToken(ctx context.Context, email, token string, ttl time.Duration) error {
	if err := s.client.Set(ctx, refreshTokenKeyPrefix+email, token, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save refresh token for %s: %w", email, err)
	}
	return nil
}

// DeleteRefreshToken removes the stored refresh token for the user.
func (s *RedisTokenStore) DeleteRefreshToken(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, refreshTokenKeyPrefix+email).Err(); err != nil {
		return fmt.Errorf("failed to delete refresh token for %s: %w", email, err)
	}
	return nil
}

// BlacklistAccessToken marks an access token as revoked until it expires.
func (s *RedisTokenStore) BlacklistAccessToken(ctx context.Context, token, reason string, ttl time.Duration) error {
	if err := s.client.Set(ctx, blacklistKeyPrefix+token, reason, ttl).Err(); err != nil {
		return fmt.Errorf("failed to blacklist access token: %w", err)
	}
	return nil
}

// IsBlacklisted reports whether an access token has been revoked.
func (s *RedisTokenStore) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, blacklistKeyPrefix+token).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return n > 0, nil
}

// SaveLoginPayload caches an OAuth login response under a one-time token.
func (s *RedisTokenStore) SaveLoginPayload(ctx context.Context, token string, payload []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, loginPayloadKeyPrefix+token, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save login payload: %w", err)
	}
	return nil
}

// TakeLoginPayload atomically reads and deletes a cached login response.
// A missing or already consumed token yields (nil, nil).
func (s *RedisTokenStore) TakeLoginPayload(ctx context.Context, token string) ([]byte, error) {
	payload, err := s.client.GetDel(ctx, loginPayloadKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to take login payload: %w", err)
	}
	return payload, nil
}
