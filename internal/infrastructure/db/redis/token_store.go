package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/allerview/portal-gateway/internal/core/ports"
)

const defaultTokenTTL = 30 * 24 * time.Hour

// TokenStore persists the per-session upstream bearer token in Redis.
// Key format: session:token:<session_id>
type TokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTokenStore creates a TokenStore wrapping the given Redis client.
// If ttl <= 0, defaultTokenTTL is used.
func NewTokenStore(client *redis.Client, ttl time.Duration) *TokenStore {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenStore{client: client, ttl: ttl}
}

// Save stores the token, refreshing its TTL.
func (s *TokenStore) Save(ctx context.Context, sessionID, token string) error {
	if err := s.client.Set(ctx, s.key(sessionID), token, s.ttl).Err(); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// Load returns the persisted token, or ports.ErrTokenNotFound when the
// session has none.
func (s *TokenStore) Load(ctx context.Context, sessionID string) (string, error) {
	token, err := s.client.Get(ctx, s.key(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ports.ErrTokenNotFound
		}
		return "", fmt.Errorf("load token: %w", err)
	}
	return token, nil
}

// Clear removes the persisted token. Clearing an absent token is not an error.
func (s *TokenStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

func (s *TokenStore) key(sessionID string) string {
	return "session:token:" + sessionID
}
