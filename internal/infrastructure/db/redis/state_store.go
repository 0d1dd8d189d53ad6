package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultStateTTL = 10 * time.Minute

// ErrStateNotFound means the delegated-login state was never issued, has
// expired, or was already redeemed.
var ErrStateNotFound = errors.New("delegated state not found")

// StateStore issues single-use delegated-login state nonces backed by Redis.
// Key format: delegated:state:<nonce>, value: the issuing session id.
type StateStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStateStore creates a StateStore wrapping the given Redis client.
// If ttl <= 0, defaultStateTTL is used.
func NewStateStore(client *redis.Client, ttl time.Duration) *StateStore {
	if ttl <= 0 {
		ttl = defaultStateTTL
	}
	return &StateStore{client: client, ttl: ttl}
}

// Issue mints a state nonce bound to the session, expiring after the TTL.
func (s *StateStore) Issue(ctx context.Context, sessionID string) (string, error) {
	state := uuid.NewString()
	if err := s.client.Set(ctx, s.key(state), sessionID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("issue state: %w", err)
	}
	return state, nil
}

// Redeem atomically consumes the state and returns the session it was bound
// to. A second redemption of the same state fails.
func (s *StateStore) Redeem(ctx context.Context, state string) (string, error) {
	sessionID, err := s.client.GetDel(ctx, s.key(state)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrStateNotFound
		}
		return "", fmt.Errorf("redeem state: %w", err)
	}
	return sessionID, nil
}

func (s *StateStore) key(state string) string {
	return "delegated:state:" + state
}
