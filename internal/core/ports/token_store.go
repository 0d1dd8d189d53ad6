package ports

import (
	"context"
	"errors"
)

// ErrTokenNotFound is returned by TokenStore.Load when no token is persisted
// for the session; its absence means "anonymous".
var ErrTokenNotFound = errors.New("no token persisted for session")

// TokenStore is the durable home of the per-session bearer token. Only the
// session service may touch it, keeping the in-memory session and the
// persisted token consistent.
type TokenStore interface {
	Save(ctx context.Context, sessionID, token string) error
	Load(ctx context.Context, sessionID string) (string, error)
	Clear(ctx context.Context, sessionID string) error
}

// StateStore issues and redeems the single-use state nonces that bind a
// delegated-provider redirect to the session that initiated it.
type StateStore interface {
	// Issue mints a state bound to the session, valid until its TTL lapses.
	Issue(ctx context.Context, sessionID string) (string, error)
	// Redeem consumes the state and returns the session it was bound to.
	// A state can be redeemed at most once.
	Redeem(ctx context.Context, state string) (string, error)
}
