package ports

import (
	"context"

	"github.com/allerview/portal-gateway/internal/core/domain"
)

// SessionService is the single source of truth for "who is logged in right
// now" on a given browser session. All route guards and handlers read
// session state through it.
type SessionService interface {
	// Snapshot returns the session's resolved state, running the one-shot
	// silent restoration first if the session has never been seen. It never
	// surfaces restoration failures; a failed restore reads as anonymous.
	Snapshot(ctx context.Context, sessionID string) domain.Snapshot

	// LoginSimple performs the name+PIN login flow and, on success,
	// persists the token and authenticates the session.
	LoginSimple(ctx context.Context, sessionID string, in SimpleLoginInput) (*domain.Identity, error)

	// RegisterSimple performs kit-backed registration; on success the
	// one-time access PIN is parked on the session until acknowledged.
	RegisterSimple(ctx context.Context, sessionID string, in SimpleRegisterInput) (*domain.Identity, error)

	// BeginDelegatedLogin returns the provider URL the browser must be
	// redirected to. Completion happens out of band via the callback.
	BeginDelegatedLogin(ctx context.Context, sessionID string) (string, error)

	// CompleteDelegatedLogin redeems the callback state, persists the
	// delivered token, and resolves it to an identity so the caller can
	// redirect immediately.
	CompleteDelegatedLogin(ctx context.Context, sessionID, state, token string) (*domain.Identity, error)

	// Logout invalidates upstream best-effort and always succeeds locally.
	Logout(ctx context.Context, sessionID string)

	// AcknowledgePendingPin clears the parked one-time access PIN.
	AcknowledgePendingPin(sessionID string)
}

// AuditSink accepts authentication audit events. Implementations must not
// block the auth path; delivery is asynchronous and best effort.
type AuditSink interface {
	Emit(event domain.AuthEvent)
}
