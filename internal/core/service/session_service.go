package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/allerview/portal-gateway/internal/core/domain"
	"github.com/allerview/portal-gateway/internal/core/ports"
	"github.com/allerview/portal-gateway/internal/pkg/metrics"
)

// SessionService owns all session state. It is the only component that reads
// or writes the persisted bearer token, so the in-memory session and the
// token store can never disagree for long: every mutation happens under the
// session's lock, token first.
type SessionService struct {
	client ports.CredentialClient
	tokens ports.TokenStore
	states ports.StateStore
	audit  ports.AuditSink
	log    zerolog.Logger

	// providerLoginURL is the delegated provider's browser entry point;
	// callbackURL is where the provider sends the browser back.
	providerLoginURL string
	callbackURL      string

	mu       sync.Mutex
	sessions map[string]*sessionState
}

// sessionState is the in-memory record for one browser session. Its mutex
// serializes overlapping auth calls on the same session, so the last write
// wins in a well-defined order. lastSeen is guarded by SessionService.mu,
// not this mutex.
type sessionState struct {
	mu         sync.Mutex
	state      domain.SessionState
	identity   *domain.Identity
	pendingPin string

	lastSeen time.Time
}

// transition moves the session state machine, logging any step the machine
// does not allow. State is advanced regardless so a bug here degrades to a
// log line, not a wedged session.
func (st *sessionState) transition(next domain.SessionState, log zerolog.Logger) {
	if !st.state.CanTransitionTo(next) {
		log.Warn().
			Str("from", string(st.state)).
			Str("to", string(next)).
			Msg("unexpected session state transition")
	}
	st.state = next
}

// NewSessionService wires the session store to its collaborators.
// audit may be nil when no audit trail is configured.
func NewSessionService(
	client ports.CredentialClient,
	tokens ports.TokenStore,
	states ports.StateStore,
	audit ports.AuditSink,
	providerLoginURL, callbackURL string,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		client:           client,
		tokens:           tokens,
		states:           states,
		audit:            audit,
		providerLoginURL: providerLoginURL,
		callbackURL:      callbackURL,
		log:              log,
		sessions:         make(map[string]*sessionState),
	}
}

// session returns the in-memory record for the session, creating it on first
// sight and stamping its last access for the idle sweep.
func (s *SessionService) session(sessionID string) *sessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.sessions[sessionID]
	if !ok {
		st = &sessionState{state: domain.StateUninitialized}
		s.sessions[sessionID] = st
	}
	st.lastSeen = time.Now()
	return st
}

const (
	defaultSessionMaxIdle = 30 * 24 * time.Hour
	evictionSweepInterval = 15 * time.Minute
)

// StartEviction launches a background sweep that drops in-memory records for
// sessions idle longer than maxIdle. Bound maxIdle by the token TTL: an
// evicted session whose token still lives simply restores on its next
// request, so eviction is invisible to the browser. The sweep stops when ctx
// is cancelled.
func (s *SessionService) StartEviction(ctx context.Context, maxIdle time.Duration) {
	if maxIdle <= 0 {
		maxIdle = defaultSessionMaxIdle
	}
	go func() {
		ticker := time.NewTicker(evictionSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.evictIdle(time.Now().Add(-maxIdle)); n > 0 {
					s.log.Debug().Int("evicted", n).Msg("evicted idle sessions")
				}
			}
		}
	}()
}

// evictIdle drops every session last touched before the cutoff and reports
// how many went.
func (s *SessionService) evictIdle(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, st := range s.sessions {
		if st.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// Snapshot implements ports.SessionService. The first call on a session runs
// the silent restoration; every call returns with the session resolved, so
// guards never observe a lingering loading state.
func (s *SessionService) Snapshot(ctx context.Context, sessionID string) domain.Snapshot {
	st := s.session(sessionID)
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.state == domain.StateUninitialized {
		s.restore(ctx, sessionID, st)
	}
	return domain.Snapshot{
		State:            st.state,
		Identity:         st.identity,
		PendingAccessPin: st.pendingPin,
	}
}

// restore exchanges the persisted token for an identity. Exactly one fetch
// attempt; on any failure the token is cleared and the session resolves
// anonymous without an error escaping. Callers hold st.mu.
func (s *SessionService) restore(ctx context.Context, sessionID string, st *sessionState) {
	st.transition(domain.StateLoading, s.log)

	token, err := s.tokens.Load(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, ports.ErrTokenNotFound) {
			s.log.Warn().Err(err).Str("session", sessionID).Msg("token load failed, treating as anonymous")
		}
		st.transition(domain.StateAnonymous, s.log)
		metrics.RestoresTotal.WithLabelValues("anonymous").Inc()
		return
	}

	identity, err := s.client.FetchIdentity(ctx, token)
	if err != nil {
		if clearErr := s.tokens.Clear(ctx, sessionID); clearErr != nil {
			s.log.Warn().Err(clearErr).Str("session", sessionID).Msg("failed to clear rejected token")
		}
		st.transition(domain.StateAnonymous, s.log)
		metrics.RestoresTotal.WithLabelValues("rejected").Inc()
		s.emit(domain.AuthEvent{
			Kind:      domain.EventRestoreRejected,
			SessionID: sessionID,
			Method:    "restore",
			Reason:    err.Error(),
		})
		s.log.Debug().Err(err).Str("session", sessionID).Msg("session restoration rejected")
		return
	}

	st.identity = identity
	st.transition(domain.StateAuthenticated, s.log)
	metrics.RestoresTotal.WithLabelValues("authenticated").Inc()
}

// LoginSimple implements ports.SessionService.
func (s *SessionService) LoginSimple(ctx context.Context, sessionID string, in ports.SimpleLoginInput) (*domain.Identity, error) {
	return s.login(ctx, sessionID, "simple_login", func(ctx context.Context) (*ports.AuthResult, error) {
		return s.client.LoginSimple(ctx, in)
	})
}

// RegisterSimple implements ports.SessionService. On success the one-time
// access PIN is parked on the session until acknowledged.
func (s *SessionService) RegisterSimple(ctx context.Context, sessionID string, in ports.SimpleRegisterInput) (*domain.Identity, error) {
	st := s.session(sessionID)
	st.mu.Lock()
	defer st.mu.Unlock()

	identity, pin, err := s.exchange(ctx, sessionID, st, "simple_register", func(ctx context.Context) (*ports.AuthResult, error) {
		return s.client.RegisterSimple(ctx, in)
	})
	if err != nil {
		return nil, err
	}

	st.pendingPin = pin
	s.emit(domain.AuthEvent{
		Kind:      domain.EventRegistered,
		SessionID: sessionID,
		SubjectID: identity.ID,
		Method:    "simple_register",
	})
	return identity, nil
}

// login runs a credential exchange under the session lock and records the
// success audit event for plain logins.
func (s *SessionService) login(ctx context.Context, sessionID, method string, call func(context.Context) (*ports.AuthResult, error)) (*domain.Identity, error) {
	st := s.session(sessionID)
	st.mu.Lock()
	defer st.mu.Unlock()

	identity, _, err := s.exchange(ctx, sessionID, st, method, call)
	if err != nil {
		return nil, err
	}

	s.emit(domain.AuthEvent{
		Kind:      domain.EventLoginSucceeded,
		SessionID: sessionID,
		SubjectID: identity.ID,
		Method:    method,
	})
	return identity, nil
}

// exchange performs one credential exchange: loading while in flight, token
// persisted before the session flips to authenticated, and on failure the
// session settles back to the state the caller found it in. Failures always
// propagate; recovery is the caller's business. Callers hold st.mu.
func (s *SessionService) exchange(ctx context.Context, sessionID string, st *sessionState, method string, call func(context.Context) (*ports.AuthResult, error)) (*domain.Identity, string, error) {
	st.transition(domain.StateLoading, s.log)

	res, err := call(ctx)
	if err != nil {
		s.settle(st)
		metrics.LoginsTotal.WithLabelValues(method, "failure").Inc()
		s.emit(domain.AuthEvent{
			Kind:      domain.EventLoginFailed,
			SessionID: sessionID,
			Method:    method,
			Reason:    err.Error(),
		})
		return nil, "", err
	}

	if err := s.tokens.Save(ctx, sessionID, res.Token); err != nil {
		s.settle(st)
		metrics.LoginsTotal.WithLabelValues(method, "failure").Inc()
		return nil, "", fmt.Errorf("persist token: %w", err)
	}

	st.identity = res.Identity
	st.transition(domain.StateAuthenticated, s.log)
	metrics.LoginsTotal.WithLabelValues(method, "success").Inc()
	return res.Identity, res.AccessPin, nil
}

// settle resolves a loading session back to whichever terminal state matches
// the identity it still holds.
func (s *SessionService) settle(st *sessionState) {
	if st.identity != nil {
		st.transition(domain.StateAuthenticated, s.log)
		return
	}
	st.transition(domain.StateAnonymous, s.log)
}

// BeginDelegatedLogin implements ports.SessionService. It issues a
// single-use state bound to the session and returns the provider URL the
// browser must be sent to. The flow completes out of band in
// CompleteDelegatedLogin.
func (s *SessionService) BeginDelegatedLogin(ctx context.Context, sessionID string) (string, error) {
	state, err := s.states.Issue(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("issue delegated state: %w", err)
	}

	u, err := url.Parse(s.providerLoginURL)
	if err != nil {
		return "", fmt.Errorf("provider login url: %w", err)
	}
	q := u.Query()
	q.Set("state", state)
	q.Set("redirect_uri", s.callbackURL)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// CompleteDelegatedLogin implements ports.SessionService. The state must be
// the one issued to this session and can be redeemed at most once; a replay
// or a state minted for another session reads as ErrUnauthorized.
func (s *SessionService) CompleteDelegatedLogin(ctx context.Context, sessionID, state, token string) (*domain.Identity, error) {
	bound, err := s.states.Redeem(ctx, state)
	if err != nil || bound != sessionID {
		metrics.LoginsTotal.WithLabelValues("delegated", "failure").Inc()
		return nil, fmt.Errorf("delegated state rejected: %w", domain.ErrUnauthorized)
	}

	st := s.session(sessionID)
	st.mu.Lock()
	defer st.mu.Unlock()

	st.transition(domain.StateLoading, s.log)

	if err := s.tokens.Save(ctx, sessionID, token); err != nil {
		s.settle(st)
		metrics.LoginsTotal.WithLabelValues("delegated", "failure").Inc()
		return nil, fmt.Errorf("persist token: %w", err)
	}

	identity, err := s.client.FetchIdentity(ctx, token)
	if err != nil {
		if clearErr := s.tokens.Clear(ctx, sessionID); clearErr != nil {
			s.log.Warn().Err(clearErr).Str("session", sessionID).Msg("failed to clear rejected token")
		}
		st.identity = nil
		st.transition(domain.StateAnonymous, s.log)
		metrics.LoginsTotal.WithLabelValues("delegated", "failure").Inc()
		s.emit(domain.AuthEvent{
			Kind:      domain.EventLoginFailed,
			SessionID: sessionID,
			Method:    "delegated",
			Reason:    err.Error(),
		})
		return nil, err
	}

	st.identity = identity
	st.transition(domain.StateAuthenticated, s.log)
	metrics.LoginsTotal.WithLabelValues("delegated", "success").Inc()
	s.emit(domain.AuthEvent{
		Kind:      domain.EventDelegatedCompleted,
		SessionID: sessionID,
		SubjectID: identity.ID,
		Method:    "delegated",
	})
	return identity, nil
}

// Logout implements ports.SessionService. Upstream invalidation is best
// effort; locally the session always ends anonymous with the token gone, and
// calling it again on an anonymous session is a no-op. The in-memory record
// is dropped too: a logged-out session holds nothing worth keeping.
func (s *SessionService) Logout(ctx context.Context, sessionID string) {
	st := s.session(sessionID)
	st.mu.Lock()

	token, err := s.tokens.Load(ctx, sessionID)
	hadToken := err == nil && token != ""
	if hadToken {
		if err := s.client.Logout(ctx, token); err != nil {
			s.log.Warn().Err(err).Str("session", sessionID).Msg("upstream logout failed")
		}
	}
	if err := s.tokens.Clear(ctx, sessionID); err != nil {
		s.log.Warn().Err(err).Str("session", sessionID).Msg("failed to clear token on logout")
	}

	subject := ""
	if st.identity != nil {
		subject = st.identity.ID
	}
	st.identity = nil
	st.pendingPin = ""
	if st.state != domain.StateAnonymous {
		if st.state == domain.StateUninitialized {
			st.transition(domain.StateLoading, s.log)
		}
		st.transition(domain.StateAnonymous, s.log)
	}
	st.mu.Unlock()

	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	// A cleared token is a real logout even when the session was never
	// snapshotted here, so the subject id may be unknown.
	if subject != "" || hadToken {
		s.emit(domain.AuthEvent{
			Kind:      domain.EventLogout,
			SessionID: sessionID,
			SubjectID: subject,
			Method:    "logout",
		})
	}
}

// AcknowledgePendingPin implements ports.SessionService. Pure local state
// transition.
func (s *SessionService) AcknowledgePendingPin(sessionID string) {
	st := s.session(sessionID)
	st.mu.Lock()
	defer st.mu.Unlock()
	st.pendingPin = ""
}

// emit hands an audit event to the sink, stamping id and time.
func (s *SessionService) emit(event domain.AuthEvent) {
	if s.audit == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now().UTC()
	s.audit.Emit(event)
}
