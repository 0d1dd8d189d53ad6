package domain

// SessionState represents the lifecycle state of a browser session.
type SessionState string

const (
	StateUninitialized SessionState = "uninitialized"
	StateLoading       SessionState = "loading"
	StateAuthenticated SessionState = "authenticated"
	StateAnonymous     SessionState = "anonymous"
)

// validTransitions defines the allowed session state machine transitions.
// Loading is entered only from an explicit restore or auth call, never while
// the session sits idle in a resolved state.
var validTransitions = map[SessionState][]SessionState{
	StateUninitialized: {StateLoading},
	StateLoading:       {StateAuthenticated, StateAnonymous},
	StateAuthenticated: {StateLoading, StateAnonymous},
	StateAnonymous:     {StateLoading},
}

// CanTransitionTo reports whether a transition from the current state to next is valid.
func (s SessionState) CanTransitionTo(next SessionState) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Resolved reports whether the session has settled into a terminal
// authenticated-or-anonymous answer. Route guards must defer their decision
// until this is true.
func (s SessionState) Resolved() bool {
	return s == StateAuthenticated || s == StateAnonymous
}

// Snapshot is a consistent read of a session's state, safe to hand to
// handlers and guards without further locking.
type Snapshot struct {
	State SessionState
	// Identity is nil exactly when the caller is unauthenticated.
	Identity *Identity
	// PendingAccessPin is the one-time access PIN issued at registration,
	// retained until the user acknowledges having recorded it.
	PendingAccessPin string
}

// Authenticated reports whether the snapshot carries an identity.
func (s Snapshot) Authenticated() bool {
	return s.Identity != nil
}
