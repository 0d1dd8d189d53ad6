package domain

import "time"

// AuthEventKind classifies entries in the authentication audit trail.
type AuthEventKind string

const (
	EventLoginSucceeded     AuthEventKind = "login_succeeded"
	EventLoginFailed        AuthEventKind = "login_failed"
	EventRegistered         AuthEventKind = "registered"
	EventLogout             AuthEventKind = "logout"
	EventRestoreRejected    AuthEventKind = "restore_rejected"
	EventDelegatedCompleted AuthEventKind = "delegated_completed"
)

// AuthEvent records a single authentication outcome for the audit trail.
type AuthEvent struct {
	ID        string
	Kind      AuthEventKind
	SessionID string
	SubjectID string // identity id when known, empty for failed attempts
	Method    string // simple_login, simple_register, delegated, restore
	Reason    string // failure detail, empty on success
	Timestamp time.Time
}
