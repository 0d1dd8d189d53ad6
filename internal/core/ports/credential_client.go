package ports

import (
	"context"

	"github.com/allerview/portal-gateway/internal/core/domain"
)

// SimpleLoginInput carries the name+PIN login form. Exactly one of Phone or
// BirthDate identifies the account.
type SimpleLoginInput struct {
	Name      string
	Phone     string
	BirthDate string // YYYY-MM-DD
	AccessPin string
}

// SimpleRegisterInput carries the kit-backed registration form. Exactly one
// of Phone or BirthDate identifies the account.
type SimpleRegisterInput struct {
	Name         string
	Phone        string
	BirthDate    string // YYYY-MM-DD
	SerialNumber string
	KitPin       string
}

// AuthResult is the normalized outcome of a successful credential exchange.
// Either every field the flow promises is populated or the call failed with
// one of the domain error kinds; partial results are never returned.
type AuthResult struct {
	Token    string
	Identity *domain.Identity
	// AccessPin is the freshly issued one-time access PIN; set only by
	// registration.
	AccessPin string
}

// CredentialClient translates the supported authentication mechanisms into
// normalized results, shielding the session layer from transport details.
type CredentialClient interface {
	// FetchIdentity resolves a bearer token to the current identity.
	// Fails with domain.ErrUnauthorized on an expired or invalid token and
	// domain.ErrNetwork when the upstream gave no response.
	FetchIdentity(ctx context.Context, token string) (*domain.Identity, error)

	// RegisterSimple claims a test kit and creates an account.
	RegisterSimple(ctx context.Context, in SimpleRegisterInput) (*AuthResult, error)

	// LoginSimple authenticates against an already-registered account.
	LoginSimple(ctx context.Context, in SimpleLoginInput) (*AuthResult, error)

	// Logout invalidates the token upstream. Best effort; callers swallow
	// the error.
	Logout(ctx context.Context, token string) error
}
