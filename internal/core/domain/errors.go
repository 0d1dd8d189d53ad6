package domain

import "errors"

// Error taxonomy for the credential exchange and session layers. Every
// upstream failure is normalized to exactly one of these before it leaves
// the infrastructure layer.
var (
	// ErrUnauthorized means the bearer token is missing, expired, or invalid.
	// During silent restoration it triggers a forced local logout.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNetwork means the upstream portal API gave no usable response.
	ErrNetwork = errors.New("upstream unreachable")

	// ErrValidation means the request payload was malformed.
	ErrValidation = errors.New("invalid request payload")

	// ErrInvalidCredentials means name, identifier, and PIN do not jointly
	// match a registered account.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidKitCredentials means the kit serial number and kit PIN do
	// not match a known test kit.
	ErrInvalidKitCredentials = errors.New("invalid kit credentials")

	// ErrDuplicateKit means the test kit has already been claimed by an
	// earlier registration.
	ErrDuplicateKit = errors.New("kit already registered")
)
