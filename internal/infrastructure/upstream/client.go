// Package upstream implements the credential exchange client against the
// external portal REST API. Every call either returns a fully-populated
// success value or one of the domain error kinds; transport details never
// leak past this package.
package upstream

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/allerview/portal-gateway/internal/core/domain"
	"github.com/allerview/portal-gateway/internal/core/ports"
	"github.com/allerview/portal-gateway/internal/pkg/metrics"
)

const defaultTimeout = 10 * time.Second

// Client talks to the portal API over HTTP. It implements
// ports.CredentialClient.
type Client struct {
	http *resty.Client
	log  zerolog.Logger
}

// Config captures the upstream connection settings.
type Config struct {
	// BaseURL including the /api prefix, e.g. https://portal.example.com/api
	BaseURL string
	Timeout time.Duration
}

// NewClient builds a Client with a finite timeout so a hung upstream cannot
// pin a session in the loading state. Auth calls are never retried
// automatically.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{http: httpClient, log: log}
}

// userPayload is the portal API's user representation.
type userPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

func (u userPayload) identity() *domain.Identity {
	return &domain.Identity{
		ID:    u.ID,
		Name:  u.Name,
		Role:  domain.Role(u.Role),
		Phone: u.Phone,
		Email: u.Email,
	}
}

// authPayload is the success body of the login and registration endpoints.
type authPayload struct {
	AccessToken string      `json:"access_token"`
	User        userPayload `json:"user"`
	AccessPin   string      `json:"access_pin,omitempty"`
}

// errorPayload is the portal API's error envelope.
type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type registerBody struct {
	Name         string `json:"name"`
	Phone        string `json:"phone,omitempty"`
	BirthDate    string `json:"birth_date,omitempty"`
	SerialNumber string `json:"serial_number"`
	Pin          string `json:"pin"`
}

type loginBody struct {
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	BirthDate string `json:"birth_date,omitempty"`
	AccessPin string `json:"access_pin"`
}

// FetchIdentity implements ports.CredentialClient.
func (c *Client) FetchIdentity(ctx context.Context, token string) (*domain.Identity, error) {
	defer observe("fetch_identity", time.Now())

	var user userPayload
	var apiErr errorPayload
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&user).
		SetError(&apiErr).
		Get("/auth/me")
	if err != nil {
		return nil, fmt.Errorf("fetch identity: %w: %v", domain.ErrNetwork, err)
	}

	switch {
	case resp.IsSuccess():
		if user.ID == "" || user.Role == "" {
			return nil, fmt.Errorf("fetch identity: malformed response: %w", domain.ErrNetwork)
		}
		return user.identity(), nil
	case resp.StatusCode() == http.StatusUnauthorized:
		return nil, domain.ErrUnauthorized
	default:
		return nil, c.unexpected("fetch identity", resp, apiErr)
	}
}

// RegisterSimple implements ports.CredentialClient.
func (c *Client) RegisterSimple(ctx context.Context, in ports.SimpleRegisterInput) (*ports.AuthResult, error) {
	defer observe("register", time.Now())

	body := registerBody{
		Name:         in.Name,
		Phone:        in.Phone,
		BirthDate:    in.BirthDate,
		SerialNumber: in.SerialNumber,
		Pin:          in.KitPin,
	}

	var out authPayload
	var apiErr errorPayload
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		SetError(&apiErr).
		Post("/auth/simple/register")
	if err != nil {
		return nil, fmt.Errorf("register: %w: %v", domain.ErrNetwork, err)
	}

	if resp.IsSuccess() {
		if out.AccessToken == "" || out.User.ID == "" || out.AccessPin == "" {
			return nil, fmt.Errorf("register: incomplete response: %w", domain.ErrNetwork)
		}
		return &ports.AuthResult{
			Token:     out.AccessToken,
			Identity:  out.User.identity(),
			AccessPin: out.AccessPin,
		}, nil
	}
	return nil, c.mapError("register", resp, apiErr)
}

// LoginSimple implements ports.CredentialClient.
func (c *Client) LoginSimple(ctx context.Context, in ports.SimpleLoginInput) (*ports.AuthResult, error) {
	defer observe("login", time.Now())

	body := loginBody{
		Name:      in.Name,
		Phone:     in.Phone,
		BirthDate: in.BirthDate,
		AccessPin: in.AccessPin,
	}

	var out authPayload
	var apiErr errorPayload
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		SetError(&apiErr).
		Post("/auth/simple/login")
	if err != nil {
		return nil, fmt.Errorf("login: %w: %v", domain.ErrNetwork, err)
	}

	if resp.IsSuccess() {
		if out.AccessToken == "" || out.User.ID == "" {
			return nil, fmt.Errorf("login: incomplete response: %w", domain.ErrNetwork)
		}
		return &ports.AuthResult{
			Token:    out.AccessToken,
			Identity: out.User.identity(),
		}, nil
	}
	return nil, c.mapError("login", resp, apiErr)
}

// Logout implements ports.CredentialClient. Best effort; the caller swallows
// the error.
func (c *Client) Logout(ctx context.Context, token string) error {
	defer observe("logout", time.Now())

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		Post("/auth/logout")
	if err != nil {
		return fmt.Errorf("logout: %w: %v", domain.ErrNetwork, err)
	}
	if resp.IsError() && resp.StatusCode() != http.StatusUnauthorized {
		return fmt.Errorf("logout: unexpected status %d", resp.StatusCode())
	}
	return nil
}

// mapError normalizes an error response from the simple auth endpoints.
// Domain codes take precedence over the HTTP status.
func (c *Client) mapError(op string, resp *resty.Response, apiErr errorPayload) error {
	switch apiErr.Code {
	case "duplicate_kit":
		return fmt.Errorf("%s: %w", op, domain.ErrDuplicateKit)
	case "invalid_kit_credentials":
		return fmt.Errorf("%s: %w", op, domain.ErrInvalidKitCredentials)
	case "invalid_credentials":
		return fmt.Errorf("%s: %w", op, domain.ErrInvalidCredentials)
	}

	switch resp.StatusCode() {
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		return fmt.Errorf("%s: %s: %w", op, apiErr.Message, domain.ErrValidation)
	case http.StatusUnauthorized:
		return fmt.Errorf("%s: %w", op, domain.ErrInvalidCredentials)
	case http.StatusConflict:
		return fmt.Errorf("%s: %w", op, domain.ErrDuplicateKit)
	}
	return c.unexpected(op, resp, apiErr)
}

// unexpected wraps a response no mapping claims. Treated as a transport-level
// failure so callers surface it without inventing a business meaning.
func (c *Client) unexpected(op string, resp *resty.Response, apiErr errorPayload) error {
	c.log.Warn().
		Str("operation", op).
		Int("status", resp.StatusCode()).
		Str("code", apiErr.Code).
		Msg("unexpected upstream response")
	return fmt.Errorf("%s: upstream status %d: %w", op, resp.StatusCode(), domain.ErrNetwork)
}

func observe(operation string, start time.Time) {
	metrics.UpstreamExchangeDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
