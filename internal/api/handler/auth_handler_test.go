package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/allerview/portal-gateway/internal/core/domain"
	"github.com/allerview/portal-gateway/internal/core/ports"
)

// ----------------------------------------------------------------- // Stubs

type stubSessionService struct {
	snapshotFn func(sid string) domain.Snapshot
	loginFn    func(sid string, in ports.SimpleLoginInput) (*domain.Identity, error)
	registerFn func(sid string, in ports.SimpleRegisterInput) (*domain.Identity, error)
	beginFn    func(sid string) (string, error)
	completeFn func(sid, state, token string) (*domain.Identity, error)

	logoutCalls int
	ackCalls    int
}

func (s *stubSessionService) Snapshot(_ context.Context, sid string) domain.Snapshot {
	if s.snapshotFn == nil {
		return domain.Snapshot{State: domain.StateAnonymous}
	}
	return s.snapshotFn(sid)
}

func (s *stubSessionService) LoginSimple(_ context.Context, sid string, in ports.SimpleLoginInput) (*domain.Identity, error) {
	return s.loginFn(sid, in)
}

func (s *stubSessionService) RegisterSimple(_ context.Context, sid string, in ports.SimpleRegisterInput) (*domain.Identity, error) {
	return s.registerFn(sid, in)
}

func (s *stubSessionService) BeginDelegatedLogin(_ context.Context, sid string) (string, error) {
	return s.beginFn(sid)
}

func (s *stubSessionService) CompleteDelegatedLogin(_ context.Context, sid, state, token string) (*domain.Identity, error) {
	return s.completeFn(sid, state, token)
}

func (s *stubSessionService) Logout(context.Context, string) { s.logoutCalls++ }
func (s *stubSessionService) AcknowledgePendingPin(string)   { s.ackCalls++ }

var testIdentity = &domain.Identity{
	ID:    "usr-1",
	Name:  "김철수",
	Role:  domain.RoleUser,
	Phone: "010-9999-8888",
}

func newTestContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// ----------------------------------------------------------------- // Tests

func TestSession_Anonymous(t *testing.T) {
	h := NewAuthHandler(&stubSessionService{})
	c, rec := newTestContext(t, http.MethodGet, "/auth/session", "")

	if err := h.Session(c); err != nil {
		t.Fatalf("session: %v", err)
	}

	var resp sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Authenticated {
		t.Fatalf("anonymous session reported authenticated")
	}
	if resp.LandingArea != "login" {
		t.Fatalf("expected landing_area login, got %s", resp.LandingArea)
	}
	if resp.User != nil {
		t.Fatalf("anonymous session carries a user")
	}
}

func TestSession_Authenticated(t *testing.T) {
	sessions := &stubSessionService{
		snapshotFn: func(string) domain.Snapshot {
			return domain.Snapshot{State: domain.StateAuthenticated, Identity: testIdentity}
		},
	}
	h := NewAuthHandler(sessions)
	c, rec := newTestContext(t, http.MethodGet, "/auth/session", "")

	if err := h.Session(c); err != nil {
		t.Fatalf("session: %v", err)
	}

	var resp sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Authenticated {
		t.Fatalf("expected authenticated session")
	}
	if resp.LandingArea != "consumer" {
		t.Fatalf("expected landing_area consumer, got %s", resp.LandingArea)
	}
	if resp.User == nil || resp.User.Name != "김철수" {
		t.Fatalf("unexpected user: %+v", resp.User)
	}
}

func TestLoginSimple_Success(t *testing.T) {
	var got ports.SimpleLoginInput
	sessions := &stubSessionService{
		loginFn: func(_ string, in ports.SimpleLoginInput) (*domain.Identity, error) {
			got = in
			return testIdentity, nil
		},
	}
	h := NewAuthHandler(sessions)
	body := `{"name":"김철수","phone":"010-9999-8888","access_pin":"715302"}`
	c, rec := newTestContext(t, http.MethodPost, "/auth/simple/login", body)

	if err := h.LoginSimple(c); err != nil {
		t.Fatalf("login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.Name != "김철수" || got.Phone != "010-9999-8888" || got.AccessPin != "715302" {
		t.Fatalf("input not forwarded: %+v", got)
	}

	var resp authSuccessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.LandingArea != "consumer" {
		t.Fatalf("expected landing_area consumer, got %s", resp.LandingArea)
	}
	if resp.AccessPin != "" {
		t.Fatalf("login must not surface an access pin")
	}
}

func TestLoginSimple_BothIdentifiers(t *testing.T) {
	h := NewAuthHandler(&stubSessionService{})
	body := `{"name":"김철수","phone":"010-9999-8888","birth_date":"1990-01-01","access_pin":"715302"}`
	c, _ := newTestContext(t, http.MethodPost, "/auth/simple/login", body)

	err := h.LoginSimple(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
}

func TestLoginSimple_NeitherIdentifier(t *testing.T) {
	h := NewAuthHandler(&stubSessionService{})
	body := `{"name":"김철수","access_pin":"715302"}`
	c, _ := newTestContext(t, http.MethodPost, "/auth/simple/login", body)

	err := h.LoginSimple(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
}

func TestLoginSimple_MalformedPin(t *testing.T) {
	h := NewAuthHandler(&stubSessionService{})
	body := `{"name":"김철수","phone":"010-9999-8888","access_pin":"71530"}`
	c, _ := newTestContext(t, http.MethodPost, "/auth/simple/login", body)

	err := h.LoginSimple(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for short pin, got %v", err)
	}
}

func TestLoginSimple_InvalidCredentialsPassThrough(t *testing.T) {
	sessions := &stubSessionService{
		loginFn: func(string, ports.SimpleLoginInput) (*domain.Identity, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(sessions)
	body := `{"name":"김철수","phone":"010-9999-8888","access_pin":"000000"}`
	c, _ := newTestContext(t, http.MethodPost, "/auth/simple/login", body)

	if err := h.LoginSimple(c); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials to pass through, got %v", err)
	}
}

func TestRegisterSimple_SurfacesAccessPin(t *testing.T) {
	sessions := &stubSessionService{
		registerFn: func(_ string, in ports.SimpleRegisterInput) (*domain.Identity, error) {
			if in.SerialNumber != "KIT-2024-0001" || in.KitPin != "4821" {
				return nil, domain.ErrInvalidKitCredentials
			}
			return testIdentity, nil
		},
		snapshotFn: func(string) domain.Snapshot {
			return domain.Snapshot{
				State:            domain.StateAuthenticated,
				Identity:         testIdentity,
				PendingAccessPin: "715302",
			}
		},
	}
	h := NewAuthHandler(sessions)
	body := `{"name":"김철수","phone":"010-9999-8888","serial_number":"KIT-2024-0001","pin":"4821"}`
	c, rec := newTestContext(t, http.MethodPost, "/auth/simple/register", body)

	if err := h.RegisterSimple(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp authSuccessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.AccessPin != "715302" {
		t.Fatalf("expected access_pin 715302, got %q", resp.AccessPin)
	}
	if resp.LandingArea != "consumer" {
		t.Fatalf("expected landing_area consumer, got %s", resp.LandingArea)
	}
}

func TestRegisterSimple_DuplicateKitPassThrough(t *testing.T) {
	sessions := &stubSessionService{
		registerFn: func(string, ports.SimpleRegisterInput) (*domain.Identity, error) {
			return nil, domain.ErrDuplicateKit
		},
	}
	h := NewAuthHandler(sessions)
	body := `{"name":"김철수","phone":"010-9999-8888","serial_number":"KIT-2024-0001","pin":"4821"}`
	c, _ := newTestContext(t, http.MethodPost, "/auth/simple/register", body)

	if err := h.RegisterSimple(c); err != domain.ErrDuplicateKit {
		t.Fatalf("expected ErrDuplicateKit to pass through, got %v", err)
	}
}

func TestLogout(t *testing.T) {
	sessions := &stubSessionService{}
	h := NewAuthHandler(sessions)
	c, rec := newTestContext(t, http.MethodPost, "/auth/logout", "")

	if err := h.Logout(c); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if sessions.logoutCalls != 1 {
		t.Fatalf("expected 1 logout call, got %d", sessions.logoutCalls)
	}
}

func TestAcknowledgePin(t *testing.T) {
	sessions := &stubSessionService{}
	h := NewAuthHandler(sessions)
	c, rec := newTestContext(t, http.MethodPost, "/auth/pin/ack", "")

	if err := h.AcknowledgePin(c); err != nil {
		t.Fatalf("ack: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if sessions.ackCalls != 1 {
		t.Fatalf("expected 1 ack call, got %d", sessions.ackCalls)
	}
}

func TestDelegatedLogin_Redirects(t *testing.T) {
	sessions := &stubSessionService{
		beginFn: func(string) (string, error) {
			return "https://provider.example/login?state=abc", nil
		},
	}
	h := NewAuthHandler(sessions)
	c, rec := newTestContext(t, http.MethodGet, "/auth/google/login", "")

	if err := h.DelegatedLogin(c); err != nil {
		t.Fatalf("delegated login: %v", err)
	}
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if got := rec.Header().Get(echo.HeaderLocation); got != "https://provider.example/login?state=abc" {
		t.Fatalf("unexpected redirect: %s", got)
	}
}

func TestDelegatedCallback_Success(t *testing.T) {
	sessions := &stubSessionService{
		completeFn: func(_, state, token string) (*domain.Identity, error) {
			if state != "abc" || token != "tok-1" {
				t.Fatalf("callback params not forwarded: state=%s token=%s", state, token)
			}
			return testIdentity, nil
		},
	}
	h := NewAuthHandler(sessions)
	c, rec := newTestContext(t, http.MethodGet, "/auth/google/callback?state=abc&token=tok-1", "")

	if err := h.DelegatedCallback(c); err != nil {
		t.Fatalf("callback: %v", err)
	}
	if got := rec.Header().Get(echo.HeaderLocation); got != "/app" {
		t.Fatalf("expected redirect to /app, got %s", got)
	}
}

func TestDelegatedCallback_ProviderError(t *testing.T) {
	h := NewAuthHandler(&stubSessionService{})
	c, rec := newTestContext(t, http.MethodGet, "/auth/google/callback?error=access_denied", "")

	if err := h.DelegatedCallback(c); err != nil {
		t.Fatalf("callback: %v", err)
	}
	if got := rec.Header().Get(echo.HeaderLocation); got != "/login?error=access_denied" {
		t.Fatalf("unexpected redirect: %s", got)
	}
}

func TestDelegatedCallback_MissingParams(t *testing.T) {
	h := NewAuthHandler(&stubSessionService{})
	c, rec := newTestContext(t, http.MethodGet, "/auth/google/callback?token=tok-1", "")

	if err := h.DelegatedCallback(c); err != nil {
		t.Fatalf("callback: %v", err)
	}
	if got := rec.Header().Get(echo.HeaderLocation); got != "/login?error=missing_callback_params" {
		t.Fatalf("unexpected redirect: %s", got)
	}
}

func TestDelegatedCallback_ExchangeFailure(t *testing.T) {
	sessions := &stubSessionService{
		completeFn: func(string, string, string) (*domain.Identity, error) {
			return nil, domain.ErrUnauthorized
		},
	}
	h := NewAuthHandler(sessions)
	c, rec := newTestContext(t, http.MethodGet, "/auth/google/callback?state=abc&token=tok-1", "")

	if err := h.DelegatedCallback(c); err != nil {
		t.Fatalf("callback: %v", err)
	}
	if got := rec.Header().Get(echo.HeaderLocation); got != "/login?error=delegated_login_failed" {
		t.Fatalf("unexpected redirect: %s", got)
	}
}

func TestRoot_RedirectsToLanding(t *testing.T) {
	sessions := &stubSessionService{
		snapshotFn: func(string) domain.Snapshot {
			return domain.Snapshot{
				State:    domain.StateAuthenticated,
				Identity: &domain.Identity{ID: "u-adm", Role: domain.RoleAdmin},
			}
		},
	}
	h := NewAreaHandler(sessions)
	c, rec := newTestContext(t, http.MethodGet, "/anything", "")

	if err := h.Root(c); err != nil {
		t.Fatalf("root: %v", err)
	}
	if got := rec.Header().Get(echo.HeaderLocation); got != "/admin" {
		t.Fatalf("expected redirect to /admin, got %s", got)
	}
}
