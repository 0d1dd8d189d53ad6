package handler

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/allerview/portal-gateway/internal/api/middleware"
	"github.com/allerview/portal-gateway/internal/core/policy"
	"github.com/allerview/portal-gateway/internal/core/ports"
)

// AuthHandler exposes the session operations to the browser front-end.
type AuthHandler struct {
	sessions ports.SessionService
}

func NewAuthHandler(sessions ports.SessionService) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// Session reports the current session state.
//
// @Summary      Current session snapshot
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	snap := h.sessions.Snapshot(c.Request().Context(), middleware.SessionID(c))

	return c.JSON(http.StatusOK, sessionResponse{
		Authenticated:    snap.Authenticated(),
		User:             snap.Identity,
		LandingArea:      string(policy.DefaultLandingArea(snap.Identity)),
		PendingAccessPin: snap.PendingAccessPin,
	})
}

// LoginSimple authenticates with name, phone or birth date, and access PIN.
//
// @Summary      Simple login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      simpleLoginRequest  true  "Login credentials"
// @Success      200   {object}  authSuccessResponse
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /auth/simple/login [post]
func (h *AuthHandler) LoginSimple(c echo.Context) error {
	var req simpleLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	if err := oneIdentifier(req.Phone, req.BirthDate); err != nil {
		return err
	}

	identity, err := h.sessions.LoginSimple(c.Request().Context(), middleware.SessionID(c), ports.SimpleLoginInput{
		Name:      req.Name,
		Phone:     req.Phone,
		BirthDate: req.BirthDate,
		AccessPin: req.AccessPin,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authSuccessResponse{
		User:        identity,
		LandingArea: string(policy.DefaultLandingArea(identity)),
	})
}

// RegisterSimple claims a test kit and creates an account. The response
// carries the one-time access PIN the user must record for future logins.
//
// @Summary      Simple registration
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      simpleRegisterRequest  true  "Registration details"
// @Success      201   {object}  authSuccessResponse
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /auth/simple/register [post]
func (h *AuthHandler) RegisterSimple(c echo.Context) error {
	var req simpleRegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	if err := oneIdentifier(req.Phone, req.BirthDate); err != nil {
		return err
	}

	sid := middleware.SessionID(c)
	identity, err := h.sessions.RegisterSimple(c.Request().Context(), sid, ports.SimpleRegisterInput{
		Name:         req.Name,
		Phone:        req.Phone,
		BirthDate:    req.BirthDate,
		SerialNumber: req.SerialNumber,
		KitPin:       req.Pin,
	})
	if err != nil {
		return err
	}

	snap := h.sessions.Snapshot(c.Request().Context(), sid)
	return c.JSON(http.StatusCreated, authSuccessResponse{
		User:        identity,
		LandingArea: string(policy.DefaultLandingArea(identity)),
		AccessPin:   snap.PendingAccessPin,
	})
}

// Logout ends the session. Always succeeds.
//
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	h.sessions.Logout(c.Request().Context(), middleware.SessionID(c))
	return c.NoContent(http.StatusNoContent)
}

// AcknowledgePin confirms the user recorded the one-time access PIN.
//
// @Summary      Acknowledge the one-time access PIN
// @Tags         auth
// @Success      204
// @Router       /auth/pin/ack [post]
func (h *AuthHandler) AcknowledgePin(c echo.Context) error {
	h.sessions.AcknowledgePendingPin(middleware.SessionID(c))
	return c.NoContent(http.StatusNoContent)
}

// DelegatedLogin sends the browser to the delegated identity provider.
//
// @Summary      Begin delegated provider login
// @Tags         auth
// @Success      302
// @Router       /auth/google/login [get]
func (h *AuthHandler) DelegatedLogin(c echo.Context) error {
	redirect, err := h.sessions.BeginDelegatedLogin(c.Request().Context(), middleware.SessionID(c))
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, redirect)
}

// DelegatedCallback completes the delegated flow. The provider delivers
// either token or error as query parameters; either way the browser ends up
// on the right shell, failures landing back on login with a message key.
//
// @Summary      Delegated provider callback
// @Tags         auth
// @Success      302
// @Router       /auth/google/callback [get]
func (h *AuthHandler) DelegatedCallback(c echo.Context) error {
	if errParam := c.QueryParam("error"); errParam != "" {
		return c.Redirect(http.StatusFound, loginPathWithError(errParam))
	}

	token := c.QueryParam("token")
	state := c.QueryParam("state")
	if token == "" || state == "" {
		return c.Redirect(http.StatusFound, loginPathWithError("missing_callback_params"))
	}

	identity, err := h.sessions.CompleteDelegatedLogin(c.Request().Context(), middleware.SessionID(c), state, token)
	if err != nil {
		return c.Redirect(http.StatusFound, loginPathWithError("delegated_login_failed"))
	}
	return c.Redirect(http.StatusFound, policy.LandingPath(policy.DefaultLandingArea(identity)))
}

// oneIdentifier enforces that exactly one of phone or birth date identifies
// the account.
func oneIdentifier(phone, birthDate string) error {
	if (phone == "") == (birthDate == "") {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "provide exactly one of phone or birth_date")
	}
	return nil
}

func loginPathWithError(code string) string {
	q := url.Values{"error": {code}}
	return policy.LandingPath(policy.AreaLogin) + "?" + q.Encode()
}
