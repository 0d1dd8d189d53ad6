package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/allerview/portal-gateway/internal/api/middleware"
	"github.com/allerview/portal-gateway/internal/core/domain"
	"github.com/allerview/portal-gateway/internal/core/policy"
	"github.com/allerview/portal-gateway/internal/core/ports"
)

// AreaHandler serves the shell entry points for the three application areas
// and the catch-all redirect. The shells themselves are rendered by the SPA;
// the gateway only answers "which shell, for whom".
type AreaHandler struct {
	sessions ports.SessionService
}

func NewAreaHandler(sessions ports.SessionService) *AreaHandler {
	return &AreaHandler{sessions: sessions}
}

type areaResponse struct {
	Area string           `json:"area"`
	User *domain.Identity `json:"user,omitempty"`
}

// Landing returns the entry handler for one guarded area. The guard has
// already admitted the caller and stashed the identity.
func (h *AreaHandler) Landing(area policy.Area) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, areaResponse{
			Area: string(area),
			User: middleware.Identity(c),
		})
	}
}

// Login serves the public login shell entry point.
func (h *AreaHandler) Login(c echo.Context) error {
	return c.JSON(http.StatusOK, areaResponse{Area: string(policy.AreaLogin)})
}

// Root redirects any unmatched path to the caller's default landing area.
func (h *AreaHandler) Root(c echo.Context) error {
	snap := h.sessions.Snapshot(c.Request().Context(), middleware.SessionID(c))
	return c.Redirect(http.StatusFound, policy.LandingPath(policy.DefaultLandingArea(snap.Identity)))
}
