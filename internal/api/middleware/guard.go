package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/allerview/portal-gateway/internal/core/domain"
	"github.com/allerview/portal-gateway/internal/core/policy"
	"github.com/allerview/portal-gateway/internal/core/ports"
	"github.com/allerview/portal-gateway/internal/pkg/metrics"
)

// identityKey is the echo context key a passing guard populates.
const identityKey = "identity"

// Guard enforces the access policy for one application area. The session
// snapshot it reads is always resolved — the session service completes the
// one-shot restoration before returning — so the guard never decides on a
// loading session.
//
// Navigation requests bounce to the caller's default landing area;
// API requests get the bare status code.
func Guard(area policy.Area, sessions ports.SessionService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			snap := sessions.Snapshot(c.Request().Context(), SessionID(c))

			if policy.CanEnter(area, snap.Identity) {
				metrics.GuardDecisionsTotal.WithLabelValues(string(area), "allowed").Inc()
				c.Set(identityKey, snap.Identity)
				return next(c)
			}
			metrics.GuardDecisionsTotal.WithLabelValues(string(area), "denied").Inc()

			if wantsHTML(c.Request()) {
				return c.Redirect(http.StatusFound, policy.LandingPath(policy.DefaultLandingArea(snap.Identity)))
			}
			if snap.Identity == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			return echo.NewHTTPError(http.StatusForbidden, "forbidden")
		}
	}
}

// Identity returns the identity injected by a passing Guard, or nil.
func Identity(c echo.Context) *domain.Identity {
	id, _ := c.Get(identityKey).(*domain.Identity)
	return id
}

// wantsHTML reports whether the request is a browser navigation rather than
// an XHR/fetch call.
func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
