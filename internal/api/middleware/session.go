package middleware

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// sessionIDKey is the echo context key the session middleware populates.
const sessionIDKey = "session_id"

// CookieConfig captures the session cookie settings.
type CookieConfig struct {
	Name   string
	Secret string
	TTL    time.Duration
	Secure bool
}

// Session resolves the browser's session id from a signed cookie, minting a
// fresh session when the cookie is absent, expired, or tampered with. Every
// response carries a valid cookie afterwards.
func Session(cfg CookieConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid := ""
			if cookie, err := c.Cookie(cfg.Name); err == nil {
				sid = parseSessionCookie(cookie.Value, cfg.Secret)
			}
			if sid == "" {
				sid = uuid.NewString()
				signed, err := signSessionCookie(sid, cfg.Secret, cfg.TTL)
				if err != nil {
					return echo.NewHTTPError(http.StatusInternalServerError, "session cookie")
				}
				c.SetCookie(&http.Cookie{
					Name:     cfg.Name,
					Value:    signed,
					Path:     "/",
					MaxAge:   int(cfg.TTL / time.Second),
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			c.Set(sessionIDKey, sid)
			return next(c)
		}
	}
}

// SessionID returns the session id resolved by the Session middleware, or
// empty when the middleware did not run.
func SessionID(c echo.Context) string {
	sid, _ := c.Get(sessionIDKey).(string)
	return sid
}

// parseSessionCookie validates the HS256 cookie and extracts the session id.
// Any defect reads as "no session".
func parseSessionCookie(value, secret string) string {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(value, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !tkn.Valid {
		return ""
	}
	sid, _ := claims["sid"].(string)
	return sid
}

func signSessionCookie(sid, secret string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sid": sid,
		"exp": time.Now().Add(ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}
