package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/launchkit/boilerplate/internal/core/domain"
)

// UserContextKey is where the session gate stores the resolved user on the
// echo context for downstream page handlers.
const UserContextKey = "session_user"

// TokenVerifier is the slice of the Identity Service the gate needs.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*domain.User, error)
}

// SessionGateConfig configures the page authorization gate.
type SessionGateConfig struct {
	// Prefixes are the protected page path prefixes (e.g. /dashboard).
	Prefixes []string
	// CookieName is the session cookie carrying the access token.
	CookieName string
	// SignInPath is where unauthenticated requests are redirected.
	SignInPath string
}

// SessionGate guards protected page prefixes: it resolves the session cookie
// to a user via the Identity Service and redirects to the sign-in page on any
// failure. Fail closed: missing cookie, invalid token, and provider outage
// all redirect; no error detail reaches the browser. The gate makes no role
// distinction; it only separates authenticated from not.
func SessionGate(verifier TokenVerifier, cfg SessionGateConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !matchesPrefix(c.Request().URL.Path, cfg.Prefixes) {
				return next(c)
			}

			cookie, err := c.Cookie(cfg.CookieName)
			if err != nil || cookie.Value == "" {
				return c.Redirect(http.StatusFound, cfg.SignInPath)
			}

			user, err := verifier.VerifyToken(c.Request().Context(), cookie.Value)
			if err != nil {
				return c.Redirect(http.StatusFound, cfg.SignInPath)
			}

			c.Set(UserContextKey, user)
			return next(c)
		}
	}
}

func matchesPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
