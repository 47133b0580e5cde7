package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/launchkit/boilerplate/internal/api/metrics"
	"github.com/launchkit/boilerplate/internal/core/domain"
	"github.com/launchkit/boilerplate/internal/core/ports"
)

// SessionCookie describes the cookie that backs page navigation. The cookie
// carries the provider's access token; no session state is stored app-side.
type SessionCookie struct {
	Name   string
	Secure bool
}

// AuthHandler proxies sign-in/sign-up/sign-out to the Identity Service and
// manages the session cookie.
type AuthHandler struct {
	identity ports.IdentityProvider
	cookie   SessionCookie
}

func NewAuthHandler(identity ports.IdentityProvider, cookie SessionCookie) *AuthHandler {
	return &AuthHandler{identity: identity, cookie: cookie}
}

// SignIn handles POST /api/auth/sign-in.
//
// @Summary      Sign in with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signInRequest  true  "Credentials"
// @Success      200   {object}  signInResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/auth/sign-in [post]
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, user, err := h.identity.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.SignInsTotal.WithLabelValues("invalid_credentials").Inc()
		} else {
			metrics.SignInsTotal.WithLabelValues("error").Inc()
		}
		return err
	}
	metrics.SignInsTotal.WithLabelValues("success").Inc()

	c.SetCookie(h.sessionCookie(token, 7*24*time.Hour))
	return c.JSON(http.StatusOK, signInResponse{AccessToken: token, User: user})
}

// SignUp handles POST /api/auth/sign-up. New accounts carry no role in their
// provider metadata and therefore start as "authenticated".
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signUpRequest  true  "Credentials"
// @Success      201   {object}  signUpResponse
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/auth/sign-up [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signUpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.identity.SignUp(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, signUpResponse{User: user})
}

// SignOut handles POST /api/auth/sign-out. The provider-side revocation is
// best effort; the session cookie is cleared regardless.
//
// @Summary      Sign out
// @Tags         auth
// @Success      204
// @Router       /api/auth/sign-out [post]
func (h *AuthHandler) SignOut(c echo.Context) error {
	// Revocation failure is not the caller's problem; the cookie dies either way.
	if token := h.currentToken(c); token != "" {
		_ = h.identity.SignOut(c.Request().Context(), token)
	}

	c.SetCookie(h.sessionCookie("", -time.Hour))
	return c.NoContent(http.StatusNoContent)
}

// currentToken finds the caller's token in the Authorization header or, for
// browser navigation, the session cookie.
func (h *AuthHandler) currentToken(c echo.Context) string {
	if token, err := bearerToken(c); err == nil {
		return token
	}
	if cookie, err := c.Cookie(h.cookie.Name); err == nil {
		return cookie.Value
	}
	return ""
}

func (h *AuthHandler) sessionCookie(value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
