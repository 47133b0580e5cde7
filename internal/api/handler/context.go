package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// bearerToken extracts the raw token from the Authorization header. A missing
// or malformed header is rejected here, before any Identity Service call.
func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}

	return parts[1], nil
}
