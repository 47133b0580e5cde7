package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/launchkit/boilerplate/internal/core/ports"
)

// UserHandler serves the user listing endpoint.
type UserHandler struct {
	identity ports.IdentityProvider
	roles    ports.RoleService
}

func NewUserHandler(identity ports.IdentityProvider, roles ports.RoleService) *UserHandler {
	return &UserHandler{identity: identity, roles: roles}
}

// List handles GET /api/users. Any verified caller may list; the response is
// the application projection of each record, not the provider's raw payload.
//
// @Summary      List all users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.User
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/users [get]
func (h *UserHandler) List(c echo.Context) error {
	token, err := bearerToken(c)
	if err != nil {
		return err
	}
	if _, err := h.identity.VerifyToken(c.Request().Context(), token); err != nil {
		return err
	}

	users, err := h.roles.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, users)
}
