package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/launchkit/boilerplate/internal/core/domain"
	"github.com/launchkit/boilerplate/internal/core/ports"
)

// RoleHandler serves the role-bootstrap endpoints: the admin count query and
// the promotion route.
type RoleHandler struct {
	identity ports.IdentityProvider
	roles    ports.RoleService
}

func NewRoleHandler(identity ports.IdentityProvider, roles ports.RoleService) *RoleHandler {
	return &RoleHandler{identity: identity, roles: roles}
}

// AdminCount handles GET /api/admin/count.
//
// @Summary      Count users holding the admin role
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  adminCountResponse
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/admin/count [get]
func (h *RoleHandler) AdminCount(c echo.Context) error {
	token, err := bearerToken(c)
	if err != nil {
		return err
	}
	if _, err := h.identity.VerifyToken(c.Request().Context(), token); err != nil {
		return err
	}

	count, err := h.roles.AdminCount(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, adminCountResponse{Count: count})
}

// Promote handles POST /api/users/promote. Preconditions are checked in a
// fixed order, first failure wins: userId present, role present, role in the
// enum, valid bearer token, then the bootstrap rule inside the role service.
//
// @Summary      Change a user's role
// @Description  While zero admins exist any authenticated caller may promote any target; once an admin exists, admin role is required.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      promoteRequest  true  "Target user and new role"
// @Success      200   {object}  promoteResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/users/promote [post]
func (h *RoleHandler) Promote(c echo.Context) error {
	var req promoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	if req.UserID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "userId is required")
	}
	if req.Role == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "role is required")
	}
	role := domain.Role(req.Role)
	if !role.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "role is invalid")
	}

	token, err := bearerToken(c)
	if err != nil {
		return err
	}
	requester, err := h.identity.VerifyToken(c.Request().Context(), token)
	if err != nil {
		return err
	}

	updated, err := h.roles.Promote(c.Request().Context(), requester, req.UserID, role)
	if err != nil {
		// Update failures forward the upstream message; permission and
		// validation errors keep their canonical mapping.
		if errors.Is(err, domain.ErrForbidden) || errors.Is(err, domain.ErrInvalidRole) {
			return err
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, promoteResponse{
		Message: "User promoted to " + string(role),
		User:    updated,
	})
}
