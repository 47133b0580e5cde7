package ports

import (
	"context"

	"github.com/launchkit/boilerplate/internal/core/domain"
)

// RoleService implements the role-bootstrap use cases: counting admins,
// promoting users under the bootstrap rule, and listing users.
type RoleService interface {
	// AdminCount returns the number of users currently holding the admin
	// role, computed from a full listing scan on every call.
	AdminCount(ctx context.Context) (int, error)

	// Promote sets the target user's role. While at least one admin exists
	// the requester must be an admin (domain.ErrForbidden otherwise); while
	// zero admins exist any authenticated requester may promote any target.
	Promote(ctx context.Context, requester *domain.User, targetID string, role domain.Role) (*domain.User, error)

	// ListUsers returns all user records, available to any verified caller.
	ListUsers(ctx context.Context) ([]domain.User, error)
}
