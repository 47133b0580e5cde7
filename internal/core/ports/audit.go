package ports

import (
	"context"
	"time"

	"github.com/launchkit/boilerplate/internal/core/domain"
)

// RoleChange is one entry in the promotion audit trail.
type RoleChange struct {
	RequesterID    string
	RequesterEmail string
	TargetID       string
	Role           domain.Role
	// Bootstrap is true when the change happened while zero admins existed.
	Bootstrap bool
	At        time.Time
}

// AuditRepository persists the audit trail of role changes. Writes are
// best-effort: a failed insert must never fail the promotion itself.
type AuditRepository interface {
	InsertRoleChange(ctx context.Context, change *RoleChange) error
}
