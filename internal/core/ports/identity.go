package ports

import (
	"context"

	"github.com/launchkit/boilerplate/internal/core/domain"
)

// IdentityProvider wraps the external Identity Service. The service owns the
// user store, password handling, and token issuance; the app only ever talks
// to it through this boundary.
type IdentityProvider interface {
	// VerifyToken resolves a bearer token to the current user record.
	// Invalid, expired, or unresolvable tokens return domain.ErrInvalidToken.
	VerifyToken(ctx context.Context, token string) (*domain.User, error)

	// ListUsers returns a single consistent snapshot of every user record.
	// Requires the elevated (server-only) credential.
	ListUsers(ctx context.Context) ([]domain.User, error)

	// UpdateUserRole sets the target user's role in the provider's metadata
	// bag and returns the updated record.
	UpdateUserRole(ctx context.Context, userID string, role domain.Role) (*domain.User, error)

	SignIn(ctx context.Context, email, password string) (string, *domain.User, error)
	SignUp(ctx context.Context, email, password string) (*domain.User, error)
	SignOut(ctx context.Context, token string) error
}
