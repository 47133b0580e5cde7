package domain

import (
	"errors"
	"time"
)

// Role is the application-level privilege of a user. There are exactly two:
// admin and the default "authenticated" that every new sign-up receives.
type Role string

const (
	RoleAdmin         Role = "admin"
	RoleAuthenticated Role = "authenticated"
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleAuthenticated
}

var ErrInvalidToken = errors.New("invalid or expired token")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrSignUpRejected = errors.New("sign up rejected")
var ErrForbidden = errors.New("no permission to perform this action")
var ErrInvalidRole = errors.New("role is invalid")
var ErrUserNotFound = errors.New("user not found")
var ErrIdentityUnavailable = errors.New("identity service unavailable")

// User is the application view of an Identity Service account. The provider
// owns the record; this projection carries only what the app reads.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// RoleFromMetadata maps the provider's untyped app_metadata["role"] value to
// a Role. The provider record is an external schema boundary, so the mapping
// fails closed: a missing key, a non-string value, or an unknown string all
// yield RoleAuthenticated.
func RoleFromMetadata(metadata map[string]any) Role {
	raw, ok := metadata["role"]
	if !ok {
		return RoleAuthenticated
	}
	s, ok := raw.(string)
	if !ok {
		return RoleAuthenticated
	}
	if r := Role(s); r.Valid() {
		return r
	}
	return RoleAuthenticated
}
