package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/launchkit/boilerplate/internal/core/domain"
	"github.com/launchkit/boilerplate/internal/core/ports"
)

// stubIdentity is an in-memory IdentityProvider covering the admin surface
// the role service uses. onList, when set, runs inside ListUsers before the
// snapshot is taken, to coordinate the concurrency test.
type stubIdentity struct {
	mu      sync.Mutex
	users   map[string]domain.User
	listErr error
	updErr  error
	onList  func()
}

func newStubIdentity(users ...domain.User) *stubIdentity {
	s := &stubIdentity{users: make(map[string]domain.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *stubIdentity) VerifyToken(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrInvalidToken
}

func (s *stubIdentity) ListUsers(context.Context) ([]domain.User, error) {
	if s.onList != nil {
		s.onList()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, nil
}

func (s *stubIdentity) UpdateUserRole(_ context.Context, userID string, role domain.Role) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updErr != nil {
		return nil, s.updErr
	}
	u, ok := s.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Role = role
	s.users[userID] = u
	return &u, nil
}

func (s *stubIdentity) SignIn(context.Context, string, string) (string, *domain.User, error) {
	return "", nil, domain.ErrInvalidToken
}

func (s *stubIdentity) SignUp(context.Context, string, string) (*domain.User, error) {
	return nil, domain.ErrIdentityUnavailable
}

func (s *stubIdentity) SignOut(context.Context, string) error { return nil }

func (s *stubIdentity) role(id string) domain.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id].Role
}

type stubAudit struct {
	mu      sync.Mutex
	entries []ports.RoleChange
	err     error
}

func (a *stubAudit) InsertRoleChange(_ context.Context, change *ports.RoleChange) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.entries = append(a.entries, *change)
	return nil
}

func member(id string) domain.User {
	return domain.User{ID: id, Email: id + "@example.com", Role: domain.RoleAuthenticated}
}

func admin(id string) domain.User {
	return domain.User{ID: id, Email: id + "@example.com", Role: domain.RoleAdmin}
}

func TestAdminCount(t *testing.T) {
	identity := newStubIdentity(admin("u1"), member("u2"), member("u3"))
	svc := NewRoleService(identity, nil, zerolog.Nop())

	count, err := svc.AdminCount(context.Background())
	if err != nil {
		t.Fatalf("AdminCount returned error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 admin, got %d", count)
	}
}

func TestAdminCount_ListingFails(t *testing.T) {
	identity := newStubIdentity()
	identity.listErr = domain.ErrIdentityUnavailable
	svc := NewRoleService(identity, nil, zerolog.Nop())

	if _, err := svc.AdminCount(context.Background()); !errors.Is(err, domain.ErrIdentityUnavailable) {
		t.Fatalf("expected ErrIdentityUnavailable, got %v", err)
	}
}

// Zero admins: any authenticated requester may self-promote.
func TestPromote_BootstrapSelfPromotion(t *testing.T) {
	identity := newStubIdentity(member("u1"), member("u2"))
	audit := &stubAudit{}
	svc := NewRoleService(identity, audit, zerolog.Nop())

	requester := member("u1")
	updated, err := svc.Promote(context.Background(), &requester, "u1", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("Promote returned error: %v", err)
	}
	if updated.Role != domain.RoleAdmin {
		t.Fatalf("expected admin role, got %s", updated.Role)
	}
	if identity.role("u1") != domain.RoleAdmin {
		t.Fatalf("role not persisted in provider")
	}
	if len(audit.entries) != 1 || !audit.entries[0].Bootstrap {
		t.Fatalf("expected one bootstrap audit entry, got %+v", audit.entries)
	}
}

// One admin exists: a non-admin requester is rejected and no mutation happens.
func TestPromote_NonAdminForbidden(t *testing.T) {
	identity := newStubIdentity(admin("u1"), member("u2"))
	svc := NewRoleService(identity, nil, zerolog.Nop())

	requester := member("u2")
	if _, err := svc.Promote(context.Background(), &requester, "u2", domain.RoleAdmin); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if identity.role("u2") != domain.RoleAuthenticated {
		t.Fatalf("forbidden promotion must not mutate the target")
	}
}

// One admin exists: the admin may promote any target.
func TestPromote_AdminPromotesOther(t *testing.T) {
	identity := newStubIdentity(admin("u1"), member("u2"))
	svc := NewRoleService(identity, nil, zerolog.Nop())

	requester := admin("u1")
	updated, err := svc.Promote(context.Background(), &requester, "u2", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("Promote returned error: %v", err)
	}
	if updated.ID != "u2" || updated.Role != domain.RoleAdmin {
		t.Fatalf("unexpected updated user: %+v", updated)
	}
}

// Admins may also demote back to authenticated.
func TestPromote_Demotion(t *testing.T) {
	identity := newStubIdentity(admin("u1"), admin("u2"))
	svc := NewRoleService(identity, nil, zerolog.Nop())

	requester := admin("u1")
	updated, err := svc.Promote(context.Background(), &requester, "u2", domain.RoleAuthenticated)
	if err != nil {
		t.Fatalf("Promote returned error: %v", err)
	}
	if updated.Role != domain.RoleAuthenticated {
		t.Fatalf("expected authenticated role, got %s", updated.Role)
	}
}

// Promoting an already-admin user to admin again succeeds and is a no-op on
// the observable role value.
func TestPromote_Idempotent(t *testing.T) {
	identity := newStubIdentity(admin("u1"))
	svc := NewRoleService(identity, nil, zerolog.Nop())

	requester := admin("u1")
	updated, err := svc.Promote(context.Background(), &requester, "u1", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("Promote returned error: %v", err)
	}
	if updated.Role != domain.RoleAdmin {
		t.Fatalf("expected admin role, got %s", updated.Role)
	}
}

func TestPromote_InvalidRole(t *testing.T) {
	identity := newStubIdentity(member("u1"))
	svc := NewRoleService(identity, nil, zerolog.Nop())

	requester := member("u1")
	if _, err := svc.Promote(context.Background(), &requester, "u1", domain.Role("superuser")); !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestPromote_UpdateFails(t *testing.T) {
	identity := newStubIdentity(member("u1"))
	identity.updErr = domain.ErrIdentityUnavailable
	svc := NewRoleService(identity, nil, zerolog.Nop())

	requester := member("u1")
	if _, err := svc.Promote(context.Background(), &requester, "u1", domain.RoleAdmin); !errors.Is(err, domain.ErrIdentityUnavailable) {
		t.Fatalf("expected ErrIdentityUnavailable, got %v", err)
	}
}

func TestPromote_AuditFailureIsNonFatal(t *testing.T) {
	identity := newStubIdentity(member("u1"))
	audit := &stubAudit{err: errors.New("mongo down")}
	svc := NewRoleService(identity, audit, zerolog.Nop())

	requester := member("u1")
	if _, err := svc.Promote(context.Background(), &requester, "u1", domain.RoleAdmin); err != nil {
		t.Fatalf("audit failure must not fail the promotion: %v", err)
	}
	if identity.role("u1") != domain.RoleAdmin {
		t.Fatalf("promotion did not land")
	}
}

// Two concurrent bootstrap promotions may both observe zero admins and both
// succeed. That is the documented behaviour of the check-then-act window, not
// a bug to fix here; the test asserts both writes are individually valid.
func TestPromote_ConcurrentBootstrapWindow(t *testing.T) {
	identity := newStubIdentity(member("u1"), member("u2"))
	svc := NewRoleService(identity, nil, zerolog.Nop())

	// Hold each lister at the barrier until both requests are about to take
	// their zero-admin snapshot, forcing the overlap.
	var barrier sync.WaitGroup
	barrier.Add(2)
	identity.onList = func() {
		barrier.Done()
		barrier.Wait()
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{"u1", "u2"} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			requester := member(id)
			_, errs[i] = svc.Promote(context.Background(), &requester, id, domain.RoleAdmin)
		}(i, id)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
	}
	if identity.role("u1") != domain.RoleAdmin || identity.role("u2") != domain.RoleAdmin {
		t.Fatalf("both bootstrap promotions should have landed")
	}
}

func TestListUsers(t *testing.T) {
	identity := newStubIdentity(admin("u1"), member("u2"))
	svc := NewRoleService(identity, nil, zerolog.Nop())

	users, err := svc.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers returned error: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
}
