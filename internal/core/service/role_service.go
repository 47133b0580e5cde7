package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/launchkit/boilerplate/internal/api/metrics"
	"github.com/launchkit/boilerplate/internal/core/domain"
	"github.com/launchkit/boilerplate/internal/core/ports"
)

// RoleService implements the role-bootstrap use cases on top of the
// Identity Service.
type RoleService struct {
	identity ports.IdentityProvider
	audit    ports.AuditRepository
	logger   zerolog.Logger
}

// NewRoleService returns a RoleService. The audit repository may be nil, in
// which case role changes are logged but not persisted.
func NewRoleService(identity ports.IdentityProvider, audit ports.AuditRepository, logger zerolog.Logger) *RoleService {
	return &RoleService{identity: identity, audit: audit, logger: logger}
}

// AdminCount returns the number of users holding the admin role. The value
// is recomputed from a full listing on every call; there is no cache.
func (s *RoleService) AdminCount(ctx context.Context) (int, error) {
	count, err := s.adminCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("admin count: %w", err)
	}
	return count, nil
}

func (s *RoleService) adminCount(ctx context.Context) (int, error) {
	users, err := s.identity.ListUsers(ctx)
	if err != nil {
		return 0, err
	}
	metrics.AdminCountChecks.Inc()

	count := 0
	for _, u := range users {
		if u.Role == domain.RoleAdmin {
			count++
		}
	}
	return count, nil
}

// Promote sets the target user's role, enforcing the bootstrap rule: once any
// admin exists only admins may change roles; while zero admins exist any
// authenticated requester may promote any target. The count and the update
// are two separate provider calls with no lock between them, so concurrent
// bootstrap promotions may each observe zero admins and both succeed.
func (s *RoleService) Promote(ctx context.Context, requester *domain.User, targetID string, role domain.Role) (*domain.User, error) {
	if requester == nil {
		return nil, domain.ErrInvalidToken
	}
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	adminCount, err := s.adminCount(ctx)
	if err != nil {
		metrics.PromotionsTotal.WithLabelValues("error", "false").Inc()
		return nil, fmt.Errorf("promote: %w", err)
	}
	bootstrap := adminCount == 0

	if !bootstrap && !requester.IsAdmin() {
		metrics.PromotionsTotal.WithLabelValues("forbidden", "false").Inc()
		s.logger.Warn().
			Str("requester_id", requester.ID).
			Str("target_id", targetID).
			Msg("promotion denied: requester is not admin")
		return nil, domain.ErrForbidden
	}

	updated, err := s.identity.UpdateUserRole(ctx, targetID, role)
	if err != nil {
		metrics.PromotionsTotal.WithLabelValues("error", strconv.FormatBool(bootstrap)).Inc()
		return nil, fmt.Errorf("promote: update role: %w", err)
	}

	s.recordAudit(ctx, requester, targetID, role, bootstrap)
	metrics.PromotionsTotal.WithLabelValues("success", strconv.FormatBool(bootstrap)).Inc()

	s.logger.Info().
		Str("requester_id", requester.ID).
		Str("target_id", targetID).
		Str("role", string(role)).
		Bool("bootstrap", bootstrap).
		Msg("role updated")

	return updated, nil
}

// ListUsers returns every user record. Access control is the caller's
// concern: any verified user may list.
func (s *RoleService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.identity.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// recordAudit writes the role change to the audit trail. Failures are logged
// and swallowed: the promotion has already landed in the provider.
func (s *RoleService) recordAudit(ctx context.Context, requester *domain.User, targetID string, role domain.Role, bootstrap bool) {
	if s.audit == nil {
		return
	}
	change := &ports.RoleChange{
		RequesterID:    requester.ID,
		RequesterEmail: requester.Email,
		TargetID:       targetID,
		Role:           role,
		Bootstrap:      bootstrap,
		At:             time.Now().UTC(),
	}
	if err := s.audit.InsertRoleChange(ctx, change); err != nil {
		s.logger.Warn().Err(err).Str("target_id", targetID).Msg("failed to insert audit entry")
	}
}
