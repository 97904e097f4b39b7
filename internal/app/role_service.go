package app

import (
	"context"
	"fmt"

	"github.com/systiva/accessctl/pkg/domain/audit"
	"github.com/systiva/accessctl/pkg/domain/role"
	"github.com/systiva/accessctl/pkg/domain/shared"
	"github.com/systiva/accessctl/pkg/domain/tenant"
	"github.com/systiva/accessctl/pkg/logger"
	"github.com/systiva/accessctl/pkg/validator"
)

// RoleService handles role CRUD operations. The scope configuration blob
// is stored opaquely; interpreting permissions belongs to the surrounding
// admin backend.
type RoleService struct {
	repo         role.Repository
	validate     *validator.Validator
	auditService *AuditService
	logger       *logger.Logger
}

// NewRoleService creates a new RoleService.
func NewRoleService(repo role.Repository, log *logger.Logger, opts ...RoleServiceOption) *RoleService {
	s := &RoleService{
		repo:     repo,
		validate: validator.New(),
		logger:   log.With("service", "role"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RoleServiceOption is a functional option for RoleService.
type RoleServiceOption func(*RoleService)

// WithRoleAuditService sets the audit service for RoleService.
func WithRoleAuditService(auditService *AuditService) RoleServiceOption {
	return func(s *RoleService) {
		s.auditService = auditService
	}
}

func (s *RoleService) logAudit(ctx context.Context, tn tenant.Context, event AuditEvent) {
	if s.auditService == nil {
		return
	}
	s.auditService.LogEvent(ctx, AuditContext{TenantKey: tn.Key()}, event)
}

// CreateRoleInput represents the input for creating a role.
type CreateRoleInput struct {
	Name        string         `json:"name" validate:"required,min=1,max=100"`
	Description string         `json:"description" validate:"max=500"`
	ScopeConfig map[string]any `json:"scopeConfig"`
}

// CreateRole creates a new role in the tenant's catalog.
func (s *RoleService) CreateRole(ctx context.Context, tn tenant.Context, input CreateRoleInput) (*role.Role, error) {
	if err := s.validate.Validate(input); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	r, err := role.New(input.Name)
	if err != nil {
		return nil, err
	}
	r.Description = input.Description
	r.ScopeConfig = input.ScopeConfig

	if err := s.repo.Create(ctx, tn, r); err != nil {
		return nil, fmt.Errorf("failed to create role: %w", err)
	}

	s.logger.Info("role created", "role_id", r.ID, "name", r.Name, "tenant", tn.Key())

	event := NewSuccessEvent(audit.ActionRoleCreated, audit.ResourceTypeRole, r.ID).
		WithResourceName(r.Name)
	s.logAudit(ctx, tn, event)

	return r, nil
}

// GetRole retrieves a role by id.
func (s *RoleService) GetRole(ctx context.Context, tn tenant.Context, roleID string) (*role.Role, error) {
	if roleID == "" {
		return nil, fmt.Errorf("%w: role id is required", shared.ErrValidation)
	}
	return s.repo.GetByID(ctx, tn, roleID)
}

// ListRoles lists the tenant's roles.
func (s *RoleService) ListRoles(ctx context.Context, tn tenant.Context) ([]*role.Role, error) {
	return s.repo.List(ctx, tn)
}

// UpdateRole applies a partial update to a role.
func (s *RoleService) UpdateRole(ctx context.Context, tn tenant.Context, roleID string, patch role.Patch) (*role.Role, error) {
	r, err := s.repo.GetByID(ctx, tn, roleID)
	if err != nil {
		return nil, err
	}

	if patch.IsEmpty() {
		return r, nil
	}

	if err := r.Apply(patch); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, tn, r); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	s.logger.Info("role updated", "role_id", roleID, "tenant", tn.Key())

	event := NewSuccessEvent(audit.ActionRoleUpdated, audit.ResourceTypeRole, roleID).
		WithResourceName(r.Name)
	s.logAudit(ctx, tn, event)

	return r, nil
}

// DeleteRole removes a role from the tenant's catalog. Group references to
// the role are not cascade-deleted.
func (s *RoleService) DeleteRole(ctx context.Context, tn tenant.Context, roleID string) error {
	r, err := s.repo.GetByID(ctx, tn, roleID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, tn, roleID); err != nil {
		return err
	}

	s.logger.Info("role deleted", "role_id", roleID, "tenant", tn.Key())

	event := NewSuccessEvent(audit.ActionRoleDeleted, audit.ResourceTypeRole, roleID).
		WithResourceName(r.Name).
		WithSeverity(audit.SeverityHigh)
	s.logAudit(ctx, tn, event)

	return nil
}
