package app

import (
	"context"
	"fmt"

	"github.com/systiva/accessctl/internal/metrics"
	"github.com/systiva/accessctl/pkg/domain/audit"
	"github.com/systiva/accessctl/pkg/domain/group"
	"github.com/systiva/accessctl/pkg/domain/role"
	"github.com/systiva/accessctl/pkg/domain/shared"
	"github.com/systiva/accessctl/pkg/domain/tenant"
	"github.com/systiva/accessctl/pkg/logger"
	"github.com/systiva/accessctl/pkg/validator"
)

// GroupService handles group CRUD and role membership operations.
type GroupService struct {
	repo         group.Repository
	roleRepo     role.Repository
	validate     *validator.Validator
	auditService *AuditService
	logger       *logger.Logger
}

// NewGroupService creates a new GroupService.
func NewGroupService(
	repo group.Repository,
	roleRepo role.Repository,
	log *logger.Logger,
	opts ...GroupServiceOption,
) *GroupService {
	s := &GroupService{
		repo:     repo,
		roleRepo: roleRepo,
		validate: validator.New(),
		logger:   log.With("service", "group"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GroupServiceOption is a functional option for GroupService.
type GroupServiceOption func(*GroupService)

// WithGroupAuditService sets the audit service for GroupService.
func WithGroupAuditService(auditService *AuditService) GroupServiceOption {
	return func(s *GroupService) {
		s.auditService = auditService
	}
}

func (s *GroupService) logAudit(ctx context.Context, tn tenant.Context, event AuditEvent) {
	if s.auditService == nil {
		return
	}
	s.auditService.LogEvent(ctx, AuditContext{TenantKey: tn.Key()}, event)
}

// =============================================================================
// GROUP CRUD OPERATIONS
// =============================================================================

// CreateGroupInput represents the input for creating a group.
type CreateGroupInput struct {
	Name        string   `json:"name" validate:"required,min=1,max=100"`
	Description string   `json:"description" validate:"max=500"`
	Entity      string   `json:"entity" validate:"max=100"`
	Product     string   `json:"product" validate:"max=100"`
	Service     string   `json:"service" validate:"max=100"`
	Enterprise  string   `json:"enterprise" validate:"max=100"`
	Roles       []string `json:"assignedRoles"`
}

// CreateGroup creates a new group in the tenant's catalog. Names are
// unique within the tenant but not across tenants: two accounts may each
// own a distinct group named "Administrators".
func (s *GroupService) CreateGroup(ctx context.Context, tn tenant.Context, input CreateGroupInput) (*group.Group, error) {
	if err := s.validate.Validate(input); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	existing, err := s.repo.GetByName(ctx, tn, input.Name)
	if err != nil && !shared.IsNotFound(err) {
		return nil, fmt.Errorf("failed to check name uniqueness: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: group name %q is already taken in this tenant", shared.ErrValidation, input.Name)
	}

	g, err := group.New(input.Name)
	if err != nil {
		return nil, err
	}
	g.Description = input.Description
	g.Entity = input.Entity
	g.Product = input.Product
	g.Service = input.Service
	g.Enterprise = input.Enterprise
	if len(input.Roles) > 0 {
		if err := s.checkRolesExist(ctx, tn, input.Roles); err != nil {
			return nil, err
		}
		g.AssignRoles(input.Roles)
	}

	if err := s.repo.Create(ctx, tn, g); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	s.logger.Info("group created", "group_id", g.ID, "name", g.Name, "tenant", tn.Key())

	event := NewSuccessEvent(audit.ActionGroupCreated, audit.ResourceTypeGroup, g.ID).
		WithResourceName(g.Name)
	s.logAudit(ctx, tn, event)

	return g, nil
}

// GetGroup retrieves a group by id.
func (s *GroupService) GetGroup(ctx context.Context, tn tenant.Context, groupID string) (*group.Group, error) {
	if groupID == "" {
		return nil, fmt.Errorf("%w: group id is required", shared.ErrValidation)
	}
	return s.repo.GetByID(ctx, tn, groupID)
}

// FindByName retrieves a group by exact name within the tenant's catalog.
func (s *GroupService) FindByName(ctx context.Context, tn tenant.Context, name string) (*group.Group, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: group name is required", shared.ErrValidation)
	}
	return s.repo.GetByName(ctx, tn, name)
}

// ListGroups lists the tenant's groups, optionally narrowed by the
// enterprise filter.
func (s *GroupService) ListGroups(ctx context.Context, tn tenant.Context, enterprise *tenant.EnterpriseFilter) ([]*group.Group, error) {
	return s.repo.List(ctx, tn, group.ListFilter{Enterprise: enterprise})
}

// UpdateGroup applies a partial update to a group.
func (s *GroupService) UpdateGroup(ctx context.Context, tn tenant.Context, groupID string, patch group.Patch) (*group.Group, error) {
	g, err := s.repo.GetByID(ctx, tn, groupID)
	if err != nil {
		return nil, err
	}

	if patch.IsEmpty() {
		return g, nil
	}

	if patch.Name != nil && *patch.Name != g.Name {
		existing, err := s.repo.GetByName(ctx, tn, *patch.Name)
		if err != nil && !shared.IsNotFound(err) {
			return nil, fmt.Errorf("failed to check name uniqueness: %w", err)
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: group name %q is already taken in this tenant", shared.ErrValidation, *patch.Name)
		}
	}
	if patch.Roles != nil {
		if err := s.checkRolesExist(ctx, tn, *patch.Roles); err != nil {
			return nil, err
		}
	}

	if err := g.Apply(patch); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, tn, g); err != nil {
		return nil, fmt.Errorf("failed to update group: %w", err)
	}

	s.logger.Info("group updated", "group_id", groupID, "tenant", tn.Key())

	event := NewSuccessEvent(audit.ActionGroupUpdated, audit.ResourceTypeGroup, groupID).
		WithResourceName(g.Name)
	s.logAudit(ctx, tn, event)

	return g, nil
}

// DeleteGroup removes a group from the tenant's catalog. User references
// to the group are not cascade-deleted; readers treat the missing lookup
// as "group removed".
func (s *GroupService) DeleteGroup(ctx context.Context, tn tenant.Context, groupID string) error {
	g, err := s.repo.GetByID(ctx, tn, groupID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, tn, groupID); err != nil {
		return err
	}

	s.logger.Info("group deleted", "group_id", groupID, "tenant", tn.Key())

	event := NewSuccessEvent(audit.ActionGroupDeleted, audit.ResourceTypeGroup, groupID).
		WithResourceName(g.Name).
		WithSeverity(audit.SeverityHigh)
	s.logAudit(ctx, tn, event)

	return nil
}

// =============================================================================
// ROLE MEMBERSHIP OPERATIONS
// =============================================================================

// AssignRole appends one role to the group's assigned roles (idempotent).
// Roles never cross tenant boundaries, so the role must exist in the
// group's own catalog.
func (s *GroupService) AssignRole(ctx context.Context, tn tenant.Context, groupID, roleID string) (*group.Group, error) {
	if roleID == "" {
		return nil, fmt.Errorf("%w: role id is required", shared.ErrValidation)
	}

	g, err := s.repo.GetByID(ctx, tn, groupID)
	if err != nil {
		return nil, err
	}

	if err := s.checkRolesExist(ctx, tn, []string{roleID}); err != nil {
		metrics.AssignmentsTotal.WithLabelValues("role", metrics.OutcomeFailure).Inc()
		return nil, err
	}

	g.AssignRole(roleID)

	if err := s.repo.Update(ctx, tn, g); err != nil {
		metrics.AssignmentsTotal.WithLabelValues("role", metrics.OutcomeFailure).Inc()
		return nil, fmt.Errorf("failed to persist role assignment: %w", err)
	}

	metrics.AssignmentsTotal.WithLabelValues("role", metrics.OutcomeSuccess).Inc()
	s.logger.Info("role assigned", "group_id", groupID, "role_id", roleID, "tenant", tn.Key())

	event := NewSuccessEvent(audit.ActionRoleAssigned, audit.ResourceTypeGroup, groupID).
		WithMetadata("role_id", roleID)
	s.logAudit(ctx, tn, event)

	return g, nil
}

// AssignRoles replaces the group's assigned roles wholesale with the
// deduplicated input.
func (s *GroupService) AssignRoles(ctx context.Context, tn tenant.Context, groupID string, roleIDs []string) (*group.Group, error) {
	g, err := s.repo.GetByID(ctx, tn, groupID)
	if err != nil {
		return nil, err
	}

	if err := s.checkRolesExist(ctx, tn, roleIDs); err != nil {
		metrics.AssignmentsTotal.WithLabelValues("role", metrics.OutcomeFailure).Inc()
		return nil, err
	}

	g.AssignRoles(roleIDs)

	if err := s.repo.Update(ctx, tn, g); err != nil {
		metrics.AssignmentsTotal.WithLabelValues("role", metrics.OutcomeFailure).Inc()
		return nil, fmt.Errorf("failed to persist role assignments: %w", err)
	}

	metrics.AssignmentsTotal.WithLabelValues("role", metrics.OutcomeSuccess).Inc()
	s.logger.Info("role membership replaced", "group_id", groupID, "tenant", tn.Key(), "assigned", len(g.AssignedRoles))

	event := NewSuccessEvent(audit.ActionRolesReplaced, audit.ResourceTypeGroup, groupID).
		WithMetadata("assigned_count", len(g.AssignedRoles))
	s.logAudit(ctx, tn, event)

	return g, nil
}

// RemoveRole removes one role from the group.
func (s *GroupService) RemoveRole(ctx context.Context, tn tenant.Context, groupID, roleID string) (*group.Group, error) {
	return s.RemoveRoles(ctx, tn, groupID, []string{roleID})
}

// RemoveRoles removes the given roles from the group (set difference).
func (s *GroupService) RemoveRoles(ctx context.Context, tn tenant.Context, groupID string, roleIDs []string) (*group.Group, error) {
	if len(roleIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one role id is required", shared.ErrValidation)
	}

	g, err := s.repo.GetByID(ctx, tn, groupID)
	if err != nil {
		return nil, err
	}

	g.RemoveRoles(roleIDs)

	if err := s.repo.Update(ctx, tn, g); err != nil {
		return nil, fmt.Errorf("failed to persist role removal: %w", err)
	}

	s.logger.Info("roles removed", "group_id", groupID, "tenant", tn.Key(), "removed", len(roleIDs))

	event := NewSuccessEvent(audit.ActionRoleRemoved, audit.ResourceTypeGroup, groupID).
		WithMetadata("role_ids", roleIDs)
	s.logAudit(ctx, tn, event)

	return g, nil
}

// checkRolesExist verifies every role id exists in the tenant's catalog.
// The role repository is optional wiring; without it, role references are
// written as-is (dangling references are tolerated on read).
func (s *GroupService) checkRolesExist(ctx context.Context, tn tenant.Context, roleIDs []string) error {
	if s.roleRepo == nil {
		return nil
	}
	for _, id := range roleIDs {
		if _, err := s.roleRepo.GetByID(ctx, tn, id); err != nil {
			if shared.IsNotFound(err) {
				return fmt.Errorf("%w: role %s does not exist in %s", shared.ErrValidation, id, tn)
			}
			return fmt.Errorf("failed to check role existence: %w", err)
		}
	}
	return nil
}
