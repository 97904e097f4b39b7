package app

import (
	"context"
	"fmt"

	"github.com/systiva/accessctl/internal/metrics"
	"github.com/systiva/accessctl/pkg/domain/audit"
	"github.com/systiva/accessctl/pkg/domain/group"
	"github.com/systiva/accessctl/pkg/domain/shared"
	"github.com/systiva/accessctl/pkg/domain/tenant"
	"github.com/systiva/accessctl/pkg/domain/user"
	"github.com/systiva/accessctl/pkg/logger"
	"github.com/systiva/accessctl/pkg/validator"
)

// UserService handles user CRUD and group membership operations. Every
// membership write runs through the scope validator; there is no path that
// attaches a group id to a user without it.
type UserService struct {
	repo         user.Repository
	groupRepo    group.Repository
	scopes       *ScopeValidator
	validate     *validator.Validator
	auditService *AuditService
	logger       *logger.Logger
}

// NewUserService creates a new UserService. The group repository backs the
// bulk create-and-assign workflow.
func NewUserService(
	repo user.Repository,
	groupRepo group.Repository,
	scopes *ScopeValidator,
	log *logger.Logger,
	opts ...UserServiceOption,
) *UserService {
	s := &UserService{
		repo:      repo,
		groupRepo: groupRepo,
		scopes:    scopes,
		validate:  validator.New(),
		logger:    log.With("service", "user"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UserServiceOption is a functional option for UserService.
type UserServiceOption func(*UserService)

// WithUserAuditService sets the audit service for UserService.
func WithUserAuditService(auditService *AuditService) UserServiceOption {
	return func(s *UserService) {
		s.auditService = auditService
	}
}

// logAudit logs an audit event if an audit service is configured.
func (s *UserService) logAudit(ctx context.Context, tn tenant.Context, event AuditEvent) {
	if s.auditService == nil {
		return
	}
	s.auditService.LogEvent(ctx, AuditContext{TenantKey: tn.Key()}, event)
}

// =============================================================================
// USER CRUD OPERATIONS
// =============================================================================

// CreateUserInput represents the input for creating a user.
type CreateUserInput struct {
	FirstName     string `json:"firstName" validate:"max=100"`
	LastName      string `json:"lastName" validate:"max=100"`
	Email         string `json:"email" validate:"required,email"`
	TechnicalUser bool   `json:"technicalUser"`
}

// CreateUser creates a new user in the tenant's catalog. Email is unique
// within the tenant.
func (s *UserService) CreateUser(ctx context.Context, tn tenant.Context, input CreateUserInput) (*user.User, error) {
	if err := s.validate.Validate(input); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	existing, err := s.repo.GetByEmail(ctx, tn, input.Email)
	if err != nil && !shared.IsNotFound(err) {
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: email %q is already taken in this tenant", shared.ErrValidation, input.Email)
	}

	u, err := user.New(input.FirstName, input.LastName, input.Email)
	if err != nil {
		return nil, err
	}
	u.TechnicalUser = input.TechnicalUser

	if err := s.repo.Create(ctx, tn, u); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user created", "user_id", u.ID, "tenant", tn.Key())

	event := NewSuccessEvent(audit.ActionUserCreated, audit.ResourceTypeUser, u.ID).
		WithResourceName(u.FullName())
	s.logAudit(ctx, tn, event)

	return u, nil
}

// GetUser retrieves a user by id.
func (s *UserService) GetUser(ctx context.Context, tn tenant.Context, userID string) (*user.User, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", shared.ErrValidation)
	}
	return s.repo.GetByID(ctx, tn, userID)
}

// GetUserByEmail retrieves a user by email.
func (s *UserService) GetUserByEmail(ctx context.Context, tn tenant.Context, email string) (*user.User, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", shared.ErrValidation)
	}
	return s.repo.GetByEmail(ctx, tn, email)
}

// ListUsers lists the tenant's users.
func (s *UserService) ListUsers(ctx context.Context, tn tenant.Context) ([]*user.User, error) {
	return s.repo.List(ctx, tn)
}

// UpdateUser applies a partial update to a user. Only supplied fields
// change; untouched fields retain their prior values.
func (s *UserService) UpdateUser(ctx context.Context, tn tenant.Context, userID string, patch user.Patch) (*user.User, error) {
	u, err := s.repo.GetByID(ctx, tn, userID)
	if err != nil {
		return nil, err
	}

	if patch.IsEmpty() {
		return u, nil
	}

	if patch.Email != nil && *patch.Email != u.Email {
		existing, err := s.repo.GetByEmail(ctx, tn, *patch.Email)
		if err != nil && !shared.IsNotFound(err) {
			return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: email %q is already taken in this tenant", shared.ErrValidation, *patch.Email)
		}
	}

	if err := u.Apply(patch); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, tn, u); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("user updated", "user_id", userID, "tenant", tn.Key())

	event := NewSuccessEvent(audit.ActionUserUpdated, audit.ResourceTypeUser, userID).
		WithResourceName(u.FullName())
	s.logAudit(ctx, tn, event)

	return u, nil
}

// DeleteUser removes a user from the tenant's catalog.
func (s *UserService) DeleteUser(ctx context.Context, tn tenant.Context, userID string) error {
	u, err := s.repo.GetByID(ctx, tn, userID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, tn, userID); err != nil {
		return err
	}

	s.logger.Info("user deleted", "user_id", userID, "tenant", tn.Key())

	event := NewSuccessEvent(audit.ActionUserDeleted, audit.ResourceTypeUser, userID).
		WithResourceName(u.FullName()).
		WithSeverity(audit.SeverityHigh)
	s.logAudit(ctx, tn, event)

	return nil
}

// =============================================================================
// GROUP MEMBERSHIP OPERATIONS
// =============================================================================

// AssignGroup appends one group to the user's membership. The operation is
// idempotent: assigning an already-assigned group changes nothing. In this
// single-item flow a scope violation is the sole failure reason; there is
// no fallback substitution.
func (s *UserService) AssignGroup(ctx context.Context, tn tenant.Context, userID, groupID string) (*user.User, error) {
	if groupID == "" {
		return nil, fmt.Errorf("%w: group id is required", shared.ErrValidation)
	}

	u, err := s.repo.GetByID(ctx, tn, userID)
	if err != nil {
		return nil, err
	}

	result, err := s.scopes.ValidateGroupScope(ctx, groupID, tn)
	if err != nil {
		metrics.AssignmentsTotal.WithLabelValues("group", metrics.OutcomeFailure).Inc()
		return nil, err
	}
	if !result.IsValid {
		metrics.AssignmentsTotal.WithLabelValues("group", metrics.OutcomeFailure).Inc()
		if result.Warning != "" {
			return nil, fmt.Errorf("%w: %s", shared.ErrScopeViolation, result.Warning)
		}
		return nil, fmt.Errorf("%w: group %s", shared.ErrNotFound, groupID)
	}

	u.AssignGroup(result.Group.ID)

	if err := s.repo.Update(ctx, tn, u); err != nil {
		metrics.AssignmentsTotal.WithLabelValues("group", metrics.OutcomeFailure).Inc()
		return nil, fmt.Errorf("failed to persist group assignment: %w", err)
	}

	metrics.AssignmentsTotal.WithLabelValues("group", metrics.OutcomeSuccess).Inc()
	s.logger.Info("group assigned", "user_id", userID, "group_id", result.Group.ID, "tenant", tn.Key())

	event := NewSuccessEvent(audit.ActionGroupAssigned, audit.ResourceTypeUser, userID).
		WithMetadata("group_id", result.Group.ID)
	s.logAudit(ctx, tn, event)

	return u, nil
}

// AssignGroupsResult is the outcome of an authoritative membership replace.
type AssignGroupsResult struct {
	User     *user.User
	Warnings []string
}

// AssignGroups replaces the user's membership wholesale with the validated,
// deduplicated input. Each requested id runs through scope validation with
// fallback resolution: a Global group id requested in an account tenant
// resolves to the same-named account group when one exists, and is dropped
// with a warning otherwise.
//
// When the requested set is non-empty but nothing survives validation the
// replace is refused: an empty authoritative write would silently strip all
// membership.
func (s *UserService) AssignGroups(ctx context.Context, tn tenant.Context, userID string, groupIDs []string, enterprise *tenant.EnterpriseFilter) (*AssignGroupsResult, error) {
	u, err := s.repo.GetByID(ctx, tn, userID)
	if err != nil {
		return nil, err
	}

	resolved := make([]string, 0, len(groupIDs))
	var warnings []string
	seen := make(map[string]struct{}, len(groupIDs))

	for _, groupID := range groupIDs {
		id, warning, err := s.scopes.ResolveAssignable(ctx, groupID, tn, enterprise)
		if err != nil {
			return nil, err
		}
		if warning != "" {
			warnings = append(warnings, warning)
		}
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		resolved = append(resolved, id)
	}

	if len(groupIDs) > 0 && len(resolved) == 0 {
		metrics.AssignmentsTotal.WithLabelValues("group", metrics.OutcomeFailure).Inc()
		return nil, fmt.Errorf("%w: none of the %d requested groups could be assigned in %s",
			shared.ErrEmptyAssignment, len(groupIDs), tn)
	}

	u.AssignGroups(resolved)

	if err := s.repo.Update(ctx, tn, u); err != nil {
		metrics.AssignmentsTotal.WithLabelValues("group", metrics.OutcomeFailure).Inc()
		return nil, fmt.Errorf("failed to persist group assignments: %w", err)
	}

	metrics.AssignmentsTotal.WithLabelValues("group", metrics.OutcomeSuccess).Inc()
	s.logger.Info("group membership replaced",
		"user_id", userID,
		"tenant", tn.Key(),
		"requested", len(groupIDs),
		"assigned", len(resolved),
		"warnings", len(warnings),
	)

	event := NewSuccessEvent(audit.ActionGroupsReplaced, audit.ResourceTypeUser, userID).
		WithMetadata("assigned_count", len(resolved)).
		WithMetadata("warning_count", len(warnings))
	s.logAudit(ctx, tn, event)

	return &AssignGroupsResult{User: u, Warnings: warnings}, nil
}

// RemoveGroup removes one group from the user's membership.
func (s *UserService) RemoveGroup(ctx context.Context, tn tenant.Context, userID, groupID string) (*user.User, error) {
	return s.RemoveGroups(ctx, tn, userID, []string{groupID})
}

// RemoveGroups removes the given groups from the user's membership (set
// difference). Ids the user is not assigned to are ignored.
func (s *UserService) RemoveGroups(ctx context.Context, tn tenant.Context, userID string, groupIDs []string) (*user.User, error) {
	if len(groupIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one group id is required", shared.ErrValidation)
	}

	u, err := s.repo.GetByID(ctx, tn, userID)
	if err != nil {
		return nil, err
	}

	u.RemoveGroups(groupIDs)

	if err := s.repo.Update(ctx, tn, u); err != nil {
		return nil, fmt.Errorf("failed to persist group removal: %w", err)
	}

	s.logger.Info("groups removed", "user_id", userID, "tenant", tn.Key(), "removed", len(groupIDs))

	event := NewSuccessEvent(audit.ActionGroupRemoved, audit.ResourceTypeUser, userID).
		WithMetadata("group_ids", groupIDs)
	s.logAudit(ctx, tn, event)

	return u, nil
}
