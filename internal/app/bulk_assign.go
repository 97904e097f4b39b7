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
)

// BulkAssignInput represents a create-and-assign-by-name request: a list of
// group specifications to reconcile against the target tenant's catalog and
// assign to a user. Specs may carry client-side placeholder ids; groups are
// always matched by name.
// Per-spec problems degrade to warnings inside the batch loop, so only the
// envelope is validated here; diving into the specs would reject the whole
// batch on the first bad item.
type BulkAssignInput struct {
	UserID string       `json:"userId" validate:"required"`
	Groups []group.Spec `json:"groups" validate:"required,min=1"`
}

// BulkAssignResult reports the outcome of a bulk create-and-assign request.
// The batch succeeds with warnings when some specifications fail; it fails
// hard only when nothing at all survived.
type BulkAssignResult struct {
	User      *user.User `json:"-"`
	Requested int        `json:"requested"`
	Validated int        `json:"validated"`
	GroupIDs  []string   `json:"groupIds"`
	Warnings  []string   `json:"warnings,omitempty"`
}

// CreateAndAssignGroups reconciles a list of group specifications against
// the target tenant's catalog and replaces the user's membership with the
// outcome.
//
// Per specification, in input order:
//  1. an existing group is looked up by name (never by the caller-supplied
//     id, which may be a client-only placeholder);
//  2. a found group receives a sparse update holding only fields that
//     differ and are non-empty; a blank description never clobbers a
//     stored one;
//  3. a missing group is created from the specification;
//  4. resolved ids are deduplicated across the batch;
//  5. the final set is assigned authoritatively.
//
// A failing specification produces a warning and the batch proceeds;
// specifications are processed sequentially because later ones depend on
// dedup state established by earlier ones. The batch fails hard only when
// every specification was rejected: an empty authoritative replace would
// silently strip all group membership. On caller cancellation mid-batch,
// already-applied creates and updates stay applied; each completed item is
// individually consistent and there is no compensating transaction.
func (s *UserService) CreateAndAssignGroups(ctx context.Context, tn tenant.Context, input BulkAssignInput, enterprise *tenant.EnterpriseFilter) (*BulkAssignResult, error) {
	if err := s.validate.Validate(input); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	_, err := s.repo.GetByID(ctx, tn, input.UserID)
	if err != nil {
		return nil, err
	}

	finalIDs := make([]string, 0, len(input.Groups))
	seen := make(map[string]struct{}, len(input.Groups))
	var warnings []string

	for i, spec := range input.Groups {
		id, warning, err := s.reconcileGroupSpec(ctx, tn, spec)
		if err != nil {
			// Store errors abort the batch; anything else degrades to a
			// per-item warning.
			if shared.IsStore(err) {
				return nil, err
			}
			warnings = append(warnings, fmt.Sprintf("group %q (position %d): %v", spec.Name, i, err))
			continue
		}
		if warning != "" {
			warnings = append(warnings, warning)
		}
		if _, ok := seen[id]; ok {
			s.logger.Debug("duplicate group in batch skipped", "group_id", id, "name", spec.Name)
			continue
		}
		seen[id] = struct{}{}
		finalIDs = append(finalIDs, id)
	}

	metrics.BulkWarningsTotal.Add(float64(len(warnings)))

	if len(finalIDs) == 0 {
		metrics.BulkBatchesTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		return nil, fmt.Errorf("%w: all %d group specifications were rejected: %v",
			shared.ErrEmptyAssignment, len(input.Groups), warnings)
	}

	assignResult, err := s.AssignGroups(ctx, tn, input.UserID, finalIDs, enterprise)
	if err != nil {
		metrics.BulkBatchesTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		return nil, err
	}
	warnings = append(warnings, assignResult.Warnings...)

	outcome := metrics.OutcomeSuccess
	if len(warnings) > 0 {
		outcome = metrics.OutcomePartial
	}
	metrics.BulkBatchesTotal.WithLabelValues(outcome).Inc()

	s.logger.Info("bulk group assignment completed",
		"user_id", input.UserID,
		"tenant", tn.Key(),
		"requested", len(input.Groups),
		"validated", len(assignResult.User.AssignedGroups),
		"warnings", len(warnings),
	)

	event := NewSuccessEvent(audit.ActionBulkGroupsAssign, audit.ResourceTypeUser, input.UserID).
		WithMetadata("requested", len(input.Groups)).
		WithMetadata("validated", len(assignResult.User.AssignedGroups))
	s.logAudit(ctx, tn, event)

	return &BulkAssignResult{
		User:      assignResult.User,
		Requested: len(input.Groups),
		Validated: len(assignResult.User.AssignedGroups),
		GroupIDs:  assignResult.User.AssignedGroups,
		Warnings:  warnings,
	}, nil
}

// reconcileGroupSpec resolves one specification to a real group id,
// creating or sparsely updating the group as needed.
func (s *UserService) reconcileGroupSpec(ctx context.Context, tn tenant.Context, spec group.Spec) (string, string, error) {
	if spec.Name == "" {
		return "", "", fmt.Errorf("%w: group name is required", shared.ErrValidation)
	}

	existing, err := s.groupRepo.GetByName(ctx, tn, spec.Name)
	if err != nil && !shared.IsNotFound(err) {
		return "", "", err
	}

	if existing != nil {
		patch := existing.SparseUpdate(spec)
		if patch.IsEmpty() {
			return existing.ID, "", nil
		}
		if err := existing.Apply(patch); err != nil {
			return "", "", err
		}
		if err := s.groupRepo.Update(ctx, tn, existing); err != nil {
			return "", "", err
		}
		s.logger.Debug("group updated from spec", "group_id", existing.ID, "name", spec.Name)
		return existing.ID, "", nil
	}

	g, err := group.NewFromSpec(spec)
	if err != nil {
		return "", "", err
	}
	if err := s.groupRepo.Create(ctx, tn, g); err != nil {
		return "", "", err
	}
	s.logger.Info("group created from spec", "group_id", g.ID, "name", g.Name, "tenant", tn.Key())

	warning := ""
	if spec.ID != "" && spec.ID != g.ID {
		warning = fmt.Sprintf("group %q: client-supplied id %s replaced with %s", spec.Name, spec.ID, g.ID)
	}
	return g.ID, warning, nil
}
