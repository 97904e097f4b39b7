package app

import (
	"context"
	"fmt"

	"github.com/systiva/accessctl/internal/metrics"
	"github.com/systiva/accessctl/pkg/domain/group"
	"github.com/systiva/accessctl/pkg/domain/shared"
	"github.com/systiva/accessctl/pkg/domain/tenant"
	"github.com/systiva/accessctl/pkg/logger"
)

// ScopeValidator decides whether a group is assignable within a target
// tenant and resolves same-named fallbacks when it is not. It is the only
// write-time gate between group references and user membership: no write
// path may attach a group id to a user without passing through here.
type ScopeValidator struct {
	groupRepo group.Repository
	logger    *logger.Logger
}

// NewScopeValidator creates a new ScopeValidator.
func NewScopeValidator(groupRepo group.Repository, log *logger.Logger) *ScopeValidator {
	return &ScopeValidator{
		groupRepo: groupRepo,
		logger:    log.With("service", "scope_validator"),
	}
}

// ScopeResult is the outcome of validating one group id against a target
// tenant.
type ScopeResult struct {
	// IsValid reports whether the group may be assigned as-is.
	IsValid bool
	// Group is the located group, if any catalog held it.
	Group *group.Group
	// ScopeType is the catalog the group was found in.
	ScopeType tenant.Scope
	// Warning explains an invalid pairing in caller-facing terms.
	Warning string
}

// ValidateGroupScope locates groupID and decides whether it is assignable
// within the target tenant. A group id is only meaningful within the
// catalog it was created in, so both catalogs the id could plausibly
// belong to are searched: the target tenant's own catalog first, then
// Global.
//
// A group found only in the Global catalog while the target is an account
// is the cross-tenant-leakage case this engine exists to prevent; it comes
// back invalid with a warning, and callers use FindAccountGroupByName to
// attempt fallback resolution.
func (v *ScopeValidator) ValidateGroupScope(ctx context.Context, groupID string, target tenant.Context) (*ScopeResult, error) {
	g, err := v.groupRepo.GetByID(ctx, target, groupID)
	if err == nil {
		scopeType := tenant.ScopeAccount
		if target.IsGlobal() {
			scopeType = tenant.ScopeGlobal
		}
		return &ScopeResult{IsValid: true, Group: g, ScopeType: scopeType}, nil
	}
	if !shared.IsNotFound(err) {
		return nil, fmt.Errorf("scope validation lookup failed: %w", err)
	}

	if target.IsGlobal() {
		// Already searched the Global catalog above.
		return &ScopeResult{IsValid: false}, nil
	}

	g, err = v.groupRepo.GetByID(ctx, tenant.Global(), groupID)
	if err != nil {
		if shared.IsNotFound(err) {
			return &ScopeResult{IsValid: false}, nil
		}
		return nil, fmt.Errorf("scope validation lookup failed: %w", err)
	}

	metrics.ScopeViolationsTotal.Inc()
	v.logger.Warn("global group requested in account tenant",
		"group_id", groupID,
		"group_name", g.Name,
		"target_tenant", target.Key(),
	)

	return &ScopeResult{
		IsValid:   false,
		Group:     g,
		ScopeType: tenant.ScopeGlobal,
		Warning: fmt.Sprintf("group %q (%s) belongs to the %s catalog and cannot be assigned in %s",
			g.Name, g.ID, tenant.GlobalName, target),
	}, nil
}

// FindAccountGroupByName scans the target tenant's catalog for a group with
// exactly the given name, optionally narrowed by the enterprise filter. It
// is the fallback used when a caller requests a Global group while
// operating in an account tenant: the same group, but locally owned.
func (v *ScopeValidator) FindAccountGroupByName(ctx context.Context, name string, target tenant.Context, enterprise *tenant.EnterpriseFilter) (*group.Group, error) {
	groups, err := v.groupRepo.List(ctx, target, group.ListFilter{Enterprise: enterprise})
	if err != nil {
		return nil, fmt.Errorf("fallback lookup failed: %w", err)
	}
	for _, g := range groups {
		if g.Name == name {
			return g, nil
		}
	}
	return nil, fmt.Errorf("%w: group named %q in %s", shared.ErrNotFound, name, target)
}

// ResolveAssignable runs scope validation with fallback resolution and
// returns the group id that may actually be assigned in the target tenant,
// or "" when the reference must be dropped. The warning, when non-empty,
// explains what happened to the requested id.
func (v *ScopeValidator) ResolveAssignable(ctx context.Context, groupID string, target tenant.Context, enterprise *tenant.EnterpriseFilter) (string, string, error) {
	result, err := v.ValidateGroupScope(ctx, groupID, target)
	if err != nil {
		return "", "", err
	}
	if result.IsValid {
		return result.Group.ID, "", nil
	}

	if result.Group == nil {
		return "", fmt.Sprintf("group %s not found in any catalog; dropped from assignment", groupID), nil
	}

	// Global group in an account tenant: substitute the same-named local
	// group when one exists, otherwise drop with a warning. Never assign
	// the Global id, never fail the whole request.
	local, err := v.FindAccountGroupByName(ctx, result.Group.Name, target, enterprise)
	if err != nil {
		if shared.IsNotFound(err) {
			return "", fmt.Sprintf("%s; no same-named group exists in the account catalog, dropped from assignment", result.Warning), nil
		}
		return "", "", err
	}

	metrics.FallbackSubstitutionsTotal.Inc()
	v.logger.Info("substituted global group with account-local group",
		"group_name", result.Group.Name,
		"global_id", result.Group.ID,
		"local_id", local.ID,
		"target_tenant", target.Key(),
	)
	return local.ID, fmt.Sprintf("substituted %s group %q (%s) with account group %s",
		tenant.GlobalName, result.Group.Name, result.Group.ID, local.ID), nil
}
