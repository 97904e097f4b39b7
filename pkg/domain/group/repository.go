package group

import (
	"context"

	"github.com/systiva/accessctl/pkg/domain/tenant"
)

// Repository defines the interface for per-tenant group persistence.
type Repository interface {
	Create(ctx context.Context, tn tenant.Context, g *Group) error
	GetByID(ctx context.Context, tn tenant.Context, id string) (*Group, error)
	// GetByName performs an exact name match within one tenant's catalog.
	// Name lookups back both per-tenant uniqueness checks and cross-tenant
	// fallback resolution.
	GetByName(ctx context.Context, tn tenant.Context, name string) (*Group, error)
	Update(ctx context.Context, tn tenant.Context, g *Group) error
	Delete(ctx context.Context, tn tenant.Context, id string) error
	List(ctx context.Context, tn tenant.Context, filter ListFilter) ([]*Group, error)
}

// ListFilter contains filter options for listing groups.
type ListFilter struct {
	// Enterprise narrows results to groups whose stored enterprise tag
	// matches the filter. Nil means no filtering.
	Enterprise *tenant.EnterpriseFilter
}
