package role

import (
	"context"

	"github.com/systiva/accessctl/pkg/domain/tenant"
)

// Repository defines the interface for per-tenant role persistence.
type Repository interface {
	Create(ctx context.Context, tn tenant.Context, r *Role) error
	GetByID(ctx context.Context, tn tenant.Context, id string) (*Role, error)
	GetByName(ctx context.Context, tn tenant.Context, name string) (*Role, error)
	Update(ctx context.Context, tn tenant.Context, r *Role) error
	Delete(ctx context.Context, tn tenant.Context, id string) error
	List(ctx context.Context, tn tenant.Context) ([]*Role, error)
}
