package user

import (
	"context"

	"github.com/systiva/accessctl/pkg/domain/tenant"
)

// Repository defines the interface for per-tenant user persistence.
// Implementations provide single-item atomicity only; no cross-entity
// integrity is enforced at this layer.
type Repository interface {
	Create(ctx context.Context, tn tenant.Context, u *User) error
	GetByID(ctx context.Context, tn tenant.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, tn tenant.Context, email string) (*User, error)
	Update(ctx context.Context, tn tenant.Context, u *User) error
	Delete(ctx context.Context, tn tenant.Context, id string) error
	List(ctx context.Context, tn tenant.Context) ([]*User, error)
}
