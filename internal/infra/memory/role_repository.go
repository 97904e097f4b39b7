package memory

import (
	"context"
	"fmt"

	"github.com/systiva/accessctl/pkg/domain/role"
	"github.com/systiva/accessctl/pkg/domain/shared"
	"github.com/systiva/accessctl/pkg/domain/tenant"
)

// RoleRepository implements role.Repository in memory.
type RoleRepository struct {
	roles *collection[role.Role]
}

// NewRoleRepository creates a new in-memory role repository.
func NewRoleRepository() *RoleRepository {
	return &RoleRepository{roles: newCollection[role.Role]()}
}

// Create persists a new role.
func (r *RoleRepository) Create(_ context.Context, tn tenant.Context, ro *role.Role) error {
	if r.roles.exists(tn.Key(), ro.ID) {
		return fmt.Errorf("%w: role %s", shared.ErrAlreadyExists, ro.ID)
	}
	return r.roles.put(tn.Key(), ro.ID, ro)
}

// GetByID retrieves a role by id within one tenant's catalog.
func (r *RoleRepository) GetByID(_ context.Context, tn tenant.Context, id string) (*role.Role, error) {
	ro, err := r.roles.get(tn.Key(), id)
	if err != nil {
		return nil, fmt.Errorf("%w: role %s", err, id)
	}
	return ro, nil
}

// GetByName performs an exact name match within one tenant's catalog.
func (r *RoleRepository) GetByName(_ context.Context, tn tenant.Context, name string) (*role.Role, error) {
	roles, err := r.roles.scan(tn.Key())
	if err != nil {
		return nil, err
	}
	for _, ro := range roles {
		if ro.Name == name {
			return ro, nil
		}
	}
	return nil, fmt.Errorf("%w: role named %q", shared.ErrNotFound, name)
}

// Update overwrites an existing role record.
func (r *RoleRepository) Update(_ context.Context, tn tenant.Context, ro *role.Role) error {
	if !r.roles.exists(tn.Key(), ro.ID) {
		return fmt.Errorf("%w: role %s", shared.ErrNotFound, ro.ID)
	}
	return r.roles.put(tn.Key(), ro.ID, ro)
}

// Delete removes a role record.
func (r *RoleRepository) Delete(_ context.Context, tn tenant.Context, id string) error {
	if err := r.roles.delete(tn.Key(), id); err != nil {
		return fmt.Errorf("%w: role %s", err, id)
	}
	return nil
}

// List returns every role in one tenant's catalog, unordered.
func (r *RoleRepository) List(_ context.Context, tn tenant.Context) ([]*role.Role, error) {
	return r.roles.scan(tn.Key())
}
