package dynamo

import (
	"context"
	"fmt"
	"strings"

	"github.com/systiva/accessctl/pkg/domain/group"
	"github.com/systiva/accessctl/pkg/domain/role"
	"github.com/systiva/accessctl/pkg/domain/shared"
	"github.com/systiva/accessctl/pkg/domain/tenant"
	"github.com/systiva/accessctl/pkg/domain/user"
)

// Store bundles the three DynamoDB-backed catalogs over one table.
type Store struct {
	Users  *UserRepository
	Groups *GroupRepository
	Roles  *RoleRepository
}

// NewStore creates repositories sharing one client and table.
func NewStore(client *Client) *Store {
	return &Store{
		Users:  NewUserRepository(client),
		Groups: NewGroupRepository(client),
		Roles:  NewRoleRepository(client),
	}
}

// UserRepository implements user.Repository on DynamoDB.
type UserRepository struct {
	catalog *catalog[user.User]
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(client *Client) *UserRepository {
	return &UserRepository{catalog: newCatalog[user.User](client, "user")}
}

// Create persists a new user.
func (r *UserRepository) Create(ctx context.Context, tn tenant.Context, u *user.User) error {
	return r.catalog.put(ctx, tn.Key(), u.ID, u, false)
}

// GetByID retrieves a user by id within one tenant's catalog.
func (r *UserRepository) GetByID(ctx context.Context, tn tenant.Context, id string) (*user.User, error) {
	return r.catalog.get(ctx, tn.Key(), id)
}

// GetByEmail retrieves a user by email. The table has no index on email,
// so the tenant partition is scanned and matched client-side.
func (r *UserRepository) GetByEmail(ctx context.Context, tn tenant.Context, email string) (*user.User, error) {
	users, err := r.catalog.scan(ctx, tn.Key())
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, fmt.Errorf("%w: user with email %s", shared.ErrNotFound, email)
}

// Update overwrites an existing user record.
func (r *UserRepository) Update(ctx context.Context, tn tenant.Context, u *user.User) error {
	return r.catalog.put(ctx, tn.Key(), u.ID, u, true)
}

// Delete removes a user record.
func (r *UserRepository) Delete(ctx context.Context, tn tenant.Context, id string) error {
	return r.catalog.delete(ctx, tn.Key(), id)
}

// List returns every user in one tenant's catalog.
func (r *UserRepository) List(ctx context.Context, tn tenant.Context) ([]*user.User, error) {
	return r.catalog.scan(ctx, tn.Key())
}

// GroupRepository implements group.Repository on DynamoDB.
type GroupRepository struct {
	catalog *catalog[group.Group]
}

// NewGroupRepository creates a new GroupRepository.
func NewGroupRepository(client *Client) *GroupRepository {
	return &GroupRepository{catalog: newCatalog[group.Group](client, "group")}
}

// Create persists a new group.
func (r *GroupRepository) Create(ctx context.Context, tn tenant.Context, g *group.Group) error {
	return r.catalog.put(ctx, tn.Key(), g.ID, g, false)
}

// GetByID retrieves a group by id within one tenant's catalog.
func (r *GroupRepository) GetByID(ctx context.Context, tn tenant.Context, id string) (*group.Group, error) {
	return r.catalog.get(ctx, tn.Key(), id)
}

// GetByName performs an exact name match by scanning the tenant partition.
func (r *GroupRepository) GetByName(ctx context.Context, tn tenant.Context, name string) (*group.Group, error) {
	groups, err := r.catalog.scan(ctx, tn.Key())
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		if g.Name == name {
			return g, nil
		}
	}
	return nil, fmt.Errorf("%w: group named %q", shared.ErrNotFound, name)
}

// Update overwrites an existing group record.
func (r *GroupRepository) Update(ctx context.Context, tn tenant.Context, g *group.Group) error {
	return r.catalog.put(ctx, tn.Key(), g.ID, g, true)
}

// Delete removes a group record without cascading user references.
func (r *GroupRepository) Delete(ctx context.Context, tn tenant.Context, id string) error {
	return r.catalog.delete(ctx, tn.Key(), id)
}

// List returns groups in one tenant's catalog, optionally narrowed by the
// enterprise filter.
func (r *GroupRepository) List(ctx context.Context, tn tenant.Context, filter group.ListFilter) ([]*group.Group, error) {
	groups, err := r.catalog.scan(ctx, tn.Key())
	if err != nil {
		return nil, err
	}
	if filter.Enterprise == nil {
		return groups, nil
	}
	filtered := make([]*group.Group, 0, len(groups))
	for _, g := range groups {
		if filter.Enterprise.Matches(g.Enterprise) {
			filtered = append(filtered, g)
		}
	}
	return filtered, nil
}

// RoleRepository implements role.Repository on DynamoDB.
type RoleRepository struct {
	catalog *catalog[role.Role]
}

// NewRoleRepository creates a new RoleRepository.
func NewRoleRepository(client *Client) *RoleRepository {
	return &RoleRepository{catalog: newCatalog[role.Role](client, "role")}
}

// Create persists a new role.
func (r *RoleRepository) Create(ctx context.Context, tn tenant.Context, ro *role.Role) error {
	return r.catalog.put(ctx, tn.Key(), ro.ID, ro, false)
}

// GetByID retrieves a role by id within one tenant's catalog.
func (r *RoleRepository) GetByID(ctx context.Context, tn tenant.Context, id string) (*role.Role, error) {
	return r.catalog.get(ctx, tn.Key(), id)
}

// GetByName performs an exact name match by scanning the tenant partition.
func (r *RoleRepository) GetByName(ctx context.Context, tn tenant.Context, name string) (*role.Role, error) {
	roles, err := r.catalog.scan(ctx, tn.Key())
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
func (r *RoleRepository) Update(ctx context.Context, tn tenant.Context, ro *role.Role) error {
	return r.catalog.put(ctx, tn.Key(), ro.ID, ro, true)
}

// Delete removes a role record.
func (r *RoleRepository) Delete(ctx context.Context, tn tenant.Context, id string) error {
	return r.catalog.delete(ctx, tn.Key(), id)
}

// List returns every role in one tenant's catalog.
func (r *RoleRepository) List(ctx context.Context, tn tenant.Context) ([]*role.Role, error) {
	return r.catalog.scan(ctx, tn.Key())
}
