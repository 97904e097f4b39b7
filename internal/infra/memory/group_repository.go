package memory

import (
	"context"
	"fmt"

	"github.com/systiva/accessctl/pkg/domain/group"
	"github.com/systiva/accessctl/pkg/domain/shared"
	"github.com/systiva/accessctl/pkg/domain/tenant"
)

// GroupRepository implements group.Repository in memory.
type GroupRepository struct {
	groups *collection[group.Group]
}

// NewGroupRepository creates a new in-memory group repository.
func NewGroupRepository() *GroupRepository {
	return &GroupRepository{groups: newCollection[group.Group]()}
}

// Create persists a new group.
func (r *GroupRepository) Create(_ context.Context, tn tenant.Context, g *group.Group) error {
	if r.groups.exists(tn.Key(), g.ID) {
		return fmt.Errorf("%w: group %s", shared.ErrAlreadyExists, g.ID)
	}
	return r.groups.put(tn.Key(), g.ID, g)
}

// GetByID retrieves a group by id within one tenant's catalog.
func (r *GroupRepository) GetByID(_ context.Context, tn tenant.Context, id string) (*group.Group, error) {
	g, err := r.groups.get(tn.Key(), id)
	if err != nil {
		return nil, fmt.Errorf("%w: group %s", err, id)
	}
	return g, nil
}

// GetByName performs an exact name match within one tenant's catalog.
func (r *GroupRepository) GetByName(_ context.Context, tn tenant.Context, name string) (*group.Group, error) {
	groups, err := r.groups.scan(tn.Key())
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
func (r *GroupRepository) Update(_ context.Context, tn tenant.Context, g *group.Group) error {
	if !r.groups.exists(tn.Key(), g.ID) {
		return fmt.Errorf("%w: group %s", shared.ErrNotFound, g.ID)
	}
	return r.groups.put(tn.Key(), g.ID, g)
}

// Delete removes a group record. User references to the group are not
// cascaded; readers treat missing lookups as "group removed".
func (r *GroupRepository) Delete(_ context.Context, tn tenant.Context, id string) error {
	if err := r.groups.delete(tn.Key(), id); err != nil {
		return fmt.Errorf("%w: group %s", err, id)
	}
	return nil
}

// List returns groups in one tenant's catalog, optionally narrowed by the
// enterprise filter.
func (r *GroupRepository) List(_ context.Context, tn tenant.Context, filter group.ListFilter) ([]*group.Group, error) {
	groups, err := r.groups.scan(tn.Key())
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
