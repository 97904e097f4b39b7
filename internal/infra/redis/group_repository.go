package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/systiva/accessctl/pkg/domain/group"
	"github.com/systiva/accessctl/pkg/domain/tenant"
)

// CachedGroupRepository decorates a group.Repository with a read-through
// cache. Scope resolution hits group lookups on every assignment, so id
// and name reads are cached per tenant; writes invalidate both entries.
type CachedGroupRepository struct {
	inner  group.Repository
	byID   *Cache[group.Group]
	byName *Cache[group.Group]
}

// NewCachedGroupRepository wraps repo with caching backed by client.
func NewCachedGroupRepository(repo group.Repository, client *Client, ttl time.Duration) (*CachedGroupRepository, error) {
	byID, err := NewCache[group.Group](client, "group:id", ttl)
	if err != nil {
		return nil, err
	}
	byName, err := NewCache[group.Group](client, "group:name", ttl)
	if err != nil {
		return nil, err
	}
	return &CachedGroupRepository{
		inner:  repo,
		byID:   byID,
		byName: byName,
	}, nil
}

func cacheKey(tn tenant.Context, part string) string {
	return fmt.Sprintf("%s:%s", tn.Key(), part)
}

// Create persists the group and invalidates any stale name entry.
func (r *CachedGroupRepository) Create(ctx context.Context, tn tenant.Context, g *group.Group) error {
	if err := r.inner.Create(ctx, tn, g); err != nil {
		return err
	}
	r.invalidate(ctx, tn, g)
	return nil
}

// GetByID reads through the id cache.
func (r *CachedGroupRepository) GetByID(ctx context.Context, tn tenant.Context, id string) (*group.Group, error) {
	return r.byID.GetOrSet(ctx, cacheKey(tn, id), func(ctx context.Context) (*group.Group, error) {
		return r.inner.GetByID(ctx, tn, id)
	})
}

// GetByName reads through the name cache.
func (r *CachedGroupRepository) GetByName(ctx context.Context, tn tenant.Context, name string) (*group.Group, error) {
	return r.byName.GetOrSet(ctx, cacheKey(tn, name), func(ctx context.Context) (*group.Group, error) {
		return r.inner.GetByName(ctx, tn, name)
	})
}

// Update persists the group and invalidates cached copies. The previously
// stored record is fetched first so a rename drops the old name entry too;
// otherwise the freed name keeps serving the stale record until TTL.
func (r *CachedGroupRepository) Update(ctx context.Context, tn tenant.Context, g *group.Group) error {
	stored, err := r.inner.GetByID(ctx, tn, g.ID)
	if err != nil {
		return err
	}
	if err := r.inner.Update(ctx, tn, g); err != nil {
		return err
	}
	r.invalidate(ctx, tn, g)
	if stored.Name != g.Name {
		if err := r.byName.Invalidate(ctx, cacheKey(tn, stored.Name)); err != nil {
			r.byName.client.logger.Warn("group name cache invalidation failed", "group_name", stored.Name, "error", err)
		}
	}
	return nil
}

// Delete removes the group and invalidates cached copies. The stored
// record is fetched first so the name entry can be dropped too.
func (r *CachedGroupRepository) Delete(ctx context.Context, tn tenant.Context, id string) error {
	stored, err := r.inner.GetByID(ctx, tn, id)
	if err != nil {
		return err
	}
	if err := r.inner.Delete(ctx, tn, id); err != nil {
		return err
	}
	r.invalidate(ctx, tn, stored)
	return nil
}

// List always hits the backing store; listings are not cached.
func (r *CachedGroupRepository) List(ctx context.Context, tn tenant.Context, filter group.ListFilter) ([]*group.Group, error) {
	return r.inner.List(ctx, tn, filter)
}

func (r *CachedGroupRepository) invalidate(ctx context.Context, tn tenant.Context, g *group.Group) {
	if err := r.byID.Invalidate(ctx, cacheKey(tn, g.ID)); err != nil {
		r.byID.client.logger.Warn("group id cache invalidation failed", "group_id", g.ID, "error", err)
	}
	if err := r.byName.Invalidate(ctx, cacheKey(tn, g.Name)); err != nil {
		r.byName.client.logger.Warn("group name cache invalidation failed", "group_name", g.Name, "error", err)
	}
}
