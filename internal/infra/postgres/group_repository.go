package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/systiva/accessctl/pkg/domain/group"
	"github.com/systiva/accessctl/pkg/domain/shared"
	"github.com/systiva/accessctl/pkg/domain/tenant"
)

// GroupRepository implements group.Repository using PostgreSQL.
type GroupRepository struct {
	db *DB
}

// NewGroupRepository creates a new GroupRepository.
func NewGroupRepository(db *DB) *GroupRepository {
	return &GroupRepository{db: db}
}

const groupColumns = `id, tenant_key, name, description, entity, product,
	service, enterprise, assigned_roles, created_at, updated_at`

// Create persists a new group.
func (r *GroupRepository) Create(ctx context.Context, tn tenant.Context, g *group.Group) error {
	roles, err := json.Marshal(g.AssignedRoles)
	if err != nil {
		return fmt.Errorf("%w: marshal assigned roles: %v", shared.ErrStore, err)
	}

	query := `
		INSERT INTO groups (id, tenant_key, name, description, entity, product,
			service, enterprise, assigned_roles, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.db.exec(ctx, "create_group", query,
		g.ID, tn.Key(), g.Name, g.Description, g.Entity, g.Product,
		g.Service, g.Enterprise, roles, g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: create group: %v", shared.ErrStore, err)
	}
	return nil
}

// GetByID retrieves a group by id within one tenant's catalog.
func (r *GroupRepository) GetByID(ctx context.Context, tn tenant.Context, id string) (*group.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE tenant_key = $1 AND id = $2`
	return r.scanGroup(r.db.queryRow(ctx, "get_group", query, tn.Key(), id))
}

// GetByName performs an exact name match within one tenant's catalog.
func (r *GroupRepository) GetByName(ctx context.Context, tn tenant.Context, name string) (*group.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE tenant_key = $1 AND name = $2`
	return r.scanGroup(r.db.queryRow(ctx, "get_group_by_name", query, tn.Key(), name))
}

// Update overwrites an existing group record.
func (r *GroupRepository) Update(ctx context.Context, tn tenant.Context, g *group.Group) error {
	roles, err := json.Marshal(g.AssignedRoles)
	if err != nil {
		return fmt.Errorf("%w: marshal assigned roles: %v", shared.ErrStore, err)
	}

	query := `
		UPDATE groups
		SET name = $3, description = $4, entity = $5, product = $6,
			service = $7, enterprise = $8, assigned_roles = $9, updated_at = $10
		WHERE tenant_key = $1 AND id = $2
	`
	res, err := r.db.exec(ctx, "update_group", query,
		tn.Key(), g.ID, g.Name, g.Description, g.Entity, g.Product,
		g.Service, g.Enterprise, roles, g.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: update group: %v", shared.ErrStore, err)
	}
	return requireRow(res, "group", g.ID)
}

// Delete removes a group record without cascading user references.
func (r *GroupRepository) Delete(ctx context.Context, tn tenant.Context, id string) error {
	res, err := r.db.exec(ctx, "delete_group", `DELETE FROM groups WHERE tenant_key = $1 AND id = $2`, tn.Key(), id)
	if err != nil {
		return fmt.Errorf("%w: delete group: %v", shared.ErrStore, err)
	}
	return requireRow(res, "group", id)
}

// List returns groups in one tenant's catalog, optionally narrowed by the
// enterprise filter. The filter matches the stored enterprise tag against
// either the filter name (case-insensitively) or the filter id, mirroring
// the key-value drivers' client-side match.
func (r *GroupRepository) List(ctx context.Context, tn tenant.Context, filter group.ListFilter) ([]*group.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE tenant_key = $1`
	args := []any{tn.Key()}
	if filter.Enterprise != nil {
		query += ` AND (LOWER(enterprise) = LOWER($2) OR enterprise = $3)`
		args = append(args, filter.Enterprise.Name, filter.Enterprise.ID)
	}

	rows, err := r.db.query(ctx, "list_groups", query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list groups: %v", shared.ErrStore, err)
	}
	defer rows.Close()

	var groups []*group.Group
	for rows.Next() {
		g, err := r.scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list groups: %v", shared.ErrStore, err)
	}
	return groups, nil
}

func (r *GroupRepository) scanGroup(row rowScanner) (*group.Group, error) {
	var (
		g         group.Group
		tenantKey string
		roles     []byte
	)
	err := row.Scan(&g.ID, &tenantKey, &g.Name, &g.Description, &g.Entity, &g.Product,
		&g.Service, &g.Enterprise, &roles, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: group", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scan group: %v", shared.ErrStore, err)
	}
	if err := json.Unmarshal(roles, &g.AssignedRoles); err != nil {
		return nil, fmt.Errorf("%w: unmarshal assigned roles: %v", shared.ErrStore, err)
	}
	return &g, nil
}
