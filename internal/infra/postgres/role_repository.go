package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/systiva/accessctl/pkg/domain/role"
	"github.com/systiva/accessctl/pkg/domain/shared"
	"github.com/systiva/accessctl/pkg/domain/tenant"
)

// RoleRepository implements role.Repository using PostgreSQL. The scope
// configuration blob is stored as JSONB without interpretation.
type RoleRepository struct {
	db *DB
}

// NewRoleRepository creates a new RoleRepository.
func NewRoleRepository(db *DB) *RoleRepository {
	return &RoleRepository{db: db}
}

const roleColumns = `id, tenant_key, name, description, scope_config, created_at, updated_at`

// Create persists a new role.
func (r *RoleRepository) Create(ctx context.Context, tn tenant.Context, ro *role.Role) error {
	scopeConfig, err := marshalScopeConfig(ro.ScopeConfig)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO roles (id, tenant_key, name, description, scope_config, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.db.exec(ctx, "create_role", query,
		ro.ID, tn.Key(), ro.Name, ro.Description, scopeConfig, ro.CreatedAt, ro.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: create role: %v", shared.ErrStore, err)
	}
	return nil
}

// GetByID retrieves a role by id within one tenant's catalog.
func (r *RoleRepository) GetByID(ctx context.Context, tn tenant.Context, id string) (*role.Role, error) {
	query := `SELECT ` + roleColumns + ` FROM roles WHERE tenant_key = $1 AND id = $2`
	return r.scanRole(r.db.queryRow(ctx, "get_role", query, tn.Key(), id))
}

// GetByName performs an exact name match within one tenant's catalog.
func (r *RoleRepository) GetByName(ctx context.Context, tn tenant.Context, name string) (*role.Role, error) {
	query := `SELECT ` + roleColumns + ` FROM roles WHERE tenant_key = $1 AND name = $2`
	return r.scanRole(r.db.queryRow(ctx, "get_role_by_name", query, tn.Key(), name))
}

// Update overwrites an existing role record.
func (r *RoleRepository) Update(ctx context.Context, tn tenant.Context, ro *role.Role) error {
	scopeConfig, err := marshalScopeConfig(ro.ScopeConfig)
	if err != nil {
		return err
	}

	query := `
		UPDATE roles
		SET name = $3, description = $4, scope_config = $5, updated_at = $6
		WHERE tenant_key = $1 AND id = $2
	`
	res, err := r.db.exec(ctx, "update_role", query,
		tn.Key(), ro.ID, ro.Name, ro.Description, scopeConfig, ro.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: update role: %v", shared.ErrStore, err)
	}
	return requireRow(res, "role", ro.ID)
}

// Delete removes a role record.
func (r *RoleRepository) Delete(ctx context.Context, tn tenant.Context, id string) error {
	res, err := r.db.exec(ctx, "delete_role", `DELETE FROM roles WHERE tenant_key = $1 AND id = $2`, tn.Key(), id)
	if err != nil {
		return fmt.Errorf("%w: delete role: %v", shared.ErrStore, err)
	}
	return requireRow(res, "role", id)
}

// List returns every role in one tenant's catalog.
func (r *RoleRepository) List(ctx context.Context, tn tenant.Context) ([]*role.Role, error) {
	rows, err := r.db.query(ctx, "list_roles", `SELECT `+roleColumns+` FROM roles WHERE tenant_key = $1`, tn.Key())
	if err != nil {
		return nil, fmt.Errorf("%w: list roles: %v", shared.ErrStore, err)
	}
	defer rows.Close()

	var roles []*role.Role
	for rows.Next() {
		ro, err := r.scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, ro)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list roles: %v", shared.ErrStore, err)
	}
	return roles, nil
}

func (r *RoleRepository) scanRole(row rowScanner) (*role.Role, error) {
	var (
		ro          role.Role
		tenantKey   string
		scopeConfig []byte
	)
	err := row.Scan(&ro.ID, &tenantKey, &ro.Name, &ro.Description, &scopeConfig, &ro.CreatedAt, &ro.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: role", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scan role: %v", shared.ErrStore, err)
	}
	if len(scopeConfig) > 0 {
		if err := json.Unmarshal(scopeConfig, &ro.ScopeConfig); err != nil {
			return nil, fmt.Errorf("%w: unmarshal scope config: %v", shared.ErrStore, err)
		}
	}
	return &ro, nil
}

func marshalScopeConfig(cfg map[string]any) ([]byte, error) {
	if cfg == nil {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal scope config: %v", shared.ErrStore, err)
	}
	return data, nil
}
