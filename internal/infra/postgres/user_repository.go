package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/systiva/accessctl/pkg/domain/shared"
	"github.com/systiva/accessctl/pkg/domain/tenant"
	"github.com/systiva/accessctl/pkg/domain/user"
)

// UserRepository implements user.Repository using PostgreSQL. Every row is
// keyed by (tenant_key, id); the tenant key partitions catalogs exactly
// like the key-value drivers do.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, tenant_key, first_name, last_name, email, status,
	technical_user, assigned_groups, created_at, updated_at`

// Create persists a new user.
func (r *UserRepository) Create(ctx context.Context, tn tenant.Context, u *user.User) error {
	groups, err := json.Marshal(u.AssignedGroups)
	if err != nil {
		return fmt.Errorf("%w: marshal assigned groups: %v", shared.ErrStore, err)
	}

	query := `
		INSERT INTO users (id, tenant_key, first_name, last_name, email, status,
			technical_user, assigned_groups, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.db.exec(ctx, "create_user", query,
		u.ID, tn.Key(), u.FirstName, u.LastName, u.Email, u.Status.String(),
		u.TechnicalUser, groups, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: create user: %v", shared.ErrStore, err)
	}
	return nil
}

// GetByID retrieves a user by id within one tenant's catalog.
func (r *UserRepository) GetByID(ctx context.Context, tn tenant.Context, id string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE tenant_key = $1 AND id = $2`
	return r.scanUser(r.db.queryRow(ctx, "get_user", query, tn.Key(), id))
}

// GetByEmail retrieves a user by email within one tenant's catalog.
func (r *UserRepository) GetByEmail(ctx context.Context, tn tenant.Context, email string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE tenant_key = $1 AND LOWER(email) = LOWER($2)`
	return r.scanUser(r.db.queryRow(ctx, "get_user_by_email", query, tn.Key(), email))
}

// Update overwrites an existing user record.
func (r *UserRepository) Update(ctx context.Context, tn tenant.Context, u *user.User) error {
	groups, err := json.Marshal(u.AssignedGroups)
	if err != nil {
		return fmt.Errorf("%w: marshal assigned groups: %v", shared.ErrStore, err)
	}

	query := `
		UPDATE users
		SET first_name = $3, last_name = $4, email = $5, status = $6,
			technical_user = $7, assigned_groups = $8, updated_at = $9
		WHERE tenant_key = $1 AND id = $2
	`
	res, err := r.db.exec(ctx, "update_user", query,
		tn.Key(), u.ID, u.FirstName, u.LastName, u.Email, u.Status.String(),
		u.TechnicalUser, groups, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: update user: %v", shared.ErrStore, err)
	}
	return requireRow(res, "user", u.ID)
}

// Delete removes a user record.
func (r *UserRepository) Delete(ctx context.Context, tn tenant.Context, id string) error {
	res, err := r.db.exec(ctx, "delete_user", `DELETE FROM users WHERE tenant_key = $1 AND id = $2`, tn.Key(), id)
	if err != nil {
		return fmt.Errorf("%w: delete user: %v", shared.ErrStore, err)
	}
	return requireRow(res, "user", id)
}

// List returns every user in one tenant's catalog.
func (r *UserRepository) List(ctx context.Context, tn tenant.Context) ([]*user.User, error) {
	rows, err := r.db.query(ctx, "list_users", `SELECT `+userColumns+` FROM users WHERE tenant_key = $1`, tn.Key())
	if err != nil {
		return nil, fmt.Errorf("%w: list users: %v", shared.ErrStore, err)
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list users: %v", shared.ErrStore, err)
	}
	return users, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *UserRepository) scanUser(row rowScanner) (*user.User, error) {
	var (
		u         user.User
		tenantKey string
		status    string
		groups    []byte
	)
	err := row.Scan(&u.ID, &tenantKey, &u.FirstName, &u.LastName, &u.Email, &status,
		&u.TechnicalUser, &groups, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scan user: %v", shared.ErrStore, err)
	}
	u.Status = user.Status(status)
	if err := json.Unmarshal(groups, &u.AssignedGroups); err != nil {
		return nil, fmt.Errorf("%w: unmarshal assigned groups: %v", shared.ErrStore, err)
	}
	return &u, nil
}

// requireRow maps a zero-row write to ErrNotFound.
func requireRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", shared.ErrStore, kind, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s", shared.ErrNotFound, kind, id)
	}
	return nil
}
