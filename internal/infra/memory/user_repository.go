package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/systiva/accessctl/pkg/domain/shared"
	"github.com/systiva/accessctl/pkg/domain/tenant"
	"github.com/systiva/accessctl/pkg/domain/user"
)

// UserRepository implements user.Repository in memory.
type UserRepository struct {
	users *collection[user.User]
}

// NewUserRepository creates a new in-memory user repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{users: newCollection[user.User]()}
}

// Create persists a new user.
func (r *UserRepository) Create(_ context.Context, tn tenant.Context, u *user.User) error {
	if r.users.exists(tn.Key(), u.ID) {
		return fmt.Errorf("%w: user %s", shared.ErrAlreadyExists, u.ID)
	}
	return r.users.put(tn.Key(), u.ID, u)
}

// GetByID retrieves a user by id within one tenant's catalog.
func (r *UserRepository) GetByID(_ context.Context, tn tenant.Context, id string) (*user.User, error) {
	u, err := r.users.get(tn.Key(), id)
	if err != nil {
		return nil, fmt.Errorf("%w: user %s", err, id)
	}
	return u, nil
}

// GetByEmail retrieves a user by email within one tenant's catalog.
func (r *UserRepository) GetByEmail(_ context.Context, tn tenant.Context, email string) (*user.User, error) {
	users, err := r.users.scan(tn.Key())
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
func (r *UserRepository) Update(_ context.Context, tn tenant.Context, u *user.User) error {
	if !r.users.exists(tn.Key(), u.ID) {
		return fmt.Errorf("%w: user %s", shared.ErrNotFound, u.ID)
	}
	return r.users.put(tn.Key(), u.ID, u)
}

// Delete removes a user record.
func (r *UserRepository) Delete(_ context.Context, tn tenant.Context, id string) error {
	if err := r.users.delete(tn.Key(), id); err != nil {
		return fmt.Errorf("%w: user %s", err, id)
	}
	return nil
}

// List returns every user in one tenant's catalog, unordered.
func (r *UserRepository) List(_ context.Context, tn tenant.Context) ([]*user.User, error) {
	return r.users.scan(tn.Key())
}
