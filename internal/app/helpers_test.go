package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/systiva/accessctl/internal/infra/memory"
	"github.com/systiva/accessctl/pkg/domain/group"
	"github.com/systiva/accessctl/pkg/domain/tenant"
	"github.com/systiva/accessctl/pkg/domain/user"
	"github.com/systiva/accessctl/pkg/logger"
)

// fixture wires the services against a fresh in-memory store.
type fixture struct {
	store  *memory.Store
	scopes *ScopeValidator
	users  *UserService
	groups *GroupService
	roles  *RoleService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	log := logger.NewNop()
	scopes := NewScopeValidator(store.Groups, log)
	return &fixture{
		store:  store,
		scopes: scopes,
		users:  NewUserService(store.Users, store.Groups, scopes, log),
		groups: NewGroupService(store.Groups, store.Roles, log),
		roles:  NewRoleService(store.Roles, log),
	}
}

func (f *fixture) mustCreateGroup(t *testing.T, tn tenant.Context, name string) *group.Group {
	t.Helper()
	g, err := f.groups.CreateGroup(context.Background(), tn, CreateGroupInput{Name: name})
	require.NoError(t, err)
	return g
}

func (f *fixture) mustCreateUser(t *testing.T, tn tenant.Context, email string) *user.User {
	t.Helper()
	u, err := f.users.CreateUser(context.Background(), tn, CreateUserInput{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
	})
	require.NoError(t, err)
	return u
}
