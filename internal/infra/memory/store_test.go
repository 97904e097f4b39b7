package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systiva/accessctl/pkg/domain/group"
	"github.com/systiva/accessctl/pkg/domain/shared"
	"github.com/systiva/accessctl/pkg/domain/tenant"
	"github.com/systiva/accessctl/pkg/domain/user"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	acme := tenant.Account("acct-1", "Acme Corp")
	store := NewStore()

	u, err := user.New("Ada", "Lovelace", "ada@example.com")
	require.NoError(t, err)
	require.NoError(t, store.Users.Create(ctx, acme, u))

	t.Run("create twice fails", func(t *testing.T) {
		err := store.Users.Create(ctx, acme, u)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("get by id", func(t *testing.T) {
		got, err := store.Users.GetByID(ctx, acme, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u.Email, got.Email)
	})

	t.Run("get by email is case-insensitive", func(t *testing.T) {
		got, err := store.Users.GetByEmail(ctx, acme, "ADA@EXAMPLE.COM")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
	})

	t.Run("records are isolated per tenant", func(t *testing.T) {
		_, err := store.Users.GetByID(ctx, tenant.Global(), u.ID)
		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("reads never alias stored state", func(t *testing.T) {
		got, err := store.Users.GetByID(ctx, acme, u.ID)
		require.NoError(t, err)
		got.Email = "mutated@example.com"

		again, err := store.Users.GetByID(ctx, acme, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", again.Email)
	})

	t.Run("update unknown id fails", func(t *testing.T) {
		ghost, err := user.New("No", "One", "ghost@example.com")
		require.NoError(t, err)
		err = store.Users.Update(ctx, acme, ghost)
		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Users.Delete(ctx, acme, u.ID))
		err := store.Users.Delete(ctx, acme, u.ID)
		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
	})
}

func TestGroupRepository(t *testing.T) {
	ctx := context.Background()
	acme := tenant.Account("acct-1", "Acme Corp")
	store := NewStore()

	mk := func(name, enterprise string) *group.Group {
		g, err := group.New(name)
		require.NoError(t, err)
		g.Enterprise = enterprise
		require.NoError(t, store.Groups.Create(ctx, acme, g))
		return g
	}

	billing := mk("Billing", "Initech")
	mk("Ops", "Hooli")

	t.Run("get by name is exact", func(t *testing.T) {
		got, err := store.Groups.GetByName(ctx, acme, "Billing")
		require.NoError(t, err)
		assert.Equal(t, billing.ID, got.ID)

		_, err = store.Groups.GetByName(ctx, acme, "billing")
		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("list without filter", func(t *testing.T) {
		groups, err := store.Groups.List(ctx, acme, group.ListFilter{})
		require.NoError(t, err)
		assert.Len(t, groups, 2)
	})

	t.Run("list with enterprise filter", func(t *testing.T) {
		groups, err := store.Groups.List(ctx, acme, group.ListFilter{
			Enterprise: &tenant.EnterpriseFilter{ID: "ent-1", Name: "initech"},
		})
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Equal(t, "Billing", groups[0].Name)
	})

	t.Run("same name across tenants does not collide", func(t *testing.T) {
		g, err := group.New("Billing")
		require.NoError(t, err)
		require.NoError(t, store.Groups.Create(ctx, tenant.Global(), g))

		got, err := store.Groups.GetByName(ctx, tenant.Global(), "Billing")
		require.NoError(t, err)
		assert.Equal(t, g.ID, got.ID)
		assert.NotEqual(t, billing.ID, got.ID)
	})
}
