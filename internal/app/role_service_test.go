package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systiva/accessctl/pkg/domain/role"
	"github.com/systiva/accessctl/pkg/domain/shared"
	"github.com/systiva/accessctl/pkg/domain/tenant"
)

func TestRoleService_CRUD(t *testing.T) {
	ctx := context.Background()
	acme := tenant.Account("acct-1", "Acme Corp")
	f := newFixture(t)

	r, err := f.roles.CreateRole(ctx, acme, CreateRoleInput{
		Name:        "reader",
		Description: "read-only",
		ScopeConfig: map[string]any{"resources": []any{"users", "groups"}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, r.ID)

	t.Run("get", func(t *testing.T) {
		got, err := f.roles.GetRole(ctx, acme, r.ID)
		require.NoError(t, err)
		assert.Equal(t, "reader", got.Name)
		assert.Contains(t, got.ScopeConfig, "resources")
	})

	t.Run("update keeps untouched fields", func(t *testing.T) {
		desc := "changed"
		updated, err := f.roles.UpdateRole(ctx, acme, r.ID, role.Patch{Description: &desc})
		require.NoError(t, err)
		assert.Equal(t, "changed", updated.Description)
		assert.Equal(t, "reader", updated.Name)
	})

	t.Run("invisible from other tenants", func(t *testing.T) {
		_, err := f.roles.GetRole(ctx, tenant.Global(), r.ID)
		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, f.roles.DeleteRole(ctx, acme, r.ID))
		_, err := f.roles.GetRole(ctx, acme, r.ID)
		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("rejects missing name", func(t *testing.T) {
		_, err := f.roles.CreateRole(ctx, acme, CreateRoleInput{})
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})
}
