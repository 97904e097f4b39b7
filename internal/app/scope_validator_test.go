package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systiva/accessctl/pkg/domain/tenant"
)

func TestScopeValidator_ValidateGroupScope(t *testing.T) {
	ctx := context.Background()
	acme := tenant.Account("acct-1", "Acme Corp")

	t.Run("account group in its own tenant is valid", func(t *testing.T) {
		f := newFixture(t)
		g := f.mustCreateGroup(t, acme, "Admins")

		result, err := f.scopes.ValidateGroupScope(ctx, g.ID, acme)
		require.NoError(t, err)
		assert.True(t, result.IsValid)
		assert.Equal(t, tenant.ScopeAccount, result.ScopeType)
		assert.Equal(t, g.ID, result.Group.ID)
	})

	t.Run("global group in the global tenant is valid", func(t *testing.T) {
		f := newFixture(t)
		g := f.mustCreateGroup(t, tenant.Global(), "Admins")

		result, err := f.scopes.ValidateGroupScope(ctx, g.ID, tenant.Global())
		require.NoError(t, err)
		assert.True(t, result.IsValid)
		assert.Equal(t, tenant.ScopeGlobal, result.ScopeType)
	})

	t.Run("global group in an account tenant is invalid with warning", func(t *testing.T) {
		f := newFixture(t)
		g := f.mustCreateGroup(t, tenant.Global(), "Admins")

		result, err := f.scopes.ValidateGroupScope(ctx, g.ID, acme)
		require.NoError(t, err)
		assert.False(t, result.IsValid)
		assert.Equal(t, tenant.ScopeGlobal, result.ScopeType)
		assert.Contains(t, result.Warning, "Systiva")
		assert.Contains(t, result.Warning, "Admins")
	})

	t.Run("unknown id is invalid without warning", func(t *testing.T) {
		f := newFixture(t)

		result, err := f.scopes.ValidateGroupScope(ctx, "missing", acme)
		require.NoError(t, err)
		assert.False(t, result.IsValid)
		assert.Nil(t, result.Group)
		assert.Empty(t, result.Warning)
	})

	t.Run("account group is invisible from another account", func(t *testing.T) {
		f := newFixture(t)
		g := f.mustCreateGroup(t, acme, "Admins")

		other := tenant.Account("acct-2", "Globex")
		result, err := f.scopes.ValidateGroupScope(ctx, g.ID, other)
		require.NoError(t, err)
		assert.False(t, result.IsValid)
		assert.Nil(t, result.Group)
	})
}

func TestScopeValidator_ResolveAssignable(t *testing.T) {
	ctx := context.Background()
	acme := tenant.Account("acct-1", "Acme Corp")

	t.Run("valid group resolves to itself", func(t *testing.T) {
		f := newFixture(t)
		g := f.mustCreateGroup(t, acme, "Admins")

		id, warning, err := f.scopes.ResolveAssignable(ctx, g.ID, acme, nil)
		require.NoError(t, err)
		assert.Equal(t, g.ID, id)
		assert.Empty(t, warning)
	})

	t.Run("global group substituted by same-named account group", func(t *testing.T) {
		f := newFixture(t)
		globalAdmins := f.mustCreateGroup(t, tenant.Global(), "Admins")
		acctAdmins := f.mustCreateGroup(t, acme, "Admins")

		id, warning, err := f.scopes.ResolveAssignable(ctx, globalAdmins.ID, acme, nil)
		require.NoError(t, err)
		assert.Equal(t, acctAdmins.ID, id, "account-local group substituted, never the global id")
		assert.Contains(t, warning, "substituted")
	})

	t.Run("global group without local counterpart is dropped", func(t *testing.T) {
		f := newFixture(t)
		globalAdmins := f.mustCreateGroup(t, tenant.Global(), "Admins")

		id, warning, err := f.scopes.ResolveAssignable(ctx, globalAdmins.ID, acme, nil)
		require.NoError(t, err)
		assert.Empty(t, id)
		assert.Contains(t, warning, "dropped")
	})

	t.Run("unknown id is dropped with warning", func(t *testing.T) {
		f := newFixture(t)

		id, warning, err := f.scopes.ResolveAssignable(ctx, "missing", acme, nil)
		require.NoError(t, err)
		assert.Empty(t, id)
		assert.Contains(t, warning, "not found")
	})

	t.Run("enterprise filter narrows fallback matching", func(t *testing.T) {
		f := newFixture(t)
		globalAdmins := f.mustCreateGroup(t, tenant.Global(), "Admins")

		local, err := f.groups.CreateGroup(ctx, acme, CreateGroupInput{Name: "Admins", Enterprise: "Initech"})
		require.NoError(t, err)

		filter := &tenant.EnterpriseFilter{ID: "ent-9", Name: "Hooli"}
		id, _, err := f.scopes.ResolveAssignable(ctx, globalAdmins.ID, acme, filter)
		require.NoError(t, err)
		assert.Empty(t, id, "local group tagged for another enterprise is not a fallback candidate")

		match := &tenant.EnterpriseFilter{ID: "ent-1", Name: "Initech"}
		id, _, err = f.scopes.ResolveAssignable(ctx, globalAdmins.ID, acme, match)
		require.NoError(t, err)
		assert.Equal(t, local.ID, id)
	})
}
