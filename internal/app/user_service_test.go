package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systiva/accessctl/pkg/domain/shared"
	"github.com/systiva/accessctl/pkg/domain/tenant"
	"github.com/systiva/accessctl/pkg/domain/user"
)

func TestUserService_CreateUser(t *testing.T) {
	ctx := context.Background()
	acme := tenant.Account("acct-1", "Acme Corp")

	t.Run("creates with defaults", func(t *testing.T) {
		f := newFixture(t)
		u, err := f.users.CreateUser(ctx, acme, CreateUserInput{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@example.com",
		})
		require.NoError(t, err)
		assert.Equal(t, user.StatusActive, u.Status)
		assert.Empty(t, u.AssignedGroups)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.users.CreateUser(ctx, acme, CreateUserInput{Email: "not-an-email"})
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("rejects duplicate email in same tenant", func(t *testing.T) {
		f := newFixture(t)
		f.mustCreateUser(t, acme, "ada@example.com")

		_, err := f.users.CreateUser(ctx, acme, CreateUserInput{Email: "ADA@example.com"})
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("same email allowed in different tenants", func(t *testing.T) {
		f := newFixture(t)
		f.mustCreateUser(t, acme, "ada@example.com")
		f.mustCreateUser(t, tenant.Account("acct-2", "Globex"), "ada@example.com")
	})
}

func TestUserService_UpdateUser(t *testing.T) {
	ctx := context.Background()
	acme := tenant.Account("acct-1", "Acme Corp")

	t.Run("sparse patch keeps untouched fields", func(t *testing.T) {
		f := newFixture(t)
		u := f.mustCreateUser(t, acme, "ada@example.com")

		first := "Grace"
		updated, err := f.users.UpdateUser(ctx, acme, u.ID, user.Patch{FirstName: &first})
		require.NoError(t, err)
		assert.Equal(t, "Grace", updated.FirstName)
		assert.Equal(t, "ada@example.com", updated.Email)
	})

	t.Run("empty patch is a no-op", func(t *testing.T) {
		f := newFixture(t)
		u := f.mustCreateUser(t, acme, "ada@example.com")

		updated, err := f.users.UpdateUser(ctx, acme, u.ID, user.Patch{})
		require.NoError(t, err)
		assert.Equal(t, u.Email, updated.Email)
	})

	t.Run("rejects email collision", func(t *testing.T) {
		f := newFixture(t)
		f.mustCreateUser(t, acme, "taken@example.com")
		u := f.mustCreateUser(t, acme, "ada@example.com")

		taken := "taken@example.com"
		_, err := f.users.UpdateUser(ctx, acme, u.ID, user.Patch{Email: &taken})
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newFixture(t)
		first := "Grace"
		_, err := f.users.UpdateUser(ctx, acme, "missing", user.Patch{FirstName: &first})
		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
	})
}

func TestUserService_AssignGroup(t *testing.T) {
	ctx := context.Background()
	acme := tenant.Account("acct-1", "Acme Corp")

	t.Run("assigns account group", func(t *testing.T) {
		f := newFixture(t)
		u := f.mustCreateUser(t, acme, "ada@example.com")
		g := f.mustCreateGroup(t, acme, "Admins")

		updated, err := f.users.AssignGroup(ctx, acme, u.ID, g.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{g.ID}, updated.AssignedGroups)
	})

	t.Run("idempotent", func(t *testing.T) {
		f := newFixture(t)
		u := f.mustCreateUser(t, acme, "ada@example.com")
		g := f.mustCreateGroup(t, acme, "Admins")

		_, err := f.users.AssignGroup(ctx, acme, u.ID, g.ID)
		require.NoError(t, err)
		updated, err := f.users.AssignGroup(ctx, acme, u.ID, g.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{g.ID}, updated.AssignedGroups)
	})

	t.Run("global group in account tenant fails hard, no fallback", func(t *testing.T) {
		f := newFixture(t)
		u := f.mustCreateUser(t, acme, "ada@example.com")
		globalAdmins := f.mustCreateGroup(t, tenant.Global(), "Admins")
		f.mustCreateGroup(t, acme, "Admins")

		_, err := f.users.AssignGroup(ctx, acme, u.ID, globalAdmins.ID)
		require.Error(t, err)
		assert.True(t, shared.IsScopeViolation(err))

		stored, err := f.users.GetUser(ctx, acme, u.ID)
		require.NoError(t, err)
		assert.Empty(t, stored.AssignedGroups, "failed assignment leaves membership untouched")
	})

	t.Run("unknown group", func(t *testing.T) {
		f := newFixture(t)
		u := f.mustCreateUser(t, acme, "ada@example.com")

		_, err := f.users.AssignGroup(ctx, acme, u.ID, "missing")
		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
	})
}

func TestUserService_AssignGroups(t *testing.T) {
	ctx := context.Background()
	acme := tenant.Account("acct-1", "Acme Corp")

	t.Run("replaces membership wholesale", func(t *testing.T) {
		f := newFixture(t)
		u := f.mustCreateUser(t, acme, "ada@example.com")
		old := f.mustCreateGroup(t, acme, "Old")
		g1 := f.mustCreateGroup(t, acme, "One")
		g2 := f.mustCreateGroup(t, acme, "Two")

		_, err := f.users.AssignGroup(ctx, acme, u.ID, old.ID)
		require.NoError(t, err)

		result, err := f.users.AssignGroups(ctx, acme, u.ID, []string{g1.ID, g2.ID, g1.ID}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{g1.ID, g2.ID}, result.User.AssignedGroups)
		assert.Empty(t, result.Warnings)
	})

	t.Run("global id resolves to same-named account group", func(t *testing.T) {
		f := newFixture(t)
		u := f.mustCreateUser(t, acme, "ada@example.com")
		globalAdmins := f.mustCreateGroup(t, tenant.Global(), "Admins")
		acctAdmins := f.mustCreateGroup(t, acme, "Admins")

		result, err := f.users.AssignGroups(ctx, acme, u.ID, []string{globalAdmins.ID}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{acctAdmins.ID}, result.User.AssignedGroups)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "substituted")
	})

	t.Run("substitution dedupes against directly requested group", func(t *testing.T) {
		f := newFixture(t)
		u := f.mustCreateUser(t, acme, "ada@example.com")
		globalAdmins := f.mustCreateGroup(t, tenant.Global(), "Admins")
		acctAdmins := f.mustCreateGroup(t, acme, "Admins")

		result, err := f.users.AssignGroups(ctx, acme, u.ID, []string{acctAdmins.ID, globalAdmins.ID}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{acctAdmins.ID}, result.User.AssignedGroups)
	})

	t.Run("refuses empty outcome from non-empty request", func(t *testing.T) {
		f := newFixture(t)
		u := f.mustCreateUser(t, acme, "ada@example.com")
		keep := f.mustCreateGroup(t, acme, "Keep")
		_, err := f.users.AssignGroup(ctx, acme, u.ID, keep.ID)
		require.NoError(t, err)

		_, err = f.users.AssignGroups(ctx, acme, u.ID, []string{"missing-1", "missing-2"}, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrEmptyAssignment)

		stored, err := f.users.GetUser(ctx, acme, u.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{keep.ID}, stored.AssignedGroups, "refused replace leaves membership untouched")
	})

	t.Run("empty request clears membership", func(t *testing.T) {
		f := newFixture(t)
		u := f.mustCreateUser(t, acme, "ada@example.com")
		g := f.mustCreateGroup(t, acme, "Admins")
		_, err := f.users.AssignGroup(ctx, acme, u.ID, g.ID)
		require.NoError(t, err)

		result, err := f.users.AssignGroups(ctx, acme, u.ID, nil, nil)
		require.NoError(t, err)
		assert.Empty(t, result.User.AssignedGroups, "explicit empty request is an intentional clear")
	})

	t.Run("partial survival succeeds with warnings", func(t *testing.T) {
		f := newFixture(t)
		u := f.mustCreateUser(t, acme, "ada@example.com")
		g := f.mustCreateGroup(t, acme, "Admins")

		result, err := f.users.AssignGroups(ctx, acme, u.ID, []string{g.ID, "missing"}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{g.ID}, result.User.AssignedGroups)
		assert.Len(t, result.Warnings, 1)
	})
}

func TestUserService_RemoveGroups(t *testing.T) {
	ctx := context.Background()
	acme := tenant.Account("acct-1", "Acme Corp")

	f := newFixture(t)
	u := f.mustCreateUser(t, acme, "ada@example.com")
	g1 := f.mustCreateGroup(t, acme, "One")
	g2 := f.mustCreateGroup(t, acme, "Two")

	_, err := f.users.AssignGroups(ctx, acme, u.ID, []string{g1.ID, g2.ID}, nil)
	require.NoError(t, err)

	updated, err := f.users.RemoveGroups(ctx, acme, u.ID, []string{g1.ID, "not-assigned"})
	require.NoError(t, err)
	assert.Equal(t, []string{g2.ID}, updated.AssignedGroups)

	t.Run("requires at least one id", func(t *testing.T) {
		_, err := f.users.RemoveGroups(ctx, acme, u.ID, nil)
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})
}

func TestUserService_TenantIsolation(t *testing.T) {
	ctx := context.Background()
	acme := tenant.Account("acct-1", "Acme Corp")
	globex := tenant.Account("acct-2", "Globex")

	f := newFixture(t)
	u := f.mustCreateUser(t, acme, "ada@example.com")

	_, err := f.users.GetUser(ctx, globex, u.ID)
	require.Error(t, err)
	assert.True(t, shared.IsNotFound(err))

	_, err = f.users.GetUser(ctx, tenant.Global(), u.ID)
	require.Error(t, err)
	assert.True(t, shared.IsNotFound(err))
}
