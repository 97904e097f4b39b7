package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systiva/accessctl/pkg/domain/group"
	"github.com/systiva/accessctl/pkg/domain/shared"
	"github.com/systiva/accessctl/pkg/domain/tenant"
)

func TestCreateAndAssignGroups(t *testing.T) {
	ctx := context.Background()
	acme := tenant.Account("acct-1", "Acme Corp")

	t.Run("creates missing groups and assigns them", func(t *testing.T) {
		f := newFixture(t)
		u := f.mustCreateUser(t, acme, "ada@example.com")

		result, err := f.users.CreateAndAssignGroups(ctx, acme, BulkAssignInput{
			UserID: u.ID,
			Groups: []group.Spec{
				{Name: "Admins", Description: "Full access"},
				{Name: "Auditors"},
			},
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Requested)
		assert.Equal(t, 2, result.Validated)
		assert.Len(t, result.User.AssignedGroups, 2)

		created, err := f.groups.FindByName(ctx, acme, "Admins")
		require.NoError(t, err)
		assert.Equal(t, "Full access", created.Description)
	})

	t.Run("matches existing groups by name, never by id", func(t *testing.T) {
		f := newFixture(t)
		u := f.mustCreateUser(t, acme, "ada@example.com")
		existing := f.mustCreateGroup(t, acme, "Admins")

		result, err := f.users.CreateAndAssignGroups(ctx, acme, BulkAssignInput{
			UserID: u.ID,
			Groups: []group.Spec{{ID: "tmp-1", Name: "Admins"}},
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{existing.ID}, result.GroupIDs)
	})

	t.Run("sparse update never clobbers with blanks", func(t *testing.T) {
		f := newFixture(t)
		u := f.mustCreateUser(t, acme, "ada@example.com")
		existing, err := f.groups.CreateGroup(ctx, acme, CreateGroupInput{
			Name:        "Admins",
			Description: "stored description",
		})
		require.NoError(t, err)

		_, err = f.users.CreateAndAssignGroups(ctx, acme, BulkAssignInput{
			UserID: u.ID,
			Groups: []group.Spec{{Name: "Admins", Description: "", Product: "billing"}},
		}, nil)
		require.NoError(t, err)

		stored, err := f.groups.GetGroup(ctx, acme, existing.ID)
		require.NoError(t, err)
		assert.Equal(t, "stored description", stored.Description, "blank spec field leaves stored value intact")
		assert.Equal(t, "billing", stored.Product, "non-empty differing field is applied")
	})

	t.Run("duplicate names in batch collapse to one assignment", func(t *testing.T) {
		f := newFixture(t)
		u := f.mustCreateUser(t, acme, "ada@example.com")

		result, err := f.users.CreateAndAssignGroups(ctx, acme, BulkAssignInput{
			UserID: u.ID,
			Groups: []group.Spec{{Name: "Admins"}, {Name: "Admins"}},
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Validated)
	})

	t.Run("failing spec degrades to warning", func(t *testing.T) {
		f := newFixture(t)
		u := f.mustCreateUser(t, acme, "ada@example.com")

		result, err := f.users.CreateAndAssignGroups(ctx, acme, BulkAssignInput{
			UserID: u.ID,
			Groups: []group.Spec{{Name: "Admins"}, {Name: ""}},
		}, nil)
		require.NoError(t, err, "one bad spec must not reject the batch")
		assert.Equal(t, 1, result.Validated)
		require.NotEmpty(t, result.Warnings)
		assert.Contains(t, result.Warnings[0], "position 1")

		created, err := f.groups.FindByName(ctx, acme, "Admins")
		require.NoError(t, err)
		assert.Equal(t, []string{created.ID}, result.GroupIDs)
	})

	t.Run("fails hard when every spec is rejected", func(t *testing.T) {
		f := newFixture(t)
		u := f.mustCreateUser(t, acme, "ada@example.com")
		keep := f.mustCreateGroup(t, acme, "Keep")
		_, err := f.users.AssignGroup(ctx, acme, u.ID, keep.ID)
		require.NoError(t, err)

		_, err = f.users.CreateAndAssignGroups(ctx, acme, BulkAssignInput{
			UserID: u.ID,
			Groups: []group.Spec{{Name: ""}, {Name: ""}},
		}, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrEmptyAssignment)

		stored, err := f.users.GetUser(ctx, acme, u.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{keep.ID}, stored.AssignedGroups)
	})

	t.Run("client placeholder id replaced with warning", func(t *testing.T) {
		f := newFixture(t)
		u := f.mustCreateUser(t, acme, "ada@example.com")

		result, err := f.users.CreateAndAssignGroups(ctx, acme, BulkAssignInput{
			UserID: u.ID,
			Groups: []group.Spec{{ID: "tmp-1", Name: "Admins"}},
		}, nil)
		require.NoError(t, err)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "tmp-1")
	})

	t.Run("rejects empty batch", func(t *testing.T) {
		f := newFixture(t)
		u := f.mustCreateUser(t, acme, "ada@example.com")

		_, err := f.users.CreateAndAssignGroups(ctx, acme, BulkAssignInput{UserID: u.ID}, nil)
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.users.CreateAndAssignGroups(ctx, acme, BulkAssignInput{
			UserID: "missing",
			Groups: []group.Spec{{Name: "Admins"}},
		}, nil)
		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("works against the global catalog", func(t *testing.T) {
		f := newFixture(t)
		u := f.mustCreateUser(t, tenant.Global(), "ops@example.com")

		result, err := f.users.CreateAndAssignGroups(ctx, tenant.Global(), BulkAssignInput{
			UserID: u.ID,
			Groups: []group.Spec{{Name: "Operators"}},
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Validated)

		_, err = f.groups.FindByName(ctx, tenant.Global(), "Operators")
		require.NoError(t, err)
	})
}
