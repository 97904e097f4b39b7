package group

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systiva/accessctl/pkg/domain/shared"
)

func TestNewFromSpec(t *testing.T) {
	t.Run("placeholder id is discarded", func(t *testing.T) {
		g, err := NewFromSpec(Spec{ID: "tmp-1", Name: "Admins"})
		require.NoError(t, err)
		assert.NotEqual(t, "tmp-1", g.ID)
		assert.True(t, shared.IsValidID(g.ID))
	})

	t.Run("roles deduplicated", func(t *testing.T) {
		g, err := NewFromSpec(Spec{Name: "Admins", Roles: []string{"r1", "r1", "r2"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"r1", "r2"}, g.AssignedRoles)
	})

	t.Run("missing name rejected", func(t *testing.T) {
		_, err := NewFromSpec(Spec{ID: "tmp-1"})
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})
}

func TestGroup_SparseUpdate(t *testing.T) {
	stored := &Group{
		ID:          "g1",
		Name:        "Admins",
		Description: "stored description",
		Enterprise:  "Acme",
	}

	t.Run("blank fields never clobber stored values", func(t *testing.T) {
		p := stored.SparseUpdate(Spec{Name: "Admins", Description: "", Enterprise: ""})
		assert.True(t, p.IsEmpty())
	})

	t.Run("identical fields produce no patch", func(t *testing.T) {
		p := stored.SparseUpdate(Spec{Name: "Admins", Description: "stored description", Enterprise: "Acme"})
		assert.True(t, p.IsEmpty())
	})

	t.Run("differing non-empty fields are patched", func(t *testing.T) {
		p := stored.SparseUpdate(Spec{Name: "Admins", Description: "new description", Product: "billing"})
		require.NotNil(t, p.Description)
		assert.Equal(t, "new description", *p.Description)
		require.NotNil(t, p.Product)
		assert.Equal(t, "billing", *p.Product)
		assert.Nil(t, p.Enterprise)
	})

	t.Run("same role set in different order produces no patch", func(t *testing.T) {
		stored.AssignedRoles = []string{"r1", "r2"}
		p := stored.SparseUpdate(Spec{Name: "Admins", Roles: []string{"r2", "r1"}})
		assert.Nil(t, p.Roles)
	})

	t.Run("changed role set is patched deduplicated", func(t *testing.T) {
		stored.AssignedRoles = []string{"r1"}
		p := stored.SparseUpdate(Spec{Name: "Admins", Roles: []string{"r2", "r2", "r3"}})
		require.NotNil(t, p.Roles)
		assert.Equal(t, []string{"r2", "r3"}, *p.Roles)
	})
}

func TestGroup_Apply(t *testing.T) {
	g, err := New("Admins")
	require.NoError(t, err)

	t.Run("empty name rejected", func(t *testing.T) {
		empty := ""
		err := g.Apply(Patch{Name: &empty})
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("partial update keeps untouched fields", func(t *testing.T) {
		desc := "full access"
		require.NoError(t, g.Apply(Patch{Description: &desc}))
		assert.Equal(t, "Admins", g.Name)
		assert.Equal(t, "full access", g.Description)
	})
}

func TestGroup_RoleMembership(t *testing.T) {
	g, err := New("Admins")
	require.NoError(t, err)

	g.AssignRole("r1")
	g.AssignRole("r1")
	g.AssignRole("r2")
	assert.Equal(t, []string{"r1", "r2"}, g.AssignedRoles)

	g.RemoveRoles([]string{"r1", "missing"})
	assert.Equal(t, []string{"r2"}, g.AssignedRoles)
}
