package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systiva/accessctl/pkg/domain/shared"
)

func TestNew(t *testing.T) {
	t.Run("valid user", func(t *testing.T) {
		u, err := New("Ada", "Lovelace", "ada@example.com")
		require.NoError(t, err)
		assert.NotEmpty(t, u.ID)
		assert.Equal(t, StatusActive, u.Status)
		assert.NotNil(t, u.AssignedGroups)
		assert.Empty(t, u.AssignedGroups)
	})

	t.Run("missing email", func(t *testing.T) {
		_, err := New("Ada", "Lovelace", "")
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})
}

func TestUser_AssignGroup(t *testing.T) {
	u, err := New("Ada", "Lovelace", "ada@example.com")
	require.NoError(t, err)

	u.AssignGroup("g1")
	u.AssignGroup("g2")
	assert.Equal(t, []string{"g1", "g2"}, u.AssignedGroups)

	t.Run("idempotent", func(t *testing.T) {
		u.AssignGroup("g1")
		assert.Equal(t, []string{"g1", "g2"}, u.AssignedGroups)
	})
}

func TestUser_AssignGroups(t *testing.T) {
	u, err := New("Ada", "Lovelace", "ada@example.com")
	require.NoError(t, err)
	u.AssignGroup("old")

	t.Run("replaces wholesale and dedupes", func(t *testing.T) {
		u.AssignGroups([]string{"g1", "g2", "g1", "g3", "g2"})
		assert.Equal(t, []string{"g1", "g2", "g3"}, u.AssignedGroups)
		assert.False(t, u.HasGroup("old"))
	})
}

func TestUser_RemoveGroups(t *testing.T) {
	u, err := New("Ada", "Lovelace", "ada@example.com")
	require.NoError(t, err)
	u.AssignGroups([]string{"g1", "g2", "g3"})

	u.RemoveGroups([]string{"g2", "missing"})
	assert.Equal(t, []string{"g1", "g3"}, u.AssignedGroups)

	u.RemoveGroup("g1")
	assert.Equal(t, []string{"g3"}, u.AssignedGroups)
}

func TestUser_Apply(t *testing.T) {
	u, err := New("Ada", "Lovelace", "ada@example.com")
	require.NoError(t, err)

	t.Run("partial update keeps untouched fields", func(t *testing.T) {
		first := "Grace"
		require.NoError(t, u.Apply(Patch{FirstName: &first}))
		assert.Equal(t, "Grace", u.FirstName)
		assert.Equal(t, "Lovelace", u.LastName)
		assert.Equal(t, "ada@example.com", u.Email)
	})

	t.Run("empty email rejected", func(t *testing.T) {
		empty := ""
		err := u.Apply(Patch{Email: &empty})
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		bad := Status("suspended")
		err := u.Apply(Patch{Status: &bad})
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("valid status applied", func(t *testing.T) {
		inactive := StatusInactive
		require.NoError(t, u.Apply(Patch{Status: &inactive}))
		assert.Equal(t, StatusInactive, u.Status)
	})
}

func TestUser_FullName(t *testing.T) {
	u := &User{FirstName: "Ada", LastName: "Lovelace"}
	assert.Equal(t, "Ada Lovelace", u.FullName())

	u.LastName = ""
	assert.Equal(t, "Ada", u.FullName())

	u.FirstName = ""
	u.LastName = "Lovelace"
	assert.Equal(t, "Lovelace", u.FullName())
}
