package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email  string `validate:"required,email"`
	Name   string `validate:"max=5"`
	Status string `validate:"omitempty,user_status"`
}

func TestValidator_Validate(t *testing.T) {
	v := New()

	t.Run("valid struct", func(t *testing.T) {
		err := v.Validate(sample{Email: "a@b.com", Name: "Ada", Status: "active"})
		assert.NoError(t, err)
	})

	t.Run("collects field errors", func(t *testing.T) {
		err := v.Validate(sample{Email: "nope", Name: "toolongname"})
		require.Error(t, err)

		var verrs ValidationErrors
		require.ErrorAs(t, err, &verrs)
		require.Len(t, verrs, 2)
		assert.Equal(t, "email", verrs[0].Field)
		assert.Contains(t, verrs[0].Message, "valid email")
		assert.Contains(t, verrs[1].Message, "at most 5")
	})

	t.Run("custom user_status tag", func(t *testing.T) {
		err := v.Validate(sample{Email: "a@b.com", Status: "suspended"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "active, inactive")
	})

	t.Run("missing required field", func(t *testing.T) {
		err := v.Validate(sample{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "is required")
	})
}
