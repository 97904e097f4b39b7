package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidID(t *testing.T) {
	assert.True(t, IsValidID(NewID()))
	assert.False(t, IsValidID("tmp-1"))
	assert.False(t, IsValidID(""))
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, Dedupe([]string{"a", "b", "a", "c", "b"}))
	assert.Equal(t, []string{}, Dedupe(nil))
	assert.Equal(t, []string{"a"}, Dedupe([]string{"a", "a", "a"}))
}
