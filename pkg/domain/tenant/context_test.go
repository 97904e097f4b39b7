package tenant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_TenantSelection(t *testing.T) {
	tests := []struct {
		name        string
		accountID   string
		accountName string
		wantGlobal  bool
	}{
		{"both absent", "", "", true},
		{"id absent", "", "Acme Corp", true},
		{"name absent", "acct-1", "", true},
		{"literal null id", "null", "Acme Corp", true},
		{"literal null name", "acct-1", "null", true},
		{"systiva name lowercase", "acct-1", "systiva", true},
		{"systiva name uppercase", "acct-1", "SYSTIVA", true},
		{"systiva name mixed case", "acct-1", "SyStIvA", true},
		{"real account", "acct-1", "Acme Corp", false},
		{"account named almost-systiva", "acct-1", "Systiva Inc", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := Resolve(tt.accountID, tt.accountName, "", "")
			assert.Equal(t, tt.wantGlobal, ctx.IsGlobal())
			if !tt.wantGlobal {
				assert.Equal(t, tt.accountID, ctx.AccountID)
				assert.Equal(t, tt.accountName, ctx.AccountName)
			}
		})
	}
}

func TestResolve_EnterpriseFilter(t *testing.T) {
	tests := []struct {
		name           string
		enterpriseID   string
		enterpriseName string
		wantFilter     bool
	}{
		{"both absent", "", "", false},
		{"id only", "ent-1", "", false},
		{"name only", "", "Acme", false},
		{"literal null id", "null", "Acme", false},
		{"name is global lowercase", "ent-1", "global", false},
		{"name is global uppercase", "ent-1", "GLOBAL", false},
		{"both present", "ent-1", "Acme", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, filter := Resolve("acct-1", "Acme Corp", tt.enterpriseID, tt.enterpriseName)
			if tt.wantFilter {
				require.NotNil(t, filter)
				assert.Equal(t, tt.enterpriseID, filter.ID)
				assert.Equal(t, tt.enterpriseName, filter.Name)
			} else {
				assert.Nil(t, filter)
			}
		})
	}
}

func TestEnterpriseFilter_Matches(t *testing.T) {
	f := &EnterpriseFilter{ID: "ent-1", Name: "Acme"}

	assert.True(t, f.Matches("Acme"))
	assert.True(t, f.Matches("acme"), "name match is case-insensitive")
	assert.True(t, f.Matches("ACME"))
	assert.True(t, f.Matches("ent-1"), "id match is exact")
	assert.False(t, f.Matches("ENT-1"), "id match is case-sensitive")
	assert.False(t, f.Matches("Other"))

	var nilFilter *EnterpriseFilter
	assert.True(t, nilFilter.Matches("anything"), "nil filter passes everything")
}

func TestContext_Key(t *testing.T) {
	assert.Equal(t, "global", Global().Key())
	assert.Equal(t, "account#acct-42", Account("acct-42", "Acme Corp").Key())
}

func TestContext_Same(t *testing.T) {
	assert.True(t, Global().Same(Global()))
	assert.True(t, Account("a", "one").Same(Account("a", "renamed")))
	assert.False(t, Account("a", "one").Same(Account("b", "one")))
	assert.False(t, Global().Same(Account("a", "one")))
}
