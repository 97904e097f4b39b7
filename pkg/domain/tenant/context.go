// Package tenant provides the two-tier tenancy model: a single Global
// ("Systiva") catalog plus an arbitrary number of per-account catalogs.
package tenant

import (
	"fmt"
	"strings"
)

// Scope identifies which kind of catalog a context points at.
type Scope string

const (
	ScopeGlobal  Scope = "global"
	ScopeAccount Scope = "account"
)

// String returns the string representation of the scope.
func (s Scope) String() string {
	return string(s)
}

// GlobalName is the display name of the Global catalog.
const GlobalName = "Systiva"

// Context identifies the catalog a request operates against.
type Context struct {
	Scope       Scope
	AccountID   string
	AccountName string
}

// Global returns the context for the Global catalog.
func Global() Context {
	return Context{Scope: ScopeGlobal, AccountName: GlobalName}
}

// Account returns the context for a specific account's catalog.
func Account(accountID, accountName string) Context {
	return Context{Scope: ScopeAccount, AccountID: accountID, AccountName: accountName}
}

// IsGlobal reports whether the context points at the Global catalog.
func (c Context) IsGlobal() bool {
	return c.Scope == ScopeGlobal
}

// Same reports whether two contexts refer to the same tenant. Only the
// scope and account identity matter; enterprise filters do not partition
// storage.
func (c Context) Same(other Context) bool {
	if c.Scope != other.Scope {
		return false
	}
	if c.Scope == ScopeGlobal {
		return true
	}
	return c.AccountID == other.AccountID
}

// Key returns the storage partition key for this tenant's catalog.
func (c Context) Key() string {
	if c.IsGlobal() {
		return "global"
	}
	return "account#" + c.AccountID
}

// String returns a human-readable tenant description for logs and warnings.
func (c Context) String() string {
	if c.IsGlobal() {
		return GlobalName
	}
	return fmt.Sprintf("account %s (%s)", c.AccountID, c.AccountName)
}

// EnterpriseFilter narrows listing operations to groups carrying a matching
// enterprise tag. It is a filter only, never a storage partition.
type EnterpriseFilter struct {
	ID   string
	Name string
}

// Matches reports whether a stored enterprise tag passes the filter.
func (f *EnterpriseFilter) Matches(tag string) bool {
	if f == nil {
		return true
	}
	return strings.EqualFold(tag, f.Name) || tag == f.ID
}

// Resolve derives the tenant context from the optional account and
// enterprise fields the upstream client sends.
//
// The upstream client does not reliably omit fields: it may send empty
// strings, the literal string "null", or the Global catalog's own name.
// All of those mean Global. These sentinel checks are intentionally kept
// byte-compatible with the upstream contract and must not be re-implemented
// anywhere else in the engine.
func Resolve(accountID, accountName, enterpriseID, enterpriseName string) (Context, *EnterpriseFilter) {
	ctx := Account(accountID, accountName)
	if isAbsent(accountID) || isAbsent(accountName) || strings.EqualFold(accountName, GlobalName) {
		ctx = Global()
	}

	// A present-but-"global" enterprise name means "no filter", same as absent.
	var filter *EnterpriseFilter
	if !isAbsent(enterpriseID) && !isAbsent(enterpriseName) && !strings.EqualFold(enterpriseName, "global") {
		filter = &EnterpriseFilter{ID: enterpriseID, Name: enterpriseName}
	}

	return ctx, filter
}

func isAbsent(s string) bool {
	return s == "" || s == "null"
}
