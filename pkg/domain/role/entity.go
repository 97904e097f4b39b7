// Package role provides the role domain model.
package role

import (
	"fmt"
	"time"

	"github.com/systiva/accessctl/pkg/domain/shared"
)

// Role represents a named permission set owned by one tenant's catalog.
// ScopeConfig is an opaque structured permissions blob; the engine stores
// and returns it without interpreting its contents.
type Role struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	ScopeConfig map[string]any `json:"scopeConfig,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// New creates a new Role entity.
func New(name string) (*Role, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", shared.ErrValidation)
	}
	now := time.Now().UTC()
	return &Role{
		ID:        shared.NewID(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Patch is a partial update: only non-nil fields are applied.
type Patch struct {
	Name        *string         `json:"name,omitempty"`
	Description *string         `json:"description,omitempty"`
	ScopeConfig *map[string]any `json:"scopeConfig,omitempty"`
}

// IsEmpty reports whether the patch carries no fields.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.ScopeConfig == nil
}

// Apply merges the patch into the role. Untouched fields retain their
// prior values.
func (r *Role) Apply(p Patch) error {
	if p.Name != nil {
		if *p.Name == "" {
			return fmt.Errorf("%w: name cannot be empty", shared.ErrValidation)
		}
		r.Name = *p.Name
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.ScopeConfig != nil {
		r.ScopeConfig = *p.ScopeConfig
	}
	r.UpdatedAt = time.Now().UTC()
	return nil
}
