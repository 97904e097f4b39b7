// Package group provides the group domain model.
package group

import (
	"fmt"
	"time"

	"github.com/systiva/accessctl/pkg/domain/shared"
)

// Group represents an access-control group owned by one tenant's catalog.
// Group names are unique within their tenant; that uniqueness is the basis
// of cross-tenant fallback matching, so Name is never optional.
type Group struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Entity        string    `json:"entity,omitempty"`
	Product       string    `json:"product,omitempty"`
	Service       string    `json:"service,omitempty"`
	Enterprise    string    `json:"enterprise,omitempty"`
	AssignedRoles []string  `json:"assignedRoles"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// New creates a new Group entity.
func New(name string) (*Group, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", shared.ErrValidation)
	}
	now := time.Now().UTC()
	return &Group{
		ID:            shared.NewID(),
		Name:          name,
		AssignedRoles: []string{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// AssignRole appends roleID to the assigned roles iff not already present.
func (g *Group) AssignRole(roleID string) {
	for _, id := range g.AssignedRoles {
		if id == roleID {
			return
		}
	}
	g.AssignedRoles = append(g.AssignedRoles, roleID)
	g.UpdatedAt = time.Now().UTC()
}

// AssignRoles replaces the assigned roles wholesale with the deduplicated
// input.
func (g *Group) AssignRoles(roleIDs []string) {
	g.AssignedRoles = shared.Dedupe(roleIDs)
	g.UpdatedAt = time.Now().UTC()
}

// RemoveRole removes a single role id.
func (g *Group) RemoveRole(roleID string) {
	g.RemoveRoles([]string{roleID})
}

// RemoveRoles removes the given role ids (set difference).
func (g *Group) RemoveRoles(roleIDs []string) {
	drop := make(map[string]struct{}, len(roleIDs))
	for _, id := range roleIDs {
		drop[id] = struct{}{}
	}
	kept := make([]string, 0, len(g.AssignedRoles))
	for _, id := range g.AssignedRoles {
		if _, ok := drop[id]; !ok {
			kept = append(kept, id)
		}
	}
	g.AssignedRoles = kept
	g.UpdatedAt = time.Now().UTC()
}

// Patch is a partial update: only non-nil fields are applied.
type Patch struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Entity      *string   `json:"entity,omitempty"`
	Product     *string   `json:"product,omitempty"`
	Service     *string   `json:"service,omitempty"`
	Enterprise  *string   `json:"enterprise,omitempty"`
	Roles       *[]string `json:"assignedRoles,omitempty"`
}

// IsEmpty reports whether the patch carries no fields.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Entity == nil &&
		p.Product == nil && p.Service == nil && p.Enterprise == nil && p.Roles == nil
}

// Apply merges the patch into the group. Untouched fields retain their
// prior values.
func (g *Group) Apply(p Patch) error {
	if p.Name != nil {
		if *p.Name == "" {
			return fmt.Errorf("%w: name cannot be empty", shared.ErrValidation)
		}
		g.Name = *p.Name
	}
	if p.Description != nil {
		g.Description = *p.Description
	}
	if p.Entity != nil {
		g.Entity = *p.Entity
	}
	if p.Product != nil {
		g.Product = *p.Product
	}
	if p.Service != nil {
		g.Service = *p.Service
	}
	if p.Enterprise != nil {
		g.Enterprise = *p.Enterprise
	}
	if p.Roles != nil {
		g.AssignRoles(*p.Roles)
	}
	g.UpdatedAt = time.Now().UTC()
	return nil
}

// Spec is a group specification in a bulk create-and-assign request. The
// caller may have generated a client-side placeholder ID, so existing
// groups are always matched by Name, never by ID.
type Spec struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name" validate:"required,min=1,max=100"`
	Description string   `json:"description,omitempty" validate:"max=500"`
	Entity      string   `json:"entity,omitempty"`
	Product     string   `json:"product,omitempty"`
	Service     string   `json:"service,omitempty"`
	Enterprise  string   `json:"enterprise,omitempty"`
	Roles       []string `json:"assignedRoles,omitempty"`
}

// NewFromSpec creates a group from a bulk specification, defaulting absent
// optional fields to empty. The client-side placeholder id is discarded.
func NewFromSpec(s Spec) (*Group, error) {
	g, err := New(s.Name)
	if err != nil {
		return nil, err
	}
	g.Description = s.Description
	g.Entity = s.Entity
	g.Product = s.Product
	g.Service = s.Service
	g.Enterprise = s.Enterprise
	if len(s.Roles) > 0 {
		g.AssignedRoles = shared.Dedupe(s.Roles)
	}
	return g, nil
}

// SparseUpdate builds a patch containing only the spec fields that differ
// from the stored group AND are non-empty. A blank description in a stale
// client payload must never overwrite a non-empty stored one.
func (g *Group) SparseUpdate(s Spec) Patch {
	var p Patch
	if s.Description != "" && s.Description != g.Description {
		p.Description = &s.Description
	}
	if s.Entity != "" && s.Entity != g.Entity {
		p.Entity = &s.Entity
	}
	if s.Product != "" && s.Product != g.Product {
		p.Product = &s.Product
	}
	if s.Service != "" && s.Service != g.Service {
		p.Service = &s.Service
	}
	if s.Enterprise != "" && s.Enterprise != g.Enterprise {
		p.Enterprise = &s.Enterprise
	}
	if len(s.Roles) > 0 && !sameIDSet(s.Roles, g.AssignedRoles) {
		roles := shared.Dedupe(s.Roles)
		p.Roles = &roles
	}
	return p
}

func sameIDSet(a, b []string) bool {
	a = shared.Dedupe(a)
	b = shared.Dedupe(b)
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}
