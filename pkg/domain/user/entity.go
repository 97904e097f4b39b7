// Package user provides the user domain model.
package user

import (
	"fmt"
	"time"

	"github.com/systiva/accessctl/pkg/domain/shared"
)

// Status represents the user account status.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// IsValid checks if the status is valid.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive:
		return true
	}
	return false
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// User represents a user owned by exactly one tenant's catalog. Records are
// serialized as-is into the schemaless store, so fields stay exported.
type User struct {
	ID             string    `json:"id"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Email          string    `json:"email"`
	Status         Status    `json:"status"`
	TechnicalUser  bool      `json:"technicalUser"`
	AssignedGroups []string  `json:"assignedGroups"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// New creates a new User entity.
func New(firstName, lastName, email string) (*User, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", shared.ErrValidation)
	}
	now := time.Now().UTC()
	return &User{
		ID:             shared.NewID(),
		FirstName:      firstName,
		LastName:       lastName,
		Email:          email,
		Status:         StatusActive,
		AssignedGroups: []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// AssignGroup appends groupID to the membership iff not already present.
// Calling it twice with the same id is a no-op the second time.
func (u *User) AssignGroup(groupID string) {
	for _, id := range u.AssignedGroups {
		if id == groupID {
			return
		}
	}
	u.AssignedGroups = append(u.AssignedGroups, groupID)
	u.UpdatedAt = time.Now().UTC()
}

// AssignGroups replaces the membership wholesale with the deduplicated
// input. Dedup happens here, on write, because callers compose ids from
// multiple sources that can coincide.
func (u *User) AssignGroups(groupIDs []string) {
	u.AssignedGroups = shared.Dedupe(groupIDs)
	u.UpdatedAt = time.Now().UTC()
}

// RemoveGroup removes a single group id from the membership.
func (u *User) RemoveGroup(groupID string) {
	u.RemoveGroups([]string{groupID})
}

// RemoveGroups removes the given ids from the membership (set difference).
func (u *User) RemoveGroups(groupIDs []string) {
	drop := make(map[string]struct{}, len(groupIDs))
	for _, id := range groupIDs {
		drop[id] = struct{}{}
	}
	kept := make([]string, 0, len(u.AssignedGroups))
	for _, id := range u.AssignedGroups {
		if _, ok := drop[id]; !ok {
			kept = append(kept, id)
		}
	}
	u.AssignedGroups = kept
	u.UpdatedAt = time.Now().UTC()
}

// HasGroup reports whether the user is assigned to the given group.
func (u *User) HasGroup(groupID string) bool {
	for _, id := range u.AssignedGroups {
		if id == groupID {
			return true
		}
	}
	return false
}

// Patch is a partial update: only non-nil fields are applied.
type Patch struct {
	FirstName     *string `json:"firstName,omitempty"`
	LastName      *string `json:"lastName,omitempty"`
	Email         *string `json:"email,omitempty"`
	Status        *Status `json:"status,omitempty"`
	TechnicalUser *bool   `json:"technicalUser,omitempty"`
}

// IsEmpty reports whether the patch carries no fields.
func (p Patch) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil &&
		p.Status == nil && p.TechnicalUser == nil
}

// Apply merges the patch into the user. Untouched fields retain their
// prior values.
func (u *User) Apply(p Patch) error {
	if p.Email != nil {
		if *p.Email == "" {
			return fmt.Errorf("%w: email cannot be empty", shared.ErrValidation)
		}
		u.Email = *p.Email
	}
	if p.Status != nil {
		if !p.Status.IsValid() {
			return fmt.Errorf("%w: invalid status %q", shared.ErrValidation, *p.Status)
		}
		u.Status = *p.Status
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.TechnicalUser != nil {
		u.TechnicalUser = *p.TechnicalUser
	}
	u.UpdatedAt = time.Now().UTC()
	return nil
}
