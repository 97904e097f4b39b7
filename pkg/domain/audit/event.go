// Package audit provides the audit event vocabulary for engine operations.
package audit

// Action identifies what happened.
type Action string

const (
	ActionUserCreated Action = "user.created"
	ActionUserUpdated Action = "user.updated"
	ActionUserDeleted Action = "user.deleted"

	ActionGroupCreated Action = "group.created"
	ActionGroupUpdated Action = "group.updated"
	ActionGroupDeleted Action = "group.deleted"

	ActionRoleCreated Action = "role.created"
	ActionRoleUpdated Action = "role.updated"
	ActionRoleDeleted Action = "role.deleted"

	ActionGroupAssigned    Action = "user.group_assigned"
	ActionGroupsReplaced   Action = "user.groups_replaced"
	ActionGroupRemoved     Action = "user.group_removed"
	ActionRoleAssigned     Action = "group.role_assigned"
	ActionRolesReplaced    Action = "group.roles_replaced"
	ActionRoleRemoved      Action = "group.role_removed"
	ActionBulkGroupsAssign Action = "user.bulk_groups_assigned"
)

// String returns the string representation of the action.
func (a Action) String() string {
	return string(a)
}

// ResourceType identifies what kind of entity an event is about.
type ResourceType string

const (
	ResourceTypeUser  ResourceType = "user"
	ResourceTypeGroup ResourceType = "group"
	ResourceTypeRole  ResourceType = "role"
)

// String returns the string representation of the resource type.
func (t ResourceType) String() string {
	return string(t)
}

// Severity classifies how notable an event is.
type Severity string

const (
	SeverityInfo Severity = "info"
	SeverityHigh Severity = "high"
)

// Result indicates whether the audited operation succeeded.
type Result string

const (
	ResultSuccess Result = "success"
	ResultFailure Result = "failure"
)
