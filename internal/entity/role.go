package entity

import "strings"

// Role is the closed set of account roles.
type Role string

const (
	RoleUser       Role = "USER"
	RoleWriter     Role = "WRITER"
	RoleAdmin      Role = "ADMIN"
	RoleModerator  Role = "MODERATOR"
	RoleSuperAdmin Role = "SUPERADMIN"
)

// Roles lists every valid role.
var Roles = []Role{RoleUser, RoleWriter, RoleAdmin, RoleModerator, RoleSuperAdmin}

// ParseRole converts a raw string into a Role. Matching is case-sensitive.
func ParseRole(value string) (Role, bool) {
	role := Role(strings.TrimSpace(value))
	return role, role.Valid()
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleWriter, RoleAdmin, RoleModerator, RoleSuperAdmin:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

// Action is a permission-gated operation.
type Action string

const (
	ActionCommentCreate     Action = "comment:create"
	ActionCommentUpdateOwn  Action = "comment:update:own"
	ActionCommentDeleteOwn  Action = "comment:delete:own"
	ActionCommentDeleteAny  Action = "comment:delete:any"
	ActionCommentModerate   Action = "comment:moderate"
	ActionCommentViewHidden Action = "comment:view:hidden"
	ActionCommentViewRecent Action = "comment:view:recent"
	ActionCommentViewOthers Action = "comment:view:others"
	ActionUserList          Action = "user:list"
	ActionUserManageRole    Action = "user:manage-role"
	ActionUserManageStatus  Action = "user:manage-status"
	ActionUserManageSuper   Action = "user:manage-superadmin"
	ActionStatsDashboard    Action = "stats:dashboard"
	ActionStatsSystem       Action = "stats:system"
)

var baseActions = []Action{ActionCommentCreate, ActionCommentUpdateOwn, ActionCommentDeleteOwn}

var moderationActions = []Action{
	ActionCommentDeleteAny,
	ActionCommentModerate,
	ActionCommentViewHidden,
	ActionCommentViewRecent,
	ActionCommentViewOthers,
}

// permissions is the single role -> action table. Ownership grants are
// evaluated separately by the comment service.
var permissions = map[Role]map[Action]struct{}{
	RoleUser:      actionSet(baseActions),
	RoleWriter:    actionSet(baseActions, []Action{ActionStatsDashboard}),
	RoleModerator: actionSet(baseActions, moderationActions),
	RoleAdmin: actionSet(baseActions, moderationActions, []Action{
		ActionUserList,
		ActionUserManageStatus,
		ActionStatsDashboard,
		ActionStatsSystem,
	}),
	RoleSuperAdmin: actionSet(baseActions, []Action{
		ActionUserList,
		ActionUserManageRole,
		ActionUserManageStatus,
		ActionUserManageSuper,
		ActionStatsDashboard,
		ActionStatsSystem,
	}),
}

func actionSet(groups ...[]Action) map[Action]struct{} {
	set := make(map[Action]struct{})
	for _, group := range groups {
		for _, action := range group {
			set[action] = struct{}{}
		}
	}
	return set
}

// Can reports whether the role is allowed to perform the action.
func (r Role) Can(action Action) bool {
	actions, ok := permissions[r]
	if !ok {
		return false
	}
	_, allowed := actions[action]
	return allowed
}

// IsModerator reports whether the role can see and reclassify hidden comments.
func (r Role) IsModerator() bool {
	return r.Can(ActionCommentModerate)
}

// Includes reports whether r is a member of allowed. Comparison is exact.
func (r Role) Includes(allowed []Role) bool {
	for _, candidate := range allowed {
		if candidate == r {
			return true
		}
	}
	return false
}
