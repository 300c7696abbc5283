package service

import "github.com/diwan-hq/diwan-api/internal/models"

// Action names a permission-gated operation.
type Action string

const (
	ActionViewIncoming   Action = "view_incoming"
	ActionAddIncoming    Action = "add_incoming"
	ActionEditIncoming   Action = "edit_incoming"
	ActionDeleteIncoming Action = "delete_incoming"

	ActionViewOutgoing   Action = "view_outgoing"
	ActionAddOutgoing    Action = "add_outgoing"
	ActionEditOutgoing   Action = "edit_outgoing"
	ActionDeleteOutgoing Action = "delete_outgoing"

	ActionViewFollowUp   Action = "view_followup"
	ActionAddFollowUp    Action = "add_followup"
	ActionEditFollowUp   Action = "edit_followup"
	ActionDeleteFollowUp Action = "delete_followup"

	ActionCloseFollowUp Action = "close_follow_up"
	ActionViewReports   Action = "view_reports"

	ActionManageUsers     Action = "manage_users"
	ActionViewActivityLog Action = "view_activity_log"

	// ActionEditClosedFollowUp is in no role allow-list; only the admin
	// wildcard reaches it, and the workflow additionally demands
	// re-authentication.
	ActionEditClosedFollowUp Action = "edit_closed_follow_up"
)

var employeeActions = map[Action]struct{}{
	ActionViewIncoming:   {},
	ActionAddIncoming:    {},
	ActionEditIncoming:   {},
	ActionDeleteIncoming: {},
	ActionViewOutgoing:   {},
	ActionAddOutgoing:    {},
	ActionEditOutgoing:   {},
	ActionDeleteOutgoing: {},
	ActionViewFollowUp:   {},
	ActionAddFollowUp:    {},
	ActionEditFollowUp:   {},
	ActionDeleteFollowUp: {},
	ActionCloseFollowUp:  {},
	ActionViewReports:    {},
}

var viewerActions = map[Action]struct{}{
	ActionViewIncoming: {},
	ActionViewOutgoing: {},
	ActionViewFollowUp: {},
	ActionViewReports:  {},
}

// HasPermission reports whether a role may perform an action. It is a pure
// function of (role, action): admins pass unconditionally, employees and
// viewers check their fixed allow-lists, and an empty or unknown role is
// always denied.
func HasPermission(role models.Role, action Action) bool {
	switch role {
	case models.RoleAdmin:
		return true
	case models.RoleEmployee:
		_, ok := employeeActions[action]
		return ok
	case models.RoleViewer:
		_, ok := viewerActions[action]
		return ok
	}
	return false
}
