package domain

type Permission string

const (
	PermissionViewAllRequests Permission = "view_all_requests"
	PermissionApproveRequest  Permission = "approve_request"
	PermissionRejectRequest   Permission = "reject_request"
	PermissionViewReports     Permission = "view_reports"
	PermissionManageItems     Permission = "manage_items"
	PermissionManageUsers     Permission = "manage_users"
	PermissionSubmitRequest   Permission = "submit_request"
	PermissionViewOwnRequests Permission = "view_own_requests"
	PermissionReturnItem      Permission = "return_item"
)

// rolePermissions is the single authorization table. Admin is handled in
// HasPermission rather than enumerated here.
var rolePermissions = map[Role]map[Permission]bool{
	RoleManager: {
		PermissionViewAllRequests: true,
		PermissionApproveRequest:  true,
		PermissionRejectRequest:   true,
		PermissionViewReports:     true,
		PermissionManageItems:     true,
		PermissionSubmitRequest:   true,
		PermissionViewOwnRequests: true,
		PermissionReturnItem:      true,
	},
	RoleUser: {
		PermissionSubmitRequest:   true,
		PermissionViewOwnRequests: true,
		PermissionReturnItem:      true,
	},
}

// HasPermission reports whether a role grants the permission.
func HasPermission(r Role, p Permission) bool {
	if r == RoleAdmin {
		return true
	}
	return rolePermissions[r][p]
}

// Elevated reports whether the role may act on resources it does not own.
func (r Role) Elevated() bool {
	return r == RoleAdmin || r == RoleManager
}
