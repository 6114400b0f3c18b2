package models

import "time"

// Staff role labels stored on the admins table. The label alone determines
// the permission set; see PermissionsFor.
const (
	RoleLabelAdministrator = "Scholarship Administrator"
	RoleLabelReviewer      = "Reviewer"
)

// Admin is a role-carrying extension of User for staff accounts, built from
// the users ⋈ admins join.
type Admin struct {
	User
	AdminCode   string     `db:"admin_code" json:"admin_code"`
	RoleLabel   string     `db:"role_label" json:"role_label"`
	Department  string     `db:"department" json:"department"`
	Permissions string     `db:"permissions" json:"permissions"`
	LastLogin   *time.Time `db:"last_login" json:"last_login,omitempty"`
}

// IsAdministrator reports whether the staff member holds the full
// administrator role.
func (a *Admin) IsAdministrator() bool {
	return a.RoleLabel == RoleLabelAdministrator
}
