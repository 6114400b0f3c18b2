package models

// PermissionSet enumerates the actions a staff role label allows. Every
// mutating staff operation checks one of these flags before touching the
// stores.
type PermissionSet struct {
	CanReviewApplications      bool `json:"can_review_applications"`
	CanChangeApplicationStatus bool `json:"can_change_application_status"`
	CanVerifyDocuments         bool `json:"can_verify_documents"`
	CanExportData              bool `json:"can_export_data"`
	CanManageUsers             bool `json:"can_manage_users"`
}

// PermissionsFor maps a staff role label to its permission set. Unknown
// labels get no permissions at all.
func PermissionsFor(roleLabel string) PermissionSet {
	switch roleLabel {
	case RoleLabelAdministrator:
		return PermissionSet{
			CanReviewApplications:      true,
			CanChangeApplicationStatus: true,
			CanVerifyDocuments:         true,
			CanExportData:              true,
			CanManageUsers:             true,
		}
	case RoleLabelReviewer:
		return PermissionSet{
			CanReviewApplications:      true,
			CanChangeApplicationStatus: true,
			CanVerifyDocuments:         true,
		}
	default:
		return PermissionSet{}
	}
}
