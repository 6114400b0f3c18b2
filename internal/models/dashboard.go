package models

// DashboardStats carries the admin dashboard counters. Administrator-only
// counters are pointers so the reviewer variant omits them entirely.
type DashboardStats struct {
	TotalApplicants    *int `db:"total_applicants" json:"total_applicants,omitempty"`
	NewApplicantsToday *int `db:"new_applicants_today" json:"new_applicants_today,omitempty"`
	TotalApplications  *int `db:"total_applications" json:"total_applications,omitempty"`
	DraftApplications  *int `db:"draft_applications" json:"draft_applications,omitempty"`
	ApplicationsToday  *int `db:"applications_today" json:"applications_today,omitempty"`
	SubmissionsToday   *int `db:"submissions_today" json:"submissions_today,omitempty"`

	SubmittedApplications int `db:"submitted_applications" json:"submitted_applications"`
	UnderReview           int `db:"under_review" json:"under_review"`
	ForInterview          int `db:"for_interview" json:"for_interview"`
	Approved              int `db:"approved" json:"approved"`
	Declined              int `db:"declined" json:"declined"`
	PendingDocuments      int `db:"pending_documents" json:"pending_documents"`
}
