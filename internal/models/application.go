package models

import "time"

// ApplicationStatus is the lifecycle status of an application row.
type ApplicationStatus string

const (
	AppStatusDraft       ApplicationStatus = "draft"
	AppStatusSubmitted   ApplicationStatus = "submitted"
	AppStatusUnderReview ApplicationStatus = "under_review"
	AppStatusInterview   ApplicationStatus = "interview"
	AppStatusApproved    ApplicationStatus = "approved"
	AppStatusDeclined    ApplicationStatus = "declined"
)

// KnownStatus reports whether s is one of the recognised lifecycle states.
func KnownStatus(s ApplicationStatus) bool {
	switch s {
	case AppStatusDraft, AppStatusSubmitted, AppStatusUnderReview,
		AppStatusInterview, AppStatusApproved, AppStatusDeclined:
		return true
	}
	return false
}

// ReviewStatuses are the states staff may move a submitted application
// between. Draft is excluded: once submitted an application never goes back.
var ReviewStatuses = []ApplicationStatus{
	AppStatusSubmitted,
	AppStatusUnderReview,
	AppStatusInterview,
	AppStatusApproved,
	AppStatusDeclined,
}

// Application holds one application attempt: a mutable draft that becomes an
// immutable submitted record. Scalar form fields use the zero value for
// "not filled"; truly optional numerics and timestamps are pointers.
type Application struct {
	ID              int64             `db:"id" json:"id"`
	UserID          int64             `db:"user_id" json:"user_id"`
	ReferenceNumber *string           `db:"reference_number" json:"reference_number,omitempty"`
	Status          ApplicationStatus `db:"application_status" json:"status"`

	// Personal information
	FirstName    string     `db:"first_name" json:"first_name"`
	MiddleName   string     `db:"middle_name" json:"middle_name"`
	LastName     string     `db:"last_name" json:"last_name"`
	Sex          string     `db:"sex" json:"sex"`
	Birthdate    *time.Time `db:"birthdate" json:"birthdate,omitempty"`
	Age          *int       `db:"age" json:"age,omitempty"`
	PlaceOfBirth string     `db:"place_of_birth" json:"place_of_birth"`
	Height       *float64   `db:"height" json:"height,omitempty"`
	Weight       *float64   `db:"weight" json:"weight,omitempty"`
	MobileNumber string     `db:"mobile_number" json:"mobile_number"`
	Email        string     `db:"email" json:"email"`
	FacebookURL  string     `db:"facebook_url" json:"facebook_url"`

	// Present address
	PresentRegion       string `db:"present_region" json:"present_region"`
	PresentProvince     string `db:"present_province" json:"present_province"`
	PresentMunicipality string `db:"present_municipality" json:"present_municipality"`
	PresentBarangay     string `db:"present_barangay" json:"present_barangay"`
	PresentHouseNumber  string `db:"present_house_number" json:"present_house_number"`
	PresentStreet       string `db:"present_street" json:"present_street"`
	PresentZipCode      string `db:"present_zip_code" json:"present_zip_code"`

	// Permanent address
	PermanentRegion       string `db:"permanent_region" json:"permanent_region"`
	PermanentProvince     string `db:"permanent_province" json:"permanent_province"`
	PermanentMunicipality string `db:"permanent_municipality" json:"permanent_municipality"`
	PermanentBarangay     string `db:"permanent_barangay" json:"permanent_barangay"`
	PermanentHouseNumber  string `db:"permanent_house_number" json:"permanent_house_number"`
	PermanentStreet       string `db:"permanent_street" json:"permanent_street"`
	PermanentZipCode      string `db:"permanent_zip_code" json:"permanent_zip_code"`

	// Junior high school
	JhsName     string `db:"jhs_name" json:"jhs_name"`
	JhsSchoolID string `db:"jhs_school_id" json:"jhs_school_id"`
	JhsType     string `db:"jhs_type" json:"jhs_type"`

	// Senior high school
	ShsName        string   `db:"shs_name" json:"shs_name"`
	ShsSchoolID    string   `db:"shs_school_id" json:"shs_school_id"`
	ShsType        string   `db:"shs_type" json:"shs_type"`
	Track          string   `db:"track" json:"track"`
	Strand         string   `db:"strand" json:"strand"`
	Grade12GWA     *float64 `db:"grade_12_gwa" json:"grade_12_gwa,omitempty"`
	HonorsReceived string   `db:"honors_received" json:"honors_received"`

	// College and program choices, ranked
	CollegeFirst  string `db:"college_first" json:"college_first"`
	CollegeSecond string `db:"college_second" json:"college_second"`
	CollegeThird  string `db:"college_third" json:"college_third"`
	ProgramFirst  string `db:"program_first" json:"program_first"`
	ProgramSecond string `db:"program_second" json:"program_second"`
	ProgramThird  string `db:"program_third" json:"program_third"`

	Essay string `db:"essay" json:"essay"`

	SubmissionDate *time.Time `db:"submission_date" json:"submission_date,omitempty"`
	LastSaved      *time.Time `db:"last_saved" json:"last_saved,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// ApplicationFilter captures the admin listing criteria.
type ApplicationFilter struct {
	Status   *ApplicationStatus
	Search   string
	Page     int
	PageSize int
}

// ApplicationSummary is the admin listing row: application columns joined
// with the owning applicant.
type ApplicationSummary struct {
	ID              int64             `db:"id" json:"id"`
	ReferenceNumber *string           `db:"reference_number" json:"reference_number,omitempty"`
	Status          ApplicationStatus `db:"application_status" json:"status"`
	ApplicantName   string            `db:"applicant_name" json:"applicant_name"`
	Email           string            `db:"email" json:"email"`
	Phone           string            `db:"phone" json:"phone"`
	Program         string            `db:"program_first" json:"program"`
	College         string            `db:"college_first" json:"college"`
	GWA             *float64          `db:"grade_12_gwa" json:"gwa,omitempty"`
	SubmissionDate  *time.Time        `db:"submission_date" json:"submission_date,omitempty"`
	CreatedAt       time.Time         `db:"created_at" json:"created_at"`
}
