package models

import "time"

// DocumentType identifies one of the ten fixed supporting-document slots.
type DocumentType string

const (
	DocProofEnrollment DocumentType = "proof_enrollment"
	DocPicture         DocumentType = "picture"
	DocValidID         DocumentType = "valid_id"
	DocReportCard      DocumentType = "report_card"
	DocBirthCert       DocumentType = "birth_cert"
	DocMoralCert       DocumentType = "moral_cert"
	DocHealthCert      DocumentType = "health_cert"
	DocIndigencyCert   DocumentType = "indigency_cert"
	DocIncomeCert      DocumentType = "income_cert"
	DocRecoLetter      DocumentType = "reco_letter"
)

// RequiredDocumentTypes is the canonical required set: all ten types, in
// the order used for reports and listings.
var RequiredDocumentTypes = []DocumentType{
	DocProofEnrollment,
	DocPicture,
	DocValidID,
	DocReportCard,
	DocBirthCert,
	DocMoralCert,
	DocHealthCert,
	DocIndigencyCert,
	DocIncomeCert,
	DocRecoLetter,
}

// DocumentTypeNames maps each type to its display label.
var DocumentTypeNames = map[DocumentType]string{
	DocProofEnrollment: "Proof of Enrollment",
	DocPicture:         "2x2 Picture",
	DocValidID:         "Valid ID",
	DocReportCard:      "Report Card",
	DocBirthCert:       "Birth Certificate",
	DocMoralCert:       "Good Moral Certificate",
	DocHealthCert:      "Health Certificate",
	DocIndigencyCert:   "Certificate of Indigency",
	DocIncomeCert:      "Income Certificate",
	DocRecoLetter:      "Recommendation Letter",
}

// KnownDocumentType reports whether t is one of the ten enumerated slots.
func KnownDocumentType(t DocumentType) bool {
	_, ok := DocumentTypeNames[t]
	return ok
}

// DocumentStatus is the verification status of an uploaded file.
type DocumentStatus string

const (
	DocStatusUploaded DocumentStatus = "uploaded"
	DocStatusPending  DocumentStatus = "pending"
	DocStatusVerified DocumentStatus = "verified"
	DocStatusRejected DocumentStatus = "rejected"
)

// Document is one uploaded file row. Re-uploads of the same type insert new
// rows; the newest row per type wins when reporting completeness.
type Document struct {
	ID              int64          `db:"id" json:"id"`
	ApplicationID   int64          `db:"application_id" json:"application_id"`
	UserID          int64          `db:"user_id" json:"user_id"`
	DocumentType    DocumentType   `db:"document_type" json:"document_type"`
	FileName        string         `db:"file_name" json:"file_name"`
	FilePath        string         `db:"file_path" json:"-"`
	FileSize        int64          `db:"file_size" json:"file_size"`
	MimeType        string         `db:"mime_type" json:"mime_type"`
	Status          DocumentStatus `db:"upload_status" json:"status"`
	VerifiedBy      *int64         `db:"verified_by" json:"verified_by,omitempty"`
	RejectionReason string         `db:"rejection_reason" json:"rejection_reason,omitempty"`
	UploadedAt      *time.Time     `db:"uploaded_at" json:"uploaded_at,omitempty"`
	VerifiedAt      *time.Time     `db:"verified_at" json:"verified_at,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// DocumentBucket is the completeness bucket a required type falls into.
type DocumentBucket string

const (
	BucketVerified DocumentBucket = "verified"
	BucketPending  DocumentBucket = "pending"
	BucketMissing  DocumentBucket = "missing"
)

// DocumentSlot is the per-type detail inside a completeness report.
type DocumentSlot struct {
	Type       DocumentType   `json:"type"`
	Name       string         `json:"name"`
	Bucket     DocumentBucket `json:"bucket"`
	DocumentID *int64         `json:"document_id,omitempty"`
	FileName   string         `json:"file_name,omitempty"`
	UploadedAt *time.Time     `json:"uploaded_at,omitempty"`
}

// CompletenessReport partitions the required document types into three
// mutually exclusive buckets that always sum to TotalRequired.
type CompletenessReport struct {
	VerifiedCount int            `json:"verified_count"`
	PendingCount  int            `json:"pending_count"`
	MissingCount  int            `json:"missing_count"`
	TotalRequired int            `json:"total_required"`
	Slots         []DocumentSlot `json:"documents"`
}

// AllUploaded reports whether nothing is missing.
func (r *CompletenessReport) AllUploaded() bool {
	return r.MissingCount == 0
}
