package models

import "time"

// Timeline action tags. The column is free text; these are the values the
// service writes.
const (
	TimelineActionSubmitted        = "SUBMITTED"
	TimelineActionStatusUpdate     = "STATUS_UPDATE"
	TimelineActionDocumentVerified = "DOCUMENT_VERIFIED"
	TimelineActionDocumentRejected = "DOCUMENT_REJECTED"
	TimelineActionComment          = "COMMENT"
)

// TimelineEntry is an append-only audit record for one application event.
// Entries are never mutated or deleted.
type TimelineEntry struct {
	ID            int64     `db:"id" json:"id"`
	ApplicationID int64     `db:"application_id" json:"application_id"`
	UserID        int64     `db:"user_id" json:"user_id"`
	Action        string    `db:"action" json:"action"`
	Description   string    `db:"description" json:"description"`
	StatusBefore  *string   `db:"status_before" json:"status_before,omitempty"`
	StatusAfter   *string   `db:"status_after" json:"status_after,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
