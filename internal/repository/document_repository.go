package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hiraya-scholars/hiraya-api/internal/models"
)

const documentColumns = `id, application_id, user_id, document_type, file_name, file_path, file_size, mime_type, upload_status, verified_by, rejection_reason, uploaded_at, verified_at, created_at, updated_at`

// DocumentRepository provides database access for uploaded documents.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository creates a new instance of DocumentRepository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Insert stores a new document row and fills in the generated identifier.
// Re-uploads insert fresh rows; older rows for the type stay for audit.
func (r *DocumentRepository) Insert(ctx context.Context, doc *models.Document) error {
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	if doc.UploadedAt == nil {
		doc.UploadedAt = &now
	}

	const query = `INSERT INTO documents (application_id, user_id, document_type, file_name, file_path, file_size, mime_type, upload_status, uploaded_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	if err := r.db.GetContext(ctx, &doc.ID, query,
		doc.ApplicationID, doc.UserID, doc.DocumentType, doc.FileName, doc.FilePath,
		doc.FileSize, doc.MimeType, doc.Status, doc.UploadedAt, doc.CreatedAt, doc.UpdatedAt); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// FindByID returns a document by identifier.
func (r *DocumentRepository) FindByID(ctx context.Context, id int64) (*models.Document, error) {
	const query = `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 LIMIT 1`
	var doc models.Document
	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find document by id: %w", err)
	}
	return &doc, nil
}

// ListByApplication returns every document row for an application, ordered
// by type then insertion order so the newest row per type comes last.
func (r *DocumentRepository) ListByApplication(ctx context.Context, applicationID int64) ([]models.Document, error) {
	const query = `SELECT ` + documentColumns + ` FROM documents WHERE application_id = $1 ORDER BY document_type, id`
	var docs []models.Document
	if err := r.db.SelectContext(ctx, &docs, query, applicationID); err != nil {
		return nil, fmt.Errorf("list documents by application: %w", err)
	}
	return docs, nil
}

// Verify records a verification decision and appends the matching timeline
// entry in one transaction. Pass a rejection reason only when rejecting.
func (r *DocumentRepository) Verify(ctx context.Context, doc *models.Document, verifierID int64, status models.DocumentStatus, reason string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("verify document begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	const update = `UPDATE documents SET upload_status = $2, verified_by = $3, verified_at = $4, rejection_reason = $5, updated_at = $4 WHERE id = $1`
	res, err := tx.ExecContext(ctx, update, doc.ID, status, verifierID, now, reason)
	if err != nil {
		return fmt.Errorf("verify document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}

	action := models.TimelineActionDocumentVerified
	description := fmt.Sprintf("Document %s verified", models.DocumentTypeNames[doc.DocumentType])
	if status == models.DocStatusRejected {
		action = models.TimelineActionDocumentRejected
		description = fmt.Sprintf("Document %s rejected", models.DocumentTypeNames[doc.DocumentType])
		if reason != "" {
			description += ": " + reason
		}
	}
	const insert = `INSERT INTO application_timeline (application_id, user_id, action, description, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := tx.ExecContext(ctx, insert, doc.ApplicationID, verifierID, action, description, now); err != nil {
		return fmt.Errorf("verify document timeline: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("verify document commit: %w", err)
	}

	doc.Status = status
	doc.VerifiedBy = &verifierID
	doc.VerifiedAt = &now
	doc.RejectionReason = reason
	doc.UpdatedAt = now
	return nil
}
