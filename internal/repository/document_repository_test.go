package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiraya-scholars/hiraya-api/internal/models"
)

func TestInsertDocumentReturnsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	mock.ExpectQuery("INSERT INTO documents").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(21)))

	doc := &models.Document{
		ApplicationID: 12,
		UserID:        3,
		DocumentType:  models.DocReportCard,
		FileName:      "report-card.pdf",
		FilePath:      "uploads/3/abc.pdf",
		FileSize:      1024,
		MimeType:      "application/pdf",
		Status:        models.DocStatusUploaded,
	}
	err := repo.Insert(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, int64(21), doc.ID)
	require.NotNil(t, doc.UploadedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyDocumentWritesTimeline(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE documents SET upload_status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO application_timeline").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	doc := &models.Document{ID: 21, ApplicationID: 12, DocumentType: models.DocReportCard}
	err := repo.Verify(context.Background(), doc, 5, models.DocStatusVerified, "")
	require.NoError(t, err)
	assert.Equal(t, models.DocStatusVerified, doc.Status)
	require.NotNil(t, doc.VerifiedBy)
	assert.Equal(t, int64(5), *doc.VerifiedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyDocumentMissingRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE documents SET upload_status").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	doc := &models.Document{ID: 99, ApplicationID: 12, DocumentType: models.DocValidID}
	err := repo.Verify(context.Background(), doc, 5, models.DocStatusRejected, "blurry scan")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByApplicationOrdersByType(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "application_id", "user_id", "document_type", "file_name", "file_path", "file_size", "mime_type", "upload_status", "verified_by", "rejection_reason", "uploaded_at", "verified_at", "created_at", "updated_at"}).
		AddRow(int64(21), int64(12), int64(3), string(models.DocReportCard), "report-card.pdf", "uploads/3/abc.pdf", int64(1024), "application/pdf", string(models.DocStatusUploaded), nil, "", now, nil, now, now)
	mock.ExpectQuery("FROM documents WHERE application_id").
		WithArgs(int64(12)).
		WillReturnRows(rows)

	docs, err := repo.ListByApplication(context.Background(), 12)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, models.DocReportCard, docs[0].DocumentType)
	assert.NoError(t, mock.ExpectationsWereMet())
}
