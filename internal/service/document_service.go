package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hiraya-scholars/hiraya-api/internal/models"
	appErrors "github.com/hiraya-scholars/hiraya-api/pkg/errors"
)

type documentRepository interface {
	Insert(ctx context.Context, doc *models.Document) error
	FindByID(ctx context.Context, id int64) (*models.Document, error)
	ListByApplication(ctx context.Context, applicationID int64) ([]models.Document, error)
	Verify(ctx context.Context, doc *models.Document, verifierID int64, status models.DocumentStatus, reason string) error
}

type documentApplicationFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Application, error)
}

type documentStorage interface {
	SaveStream(filename string, r io.Reader) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
}

// UploadLimits constrains incoming document files.
type UploadLimits struct {
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
}

// Upload describes one incoming document file.
type Upload struct {
	DocumentType models.DocumentType
	FileName     string
	Size         int64
	MimeType     string
	Body         io.Reader
}

// DocumentService provides upload, listing and verification use cases.
type DocumentService struct {
	docs    documentRepository
	apps    documentApplicationFinder
	storage documentStorage
	logger  *zap.Logger
	limits  UploadLimits
}

// NewDocumentService constructs a DocumentService instance.
func NewDocumentService(docs documentRepository, apps documentApplicationFinder, storage documentStorage, logger *zap.Logger, limits UploadLimits) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{docs: docs, apps: apps, storage: storage, logger: logger, limits: limits}
}

// Save validates and stores an uploaded file, then records the document row.
// The stored filename is a fresh UUID so uploads never collide or expose the
// original name on disk.
func (s *DocumentService) Save(ctx context.Context, userID, applicationID int64, up Upload) (*models.Document, error) {
	if !models.KnownDocumentType(up.DocumentType) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown document type %q", up.DocumentType))
	}
	if s.limits.MaxFileSizeBytes > 0 && up.Size > s.limits.MaxFileSizeBytes {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file exceeds the maximum allowed size")
	}
	if len(s.limits.AllowedMIMEs) > 0 && !s.mimeAllowed(up.MimeType) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file type %q is not accepted", up.MimeType))
	}

	app, err := s.apps.FindByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load application")
	}
	if app.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrPermissionDenied, "application belongs to another applicant")
	}

	stored := filepath.Join(fmt.Sprintf("%d", userID), uuid.NewString()+strings.ToLower(filepath.Ext(up.FileName)))
	path, err := s.storage.SaveStream(stored, up.Body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to store file")
	}

	doc := &models.Document{
		ApplicationID: applicationID,
		UserID:        userID,
		DocumentType:  up.DocumentType,
		FileName:      filepath.Base(up.FileName),
		FilePath:      path,
		FileSize:      up.Size,
		MimeType:      up.MimeType,
		Status:        models.DocStatusUploaded,
	}
	if err := s.docs.Insert(ctx, doc); err != nil {
		if cleanupErr := s.storage.Delete(path); cleanupErr != nil {
			s.logger.Warn("failed to remove orphaned upload", zap.String("path", path), zap.Error(cleanupErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to record document")
	}

	s.logger.Info("document uploaded",
		zap.Int64("application_id", applicationID),
		zap.String("document_type", string(up.DocumentType)),
		zap.Int64("document_id", doc.ID))
	return doc, nil
}

// ListByApplication returns the document rows for an application, restricted
// to the owner unless the actor can review applications.
func (s *DocumentService) ListByApplication(ctx context.Context, actor models.PermissionSet, actorID, applicationID int64) ([]models.Document, error) {
	if err := s.authorizeRead(ctx, actor, actorID, applicationID); err != nil {
		return nil, err
	}
	docs, err := s.docs.ListByApplication(ctx, applicationID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list documents")
	}
	return docs, nil
}

// Open returns the stored file for download, restricted like ListByApplication.
func (s *DocumentService) Open(ctx context.Context, actor models.PermissionSet, actorID, documentID int64) (*models.Document, *os.File, error) {
	doc, err := s.docs.FindByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load document")
	}
	if !actor.CanReviewApplications && doc.UserID != actorID {
		return nil, nil, appErrors.Clone(appErrors.ErrPermissionDenied, "document belongs to another applicant")
	}
	file, err := s.storage.Open(doc.FilePath)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to open stored file")
	}
	return doc, file, nil
}

// CompletenessReport buckets the required document types for an application.
func (s *DocumentService) CompletenessReport(ctx context.Context, actor models.PermissionSet, actorID, applicationID int64) (*models.CompletenessReport, error) {
	if err := s.authorizeRead(ctx, actor, actorID, applicationID); err != nil {
		return nil, err
	}
	docs, err := s.docs.ListByApplication(ctx, applicationID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list documents")
	}
	return BuildCompletenessReport(docs), nil
}

// Verify records an accept or reject decision on a document. Rejections
// require a reason. The gate check runs before any write.
func (s *DocumentService) Verify(ctx context.Context, actor models.PermissionSet, verifierID, documentID int64, accept bool, reason string) (*models.Document, error) {
	if !actor.CanVerifyDocuments {
		return nil, appErrors.Clone(appErrors.ErrPermissionDenied, "not allowed to verify documents")
	}
	if !accept && strings.TrimSpace(reason) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "rejection reason is required")
	}

	doc, err := s.docs.FindByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load document")
	}

	status := models.DocStatusVerified
	if !accept {
		status = models.DocStatusRejected
	} else {
		reason = ""
	}
	if err := s.docs.Verify(ctx, doc, verifierID, status, reason); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to record verification")
	}
	return doc, nil
}

func (s *DocumentService) authorizeRead(ctx context.Context, actor models.PermissionSet, actorID, applicationID int64) error {
	if actor.CanReviewApplications {
		return nil
	}
	app, err := s.apps.FindByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load application")
	}
	if app.UserID != actorID {
		return appErrors.Clone(appErrors.ErrPermissionDenied, "application belongs to another applicant")
	}
	return nil
}

func (s *DocumentService) mimeAllowed(mime string) bool {
	for _, allowed := range s.limits.AllowedMIMEs {
		if strings.EqualFold(allowed, mime) {
			return true
		}
	}
	return false
}

// BuildCompletenessReport partitions the required document types into
// verified, pending and missing buckets. The newest row per type wins;
// a rejected latest row counts as missing because the file must be
// re-uploaded.
func BuildCompletenessReport(docs []models.Document) *models.CompletenessReport {
	latest := make(map[models.DocumentType]*models.Document, len(docs))
	for i := range docs {
		doc := &docs[i]
		current, ok := latest[doc.DocumentType]
		if !ok || doc.ID > current.ID {
			latest[doc.DocumentType] = doc
		}
	}

	report := &models.CompletenessReport{TotalRequired: len(models.RequiredDocumentTypes)}
	for _, docType := range models.RequiredDocumentTypes {
		slot := models.DocumentSlot{
			Type: docType,
			Name: models.DocumentTypeNames[docType],
		}
		doc, ok := latest[docType]
		switch {
		case !ok || doc.Status == models.DocStatusRejected:
			slot.Bucket = models.BucketMissing
			report.MissingCount++
		case doc.Status == models.DocStatusVerified:
			slot.Bucket = models.BucketVerified
			report.VerifiedCount++
		default:
			slot.Bucket = models.BucketPending
			report.PendingCount++
		}
		if ok && doc.Status != models.DocStatusRejected {
			slot.DocumentID = &doc.ID
			slot.FileName = doc.FileName
			slot.UploadedAt = doc.UploadedAt
		}
		report.Slots = append(report.Slots, slot)
	}
	return report
}
