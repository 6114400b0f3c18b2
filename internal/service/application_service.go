package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hiraya-scholars/hiraya-api/internal/models"
	"github.com/hiraya-scholars/hiraya-api/internal/repository"
	appErrors "github.com/hiraya-scholars/hiraya-api/pkg/errors"
)

// referenceAttempts bounds the retry loop when a generated reference number
// collides with an existing one.
const referenceAttempts = 5

type applicationRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Application, error)
	FindDraftByUserID(ctx context.Context, userID int64) (*models.Application, error)
	FindLatestByUserID(ctx context.Context, userID int64) (*models.Application, error)
	UpsertDraft(ctx context.Context, app *models.Application) error
	Submit(ctx context.Context, id, userID int64, refNumber string, submittedAt time.Time) error
	DeleteDraft(ctx context.Context, id, userID int64) error
	Delete(ctx context.Context, id int64) error
	UpdateStatus(ctx context.Context, id, actorID int64, status models.ApplicationStatus, note string) (models.ApplicationStatus, error)
	InsertTimeline(ctx context.Context, entry *models.TimelineEntry) error
	Timeline(ctx context.Context, applicationID int64) ([]models.TimelineEntry, error)
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationSummary, int, error)
}

type applicationDocumentLister interface {
	ListByApplication(ctx context.Context, applicationID int64) ([]models.Document, error)
}

// ApplicationService provides draft, submission and review use cases.
type ApplicationService struct {
	apps      applicationRepository
	docs      applicationDocumentLister
	validator *validator.Validate
	logger    *zap.Logger
	clock     Clock
	numbers   NumberSource
}

// NewApplicationService constructs an ApplicationService instance.
func NewApplicationService(apps applicationRepository, docs applicationDocumentLister, validate *validator.Validate, logger *zap.Logger, clock Clock, numbers NumberSource) *ApplicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if clock == nil {
		clock = SystemClock()
	}
	if numbers == nil {
		numbers = SystemNumberSource()
	}
	return &ApplicationService{apps: apps, docs: docs, validator: validate, logger: logger, clock: clock, numbers: numbers}
}

// GetDraft returns the caller's in-progress draft.
func (s *ApplicationService) GetDraft(ctx context.Context, userID int64) (*models.Application, error) {
	draft, err := s.apps.FindDraftByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no draft application")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load draft")
	}
	return draft, nil
}

// GetOwn returns an application by id, restricted to its owner.
func (s *ApplicationService) GetOwn(ctx context.Context, id, userID int64) (*models.Application, error) {
	app, err := s.apps.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load application")
	}
	if app.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrPermissionDenied, "application belongs to another applicant")
	}
	return app, nil
}

// GetLatest returns the caller's most recent application in any status.
func (s *ApplicationService) GetLatest(ctx context.Context, userID int64) (*models.Application, error) {
	app, err := s.apps.FindLatestByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no application found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load application")
	}
	return app, nil
}

// SaveDraft creates or overwrites the caller's single draft. The first and
// last name, email and mobile number are the minimum a draft must carry.
func (s *ApplicationService) SaveDraft(ctx context.Context, userID int64, app *models.Application) (*models.Application, error) {
	var missing []string
	for field, value := range map[string]string{
		"first_name":    app.FirstName,
		"last_name":     app.LastName,
		"email":         app.Email,
		"mobile_number": app.MobileNumber,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "missing required fields: "+strings.Join(missing, ", "))
	}

	app.UserID = userID
	app.Email = strings.ToLower(strings.TrimSpace(app.Email))
	if err := s.apps.UpsertDraft(ctx, app); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to save draft")
	}
	return app, nil
}

// Submit finalizes the caller's draft: assigns a reference number, flips the
// status and records the timeline entry. A reference collision regenerates
// and retries; a non-draft target is a conflict, never a double submission.
func (s *ApplicationService) Submit(ctx context.Context, id, userID int64) (*models.Application, error) {
	now := s.clock.Now()
	var lastErr error
	for attempt := 0; attempt < referenceAttempts; attempt++ {
		ref := s.generateReferenceNumber(now)
		err := s.apps.Submit(ctx, id, userID, ref, now)
		if err == nil {
			s.logger.Info("application submitted",
				zap.Int64("application_id", id),
				zap.String("reference_number", ref))
			return s.GetOwn(ctx, id, userID)
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "application is not an open draft")
		}
		if repository.IsUniqueViolation(err) {
			lastErr = err
			continue
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to submit application")
	}
	return nil, appErrors.Wrap(lastErr, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to assign a unique reference number")
}

// DeleteDraft removes the caller's draft. Submitted applications cannot be
// deleted through this path.
func (s *ApplicationService) DeleteDraft(ctx context.Context, id, userID int64) error {
	if err := s.apps.DeleteDraft(ctx, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "no matching draft to delete")
		}
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to delete draft")
	}
	return nil
}

// Progress derives the completion report and percentage for an application.
func (s *ApplicationService) Progress(ctx context.Context, app *models.Application) (*models.CompletenessReport, int, error) {
	docs, err := s.docs.ListByApplication(ctx, app.ID)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load documents")
	}
	report := BuildCompletenessReport(docs)
	return report, ProgressPercentage(app, report), nil
}

// AdminGet returns any application by id for reviewing staff.
func (s *ApplicationService) AdminGet(ctx context.Context, actor models.PermissionSet, id int64) (*models.Application, error) {
	if !actor.CanReviewApplications {
		return nil, appErrors.Clone(appErrors.ErrPermissionDenied, "not allowed to review applications")
	}
	app, err := s.apps.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load application")
	}
	return app, nil
}

// AdminList returns the review listing for staff.
func (s *ApplicationService) AdminList(ctx context.Context, actor models.PermissionSet, filter models.ApplicationFilter) ([]models.ApplicationSummary, int, error) {
	if !actor.CanReviewApplications {
		return nil, 0, appErrors.Clone(appErrors.ErrPermissionDenied, "not allowed to review applications")
	}
	summaries, total, err := s.apps.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list applications")
	}
	return summaries, total, nil
}

// AdminDelete removes an application in any status together with its
// documents and timeline. Administrator only.
func (s *ApplicationService) AdminDelete(ctx context.Context, actor models.PermissionSet, id int64) error {
	if !actor.CanManageUsers {
		return appErrors.Clone(appErrors.ErrPermissionDenied, "not allowed to delete applications")
	}
	if err := s.apps.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to delete application")
	}
	return nil
}

// UpdateStatus moves a submitted application to a new review status and
// appends the audit entry atomically. The gate check runs before any write.
func (s *ApplicationService) UpdateStatus(ctx context.Context, actor models.PermissionSet, actorID, id int64, status models.ApplicationStatus, note string) error {
	if !actor.CanChangeApplicationStatus {
		return appErrors.Clone(appErrors.ErrPermissionDenied, "not allowed to change application status")
	}
	if !models.KnownStatus(status) || status == models.AppStatusDraft {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid status %q", status))
	}
	if _, err := s.apps.UpdateStatus(ctx, id, actorID, status, note); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		if errors.Is(err, repository.ErrDraftApplication) {
			return appErrors.Clone(appErrors.ErrConflict, "application is not reviewable")
		}
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to update status")
	}
	return nil
}

// Timeline returns the audit trail for an application, newest first. Staff
// see any application; applicants only their own.
func (s *ApplicationService) Timeline(ctx context.Context, actor models.PermissionSet, actorID, id int64) ([]models.TimelineEntry, error) {
	if !actor.CanReviewApplications {
		app, err := s.apps.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load application")
		}
		if app.UserID != actorID {
			return nil, appErrors.Clone(appErrors.ErrPermissionDenied, "application belongs to another applicant")
		}
	}
	entries, err := s.apps.Timeline(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load timeline")
	}
	return entries, nil
}

// AddTimelineEntry appends a free-form staff comment to the audit trail.
func (s *ApplicationService) AddTimelineEntry(ctx context.Context, actor models.PermissionSet, actorID, id int64, description string) error {
	if !actor.CanReviewApplications {
		return appErrors.Clone(appErrors.ErrPermissionDenied, "not allowed to comment on applications")
	}
	if strings.TrimSpace(description) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "comment description is required")
	}
	entry := &models.TimelineEntry{
		ApplicationID: id,
		UserID:        actorID,
		Action:        models.TimelineActionComment,
		Description:   description,
		CreatedAt:     s.clock.Now(),
	}
	if err := s.apps.InsertTimeline(ctx, entry); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to append timeline entry")
	}
	return nil
}

// generateReferenceNumber builds "HF-<year>-<5 digits>".
func (s *ApplicationService) generateReferenceNumber(now time.Time) string {
	return fmt.Sprintf("HF-%d-%05d", now.Year(), s.numbers.Intn(100000))
}
