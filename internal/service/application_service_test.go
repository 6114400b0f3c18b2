package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiraya-scholars/hiraya-api/internal/models"
	"github.com/hiraya-scholars/hiraya-api/internal/repository"
	appErrors "github.com/hiraya-scholars/hiraya-api/pkg/errors"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type sequenceNumbers struct {
	values []int
	calls  int
}

func (s *sequenceNumbers) Intn(n int) int {
	v := s.values[s.calls%len(s.values)]
	s.calls++
	return v % n
}

type mockApplicationRepo struct {
	findByIDFn      func(ctx context.Context, id int64) (*models.Application, error)
	findDraftFn     func(ctx context.Context, userID int64) (*models.Application, error)
	findLatestFn    func(ctx context.Context, userID int64) (*models.Application, error)
	upsertDraftFn   func(ctx context.Context, app *models.Application) error
	submitFn        func(ctx context.Context, id, userID int64, refNumber string, submittedAt time.Time) error
	deleteDraftFn   func(ctx context.Context, id, userID int64) error
	deleteFn        func(ctx context.Context, id int64) error
	updateStatusFn  func(ctx context.Context, id, actorID int64, status models.ApplicationStatus, note string) (models.ApplicationStatus, error)
	insertTimelineF func(ctx context.Context, entry *models.TimelineEntry) error
	timelineFn      func(ctx context.Context, applicationID int64) ([]models.TimelineEntry, error)
	listFn          func(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationSummary, int, error)
}

func (m *mockApplicationRepo) FindByID(ctx context.Context, id int64) (*models.Application, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockApplicationRepo) FindDraftByUserID(ctx context.Context, userID int64) (*models.Application, error) {
	return m.findDraftFn(ctx, userID)
}

func (m *mockApplicationRepo) FindLatestByUserID(ctx context.Context, userID int64) (*models.Application, error) {
	return m.findLatestFn(ctx, userID)
}

func (m *mockApplicationRepo) UpsertDraft(ctx context.Context, app *models.Application) error {
	return m.upsertDraftFn(ctx, app)
}

func (m *mockApplicationRepo) Submit(ctx context.Context, id, userID int64, refNumber string, submittedAt time.Time) error {
	return m.submitFn(ctx, id, userID, refNumber, submittedAt)
}

func (m *mockApplicationRepo) DeleteDraft(ctx context.Context, id, userID int64) error {
	return m.deleteDraftFn(ctx, id, userID)
}

func (m *mockApplicationRepo) Delete(ctx context.Context, id int64) error {
	return m.deleteFn(ctx, id)
}

func (m *mockApplicationRepo) UpdateStatus(ctx context.Context, id, actorID int64, status models.ApplicationStatus, note string) (models.ApplicationStatus, error) {
	return m.updateStatusFn(ctx, id, actorID, status, note)
}

func (m *mockApplicationRepo) InsertTimeline(ctx context.Context, entry *models.TimelineEntry) error {
	return m.insertTimelineF(ctx, entry)
}

func (m *mockApplicationRepo) Timeline(ctx context.Context, applicationID int64) ([]models.TimelineEntry, error) {
	return m.timelineFn(ctx, applicationID)
}

func (m *mockApplicationRepo) List(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationSummary, int, error) {
	return m.listFn(ctx, filter)
}

type mockDocLister struct {
	listFn func(ctx context.Context, applicationID int64) ([]models.Document, error)
}

func (m *mockDocLister) ListByApplication(ctx context.Context, applicationID int64) ([]models.Document, error) {
	return m.listFn(ctx, applicationID)
}

func newApplicationService(repo *mockApplicationRepo, numbers NumberSource) *ApplicationService {
	clock := fixedClock{now: time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)}
	docs := &mockDocLister{listFn: func(ctx context.Context, applicationID int64) ([]models.Document, error) {
		return nil, nil
	}}
	return NewApplicationService(repo, docs, nil, nil, clock, numbers)
}

func TestSaveDraftRequiresCoreFields(t *testing.T) {
	svc := newApplicationService(&mockApplicationRepo{}, nil)

	_, err := svc.SaveDraft(context.Background(), 3, &models.Application{
		FirstName: "Juan",
		Email:     "juan@example.com",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestSaveDraftLowercasesEmailAndSetsOwner(t *testing.T) {
	var saved *models.Application
	repo := &mockApplicationRepo{
		upsertDraftFn: func(ctx context.Context, app *models.Application) error {
			app.ID = 12
			saved = app
			return nil
		},
	}
	svc := newApplicationService(repo, nil)

	app, err := svc.SaveDraft(context.Background(), 3, &models.Application{
		FirstName:    "Juan",
		LastName:     "Dela Cruz",
		Email:        "Juan@Example.COM",
		MobileNumber: "09171234567",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12), app.ID)
	assert.Equal(t, int64(3), saved.UserID)
	assert.Equal(t, "juan@example.com", saved.Email)
}

func TestSubmitGeneratesReferenceNumber(t *testing.T) {
	var gotRef string
	repo := &mockApplicationRepo{
		submitFn: func(ctx context.Context, id, userID int64, refNumber string, submittedAt time.Time) error {
			gotRef = refNumber
			return nil
		},
		findByIDFn: func(ctx context.Context, id int64) (*models.Application, error) {
			return &models.Application{ID: id, UserID: 3, Status: models.AppStatusSubmitted}, nil
		},
	}
	svc := newApplicationService(repo, &sequenceNumbers{values: []int{42}})

	app, err := svc.Submit(context.Background(), 12, 3)
	require.NoError(t, err)
	assert.Equal(t, "HF-2026-00042", gotRef)
	assert.Equal(t, models.AppStatusSubmitted, app.Status)
}

func TestSubmitRetriesOnReferenceCollision(t *testing.T) {
	attempts := 0
	repo := &mockApplicationRepo{
		submitFn: func(ctx context.Context, id, userID int64, refNumber string, submittedAt time.Time) error {
			attempts++
			if attempts == 1 {
				return &pq.Error{Code: "23505"}
			}
			return nil
		},
		findByIDFn: func(ctx context.Context, id int64) (*models.Application, error) {
			return &models.Application{ID: id, UserID: 3, Status: models.AppStatusSubmitted}, nil
		},
	}
	svc := newApplicationService(repo, &sequenceNumbers{values: []int{7, 8}})

	_, err := svc.Submit(context.Background(), 12, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestSubmitNonDraftIsConflict(t *testing.T) {
	repo := &mockApplicationRepo{
		submitFn: func(ctx context.Context, id, userID int64, refNumber string, submittedAt time.Time) error {
			return sql.ErrNoRows
		},
	}
	svc := newApplicationService(repo, nil)

	_, err := svc.Submit(context.Background(), 12, 3)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestSubmitGivesUpAfterRepeatedCollisions(t *testing.T) {
	attempts := 0
	repo := &mockApplicationRepo{
		submitFn: func(ctx context.Context, id, userID int64, refNumber string, submittedAt time.Time) error {
			attempts++
			return &pq.Error{Code: "23505"}
		},
	}
	svc := newApplicationService(repo, nil)

	_, err := svc.Submit(context.Background(), 12, 3)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrStorage))
	assert.Equal(t, referenceAttempts, attempts)
}

func TestGetOwnRejectsOtherOwners(t *testing.T) {
	repo := &mockApplicationRepo{
		findByIDFn: func(ctx context.Context, id int64) (*models.Application, error) {
			return &models.Application{ID: id, UserID: 99}, nil
		},
	}
	svc := newApplicationService(repo, nil)

	_, err := svc.GetOwn(context.Background(), 12, 3)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrPermissionDenied))
}

func TestGetDraftDistinguishesMissingFromStorageFailure(t *testing.T) {
	repo := &mockApplicationRepo{
		findDraftFn: func(ctx context.Context, userID int64) (*models.Application, error) {
			return nil, sql.ErrNoRows
		},
	}
	svc := newApplicationService(repo, nil)
	_, err := svc.GetDraft(context.Background(), 3)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	repo.findDraftFn = func(ctx context.Context, userID int64) (*models.Application, error) {
		return nil, sql.ErrConnDone
	}
	_, err = svc.GetDraft(context.Background(), 3)
	assert.True(t, appErrors.Is(err, appErrors.ErrStorage))
}

func TestUpdateStatusGateRunsBeforeAnyWrite(t *testing.T) {
	called := false
	repo := &mockApplicationRepo{
		updateStatusFn: func(ctx context.Context, id, actorID int64, status models.ApplicationStatus, note string) (models.ApplicationStatus, error) {
			called = true
			return models.AppStatusSubmitted, nil
		},
	}
	svc := newApplicationService(repo, nil)

	err := svc.UpdateStatus(context.Background(), models.PermissionsFor("Unknown Role"), 5, 12, models.AppStatusUnderReview, "")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrPermissionDenied))
	assert.False(t, called)
}

func TestUpdateStatusRejectsDraftTarget(t *testing.T) {
	svc := newApplicationService(&mockApplicationRepo{}, nil)

	err := svc.UpdateStatus(context.Background(), models.PermissionsFor(models.RoleLabelReviewer), 5, 12, models.AppStatusDraft, "")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestUpdateStatusReviewerAllowed(t *testing.T) {
	repo := &mockApplicationRepo{
		updateStatusFn: func(ctx context.Context, id, actorID int64, status models.ApplicationStatus, note string) (models.ApplicationStatus, error) {
			return models.AppStatusSubmitted, nil
		},
	}
	svc := newApplicationService(repo, nil)

	err := svc.UpdateStatus(context.Background(), models.PermissionsFor(models.RoleLabelReviewer), 5, 12, models.AppStatusUnderReview, "initial screen passed")
	assert.NoError(t, err)
}

func TestUpdateStatusMissingApplicationIsNotFound(t *testing.T) {
	repo := &mockApplicationRepo{
		updateStatusFn: func(ctx context.Context, id, actorID int64, status models.ApplicationStatus, note string) (models.ApplicationStatus, error) {
			return "", sql.ErrNoRows
		},
	}
	svc := newApplicationService(repo, nil)

	err := svc.UpdateStatus(context.Background(), models.PermissionsFor(models.RoleLabelReviewer), 5, 404, models.AppStatusUnderReview, "")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestUpdateStatusDraftRowIsConflict(t *testing.T) {
	repo := &mockApplicationRepo{
		updateStatusFn: func(ctx context.Context, id, actorID int64, status models.ApplicationStatus, note string) (models.ApplicationStatus, error) {
			return models.AppStatusDraft, repository.ErrDraftApplication
		},
	}
	svc := newApplicationService(repo, nil)

	err := svc.UpdateStatus(context.Background(), models.PermissionsFor(models.RoleLabelReviewer), 5, 12, models.AppStatusUnderReview, "")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestAdminDeleteRequiresManagePermission(t *testing.T) {
	svc := newApplicationService(&mockApplicationRepo{}, nil)

	err := svc.AdminDelete(context.Background(), models.PermissionsFor(models.RoleLabelReviewer), 12)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrPermissionDenied))
}

func TestTimelineApplicantLimitedToOwnApplication(t *testing.T) {
	repo := &mockApplicationRepo{
		findByIDFn: func(ctx context.Context, id int64) (*models.Application, error) {
			return &models.Application{ID: id, UserID: 99}, nil
		},
	}
	svc := newApplicationService(repo, nil)

	_, err := svc.Timeline(context.Background(), models.PermissionSet{}, 3, 12)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrPermissionDenied))
}

func TestAddTimelineEntryRequiresDescription(t *testing.T) {
	svc := newApplicationService(&mockApplicationRepo{}, nil)

	err := svc.AddTimelineEntry(context.Background(), models.PermissionsFor(models.RoleLabelReviewer), 5, 12, "   ")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
