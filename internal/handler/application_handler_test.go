package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/hiraya-scholars/hiraya-api/internal/middleware"
	"github.com/hiraya-scholars/hiraya-api/internal/models"
	"github.com/hiraya-scholars/hiraya-api/internal/service"
)

type fakeApplicationRepo struct {
	findByID     func(ctx context.Context, id int64) (*models.Application, error)
	findDraft    func(ctx context.Context, userID int64) (*models.Application, error)
	upsertDraft  func(ctx context.Context, app *models.Application) error
	submit       func(ctx context.Context, id, userID int64, ref string, at time.Time) error
	deleteDraft  func(ctx context.Context, id, userID int64) error
	updateStatus func(ctx context.Context, id, actorID int64, status models.ApplicationStatus, note string) (models.ApplicationStatus, error)
	list         func(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationSummary, int, error)
}

func (f *fakeApplicationRepo) FindByID(ctx context.Context, id int64) (*models.Application, error) {
	if f.findByID == nil {
		return nil, sql.ErrNoRows
	}
	return f.findByID(ctx, id)
}

func (f *fakeApplicationRepo) FindDraftByUserID(ctx context.Context, userID int64) (*models.Application, error) {
	if f.findDraft == nil {
		return nil, sql.ErrNoRows
	}
	return f.findDraft(ctx, userID)
}

func (f *fakeApplicationRepo) FindLatestByUserID(context.Context, int64) (*models.Application, error) {
	return nil, sql.ErrNoRows
}

func (f *fakeApplicationRepo) UpsertDraft(ctx context.Context, app *models.Application) error {
	if f.upsertDraft == nil {
		return nil
	}
	return f.upsertDraft(ctx, app)
}

func (f *fakeApplicationRepo) Submit(ctx context.Context, id, userID int64, ref string, at time.Time) error {
	if f.submit == nil {
		return nil
	}
	return f.submit(ctx, id, userID, ref, at)
}

func (f *fakeApplicationRepo) DeleteDraft(ctx context.Context, id, userID int64) error {
	if f.deleteDraft == nil {
		return nil
	}
	return f.deleteDraft(ctx, id, userID)
}

func (f *fakeApplicationRepo) Delete(context.Context, int64) error { return nil }

func (f *fakeApplicationRepo) UpdateStatus(ctx context.Context, id, actorID int64, status models.ApplicationStatus, note string) (models.ApplicationStatus, error) {
	if f.updateStatus == nil {
		return models.AppStatusSubmitted, nil
	}
	return f.updateStatus(ctx, id, actorID, status, note)
}

func (f *fakeApplicationRepo) InsertTimeline(context.Context, *models.TimelineEntry) error { return nil }

func (f *fakeApplicationRepo) Timeline(context.Context, int64) ([]models.TimelineEntry, error) {
	return nil, nil
}

func (f *fakeApplicationRepo) List(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationSummary, int, error) {
	if f.list == nil {
		return nil, 0, nil
	}
	return f.list(ctx, filter)
}

type fakeDocumentLister struct {
	docs []models.Document
}

func (f *fakeDocumentLister) ListByApplication(context.Context, int64) ([]models.Document, error) {
	return f.docs, nil
}

func newApplicationHandler(repo *fakeApplicationRepo) *ApplicationHandler {
	svc := service.NewApplicationService(repo, &fakeDocumentLister{}, nil, nil, nil, nil)
	return NewApplicationHandler(svc, nil)
}

func applicantContext(t *testing.T, method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	if body != nil {
		c.Request = httptest.NewRequest(method, target, bytes.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
	} else {
		c.Request = httptest.NewRequest(method, target, nil)
	}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: 7, Role: models.RoleApplicant})
	return c, rec
}

func TestGetDraftRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newApplicationHandler(&fakeApplicationRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/applications/draft", nil)

	handler.GetDraft(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetDraftNotFound(t *testing.T) {
	handler := newApplicationHandler(&fakeApplicationRepo{})

	c, rec := applicantContext(t, http.MethodGet, "/applications/draft", nil)
	handler.GetDraft(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSaveDraftRejectsMissingFields(t *testing.T) {
	handler := newApplicationHandler(&fakeApplicationRepo{})

	body, _ := json.Marshal(map[string]string{"first_name": "Juan"})
	c, rec := applicantContext(t, http.MethodPost, "/applications/draft", body)
	handler.SaveDraft(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSaveDraftAssignsOwner(t *testing.T) {
	var saved *models.Application
	repo := &fakeApplicationRepo{
		upsertDraft: func(_ context.Context, app *models.Application) error {
			app.ID = 11
			saved = app
			return nil
		},
	}
	handler := newApplicationHandler(repo)

	body, _ := json.Marshal(map[string]string{
		"first_name":    "Juan",
		"last_name":     "Dela Cruz",
		"email":         "Juan@Example.COM",
		"mobile_number": "09170000000",
	})
	c, rec := applicantContext(t, http.MethodPost, "/applications/draft", body)
	handler.SaveDraft(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	if assert.NotNil(t, saved) {
		assert.Equal(t, int64(7), saved.UserID)
		assert.Equal(t, "juan@example.com", saved.Email)
	}
}

func TestSubmitReturnsReferenceNumber(t *testing.T) {
	var assignedRef string
	repo := &fakeApplicationRepo{
		submit: func(_ context.Context, _, _ int64, ref string, _ time.Time) error {
			assignedRef = ref
			return nil
		},
	}
	repo.findByID = func(_ context.Context, id int64) (*models.Application, error) {
		return &models.Application{
			ID:              id,
			UserID:          7,
			Status:          models.AppStatusSubmitted,
			ReferenceNumber: &assignedRef,
		}, nil
	}
	handler := newApplicationHandler(repo)

	c, rec := applicantContext(t, http.MethodPost, "/applications/3/submit", nil)
	c.Params = gin.Params{{Key: "id", Value: "3"}}
	handler.Submit(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Regexp(t, `^HF-\d{4}-\d{5}$`, assignedRef)
	assert.Contains(t, rec.Body.String(), assignedRef)
}

func TestSubmitNonDraftConflict(t *testing.T) {
	repo := &fakeApplicationRepo{
		submit: func(context.Context, int64, int64, string, time.Time) error {
			return sql.ErrNoRows
		},
	}
	handler := newApplicationHandler(repo)

	c, rec := applicantContext(t, http.MethodPost, "/applications/3/submit", nil)
	c.Params = gin.Params{{Key: "id", Value: "3"}}
	handler.Submit(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetRejectsForeignApplication(t *testing.T) {
	repo := &fakeApplicationRepo{
		findByID: func(_ context.Context, id int64) (*models.Application, error) {
			return &models.Application{ID: id, UserID: 99}, nil
		},
	}
	handler := newApplicationHandler(repo)

	c, rec := applicantContext(t, http.MethodGet, "/applications/3", nil)
	c.Params = gin.Params{{Key: "id", Value: "3"}}
	handler.Get(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteDraftNoContent(t *testing.T) {
	handler := newApplicationHandler(&fakeApplicationRepo{
		deleteDraft: func(context.Context, int64, int64) error { return nil },
	})

	c, rec := applicantContext(t, http.MethodDelete, "/applications/3", nil)
	c.Params = gin.Params{{Key: "id", Value: "3"}}
	handler.DeleteDraft(c)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSubmitInvalidID(t *testing.T) {
	handler := newApplicationHandler(&fakeApplicationRepo{})

	c, rec := applicantContext(t, http.MethodPost, "/applications/abc/submit", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	handler.Submit(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
