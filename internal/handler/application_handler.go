package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hiraya-scholars/hiraya-api/internal/models"
	"github.com/hiraya-scholars/hiraya-api/internal/service"
	appErrors "github.com/hiraya-scholars/hiraya-api/pkg/errors"
	"github.com/hiraya-scholars/hiraya-api/pkg/response"
)

// ApplicationHandler wires the applicant-facing application endpoints.
type ApplicationHandler struct {
	service *service.ApplicationService
	metrics *service.MetricsService
}

// NewApplicationHandler creates a new handler.
func NewApplicationHandler(svc *service.ApplicationService, metrics *service.MetricsService) *ApplicationHandler {
	return &ApplicationHandler{service: svc, metrics: metrics}
}

// GetDraft godoc
// @Summary Get draft application
// @Description Returns the caller's in-progress draft
// @Tags Applications
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /applications/draft [get]
func (h *ApplicationHandler) GetDraft(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	draft, err := h.service.GetDraft(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, draft, nil)
}

// SaveDraft godoc
// @Summary Save draft application
// @Description Creates or fully overwrites the caller's single draft
// @Tags Applications
// @Accept json
// @Produce json
// @Param payload body models.Application true "Draft fields"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /applications/draft [post]
func (h *ApplicationHandler) SaveDraft(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var app models.Application
	if err := c.ShouldBindJSON(&app); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid draft payload"))
		return
	}

	saved, err := h.service.SaveDraft(c.Request.Context(), claims.UserID, &app)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, saved, nil)
}

// Submit godoc
// @Summary Submit application
// @Description Finalizes the caller's draft and assigns a reference number
// @Tags Applications
// @Produce json
// @Param id path int true "Application ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /applications/{id}/submit [post]
func (h *ApplicationHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid application id"))
		return
	}

	app, err := h.service.Submit(c.Request.Context(), id, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.metrics.RecordSubmission()
	response.JSON(c, http.StatusOK, app, nil)
}

// Get godoc
// @Summary Get own application
// @Description Returns one of the caller's applications by id
// @Tags Applications
// @Produce json
// @Param id path int true "Application ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /applications/{id} [get]
func (h *ApplicationHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid application id"))
		return
	}

	app, err := h.service.GetOwn(c.Request.Context(), id, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, app, nil)
}

// DeleteDraft godoc
// @Summary Delete draft application
// @Description Deletes the caller's draft; submitted applications are immutable here
// @Tags Applications
// @Param id path int true "Application ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /applications/{id} [delete]
func (h *ApplicationHandler) DeleteDraft(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid application id"))
		return
	}

	if err := h.service.DeleteDraft(c.Request.Context(), id, claims.UserID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Progress godoc
// @Summary Application progress
// @Description Returns the completion percentage and document report
// @Tags Applications
// @Produce json
// @Param id path int true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /applications/{id}/progress [get]
func (h *ApplicationHandler) Progress(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid application id"))
		return
	}

	app, err := h.service.GetOwn(c.Request.Context(), id, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	report, percentage, err := h.service.Progress(c.Request.Context(), app)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"completion_percentage": percentage,
		"is_complete":           service.IsComplete(app),
		"documents":             report,
	}, nil)
}

// Timeline godoc
// @Summary Application timeline
// @Description Returns the audit trail for an application, newest first
// @Tags Applications
// @Produce json
// @Param id path int true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /applications/{id}/timeline [get]
func (h *ApplicationHandler) Timeline(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid application id"))
		return
	}

	entries, err := h.service.Timeline(c.Request.Context(), claims.Permissions(), claims.UserID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, entries, nil)
}
