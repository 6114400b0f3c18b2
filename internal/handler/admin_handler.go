package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hiraya-scholars/hiraya-api/internal/models"
	"github.com/hiraya-scholars/hiraya-api/internal/service"
	appErrors "github.com/hiraya-scholars/hiraya-api/pkg/errors"
	"github.com/hiraya-scholars/hiraya-api/pkg/response"
)

// AdminHandler wires the staff review and management endpoints.
type AdminHandler struct {
	applications *service.ApplicationService
	documents    *service.DocumentService
	users        *service.UserService
	dashboard    *service.DashboardService
	exports      *service.ExportService
}

// NewAdminHandler creates a new handler.
func NewAdminHandler(apps *service.ApplicationService, docs *service.DocumentService, users *service.UserService, dashboard *service.DashboardService, exports *service.ExportService) *AdminHandler {
	return &AdminHandler{applications: apps, documents: docs, users: users, dashboard: dashboard, exports: exports}
}

// Dashboard godoc
// @Summary Staff dashboard
// @Description Returns review pipeline counters scoped to the actor's role
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/dashboard [get]
func (h *AdminHandler) Dashboard(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	stats, err := h.dashboard.Stats(c.Request.Context(), claims.Permissions())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, stats, nil)
}

// ListApplications godoc
// @Summary List applications
// @Description Returns the review listing with status and search filters
// @Tags Admin
// @Produce json
// @Param status query string false "Status filter"
// @Param search query string false "Name, email or reference search"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/applications [get]
func (h *AdminHandler) ListApplications(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.ApplicationFilter{
		Search:   c.Query("search"),
		Page:     intQuery(c, "page", 1),
		PageSize: intQuery(c, "page_size", 20),
	}
	if raw := c.Query("status"); raw != "" {
		status := models.ApplicationStatus(raw)
		if !models.KnownStatus(status) {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown status filter"))
			return
		}
		filter.Status = &status
	}

	summaries, total, err := h.applications.AdminList(c.Request.Context(), claims.Permissions(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, summaries, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// GetApplication godoc
// @Summary Get application
// @Description Returns the full application record for review
// @Tags Admin
// @Produce json
// @Param id path int true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /admin/applications/{id} [get]
func (h *AdminHandler) GetApplication(c *gin.Context) {
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

	app, err := h.applications.AdminGet(c.Request.Context(), claims.Permissions(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	report, err := h.documents.CompletenessReport(c.Request.Context(), claims.Permissions(), claims.UserID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	timeline, err := h.applications.Timeline(c.Request.Context(), claims.Permissions(), claims.UserID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"application":           app,
		"documents":             report,
		"timeline":              timeline,
		"completion_percentage": service.ProgressPercentage(app, report),
		"is_complete":           service.IsComplete(app),
	}, nil)
}

type statusUpdateRequest struct {
	Status models.ApplicationStatus `json:"status" binding:"required"`
	Note   string                   `json:"note"`
}

// UpdateStatus godoc
// @Summary Update application status
// @Description Moves a submitted application to a new review status
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path int true "Application ID"
// @Param payload body statusUpdateRequest true "New status"
// @Success 204 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/applications/{id}/status [put]
func (h *AdminHandler) UpdateStatus(c *gin.Context) {
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

	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}

	if err := h.applications.UpdateStatus(c.Request.Context(), claims.Permissions(), claims.UserID, id, req.Status, req.Note); err != nil {
		response.Error(c, err)
		return
	}

	h.dashboard.Invalidate(c.Request.Context())
	response.NoContent(c)
}

// DeleteApplication godoc
// @Summary Delete application
// @Description Removes an application with its documents and timeline
// @Tags Admin
// @Param id path int true "Application ID"
// @Success 204 {object} response.Envelope
// @Router /admin/applications/{id} [delete]
func (h *AdminHandler) DeleteApplication(c *gin.Context) {
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

	if err := h.applications.AdminDelete(c.Request.Context(), claims.Permissions(), id); err != nil {
		response.Error(c, err)
		return
	}

	h.dashboard.Invalidate(c.Request.Context())
	response.NoContent(c)
}

type commentRequest struct {
	Description string `json:"description" binding:"required"`
}

// AddComment godoc
// @Summary Comment on application
// @Description Appends a free-form note to the application timeline
// @Tags Admin
// @Accept json
// @Param id path int true "Application ID"
// @Param payload body commentRequest true "Comment"
// @Success 204 {object} response.Envelope
// @Router /admin/applications/{id}/timeline [post]
func (h *AdminHandler) AddComment(c *gin.Context) {
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

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid comment payload"))
		return
	}

	if err := h.applications.AddTimelineEntry(c.Request.Context(), claims.Permissions(), claims.UserID, id, req.Description); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

type verifyRequest struct {
	Accept bool   `json:"accept"`
	Reason string `json:"reason"`
}

// VerifyDocument godoc
// @Summary Verify or reject document
// @Description Records a verification decision on an uploaded document
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path int true "Document ID"
// @Param payload body verifyRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Router /admin/documents/{id}/verify [post]
func (h *AdminHandler) VerifyDocument(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid document id"))
		return
	}

	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid verification payload"))
		return
	}

	doc, err := h.documents.Verify(c.Request.Context(), claims.Permissions(), claims.UserID, id, req.Accept, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.dashboard.Invalidate(c.Request.Context())
	response.JSON(c, http.StatusOK, doc, nil)
}

// ListUsers godoc
// @Summary List user accounts
// @Description Returns user accounts with role, status and search filters
// @Tags Admin
// @Produce json
// @Param role query string false "Role filter"
// @Param status query string false "Status filter"
// @Param search query string false "Email or name search"
// @Success 200 {object} response.Envelope
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.UserFilter{
		Search:    c.Query("search"),
		Page:      intQuery(c, "page", 1),
		PageSize:  intQuery(c, "page_size", 20),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if raw := c.Query("role"); raw != "" {
		role := models.UserRole(raw)
		filter.Role = &role
	}
	if raw := c.Query("status"); raw != "" {
		status := models.UserStatus(raw)
		filter.Status = &status
	}

	users, total, err := h.users.List(c.Request.Context(), claims.Permissions(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, users, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

type userStatusRequest struct {
	Status models.UserStatus `json:"status" binding:"required"`
}

// UpdateUser godoc
// @Summary Update user account
// @Description Activates or deactivates a user account
// @Tags Admin
// @Accept json
// @Param id path int true "User ID"
// @Param payload body userStatusRequest true "New status"
// @Success 204 {object} response.Envelope
// @Router /admin/users/{id} [put]
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid user id"))
		return
	}

	var req userStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}

	if err := h.users.SetStatus(c.Request.Context(), claims.Permissions(), id, req.Status); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// ExportApplications godoc
// @Summary Export applications
// @Description Downloads the non-draft pipeline as CSV or PDF
// @Tags Admin
// @Produce octet-stream
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /admin/export/applications [get]
func (h *AdminHandler) ExportApplications(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var (
		payload     []byte
		filename    string
		contentType string
		err         error
	)
	switch c.DefaultQuery("format", "csv") {
	case "csv":
		payload, filename, err = h.exports.ApplicationsCSV(c.Request.Context(), claims.Permissions())
		contentType = "text/csv"
	case "pdf":
		payload, filename, err = h.exports.ApplicationsPDF(c.Request.Context(), claims.Permissions())
		contentType = "application/pdf"
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, payload)
}
