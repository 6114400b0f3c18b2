package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hiraya-scholars/hiraya-api/internal/models"
	"github.com/hiraya-scholars/hiraya-api/internal/service"
	appErrors "github.com/hiraya-scholars/hiraya-api/pkg/errors"
	"github.com/hiraya-scholars/hiraya-api/pkg/response"
)

// DocumentHandler wires the document upload and download endpoints.
type DocumentHandler struct {
	service *service.DocumentService
	metrics *service.MetricsService
}

// NewDocumentHandler creates a new handler.
func NewDocumentHandler(svc *service.DocumentService, metrics *service.MetricsService) *DocumentHandler {
	return &DocumentHandler{service: svc, metrics: metrics}
}

// Upload godoc
// @Summary Upload document
// @Description Stores one supporting document file for an application
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Application ID"
// @Param document_type formData string true "Document type"
// @Param file formData file true "Document file"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /applications/{id}/documents [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
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

	docType := models.DocumentType(c.PostForm("document_type"))
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "failed to read upload"))
		return
	}
	defer file.Close() //nolint:errcheck

	doc, err := h.service.Save(c.Request.Context(), claims.UserID, id, service.Upload{
		DocumentType: docType,
		FileName:     fileHeader.Filename,
		Size:         fileHeader.Size,
		MimeType:     fileHeader.Header.Get("Content-Type"),
		Body:         file,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	h.metrics.RecordUpload(string(docType))
	response.Created(c, doc)
}

// List godoc
// @Summary List documents
// @Description Returns the document rows for an application
// @Tags Documents
// @Produce json
// @Param id path int true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /applications/{id}/documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
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

	docs, err := h.service.ListByApplication(c.Request.Context(), claims.Permissions(), claims.UserID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	report, err := h.service.CompletenessReport(c.Request.Context(), claims.Permissions(), claims.UserID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"documents": docs, "report": report}, nil)
}

// Download godoc
// @Summary Download document
// @Description Streams the stored file for a document
// @Tags Documents
// @Produce octet-stream
// @Param id path int true "Document ID"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /documents/{id}/download [get]
func (h *DocumentHandler) Download(c *gin.Context) {
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

	doc, file, err := h.service.Open(c.Request.Context(), claims.Permissions(), claims.UserID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	c.Header("Content-Disposition", `attachment; filename="`+doc.FileName+`"`)
	c.Header("Content-Type", doc.MimeType)
	if _, err := io.Copy(c.Writer, file); err != nil {
		_ = c.Error(err)
	}
}
