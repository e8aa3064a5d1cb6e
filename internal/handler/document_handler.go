package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eduvault/eduvault-api/internal/dto"
	"github.com/eduvault/eduvault-api/internal/models"
	"github.com/eduvault/eduvault-api/internal/service"
	appErrors "github.com/eduvault/eduvault-api/pkg/errors"
	"github.com/eduvault/eduvault-api/pkg/response"
)

type documentService interface {
	Submit(ctx context.Context, req service.SubmitRequest) (*models.Submission, error)
	List(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, error)
	Latest(ctx context.Context, kind models.Kind, ownerID string) (*models.Submission, error)
}

type artifactOpener interface {
	Open(filename string) (*os.File, error)
}

type kindArchiver interface {
	BuildKindArchive(ctx context.Context, kind models.Kind) ([]byte, error)
}

// DocumentHandler manages upload, listing and per-kind export endpoints.
type DocumentHandler struct {
	documents documentService
	artifacts artifactOpener
	bundles   kindArchiver
}

// NewDocumentHandler constructs the handler.
func NewDocumentHandler(documents documentService, artifacts artifactOpener, bundles kindArchiver) *DocumentHandler {
	return &DocumentHandler{documents: documents, artifacts: artifacts, bundles: bundles}
}

func kindFromParam(c *gin.Context) (models.Kind, bool) {
	kind, err := models.ParseKind(c.Param("kind"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return "", false
	}
	return kind, true
}

// Submit godoc
// @Summary Upload a document for review
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param kind path string true "Document kind"
// @Param level formData string true "Student level"
// @Param text formData string true "Document text content"
// @Param file formData file true "Document PDF"
// @Success 201 {object} response.Envelope
// @Router /documents/{kind} [post]
func (h *DocumentHandler) Submit(c *gin.Context) {
	kind, ok := kindFromParam(c)
	if !ok {
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.SubmitDocumentRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid upload payload"))
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close()
	artifact, err := io.ReadAll(src)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to buffer file"))
		return
	}

	sub, err := h.documents.Submit(c.Request.Context(), service.SubmitRequest{
		Kind:     kind,
		OwnerID:  claims.UserID,
		Level:    models.Level(req.Level),
		Text:     req.Text,
		FileName: fileHeader.Filename,
		Artifact: artifact,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sub)
}

// List godoc
// @Summary List submissions of a kind
// @Tags Documents
// @Produce json
// @Param kind path string true "Document kind"
// @Param level query string false "Level filter"
// @Param status query string false "Status filter"
// @Success 200 {object} response.Envelope
// @Router /documents/{kind} [get]
func (h *DocumentHandler) List(c *gin.Context) {
	kind, ok := kindFromParam(c)
	if !ok {
		return
	}
	filter, ok := h.listFilter(c, kind, "")
	if !ok {
		return
	}
	subs, err := h.documents.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subs, nil)
}

// Mine godoc
// @Summary List the caller's submissions of a kind
// @Tags Documents
// @Produce json
// @Param kind path string true "Document kind"
// @Param level query string false "Level filter"
// @Success 200 {object} response.Envelope
// @Router /documents/{kind}/mine [get]
func (h *DocumentHandler) Mine(c *gin.Context) {
	kind, ok := kindFromParam(c)
	if !ok {
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	filter, ok := h.listFilter(c, kind, claims.UserID)
	if !ok {
		return
	}
	subs, err := h.documents.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subs, nil)
}

func (h *DocumentHandler) listFilter(c *gin.Context, kind models.Kind, ownerID string) (models.SubmissionFilter, bool) {
	filter := models.SubmissionFilter{Kind: kind, OwnerID: ownerID}
	if raw := c.Query("level"); raw != "" {
		level, err := models.ParseLevel(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
			return filter, false
		}
		filter.Level = level
	}
	if raw := c.Query("status"); raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
			return filter, false
		}
		filter.Status = status
	}
	return filter, true
}

// DownloadLatest godoc
// @Summary Download the caller's most recent submission artifact
// @Tags Documents
// @Produce application/pdf
// @Param kind path string true "Document kind"
// @Success 200 {file} binary
// @Router /documents/{kind}/mine/latest/download [get]
func (h *DocumentHandler) DownloadLatest(c *gin.Context) {
	kind, ok := kindFromParam(c)
	if !ok {
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	sub, err := h.documents.Latest(c.Request.Context(), kind, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.artifacts.Open(sub.ArtifactRef)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "open artifact"))
		return
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "stat artifact"))
		return
	}
	headers := map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", sub.FileName),
	}
	c.DataFromReader(http.StatusOK, info.Size(), "application/pdf", file, headers)
}

// Export godoc
// @Summary Download a ZIP of all approved artifacts of a kind
// @Tags Documents
// @Produce application/zip
// @Param kind path string true "Document kind"
// @Success 200 {file} binary
// @Router /documents/{kind}/export [get]
func (h *DocumentHandler) Export(c *gin.Context) {
	kind, ok := kindFromParam(c)
	if !ok {
		return
	}
	payload, err := h.bundles.BuildKindArchive(c.Request.Context(), kind)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("%s-approved-%s.zip", kind, time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/zip", payload)
}
