package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eduvault/eduvault-api/internal/dto"
	"github.com/eduvault/eduvault-api/internal/models"
	appErrors "github.com/eduvault/eduvault-api/pkg/errors"
	"github.com/eduvault/eduvault-api/pkg/response"
)

type reviewService interface {
	Approve(ctx context.Context, kind models.Kind, id, approverID string) (*models.Submission, error)
	Reject(ctx context.Context, kind models.Kind, id, rejectorID, reason string) (*models.Submission, error)
}

// ReviewHandler manages approve/reject decisions.
type ReviewHandler struct {
	reviews reviewService
}

// NewReviewHandler constructs the handler.
func NewReviewHandler(reviews reviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// Approve godoc
// @Summary Approve a pending submission
// @Tags Reviews
// @Produce json
// @Param kind path string true "Document kind"
// @Param id path string true "Submission id"
// @Success 200 {object} response.Envelope
// @Router /reviews/{kind}/{id}/approve [post]
func (h *ReviewHandler) Approve(c *gin.Context) {
	kind, ok := kindFromParam(c)
	if !ok {
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	sub, err := h.reviews.Approve(c.Request.Context(), kind, c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sub, nil)
}

// Reject godoc
// @Summary Reject a pending submission with a reason
// @Tags Reviews
// @Accept json
// @Produce json
// @Param kind path string true "Document kind"
// @Param id path string true "Submission id"
// @Param payload body dto.RejectDocumentRequest true "Rejection reason"
// @Success 200 {object} response.Envelope
// @Router /reviews/{kind}/{id}/reject [post]
func (h *ReviewHandler) Reject(c *gin.Context) {
	kind, ok := kindFromParam(c)
	if !ok {
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.RejectDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "rejection reason is required"))
		return
	}
	sub, err := h.reviews.Reject(c.Request.Context(), kind, c.Param("id"), claims.UserID, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sub, nil)
}
