package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eduvault/eduvault-api/internal/models"
	"github.com/eduvault/eduvault-api/internal/service"
	"github.com/eduvault/eduvault-api/pkg/response"
)

type analyticsProvider interface {
	ApprovedByCategory(ctx context.Context) ([]models.CategoryGroup, error)
	ApprovedCount(ctx context.Context) (models.CountResult, error)
	ApprovedThisWeek(ctx context.Context) (models.CountResult, error)
	UploadsThisMonth(ctx context.Context) (models.CountResult, error)
	NewStudentsThisMonth(ctx context.Context) (models.CountResult, error)
	Students(ctx context.Context) ([]models.User, error)
	ApproverLeaderboard(ctx context.Context) ([]models.ApproverActivity, error)
	StaffActivityThisMonth(ctx context.Context) ([]models.ApproverActivity, error)
}

type crossArchiver interface {
	BuildCrossKindArchive(ctx context.Context) ([]byte, error)
}

type reportProvider interface {
	ApprovedReceipts(ctx context.Context, format service.ReportFormat) (*service.ReportResult, error)
}

// AnalyticsHandler exposes the admin dashboard endpoints.
type AnalyticsHandler struct {
	analytics analyticsProvider
	bundles   crossArchiver
	reports   reportProvider
}

// NewAnalyticsHandler constructs the handler.
func NewAnalyticsHandler(analytics analyticsProvider, bundles crossArchiver, reports reportProvider) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, bundles: bundles, reports: reports}
}

// ApprovedReceipts godoc
// @Summary Approved submissions grouped by category
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/approved-receipts [get]
func (h *AnalyticsHandler) ApprovedReceipts(c *gin.Context) {
	groups, err := h.analytics.ApprovedByCategory(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups, nil)
}

// ApprovedCount godoc
// @Summary Total approved count
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/approved-receipts/count [get]
func (h *AnalyticsHandler) ApprovedCount(c *gin.Context) {
	h.counter(c, h.analytics.ApprovedCount)
}

// ApprovedThisWeek godoc
// @Summary Approvals in the current week
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/approved/this-week [get]
func (h *AnalyticsHandler) ApprovedThisWeek(c *gin.Context) {
	h.counter(c, h.analytics.ApprovedThisWeek)
}

// UploadsThisMonth godoc
// @Summary Uploads in the current month
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/uploads/this-month [get]
func (h *AnalyticsHandler) UploadsThisMonth(c *gin.Context) {
	h.counter(c, h.analytics.UploadsThisMonth)
}

// NewStudentsThisMonth godoc
// @Summary Student accounts created this month
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/students/new-this-month [get]
func (h *AnalyticsHandler) NewStudentsThisMonth(c *gin.Context) {
	h.counter(c, h.analytics.NewStudentsThisMonth)
}

func (h *AnalyticsHandler) counter(c *gin.Context, load func(context.Context) (models.CountResult, error)) {
	result, err := load(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Students godoc
// @Summary List student accounts
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/students [get]
func (h *AnalyticsHandler) Students(c *gin.Context) {
	students, err := h.analytics.Students(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// Approvers godoc
// @Summary Approver leaderboard across all kinds
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/approvers [get]
func (h *AnalyticsHandler) Approvers(c *gin.Context) {
	leaderboard, err := h.analytics.ApproverLeaderboard(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, leaderboard, nil)
}

// StaffActivity godoc
// @Summary Approvals per reviewer this month
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/staff/activity-this-month [get]
func (h *AnalyticsHandler) StaffActivity(c *gin.Context) {
	activity, err := h.analytics.StaffActivityThisMonth(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, activity, nil)
}

// DownloadApproved godoc
// @Summary Download a ZIP of approved artifacts across all kinds
// @Tags Analytics
// @Produce application/zip
// @Success 200 {file} binary
// @Router /analytics/download/approved-receipts [get]
func (h *AnalyticsHandler) DownloadApproved(c *gin.Context) {
	payload, err := h.bundles.BuildCrossKindArchive(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("approved-receipts-%s.zip", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/zip", payload)
}

// ApprovedReport godoc
// @Summary Download the approved listing as CSV or PDF
// @Tags Analytics
// @Produce json
// @Param format query string true "csv or pdf"
// @Success 200 {file} binary
// @Router /analytics/reports/approved [get]
func (h *AnalyticsHandler) ApprovedReport(c *gin.Context) {
	format := service.ReportFormat(c.DefaultQuery("format", string(service.ReportFormatCSV)))
	result, err := h.reports.ApprovedReceipts(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}
