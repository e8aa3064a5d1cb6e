package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/eduvault/eduvault-api/internal/middleware"
	"github.com/eduvault/eduvault-api/internal/models"
	appErrors "github.com/eduvault/eduvault-api/pkg/errors"
)

type reviewServiceMock struct {
	approved   *models.Submission
	approveErr error
	rejected   *models.Submission
	rejectErr  error

	lastKind   models.Kind
	lastID     string
	lastActor  string
	lastReason string
}

func (m *reviewServiceMock) Approve(ctx context.Context, kind models.Kind, id, approverID string) (*models.Submission, error) {
	m.lastKind, m.lastID, m.lastActor = kind, id, approverID
	return m.approved, m.approveErr
}

func (m *reviewServiceMock) Reject(ctx context.Context, kind models.Kind, id, rejectorID, reason string) (*models.Submission, error) {
	m.lastKind, m.lastID, m.lastActor, m.lastReason = kind, id, rejectorID, reason
	return m.rejected, m.rejectErr
}

func newReviewContext(method, path string, body []byte, kind, id string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "kind", Value: kind}, {Key: "id", Value: id}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "staff-1", Role: models.RoleStaff})
	return c, w
}

func TestReviewHandlerApprove(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &reviewServiceMock{
		approved: &models.Submission{ID: "sub-1", Kind: models.KindCollegeDue, Status: models.StatusApproved},
	}
	h := NewReviewHandler(mockSvc)

	c, w := newReviewContext(http.MethodPost, "/reviews/collegeDue/sub-1/approve", nil, "collegeDue", "sub-1")
	h.Approve(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, models.KindCollegeDue, mockSvc.lastKind)
	require.Equal(t, "sub-1", mockSvc.lastID)
	require.Equal(t, "staff-1", mockSvc.lastActor)
}

func TestReviewHandlerApproveUnknownKind(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewReviewHandler(&reviewServiceMock{})

	c, w := newReviewContext(http.MethodPost, "/reviews/bogus/sub-1/approve", nil, "bogus", "sub-1")
	h.Approve(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReviewHandlerApproveConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &reviewServiceMock{
		approveErr: appErrors.Clone(appErrors.ErrConflict, "submission already APPROVED"),
	}
	h := NewReviewHandler(mockSvc)

	c, w := newReviewContext(http.MethodPost, "/reviews/collegeDue/sub-1/approve", nil, "collegeDue", "sub-1")
	h.Approve(c)

	require.Equal(t, http.StatusConflict, w.Code)
}

func TestReviewHandlerReject(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &reviewServiceMock{
		rejected: &models.Submission{ID: "sub-1", Kind: models.KindDeptDue, Status: models.StatusRejected},
	}
	h := NewReviewHandler(mockSvc)

	payload, _ := json.Marshal(map[string]string{"reason": "blurry scan"})
	c, w := newReviewContext(http.MethodPost, "/reviews/deptDue/sub-1/reject", payload, "deptDue", "sub-1")
	h.Reject(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "blurry scan", mockSvc.lastReason)
}

func TestReviewHandlerRejectMissingReason(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewReviewHandler(&reviewServiceMock{})

	payload, _ := json.Marshal(map[string]string{})
	c, w := newReviewContext(http.MethodPost, "/reviews/deptDue/sub-1/reject", payload, "deptDue", "sub-1")
	h.Reject(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
