package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eduvault/eduvault-api/internal/models"
	appErrors "github.com/eduvault/eduvault-api/pkg/errors"
)

type submissionStoreStub struct {
	subs   map[string]*models.Submission
	nextID int
}

func newSubmissionStoreStub() *submissionStoreStub {
	return &submissionStoreStub{subs: make(map[string]*models.Submission)}
}

func (s *submissionStoreStub) Create(ctx context.Context, sub *models.Submission) error {
	s.nextID++
	sub.ID = fmt.Sprintf("sub-%d", s.nextID)
	sub.UploadedAt = time.Now().UTC()
	sub.UpdatedAt = sub.UploadedAt
	copy := *sub
	s.subs[sub.ID] = &copy
	return nil
}

func (s *submissionStoreStub) GetByID(ctx context.Context, kind models.Kind, id string) (*models.Submission, error) {
	sub, ok := s.subs[id]
	if !ok || sub.Kind != kind {
		return nil, sql.ErrNoRows
	}
	copy := *sub
	return &copy, nil
}

func (s *submissionStoreStub) List(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, error) {
	var out []models.Submission
	for _, sub := range s.subs {
		if filter.Kind != "" && sub.Kind != filter.Kind {
			continue
		}
		if filter.Status != "" && sub.Status != filter.Status {
			continue
		}
		out = append(out, *sub)
	}
	return out, nil
}

func (s *submissionStoreStub) HasActive(ctx context.Context, kind models.Kind, ownerID string, level models.Level) (bool, error) {
	for _, sub := range s.subs {
		if sub.Kind == kind && sub.OwnerID == ownerID && sub.Level == level && sub.Status != models.StatusRejected {
			return true, nil
		}
	}
	return false, nil
}

func (s *submissionStoreStub) LatestByOwner(ctx context.Context, kind models.Kind, ownerID string) (*models.Submission, error) {
	var latest *models.Submission
	for _, sub := range s.subs {
		if sub.Kind != kind || sub.OwnerID != ownerID {
			continue
		}
		if latest == nil || sub.UploadedAt.After(latest.UploadedAt) {
			latest = sub
		}
	}
	if latest == nil {
		return nil, sql.ErrNoRows
	}
	copy := *latest
	return &copy, nil
}

func (s *submissionStoreStub) MarkApproved(ctx context.Context, kind models.Kind, id, approverID string, at time.Time) (int64, error) {
	sub, ok := s.subs[id]
	if !ok || sub.Status != models.StatusPending {
		return 0, nil
	}
	sub.Status = models.StatusApproved
	sub.ApprovedBy = &approverID
	sub.ApprovedAt = &at
	return 1, nil
}

func (s *submissionStoreStub) MarkRejected(ctx context.Context, kind models.Kind, id, rejectorID, reason string, at time.Time) (int64, error) {
	sub, ok := s.subs[id]
	if !ok || sub.Status != models.StatusPending {
		return 0, nil
	}
	sub.Status = models.StatusRejected
	sub.RejectedBy = &rejectorID
	sub.RejectedAt = &at
	sub.RejectionReason = &reason
	return 1, nil
}

type artifactStoreStub struct {
	saved map[string][]byte
}

func newArtifactStoreStub() *artifactStoreStub {
	return &artifactStoreStub{saved: make(map[string][]byte)}
}

func (a *artifactStoreStub) Save(filename string, data []byte) (string, error) {
	a.saved[filename] = data
	return filename, nil
}

type notifierStub struct {
	approved []string
	rejected []string
	reasons  []string
}

func (n *notifierStub) NotifyApproved(ctx context.Context, sub *models.Submission) {
	n.approved = append(n.approved, sub.ID)
}

func (n *notifierStub) NotifyRejected(ctx context.Context, sub *models.Submission, reason string) {
	n.rejected = append(n.rejected, sub.ID)
	n.reasons = append(n.reasons, reason)
}

const collegeDueText = `COLLEGE OF SCIENCE
Payment Receipt
Payer's Name ADA OBI
Payer's Email ada.obi@student.edu.ng
Matric No CSC/2021/001
Department Computer Science
Academic Session 2023/2024
Level 200
Transaction Reference TX-20240301-0001
Status Successful
Total Amount NGN12,500
Date Paid 2024-03-01`

func submitFixture(level models.Level) SubmitRequest {
	return SubmitRequest{
		Kind:     models.KindCollegeDue,
		OwnerID:  "stu-1",
		Level:    level,
		Text:     collegeDueText,
		FileName: "college-due.pdf",
		Artifact: []byte("%PDF-1.4"),
	}
}

func TestSubmissionServiceSubmit(t *testing.T) {
	store := newSubmissionStoreStub()
	artifacts := newArtifactStoreStub()
	svc := NewSubmissionService(store, artifacts, nil, nil, nil)

	sub, err := svc.Submit(context.Background(), submitFixture(models.Level200))
	require.NoError(t, err)
	require.NotEmpty(t, sub.ID)
	require.Equal(t, models.StatusPending, sub.Status)
	require.Contains(t, artifacts.saved, "collegeDue/college-due.pdf")

	fields, err := sub.Fields()
	require.NoError(t, err)
	require.NotNil(t, fields["amount"])
	require.Equal(t, "NGN12,500", *fields["amount"])
	require.NotNil(t, fields["date"])
	require.Equal(t, "2024-03-01", *fields["date"])
}

func TestSubmissionServiceSubmitConflict(t *testing.T) {
	store := newSubmissionStoreStub()
	svc := NewSubmissionService(store, newArtifactStoreStub(), nil, nil, nil)

	_, err := svc.Submit(context.Background(), submitFixture(models.Level200))
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), submitFixture(models.Level200))
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	require.Equal(t, "You have already uploaded a receipt for L200. You can only re-upload if your receipt was rejected.", appErr.Message)

	// A different level is admitted independently.
	_, err = svc.Submit(context.Background(), submitFixture(models.Level300))
	require.NoError(t, err)
}

func TestSubmissionServiceReuploadAfterRejection(t *testing.T) {
	store := newSubmissionStoreStub()
	notifier := &notifierStub{}
	svc := NewSubmissionService(store, newArtifactStoreStub(), notifier, nil, nil)

	first, err := svc.Submit(context.Background(), submitFixture(models.Level200))
	require.NoError(t, err)

	_, err = svc.Reject(context.Background(), models.KindCollegeDue, first.ID, "staff-1", "blurry scan")
	require.NoError(t, err)
	require.Equal(t, []string{first.ID}, notifier.rejected)
	require.Equal(t, []string{"blurry scan"}, notifier.reasons)

	second, err := svc.Submit(context.Background(), submitFixture(models.Level200))
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)
}

func TestSubmissionServiceApprove(t *testing.T) {
	store := newSubmissionStoreStub()
	notifier := &notifierStub{}
	svc := NewSubmissionService(store, newArtifactStoreStub(), notifier, nil, nil)

	sub, err := svc.Submit(context.Background(), submitFixture(models.Level100))
	require.NoError(t, err)

	approved, err := svc.Approve(context.Background(), models.KindCollegeDue, sub.ID, "staff-1")
	require.NoError(t, err)
	require.Equal(t, models.StatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	require.Equal(t, "staff-1", *approved.ApprovedBy)
	require.NotNil(t, approved.ApprovedAt)
	require.Equal(t, []string{sub.ID}, notifier.approved)
}

func TestSubmissionServiceTerminalTransitionRefused(t *testing.T) {
	store := newSubmissionStoreStub()
	svc := NewSubmissionService(store, newArtifactStoreStub(), nil, nil, nil)

	sub, err := svc.Submit(context.Background(), submitFixture(models.Level100))
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), models.KindCollegeDue, sub.ID, "staff-1")
	require.NoError(t, err)

	_, err = svc.Reject(context.Background(), models.KindCollegeDue, sub.ID, "staff-2", "second thoughts")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	require.Equal(t, "submission already APPROVED", appErr.Message)

	_, err = svc.Approve(context.Background(), models.KindCollegeDue, sub.ID, "staff-2")
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestSubmissionServiceLockReleasedAfterDecision(t *testing.T) {
	store := newSubmissionStoreStub()
	svc := NewSubmissionService(store, newArtifactStoreStub(), nil, nil, nil)

	sub, err := svc.Submit(context.Background(), submitFixture(models.Level100))
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), models.KindCollegeDue, sub.ID, "staff-1")
	require.NoError(t, err)

	svc.locks.mu.Lock()
	_, held := svc.locks.locks[string(models.KindCollegeDue)+"/"+sub.ID]
	svc.locks.mu.Unlock()
	require.False(t, held)
}

func TestSubmissionServiceRejectRequiresReason(t *testing.T) {
	store := newSubmissionStoreStub()
	svc := NewSubmissionService(store, newArtifactStoreStub(), nil, nil, nil)

	sub, err := svc.Submit(context.Background(), submitFixture(models.Level100))
	require.NoError(t, err)

	_, err = svc.Reject(context.Background(), models.KindCollegeDue, sub.ID, "staff-1", "")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestSubmissionServiceApproveMissing(t *testing.T) {
	svc := NewSubmissionService(newSubmissionStoreStub(), newArtifactStoreStub(), nil, nil, nil)

	_, err := svc.Approve(context.Background(), models.KindCollegeDue, "nope", "staff-1")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestSubmissionServiceLatest(t *testing.T) {
	store := newSubmissionStoreStub()
	svc := NewSubmissionService(store, newArtifactStoreStub(), nil, nil, nil)

	_, err := svc.Latest(context.Background(), models.KindCollegeDue, "stu-1")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)

	sub, err := svc.Submit(context.Background(), submitFixture(models.Level100))
	require.NoError(t, err)

	latest, err := svc.Latest(context.Background(), models.KindCollegeDue, "stu-1")
	require.NoError(t, err)
	require.Equal(t, sub.ID, latest.ID)
}
