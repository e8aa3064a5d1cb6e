package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/eduvault/eduvault-api/internal/extract"
	"github.com/eduvault/eduvault-api/internal/models"
	appErrors "github.com/eduvault/eduvault-api/pkg/errors"
)

type submissionStore interface {
	Create(ctx context.Context, sub *models.Submission) error
	GetByID(ctx context.Context, kind models.Kind, id string) (*models.Submission, error)
	List(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, error)
	HasActive(ctx context.Context, kind models.Kind, ownerID string, level models.Level) (bool, error)
	LatestByOwner(ctx context.Context, kind models.Kind, ownerID string) (*models.Submission, error)
	MarkApproved(ctx context.Context, kind models.Kind, id, approverID string, at time.Time) (int64, error)
	MarkRejected(ctx context.Context, kind models.Kind, id, rejectorID, reason string, at time.Time) (int64, error)
}

type artifactStore interface {
	Save(filename string, data []byte) (string, error)
}

type reviewNotifier interface {
	NotifyApproved(ctx context.Context, sub *models.Submission)
	NotifyRejected(ctx context.Context, sub *models.Submission, reason string)
}

// SubmitRequest carries one document upload.
type SubmitRequest struct {
	Kind     models.Kind  `validate:"required"`
	OwnerID  string       `validate:"required"`
	Level    models.Level `validate:"required"`
	Text     string       `validate:"required"`
	FileName string       `validate:"required"`
	Artifact []byte       `validate:"required"`
}

// RejectRequest carries a rejection decision.
type RejectRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// keyedMutex serializes work per submission id.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	if m, ok := k.locks[key]; ok {
		return m
	}
	m := &sync.Mutex{}
	k.locks[key] = m
	return m
}

// release drops the entry once the submission reached a terminal state.
// Waiters holding the pointer still unlock safely; a later get sees the
// conditional UPDATE refuse the stale transition.
func (k *keyedMutex) release(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.locks, key)
}

// SubmissionService drives the generic document workflow shared by all kinds:
// admission control, extraction, and the PENDING to APPROVED/REJECTED
// transitions.
type SubmissionService struct {
	store     submissionStore
	artifacts artifactStore
	notifier  reviewNotifier
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	locks     *keyedMutex
}

// NewSubmissionService constructs the service.
func NewSubmissionService(store submissionStore, artifacts artifactStore, notifier reviewNotifier, metrics *MetricsService, logger *zap.Logger) *SubmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionService{
		store:     store,
		artifacts: artifacts,
		notifier:  notifier,
		metrics:   metrics,
		validator: validator.New(),
		logger:    logger,
		locks:     newKeyedMutex(),
	}
}

// Submit runs admission control and extraction, stores the artifact and
// persists a pending submission. Extraction happens exactly once here; the
// stored fields are never re-derived.
func (s *SubmissionService) Submit(ctx context.Context, req SubmitRequest) (*models.Submission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission payload")
	}
	if _, err := models.ParseKind(string(req.Kind)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if _, err := models.ParseLevel(string(req.Level)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	active, err := s.store.HasActive(ctx, req.Kind, req.OwnerID, req.Level)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "check active submission")
	}
	if active {
		msg := fmt.Sprintf("You have already uploaded a receipt for %s. You can only re-upload if your receipt was rejected.", req.Level)
		return nil, appErrors.Clone(appErrors.ErrConflict, msg)
	}

	fields := extract.Extract(req.Kind, req.Text)

	ref, err := s.artifacts.Save(fmt.Sprintf("%s/%s", req.Kind, req.FileName), req.Artifact)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "store artifact")
	}

	sub := &models.Submission{
		Kind:        req.Kind,
		OwnerID:     req.OwnerID,
		Level:       req.Level,
		Status:      models.StatusPending,
		ArtifactRef: ref,
		FileName:    req.FileName,
	}
	if err := sub.SetFields(fields); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode fields")
	}
	if err := s.store.Create(ctx, sub); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "persist submission")
	}

	s.metrics.RecordSubmission(string(req.Kind))
	s.logger.Info("submission accepted",
		zap.String("kind", string(req.Kind)),
		zap.String("id", sub.ID),
		zap.String("level", string(req.Level)))
	return sub, nil
}

// Approve finalizes a pending submission. Transitions out of a terminal
// state are refused; the first decision is the only decision.
func (s *SubmissionService) Approve(ctx context.Context, kind models.Kind, id, approverID string) (*models.Submission, error) {
	key := string(kind) + "/" + id
	lock := s.locks.get(key)
	lock.Lock()
	defer lock.Unlock()

	sub, err := s.load(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if sub.Status.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("submission already %s", sub.Status))
	}

	now := time.Now().UTC()
	affected, err := s.store.MarkApproved(ctx, kind, id, approverID, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "approve submission")
	}
	if affected == 0 {
		return nil, appErrors.Clone(appErrors.ErrConflict, "submission is no longer pending")
	}

	sub.Status = models.StatusApproved
	sub.ApprovedBy = &approverID
	sub.ApprovedAt = &now
	sub.UpdatedAt = now
	s.locks.release(key)

	s.metrics.RecordTransition(string(kind), string(models.StatusApproved))
	if s.notifier != nil {
		s.notifier.NotifyApproved(ctx, sub)
	}
	return sub, nil
}

// Reject finalizes a pending submission with a reviewer-supplied reason.
func (s *SubmissionService) Reject(ctx context.Context, kind models.Kind, id, rejectorID, reason string) (*models.Submission, error) {
	if reason == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "rejection reason is required")
	}

	key := string(kind) + "/" + id
	lock := s.locks.get(key)
	lock.Lock()
	defer lock.Unlock()

	sub, err := s.load(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if sub.Status.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("submission already %s", sub.Status))
	}

	now := time.Now().UTC()
	affected, err := s.store.MarkRejected(ctx, kind, id, rejectorID, reason, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "reject submission")
	}
	if affected == 0 {
		return nil, appErrors.Clone(appErrors.ErrConflict, "submission is no longer pending")
	}

	sub.Status = models.StatusRejected
	sub.RejectedBy = &rejectorID
	sub.RejectedAt = &now
	sub.RejectionReason = &reason
	sub.UpdatedAt = now
	s.locks.release(key)

	s.metrics.RecordTransition(string(kind), string(models.StatusRejected))
	if s.notifier != nil {
		s.notifier.NotifyRejected(ctx, sub, reason)
	}
	return sub, nil
}

// Get returns one submission of the kind.
func (s *SubmissionService) Get(ctx context.Context, kind models.Kind, id string) (*models.Submission, error) {
	return s.load(ctx, kind, id)
}

// List returns submissions matching the filter.
func (s *SubmissionService) List(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, error) {
	subs, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list submissions")
	}
	return subs, nil
}

// Latest returns the owner's most recent submission of the kind.
func (s *SubmissionService) Latest(ctx context.Context, kind models.Kind, ownerID string) (*models.Submission, error) {
	sub, err := s.store.LatestByOwner(ctx, kind, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no submission found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load latest submission")
	}
	return sub, nil
}

func (s *SubmissionService) load(ctx context.Context, kind models.Kind, id string) (*models.Submission, error) {
	sub, err := s.store.GetByID(ctx, kind, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load submission")
	}
	return sub, nil
}
