package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eduvault/eduvault-api/internal/models"
	appErrors "github.com/eduvault/eduvault-api/pkg/errors"
	"github.com/eduvault/eduvault-api/pkg/jobs"
)

type notificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID string) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, id string, at time.Time) error
	MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error)
}

type ownerDirectory interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// Mailer delivers owner-facing emails. Delivery is best effort.
type Mailer interface {
	SendRejection(ctx context.Context, to, reason, reuploadLink, matricNumber, document string) error
}

// Pusher delivers in-app pushes. Delivery is best effort.
type Pusher interface {
	Push(ctx context.Context, userID, title, body string) error
}

// Notification titles shared by every document kind.
const (
	TitleDocumentApproved = "Document Received And Approved"
	TitleDocumentRejected = "Document Rejected"
)

// NotificationConfig tunes dispatch behaviour.
type NotificationConfig struct {
	Workers     int
	ReuploadURL string
}

type dispatchPayload struct {
	notification models.Notification
	email        string
	reason       string
	matricNumber string
	document     string
	rejection    bool
}

// NotificationService persists review notifications and dispatches them
// asynchronously. Dispatch failures are logged and retried by the queue but
// never surface to the review transition that triggered them.
type NotificationService struct {
	store  notificationStore
	users  ownerDirectory
	mailer Mailer
	pusher Pusher
	queue  *jobs.Queue
	logger *zap.Logger
	cfg    NotificationConfig
}

// NewNotificationService constructs the service and its dispatch queue.
// Start must be called before notifications flow.
func NewNotificationService(store notificationStore, users ownerDirectory, mailer Mailer, pusher Pusher, cfg NotificationConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if mailer == nil {
		mailer = &LogMailer{Logger: logger}
	}
	if pusher == nil {
		pusher = &LogPusher{Logger: logger}
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	s := &NotificationService{
		store:  store,
		users:  users,
		mailer: mailer,
		pusher: pusher,
		logger: logger,
		cfg:    cfg,
	}
	s.queue = jobs.NewQueue("notifications", s.dispatch, jobs.QueueConfig{
		Workers: cfg.Workers,
		Logger:  logger,
	})
	return s
}

// Start begins async dispatch.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the dispatch workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// NotifyApproved records and dispatches an approval notice to the owner.
func (s *NotificationService) NotifyApproved(ctx context.Context, sub *models.Submission) {
	body := fmt.Sprintf("Your %s for %s has been received and approved by the school",
		CategoryLabel(sub.Kind), sub.Level)
	s.notify(ctx, sub, TitleDocumentApproved, body, "", false)
}

// NotifyRejected records and dispatches a rejection notice carrying the
// reviewer's reason and a re-upload link.
func (s *NotificationService) NotifyRejected(ctx context.Context, sub *models.Submission, reason string) {
	body := fmt.Sprintf("Your %s for %s has been rejected, something seems to be wrong with the receipt you uploaded; %s",
		CategoryLabel(sub.Kind), sub.Level, reason)
	s.notify(ctx, sub, TitleDocumentRejected, body, reason, true)
}

func (s *NotificationService) notify(ctx context.Context, sub *models.Submission, title, body, reason string, rejection bool) {
	n := &models.Notification{
		UserID: sub.OwnerID,
		Title:  title,
		Body:   body,
	}
	if err := s.store.Create(ctx, n); err != nil {
		s.logger.Error("failed to persist notification",
			zap.String("user_id", sub.OwnerID), zap.Error(err))
		return
	}

	payload := dispatchPayload{notification: *n, reason: reason, rejection: rejection, document: CategoryLabel(sub.Kind)}
	if owner, err := s.users.FindByID(ctx, sub.OwnerID); err == nil {
		payload.email = owner.Email
		if owner.MatricNumber != nil {
			payload.matricNumber = *owner.MatricNumber
		}
	} else {
		s.logger.Warn("could not resolve notification recipient",
			zap.String("user_id", sub.OwnerID), zap.Error(err))
	}

	if err := s.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: title, Payload: payload}); err != nil {
		s.logger.Warn("failed to enqueue notification dispatch",
			zap.String("notification_id", n.ID), zap.Error(err))
	}
}

// dispatch delivers one queued notification to the push and mail channels.
func (s *NotificationService) dispatch(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(dispatchPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}

	n := payload.notification
	if err := s.pusher.Push(ctx, n.UserID, n.Title, n.Body); err != nil {
		return fmt.Errorf("push notification %s: %w", n.ID, err)
	}
	if payload.rejection && payload.email != "" {
		if err := s.mailer.SendRejection(ctx, payload.email, payload.reason, s.cfg.ReuploadURL, payload.matricNumber, payload.document); err != nil {
			return fmt.Errorf("send rejection email for %s: %w", n.ID, err)
		}
	}
	return nil
}

// List returns the user's notifications.
func (s *NotificationService) List(ctx context.Context, userID string) ([]models.Notification, error) {
	records, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list notifications")
	}
	return records, nil
}

// MarkRead flags one notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	if err := s.store.MarkRead(ctx, userID, id, time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "mark notification read")
	}
	return nil
}

// MarkAllRead flags all of the user's notifications as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	count, err := s.store.MarkAllRead(ctx, userID, time.Now().UTC())
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "mark notifications read")
	}
	return count, nil
}

// LogMailer writes would-be emails to the log. Used until a real mail
// provider is wired in deployment.
type LogMailer struct {
	Logger *zap.Logger
}

// SendRejection implements Mailer.
func (m *LogMailer) SendRejection(_ context.Context, to, reason, reuploadLink, matricNumber, document string) error {
	m.Logger.Info("rejection email",
		zap.String("to", to),
		zap.String("document", document),
		zap.String("matric_number", matricNumber),
		zap.String("reason", reason),
		zap.String("reupload_link", reuploadLink))
	return nil
}

// LogPusher writes would-be pushes to the log.
type LogPusher struct {
	Logger *zap.Logger
}

// Push implements Pusher.
func (p *LogPusher) Push(_ context.Context, userID, title, body string) error {
	p.Logger.Info("push notification",
		zap.String("user_id", userID),
		zap.String("title", title),
		zap.String("body", body))
	return nil
}
