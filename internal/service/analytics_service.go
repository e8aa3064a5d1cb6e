package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/eduvault/eduvault-api/internal/models"
	appErrors "github.com/eduvault/eduvault-api/pkg/errors"
)

// counterKind scopes the scalar dashboard counters. The dashboard has always
// counted the college-due pipeline as its representative series.
const counterKind = models.KindCollegeDue

type analyticsStore interface {
	List(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, error)
	CountByStatus(ctx context.Context, kind models.Kind, status models.Status) (int, error)
	CountApprovedBetween(ctx context.Context, kind models.Kind, from, to time.Time) (int, error)
	CountUploadedBetween(ctx context.Context, kind models.Kind, from, to time.Time) (int, error)
	ApproverCounts(ctx context.Context) ([]models.ApproverActivity, error)
	ApproverCountsBetween(ctx context.Context, from, to time.Time) ([]models.ApproverActivity, error)
}

type userDirectory interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.User, error)
	ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
	CountByRoleCreatedBetween(ctx context.Context, role models.UserRole, from, to time.Time) (int, error)
}

// AnalyticsService aggregates approved submissions across all six kinds into
// the admin dashboard views.
type AnalyticsService struct {
	store  analyticsStore
	users  userDirectory
	cache  *CacheService
	logger *zap.Logger
	now    func() time.Time
}

// NewAnalyticsService constructs the service.
func NewAnalyticsService(store analyticsStore, users userDirectory, cache *CacheService, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{store: store, users: users, cache: cache, logger: logger, now: time.Now}
}

// ApprovedByCategory returns approved submissions grouped under their
// category labels in fixed order. Empty categories are omitted; when every
// category is empty the whole call reports NotFound.
func (s *AnalyticsService) ApprovedByCategory(ctx context.Context) ([]models.CategoryGroup, error) {
	groups := make([]models.CategoryGroup, 0, len(projectionOrder))
	for _, kind := range projectionOrder {
		subs, err := s.store.List(ctx, models.SubmissionFilter{Kind: kind, Status: models.StatusApproved})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list approved submissions")
		}
		if len(subs) == 0 {
			continue
		}
		receipts, err := s.project(ctx, kind, subs)
		if err != nil {
			return nil, err
		}
		groups = append(groups, models.CategoryGroup{Category: CategoryLabel(kind), Receipts: receipts})
	}
	if len(groups) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no approved receipts found across any category")
	}
	return groups, nil
}

// project resolves display names for one category with a single batch user
// lookup covering uploaders and approvers.
func (s *AnalyticsService) project(ctx context.Context, kind models.Kind, subs []models.Submission) ([]models.ApprovedDocument, error) {
	idSet := make(map[string]struct{}, len(subs)*2)
	for _, sub := range subs {
		idSet[sub.OwnerID] = struct{}{}
		if sub.ApprovedBy != nil {
			idSet[*sub.ApprovedBy] = struct{}{}
		}
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "resolve user names")
	}
	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	label := CategoryLabel(kind)
	docs := make([]models.ApprovedDocument, 0, len(subs))
	for _, sub := range subs {
		fields, err := sub.Fields()
		if err != nil {
			s.logger.Warn("skipping submission with unreadable fields", zap.String("id", sub.ID), zap.Error(err))
			continue
		}

		uploaderName := "Unknown"
		if u, ok := byID[sub.OwnerID]; ok {
			uploaderName = u.FullName
		}
		approverName := "N/A"
		if sub.ApprovedBy != nil {
			if u, ok := byID[*sub.ApprovedBy]; ok {
				approverName = u.FullName
			}
		}

		docs = append(docs, models.ApprovedDocument{
			ID:               sub.ID,
			FileName:         sub.FileName,
			Name:             fmt.Sprintf("%s (%s)", fields.Get("name"), label),
			DistinguishingID: fields.Get("matricNumber"),
			UploadedBy:       uploaderName,
			ApprovedBy:       approverName,
			UploadedAt:       sub.UploadedAt,
		})
	}
	return docs, nil
}

// ApprovedCount returns the total approved count for the counter kind.
func (s *AnalyticsService) ApprovedCount(ctx context.Context) (models.CountResult, error) {
	return s.cachedCount(ctx, "analytics:approved:count", func() (int, error) {
		return s.store.CountByStatus(ctx, counterKind, models.StatusApproved)
	})
}

// ApprovedThisWeek counts approvals in the current Monday-to-Sunday week.
func (s *AnalyticsService) ApprovedThisWeek(ctx context.Context) (models.CountResult, error) {
	from, to := weekWindow(s.now())
	return s.cachedCount(ctx, "analytics:approved:week", func() (int, error) {
		return s.store.CountApprovedBetween(ctx, counterKind, from, to)
	})
}

// UploadsThisMonth counts uploads in the current calendar month.
func (s *AnalyticsService) UploadsThisMonth(ctx context.Context) (models.CountResult, error) {
	from, to := monthWindow(s.now())
	return s.cachedCount(ctx, "analytics:uploads:month", func() (int, error) {
		return s.store.CountUploadedBetween(ctx, counterKind, from, to)
	})
}

// NewStudentsThisMonth counts student accounts created this calendar month.
func (s *AnalyticsService) NewStudentsThisMonth(ctx context.Context) (models.CountResult, error) {
	from, to := monthWindow(s.now())
	return s.cachedCount(ctx, "analytics:students:month", func() (int, error) {
		return s.users.CountByRoleCreatedBetween(ctx, models.RoleStudent, from, to)
	})
}

// Students lists all student accounts.
func (s *AnalyticsService) Students(ctx context.Context) ([]models.User, error) {
	students, err := s.users.ListByRole(ctx, models.RoleStudent)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list students")
	}
	if len(students) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no students found")
	}
	return students, nil
}

// ApproverLeaderboard ranks reviewers by total approvals across all kinds.
func (s *AnalyticsService) ApproverLeaderboard(ctx context.Context) ([]models.ApproverActivity, error) {
	counts, err := s.store.ApproverCounts(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load approver counts")
	}
	return s.resolveApprovers(ctx, counts)
}

// StaffActivityThisMonth ranks reviewers by approvals in the current month.
func (s *AnalyticsService) StaffActivityThisMonth(ctx context.Context) ([]models.ApproverActivity, error) {
	from, to := monthWindow(s.now())
	counts, err := s.store.ApproverCountsBetween(ctx, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load staff activity")
	}
	return s.resolveApprovers(ctx, counts)
}

func (s *AnalyticsService) resolveApprovers(ctx context.Context, counts []models.ApproverActivity) ([]models.ApproverActivity, error) {
	ids := make([]string, 0, len(counts))
	for _, c := range counts {
		ids = append(ids, c.ApproverID)
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "resolve approver names")
	}
	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for i := range counts {
		if u, ok := byID[counts[i].ApproverID]; ok {
			counts[i].DisplayName = u.FullName
		} else {
			counts[i].DisplayName = "Unknown"
		}
	}
	return counts, nil
}

func (s *AnalyticsService) cachedCount(ctx context.Context, key string, load func() (int, error)) (models.CountResult, error) {
	var result models.CountResult
	if s.cache != nil {
		if hit, _ := s.cache.Get(ctx, key, &result); hit {
			return result, nil
		}
	}
	count, err := load()
	if err != nil {
		return models.CountResult{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load counter")
	}
	result = models.CountResult{Count: count}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result, 0); err != nil {
			s.logger.Warn("counter cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return result, nil
}

// weekWindow returns the current week from Monday 00:00:00 through Sunday
// 23:59:59.
func weekWindow(now time.Time) (time.Time, time.Time) {
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	monday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, -(weekday - 1))
	sunday := monday.AddDate(0, 0, 6).Add(23*time.Hour + 59*time.Minute + 59*time.Second)
	return monday, sunday
}

// monthWindow returns the current calendar month from day one 00:00:00
// through the last day 23:59:59.
func monthWindow(now time.Time) (time.Time, time.Time) {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	last := first.AddDate(0, 1, 0).Add(-time.Second)
	return first, last
}
