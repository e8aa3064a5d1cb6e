package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eduvault/eduvault-api/internal/models"
	appErrors "github.com/eduvault/eduvault-api/pkg/errors"
)

type analyticsStoreStub struct {
	subs          map[models.Kind][]models.Submission
	approvedCount int
	weekCount     int
	monthCount    int
	counts        []models.ApproverActivity
	monthCounts   []models.ApproverActivity

	weekFrom, weekTo   time.Time
	monthFrom, monthTo time.Time
}

func (s *analyticsStoreStub) List(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, error) {
	return s.subs[filter.Kind], nil
}

func (s *analyticsStoreStub) CountByStatus(ctx context.Context, kind models.Kind, status models.Status) (int, error) {
	return s.approvedCount, nil
}

func (s *analyticsStoreStub) CountApprovedBetween(ctx context.Context, kind models.Kind, from, to time.Time) (int, error) {
	s.weekFrom, s.weekTo = from, to
	return s.weekCount, nil
}

func (s *analyticsStoreStub) CountUploadedBetween(ctx context.Context, kind models.Kind, from, to time.Time) (int, error) {
	s.monthFrom, s.monthTo = from, to
	return s.monthCount, nil
}

func (s *analyticsStoreStub) ApproverCounts(ctx context.Context) ([]models.ApproverActivity, error) {
	return s.counts, nil
}

func (s *analyticsStoreStub) ApproverCountsBetween(ctx context.Context, from, to time.Time) ([]models.ApproverActivity, error) {
	return s.monthCounts, nil
}

type userDirectoryStub struct {
	users       map[string]models.User
	students    []models.User
	newStudents int
}

func (d *userDirectoryStub) FindByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if u, ok := d.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (d *userDirectoryStub) ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	return d.students, nil
}

func (d *userDirectoryStub) CountByRoleCreatedBetween(ctx context.Context, role models.UserRole, from, to time.Time) (int, error) {
	return d.newStudents, nil
}

func approvedSubmission(t *testing.T, id, kind, owner string, approver *string, fields models.FieldMap) models.Submission {
	t.Helper()
	sub := models.Submission{
		ID:         id,
		Kind:       models.Kind(kind),
		OwnerID:    owner,
		Level:      models.Level200,
		Status:     models.StatusApproved,
		FileName:   id + ".pdf",
		ApprovedBy: approver,
		UploadedAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, sub.SetFields(fields))
	return sub
}

func strPtr(s string) *string { return &s }

func TestAnalyticsApprovedByCategory(t *testing.T) {
	staff := strPtr("staff-1")
	store := &analyticsStoreStub{subs: map[models.Kind][]models.Submission{
		models.KindCollegeDue: {
			approvedSubmission(t, "cd-1", "collegeDue", "stu-1", staff, models.FieldMap{
				"name":         strPtr("ADA OBI"),
				"matricNumber": strPtr("CSC/2021/001"),
			}),
		},
		models.KindCourseForm: {
			approvedSubmission(t, "cf-1", "courseForm", "stu-ghost", nil, models.FieldMap{
				"name":         strPtr("BEN EZE"),
				"matricNumber": strPtr("ENG/2020/007"),
			}),
		},
	}}
	users := &userDirectoryStub{users: map[string]models.User{
		"stu-1":   {ID: "stu-1", FullName: "Ada Obi"},
		"staff-1": {ID: "staff-1", FullName: "Mr. Bello"},
	}}
	svc := NewAnalyticsService(store, users, nil, nil)

	groups, err := svc.ApprovedByCategory(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 2)

	// Categories keep the fixed dashboard ordering; empty ones are dropped.
	require.Equal(t, "College Due", groups[0].Category)
	require.Equal(t, "Course Form", groups[1].Category)

	first := groups[0].Receipts[0]
	require.Equal(t, "ADA OBI (College Due)", first.Name)
	require.Equal(t, "CSC/2021/001", first.DistinguishingID)
	require.Equal(t, "Ada Obi", first.UploadedBy)
	require.Equal(t, "Mr. Bello", first.ApprovedBy)

	// Unknown uploader and missing approver fall back to placeholders.
	second := groups[1].Receipts[0]
	require.Equal(t, "Unknown", second.UploadedBy)
	require.Equal(t, "N/A", second.ApprovedBy)
}

func TestAnalyticsApprovedByCategoryEmpty(t *testing.T) {
	store := &analyticsStoreStub{subs: map[models.Kind][]models.Submission{}}
	svc := NewAnalyticsService(store, &userDirectoryStub{}, nil, nil)

	_, err := svc.ApprovedByCategory(context.Background())
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestAnalyticsCounters(t *testing.T) {
	store := &analyticsStoreStub{approvedCount: 42, weekCount: 5, monthCount: 17}
	users := &userDirectoryStub{newStudents: 3}
	svc := NewAnalyticsService(store, users, nil, nil)
	svc.now = func() time.Time {
		// Wednesday, 11 March 2026.
		return time.Date(2026, 3, 11, 15, 30, 0, 0, time.UTC)
	}

	total, err := svc.ApprovedCount(context.Background())
	require.NoError(t, err)
	require.Equal(t, 42, total.Count)

	week, err := svc.ApprovedThisWeek(context.Background())
	require.NoError(t, err)
	require.Equal(t, 5, week.Count)
	require.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), store.weekFrom)
	require.Equal(t, time.Date(2026, 3, 15, 23, 59, 59, 0, time.UTC), store.weekTo)

	month, err := svc.UploadsThisMonth(context.Background())
	require.NoError(t, err)
	require.Equal(t, 17, month.Count)
	require.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), store.monthFrom)
	require.Equal(t, time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC), store.monthTo)

	newcomers, err := svc.NewStudentsThisMonth(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, newcomers.Count)
}

func TestAnalyticsWeekWindowOnSunday(t *testing.T) {
	// Sunday still belongs to the week that started the previous Monday.
	sunday := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	from, to := weekWindow(sunday)
	require.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), from)
	require.Equal(t, time.Date(2026, 3, 15, 23, 59, 59, 0, time.UTC), to)
}

func TestAnalyticsStudents(t *testing.T) {
	users := &userDirectoryStub{}
	svc := NewAnalyticsService(&analyticsStoreStub{}, users, nil, nil)

	_, err := svc.Students(context.Background())
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)

	users.students = []models.User{{ID: "stu-1", FullName: "Ada Obi"}}
	students, err := svc.Students(context.Background())
	require.NoError(t, err)
	require.Len(t, students, 1)
}

func TestAnalyticsApproverLeaderboard(t *testing.T) {
	store := &analyticsStoreStub{counts: []models.ApproverActivity{
		{ApproverID: "staff-1", Count: 9},
		{ApproverID: "staff-gone", Count: 2},
	}}
	users := &userDirectoryStub{users: map[string]models.User{
		"staff-1": {ID: "staff-1", FullName: "Mr. Bello"},
	}}
	svc := NewAnalyticsService(store, users, nil, nil)

	leaderboard, err := svc.ApproverLeaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, leaderboard, 2)
	require.Equal(t, "Mr. Bello", leaderboard[0].DisplayName)
	require.Equal(t, 9, leaderboard[0].Count)
	require.Equal(t, "Unknown", leaderboard[1].DisplayName)
}
