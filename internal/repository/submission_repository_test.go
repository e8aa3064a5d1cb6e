package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/eduvault/eduvault-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func submissionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "kind", "owner_id", "level", "status", "extracted_fields", "artifact_ref", "file_name",
		"approved_by", "approved_at", "rejected_by", "rejected_at", "rejection_reason", "uploaded_at", "updated_at",
	})
}

func TestSubmissionRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSubmissionRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO submissions")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	sub := &models.Submission{
		Kind:        models.KindCollegeDue,
		OwnerID:     "student-1",
		Level:       models.Level200,
		Status:      models.StatusPending,
		ArtifactRef: "https://files.example/receipt.pdf",
		FileName:    "receipt.pdf",
	}
	require.NoError(t, sub.SetFields(models.FieldMap{}))
	require.NoError(t, repo.Create(context.Background(), sub))
	require.NotEmpty(t, sub.ID)

	rows := submissionRows().AddRow(
		sub.ID, sub.Kind, sub.OwnerID, sub.Level, sub.Status, []byte(`{}`), sub.ArtifactRef, sub.FileName,
		nil, nil, nil, nil, nil, time.Now(), time.Now(),
	)
	mock.ExpectQuery(regexp.QuoteMeta("FROM submissions WHERE id = $1 AND kind = $2")).
		WithArgs(sub.ID, models.KindCollegeDue).
		WillReturnRows(rows)

	found, err := repo.GetByID(context.Background(), models.KindCollegeDue, sub.ID)
	require.NoError(t, err)
	require.Equal(t, sub.ID, found.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSubmissionRepository(db)
	rows := submissionRows().AddRow(
		"sub-1", models.KindDeptDue, "student-1", models.Level300, models.StatusApproved,
		[]byte(`{}`), "ref", "due.pdf", "staff-1", time.Now(), nil, nil, nil, time.Now(), time.Now(),
	)
	mock.ExpectQuery(regexp.QuoteMeta("kind = $1 AND owner_id = $2 AND level = $3 AND status = $4")).
		WithArgs(models.KindDeptDue, "student-1", models.Level300, models.StatusApproved).
		WillReturnRows(rows)

	items, err := repo.List(context.Background(), models.SubmissionFilter{
		Kind:    models.KindDeptDue,
		OwnerID: "student-1",
		Level:   models.Level300,
		Status:  models.StatusApproved,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "sub-1", items[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryHasActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSubmissionRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs(models.KindCollegeDue, "student-1", models.Level200, models.StatusRejected).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	active, err := repo.HasActive(context.Background(), models.KindCollegeDue, "student-1", models.Level200)
	require.NoError(t, err)
	require.True(t, active)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryMarkApprovedOnlyTouchesPendingRows(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSubmissionRepository(db)
	at := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE submissions")).
		WithArgs("sub-1", models.KindCollegeDue, models.StatusPending, models.StatusApproved, "staff-1", at).
		WillReturnResult(sqlmock.NewResult(0, 0))

	affected, err := repo.MarkApproved(context.Background(), models.KindCollegeDue, "sub-1", "staff-1", at)
	require.NoError(t, err)
	require.Zero(t, affected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryMarkRejected(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSubmissionRepository(db)
	at := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE submissions")).
		WithArgs("sub-1", models.KindCourseForm, models.StatusPending, models.StatusRejected, "staff-2", "blurry scan", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.MarkRejected(context.Background(), models.KindCourseForm, "sub-1", "staff-2", "blurry scan", at)
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryApproverCounts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSubmissionRepository(db)
	rows := sqlmock.NewRows([]string{"approved_by", "count"}).
		AddRow("staff-1", 7).
		AddRow("staff-2", 3)
	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY approved_by")).
		WithArgs(models.StatusApproved).
		WillReturnRows(rows)

	counts, err := repo.ApproverCounts(context.Background())
	require.NoError(t, err)
	require.Len(t, counts, 2)
	require.Equal(t, "staff-1", counts[0].ApproverID)
	require.Equal(t, 7, counts[0].Count)
	require.NoError(t, mock.ExpectationsWereMet())
}
