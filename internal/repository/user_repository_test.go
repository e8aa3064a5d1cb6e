package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/eduvault/eduvault-api/internal/models"
)

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "full_name", "matric_number", "role", "active", "created_at", "updated_at",
	})
}

func TestUserRepositoryFindByIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	rows := userRows().
		AddRow("u-1", "a@x.edu", "Ada Obi", nil, models.RoleStudent, true, time.Now(), time.Now()).
		AddRow("u-2", "b@x.edu", "Bola Ade", nil, models.RoleStaff, true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id IN")).
		WithArgs("u-1", "u-2").
		WillReturnRows(rows)

	users, err := repo.FindByIDs(context.Background(), []string{"u-1", "u-2"})
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindByIDsEmptyInputSkipsQuery(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	users, err := repo.FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, users)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCountByRoleCreatedBetween(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0).Add(-time.Nanosecond)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users")).
		WithArgs(models.RoleStudent, from, to).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.CountByRoleCreatedBetween(context.Background(), models.RoleStudent, from, to)
	require.NoError(t, err)
	require.Equal(t, 4, count)
	require.NoError(t, mock.ExpectationsWereMet())
}
