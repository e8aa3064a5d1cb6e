package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/eduvault/eduvault-api/internal/models"
)

const userColumns = `id, email, full_name, matric_number, role, active, created_at, updated_at`

// UserRepository reads the account directory. Accounts are provisioned by the
// identity provider; this service never writes them.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs the repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID retrieves one user row.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDs retrieves users for a batch of ids in a single query.
func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT `+userColumns+` FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build user batch query: %w", err)
	}
	query = r.db.Rebind(query)
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("find users by ids: %w", err)
	}
	return users, nil
}

// FindByEmail retrieves one user row by email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListByRole returns active users holding the role, ordered by name.
func (r *UserRepository) ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = $1 AND active ORDER BY full_name`
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, role); err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	return users, nil
}

// CountByRoleCreatedBetween counts accounts of a role created in [from, to].
func (r *UserRepository) CountByRoleCreatedBetween(ctx context.Context, role models.UserRole, from, to time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM users WHERE role = $1 AND created_at BETWEEN $2 AND $3`
	var count int
	if err := r.db.GetContext(ctx, &count, query, role, from, to); err != nil {
		return 0, fmt.Errorf("count users by role: %w", err)
	}
	return count, nil
}
