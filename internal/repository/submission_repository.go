package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/eduvault/eduvault-api/internal/models"
)

const submissionColumns = `id, kind, owner_id, level, status, extracted_fields, artifact_ref, file_name,
       approved_by, approved_at, rejected_by, rejected_at, rejection_reason, uploaded_at, updated_at`

// SubmissionRepository persists document submissions across all kinds.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs the repository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Create stores a new submission row.
func (r *SubmissionRepository) Create(ctx context.Context, sub *models.Submission) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if sub.UploadedAt.IsZero() {
		sub.UploadedAt = now
	}
	sub.UpdatedAt = now
	const query = `INSERT INTO submissions
	(id, kind, owner_id, level, status, extracted_fields, artifact_ref, file_name, uploaded_at, updated_at)
	VALUES (:id, :kind, :owner_id, :level, :status, :extracted_fields, :artifact_ref, :file_name, :uploaded_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, sub); err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

// GetByID retrieves one submission of the given kind.
func (r *SubmissionRepository) GetByID(ctx context.Context, kind models.Kind, id string) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1 AND kind = $2`
	var sub models.Submission
	if err := r.db.GetContext(ctx, &sub, query, id, kind); err != nil {
		return nil, err
	}
	return &sub, nil
}

// List returns submissions matching the filter, newest first.
func (r *SubmissionRepository) List(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, error) {
	builder := strings.Builder{}
	builder.WriteString(`SELECT ` + submissionColumns + ` FROM submissions`)
	args := make([]interface{}, 0, 4)
	conditions := make([]string, 0, 4)

	if filter.Kind != "" {
		args = append(args, filter.Kind)
		conditions = append(conditions, fmt.Sprintf("kind = $%d", len(args)))
	}
	if filter.OwnerID != "" {
		args = append(args, filter.OwnerID)
		conditions = append(conditions, fmt.Sprintf("owner_id = $%d", len(args)))
	}
	if filter.Level != "" {
		args = append(args, filter.Level)
		conditions = append(conditions, fmt.Sprintf("level = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY uploaded_at DESC")

	var records []models.Submission
	if err := r.db.SelectContext(ctx, &records, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return records, nil
}

// HasActive reports whether the owner already holds a non-rejected submission
// for the kind and level.
func (r *SubmissionRepository) HasActive(ctx context.Context, kind models.Kind, ownerID string, level models.Level) (bool, error) {
	const query = `SELECT EXISTS (
	SELECT 1 FROM submissions WHERE kind = $1 AND owner_id = $2 AND level = $3 AND status <> $4)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, kind, ownerID, level, models.StatusRejected); err != nil {
		return false, fmt.Errorf("check active submission: %w", err)
	}
	return exists, nil
}

// LatestByOwner returns the owner's most recent submission of the kind.
func (r *SubmissionRepository) LatestByOwner(ctx context.Context, kind models.Kind, ownerID string) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions
	WHERE kind = $1 AND owner_id = $2 ORDER BY uploaded_at DESC LIMIT 1`
	var sub models.Submission
	if err := r.db.GetContext(ctx, &sub, query, kind, ownerID); err != nil {
		return nil, err
	}
	return &sub, nil
}

// MarkApproved finalizes a pending submission as approved. Returns the number
// of rows changed; zero means the row was no longer pending.
func (r *SubmissionRepository) MarkApproved(ctx context.Context, kind models.Kind, id, approverID string, at time.Time) (int64, error) {
	const query = `UPDATE submissions
	SET status = $4, approved_by = $5, approved_at = $6, updated_at = $6
	WHERE id = $1 AND kind = $2 AND status = $3`
	res, err := r.db.ExecContext(ctx, query, id, kind, models.StatusPending, models.StatusApproved, approverID, at)
	if err != nil {
		return 0, fmt.Errorf("approve submission: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check approve rows: %w", err)
	}
	return affected, nil
}

// MarkRejected finalizes a pending submission as rejected with a reason.
// Returns the number of rows changed; zero means the row was no longer pending.
func (r *SubmissionRepository) MarkRejected(ctx context.Context, kind models.Kind, id, rejectorID, reason string, at time.Time) (int64, error) {
	const query = `UPDATE submissions
	SET status = $4, rejected_by = $5, rejection_reason = $6, rejected_at = $7, updated_at = $7
	WHERE id = $1 AND kind = $2 AND status = $3`
	res, err := r.db.ExecContext(ctx, query, id, kind, models.StatusPending, models.StatusRejected, rejectorID, reason, at)
	if err != nil {
		return 0, fmt.Errorf("reject submission: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check reject rows: %w", err)
	}
	return affected, nil
}

// CountByStatus counts submissions of a kind in the given status.
func (r *SubmissionRepository) CountByStatus(ctx context.Context, kind models.Kind, status models.Status) (int, error) {
	const query = `SELECT COUNT(*) FROM submissions WHERE kind = $1 AND status = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, kind, status); err != nil {
		return 0, fmt.Errorf("count submissions by status: %w", err)
	}
	return count, nil
}

// CountApprovedBetween counts approvals of a kind within [from, to].
func (r *SubmissionRepository) CountApprovedBetween(ctx context.Context, kind models.Kind, from, to time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM submissions
	WHERE kind = $1 AND status = $2 AND approved_at BETWEEN $3 AND $4`
	var count int
	if err := r.db.GetContext(ctx, &count, query, kind, models.StatusApproved, from, to); err != nil {
		return 0, fmt.Errorf("count approved submissions: %w", err)
	}
	return count, nil
}

// CountUploadedBetween counts uploads of a kind within [from, to].
func (r *SubmissionRepository) CountUploadedBetween(ctx context.Context, kind models.Kind, from, to time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM submissions
	WHERE kind = $1 AND uploaded_at BETWEEN $2 AND $3`
	var count int
	if err := r.db.GetContext(ctx, &count, query, kind, from, to); err != nil {
		return 0, fmt.Errorf("count uploaded submissions: %w", err)
	}
	return count, nil
}

// ApproverCounts groups approved submissions of every kind by approver.
func (r *SubmissionRepository) ApproverCounts(ctx context.Context) ([]models.ApproverActivity, error) {
	const query = `SELECT approved_by, COUNT(*) AS count FROM submissions
	WHERE status = $1 AND approved_by IS NOT NULL
	GROUP BY approved_by ORDER BY count DESC`
	var records []models.ApproverActivity
	if err := r.db.SelectContext(ctx, &records, query, models.StatusApproved); err != nil {
		return nil, fmt.Errorf("count approvals by approver: %w", err)
	}
	return records, nil
}

// ApproverCountsBetween restricts the approver grouping to a time window.
func (r *SubmissionRepository) ApproverCountsBetween(ctx context.Context, from, to time.Time) ([]models.ApproverActivity, error) {
	const query = `SELECT approved_by, COUNT(*) AS count FROM submissions
	WHERE status = $1 AND approved_by IS NOT NULL AND approved_at BETWEEN $2 AND $3
	GROUP BY approved_by ORDER BY count DESC`
	var records []models.ApproverActivity
	if err := r.db.SelectContext(ctx, &records, query, models.StatusApproved, from, to); err != nil {
		return nil, fmt.Errorf("count approvals in window: %w", err)
	}
	return records, nil
}
