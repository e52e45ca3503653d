package repository

import (
	"context"
	"database/sql"
	"fmt"

	"kidpoints/internal/database"
	"kidpoints/internal/models"
)

// CompletionRepository handles database operations for the points ledger
type CompletionRepository struct {
	q database.DBTX
}

// NewCompletionRepository creates a new completion repository
func NewCompletionRepository(q database.DBTX) *CompletionRepository {
	return &CompletionRepository{q: q}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *CompletionRepository) WithTx(tx database.DBTX) *CompletionRepository {
	return &CompletionRepository{q: tx}
}

// CreateCompletion inserts a pending ledger row. The store's unique
// constraint on (child_id, activity_id, completed_date) is the caller's
// signal for duplicate same-day completions; errors are wrapped with %w so
// the dialect can classify them.
func (r *CompletionRepository) CreateCompletion(ctx context.Context, childID, activityID int64, completedDate string, pointsEarned int) (int64, error) {
	query := `
		INSERT INTO completed_activities (child_id, activity_id, completed_date, points_earned, state)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := r.q.ExecReturningID(ctx, query, childID, activityID, completedDate, pointsEarned, models.CompletionPending)
	if err != nil {
		return 0, fmt.Errorf("failed to create completion: %w", err)
	}
	return id, nil
}

// GetCompletionByID retrieves a ledger row by ID. Returns (nil, nil) when absent.
func (r *CompletionRepository) GetCompletionByID(ctx context.Context, id int64) (*models.CompletedActivity, error) {
	query := `
		SELECT id, child_id, activity_id, completed_date, points_earned, state, created_at
		FROM completed_activities WHERE id = ?
	`
	c := &models.CompletedActivity{}
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&c.ID,
		&c.ChildID,
		&c.ActivityID,
		&c.CompletedDate,
		&c.PointsEarned,
		&c.State,
		&c.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get completion: %w", err)
	}

	return c, nil
}

// TransitionState moves a ledger row from one state to another and reports
// whether a row actually changed. A zero count means the row was absent or
// not in the expected source state.
func (r *CompletionRepository) TransitionState(ctx context.Context, id int64, from, to string) (bool, error) {
	query := "UPDATE completed_activities SET state = ? WHERE id = ? AND state = ?"
	result, err := r.q.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return false, fmt.Errorf("failed to transition completion state: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// DeleteCompletion removes a ledger row. Deleting an absent row is not an error.
func (r *CompletionRepository) DeleteCompletion(ctx context.Context, id int64) error {
	query := "DELETE FROM completed_activities WHERE id = ?"
	_, err := r.q.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete completion: %w", err)
	}
	return nil
}

// DeleteByChild removes all ledger rows for a child. Used by child removal
// and account deletion; both are idempotent.
func (r *CompletionRepository) DeleteByChild(ctx context.Context, childID int64) error {
	query := "DELETE FROM completed_activities WHERE child_id = ?"
	_, err := r.q.ExecContext(ctx, query, childID)
	if err != nil {
		return fmt.Errorf("failed to delete child completions: %w", err)
	}
	return nil
}

// SumPointsByChild returns the sum of points_earned over the child's ledger
// rows. Discarded completions are deleted, so every stored row counts.
func (r *CompletionRepository) SumPointsByChild(ctx context.Context, childID int64) (int, error) {
	query := "SELECT COALESCE(SUM(points_earned), 0) FROM completed_activities WHERE child_id = ?"
	var sum int
	if err := r.q.QueryRowContext(ctx, query, childID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum completions: %w", err)
	}
	return sum, nil
}

// CountByChild returns the number of ledger rows for a child
func (r *CompletionRepository) CountByChild(ctx context.Context, childID int64) (int, error) {
	query := "SELECT COUNT(*) FROM completed_activities WHERE child_id = ?"
	var count int
	if err := r.q.QueryRowContext(ctx, query, childID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count completions: %w", err)
	}
	return count, nil
}

// ListByOwner retrieves an owner's ledger rows newest-first, joined with the
// child and activity display fields. When pendingOnly is set, only rows
// awaiting parent approval are returned.
func (r *CompletionRepository) ListByOwner(ctx context.Context, ownerID int64, pendingOnly bool) ([]models.CompletionDetail, error) {
	query := `
		SELECT ca.id, ca.child_id, ca.activity_id, ca.completed_date, ca.points_earned, ca.state, ca.created_at,
		       c.name, a.name, a.icon
		FROM completed_activities ca
		JOIN children c ON ca.child_id = c.id
		JOIN activities a ON ca.activity_id = a.id
		WHERE c.owner_id = ?
	`
	args := []interface{}{ownerID}
	if pendingOnly {
		query += " AND ca.state = ?"
		args = append(args, models.CompletionPending)
	}
	query += " ORDER BY ca.completed_date DESC, ca.id DESC"

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query completions: %w", err)
	}
	defer rows.Close()

	var details []models.CompletionDetail
	for rows.Next() {
		var d models.CompletionDetail
		if err := rows.Scan(
			&d.ID,
			&d.ChildID,
			&d.ActivityID,
			&d.CompletedDate,
			&d.PointsEarned,
			&d.State,
			&d.CreatedAt,
			&d.ChildName,
			&d.ActivityName,
			&d.ActivityIcon,
		); err != nil {
			return nil, fmt.Errorf("failed to scan completion: %w", err)
		}
		details = append(details, d)
	}

	return details, rows.Err()
}
