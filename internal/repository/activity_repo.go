package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"kidpoints/internal/database"
	"kidpoints/internal/models"
)

// ActivityRepository handles database operations for activity templates
type ActivityRepository struct {
	q database.DBTX
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(q database.DBTX) *ActivityRepository {
	return &ActivityRepository{q: q}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *ActivityRepository) WithTx(tx database.DBTX) *ActivityRepository {
	return &ActivityRepository{q: tx}
}

// CreateActivity creates a new active activity template
func (r *ActivityRepository) CreateActivity(ctx context.Context, a models.Activity) (*models.Activity, error) {
	query := `
		INSERT INTO activities (owner_id, name, description, icon, points, category, active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.q.ExecReturningID(ctx, query, a.OwnerID, a.Name, a.Description, a.Icon, a.Points, a.Category, true)
	if err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}

	a.ID = id
	a.Active = true
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()
	return &a, nil
}

// GetActivityByID retrieves an activity by ID, active or not.
// Returns (nil, nil) when absent.
func (r *ActivityRepository) GetActivityByID(ctx context.Context, activityID int64) (*models.Activity, error) {
	query := `
		SELECT id, owner_id, name, description, icon, points, category, active, created_at, updated_at
		FROM activities WHERE id = ?
	`
	activity := &models.Activity{}
	err := r.q.QueryRowContext(ctx, query, activityID).Scan(
		&activity.ID,
		&activity.OwnerID,
		&activity.Name,
		&activity.Description,
		&activity.Icon,
		&activity.Points,
		&activity.Category,
		&activity.Active,
		&activity.CreatedAt,
		&activity.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}

	return activity, nil
}

// GetActiveActivities retrieves all active activities for an owner
func (r *ActivityRepository) GetActiveActivities(ctx context.Context, ownerID int64) ([]models.Activity, error) {
	query := `
		SELECT id, owner_id, name, description, icon, points, category, active, created_at, updated_at
		FROM activities
		WHERE owner_id = ? AND active = ?
		ORDER BY created_at ASC
	`
	rows, err := r.q.QueryContext(ctx, query, ownerID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	var activities []models.Activity
	for rows.Next() {
		var activity models.Activity
		if err := rows.Scan(
			&activity.ID,
			&activity.OwnerID,
			&activity.Name,
			&activity.Description,
			&activity.Icon,
			&activity.Points,
			&activity.Category,
			&activity.Active,
			&activity.CreatedAt,
			&activity.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, activity)
	}

	return activities, rows.Err()
}

// UpdateActivity updates an activity's template fields. Ledger snapshots are
// never touched here; past completions keep the points they recorded.
func (r *ActivityRepository) UpdateActivity(ctx context.Context, activityID int64, name, description, icon string, points int, category string) error {
	query := `
		UPDATE activities
		SET name = ?, description = ?, icon = ?, points = ?, category = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := r.q.ExecContext(ctx, query, name, description, icon, points, category, activityID)
	if err != nil {
		return fmt.Errorf("failed to update activity: %w", err)
	}
	return nil
}

// DeactivateActivity soft-deletes an activity
func (r *ActivityRepository) DeactivateActivity(ctx context.Context, activityID int64) error {
	query := "UPDATE activities SET active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	_, err := r.q.ExecContext(ctx, query, false, activityID)
	if err != nil {
		return fmt.Errorf("failed to deactivate activity: %w", err)
	}
	return nil
}

// DeleteByOwner deletes all activities belonging to an owner. Used only by
// full account deletion; normal removal is a soft delete.
func (r *ActivityRepository) DeleteByOwner(ctx context.Context, ownerID int64) error {
	query := "DELETE FROM activities WHERE owner_id = ?"
	_, err := r.q.ExecContext(ctx, query, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete owner activities: %w", err)
	}
	return nil
}
