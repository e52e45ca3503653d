package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"kidpoints/internal/database"
	"kidpoints/internal/models"
)

// ChildRepository handles database operations for children
type ChildRepository struct {
	q database.DBTX
}

// NewChildRepository creates a new child repository
func NewChildRepository(q database.DBTX) *ChildRepository {
	return &ChildRepository{q: q}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *ChildRepository) WithTx(tx database.DBTX) *ChildRepository {
	return &ChildRepository{q: tx}
}

// CreateChild creates a new child profile with a zero rollup
func (r *ChildRepository) CreateChild(ctx context.Context, ownerID int64, name, avatarRef string) (*models.Child, error) {
	query := "INSERT INTO children (owner_id, name, avatar_ref, total_points) VALUES (?, ?, ?, 0)"
	id, err := r.q.ExecReturningID(ctx, query, ownerID, name, avatarRef)
	if err != nil {
		return nil, fmt.Errorf("failed to create child: %w", err)
	}

	return &models.Child{
		ID:        id,
		OwnerID:   ownerID,
		Name:      name,
		AvatarRef: avatarRef,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}, nil
}

// GetChildByID retrieves a child by ID. Returns (nil, nil) when absent.
func (r *ChildRepository) GetChildByID(ctx context.Context, childID int64) (*models.Child, error) {
	query := "SELECT id, owner_id, name, avatar_ref, total_points, created_at, updated_at FROM children WHERE id = ?"
	child := &models.Child{}
	err := r.q.QueryRowContext(ctx, query, childID).Scan(
		&child.ID,
		&child.OwnerID,
		&child.Name,
		&child.AvatarRef,
		&child.TotalPoints,
		&child.CreatedAt,
		&child.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}

	return child, nil
}

// GetOwnerChildren retrieves all children in a family account
func (r *ChildRepository) GetOwnerChildren(ctx context.Context, ownerID int64) ([]models.Child, error) {
	query := `
		SELECT id, owner_id, name, avatar_ref, total_points, created_at, updated_at
		FROM children
		WHERE owner_id = ?
		ORDER BY created_at ASC
	`
	rows, err := r.q.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query children: %w", err)
	}
	defer rows.Close()

	var children []models.Child
	for rows.Next() {
		var child models.Child
		if err := rows.Scan(
			&child.ID,
			&child.OwnerID,
			&child.Name,
			&child.AvatarRef,
			&child.TotalPoints,
			&child.CreatedAt,
			&child.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan child: %w", err)
		}
		children = append(children, child)
	}

	return children, rows.Err()
}

// UpdateName updates a child's name
func (r *ChildRepository) UpdateName(ctx context.Context, childID int64, name string) error {
	query := "UPDATE children SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	_, err := r.q.ExecContext(ctx, query, name, childID)
	if err != nil {
		return fmt.Errorf("failed to update child: %w", err)
	}
	return nil
}

// UpdateAvatarRef updates a child's avatar reference
func (r *ChildRepository) UpdateAvatarRef(ctx context.Context, childID int64, avatarRef string) error {
	query := "UPDATE children SET avatar_ref = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	_, err := r.q.ExecContext(ctx, query, avatarRef, childID)
	if err != nil {
		return fmt.Errorf("failed to update child avatar: %w", err)
	}
	return nil
}

// AdjustPoints applies a signed delta to the child's cached rollup
func (r *ChildRepository) AdjustPoints(ctx context.Context, childID int64, delta int) error {
	query := "UPDATE children SET total_points = total_points + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	_, err := r.q.ExecContext(ctx, query, delta, childID)
	if err != nil {
		return fmt.Errorf("failed to adjust child points: %w", err)
	}
	return nil
}

// SetPoints overwrites the child's cached rollup. Used by payout and by the
// reconciliation repair pass only.
func (r *ChildRepository) SetPoints(ctx context.Context, childID int64, points int) error {
	query := "UPDATE children SET total_points = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	_, err := r.q.ExecContext(ctx, query, points, childID)
	if err != nil {
		return fmt.Errorf("failed to set child points: %w", err)
	}
	return nil
}

// ListByAvatarFragment retrieves children whose avatar reference contains
// the given fragment. Used to find avatars still parked on a temporary key.
func (r *ChildRepository) ListByAvatarFragment(ctx context.Context, fragment string) ([]models.Child, error) {
	query := `
		SELECT id, owner_id, name, avatar_ref, total_points, created_at, updated_at
		FROM children
		WHERE avatar_ref LIKE ?
	`
	rows, err := r.q.QueryContext(ctx, query, "%"+fragment+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to query children by avatar prefix: %w", err)
	}
	defer rows.Close()

	var children []models.Child
	for rows.Next() {
		var child models.Child
		if err := rows.Scan(
			&child.ID,
			&child.OwnerID,
			&child.Name,
			&child.AvatarRef,
			&child.TotalPoints,
			&child.CreatedAt,
			&child.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan child: %w", err)
		}
		children = append(children, child)
	}

	return children, rows.Err()
}

// DeleteChild deletes a child profile. Deleting an absent row is not an error.
func (r *ChildRepository) DeleteChild(ctx context.Context, childID int64) error {
	query := "DELETE FROM children WHERE id = ?"
	_, err := r.q.ExecContext(ctx, query, childID)
	if err != nil {
		return fmt.Errorf("failed to delete child: %w", err)
	}
	return nil
}
