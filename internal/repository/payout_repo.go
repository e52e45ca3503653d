package repository

import (
	"context"
	"fmt"
	"time"

	"kidpoints/internal/database"
	"kidpoints/internal/models"
)

// PayoutRepository handles database operations for payout events
type PayoutRepository struct {
	q database.DBTX
}

// NewPayoutRepository creates a new payout repository
func NewPayoutRepository(q database.DBTX) *PayoutRepository {
	return &PayoutRepository{q: q}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *PayoutRepository) WithTx(tx database.DBTX) *PayoutRepository {
	return &PayoutRepository{q: tx}
}

// CreatePayout records the amount zeroed from a child's rollup
func (r *PayoutRepository) CreatePayout(ctx context.Context, childID int64, amount int) (*models.Payout, error) {
	query := "INSERT INTO payouts (child_id, amount) VALUES (?, ?)"
	id, err := r.q.ExecReturningID(ctx, query, childID, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to create payout: %w", err)
	}

	return &models.Payout{
		ID:        id,
		ChildID:   childID,
		Amount:    amount,
		CreatedAt: time.Now(),
	}, nil
}

// SumByChild returns the total amount ever paid out to a child
func (r *PayoutRepository) SumByChild(ctx context.Context, childID int64) (int, error) {
	query := "SELECT COALESCE(SUM(amount), 0) FROM payouts WHERE child_id = ?"
	var sum int
	if err := r.q.QueryRowContext(ctx, query, childID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum payouts: %w", err)
	}
	return sum, nil
}

// ListByChild retrieves a child's payout history newest-first
func (r *PayoutRepository) ListByChild(ctx context.Context, childID int64) ([]models.Payout, error) {
	query := "SELECT id, child_id, amount, created_at FROM payouts WHERE child_id = ? ORDER BY created_at DESC"
	rows, err := r.q.QueryContext(ctx, query, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payouts: %w", err)
	}
	defer rows.Close()

	var payouts []models.Payout
	for rows.Next() {
		var p models.Payout
		if err := rows.Scan(&p.ID, &p.ChildID, &p.Amount, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payout: %w", err)
		}
		payouts = append(payouts, p)
	}

	return payouts, rows.Err()
}

// DeleteByChild removes all payout rows for a child. Deleting absent rows is
// not an error.
func (r *PayoutRepository) DeleteByChild(ctx context.Context, childID int64) error {
	query := "DELETE FROM payouts WHERE child_id = ?"
	_, err := r.q.ExecContext(ctx, query, childID)
	if err != nil {
		return fmt.Errorf("failed to delete child payouts: %w", err)
	}
	return nil
}
