package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"kidpoints/internal/database"
	"kidpoints/internal/models"
)

// OwnerRepository handles database operations for family accounts
type OwnerRepository struct {
	q database.DBTX
}

// NewOwnerRepository creates a new owner repository
func NewOwnerRepository(q database.DBTX) *OwnerRepository {
	return &OwnerRepository{q: q}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *OwnerRepository) WithTx(tx database.DBTX) *OwnerRepository {
	return &OwnerRepository{q: tx}
}

// CreateOwner creates a new family account
func (r *OwnerRepository) CreateOwner(ctx context.Context, displayName string) (*models.Owner, error) {
	query := "INSERT INTO owners (display_name) VALUES (?)"
	id, err := r.q.ExecReturningID(ctx, query, displayName)
	if err != nil {
		return nil, fmt.Errorf("failed to create owner: %w", err)
	}

	return &models.Owner{
		ID:          id,
		DisplayName: displayName,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}, nil
}

// GetOwnerByID retrieves an owner by ID. Returns (nil, nil) when absent.
func (r *OwnerRepository) GetOwnerByID(ctx context.Context, ownerID int64) (*models.Owner, error) {
	query := "SELECT id, display_name, secret_hash, created_at, updated_at FROM owners WHERE id = ?"
	owner := &models.Owner{}
	err := r.q.QueryRowContext(ctx, query, ownerID).Scan(
		&owner.ID,
		&owner.DisplayName,
		&owner.SecretHash,
		&owner.CreatedAt,
		&owner.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get owner: %w", err)
	}

	return owner, nil
}

// UpdateDisplayName updates the account's display name
func (r *OwnerRepository) UpdateDisplayName(ctx context.Context, ownerID int64, displayName string) error {
	query := "UPDATE owners SET display_name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	_, err := r.q.ExecContext(ctx, query, displayName, ownerID)
	if err != nil {
		return fmt.Errorf("failed to update owner name: %w", err)
	}
	return nil
}

// UpdateSecretHash stores a new parent secret hash
func (r *OwnerRepository) UpdateSecretHash(ctx context.Context, ownerID int64, secretHash string) error {
	query := "UPDATE owners SET secret_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	_, err := r.q.ExecContext(ctx, query, secretHash, ownerID)
	if err != nil {
		return fmt.Errorf("failed to update owner secret: %w", err)
	}
	return nil
}

// DeleteOwner deletes an owner record. Deleting an absent row is not an error.
func (r *OwnerRepository) DeleteOwner(ctx context.Context, ownerID int64) error {
	query := "DELETE FROM owners WHERE id = ?"
	_, err := r.q.ExecContext(ctx, query, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete owner: %w", err)
	}
	return nil
}
