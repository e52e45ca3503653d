package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"kidpoints/internal/database"
	"kidpoints/internal/models"
	"kidpoints/internal/repository"
)

// DateLayout is the wire format for completion dates
const DateLayout = "2006-01-02"

// LedgerService records completions, approvals, discards, and payouts, and
// keeps each child's cached rollup consistent with the ledger.
//
// Crediting policy: points are credited to the rollup at completion time,
// not at approval time. Approval is advisory; it marks the event as seen by
// a parent but never changes the balance. Discarding a pending event is the
// only way to take recorded points back.
type LedgerService struct {
	db          *database.DB
	children    *repository.ChildRepository
	activities  *repository.ActivityRepository
	completions *repository.CompletionRepository
	payouts     *repository.PayoutRepository
}

// NewLedgerService creates a new ledger service
func NewLedgerService(db *database.DB, children *repository.ChildRepository, activities *repository.ActivityRepository, completions *repository.CompletionRepository, payouts *repository.PayoutRepository) *LedgerService {
	return &LedgerService{
		db:          db,
		children:    children,
		activities:  activities,
		completions: completions,
		payouts:     payouts,
	}
}

// RecordCompletion inserts a pending ledger row snapshotting the activity's
// current point value and credits the child's rollup, atomically. Completion
// is idempotent per day: a second recording for the same child, activity,
// and date fails with ErrDuplicate.
func (s *LedgerService) RecordCompletion(ctx context.Context, ownerID, childID, activityID int64, date string) (*models.CompletedActivity, error) {
	if date == "" {
		date = time.Now().Format(DateLayout)
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return nil, fmt.Errorf("%w: bad completion date %q", ErrInvalidInput, date)
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	child, err := s.children.WithTx(tx).GetChildByID(ctx, childID)
	if err != nil {
		return nil, err
	}
	if child == nil || child.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: child %d", ErrNotFound, childID)
	}

	activity, err := s.activities.WithTx(tx).GetActivityByID(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if activity == nil || activity.OwnerID != ownerID || !activity.Active {
		return nil, fmt.Errorf("%w: activity %d", ErrNotFound, activityID)
	}

	completions := s.completions.WithTx(tx)
	id, err := completions.CreateCompletion(ctx, childID, activityID, date, activity.Points)
	if err != nil {
		if s.db.Dialect.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: child %d, activity %d, %s", ErrDuplicate, childID, activityID, date)
		}
		return nil, err
	}

	if err := s.children.WithTx(tx).AdjustPoints(ctx, childID, activity.Points); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit completion: %w", err)
	}

	return &models.CompletedActivity{
		ID:            id,
		ChildID:       childID,
		ActivityID:    activityID,
		CompletedDate: date,
		PointsEarned:  activity.Points,
		State:         models.CompletionPending,
		CreatedAt:     time.Now(),
	}, nil
}

// ApproveCompletion transitions a pending completion to approved. Approved
// is terminal; the rollup is unchanged because points were already credited
// at completion time.
func (s *LedgerService) ApproveCompletion(ctx context.Context, ownerID, completionID int64) error {
	if _, err := s.getOwnedCompletion(ctx, s.db, ownerID, completionID); err != nil {
		return err
	}

	changed, err := s.completions.TransitionState(ctx, completionID, models.CompletionPending, models.CompletionApproved)
	if err != nil {
		return err
	}
	if !changed {
		return fmt.Errorf("%w: completion %d is not pending", ErrInvalidState, completionID)
	}
	return nil
}

// DiscardCompletion deletes a pending ledger row and reverses its rollup
// contribution, atomically. Approved completions are final and cannot be
// discarded.
func (s *LedgerService) DiscardCompletion(ctx context.Context, ownerID, completionID int64) error {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	completion, err := s.getOwnedCompletion(ctx, tx, ownerID, completionID)
	if err != nil {
		return err
	}
	if completion.State != models.CompletionPending {
		return fmt.Errorf("%w: completion %d is %s", ErrInvalidState, completionID, completion.State)
	}

	if err := s.completions.WithTx(tx).DeleteCompletion(ctx, completionID); err != nil {
		return err
	}
	if err := s.children.WithTx(tx).AdjustPoints(ctx, completion.ChildID, -completion.PointsEarned); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit discard: %w", err)
	}
	return nil
}

// Payout zeroes a child's rollup and records the redeemed amount as a payout
// event. Ledger rows are untouched: after a payout the rollup, not the
// ledger sum, is the source of truth for the current balance.
func (s *LedgerService) Payout(ctx context.Context, ownerID, childID int64) (int, error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	child, err := s.children.WithTx(tx).GetChildByID(ctx, childID)
	if err != nil {
		return 0, err
	}
	if child == nil || child.OwnerID != ownerID {
		return 0, fmt.Errorf("%w: child %d", ErrNotFound, childID)
	}

	amount := child.TotalPoints
	if amount != 0 {
		if _, err := s.payouts.WithTx(tx).CreatePayout(ctx, childID, amount); err != nil {
			return 0, err
		}
		if err := s.children.WithTx(tx).SetPoints(ctx, childID, 0); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit payout: %w", err)
	}
	return amount, nil
}

// ReconcileChild recomputes a child's rollup from the ledger minus recorded
// payouts and repairs the cached value if it drifted, for example after a
// crash between a ledger insert and the rollup update. Returns the
// reconciled balance.
func (s *LedgerService) ReconcileChild(ctx context.Context, childID int64) (int, error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	child, err := s.children.WithTx(tx).GetChildByID(ctx, childID)
	if err != nil {
		return 0, err
	}
	if child == nil {
		return 0, fmt.Errorf("%w: child %d", ErrNotFound, childID)
	}

	earned, err := s.completions.WithTx(tx).SumPointsByChild(ctx, childID)
	if err != nil {
		return 0, err
	}
	paid, err := s.payouts.WithTx(tx).SumByChild(ctx, childID)
	if err != nil {
		return 0, err
	}

	want := earned - paid
	if want != child.TotalPoints {
		log.Printf("Reconciling child %d rollup: cached %d, ledger says %d", childID, child.TotalPoints, want)
		if err := s.children.WithTx(tx).SetPoints(ctx, childID, want); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit reconciliation: %w", err)
	}
	return want, nil
}

// ListCompletions retrieves an owner's ledger newest-first, optionally
// filtered to rows still awaiting approval.
func (s *LedgerService) ListCompletions(ctx context.Context, ownerID int64, pendingOnly bool) ([]models.CompletionDetail, error) {
	return s.completions.ListByOwner(ctx, ownerID, pendingOnly)
}

// getOwnedCompletion loads a completion and verifies it belongs to one of
// the owner's children.
func (s *LedgerService) getOwnedCompletion(ctx context.Context, q database.DBTX, ownerID, completionID int64) (*models.CompletedActivity, error) {
	completion, err := s.completions.WithTx(q).GetCompletionByID(ctx, completionID)
	if err != nil {
		return nil, err
	}
	if completion == nil {
		return nil, fmt.Errorf("%w: completion %d", ErrNotFound, completionID)
	}

	child, err := s.children.WithTx(q).GetChildByID(ctx, completion.ChildID)
	if err != nil {
		return nil, err
	}
	if child == nil || child.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: completion %d", ErrNotFound, completionID)
	}

	return completion, nil
}
