package service

import (
	"context"
	"errors"
	"testing"

	"kidpoints/internal/models"
)

func TestRecordCompletionCreditsRollup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	child := env.mustAddChild(t, "Ana")
	activity := env.mustAddActivity(t, "Read 20 minutes", 10)

	completion, err := env.ledger.RecordCompletion(ctx, env.ownerID, child.ID, activity.ID, "2025-03-01")
	if err != nil {
		t.Fatalf("RecordCompletion failed: %v", err)
	}

	if completion.State != models.CompletionPending {
		t.Errorf("Expected pending state, got %s", completion.State)
	}
	if completion.PointsEarned != 10 {
		t.Errorf("Expected 10 points earned, got %d", completion.PointsEarned)
	}
	if got := env.childPoints(t, child.ID); got != 10 {
		t.Errorf("Expected rollup 10, got %d", got)
	}
}

func TestRecordCompletionSameDayDuplicate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	child := env.mustAddChild(t, "Ana")
	activity := env.mustAddActivity(t, "Make bed", 5)

	if _, err := env.ledger.RecordCompletion(ctx, env.ownerID, child.ID, activity.ID, "2025-03-01"); err != nil {
		t.Fatalf("First RecordCompletion failed: %v", err)
	}

	_, err := env.ledger.RecordCompletion(ctx, env.ownerID, child.ID, activity.ID, "2025-03-01")
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("Expected ErrDuplicate for same-day repeat, got %v", err)
	}

	// Rollup must be untouched by the rejected insert
	if got := env.childPoints(t, child.ID); got != 5 {
		t.Errorf("Expected rollup 5 after rejected duplicate, got %d", got)
	}

	// A different date is a fresh completion
	if _, err := env.ledger.RecordCompletion(ctx, env.ownerID, child.ID, activity.ID, "2025-03-02"); err != nil {
		t.Fatalf("RecordCompletion on a new date failed: %v", err)
	}
	if got := env.childPoints(t, child.ID); got != 10 {
		t.Errorf("Expected rollup 10 after second day, got %d", got)
	}
}

func TestRecordCompletionValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	child := env.mustAddChild(t, "Ana")
	activity := env.mustAddActivity(t, "Homework", 8)

	tests := []struct {
		name       string
		childID    int64
		activityID int64
		date       string
		wantErr    error
	}{
		{"unknown child", 9999, activity.ID, "2025-03-01", ErrNotFound},
		{"unknown activity", child.ID, 9999, "2025-03-01", ErrNotFound},
		{"malformed date", child.ID, activity.ID, "03/01/2025", ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.ledger.RecordCompletion(ctx, env.ownerID, tt.childID, tt.activityID, tt.date)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRecordCompletionRetiredActivity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	child := env.mustAddChild(t, "Ana")
	activity := env.mustAddActivity(t, "Old chore", 5)

	if err := env.catalog.RemoveActivity(ctx, env.ownerID, activity.ID); err != nil {
		t.Fatalf("RemoveActivity failed: %v", err)
	}

	_, err := env.ledger.RecordCompletion(ctx, env.ownerID, child.ID, activity.ID, "2025-03-01")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for retired activity, got %v", err)
	}
}

func TestDiscardCompletionRestoresRollup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	child := env.mustAddChild(t, "Ben")
	activity := env.mustAddActivity(t, "Dishes", 7)

	completion, err := env.ledger.RecordCompletion(ctx, env.ownerID, child.ID, activity.ID, "2025-03-01")
	if err != nil {
		t.Fatalf("RecordCompletion failed: %v", err)
	}

	if err := env.ledger.DiscardCompletion(ctx, env.ownerID, completion.ID); err != nil {
		t.Fatalf("DiscardCompletion failed: %v", err)
	}

	if got := env.childPoints(t, child.ID); got != 0 {
		t.Errorf("Expected rollup 0 after discard, got %d", got)
	}

	row, err := env.completions.GetCompletionByID(ctx, completion.ID)
	if err != nil {
		t.Fatalf("GetCompletionByID failed: %v", err)
	}
	if row != nil {
		t.Error("Expected ledger row to be deleted by discard")
	}

	// The day is free again
	if _, err := env.ledger.RecordCompletion(ctx, env.ownerID, child.ID, activity.ID, "2025-03-01"); err != nil {
		t.Fatalf("RecordCompletion after discard failed: %v", err)
	}
}

func TestApproveCompletionIsTerminal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	child := env.mustAddChild(t, "Ben")
	activity := env.mustAddActivity(t, "Laundry", 6)

	completion, err := env.ledger.RecordCompletion(ctx, env.ownerID, child.ID, activity.ID, "2025-03-01")
	if err != nil {
		t.Fatalf("RecordCompletion failed: %v", err)
	}

	if err := env.ledger.ApproveCompletion(ctx, env.ownerID, completion.ID); err != nil {
		t.Fatalf("ApproveCompletion failed: %v", err)
	}

	// Approval never changes the balance
	if got := env.childPoints(t, child.ID); got != 6 {
		t.Errorf("Expected rollup 6 after approval, got %d", got)
	}

	// Re-approving is an invalid transition
	if err := env.ledger.ApproveCompletion(ctx, env.ownerID, completion.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState on re-approve, got %v", err)
	}

	// Approved completions cannot be discarded
	if err := env.ledger.DiscardCompletion(ctx, env.ownerID, completion.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState discarding approved completion, got %v", err)
	}
	if got := env.childPoints(t, child.ID); got != 6 {
		t.Errorf("Rollup changed by rejected discard: got %d", got)
	}
}

func TestPayoutZeroesRollupKeepsLedger(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	child := env.mustAddChild(t, "Cleo")
	activity := env.mustAddActivity(t, "Walk dog", 4)

	for _, date := range []string{"2025-03-01", "2025-03-02", "2025-03-03"} {
		if _, err := env.ledger.RecordCompletion(ctx, env.ownerID, child.ID, activity.ID, date); err != nil {
			t.Fatalf("RecordCompletion failed: %v", err)
		}
	}

	amount, err := env.ledger.Payout(ctx, env.ownerID, child.ID)
	if err != nil {
		t.Fatalf("Payout failed: %v", err)
	}
	if amount != 12 {
		t.Errorf("Expected payout of 12, got %d", amount)
	}
	if got := env.childPoints(t, child.ID); got != 0 {
		t.Errorf("Expected rollup 0 after payout, got %d", got)
	}

	// Ledger rows are history, not balance; payout leaves them alone
	count, err := env.completions.CountByChild(ctx, child.ID)
	if err != nil {
		t.Fatalf("CountByChild failed: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected 3 ledger rows after payout, got %d", count)
	}

	// Paying out an empty balance is a no-op, not an error
	amount, err = env.ledger.Payout(ctx, env.ownerID, child.ID)
	if err != nil {
		t.Fatalf("Second payout failed: %v", err)
	}
	if amount != 0 {
		t.Errorf("Expected zero payout on empty balance, got %d", amount)
	}
}

func TestEditActivityKeepsSnapshots(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	child := env.mustAddChild(t, "Dora")
	activity := env.mustAddActivity(t, "Read 20 minutes", 10)

	completion, err := env.ledger.RecordCompletion(ctx, env.ownerID, child.ID, activity.ID, "2025-03-01")
	if err != nil {
		t.Fatalf("RecordCompletion failed: %v", err)
	}

	if err := env.catalog.EditActivity(ctx, env.ownerID, activity.ID, "Read 30 minutes", "", "📚", 15, "learning"); err != nil {
		t.Fatalf("EditActivity failed: %v", err)
	}

	// The recorded snapshot keeps the old value
	row, err := env.completions.GetCompletionByID(ctx, completion.ID)
	if err != nil {
		t.Fatalf("GetCompletionByID failed: %v", err)
	}
	if row.PointsEarned != 10 {
		t.Errorf("Snapshot changed by edit: expected 10, got %d", row.PointsEarned)
	}
	if got := env.childPoints(t, child.ID); got != 10 {
		t.Errorf("Rollup changed by edit: expected 10, got %d", got)
	}

	// New completions pick up the new value
	next, err := env.ledger.RecordCompletion(ctx, env.ownerID, child.ID, activity.ID, "2025-03-02")
	if err != nil {
		t.Fatalf("RecordCompletion failed: %v", err)
	}
	if next.PointsEarned != 15 {
		t.Errorf("Expected new completion to snapshot 15, got %d", next.PointsEarned)
	}
}

func TestReconcileChildRepairsDrift(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	child := env.mustAddChild(t, "Eli")
	activity := env.mustAddActivity(t, "Practice piano", 9)

	if _, err := env.ledger.RecordCompletion(ctx, env.ownerID, child.ID, activity.ID, "2025-03-01"); err != nil {
		t.Fatalf("RecordCompletion failed: %v", err)
	}
	if _, err := env.ledger.Payout(ctx, env.ownerID, child.ID); err != nil {
		t.Fatalf("Payout failed: %v", err)
	}
	if _, err := env.ledger.RecordCompletion(ctx, env.ownerID, child.ID, activity.ID, "2025-03-02"); err != nil {
		t.Fatalf("RecordCompletion failed: %v", err)
	}

	// Corrupt the cached rollup, as if a crash split a ledger write from
	// its rollup update
	if err := env.children.SetPoints(ctx, child.ID, 999); err != nil {
		t.Fatalf("SetPoints failed: %v", err)
	}

	balance, err := env.ledger.ReconcileChild(ctx, child.ID)
	if err != nil {
		t.Fatalf("ReconcileChild failed: %v", err)
	}
	if balance != 9 {
		t.Errorf("Expected reconciled balance 9 (18 earned - 9 paid), got %d", balance)
	}
	if got := env.childPoints(t, child.ID); got != 9 {
		t.Errorf("Expected repaired rollup 9, got %d", got)
	}

	// Reconciling a consistent child changes nothing
	balance, err = env.ledger.ReconcileChild(ctx, child.ID)
	if err != nil {
		t.Fatalf("Second ReconcileChild failed: %v", err)
	}
	if balance != 9 {
		t.Errorf("Reconcile not stable: got %d", balance)
	}
}

func TestListCompletionsPendingFilter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	child := env.mustAddChild(t, "Fay")
	activity := env.mustAddActivity(t, "Tidy room", 3)

	first, err := env.ledger.RecordCompletion(ctx, env.ownerID, child.ID, activity.ID, "2025-03-01")
	if err != nil {
		t.Fatalf("RecordCompletion failed: %v", err)
	}
	if _, err := env.ledger.RecordCompletion(ctx, env.ownerID, child.ID, activity.ID, "2025-03-02"); err != nil {
		t.Fatalf("RecordCompletion failed: %v", err)
	}

	if err := env.ledger.ApproveCompletion(ctx, env.ownerID, first.ID); err != nil {
		t.Fatalf("ApproveCompletion failed: %v", err)
	}

	all, err := env.ledger.ListCompletions(ctx, env.ownerID, false)
	if err != nil {
		t.Fatalf("ListCompletions failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 completions, got %d", len(all))
	}
	// Newest first
	if all[0].CompletedDate != "2025-03-02" {
		t.Errorf("Expected newest completion first, got %s", all[0].CompletedDate)
	}
	if all[0].ChildName != "Fay" || all[0].ActivityName != "Tidy room" {
		t.Errorf("Expected joined display fields, got %q/%q", all[0].ChildName, all[0].ActivityName)
	}

	pending, err := env.ledger.ListCompletions(ctx, env.ownerID, true)
	if err != nil {
		t.Fatalf("ListCompletions(pending) failed: %v", err)
	}
	if len(pending) != 1 || pending[0].CompletedDate != "2025-03-02" {
		t.Errorf("Expected only the unapproved completion, got %+v", pending)
	}
}

func TestLedgerOwnershipIsolation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	child := env.mustAddChild(t, "Gil")
	activity := env.mustAddActivity(t, "Water plants", 2)

	completion, err := env.ledger.RecordCompletion(ctx, env.ownerID, child.ID, activity.ID, "2025-03-01")
	if err != nil {
		t.Fatalf("RecordCompletion failed: %v", err)
	}

	other, err := env.owners.CreateOwner(ctx, "Other Family")
	if err != nil {
		t.Fatalf("CreateOwner failed: %v", err)
	}

	// Another family cannot see or touch this ledger
	if _, err := env.ledger.RecordCompletion(ctx, other.ID, child.ID, activity.ID, "2025-03-02"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound recording against foreign child, got %v", err)
	}
	if err := env.ledger.ApproveCompletion(ctx, other.ID, completion.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound approving foreign completion, got %v", err)
	}
	if err := env.ledger.DiscardCompletion(ctx, other.ID, completion.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound discarding foreign completion, got %v", err)
	}
	if _, err := env.ledger.Payout(ctx, other.ID, child.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound paying out foreign child, got %v", err)
	}
}

// TestWeekOfChores walks a realistic week: completions across several days,
// one discard, approvals, and a payout, checking the balance at each step.
func TestWeekOfChores(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	child := env.mustAddChild(t, "Ana")
	reading := env.mustAddActivity(t, "Read 20 minutes", 10)
	dishes := env.mustAddActivity(t, "Do the dishes", 5)

	ids := make([]int64, 0, 4)
	record := func(activityID int64, date string) {
		t.Helper()
		c, err := env.ledger.RecordCompletion(ctx, env.ownerID, child.ID, activityID, date)
		if err != nil {
			t.Fatalf("RecordCompletion failed: %v", err)
		}
		ids = append(ids, c.ID)
	}

	record(reading.ID, "2025-03-03")
	record(dishes.ID, "2025-03-03")
	record(reading.ID, "2025-03-04")
	record(dishes.ID, "2025-03-05")

	if got := env.childPoints(t, child.ID); got != 30 {
		t.Fatalf("Expected 30 points mid-week, got %d", got)
	}

	// Parent review: the second reading claim doesn't hold up
	if err := env.ledger.DiscardCompletion(ctx, env.ownerID, ids[2]); err != nil {
		t.Fatalf("DiscardCompletion failed: %v", err)
	}
	for _, id := range []int64{ids[0], ids[1], ids[3]} {
		if err := env.ledger.ApproveCompletion(ctx, env.ownerID, id); err != nil {
			t.Fatalf("ApproveCompletion failed: %v", err)
		}
	}

	if got := env.childPoints(t, child.ID); got != 20 {
		t.Fatalf("Expected 20 points after review, got %d", got)
	}

	amount, err := env.ledger.Payout(ctx, env.ownerID, child.ID)
	if err != nil {
		t.Fatalf("Payout failed: %v", err)
	}
	if amount != 20 {
		t.Errorf("Expected payout of 20, got %d", amount)
	}
	if got := env.childPoints(t, child.ID); got != 0 {
		t.Errorf("Expected 0 points after payout, got %d", got)
	}

	// The rollup and the ledger still agree
	balance, err := env.ledger.ReconcileChild(ctx, child.ID)
	if err != nil {
		t.Fatalf("ReconcileChild failed: %v", err)
	}
	if balance != 0 {
		t.Errorf("Expected reconciled balance 0, got %d", balance)
	}
}
