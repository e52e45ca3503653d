package models

import "time"

// Payout records a "cash redeemed" event: the amount a child's rollup held
// when it was zeroed. Ledger rows are left untouched by payouts, so these
// records are what lets a reconciliation pass recompute the live balance
// from history.
type Payout struct {
	ID        int64
	ChildID   int64
	Amount    int
	CreatedAt time.Time
}
