package models

import "time"

// Completion states. Discarding deletes the ledger row, so only two values
// are ever stored.
const (
	CompletionPending  = "pending"
	CompletionApproved = "approved"
)

// CompletedActivity is a ledger event: a child completed an activity on a
// given date. PointsEarned is a snapshot of the activity's point value at
// completion time and is immutable thereafter, so later edits to the
// activity never rewrite history.
type CompletedActivity struct {
	ID            int64
	ChildID       int64
	ActivityID    int64
	CompletedDate string
	PointsEarned  int
	State         string
	CreatedAt     time.Time
}

// CompletionDetail combines a ledger row with the display fields the parent
// approval view needs.
type CompletionDetail struct {
	CompletedActivity
	ChildName    string
	ActivityName string
	ActivityIcon string
}
