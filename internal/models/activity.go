package models

import "time"

// Activity is a template for things a child can do to earn (or lose) points.
// Negative point values represent penalties. Deactivated activities are
// hidden from listings but never deleted, so historical ledger rows keep a
// valid reference.
type Activity struct {
	ID          int64
	OwnerID     int64
	Name        string
	Description string
	Icon        string
	Points      int
	Category    string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
