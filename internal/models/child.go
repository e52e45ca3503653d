package models

import "time"

// Child represents a child profile within a family account.
// AvatarRef is either an object-store address or an inline emoji placeholder.
// TotalPoints is the cached rollup of the child's ledger; it is adjusted by
// the ledger service and zeroed by payouts, never written directly.
type Child struct {
	ID          int64
	OwnerID     int64
	Name        string
	AvatarRef   string
	TotalPoints int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
