package models

import "time"

// Owner represents a family account. The secret hash gates parent-privileged
// operations; an empty hash means the parent has never configured a secret.
type Owner struct {
	ID          int64
	DisplayName string
	SecretHash  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
