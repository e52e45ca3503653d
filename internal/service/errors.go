package service

import "errors"

// Error taxonomy surfaced to the facade. Services wrap these sentinels with
// fmt.Errorf("...: %w", ...) so callers classify with errors.Is. Any error
// that doesn't match a sentinel is a store or transport failure and should
// be treated as such by the caller.
var (
	// ErrNotFound is returned for references to missing or inaccessible
	// owners, children, activities, or ledger rows. Inactive activities are
	// reported as not found for completion purposes.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a completion already exists for the same
	// child, activity, and date.
	ErrDuplicate = errors.New("completion already recorded for that day")

	// ErrInvalidState is returned for illegal ledger transitions, such as
	// discarding an approved completion.
	ErrInvalidState = errors.New("illegal completion state transition")

	// ErrDenied is returned when the presented parent secret does not match.
	ErrDenied = errors.New("parent secret mismatch")

	// ErrNotConfigured is returned when the owner has never set a parent secret.
	ErrNotConfigured = errors.New("parent secret not configured")

	// ErrAssetFailure is returned for avatar upload/move failures that could
	// not be absorbed by the degraded-state policy.
	ErrAssetFailure = errors.New("avatar asset operation failed")

	// ErrInvalidInput is returned for malformed arguments (empty names, bad
	// dates, too-short secrets).
	ErrInvalidInput = errors.New("invalid input")
)
