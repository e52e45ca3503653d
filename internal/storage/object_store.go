// Package storage provides the avatar object store: an S3-backed
// implementation for production and an in-memory one for tests.
package storage

import "context"

// ObjectStore stores binary avatar assets under string keys and returns a
// resolvable public address for each stored object.
type ObjectStore interface {
	// Upload stores data under key and returns its public address.
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)

	// Move renames a stored object and returns the new public address.
	// The source object is removed once the copy succeeds.
	Move(ctx context.Context, fromKey, toKey string) (string, error)

	// Delete removes a stored object. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
