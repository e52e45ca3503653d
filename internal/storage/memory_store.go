package storage

import (
	"context"
	"errors"
	"sync"
)

// ErrObjectNotFound is returned by Move when the source key does not exist
var ErrObjectNotFound = errors.New("object not found")

// MemoryStore is an in-memory ObjectStore used by tests. FailUploads and
// FailMoves let tests exercise the degraded avatar paths.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	FailUploads bool
	FailMoves   bool
}

// NewMemoryStore creates an empty in-memory object store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

// Upload stores data under key and returns a memory:// address
func (s *MemoryStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if s.FailUploads {
		return "", errors.New("upload failed")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.objects[key] = buf
	return s.Address(key), nil
}

// Move renames a stored object
func (s *MemoryStore) Move(ctx context.Context, fromKey, toKey string) (string, error) {
	if s.FailMoves {
		return "", errors.New("move failed")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[fromKey]
	if !ok {
		return "", ErrObjectNotFound
	}
	s.objects[toKey] = data
	delete(s.objects, fromKey)
	return s.Address(toKey), nil
}

// Delete removes a stored object; absent keys are ignored
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// Address returns the address for a stored key
func (s *MemoryStore) Address(key string) string {
	return "memory://" + key
}

// Has reports whether an object exists at key
func (s *MemoryStore) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

// Len returns the number of stored objects
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
