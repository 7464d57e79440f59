package storage

import (
	"context"
	"fmt"
	"io"
	"sync"

	"party-photo-backend/internal/models"
)

// MemoryStore is an in-memory BlobStore used by tests.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	// UploadErr and DeleteErr, when set, are returned by the next matching
	// call and then cleared.
	UploadErr error
	DeleteErr error
}

// NewMemoryStore creates an empty in-memory blob store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

// Upload stores the object in memory and returns a synthetic URL
func (m *MemoryStore) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.UploadErr; err != nil {
		m.UploadErr = nil
		return "", err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.objects[key] = data
	return fmt.Sprintf("https://blobs.test/%s", key), nil
}

// Delete removes the object under key
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.DeleteErr; err != nil {
		m.DeleteErr = nil
		return err
	}
	if _, ok := m.objects[key]; !ok {
		return models.ErrNotFound
	}
	delete(m.objects, key)
	return nil
}

// Has reports whether an object exists under key
func (m *MemoryStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

// Len reports the number of stored objects
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
