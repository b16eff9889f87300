package storage

import (
	"context"
	"sync"

	"github.com/anonto42/campustrack/backend/internal/models"
)

// MemoryStore keeps blobs in a map. Used with BLOB_BACKEND=memory and in tests.
type MemoryStore struct {
	mu      sync.Mutex
	baseURL string
	objects map[string]File
}

// NewMemoryStore creates an empty MemoryStore serving URLs under baseURL
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{baseURL: baseURL, objects: make(map[string]File)}
}

func (s *MemoryStore) Upload(_ context.Context, folder string, file File) (models.Image, error) {
	key := NewKey(folder, file.Extension)
	s.mu.Lock()
	s.objects[key] = file
	s.mu.Unlock()
	return models.Image{URL: s.baseURL + "/" + key, PublicID: key}, nil
}

func (s *MemoryStore) Delete(_ context.Context, publicID string) error {
	s.mu.Lock()
	delete(s.objects, publicID)
	s.mu.Unlock()
	return nil
}

// Has reports whether publicID is stored
func (s *MemoryStore) Has(publicID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[publicID]
	return ok
}

// Len returns the number of stored blobs
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
