package storage

import (
	"context"
	"fmt"
	"path"

	"github.com/anonto42/campustrack/backend/internal/metrics"
	"github.com/anonto42/campustrack/backend/internal/models"
	"github.com/google/uuid"
)

// Upload folders
const (
	FolderProfiles = "profiles"
	FolderPosts    = "posts"
)

const keyPrefix = "campustrack"

// File is a validated upload waiting to be stored
type File struct {
	Name        string
	ContentType string
	Extension   string
	Data        []byte
}

// BlobStore stores images and releases them by public ID
type BlobStore interface {
	// Upload stores the file under folder and returns its URL and public ID
	Upload(ctx context.Context, folder string, file File) (models.Image, error)
	// Delete releases a blob. Empty and already-missing IDs succeed.
	Delete(ctx context.Context, publicID string) error
}

// NewKey returns a fresh object key like campustrack/posts/<uuid>.png
func NewKey(folder, extension string) string {
	return path.Join(keyPrefix, folder, uuid.NewString()+extension)
}

// Instrumented counts the operations of the wrapped store
type Instrumented struct {
	next BlobStore
}

// NewInstrumented wraps a BlobStore with metrics
func NewInstrumented(next BlobStore) *Instrumented {
	return &Instrumented{next: next}
}

func (s *Instrumented) Upload(ctx context.Context, folder string, file File) (models.Image, error) {
	img, err := s.next.Upload(ctx, folder, file)
	metrics.BlobOperations.WithLabelValues("upload", metrics.Outcome(err)).Inc()
	if err != nil {
		return models.Image{}, fmt.Errorf("upload %s: %w", file.Name, err)
	}
	return img, nil
}

func (s *Instrumented) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	err := s.next.Delete(ctx, publicID)
	metrics.BlobOperations.WithLabelValues("delete", metrics.Outcome(err)).Inc()
	if err != nil {
		return fmt.Errorf("release %s: %w", publicID, err)
	}
	return nil
}
