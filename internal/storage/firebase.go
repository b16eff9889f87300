package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"github.com/anonto42/campustrack/backend/internal/models"
)

// FirebaseStore stores images in the Firebase project's Cloud Storage bucket
type FirebaseStore struct {
	bucket     *gcs.BucketHandle
	bucketName string
}

// NewFirebaseStore creates a FirebaseStore over a bucket handle
func NewFirebaseStore(bucket *gcs.BucketHandle, bucketName string) *FirebaseStore {
	return &FirebaseStore{bucket: bucket, bucketName: bucketName}
}

// Upload writes the file under a fresh key in folder
func (s *FirebaseStore) Upload(ctx context.Context, folder string, file File) (models.Image, error) {
	key := NewKey(folder, file.Extension)
	w := s.bucket.Object(key).NewWriter(ctx)
	w.ContentType = file.ContentType
	if _, err := io.Copy(w, bytes.NewReader(file.Data)); err != nil {
		w.Close()
		return models.Image{}, err
	}
	if err := w.Close(); err != nil {
		return models.Image{}, err
	}
	url := fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucketName, key)
	return models.Image{URL: url, PublicID: key}, nil
}

// Delete removes the object; a missing object is not an error
func (s *FirebaseStore) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	err := s.bucket.Object(publicID).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil
	}
	return err
}
