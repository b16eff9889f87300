package services

import (
	"context"

	"github.com/anonto42/campustrack/backend/internal/models"
	"github.com/anonto42/campustrack/backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UploadService stores images ahead of the write that uses them
type UploadService struct {
	*base
}

// UploadProfile stores one profile picture
func (s *UploadService) UploadProfile(ctx context.Context, actorID primitive.ObjectID, file storage.File) (models.Image, error) {
	if _, _, err := s.actor(ctx, actorID); err != nil {
		return models.Image{}, err
	}
	return s.Blobs.Upload(ctx, storage.FolderProfiles, file)
}

// UploadPostImages stores up to MaxPostImages post images
func (s *UploadService) UploadPostImages(ctx context.Context, actorID primitive.ObjectID, files []storage.File) ([]models.Image, error) {
	if _, _, err := s.actor(ctx, actorID); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, invalid("No images uploaded")
	}
	if len(files) > models.MaxPostImages {
		return nil, invalid("A post can have at most %d images", models.MaxPostImages)
	}
	return s.uploadAll(ctx, storage.FolderPosts, files)
}
